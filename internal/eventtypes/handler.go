package eventtypes

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-meet/backend/internal/middleware"
	"github.com/aura-meet/backend/internal/models"
	"github.com/aura-meet/backend/internal/slots"
	"github.com/aura-meet/backend/pkg/response"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Store is the persistence the handler needs.
type Store interface {
	GetBySlug(ctx context.Context, slug string) (*models.EventType, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.EventType, error)
	Create(ctx context.Context, e *models.EventType) error
	ListByHost(ctx context.Context, hostID uuid.UUID) ([]models.EventType, error)
}

// CreateRequest is the body for POST /event-types.
type CreateRequest struct {
	Name            string `json:"name" binding:"required"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"durationMinutes" binding:"required,min=5,max=480"`
	Slug            string `json:"slug" binding:"required"`
}

// Handler serves event type lookups for booking pages and host management.
type Handler struct {
	store  Store
	window slots.Window
	now    func() time.Time
	logger *zap.Logger
}

// NewHandler creates an event types handler.
func NewHandler(store Store, window slots.Window, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, window: window, now: time.Now, logger: logger}
}

func (h *Handler) lookup(c *gin.Context) (*models.EventType, bool) {
	slug := models.NormalizeSlug(c.Param("slug"))
	if slug == "" {
		response.BadRequest(c, "Username not found")
		return nil, false
	}
	ev, err := h.store.GetBySlug(c.Request.Context(), slug)
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, "Event not found")
		return nil, false
	}
	if err != nil {
		h.logger.Error("get event type failed", zap.Error(err), zap.String("slug", slug))
		response.Internal(c, "failed to load event")
		return nil, false
	}
	return ev, true
}

// GetEmbed handles GET /api/embed/:slug.
func (h *Handler) GetEmbed(c *gin.Context) {
	ev, ok := h.lookup(c)
	if !ok {
		return
	}
	response.OK(c, gin.H{"event": ev})
}

// Slots handles GET /api/embed/:slug/slots?date=YYYY-MM-DD&tz=Area/City.
// Availability is evaluated against the current time in the guest's zone.
func (h *Handler) Slots(c *gin.Context) {
	loc := time.UTC
	if tz := c.Query("tz"); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			response.BadRequest(c, "invalid tz")
			return
		}
		loc = l
	}
	day, err := time.ParseInLocation(time.DateOnly, c.Query("date"), loc)
	if err != nil {
		response.BadRequest(c, "date must be YYYY-MM-DD")
		return
	}
	if _, ok := h.lookup(c); !ok {
		return
	}
	now := h.now().In(loc)
	response.OK(c, gin.H{
		"date":       day.Format(time.DateOnly),
		"selectable": slots.DaySelectable(now, day),
		"slots":      slots.Grid(now, day, h.window),
	})
}

// Create handles POST /event-types for an authenticated host.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	if !slugPattern.MatchString(slug) {
		response.BadRequest(c, "slug must be lowercase letters, digits and dashes")
		return
	}
	if models.NormalizeSlug(slug) != slug {
		response.BadRequest(c, "slug must not end in an 8-character segment")
		return
	}
	hostID, _ := c.Get(middleware.ContextHostID)
	e := &models.EventType{
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		Slug:            slug,
	}
	e.HostID, _ = hostID.(uuid.UUID)

	if err := h.store.Create(c.Request.Context(), e); err != nil {
		if errors.Is(err, ErrSlugTaken) {
			response.Conflict(c, "slug already in use")
			return
		}
		h.logger.Error("create event type failed", zap.Error(err))
		response.Internal(c, "failed to create event type")
		return
	}
	h.logger.Info("event type created", zap.String("id", e.ID.String()), zap.String("slug", e.Slug))
	response.Created(c, gin.H{"event": e})
}

// List handles GET /event-types for the authenticated host.
func (h *Handler) List(c *gin.Context) {
	v, _ := c.Get(middleware.ContextHostID)
	hostID, _ := v.(uuid.UUID)
	list, err := h.store.ListByHost(c.Request.Context(), hostID)
	if err != nil {
		h.logger.Error("list event types failed", zap.Error(err))
		response.Internal(c, "failed to list event types")
		return
	}
	if list == nil {
		list = []models.EventType{}
	}
	response.OK(c, gin.H{"events": list})
}
