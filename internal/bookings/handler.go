package bookings

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-meet/backend/internal/models"
	"github.com/aura-meet/backend/pkg/response"
)

// Handler handles booking HTTP endpoints.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a bookings handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// Create handles POST /bookings.
func (h *Handler) Create(c *gin.Context) {
	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	b, err := h.svc.Create(c.Request.Context(), req)
	switch {
	case err == nil:
		response.Created(c, gin.H{"booking": b})
	case errors.Is(err, models.ErrInvalidBooking),
		errors.Is(err, ErrInPast),
		errors.Is(err, ErrDurationMismatch):
		response.BadRequest(c, err.Error())
	case errors.Is(err, ErrEventNotFound):
		response.NotFound(c, "Event not found")
	case errors.Is(err, ErrMeetingUnavailable):
		response.BadGateway(c, "Could not create the meeting. Please try again later.")
	default:
		h.logger.Error("create booking failed", zap.Error(err))
		response.Internal(c, "Booking failed")
	}
}

// Get handles GET /bookings/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking id")
		return
	}
	b, err := h.svc.Get(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, "booking not found")
		return
	}
	if err != nil {
		h.logger.Error("get booking failed", zap.Error(err), zap.String("id", id.String()))
		response.Internal(c, "failed to load booking")
		return
	}
	response.OK(c, gin.H{"booking": b})
}
