package emaillogs

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-meet/backend/internal/bookings"
	"github.com/aura-meet/backend/internal/middleware"
	"github.com/aura-meet/backend/internal/models"
	"github.com/aura-meet/backend/pkg/response"
)

// Lister reads delivery attempts.
type Lister interface {
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*models.EmailLog, error)
}

// Bookings resolves booking ownership and re-queues confirmations.
type Bookings interface {
	HostOf(ctx context.Context, bookingID uuid.UUID) (uuid.UUID, error)
	ResendConfirmation(ctx context.Context, bookingID uuid.UUID) error
}

// Handler handles email log HTTP endpoints for hosts.
type Handler struct {
	repo     Lister
	bookings Bookings
	logger   *zap.Logger
}

// NewHandler creates an email logs handler.
func NewHandler(repo Lister, bookings Bookings, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, bookings: bookings, logger: logger}
}

// authorize parses :id and checks the caller hosts the booking's event type.
func (h *Handler) authorize(c *gin.Context) (uuid.UUID, bool) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking id")
		return uuid.Nil, false
	}
	owner, err := h.bookings.HostOf(c.Request.Context(), bookingID)
	if errors.Is(err, bookings.ErrNotFound) {
		response.NotFound(c, "booking not found")
		return uuid.Nil, false
	}
	if err != nil {
		h.logger.Error("resolve booking host failed", zap.Error(err))
		response.Internal(c, "failed to load booking")
		return uuid.Nil, false
	}
	v, _ := c.Get(middleware.ContextHostID)
	if caller, _ := v.(uuid.UUID); caller != owner {
		response.Forbidden(c, "not your booking")
		return uuid.Nil, false
	}
	return bookingID, true
}

// ListByBooking handles GET /bookings/:id/emails.
func (h *Handler) ListByBooking(c *gin.Context) {
	bookingID, ok := h.authorize(c)
	if !ok {
		return
	}
	logs, err := h.repo.ListByBooking(c.Request.Context(), bookingID)
	if err != nil {
		response.Internal(c, "failed to load email logs")
		return
	}
	if logs == nil {
		logs = []*models.EmailLog{}
	}
	response.OK(c, gin.H{"emails": logs})
}

// Resend handles POST /bookings/:id/emails/resend by queueing a fresh confirmation.
func (h *Handler) Resend(c *gin.Context) {
	bookingID, ok := h.authorize(c)
	if !ok {
		return
	}
	if err := h.bookings.ResendConfirmation(c.Request.Context(), bookingID); err != nil {
		h.logger.Error("resend confirmation failed", zap.Error(err), zap.String("booking_id", bookingID.String()))
		response.ServiceUnavailable(c, "could not queue confirmation")
		return
	}
	response.OK(c, gin.H{"message": "resend queued"})
}
