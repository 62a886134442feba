package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-meet/backend/internal/eventtypes"
	"github.com/aura-meet/backend/internal/models"
	"github.com/aura-meet/backend/pkg/queue"
)

var (
	ErrInPast             = errors.New("scheduledAt is in the past")
	ErrEventNotFound      = errors.New("event type not found")
	ErrDurationMismatch   = errors.New("endTime does not match the event duration")
	ErrMeetingUnavailable = errors.New("meeting could not be created")
)

// Store persists bookings.
type Store interface {
	Create(ctx context.Context, b *models.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
}

// EventTypes resolves the event type a booking is for.
type EventTypes interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.EventType, error)
}

// Provisioner creates the meeting behind a booking.
type Provisioner interface {
	Provision(ctx context.Context, eventName string, req models.BookingRequest) (models.MeetingResult, error)
}

// Notifier queues the confirmation email.
type Notifier interface {
	EnqueueConfirmation(ctx context.Context, p queue.ConfirmationPayload) error
}

// Service creates bookings: validate, provision a meeting, persist, notify.
type Service struct {
	store    Store
	events   EventTypes
	meetings Provisioner
	notifier Notifier
	now      func() time.Time
	logger   *zap.Logger
}

// NewService creates a booking service. notifier may be nil.
func NewService(store Store, events EventTypes, meetings Provisioner, notifier Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, events: events, meetings: meetings, notifier: notifier, now: time.Now, logger: logger}
}

// Create books req. With a guest-friendly provider policy a booking is
// always confirmed, possibly with a placeholder link.
func (s *Service) Create(ctx context.Context, req models.BookingRequest) (*models.Booking, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.ScheduledAt.Before(s.now()) {
		return nil, ErrInPast
	}
	ev, err := s.events.GetByID(ctx, req.EventTypeID)
	if errors.Is(err, eventtypes.ErrNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load event type: %w", err)
	}
	if req.EndTime.Sub(req.ScheduledAt) != ev.Duration() {
		return nil, ErrDurationMismatch
	}

	res, err := s.meetings.Provision(ctx, ev.Name, req)
	if err != nil || !res.Success {
		s.logger.Warn("meeting provisioning failed", zap.Error(err), zap.String("event_type_id", ev.ID.String()))
		return nil, fmt.Errorf("%w: %v", ErrMeetingUnavailable, err)
	}

	b := &models.Booking{
		EventTypeID:    ev.ID,
		GuestName:      req.GuestName,
		GuestEmail:     req.GuestEmail,
		GuestTimezone:  req.GuestTimezone,
		ScheduledAt:    req.ScheduledAt.UTC(),
		EndTime:        req.EndTime.UTC(),
		Description:    req.Description,
		GoogleMeetLink: res.MeetingLink,
		MeetingID:      res.MeetingID,
		Status:         models.BookingStatusConfirmed,
	}
	if err := s.store.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("save booking: %w", err)
	}
	s.logger.Info("booking confirmed",
		zap.String("booking_id", b.ID.String()),
		zap.String("meeting_id", b.MeetingID),
		zap.Time("scheduled_at", b.ScheduledAt))

	if err := s.enqueue(ctx, b, ev.Name); err != nil {
		// The booking stands; only the email is lost.
		s.logger.Error("enqueue confirmation failed", zap.Error(err), zap.String("booking_id", b.ID.String()))
	}
	return b, nil
}

// Get returns a stored booking.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return s.store.GetByID(ctx, id)
}

// HostOf returns the host owning the booking's event type.
func (s *Service) HostOf(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	b, err := s.store.GetByID(ctx, id)
	if err != nil {
		return uuid.Nil, err
	}
	ev, err := s.events.GetByID(ctx, b.EventTypeID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("load event type: %w", err)
	}
	return ev.HostID, nil
}

// ResendConfirmation queues the confirmation email for an existing booking again.
func (s *Service) ResendConfirmation(ctx context.Context, id uuid.UUID) error {
	b, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	ev, err := s.events.GetByID(ctx, b.EventTypeID)
	if err != nil {
		return fmt.Errorf("load event type: %w", err)
	}
	return s.enqueue(ctx, b, ev.Name)
}

func (s *Service) enqueue(ctx context.Context, b *models.Booking, eventName string) error {
	if s.notifier == nil {
		return nil
	}
	return s.notifier.EnqueueConfirmation(ctx, queue.ConfirmationPayload{
		BookingID:     b.ID,
		EventName:     eventName,
		GuestName:     b.GuestName,
		GuestEmail:    b.GuestEmail,
		GuestTimezone: b.GuestTimezone,
		ScheduledAt:   b.ScheduledAt,
		EndTime:       b.EndTime,
		MeetingLink:   b.GoogleMeetLink,
	})
}
