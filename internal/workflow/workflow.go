// Package workflow drives a guest through picking a slot, entering details
// and confirming a booking.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aura-meet/backend/internal/client"
	"github.com/aura-meet/backend/internal/models"
	"github.com/aura-meet/backend/internal/slots"
)

const (
	genericFailure  = "An error occurred"
	slotGoneMessage = "The selected time is no longer available. Please pick another slot."
)

var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrDayUnavailable    = errors.New("day is not selectable")
	ErrSlotUnavailable   = errors.New("slot is not offered for the selected day")
	ErrSubmitInFlight    = errors.New("a booking is already being submitted")
)

// EventSource loads the event type behind a booking page.
type EventSource interface {
	FetchEvent(ctx context.Context, slug string) (*models.EventType, error)
}

// Submitter sends a single booking request. loc is the zone the day and slot
// were offered in.
type Submitter interface {
	SubmitIn(ctx context.Context, loc *time.Location, sel models.Selection, details models.GuestDetails, event models.EventType) (*client.Confirmation, error)
}

// Workflow is the booking state machine for one guest session.
type Workflow struct {
	mu         sync.Mutex
	state      State
	event      *models.EventType
	selection  models.Selection
	details    models.GuestDetails
	submitting bool

	events    EventSource
	submitter Submitter
	window    slots.Window
	now       func() time.Time
	logger    *zap.Logger
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithClock replaces time.Now; its location is the viewer's timezone.
func WithClock(now func() time.Time) Option {
	return func(w *Workflow) { w.now = now }
}

// WithWindow replaces the default 09:00-17:00 window.
func WithWindow(win slots.Window) Option {
	return func(w *Workflow) { w.window = win }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Workflow) { w.logger = l }
}

// New creates a workflow in the Loading state.
func New(events EventSource, submitter Submitter, opts ...Option) *Workflow {
	w := &Workflow{
		state:     Loading{},
		events:    events,
		submitter: submitter,
		window:    slots.DefaultWindow(),
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// State returns the current state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Event returns the loaded event type, or nil before loading succeeds.
func (w *Workflow) Event() *models.EventType {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.event == nil {
		return nil
	}
	ev := *w.event
	return &ev
}

// Selection returns the current day and slot choice.
func (w *Workflow) Selection() models.Selection {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selection
}

// Details returns the guest details entered so far.
func (w *Workflow) Details() models.GuestDetails {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.details
}

// Submitting reports whether a submission is in flight; the submit control is disabled meanwhile.
func (w *Workflow) Submitting() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitting
}

// DaySelectable reports whether day may be clicked.
func (w *Workflow) DaySelectable(day time.Time) bool {
	return slots.DaySelectable(w.now(), day)
}

// Slots lists the starts offered for the selected day.
func (w *Workflow) Slots() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.selection.HasDay() {
		return nil
	}
	return slots.Offered(w.now(), w.selection.Date, w.window)
}

// CanProceed reports whether Next is enabled.
func (w *Workflow) CanProceed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.Phase() == PhaseCalendar && w.selection.Complete()
}

// Load fetches the event type and moves to Calendar, or to LoadError on failure.
func (w *Workflow) Load(ctx context.Context, slug string) error {
	w.mu.Lock()
	if w.state.Phase() != PhaseLoading {
		w.mu.Unlock()
		return w.invalid("load")
	}
	w.mu.Unlock()

	ev, err := w.events.FetchEvent(ctx, slug)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.logger.Warn("event lookup failed", zap.String("slug", slug), zap.Error(err))
		w.state = LoadError{Message: err.Error()}
		return nil
	}
	if ev == nil {
		w.state = LoadError{Message: client.ErrNoEventData.Error()}
		return nil
	}
	w.event = ev
	w.state = Calendar{}
	return nil
}

// SelectDay picks a calendar day and clears any slot chosen before.
// Past days are rejected without touching the selection.
func (w *Workflow) SelectDay(day time.Time) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.Phase() != PhaseCalendar {
		return w.invalid("select day")
	}
	now := w.now()
	if !slots.DaySelectable(now, day) {
		return ErrDayUnavailable
	}
	loc := now.Location()
	w.selection = models.Selection{Date: time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)}
	return nil
}

// SelectSlot picks a start time offered for the selected day.
func (w *Workflow) SelectSlot(slot string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.Phase() != PhaseCalendar {
		return w.invalid("select slot")
	}
	if !w.selection.HasDay() || !slots.IsOffered(w.now(), w.selection.Date, w.window, slot) {
		return ErrSlotUnavailable
	}
	off, _ := slots.ParseClock(slot)
	w.selection.Slot = slots.FormatClock(off)
	return nil
}

// Next moves from Calendar to Form once a day and a slot are selected.
func (w *Workflow) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.Phase() != PhaseCalendar || !w.selection.Complete() {
		return w.invalid("next")
	}
	w.state = Form{}
	return nil
}

// Back returns from Form to Calendar, keeping the selection.
func (w *Workflow) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.Phase() != PhaseForm {
		return w.invalid("back")
	}
	w.state = Calendar{}
	return nil
}

// UpdateDetails stores what the guest typed into the form.
func (w *Workflow) UpdateDetails(d models.GuestDetails) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.Phase() != PhaseForm {
		return w.invalid("update details")
	}
	w.details = d
	return nil
}

// Submit books the selection. Booking failures land in the Failed state;
// the returned error only reports misuse.
func (w *Workflow) Submit(ctx context.Context) error {
	w.mu.Lock()
	if w.state.Phase() != PhaseForm {
		w.mu.Unlock()
		return w.invalid("submit")
	}
	if w.submitting {
		w.mu.Unlock()
		return ErrSubmitInFlight
	}
	if err := w.details.Validate(); err != nil {
		w.state = Failed{Message: err.Error()}
		w.mu.Unlock()
		return nil
	}
	now := w.now()
	if !slots.IsOffered(now, w.selection.Date, w.window, w.selection.Slot) {
		w.state = Failed{Message: slotGoneMessage}
		w.mu.Unlock()
		return nil
	}
	w.submitting = true
	sel, details, event := w.selection, w.details, *w.event
	w.mu.Unlock()

	conf, err := w.submitter.SubmitIn(ctx, now.Location(), sel, details, event)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.submitting = false
	if err != nil {
		w.logger.Info("booking submission failed", zap.Error(err))
		w.state = Failed{Message: failureMessage(err)}
		return nil
	}
	w.state = Success{MeetingLink: conf.MeetingLink, GuestEmail: details.Email}
	return nil
}

// TryAgain returns from Failed to Form with the entered details intact.
func (w *Workflow) TryAgain() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.Phase() != PhaseError {
		return w.invalid("try again")
	}
	w.state = Form{}
	return nil
}

// BookAnother clears selection and details and returns to Calendar.
func (w *Workflow) BookAnother() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.Phase() != PhaseSuccess {
		return w.invalid("book another")
	}
	w.selection = models.Selection{}
	w.details = models.GuestDetails{}
	w.state = Calendar{}
	return nil
}

func (w *Workflow) invalid(action string) error {
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, action, w.state.Phase())
}

func failureMessage(err error) string {
	var be *client.BookingError
	if errors.As(err, &be) {
		return be.Message
	}
	if errors.Is(err, models.ErrInvalidDetails) {
		return err.Error()
	}
	return genericFailure
}
