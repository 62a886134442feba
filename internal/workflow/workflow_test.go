package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-meet/backend/internal/client"
	"github.com/aura-meet/backend/internal/models"
)

type fakeEvents struct {
	event *models.EventType
	err   error
}

func (f *fakeEvents) FetchEvent(ctx context.Context, slug string) (*models.EventType, error) {
	return f.event, f.err
}

type fakeSubmitter struct {
	mu      sync.Mutex
	calls   int
	conf    *client.Confirmation
	err     error
	block   chan struct{}
	started chan struct{}
	last    models.Selection
	loc     *time.Location
}

func (f *fakeSubmitter) SubmitIn(ctx context.Context, loc *time.Location, sel models.Selection, details models.GuestDetails, event models.EventType) (*client.Confirmation, error) {
	f.mu.Lock()
	f.calls++
	f.last = sel
	f.loc = loc
	f.mu.Unlock()
	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	return f.conf, f.err
}

func (f *fakeSubmitter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

var testEvent = &models.EventType{
	ID:              uuid.MustParse("6f1c2f0e-3d4b-4a5c-9e8f-0a1b2c3d4e5f"),
	Name:            "Intro Call",
	DurationMinutes: 30,
	Slug:            "intro-call",
}

var guest = models.GuestDetails{Name: "Ada", Email: "ada@example.com"}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// now is 2025-06-10 15:10 UTC.
var now = time.Date(2025, 6, 10, 15, 10, 0, 0, time.UTC)

func loaded(t *testing.T, sub Submitter) *Workflow {
	t.Helper()
	w := New(&fakeEvents{event: testEvent}, sub, WithClock(fixedClock(now)))
	require.NoError(t, w.Load(context.Background(), "intro-call"))
	require.Equal(t, PhaseCalendar, w.State().Phase())
	return w
}

func atForm(t *testing.T, sub Submitter) *Workflow {
	t.Helper()
	w := loaded(t, sub)
	require.NoError(t, w.SelectDay(now.AddDate(0, 0, 1)))
	require.NoError(t, w.SelectSlot("10:00"))
	require.NoError(t, w.Next())
	require.NoError(t, w.UpdateDetails(guest))
	return w
}

func TestLoad(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		w := loaded(t, &fakeSubmitter{})
		assert.Equal(t, "Intro Call", w.Event().Name)
	})

	t.Run("failure halts the session", func(t *testing.T) {
		w := New(&fakeEvents{err: errors.New("Failed to fetch event (404)")}, &fakeSubmitter{})
		require.NoError(t, w.Load(context.Background(), "nope"))
		assert.Equal(t, LoadError{Message: "Failed to fetch event (404)"}, w.State())
		assert.Nil(t, w.Event())
		assert.ErrorIs(t, w.SelectDay(now), ErrInvalidTransition)
		assert.ErrorIs(t, w.SelectSlot("10:00"), ErrInvalidTransition)
	})

	t.Run("missing event", func(t *testing.T) {
		w := New(&fakeEvents{}, &fakeSubmitter{})
		require.NoError(t, w.Load(context.Background(), "x"))
		assert.Equal(t, LoadError{Message: "No event data in response"}, w.State())
	})

	t.Run("only once", func(t *testing.T) {
		w := loaded(t, &fakeSubmitter{})
		assert.ErrorIs(t, w.Load(context.Background(), "intro-call"), ErrInvalidTransition)
	})
}

func TestSelectDay(t *testing.T) {
	w := loaded(t, &fakeSubmitter{})
	require.NoError(t, w.SelectDay(now.AddDate(0, 0, 2)))
	require.NoError(t, w.SelectSlot("11:30"))

	before := w.Selection()
	err := w.SelectDay(now.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, ErrDayUnavailable)
	assert.Equal(t, before, w.Selection(), "disabled day leaves selection untouched")
	assert.False(t, w.DaySelectable(now.AddDate(0, 0, -1)))

	require.NoError(t, w.SelectDay(now.AddDate(0, 0, 3)))
	assert.Empty(t, w.Selection().Slot, "changing day clears the slot")
	assert.False(t, w.CanProceed())
	assert.ErrorIs(t, w.Next(), ErrInvalidTransition)
}

func TestSelectSlot(t *testing.T) {
	w := loaded(t, &fakeSubmitter{})
	assert.ErrorIs(t, w.SelectSlot("10:00"), ErrSlotUnavailable, "no day picked")

	require.NoError(t, w.SelectDay(now))
	assert.Equal(t, []string{"15:30", "16:00", "16:30"}, w.Slots())
	assert.ErrorIs(t, w.SelectSlot("10:00"), ErrSlotUnavailable, "past slot today")
	assert.ErrorIs(t, w.SelectSlot("17:00"), ErrSlotUnavailable, "outside window")
	require.NoError(t, w.SelectSlot("16:00"))
	assert.True(t, w.CanProceed())
}

func TestNextAndBack(t *testing.T) {
	w := loaded(t, &fakeSubmitter{})
	require.NoError(t, w.SelectDay(now.AddDate(0, 0, 1)))
	require.NoError(t, w.SelectSlot("9:00"))
	require.NoError(t, w.Next())
	assert.Equal(t, Form{}, w.State())

	require.NoError(t, w.Back())
	assert.Equal(t, Calendar{}, w.State())
	assert.Equal(t, "09:00", w.Selection().Slot)
	assert.ErrorIs(t, w.Back(), ErrInvalidTransition)
}

func TestSubmit_Success(t *testing.T) {
	sub := &fakeSubmitter{conf: &client.Confirmation{BookingID: "b-1", MeetingLink: "https://meet.google.com/abc-defg-hij"}}
	w := atForm(t, sub)

	require.NoError(t, w.Submit(context.Background()))
	assert.Equal(t, Success{MeetingLink: "https://meet.google.com/abc-defg-hij", GuestEmail: "ada@example.com"}, w.State())
	assert.Equal(t, 1, sub.count())
	assert.Equal(t, "10:00", sub.last.Slot)
	assert.Equal(t, time.UTC, sub.loc, "submitted in the clock's zone")

	require.NoError(t, w.BookAnother())
	assert.Equal(t, Calendar{}, w.State())
	assert.Equal(t, models.Selection{}, w.Selection())
	assert.Equal(t, models.GuestDetails{}, w.Details())
}

func TestSubmit_ServerErrorThenTryAgain(t *testing.T) {
	sub := &fakeSubmitter{err: &client.BookingError{Status: 500, Message: "Server error"}}
	w := atForm(t, sub)

	require.NoError(t, w.Submit(context.Background()))
	assert.Equal(t, Failed{Message: "Server error"}, w.State())

	require.NoError(t, w.TryAgain())
	assert.Equal(t, Form{}, w.State())
	assert.Equal(t, guest, w.Details())
	assert.True(t, w.Selection().Complete())
}

func TestSubmit_TransportError(t *testing.T) {
	w := atForm(t, &fakeSubmitter{err: errors.New("dial tcp: connection refused")})
	require.NoError(t, w.Submit(context.Background()))
	assert.Equal(t, Failed{Message: "An error occurred"}, w.State())
}

func TestSubmit_InvalidDetails(t *testing.T) {
	sub := &fakeSubmitter{}
	w := atForm(t, sub)
	require.NoError(t, w.UpdateDetails(models.GuestDetails{Name: "Ada", Email: "not-an-email"}))

	require.NoError(t, w.Submit(context.Background()))
	failed, ok := w.State().(Failed)
	require.True(t, ok)
	assert.Contains(t, failed.Message, "invalid guest details")
	assert.Zero(t, sub.count())
}

func TestSubmit_SlotExpired(t *testing.T) {
	sub := &fakeSubmitter{}
	clock := now
	w := New(&fakeEvents{event: testEvent}, sub, WithClock(func() time.Time { return clock }))
	require.NoError(t, w.Load(context.Background(), "intro-call"))
	require.NoError(t, w.SelectDay(now))
	require.NoError(t, w.SelectSlot("15:30"))
	require.NoError(t, w.Next())
	require.NoError(t, w.UpdateDetails(guest))

	clock = now.Add(time.Hour)
	require.NoError(t, w.Submit(context.Background()))
	assert.Equal(t, Failed{Message: slotGoneMessage}, w.State())
	assert.Zero(t, sub.count())
}

func TestSubmit_RejectsConcurrentSubmit(t *testing.T) {
	sub := &fakeSubmitter{
		conf:    &client.Confirmation{MeetingLink: "https://meet.google.com"},
		block:   make(chan struct{}),
		started: make(chan struct{}),
	}
	w := atForm(t, sub)

	done := make(chan error, 1)
	go func() { done <- w.Submit(context.Background()) }()
	<-sub.started

	assert.True(t, w.Submitting())
	assert.ErrorIs(t, w.Submit(context.Background()), ErrSubmitInFlight)

	close(sub.block)
	require.NoError(t, <-done)
	assert.False(t, w.Submitting())
	assert.Equal(t, 1, sub.count())
	assert.Equal(t, PhaseSuccess, w.State().Phase())
}

func TestInvalidTransitions(t *testing.T) {
	w := loaded(t, &fakeSubmitter{})
	assert.ErrorIs(t, w.Submit(context.Background()), ErrInvalidTransition)
	assert.ErrorIs(t, w.TryAgain(), ErrInvalidTransition)
	assert.ErrorIs(t, w.BookAnother(), ErrInvalidTransition)
	assert.ErrorIs(t, w.UpdateDetails(guest), ErrInvalidTransition)
}

// The process zone loaded from a plain /etc/localtime file is named "Local"
// and cannot be matched by name; the booked instant must still be the slot
// the guest saw on their clock.
func TestSubmit_UsesClockZoneOverResolver(t *testing.T) {
	var got struct {
		ScheduledAt   time.Time `json:"scheduledAt"`
		EndTime       time.Time `json:"endTime"`
		GuestTimezone string    `json:"guestTimezone"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"booking":{"id":"b1","googleMeetLink":"https://meet.google.com/abc-defg-hij"}}`))
	}))
	defer srv.Close()

	local := time.FixedZone("Local", 2*60*60)
	clock := time.Date(2025, 6, 10, 9, 0, 0, 0, local)
	utcResolver := func() *time.Location { return time.UTC }
	c := client.New(srv.URL, client.WithHTTPClient(srv.Client()), client.WithTimezone(utcResolver))

	w := New(&fakeEvents{event: testEvent}, c, WithClock(fixedClock(clock)))
	require.NoError(t, w.Load(context.Background(), "intro-call"))
	require.NoError(t, w.SelectDay(clock.AddDate(0, 0, 1)))
	require.NoError(t, w.SelectSlot("10:00"))
	require.NoError(t, w.Next())
	require.NoError(t, w.UpdateDetails(guest))
	require.NoError(t, w.Submit(context.Background()))

	require.Equal(t, PhaseSuccess, w.State().Phase())
	assert.True(t, got.ScheduledAt.Equal(time.Date(2025, 6, 11, 8, 0, 0, 0, time.UTC)), "got %s", got.ScheduledAt)
	assert.True(t, got.EndTime.Equal(time.Date(2025, 6, 11, 8, 30, 0, 0, time.UTC)), "got %s", got.EndTime)
	assert.NotEqual(t, "Local", got.GuestTimezone)
	_, err := time.LoadLocation(got.GuestTimezone)
	assert.NoError(t, err)
}
