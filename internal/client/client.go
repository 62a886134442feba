// Package client talks to the booking API on behalf of a guest: it loads the
// event type and submits exactly one booking request per call.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aura-meet/backend/internal/models"
	"github.com/aura-meet/backend/internal/slots"
)

const (
	// DefaultMeetingLink is shown when the stored booking carries no link.
	DefaultMeetingLink = "https://meet.google.com"

	genericBookingError = "Booking failed"
)

var ErrNoEventData = errors.New("No event data in response")

// BookingError is a non-2xx answer from the booking API.
type BookingError struct {
	Status  int
	Message string
}

func (e *BookingError) Error() string { return e.Message }

// Confirmation is the guest-facing result of a successful booking.
type Confirmation struct {
	BookingID   string
	MeetingLink string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the transport.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimezone replaces the guest timezone resolver.
func WithTimezone(r TimezoneResolver) Option {
	return func(c *Client) { c.tz = r }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// Client is the guest-side booking API client.
type Client struct {
	baseURL string
	http    *http.Client
	tz      TimezoneResolver
	logger  *zap.Logger
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		tz:      SystemTimezone,
		logger:  zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type errorBody struct {
	Error string `json:"error"`
}

type eventEnvelope struct {
	Event *models.EventType `json:"event"`
}

// FetchEvent loads the event type for a booking page slug.
func (c *Client) FetchEvent(ctx context.Context, slug string) (*models.EventType, error) {
	slug = models.NormalizeSlug(slug)
	if slug == "" {
		return nil, errors.New("Username not found")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/embed/"+url.PathEscape(slug), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch event: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read event response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil && eb.Error != "" {
			return nil, errors.New(eb.Error)
		}
		return nil, fmt.Errorf("Failed to fetch event (%d)", resp.StatusCode)
	}
	var env eventEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	if env.Event == nil {
		return nil, ErrNoEventData
	}
	return env.Event, nil
}

// BuildRequest derives the absolute start and end of the meeting from the
// selected calendar day and slot as wall-clock time in loc.
func BuildRequest(sel models.Selection, details models.GuestDetails, event models.EventType, loc *time.Location) (models.BookingRequest, error) {
	if !sel.Complete() {
		return models.BookingRequest{}, errors.New("select a day and a time first")
	}
	if event.DurationMinutes <= 0 {
		return models.BookingRequest{}, errors.New("event duration must be positive")
	}
	start, err := slots.At(sel.Date, sel.Slot, loc)
	if err != nil {
		return models.BookingRequest{}, err
	}
	return models.BookingRequest{
		EventTypeID:   event.ID,
		GuestName:     details.Name,
		GuestEmail:    details.Email,
		GuestTimezone: ZoneName(loc, start),
		ScheduledAt:   start,
		EndTime:       start.Add(event.Duration()),
		Description:   details.Reason,
	}, nil
}

type bookingEnvelope struct {
	Booking *struct {
		ID             string `json:"id"`
		GoogleMeetLink string `json:"googleMeetLink"`
	} `json:"booking"`
}

// Submit sends one booking request with the selection read as wall-clock time
// in the resolver's zone. It never retries.
func (c *Client) Submit(ctx context.Context, sel models.Selection, details models.GuestDetails, event models.EventType) (*Confirmation, error) {
	return c.SubmitIn(ctx, c.tz(), sel, details, event)
}

// SubmitIn is Submit with the zone the selection was made in. Callers that
// filtered slots against their own clock pass that clock's location so the
// booked instant is the one the guest saw.
func (c *Client) SubmitIn(ctx context.Context, loc *time.Location, sel models.Selection, details models.GuestDetails, event models.EventType) (*Confirmation, error) {
	if loc == nil {
		loc = time.Local
	}
	br, err := BuildRequest(sel, details, event, loc)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(br)
	if err != nil {
		return nil, fmt.Errorf("marshal booking: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/bookings", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("booking request failed", zap.Error(err))
		return nil, fmt.Errorf("submit booking: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn("booking response unreadable", zap.Int("status", resp.StatusCode), zap.Error(err))
		return nil, fmt.Errorf("read booking response (%d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := genericBookingError
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil && eb.Error != "" {
			msg = eb.Error
		}
		c.logger.Info("booking rejected", zap.Int("status", resp.StatusCode), zap.String("error", msg))
		return nil, &BookingError{Status: resp.StatusCode, Message: msg}
	}

	conf := &Confirmation{MeetingLink: DefaultMeetingLink}
	var env bookingEnvelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Booking != nil {
		conf.BookingID = env.Booking.ID
		if env.Booking.GoogleMeetLink != "" {
			conf.MeetingLink = env.Booking.GoogleMeetLink
		}
	}
	return conf, nil
}
