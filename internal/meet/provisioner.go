// Package meet creates calendar events with video-conferencing links for
// confirmed bookings, falling back to placeholder links according to a
// FallbackPolicy when the provider cannot be reached.
package meet

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/aura-meet/backend/internal/models"
)

const (
	// DefaultCalendarID targets the service account's own calendar.
	DefaultCalendarID = "primary"

	successMessage  = "Meeting scheduled successfully."
	providerMessage = "Event scheduled successfully on Google Calendar"
)

// Stage names the layer a failure happened in.
type Stage string

const (
	StageAuth       Stage = "auth"
	StageProvider   Stage = "provider"
	StageUnexpected Stage = "unexpected"
)

// Error is returned only when the policy for the failing stage is Fail.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string { return fmt.Sprintf("meet %s: %v", e.Stage, e.Err) }

func (e *Error) Unwrap() error { return e.Err }

// TokenProvider yields provider access tokens.
type TokenProvider interface {
	AccessToken(ctx context.Context) (string, error)
}

// Config configures the provisioner.
type Config struct {
	CalendarID string
	MeetDomain string
	// Endpoint overrides the calendar API base URL; empty uses the provider default.
	Endpoint string
	AppName  string
	Policy   FallbackPolicy
}

// Provisioner turns a booking request into a meeting.
type Provisioner struct {
	tokens     TokenProvider
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time
}

// NewProvisioner creates a provisioner. tokens may be nil when no service
// account is configured; every booking then goes through the auth policy.
func NewProvisioner(tokens TokenProvider, cfg Config, httpClient *http.Client, logger *zap.Logger) *Provisioner {
	if cfg.CalendarID == "" {
		cfg.CalendarID = DefaultCalendarID
	}
	if cfg.MeetDomain == "" {
		cfg.MeetDomain = DefaultMeetDomain
	}
	if cfg.AppName == "" {
		cfg.AppName = "Aura Meet"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provisioner{tokens: tokens, cfg: cfg, httpClient: httpClient, logger: logger, now: time.Now}
}

// Provision creates the calendar event for req. Under the guest-friendly
// policy it always returns a successful result with a non-empty link.
func (p *Provisioner) Provision(ctx context.Context, eventName string, req models.BookingRequest) (res models.MeetingResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = p.fallback(StageUnexpected, PrefixSystemFallback, fmt.Errorf("panic: %v", r))
		}
	}()

	res, err = p.provision(ctx, eventName, req)
	if err == nil {
		return res, nil
	}
	var stageErr *Error
	if errors.As(err, &stageErr) {
		return res, err
	}
	return p.fallback(StageUnexpected, PrefixSystemFallback, err)
}

func (p *Provisioner) provision(ctx context.Context, eventName string, req models.BookingRequest) (models.MeetingResult, error) {
	if p.tokens == nil {
		return p.fallback(StageAuth, PrefixAuthFallback, errors.New("no service account configured"))
	}
	token, err := p.tokens.AccessToken(ctx)
	if err != nil {
		return p.fallback(StageAuth, PrefixAuthFallback, err)
	}

	created, err := p.insertEvent(ctx, token, eventName, req)
	if err != nil {
		if recoverableProviderError(err) {
			return p.fallback(StageProvider, PrefixAPIFallback, err)
		}
		return models.MeetingResult{}, err
	}

	link := created.HangoutLink
	if link == "" {
		link = created.HtmlLink
	}
	if link == "" {
		link = PlaceholderLink(p.cfg.MeetDomain)
	}
	p.logger.Info("calendar event created", zap.String("event_id", created.Id), zap.String("guest_email", req.GuestEmail))
	return models.MeetingResult{
		Success:     true,
		MeetingLink: link,
		MeetingID:   created.Id,
		Message:     providerMessage,
	}, nil
}

func (p *Provisioner) insertEvent(ctx context.Context, accessToken, eventName string, req models.BookingRequest) (*calendar.Event, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	opts := []option.ClientOption{option.WithHTTPClient(oauth2.NewClient(ctx, ts))}
	if p.cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(p.cfg.Endpoint))
	}
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("calendar service: %w", err)
	}

	summary := "Consultation: " + req.GuestName
	if eventName != "" {
		summary = eventName + ": " + req.GuestName
	}
	event := &calendar.Event{
		Summary:     summary,
		Description: fmt.Sprintf("Reason: %s\n\nBooked via %s", req.Description, p.cfg.AppName),
		Start: &calendar.EventDateTime{
			DateTime: req.ScheduledAt.Format(time.RFC3339),
			TimeZone: req.GuestTimezone,
		},
		End: &calendar.EventDateTime{
			DateTime: req.EndTime.Format(time.RFC3339),
			TimeZone: req.GuestTimezone,
		},
		Attendees: []*calendar.EventAttendee{{Email: req.GuestEmail}},
		ConferenceData: &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId:             uuid.NewString(),
				ConferenceSolutionKey: &calendar.ConferenceSolutionKey{Type: "hangoutsMeet"},
			},
		},
	}
	return svc.Events.Insert(p.cfg.CalendarID, event).ConferenceDataVersion(1).Context(ctx).Do()
}

// recoverableProviderError matches the responses that mean the calendar API is
// disabled, unauthorized or rejected the payload.
func recoverableProviderError(err error) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return false
	}
	switch gerr.Code {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		return true
	}
	msg := strings.ToLower(gerr.Message + " " + gerr.Body)
	return strings.Contains(msg, "disabled") || strings.Contains(msg, "has not been used")
}

func (p *Provisioner) fallback(stage Stage, prefix string, cause error) (models.MeetingResult, error) {
	action := p.actionFor(stage)
	if action == Fail {
		p.logger.Error("meeting provisioning failed", zap.String("stage", string(stage)), zap.Error(cause))
		return models.MeetingResult{Success: false, Message: "Could not schedule the meeting."}, &Error{Stage: stage, Err: cause}
	}
	id := fallbackID(prefix, p.now())
	p.logger.Warn("meeting provisioning fell back to placeholder link",
		zap.String("stage", string(stage)),
		zap.String("meeting_id", id),
		zap.Error(cause),
	)
	return models.MeetingResult{
		Success:     true,
		MeetingLink: PlaceholderLink(p.cfg.MeetDomain),
		MeetingID:   id,
		Message:     successMessage,
	}, nil
}

func (p *Provisioner) actionFor(stage Stage) Action {
	switch stage {
	case StageAuth:
		return p.cfg.Policy.OnAuthFailure
	case StageProvider:
		return p.cfg.Policy.OnProviderError
	default:
		return p.cfg.Policy.OnUnexpectedError
	}
}
