// Package notify delivers booking confirmation emails.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

const (
	defaultHost  = "https://api.sendgrid.com"
	sendEndpoint = "/v3/mail/send"
)

var ErrNotConfigured = errors.New("sendgrid api key or sender address not configured")

// Message is a single outbound email.
type Message struct {
	ToName  string
	ToEmail string
	Subject string
	Plain   string
	HTML    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SendGridConfig holds the SendGrid credentials and sender identity.
type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
	// Host overrides the API host; empty means the public endpoint.
	Host string
}

// SendGrid sends mail through the SendGrid v3 API.
type SendGrid struct {
	cfg    SendGridConfig
	logger *zap.Logger
}

// NewSendGrid creates a SendGrid sender.
func NewSendGrid(cfg SendGridConfig, logger *zap.Logger) *SendGrid {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Host == "" {
		cfg.Host = defaultHost
	}
	if cfg.FromName == "" {
		cfg.FromName = "Aura Meet"
	}
	return &SendGrid{cfg: cfg, logger: logger}
}

// Send delivers msg. Any non-2xx status is an error so the job is retried.
func (s *SendGrid) Send(ctx context.Context, msg Message) error {
	if s.cfg.APIKey == "" || s.cfg.FromEmail == "" {
		return ErrNotConfigured
	}
	from := mail.NewEmail(s.cfg.FromName, s.cfg.FromEmail)
	to := mail.NewEmail(msg.ToName, msg.ToEmail)
	email := mail.NewSingleEmail(from, msg.Subject, to, msg.Plain, msg.HTML)

	// Client.SendWithContext writes the body into the request, so each send gets its own client.
	req := sendgrid.GetRequest(s.cfg.APIKey, sendEndpoint, s.cfg.Host)
	req.Method = rest.Post
	client := &sendgrid.Client{Request: req}

	resp, err := client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.Warn("sendgrid rejected message",
			zap.Int("status", resp.StatusCode),
			zap.String("to", msg.ToEmail),
			zap.String("body", resp.Body))
		return fmt.Errorf("sendgrid status %d", resp.StatusCode)
	}
	s.logger.Info("email sent", zap.String("to", msg.ToEmail), zap.String("subject", msg.Subject))
	return nil
}
