package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// EventType is a host-defined bookable meeting template.
type EventType struct {
	ID              uuid.UUID `json:"id"`
	HostID          uuid.UUID `json:"hostId"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	DurationMinutes int       `json:"durationMinutes"`
	Slug            string    `json:"slug"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Duration returns the meeting length.
func (e EventType) Duration() time.Duration {
	return time.Duration(e.DurationMinutes) * time.Minute
}

// NormalizeSlug strips the 8-character share suffix that booking links carry
// ("intro-call-1a2b3c4d" becomes "intro-call").
func NormalizeSlug(raw string) string {
	raw = strings.TrimSpace(raw)
	i := strings.LastIndex(raw, "-")
	if i > 0 && len(raw)-i-1 == 8 {
		return raw[:i]
	}
	return raw
}
