package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-meet/backend/pkg/queue"
)

func TestConfirmation(t *testing.T) {
	start := time.Date(2025, 6, 10, 12, 30, 0, 0, time.UTC)
	msg, err := Confirmation(queue.ConfirmationPayload{
		EventName:     "Intro Call",
		GuestName:     "Ada",
		GuestEmail:    "ada@example.com",
		GuestTimezone: "Europe/Berlin",
		ScheduledAt:   start,
		EndTime:       start.Add(30 * time.Minute),
		MeetingLink:   "https://meet.google.com/abc-defg-hij",
	})
	require.NoError(t, err)
	assert.Equal(t, "Confirmed: Intro Call", msg.Subject)
	assert.Equal(t, "ada@example.com", msg.ToEmail)
	assert.Contains(t, msg.Plain, "Tuesday, June 10, 2025 14:30 - 15:00 (Europe/Berlin)")
	assert.Contains(t, msg.HTML, `href="https://meet.google.com/abc-defg-hij"`)
}

func TestConfirmation_EscapesGuestName(t *testing.T) {
	msg, err := Confirmation(queue.ConfirmationPayload{GuestName: "<script>", GuestTimezone: "bogus"})
	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.Plain, "(UTC)")
}
