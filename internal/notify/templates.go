package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/aura-meet/backend/pkg/queue"
)

var confirmationHTML = template.Must(template.New("confirmation").Parse(`<p>Hi {{.GuestName}},</p>
<p>Your <strong>{{.EventName}}</strong> is booked for {{.When}}.</p>
<p>Join: <a href="{{.MeetingLink}}">{{.MeetingLink}}</a></p>`))

// Confirmation renders the email for a confirmed booking in the guest's timezone.
func Confirmation(p queue.ConfirmationPayload) (Message, error) {
	loc, err := time.LoadLocation(p.GuestTimezone)
	if err != nil {
		loc = time.UTC
	}
	when := fmt.Sprintf("%s - %s (%s)",
		p.ScheduledAt.In(loc).Format("Monday, January 2, 2006 15:04"),
		p.EndTime.In(loc).Format("15:04"),
		loc.String())

	data := struct {
		GuestName, EventName, When, MeetingLink string
	}{p.GuestName, p.EventName, when, p.MeetingLink}

	var html bytes.Buffer
	if err := confirmationHTML.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("render confirmation: %w", err)
	}
	plain := fmt.Sprintf("Hi %s,\n\nYour %s is booked for %s.\nJoin: %s\n", p.GuestName, p.EventName, when, p.MeetingLink)
	return Message{
		ToName:  p.GuestName,
		ToEmail: p.GuestEmail,
		Subject: "Confirmed: " + p.EventName,
		Plain:   plain,
		HTML:    html.String(),
	}, nil
}
