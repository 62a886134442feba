package models

// MeetingResult is what the meeting provisioner hands back for a booking.
// On success MeetingLink is never empty.
type MeetingResult struct {
	Success     bool   `json:"success"`
	MeetingLink string `json:"meetingLink,omitempty"`
	MeetingID   string `json:"meetingId,omitempty"`
	Message     string `json:"message,omitempty"`
}
