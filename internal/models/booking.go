package models

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// BookingStatusConfirmed is set once a meeting link has been attached.
	BookingStatusConfirmed = "confirmed"
)

var (
	ErrInvalidDetails = errors.New("invalid guest details")
	ErrInvalidBooking = errors.New("invalid booking request")
)

// Selection is the guest's in-progress day and slot choice.
type Selection struct {
	Date time.Time `json:"date"`
	Slot string    `json:"slot"`
}

// HasDay reports whether a day has been picked.
func (s Selection) HasDay() bool { return !s.Date.IsZero() }

// Complete reports whether both a day and a slot have been picked.
func (s Selection) Complete() bool { return s.HasDay() && s.Slot != "" }

// GuestDetails is what the guest types into the booking form.
type GuestDetails struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Reason string `json:"reason,omitempty"`
}

// Validate checks name presence and email shape.
func (d GuestDetails) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidDetails)
	}
	if err := validateEmail(d.Email); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDetails, err.Error())
	}
	return nil
}

// BookingRequest is the body for POST /bookings.
type BookingRequest struct {
	EventTypeID   uuid.UUID `json:"eventTypeId"`
	GuestName     string    `json:"guestName" binding:"required"`
	GuestEmail    string    `json:"guestEmail" binding:"required,email"`
	GuestTimezone string    `json:"guestTimezone" binding:"required"`
	ScheduledAt   time.Time `json:"scheduledAt" binding:"required"`
	EndTime       time.Time `json:"endTime" binding:"required"`
	Description   string    `json:"description"`
}

// Validate checks the fields the binding tags cannot express.
func (r BookingRequest) Validate() error {
	if r.EventTypeID == uuid.Nil {
		return fmt.Errorf("%w: eventTypeId is required", ErrInvalidBooking)
	}
	if strings.TrimSpace(r.GuestName) == "" {
		return fmt.Errorf("%w: guestName is required", ErrInvalidBooking)
	}
	if err := validateEmail(r.GuestEmail); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidBooking, err.Error())
	}
	// LoadLocation also accepts "" and "Local", which name the server's zone
	// rather than the guest's and are refused by the calendar API.
	if r.GuestTimezone == "" || strings.EqualFold(r.GuestTimezone, "Local") {
		return fmt.Errorf("%w: unknown guestTimezone %q", ErrInvalidBooking, r.GuestTimezone)
	}
	if _, err := time.LoadLocation(r.GuestTimezone); err != nil {
		return fmt.Errorf("%w: unknown guestTimezone %q", ErrInvalidBooking, r.GuestTimezone)
	}
	if !r.EndTime.After(r.ScheduledAt) {
		return fmt.Errorf("%w: endTime must be after scheduledAt", ErrInvalidBooking)
	}
	return nil
}

// Booking is a stored booking record.
type Booking struct {
	ID             uuid.UUID `json:"id"`
	EventTypeID    uuid.UUID `json:"eventTypeId"`
	GuestName      string    `json:"guestName"`
	GuestEmail     string    `json:"guestEmail"`
	GuestTimezone  string    `json:"guestTimezone"`
	ScheduledAt    time.Time `json:"scheduledAt"`
	EndTime        time.Time `json:"endTime"`
	Description    string    `json:"description"`
	GoogleMeetLink string    `json:"googleMeetLink,omitempty"`
	MeetingID      string    `json:"meetingId,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}

func validateEmail(addr string) error {
	if strings.TrimSpace(addr) == "" {
		return errors.New("email is required")
	}
	parsed, err := mail.ParseAddress(addr)
	if err != nil || parsed.Address != addr || !strings.Contains(addr[strings.LastIndex(addr, "@")+1:], ".") {
		return fmt.Errorf("invalid email address %q", addr)
	}
	return nil
}
