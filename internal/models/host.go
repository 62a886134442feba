package models

import (
	"time"

	"github.com/google/uuid"
)

// Host owns event types and receives bookings.
type Host struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	FullName  string    `json:"fullName"`
	CreatedAt time.Time `json:"createdAt"`
}
