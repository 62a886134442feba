package bookings

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aura-meet/backend/internal/models"
)

var ErrNotFound = errors.New("booking not found")

// Repository handles booking persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a bookings repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a booking and fills in its ID and creation time.
func (r *Repository) Create(ctx context.Context, b *models.Booking) error {
	const q = `INSERT INTO bookings (id, event_type_id, guest_name, guest_email, guest_timezone,
			scheduled_at, end_time, description, google_meet_link, meeting_id, status)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, b.EventTypeID, b.GuestName, b.GuestEmail, b.GuestTimezone,
		b.ScheduledAt, b.EndTime, b.Description, b.GoogleMeetLink, b.MeetingID, b.Status).
		Scan(&b.ID, &b.CreatedAt)
}

// GetByID returns a booking by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	const q = `SELECT id, event_type_id, guest_name, guest_email, guest_timezone, scheduled_at, end_time,
			description, google_meet_link, meeting_id, status, created_at
		FROM bookings WHERE id = $1`
	var b models.Booking
	err := r.pool.QueryRow(ctx, q, id).Scan(&b.ID, &b.EventTypeID, &b.GuestName, &b.GuestEmail, &b.GuestTimezone,
		&b.ScheduledAt, &b.EndTime, &b.Description, &b.GoogleMeetLink, &b.MeetingID, &b.Status, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}
