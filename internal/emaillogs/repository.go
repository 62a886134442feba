package emaillogs

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aura-meet/backend/internal/models"
)

const logColumns = `id, booking_id, recipient_email, COALESCE(subject, ''), status, attempt, sent_at,
	COALESCE(error_message, ''), created_at`

// Repository stores one row per confirmation delivery attempt.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Record inserts the attempt and fills in its generated id and timestamp.
func (r *Repository) Record(ctx context.Context, el *models.EmailLog) error {
	const q = `INSERT INTO email_logs (booking_id, recipient_email, subject, status, attempt, sent_at, error_message)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, NULLIF($7, ''))
		RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, q,
		el.BookingID, el.RecipientEmail, el.Subject, el.Status, el.Attempt, el.SentAt, el.ErrorMessage,
	).Scan(&el.ID, &el.CreatedAt)
	if err != nil {
		return fmt.Errorf("record email log for booking %s: %w", el.BookingID, err)
	}
	return nil
}

// ListByBooking returns the attempts for a booking, newest first.
func (r *Repository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*models.EmailLog, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+logColumns+` FROM email_logs WHERE booking_id = $1 ORDER BY created_at DESC, attempt DESC`,
		bookingID)
	if err != nil {
		return nil, fmt.Errorf("list email logs: %w", err)
	}
	logs, err := pgx.CollectRows(rows, scanEmailLog)
	if err != nil {
		return nil, fmt.Errorf("list email logs: %w", err)
	}
	return logs, nil
}

func scanEmailLog(row pgx.CollectableRow) (*models.EmailLog, error) {
	var el models.EmailLog
	err := row.Scan(&el.ID, &el.BookingID, &el.RecipientEmail, &el.Subject, &el.Status,
		&el.Attempt, &el.SentAt, &el.ErrorMessage, &el.CreatedAt)
	return &el, err
}
