package eventtypes

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aura-meet/backend/internal/models"
)

var (
	ErrNotFound  = errors.New("event type not found")
	ErrSlugTaken = errors.New("slug already in use")
)

const uniqueViolation = "23505"

// Repository handles event type persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an event types repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const selectColumns = `SELECT id, host_id, name, description, duration_minutes, slug, created_at FROM event_types`

func scan(row pgx.Row) (*models.EventType, error) {
	var e models.EventType
	err := row.Scan(&e.ID, &e.HostID, &e.Name, &e.Description, &e.DurationMinutes, &e.Slug, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetBySlug returns the event type behind a booking page.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*models.EventType, error) {
	return scan(r.pool.QueryRow(ctx, selectColumns+` WHERE slug = $1`, slug))
}

// GetByID returns an event type by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.EventType, error) {
	return scan(r.pool.QueryRow(ctx, selectColumns+` WHERE id = $1`, id))
}

// Create inserts an event type. Slugs are unique.
func (r *Repository) Create(ctx context.Context, e *models.EventType) error {
	const q = `INSERT INTO event_types (id, host_id, name, description, duration_minutes, slug)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5)
		RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, q, e.HostID, e.Name, e.Description, e.DurationMinutes, e.Slug).Scan(&e.ID, &e.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrSlugTaken
	}
	return err
}

// ListByHost returns a host's event types, newest first.
func (r *Repository) ListByHost(ctx context.Context, hostID uuid.UUID) ([]models.EventType, error) {
	rows, err := r.pool.Query(ctx, selectColumns+` WHERE host_id = $1 ORDER BY created_at DESC`, hostID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.EventType
	for rows.Next() {
		var e models.EventType
		if err := rows.Scan(&e.ID, &e.HostID, &e.Name, &e.Description, &e.DurationMinutes, &e.Slug, &e.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}
