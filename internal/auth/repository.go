package auth

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
	ErrHostNotFound = errors.New("host not found")
	ErrEmailTaken   = errors.New("email already registered")
)

// Repository handles host persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanHost(row pgx.Row) (*models.Host, error) {
	var h models.Host
	err := row.Scan(&h.ID, &h.Email, &h.Password, &h.FullName, &h.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrHostNotFound
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// GetByID returns a host by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Host, error) {
	const q = `SELECT id, email, password_hash, full_name, created_at FROM hosts WHERE id = $1`
	return scanHost(r.pool.QueryRow(ctx, q, id))
}

// GetByEmail returns a host by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.Host, error) {
	const q = `SELECT id, email, password_hash, full_name, created_at FROM hosts WHERE email = $1`
	return scanHost(r.pool.QueryRow(ctx, q, email))
}

// Create inserts a new host.
func (r *Repository) Create(ctx context.Context, email, passwordHash, fullName string) (*models.Host, error) {
	const q = `INSERT INTO hosts (email, password_hash, full_name)
		VALUES ($1, $2, $3)
		RETURNING id, email, password_hash, full_name, created_at`
	h, err := scanHost(r.pool.QueryRow(ctx, q, email, passwordHash, fullName))
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return nil, ErrEmailTaken
	}
	return h, err
}
