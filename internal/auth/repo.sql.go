package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/honai-puma/honai-puma/internal/shared"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error
	DeleteSession(ctx context.Context, id string) error
}

// PGRepository implements Repository against PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

var _ Repository = (*PGRepository)(nil)

const queryFindByUsername = `
SELECT id, username, COALESCE(display_name, ''), password_hash, is_active, created_at, updated_at
FROM app_users
WHERE lower(username) = lower($1)`

// FindByUsername fetches a user by their directory username,
// case-insensitively.
func (r *PGRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	return r.scanUser(r.pool.QueryRow(ctx, queryFindByUsername, username))
}

const queryFindByID = `
SELECT id, username, COALESCE(display_name, ''), password_hash, is_active, created_at, updated_at
FROM app_users
WHERE id = $1`

// FindByID fetches a user by primary key.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	return r.scanUser(r.pool.QueryRow(ctx, queryFindByID, id))
}

func (r *PGRepository) scanUser(row pgx.Row) (*User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Username, &user.DisplayName, &user.PasswordHash,
		&user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

const queryCreateSession = `
INSERT INTO login_sessions (id, user_id, created_at, expires_at, ip, ua)
VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''))
ON CONFLICT (id) DO NOTHING`

// CreateSession records a login session for auditing.
func (r *PGRepository) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	_, err := r.pool.Exec(ctx, queryCreateSession, id, userID, time.Now().UTC(), expiresAt.UTC(), ip, ua)
	return err
}

const queryDeleteSession = `DELETE FROM login_sessions WHERE id = $1`

// DeleteSession removes a session record.
func (r *PGRepository) DeleteSession(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, queryDeleteSession, id)
	return err
}
