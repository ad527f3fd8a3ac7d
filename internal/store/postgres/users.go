package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cristhia-lara-reyes-99/apiDashboard/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersStore struct {
	pool *pgxpool.Pool
}

func NewUsersStore(pool *pgxpool.Pool) *UsersStore {
	return &UsersStore{pool: pool}
}

func (s *UsersStore) GetUserByEmail(ctx context.Context, email string) (domain.UserWithPassword, error) {
	const q = `
		SELECT id, client_tag, email, password_hash, role, client, first_name, last_name,
		       active, created_at, updated_at, last_login_at
		FROM users
		WHERE lower(email) = lower($1)
		LIMIT 1
	`

	var (
		u           domain.UserWithPassword
		idUUID      pgtype.UUID
		clientTag   pgtype.Text
		client      pgtype.Text
		firstName   pgtype.Text
		lastName    pgtype.Text
		lastLoginTS pgtype.Timestamptz
	)
	err := s.pool.QueryRow(ctx, q, email).Scan(
		&idUUID,
		&clientTag,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&client,
		&firstName,
		&lastName,
		&u.Active,
		&u.CreatedAt,
		&u.UpdatedAt,
		&lastLoginTS,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UserWithPassword{}, domain.ErrNotFound
		}
		return domain.UserWithPassword{}, fmt.Errorf("get user by email: %w", err)
	}

	u.ID = uuidOrEmpty(idUUID)
	u.ClientTag = textOrEmpty(clientTag)
	u.Client = textOrEmpty(client)
	u.FirstName = textOrEmpty(firstName)
	u.LastName = textOrEmpty(lastName)
	u.LastLoginAt = timestamptzPtr(lastLoginTS)
	return u, nil
}

func (s *UsersStore) SetLastLogin(ctx context.Context, userID string, when time.Time) error {
	const q = `
		UPDATE users
		SET last_login_at = $2, updated_at = now()
		WHERE id = $1
	`
	_, err := s.pool.Exec(ctx, q, userID, when)
	if err != nil {
		return fmt.Errorf("set last login: %w", err)
	}
	return nil
}
