package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/cristhia-lara-reyes-99/apiDashboard/internal/domain"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AttemptsStore is the append-only login attempt ledger. Rows are never
// updated or deleted here; retention is an operational concern.
type AttemptsStore struct {
	pool *pgxpool.Pool
}

func NewAttemptsStore(pool *pgxpool.Pool) *AttemptsStore {
	return &AttemptsStore{pool: pool}
}

func (s *AttemptsStore) RecordAttempt(ctx context.Context, sourceIP, email string, succeeded bool, userAgent string) error {
	const q = `
		INSERT INTO login_attempts (ip_address, email, succeeded, user_agent)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.pool.Exec(ctx, q, sourceIP, nullIfEmpty(email), succeeded, nullIfEmpty(userAgent))
	if err != nil {
		return fmt.Errorf("record login attempt: %w", err)
	}
	return nil
}

func (s *AttemptsStore) CountRecentFailures(ctx context.Context, sourceIP string, window time.Duration) (int, error) {
	const q = `
		SELECT count(*)
		FROM login_attempts
		WHERE ip_address = $1 AND succeeded = false AND attempted_at > $2
	`
	var n int
	if err := s.pool.QueryRow(ctx, q, sourceIP, time.Now().Add(-window)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count recent failures: %w", err)
	}
	return n, nil
}

func (s *AttemptsStore) SuspiciousAddresses(ctx context.Context, minAttempts int, window time.Duration) ([]domain.SuspiciousAddress, error) {
	const q = `
		SELECT ip_address,
		       array_agg(DISTINCT email) FILTER (WHERE email IS NOT NULL),
		       max(attempted_at),
		       count(*)
		FROM login_attempts
		WHERE attempted_at > $1
		GROUP BY ip_address
		HAVING count(*) > $2
		ORDER BY count(*) DESC
	`
	rows, err := s.pool.Query(ctx, q, time.Now().Add(-window), minAttempts)
	if err != nil {
		return nil, fmt.Errorf("list suspicious addresses: %w", err)
	}
	defer rows.Close()

	var out []domain.SuspiciousAddress
	for rows.Next() {
		var (
			a      domain.SuspiciousAddress
			emails pgtype.FlatArray[string]
		)
		if err := rows.Scan(&a.SourceIP, &emails, &a.LastAttemptAt, &a.TotalAttempts); err != nil {
			return nil, fmt.Errorf("scan suspicious address: %w", err)
		}
		a.Identifiers = textArrayOrEmpty(emails)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate suspicious addresses: %w", err)
	}
	return out, nil
}
