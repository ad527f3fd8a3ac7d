package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/cristhia-lara-reyes-99/apiDashboard/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ConfigsStore struct {
	pool *pgxpool.Pool
}

func NewConfigsStore(pool *pgxpool.Pool) *ConfigsStore {
	return &ConfigsStore{pool: pool}
}

func (s *ConfigsStore) GetByUserID(ctx context.Context, userID string) (domain.ConfigView, error) {
	const q = `
		SELECT image_name, logo_name, colors
		FROM user_configs
		WHERE user_id = $1
	`

	var (
		cfg       domain.ConfigView
		imageName pgtype.Text
		logoName  pgtype.Text
		colors    []byte
	)
	err := s.pool.QueryRow(ctx, q, userID).Scan(&imageName, &logoName, &colors)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ConfigView{}, domain.ErrNotFound
		}
		return domain.ConfigView{}, fmt.Errorf("get user config: %w", err)
	}

	cfg.ImageName = textOrEmpty(imageName)
	cfg.LogoName = textOrEmpty(logoName)
	cfg.Colors = colors
	return cfg, nil
}
