package database

import (
	"context"
	"fmt"

	"github.com/yourusername/race-kelly-sim/internal/config"
)

// Initialize connects to PostgreSQL and applies the results schema
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Store.Postgres)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate results schema: %w", err)
	}

	return db, nil
}
