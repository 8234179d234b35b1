package app

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/squadgate/internal/access/store"
	"github.com/aussiebroadwan/squadgate/internal/access/store/drivers/postgres"
	"github.com/aussiebroadwan/squadgate/internal/access/store/drivers/sqlite"
)

// OpenStore connects to the configured database and applies migrations.
// The caller owns the returned store and must Close it.
func OpenStore(ctx context.Context, cfg Config) (store.Store, error) {
	var (
		st  store.Store
		err error
	)

	switch cfg.DatabaseDriver {
	case "postgres":
		st, err = postgres.NewStore(ctx, cfg.DatabaseURL, postgres.Options{})
	default:
		st, err = sqlite.NewStore("file:" + cfg.DatabaseFile)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.DatabaseDriver, err)
	}

	if err := st.ApplyMigrations(); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}
	return st, nil
}
