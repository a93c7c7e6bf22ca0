package localserver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AccelByte/extend-rpg-localserver/pkg/cache"
	"github.com/AccelByte/extend-rpg-localserver/pkg/config"
	"github.com/AccelByte/extend-rpg-localserver/pkg/db"
	"github.com/AccelByte/extend-rpg-localserver/pkg/repository"
	"github.com/AccelByte/extend-rpg-localserver/pkg/timeauth"
)

// Open builds a Server from runtime settings: it loads and validates the
// catalog, applies the clock offset, and connects the configured player store.
// For the postgres store the DB_* variables are read and the schema applied.
func Open(ctx context.Context, cfg config.Runtime, logger *slog.Logger) (*Server, error) {
	loader := config.NewCatalogLoader(cfg.CatalogPath, logger)
	catalog, err := loader.LoadCatalog()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	catalogCache := cache.NewInMemoryCatalog(catalog, cfg.CatalogPath, logger)

	auth := timeauth.New(nil)
	auth.SetOffset(cfg.ClockOffset)

	var (
		players repository.PlayerRepository
		closeFn func() error
	)
	switch cfg.PlayerStore {
	case config.StorePostgres:
		dbCfg, err := db.NewConfigFromEnv()
		if err != nil {
			return nil, err
		}
		conn, err := db.Connect(dbCfg)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx, conn); err != nil {
			_ = conn.Close()
			return nil, err
		}
		players = repository.NewPostgresPlayerRepository(conn)
		closeFn = conn.Close
	default:
		players = repository.NewInMemoryPlayerRepository()
	}

	server := NewServer(auth, catalogCache, players, Options{
		SessionTTL:              cfg.SessionTTL,
		StaminaRecoveryInterval: cfg.StaminaRecoveryInterval,
	}, logger)
	server.closeFn = closeFn

	logger.Info("Local server ready",
		"catalog_path", cfg.CatalogPath,
		"player_store", cfg.PlayerStore,
		"clock_offset", cfg.ClockOffset.String(),
	)

	return server, nil
}
