// Package backend opens the document store selected by configuration.
package backend

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/BarkinBalci/socials-sync-service/internal/config"
	"github.com/BarkinBalci/socials-sync-service/internal/store"
	"github.com/BarkinBalci/socials-sync-service/internal/store/postgres"
	"github.com/BarkinBalci/socials-sync-service/internal/store/sqlite"
)

// Open connects to the configured driver; bufferSize bounds each subscription's queue
func Open(ctx context.Context, cfg config.Store, bufferSize int, log *zap.Logger) (store.Backend, error) {
	log = log.With(zap.String("driver", cfg.Driver))

	switch cfg.Driver {
	case "sqlite":
		db, err := sqlite.Open(cfg.SQLitePath, log)
		if err != nil {
			return nil, err
		}
		return sqlite.NewStore(db, bufferSize, log), nil

	case "postgres":
		pool, err := postgres.Connect(ctx, cfg.PostgresDSN, log)
		if err != nil {
			return nil, err
		}
		if err := postgres.InitSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return postgres.NewStore(pool, bufferSize, log), nil
	}

	return nil, fmt.Errorf("unsupported store driver: %s", cfg.Driver)
}
