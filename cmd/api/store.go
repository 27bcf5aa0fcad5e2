package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"trajet.transit.mg/internal/app"
	"trajet.transit.mg/internal/appconf"
	"trajet.transit.mg/internal/logging"
	"trajet.transit.mg/internal/memstore"
	"trajet.transit.mg/internal/seed"
	"trajet.transit.mg/trajetdb"
)

// storeWriter is a store that the seed loader can fill.
type storeWriter interface {
	app.Store
	seed.Writer
}

// openStore opens the configured store and loads the seed and GTFS data into it.
func openStore(ctx context.Context, cfg appconf.Config, logger *slog.Logger) (app.Store, error) {
	var store storeWriter
	var gtfsClient *trajetdb.Client

	switch cfg.Store {
	case appconf.StoreMemory:
		store = memstore.New()
	default:
		client, err := trajetdb.NewClient(trajetdb.NewConfig(cfg.DBPath, cfg.Env, cfg.Env == appconf.Development), logger)
		if err != nil {
			return nil, err
		}
		store = client
		gtfsClient = client
	}

	if err := loadData(ctx, cfg, logger, store, gtfsClient); err != nil {
		logging.SafeCloseWithLogging(store, logger, "store")
		return nil, err
	}
	return store, nil
}

func loadData(ctx context.Context, cfg appconf.Config, logger *slog.Logger, store storeWriter, gtfsClient *trajetdb.Client) error {
	if cfg.SeedFile != "" {
		counts, err := store.TableCounts(ctx)
		if err != nil {
			return err
		}
		if counts["lines"] > 0 {
			logger.Info("store already holds lines, seed skipped", slog.String("seed", cfg.SeedFile))
		} else {
			f, err := seed.Load(cfg.SeedFile)
			if err != nil {
				return err
			}
			start := time.Now()
			summary, err := seed.Apply(ctx, store, f)
			if err != nil {
				return fmt.Errorf("seeding from %s: %w", cfg.SeedFile, err)
			}
			logging.LogOperation(logger, "seed_loaded",
				slog.String("seed", cfg.SeedFile),
				slog.Int("districts", summary.Districts),
				slog.Int("lines", summary.Lines),
				slog.Int("stops", summary.Stops),
				slog.Duration("duration", time.Since(start)))
		}
	}

	if cfg.GTFSPath != "" {
		if gtfsClient == nil {
			return fmt.Errorf("store %q cannot import GTFS", cfg.Store)
		}
		if err := gtfsClient.ImportFromFile(ctx, cfg.GTFSPath); err != nil {
			return err
		}
	}

	return nil
}
