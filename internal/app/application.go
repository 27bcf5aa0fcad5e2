package app

import (
	"context"
	"log/slog"

	"trajet.transit.mg/internal/appconf"
	"trajet.transit.mg/internal/trajet"
)

// Store is the stop storage behind the application: the read side used by
// the search service plus the few administrative reads of the HTTP layer.
type Store interface {
	trajet.StopRepository

	ListLines(ctx context.Context) ([]trajet.Line, error)
	TableCounts(ctx context.Context) (map[string]int, error)
	Ping(ctx context.Context) error
	Close() error
}

// Application holds the dependencies for our HTTP handlers, helpers,
// and middleware.
type Application struct {
	Config appconf.Config
	Logger *slog.Logger
	Store  Store
	Trajet *trajet.Service
}

// New wires the search service over store.
func New(cfg appconf.Config, logger *slog.Logger, store Store) *Application {
	opts := trajet.Options{
		Finder: trajet.FinderOptions{MaxTransferCombinations: cfg.MaxTransferCombinations},
	}
	return &Application{
		Config: cfg,
		Logger: logger,
		Store:  store,
		Trajet: trajet.NewService(store, opts, logger),
	}
}
