// Package trajetdb is the SQLite store behind the trip search: lines, their
// stops, the administrative areas they belong to, and an R*Tree index over
// stop coordinates.
package trajetdb

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"trajet.transit.mg/internal/appconf"
	"trajet.transit.mg/internal/logging"
)

//go:embed schema.sql
var ddl string

// Client is the main entry point for the store
type Client struct {
	config Config
	DB     *sql.DB
	logger *slog.Logger

	importRuntime time.Duration
}

// NewClient opens the database described by config and applies the schema.
func NewClient(config Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := createDB(config)
	if err != nil {
		return nil, err
	}
	if config.verbose {
		logger.Info("database ready", slog.String("path", config.DBPath))
	}

	return &Client{
		config: config,
		DB:     db,
		logger: logger.With(slog.String("component", "trajetdb")),
	}, nil
}

func (c *Client) Close() error {
	return c.DB.Close()
}

// ImportRuntime reports how long the last GTFS import took.
func (c *Client) ImportRuntime() time.Duration {
	return c.importRuntime
}

// ImportFromFile imports a GTFS zip from disk.
func (c *Client) ImportFromFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading GTFS file %s: %w", path, err)
	}
	return c.ImportGTFS(ctx, data)
}

func createDB(config Config) (*sql.DB, error) {
	if config.Env == appconf.Test && config.DBPath != MemoryPath {
		return nil, fmt.Errorf("refusing to open file-backed database %q in test environment", config.DBPath)
	}

	db, err := sql.Open("sqlite", dsn(config.DBPath))
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	if config.DBPath == MemoryPath {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
		if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("error enabling foreign keys: %w", err)
		}
	}

	if err := performDatabaseMigration(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error performing database migration: %w", err)
	}
	return db, nil
}

// dsn turns a file path into a URI carrying the per-connection pragmas.
func dsn(path string) string {
	if path == MemoryPath {
		return path
	}
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func performDatabaseMigration(ctx context.Context, db *sql.DB) error {
	for _, stmt := range strings.Split(ddl, "-- migrate") {
		trimmed := strings.TrimSpace(stmt)
		if trimmed == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, trimmed); err != nil {
			return fmt.Errorf("error executing DDL statement [%s]: %w", trimmed, err)
		}
	}
	return nil
}

// TableCounts returns the row count of every table the store owns.
func (c *Client) TableCounts(ctx context.Context) (map[string]int, error) {
	tables := []string{"provinces", "regions", "districts", "lines", "stops"}
	counts := make(map[string]int, len(tables))
	for _, table := range tables {
		var n int
		// table names come from the fixed list above
		if err := c.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, fmt.Errorf("counting %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}

// Ping checks the database connection.
func (c *Client) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *Client) withTx(ctx context.Context, operation string, fn func(tx *sql.Tx) error) error {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", operation, err)
	}
	defer logging.SafeRollbackWithLogging(tx, c.logger, operation)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", operation, err)
	}
	return nil
}
