// Package store opens the transaction store selected in bankfeed.yaml.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cleared-dev/bankfeed/internal/config"
	"github.com/cleared-dev/bankfeed/internal/importer"
	"github.com/cleared-dev/bankfeed/internal/store/csvstore"
	"github.com/cleared-dev/bankfeed/internal/store/sqlstore"
)

const (
	DriverCSV = "csv"

	// DefaultSQLitePath is used when the sqlite driver has no DSN.
	DefaultSQLitePath = "data/bankfeed.db"
)

// Open returns the configured store and a function that releases it.
// A relative sqlite DSN is resolved against repoRoot.
func Open(ctx context.Context, cfg config.StoreConfig, repoRoot string) (importer.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Driver {
	case "", DriverCSV:
		return csvstore.New(repoRoot), noop, nil
	case sqlstore.DriverSQLite:
		dsn := cfg.DSN
		if dsn == "" {
			dsn = DefaultSQLitePath
		}
		if dsn != ":memory:" && !filepath.IsAbs(dsn) {
			dsn = filepath.Join(repoRoot, dsn)
		}
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, nil, fmt.Errorf("creating store dir: %w", err)
		}
		s, err := sqlstore.Open(ctx, sqlstore.DriverSQLite, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return s, s.Close, nil
	case sqlstore.DriverPostgres:
		if cfg.DSN == "" {
			return nil, nil, fmt.Errorf("postgres store requires a dsn")
		}
		s, err := sqlstore.Open(ctx, sqlstore.DriverPostgres, cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("opening postgres store: %w", err)
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
