package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/brand-audit-cli/internal/store"
)

// initStore builds the configured run store. Driver "none" (the default)
// returns nil, which disables persistence.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "", "none":
		return nil, nil
	case "sqlite":
		dsn := cfg.Store.SQLitePath
		if dsn == "" {
			dsn = "brand_audit.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// requireStore is initStore for commands that cannot run without persistence.
func requireStore(ctx context.Context) (store.Store, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, eris.New("this command requires a store; set store.driver to sqlite or postgres")
	}
	return st, nil
}
