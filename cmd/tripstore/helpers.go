// Shared helpers for tripstore CLI commands.
package main

import (
	"database/sql"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/fernwind/tripstore/internal/store"
	"github.com/fernwind/tripstore/pkg/types"
)

// openStore resolves the data directory and opens the store, applying any
// pending migrations. The caller must defer st.Close().
func openStore() (*store.Store, error) {
	cfg, err := storeConfig()
	if err != nil {
		return nil, err
	}

	st := store.New()
	if err := st.Open(cfg); err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// openRawDB opens the database without applying migrations, for commands
// that inspect migration state before changing it. The caller must defer
// db.Close().
func openRawDB() (*sql.DB, error) {
	cfg, err := storeConfig()
	if err != nil {
		return nil, err
	}
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	db, err := sql.Open("sqlite", filepath.Join(dataDir, cfg.File()))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

func storeConfig() (types.Config, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return types.Config{}, fmt.Errorf("resolve data dir: %w", err)
	}
	return types.Config{DataDir: dataDir, DBFileName: configDBFile}, nil
}
