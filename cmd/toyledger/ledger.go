package toyledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/manifest-network/toyledger/internal/config"
	"github.com/manifest-network/toyledger/internal/ledger"
	"github.com/manifest-network/toyledger/internal/store"
	"github.com/manifest-network/toyledger/internal/store/postgresql"
)

// openStore builds the store selected by the ledger configuration.
func openStore(ctx context.Context, cfg config.LedgerConfig) (store.Store, error) {
	switch cfg.Store {
	case config.StorePostgres:
		s, err := postgresql.NewStore(ctx, cfg.PostgresConn)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return store.NewFileStore(cfg.DataFile), nil
	}
}

// openLedger loads the configured ledger. Missing or corrupt data starts a
// fresh chain; an unusable store is an error.
func openLedger(ctx context.Context) (*ledger.Ledger, store.Store, error) {
	cfg := config.LoadLedgerConfigFromCLI()
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid ledger configuration: %w", err)
	}
	slog.Debug("Ledger configuration", "config", cfg)

	s, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open store: %w", err)
	}

	l, err := ledger.Init(ctx, s)
	if err != nil {
		s.Close()
		return nil, nil, fmt.Errorf("failed to initialize ledger: %w", err)
	}
	return l, s, nil
}

// closeStore releases a store opened for a read-only command.
func closeStore(s store.Store) {
	if err := s.Close(); err != nil {
		slog.Error("Failed to close store", "error", err)
	}
}
