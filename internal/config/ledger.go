package config

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/viper"
)

const (
	StoreFile     = "file"
	StorePostgres = "postgres"
)

// LedgerConfig selects where the chain is persisted.
type LedgerConfig struct {
	Store        string
	DataFile     string
	PostgresConn string
}

func (c LedgerConfig) Validate() error {
	switch c.Store {
	case StoreFile:
		if c.DataFile == "" {
			return fmt.Errorf("missing data file path")
		}
	case StorePostgres:
		if c.PostgresConn == "" {
			return fmt.Errorf("missing PostgreSQL connection string")
		}
		if _, err := pgxpool.ParseConfig(c.PostgresConn); err != nil {
			return fmt.Errorf("failed to parse PostgreSQL connection string: %w", err)
		}
	default:
		return fmt.Errorf("invalid store: %s. Valid stores are: %s|%s", c.Store, StoreFile, StorePostgres)
	}
	return nil
}

func LoadLedgerConfigFromCLI() LedgerConfig {
	return LedgerConfig{
		Store:        viper.GetString("store"),
		DataFile:     viper.GetString("data-file"),
		PostgresConn: viper.GetString("postgres-conn"),
	}
}
