package postgresql

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/manifest-network/toyledger/internal/models"
	"github.com/manifest-network/toyledger/internal/store"
)

//go:embed migrations/*
var migrationsFS embed.FS

const (
	LoadBlocksQuery = `
		SELECT prev_hash, from_address, to_address, amount, timestamp_ms, nonce
		FROM ledger.blocks
		ORDER BY height ASC
	`
	DeleteBlocksQuery = `DELETE FROM ledger.blocks`
	InsertBlockQuery  = `
		INSERT INTO ledger.blocks (height, prev_hash, from_address, to_address, amount, timestamp_ms, nonce)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
)

// Store keeps the chain in the ledger.blocks table, one row per block.
type Store struct {
	pool *pgxpool.Pool
	db   *sql.DB
}

// NewStore connects to PostgreSQL and applies the schema migrations.
func NewStore(ctx context.Context, connString string) (*Store, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PostgreSQL connection string: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach PostgreSQL: %w", err)
	}

	s := &Store{
		pool: pool,
		db:   stdlib.OpenDBFromPool(pool),
	}

	// Run migrations. This is idempotent.
	if err = s.runMigrations(); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

// NewStoreFromDB wraps an existing database handle. Migrations are not run.
func NewStoreFromDB(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Load(ctx context.Context) ([]*models.Block, error) {
	rows, err := s.db.QueryContext(ctx, LoadBlocksQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query blocks: %w", err)
	}
	defer rows.Close()

	var blocks []*models.Block
	for rows.Next() {
		var (
			b    models.Block
			from sql.NullString
		)
		if err := rows.Scan(&b.PrevHash, &from, &b.Transaction.ToAddress, &b.Transaction.Amount, &b.Timestamp, &b.Nonce); err != nil {
			return nil, fmt.Errorf("failed to scan block: %w", err)
		}
		if from.Valid {
			b.Transaction.FromAddress = models.Address(from.String)
		}
		blocks = append(blocks, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read blocks: %w", err)
	}

	if len(blocks) == 0 {
		return nil, store.ErrNoChain
	}
	return blocks, nil
}

// Save replaces the stored chain inside a single SQL transaction.
func (s *Store) Save(ctx context.Context, blocks []*models.Block) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Ensure rollback if commit is not reached

	if _, err = tx.ExecContext(ctx, DeleteBlocksQuery); err != nil {
		return fmt.Errorf("failed to clear blocks: %w", err)
	}

	for height, b := range blocks {
		var from sql.NullString
		if b.Transaction.FromAddress != nil {
			from = sql.NullString{String: *b.Transaction.FromAddress, Valid: true}
		}
		_, err = tx.ExecContext(ctx, InsertBlockQuery,
			height, b.PrevHash, from, b.Transaction.ToAddress, b.Transaction.Amount, b.Timestamp, b.Nonce)
		if err != nil {
			return fmt.Errorf("failed to write block %d: %w", height, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (s *Store) runMigrations() error {
	slog.Info("Running PostgreSQL migrations...")

	d, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	driver, err := migratepgx.WithInstance(stdlib.OpenDBFromPool(s.pool), &migratepgx.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", d, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}
	defer m.Close()

	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func (s *Store) Close() error {
	slog.Info("Closing PostgreSQL connection pool")
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	if s.pool != nil {
		s.pool.Close()
	}
	slog.Info("PostgreSQL connection pool closed")
	return nil
}
