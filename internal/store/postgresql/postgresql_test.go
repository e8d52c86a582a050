package postgresql_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manifest-network/toyledger/internal/models"
	"github.com/manifest-network/toyledger/internal/store"
	"github.com/manifest-network/toyledger/internal/store/postgresql"
)

var blockColumns = []string{"prev_hash", "from_address", "to_address", "amount", "timestamp_ms", "nonce"}

func TestStoreLoad(t *testing.T) {
	t.Run("Blocks", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(postgresql.LoadBlocksQuery)).
			WillReturnRows(sqlmock.NewRows(blockColumns).
				AddRow("", nil, "", 0.0, int64(1), int64(11)).
				AddRow("8598", "alice", "bob", 100.0, int64(2), int64(22)))

		blocks, err := postgresql.NewStoreFromDB(db).Load(context.Background())
		require.NoError(t, err)
		require.Len(t, blocks, 2)
		assert.True(t, blocks[0].IsGenesis())
		assert.Equal(t, "8598", blocks[1].PrevHash)
		assert.Equal(t, "alice", blocks[1].Transaction.From())
		assert.Equal(t, "bob", blocks[1].Transaction.ToAddress)
		assert.Equal(t, 100.0, blocks[1].Transaction.Amount)
		assert.Equal(t, int64(22), blocks[1].Nonce)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(postgresql.LoadBlocksQuery)).
			WillReturnRows(sqlmock.NewRows(blockColumns))

		_, err = postgresql.NewStoreFromDB(db).Load(context.Background())
		require.ErrorIs(t, err, store.ErrNoChain)
		assert.True(t, store.IsExpectedLoadError(err))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("QueryError", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta(postgresql.LoadBlocksQuery)).
			WillReturnError(errors.New("connection refused"))

		_, err = postgresql.NewStoreFromDB(db).Load(context.Background())
		require.Error(t, err)
		assert.False(t, store.IsExpectedLoadError(err))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStoreSave(t *testing.T) {
	genesis := &models.Block{Transaction: models.Mint("", 0), Timestamp: 1, Nonce: 11}
	transfer := &models.Block{
		PrevHash:    genesis.Hash(),
		Transaction: models.Transaction{FromAddress: models.Address("alice"), ToAddress: "bob", Amount: 100},
		Timestamp:   2,
		Nonce:       22,
	}

	t.Run("Commit", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(postgresql.DeleteBlocksQuery)).
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec(regexp.QuoteMeta(postgresql.InsertBlockQuery)).
			WithArgs(0, "", nil, "", 0.0, int64(1), int64(11)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(postgresql.InsertBlockQuery)).
			WithArgs(1, genesis.Hash(), "alice", "bob", 100.0, int64(2), int64(22)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = postgresql.NewStoreFromDB(db).Save(context.Background(), []*models.Block{genesis, transfer})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RollbackOnInsertError", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(postgresql.DeleteBlocksQuery)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta(postgresql.InsertBlockQuery)).
			WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		err = postgresql.NewStoreFromDB(db).Save(context.Background(), []*models.Block{genesis})
		require.ErrorContains(t, err, "failed to write block 0")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
