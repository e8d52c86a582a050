package ledger_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/manifest-network/toyledger/internal/ledger"
	"github.com/manifest-network/toyledger/internal/models"
	"github.com/manifest-network/toyledger/internal/store"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Load(ctx context.Context) ([]*models.Block, error) {
	args := m.Called(ctx)
	blocks, _ := args.Get(0).([]*models.Block)
	return blocks, args.Error(1)
}

func (m *mockStore) Save(ctx context.Context, blocks []*models.Block) error {
	args := m.Called(ctx, blocks)
	return args.Error(0)
}

func (m *mockStore) Close() error {
	return m.Called().Error(0)
}

func transfer(from, to string, amount float64) models.Transaction {
	return models.Transaction{FromAddress: models.Address(from), ToAddress: to, Amount: amount}
}

func mustAdd(t *testing.T, l *ledger.Ledger, tx models.Transaction) *models.Block {
	t.Helper()
	b, err := l.AddTransaction(tx)
	require.NoError(t, err)
	return b
}

func TestNewLedger(t *testing.T) {
	l := ledger.New(nil)
	require.Equal(t, 1, l.Len())
	assert.True(t, l.Tip().IsGenesis())

	assert.Zero(t, l.Balance("anyone"))
	history := l.History("anyone")
	assert.NotNil(t, history)
	assert.Len(t, history, 0)

	// The genesis recipient is the empty address with a zero amount
	assert.Zero(t, l.Balance(""))
	assert.Len(t, l.History(""), 1)
}

func TestAddTransaction(t *testing.T) {
	l := ledger.New(nil)

	for i := 0; i < 5; i++ {
		prevTip := l.Tip()
		b := mustAdd(t, l, transfer("alice", "bob", float64(i)))
		assert.Equal(t, prevTip.Hash(), b.PrevHash)
		assert.Same(t, b, l.Tip())
	}

	assert.Equal(t, 6, l.Len())
	blocks := l.Blocks()
	for i := 1; i < len(blocks); i++ {
		assert.Equal(t, blocks[i-1].Hash(), blocks[i].PrevHash, "block %d", i)
	}
	assert.NoError(t, l.Verify())
}

func TestAddInvalidTransaction(t *testing.T) {
	l := ledger.New(nil)
	mustAdd(t, l, transfer("alice", "bob", 1))

	_, err := l.AddTransaction(models.Transaction{FromAddress: models.Address("alice"), Amount: 1})
	require.ErrorIs(t, err, models.ErrInvalidTransaction)
	assert.Equal(t, 2, l.Len())
}

func TestBalanceAndHistory(t *testing.T) {
	l := ledger.New(nil)
	first := transfer("alice", "bob", 100)
	second := transfer("bob", "alice", 30)
	mustAdd(t, l, first)
	mustAdd(t, l, second)

	assert.Equal(t, -70.0, l.Balance("alice"))
	assert.Equal(t, 70.0, l.Balance("bob"))
	assert.Equal(t, []models.Transaction{first, second}, l.History("alice"))
	assert.Equal(t, []models.Transaction{first, second}, l.History("bob"))

	// Repeated queries are stable
	assert.Equal(t, l.Balance("alice"), l.Balance("alice"))
	assert.Equal(t, l.History("alice"), l.History("alice"))
}

func TestBalanceFold(t *testing.T) {
	l := ledger.New(nil)
	txs := []models.Transaction{
		models.Mint("alice", 50),
		transfer("alice", "bob", 20),
		transfer("carol", "alice", 5.5),
		transfer("alice", "alice", 1000),
		transfer("bob", "carol", 7),
		transfer("alice", "dave", -3),
		transfer("alice", "bob", 0),
	}
	for _, tx := range txs {
		mustAdd(t, l, tx)
	}

	for _, addr := range []string{"alice", "bob", "carol", "dave", "erin"} {
		var want float64
		for _, tx := range txs {
			if tx.ToAddress == addr {
				want += tx.Amount
			}
			if tx.FromAddress != nil && *tx.FromAddress == addr {
				want -= tx.Amount
			}
		}
		assert.InDelta(t, want, l.Balance(addr), 1e-9, addr)
	}

	// Self transfers net to zero and appear once in the history
	selfOnly := ledger.New(nil)
	mustAdd(t, selfOnly, transfer("alice", "alice", 10))
	assert.Zero(t, selfOnly.Balance("alice"))
	assert.Len(t, selfOnly.History("alice"), 1)
}

func TestStats(t *testing.T) {
	l := ledger.New(nil)
	mustAdd(t, l, models.Mint("alice", 50))
	mustAdd(t, l, models.Mint("bob", 25))
	mustAdd(t, l, transfer("alice", "carol", 10))

	stats := l.Stats()
	assert.Equal(t, ledger.Stats{Blocks: 4, Transactions: 3, UniqueAddresses: 3, TotalMinted: 75}, stats)
}

func TestVerifyDetectsBrokenLink(t *testing.T) {
	s := &mockStore{}
	genesis := models.Genesis(time.UnixMilli(1))
	broken := &models.Block{PrevHash: "1", Transaction: models.Mint("bob", 1), Timestamp: 2, Nonce: 3}
	s.On("Load", mock.Anything).Return([]*models.Block{genesis, broken}, nil)

	l := ledger.New(s)
	ok, err := l.Load(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	err = l.Verify()
	require.ErrorIs(t, err, ledger.ErrBrokenLink)
	assert.ErrorContains(t, err, "block 1")
	s.AssertExpectations(t)
}

func TestWithHasher(t *testing.T) {
	constant := models.HasherFunc(func(*models.Block) string { return "fixed" })
	l := ledger.New(nil, ledger.WithHasher(constant))

	b := mustAdd(t, l, models.Mint("bob", 1))
	assert.Equal(t, "fixed", b.PrevHash)
	assert.Equal(t, "fixed", l.Hash(b))
	assert.NoError(t, l.Verify())
}

func TestWithClock(t *testing.T) {
	at := time.UnixMilli(1700000000000)
	l := ledger.New(nil, ledger.WithClock(func() time.Time { return at }))

	b := mustAdd(t, l, models.Mint("bob", 1))
	assert.Equal(t, at.UnixMilli(), b.Timestamp)
	assert.Equal(t, at.UnixMilli(), l.Blocks()[0].Timestamp)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "blockchain.json")
	ctx := context.Background()

	l := ledger.New(store.NewFileStore(path))
	mustAdd(t, l, transfer("alice", "bob", 100))
	mustAdd(t, l, models.Mint("carol", 12.5))
	mustAdd(t, l, transfer("bob", "alice", 30))

	ok, err := l.Save(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	fresh := ledger.New(store.NewFileStore(path))
	ok, err = fresh.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	before, after := l.Blocks(), fresh.Blocks()
	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].Transaction, after[i].Transaction)
		assert.Equal(t, before[i].Hash(), after[i].Hash())
	}
	assert.NoError(t, fresh.Verify())
	assert.Equal(t, l.Balance("alice"), fresh.Balance("alice"))
}

func TestLoadFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("MissingFile", func(t *testing.T) {
		l := ledger.New(store.NewFileStore(filepath.Join(t.TempDir(), "missing.json")))
		mustAdd(t, l, transfer("alice", "bob", 1))

		ok, err := l.Load(ctx)
		assert.False(t, ok)
		require.ErrorIs(t, err, ledger.ErrLoadFailed)
		assert.ErrorIs(t, err, os.ErrNotExist)
		assert.Equal(t, 1, l.Len())
		assert.True(t, l.Tip().IsGenesis())
	})

	t.Run("CorruptFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "blockchain.json")
		require.NoError(t, os.WriteFile(path, []byte(`[{"prevHash": 12}`), 0644))

		l := ledger.New(store.NewFileStore(path))
		ok, err := l.Load(ctx)
		assert.False(t, ok)
		require.ErrorIs(t, err, store.ErrMalformedChain)
		assert.Equal(t, 1, l.Len())
	})

	t.Run("EmptyStore", func(t *testing.T) {
		s := &mockStore{}
		s.On("Load", mock.Anything).Return([]*models.Block{}, nil)

		l := ledger.New(s)
		ok, err := l.Load(ctx)
		assert.False(t, ok)
		require.ErrorIs(t, err, store.ErrNoChain)
		assert.Equal(t, 1, l.Len())
	})

	t.Run("NoStore", func(t *testing.T) {
		l := ledger.New(nil)
		ok, err := l.Load(ctx)
		assert.False(t, ok)
		require.ErrorIs(t, err, ledger.ErrLoadFailed)
		assert.Equal(t, 1, l.Len())
	})
}

func TestSaveFailureKeepsChain(t *testing.T) {
	s := &mockStore{}
	s.On("Save", mock.Anything, mock.Anything).Return(errors.New("read-only file system"))

	l := ledger.New(s)
	mustAdd(t, l, transfer("alice", "bob", 1))

	ok, err := l.Save(context.Background())
	assert.False(t, ok)
	require.ErrorIs(t, err, ledger.ErrSaveFailed)
	assert.Equal(t, 2, l.Len())
	s.AssertExpectations(t)
}

func TestInit(t *testing.T) {
	ctx := context.Background()

	t.Run("GenesisFallback", func(t *testing.T) {
		l, err := ledger.Init(ctx, store.NewFileStore(filepath.Join(t.TempDir(), "blockchain.json")))
		require.NoError(t, err)
		assert.Equal(t, 1, l.Len())
	})

	t.Run("UnexpectedStoreError", func(t *testing.T) {
		s := &mockStore{}
		s.On("Load", mock.Anything).Return(nil, errors.New("permission denied"))

		_, err := ledger.Init(ctx, s)
		require.ErrorIs(t, err, ledger.ErrLoadFailed)
	})

	t.Run("CloseSavesAndCloses", func(t *testing.T) {
		s := &mockStore{}
		s.On("Load", mock.Anything).Return(nil, store.ErrNoChain)
		s.On("Save", mock.Anything, mock.MatchedBy(func(blocks []*models.Block) bool { return len(blocks) == 2 })).Return(nil)
		s.On("Close").Return(nil)

		l, err := ledger.Init(ctx, s)
		require.NoError(t, err)
		mustAdd(t, l, models.Mint("bob", 1))
		require.NoError(t, l.Close(ctx))
		s.AssertExpectations(t)
	})
}

func TestConcurrentAppends(t *testing.T) {
	l := ledger.New(nil)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.AddTransaction(models.Mint("bob", 1))
			assert.NoError(t, err)
			_ = l.Balance("bob")
		}()
	}
	wg.Wait()

	assert.Equal(t, 51, l.Len())
	assert.Equal(t, 50.0, l.Balance("bob"))
	assert.NoError(t, l.Verify())
}
