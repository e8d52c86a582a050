package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/manifest-network/toyledger/internal/models"
	"github.com/manifest-network/toyledger/internal/store"
)

var (
	ErrLoadFailed = errors.New("failed to load chain")
	ErrSaveFailed = errors.New("failed to save chain")
	ErrBrokenLink = errors.New("broken chain link")
)

// Ledger is an append-only chain of blocks, each holding one transaction.
// Appends, loads and saves take the write lock; queries take the read lock.
type Ledger struct {
	mu     sync.RWMutex
	chain  []*models.Block
	store  store.Store
	hasher models.Hasher
	now    func() time.Time
}

type Option func(*Ledger)

// WithHasher replaces the hasher used to link blocks.
func WithHasher(h models.Hasher) Option {
	return func(l *Ledger) {
		l.hasher = h
	}
}

// WithClock replaces the clock used to timestamp new blocks.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// New returns a ledger holding only the genesis block. The store may be nil
// for a ledger that is never persisted.
func New(s store.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:  s,
		hasher: models.DefaultHasher,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.chain = []*models.Block{l.genesis()}
	return l
}

// Init builds a ledger and loads it from the store. An empty or unreadable
// chain leaves the ledger at genesis and is only logged. A returned error means
// the store itself is unusable and the caller should not continue.
func Init(ctx context.Context, s store.Store, opts ...Option) (*Ledger, error) {
	l := New(s, opts...)
	if _, err := l.Load(ctx); err != nil && !store.IsExpectedLoadError(err) {
		return nil, err
	}
	return l, nil
}

// Close saves the chain and closes the store.
func (l *Ledger) Close(ctx context.Context) error {
	_, saveErr := l.Save(ctx)
	if l.store == nil {
		return saveErr
	}
	return errors.Join(saveErr, l.store.Close())
}

func (l *Ledger) genesis() *models.Block {
	return models.Genesis(l.now())
}

// Load replaces the chain with the stored one. On failure the ledger is reset
// to a genesis-only chain and false is returned with an error wrapping ErrLoadFailed.
func (l *Ledger) Load(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.store == nil {
		l.chain = []*models.Block{l.genesis()}
		return false, fmt.Errorf("%w: no store configured", ErrLoadFailed)
	}

	blocks, err := l.store.Load(ctx)
	if err == nil && len(blocks) == 0 {
		err = store.ErrNoChain
	}
	if err != nil {
		slog.Error("Error loading blockchain data, starting from genesis", "error", err)
		l.chain = []*models.Block{l.genesis()}
		return false, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	l.chain = blocks
	slog.Info("Blockchain data loaded", "blocks", len(blocks))
	return true, nil
}

// Save writes the full chain to the store. The in-memory chain is never
// modified, whatever the outcome.
func (l *Ledger) Save(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.store == nil {
		return false, fmt.Errorf("%w: no store configured", ErrSaveFailed)
	}

	if err := l.store.Save(ctx, l.chain); err != nil {
		slog.Error("Error saving blockchain data", "error", err)
		return false, fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	return true, nil
}

// AddTransaction wraps tx in a new block linked to the current tip. Invalid
// transactions are rejected before the chain is touched. Balances are not
// checked: senders may go negative.
func (l *Ledger) AddTransaction(tx models.Transaction) (*models.Block, error) {
	if err := tx.Validate(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	tip := l.chain[len(l.chain)-1]
	block := models.NewBlock(l.hasher.Hash(tip), tx, l.now())
	l.chain = append(l.chain, block)

	slog.Debug("Transaction added", "height", len(l.chain)-1, "to", tx.ToAddress, "amount", tx.Amount)
	return block, nil
}

// Balance returns the sum received by address minus the sum it sent.
func (l *Ledger) Balance(address string) float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var balance float64
	for _, b := range l.chain {
		tx := b.Transaction
		if tx.SentBy(address) {
			balance -= tx.Amount
		}
		if tx.ToAddress == address {
			balance += tx.Amount
		}
	}
	return balance
}

// History returns, in chain order, every transaction sent or received by address.
func (l *Ledger) History(address string) []models.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	history := make([]models.Transaction, 0)
	for _, b := range l.chain {
		if b.Transaction.Involves(address) {
			history = append(history, b.Transaction)
		}
	}
	return history
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.chain)
}

func (l *Ledger) Tip() *models.Block {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.chain[len(l.chain)-1]
}

// Blocks returns a copy of the chain. Blocks are shared and must not be modified.
func (l *Ledger) Blocks() []*models.Block {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*models.Block, len(l.chain))
	copy(out, l.chain)
	return out
}

// Hash derives the hash of a block with the ledger's hasher.
func (l *Ledger) Hash(b *models.Block) string {
	return l.hasher.Hash(b)
}

// Verify walks the chain and reports the first block whose prevHash does not
// match the hash of its predecessor.
func (l *Ledger) Verify() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return VerifyLinks(l.chain, l.hasher, nil)
}

// VerifyLinks checks that the first block has no predecessor and that every
// other block references the hash of the one before it. visit, if set, is
// called with the index of each block that passed.
func VerifyLinks(blocks []*models.Block, h models.Hasher, visit func(i int)) error {
	for i, b := range blocks {
		want := ""
		if i > 0 {
			want = h.Hash(blocks[i-1])
		}
		if b.PrevHash != want {
			return fmt.Errorf("%w: block %d has prevHash %q, expected %q", ErrBrokenLink, i, b.PrevHash, want)
		}
		if visit != nil {
			visit(i)
		}
	}
	return nil
}
