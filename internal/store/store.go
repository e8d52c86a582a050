package store

import (
	"context"
	"errors"
	"os"

	"github.com/manifest-network/toyledger/internal/models"
)

// ErrNoChain is returned by stores that hold no chain yet.
var ErrNoChain = errors.New("no chain stored")

// IsExpectedLoadError reports whether a Load error is part of normal operation:
// nothing stored yet, or stored data that cannot be decoded. Anything else
// points at a broken environment.
func IsExpectedLoadError(err error) bool {
	return errors.Is(err, os.ErrNotExist) || errors.Is(err, ErrNoChain) || errors.Is(err, ErrMalformedChain)
}

// Store persists the full block sequence of a ledger.
type Store interface {
	Load(ctx context.Context) ([]*models.Block, error)
	Save(ctx context.Context, blocks []*models.Block) error
	Close() error
}
