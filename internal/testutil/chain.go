package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/manifest-network/toyledger/internal/models"
	"github.com/manifest-network/toyledger/internal/store"
)

// Chain builds a correctly linked chain holding txs after a genesis block.
func Chain(txs ...models.Transaction) []*models.Block {
	blocks := []*models.Block{models.Genesis(time.UnixMilli(1))}
	for i, tx := range txs {
		prev := blocks[len(blocks)-1]
		blocks = append(blocks, models.NewBlock(prev.Hash(), tx, time.UnixMilli(int64(i+2))))
	}
	return blocks
}

// WriteChain saves blocks to a chain file at path.
func WriteChain(t *testing.T, path string, blocks []*models.Block) {
	t.Helper()
	if err := store.NewFileStore(path).Save(context.Background(), blocks); err != nil {
		t.Fatalf("failed to write chain file: %v", err)
	}
}
