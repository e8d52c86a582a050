package models

import (
	"math/rand/v2"
	"time"
)

// MaxNonce is the upper bound (inclusive) of a block nonce.
const MaxNonce = 999_999_999

// Block binds one transaction to the hash of the block preceding it.
// The hash itself is never stored, it is always derived from the other fields.
type Block struct {
	PrevHash    string      `json:"prevHash"`
	Transaction Transaction `json:"transaction"`
	Timestamp   int64       `json:"timestamp"`
	Nonce       int64       `json:"nonce"`
}

// NewBlock creates a block with a random nonce. A zero timestamp means now.
func NewBlock(prevHash string, tx Transaction, timestamp time.Time) *Block {
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	return &Block{
		PrevHash:    prevHash,
		Transaction: tx,
		Timestamp:   timestamp.UnixMilli(),
		Nonce:       rand.Int64N(MaxNonce + 1),
	}
}

// Genesis returns the first block of every chain.
func Genesis(timestamp time.Time) *Block {
	return NewBlock("", Mint("", 0), timestamp)
}

// IsGenesis reports whether the block has the genesis shape.
func (b *Block) IsGenesis() bool {
	return b.PrevHash == "" && b.Transaction.IsMint() && b.Transaction.ToAddress == "" && b.Transaction.Amount == 0
}

// Hash derives the block hash with the default hasher.
func (b *Block) Hash() string {
	return DefaultHasher.Hash(b)
}

func (b *Block) Time() time.Time {
	return time.UnixMilli(b.Timestamp)
}
