package models_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manifest-network/toyledger/internal/models"
)

func TestCanonicalJSON(t *testing.T) {
	b := &models.Block{
		PrevHash:    "",
		Transaction: models.Transaction{FromAddress: models.Address("<a&b>"), ToAddress: "é", Amount: 1},
		Timestamp:   1,
		Nonce:       2,
	}
	assert.Equal(t,
		`{"prevHash":"","transaction":{"fromAddress":"<a&b>","toAddress":"é","amount":1},"timestamp":1,"nonce":2}`,
		string(models.CanonicalJSON(b)))

	b.Transaction.Amount = math.Copysign(0, -1)
	assert.Contains(t, string(models.CanonicalJSON(b)), `"amount":0,`)
}

func TestAdditiveHasher(t *testing.T) {
	tests := []struct {
		name  string
		block *models.Block
		want  string
	}{
		{
			name:  "Genesis",
			block: &models.Block{Transaction: models.Mint("", 0)},
			want:  "8598",
		},
		{
			name: "Transfer",
			block: &models.Block{
				PrevHash:    "8000",
				Transaction: models.Transaction{FromAddress: models.Address("alice"), ToAddress: "bob", Amount: 12.5},
				Timestamp:   1700000000000,
				Nonce:       42,
			},
			want: "10028",
		},
		{
			name:  "NoHTMLEscaping",
			block: &models.Block{Transaction: models.Transaction{FromAddress: models.Address("<a&b>"), ToAddress: "é", Amount: 1}, Timestamp: 1, Nonce: 2},
			want:  "8815",
		},
		{
			name:  "SurrogatePairs",
			block: &models.Block{Transaction: models.Mint("😀", -0.25), Timestamp: 5, Nonce: 7},
			want:  "120993",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, models.AdditiveHasher{}.Hash(tt.block))
			assert.Equal(t, tt.want, tt.block.Hash())
		})
	}
}

func TestHashChangesWithContent(t *testing.T) {
	b := &models.Block{PrevHash: "1", Transaction: models.Mint("bob", 10), Timestamp: 1, Nonce: 1}
	before := b.Hash()

	b.Nonce = 2
	assert.NotEqual(t, before, b.Hash())
	b.Nonce = 1
	assert.Equal(t, before, b.Hash())
}

func TestNewBlock(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	tx := models.Mint("bob", 5)
	b := models.NewBlock("abc", tx, now)
	assert.Equal(t, "abc", b.PrevHash)
	assert.Equal(t, tx, b.Transaction)
	assert.Equal(t, int64(1700000000123), b.Timestamp)
	assert.GreaterOrEqual(t, b.Nonce, int64(0))
	assert.LessOrEqual(t, b.Nonce, int64(models.MaxNonce))

	before := time.Now().UnixMilli()
	b = models.NewBlock("", tx, time.Time{})
	assert.GreaterOrEqual(t, b.Timestamp, before)
}

func TestGenesis(t *testing.T) {
	g := models.Genesis(time.Time{})
	assert.True(t, g.IsGenesis())
	assert.Empty(t, g.PrevHash)
	assert.True(t, g.Transaction.IsMint())
	assert.Empty(t, g.Transaction.ToAddress)
	assert.Zero(t, g.Transaction.Amount)
}

func TestNewTransaction(t *testing.T) {
	tx, err := models.NewTransaction(models.Address("alice"), "bob", 100)
	require.NoError(t, err)
	assert.True(t, tx.SentBy("alice"))
	assert.True(t, tx.Involves("bob"))
	assert.False(t, tx.Involves("carol"))
	assert.Equal(t, "alice", tx.From())

	mint, err := models.NewTransaction(nil, "bob", 1)
	require.NoError(t, err)
	assert.True(t, mint.IsMint())
	assert.False(t, mint.SentBy(""))
	assert.Empty(t, mint.From())

	_, err = models.NewTransaction(models.Address("alice"), "", 1)
	assert.ErrorIs(t, err, models.ErrInvalidTransaction)

	_, err = models.NewTransaction(nil, "bob", math.NaN())
	assert.ErrorIs(t, err, models.ErrInvalidTransaction)

	_, err = models.NewTransaction(nil, "bob", math.Inf(1))
	assert.ErrorIs(t, err, models.ErrInvalidTransaction)
}
