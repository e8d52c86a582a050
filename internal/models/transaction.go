package models

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidTransaction = errors.New("invalid transaction")

// Transaction represents a transfer of value from one address to another.
// A nil FromAddress marks a mint transaction with no debited sender.
type Transaction struct {
	FromAddress *string `json:"fromAddress"`
	ToAddress   string  `json:"toAddress"`
	Amount      float64 `json:"amount"`
}

// NewTransaction builds a transaction and checks the fields the ledger relies on.
func NewTransaction(from *string, to string, amount float64) (Transaction, error) {
	tx := Transaction{FromAddress: from, ToAddress: to, Amount: amount}
	if err := tx.Validate(); err != nil {
		return Transaction{}, err
	}
	return tx, nil
}

// Mint returns a transaction without a sender.
func Mint(to string, amount float64) Transaction {
	return Transaction{ToAddress: to, Amount: amount}
}

func (t Transaction) Validate() error {
	if t.ToAddress == "" {
		return fmt.Errorf("%w: missing recipient address", ErrInvalidTransaction)
	}
	if math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) {
		return fmt.Errorf("%w: amount must be a finite number", ErrInvalidTransaction)
	}
	return nil
}

func (t Transaction) IsMint() bool {
	return t.FromAddress == nil
}

// From returns the sender address, or "" for a mint.
func (t Transaction) From() string {
	if t.FromAddress == nil {
		return ""
	}
	return *t.FromAddress
}

func (t Transaction) SentBy(address string) bool {
	return t.FromAddress != nil && *t.FromAddress == address
}

func (t Transaction) Involves(address string) bool {
	return t.SentBy(address) || t.ToAddress == address
}

// Address is a convenience for building optional sender addresses.
func Address(s string) *string {
	return &s
}
