package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/manifest-network/toyledger/internal/models"
)

const invalidRequestMsg = `Invalid request data. Make sure to include "to" as a string and "amount" as a number; "from" is an optional string.`

// transactionRequest is the body of POST /transaction. A missing or null
// "from" submits a mint.
type transactionRequest struct {
	From   *string  `json:"from"`
	To     *string  `json:"to"`
	Amount *float64 `json:"amount"`
}

type historyResponse struct {
	Transactions []models.Transaction `json:"transactions"`
}

type balanceResponse struct {
	Balance float64 `json:"balance"`
}

type errorResponse struct {
	Error string `json:"error"`
}

var errInvalidRequest = errors.New(invalidRequestMsg)

func decodeTransactionRequest(r io.Reader) (models.Transaction, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var req transactionRequest
	if err := dec.Decode(&req); err != nil {
		return models.Transaction{}, fmt.Errorf("%w (%s)", errInvalidRequest, err.Error())
	}

	switch {
	case req.To == nil || *req.To == "":
		return models.Transaction{}, errInvalidRequest
	case req.Amount == nil:
		return models.Transaction{}, errInvalidRequest
	case req.From != nil && *req.From == "":
		return models.Transaction{}, errInvalidRequest
	}

	return models.NewTransaction(req.From, *req.To, *req.Amount)
}
