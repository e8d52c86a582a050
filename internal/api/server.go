package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/manifest-network/toyledger/internal/models"
)

// Ledger is the subset of *ledger.Ledger the HTTP API needs.
type Ledger interface {
	AddTransaction(tx models.Transaction) (*models.Block, error)
	Balance(address string) float64
	History(address string) []models.Transaction
	Save(ctx context.Context) (bool, error)
}

// maxRequestBytes caps the size of a transaction request body.
const maxRequestBytes = 1 << 20

type Options struct {
	// SaveOnWrite persists the ledger after every accepted transaction.
	SaveOnWrite bool
}

type handler struct {
	ledger Ledger
	opts   Options
}

// NewHandler returns the HTTP routes of the ledger API.
func NewHandler(l Ledger, opts Options) http.Handler {
	h := &handler{ledger: l, opts: opts}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /transaction", h.handleAddTransaction)
	mux.HandleFunc("GET /transaction/{address}", h.handleHistory)
	mux.HandleFunc("GET /balance/{address}", h.handleBalance)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Route not found")
	})

	return recoverer(logRequests(mux))
}

// NewServer returns an HTTP server for the ledger API. The caller starts and stops it.
func NewServer(l Ledger, addr string, opts Options) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           NewHandler(l, opts),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func (h *handler) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := decodeTransactionRequest(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.ledger.AddTransaction(tx); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if h.opts.SaveOnWrite {
		// Failures are logged by the ledger; the transaction stays in memory.
		_, _ = h.ledger.Save(r.Context())
	}

	writeJSON(w, http.StatusCreated, tx)
}

func (h *handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, historyResponse{Transactions: h.ledger.History(r.PathValue("address"))})
}

func (h *handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, balanceResponse{Balance: h.ledger.Balance(r.PathValue("address"))})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("Request served", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("Unhandled error", "error", rec, "method", r.Method, "path", r.URL.Path)
				writeError(w, http.StatusInternalServerError, "Internal Server Error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
