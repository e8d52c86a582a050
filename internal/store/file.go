package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/manifest-network/toyledger/internal/models"
)

// ErrMalformedChain is returned when a chain file does not have the expected shape.
var ErrMalformedChain = errors.New("malformed chain data")

// FileStore keeps the chain as a JSON array in a single file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

// fileTransaction and fileBlock mirror the persisted layout. Pointers let Load
// tell a missing field apart from a zero value.
type fileTransaction struct {
	FromAddress *string  `json:"fromAddress"`
	ToAddress   *string  `json:"toAddress"`
	Amount      *float64 `json:"amount"`
}

type fileBlock struct {
	PrevHash    *string          `json:"prevHash"`
	Transaction *fileTransaction `json:"transaction"`
	Timestamp   *int64           `json:"timestamp"`
	Nonce       *int64           `json:"nonce"`
	// Hash is accepted for files written by other tools and never trusted.
	Hash *string `json:"hash,omitempty"`
}

func (fb fileBlock) toModel(i int) (*models.Block, error) {
	switch {
	case fb.PrevHash == nil:
		return nil, fmt.Errorf("%w: block %d: missing prevHash", ErrMalformedChain, i)
	case fb.Transaction == nil:
		return nil, fmt.Errorf("%w: block %d: missing transaction", ErrMalformedChain, i)
	case fb.Transaction.ToAddress == nil:
		return nil, fmt.Errorf("%w: block %d: missing transaction.toAddress", ErrMalformedChain, i)
	case fb.Transaction.Amount == nil:
		return nil, fmt.Errorf("%w: block %d: missing transaction.amount", ErrMalformedChain, i)
	case fb.Timestamp == nil:
		return nil, fmt.Errorf("%w: block %d: missing timestamp", ErrMalformedChain, i)
	case fb.Nonce == nil:
		return nil, fmt.Errorf("%w: block %d: missing nonce", ErrMalformedChain, i)
	}

	return &models.Block{
		PrevHash: *fb.PrevHash,
		Transaction: models.Transaction{
			FromAddress: fb.Transaction.FromAddress,
			ToAddress:   *fb.Transaction.ToAddress,
			Amount:      *fb.Transaction.Amount,
		},
		Timestamp: *fb.Timestamp,
		Nonce:     *fb.Nonce,
	}, nil
}

// Load reads and decodes the chain file.
func (s *FileStore) Load(_ context.Context) ([]*models.Block, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to open chain file")
	}
	defer f.Close()

	return DecodeChain(f)
}

// DecodeChain decodes a JSON chain document, rejecting anything but a non-empty
// array of well-formed blocks.
func DecodeChain(r io.Reader) ([]*models.Block, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var raw []fileBlock
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Wrap(ErrMalformedChain, err.Error())
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.WithMessage(ErrMalformedChain, "trailing data after chain")
	}
	if len(raw) == 0 {
		return nil, errors.WithMessage(ErrMalformedChain, "chain is empty")
	}

	blocks := make([]*models.Block, 0, len(raw))
	for i, fb := range raw {
		b, err := fb.toModel(i)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// EncodeChain writes blocks as a compact JSON array. Hashes are not written.
func EncodeChain(w io.Writer, blocks []*models.Block) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if blocks == nil {
		blocks = []*models.Block{}
	}
	return enc.Encode(blocks)
}

// Save replaces the chain file. The data goes to a temporary file in the same
// directory first, which is then renamed over the target.
func (s *FileStore) Save(_ context.Context, blocks []*models.Block) error {
	var buf bytes.Buffer
	if err := EncodeChain(&buf, blocks); err != nil {
		return errors.WithMessage(err, "failed to encode chain")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.WithMessage(err, "failed to create data directory")
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return errors.WithMessage(err, "failed to create temporary chain file")
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			if rmErr := os.Remove(tmpPath); rmErr != nil && !os.IsNotExist(rmErr) {
				slog.Warn("Failed to remove temporary chain file", "path", tmpPath, "error", rmErr)
			}
		}
	}()

	if _, err = tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return errors.WithMessage(err, "failed to write chain file")
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return errors.WithMessage(err, "failed to sync chain file")
	}
	if err = tmp.Close(); err != nil {
		return errors.WithMessage(err, "failed to close chain file")
	}
	if err = os.Chmod(tmpPath, 0644); err != nil {
		return errors.WithMessage(err, "failed to set chain file permissions")
	}
	if err = os.Rename(tmpPath, s.path); err != nil {
		return errors.WithMessage(err, "failed to replace chain file")
	}

	slog.Debug("Chain saved", "path", s.path, "blocks", len(blocks))
	return nil
}

func (s *FileStore) Close() error {
	return nil
}
