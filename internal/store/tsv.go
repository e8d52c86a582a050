package store

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/manifest-network/toyledger/internal/models"
)

const blocksTSV = "blocks.tsv"

// tsvEscaper keeps arbitrary address text inside a single field.
var tsvEscaper = strings.NewReplacer(`\`, `\\`, "\t", `\t`, "\n", `\n`, "\r", `\r`)

// TSVExporter writes a chain as tab separated values, one block per line,
// including the derived hash of every block.
type TSVExporter struct {
	file   *os.File
	writer *bufio.Writer
	hasher models.Hasher
}

func NewTSVExporter(outDir string, hasher models.Hasher) (*TSVExporter, error) {
	err := os.MkdirAll(outDir, 0755)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create output directory")
	}

	file, err := os.Create(filepath.Join(outDir, blocksTSV))
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create blocks TSV file")
	}

	if hasher == nil {
		hasher = models.DefaultHasher
	}

	return &TSVExporter{
		file:   file,
		writer: bufio.NewWriter(file),
		hasher: hasher,
	}, nil
}

func (e *TSVExporter) WriteHeader() error {
	_, err := e.writer.WriteString("height\thash\tprev_hash\tfrom\tto\tamount\ttimestamp\tnonce\n")
	return err
}

func (e *TSVExporter) WriteBlock(height int, block *models.Block) error {
	line := fmt.Sprintf("%d\t%s\t%s\t%s\t%s\t%s\t%d\t%d\n",
		height,
		e.hasher.Hash(block),
		tsvEscaper.Replace(block.PrevHash),
		tsvEscaper.Replace(block.Transaction.From()),
		tsvEscaper.Replace(block.Transaction.ToAddress),
		strconv.FormatFloat(block.Transaction.Amount, 'f', -1, 64),
		block.Timestamp,
		block.Nonce,
	)
	_, err := e.writer.WriteString(line)
	return err
}

// Export writes the header and every block.
func (e *TSVExporter) Export(blocks []*models.Block) error {
	if err := e.WriteHeader(); err != nil {
		return errors.WithMessage(err, "failed to write TSV header")
	}
	for i, b := range blocks {
		if err := e.WriteBlock(i, b); err != nil {
			return errors.WithMessagef(err, "failed to write block %d", i)
		}
	}
	return nil
}

func (e *TSVExporter) Close() error {
	if err := e.writer.Flush(); err != nil {
		slog.Error("failed to flush block writer", "error", err)
		return err
	}
	if err := e.file.Close(); err != nil {
		slog.Error("failed to close block file", "error", err)
		return err
	}
	return nil
}
