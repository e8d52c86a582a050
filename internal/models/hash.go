package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"unicode/utf16"
)

// Hasher derives the link hash of a block.
type Hasher interface {
	Hash(b *Block) string
}

// HasherFunc adapts a function to the Hasher interface.
type HasherFunc func(b *Block) string

func (f HasherFunc) Hash(b *Block) string {
	return f(b)
}

// DefaultHasher is used by Block.Hash and by ledgers built without an explicit hasher.
var DefaultHasher Hasher = AdditiveHasher{}

// AdditiveHasher sums the UTF-16 code units of the block's canonical JSON form.
// It is a structural checksum, not a cryptographic digest: collisions are trivial to build.
// encoding/json escapes U+2028 and U+2029 and replaces invalid UTF-8, so addresses
// containing those hash differently from a plain JSON.stringify rendering.
type AdditiveHasher struct{}

func (AdditiveHasher) Hash(b *Block) string {
	var sum uint64
	for _, unit := range utf16.Encode([]rune(string(CanonicalJSON(b)))) {
		sum += uint64(unit)
	}
	return strconv.FormatUint(sum, 10)
}

// CanonicalJSON serializes the block as compact JSON with a fixed field order
// (prevHash, transaction{fromAddress, toAddress, amount}, timestamp, nonce) and
// without HTML escaping, so that hashes match chains written by earlier versions.
func CanonicalJSON(b *Block) []byte {
	c := *b
	if c.Transaction.Amount == 0 {
		// -0 would otherwise encode as "-0"
		c.Transaction.Amount = 0
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Block only holds strings and finite numbers, encoding cannot fail for validated blocks.
	if err := enc.Encode(&c); err != nil {
		return nil
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
}
