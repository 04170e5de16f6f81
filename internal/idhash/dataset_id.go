// Package idhash derives deterministic dataset fingerprints.
package idhash

import (
	"crypto/sha256"
	"fmt"
	"sort"

	"github.com/mr-tron/base58"

	"power-vol-lab/internal/frame"
)

// FingerprintLen is the length of the base58 fingerprint prefix.
const FingerprintLen = 16

// DatasetFingerprint computes a deterministic fingerprint of a frame using
// SHA256 over the sorted (id, day, country) row keys followed by the column
// list in frame order. Two frames with the same rows and columns always get
// the same fingerprint regardless of row order.
// Returns a base58-encoded prefix of FingerprintLen characters.
func DatasetFingerprint(df *frame.Frame) string {
	keys := make([]string, 0, df.Len())
	for i := 0; i < df.Len(); i++ {
		keys = append(keys, fmt.Sprintf("%d|%s|%s", df.ID(i), df.Day(i).Key(), df.Country(i)))
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		h.Write([]byte(k))
		h.Write([]byte{'\n'})
	}
	for _, col := range df.Columns() {
		h.Write([]byte(col))
		h.Write([]byte{'\n'})
	}

	encoded := base58.Encode(h.Sum(nil))
	if len(encoded) > FingerprintLen {
		encoded = encoded[:FingerprintLen]
	}
	return encoded
}
