package profile

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"

	"langid/internal/ngram"
)

// Digest is a SHA-256 fingerprint of a store's canonical contents.
type Digest [32]byte

// String returns the hex form.
func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// Short returns the first 12 hex digits.
func (d Digest) Short() string { return d.String()[:12] }

// IsZero reports whether d was never computed.
func (d Digest) IsZero() bool { return d == Digest{} }

// digestOf hashes codes, names and every (n-gram, frequency bits) pair in
// sorted order. langs must already be sorted by code.
func digestOf(langs []*LanguageProfile) Digest {
	h := sha256.New()
	var buf [8]byte
	writeString := func(s string) {
		_, _ = h.Write([]byte(s))
		_, _ = h.Write([]byte{0})
	}
	writeString("langid-profiles")
	for _, p := range langs {
		writeString(p.code)
		writeString(p.name)
		for order := ngram.MinOrder; order <= ngram.MaxOrder; order++ {
			binary.BigEndian.PutUint64(buf[:], uint64(len(p.keys[order-1])))
			_, _ = h.Write(buf[:])
			p.Each(order, func(gram string, freq float64) bool {
				writeString(gram)
				binary.BigEndian.PutUint64(buf[:], math.Float64bits(freq))
				_, _ = h.Write(buf[:])
				return true
			})
		}
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}
