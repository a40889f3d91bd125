// Package profile holds the per-language n-gram fingerprints and loads them
// from model resources. A Store is immutable once built and safe for
// concurrent readers.
package profile

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"

	"langid/internal/ngram"
)

// Undetermined is the reserved code for "no language"; no profile may use it.
const Undetermined = "und"

// sumTolerance bounds how far a per-order frequency sum may stray from 1.
const sumTolerance = 1e-6

var (
	// ErrEmptyProfile indicates a profile without any n-gram.
	ErrEmptyProfile = errors.New("profile has no n-grams")
	// ErrReservedCode indicates an attempt to register the "und" code.
	ErrReservedCode = errors.New(`code "und" is reserved`)
)

// LanguageProfile is the n-gram fingerprint of one language.
type LanguageProfile struct {
	code   string
	name   string
	orders ngram.Orders
	keys   [ngram.MaxOrder][]string
	norms  [ngram.MaxOrder]float64
}

// CanonicalCode validates a language code and returns its canonical base
// subtag ("EN" and "eng" both become "en").
func CanonicalCode(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", errors.New("empty language code")
	}
	base, err := language.ParseBase(code)
	if err != nil {
		return "", fmt.Errorf("invalid language code %q: %w", code, err)
	}
	canon := base.String()
	if canon == Undetermined {
		return "", ErrReservedCode
	}
	return canon, nil
}

// FromText counts n-grams of every order over the normalized text.
// top > 0 keeps only the most frequent top n-grams per order.
func FromText(code, name, text string, top int) (*LanguageProfile, error) {
	normalized := ngram.Normalize(text)
	if normalized == "" {
		return nil, fmt.Errorf("%s: corpus contains no letters", code)
	}
	var orders ngram.Orders
	for order := ngram.MinOrder; order <= ngram.MaxOrder; order++ {
		orders[order-1] = ngram.Top(ngram.Extract(normalized, order), top)
	}
	return newProfile(code, name, orders)
}

// FromFrequencies builds a profile from explicit n-gram frequencies. Each
// n-gram's rune length selects its order; each order must sum to 1.
func FromFrequencies(code, name string, grams map[string]float64) (*LanguageProfile, error) {
	var orders ngram.Orders
	for i := range orders {
		orders[i] = ngram.Vector{}
	}
	for gram, f := range grams {
		n := ngram.Len(gram)
		if n < ngram.MinOrder || n > ngram.MaxOrder {
			return nil, fmt.Errorf("%s: n-gram %q has length %d, want %d..%d", code, gram, n, ngram.MinOrder, ngram.MaxOrder)
		}
		if strings.TrimSpace(gram) == "" {
			return nil, fmt.Errorf("%s: blank n-gram %q", code, gram)
		}
		orders[n-1][gram] = f
	}
	return newProfile(code, name, orders)
}

func newProfile(code, name string, orders ngram.Orders) (*LanguageProfile, error) {
	canon, err := CanonicalCode(code)
	if err != nil {
		return nil, err
	}
	p := &LanguageProfile{code: canon, name: strings.TrimSpace(name)}
	if p.name == "" {
		p.name = canon
	}
	total := 0
	for i, v := range orders {
		if v == nil {
			v = ngram.Vector{}
		}
		keys := ngram.Keys(v)
		sum := 0.0
		for _, k := range keys {
			f := v[k]
			if math.IsNaN(f) || f < 0 || f > 1 {
				return nil, fmt.Errorf("%s: frequency of %q is %v, want [0,1]", canon, k, f)
			}
			sum += f
		}
		if len(keys) > 0 && math.Abs(sum-1) > sumTolerance {
			return nil, fmt.Errorf("%s: order %d frequencies sum to %v, want 1", canon, i+1, sum)
		}
		p.orders[i] = v
		p.keys[i] = keys
		p.norms[i] = ngram.Norm(v)
		total += len(keys)
	}
	if total == 0 {
		return nil, fmt.Errorf("%s: %w", canon, ErrEmptyProfile)
	}
	return p, nil
}

// Code returns the canonical language code.
func (p *LanguageProfile) Code() string { return p.code }

// Name returns the display name.
func (p *LanguageProfile) Name() string { return p.name }

// Len returns the number of n-grams of the given order.
func (p *LanguageProfile) Len(order int) int { return len(p.keys[order-1]) }

// Frequency returns the relative frequency of gram, 0 when absent.
func (p *LanguageProfile) Frequency(gram string) float64 {
	n := ngram.Len(gram)
	if n < ngram.MinOrder || n > ngram.MaxOrder {
		return 0
	}
	return p.orders[n-1][gram]
}

// Each visits the n-grams of one order in sorted order until fn returns false.
func (p *LanguageProfile) Each(order int, fn func(gram string, freq float64) bool) {
	v := p.orders[order-1]
	for _, k := range p.keys[order-1] {
		if !fn(k, v[k]) {
			return
		}
	}
}

// Norm returns the precomputed Euclidean length of one order.
func (p *LanguageProfile) Norm(order int) float64 { return p.norms[order-1] }

// Dot returns Σ text[k]·profile[k] over keys, which must be text's keys in
// sorted order so the sum is reproducible.
func (p *LanguageProfile) Dot(order int, keys []string, text ngram.Vector) float64 {
	v := p.orders[order-1]
	sum := 0.0
	for _, k := range keys {
		if f, ok := v[k]; ok {
			sum += text[k] * f
		}
	}
	return sum
}
