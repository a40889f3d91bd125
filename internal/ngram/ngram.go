// Package ngram turns raw text into character n-gram frequency vectors.
//
// Training corpora and detection input go through the same Normalize and
// Extract functions, so a profile and a query are always comparable.
package ngram

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

const (
	// MinOrder is the shortest n-gram length.
	MinOrder = 1
	// MaxOrder is the longest n-gram length.
	MaxOrder = 3
)

// Vector maps an n-gram to its relative frequency.
type Vector map[string]float64

// Orders holds one vector per n-gram order; index 0 is unigrams.
type Orders [MaxOrder]Vector

// Counts maps an n-gram to its absolute count.
type Counts map[string]int

// Normalize folds text into the canonical form used for counting:
// NFC, lowercase, non-letters replaced by spaces, whitespace collapsed,
// one space of padding on each side. Text without letters yields "".
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	// Caser is stateful; a fresh one per call keeps Normalize goroutine-safe.
	lowered := cases.Lower(language.Und).String(norm.NFC.String(text))
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return r
		}
		return ' '
	}, lowered)
	fields := strings.Fields(mapped)
	if len(fields) == 0 {
		return ""
	}
	return " " + strings.Join(fields, " ") + " "
}

func checkOrder(order int) {
	if order < MinOrder || order > MaxOrder {
		panic(fmt.Sprintf("ngram: order %d outside [%d,%d]", order, MinOrder, MaxOrder))
	}
}

// Count adds the n-grams of the given order found in normalized text to dst
// and returns the number added. N-grams made only of spaces are skipped.
func Count(dst Counts, normalized string, order int) int {
	checkOrder(order)
	runes := []rune(normalized)
	added := 0
	for i := 0; i+order <= len(runes); i++ {
		window := runes[i : i+order]
		if allSpace(window) {
			continue
		}
		dst[string(window)]++
		added++
	}
	return added
}

func allSpace(rs []rune) bool {
	for _, r := range rs {
		if r != ' ' {
			return false
		}
	}
	return true
}

// Frequencies converts counts into relative frequencies summing to 1.
func Frequencies(c Counts) Vector {
	total := 0
	for _, n := range c {
		total += n
	}
	if total == 0 {
		return Vector{}
	}
	v := make(Vector, len(c))
	for g, n := range c {
		v[g] = float64(n) / float64(total)
	}
	return v
}

// Extract returns the relative frequency vector of one order.
func Extract(normalized string, order int) Vector {
	c := make(Counts)
	Count(c, normalized, order)
	return Frequencies(c)
}

// ExtractAll extracts every order from already normalized text.
func ExtractAll(normalized string) Orders {
	var out Orders
	for order := MinOrder; order <= MaxOrder; order++ {
		out[order-1] = Extract(normalized, order)
	}
	return out
}

// Keys returns the n-grams of v in sorted order.
func Keys(v Vector) []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Norm is the Euclidean length of v, summed in key order.
func Norm(v Vector) float64 {
	sum := 0.0
	for _, k := range Keys(v) {
		f := v[k]
		sum += f * f
	}
	return math.Sqrt(sum)
}

// Top keeps the n most frequent entries (ties broken by n-gram) and
// rescales them to sum to 1. n <= 0 returns v unchanged.
func Top(v Vector, n int) Vector {
	if n <= 0 || len(v) <= n {
		return v
	}
	keys := Keys(v)
	slices.SortStableFunc(keys, func(a, b string) int {
		switch {
		case v[a] > v[b]:
			return -1
		case v[a] < v[b]:
			return 1
		default:
			return 0
		}
	})
	keys = keys[:n]
	slices.Sort(keys)
	total := 0.0
	for _, k := range keys {
		total += v[k]
	}
	out := make(Vector, n)
	for _, k := range keys {
		out[k] = v[k] / total
	}
	return out
}

// Len returns the number of runes in an n-gram, which is its order.
func Len(gram string) int {
	return len([]rune(gram))
}
