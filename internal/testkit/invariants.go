package testkit

import (
	"fmt"
	"math"
	"slices"

	"langid/internal/ngram"
	"langid/internal/profile"
)

// CheckStoreInvariants verifies the properties every loaded store must keep:
// 1) codes are unique, sorted and never "und"
// 2) every n-gram sits under the order matching its rune length
// 3) frequencies lie in [0,1] and each non-empty order sums to 1
// 4) the digest is set
func CheckStoreInvariants(s *profile.Store) error {
	if s == nil {
		return fmt.Errorf("nil store")
	}
	if s.Len() == 0 {
		return fmt.Errorf("store has no languages")
	}
	codes := s.Codes()
	if !slices.IsSorted(codes) {
		return fmt.Errorf("codes not sorted: %v", codes)
	}
	if len(slices.Compact(slices.Clone(codes))) != len(codes) {
		return fmt.Errorf("duplicate codes: %v", codes)
	}
	if s.Digest().IsZero() {
		return fmt.Errorf("digest not computed")
	}

	var err error
	s.Each(func(code string, p *profile.LanguageProfile) bool {
		if code == profile.Undetermined {
			err = fmt.Errorf("reserved code in store")
			return false
		}
		for order := ngram.MinOrder; order <= ngram.MaxOrder; order++ {
			sum := 0.0
			p.Each(order, func(gram string, f float64) bool {
				if ngram.Len(gram) != order {
					err = fmt.Errorf("%s: %q under order %d", code, gram, order)
					return false
				}
				if f < 0 || f > 1 {
					err = fmt.Errorf("%s: %q frequency %v", code, gram, f)
					return false
				}
				sum += f
				return true
			})
			if err != nil {
				return false
			}
			if p.Len(order) > 0 && math.Abs(sum-1) > 1e-6 {
				err = fmt.Errorf("%s: order %d sums to %v", code, order, sum)
				return false
			}
		}
		return true
	})
	return err
}
