package profile

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrNoLanguages indicates a model without any language.
var ErrNoLanguages = errors.New("model defines no languages")

// Store maps language codes to profiles. It has no mutation API.
type Store struct {
	name   string
	langs  []*LanguageProfile // sorted by code
	byCode map[string]*LanguageProfile
	digest Digest
}

// NewStore assembles a store from profiles; codes must be unique.
func NewStore(name string, profiles ...*LanguageProfile) (*Store, error) {
	if len(profiles) == 0 {
		return nil, ErrNoLanguages
	}
	s := &Store{
		name:   strings.TrimSpace(name),
		langs:  make([]*LanguageProfile, 0, len(profiles)),
		byCode: make(map[string]*LanguageProfile, len(profiles)),
	}
	for _, p := range profiles {
		if p == nil {
			return nil, errors.New("nil profile")
		}
		if _, dup := s.byCode[p.code]; dup {
			return nil, fmt.Errorf("duplicate language %q", p.code)
		}
		s.byCode[p.code] = p
		s.langs = append(s.langs, p)
	}
	slices.SortFunc(s.langs, func(a, b *LanguageProfile) int { return strings.Compare(a.code, b.code) })
	s.digest = digestOf(s.langs)
	return s, nil
}

// Name returns the model name ("" when the model did not set one).
func (s *Store) Name() string { return s.name }

// Len returns the number of languages.
func (s *Store) Len() int { return len(s.langs) }

// Codes returns the language codes in sorted order.
func (s *Store) Codes() []string {
	codes := make([]string, len(s.langs))
	for i, p := range s.langs {
		codes[i] = p.code
	}
	return codes
}

// Lookup returns the profile for code.
func (s *Store) Lookup(code string) (*LanguageProfile, bool) {
	p, ok := s.byCode[code]
	return p, ok
}

// Each visits (code, profile) pairs in code order until fn returns false.
func (s *Store) Each(fn func(code string, p *LanguageProfile) bool) {
	for _, p := range s.langs {
		if !fn(p.code, p) {
			return
		}
	}
}

// Digest fingerprints the store contents; equal stores have equal digests.
func (s *Store) Digest() Digest { return s.digest }
