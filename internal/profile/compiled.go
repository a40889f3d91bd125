package profile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"langid/internal/ngram"
)

// Increment when compiledModel changes shape.
const compiledSchemaVersion uint16 = 1

const compiledMagic = "langid-model"

type compiledModel struct {
	Magic     string             `msgpack:"magic"`
	Schema    uint16             `msgpack:"schema"`
	Name      string             `msgpack:"name"`
	Digest    Digest             `msgpack:"digest"`
	Languages []compiledLanguage `msgpack:"languages"`
}

type compiledLanguage struct {
	Code   string               `msgpack:"code"`
	Name   string               `msgpack:"name"`
	Orders []map[string]float64 `msgpack:"orders"`
}

// Compile writes store as a compiled model to outPath. The file is written
// to a temporary sibling first and renamed into place.
func Compile(store *Store, outPath string) (err error) {
	if store == nil {
		return errors.New("nil store")
	}
	payload := compiledModel{
		Magic:     compiledMagic,
		Schema:    compiledSchemaVersion,
		Name:      store.name,
		Digest:    store.digest,
		Languages: make([]compiledLanguage, len(store.langs)),
	}
	for i, p := range store.langs {
		cl := compiledLanguage{Code: p.code, Name: p.name, Orders: make([]map[string]float64, ngram.MaxOrder)}
		for o := range ngram.MaxOrder {
			cl.Orders[o] = p.orders[o]
		}
		payload.Languages[i] = cl
	}

	dir := filepath.Dir(outPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".lidm-*")
	if err != nil {
		return err
	}
	renamed := false
	defer func() {
		if !renamed {
			_ = os.Remove(f.Name())
		}
	}()

	enc := msgpack.NewEncoder(f)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(&payload); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode model: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(f.Name(), outPath); err != nil {
		return err
	}
	renamed = true
	return nil
}

func decodeCompiled(data []byte) (*Store, error) {
	var payload compiledModel
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode compiled model: %w", err)
	}
	if payload.Magic != compiledMagic {
		return nil, errors.New("not a compiled langid model")
	}
	if payload.Schema != compiledSchemaVersion {
		return nil, fmt.Errorf("compiled model schema %d, want %d", payload.Schema, compiledSchemaVersion)
	}
	profiles := make([]*LanguageProfile, 0, len(payload.Languages))
	for _, cl := range payload.Languages {
		if len(cl.Orders) != ngram.MaxOrder {
			return nil, fmt.Errorf("%s: %d n-gram orders, want %d", cl.Code, len(cl.Orders), ngram.MaxOrder)
		}
		var orders ngram.Orders
		for o, grams := range cl.Orders {
			for g := range grams {
				if ngram.Len(g) != o+1 {
					return nil, fmt.Errorf("%s: n-gram %q stored under order %d", cl.Code, g, o+1)
				}
			}
			orders[o] = ngram.Vector(grams)
		}
		p, err := newProfile(cl.Code, cl.Name, orders)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	store, err := NewStore(payload.Name, profiles...)
	if err != nil {
		return nil, err
	}
	if store.digest != payload.Digest {
		return nil, fmt.Errorf("fingerprint mismatch: stored %s, computed %s", payload.Digest.Short(), store.digest.Short())
	}
	return store, nil
}

// looksCompiled sniffs the msgpack map header that Compile always writes.
func looksCompiled(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	b := data[0]
	return (b >= 0x80 && b <= 0x8f) || b == 0xde || b == 0xdf
}
