package langid

import (
	"context"
	"sync"
)

// Identifier is a convenience wrapper owning a single handle. Unlike the
// Engine API it never returns errors from Identify: any failure, including
// use after Close, is reported as Undetermined and kept for Err.
type Identifier struct {
	eng  *Engine
	h    Handle
	once sync.Once

	mu  sync.Mutex
	err error
}

// NewIdentifier loads modelPath into a private engine.
func NewIdentifier(modelPath string, opts ...Option) (*Identifier, error) {
	eng := New(opts...)
	h, _, err := eng.Initialize(context.Background(), modelPath)
	if err != nil {
		return nil, err
	}
	return &Identifier{eng: eng, h: h}, nil
}

// Identify returns the language code of text, or "und".
func (id *Identifier) Identify(text string) string {
	if id == nil {
		return Undetermined
	}
	code, err := id.eng.DetectLanguage(context.Background(), id.h, text)
	if err != nil {
		id.mu.Lock()
		id.err = err
		id.mu.Unlock()
		return Undetermined
	}
	return code
}

// Err returns the last error hidden by Identify.
func (id *Identifier) Err() error {
	id.mu.Lock()
	defer id.mu.Unlock()
	return id.err
}

// Version returns the engine version.
func (id *Identifier) Version() string { return GetVersion() }

// Close releases the handle. Further Identify calls return "und".
func (id *Identifier) Close() error {
	id.once.Do(func() { id.eng.Release(id.h) })
	return nil
}
