// Package testkit holds model fixtures and invariant checks shared by tests.
package testkit

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// DefaultModelDir returns the absolute path of the repository's default model.
func DefaultModelDir(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot locate testkit source")
	}
	return filepath.Join(filepath.Dir(file), "..", "..", "models", "default")
}

// WriteFiles materializes name → content under a fresh temp dir and returns it.
func WriteFiles(t testing.TB, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// TinyModel is a two-language source model with inline corpora.
const TinyModel = `
[model]
name = "tiny"

[[language]]
code = "en"
name = "English"
corpus = "the cat and the dog and the bird sit on the mat with the other animals"

[[language]]
code = "it"
name = "Italian"
corpus = "il gatto e il cane e l'uccello sono sul tappeto con gli altri animali"
`
