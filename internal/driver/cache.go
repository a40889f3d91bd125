package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"langid/internal/classify"
)

// Increment when cachedResult changes shape.
const resultCacheSchemaVersion uint16 = 1

// CacheKey addresses one cached detection.
type CacheKey [32]byte

// ResultCache stores detection results on disk, keyed by the model/config
// fingerprint and the file contents. Safe for concurrent use.
type ResultCache struct {
	mu  sync.RWMutex
	dir string
}

type cachedResult struct {
	Schema uint16
	Result classify.Result
}

// OpenResultCache opens (creating if needed) the cache under
// $XDG_CACHE_HOME/<app>, falling back to ~/.cache/<app>.
func OpenResultCache(app string) (*ResultCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenResultCacheAt(filepath.Join(base, app))
}

// OpenResultCacheAt opens a cache rooted at dir.
func OpenResultCacheAt(dir string) (*ResultCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &ResultCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *ResultCache) Dir() string { return c.dir }

// Key hashes the fingerprint together with the file contents.
func (c *ResultCache) Key(fingerprint, content []byte) CacheKey {
	h := sha256.New()
	_, _ = h.Write(fingerprint)
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(content)
	var k CacheKey
	copy(k[:], h.Sum(nil))
	return k
}

func (c *ResultCache) pathFor(key CacheKey) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "results", hexKey[:2], hexKey+".mp")
}

// Put writes a result through a temp file and an atomic rename.
func (c *ResultCache) Put(key CacheKey, res *classify.Result) error {
	if c == nil || res == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	renamed := false
	defer func() {
		if !renamed {
			_ = os.Remove(f.Name())
		}
	}()

	if err := msgpack.NewEncoder(f).Encode(&cachedResult{Schema: resultCacheSchemaVersion, Result: *res}); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(f.Name(), p); err != nil {
		return err
	}
	renamed = true
	return nil
}

// Get reads a result. A missing entry or an entry from another schema
// reports (false, nil).
func (c *ResultCache) Get(key CacheKey, out *classify.Result) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	var payload cachedResult
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return false, err
	}
	if payload.Schema != resultCacheSchemaVersion {
		return false, nil
	}
	*out = payload.Result
	return true, nil
}

// DropAll removes every cached result.
func (c *ResultCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}
