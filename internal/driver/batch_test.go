package driver

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"langid/internal/classify"
	"langid/internal/testkit"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) OnEvent(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func lengthDetector(calls *atomic.Int32) Detector {
	return DetectorFunc(func(_ context.Context, text string) (classify.Result, error) {
		calls.Add(1)
		if text == "fail" {
			return classify.Result{}, errors.New("boom")
		}
		code := "en"
		if len(text) > 5 {
			code = "de"
		}
		return classify.Result{Code: code, Confidence: 0.5}, nil
	})
}

func TestListTextFiles(t *testing.T) {
	dir := testkit.WriteFiles(t, map[string]string{
		"b.txt":        "b",
		"a.txt":        "a",
		"nested/c.TXT": "c",
		"skip.md":      "x",
	})
	files, err := ListTextFiles(dir, filepath.Join(dir, "a.txt"), filepath.Join(dir, "skip.md"))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.txt"),
		filepath.Join(dir, "nested", "c.TXT"),
		filepath.Join(dir, "skip.md"),
	}
	if len(files) != len(want) {
		t.Fatalf("files = %v", files)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Fatalf("files[%d] = %q, want %q", i, files[i], want[i])
		}
	}
	if _, err := ListTextFiles(filepath.Join(dir, "missing")); err == nil {
		t.Fatal("expected error for missing input")
	}
}

func TestDetectFilesKeepsOrder(t *testing.T) {
	dir := testkit.WriteFiles(t, map[string]string{
		"1.txt": "hi",
		"2.txt": "longer text",
		"3.txt": "fail",
	})
	files, err := ListTextFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	files = append(files, filepath.Join(dir, "gone.txt"))

	var calls atomic.Int32
	sink := &recordingSink{}
	results, err := DetectFiles(context.Background(), lengthDetector(&calls), files, Options{Jobs: 2, Progress: sink})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 {
		t.Fatalf("results = %v", results)
	}
	if results[0].Result.Code != "en" || results[1].Result.Code != "de" {
		t.Fatalf("codes = %q, %q", results[0].Result.Code, results[1].Result.Code)
	}
	if results[2].Err == nil || results[3].Err == nil {
		t.Fatal("expected per-file errors for failing detector and missing file")
	}
	for i, r := range results {
		if r.Path != files[i] {
			t.Fatalf("results[%d].Path = %q, want %q", i, r.Path, files[i])
		}
	}

	finished := 0
	for _, ev := range sink.events {
		if ev.Status.Finished() {
			finished++
		}
	}
	if finished != len(files) {
		t.Fatalf("finished events = %d, want %d", finished, len(files))
	}
}

func TestDetectFilesUsesCache(t *testing.T) {
	dir := testkit.WriteFiles(t, map[string]string{"a.txt": "hello", "b.txt": "bonjour tout le monde"})
	files, err := ListTextFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	cache, err := OpenResultCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	var calls atomic.Int32
	opts := Options{Cache: cache, CacheKey: []byte("model-a")}

	first, err := DetectFiles(context.Background(), lengthDetector(&calls), files, opts)
	if err != nil {
		t.Fatal(err)
	}
	second, err := DetectFiles(context.Background(), lengthDetector(&calls), files, opts)
	if err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 2 {
		t.Fatalf("detector called %d times, want 2", calls.Load())
	}
	for i := range first {
		if !second[i].Cached || second[i].Result.Code != first[i].Result.Code {
			t.Fatalf("second run[%d] = %+v", i, second[i])
		}
	}

	// another fingerprint misses the cache
	opts.CacheKey = []byte("model-b")
	if _, err := DetectFiles(context.Background(), lengthDetector(&calls), files, opts); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 4 {
		t.Fatalf("detector called %d times, want 4", calls.Load())
	}

	if err := cache.DropAll(); err != nil {
		t.Fatal(err)
	}
	var res classify.Result
	if ok, err := cache.Get(cache.Key([]byte("model-a"), []byte("hello")), &res); ok || err != nil {
		t.Fatalf("Get after DropAll = %v, %v", ok, err)
	}
}

func TestDetectFilesCancelled(t *testing.T) {
	dir := testkit.WriteFiles(t, map[string]string{"a.txt": "x"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var calls atomic.Int32
	_, err := DetectFiles(ctx, lengthDetector(&calls), []string{filepath.Join(dir, "a.txt")}, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
