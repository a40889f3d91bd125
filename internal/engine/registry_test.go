package engine

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"langid/internal/langerr"
	"langid/internal/profile"
	"langid/internal/testkit"
	"langid/internal/trace"
	"langid/internal/version"
	"langid/models"
)

func initDefault(t *testing.T, r *Registry) Handle {
	t.Helper()
	h, v, err := r.Initialize(context.Background(), testkit.DefaultModelDir(t))
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if v != version.Engine {
		t.Fatalf("version = %q, want %q", v, version.Engine)
	}
	return h
}

func TestLifecycle(t *testing.T) {
	r := NewRegistry()
	h := initDefault(t, r)
	if !h.IsValid() || r.Live() != 1 {
		t.Fatalf("handle %d, live %d", h, r.Live())
	}

	res, err := r.Detect(context.Background(), h, "The quick brown fox jumps over the lazy dog")
	if err != nil {
		t.Fatal(err)
	}
	if res.Code != "en" || res.Confidence < 0.5 {
		t.Fatalf("Detect = %+v", res)
	}

	r.Release(h)
	if r.Live() != 0 {
		t.Fatalf("live after release = %d", r.Live())
	}
	if _, err := r.Detect(context.Background(), h, "hello"); !errors.Is(err, langerr.ErrHandleReleased) {
		t.Fatalf("detect after release: err = %v", err)
	}
	// second release is a no-op
	r.Release(h)
	if r.Live() != 0 {
		t.Fatalf("live after double release = %d", r.Live())
	}
}

func TestDetectEdgeCases(t *testing.T) {
	r := NewRegistry()
	h := initDefault(t, r)
	defer r.Release(h)

	tests := []struct {
		name    string
		text    string
		code    string
		maxConf float64
	}{
		{"empty", "", "und", 0},
		{"noise", "xyz123 qwe", "und", 0.149999},
		{"digits only", "123 456", "und", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := r.Detect(context.Background(), h, tt.text)
			if err != nil {
				t.Fatal(err)
			}
			if res.Code != tt.code || res.Confidence > tt.maxConf {
				t.Fatalf("Detect(%q) = %+v", tt.text, res)
			}
		})
	}
}

func TestInitializeErrors(t *testing.T) {
	r := NewRegistry()
	tests := []struct {
		name string
		path string
		want error
	}{
		{"empty path", "", langerr.ErrInvalidArgument},
		{"missing model", "no/such/model", langerr.ErrModelNotFound},
		{"corrupt model", testkit.WriteFiles(t, map[string]string{"model.toml": "[[language]]\ncode = 7\n"}), langerr.ErrModelCorrupt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, v, err := r.Initialize(context.Background(), tt.path)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if h != NoHandle || v != "" {
				t.Fatalf("failed initialize returned (%d, %q)", h, v)
			}
		})
	}
	if r.Live() != 0 || len(r.entries) != 1 {
		t.Fatalf("failed initializations allocated handles: live=%d entries=%d", r.Live(), len(r.entries))
	}
}

func TestInvalidHandles(t *testing.T) {
	r := NewRegistry()
	for _, h := range []Handle{NoHandle, 42} {
		if _, err := r.Detect(context.Background(), h, "text"); !errors.Is(err, langerr.ErrInvalidArgument) {
			t.Fatalf("Detect(%d): err = %v", h, err)
		}
		r.Release(h) // no-op, no panic
	}
}

func TestHandlesAreNeverRecycled(t *testing.T) {
	r := NewRegistry()
	seen := map[Handle]bool{}
	for range 3 {
		h := initDefault(t, r)
		if seen[h] {
			t.Fatalf("handle %d reused", h)
		}
		seen[h] = true
		r.Release(h)
	}
	first := Handle(1)
	if _, err := r.Detect(context.Background(), first, "hola"); !errors.Is(err, langerr.ErrHandleReleased) {
		t.Fatalf("stale handle resolved to a live store: %v", err)
	}
}

func TestHandlesAreIndependent(t *testing.T) {
	r := NewRegistry(WithLoader(func(ctx context.Context, _ string) (*profile.Store, error) {
		return profile.LoadFS(ctx, models.Default(), ".")
	}))
	a, _, err := r.Initialize(context.Background(), "embedded")
	if err != nil {
		t.Fatal(err)
	}
	b, _, err := r.Initialize(context.Background(), "embedded")
	if err != nil {
		t.Fatal(err)
	}
	r.Release(a)
	res, err := r.Detect(context.Background(), b, "Der schnelle braune Fuchs springt über den faulen Hund")
	if err != nil || res.Code != "de" {
		t.Fatalf("Detect on surviving handle = %+v, %v", res, err)
	}
	info, err := r.Describe(b)
	if err != nil || info.ModelName != "default" || len(info.Languages) != 4 || info.Names["de"] != "German" {
		t.Fatalf("Describe = %+v, %v", info, err)
	}
	if _, err := r.Describe(a); !errors.Is(err, langerr.ErrHandleReleased) {
		t.Fatalf("Describe released: %v", err)
	}
}

func TestDeterministicAcrossHandles(t *testing.T) {
	r := NewRegistry()
	text := "El rápido zorro marrón salta sobre el perro perezoso"
	var first float64
	for i := range 3 {
		h := initDefault(t, r)
		res, err := r.Detect(context.Background(), h, text)
		if err != nil {
			t.Fatal(err)
		}
		if res.Code != "es" || res.Confidence < 0.5 {
			t.Fatalf("Detect = %+v", res)
		}
		if i == 0 {
			first = res.Confidence
		} else if res.Confidence != first {
			t.Fatalf("confidence %v differs from %v", res.Confidence, first)
		}
		r.Release(h)
	}
}

func TestConcurrentDetectAndRelease(t *testing.T) {
	r := NewRegistry()
	h := initDefault(t, r)

	texts := []string{
		"The quick brown fox jumps over the lazy dog",
		"Le renard brun rapide saute par-dessus le chien paresseux",
		"Der schnelle braune Fuchs springt über den faulen Hund",
	}
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 20 {
				res, err := r.Detect(context.Background(), h, texts[(i+j)%len(texts)])
				if err != nil {
					if !errors.Is(err, langerr.ErrHandleReleased) {
						t.Errorf("unexpected error: %v", err)
					}
					return
				}
				if res.Code == "" {
					t.Errorf("empty code")
					return
				}
			}
		}()
	}
	r.Release(h)
	wg.Wait()
	if r.Live() != 0 {
		t.Fatalf("live = %d", r.Live())
	}
}

func TestTracerReceivesEvents(t *testing.T) {
	var buf bytes.Buffer
	tr := trace.NewStreamTracer(&buf, trace.LevelDebug, trace.FormatText)
	r := NewRegistry(WithTracer(tr))
	h := initDefault(t, r)
	if _, err := r.Detect(context.Background(), h, "Hola"); err != nil {
		t.Fatal(err)
	}
	r.Release(h)

	out := buf.String()
	for _, want := range []string{"initialize", "load", "profile:en", "detect", "score:es", "release"} {
		if !strings.Contains(out, want) {
			t.Fatalf("trace output lacks %q:\n%s", want, out)
		}
	}
}
