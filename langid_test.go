package langid_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"langid"
	"langid/internal/testkit"
)

func TestPackageLifecycle(t *testing.T) {
	before := langid.GetVersion()
	h, v, err := langid.Initialize(testkit.DefaultModelDir(t))
	if err != nil {
		t.Fatal(err)
	}
	if v != "1.0.0" || v != before {
		t.Fatalf("version = %q, GetVersion = %q", v, before)
	}

	tests := []struct {
		text string
		code string
	}{
		{"The quick brown fox jumps over the lazy dog", "en"},
		{"El rápido zorro marrón salta sobre el perro perezoso", "es"},
		{"Le renard brun rapide saute par-dessus le chien paresseux", "fr"},
		{"Der schnelle braune Fuchs springt über den faulen Hund", "de"},
		{"", langid.Undetermined},
		{"xyz123 qwe", langid.Undetermined},
	}
	for _, tt := range tests {
		code, err := langid.DetectLanguage(h, tt.text)
		if err != nil || code != tt.code {
			t.Fatalf("DetectLanguage(%q) = %q, %v; want %q", tt.text, code, err, tt.code)
		}
	}

	langid.Release(h)
	langid.Release(h)
	_, err = langid.Detect(h, "hello")
	if !errors.Is(err, langid.ErrHandleReleased) {
		t.Fatalf("detect after release: %v", err)
	}
	if langid.KindOf(err) != langid.HandleReleased {
		t.Fatalf("kind = %v", langid.KindOf(err))
	}
	if langid.GetVersion() != before {
		t.Fatal("version changed after release")
	}
}

func TestInitializeEmptyPath(t *testing.T) {
	h, v, err := langid.Initialize("")
	if !errors.Is(err, langid.ErrInvalidArgument) || h != 0 || v != "" {
		t.Fatalf("Initialize(\"\") = %d, %q, %v", h, v, err)
	}
	var le *langid.Error
	if !errors.As(err, &le) || le.Kind != langid.InvalidArgument {
		t.Fatalf("err = %#v", err)
	}
}

func TestEngineOptions(t *testing.T) {
	ctx := context.Background()
	eng := langid.New(langid.WithFloor(0), langid.WithEpsilon(0), langid.WithCalibration(langid.CalibrationRaw))
	h, _, err := eng.Initialize(ctx, langid.EmbeddedModel)
	if err != nil {
		t.Fatal(err)
	}
	defer eng.Release(h)

	res, err := eng.Detect(ctx, h, "xyz123 qwe")
	if err != nil {
		t.Fatal(err)
	}
	if res.Undetermined() || res.Confidence != res.Scores[0].Score {
		t.Fatalf("with zero floor: %+v", res)
	}
	langs, err := eng.Languages(h)
	if err != nil || strings.Join(langs, ",") != "de,en,es,fr" {
		t.Fatalf("Languages = %v, %v", langs, err)
	}
	info, err := eng.Model(h)
	if err != nil || info.Name != "default" || len(info.Digest) != 64 || info.Names["fr"] != "French" {
		t.Fatalf("Model = %+v, %v", info, err)
	}

	bad := langid.New(langid.WithWeights(0, 0, 0))
	if _, _, err := bad.Initialize(ctx, langid.EmbeddedModel); !errors.Is(err, langid.ErrInvalidArgument) {
		t.Fatalf("zero weights: %v", err)
	}
	if bad.Live() != 0 {
		t.Fatal("failed initialize left a live handle")
	}
}

func TestIdentifierFailsSoft(t *testing.T) {
	id, err := langid.NewIdentifier(testkit.DefaultModelDir(t))
	if err != nil {
		t.Fatal(err)
	}
	if got := id.Identify("Der schnelle braune Fuchs springt über den faulen Hund"); got != "de" {
		t.Fatalf("Identify = %q", got)
	}
	if id.Version() != langid.GetVersion() {
		t.Fatal("version mismatch")
	}
	if err := id.Close(); err != nil {
		t.Fatal(err)
	}
	if got := id.Identify("hello world"); got != langid.Undetermined {
		t.Fatalf("Identify after Close = %q", got)
	}
	if !errors.Is(id.Err(), langid.ErrHandleReleased) {
		t.Fatalf("Err = %v", id.Err())
	}
	if err := id.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := langid.NewIdentifier("no/such/model"); !errors.Is(err, langid.ErrModelNotFound) {
		t.Fatalf("missing model: %v", err)
	}
}
