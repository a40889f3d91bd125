package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"langid"
	"langid/internal/config"
	"langid/internal/testkit"
)

// run executes the root command. Flags keep their values between runs, so
// every test passes the flags it depends on explicitly.
func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	base := []string{"--color=off", "--quiet=false", "--timings=false", "--config=", "--trace-level=off", "--trace="}
	rootCmd.SetArgs(append(args[:1:1], append(base, args[1:]...)...))
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestDetectCommand(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		code  string
	}{
		{"args embedded", "", []string{"detect", "--model=" + langid.EmbeddedModel, "--format=json", "--scores=false", "Der", "schnelle", "braune", "Fuchs", "springt", "über", "den", "faulen", "Hund"}, "de"},
		{"stdin on disk", "Le renard brun rapide saute par-dessus le chien paresseux", []string{"detect", "--model=" + testkit.DefaultModelDir(t), "--format=json", "--scores=true"}, "fr"},
		{"empty stdin", "", []string{"detect", "--model=" + langid.EmbeddedModel, "--format=json", "--scores=false"}, "und"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, stderr, err := run(t, tt.stdin, tt.args...)
			if err != nil {
				t.Fatalf("detect: %v\n%s", err, stderr)
			}
			var res langid.Result
			if err := json.Unmarshal([]byte(out), &res); err != nil {
				t.Fatalf("bad json %q: %v", out, err)
			}
			if res.Code != tt.code {
				t.Fatalf("code = %q, want %q", res.Code, tt.code)
			}
		})
	}
}

func TestDetectTextOutput(t *testing.T) {
	out, _, err := run(t, "", "detect", "--model="+langid.EmbeddedModel, "--format=text", "--scores=true",
		"The quick brown fox jumps over the lazy dog")
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 5 || !strings.HasPrefix(lines[0], "en ") {
		t.Fatalf("output = %q", out)
	}
}

func TestDetectMissingModel(t *testing.T) {
	_, _, err := run(t, "", "detect", "--model=no/such/model", "--format=text", "--scores=false", "hello")
	if err == nil || langid.KindOf(err) != langid.ModelNotFound {
		t.Fatalf("err = %v", err)
	}
}

func TestBatchCommand(t *testing.T) {
	dir := testkit.WriteFiles(t, map[string]string{
		"en.txt":     "The quick brown fox jumps over the lazy dog",
		"sub/es.txt": "El rápido zorro marrón salta sobre el perro perezoso",
		"notes.md":   "ignored",
	})
	out, stderr, err := run(t, "", "batch", "--model="+langid.EmbeddedModel, "--ui=off", "--format=json", "--no-cache=true", "--jobs=2", dir)
	if err != nil {
		t.Fatalf("batch: %v\n%s", err, stderr)
	}
	var records []batchRecord
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatalf("bad json %q: %v", out, err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %+v", records)
	}
	if records[0].Path != filepath.Join(dir, "en.txt") || records[0].Code != "en" {
		t.Fatalf("records[0] = %+v", records[0])
	}
	if records[1].Code != "es" {
		t.Fatalf("records[1] = %+v", records[1])
	}
	if !strings.Contains(stderr, "2 files, 0 cached, 0 failed") {
		t.Fatalf("stderr = %q", stderr)
	}
}

func TestCompileThenDescribe(t *testing.T) {
	out := filepath.Join(t.TempDir(), "default")
	if _, stderr, err := run(t, "", "compile", "--model="+testkit.DefaultModelDir(t), "-o", out); err != nil {
		t.Fatalf("compile: %v\n%s", err, stderr)
	}

	describe := func(model string) modelPayload {
		t.Helper()
		stdout, stderr, err := run(t, "", "model", "--model="+model, "--format=json")
		if err != nil {
			t.Fatalf("model: %v\n%s", err, stderr)
		}
		var p modelPayload
		if err := json.Unmarshal([]byte(stdout), &p); err != nil {
			t.Fatalf("bad json %q: %v", stdout, err)
		}
		return p
	}
	source := describe(testkit.DefaultModelDir(t))
	compiled := describe(out + ".lidm")
	if source.Digest != compiled.Digest || len(compiled.Languages) != 4 {
		t.Fatalf("source %+v\ncompiled %+v", source, compiled)
	}
	if compiled.Languages[0].Code != "de" || compiled.Languages[0].Name != "German" {
		t.Fatalf("languages = %+v", compiled.Languages)
	}
}

func TestVersionCommand(t *testing.T) {
	out, _, err := run(t, "", "version", "--format=json", "--hash=true", "--message=false", "--date=false", "--full=false")
	if err != nil {
		t.Fatal(err)
	}
	var p versionPayload
	if err := json.Unmarshal([]byte(out), &p); err != nil {
		t.Fatal(err)
	}
	if p.Version != "1.0.0" || p.GitCommit == "" || p.BuildDate != "" {
		t.Fatalf("payload = %+v", p)
	}

	out, _, err = run(t, "", "version", "--format=pretty", "--hash=false", "--message=false", "--date=false", "--full=false")
	if err != nil || strings.TrimSpace(out) != "langid 1.0.0" {
		t.Fatalf("pretty = %q, %v", out, err)
	}
	if _, _, err := run(t, "", "version", "--format=yaml"); err == nil {
		t.Fatal("yaml accepted")
	}
}

func TestResolveModelPath(t *testing.T) {
	tests := []struct {
		flag string
		cfg  string
		want string
	}{
		{"m.lidm", "/etc/model", "m.lidm"},
		{" ", "/etc/model", "/etc/model"},
		{"", "", langid.EmbeddedModel},
	}
	for _, tt := range tests {
		if got := resolveModelPath(tt.flag, config.Config{ModelPath: tt.cfg}); got != tt.want {
			t.Fatalf("resolveModelPath(%q, %q) = %q, want %q", tt.flag, tt.cfg, got, tt.want)
		}
	}
}

func TestReadUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeAuto, "ON": uiModeOn, " off ": uiModeOff} {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Fatalf("readUIMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Fatal("expected error")
	}
	if err := applyColorFlag("rainbow"); err == nil {
		t.Fatal("expected error")
	}
}
