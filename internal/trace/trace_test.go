package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestLevelShouldEmit(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeHost, false},
		{LevelError, ScopeHost, false},
		{LevelPhase, ScopeEngine, true},
		{LevelPhase, ScopeCall, false},
		{LevelDetail, ScopeCall, true},
		{LevelDetail, ScopeLanguage, false},
		{LevelDebug, ScopeLanguage, true},
	}
	for _, tt := range tests {
		t.Run(tt.level.String()+"/"+tt.scope.String(), func(t *testing.T) {
			if got := tt.level.ShouldEmit(tt.scope); got != tt.want {
				t.Fatalf("ShouldEmit = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"off", "ERROR", "phase", "Detail", "debug"} {
		if _, err := ParseLevel(s); err != nil {
			t.Fatalf("ParseLevel(%q): %v", s, err)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestStreamTracerNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatNDJSON)

	ctx := WithTracer(context.Background(), tr)
	ctx, outer := Start(ctx, ScopeEngine, "initialize")
	_, inner := Start(ctx, ScopeCall, "detect")
	inner.WithExtra("code", "en").End("")
	_, hidden := Start(ctx, ScopeLanguage, "score:en")
	hidden.End("")
	outer.End("ok")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), buf.String())
	}
	var ev struct {
		Kind     string            `json:"kind"`
		Name     string            `json:"name"`
		ParentID uint64            `json:"parent_id"`
		Extra    map[string]string `json:"extra"`
	}
	if err := json.Unmarshal([]byte(lines[2]), &ev); err != nil {
		t.Fatal(err)
	}
	if ev.Kind != "end" || ev.Name != "detect" || ev.Extra["code"] != "en" {
		t.Fatalf("unexpected event %+v", ev)
	}
	if ev.ParentID != outer.ID() {
		t.Fatalf("parent = %d, want %d", ev.ParentID, outer.ID())
	}
}

func TestRingTracerWraps(t *testing.T) {
	ring := NewRingTracer(3, LevelDebug)
	for i := range 5 {
		ring.Emit(&Event{Seq: uint64(i + 1), Kind: KindPoint, Scope: ScopeHost, Name: "p"})
	}
	snap := ring.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("len = %d", len(snap))
	}
	for i, want := range []uint64{3, 4, 5} {
		if snap[i].Seq != want {
			t.Fatalf("snap[%d].Seq = %d, want %d", i, snap[i].Seq, want)
		}
	}
	var buf bytes.Buffer
	if err := ring.Dump(&buf, FormatText); err != nil {
		t.Fatal(err)
	}
	if strings.Count(buf.String(), "\n") != 3 {
		t.Fatalf("dump:\n%s", buf.String())
	}
}

func TestTextFormatSortsExtra(t *testing.T) {
	ev := &Event{
		Time:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Seq:   7,
		Kind:  KindSpanEnd,
		Scope: ScopeCall,
		Name:  "detect",
		Extra: map[string]string{"z": "1", "a": "2"},
	}
	got := string(FormatEvent(ev, FormatText))
	want := "03:04:05.000000 #7 [call] ← detect {a=2, z=1}\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNopIsInert(t *testing.T) {
	span := Begin(Nop, ScopeHost, "x", 0)
	if span.ID() != 0 || span.End("") != 0 {
		t.Fatal("nop span should be inert")
	}
	if FromContext(context.Background()) != Nop {
		t.Fatal("missing tracer should resolve to Nop")
	}
	var h *Heartbeat
	h.Stop()
}

func TestNewOffReturnsNop(t *testing.T) {
	tr, ring, err := New(Config{Level: LevelOff})
	if err != nil || tr != Nop || ring != nil {
		t.Fatalf("New(off) = %v, %v, %v", tr, ring, err)
	}
}
