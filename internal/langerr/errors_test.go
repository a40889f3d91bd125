package langerr

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestErrorMatchesSentinelByKind(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		want     bool
	}{
		{"same kind", New(ModelNotFound, "load", "x.toml", fs.ErrNotExist), ErrModelNotFound, true},
		{"other kind", New(ModelNotFound, "load", "x.toml", nil), ErrModelCorrupt, false},
		{"wrapped", fmt.Errorf("cli: %w", New(HandleReleased, "detect", "", nil)), ErrHandleReleased, true},
		{"plain error", errors.New("boom"), ErrInvalidArgument, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.sentinel); got != tt.want {
				t.Fatalf("errors.Is = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorUnwrapsCause(t *testing.T) {
	err := New(ModelNotFound, "load", "m.toml", fs.ErrNotExist)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("cause lost: %v", err)
	}
	if got, want := err.Error(), "load: m.toml: model not found: file does not exist"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestKindOf(t *testing.T) {
	if k := KindOf(fmt.Errorf("x: %w", New(ModelCorrupt, "", "", nil))); k != ModelCorrupt {
		t.Fatalf("KindOf = %v", k)
	}
	if k := KindOf(errors.New("x")); k != Unknown {
		t.Fatalf("KindOf(plain) = %v", k)
	}
}
