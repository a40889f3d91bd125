// Package langerr defines the error taxonomy shared by the model loader,
// the handle registry and the public API.
package langerr

import (
	"errors"
	"strings"
)

// Kind classifies an engine failure.
type Kind uint8

const (
	// Unknown is never produced by the engine itself.
	Unknown Kind = iota
	// InvalidArgument reports a missing or malformed required input.
	InvalidArgument
	// ModelNotFound reports an absent or unreadable model resource.
	ModelNotFound
	// ModelCorrupt reports a model resource that could not be decoded or validated.
	ModelCorrupt
	// HandleReleased reports use of a handle after Release.
	HandleReleased
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid argument"
	case ModelNotFound:
		return "model not found"
	case ModelCorrupt:
		return "model corrupt"
	case HandleReleased:
		return "handle released"
	default:
		return "unknown"
	}
}

// Error carries the failure kind together with the operation that produced it.
type Error struct {
	Kind Kind
	Op   string // "initialize", "detect", "load", ...
	Path string // model or corpus path, if any
	Err  error
}

// Sentinels for errors.Is; they match any *Error of the same kind.
var (
	ErrInvalidArgument = &Error{Kind: InvalidArgument}
	ErrModelNotFound   = &Error{Kind: ModelNotFound}
	ErrModelCorrupt    = &Error{Kind: ModelCorrupt}
	ErrHandleReleased  = &Error{Kind: HandleReleased}
)

// New builds an *Error. err may be nil.
func New(kind Kind, op, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

func (e *Error) Error() string {
	var sb strings.Builder
	if e.Op != "" {
		sb.WriteString(e.Op)
		sb.WriteString(": ")
	}
	if e.Path != "" {
		sb.WriteString(e.Path)
		sb.WriteString(": ")
	}
	sb.WriteString(e.Kind.String())
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Path == "" && t.Err == nil && t.Kind == e.Kind
}

// KindOf extracts the kind from err, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}
