// Package engine owns the handle lifecycle: it maps opaque handles to loaded
// profile stores and runs detections against them.
//
// Handles are slots in an append-only arena. Slot 0 is reserved so the zero
// handle is never valid, and released slots are kept as tombstones, so a
// stale handle can never alias a newer one.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"fortio.org/safecast"

	"langid/internal/classify"
	"langid/internal/langerr"
	"langid/internal/profile"
	"langid/internal/trace"
	"langid/internal/version"
)

// Handle identifies an initialized engine instance.
type Handle uint64

// NoHandle is the zero handle; it is never issued.
const NoHandle Handle = 0

// IsValid reports whether h could have been issued.
func (h Handle) IsValid() bool { return h != NoHandle }

type state uint32

const (
	stateInitialized state = iota + 1
	stateReleased
)

// Loader builds a profile store for a model path.
type Loader func(ctx context.Context, modelPath string) (*profile.Store, error)

type entry struct {
	// mu is held for reading by every in-flight Detect and for writing by
	// Release while it drops the classifier.
	mu    sync.RWMutex
	state atomic.Uint32
	path  string
	clf   *classify.Classifier
}

// Registry is the handle arena. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries []*entry // index 0 reserved for NoHandle
	live    atomic.Int64

	cfg    classify.Config
	tracer trace.Tracer
	loader Loader
}

// Option configures a Registry.
type Option func(*Registry)

// WithConfig sets the scoring configuration used by every handle.
func WithConfig(cfg classify.Config) Option {
	return func(r *Registry) { r.cfg = cfg }
}

// WithTracer injects the event sink; the default is trace.Nop.
func WithTracer(t trace.Tracer) Option {
	return func(r *Registry) {
		if t != nil {
			r.tracer = t
		}
	}
}

// WithLoader replaces profile.Load, e.g. to serve an embedded model.
func WithLoader(l Loader) Option {
	return func(r *Registry) {
		if l != nil {
			r.loader = l
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		entries: make([]*entry, 1, 8),
		cfg:     classify.DefaultConfig(),
		tracer:  trace.Nop,
		loader:  profile.Load,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Live reports the number of initialized, unreleased handles.
func (r *Registry) Live() int { return int(r.live.Load()) }

// Initialize loads the model and returns a fresh handle plus the engine
// version. Nothing is allocated when it fails.
func (r *Registry) Initialize(ctx context.Context, modelPath string) (Handle, string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = trace.WithTracer(ctx, r.tracer)
	ctx, span := trace.Start(ctx, trace.ScopeEngine, "initialize")

	if modelPath == "" {
		err := langerr.New(langerr.InvalidArgument, "initialize", "", errors.New("empty model path"))
		span.End(err.Error())
		return NoHandle, "", err
	}
	if err := r.cfg.Validate(); err != nil {
		err := langerr.New(langerr.InvalidArgument, "initialize", "", err)
		span.End(err.Error())
		return NoHandle, "", err
	}

	store, err := r.loader(ctx, modelPath)
	if err != nil {
		var le *langerr.Error
		if !errors.As(err, &le) {
			err = langerr.New(langerr.ModelNotFound, "initialize", modelPath, err)
		}
		span.End(err.Error())
		return NoHandle, "", err
	}

	e := &entry{path: modelPath, clf: classify.New(store, r.cfg)}
	e.state.Store(uint32(stateInitialized))

	r.mu.Lock()
	value, convErr := safecast.Conv[uint64](len(r.entries))
	if convErr != nil {
		r.mu.Unlock()
		panic(fmt.Errorf("handle arena overflow: %w", convErr))
	}
	h := Handle(value)
	r.entries = append(r.entries, e)
	r.mu.Unlock()
	r.live.Add(1)

	span.WithExtra("handle", strconv.FormatUint(uint64(h), 10)).
		WithExtra("languages", strconv.Itoa(store.Len())).
		End("")
	return h, version.Engine, nil
}

func (r *Registry) lookup(h Handle) *entry {
	if !h.IsValid() {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if uint64(h) >= uint64(len(r.entries)) {
		return nil
	}
	return r.entries[h]
}

// Detect classifies text with the handle's model. Handle 0 and handles never
// issued fail with InvalidArgument, released handles with HandleReleased.
// Empty text yields ("und", 0) without error.
func (r *Registry) Detect(ctx context.Context, h Handle, text string) (classify.Result, error) {
	e := r.lookup(h)
	if e == nil {
		return classify.Result{}, langerr.New(langerr.InvalidArgument, "detect", "",
			fmt.Errorf("unknown handle %d", h))
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	if state(e.state.Load()) != stateInitialized {
		return classify.Result{}, langerr.New(langerr.HandleReleased, "detect", "",
			fmt.Errorf("handle %d", h))
	}

	if ctx == nil {
		ctx = context.Background()
	}
	if trace.FromContext(ctx) == trace.Nop {
		ctx = trace.WithTracer(ctx, r.tracer)
	}
	ctx, span := trace.Start(ctx, trace.ScopeCall, "detect")

	res := e.clf.Classify(text)

	tr := trace.FromContext(ctx)
	if tr.Level().ShouldEmit(trace.ScopeLanguage) {
		for _, s := range res.Scores {
			trace.Point(tr, trace.ScopeLanguage, "score:"+s.Code,
				strconv.FormatFloat(s.Score, 'f', 4, 64), trace.CurrentSpan(ctx), nil)
		}
	}
	span.WithExtra("code", res.Code).
		WithExtra("confidence", strconv.FormatFloat(res.Confidence, 'f', 4, 64)).
		WithExtra("runes", strconv.Itoa(len([]rune(text)))).
		End("")
	return res, nil
}

// Release retires the handle. It waits for in-flight detections on the same
// handle, then drops the model. Releasing 0, an unknown handle or an already
// released handle is a no-op.
func (r *Registry) Release(h Handle) {
	e := r.lookup(h)
	if e == nil {
		return
	}
	if !e.state.CompareAndSwap(uint32(stateInitialized), uint32(stateReleased)) {
		return
	}
	span := trace.Begin(r.tracer, trace.ScopeEngine, "release", 0)
	e.mu.Lock()
	e.clf = nil
	e.mu.Unlock()
	r.live.Add(-1)
	span.WithExtra("handle", strconv.FormatUint(uint64(h), 10)).End("")
}

// Info describes a live handle.
type Info struct {
	Handle    Handle
	ModelPath string
	ModelName string
	Digest    profile.Digest
	Languages []string
	Names     map[string]string // code -> display name, when the model has one
}

// Describe returns details of a live handle.
func (r *Registry) Describe(h Handle) (Info, error) {
	e := r.lookup(h)
	if e == nil {
		return Info{}, langerr.New(langerr.InvalidArgument, "describe", "", fmt.Errorf("unknown handle %d", h))
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if state(e.state.Load()) != stateInitialized {
		return Info{}, langerr.New(langerr.HandleReleased, "describe", "", fmt.Errorf("handle %d", h))
	}
	store := e.clf.Store()
	names := make(map[string]string, store.Len())
	store.Each(func(code string, p *profile.LanguageProfile) bool {
		if p.Name() != "" {
			names[code] = p.Name()
		}
		return true
	})
	return Info{
		Handle:    h,
		ModelPath: e.path,
		ModelName: store.Name(),
		Digest:    store.Digest(),
		Languages: store.Codes(),
		Names:     names,
	}, nil
}
