package langid

import (
	"context"
	"strings"

	"langid/internal/classify"
	"langid/internal/engine"
	"langid/internal/langerr"
	"langid/internal/profile"
	"langid/internal/trace"
	"langid/internal/version"
	"langid/models"
)

// Undetermined is the code returned when no language is confident enough.
const Undetermined = classify.Undetermined

// EmbeddedModel is a model path that loads the model compiled into the binary.
const EmbeddedModel = "embedded:default"

type (
	// Handle identifies an initialized model. The zero Handle is never issued.
	Handle = engine.Handle
	// Result carries the detected code, its confidence and the ranked scores.
	Result = classify.Result
	// Score is one language's raw similarity.
	Score = classify.Score
	// Config tunes scoring weights, thresholds and calibration.
	Config = classify.Config
	// Calibration selects how confidence is reported.
	Calibration = classify.Calibration
	// Kind classifies errors.
	Kind = langerr.Kind
	// Error is the error type returned by every operation.
	Error = langerr.Error
)

// Error kinds.
const (
	InvalidArgument = langerr.InvalidArgument
	ModelNotFound   = langerr.ModelNotFound
	ModelCorrupt    = langerr.ModelCorrupt
	HandleReleased  = langerr.HandleReleased
)

// Calibrations.
const (
	CalibrationMargin = classify.CalibrationMargin
	CalibrationRaw    = classify.CalibrationRaw
)

// Sentinels for errors.Is.
var (
	ErrInvalidArgument = langerr.ErrInvalidArgument
	ErrModelNotFound   = langerr.ErrModelNotFound
	ErrModelCorrupt    = langerr.ErrModelCorrupt
	ErrHandleReleased  = langerr.ErrHandleReleased
)

// KindOf returns the Kind of err, or langerr.Unknown for foreign errors.
func KindOf(err error) Kind { return langerr.KindOf(err) }

// DefaultConfig returns weights 1:2:4, floor 0.15, epsilon 0.01 and margin calibration.
func DefaultConfig() Config { return classify.DefaultConfig() }

// Engine owns a set of handles sharing one scoring configuration.
// It is safe for concurrent use.
type Engine struct {
	reg *engine.Registry
}

type options struct {
	cfg    Config
	tracer trace.Tracer
}

// Option configures an Engine.
type Option func(*options)

// WithConfig replaces the whole scoring configuration.
func WithConfig(cfg Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithWeights sets the unigram, bigram and trigram weights.
func WithWeights(uni, bi, tri float64) Option {
	return func(o *options) { o.cfg.Weights = classify.Weights{uni, bi, tri} }
}

// WithFloor sets the minimum raw score for a committed language.
func WithFloor(floor float64) Option {
	return func(o *options) { o.cfg.Floor = floor }
}

// WithEpsilon sets the minimum lead over the runner-up.
func WithEpsilon(eps float64) Option {
	return func(o *options) { o.cfg.Epsilon = eps }
}

// WithCalibration selects how confidence is reported.
func WithCalibration(c Calibration) Option {
	return func(o *options) { o.cfg.Calibration = c }
}

// WithTracer sends engine events to t.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// New creates an Engine. An invalid configuration is reported by Initialize.
func New(opts ...Option) *Engine {
	o := options{cfg: classify.DefaultConfig(), tracer: trace.Nop}
	for _, opt := range opts {
		opt(&o)
	}
	return &Engine{reg: engine.NewRegistry(
		engine.WithConfig(o.cfg),
		engine.WithTracer(o.tracer),
		engine.WithLoader(loadModel),
	)}
}

func loadModel(ctx context.Context, modelPath string) (*profile.Store, error) {
	if strings.EqualFold(modelPath, EmbeddedModel) {
		return profile.LoadFS(ctx, models.Default(), ".")
	}
	return profile.Load(ctx, modelPath)
}

// Initialize loads the model at modelPath, which may be a model directory,
// a model.toml, a compiled .lidm file or EmbeddedModel. It returns a new
// handle and the engine version.
func (e *Engine) Initialize(ctx context.Context, modelPath string) (Handle, string, error) {
	return e.reg.Initialize(ctx, modelPath)
}

// Detect classifies text. Empty text yields ("und", 0).
func (e *Engine) Detect(ctx context.Context, h Handle, text string) (Result, error) {
	return e.reg.Detect(ctx, h, text)
}

// DetectLanguage returns only the language code of Detect.
func (e *Engine) DetectLanguage(ctx context.Context, h Handle, text string) (string, error) {
	res, err := e.reg.Detect(ctx, h, text)
	if err != nil {
		return "", err
	}
	return res.Code, nil
}

// Release retires h after in-flight detections on it finish. Releasing the
// zero handle, an unknown handle or a released handle does nothing.
func (e *Engine) Release(h Handle) { e.reg.Release(h) }

// ModelInfo describes the model behind a handle.
type ModelInfo struct {
	Name      string            `json:"name"`
	Path      string            `json:"path"`
	Digest    string            `json:"digest"`
	Languages []string          `json:"languages"`
	Names     map[string]string `json:"names,omitempty"`
}

// Model describes h's model. The digest changes whenever any profile does.
func (e *Engine) Model(h Handle) (ModelInfo, error) {
	info, err := e.reg.Describe(h)
	if err != nil {
		return ModelInfo{}, err
	}
	return ModelInfo{
		Name:      info.ModelName,
		Path:      info.ModelPath,
		Digest:    info.Digest.String(),
		Languages: info.Languages,
		Names:     info.Names,
	}, nil
}

// Languages lists the codes known to h's model.
func (e *Engine) Languages(h Handle) ([]string, error) {
	info, err := e.Model(h)
	if err != nil {
		return nil, err
	}
	return info.Languages, nil
}

// Live reports how many handles are initialized and not yet released.
func (e *Engine) Live() int { return e.reg.Live() }

var std = New()

// Initialize loads a model into the default engine.
func Initialize(modelPath string) (Handle, string, error) {
	return std.Initialize(context.Background(), modelPath)
}

// Detect classifies text with the default engine.
func Detect(h Handle, text string) (Result, error) {
	return std.Detect(context.Background(), h, text)
}

// DetectLanguage returns the language code of text using the default engine.
func DetectLanguage(h Handle, text string) (string, error) {
	return std.DetectLanguage(context.Background(), h, text)
}

// Release retires a handle of the default engine.
func Release(h Handle) { std.Release(h) }

// GetVersion returns the engine version. It does not depend on any handle.
func GetVersion() string { return version.Engine }
