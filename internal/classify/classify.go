// Package classify scores normalized text against a profile store and
// decides between a language code and "und".
//
// A Classifier is immutable and safe for concurrent use.
package classify

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"langid/internal/ngram"
	"langid/internal/profile"
)

// Undetermined is returned when no language clears the floor or the top two tie.
const Undetermined = profile.Undetermined

const (
	// DefaultFloor is the minimum raw score needed to commit to a language.
	DefaultFloor = 0.15
	// DefaultEpsilon is the minimum lead of the top language over the runner-up.
	DefaultEpsilon = 0.01
)

// Weights holds one weight per n-gram order, unigrams first.
type Weights [ngram.MaxOrder]float64

// DefaultWeights favors trigrams 1:2:4.
var DefaultWeights = Weights{1, 2, 4}

// Calibration selects how a committed score is reported as confidence.
type Calibration uint8

const (
	// CalibrationMargin reports min(1, top + (top - second)).
	CalibrationMargin Calibration = iota
	// CalibrationRaw reports the top weighted cosine unchanged.
	CalibrationRaw
)

func (c Calibration) String() string {
	if c == CalibrationRaw {
		return "raw"
	}
	return "margin"
}

// ParseCalibration converts "margin" or "raw".
func ParseCalibration(s string) (Calibration, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "margin":
		return CalibrationMargin, nil
	case "raw":
		return CalibrationRaw, nil
	}
	return CalibrationMargin, fmt.Errorf("invalid calibration %q (expected margin|raw)", s)
}

// Config tunes scoring and the decision rule.
type Config struct {
	Weights     Weights
	Floor       float64
	Epsilon     float64
	Calibration Calibration
}

// DefaultConfig returns weights 1:2:4, floor 0.15, epsilon 0.01, margin calibration.
func DefaultConfig() Config {
	return Config{
		Weights:     DefaultWeights,
		Floor:       DefaultFloor,
		Epsilon:     DefaultEpsilon,
		Calibration: CalibrationMargin,
	}
}

// Validate rejects weights that cannot form an average and thresholds outside [0,1].
func (c Config) Validate() error {
	total := 0.0
	for i, w := range c.Weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return fmt.Errorf("weight for order %d is %v, want a finite value >= 0", i+1, w)
		}
		total += w
	}
	if total == 0 {
		return errors.New("all n-gram weights are zero")
	}
	if math.IsNaN(c.Floor) || c.Floor < 0 || c.Floor > 1 {
		return fmt.Errorf("floor %v outside [0,1]", c.Floor)
	}
	if math.IsNaN(c.Epsilon) || c.Epsilon < 0 || c.Epsilon > 1 {
		return fmt.Errorf("epsilon %v outside [0,1]", c.Epsilon)
	}
	if c.Calibration > CalibrationRaw {
		return fmt.Errorf("unknown calibration %d", c.Calibration)
	}
	return nil
}

// ParseWeights reads "1:2:4" or "1,2,4".
func ParseWeights(s string) (Weights, error) {
	var w Weights
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ':' || r == ',' || r == ' ' })
	if len(parts) != len(w) {
		return w, fmt.Errorf("invalid weights %q: want %d values", s, len(w))
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return w, fmt.Errorf("invalid weights %q: %w", s, err)
		}
		w[i] = v
	}
	return w, nil
}

// Score is one language's raw weighted cosine.
type Score struct {
	Code  string  `json:"code"`
	Score float64 `json:"score"`
}

// Result is the outcome of one classification.
type Result struct {
	Code       string  `json:"code"`
	Confidence float64 `json:"confidence"`
	// Scores holds every language ranked best first; nil for empty input.
	Scores []Score `json:"scores,omitempty"`
}

// Undetermined reports whether no language was committed to.
func (r Result) Undetermined() bool { return r.Code == Undetermined }

// Classifier binds a store to a configuration.
type Classifier struct {
	store *profile.Store
	cfg   Config
}

// New returns a classifier over store. It panics on a nil or empty store;
// callers validate cfg with Config.Validate first.
func New(store *profile.Store, cfg Config) *Classifier {
	if store == nil || store.Len() == 0 {
		panic("classify: empty profile store")
	}
	if err := cfg.Validate(); err != nil {
		panic("classify: " + err.Error())
	}
	return &Classifier{store: store, cfg: cfg}
}

// Config returns the classifier configuration.
func (c *Classifier) Config() Config { return c.cfg }

// Store returns the underlying profile store.
func (c *Classifier) Store() *profile.Store { return c.store }

type textVector struct {
	vec  ngram.Vector
	keys []string
	norm float64
}

func (c *Classifier) vectorize(normalized string) [ngram.MaxOrder]textVector {
	var out [ngram.MaxOrder]textVector
	for order := ngram.MinOrder; order <= ngram.MaxOrder; order++ {
		v := ngram.Extract(normalized, order)
		out[order-1] = textVector{vec: v, keys: ngram.Keys(v), norm: ngram.Norm(v)}
	}
	return out
}

// score is Σ w_k·cos_k / Σ w_k over the orders the text actually has.
func (c *Classifier) score(tv *[ngram.MaxOrder]textVector, p *profile.LanguageProfile) float64 {
	num, den := 0.0, 0.0
	for order := ngram.MinOrder; order <= ngram.MaxOrder; order++ {
		t := &tv[order-1]
		w := c.cfg.Weights[order-1]
		if len(t.keys) == 0 || w == 0 {
			continue
		}
		den += w
		pn := p.Norm(order)
		if pn == 0 {
			continue
		}
		num += w * p.Dot(order, t.keys, t.vec) / (t.norm * pn)
	}
	if den == 0 {
		return 0
	}
	s := num / den
	if math.IsNaN(s) || s < 0 || s > 1+1e-9 {
		panic(fmt.Sprintf("classify: similarity %v for %s outside [0,1]", s, p.Code()))
	}
	return min(s, 1)
}

// Rank scores the text against every profile, best first; ties are
// broken by code so the order never depends on map iteration.
func (c *Classifier) Rank(text string) []Score {
	normalized := ngram.Normalize(text)
	if normalized == "" {
		return c.zeroScores()
	}
	tv := c.vectorize(normalized)
	scores := make([]Score, 0, c.store.Len())
	c.store.Each(func(code string, p *profile.LanguageProfile) bool {
		scores = append(scores, Score{Code: code, Score: c.score(&tv, p)})
		return true
	})
	slices.SortStableFunc(scores, func(a, b Score) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return strings.Compare(a.Code, b.Code)
		}
	})
	return scores
}

func (c *Classifier) zeroScores() []Score {
	scores := make([]Score, 0, c.store.Len())
	c.store.Each(func(code string, _ *profile.LanguageProfile) bool {
		scores = append(scores, Score{Code: code})
		return true
	})
	return scores
}

// Classify returns the committed language, or "und" with the top raw score
// when the top score is below the floor or within epsilon of the runner-up.
// Empty text (or text without letters) yields ("und", 0).
func (c *Classifier) Classify(text string) Result {
	if text == "" {
		return Result{Code: Undetermined}
	}
	scores := c.Rank(text)
	return c.Decide(scores)
}

// Decide applies the floor, tie and calibration rules to ranked scores.
func (c *Classifier) Decide(scores []Score) Result {
	if len(scores) == 0 {
		return Result{Code: Undetermined}
	}
	top := scores[0].Score
	second := 0.0
	if len(scores) > 1 {
		second = scores[1].Score
	}
	if top < c.cfg.Floor || top-second < c.cfg.Epsilon {
		return Result{Code: Undetermined, Confidence: top, Scores: scores}
	}
	conf := top
	if c.cfg.Calibration == CalibrationMargin {
		conf = min(1, top+(top-second))
	}
	return Result{Code: scores[0].Code, Confidence: conf, Scores: scores}
}
