package profile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"runtime"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"golang.org/x/sync/errgroup"

	"langid/internal/trace"
)

// ErrAmbiguousSource indicates a language entry without exactly one of
// corpus, corpus_file and ngrams.
var ErrAmbiguousSource = errors.New("exactly one of corpus, corpus_file or ngrams is required")

type sourceModel struct {
	Model struct {
		Name string `toml:"name"`
		Top  int    `toml:"top"`
	} `toml:"model"`
	Languages []sourceLanguage `toml:"language"`
}

type sourceLanguage struct {
	Code       string             `toml:"code"`
	Name       string             `toml:"name"`
	Corpus     string             `toml:"corpus"`
	CorpusFile string             `toml:"corpus_file"`
	NGrams     map[string]float64 `toml:"ngrams"`
}

// decodeSource parses a TOML model and builds its profiles in parallel.
// dir is the model's directory inside fsys; corpus files resolve against it.
func decodeSource(ctx context.Context, fsys fs.FS, dir string, data []byte) (*Store, error) {
	var src sourceModel
	meta, err := toml.Decode(string(data), &src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	if !meta.IsDefined("language") || len(src.Languages) == 0 {
		return nil, ErrNoLanguages
	}
	if src.Model.Top < 0 {
		return nil, fmt.Errorf("invalid [model].top %d: must be >= 0", src.Model.Top)
	}

	profiles := make([]*LanguageProfile, len(src.Languages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(runtime.GOMAXPROCS(0), len(src.Languages)))
	for i, lang := range src.Languages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := buildLanguage(gctx, fsys, dir, lang, src.Model.Top)
			if err != nil {
				return fmt.Errorf("language #%d: %w", i+1, err)
			}
			profiles[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return NewStore(src.Model.Name, profiles...)
}

func buildLanguage(ctx context.Context, fsys fs.FS, dir string, lang sourceLanguage, top int) (*LanguageProfile, error) {
	_, span := trace.Start(ctx, trace.ScopeLanguage, "profile:"+lang.Code)

	sources := 0
	for _, set := range []bool{lang.Corpus != "", lang.CorpusFile != "", lang.NGrams != nil} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		span.End("ambiguous source")
		return nil, fmt.Errorf("%s: %w", lang.Code, ErrAmbiguousSource)
	}

	var (
		p   *LanguageProfile
		err error
	)
	switch {
	case lang.NGrams != nil:
		p, err = FromFrequencies(lang.Code, lang.Name, lang.NGrams)
	case lang.Corpus != "":
		p, err = FromText(lang.Code, lang.Name, lang.Corpus, top)
	default:
		var text string
		text, err = readCorpus(fsys, dir, lang.CorpusFile)
		if err == nil {
			p, err = FromText(lang.Code, lang.Name, text, top)
		}
	}
	if err != nil {
		span.End(err.Error())
		return nil, err
	}
	span.WithExtra("unigrams", strconv.Itoa(p.Len(1))).
		WithExtra("bigrams", strconv.Itoa(p.Len(2))).
		WithExtra("trigrams", strconv.Itoa(p.Len(3))).
		End("")
	return p, nil
}

func readCorpus(fsys fs.FS, dir, file string) (string, error) {
	rel := strings.ReplaceAll(strings.TrimSpace(file), "\\", "/")
	name := path.Join(dir, rel)
	if path.IsAbs(rel) || !fs.ValidPath(name) {
		return "", fmt.Errorf("corpus_file %q escapes the model directory", file)
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return "", fmt.Errorf("corpus_file %q: %w", file, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("corpus_file %q is not valid UTF-8", file)
	}
	return string(data), nil
}
