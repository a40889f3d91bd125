package profile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"langid/internal/langerr"
	"langid/internal/trace"
)

const (
	// SourceModelName is probed first when the model path is a directory.
	SourceModelName = "model.toml"
	// CompiledModelName is probed when a directory has no source model.
	CompiledModelName = "model.lidm"

	sourceExt   = ".toml"
	compiledExt = ".lidm"
)

// Load reads a model from a directory, a TOML source model or a compiled
// model. Absent or unreadable resources fail with langerr.ModelNotFound,
// undecodable or invalid ones with langerr.ModelCorrupt.
func Load(ctx context.Context, modelPath string) (*Store, error) {
	if strings.TrimSpace(modelPath) == "" {
		return nil, langerr.New(langerr.InvalidArgument, "load", "", errors.New("empty model path"))
	}
	info, err := os.Stat(modelPath)
	if err != nil {
		return nil, langerr.New(langerr.ModelNotFound, "load", modelPath, err)
	}
	if info.IsDir() {
		return load(ctx, os.DirFS(modelPath), ".", modelPath)
	}
	return load(ctx, os.DirFS(filepath.Dir(modelPath)), filepath.Base(modelPath), modelPath)
}

// LoadFS is Load over an fs.FS; name may be a directory or a model file.
func LoadFS(ctx context.Context, fsys fs.FS, name string) (*Store, error) {
	return load(ctx, fsys, name, name)
}

func load(ctx context.Context, fsys fs.FS, name, display string) (*Store, error) {
	ctx, span := trace.Start(ctx, trace.ScopeEngine, "load")
	span.WithExtra("path", display)

	store, err := loadResolved(ctx, fsys, name, display)
	if err != nil {
		span.End(err.Error())
		return nil, err
	}
	span.WithExtra("languages", strconv.Itoa(store.Len())).
		WithExtra("digest", store.Digest().Short()).
		End("")
	return store, nil
}

func loadResolved(ctx context.Context, fsys fs.FS, name, display string) (*Store, error) {
	info, err := fs.Stat(fsys, name)
	if err != nil {
		return nil, langerr.New(langerr.ModelNotFound, "load", display, err)
	}
	if info.IsDir() {
		found := false
		for _, candidate := range []string{SourceModelName, CompiledModelName} {
			if _, err := fs.Stat(fsys, path.Join(name, candidate)); err == nil {
				name = path.Join(name, candidate)
				display = filepath.Join(display, candidate)
				found = true
				break
			}
		}
		if !found {
			return nil, langerr.New(langerr.ModelNotFound, "load", display,
				fmt.Errorf("directory holds neither %s nor %s", SourceModelName, CompiledModelName))
		}
	}

	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, langerr.New(langerr.ModelNotFound, "load", display, err)
	}

	var store *Store
	switch {
	case strings.EqualFold(path.Ext(name), compiledExt):
		store, err = decodeCompiled(data)
	case strings.EqualFold(path.Ext(name), sourceExt):
		store, err = decodeSource(ctx, fsys, path.Dir(name), data)
	case looksCompiled(data):
		store, err = decodeCompiled(data)
	default:
		store, err = decodeSource(ctx, fsys, path.Dir(name), data)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, langerr.New(langerr.ModelCorrupt, "load", display, err)
	}
	return store, nil
}
