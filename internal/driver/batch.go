// Package driver runs detections over many files with a bounded worker pool.
package driver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"langid/internal/classify"
	"langid/internal/trace"
)

// TextExt is the extension collected when walking directories.
const TextExt = ".txt"

// Detector classifies one text.
type Detector interface {
	Detect(ctx context.Context, text string) (classify.Result, error)
}

// DetectorFunc adapts a function to Detector.
type DetectorFunc func(ctx context.Context, text string) (classify.Result, error)

// Detect implements Detector.
func (f DetectorFunc) Detect(ctx context.Context, text string) (classify.Result, error) {
	return f(ctx, text)
}

// FileResult is the outcome for one input file.
type FileResult struct {
	Path    string          `json:"path"`
	Result  classify.Result `json:"result"`
	Err     error           `json:"-"`
	Cached  bool            `json:"cached,omitempty"`
	Elapsed time.Duration   `json:"-"`
}

// Options tunes DetectFiles.
type Options struct {
	Jobs     int          // max parallel workers (0 = GOMAXPROCS)
	Progress ProgressSink // optional
	Cache    *ResultCache // optional
	CacheKey []byte       // model/config fingerprint mixed into cache keys
}

// ListTextFiles expands inputs into a sorted, de-duplicated file list.
// Directories are walked for *.txt files; plain files are taken as given.
func ListTextFiles(inputs ...string) ([]string, error) {
	var files []string
	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, in)
			continue
		}
		err = filepath.WalkDir(in, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.EqualFold(filepath.Ext(path), TextExt) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

// DetectFiles detects the language of every file in parallel. Results keep
// the order of files. Per-file failures are reported in FileResult.Err; the
// returned error is only set when ctx is cancelled.
func DetectFiles(ctx context.Context, det Detector, files []string, opts Options) ([]FileResult, error) {
	if det == nil {
		return nil, errors.New("driver: nil detector")
	}
	if len(files) == 0 {
		return nil, nil
	}
	sink := opts.Progress
	if sink == nil {
		sink = nopSink{}
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	ctx, span := trace.Start(ctx, trace.ScopeHost, "batch")
	span.WithExtra("files", strconv.Itoa(len(files))).WithExtra("jobs", strconv.Itoa(jobs))

	for _, f := range files {
		sink.OnEvent(Event{File: f, Status: StatusQueued})
	}

	// each goroutine writes only its own index
	results := make([]FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = detectFile(gctx, det, path, opts, sink)
			return nil
		})
	}
	err := g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	span.WithExtra("failed", strconv.Itoa(failed))
	if err != nil {
		span.End(err.Error())
		return results, err
	}
	span.End("")
	return results, nil
}

func detectFile(ctx context.Context, det Detector, path string, opts Options, sink ProgressSink) FileResult {
	start := time.Now()
	fail := func(err error) FileResult {
		elapsed := time.Since(start)
		sink.OnEvent(Event{File: path, Status: StatusError, Err: err, Elapsed: elapsed})
		return FileResult{Path: path, Err: err, Elapsed: elapsed}
	}

	sink.OnEvent(Event{File: path, Status: StatusReading})
	data, err := os.ReadFile(path)
	if err != nil {
		return fail(err)
	}
	text := strings.ToValidUTF8(string(data), "�")

	var key CacheKey
	if opts.Cache != nil {
		key = opts.Cache.Key(opts.CacheKey, data)
		var cached classify.Result
		if ok, err := opts.Cache.Get(key, &cached); err == nil && ok {
			elapsed := time.Since(start)
			sink.OnEvent(Event{File: path, Status: StatusCached, Code: cached.Code, Elapsed: elapsed})
			return FileResult{Path: path, Result: cached, Cached: true, Elapsed: elapsed}
		}
	}

	sink.OnEvent(Event{File: path, Status: StatusDetecting})
	res, err := det.Detect(ctx, text)
	if err != nil {
		return fail(fmt.Errorf("%s: %w", path, err))
	}
	if opts.Cache != nil {
		// a failed cache write only costs a re-detection next time
		_ = opts.Cache.Put(key, &res)
	}
	elapsed := time.Since(start)
	sink.OnEvent(Event{File: path, Status: StatusDone, Code: res.Code, Elapsed: elapsed})
	return FileResult{Path: path, Result: res, Elapsed: elapsed}
}
