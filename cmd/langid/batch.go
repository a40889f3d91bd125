package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"langid"
	"langid/internal/driver"
)

var batchCmd = &cobra.Command{
	Use:   "batch [flags] <file|dir>...",
	Short: "Detect the language of many files",
	Long:  "Detect the language of each file; directories are searched for *.txt files.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  batchExecution,
}

func init() {
	batchCmd.Flags().Int("jobs", 0, "max parallel jobs (0 = [batch].jobs or GOMAXPROCS)")
	batchCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	batchCmd.Flags().String("format", "text", "output format (text|json)")
	batchCmd.Flags().Bool("no-cache", false, "do not read or write the result cache")
}

type batchRecord struct {
	Path       string  `json:"path"`
	Code       string  `json:"code,omitempty"`
	Confidence float64 `json:"confidence"`
	Cached     bool    `json:"cached,omitempty"`
	Error      string  `json:"error,omitempty"`
}

func batchExecution(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	format = strings.ToLower(format)
	if format != "text" && format != "json" {
		return fmt.Errorf("unsupported format %q (must be text or json)", format)
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return err
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	files, err := driver.ListTextFiles(args...)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no %s files found", driver.TextExt)
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	eng, h, err := s.engine()
	if err != nil {
		return err
	}
	if jobs <= 0 {
		jobs = s.cfg.Jobs
	}
	opts := driver.Options{Jobs: jobs}
	if !noCache {
		opts.Cache, opts.CacheKey, err = openBatchCache(eng, h, s)
		if err != nil {
			// the cache is an optimization only
			s.infof("cache disabled: %v\n", err)
		}
	}

	det := driver.DetectorFunc(func(ctx context.Context, text string) (langid.Result, error) {
		return eng.Detect(ctx, h, text)
	})

	var results []driver.FileResult
	err = s.timer.Measure("batch", func() error {
		var err error
		if format == "text" && shouldUseTUI(mode) {
			results, err = runBatchWithUI(s.ctx(), cmd.ErrOrStderr(), "langid batch", det, files, opts)
		} else {
			results, err = driver.DetectFiles(s.ctx(), det, files, opts)
		}
		return err
	})
	if err != nil {
		return err
	}

	records := make([]batchRecord, len(results))
	failed, cached := 0, 0
	for i, r := range results {
		records[i] = batchRecord{Path: r.Path, Cached: r.Cached}
		if r.Err != nil {
			records[i].Error = r.Err.Error()
			failed++
			continue
		}
		if r.Cached {
			cached++
		}
		records[i].Code = r.Result.Code
		records[i].Confidence = r.Result.Confidence
	}

	if format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			return err
		}
	} else {
		renderBatchText(cmd.OutOrStdout(), records)
	}
	s.infof("%d files, %d cached, %d failed\n", len(records), cached, failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(records))
	}
	return nil
}

func openBatchCache(eng *langid.Engine, h langid.Handle, s *session) (*driver.ResultCache, []byte, error) {
	info, err := eng.Model(h)
	if err != nil {
		return nil, nil, err
	}
	cache, err := driver.OpenResultCache("langid")
	if err != nil {
		return nil, nil, err
	}
	det := s.cfg.Detector
	key := fmt.Sprintf("%s|%v|%v|%v|%s", info.Digest, det.Weights, det.Floor, det.Epsilon, det.Calibration)
	return cache, []byte(key), nil
}

func renderBatchText(out io.Writer, records []batchRecord) {
	for _, r := range records {
		if r.Error != "" {
			fmt.Fprintf(out, "%s\terror: %s\n", r.Path, r.Error)
			continue
		}
		code := codeColor.Sprint(r.Code)
		if r.Code == langid.Undetermined {
			code = undColor.Sprint(r.Code)
		}
		fmt.Fprintf(out, "%s\t%s\t%.4f\n", r.Path, code, r.Confidence)
	}
}
