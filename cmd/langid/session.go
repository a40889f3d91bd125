package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"langid"
	"langid/internal/config"
	"langid/internal/observ"
	"langid/internal/profile"
	"langid/internal/trace"
	"langid/models"
)

// session carries the state shared by every subcommand: resolved settings,
// the tracer and the phase timer.
type session struct {
	cmd       *cobra.Command
	cfg       config.Config
	modelPath string
	tracer    trace.Tracer
	timer     *observ.Timer
	quiet     bool
	cleanups  []func()
}

func openSession(cmd *cobra.Command) (*session, error) {
	pf := cmd.Root().PersistentFlags()

	colorFlag, err := pf.GetString("color")
	if err != nil {
		return nil, fmt.Errorf("failed to get color flag: %w", err)
	}
	if err := applyColorFlag(colorFlag); err != nil {
		return nil, err
	}
	quiet, err := pf.GetBool("quiet")
	if err != nil {
		return nil, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	showTimings, err := pf.GetBool("timings")
	if err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	configPath, err := pf.GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	modelFlag, err := pf.GetString("model")
	if err != nil {
		return nil, fmt.Errorf("failed to get model flag: %w", err)
	}

	var cfg config.Config
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.Discover(".")
	}
	if err != nil {
		return nil, err
	}

	s := &session{
		cmd:       cmd,
		cfg:       cfg,
		modelPath: resolveModelPath(modelFlag, cfg),
		quiet:     quiet,
	}
	if showTimings {
		s.timer = observ.NewTimer()
	}

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return nil, err
	}
	s.cleanups = append(s.cleanups, stopProfiling)

	tracer, stopTracing, err := setupTracing(cmd)
	if err != nil {
		s.close()
		return nil, err
	}
	s.tracer = tracer
	s.cleanups = append(s.cleanups, stopTracing)
	return s, nil
}

// resolveModelPath prefers --model, then [model].path, then the embedded model.
func resolveModelPath(flag string, cfg config.Config) string {
	if p := strings.TrimSpace(flag); p != "" {
		return p
	}
	if cfg.ModelPath != "" {
		return cfg.ModelPath
	}
	return langid.EmbeddedModel
}

func (s *session) ctx() context.Context {
	if ctx := s.cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// engine initializes the configured model and returns the engine and handle.
func (s *session) engine() (*langid.Engine, langid.Handle, error) {
	eng := langid.New(langid.WithConfig(s.cfg.Detector), langid.WithTracer(s.tracer))
	var h langid.Handle
	err := s.timer.Measure("load model", func() error {
		var err error
		h, _, err = eng.Initialize(s.ctx(), s.modelPath)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	s.cleanups = append(s.cleanups, func() { eng.Release(h) })
	return eng, h, nil
}

// store loads the model without an engine, for commands that inspect or
// rewrite profiles.
func (s *session) store() (*profile.Store, error) {
	var store *profile.Store
	err := s.timer.Measure("load model", func() error {
		var err error
		ctx := trace.WithTracer(s.ctx(), s.tracer)
		if strings.EqualFold(s.modelPath, langid.EmbeddedModel) {
			store, err = profile.LoadFS(ctx, models.Default(), ".")
		} else {
			store, err = profile.Load(ctx, s.modelPath)
		}
		return err
	})
	return store, err
}

func (s *session) infof(format string, args ...any) {
	if s.quiet {
		return
	}
	fmt.Fprintf(s.cmd.ErrOrStderr(), format, args...)
}

// close runs cleanups in reverse order and prints timings.
func (s *session) close() {
	for i := len(s.cleanups) - 1; i >= 0; i-- {
		s.cleanups[i]()
	}
	s.cleanups = nil
	if s.timer != nil {
		if err := printTimings(s.cmd.ErrOrStderr(), s.timer, false); err != nil {
			fmt.Fprintf(os.Stderr, "timings: %v\n", err)
		}
	}
}
