package main

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"langid/internal/driver"
	"langid/internal/ui"
)

type batchOutcome struct {
	results []driver.FileResult
	err     error
}

func runBatchWithUI(ctx context.Context, out io.Writer, title string, det driver.Detector, files []string, opts driver.Options) ([]driver.FileResult, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan batchOutcome, 1)

	go func() {
		opts.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.DetectFiles(ctx, det, files, opts)
		outcomeCh <- batchOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(out), tea.WithContext(ctx))
	_, uiErr := program.Run()
	// keep workers unblocked if the UI stopped early
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
