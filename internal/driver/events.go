package driver

import "time"

// Status captures the progress of one file in a batch.
type Status string

const (
	// StatusQueued indicates the file is waiting for a worker.
	StatusQueued Status = "queued"
	// StatusReading indicates the file is being read.
	StatusReading Status = "reading"
	// StatusDetecting indicates the text is being classified.
	StatusDetecting Status = "detecting"
	// StatusDone indicates the file has a result.
	StatusDone Status = "done"
	// StatusCached indicates the result came from the result cache.
	StatusCached Status = "cached"
	// StatusError indicates the file could not be processed.
	StatusError Status = "error"
)

// Finished reports whether s is terminal.
func (s Status) Finished() bool {
	return s == StatusDone || s == StatusCached || s == StatusError
}

// Event reports progress for a file.
type Event struct {
	File    string
	Status  Status
	Code    string // detected code once finished
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Implementations must be goroutine-safe.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

// OnEvent implements ProgressSink.
func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

type nopSink struct{}

func (nopSink) OnEvent(Event) {}
