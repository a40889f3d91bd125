// Package trace is the structured event sink used by the langid engine and CLI.
//
// The engine never writes to a global logger. Callers inject a Tracer, either
// directly as an engine option or through a context, and every model load,
// handle transition and detection becomes a span in that tracer.
//
// # Usage
//
//	langid detect --trace=- --trace-level=detail "Der schnelle braune Fuchs"
//
// # Tracers
//
//   - Nop: zero-overhead sink used when tracing is off
//   - StreamTracer: writes each event immediately (file or stderr)
//   - RingTracer: keeps the last N events for dumps after a crash
//   - MultiTracer: fans out to several tracers
//
// # Levels and scopes
//
// LevelPhase emits ScopeHost and ScopeEngine events (CLI commands, model
// loads, initialize and release). LevelDetail adds ScopeCall (one span per
// detection). LevelDebug adds ScopeLanguage (per-language scores and per-language
// profile builds).
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(ctx, trace.ScopeEngine, "load")
//	defer span.End("")
package trace
