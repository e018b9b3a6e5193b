// Package slogobs provides an observability.Provider implementation backed
// by Go's standard library log/slog package. Spans are logged as start/end
// pairs with their attributes and events; log calls map onto slog levels
// (Trace maps to slog's Debug minus four, matching slog's level arithmetic).
package slogobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/leofalp/aibridge/providers/observability"
)

// LevelTrace sits below slog.LevelDebug, mirroring slog's level spacing.
const LevelTrace = slog.LevelDebug - 4

// Observer implements observability.Provider on top of a slog.Logger.
type Observer struct {
	logger *slog.Logger
}

// New returns an Observer writing through logger. A nil logger falls back to
// slog.Default().
func New(logger *slog.Logger) *Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Observer{logger: logger}
}

var _ observability.Provider = (*Observer)(nil)

// StartSpan logs the span start and returns a context carrying the span.
func (o *Observer) StartSpan(ctx context.Context, name string, attrs ...observability.Attribute) (context.Context, observability.Span) {
	span := &slogSpan{observer: o, name: name, started: time.Now()}
	span.attrs = append(span.attrs, attrs...)
	o.logger.Log(ctx, LevelTrace, "span start", toSlogArgs(attrs, slog.String("span", name))...)
	return observability.ContextWithSpan(ctx, span), span
}

func (o *Observer) Trace(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.Log(ctx, LevelTrace, msg, toSlogArgs(attrs)...)
}

func (o *Observer) Debug(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.Log(ctx, slog.LevelDebug, msg, toSlogArgs(attrs)...)
}

func (o *Observer) Info(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.Log(ctx, slog.LevelInfo, msg, toSlogArgs(attrs)...)
}

func (o *Observer) Warn(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.Log(ctx, slog.LevelWarn, msg, toSlogArgs(attrs)...)
}

func (o *Observer) Error(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.logger.Log(ctx, slog.LevelError, msg, toSlogArgs(attrs)...)
}

// slogSpan is a Span that accumulates attributes and logs events as they
// arrive, then logs a summary line with the elapsed time on End.
type slogSpan struct {
	observer *Observer
	name     string
	started  time.Time

	mu    sync.Mutex
	attrs []observability.Attribute
	err   error
}

func (s *slogSpan) End() {
	s.mu.Lock()
	attrs := append([]observability.Attribute(nil), s.attrs...)
	err := s.err
	s.mu.Unlock()

	args := toSlogArgs(attrs,
		slog.String("span", s.name),
		slog.Duration("elapsed", time.Since(s.started)),
	)
	if err != nil {
		args = append(args, slog.String("error", err.Error()))
		s.observer.logger.Warn("span end", args...)
		return
	}
	s.observer.logger.Log(context.Background(), LevelTrace, "span end", args...)
}

func (s *slogSpan) SetAttributes(attrs ...observability.Attribute) {
	s.mu.Lock()
	s.attrs = append(s.attrs, attrs...)
	s.mu.Unlock()
}

func (s *slogSpan) RecordError(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *slogSpan) AddEvent(name string, attrs ...observability.Attribute) {
	s.observer.logger.Log(context.Background(), LevelTrace, name, toSlogArgs(attrs, slog.String("span", s.name))...)
}

func toSlogArgs(attrs []observability.Attribute, extra ...slog.Attr) []any {
	args := make([]any, 0, len(attrs)+len(extra))
	for _, a := range attrs {
		args = append(args, slog.Any(a.Key, a.Value))
	}
	for _, a := range extra {
		args = append(args, a)
	}
	return args
}
