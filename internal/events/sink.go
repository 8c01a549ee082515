package events

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/nguyentantai21042004/context-flow/pkg/jsonenc"
)

// Funcs adapts host callbacks to a Sink. Nil callbacks are skipped.
type Funcs struct {
	OnStatus   func(name, message string)
	OnProgress func(name string, total, processed int, remaining time.Duration)
	OnUpdate   func(ev Event)
}

func (f Funcs) Status(_ context.Context, name, message string) {
	if f.OnStatus != nil {
		f.OnStatus(name, message)
	}
}

func (f Funcs) Progress(_ context.Context, name string, total, processed int, remaining time.Duration) {
	if f.OnProgress != nil {
		f.OnProgress(name, total, processed, remaining)
	}
}

func (f Funcs) Publish(_ context.Context, ev Event) {
	if f.OnUpdate != nil {
		f.OnUpdate(ev)
	}
}

type jsonLinesSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewJSONLines writes every published event as one JSON object per line.
// Status and progress are not written.
func NewJSONLines(w io.Writer) Sink {
	return &jsonLinesSink{w: w}
}

func (s *jsonLinesSink) Status(context.Context, string, string) {}

func (s *jsonLinesSink) Progress(context.Context, string, int, int, time.Duration) {}

func (s *jsonLinesSink) Publish(_ context.Context, ev Event) {
	line, err := jsonenc.Marshal(ev, "")
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = s.w.Write(append(line, '\n'))
}

type multiSink []Sink

// Multi fans every call out to sinks in order.
func Multi(sinks ...Sink) Sink {
	return multiSink(sinks)
}

func (m multiSink) Status(ctx context.Context, name, message string) {
	for _, s := range m {
		s.Status(ctx, name, message)
	}
}

func (m multiSink) Progress(ctx context.Context, name string, total, processed int, remaining time.Duration) {
	for _, s := range m {
		s.Progress(ctx, name, total, processed, remaining)
	}
}

func (m multiSink) Publish(ctx context.Context, ev Event) {
	for _, s := range m {
		s.Publish(ctx, ev)
	}
}
