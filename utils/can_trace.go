package utils

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"go.einride.tech/can"
)

type CANWriter interface {
	WriteFrame(ctx context.Context, frame can.Frame) error
	Close() error
}

// TraceWriter records frames as candump log lines:
//
//	(1436509052.249713) servo0 310#A0860100B80B0000
type TraceWriter struct {
	mu    sync.Mutex
	out   io.Writer
	file  *os.File
	iface string
	now   func() time.Time
}

// NewTraceFileWriter truncates path and traces into it
func NewTraceFileWriter(path, iface string) (*TraceWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create trace: %w", err)
	}
	w := NewTraceWriter(f, iface)
	w.file = f
	return w, nil
}

// NewTraceWriter traces into w; Close leaves w open.
func NewTraceWriter(w io.Writer, iface string) *TraceWriter {
	return &TraceWriter{out: w, iface: iface, now: time.Now}
}

// SetClock replaces the timestamp source
func (w *TraceWriter) SetClock(now func() time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.now = now
}

func (w *TraceWriter) WriteFrame(ctx context.Context, frame can.Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.out == nil {
		return fmt.Errorf("trace writer closed")
	}

	ts := w.now()
	_, err := fmt.Fprintf(w.out, "(%d.%06d) %s %s\n", ts.Unix(), ts.Nanosecond()/1000, w.iface, frame.String())
	return err
}

func (w *TraceWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.out = nil
	if w.file != nil {
		err := w.file.Close()
		w.file = nil
		return err
	}
	return nil
}

// DiscardWriter drops every frame
type DiscardWriter struct{}

func (DiscardWriter) WriteFrame(ctx context.Context, frame can.Frame) error { return ctx.Err() }
func (DiscardWriter) Close() error                                          { return nil }
