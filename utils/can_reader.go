package utils

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.einride.tech/can"
)

// CANReader defines the interface for reading CAN frames
type CANReader interface {
	ReadFrame(ctx context.Context) (can.Frame, error)
	Close() error
}

// TraceReader replays a candump log written by TraceWriter
type TraceReader struct {
	scan *bufio.Scanner
	file *os.File
	line int
}

// OpenTrace opens a trace file for replay
func OpenTrace(path string) (*TraceReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trace: %w", err)
	}
	r := NewTraceReader(f)
	r.file = f
	return r, nil
}

// NewTraceReader reads trace lines from r
func NewTraceReader(r io.Reader) *TraceReader {
	return &TraceReader{scan: bufio.NewScanner(r)}
}

// ReadFrame returns the next frame, io.EOF at the end of the trace.
// Blank lines are skipped.
func (r *TraceReader) ReadFrame(ctx context.Context) (can.Frame, error) {
	for {
		if err := ctx.Err(); err != nil {
			return can.Frame{}, err
		}
		if !r.scan.Scan() {
			if err := r.scan.Err(); err != nil {
				return can.Frame{}, err
			}
			return can.Frame{}, io.EOF
		}
		r.line++

		fields := strings.Fields(r.scan.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 3 {
			return can.Frame{}, fmt.Errorf("trace line %d: want \"(time) iface frame\", got %d fields", r.line, len(fields))
		}

		var f can.Frame
		if err := f.UnmarshalString(fields[2]); err != nil {
			return can.Frame{}, fmt.Errorf("trace line %d: %w", r.line, err)
		}
		return f, nil
	}
}

// Close closes the underlying file, if the reader opened it
func (r *TraceReader) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}
