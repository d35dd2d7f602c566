package utils

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.einride.tech/can"
)

func nanValue() float64 {
	var zero float64
	return zero / zero
}

func TestTraceWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewTraceWriter(&buf, "servo0")
	w.SetClock(func() time.Time { return time.Unix(1700000000, 250000000) })

	f, err := DefaultCANMap().EncodeEinrideFrame(FrameServoStatus1, map[string]float64{"position": 100})
	require.NoError(t, err)
	require.NoError(t, w.WriteFrame(context.Background(), f))

	line := strings.TrimSpace(buf.String())
	require.True(t, strings.HasPrefix(line, "(1700000000.250000) servo0 "), line)

	// The frame text parses back to the same frame
	var back can.Frame
	require.NoError(t, back.UnmarshalString(strings.Fields(line)[2]))
	assert.Equal(t, f, back)

	require.NoError(t, w.Close())
	assert.Error(t, w.WriteFrame(context.Background(), f))
}

func TestTraceWriterCancelled(t *testing.T) {
	var buf bytes.Buffer
	w := NewTraceWriter(&buf, "servo0")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, w.WriteFrame(ctx, can.Frame{ID: 0x310}), context.Canceled)
	assert.Empty(t, buf.String())

	assert.ErrorIs(t, DiscardWriter{}.WriteFrame(ctx, can.Frame{}), context.Canceled)
}

func TestTraceFileWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "servo.trace")
	w, err := NewTraceFileWriter(path, "servo0")
	require.NoError(t, err)

	require.NoError(t, w.WriteFrame(context.Background(), can.Frame{ID: 0x312, Length: 1, Data: can.Data{0xAB}}))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "servo0 312#AB")
}

func TestTraceReaderReplaysWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewTraceWriter(&buf, "servo0")
	m := DefaultCANMap()

	var sent []can.Frame
	for i, pos := range []float64{1.2, 2.4, 3.6} {
		f, err := m.EncodeEinrideFrame(FrameServoStatus1, map[string]float64{"position": pos, "power": float64(i)})
		require.NoError(t, err)
		require.NoError(t, w.WriteFrame(context.Background(), f))
		sent = append(sent, f)
	}
	buf.WriteString("\n")

	r := NewTraceReader(&buf)
	for _, want := range sent {
		got, err := r.ReadFrame(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := r.ReadFrame(context.Background())
	assert.ErrorIs(t, err, io.EOF)
	assert.NoError(t, r.Close())
}

func TestTraceReaderMalformed(t *testing.T) {
	r := NewTraceReader(strings.NewReader("(0.000000) servo0\n"))
	_, err := r.ReadFrame(context.Background())
	assert.ErrorContains(t, err, "trace line 1")

	r = NewTraceReader(strings.NewReader("(0.000000) servo0 ZZZ#01\n"))
	_, err = r.ReadFrame(context.Background())
	assert.ErrorContains(t, err, "trace line 1")

	_, err = OpenTrace(filepath.Join(t.TempDir(), "missing.trace"))
	assert.ErrorContains(t, err, "open trace")
}
