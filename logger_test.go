package simpleknn

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTextLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	l := NewTextLogger(&buf, slog.LevelDebug).WithCount(12).WithMode(ModeBoxes)
	l.LogStage(context.Background(), "index", time.Millisecond)

	out := buf.String()
	assert.Contains(t, out, "points=12")
	assert.Contains(t, out, "mode=boxes")
	assert.Contains(t, out, "stage=index")
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewTextLogger(&buf, slog.LevelInfo)
	l.LogCompute(context.Background(), 3, time.Millisecond, nil)
	assert.Empty(t, buf.String())

	l.LogCompute(context.Background(), 3, time.Millisecond, errors.New("boom"))
	assert.Contains(t, buf.String(), "error=boom")
}

func TestNoopLogger(t *testing.T) {
	l := NoopLogger()
	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
}
