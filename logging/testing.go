package logging

import (
	"io"
	"log/slog"
	"strings"
)

type TB interface {
	Log(args ...any)
	Logf(format string, args ...any)
}

func TBWriter(t TB) io.Writer {
	return &slogCapturer{t}
}

// TestLogger logs everything, including Debug, into the test output.
func TestLogger(t TB) *slog.Logger {
	return slog.New(slog.NewTextHandler(TBWriter(t), &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type slogCapturer struct {
	t TB
}

func (c *slogCapturer) Write(buf []byte) (int, error) {
	msg := string(buf)
	origLen := len(msg)
	msg = strings.TrimSuffix(msg, "\n")
	c.t.Log(msg)
	return origLen, nil
}
