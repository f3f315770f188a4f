package logging

import (
	"io"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogsExporter writes the buffered log lines to w.
type LogsExporter interface {
	Export(w io.Writer, newestFirst bool) error
}

// Recent keeps the last lines written to it. The server exposes it on
// its logs endpoint.
type Recent struct {
	mu    sync.Mutex
	lines [][]byte
	next  int
	full  bool
}

func NewRecent(size int) *Recent {
	if size < 1 {
		size = 1
	}
	return &Recent{lines: make([][]byte, size)}
}

// Core returns a JSON core writing to the buffer at the given level.
func (r *Recent) Core(level zapcore.LevelEnabler) zapcore.Core {
	return zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), r, level)
}

func (r *Recent) Write(p []byte) (int, error) {
	l := make([]byte, len(p))
	copy(l, p)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines[r.next] = l
	r.next++
	if r.next == len(r.lines) {
		r.next = 0
		r.full = true
	}
	return len(p), nil
}

func (r *Recent) Sync() error {
	return nil
}

func (r *Recent) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.full {
		return len(r.lines)
	}
	return r.next
}

func (r *Recent) Export(w io.Writer, newestFirst bool) error {
	r.mu.Lock()
	ordered := make([][]byte, 0, len(r.lines))
	if r.full {
		ordered = append(ordered, r.lines[r.next:]...)
	}
	ordered = append(ordered, r.lines[:r.next]...)
	r.mu.Unlock()

	for i := range ordered {
		line := ordered[i]
		if newestFirst {
			line = ordered[len(ordered)-1-i]
		}
		if _, err := w.Write(line); err != nil {
			return err
		}
	}
	return nil
}
