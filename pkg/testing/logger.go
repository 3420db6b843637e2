package testing

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/getmockd/swaggerstub/pkg/logging"
)

// testLogger returns a debug text logger whose lines are written with tb.Log,
// so they only show for failing or verbose runs.
func testLogger(tb testing.TB) *slog.Logger {
	return logging.New(logging.Config{
		Level:  logging.LevelDebug,
		Format: logging.FormatText,
		Output: &tbWriter{tb: tb},
	})
}

// tbWriter forwards complete lines to testing.TB.Log.
type tbWriter struct {
	mu      sync.Mutex
	tb      testing.TB
	pending bytes.Buffer
}

func (w *tbWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending.Write(p)
	for {
		line, err := w.pending.ReadString('\n')
		if err != nil {
			// partial line stays buffered
			w.pending.Reset()
			w.pending.WriteString(line)
			break
		}
		w.tb.Helper()
		w.tb.Log(strings.TrimSuffix(line, "\n"))
	}
	return len(p), nil
}
