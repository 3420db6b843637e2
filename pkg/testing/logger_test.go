package testing

import (
	"strings"
	stdtesting "testing"
)

// lineTB collects the lines passed to Log.
type lineTB struct {
	stdtesting.TB
	lines []string
}

func (l *lineTB) Helper() {}

func (l *lineTB) Log(args ...any) {
	for _, a := range args {
		l.lines = append(l.lines, a.(string))
	}
}

func TestTestLogger_WritesLinesToTB(t *stdtesting.T) {
	tb := &lineTB{TB: t}
	log := testLogger(tb)

	log.Debug("first", "k", "v")
	log.Info("second")

	if len(tb.lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(tb.lines), tb.lines)
	}
	if !strings.Contains(tb.lines[0], "msg=first") || !strings.Contains(tb.lines[0], "k=v") {
		t.Errorf("first line = %q", tb.lines[0])
	}
	if !strings.Contains(tb.lines[1], "msg=second") {
		t.Errorf("second line = %q", tb.lines[1])
	}
}

func TestTBWriter_BuffersPartialLines(t *stdtesting.T) {
	tb := &lineTB{TB: t}
	w := &tbWriter{tb: tb}

	_, _ = w.Write([]byte("par"))
	if len(tb.lines) != 0 {
		t.Fatalf("partial line logged early: %q", tb.lines)
	}
	_, _ = w.Write([]byte("tial\nnext"))
	if len(tb.lines) != 1 || tb.lines[0] != "partial" {
		t.Errorf("lines = %q, want [partial]", tb.lines)
	}
}
