package testing

import (
	"strings"
	"testing"

	"github.com/getmockd/swaggerstub/internal/matching"
	"github.com/getmockd/swaggerstub/pkg/ledger"
)

// Calls returns the recorded calls for method and path, oldest first. The
// path may be a template such as /v2/pets/{petId}; an empty method or path
// matches anything.
func (e *Endpoint) Calls(method, path string) []ledger.CallRecord {
	calls := e.ledger.QueryCalls(strings.ToLower(method), "")
	out := make([]ledger.CallRecord, 0, len(calls))
	for _, c := range calls {
		if matchesPath(c.Path, path) {
			out = append(out, c)
		}
	}
	return out
}

// AssertCalled asserts that an endpoint was called at least once.
func (e *Endpoint) AssertCalled(t testing.TB, method, path string) {
	t.Helper()

	if len(e.Calls(method, path)) == 0 {
		t.Errorf("expected %s %s to be called, but it was not called", method, path)
	}
}

// AssertCalledTimes asserts that an endpoint was called exactly n times.
func (e *Endpoint) AssertCalledTimes(t testing.TB, method, path string, times int) {
	t.Helper()

	count := len(e.Calls(method, path))
	if count != times {
		t.Errorf("expected %s %s to be called %d times, but was called %d times",
			method, path, times, count)
	}
}

// AssertNotCalled asserts that an endpoint was not called.
func (e *Endpoint) AssertNotCalled(t testing.TB, method, path string) {
	t.Helper()

	count := len(e.Calls(method, path))
	if count > 0 {
		t.Errorf("expected %s %s to not be called, but it was called %d times",
			method, path, count)
	}
}

// AssertLastStatus asserts the status code recorded for the latest call.
func (e *Endpoint) AssertLastStatus(t testing.TB, method, path string, status int) {
	t.Helper()

	last, ok := e.last(method, path)
	if !ok {
		t.Errorf("expected %s %s to be called, but it was not called", method, path)
		return
	}
	if last.StatusCode != status {
		t.Errorf("expected last %s %s to return %d, got %d", method, path, status, last.StatusCode)
	}
}

// AssertCalledWithJSONPath asserts that the body of the latest call has want
// at the JSONPath expr.
func (e *Endpoint) AssertCalledWithJSONPath(t testing.TB, method, path, expr string, want interface{}) {
	t.Helper()

	if err := matching.ValidateJSONPathExpression(expr); err != nil {
		t.Errorf("invalid JSONPath %q: %v", expr, err)
		return
	}
	last, ok := e.last(method, path)
	if !ok {
		t.Errorf("expected %s %s to be called, but it was not called", method, path)
		return
	}
	if !matching.MatchJSONPath(expr, want, last.Body) {
		got, _ := matching.JSONPath(expr, last.Body)
		t.Errorf("expected %s %s body at %s to be %v, got %v", method, path, expr, want, got)
	}
}

func (e *Endpoint) last(method, path string) (ledger.CallRecord, bool) {
	calls := e.Calls(method, path)
	if len(calls) == 0 {
		return ledger.CallRecord{}, false
	}
	return calls[len(calls)-1], true
}

// matchesPath checks if a request path matches the expected path or template.
func matchesPath(actual, expected string) bool {
	if expected == "" || actual == expected {
		return true
	}
	return matching.MatchPath(expected, actual) > 0
}
