package testing

import (
	"errors"
	"net/http"
	"testing"

	"github.com/getmockd/swaggerstub/pkg/ledger"
	"github.com/getmockd/swaggerstub/pkg/session"
)

// Target pairs a contract document with the base URL it stubs.
type Target struct {
	Contract string
	BaseURL  string
}

// Stub is a running interception session bound to a test.
type Stub struct {
	t       testing.TB
	session *session.Session
	targets []*Endpoint
}

// New registers every target, installs interception as http.DefaultTransport
// and removes it again when the test finishes, whether it passed or failed.
// Tests using New must not run in parallel with other tests that rely on
// http.DefaultTransport.
func New(t testing.TB, targets ...Target) *Stub {
	t.Helper()

	s := &Stub{t: t}
	s.session = session.New(
		session.WithLogger(testLogger(t)),
		session.WithErrorHandler(s.onError),
	)
	t.Cleanup(func() {
		_ = s.session.Close()
	})

	for _, target := range targets {
		l, err := s.session.Register(target.Contract, target.BaseURL)
		if err != nil {
			t.Fatalf("swaggerstub: register %s: %v", target.BaseURL, err)
		}
		s.targets = append(s.targets, &Endpoint{t: t, baseURL: target.BaseURL, ledger: l})
	}

	if err := s.session.Install(); err != nil {
		t.Fatalf("swaggerstub: install: %v", err)
	}
	return s
}

// onError fails the test when a side-effect sequence runs out. Scripted
// errors are expected and only reach the client.
func (s *Stub) onError(req *http.Request, err error) {
	if errors.Is(err, ledger.ErrSideEffectExhausted) {
		s.t.Errorf("swaggerstub: %s %s: %v", req.Method, req.URL.Path, err)
	}
}

// Session exposes the underlying interception session.
func (s *Stub) Session() *session.Session {
	return s.session
}

// Client returns a client that routes through the stub without relying on
// http.DefaultTransport.
func (s *Stub) Client() *http.Client {
	return s.session.Client()
}

// Ledger returns the ledger for baseURL, failing the test if it is unknown.
func (s *Stub) Ledger(baseURL string) *ledger.Ledger {
	s.t.Helper()
	l, ok := s.session.Ledger(baseURL)
	if !ok {
		s.t.Fatalf("swaggerstub: no target registered for %s", baseURL)
	}
	return l
}

// At returns the endpoint registered for baseURL.
func (s *Stub) At(baseURL string) *Endpoint {
	s.t.Helper()
	return &Endpoint{t: s.t, baseURL: baseURL, ledger: s.Ledger(baseURL)}
}

// Reset clears call history, mocks and side effects on every target.
func (s *Stub) Reset() {
	for _, e := range s.targets {
		e.ledger.Reset()
	}
}

func (s *Stub) first() *Endpoint {
	s.t.Helper()
	if len(s.targets) == 0 {
		s.t.Fatalf("swaggerstub: no targets registered")
	}
	return s.targets[0]
}

// Mock starts a mock on the first target.
func (s *Stub) Mock(method, path string) *MockBuilder {
	s.t.Helper()
	return s.first().Mock(method, path)
}

// SideEffect starts a side effect on the first target.
func (s *Stub) SideEffect(method, path string) *SideEffectBuilder {
	s.t.Helper()
	return s.first().SideEffect(method, path)
}

// Calls returns the first target's calls matching method and path.
func (s *Stub) Calls(method, path string) []ledger.CallRecord {
	s.t.Helper()
	return s.first().Calls(method, path)
}

// AssertCalled asserts the first target received method path at least once.
func (s *Stub) AssertCalled(t testing.TB, method, path string) {
	t.Helper()
	s.first().AssertCalled(t, method, path)
}

// AssertNotCalled asserts the first target never received method path.
func (s *Stub) AssertNotCalled(t testing.TB, method, path string) {
	t.Helper()
	s.first().AssertNotCalled(t, method, path)
}

// AssertCalledTimes asserts the first target received method path n times.
func (s *Stub) AssertCalledTimes(t testing.TB, method, path string, n int) {
	t.Helper()
	s.first().AssertCalledTimes(t, method, path, n)
}

// AssertLastStatus asserts the status of the first target's latest matching call.
func (s *Stub) AssertLastStatus(t testing.TB, method, path string, status int) {
	t.Helper()
	s.first().AssertLastStatus(t, method, path, status)
}

// AssertCalledWithJSONPath asserts the body of the first target's latest
// matching call has want at expr.
func (s *Stub) AssertCalledWithJSONPath(t testing.TB, method, path, expr string, want interface{}) {
	t.Helper()
	s.first().AssertCalledWithJSONPath(t, method, path, expr, want)
}

// Endpoint drives the stub for a single base URL.
type Endpoint struct {
	t       testing.TB
	baseURL string
	ledger  *ledger.Ledger
}

// BaseURL returns the registered base URL.
func (e *Endpoint) BaseURL() string {
	return e.baseURL
}

// Ledger returns the endpoint's ledger.
func (e *Endpoint) Ledger() *ledger.Ledger {
	return e.ledger
}

// Examples returns the contract's example payload per named type.
func (e *Endpoint) Examples() map[string]interface{} {
	return e.ledger.Definitions()
}
