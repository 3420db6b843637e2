package testing

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/getmockd/swaggerstub/pkg/ledger"
)

// MockBuilder builds a mock using a fluent API.
type MockBuilder struct {
	endpoint *Endpoint
	method   string
	path     string
	status   int
	body     interface{}
	err      error // First error encountered during building
}

// Mock starts building a mock for method and path.
//
// Example:
//
//	stub.Mock("GET", "/v2/pets/1").
//	    WithStatus(200).
//	    WithJSON(map[string]int{"id": 1}).
//	    Reply()
func (e *Endpoint) Mock(method, path string) *MockBuilder {
	return &MockBuilder{
		endpoint: e,
		method:   method,
		path:     path,
		status:   http.StatusOK,
	}
}

// setError records the first error encountered during building.
func (b *MockBuilder) setError(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Err returns any error encountered during building.
func (b *MockBuilder) Err() error {
	return b.err
}

// WithStatus sets the HTTP response status code.
// Default is 200 (OK).
func (b *MockBuilder) WithStatus(status int) *MockBuilder {
	b.status = status
	return b
}

// WithJSON sets a value to be JSON encoded as the response body.
func (b *MockBuilder) WithJSON(body interface{}) *MockBuilder {
	if _, err := json.Marshal(body); err != nil {
		b.setError(fmt.Errorf("WithJSON: failed to marshal body: %w", err))
		return b
	}
	b.body = body
	return b
}

// WithRawJSON sets an already encoded JSON response body.
func (b *MockBuilder) WithRawJSON(body string) *MockBuilder {
	if !json.Valid([]byte(body)) {
		b.setError(fmt.Errorf("WithRawJSON: body is not valid JSON: %q", body))
		return b
	}
	b.body = json.RawMessage(body)
	return b
}

// Reply registers the mock, replacing any earlier mock for the same method
// and path.
func (b *MockBuilder) Reply() {
	b.endpoint.t.Helper()
	if b.err != nil {
		b.endpoint.t.Errorf("swaggerstub: mock %s %s: %v", b.method, b.path, b.err)
		return
	}
	b.endpoint.ledger.RegisterMock(b.method, b.path, b.body, b.status)
}

// SideEffectBuilder builds a scripted response sequence.
type SideEffectBuilder struct {
	endpoint  *Endpoint
	method    string
	path      string
	responses []ledger.Response
}

// SideEffect starts building a side effect for method and path.
func (e *Endpoint) SideEffect(method, path string) *SideEffectBuilder {
	return &SideEffectBuilder{endpoint: e, method: method, path: path}
}

// Then appends a 200 response with body.
func (b *SideEffectBuilder) Then(body interface{}) *SideEffectBuilder {
	b.responses = append(b.responses, ledger.Reply(body))
	return b
}

// ThenStatus appends a response with body and status.
func (b *SideEffectBuilder) ThenStatus(body interface{}, status int) *SideEffectBuilder {
	b.responses = append(b.responses, ledger.ReplyStatus(body, status))
	return b
}

// Reply registers the sequence. Re-registering restarts it from the first
// response.
func (b *SideEffectBuilder) Reply() {
	b.endpoint.ledger.RegisterSideEffect(b.method, b.path, ledger.Sequence(b.responses...))
}

// Fail makes every call to method and path fail with err at the transport.
func (b *SideEffectBuilder) Fail(err error) {
	b.endpoint.ledger.RegisterSideEffect(b.method, b.path, ledger.Raise(err))
}
