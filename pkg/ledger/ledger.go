package ledger

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CallRecord is an immutable snapshot of one handled request.
type CallRecord struct {
	// ID uniquely identifies the record.
	ID string `json:"id"`

	// Seq is the 1-based position of the record in the ledger's history.
	Seq int `json:"seq"`

	// Action is the lowercased HTTP method.
	Action string `json:"action"`

	// Path is the request path without query string.
	Path string `json:"path"`

	// Body is the parsed request body (nil when the request had none).
	Body interface{} `json:"body"`

	// Query is the flattened query string.
	Query map[string]string `json:"query"`

	// StatusCode is the status returned to the caller.
	StatusCode int `json:"statusCode"`

	// Timestamp is when the call was recorded.
	Timestamp time.Time `json:"timestamp"`
}

// ExampleSource supplies named example payloads, usually a contract.
type ExampleSource interface {
	Definitions() map[string]interface{}
}

type key struct {
	action string
	path   string
}

func newKey(action, path string) key {
	return key{action: strings.ToLower(action), path: path}
}

// Ledger owns the call history and override tables for one base URL.
// All methods are safe for concurrent use.
type Ledger struct {
	mu       sync.Mutex
	calls    []CallRecord
	mocks    map[key]MockEntry
	effects  map[key]*effectState
	examples ExampleSource
}

// New creates an empty ledger. examples may be nil.
func New(examples ExampleSource) *Ledger {
	return &Ledger{
		mocks:    make(map[key]MockEntry),
		effects:  make(map[key]*effectState),
		examples: examples,
	}
}

// RecordCall appends a call record. It performs no validation and always
// succeeds. The query map is copied.
func (l *Ledger) RecordCall(action, path string, body interface{}, query map[string]string, status int) CallRecord {
	q := make(map[string]string, len(query))
	for k, v := range query {
		q[k] = v
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	rec := CallRecord{
		ID:         uuid.NewString(),
		Seq:        len(l.calls) + 1,
		Action:     strings.ToLower(action),
		Path:       path,
		Body:       body,
		Query:      q,
		StatusCode: status,
		Timestamp:  time.Now(),
	}
	l.calls = append(l.calls, rec)
	return rec
}

// QueryCalls returns the ordered calls matching action and path. An empty
// filter value matches anything; action is compared case-insensitively.
// The result is empty, never nil, when nothing matches.
func (l *Ledger) QueryCalls(action, path string) []CallRecord {
	action = strings.ToLower(action)

	l.mu.Lock()
	defer l.mu.Unlock()

	result := make([]CallRecord, 0)
	for _, c := range l.calls {
		if action != "" && c.Action != action {
			continue
		}
		if path != "" && c.Path != path {
			continue
		}
		result = append(result, c)
	}
	return result
}

// Calls returns a copy of the full call history.
func (l *Ledger) Calls() []CallRecord {
	return l.QueryCalls("", "")
}

// Definitions returns the example payloads of the ledger's contract, keyed by
// type name. The map must be treated as read-only.
func (l *Ledger) Definitions() map[string]interface{} {
	if l.examples == nil {
		return map[string]interface{}{}
	}
	return l.examples.Definitions()
}

// Reset clears the history and both override tables.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls = nil
	l.mocks = make(map[key]MockEntry)
	l.effects = make(map[key]*effectState)
}
