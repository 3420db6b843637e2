package ledger

import "net/http"

// MockEntry is a fixed, repeatable response for one (action, path).
type MockEntry struct {
	Body   interface{}
	Status int
}

// RegisterMock upserts a mock. A status of 0 means 200. Registering the same
// (action, path) again silently replaces the previous entry.
func (l *Ledger) RegisterMock(action, path string, body interface{}, status int) {
	if status == 0 {
		status = http.StatusOK
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.mocks[newKey(action, path)] = MockEntry{Body: body, Status: status}
}

// Mock returns the mock registered for (action, path), if any.
func (l *Ledger) Mock(action, path string) (MockEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.mocks[newKey(action, path)]
	return m, ok
}
