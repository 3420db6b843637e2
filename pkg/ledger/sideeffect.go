package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrSideEffectExhausted is returned when a sequence has no responses left.
	// It signals a test-authoring error (too few scripted responses).
	ErrSideEffectExhausted = errors.New("side effect sequence exhausted")

	// ErrCallableEffectUnsupported is returned for the reserved callable kind.
	ErrCallableEffectUnsupported = errors.New("callable side effects are not supported")
)

// EffectKind tags the shape of a SideEffect.
type EffectKind int

const (
	// EffectError fails every matching call with a scripted error.
	EffectError EffectKind = iota + 1

	// EffectSequence answers each matching call with the next scripted response.
	EffectSequence

	// EffectCallable is reserved for computed responses. No constructor exists yet.
	EffectCallable
)

func (k EffectKind) String() string {
	switch k {
	case EffectError:
		return "error"
	case EffectSequence:
		return "sequence"
	case EffectCallable:
		return "callable"
	default:
		return "unknown"
	}
}

// Response is one scripted payload. A zero Status means 200.
type Response struct {
	Body   interface{}
	Status int
}

// Reply scripts a body answered with status 200.
func Reply(body interface{}) Response {
	return Response{Body: body, Status: http.StatusOK}
}

// ReplyStatus scripts a body with an explicit status.
func ReplyStatus(body interface{}, status int) Response {
	return Response{Body: body, Status: status}
}

// SideEffect is a stateful override: a scripted error or a response sequence.
type SideEffect struct {
	kind      EffectKind
	err       error
	responses []Response
}

// Raise returns a side effect failing every matching call with err.
func Raise(err error) SideEffect {
	return SideEffect{kind: EffectError, err: err}
}

// Sequence returns a side effect consuming one response per matching call.
func Sequence(responses ...Response) SideEffect {
	rs := make([]Response, len(responses))
	copy(rs, responses)
	return SideEffect{kind: EffectSequence, responses: rs}
}

// Bodies is Sequence with every body answered with status 200.
func Bodies(bodies ...interface{}) SideEffect {
	rs := make([]Response, len(bodies))
	for i, b := range bodies {
		rs[i] = Reply(b)
	}
	return SideEffect{kind: EffectSequence, responses: rs}
}

// Kind reports the variant.
func (s SideEffect) Kind() EffectKind {
	return s.kind
}

// Len is the number of scripted responses (0 for non-sequences).
func (s SideEffect) Len() int {
	return len(s.responses)
}

// ExhaustedError reports which sequence ran out.
type ExhaustedError struct {
	Action string
	Path   string
	Length int
	Index  int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s: %s %s has %d scripted responses, call #%d requested",
		ErrSideEffectExhausted, e.Action, e.Path, e.Length, e.Index+1)
}

// Unwrap lets errors.Is match ErrSideEffectExhausted.
func (e *ExhaustedError) Unwrap() error {
	return ErrSideEffectExhausted
}

// Resolved is a side-effect payload ready to be written: serialized body and status.
type Resolved struct {
	Body   []byte
	Status int
}

type effectState struct {
	effect SideEffect
	cursor int
}

// RegisterSideEffect upserts the side effect for (action, path) and restarts
// its cursor at -1, even when one was already registered.
func (l *Ledger) RegisterSideEffect(action, path string, effect SideEffect) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.effects[newKey(action, path)] = &effectState{effect: effect, cursor: -1}
}

// HasSideEffect reports whether a side effect is registered for (action, path).
func (l *Ledger) HasSideEffect(action, path string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, ok := l.effects[newKey(action, path)]
	return ok
}

// Cursor returns the zero-based index of the last consumed sequence element
// (-1 before the first call).
func (l *Ledger) Cursor(action, path string) (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	st, ok := l.effects[newKey(action, path)]
	if !ok {
		return 0, false
	}
	return st.cursor, true
}

// ConsumeSideEffect resolves the side effect for (action, path).
//
// ok is false when none is registered. Error effects return their error with
// the cursor untouched. Sequences advance the cursor and return the element at
// the new index, or an *ExhaustedError once past the last element.
func (l *Ledger) ConsumeSideEffect(action, path string) (res Resolved, ok bool, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	k := newKey(action, path)
	st, found := l.effects[k]
	if !found {
		return Resolved{}, false, nil
	}

	switch st.effect.kind {
	case EffectError:
		return Resolved{}, true, st.effect.err
	case EffectSequence:
		st.cursor++
		if st.cursor >= len(st.effect.responses) {
			return Resolved{}, true, &ExhaustedError{
				Action: k.action,
				Path:   k.path,
				Length: len(st.effect.responses),
				Index:  st.cursor,
			}
		}
		r := st.effect.responses[st.cursor]
		body, err := EncodeBody(r.Body)
		if err != nil {
			return Resolved{}, true, fmt.Errorf("side effect %s %s #%d: %w", k.action, k.path, st.cursor, err)
		}
		status := r.Status
		if status == 0 {
			status = http.StatusOK
		}
		return Resolved{Body: body, Status: status}, true, nil
	case EffectCallable:
		return Resolved{}, true, ErrCallableEffectUnsupported
	default:
		return Resolved{}, true, fmt.Errorf("side effect %s %s: unknown kind %d", k.action, k.path, st.effect.kind)
	}
}

// EncodeBody serializes a scripted body as JSON. json.RawMessage values are
// passed through unchanged.
func EncodeBody(body interface{}) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}
	return data, nil
}
