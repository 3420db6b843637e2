package resolver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/getmockd/swaggerstub/pkg/contract"
	"github.com/getmockd/swaggerstub/pkg/ledger"
	"github.com/getmockd/swaggerstub/pkg/logging"
	"github.com/getmockd/swaggerstub/pkg/validation"
)

// Contract is what the resolver needs from a loaded API contract.
type Contract interface {
	DocumentPath() string
	Document() []byte
	HasOperation(path, action string) bool
	ValidateRequest(ctx context.Context, path, action string, body interface{}, query map[string]string) *validation.Result
	ExampleResponses(path, action string) (map[int]interface{}, error)
}

// Request is an intercepted HTTP request.
type Request struct {
	Method string
	URL    *url.URL
	Body   []byte
	Header http.Header
}

// Response is the resolved answer. Header is the request's header, echoed.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Rule names the resolution step that produced a response.
type Rule string

// Resolution rules, in evaluation order.
const (
	RuleBadBody          Rule = "bad_body"
	RuleContractDocument Rule = "contract_document"
	RuleMock             Rule = "mock"
	RuleSideEffect       Rule = "side_effect"
	RuleInvalidOperation Rule = "invalid_operation"
	RuleNotFound         Rule = "not_found"
	RuleInvalidRequest   Rule = "invalid_request"
	RuleExample          Rule = "example"
)

// Resolver answers requests for one base URL from its ledger and contract.
type Resolver struct {
	ledger            *ledger.Ledger
	contract          Contract
	log               *slog.Logger
	documentPath      string
	recordSideEffects bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *slog.Logger) Option {
	return func(r *Resolver) {
		if log != nil {
			r.log = log
		}
	}
}

// WithDocumentPath overrides the contract's reserved document path.
func WithDocumentPath(p string) Option {
	return func(r *Resolver) {
		if p != "" {
			r.documentPath = p
		}
	}
}

// WithSideEffectRecording controls whether responses produced by side-effect
// sequences are appended to the call history. Scripted errors and exhaustion
// are never recorded.
func WithSideEffectRecording(record bool) Option {
	return func(r *Resolver) {
		r.recordSideEffects = record
	}
}

// New creates a resolver. Side-effect responses are recorded by default.
func New(l *ledger.Ledger, c Contract, opts ...Option) *Resolver {
	r := &Resolver{
		ledger:            l,
		contract:          c,
		log:               logging.Nop(),
		documentPath:      c.DocumentPath(),
		recordSideEffects: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Ledger returns the ledger the resolver records into.
func (r *Resolver) Ledger() *ledger.Ledger {
	return r.ledger
}

// Resolve answers one request. The only errors are scripted side-effect errors,
// returned verbatim, and side-effect exhaustion (*ledger.ExhaustedError).
func (r *Resolver) Resolve(ctx context.Context, req *Request) (*Response, error) {
	header := http.Header{}
	if req.Header != nil {
		header = req.Header.Clone()
	}

	action := strings.ToLower(req.Method)
	var path, rawQuery string
	if req.URL != nil {
		path, rawQuery = req.URL.Path, req.URL.RawQuery
	}
	if path == "" {
		path = "/"
	}

	body, err := ParseBody(req.Body)
	if err != nil {
		return r.respond(RuleBadBody, action, path, http.StatusBadRequest, header, BadBodyResponse), nil
	}

	query := ParseQuery(rawQuery)

	if path == r.documentPath {
		return r.respond(RuleContractDocument, action, path, http.StatusOK, header, r.contract.Document()), nil
	}

	if mock, ok := r.ledger.Mock(action, path); ok {
		data, err := ledger.EncodeBody(mock.Body)
		if err != nil {
			return nil, err
		}
		r.ledger.RecordCall(action, path, body, query, mock.Status)
		return r.respond(RuleMock, action, path, mock.Status, header, data), nil
	}

	effect, ok, err := r.ledger.ConsumeSideEffect(action, path)
	if err != nil {
		r.warnSideEffect(action, path, err)
		return nil, err
	}
	if ok {
		if r.recordSideEffects {
			r.ledger.RecordCall(action, path, body, query, effect.Status)
		}
		return r.respond(RuleSideEffect, action, path, effect.Status, header, effect.Body), nil
	}

	if !r.contract.HasOperation(path, action) {
		if action == "post" {
			return r.record(RuleInvalidOperation, action, path, body, query, http.StatusBadRequest, header, nil), nil
		}
		return r.record(RuleNotFound, action, path, body, query, http.StatusNotFound, header, nil), nil
	}

	if res := r.contract.ValidateRequest(ctx, path, action, body, query); res != nil && !res.Valid {
		r.log.Debug("request failed validation", "action", action, "path", path, "error", res.Err())
		return r.record(RuleInvalidRequest, action, path, body, query, http.StatusBadRequest, header, nil), nil
	}

	status, data, err := r.canonicalExample(path, action)
	if err != nil {
		return nil, err
	}
	return r.record(RuleExample, action, path, body, query, status, header, data), nil
}

// canonicalExample picks the example with the numerically smallest status. A
// nil example is an empty body. An operation without responses answers 200.
func (r *Resolver) canonicalExample(path, action string) (int, []byte, error) {
	examples, err := r.contract.ExampleResponses(path, action)
	if err != nil {
		return 0, nil, err
	}
	status, example, ok := contract.CanonicalResponse(examples)
	if !ok {
		return http.StatusOK, nil, nil
	}
	if example == nil {
		return status, nil, nil
	}
	data, err := ledger.EncodeBody(example)
	if err != nil {
		return 0, nil, err
	}
	return status, data, nil
}

func (r *Resolver) record(rule Rule, action, path string, body interface{}, query map[string]string, status int, header http.Header, data []byte) *Response {
	r.ledger.RecordCall(action, path, body, query, status)
	return r.respond(rule, action, path, status, header, data)
}

func (r *Resolver) respond(rule Rule, action, path string, status int, header http.Header, data []byte) *Response {
	r.log.Debug("resolved request", "action", action, "path", path, "rule", string(rule), "status", status)
	return &Response{Status: status, Header: header, Body: data}
}

func (r *Resolver) warnSideEffect(action, path string, err error) {
	var exhausted *ledger.ExhaustedError
	if errors.As(err, &exhausted) {
		r.log.Warn("side effect sequence exhausted", "action", action, "path", path, "length", exhausted.Length)
		return
	}
	r.log.Warn("side effect raised error", "action", action, "path", path, "error", err)
}
