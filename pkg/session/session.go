package session

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/getmockd/swaggerstub/pkg/contract"
	"github.com/getmockd/swaggerstub/pkg/ledger"
	"github.com/getmockd/swaggerstub/pkg/logging"
	"github.com/getmockd/swaggerstub/pkg/resolver"
)

// Common errors.
var (
	ErrNoRoute        = errors.New("no stub registered for request")
	ErrDuplicateHost  = errors.New("scheme and host already registered")
	ErrInvalidBaseURL = errors.New("invalid base URL")
	ErrClosed         = errors.New("session closed")
)

// InterceptedMethods are the methods routed to the resolver.
var InterceptedMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
}

type target struct {
	baseURL  *url.URL
	prefix   string
	contract *contract.Contract
	resolver *resolver.Resolver
}

// Session holds the stubs registered for one test run.
type Session struct {
	mu      sync.RWMutex
	targets map[string]*target
	closed  bool

	installed bool
	previous  http.RoundTripper

	next              http.RoundTripper
	passthrough       []string
	documentPath      string
	recordSideEffects bool
	onError           func(req *http.Request, err error)
	log               *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger for the session and its resolvers.
func WithLogger(log *slog.Logger) Option {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

// WithPassthroughHosts lets requests to unregistered hosts matching any of
// the doublestar globs (e.g. "*.internal", "localhost:*") reach the network.
func WithPassthroughHosts(globs ...string) Option {
	return func(s *Session) {
		s.passthrough = append(s.passthrough, globs...)
	}
}

// WithNext sets the transport used for passthrough requests.
func WithNext(rt http.RoundTripper) Option {
	return func(s *Session) {
		if rt != nil {
			s.next = rt
		}
	}
}

// WithDocumentPath overrides the reserved contract document path for every
// registered base URL.
func WithDocumentPath(p string) Option {
	return func(s *Session) {
		s.documentPath = p
	}
}

// WithSideEffectRecording controls whether side-effect responses are added to
// call history. It defaults to true.
func WithSideEffectRecording(record bool) Option {
	return func(s *Session) {
		s.recordSideEffects = record
	}
}

// WithErrorHandler registers fn to observe scripted side-effect errors and
// sequence exhaustion before they are returned to the client.
func WithErrorHandler(fn func(req *http.Request, err error)) Option {
	return func(s *Session) {
		s.onError = fn
	}
}

// New creates an empty session.
func New(opts ...Option) *Session {
	s := &Session{
		targets:           make(map[string]*target),
		next:              defaultNext(),
		recordSideEffects: true,
		log:               logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// defaultNext is the transport that was in place before any session was
// installed.
func defaultNext() http.RoundTripper {
	if s, ok := http.DefaultTransport.(*Session); ok {
		return s.next
	}
	return http.DefaultTransport
}

// Register loads the contract at contractPath and stubs baseURL with it.
func (s *Session) Register(contractPath, baseURL string) (*ledger.Ledger, error) {
	c, err := contract.LoadFile(contractPath, contract.WithDocumentPath(s.documentPath))
	if err != nil {
		return nil, err
	}
	return s.RegisterContract(c, baseURL)
}

// RegisterContract stubs baseURL with an already loaded contract. Each scheme
// and host may be registered once.
func (s *Session) RegisterContract(c *contract.Contract, baseURL string) (*ledger.Ledger, error) {
	u, key, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}
	if _, exists := s.targets[key]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateHost, key)
	}

	l := ledger.New(c)
	log := s.log.With("base_url", u.String())
	s.targets[key] = &target{
		baseURL:  u,
		prefix:   strings.TrimSuffix(u.Path, "/"),
		contract: c,
		resolver: resolver.New(l, c,
			resolver.WithLogger(log),
			resolver.WithDocumentPath(s.documentPath),
			resolver.WithSideEffectRecording(s.recordSideEffects),
		),
	}

	log.Info("registered stub", "contract", c.Title(), "operations", len(c.Operations()))
	return l, nil
}

// Ledger returns the ledger for baseURL's scheme and host.
func (s *Session) Ledger(baseURL string) (*ledger.Ledger, bool) {
	t, ok := s.lookup(baseURL)
	if !ok {
		return nil, false
	}
	return t.resolver.Ledger(), true
}

// Contract returns the contract registered for baseURL's scheme and host.
func (s *Session) Contract(baseURL string) (*contract.Contract, bool) {
	t, ok := s.lookup(baseURL)
	if !ok {
		return nil, false
	}
	return t.contract, true
}

// BaseURLs lists the registered base URLs in sorted order.
func (s *Session) BaseURLs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.targets))
	for _, t := range s.targets {
		out = append(out, t.baseURL.String())
	}
	sort.Strings(out)
	return out
}

func (s *Session) lookup(rawURL string) (*target, bool) {
	_, key, err := parseBaseURL(rawURL)
	if err != nil {
		return nil, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.targets[key]
	return t, ok
}

// Install makes the session the process-wide http.DefaultTransport. Calling
// it twice is a no-op.
func (s *Session) Install() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.installed {
		return nil
	}
	s.previous = http.DefaultTransport
	http.DefaultTransport = s
	s.installed = true
	return nil
}

// Close restores http.DefaultTransport if Install replaced it and drops every
// registered stub. It is safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	if s.installed {
		if http.DefaultTransport == http.RoundTripper(s) {
			http.DefaultTransport = s.previous
		} else {
			s.log.Warn("http.DefaultTransport replaced after install; leaving it in place")
		}
		s.installed = false
		s.previous = nil
	}

	s.log.Debug("session closed", "targets", len(s.targets))
	s.targets = make(map[string]*target)
	s.closed = true
	return nil
}

// parseBaseURL validates an absolute http(s) URL and returns its scheme+host
// key.
func parseBaseURL(raw string) (*url.URL, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, "", fmt.Errorf("%w: %q must use http or https", ErrInvalidBaseURL, raw)
	}
	if u.Host == "" {
		return nil, "", fmt.Errorf("%w: %q has no host", ErrInvalidBaseURL, raw)
	}
	return u, hostKey(u), nil
}

func hostKey(u *url.URL) string {
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host)
}
