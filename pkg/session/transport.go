package session

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/getmockd/swaggerstub/pkg/httputil"
	"github.com/getmockd/swaggerstub/pkg/resolver"
)

// Transport returns the session as an http.RoundTripper.
func (s *Session) Transport() http.RoundTripper {
	return s
}

// Client returns an http.Client that routes through the session.
func (s *Session) Client() *http.Client {
	return &http.Client{Transport: s}
}

// RoundTrip implements http.RoundTripper. Requests under a registered base URL
// are resolved locally; scripted side-effect errors are returned as the
// transport error.
func (s *Session) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method == "" {
		req.Method = http.MethodGet
	}

	s.mu.RLock()
	closed := s.closed
	t, ok := s.targets[hostKey(req.URL)]
	s.mu.RUnlock()

	if closed {
		closeBody(req)
		return nil, ErrClosed
	}
	if !ok || !t.intercepts(req) {
		return s.passthroughRoundTrip(req)
	}

	body, err := readBody(req)
	if err != nil {
		return nil, err
	}

	resp, err := t.resolver.Resolve(req.Context(), &resolver.Request{
		Method: req.Method,
		URL:    req.URL,
		Body:   body,
		Header: req.Header,
	})
	if err != nil {
		s.reportError(req, err)
		return nil, err
	}
	return httputil.NewResponse(req, resp.Status, resp.Header, resp.Body), nil
}

func (s *Session) passthroughRoundTrip(req *http.Request) (*http.Response, error) {
	if s.allowsPassthrough(req.URL.Host) {
		s.log.Debug("passing request through", "method", req.Method, "url", req.URL.String())
		return s.next.RoundTrip(req)
	}
	closeBody(req)
	return nil, fmt.Errorf("%w: %s %s", ErrNoRoute, req.Method, req.URL.String())
}

// allowsPassthrough matches host (with and without port) against the
// passthrough globs. Malformed globs never match.
func (s *Session) allowsPassthrough(host string) bool {
	hostname := host
	if i := strings.LastIndex(host, ":"); i > 0 && !strings.HasSuffix(host, "]") {
		hostname = host[:i]
	}
	for _, pattern := range s.passthrough {
		if ok, _ := doublestar.Match(pattern, host); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, hostname); ok {
			return true
		}
	}
	return false
}

// Handler serves the stub for baseURL as an http.Handler. The request's host
// is ignored. Scripted errors and sequence exhaustion abort the response.
func (s *Session) Handler(baseURL string) (http.Handler, error) {
	t, ok := s.lookup(baseURL)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoRoute, baseURL)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isIntercepted(r.Method) {
			httputil.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", r.Method+" is not stubbed")
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			httputil.WriteError(w, http.StatusBadRequest, "read_error", err.Error())
			return
		}

		resp, err := t.resolver.Resolve(r.Context(), &resolver.Request{
			Method: r.Method,
			URL:    r.URL,
			Body:   body,
			Header: r.Header,
		})
		if err != nil {
			s.reportError(r, err)
			s.log.Warn("aborting response", "method", r.Method, "path", r.URL.Path, "error", err)
			panic(http.ErrAbortHandler)
		}
		httputil.WriteResponse(w, resp.Status, resp.Header, resp.Body)
	}), nil
}

func (s *Session) reportError(req *http.Request, err error) {
	if s.onError != nil {
		s.onError(req, err)
	}
}

func (t *target) intercepts(req *http.Request) bool {
	if !isIntercepted(req.Method) {
		return false
	}
	p := req.URL.Path
	return t.prefix == "" || p == t.prefix || strings.HasPrefix(p, t.prefix+"/")
}

func isIntercepted(method string) bool {
	for _, m := range InterceptedMethods {
		if m == method {
			return true
		}
	}
	return false
}

func readBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	defer req.Body.Close()
	data, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("reading request body: %w", err)
	}
	return data, nil
}

func closeBody(req *http.Request) {
	if req.Body != nil {
		_ = req.Body.Close()
	}
}
