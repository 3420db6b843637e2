package session

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/swaggerstub/pkg/ledger"
)

var petstore = filepath.Join("..", "contract", "testdata", "petstore.yaml")

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	s := New(opts...)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func readAll(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func TestSession_Client(t *testing.T) {
	s := newSession(t)
	l, err := s.Register(petstore, "http://localhost:8000")
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, "http://localhost:8000/v2/pets/5121", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-Id", "r-1")

	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "r-1", resp.Header.Get("X-Request-Id"))
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var pet map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(readAll(t, resp)), &pet))
	assert.Equal(t, "doggie", pet["name"])

	calls := l.QueryCalls("get", "/v2/pets/5121")
	require.Len(t, calls, 1)
	assert.Equal(t, http.StatusOK, calls[0].StatusCode)

	t.Run("post body", func(t *testing.T) {
		resp, err := s.Client().Post("http://localhost:8000/v2/pets", "application/json", strings.NewReader(`{"name":"rex","photoUrls":[]}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Empty(t, readAll(t, resp))
		assert.Empty(t, resp.Header.Get("Content-Type"))
	})

	t.Run("bad body", func(t *testing.T) {
		resp, err := s.Client().Post("http://localhost:8000/v2/pets", "text/plain", strings.NewReader("not json"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, `{"body": ["Not valid json."]}`, readAll(t, resp))
	})
}

func TestSession_Register(t *testing.T) {
	s := newSession(t)
	_, err := s.Register(petstore, "http://localhost:8000")
	require.NoError(t, err)

	t.Run("duplicate host", func(t *testing.T) {
		_, err := s.Register(petstore, "http://LOCALHOST:8000/other")
		assert.True(t, errors.Is(err, ErrDuplicateHost))
	})

	t.Run("same host other scheme", func(t *testing.T) {
		_, err := s.Register(petstore, "https://localhost:8000")
		assert.NoError(t, err)
	})

	t.Run("invalid base URLs", func(t *testing.T) {
		for _, raw := range []string{"localhost:8000", "ftp://files", "http://", "::"} {
			_, err := s.Register(petstore, raw)
			assert.True(t, errors.Is(err, ErrInvalidBaseURL), raw)
		}
	})

	t.Run("missing contract", func(t *testing.T) {
		_, err := s.Register("testdata/none.yaml", "http://none")
		assert.Error(t, err)
	})

	assert.Equal(t, []string{"http://localhost:8000", "https://localhost:8000"}, s.BaseURLs())

	c, ok := s.Contract("http://localhost:8000/anything")
	require.True(t, ok)
	assert.Equal(t, "/v2", c.BasePath())
}

func TestSession_Isolation(t *testing.T) {
	s := newSession(t)
	a, err := s.Register(petstore, "http://a.test")
	require.NoError(t, err)
	b, err := s.Register(petstore, "http://b.test")
	require.NoError(t, err)

	a.RegisterMock("get", "/v2/test", map[string]string{"mock": "call"}, 0)

	resp, err := s.Client().Get("http://a.test/v2/test")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"mock":"call"}`, readAll(t, resp))

	resp, err = s.Client().Get("http://b.test/v2/test")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	assert.Len(t, a.Calls(), 1)
	assert.Len(t, b.Calls(), 1)
}

func TestSession_Routing(t *testing.T) {
	var passed []string
	next := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		passed = append(passed, req.URL.Host)
		return &http.Response{StatusCode: http.StatusTeapot, Body: http.NoBody, Request: req}, nil
	})

	s := newSession(t, WithNext(next), WithPassthroughHosts("*.internal", "127.0.0.1"))
	_, err := s.Register(petstore, "http://api.test/v2")
	require.NoError(t, err)

	t.Run("unregistered host", func(t *testing.T) {
		_, err := s.Client().Get("http://elsewhere.test/v2/pets")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNoRoute))
	})

	t.Run("outside base path", func(t *testing.T) {
		_, err := s.Client().Get("http://api.test/v3/pets")
		assert.True(t, errors.Is(err, ErrNoRoute))
	})

	t.Run("method not intercepted", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodOptions, "http://api.test/v2/pets", nil)
		_, err := s.Client().Do(req)
		assert.True(t, errors.Is(err, ErrNoRoute))
	})

	t.Run("passthrough globs", func(t *testing.T) {
		resp, err := s.Client().Get("http://db.internal:5432/health")
		require.NoError(t, err)
		assert.Equal(t, http.StatusTeapot, resp.StatusCode)

		resp, err = s.Client().Get("http://127.0.0.1:9000/")
		require.NoError(t, err)
		assert.Equal(t, http.StatusTeapot, resp.StatusCode)

		assert.Equal(t, []string{"db.internal:5432", "127.0.0.1:9000"}, passed)
	})
}

func TestSession_SideEffects(t *testing.T) {
	s := newSession(t)
	l, err := s.Register(petstore, "http://localhost:8000")
	require.NoError(t, err)

	boom := errors.New("connection refused")
	l.RegisterSideEffect("delete", "/v2/pets/1", ledger.Raise(boom))
	l.RegisterSideEffect("get", "/v2/pets/1", ledger.Bodies("once"))

	req, _ := http.NewRequest(http.MethodDelete, "http://localhost:8000/v2/pets/1", nil)
	_, err = s.Client().Do(req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))

	resp, err := s.Client().Get("http://localhost:8000/v2/pets/1")
	require.NoError(t, err)
	assert.Equal(t, `"once"`, readAll(t, resp))

	_, err = s.Client().Get("http://localhost:8000/v2/pets/1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ledger.ErrSideEffectExhausted))
}

func TestSession_InstallClose(t *testing.T) {
	original := http.DefaultTransport

	s := New()
	_, err := s.Register(petstore, "http://petstore.test")
	require.NoError(t, err)

	require.NoError(t, s.Install())
	require.NoError(t, s.Install())
	assert.Same(t, s, http.DefaultTransport)

	resp, err := http.Get("http://petstore.test/v2/pets/7")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, original, http.DefaultTransport)

	_, ok := s.Ledger("http://petstore.test")
	assert.False(t, ok)

	_, err = s.Client().Get("http://petstore.test/v2/pets/7")
	assert.True(t, errors.Is(err, ErrClosed))

	_, err = s.Register(petstore, "http://petstore.test")
	assert.True(t, errors.Is(err, ErrClosed))
	assert.True(t, errors.Is(s.Install(), ErrClosed))
}

func TestSession_Handler(t *testing.T) {
	s := newSession(t)
	l, err := s.Register(petstore, "http://localhost:8000")
	require.NoError(t, err)

	h, err := s.Handler("http://localhost:8000")
	require.NoError(t, err)
	srv := httptest.NewServer(h)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v2/pets/5121")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readAll(t, resp), `"doggie"`)

	resp, err = http.Get(srv.URL + "/v2/error")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	req, _ := http.NewRequest(http.MethodHead, srv.URL+"/v2/pets", nil)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	resp.Body.Close()

	l.RegisterSideEffect("get", "/v2/pets/9", ledger.Raise(errors.New("reset")))
	_, err = http.Get(srv.URL + "/v2/pets/9")
	assert.Error(t, err)

	_, err = s.Handler("http://unknown.test")
	assert.True(t, errors.Is(err, ErrNoRoute))
}

func TestSession_ErrorHandler(t *testing.T) {
	var seen []error
	s := newSession(t, WithErrorHandler(func(req *http.Request, err error) {
		seen = append(seen, err)
	}))
	l, err := s.Register(petstore, "http://localhost:8000")
	require.NoError(t, err)
	l.RegisterSideEffect("get", "/v2/pets/1", ledger.Bodies())

	_, err = s.Client().Get("http://localhost:8000/v2/pets/1")
	require.Error(t, err)
	require.Len(t, seen, 1)
	assert.True(t, errors.Is(seen[0], ledger.ErrSideEffectExhausted))
}
