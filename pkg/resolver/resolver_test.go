package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/swaggerstub/pkg/contract"
	"github.com/getmockd/swaggerstub/pkg/ledger"
)

func newPetstore(t *testing.T, opts ...Option) *Resolver {
	t.Helper()
	c, err := contract.LoadFile(filepath.Join("..", "contract", "testdata", "petstore.yaml"))
	require.NoError(t, err)
	return New(ledger.New(c), c, opts...)
}

func request(method, rawURL, body string) *Request {
	u, _ := url.Parse(rawURL)
	var data []byte
	if body != "" {
		data = []byte(body)
	}
	return &Request{Method: method, URL: u, Body: data, Header: http.Header{"X-Trace": []string{"abc"}}}
}

func resolve(t *testing.T, r *Resolver, method, rawURL, body string) *Response {
	t.Helper()
	resp, err := r.Resolve(context.Background(), request(method, rawURL, body))
	require.NoError(t, err)
	return resp
}

func TestResolve_EndToEnd(t *testing.T) {
	r := newPetstore(t)

	t.Run("create pet", func(t *testing.T) {
		resp := resolve(t, r, http.MethodPost, "http://localhost:8000/v2/pets", `{"name":"doggie","photoUrls":["a.png"]}`)
		assert.Equal(t, http.StatusCreated, resp.Status)
		assert.Empty(t, resp.Body)
	})

	t.Run("invalid pet", func(t *testing.T) {
		resp := resolve(t, r, http.MethodPost, "http://localhost:8000/v2/pets", `{}`)
		assert.Equal(t, http.StatusBadRequest, resp.Status)
		assert.Empty(t, resp.Body)
	})

	t.Run("get pet", func(t *testing.T) {
		resp := resolve(t, r, http.MethodGet, "http://localhost:8000/v2/pets/5121", "")
		assert.Equal(t, http.StatusOK, resp.Status)

		var pet map[string]interface{}
		require.NoError(t, json.Unmarshal(resp.Body, &pet))
		assert.Equal(t, float64(42), pet["id"])
		assert.Equal(t, "doggie", pet["name"])
	})

	t.Run("undefined path", func(t *testing.T) {
		resp := resolve(t, r, http.MethodGet, "http://localhost:8000/v2/error", "")
		assert.Equal(t, http.StatusNotFound, resp.Status)
	})

	t.Run("mock", func(t *testing.T) {
		r.Ledger().RegisterMock("get", "/v2/test", map[string]string{"mock": "call"}, 0)
		resp := resolve(t, r, http.MethodGet, "http://localhost:8000/v2/test", "")
		assert.Equal(t, http.StatusOK, resp.Status)
		assert.JSONEq(t, `{"mock":"call"}`, string(resp.Body))
	})

	statuses := []int{}
	for _, c := range r.Ledger().Calls() {
		statuses = append(statuses, c.StatusCode)
	}
	assert.Equal(t, []int{201, 400, 200, 404, 200}, statuses)
}

func TestResolve_Mock(t *testing.T) {
	r := newPetstore(t)
	l := r.Ledger()
	l.RegisterMock("get", "/v2/pets/1", map[string]interface{}{"id": 1}, http.StatusAccepted)
	l.RegisterSideEffect("get", "/v2/pets/1", ledger.Bodies("never"))

	for i := 0; i < 3; i++ {
		resp := resolve(t, r, http.MethodGet, "http://localhost:8000/v2/pets/1", "")
		assert.Equal(t, http.StatusAccepted, resp.Status)
		assert.JSONEq(t, `{"id":1}`, string(resp.Body))
	}

	cursor, ok := l.Cursor("get", "/v2/pets/1")
	require.True(t, ok)
	assert.Equal(t, -1, cursor)
	assert.Len(t, l.QueryCalls("get", "/v2/pets/1"), 3)

	t.Run("answers undefined paths", func(t *testing.T) {
		l.RegisterMock("post", "/v2/anything", "ok", 0)
		resp := resolve(t, r, http.MethodPost, "http://localhost:8000/v2/anything", "")
		assert.Equal(t, http.StatusOK, resp.Status)
		assert.Equal(t, `"ok"`, string(resp.Body))
	})

	t.Run("last registration wins", func(t *testing.T) {
		l.RegisterMock("get", "/v2/x", "first", 0)
		l.RegisterMock("get", "/v2/x", "second", 201)
		resp := resolve(t, r, http.MethodGet, "http://localhost:8000/v2/x", "")
		assert.Equal(t, 201, resp.Status)
		assert.Equal(t, `"second"`, string(resp.Body))
	})
}

func TestResolve_SideEffectSequence(t *testing.T) {
	r := newPetstore(t)
	l := r.Ledger()
	l.RegisterSideEffect("get", "/v2/pets/1", ledger.Sequence(
		ledger.Reply(map[string]int{"n": 1}),
		ledger.ReplyStatus(map[string]int{"n": 2}, http.StatusTeapot),
		ledger.Reply("three"),
	))

	want := []struct {
		status int
		body   string
	}{
		{200, `{"n":1}`},
		{418, `{"n":2}`},
		{200, `"three"`},
	}
	for i, w := range want {
		resp := resolve(t, r, http.MethodGet, "http://localhost:8000/v2/pets/1", "")
		assert.Equal(t, w.status, resp.Status, "call %d", i+1)
		assert.JSONEq(t, w.body, string(resp.Body), "call %d", i+1)
	}

	_, err := r.Resolve(context.Background(), request(http.MethodGet, "http://localhost:8000/v2/pets/1", ""))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ledger.ErrSideEffectExhausted))

	var exhausted *ledger.ExhaustedError
	require.True(t, errors.As(err, &exhausted))
	assert.Equal(t, 3, exhausted.Length)

	assert.Len(t, l.QueryCalls("get", "/v2/pets/1"), 3)

	t.Run("re-registration restarts", func(t *testing.T) {
		l.RegisterSideEffect("get", "/v2/pets/1", ledger.Bodies("again"))
		resp := resolve(t, r, http.MethodGet, "http://localhost:8000/v2/pets/1", "")
		assert.Equal(t, `"again"`, string(resp.Body))
	})
}

func TestResolve_SideEffectRecording(t *testing.T) {
	r := newPetstore(t, WithSideEffectRecording(false))
	r.Ledger().RegisterSideEffect("get", "/v2/pets/1", ledger.Bodies("a"))

	resp := resolve(t, r, http.MethodGet, "http://localhost:8000/v2/pets/1", "")
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Empty(t, r.Ledger().Calls())
}

func TestResolve_SideEffectError(t *testing.T) {
	r := newPetstore(t)
	boom := errors.New("connection reset")
	r.Ledger().RegisterSideEffect("delete", "/v2/pets/1", ledger.Raise(boom))

	for i := 0; i < 2; i++ {
		_, err := r.Resolve(context.Background(), request(http.MethodDelete, "http://localhost:8000/v2/pets/1", ""))
		assert.Same(t, boom, err)
	}

	cursor, _ := r.Ledger().Cursor("delete", "/v2/pets/1")
	assert.Equal(t, -1, cursor)
	assert.Empty(t, r.Ledger().Calls())
}

func TestResolve_Isolation(t *testing.T) {
	a := newPetstore(t)
	b := newPetstore(t)
	a.Ledger().RegisterMock("get", "/v2/pets/1", "from a", 0)
	a.Ledger().RegisterSideEffect("get", "/v2/pets/2", ledger.Bodies("from a"))

	resp := resolve(t, b, http.MethodGet, "http://other:9000/v2/pets/1", "")
	assert.NotEqual(t, `"from a"`, string(resp.Body))
	resp = resolve(t, b, http.MethodGet, "http://other:9000/v2/pets/2", "")
	assert.NotEqual(t, `"from a"`, string(resp.Body))
	assert.Empty(t, a.Ledger().Calls())
}

func TestResolve_BadBody(t *testing.T) {
	r := newPetstore(t)
	r.Ledger().RegisterMock("post", "/v2/pets", "mocked", 0)

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodGet} {
		resp := resolve(t, r, method, "http://localhost:8000/v2/pets", "this is not json")
		assert.Equal(t, http.StatusBadRequest, resp.Status)
		assert.Equal(t, `{"body": ["Not valid json."]}`, string(resp.Body))
	}
	assert.Empty(t, r.Ledger().Calls())
}

func TestResolve_WhitespaceBodyIsBad(t *testing.T) {
	r := newPetstore(t)
	r.Ledger().RegisterMock("post", "/v2/x", "ok", 0)

	for _, body := range []string{"   ", "\n"} {
		resp := resolve(t, r, http.MethodPost, "http://localhost:8000/v2/x", body)
		assert.Equal(t, http.StatusBadRequest, resp.Status, "body %q", body)
		assert.Equal(t, `{"body": ["Not valid json."]}`, string(resp.Body))
	}
	assert.Empty(t, r.Ledger().Calls())
}

func TestResolve_LenientFormBodies(t *testing.T) {
	r := newPetstore(t)
	r.Ledger().RegisterMock("post", "/v2/x", "ok", 0)

	tests := []struct {
		body string
		want map[string]interface{}
	}{
		{"note=100%", map[string]interface{}{"note": "100%"}},
		{"a=1;b=2", map[string]interface{}{"a": "1;b=2"}},
		{"name=x&pct=5%", map[string]interface{}{"name": "x", "pct": "5%"}},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			resp := resolve(t, r, http.MethodPost, "http://localhost:8000/v2/x", tt.body)
			assert.Equal(t, http.StatusOK, resp.Status)
			assert.JSONEq(t, `"ok"`, string(resp.Body))

			calls := r.Ledger().QueryCalls("post", "/v2/x")
			require.NotEmpty(t, calls)
			assert.Equal(t, tt.want, calls[len(calls)-1].Body)
		})
	}
}

func TestResolve_FormDataOperation(t *testing.T) {
	c, err := contract.LoadData([]byte(`swagger: "2.0"
info: {title: login, version: "1"}
basePath: /v2
paths:
  /login:
    post:
      consumes: [application/x-www-form-urlencoded]
      produces: [application/json]
      parameters:
        - {name: user, in: formData, required: true, type: string}
        - {name: age, in: formData, required: false, type: integer}
      responses:
        "200":
          description: ok
          schema: {type: string, example: welcome}
`))
	require.NoError(t, err)
	r := New(ledger.New(c), c)

	tests := []struct {
		body   string
		status int
	}{
		{"user=bob&age=3", http.StatusOK},
		{"user=bob", http.StatusOK},
		{`{"user":"bob"}`, http.StatusOK},
		{"age=3", http.StatusBadRequest},
		{"user=bob&age=old", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			resp := resolve(t, r, http.MethodPost, "http://localhost:8000/v2/login", tt.body)
			assert.Equal(t, tt.status, resp.Status)
			if tt.status == http.StatusOK {
				assert.JSONEq(t, `"welcome"`, string(resp.Body))
			}
		})
	}
}

func TestResolve_UndefinedOperation(t *testing.T) {
	tests := []struct {
		method string
		status int
	}{
		{http.MethodPost, http.StatusBadRequest},
		{http.MethodGet, http.StatusNotFound},
		{http.MethodPut, http.StatusNotFound},
		{http.MethodPatch, http.StatusNotFound},
		{http.MethodDelete, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			r := newPetstore(t)
			resp := resolve(t, r, tt.method, "http://localhost:8000/v2/undefined", "")
			assert.Equal(t, tt.status, resp.Status)
			assert.Empty(t, resp.Body)

			calls := r.Ledger().Calls()
			require.Len(t, calls, 1)
			assert.Equal(t, tt.status, calls[0].StatusCode)
		})
	}
}

func TestResolve_ContractDocument(t *testing.T) {
	r := newPetstore(t)
	r.Ledger().RegisterMock("get", "/swagger.json", "unreachable", 0)

	resp := resolve(t, r, http.MethodGet, "http://localhost:8000/swagger.json", "")
	assert.Equal(t, http.StatusOK, resp.Status)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body, &doc))
	assert.Equal(t, "2.0", doc["swagger"])
	assert.Empty(t, r.Ledger().Calls())

	t.Run("custom path", func(t *testing.T) {
		r := newPetstore(t, WithDocumentPath("/v2/openapi.json"))
		resp := resolve(t, r, http.MethodGet, "http://localhost:8000/v2/openapi.json", "")
		assert.Equal(t, http.StatusOK, resp.Status)
		assert.Contains(t, string(resp.Body), `"swagger":"2.0"`)
	})
}

func TestResolve_RecordsRequest(t *testing.T) {
	r := newPetstore(t)
	resp := resolve(t, r, http.MethodGet, "http://localhost:8000/v2/pets?status=sold&limit=5", "")
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "abc", resp.Header.Get("X-Trace"))

	calls := r.Ledger().QueryCalls("get", "/v2/pets")
	require.Len(t, calls, 1)
	assert.Equal(t, map[string]string{"status": "sold", "limit": "5"}, calls[0].Query)
	assert.Nil(t, calls[0].Body)
	assert.Equal(t, "get", calls[0].Action)

	t.Run("form body", func(t *testing.T) {
		r.Ledger().RegisterMock("post", "/v2/login", nil, 204)
		resolve(t, r, http.MethodPost, "http://localhost:8000/v2/login", "user=bob&pass=x")
		calls := r.Ledger().QueryCalls("post", "/v2/login")
		require.Len(t, calls, 1)
		assert.Equal(t, map[string]interface{}{"user": "bob", "pass": "x"}, calls[0].Body)
	})

	t.Run("invalid query", func(t *testing.T) {
		resp := resolve(t, r, http.MethodGet, "http://localhost:8000/v2/pets?status=lost", "")
		assert.Equal(t, http.StatusBadRequest, resp.Status)
	})
}

func TestResolve_DefaultOnlyResponse(t *testing.T) {
	c, err := contract.LoadFile(filepath.Join("..", "contract", "testdata", "inventory-v3.yaml"))
	require.NoError(t, err)
	r := New(ledger.New(c), c)

	resp := resolve(t, r, http.MethodGet, "https://inventory.example.com/api/items/A-1", "")
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Contains(t, string(resp.Body), `"sku"`)
}
