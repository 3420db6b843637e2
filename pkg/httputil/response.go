// Package httputil writes resolved stub responses to HTTP clients, either
// through an http.ResponseWriter or as a synthesized *http.Response.
package httputil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
)

// ContentTypeJSON is the content type used for JSON bodies.
const ContentTypeJSON = "application/json"

// WriteJSON writes a JSON response with the given status code.
// It sets the Content-Type header to application/json.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// WriteError writes a JSON error response with the given status code.
// The error response includes an error code and a human-readable message.
func WriteError(w http.ResponseWriter, status int, errCode, message string) {
	WriteJSON(w, status, map[string]string{
		"error":   errCode,
		"message": message,
	})
}

// ResponseHeader copies header and sets Content-Type to JSON when the body is
// non-empty and no content type was given.
func ResponseHeader(header http.Header, body []byte) http.Header {
	out := http.Header{}
	for k, vs := range header {
		out[k] = append([]string(nil), vs...)
	}
	if len(body) > 0 && out.Get("Content-Type") == "" {
		out.Set("Content-Type", ContentTypeJSON)
	}
	return out
}

// WriteResponse writes a resolved (status, header, body) triple. Request
// framing headers are not copied.
func WriteResponse(w http.ResponseWriter, status int, header http.Header, body []byte) {
	for k, vs := range ResponseHeader(header, body) {
		if isFramingHeader(k) {
			continue
		}
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(status)
	if len(body) > 0 {
		_, _ = w.Write(body)
	}
}

// NewResponse synthesizes the *http.Response a RoundTripper returns for req.
func NewResponse(req *http.Request, status int, header http.Header, body []byte) *http.Response {
	h := ResponseHeader(header, body)
	for k := range h {
		if isFramingHeader(k) {
			h.Del(k)
		}
	}
	h.Set("Content-Length", strconv.Itoa(len(body)))

	return &http.Response{
		Status:        strconv.Itoa(status) + " " + http.StatusText(status),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        h,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}

func isFramingHeader(k string) bool {
	switch http.CanonicalHeaderKey(k) {
	case "Content-Length", "Transfer-Encoding", "Connection":
		return true
	}
	return false
}
