package resolver

import (
	"encoding/json"
	"errors"
	"net/url"
	"strings"
)

// ErrUnparseableBody is returned when no parser accepts a non-empty body.
var ErrUnparseableBody = errors.New("body is neither JSON nor form encoded")

// BadBodyResponse is the exact body returned for an unparseable request body.
var BadBodyResponse = []byte(`{"body": ["Not valid json."]}`)

// bodyParsers are tried in order; each reports whether it accepted the body.
var bodyParsers = []func(raw []byte) (interface{}, bool){
	parseJSONBody,
	parseFormBody,
}

// ParseBody decodes a request body. An empty body yields nil. Otherwise each
// parser is tried in order and the first success wins; a body of only
// whitespace is not empty and fails both.
func ParseBody(raw []byte) (interface{}, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	for _, parse := range bodyParsers {
		if v, ok := parse(raw); ok {
			return v, nil
		}
	}
	return nil, ErrUnparseableBody
}

func parseJSONBody(raw []byte) (interface{}, bool) {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false
	}
	return v, true
}

// parseFormBody accepts key=value pairs. Pairs without a value are ignored, so
// free text never passes as a form.
func parseFormBody(raw []byte) (interface{}, bool) {
	pairs := formPairs(string(raw))
	if len(pairs) == 0 {
		return nil, false
	}
	form := make(map[string]interface{}, len(pairs))
	for _, kv := range pairs {
		form[kv[0]] = kv[1]
	}
	return form, true
}

// ParseQuery flattens a raw query string into a string map. When a key repeats,
// the last value wins. Pairs with a blank value are dropped.
func ParseQuery(rawQuery string) map[string]string {
	out := make(map[string]string)
	for _, kv := range formPairs(rawQuery) {
		out[kv[0]] = kv[1]
	}
	return out
}

// formPairs splits s on '&' into unescaped name/value pairs, in order.
// Segments without '=' or with an empty value are skipped. Only '&'
// separates pairs, and malformed escapes are kept literally.
func formPairs(s string) [][2]string {
	var pairs [][2]string
	for _, seg := range strings.Split(s, "&") {
		name, value, ok := strings.Cut(seg, "=")
		if !ok || value == "" {
			continue
		}
		pairs = append(pairs, [2]string{unescapeLenient(name), unescapeLenient(value)})
	}
	return pairs
}

// unescapeLenient decodes '+' and %XX escapes, leaving invalid escapes as is.
func unescapeLenient(s string) string {
	if v, err := url.QueryUnescape(s); err == nil {
		return v
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '+':
			b.WriteByte(' ')
		case c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
