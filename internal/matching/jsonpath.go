package matching

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/ohler55/ojg/jp"
)

// JSONPath evaluates a JSONPath expression against an already decoded body
// (the structured value stored on a call record).
func JSONPath(expr string, data interface{}) ([]interface{}, error) {
	x, err := parseJSONPath(expr)
	if err != nil {
		return nil, err
	}
	return x.Get(data), nil
}

// MatchJSONPath reports whether any value selected by expr equals want.
// Invalid expressions and nil bodies never match.
func MatchJSONPath(expr string, want, data interface{}) bool {
	if data == nil {
		return false
	}
	got, err := JSONPath(expr, data)
	if err != nil {
		return false
	}
	for _, v := range got {
		if sameValue(v, want) {
			return true
		}
	}
	return false
}

// ValidateJSONPathExpression validates a JSONPath expression up front.
func ValidateJSONPathExpression(expr string) error {
	_, err := parseJSONPath(expr)
	return err
}

func parseJSONPath(expr string) (jp.Expr, error) {
	x, err := jp.ParseString(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid JSONPath expression %q: %w", expr, err)
	}
	return x, nil
}

// sameValue compares a decoded JSON value with a Go value. Numbers compare by
// value, so 42 matches the float64 a JSON decoder produced.
func sameValue(got, want interface{}) bool {
	if got == nil || want == nil {
		return got == nil && want == nil
	}
	if reflect.DeepEqual(got, want) {
		return true
	}
	g, ok := number(got)
	if !ok {
		return false
	}
	w, ok := number(want)
	return ok && g == w
}

func number(v interface{}) (float64, bool) {
	if n, ok := v.(json.Number); ok {
		f, err := n.Float64()
		return f, err == nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}
