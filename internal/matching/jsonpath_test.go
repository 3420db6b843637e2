package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONPath(t *testing.T) {
	body := map[string]interface{}{
		"name": "doggie",
		"tags": []interface{}{
			map[string]interface{}{"id": float64(1), "name": "a"},
			map[string]interface{}{"id": float64(2), "name": "b"},
		},
	}

	got, err := JSONPath("$.tags[*].name", body)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"a", "b"}, got)

	_, err = JSONPath("$[invalid", body)
	assert.Error(t, err)
}

func TestMatchJSONPath(t *testing.T) {
	body := map[string]interface{}{
		"id":     float64(42),
		"name":   "doggie",
		"active": true,
		"tags":   []interface{}{"x", "y"},
	}

	tests := []struct {
		name     string
		expr     string
		expected interface{}
		want     bool
	}{
		{name: "string field", expr: "$.name", expected: "doggie", want: true},
		{name: "int against float", expr: "$.id", expected: 42, want: true},
		{name: "bool", expr: "$.active", expected: true, want: true},
		{name: "wildcard any", expr: "$.tags[*]", expected: "y", want: true},
		{name: "mismatch", expr: "$.name", expected: "cat", want: false},
		{name: "missing", expr: "$.owner", expected: "bob", want: false},
		{name: "invalid expression", expr: "$[invalid", expected: "doggie", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchJSONPath(tt.expr, tt.expected, body))
		})
	}

	assert.False(t, MatchJSONPath("$.name", "doggie", nil))
}

func TestValidateJSONPathExpression(t *testing.T) {
	assert.NoError(t, ValidateJSONPathExpression("$.a.b[0]"))
	assert.Error(t, ValidateJSONPathExpression("$[invalid"))
}
