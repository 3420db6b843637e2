package contract

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getmockd/swaggerstub/internal/matching"
)

// Operation is one (method, path template) pair defined by the contract.
type Operation struct {
	// Method is the upper-case HTTP method.
	Method string
	// Template is the full template requests are matched against, base path
	// included (e.g. /v2/pets/{petId}).
	Template string
	// PathTemplate is the template as written in the document.
	PathTemplate string

	PathItem  *openapi3.PathItem
	Operation *openapi3.Operation
}

// OperationSummary is a flattened view of an operation for listings.
type OperationSummary struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	OperationID string `json:"operationId,omitempty"`
	Summary     string `json:"summary,omitempty"`
	Statuses    []int  `json:"statuses"`
}

func collectOperations(doc *openapi3.T, basePath string) []*Operation {
	if doc.Paths == nil {
		return nil
	}

	var ops []*Operation
	for tmpl, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			ops = append(ops, &Operation{
				Method:       strings.ToUpper(method),
				Template:     basePath + tmpl,
				PathTemplate: tmpl,
				PathItem:     item,
				Operation:    op,
			})
		}
	}

	sort.Slice(ops, func(i, j int) bool {
		if ops[i].Template != ops[j].Template {
			return ops[i].Template < ops[j].Template
		}
		return ops[i].Method < ops[j].Method
	})
	return ops
}

// Operation finds the operation serving a concrete request path for the given
// action. The action is case-insensitive. An exact template match beats a
// templated one; among templated matches, fewer parameters win.
func (c *Contract) Operation(path, action string) (*Operation, error) {
	method := strings.ToUpper(action)

	var best *Operation
	bestScore := 0
	for _, op := range c.operations {
		if op.Method != method {
			continue
		}
		if score := matching.MatchPath(op.Template, path); score > bestScore {
			best, bestScore = op, score
		}
	}

	if best == nil {
		return nil, fmt.Errorf("%w: %s %s", ErrOperationNotFound, method, path)
	}
	return best, nil
}

// HasOperation reports whether (path, action) names a defined operation.
func (c *Contract) HasOperation(path, action string) bool {
	_, err := c.Operation(path, action)
	return err == nil
}

// Operations returns every operation, ordered by template then method.
func (c *Contract) Operations() []*Operation {
	out := make([]*Operation, len(c.operations))
	copy(out, c.operations)
	return out
}

// Summary lists the operations for display.
func (c *Contract) Summary() []OperationSummary {
	out := make([]OperationSummary, 0, len(c.operations))
	for _, op := range c.operations {
		out = append(out, OperationSummary{
			Method:      op.Method,
			Path:        op.Template,
			OperationID: op.Operation.OperationID,
			Summary:     op.Operation.Summary,
			Statuses:    op.Statuses(),
		})
	}
	return out
}

// PathParams extracts the template variables for a concrete path.
func (op *Operation) PathParams(path string) map[string]string {
	return matching.PathVariables(op.Template, path)
}

// Statuses returns the numeric response codes in ascending order. A contract
// declaring only a default response reports 200.
func (op *Operation) Statuses() []int {
	codes := make([]int, 0)
	if op.Operation.Responses == nil {
		return codes
	}

	hasDefault := false
	for key := range op.Operation.Responses.Map() {
		if key == "default" {
			hasDefault = true
			continue
		}
		if code, ok := statusCode(key); ok {
			codes = append(codes, code)
		}
	}
	if len(codes) == 0 && hasDefault {
		codes = append(codes, http.StatusOK)
	}
	sort.Ints(codes)
	return codes
}

// statusCode parses a response key as an HTTP status in 100..599.
func statusCode(key string) (int, bool) {
	code, err := strconv.Atoi(key)
	if err != nil || code < 100 || code > 599 {
		return 0, false
	}
	return code, true
}
