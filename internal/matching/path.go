package matching

import "strings"

// Path match scores. Higher is more specific.
const (
	// ScoreExact is returned when the path equals the template.
	ScoreExact = 15
	// ScoreTemplate is the ceiling for templated matches; each variable
	// segment lowers it by one.
	ScoreTemplate = 12
)

// MatchPath checks if the request path matches the template.
// Returns a score > 0 if matched, 0 if not matched.
// Exact matches score higher than named parameter matches.
// Supports:
//   - Exact match: "/v2/pets" matches "/v2/pets"
//   - Named params: "/v2/pets/{id}" matches "/v2/pets/123"
//
// Named parameters never match an empty segment.
func MatchPath(template, path string) int {
	if template == path {
		return ScoreExact
	}

	if strings.Contains(template, "{") && strings.Contains(template, "}") {
		if matchNamedParams(template, path) {
			return ScoreTemplate - countParams(template)
		}
	}

	return 0
}

// matchNamedParams checks if path matches a template with named parameters.
// Example: "/pets/{id}" matches "/pets/123"
func matchNamedParams(template, path string) bool {
	templateParts := splitPath(template)
	pathParts := splitPath(path)

	// Must have same number of segments
	if len(templateParts) != len(pathParts) {
		return false
	}

	for i, part := range templateParts {
		if isParam(part) {
			if pathParts[i] == "" {
				return false
			}
			continue
		}
		// Literal parts must match exactly
		if part != pathParts[i] {
			return false
		}
	}

	return true
}

// PathVariables extracts the values bound to {name} segments.
// Example: template "/pets/{id}" with path "/pets/123" returns {"id": "123"}.
// The result is empty when the path does not match the template.
func PathVariables(template, path string) map[string]string {
	result := make(map[string]string)
	if !matchNamedParams(template, path) {
		return result
	}

	pathParts := splitPath(path)
	for i, part := range splitPath(template) {
		if isParam(part) {
			result[part[1:len(part)-1]] = pathParts[i]
		}
	}
	return result
}

func splitPath(p string) []string {
	return strings.Split(strings.Trim(p, "/"), "/")
}

func isParam(segment string) bool {
	return len(segment) > 2 && strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}")
}

// countParams lowers the score of templates with more variable segments, so
// "/pets/{id}/photos" beats "/{kind}/{id}/photos" (capped to stay positive).
func countParams(template string) int {
	n := 0
	for _, part := range splitPath(template) {
		if isParam(part) {
			n++
		}
	}
	if n >= ScoreTemplate {
		return ScoreTemplate - 1
	}
	return n
}
