package contract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// DefaultDocumentPath is the path at which the contract document is served.
const DefaultDocumentPath = "/swagger.json"

// Common errors for contract loading and lookup.
var (
	ErrInvalidDocument     = errors.New("invalid contract document")
	ErrUnsupportedVersion  = errors.New("unsupported contract version")
	ErrOperationNotFound   = errors.New("operation not found")
	ErrDocumentUnavailable = errors.New("contract document not found")
)

// Version identifies the contract dialect.
type Version string

// Supported dialects.
const (
	VersionSwagger2 Version = "swagger2"
	VersionOpenAPI3 Version = "openapi3"
)

// Contract is a loaded, read-only API contract.
type Contract struct {
	doc          *openapi3.T
	raw          []byte
	source       map[string]interface{}
	version      Version
	basePath     string
	documentPath string
	operations   []*Operation
	definitions  map[string]interface{}
}

type options struct {
	documentPath string
	validate     bool
}

// Option configures loading.
type Option func(*options)

// WithDocumentPath overrides the path at which the document is served.
func WithDocumentPath(p string) Option {
	return func(o *options) {
		if p != "" {
			o.documentPath = p
		}
	}
}

// WithValidation checks the converted document against the OpenAPI 3 rules
// before accepting it.
func WithValidation() Option {
	return func(o *options) {
		o.validate = true
	}
}

// LoadFile reads and loads a contract from disk.
func LoadFile(path string, opts ...Option) (*Contract, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDocumentUnavailable, path)
		}
		return nil, fmt.Errorf("failed to read contract %s: %w", path, err)
	}

	c, err := LoadData(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// LoadData loads a contract from JSON or YAML bytes.
func LoadData(data []byte, opts ...Option) (*Contract, error) {
	o := options{documentPath: DefaultDocumentPath}
	for _, opt := range opts {
		opt(&o)
	}

	raw, probe, err := toJSON(data)
	if err != nil {
		return nil, err
	}

	c := &Contract{raw: raw, source: probe, documentPath: o.documentPath}

	switch {
	case isSwagger2(probe["swagger"]):
		c.version = VersionSwagger2
		c.doc, err = loadSwagger2(raw)
		if bp, ok := probe["basePath"].(string); ok {
			c.basePath = normalizeBasePath(bp)
		}
	case strings.HasPrefix(fmt.Sprint(probe["openapi"]), "3."):
		c.version = VersionOpenAPI3
		c.doc, err = loadOpenAPI3(raw)
		if err == nil {
			c.basePath = serverBasePath(c.doc)
		}
	default:
		return nil, fmt.Errorf("%w: expected swagger: \"2.0\" or openapi: 3.x", ErrUnsupportedVersion)
	}
	if err != nil {
		return nil, err
	}

	if o.validate {
		if err := c.doc.Validate(context.Background()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
	}

	c.operations = collectOperations(c.doc, c.basePath)
	c.definitions = buildDefinitions(c.doc)
	return c, nil
}

func loadSwagger2(raw []byte) (*openapi3.T, error) {
	var doc2 openapi2.T
	if err := json.Unmarshal(raw, &doc2); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	doc3, err := openapi2conv.ToV3(&doc2)
	if err != nil {
		return nil, fmt.Errorf("%w: converting swagger 2.0: %v", ErrInvalidDocument, err)
	}

	if err := openapi3.NewLoader().ResolveRefsIn(doc3, nil); err != nil {
		return nil, fmt.Errorf("%w: resolving references: %v", ErrInvalidDocument, err)
	}
	return doc3, nil
}

func loadOpenAPI3(raw []byte) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = true

	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return doc, nil
}

// serverBasePath returns the path component of the first server URL.
func serverBasePath(doc *openapi3.T) string {
	if len(doc.Servers) == 0 || doc.Servers[0] == nil {
		return ""
	}
	u, err := url.Parse(doc.Servers[0].URL)
	if err != nil {
		return ""
	}
	return normalizeBasePath(u.Path)
}

func normalizeBasePath(p string) string {
	p = strings.TrimSuffix(p, "/")
	if p != "" && !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// Version reports the dialect of the source document.
func (c *Contract) Version() Version {
	return c.version
}

// BasePath is the prefix every operation path is served under ("" for none).
func (c *Contract) BasePath() string {
	return c.basePath
}

// Title returns the document title.
func (c *Contract) Title() string {
	if c.doc.Info == nil {
		return ""
	}
	return c.doc.Info.Title
}

// DocumentPath is the reserved path serving the raw document.
func (c *Contract) DocumentPath() string {
	return c.documentPath
}

// Document returns the source document encoded as JSON.
func (c *Contract) Document() []byte {
	out := make([]byte, len(c.raw))
	copy(out, c.raw)
	return out
}

// OpenAPI exposes the converted OpenAPI 3 document. It must not be modified.
func (c *Contract) OpenAPI() *openapi3.T {
	return c.doc
}

// Definitions returns one example per named schema, keyed by name. The values
// are JSON-shaped (map[string]interface{}, []interface{}, float64, ...).
func (c *Contract) Definitions() map[string]interface{} {
	return c.definitions
}

// DefinitionNames lists the named schemas in sorted order.
func (c *Contract) DefinitionNames() []string {
	names := make([]string, 0, len(c.definitions))
	for name := range c.definitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// toJSON converts a JSON or YAML document into canonical JSON and returns its
// top-level object for dialect detection.
func toJSON(data []byte) ([]byte, map[string]interface{}, error) {
	var decoded interface{}
	if json.Valid(data) {
		if err := json.Unmarshal(data, &decoded); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
	} else {
		var y interface{}
		if err := yaml.Unmarshal(data, &y); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		decoded = normalizeYAML(y)
	}

	top, ok := decoded.(map[string]interface{})
	if !ok {
		return nil, nil, fmt.Errorf("%w: top level must be an object", ErrInvalidDocument)
	}

	raw, err := json.Marshal(top)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return raw, top, nil
}

// normalizeYAML turns YAML maps with non-string keys (unquoted status codes)
// into JSON-compatible maps.
func normalizeYAML(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, val := range t {
			t[k] = normalizeYAML(val)
		}
		return t
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return m
	case []interface{}:
		for i, val := range t {
			t[i] = normalizeYAML(val)
		}
		return t
	default:
		return v
	}
}

func isSwagger2(v interface{}) bool {
	s := fmt.Sprint(v)
	return s == "2.0" || s == "2"
}
