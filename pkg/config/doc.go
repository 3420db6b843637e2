// Package config loads swaggerstub configuration files.
//
// A configuration lists the contracts to stub and the base URLs they answer
// for, plus session-wide settings:
//
//	contractPath: /swagger.json
//	recordSideEffects: true
//	passthroughHosts: ["localhost:*"]
//	log:
//	  level: info
//	  format: text
//	targets:
//	  - contract: testdata/petstore.yaml
//	    baseUrl: http://localhost:8000
//
// Files are YAML (.yaml, .yml) or JSON. They are checked against an embedded
// JSON Schema before decoding, then semantically (absolute http(s) base URLs,
// one target per scheme and host). Relative contract paths are resolved
// against the directory of the configuration file.
package config
