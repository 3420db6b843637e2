package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/getmockd/swaggerstub/pkg/validation"
)

// Validate performs the checks the JSON Schema cannot express: base URLs
// must be absolute http(s) URLs, each scheme and host may appear once, and
// passthrough globs must be well formed.
func (c *Config) Validate() error {
	result := validation.Valid()

	if len(c.Targets) == 0 {
		return ErrNoTargets
	}

	seen := make(map[string]int)
	for i, t := range c.Targets {
		field := fmt.Sprintf("targets[%d]", i)
		if t.Contract == "" {
			result.AddError(validation.NewRequiredError(field+".contract", validation.LocationDocument))
		}

		u, err := url.Parse(t.BaseURL)
		switch {
		case t.BaseURL == "":
			result.AddError(validation.NewRequiredError(field+".baseUrl", validation.LocationDocument))
			continue
		case err != nil:
			result.AddError(validation.NewSchemaError(field+".baseUrl", validation.LocationDocument, err.Error()))
			continue
		case u.Scheme != "http" && u.Scheme != "https":
			result.AddError(validation.NewSchemaError(field+".baseUrl", validation.LocationDocument,
				fmt.Sprintf("%q must be an absolute http or https URL", t.BaseURL)))
			continue
		case u.Host == "":
			result.AddError(validation.NewSchemaError(field+".baseUrl", validation.LocationDocument,
				fmt.Sprintf("%q has no host", t.BaseURL)))
			continue
		}

		key := strings.ToLower(u.Scheme + "://" + u.Host)
		if prev, dup := seen[key]; dup {
			result.AddError(validation.NewSchemaError(field+".baseUrl", validation.LocationDocument,
				fmt.Sprintf("%s is already used by targets[%d]", key, prev)))
			continue
		}
		seen[key] = i
	}

	for i, glob := range c.PassthroughHosts {
		if !doublestar.ValidatePattern(glob) {
			result.AddError(validation.NewSchemaError(fmt.Sprintf("passthroughHosts[%d]", i), validation.LocationDocument,
				fmt.Sprintf("invalid glob %q", glob)))
		}
	}

	if c.ContractPath != "" && !strings.HasPrefix(c.ContractPath, "/") {
		result.AddError(validation.NewSchemaError("contractPath", validation.LocationDocument, "must start with /"))
	}

	return result.Err()
}
