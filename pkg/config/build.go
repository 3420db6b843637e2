package config

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/getmockd/swaggerstub/pkg/session"
)

// NewSession creates a session from the configuration and registers every
// target. The session is closed again if any registration fails.
func NewSession(cfg *Config, log *slog.Logger) (*session.Session, error) {
	s := session.New(
		session.WithLogger(log),
		session.WithDocumentPath(cfg.ContractPath),
		session.WithSideEffectRecording(cfg.ShouldRecordSideEffects()),
		session.WithPassthroughHosts(cfg.PassthroughHosts...),
	)

	for i, t := range cfg.Targets {
		if _, err := s.Register(t.Contract, t.BaseURL); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("targets[%d]: %w", i, err)
		}
	}
	return s, nil
}

// ExpandContracts expands doublestar patterns (e.g. "specs/**/*.yaml") into
// sorted, de-duplicated file paths. A pattern without matches is kept as-is
// so that loading it reports the missing file.
func ExpandContracts(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid pattern %q", pattern)
		}
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			matches = []string{pattern}
		}
		sort.Strings(matches)
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	return out, nil
}
