// Package match filters object keys with doublestar glob patterns and
// derives static key prefixes so listings can be scoped server-side.
package match

import (
	"errors"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher evaluates include/exclude glob patterns against object keys.
//
// A key is accepted when it matches at least one include pattern and no
// exclude pattern. A Matcher is safe for concurrent use after creation.
type Matcher struct {
	includes      []string
	excludes      []string
	prefixes      []string
	includeHidden bool
}

// Config configures a Matcher.
type Config struct {
	// Includes are glob patterns a key must match at least one of.
	// Empty means match everything.
	Includes []string

	// Excludes are glob patterns a key must not match any of.
	Excludes []string

	// IncludeHidden controls whether keys with a dot-prefixed path
	// segment are matched. Default false.
	IncludeHidden bool
}

// ErrInvalidPattern is returned when a pattern cannot be compiled.
var ErrInvalidPattern = errors.New("invalid glob pattern")

// PatternError wraps a pattern compilation failure with the offending
// pattern.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return "pattern " + e.Pattern + ": " + e.Err.Error()
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// New creates a Matcher from the given configuration. Patterns are
// normalized (backslash separators become slashes, escapes preserved)
// and validated up front so Match never fails.
func New(cfg Config) (*Matcher, error) {
	includes, err := compile(cfg.Includes)
	if err != nil {
		return nil, err
	}
	excludes, err := compile(cfg.Excludes)
	if err != nil {
		return nil, err
	}

	return &Matcher{
		includes:      includes,
		excludes:      excludes,
		prefixes:      DerivePrefixes(includes),
		includeHidden: cfg.IncludeHidden,
	}, nil
}

func compile(raw []string) ([]string, error) {
	patterns := make([]string, 0, len(raw))
	for _, r := range raw {
		normalized := NormalizePattern(r)
		if !doublestar.ValidatePattern(normalized) {
			return nil, &PatternError{Pattern: r, Err: ErrInvalidPattern}
		}
		patterns = append(patterns, normalized)
	}
	return patterns, nil
}

// Match reports whether the key passes the include/exclude patterns.
// Keys are matched as-is; object store keys are opaque strings.
func (m *Matcher) Match(key string) bool {
	if !m.includeHidden && IsHidden(key) {
		return false
	}

	if len(m.includes) > 0 {
		matched := false
		for _, inc := range m.includes {
			if matchPattern(inc, key) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	for _, exc := range m.excludes {
		if matchPattern(exc, key) {
			return false
		}
	}

	return true
}

// Prefixes returns the deduplicated static prefixes derived from the
// include patterns. An empty string in the result means at least one
// pattern needs an unscoped listing. With no includes the result is
// [""].
func (m *Matcher) Prefixes() []string {
	if len(m.prefixes) == 0 {
		return []string{""}
	}
	return m.prefixes
}

// matchPattern matches a key against a doublestar pattern. Patterns
// were validated at construction, so a match error cannot occur.
func matchPattern(pattern, key string) bool {
	matched, err := doublestar.Match(pattern, key)
	if err != nil {
		return false
	}
	return matched
}
