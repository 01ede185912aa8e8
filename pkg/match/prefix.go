package match

import (
	"sort"
	"strings"
)

// DerivePrefix extracts the longest static key prefix from a glob
// pattern: everything before the first unescaped metacharacter,
// truncated to a whole path segment, with escape backslashes removed.
//
// Examples:
//
//	"data/2024/**/*.parquet" → "data/2024/"
//	"*.json"                 → ""
//	"exact/path/file.txt"    → "exact/path/file.txt"
//	"data/file\*.txt"        → "data/file*.txt"
func DerivePrefix(pattern string) string {
	if pattern == "" {
		return ""
	}

	pattern = NormalizePattern(pattern)

	metaIdx := firstUnescapedMeta(pattern)
	if metaIdx == -1 {
		return unescapePrefix(pattern)
	}
	if metaIdx == 0 {
		return ""
	}

	// Truncate to the last complete segment so "data/2024-*" scopes to
	// "data/" rather than the partial "data/2024-".
	prefix := pattern[:metaIdx]
	lastSlash := strings.LastIndex(prefix, "/")
	if lastSlash < 0 {
		return ""
	}
	return unescapePrefix(prefix[:lastSlash+1])
}

// firstUnescapedMeta returns the index of the first unescaped glob
// metacharacter (* ? [ {), or -1 if the pattern is an exact match.
func firstUnescapedMeta(pattern string) int {
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]

		if c == '\\' && i+1 < len(pattern) {
			next := pattern[i+1]
			if next == '*' || next == '?' || next == '[' || next == '{' || next == '\\' {
				i++
			}
			continue
		}

		if c == '*' || c == '?' || c == '[' || c == '{' {
			return i
		}
	}
	return -1
}

// unescapePrefix strips escape backslashes so the result is a literal
// key prefix. Store keys are opaque strings with no escape syntax.
func unescapePrefix(prefix string) string {
	if !strings.ContainsRune(prefix, '\\') {
		return prefix
	}

	var result strings.Builder
	result.Grow(len(prefix))

	for i := 0; i < len(prefix); i++ {
		c := prefix[i]
		if c == '\\' && i+1 < len(prefix) && strings.ContainsRune(globEscapable, rune(prefix[i+1])) {
			result.WriteByte(prefix[i+1])
			i++
			continue
		}
		result.WriteByte(c)
	}

	return result.String()
}

// DerivePrefixes derives a prefix per pattern, drops prefixes subsumed
// by a shorter one, and sorts the survivors. An empty prefix subsumes
// everything and yields [""].
func DerivePrefixes(patterns []string) []string {
	if len(patterns) == 0 {
		return nil
	}

	prefixes := make([]string, 0, len(patterns))
	for _, p := range patterns {
		prefix := DerivePrefix(p)
		if prefix == "" {
			return []string{""}
		}
		prefixes = append(prefixes, prefix)
	}

	sort.Slice(prefixes, func(i, j int) bool {
		return len(prefixes[i]) < len(prefixes[j])
	})

	result := make([]string, 0, len(prefixes))
	for _, candidate := range prefixes {
		subsumed := false
		for _, existing := range result {
			if strings.HasPrefix(candidate, existing) {
				subsumed = true
				break
			}
		}
		if !subsumed {
			result = append(result, candidate)
		}
	}

	sort.Strings(result)
	return result
}

// IsGlobPattern reports whether the pattern contains unescaped glob
// metacharacters. Escaped metacharacters (\*, \?) are literals.
func IsGlobPattern(pattern string) bool {
	return firstUnescapedMeta(NormalizePattern(pattern)) != -1
}
