package match

import (
	"strings"
)

// Glob metacharacters that can be escaped with backslash in patterns.
const globEscapable = `*?[]{}\`

// NormalizePattern converts a user-provided glob pattern to canonical
// form: unescaped backslashes become forward slashes (Windows paths),
// while escape sequences for glob metacharacters are preserved.
//
// Examples:
//
//	"data/2024/**"     → "data/2024/**"
//	"data\2024\**"     → "data/2024/**"
//	"data/file\*.txt"  → "data/file\*.txt" (escape preserved)
func NormalizePattern(pattern string) string {
	if !strings.ContainsRune(pattern, '\\') {
		return pattern
	}

	var result strings.Builder
	result.Grow(len(pattern))

	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if r == '\\' {
			if i+1 < len(runes) && strings.ContainsRune(globEscapable, runes[i+1]) {
				result.WriteRune('\\')
				result.WriteRune(runes[i+1])
				i++
				continue
			}
			// Unescaped backslash is a path separator.
			result.WriteRune('/')
			continue
		}

		result.WriteRune(r)
	}

	return result.String()
}

// IsHidden reports whether any path segment of the key starts with a
// dot, following the Unix hidden-file convention. Keys use '/' as the
// separator.
func IsHidden(key string) bool {
	for _, seg := range strings.Split(key, "/") {
		if seg != "" && strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}

// EnsureTrailingSlash appends a slash unless the string is empty or
// already ends with one.
func EnsureTrailingSlash(key string) string {
	if key == "" || strings.HasSuffix(key, "/") {
		return key
	}
	return key + "/"
}
