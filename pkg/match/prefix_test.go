package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerivePrefix(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"data/2024/**/*.parquet", "data/2024/"},
		{"*.json", ""},
		{"logs/app-{a,b}/*.log", "logs/"},
		{"exact/path/file.txt", "exact/path/file.txt"},
		{"data/[0-9]*/*.csv", "data/"},
		{"prefix/", "prefix/"},
		{"data/2024-*", "data/"},
		{`data/file\*.txt`, "data/file*.txt"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, DerivePrefix(tt.pattern))
		})
	}
}

func TestDerivePrefixes(t *testing.T) {
	assert.Equal(t,
		[]string{"data/2024/", "data/2025/"},
		DerivePrefixes([]string{"data/2024/**", "data/2025/**"}))

	// Parent subsumes child.
	assert.Equal(t,
		[]string{"data/"},
		DerivePrefixes([]string{"data/**", "data/2024/**"}))

	// Any unscoped pattern forces an unscoped listing.
	assert.Equal(t,
		[]string{""},
		DerivePrefixes([]string{"**/*.json", "data/2024/**"}))

	assert.Nil(t, DerivePrefixes(nil))
}

func TestIsGlobPattern(t *testing.T) {
	assert.True(t, IsGlobPattern("data/**/*.parquet"))
	assert.True(t, IsGlobPattern("data/file?.csv"))
	assert.False(t, IsGlobPattern(`data/file\*.txt`))
	assert.False(t, IsGlobPattern("path/to/file.txt"))
}
