// Package manifest provides loading and validation of listing job manifests.
//
// A job manifest is a YAML or JSON file that configures all aspects of a
// listing job: store connection, traversal behavior, pattern matching, and
// output.
//
// Manifests are validated against a JSON Schema to ensure correctness before
// execution. The schema enforces strict typing and disallows unknown
// properties.
//
// Example manifest (YAML):
//
//	version: "1.0"
//	connection:
//	  store: s3
//	  bucket: my-data-bucket
//	  region: us-east-1
//	traversal:
//	  prefix: "data/"
//	  depth: 2
//	  parallel: 8
//	match:
//	  includes:
//	    - "data/2024/**/*.parquet"
//	output:
//	  destination: stdout
package manifest

import "github.com/JackKelly/list-with-depth/pkg/match"

// Manifest represents a validated job manifest.
//
// Required fields are Version and Connection. Traversal, Match, and Output
// are optional with sensible defaults.
type Manifest struct {
	// Schema is an optional JSON Schema reference for editor support.
	Schema string `json:"$schema,omitempty" yaml:"$schema,omitempty"`

	// Version is the manifest schema version. Must be "1.0".
	Version string `json:"version" yaml:"version"`

	// Connection configures the backing store.
	Connection ConnectionConfig `json:"connection" yaml:"connection"`

	// Traversal configures the depth-bounded listing (optional).
	Traversal TraversalConfig `json:"traversal,omitempty" yaml:"traversal,omitempty"`

	// Match configures object filtering by glob patterns (optional).
	Match MatchConfig `json:"match,omitempty" yaml:"match,omitempty"`

	// Output configures the output destination (optional).
	Output OutputConfig `json:"output,omitempty" yaml:"output,omitempty"`
}

// ConnectionConfig configures the backing store connection.
type ConnectionConfig struct {
	// Store is the store type: "s3" or "file".
	Store string `json:"store" yaml:"store"`

	// Bucket is the bucket name. Required for s3.
	Bucket string `json:"bucket,omitempty" yaml:"bucket,omitempty"`

	// Region is the AWS region (e.g., "us-east-1"). Optional.
	Region string `json:"region,omitempty" yaml:"region,omitempty"`

	// Endpoint is a custom endpoint URL for S3-compatible storage. Optional.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`

	// Profile is the AWS credential profile name. Optional.
	Profile string `json:"profile,omitempty" yaml:"profile,omitempty"`

	// ForcePathStyle forces path-style S3 URLs. Optional.
	ForcePathStyle bool `json:"force_path_style,omitempty" yaml:"force_path_style,omitempty"`

	// BaseDir is the root directory. Required for file.
	BaseDir string `json:"base_dir,omitempty" yaml:"base_dir,omitempty"`
}

// TraversalConfig configures the depth-bounded listing.
type TraversalConfig struct {
	// Prefix is the starting prefix. Default: "" (bucket root).
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`

	// Depth is the recursion depth. 0 lists one level only.
	Depth int `json:"depth,omitempty" yaml:"depth,omitempty"`

	// Delimiter separates key segments. Default: "/".
	Delimiter string `json:"delimiter,omitempty" yaml:"delimiter,omitempty"`

	// Parallel bounds concurrent list calls per level. Range: 1-64.
	// Default: 4.
	Parallel int `json:"parallel,omitempty" yaml:"parallel,omitempty"`

	// RateLimit is the maximum requests per second (0 = unlimited).
	RateLimit float64 `json:"rate_limit,omitempty" yaml:"rate_limit,omitempty"`

	// PageSize is the per-request page size (0 = store default).
	PageSize int `json:"page_size,omitempty" yaml:"page_size,omitempty"`
}

// MatchConfig configures object filtering by glob patterns and metadata
// filters.
type MatchConfig struct {
	// Includes is a list of glob patterns for objects to include.
	// Empty means include everything.
	Includes []string `json:"includes,omitempty" yaml:"includes,omitempty"`

	// Excludes is a list of glob patterns for objects to exclude. Optional.
	Excludes []string `json:"excludes,omitempty" yaml:"excludes,omitempty"`

	// IncludeHidden includes hidden files (starting with .). Default: false.
	IncludeHidden bool `json:"include_hidden,omitempty" yaml:"include_hidden,omitempty"`

	// Filters specifies additional metadata-based filters. Optional.
	// Filters are applied after glob pattern matching with AND semantics.
	Filters *match.FilterConfig `json:"filters,omitempty" yaml:"filters,omitempty"`
}

// OutputConfig configures the output destination.
type OutputConfig struct {
	// Destination is the output target.
	// Values: "stdout" or "file:/path/to/output.jsonl"
	// Default: "stdout".
	Destination string `json:"destination,omitempty" yaml:"destination,omitempty"`
}

// Default values for optional configuration fields.
const (
	// DefaultVersion is the current manifest schema version.
	DefaultVersion = "1.0"

	// DefaultParallel is the default per-level concurrency.
	DefaultParallel = 4

	// DefaultDestination is the default output destination.
	DefaultDestination = "stdout"
)

// ApplyDefaults fills in default values for optional fields.
//
// This should be called after loading and validating the manifest so
// callers never see zero values for fields with defaults.
func (m *Manifest) ApplyDefaults() {
	if m.Traversal.Delimiter == "" {
		m.Traversal.Delimiter = "/"
	}
	if m.Traversal.Parallel == 0 {
		m.Traversal.Parallel = DefaultParallel
	}
	// Depth: 0 is a valid value (one level), so no default needed.

	if m.Output.Destination == "" {
		m.Output.Destination = DefaultDestination
	}
}
