package cmd

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/JackKelly/list-with-depth/pkg/match"
	"github.com/JackKelly/list-with-depth/pkg/store"
)

// URI parsing errors
var (
	// ErrInvalidURI indicates the URI could not be parsed.
	ErrInvalidURI = errors.New("invalid URI")

	// ErrUnsupportedStore indicates the URI scheme is not supported.
	ErrUnsupportedStore = errors.New("unsupported store")

	// ErrMissingBucket indicates the URI is missing a bucket name.
	ErrMissingBucket = errors.New("missing bucket name")
)

// ObjectURI represents a parsed object store URI.
//
// Example URIs:
//   - s3://bucket/key/path.txt
//   - s3://bucket/prefix/
//   - s3://bucket/prefix/**/*.parquet
//   - file:///var/data/prefix/
type ObjectURI struct {
	// Store is the backing store type ("s3" or "file").
	Store store.StoreType

	// Bucket is the bucket name. Empty for file URIs.
	Bucket string

	// Key is the object key or prefix.
	// May be empty for bucket root.
	Key string

	// Pattern is set if Key contains glob characters.
	// When set, Key is the prefix before the first glob character.
	Pattern string

	// BaseDir is the filesystem root for file URIs.
	BaseDir string
}

// String returns the URI in canonical form.
func (u *ObjectURI) String() string {
	if u.Store == store.StoreFile {
		tail := u.Key
		if u.Pattern != "" {
			tail = u.Pattern
		}
		if tail == "" {
			return "file://" + u.BaseDir
		}
		return fmt.Sprintf("file://%s/%s", strings.TrimSuffix(u.BaseDir, "/"), tail)
	}
	if u.Pattern != "" {
		return fmt.Sprintf("%s://%s/%s", u.Store, u.Bucket, u.Pattern)
	}
	if u.Key != "" {
		return fmt.Sprintf("%s://%s/%s", u.Store, u.Bucket, u.Key)
	}
	return fmt.Sprintf("%s://%s/", u.Store, u.Bucket)
}

// IsPattern returns true if the URI contains glob pattern characters.
func (u *ObjectURI) IsPattern() bool {
	return u.Pattern != ""
}

// IsPrefix returns true if the URI represents a prefix (ends with /).
func (u *ObjectURI) IsPrefix() bool {
	return strings.HasSuffix(u.Key, "/") || u.Key == ""
}

// ParseURI parses an object store URI into its components.
//
// Supported formats:
//   - s3://bucket
//   - s3://bucket/
//   - s3://bucket/key
//   - s3://bucket/prefix/
//   - s3://bucket/prefix/**/*.parquet
//   - file:///abs/dir/prefix/
//
// Returns an error if the URI is malformed or uses an unsupported scheme.
func ParseURI(uri string) (*ObjectURI, error) {
	if uri == "" {
		return nil, fmt.Errorf("%w: empty URI", ErrInvalidURI)
	}

	// Parse manually to handle glob characters like ? which url.Parse treats as query delimiter
	// Expected format: scheme://bucket/key
	schemeEnd := strings.Index(uri, "://")
	if schemeEnd == -1 {
		return nil, fmt.Errorf("%w: missing scheme (expected s3://... or file://...)", ErrInvalidURI)
	}

	scheme := strings.ToLower(uri[:schemeEnd])
	remainder := uri[schemeEnd+3:]

	switch scheme {
	case "s3":
		return parseS3URI(uri, remainder)
	case "file":
		return parseFileURI(uri, remainder)
	default:
		return nil, fmt.Errorf("%w: %s (supported: s3, file)", ErrUnsupportedStore, scheme)
	}
}

func parseS3URI(uri, remainder string) (*ObjectURI, error) {
	if remainder == "" {
		return nil, fmt.Errorf("%w: in %s", ErrMissingBucket, uri)
	}

	// Split bucket from key at first /
	var bucket, key string
	slashIdx := strings.Index(remainder, "/")
	if slashIdx == -1 {
		bucket = remainder
		key = ""
	} else {
		bucket = remainder[:slashIdx]
		key = remainder[slashIdx+1:]
	}

	if bucket == "" {
		return nil, fmt.Errorf("%w: in %s", ErrMissingBucket, uri)
	}

	// Validate bucket name doesn't contain invalid characters
	// (basic validation - S3 bucket names can't contain most special chars)
	if _, err := url.Parse("s3://" + bucket + "/"); err != nil {
		return nil, fmt.Errorf("%w: invalid bucket name %q", ErrInvalidURI, bucket)
	}

	result := &ObjectURI{
		Store:  store.StoreS3,
		Bucket: bucket,
	}
	setKeyAndPattern(result, key)
	return result, nil
}

// parseFileURI splits a file URI into a base directory and a key. The
// base directory is everything up to the last "//"-free path boundary
// that precedes the first glob character; in practice the whole path
// before any glob segment becomes BaseDir and the glob becomes the
// pattern. Plain paths list the directory itself.
func parseFileURI(uri, remainder string) (*ObjectURI, error) {
	if remainder == "" {
		return nil, fmt.Errorf("%w: empty path in %s", ErrInvalidURI, uri)
	}

	// file:///abs/path keeps its leading slash; file://rel/path is
	// accepted as a relative directory.
	p := remainder
	if strings.HasPrefix(p, "/") {
		p = "/" + strings.TrimLeft(p, "/")
	}

	result := &ObjectURI{Store: store.StoreFile}

	if match.IsGlobPattern(p) {
		// The directory to walk is the prefix before the first glob
		// segment; the remainder of the path is the listing key/pattern.
		prefix := match.DerivePrefix(p)
		idx := strings.LastIndex(prefix, "/")
		result.BaseDir = prefix[:idx+1]
		result.Pattern = p[idx+1:]
		result.Key = prefix[idx+1:]
		if result.BaseDir == "" {
			result.BaseDir = "."
		}
		return result, nil
	}

	result.BaseDir = match.DerivePrefix(p)
	return result, nil
}

func setKeyAndPattern(result *ObjectURI, key string) {
	// Use escape-aware glob detection from match package.
	// This correctly handles escaped metacharacters (e.g., \* for literal asterisk).
	if match.IsGlobPattern(key) {
		// Glob pattern: Key is the prefix for listing, Pattern is the full glob
		result.Pattern = key
		result.Key = match.DerivePrefix(key)
	} else {
		// No glob: unescape for the store key (e.g., "file\*.txt" -> "file*.txt")
		result.Key = match.DerivePrefix(key)
	}
}
