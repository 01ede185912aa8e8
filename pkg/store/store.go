// Package store defines the listing primitive that depth-bounded
// traversal is built on.
//
// A store exposes exactly one level of the key hierarchy per call:
// objects directly under a prefix, plus the immediate child prefixes
// (common prefixes). Implementations map to provider-native delimiter
// listing (e.g. S3 ListObjectsV2 with Delimiter) and must be safe for
// concurrent use, since the traversal fans out across sibling prefixes.
package store

import (
	"context"
	"time"
)

// DefaultDelimiter is the path segment separator used when callers do
// not specify one.
const DefaultDelimiter = "/"

// LevelLister lists exactly one path-segment level of a store.
//
// ListLevel returns:
//   - Objects directly under Prefix (no delimiter in the remainder)
//   - CommonPrefixes (immediate child prefixes, directory-like)
//
// Results may be paginated; callers follow ContinuationToken until
// IsTruncated is false. The primitive never recurses on its own.
type LevelLister interface {
	ListLevel(ctx context.Context, opts ListLevelOptions) (*ListLevelResult, error)
}

// ListLevelOptions configures a one-level listing call.
type ListLevelOptions struct {
	// Prefix restricts results to keys starting with this value.
	// Empty string lists the store root.
	Prefix string

	// Delimiter groups keys into common prefixes (e.g. "/").
	Delimiter string

	// ContinuationToken resumes listing from a previous result page.
	ContinuationToken string

	// MaxKeys limits the number of keys returned per page.
	// Zero uses the implementation default.
	MaxKeys int
}

// ListLevelResult is one page of a one-level listing.
type ListLevelResult struct {
	// Objects are object summaries directly under the requested Prefix.
	Objects []ObjectSummary

	// CommonPrefixes are the immediate child prefixes.
	CommonPrefixes []string

	// ContinuationToken retrieves the next page when IsTruncated.
	ContinuationToken string

	// IsTruncated indicates whether more results are available.
	IsTruncated bool
}

// ObjectSummary is the metadata snapshot a listing returns for one
// object. It is immutable from the traversal's perspective; the
// traversal passes summaries through without interpreting them.
type ObjectSummary struct {
	// Key is the full object key (path) in the bucket.
	Key string

	// Size is the object size in bytes.
	Size int64

	// ETag is the entity tag, typically an MD5 hash of the object.
	ETag string

	// LastModified is when the object was last modified.
	LastModified time.Time
}

// StoreType identifies a store implementation.
type StoreType string

const (
	// StoreS3 is AWS S3 or S3-compatible storage.
	StoreS3 StoreType = "s3"

	// StoreFile is a local filesystem store.
	StoreFile StoreType = "file"

	// StoreMemory is the in-memory store used in tests and examples.
	StoreMemory StoreType = "memory"
)

// String returns the string representation of the store type.
func (s StoreType) String() string {
	return string(s)
}
