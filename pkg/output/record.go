// Package output provides JSONL output for listing results.
//
// Output is structured as typed record envelopes containing objects,
// frontier prefixes, errors, and summaries. Each line is a
// self-contained JSON object that can be parsed independently.
package output

import (
	"encoding/json"
	"errors"
	"time"
)

// Record type constants define the envelope types for JSONL output.
// These follow the pattern: lwd.<type>.v<version>
const (
	// TypeObject identifies object records.
	TypeObject = "lwd.object.v1"

	// TypePrefix identifies frontier common-prefix records.
	TypePrefix = "lwd.prefix.v1"

	// TypeError identifies error records.
	TypeError = "lwd.error.v1"

	// TypeSummary identifies final summary records.
	TypeSummary = "lwd.summary.v1"
)

// Record is the envelope for all JSONL output.
//
// Each line contains a Record with a type-specific payload in the Data
// field. The type field determines how to interpret the payload.
type Record struct {
	// Type identifies the record type (e.g., "lwd.object.v1").
	Type string `json:"type"`

	// TS is the timestamp when the record was created (RFC3339Nano).
	TS time.Time `json:"ts"`

	// JobID is the correlation ID for this listing job.
	JobID string `json:"job_id"`

	// Store identifies the backing store (e.g., "s3", "file").
	Store string `json:"store"`

	// Data contains the type-specific payload as raw JSON.
	Data json.RawMessage `json:"data"`
}

// ObjectRecord is the data payload for a listed object.
type ObjectRecord struct {
	// Key is the full object key in the store.
	Key string `json:"key"`

	// Size is the object size in bytes.
	Size int64 `json:"size"`

	// ETag is the entity tag, when the store provides one.
	ETag string `json:"etag,omitempty"`

	// LastModified is when the object was last modified.
	LastModified time.Time `json:"last_modified"`
}

// PrefixRecord is the data payload for a frontier common prefix: a
// prefix discovered at the depth limit that was not descended into.
type PrefixRecord struct {
	// Prefix is the common prefix, including the trailing delimiter.
	Prefix string `json:"prefix"`
}

// ErrorRecord is the data payload for errors.
type ErrorRecord struct {
	// Code is a machine-readable error code.
	Code string `json:"code"`

	// Message is a human-readable error description.
	Message string `json:"message"`

	// Prefix is the prefix being listed when the error occurred.
	Prefix string `json:"prefix,omitempty"`
}

// Error codes for ErrorRecord.
const (
	// ErrCodeAccessDenied indicates permission failure.
	ErrCodeAccessDenied = "ACCESS_DENIED"

	// ErrCodeNotFound indicates the object or bucket was not found.
	ErrCodeNotFound = "NOT_FOUND"

	// ErrCodeTimeout indicates an operation timed out.
	ErrCodeTimeout = "TIMEOUT"

	// ErrCodeThrottled indicates rate limiting.
	ErrCodeThrottled = "THROTTLED"

	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal = "INTERNAL"
)

// SummaryRecord is the data payload for the final summary, emitted
// once when a listing completes.
type SummaryRecord struct {
	// Objects is the number of objects emitted.
	Objects int64 `json:"objects"`

	// Prefixes is the number of frontier prefixes emitted.
	Prefixes int64 `json:"prefixes"`

	// BytesTotal is the cumulative size of emitted objects in bytes.
	BytesTotal int64 `json:"bytes_total"`

	// Depth is the depth limit the listing ran with.
	Depth int `json:"depth"`

	// Duration is the total listing duration.
	Duration time.Duration `json:"duration_ns"`

	// DurationHuman is a human-readable duration string.
	DurationHuman string `json:"duration"`
}

// ErrWriterClosed is returned when writing to a closed writer.
var ErrWriterClosed = errors.New("writer is closed")

// WriteError wraps errors that occur during write operations.
type WriteError struct {
	Op  string // Operation that failed (e.g., "marshal_data", "write")
	Err error  // Underlying error
}

func (e *WriteError) Error() string {
	return "output: " + e.Op + ": " + e.Err.Error()
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
