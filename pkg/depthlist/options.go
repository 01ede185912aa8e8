package depthlist

import (
	"golang.org/x/time/rate"

	"github.com/JackKelly/list-with-depth/pkg/store"
)

// traversal carries the configuration for one Traverse call.
type traversal struct {
	lister      store.LevelLister
	delimiter   string
	maxInFlight int
	pageSize    int
	limiter     *rate.Limiter
	allow       func(prefix string) bool
}

// Option configures a Traverse call.
type Option func(*traversal)

// WithDelimiter sets the path segment delimiter passed to the listing
// primitive. Default: "/".
func WithDelimiter(delimiter string) Option {
	return func(t *traversal) {
		if delimiter != "" {
			t.delimiter = delimiter
		}
	}
}

// WithMaxInFlight bounds the number of sibling listings issued
// concurrently at each level of the traversal. Zero (the default)
// leaves fan-out unbounded, which is the minimal contract; trees with
// hundreds of siblings at one level can otherwise saturate connection
// pools or per-host limits in the underlying transport.
//
// The bound is per level, not global: a parent listing never waits on
// its own children's slots, so deep trees cannot deadlock against the
// limit.
func WithMaxInFlight(n int) Option {
	return func(t *traversal) {
		if n > 0 {
			t.maxInFlight = n
		}
	}
}

// WithRateLimit caps listing requests per second across the whole
// traversal, including pagination. Zero (the default) means unlimited.
func WithRateLimit(rps float64) Option {
	return func(t *traversal) {
		if rps > 0 {
			t.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithPageSize sets the MaxKeys forwarded to each listing call.
// Zero uses the store's default page size.
func WithPageSize(n int) Option {
	return func(t *traversal) {
		if n > 0 {
			t.pageSize = n
		}
	}
}

// WithPrefixFilter restricts recursion to child prefixes the allow
// function accepts. Filtered prefixes are not listed and contribute
// nothing to the result. The starting prefix is never filtered.
func WithPrefixFilter(allow func(prefix string) bool) Option {
	return func(t *traversal) {
		t.allow = allow
	}
}
