// Package memstore provides an in-memory LevelLister for tests,
// examples, and local experiments.
//
// Keys are held sorted, so listings are deterministic. Pagination and
// per-prefix failure injection are supported to exercise traversal
// behavior that a real store only shows under load or outage.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/JackKelly/list-with-depth/pkg/store"
)

// Store is an in-memory object store with delimiter listing semantics.
//
// Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	objects map[string]store.ObjectSummary
	keys    []string // sorted

	pageSize int
	fail     map[string]error

	created time.Time
}

const defaultPageSize = 1000

// New returns an empty store.
func New() *Store {
	return &Store{
		objects:  make(map[string]store.ObjectSummary),
		fail:     make(map[string]error),
		pageSize: defaultPageSize,
		created:  time.Now().UTC(),
	}
}

// SetPageSize overrides the default listing page size.
// Useful for exercising pagination with small fixtures.
func (s *Store) SetPageSize(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > 0 {
		s.pageSize = n
	}
}

// Put inserts or replaces an object.
func (s *Store) Put(key string, size int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.objects[key]; !exists {
		idx := sort.SearchStrings(s.keys, key)
		s.keys = append(s.keys, "")
		copy(s.keys[idx+1:], s.keys[idx:])
		s.keys[idx] = key
	}
	s.objects[key] = store.ObjectSummary{
		Key:          key,
		Size:         size,
		LastModified: s.created,
	}
}

// FailPrefix makes ListLevel return err for listings at exactly the
// given prefix. Pass nil to clear.
func (s *Store) FailPrefix(prefix string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.fail, prefix)
		return
	}
	s.fail[prefix] = err
}

// ListLevel implements store.LevelLister with S3-style delimiter
// semantics: objects directly under the prefix, plus common prefixes
// (including their trailing delimiter) for keys one segment deeper.
func (s *Store) ListLevel(ctx context.Context, opts store.ListLevelOptions) (*store.ListLevelResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if err, ok := s.fail[opts.Prefix]; ok {
		return nil, &store.StoreError{
			Op:    "ListLevel",
			Store: store.StoreMemory,
			Key:   opts.Prefix,
			Err:   err,
		}
	}

	delimiter := opts.Delimiter
	if delimiter == "" {
		delimiter = store.DefaultDelimiter
	}
	maxKeys := opts.MaxKeys
	if maxKeys <= 0 {
		maxKeys = s.pageSize
	}

	// Keys are sorted, so a continuation token is just the last key the
	// previous page consumed; resume strictly after it.
	start := sort.SearchStrings(s.keys, opts.Prefix)
	if opts.ContinuationToken != "" {
		idx := sort.SearchStrings(s.keys, opts.ContinuationToken)
		for idx < len(s.keys) && s.keys[idx] <= opts.ContinuationToken {
			idx++
		}
		if idx > start {
			start = idx
		}
	}

	res := &store.ListLevelResult{}
	seenPrefix := map[string]struct{}{}
	emitted := 0
	var lastKey string

	for i := start; i < len(s.keys); i++ {
		key := s.keys[i]
		if !strings.HasPrefix(key, opts.Prefix) {
			break
		}
		if emitted >= maxKeys {
			res.IsTruncated = true
			res.ContinuationToken = lastKey
			break
		}

		rest := key[len(opts.Prefix):]
		if idx := strings.Index(rest, delimiter); idx >= 0 {
			cp := opts.Prefix + rest[:idx+len(delimiter)]
			if _, dup := seenPrefix[cp]; !dup {
				seenPrefix[cp] = struct{}{}
				res.CommonPrefixes = append(res.CommonPrefixes, cp)
				emitted++
			}
		} else {
			res.Objects = append(res.Objects, s.objects[key])
			emitted++
		}
		lastKey = key
	}

	return res, nil
}

// Len returns the number of objects in the store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}

var _ store.LevelLister = (*Store)(nil)
