// Package depthlist implements depth-bounded recursive listing over a
// one-level listing primitive.
//
// Given a store, a starting prefix, and a depth, Traverse walks the
// prefix tree: objects are collected at every level visited, and the
// common prefixes discovered at the deepest level visited are returned
// as the frontier. Sibling prefixes at each level are listed
// concurrently, so wall-clock cost is driven by tree depth rather than
// by the total number of prefixes.
package depthlist

import (
	"context"
	"errors"
	"sync"

	"github.com/JackKelly/list-with-depth/pkg/store"
)

// ErrNegativeDepth is returned when Traverse is called with depth < 0.
// It is reported synchronously, before any listing call is issued.
var ErrNegativeDepth = errors.New("depth must be >= 0")

// Result is the aggregate of a traversal.
type Result struct {
	// Objects holds every object found at every level visited, in
	// traversal order: objects at the starting prefix first, then each
	// child subtree's objects in the order the child prefixes were
	// enumerated by the store. The order is deterministic for a fixed
	// store but not necessarily sorted.
	Objects []store.ObjectSummary

	// CommonPrefixes is the frontier: the common prefixes discovered at
	// the deepest level actually visited, one level past the requested
	// depth. Prefixes that were recursed into are consumed and do not
	// appear here.
	CommonPrefixes []string
}

// Traverse lists objects under prefix, recursing depth additional
// levels past the initial listing call.
//
// depth 0 is exactly one call to the listing primitive: the result
// carries that level's objects and common prefixes unchanged. For
// depth > 0, every common prefix is traversed concurrently with
// depth-1.
//
// Traverse either fully succeeds or fully fails: the first error from
// any listing call (at any level) is returned as-is and no partial
// aggregate is produced. Outstanding sibling listings are abandoned via
// context cancellation on a best-effort basis.
//
// The lister is invoked concurrently from multiple goroutines and must
// be safe for concurrent use. Listings are not a snapshot: consistency
// across concurrent store mutation follows the store's own model.
func Traverse(ctx context.Context, lister store.LevelLister, prefix string, depth int, opts ...Option) (*Result, error) {
	if depth < 0 {
		return nil, ErrNegativeDepth
	}

	t := &traversal{
		lister:    lister,
		delimiter: store.DefaultDelimiter,
	}
	for _, opt := range opts {
		opt(t)
	}

	return t.walk(ctx, prefix, depth)
}

// level is the fully drained (de-paginated) result of one listing call.
type level struct {
	objects  []store.ObjectSummary
	prefixes []string
}

// walk performs the recursive traversal rooted at prefix.
func (t *traversal) walk(ctx context.Context, prefix string, depth int) (*Result, error) {
	lv, err := t.listLevel(ctx, prefix)
	if err != nil {
		return nil, err
	}

	if depth == 0 {
		// Terminal case: identical to the one-level primitive.
		return &Result{Objects: lv.objects, CommonPrefixes: lv.prefixes}, nil
	}

	children := lv.prefixes
	if t.allow != nil {
		children = filterPrefixes(children, t.allow)
	}
	if len(children) == 0 {
		// Nothing to recurse into. Not an error: the aggregate is the
		// root objects with an empty frontier.
		return &Result{Objects: lv.objects}, nil
	}

	// Fan out across siblings. Each subtree is independent, so the
	// sub-calls run concurrently; results land in a slice indexed by
	// enumeration position so merge order never depends on completion
	// timing. First error wins and cancels the siblings.
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	subs := make([]*Result, len(children))
	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)

	var sem chan struct{}
	if t.maxInFlight > 0 {
		sem = make(chan struct{}, t.maxInFlight)
	}

	for i, child := range children {
		if sem != nil {
			select {
			case sem <- struct{}{}:
			case <-subCtx.Done():
			}
			if subCtx.Err() != nil {
				break
			}
		}

		wg.Add(1)
		go func(i int, child string) {
			defer wg.Done()
			if sem != nil {
				defer func() { <-sem }()
			}

			sub, err := t.walk(subCtx, child, depth-1)
			if err != nil {
				errOnce.Do(func() {
					firstErr = err
					cancel()
				})
				return
			}
			subs[i] = sub
		}(i, child)
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Merge: root objects first, then each child's objects in
	// enumeration order. The frontier is the union of the children's
	// frontiers; prefixes recursed into are consumed. Branch subtrees
	// are disjoint under segment-exact prefix matching, so no
	// deduplication is needed.
	objects := make([]store.ObjectSummary, 0, len(lv.objects))
	objects = append(objects, lv.objects...)
	var frontier []string
	for _, sub := range subs {
		objects = append(objects, sub.Objects...)
		frontier = append(frontier, sub.CommonPrefixes...)
	}

	return &Result{Objects: objects, CommonPrefixes: frontier}, nil
}

// listLevel drains all pages of the one-level listing at prefix.
//
// Common prefixes are deduplicated across pages while preserving the
// order the store first enumerated them.
func (t *traversal) listLevel(ctx context.Context, prefix string) (*level, error) {
	var (
		lv    level
		token string
		seen  map[string]struct{}
	)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if t.limiter != nil {
			if err := t.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		res, err := t.lister.ListLevel(ctx, store.ListLevelOptions{
			Prefix:            prefix,
			Delimiter:         t.delimiter,
			ContinuationToken: token,
			MaxKeys:           t.pageSize,
		})
		if err != nil {
			// Store errors pass through verbatim. Retry policy, if
			// any, belongs to the store.
			return nil, err
		}

		lv.objects = append(lv.objects, res.Objects...)
		for _, cp := range res.CommonPrefixes {
			if seen == nil {
				seen = make(map[string]struct{})
			}
			if _, dup := seen[cp]; dup {
				continue
			}
			seen[cp] = struct{}{}
			lv.prefixes = append(lv.prefixes, cp)
		}

		if !res.IsTruncated || res.ContinuationToken == "" {
			break
		}
		token = res.ContinuationToken
	}

	return &lv, nil
}

func filterPrefixes(prefixes []string, allow func(string) bool) []string {
	kept := prefixes[:0:0]
	for _, p := range prefixes {
		if allow(p) {
			kept = append(kept, p)
		}
	}
	return kept
}
