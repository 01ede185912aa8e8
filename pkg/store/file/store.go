// Package file implements the one-level listing primitive over a local
// filesystem directory.
//
// Keys are slash-separated paths relative to the base directory. A
// directory entry is a common prefix; a regular file is an object. The
// package exists for local development and as a second real lister
// behind the traversal; it is not a production object store.
package file

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/JackKelly/list-with-depth/pkg/store"
)

// Store lists one directory level per call.
type Store struct {
	baseDir string
}

var _ store.LevelLister = (*Store)(nil)

// Config configures a filesystem store.
type Config struct {
	// BaseDir is the directory treated as the store root (required).
	BaseDir string
}

// Validate checks that required configuration is present.
func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseDir) == "" {
		return fmt.Errorf("base dir is required")
	}
	return nil
}

// New creates a filesystem store rooted at cfg.BaseDir.
func New(cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Store{baseDir: filepath.Clean(cfg.BaseDir)}, nil
}

// Close releases any resources held by the store.
func (s *Store) Close() error { return nil }

// ListLevel lists files and subdirectories one level under the prefix.
//
// Only the "/" delimiter is supported; filesystem hierarchy is the
// delimiter. The prefix may end mid-segment ("logs/2024-"), matching
// entries by name prefix like an object store would.
func (s *Store) ListLevel(ctx context.Context, opts store.ListLevelOptions) (*store.ListLevelResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.Delimiter != "" && opts.Delimiter != store.DefaultDelimiter {
		return nil, s.wrapError("ListLevel", opts.Prefix, fmt.Errorf("unsupported delimiter %q", opts.Delimiter))
	}

	// Split the prefix into the directory to read and the partial
	// segment to filter entry names on.
	dirPrefix := ""
	namePrefix := opts.Prefix
	if idx := strings.LastIndex(opts.Prefix, "/"); idx >= 0 {
		dirPrefix = opts.Prefix[:idx+1]
		namePrefix = opts.Prefix[idx+1:]
	}

	dir, err := s.fullPath(dirPrefix)
	if err != nil {
		return nil, s.wrapError("ListLevel", opts.Prefix, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			// An absent directory is an empty listing, matching object
			// stores where prefixes have no independent existence.
			return &store.ListLevelResult{}, nil
		}
		return nil, s.wrapError("ListLevel", opts.Prefix, err)
	}

	maxKeys := opts.MaxKeys
	if maxKeys <= 0 {
		maxKeys = 1000
	}

	// ReadDir returns entries sorted by name; the continuation token is
	// the name of the last entry the previous page consumed.
	afterName := ""
	if opts.ContinuationToken != "" {
		afterName = strings.TrimSuffix(strings.TrimPrefix(opts.ContinuationToken, dirPrefix), "/")
	}

	res := &store.ListLevelResult{}
	emitted := 0
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, namePrefix) {
			continue
		}
		if afterName != "" && name <= afterName {
			continue
		}
		if emitted >= maxKeys {
			res.IsTruncated = true
			break
		}

		if entry.IsDir() {
			res.CommonPrefixes = append(res.CommonPrefixes, dirPrefix+name+"/")
			res.ContinuationToken = dirPrefix + name + "/"
		} else {
			info, err := entry.Info()
			if err != nil {
				continue
			}
			res.Objects = append(res.Objects, store.ObjectSummary{
				Key:          dirPrefix + name,
				Size:         info.Size(),
				LastModified: info.ModTime(),
			})
			res.ContinuationToken = dirPrefix + name
		}
		emitted++
	}

	if !res.IsTruncated {
		res.ContinuationToken = ""
	}

	return res, nil
}

// fullPath resolves a key or prefix under baseDir, rejecting traversal
// outside the base.
func (s *Store) fullPath(key string) (string, error) {
	key = strings.TrimSpace(key)
	key = strings.TrimPrefix(key, "/")
	if key == "" {
		return s.baseDir, nil
	}
	clean := path.Clean(key)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("invalid key path")
	}
	return filepath.Join(s.baseDir, filepath.FromSlash(clean)), nil
}

// wrapError normalizes common filesystem errors to store sentinels.
func (s *Store) wrapError(op, key string, err error) error {
	wrapped := &store.StoreError{Op: op, Store: store.StoreFile, Key: key, Err: err}
	if os.IsNotExist(err) {
		wrapped.Err = store.ErrNotFound
	}
	if os.IsPermission(err) {
		wrapped.Err = store.ErrAccessDenied
	}
	return wrapped
}
