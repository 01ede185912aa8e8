package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JackKelly/list-with-depth/pkg/store"
)

func newFixture() *Store {
	s := New()
	for _, key := range []string{"a.txt", "foo/b.txt", "foo/bar/c.txt", "foo/bar/d.txt"} {
		s.Put(key, 3)
	}
	return s
}

func TestListLevel_Root(t *testing.T) {
	s := newFixture()

	res, err := s.ListLevel(context.Background(), store.ListLevelOptions{})
	require.NoError(t, err)

	require.Len(t, res.Objects, 1)
	assert.Equal(t, "a.txt", res.Objects[0].Key)
	assert.Equal(t, []string{"foo/"}, res.CommonPrefixes)
	assert.False(t, res.IsTruncated)
}

func TestListLevel_SubPrefix(t *testing.T) {
	s := newFixture()

	res, err := s.ListLevel(context.Background(), store.ListLevelOptions{Prefix: "foo/"})
	require.NoError(t, err)

	require.Len(t, res.Objects, 1)
	assert.Equal(t, "foo/b.txt", res.Objects[0].Key)
	assert.Equal(t, []string{"foo/bar/"}, res.CommonPrefixes)
}

func TestListLevel_SegmentGrouping(t *testing.T) {
	// foo/bar and foo/bar_baz are distinct groupings: the delimiter
	// split happens per segment, not per string prefix.
	s := New()
	s.Put("foo/bar/x.txt", 1)
	s.Put("foo/bar_baz/x.txt", 1)

	res, err := s.ListLevel(context.Background(), store.ListLevelOptions{Prefix: "foo/"})
	require.NoError(t, err)

	assert.Empty(t, res.Objects)
	assert.Equal(t, []string{"foo/bar/", "foo/bar_baz/"}, res.CommonPrefixes)
}

func TestListLevel_Pagination(t *testing.T) {
	s := New()
	s.Put("a.txt", 1)
	s.Put("b.txt", 1)
	s.Put("c.txt", 1)

	var got []string
	var token string
	pages := 0
	for {
		res, err := s.ListLevel(context.Background(), store.ListLevelOptions{
			MaxKeys:           1,
			ContinuationToken: token,
		})
		require.NoError(t, err)
		pages++
		for _, obj := range res.Objects {
			got = append(got, obj.Key)
		}
		if !res.IsTruncated {
			break
		}
		token = res.ContinuationToken
	}

	assert.Equal(t, []string{"a.txt", "b.txt", "c.txt"}, got)
	assert.Equal(t, 3, pages)
}

func TestListLevel_FailPrefix(t *testing.T) {
	s := newFixture()
	s.FailPrefix("foo/", store.ErrThrottled)

	_, err := s.ListLevel(context.Background(), store.ListLevelOptions{Prefix: "foo/"})
	require.Error(t, err)
	assert.True(t, store.IsThrottled(err))

	// Other prefixes are unaffected.
	_, err = s.ListLevel(context.Background(), store.ListLevelOptions{})
	require.NoError(t, err)

	// Clearing restores the prefix.
	s.FailPrefix("foo/", nil)
	_, err = s.ListLevel(context.Background(), store.ListLevelOptions{Prefix: "foo/"})
	require.NoError(t, err)
}

func TestListLevel_EmptyStore(t *testing.T) {
	s := New()

	res, err := s.ListLevel(context.Background(), store.ListLevelOptions{})
	require.NoError(t, err)
	assert.Empty(t, res.Objects)
	assert.Empty(t, res.CommonPrefixes)
}

func TestPut_Replace(t *testing.T) {
	s := New()
	s.Put("a.txt", 1)
	s.Put("a.txt", 2)

	assert.Equal(t, 1, s.Len())

	res, err := s.ListLevel(context.Background(), store.ListLevelOptions{})
	require.NoError(t, err)
	require.Len(t, res.Objects, 1)
	assert.Equal(t, int64(2), res.Objects[0].Size)
}
