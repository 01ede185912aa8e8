package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JackKelly/list-with-depth/pkg/store"
	"github.com/JackKelly/list-with-depth/pkg/store/memstore"
)

func TestListHandler_DepthZero(t *testing.T) {
	ms := memstore.New()
	ms.Put("a.txt", 10)
	ms.Put("foo/b.txt", 20)

	h := NewListHandler(ms, 4)

	req := httptest.NewRequest(http.MethodGet, "/v1/list", nil)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body ListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))

	require.Len(t, body.Objects, 1)
	assert.Equal(t, "a.txt", body.Objects[0].Key)
	assert.Equal(t, int64(10), body.Objects[0].Size)
	assert.Equal(t, []string{"foo/"}, body.CommonPrefixes)
	assert.Equal(t, 0, body.Depth)
}

func TestListHandler_PrefixParam(t *testing.T) {
	ms := memstore.New()
	ms.Put("foo/b.txt", 20)
	ms.Put("foo/bar/c.txt", 30)

	h := NewListHandler(ms, 4)

	req := httptest.NewRequest(http.MethodGet, "/v1/list?prefix=foo/&depth=1", nil)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body ListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))

	assert.Equal(t, "foo/", body.Prefix)
	require.Len(t, body.Objects, 2)
	assert.Equal(t, "foo/b.txt", body.Objects[0].Key)
	assert.Equal(t, "foo/bar/c.txt", body.Objects[1].Key)
	assert.Empty(t, body.CommonPrefixes)
	assert.NotNil(t, body.CommonPrefixes)
}

func TestListHandler_StoreErrorMapped(t *testing.T) {
	ms := memstore.New()
	ms.Put("foo/b.txt", 20)
	ms.FailPrefix("", store.ErrAccessDenied)

	h := NewListHandler(ms, 4)

	req := httptest.NewRequest(http.MethodGet, "/v1/list", nil)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListHandler_EmptyStore(t *testing.T) {
	h := NewListHandler(memstore.New(), 4)

	req := httptest.NewRequest(http.MethodGet, "/v1/list?depth=3", nil)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body ListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Empty(t, body.Objects)
	assert.Empty(t, body.CommonPrefixes)
}
