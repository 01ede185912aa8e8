package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/JackKelly/list-with-depth/internal/errors"
	"github.com/JackKelly/list-with-depth/pkg/depthlist"
	"github.com/JackKelly/list-with-depth/pkg/store"
)

// ListResponse is the JSON body returned by /v1/list.
type ListResponse struct {
	Prefix         string       `json:"prefix"`
	Depth          int          `json:"depth"`
	Objects        []ListObject `json:"objects"`
	CommonPrefixes []string     `json:"common_prefixes"`
	DurationMS     int64        `json:"duration_ms"`
}

// ListObject is one object entry in a ListResponse.
type ListObject struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	ETag         string    `json:"etag,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// ListHandler serves depth-bounded listings over a configured store.
type ListHandler struct {
	lister   store.LevelLister
	parallel int
}

// NewListHandler creates a list handler backed by the given lister.
// Parallel bounds per-level concurrency for each request.
func NewListHandler(lister store.LevelLister, parallel int) *ListHandler {
	return &ListHandler{lister: lister, parallel: parallel}
}

// ServeHTTP handles GET /v1/list?prefix=&depth=.
//
// Depth defaults to 0 (one level). Negative depth is rejected before
// any store call.
func (h *ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.lister == nil {
		apperrors.WriteJSONError(w, http.StatusServiceUnavailable,
			apperrors.CodeServiceUnavailable,
			"no store configured",
			r.Header.Get("X-Request-ID"), nil)
		return
	}

	prefix := r.URL.Query().Get("prefix")

	depth := 0
	if raw := r.URL.Query().Get("depth"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			apperrors.WriteJSONError(w, http.StatusBadRequest,
				apperrors.CodeInvalidArgument,
				"depth must be an integer",
				r.Header.Get("X-Request-ID"), nil)
			return
		}
		depth = parsed
	}

	opts := []depthlist.Option{}
	if h.parallel > 0 {
		opts = append(opts, depthlist.WithMaxInFlight(h.parallel))
	}

	start := time.Now()
	result, err := depthlist.Traverse(r.Context(), h.lister, prefix, depth, opts...)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	resp := ListResponse{
		Prefix:         prefix,
		Depth:          depth,
		Objects:        make([]ListObject, 0, len(result.Objects)),
		CommonPrefixes: result.CommonPrefixes,
		DurationMS:     time.Since(start).Milliseconds(),
	}
	if resp.CommonPrefixes == nil {
		resp.CommonPrefixes = []string{}
	}
	for _, obj := range result.Objects {
		resp.Objects = append(resp.Objects, ListObject{
			Key:          obj.Key,
			Size:         obj.Size,
			ETag:         obj.ETag,
			LastModified: obj.LastModified,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}
