package server

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/zyvod/zyapi/internal/gateway"
)

// queryInt reads an integer query parameter, falling back on absence or
// garbage.
func queryInt(q url.Values, key string, fallback int) int {
	raw := q.Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func (s *Server) clampLimit(q url.Values) int {
	limit := queryInt(q, "limit", s.cfg.DefaultPageSize)
	if limit > s.cfg.MaxPageSize {
		limit = s.cfg.MaxPageSize
	}
	return limit
}

// requestCtx bounds dispatch plus normalization under one deadline so a
// slow tail cannot outlive the configured timeout.
func (s *Server) requestCtx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.cfg.UpstreamTimeout)
}

type listPayload struct {
	Page      int                 `json:"page"`
	PageCount int                 `json:"pageCount"`
	Total     int                 `json:"total"`
	TypeName  string              `json:"typeName"`
	List      []gateway.VideoItem `json:"list"`
}

type searchPayload struct {
	Page      int                 `json:"page"`
	PageCount int                 `json:"pageCount"`
	Total     int                 `json:"total"`
	List      []gateway.VideoItem `json:"list"`
}

type typesPayload struct {
	Total int                `json:"total"`
	Types []gateway.TypeItem `json:"types"`
}

// handleList serves GET /list: a paged catalog listing. The per-item
// typeName is dropped in favor of a single top-level one.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	gateway.IncrListRequests()
	q := r.URL.Query()
	page := queryInt(q, "page", 1)
	limit := s.clampLimit(q)

	ctx, cancel := s.requestCtx(r)
	defer cancel()

	var data gateway.ListResponse
	err := s.dispatcher.Fetch(ctx, gateway.ListParams(page, q.Get("typeId")), q.Get("source"), &data)
	if err != nil {
		writeAPIError(w, gateway.Classify(err))
		return
	}

	typeName := ""
	if len(data.List) > 0 {
		typeName = data.List[0].TypeName
	}
	writeJSON(w, http.StatusOK, listPayload{
		Page:      data.Page,
		PageCount: data.PageCount,
		Total:     data.Total,
		TypeName:  typeName,
		List:      gateway.TransformVideoListNoType(data.List, limit),
	})
}

// handleHot serves GET /hot: the 24-hour hot listing as a bare array.
func (s *Server) handleHot(w http.ResponseWriter, r *http.Request) {
	gateway.IncrHotRequests()
	q := r.URL.Query()
	page := queryInt(q, "page", 1)
	typeID := queryInt(q, "typeId", gateway.HotTypeID)
	limit := s.clampLimit(q)

	ctx, cancel := s.requestCtx(r)
	defer cancel()

	var data gateway.ListResponse
	err := s.dispatcher.Fetch(ctx, gateway.HotParams(page, typeID), q.Get("source"), &data)
	if err != nil {
		writeAPIError(w, gateway.Classify(err))
		return
	}
	writeJSON(w, http.StatusOK, gateway.TransformVideoList(data.List, limit))
}

// handleSearch serves GET /search. A missing keyword is rejected before
// any upstream contact.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	gateway.IncrSearchRequests()
	q := r.URL.Query()
	wd := q.Get("wd")
	if wd == "" {
		writeAPIError(w, gateway.NewAPIError(gateway.CodeMissingKeyword, ""))
		return
	}
	page := queryInt(q, "page", 1)
	limit := s.clampLimit(q)

	ctx, cancel := s.requestCtx(r)
	defer cancel()

	var data gateway.ListResponse
	err := s.dispatcher.Fetch(ctx, gateway.SearchParams(wd, page), q.Get("source"), &data)
	if err != nil {
		writeAPIError(w, gateway.Classify(err))
		return
	}
	writeJSON(w, http.StatusOK, searchPayload{
		Page:      data.Page,
		PageCount: data.PageCount,
		Total:     data.Total,
		List:      gateway.TransformVideoList(data.List, limit),
	})
}

// handleDetail serves GET /detail/{id}. An id unknown upstream is a 404.
func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	gateway.IncrDetailRequests()
	id := chi.URLParam(r, "id")

	ctx, cancel := s.requestCtx(r)
	defer cancel()

	var data gateway.DetailResponse
	err := s.dispatcher.Fetch(ctx, gateway.DetailParams(id), r.URL.Query().Get("source"), &data)
	if err != nil {
		writeAPIError(w, gateway.Classify(err))
		return
	}
	detail, err := gateway.BuildDetail(data.List)
	if err != nil {
		writeAPIError(w, gateway.Classify(err))
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// handleTypes serves GET /types: the two-level category tree.
func (s *Server) handleTypes(w http.ResponseWriter, r *http.Request) {
	gateway.IncrTypesRequests()

	ctx, cancel := s.requestCtx(r)
	defer cancel()

	var data gateway.TypesResponse
	err := s.dispatcher.Fetch(ctx, gateway.TypeParams(), r.URL.Query().Get("source"), &data)
	if err != nil {
		writeAPIError(w, gateway.Classify(err))
		return
	}
	writeJSON(w, http.StatusOK, typesPayload{
		Total: len(data.Class),
		Types: gateway.TransformCategories(data.Class),
	})
}
