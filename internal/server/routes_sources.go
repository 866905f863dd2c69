package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/zyvod/zyapi/internal/registry"
)

func (s *Server) handleSourcesAll(w http.ResponseWriter, r *http.Request) {
	sources, err := s.store.All()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, adminResult{Success: false, Message: err.Error()})
		return
	}
	total := len(sources)
	writeJSON(w, http.StatusOK, adminResult{Success: true, Data: sources, Total: &total})
}

func (s *Server) handleSourcesEnabled(w http.ResponseWriter, r *http.Request) {
	sources, err := s.store.Enabled()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, adminResult{Success: false, Message: err.Error()})
		return
	}
	total := len(sources)
	writeJSON(w, http.StatusOK, adminResult{Success: true, Data: sources, Total: &total})
}

func (s *Server) handleSourcesDefault(w http.ResponseWriter, r *http.Request) {
	src, err := s.store.Default()
	if errors.Is(err, registry.ErrNotFound) {
		writeJSON(w, http.StatusOK, adminResult{Success: false, Message: "no default API source configured"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, adminResult{Success: false, Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, adminResult{Success: true, Data: src})
}

func (s *Server) handleSourceByName(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	src, err := s.store.ByName(name)
	if errors.Is(err, registry.ErrNotFound) {
		writeJSON(w, http.StatusOK, adminResult{Success: false, Message: fmt.Sprintf("API source %q not found", name)})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, adminResult{Success: false, Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, adminResult{Success: true, Data: src})
}

type createSourceRequest struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Timeout int    `json:"timeout"`
	Remark  string `json:"remark"`
}

func (s *Server) handleSourceCreate(w http.ResponseWriter, r *http.Request) {
	var req createSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, adminResult{Success: false, Message: "invalid JSON body"})
		return
	}
	if req.Name == "" || req.URL == "" {
		writeJSON(w, http.StatusBadRequest, adminResult{Success: false, Message: "name and url are required"})
		return
	}

	src, err := s.store.Create(req.Name, req.URL, req.Timeout, req.Remark)
	if errors.Is(err, registry.ErrDuplicateName) {
		writeJSON(w, http.StatusOK, adminResult{Success: false, Message: fmt.Sprintf("name %s already exists", req.Name)})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, adminResult{Success: false, Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, adminResult{Success: true, Message: "API source created", Data: src})
}

func (s *Server) handleSourceUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, adminResult{Success: false, Message: "invalid id"})
		return
	}

	var fields registry.UpdateFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeJSON(w, http.StatusBadRequest, adminResult{Success: false, Message: "invalid JSON body"})
		return
	}

	ok, err := s.store.Update(id, fields)
	if errors.Is(err, registry.ErrDuplicateName) {
		writeJSON(w, http.StatusOK, adminResult{Success: false, Message: "name already exists"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, adminResult{Success: false, Message: err.Error()})
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, adminResult{Success: false, Message: "API source not found or no fields supplied"})
		return
	}

	src, err := s.store.ByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, adminResult{Success: false, Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, adminResult{Success: true, Message: "API source updated", Data: src})
}

func (s *Server) handleSourceDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, adminResult{Success: false, Message: "invalid id"})
		return
	}

	ok, err := s.store.Delete(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, adminResult{Success: false, Message: err.Error()})
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, adminResult{Success: false, Message: "API source not found"})
		return
	}
	writeJSON(w, http.StatusOK, adminResult{Success: true, Message: "API source deleted"})
}
