// Package server exposes the gateway over REST: the video endpoints that
// proxy upstream catalogs, and the admin endpoints that manage the source
// registry.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/zyvod/zyapi/internal/config"
	"github.com/zyvod/zyapi/internal/gateway"
	"github.com/zyvod/zyapi/internal/registry"
)

// Server wires the registry and dispatcher into HTTP handlers.
type Server struct {
	cfg        *config.Config
	store      *registry.Store
	dispatcher *gateway.Dispatcher
}

// New builds a Server over the given collaborators.
func New(cfg *config.Config, store *registry.Store, dispatcher *gateway.Dispatcher) *Server {
	return &Server{cfg: cfg, store: store, dispatcher: dispatcher}
}

// Router assembles the full middleware chain and route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{s.cfg.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	r.Use(requestLogger)
	r.Use(newIPLimiter(s.cfg.RateLimitMax, s.cfg.RateLimitDuration).middleware)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)

	r.Get("/list", s.handleList)
	r.Get("/hot", s.handleHot)
	r.Get("/search", s.handleSearch)
	r.Get("/detail/{id}", s.handleDetail)
	r.Get("/types", s.handleTypes)

	r.Route("/sources", func(r chi.Router) {
		r.Get("/", s.handleSourcesAll)
		r.Get("/enabled", s.handleSourcesEnabled)
		r.Get("/default", s.handleSourcesDefault)
		r.Get("/{name}", s.handleSourceByName)

		r.Group(func(r chi.Router) {
			r.Use(requireAdmin(s.cfg.AdminKey))
			r.Post("/", s.handleSourceCreate)
			r.Put("/{id}", s.handleSourceUpdate)
			r.Delete("/{id}", s.handleSourceDelete)
		})
	})

	return r
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name": "zyapi",
		"routes": []string{
			"/list", "/hot", "/search", "/detail/{id}", "/types",
			"/sources", "/sources/enabled", "/sources/default", "/sources/{name}",
			"/healthz", "/metrics",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(gateway.FormatMetrics()))
}
