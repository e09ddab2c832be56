package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)
	router.Use(middleware.Compress(5, "application/json"))

	// resource ids contain slashes ("project/42/photo/7"), so they ride the
	// chi wildcard instead of a single url param
	router.Route("/api/annotations", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/state/*", h.state)
		r.Get("/full/*", h.full)
		r.Put("/*", h.save)
		r.Delete("/*", h.remove)
	})

	return router
}
