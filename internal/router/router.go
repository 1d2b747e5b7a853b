package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/itchan-dev/postdesk/internal/config"
	"github.com/itchan-dev/postdesk/internal/handler"
	mw "github.com/itchan-dev/postdesk/internal/middleware"
	"github.com/itchan-dev/postdesk/internal/middleware/metrics"
)

// apiCSP is the policy for JSON and probe responses, which load nothing.
const apiCSP = "default-src 'none'; frame-ancestors 'none'"

// New wires every route to h.
func New(h *handler.Handler, cfg config.Http) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(middleware.Compress(5))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	// JSON API, readable from the configured origins
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.SecurityHeadersWithCSP(cfg.SecureCookies, apiCSP))
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
		r.Get("/posts", h.ListPosts)
	})

	// HTML pages and form posts
	r.Group(func(r chi.Router) {
		r.Use(mw.SecurityHeadersWithCSP(cfg.SecureCookies, mw.PageCSP))
		r.Use(mw.GenerateCSRFToken(mw.CSRFConfig{SecureCookies: cfg.SecureCookies}))
		r.Use(mw.ValidateCSRFToken())

		r.Get("/", h.Index)
		r.Get("/feed", h.Feed)
		r.Get("/posts/list", h.PostList)

		r.Post("/posts", h.CreatePost)
		r.Post("/posts/{id}/edit", h.EditPost)
		r.Post("/posts/{id}/delete", h.DeletePost)
		r.Post("/edit/save", h.SaveEdit)
		r.Post("/edit/cancel", h.CancelEdit)
		r.Post("/theme", h.ToggleTheme)
	})

	return r
}
