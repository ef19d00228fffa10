package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/DeBrosOfficial/pinner/pkg/httputil"
)

// Routes returns the http.Handler with all routes and middleware configured
func (g *Gateway) Routes() http.Handler {
	r := chi.NewRouter()

	// Order: request id -> real ip -> logging -> recovery -> CORS -> handler
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(g.loggingMiddleware)
	r.Use(g.recoverMiddleware)
	r.Use(g.corsMiddleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/health", g.healthHandler)

	r.Route(g.cfg.APIBasePath, func(r chi.Router) {
		r.Get("/health", g.healthHandler)

		r.Route("/storage", func(r chi.Router) {
			r.Post("/upload", g.storage.UploadHandler)
			r.Get("/retrieve/{cid}", g.storage.RetrieveHandler)
			r.Get("/status/{cid}", g.storage.StatusHandler)
		})
	})

	// browser UI
	r.Get("/config.js", g.configJSHandler)
	r.Get("/*", g.staticHandler())

	return r
}
