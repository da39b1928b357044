package webserver

import (
	"fmt"
	"io/fs"
	"net/http"
	"strings"

	"github.com/leadmesh/leadgen/internal/webapi"
	"github.com/leadmesh/leadgen/web"
)

// registerRoutes sets up API and frontend routes on the given mux.
func registerRoutes(mux *http.ServeMux, cfg Config) error {
	webapi.RegisterRoutes(mux, cfg.Store, cfg.Logger)

	// Static frontend with index.html fallback for unknown paths.
	handler, err := staticHandler()
	if err != nil {
		return fmt.Errorf("failed to initialize static handler: %w", err)
	}
	mux.Handle("/", handler)
	return nil
}

// staticHandler returns an http.Handler that serves the embedded frontend
// assets. Non-existent paths are served index.html so a bookmarked task URL
// still loads the app.
func staticHandler() (http.Handler, error) {
	staticFS, err := fs.Sub(web.Assets, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to create sub filesystem for web/static: %w", err)
	}

	fileServer := http.FileServer(http.FS(staticFS))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		// Try to serve the file directly.
		if path != "/" {
			cleanPath := strings.TrimPrefix(path, "/")
			if f, err := staticFS.Open(cleanPath); err == nil {
				f.Close() //nolint:errcheck
				fileServer.ServeHTTP(w, r)
				return
			}
		}

		// Fallback: serve index.html.
		r.URL.Path = "/"
		fileServer.ServeHTTP(w, r)
	}), nil
}
