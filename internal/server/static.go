package server

import (
	"embed"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

//go:embed static
var staticFS embed.FS

// staticHandler serves the dashboard UI. A non-empty dir overrides the
// embedded assets with a build on disk. Paths that do not resolve to a file
// fall back to index.html so client-side routes survive a reload; /api paths
// never reach this handler.
func (s *Server) staticHandler(dir string) http.Handler {
	if dir != "" {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := filepath.Join(dir, filepath.Clean("/"+r.URL.Path))
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				http.ServeFile(w, r, path)
				return
			}
			http.ServeFile(w, r, filepath.Join(dir, "index.html"))
		})
	}

	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// The embedded tree always contains static/; this cannot happen.
		panic(err)
	}
	fileServer := http.FileServer(http.FS(sub))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		if name == "" {
			name = "index.html"
		}
		if _, err := fs.Stat(sub, name); err != nil {
			r = r.Clone(r.Context())
			r.URL.Path = "/"
		}
		fileServer.ServeHTTP(w, r)
	})
}
