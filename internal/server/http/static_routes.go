package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterStaticRoutes mounts:
// - /web/* -> 前端静态文件
// - /      -> 跳转到 /web/
func RegisterStaticRoutes(r chi.Router, webDir string) {
	fs := http.StripPrefix("/web/", http.FileServer(http.Dir(webDir)))
	r.Get("/web", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/web/", http.StatusFound)
	})
	r.Get("/web/*", fs.ServeHTTP)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/web/", http.StatusFound)
	})
}
