package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter webDir 为空时不挂静态文件。
func NewRouter(h *Handler, webDir string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", h.handlePing)
	r.Route("/api/games", func(r chi.Router) {
		r.Post("/", h.handleNewGame)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.handleState)
			r.Get("/moves", h.handleLegalMoves)
			r.Post("/moves", h.handlePlay)
			r.Post("/ai", h.handleAIMove)
			r.Post("/ai/pause", h.aiControl(h.games.PauseAI))
			r.Post("/ai/resume", h.aiControl(h.games.ResumeAI))
			r.Post("/ai/cancel", h.aiControl(h.games.CancelAI))
		})
	})
	r.Get("/ws/games/{id}", h.handleWS)

	if webDir != "" {
		RegisterStaticRoutes(r, webDir)
	}
	return r
}
