package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"xiangqi/internal/engine"
	"xiangqi/internal/server/game"
	"xiangqi/internal/xiangqi"
)

// Handler 对局接口；AI 思考在后台跑，进度和落子结果经 Hub 推给 websocket。
type Handler struct {
	games      *game.Manager
	hub        *Hub
	difficulty engine.Difficulty
	budget     time.Duration
	log        *logrus.Entry
}

func NewHandler(games *game.Manager, difficulty engine.Difficulty, budget time.Duration) *Handler {
	return &Handler{
		games:      games,
		hub:        NewHub(),
		difficulty: difficulty,
		budget:     budget,
		log:        logrus.WithField("component", "http"),
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logrus.Warnf("writeJSON: %v", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, game.ErrGameNotFound):
		status = http.StatusNotFound
	case errors.Is(err, xiangqi.ErrInvalidMove), errors.Is(err, xiangqi.ErrInvalidFEN):
		status = http.StatusBadRequest
	case errors.Is(err, game.ErrBusy), errors.Is(err, game.ErrGameOver), errors.Is(err, game.ErrNotThinking):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		h.log.Errorf("request failed: %v", err)
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func decodeBody(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	return json.NewDecoder(r.Body).Decode(v)
}

func (h *Handler) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req NewGameRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad json"})
		return
	}
	diff := h.difficulty
	if req.Difficulty != "" {
		d, err := engine.ParseDifficulty(req.Difficulty)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		diff = d
	}
	snap, err := h.games.NewGame(req.FEN, diff)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snapshotToDTO(snap))
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	snap, err := h.games.State(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshotToDTO(snap))
}

func (h *Handler) handlePlay(w http.ResponseWriter, r *http.Request) {
	var req PlayRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad json"})
		return
	}
	mv, err := xiangqi.ParseICCS(req.Move)
	if err != nil {
		h.writeError(w, err)
		return
	}
	snap, err := h.games.Play(chi.URLParam(r, "id"), mv)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshotToDTO(snap))
}

// handleLegalMoves ?square=b0，界面选子时高亮落点
func (h *Handler) handleLegalMoves(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("square")
	sq, err := xiangqi.ParseSquare(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	moves, err := h.games.LegalMoves(chi.URLParam(r, "id"), sq)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, LegalMovesResponse{Square: sq.String(), Moves: movesToICCS(moves)})
}

func (h *Handler) handleAIMove(w http.ResponseWriter, r *http.Request) {
	var req AIMoveRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad json"})
		return
	}
	diff := engine.Difficulty(-1)
	if req.Difficulty != "" {
		d, err := engine.ParseDifficulty(req.Difficulty)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		diff = d
	}
	budget := h.budget
	if req.TimeMs > 0 {
		budget = time.Duration(req.TimeMs) * time.Millisecond
	}

	id := chi.URLParam(r, "id")
	lastPct := -1 // 只在 worker goroutine 里读写
	err := h.games.StartAI(id, diff, budget, game.AIHooks{
		Progress: func(gameID string, p int) {
			if p == lastPct {
				return
			}
			lastPct = p
			h.hub.Publish(gameID, wsMessage{Type: "progress", Payload: progressPayload{Percent: p}})
		},
		Done: func(snap game.Snapshot, res engine.Result) {
			h.hub.Publish(snap.ID, wsMessage{Type: "ai_move", Payload: aiMovePayload{
				Result: resultToDTO(res),
				Game:   snapshotToDTO(snap),
			}})
		},
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	snap, err := h.games.State(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, snapshotToDTO(snap))
}

func (h *Handler) aiControl(fn func(id string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := fn(id); err != nil {
			h.writeError(w, err)
			return
		}
		snap, err := h.games.State(id)
		if err != nil {
			h.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snapshotToDTO(snap))
	}
}

func (h *Handler) handleWS(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.games.State(id); err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.hub.serveWS(w, r, id); err != nil {
		h.log.Debugf("websocket upgrade for %s: %v", id, err)
	}
}
