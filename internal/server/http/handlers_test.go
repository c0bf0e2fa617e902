package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"xiangqi/internal/engine"
	"xiangqi/internal/server/game"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mgr := game.NewManager(engine.New(engine.Options{MaxDepth: 2}, nil))
	srv := httptest.NewServer(NewRouter(NewHandler(mgr, engine.Easy, 0), ""))
	t.Cleanup(func() {
		srv.Close()
		mgr.Shutdown()
	})
	return srv
}

func doJSON(t *testing.T, method, url string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestGameFlow(t *testing.T) {
	srv := newTestServer(t)

	var g GameResponse
	if code := doJSON(t, http.MethodPost, srv.URL+"/api/games", NewGameRequest{}, &g); code != http.StatusCreated {
		t.Fatalf("new game: status %d", code)
	}
	if g.GameID == "" || g.ToMove != "red" || len(g.LegalMoves) != 44 || g.Status != "ongoing" {
		t.Fatalf("unexpected new game %+v", g)
	}

	var lm LegalMovesResponse
	if code := doJSON(t, http.MethodGet, srv.URL+"/api/games/"+g.GameID+"/moves?square=b0", nil, &lm); code != http.StatusOK {
		t.Fatalf("legal moves: status %d", code)
	}
	if len(lm.Moves) != 2 {
		t.Fatalf("horse b0 should have 2 moves, got %v", lm.Moves)
	}

	var after GameResponse
	if code := doJSON(t, http.MethodPost, srv.URL+"/api/games/"+g.GameID+"/moves", PlayRequest{Move: "h2e2"}, &after); code != http.StatusOK {
		t.Fatalf("play: status %d", code)
	}
	if after.ToMove != "black" || len(after.History) != 1 || after.History[0] != "h2e2" {
		t.Fatalf("unexpected state after move %+v", after)
	}

	var e ErrorResponse
	if code := doJSON(t, http.MethodPost, srv.URL+"/api/games/"+g.GameID+"/moves", PlayRequest{Move: "a0a5"}, &e); code != http.StatusBadRequest {
		t.Fatalf("illegal move: status %d", code)
	}
	if code := doJSON(t, http.MethodGet, srv.URL+"/api/games/nope", nil, &e); code != http.StatusNotFound {
		t.Fatalf("unknown game: status %d", code)
	}
	if code := doJSON(t, http.MethodPost, srv.URL+"/api/games/"+g.GameID+"/ai/pause", nil, &e); code != http.StatusConflict {
		t.Fatalf("pause without search: status %d", code)
	}
	if code := doJSON(t, http.MethodPost, srv.URL+"/api/games", NewGameRequest{FEN: "xx"}, &e); code != http.StatusBadRequest {
		t.Fatalf("bad FEN: status %d", code)
	}
}

func TestAIMoveOverWebsocket(t *testing.T) {
	srv := newTestServer(t)

	var g GameResponse
	doJSON(t, http.MethodPost, srv.URL+"/api/games", NewGameRequest{Difficulty: "easy"}, &g)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/games/" + g.GameID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// 等订阅登记完成
	time.Sleep(50 * time.Millisecond)

	var started GameResponse
	if code := doJSON(t, http.MethodPost, srv.URL+"/api/games/"+g.GameID+"/ai", AIMoveRequest{}, &started); code != http.StatusAccepted {
		t.Fatalf("ai: status %d", code)
	}

	_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	sawProgress := false
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var msg struct {
			Type    string          `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("bad message %s", data)
		}
		switch msg.Type {
		case "progress":
			sawProgress = true
		case "ai_move":
			var p aiMovePayload
			if err := json.Unmarshal(msg.Payload, &p); err != nil {
				t.Fatalf("bad ai_move payload: %v", err)
			}
			if p.Result.NoMove || p.Game.ToMove != "black" || len(p.Game.History) != 1 {
				t.Fatalf("unexpected ai_move %+v", p)
			}
			if !sawProgress {
				t.Fatalf("no progress before ai_move")
			}
			return
		}
	}
}

func TestStaticRoutes(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(\"xiangqi\")"), 0o644); err != nil {
		t.Fatal(err)
	}
	mgr := game.NewManager(engine.New(engine.Options{}, nil))
	h := NewRouter(NewHandler(mgr, engine.Easy, 0), dir)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/web/" {
		t.Fatalf("root redirect: %d %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/web/app.js", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "xiangqi") {
		t.Fatalf("static file: %d %q", rec.Code, rec.Body.String())
	}
}
