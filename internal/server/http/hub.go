package httpserver

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const wsIdlePingInterval = 30 * time.Second

// Hub 按对局 ID 分组的 websocket 订阅者
type Hub struct {
	mu      sync.Mutex
	clients map[string]map[*wsClient]struct{}
}

type wsClient struct {
	send chan []byte
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*wsClient]struct{})}
}

func (h *Hub) register(gameID string, c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[gameID]
	if !ok {
		set = make(map[*wsClient]struct{})
		h.clients[gameID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) unregister(gameID string, c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.clients[gameID]
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, gameID)
	}
}

// Publish 发送队列满的客户端直接丢这一条
func (h *Hub) Publish(gameID string, msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients[gameID] {
		select {
		case c.send <- data:
		default:
		}
	}
}

func (h *Hub) serveWS(w http.ResponseWriter, r *http.Request, gameID string) error {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := &wsClient{send: make(chan []byte, 128)}
	h.register(gameID, c)

	go func() {
		defer conn.Close()
		_ = writeWSWithHeartbeat(conn, c.send)
	}()

	// 客户端不发业务消息，读循环只用来发现断线
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.unregister(gameID, c)
			return nil
		}
	}
}

func writeWSWithHeartbeat(conn *websocket.Conn, send <-chan []byte) error {
	ticker := time.NewTicker(wsIdlePingInterval)
	defer ticker.Stop()
	lastWrite := time.Now()
	ping, _ := json.Marshal(wsMessage{Type: "ping"})

	for {
		select {
		case msg, ok := <-send:
			if !ok {
				return nil
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < wsIdlePingInterval {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, ping); err != nil {
				return err
			}
			lastWrite = time.Now()
		}
	}
}
