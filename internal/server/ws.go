package server

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// dumpBuffer is how many dumps may queue per client before new ones are dropped.
const dumpBuffer = 32

const writeWait = time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// DumpHandler broadcasts frame dumps to WebSocket clients at /api/debug.
// It implements app.DebugSink.
type DumpHandler struct {
	clients map[*websocket.Conn]chan string
	mu      sync.RWMutex
}

// NewDumpHandler creates a DumpHandler with no clients.
func NewDumpHandler() *DumpHandler {
	return &DumpHandler{clients: make(map[*websocket.Conn]chan string)}
}

// ServeHTTP upgrades the request and streams dumps until the client goes away.
func (h *DumpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	queue := make(chan string, dumpBuffer)
	h.mu.Lock()
	h.clients[conn] = queue
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case dump := <-queue:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(dump)); err != nil {
				return
			}
		}
	}
}

// Publish queues dump for every client. Slow clients miss dumps instead of
// stalling the sensor goroutine.
func (h *DumpHandler) Publish(dump string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, queue := range h.clients {
		select {
		case queue <- dump:
		default:
		}
	}
}

// Clients returns the number of connected clients.
func (h *DumpHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
