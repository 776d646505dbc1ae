package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/vrcpose/internal/landmark"
	"github.com/ayusman/vrcpose/internal/region"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

const writeWait = time.Second

// FrameSink accepts decoded landmark frames.
type FrameSink interface {
	Submit(f *landmark.Frame)
}

// IngestHandler receives landmark frames over WebSocket, one JSON frame per
// text message, and hands them to the pipeline.
type IngestHandler struct {
	sink FrameSink
}

// NewIngestHandler creates an IngestHandler feeding sink.
func NewIngestHandler(sink FrameSink) *IngestHandler {
	return &IngestHandler{sink: sink}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("landmark stream closed: %v", err)
			}
			return
		}

		frame, err := landmark.DecodeFrame(data)
		if err != nil {
			log.Printf("Skipping malformed landmark frame: %v", err)
			continue
		}
		h.sink.Submit(frame)
	}
}

// MonitorHub broadcasts the parameter values of each processed frame to
// connected WebSocket clients.
type MonitorHub struct {
	clients map[*websocket.Conn]*sync.Mutex
	mu      sync.RWMutex
}

// NewMonitorHub creates an empty MonitorHub.
func NewMonitorHub() *MonitorHub {
	return &MonitorHub{
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

type monitorMessage struct {
	Values    []region.Value `json:"values"`
	Timestamp int64          `json:"timestamp"`
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *MonitorHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = &sync.Mutex{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Clients returns the number of connected clients.
func (h *MonitorHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish sends values to every connected client. Clients that fail a write
// are dropped on their next read.
func (h *MonitorHub) Publish(values []region.Value) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.clients) == 0 {
		return
	}

	msg, err := json.Marshal(monitorMessage{
		Values:    values,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		log.Printf("Failed to encode parameter update: %v", err)
		return
	}

	for conn, wmu := range h.clients {
		wmu.Lock()
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			conn.Close()
		}
		wmu.Unlock()
	}
}
