package web

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lcalzada-xor/factmap/internal/core/domain"
	"github.com/lcalzada-xor/factmap/internal/core/ports"
	"github.com/lcalzada-xor/factmap/internal/telemetry"
)

// Message types pushed to clients
const (
	TypeFactsState = "facts.state"
	TypeMapState   = "map.state"
	TypeNavState   = "nav.state"
)

const (
	writeWait  = 5 * time.Second
	pingPeriod = 30 * time.Second
)

type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// WSManager pushes screen state changes to every connected client.
type WSManager struct {
	Facts     ports.FactsService
	Map       ports.MapService
	Navigator ports.Navigator
	Clients   map[*websocket.Conn]struct{}
	mu        sync.Mutex
	upgrader  websocket.Upgrader
}

// NewWSManager creates a hub. An empty allowedOrigins accepts only same-origin requests.
func NewWSManager(facts ports.FactsService, mapSvc ports.MapService, nav ports.Navigator, allowedOrigins []string) *WSManager {
	m := &WSManager{
		Facts:     facts,
		Map:       mapSvc,
		Navigator: nav,
		Clients:   make(map[*websocket.Conn]struct{}),
	}
	m.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")

			// Allow same-origin (no Origin header)
			if origin == "" {
				return true
			}
			for _, allowed := range allowedOrigins {
				if origin == allowed {
					return true
				}
			}

			log.Printf("WebSocket: Rejected origin: %s", origin)
			return false
		},
	}
	return m
}

// Start keeps idle connections alive until ctx ends, then closes them.
func (m *WSManager) Start(ctx context.Context) {
	go m.keepAlive(ctx)
}

func (m *WSManager) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}

	m.mu.Lock()
	m.Clients[conn] = struct{}{}
	count := len(m.Clients)
	m.mu.Unlock()
	telemetry.WebSocketClients.Set(float64(count))

	log.Printf("WebSocket connected: remote=%s", r.RemoteAddr)

	// New clients get the full picture before any incremental update
	m.sendSnapshot(conn)

	// Clean up on disconnect
	go func() {
		defer m.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		log.Printf("WebSocket disconnected: remote=%s", r.RemoteAddr)
	}()
}

// NotifyFacts broadcasts the facts screen state
func (m *WSManager) NotifyFacts(state domain.FactsState) {
	m.broadcastMessage(WSMessage{Type: TypeFactsState, Payload: state})
}

// NotifyMap broadcasts the map screen state
func (m *WSManager) NotifyMap(state domain.MapState) {
	m.broadcastMessage(WSMessage{Type: TypeMapState, Payload: state})
}

// NotifyNav broadcasts the navigator state
func (m *WSManager) NotifyNav(state domain.NavState) {
	m.broadcastMessage(WSMessage{Type: TypeNavState, Payload: state})
}

// ClientCount returns the number of connected clients.
func (m *WSManager) ClientCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Clients)
}

func (m *WSManager) sendSnapshot(conn *websocket.Conn) {
	msgs := []WSMessage{
		{Type: TypeNavState, Payload: m.Navigator.State()},
		{Type: TypeMapState, Payload: m.Map.State()},
		{Type: TypeFactsState, Payload: m.Facts.State()},
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range msgs {
		data, err := json.Marshal(msg)
		if err != nil {
			log.Println("JSON marshal error:", err)
			return
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			m.removeLocked(conn)
			return
		}
	}
}

func (m *WSManager) keepAlive(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.closeAll()
			return
		case <-ticker.C:
			m.mu.Lock()
			for conn := range m.Clients {
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					m.removeLocked(conn)
				}
			}
			m.mu.Unlock()
		}
	}
}

func (m *WSManager) broadcastMessage(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for conn := range m.Clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			m.removeLocked(conn)
		}
	}
}

func (m *WSManager) drop(conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(conn)
}

func (m *WSManager) removeLocked(conn *websocket.Conn) {
	if _, ok := m.Clients[conn]; !ok {
		return
	}
	conn.Close()
	delete(m.Clients, conn)
	telemetry.WebSocketClients.Set(float64(len(m.Clients)))
}

func (m *WSManager) closeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for conn := range m.Clients {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"),
			time.Now().Add(writeWait))
		m.removeLocked(conn)
	}
}

var _ ports.StateNotifier = (*WSManager)(nil)
