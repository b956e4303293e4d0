package transport

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	applog "nitemix/internal/log"
)

// wsMessage is the JSON shape broadcast to visualizer clients.
type wsMessage struct {
	Type     string  `json:"type"`
	Strength float64 `json:"strength,omitempty"`
}

// WebSocketTransport broadcasts blend decisions to every connected
// visualizer client.
type WebSocketTransport struct {
	addr      string
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	broadcast chan wsMessage
	server    *http.Server
}

var _ Transport = (*WebSocketTransport)(nil)

// NewWebSocketTransport starts the server immediately on the given address.
func NewWebSocketTransport(addr string) *WebSocketTransport {
	wst := &WebSocketTransport{
		addr: addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // visualizers connect from arbitrary origins
			},
		},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan wsMessage, 256),
	}
	wst.start()
	return wst
}

func (wst *WebSocketTransport) start() {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wst.handleWebSocket)

	wst.server = &http.Server{
		Addr:    wst.addr,
		Handler: mux,
	}

	go func() {
		applog.Infof("WebSocketTransport: listening on %s", wst.addr)
		if err := wst.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			applog.Errorf("WebSocketTransport: server error: %v", err)
		}
	}()

	go wst.handleBroadcasts()
}

func (wst *WebSocketTransport) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wst.upgrader.Upgrade(w, r, nil)
	if err != nil {
		applog.Errorf("WebSocketTransport: upgrade error: %v", err)
		return
	}

	wst.clientsMu.Lock()
	wst.clients[conn] = true
	total := len(wst.clients)
	wst.clientsMu.Unlock()
	applog.Infof("WebSocketTransport: client connected, total: %d", total)

	go func() {
		// Block until the client goes away.
		_, _, err := conn.ReadMessage()
		if err != nil {
			wst.clientsMu.Lock()
			delete(wst.clients, conn)
			total := len(wst.clients)
			wst.clientsMu.Unlock()
			conn.Close()
			applog.Infof("WebSocketTransport: client disconnected, total: %d", total)
		}
	}()
}

func (wst *WebSocketTransport) handleBroadcasts() {
	for msg := range wst.broadcast {
		wst.clientsMu.Lock()
		for client := range wst.clients {
			if err := client.WriteJSON(msg); err != nil {
				applog.Errorf("WebSocketTransport: error sending to client: %v", err)
				client.Close()
				delete(wst.clients, client)
			}
		}
		wst.clientsMu.Unlock()
	}
}

// Send queues the message for broadcast. A full queue drops the message;
// clients only care about the latest strength anyway.
func (wst *WebSocketTransport) Send(msg Message) error {
	out := wsMessage{Type: msg.Kind.String(), Strength: msg.Strength}
	select {
	case wst.broadcast <- out:
	default:
	}
	return nil
}

// Close disconnects every client and shuts the server down.
func (wst *WebSocketTransport) Close() error {
	applog.Infof("WebSocketTransport: closing server")

	wst.clientsMu.Lock()
	for client := range wst.clients {
		client.Close()
	}
	wst.clients = make(map[*websocket.Conn]bool)
	wst.clientsMu.Unlock()

	if wst.server != nil {
		return wst.server.Close()
	}
	return nil
}
