package api

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/deckpilot/deckpilot/internal/session"
)

const clientBuffer = 16

// Hub fans session events out to websocket subscribers (the settings UI).
// Publish never blocks: a subscriber that cannot keep up has events dropped
// on the floor, since every event is reconstructible from a status poll.
type Hub struct {
	log      zerolog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*hubClient]struct{}
}

type hubClient struct {
	conn *websocket.Conn
	send chan session.Event
}

// NewHub creates an event hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		log: log,
		upgrader: websocket.Upgrader{
			// Settings surface is LAN-local; origin enforcement is the
			// allowlist's job.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*hubClient]struct{}),
	}
}

// Publish implements session.EventSink.
func (h *Hub) Publish(e session.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- e:
		default:
			// Slow subscriber; drop rather than stall the publisher.
		}
	}
}

// ServeWS upgrades the request and streams events until the peer goes away.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := &hubClient{conn: conn, send: make(chan session.Event, clientBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writeLoop(c)
	h.readLoop(c)
}

func (h *Hub) writeLoop(c *hubClient) {
	for e := range c.send {
		if err := c.conn.WriteJSON(e); err != nil {
			h.drop(c)
			return
		}
	}
}

// readLoop discards inbound frames; its job is detecting disconnect.
func (h *Hub) readLoop(c *hubClient) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.drop(c)
			return
		}
	}
}

func (h *Hub) drop(c *hubClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	_ = c.conn.Close()
}

// ClientCount reports current subscriber count.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
