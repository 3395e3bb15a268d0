package web

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/justestif/go-dinner-vibe/internal/flow"
)

const (
	writeWait = 10 * time.Second

	// sendBuffer is the number of snapshots queued per client before it is dropped.
	sendBuffer = 8
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// hubClient is one websocket connection with its outgoing queue.
// send is closed by the hub when the client is removed.
type hubClient struct {
	conn *websocket.Conn
	send chan []byte
}

// writeLoop writes queued snapshots until send is closed or a write fails.
func (c *hubClient) writeLoop(logger zerolog.Logger) {
	defer c.conn.Close()

	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			logger.Debug().Err(err).Msg("websocket write failed")
			return
		}
	}

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// Hub pushes state snapshots of one session to its open websocket connections.
// Writes happen on per-client goroutines; Broadcast never waits on the network.
type Hub struct {
	mu          sync.Mutex
	clients     map[*hubClient]struct{}
	lastVersion uint64
	logger      zerolog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[*hubClient]struct{}),
		logger:  logger,
	}
}

// Broadcast queues s for every client. Snapshots older than one already sent are dropped.
// A client whose queue is full is disconnected.
func (h *Hub) Broadcast(s flow.State) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if s.Version <= h.lastVersion {
		return
	}
	h.lastVersion = s.Version

	msg, err := json.Marshal(s)
	if err != nil {
		h.logger.Error().Err(err).Msg("encoding state")
		return
	}

	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.logger.Debug().Msg("websocket client too slow, removing")
			h.removeLocked(c)
		}
	}
}

// Serve upgrades the request, sends the current snapshot and keeps the
// connection registered until the client goes away.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, current func() flow.State) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &hubClient{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	msg, err := json.Marshal(current())
	if err != nil {
		h.mu.Unlock()
		conn.Close()
		return err
	}
	c.send <- msg
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go c.writeLoop(h.logger)

	h.logger.Debug().Int("clients", h.Len()).Msg("websocket client connected")

	// Drain client messages until the connection closes.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	h.removeLocked(c)
	h.mu.Unlock()
	return nil
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.removeLocked(c)
	}
}

func (h *Hub) removeLocked(c *hubClient) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		h.logger.Debug().Msg("websocket client disconnected")
	}
}
