package ws

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"github.com/smokesignal/smokesignal/server/internal/api"
	"github.com/smokesignal/smokesignal/server/internal/store"
)

const (
	// DefaultInterval is the broadcast period used by the server.
	DefaultInterval = 5 * time.Second

	writeTimeout = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = pongWait * 9 / 10

	// maxInbound bounds frames read from clients; they only send control frames.
	maxInbound = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Message is the JSON envelope sent to clients.
type Message struct {
	Event string             `json:"event"`
	Data  api.StreamResponse `json:"data"`
}

// Hub pushes the full target list to every connected client, on a timer and
// whenever Broadcast is called. Each message supersedes the previous one, so a
// client that falls behind receives only the newest list.
type Hub struct {
	store    *store.Store
	interval time.Duration

	mu      sync.Mutex
	clients map[*client]struct{}
}

// New creates a Hub that reads from st and broadcasts every interval.
// A non-positive interval selects DefaultInterval.
func New(st *store.Store, interval time.Duration) *Hub {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Hub{
		store:    st,
		interval: interval,
		clients:  make(map[*client]struct{}),
	}
}

// Run broadcasts on every tick until ctx is cancelled, then disconnects all
// clients.
func (h *Hub) Run(ctx context.Context) {
	t := time.NewTicker(h.interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			h.Broadcast()
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				c.shutdown()
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return
		}
	}
}

// ServeHTTP upgrades the request, sends the current target list and then
// streams updates until either side closes the connection.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return // the upgrader has replied with an error status
	}

	c := newClient(conn)
	if msg, err := h.encode(); err == nil {
		c.offer(msg)
	} else {
		slog.Error("ws: encode message", "err", err)
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	slog.Debug("ws: client connected", "remote", r.RemoteAddr)

	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
		c.shutdown()
		slog.Debug("ws: client disconnected", "remote", r.RemoteAddr)
	}()

	go c.writeLoop()
	c.readLoop()
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast encodes the current target list once and offers it to every
// client. It never blocks on a slow client.
func (h *Hub) Broadcast() {
	msg, err := h.encode()
	if err != nil {
		slog.Error("ws: encode message", "err", err)
		return
	}

	h.mu.Lock()
	targets := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	for _, c := range targets {
		c.offer(msg)
	}
}

func (h *Hub) encode() ([]byte, error) {
	return sonic.Marshal(Message{Event: "targets", Data: api.BuildStream(h.store)})
}

// client is one WebSocket connection. pending holds at most the newest
// undelivered message.
type client struct {
	conn    *websocket.Conn
	pending chan []byte
	done    chan struct{}
	once    sync.Once
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn:    conn,
		pending: make(chan []byte, 1),
		done:    make(chan struct{}),
	}
}

// offer queues msg, discarding any older message the writer has not sent yet.
func (c *client) offer(msg []byte) {
	for {
		select {
		case c.pending <- msg:
			return
		default:
		}
		select {
		case <-c.pending:
		default:
		}
	}
}

// shutdown asks the writer to send a close frame and drop the connection.
func (c *client) shutdown() {
	c.once.Do(func() { close(c.done) })
}

func (c *client) writeLoop() {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()
	defer c.conn.Close()

	for {
		var err error
		select {
		case <-c.done:
			c.write(websocket.CloseMessage, //nolint:errcheck
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
			return
		case msg := <-c.pending:
			err = c.write(websocket.TextMessage, msg)
		case <-ping.C:
			err = c.write(websocket.PingMessage, nil)
		}
		if err != nil {
			return
		}
	}
}

func (c *client) write(kind int, data []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)) //nolint:errcheck
	return c.conn.WriteMessage(kind, data)
}

// readLoop consumes control frames until the peer goes away or the writer
// closes the connection.
func (c *client) readLoop() {
	c.conn.SetReadLimit(maxInbound)
	c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
