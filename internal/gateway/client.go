package gateway

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/neutroai/neutro/internal/logging"
	"github.com/neutroai/neutro/internal/workspace"
)

// writeWait bounds a single frame write to a slow peer.
const writeWait = 10 * time.Second

// Client is one handshaken builder connection and the workspace it owns.
// Workspace is only touched from the connection's read loop.
type Client struct {
	ConnID      string
	Info        ClientInfo
	Socket      *websocket.Conn
	Workspace   *workspace.Workspace
	ConnectedAt time.Time

	mu     sync.Mutex // serializes writes
	closed bool
	log    *logging.Logger
}

func NewClient(conn *websocket.Conn, info ClientInfo, ws *workspace.Workspace, log *logging.Logger) *Client {
	return &Client{
		ConnID:      uuid.NewString(),
		Info:        info,
		Socket:      conn,
		Workspace:   ws,
		ConnectedAt: time.Now(),
		log:         log,
	}
}

// Send writes one frame. Safe for concurrent use with the read loop.
func (c *Client) Send(frame Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientClosed
	}
	if err := c.Socket.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.Socket.WriteJSON(frame)
}

func (c *Client) SendEvent(event string, payload any, seq int64) error {
	f, err := NewEvent(event, payload, seq)
	if err != nil {
		return err
	}
	return c.Send(f)
}

func (c *Client) Respond(reqID string, payload any) error {
	f, err := NewResponse(reqID, payload)
	if err != nil {
		return err
	}
	return c.Send(f)
}

func (c *Client) RespondError(reqID string, errShape ErrorShape) error {
	return c.Send(NewErrorResponse(reqID, errShape))
}

// ReadFrame blocks until the next frame arrives. Only the read loop calls it.
func (c *Client) ReadFrame() (Frame, error) {
	var f Frame
	err := c.Socket.ReadJSON(&f)
	return f, err
}

// Close is idempotent. A client without a socket only flips its state.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.Socket == nil {
		return nil
	}
	return c.Socket.Close()
}

// ClientRegistry tracks live connections by connection id.
type ClientRegistry struct {
	mu      sync.RWMutex
	clients map[string]*Client
	log     *logging.Logger
}

func NewClientRegistry(log *logging.Logger) *ClientRegistry {
	return &ClientRegistry{
		clients: make(map[string]*Client),
		log:     log,
	}
}

func (r *ClientRegistry) Add(c *Client) {
	r.mu.Lock()
	r.clients[c.ConnID] = c
	r.mu.Unlock()

	ev := r.log.Info().Str("connId", c.ConnID).Str("client", c.Info.ID)
	if c.Workspace != nil {
		ev = ev.Str("workspace", c.Workspace.ID)
	}
	ev.Msg("builder attached")
}

func (r *ClientRegistry) Remove(connID string) {
	r.mu.Lock()
	_, ok := r.clients[connID]
	delete(r.clients, connID)
	r.mu.Unlock()

	if ok {
		r.log.Info().Str("connId", connID).Msg("builder detached")
	}
}

func (r *ClientRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

func (r *ClientRegistry) snapshot() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, c)
	}
	return out
}

// Broadcast pushes an event to every client and returns how many took it.
// Writes happen outside the registry lock.
func (r *ClientRegistry) Broadcast(event string, payload any, seq int64) int {
	sent := 0
	for _, c := range r.snapshot() {
		if err := c.SendEvent(event, payload, seq); err != nil {
			r.log.Warn().Err(err).Str("connId", c.ConnID).Str("event", event).Msg("event not delivered")
			continue
		}
		sent++
	}
	return sent
}

// CloseAll drops every client and returns how many were dropped.
func (r *ClientRegistry) CloseAll() int {
	r.mu.Lock()
	clients := r.clients
	r.clients = make(map[string]*Client)
	r.mu.Unlock()

	for _, c := range clients {
		c.Close()
	}
	return len(clients)
}
