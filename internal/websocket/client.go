package websocket

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait = 10 * time.Second

	// pongWait bounds how long a silent browser keeps its feed
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Dashboards only send control frames
	maxInboundSize = 512

	outboxSize = 32
)

// Client is a dashboard's change feed over one WebSocket connection.
// It only writes; the browser reacts to each event by refetching its view.
type Client struct {
	id     string
	owner  Owner
	conn   *websocket.Conn
	hub    *Hub
	outbox chan []byte

	quit        chan struct{}
	endOnce     sync.Once
	closeCode   int
	closeReason string
}

// NewClient creates the feed for a connection opened by owner
func NewClient(conn *websocket.Conn, owner Owner, hub *Hub) *Client {
	return &Client{
		id:     uuid.New().String(),
		owner:  owner,
		conn:   conn,
		hub:    hub,
		outbox: make(chan []byte, outboxSize),
		quit:   make(chan struct{}),
	}
}

// ID returns the connection id
func (c *Client) ID() string {
	return c.id
}

// Owner returns the session the feed was opened with
func (c *Client) Owner() Owner {
	return c.owner
}

// Deliver queues an encoded event without blocking the publisher
func (c *Client) Deliver(data []byte) error {
	select {
	case <-c.quit:
		return ErrClientClosed
	default:
	}

	select {
	case c.outbox <- data:
		return nil
	case <-c.quit:
		return ErrClientClosed
	default:
		return ErrClientTooSlow
	}
}

// End stops the feed. The write pump sends a close frame carrying code and reason.
// Only the first call has an effect.
func (c *Client) End(code int, reason string) {
	c.endOnce.Do(func() {
		c.closeCode = code
		c.closeReason = reason
		close(c.quit)
	})
}

// Done is closed once the feed has ended
func (c *Client) Done() <-chan struct{} {
	return c.quit
}

// Run serves the connection until either side ends it
func (c *Client) Run() {
	go c.ReadPump()
	c.WritePump()
}

// ReadPump keeps the read deadline moving on pongs and detects the browser going away
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Remove(c)
		c.End(websocket.CloseNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxInboundSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("client_id", c.id).Str("username", c.owner.Username).Msg("Dashboard feed dropped")
			}
			return
		}
	}
}

// WritePump writes queued events and keepalive pings, then the close frame once the feed ends
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data := <-c.outbox:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Debug().Err(err).Str("client_id", c.id).Msg("Dashboard feed write failed")
				c.End(websocket.CloseAbnormalClosure, "")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.End(websocket.CloseAbnormalClosure, "")
				return
			}

		case <-c.quit:
			if c.closeCode != websocket.CloseAbnormalClosure {
				msg := websocket.FormatCloseMessage(c.closeCode, c.closeReason)
				c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
			}
			return
		}
	}
}
