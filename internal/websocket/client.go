package websocket

import (
	"context"
	"strings"
	"time"

	ws "github.com/coder/websocket"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
	writeTimeout   = 10 * time.Second
)

// Client is one connected page. A client with no catalogs receives every
// notification.
type Client struct {
	hub      *Hub
	conn     *ws.Conn
	send     chan []byte
	catalogs map[string]bool
}

// NewClient ties conn to hub, subscribed to the given catalogs.
func NewClient(hub *Hub, conn *ws.Conn, catalogs []string) *Client {
	c := &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
	for _, name := range catalogs {
		if name = strings.TrimSpace(strings.ToLower(name)); name != "" {
			if c.catalogs == nil {
				c.catalogs = make(map[string]bool)
			}
			c.catalogs[name] = true
		}
	}
	return c
}

func (c *Client) wants(catalog string) bool {
	return len(c.catalogs) == 0 || c.catalogs[catalog]
}

// Run blocks until the connection closes, then unregisters.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writeLoop(ctx)
	c.readLoop(ctx)
}

// Pages never send anything meaningful; reading only detects the close.
func (c *Client) readLoop(ctx context.Context) {
	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			return
		}
	}
}

func (c *Client) writeLoop(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.write(ctx, msg); err != nil {
				return
			}
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := c.conn.Ping(pctx)
			cancel()
			if err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) write(ctx context.Context, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return c.conn.Write(ctx, ws.MessageText, msg)
}
