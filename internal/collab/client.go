package collab

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/coder/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 256 * 1024

	// Presence updates arrive on every pointer move. Relaying more than
	// ~25 per second per client only burns broadcast fan-out, so faster
	// frames are dropped; the next one carries the newest cursor anyway.
	minPresenceGap = 40 * time.Millisecond
)

// Client is one websocket connection bound to a room. The read pump
// owns all inbound processing; the write pump drains the send buffer.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	UserID      string
	DisplayName string
	ProjectID   string
	ClientID    string

	// Read-pump state, never touched from other goroutines.
	lastPresence time.Time
}

func NewClient(hub *Hub, conn *websocket.Conn, userID, displayName, projectID, clientID string) *Client {
	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, 256),
		UserID:      userID,
		DisplayName: displayName,
		ProjectID:   projectID,
		ClientID:    clientID,
	}
}

func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMsgSize)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				slog.Debug("read error", "error", err, "client", c.ClientID)
			}
			return
		}
		c.handleFrame(data)
	}
}

// handleFrame decodes one inbound frame, applies the presence throttle,
// and forwards the stamped message to the hub.
func (c *Client) handleFrame(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		slog.Warn("invalid message", "error", err, "client", c.ClientID)
		return
	}

	if msg.Type == TypePresenceUpdate && c.throttlePresence(time.Now()) {
		return
	}

	c.stamp(&msg)
	c.hub.handleMessage(c, &msg)
}

// throttlePresence reports whether a presence frame arrived within
// minPresenceGap of the previous relayed one. Only the read pump calls
// this.
func (c *Client) throttlePresence(now time.Time) bool {
	if now.Sub(c.lastPresence) < minPresenceGap {
		return true
	}
	c.lastPresence = now
	return false
}

// stamp overwrites client-supplied identity fields with the values
// established at the websocket handshake.
func (c *Client) stamp(msg *Message) {
	msg.UserID = c.UserID
	msg.ClientID = c.ClientID
	msg.ProjectID = c.ProjectID
}

func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}

			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				slog.Debug("write error", "error", err, "client", c.ClientID)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal message", "error", err)
		return
	}

	select {
	case c.send <- data:
	default:
		slog.Warn("client send buffer full, dropping message", "client", c.ClientID, "user", c.UserID)
	}
}
