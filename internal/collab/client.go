package collab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/coder/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 64 * 1024
)

var ErrUnexpectedMessage = errors.New("unexpected message")

// Client is one websocket connection to a drawing room. Send may only be
// called from the hub goroutine; the read pump answers malformed frames
// itself by writing to the connection directly.
type Client struct {
	hub         *Hub
	conn        *websocket.Conn
	send        chan []byte
	UserID      string
	DisplayName string
	DrawingID   string
	ClientID    string
}

func NewClient(hub *Hub, conn *websocket.Conn, userID, displayName, drawingID, clientID string) *Client {
	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, 256),
		UserID:      userID,
		DisplayName: displayName,
		DrawingID:   drawingID,
		ClientID:    clientID,
	}
}

// decodeInbound parses a frame from a client. Only operation submits and
// presence updates may be sent to the server.
func decodeInbound(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}
	switch msg.Type {
	case TypeOpSubmit, TypePresenceUpdate:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnexpectedMessage, msg.Type)
	}
	if len(msg.Payload) == 0 {
		return nil, fmt.Errorf("decode %s: missing payload", msg.Type)
	}
	return &msg, nil
}

// ReadPump forwards client frames to the hub until the connection closes.
// It stamps each message with the connection's identity, so clients cannot
// speak for another user or drawing.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMsgSize)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				slog.Debug("read error", "error", err, "user", c.UserID)
			}
			return
		}

		msg, err := decodeInbound(data)
		if err != nil {
			slog.Warn("invalid message", "error", err, "user", c.UserID, "drawing", c.DrawingID)
			if err := c.reject(ctx, err); err != nil {
				return
			}
			continue
		}

		msg.UserID = c.UserID
		msg.ClientID = c.ClientID
		msg.DrawingID = c.DrawingID

		c.hub.Submit(c, msg)
	}
}

// reject writes an error frame straight to the connection.
func (c *Client) reject(ctx context.Context, cause error) error {
	payload, _ := json.Marshal(ErrorPayload{Message: cause.Error()})
	data, err := json.Marshal(&Message{Type: TypeError, DrawingID: c.DrawingID, Payload: payload})
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return c.conn.Write(writeCtx, websocket.MessageText, data)
}

// WritePump drains the send queue onto the connection and keeps it alive
// with pings. It returns when the hub closes the queue.
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
				slog.Debug("write error", "error", err, "user", c.UserID)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				slog.Debug("ping failed", "error", err, "user", c.UserID)
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

// Send queues msg for the write pump, dropping it if the client has fallen
// too far behind.
func (c *Client) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal message", "error", err, "type", msg.Type)
		return
	}

	select {
	case c.send <- data:
	default:
		slog.Warn("client send buffer full, dropping message", "user", c.UserID, "drawing", c.DrawingID, "type", msg.Type)
	}
}
