package network

import (
	"errors"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// ErrConnectionClosed is returned when sending on a closed connection.
var ErrConnectionClosed = errors.New("connection closed")

// Connection wraps the WebSocket connection with additional fields
type Connection struct {
	ws     *websocket.Conn
	codec  Codec
	send   chan []byte
	mu     sync.Mutex
	closed bool
}

// NewConnection creates a new connection wrapper
func NewConnection(ws *websocket.Conn, codec Codec) *Connection {
	if codec == nil {
		codec = JSONCodec{}
	}
	return &Connection{
		ws:    ws,
		codec: codec,
		send:  make(chan []byte, 256), // Buffered channel for outgoing messages
	}
}

// Codec returns the codec frames on this connection use.
func (c *Connection) Codec() Codec {
	return c.codec
}

// ReadPump reads messages from the WebSocket connection until it fails,
// then stops the write pump.
func (c *Connection) ReadPump(h MessageHandler) {
	defer c.Close()

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Error reading message: %v", err)
			}
			break
		}

		h.HandleMessage(c, message)
	}
}

// WritePump writes queued messages to the WebSocket connection
func (c *Connection) WritePump() {
	defer c.ws.Close()

	for message := range c.send {
		w, err := c.ws.NextWriter(c.codec.FrameType())
		if err != nil {
			return
		}
		if _, err := w.Write(message); err != nil {
			return
		}
		if err := w.Close(); err != nil {
			return
		}
	}
	c.ws.WriteMessage(websocket.CloseMessage, []byte{})
}

// SendMessage queues a message for the client
func (c *Connection) SendMessage(msg interface{}) error {
	messageBytes, err := c.codec.Marshal(msg)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrConnectionClosed
	}

	select {
	case c.send <- messageBytes:
	default:
		// If the send channel is full, close the connection
		c.ws.Close()
	}
	return nil
}

// Close stops the write pump. Safe to call more than once.
func (c *Connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// MessageHandler interface for handling messages
type MessageHandler interface {
	HandleMessage(conn *Connection, message []byte)
}
