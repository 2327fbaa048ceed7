package feed

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// client owns one WebSocket. Writes go through a single writer goroutine.
type client struct {
	id   string
	conn *websocket.Conn

	sendCh    chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(id string, conn *websocket.Conn) *client {
	c := &client{
		id:     id,
		conn:   conn,
		sendCh: make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
	go c.writeLoop()
	return c
}

func (c *client) send(data []byte) error {
	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}

	select {
	case c.sendCh <- data:
		return nil
	case <-c.done:
		return ErrClientClosed
	default:
		return ErrSlowClient
	}
}

func (c *client) writeLoop() {
	for {
		select {
		case data := <-c.sendCh:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
				c.close()
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.close()
				return
			}
		case <-c.done:
			return
		}
	}
}

// readLoop discards inbound frames until the peer goes away.
func (c *client) readLoop() {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}
