package websocket

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 30 * time.Second
	pingPeriod     = 25 * time.Second
	maxMessageSize = 4096
	sendBufferSize = 16
)

type client struct {
	conn   *websocket.Conn
	remote string
	logger *slog.Logger

	sendMutex sync.Mutex
	send      chan []byte
	closed    bool
}

func newClient(logger *slog.Logger, conn *websocket.Conn) *client {
	remote := conn.RemoteAddr().String()

	return &client{
		conn:   conn,
		remote: remote,
		logger: logger.With("remote", remote),
		send:   make(chan []byte, sendBufferSize),
	}
}

// enqueue - queues a message without blocking; false means the client is too slow or already closed.
func (that *client) enqueue(data []byte) bool {
	that.sendMutex.Lock()
	defer that.sendMutex.Unlock()

	if that.closed {
		return false
	}

	select {
	case that.send <- data:
		return true
	default:
		return false
	}
}

// close - stops the write pump; later enqueues are refused.
func (that *client) close() {
	that.sendMutex.Lock()
	defer that.sendMutex.Unlock()

	if that.closed {
		return
	}

	that.closed = true
	close(that.send)
}

// readPump - reads messages until the connection fails and hands each one to onMessage.
func (that *client) readPump(onMessage func(data []byte)) {
	that.conn.SetReadLimit(maxMessageSize)
	_ = that.conn.SetReadDeadline(time.Now().Add(pongWait))
	that.conn.SetPongHandler(func(string) error {
		return that.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := that.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				that.logger.Warn("unexpected close", "error", err)
			}

			return
		}

		onMessage(data)
	}
}

// writePump - writes queued messages and pings until the send channel is closed.
func (that *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = that.conn.Close()
	}()

	for {
		select {
		case data, ok := <-that.send:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = that.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := that.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				that.logger.Error("failed to write message", "error", err)
				return
			}
		case <-ticker.C:
			_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := that.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
