package hub

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrBufferFull is returned when the outbound queue of a connection is full.
	ErrBufferFull = errors.New("send buffer full")
	// ErrConnectionClosed is returned when sending to a closed connection.
	ErrConnectionClosed = errors.New("connection closed")
)

// Connection is one live real-time channel of an authenticated user.
// Frames queued with Send are drained by a single writer goroutine.
type Connection struct {
	ID          string
	UserID      int64
	Username    string
	ConnectedAt time.Time

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	closeCode   int
	closeReason string
}

// NewConnection creates a connection with an outbound queue of size buffer.
func NewConnection(userID int64, username string, buffer int) *Connection {
	if buffer <= 0 {
		buffer = 1
	}
	return &Connection{
		ID:          uuid.New().String(),
		UserID:      userID,
		Username:    username,
		ConnectedAt: time.Now(),
		send:        make(chan []byte, buffer),
		done:        make(chan struct{}),
	}
}

// Send queues data for the writer without blocking.
func (c *Connection) Send(data []byte) error {
	select {
	case <-c.done:
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return ErrConnectionClosed
	default:
		return ErrBufferFull
	}
}

// SendJSON marshals v and queues it.
func (c *Connection) SendJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Send(data)
}

// Outbound is drained by the connection's writer.
func (c *Connection) Outbound() <-chan []byte {
	return c.send
}

// Done is closed once the connection is closed.
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

// Close marks the connection closed with a normal closure.
// Safe to call more than once. The outbound channel is never closed, so
// senders racing with Close cannot panic.
func (c *Connection) Close() {
	c.CloseWithReason(1000, "")
}

// CloseWithReason marks the connection closed and records the close code
// the writer should send to the peer. Only the first call has effect.
func (c *Connection) CloseWithReason(code int, reason string) {
	c.closeOnce.Do(func() {
		c.closeCode = code
		c.closeReason = reason
		close(c.done)
	})
}

// CloseReason returns the recorded close code and reason. It is only
// meaningful after Done is closed.
func (c *Connection) CloseReason() (int, string) {
	<-c.done
	return c.closeCode, c.closeReason
}

// Closed reports whether Close has been called.
func (c *Connection) Closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}
