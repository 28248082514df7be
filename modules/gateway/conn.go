package gateway

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"

	domain "github.com/example/hunt-chat/domain/chat"
)

// writeWait bounds how long one outbound frame may block on a stalled
// client before the connection is treated as dead.
const writeWait = 10 * time.Second

var errConnClosed = errors.New("connection closed")

// wireConn is the slice of the WebSocket transport the adapter writes
// through. *websocket.Conn satisfies it.
type wireConn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
}

// wsConn adapts one WebSocket session to the chat.Conn interface. A
// write mutex serializes outbound frames and a closed flag guarantees
// no write touches the transport after the read loop reported closure.
type wsConn struct {
	conn wireConn

	mu     sync.Mutex
	closed bool
}

func newWSConn(conn *websocket.Conn) *wsConn {
	return &wsConn{conn: conn}
}

// WriteMessage serializes msg to the wire format and sends it. The
// write deadline keeps a full TCP buffer on one client from stalling
// its room's broadcast loop; a timed-out write surfaces as an error
// and the connection is reaped like any other dead transport.
func (c *wsConn) WriteMessage(msg domain.Message) error {
	data, err := json.Marshal(msg.Frame())
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errConnClosed
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// markClosed stops all future writes. Called exactly once, by the read
// loop, before the connection leaves its room.
func (c *wsConn) markClosed() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}
