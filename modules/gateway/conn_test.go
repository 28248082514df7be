package gateway

import (
	"errors"
	"testing"
	"time"

	domain "github.com/example/hunt-chat/domain/chat"
)

func TestWSConn_NoWriteAfterClose(t *testing.T) {
	// A nil transport is safe here: the closed flag must short-circuit
	// before the transport is touched.
	conn := newWSConn(nil)
	conn.markClosed()

	err := conn.WriteMessage(domain.Message{Author: "Alice", Content: "hi"})
	if !errors.Is(err, errConnClosed) {
		t.Errorf("WriteMessage() after close = %v, want errConnClosed", err)
	}
}

func TestWSConn_MarkClosedIsIdempotent(t *testing.T) {
	conn := newWSConn(nil)
	conn.markClosed()
	conn.markClosed()

	if err := conn.WriteMessage(domain.Message{}); !errors.Is(err, errConnClosed) {
		t.Errorf("WriteMessage() after close = %v, want errConnClosed", err)
	}
}

// fakeTransport records writes and deadlines set on the wire.
type fakeTransport struct {
	deadline               time.Time
	frames                 [][]byte
	deadlineSetBeforeWrite bool
}

func (f *fakeTransport) SetWriteDeadline(t time.Time) error {
	f.deadline = t
	return nil
}

func (f *fakeTransport) WriteMessage(_ int, data []byte) error {
	f.deadlineSetBeforeWrite = !f.deadline.IsZero()
	f.frames = append(f.frames, data)
	return nil
}

func TestWSConn_WriteSetsDeadline(t *testing.T) {
	transport := &fakeTransport{}
	conn := &wsConn{conn: transport}

	before := time.Now()
	if err := conn.WriteMessage(domain.Message{Author: "Alice", Content: "hi"}); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}

	if !transport.deadlineSetBeforeWrite {
		t.Error("write reached the transport without a deadline set")
	}
	if !transport.deadline.After(before) {
		t.Errorf("deadline = %v, want after %v", transport.deadline, before)
	}
	if got := transport.deadline.Sub(before); got > writeWait+time.Second {
		t.Errorf("deadline %v from now, want about %v", got, writeWait)
	}

	if len(transport.frames) != 1 {
		t.Fatalf("transport received %d frames, want 1", len(transport.frames))
	}
	if want := `{"username":"Alice","message":"hi"}`; string(transport.frames[0]) != want {
		t.Errorf("frame = %s, want %s", transport.frames[0], want)
	}
}
