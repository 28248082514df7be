package chat

// Frame is the wire shape of a chat message, identical for inbound
// client frames, live broadcasts, history replay and the bootstrap
// history embedded in the rendered level page:
//
//	{"username": "...", "message": "..."}
type Frame struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

// Frame converts a stored message to its wire shape.
func (m Message) Frame() Frame {
	return Frame{Username: m.Author, Message: m.Content}
}

// Frames converts a message sequence to wire shapes, preserving order.
func Frames(msgs []Message) []Frame {
	out := make([]Frame, len(msgs))
	for i, m := range msgs {
		out[i] = m.Frame()
	}
	return out
}
