package chat

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestValidateAuthor(t *testing.T) {
	tests := []struct {
		name    string
		author  string
		wantErr error
	}{
		{"valid name", "Alice", nil},
		{"single rune", "A", nil},
		{"max length", strings.Repeat("x", 32), nil},
		{"multibyte runes count as one", strings.Repeat("ü", 32), nil},
		{"empty", "", ErrAuthorEmpty},
		{"too long", strings.Repeat("x", 33), ErrAuthorTooLong},
		{"too long multibyte", strings.Repeat("ü", 33), ErrAuthorTooLong},
		{"invalid utf-8", string([]byte{0xff, 0xfe}), ErrAuthorInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAuthor(tt.author)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateAuthor(%q) = %v, want %v", tt.author, err, tt.wantErr)
			}
		})
	}
}

func TestValidateContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"valid", "found the cache behind the statue", nil},
		{"empty", "", ErrContentEmpty},
		{"invalid utf-8", string([]byte{0xc0}), ErrContentInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContent(tt.content)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateContent(%q) = %v, want %v", tt.content, err, tt.wantErr)
			}
		})
	}
}

func TestFrameWireFormat(t *testing.T) {
	msg := Message{
		ID:        "abc",
		Level:     3,
		Author:    "Alice",
		Content:   "hi",
		CreatedAt: time.Now(),
	}

	data, err := json.Marshal(msg.Frame())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	// The wire frame carries exactly username and message.
	want := `{"username":"Alice","message":"hi"}`
	if string(data) != want {
		t.Errorf("frame JSON = %s, want %s", data, want)
	}

	var decoded Frame
	if err := json.Unmarshal([]byte(`{"username":"Bob","message":"hello"}`), &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.Username != "Bob" || decoded.Message != "hello" {
		t.Errorf("decoded frame = %+v", decoded)
	}
}

func TestFrames(t *testing.T) {
	msgs := []Message{
		{Author: "Alice", Content: "one"},
		{Author: "Bob", Content: "two"},
	}

	frames := Frames(msgs)
	if len(frames) != 2 {
		t.Fatalf("Frames() returned %d frames, want 2", len(frames))
	}
	if frames[0].Username != "Alice" || frames[1].Message != "two" {
		t.Errorf("Frames() = %+v", frames)
	}

	if got := Frames(nil); len(got) != 0 {
		t.Errorf("Frames(nil) returned %d frames, want 0", len(got))
	}
}
