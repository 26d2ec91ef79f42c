package transcript

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"
)

// Well-known roles. Role is an open set; other values pass through untouched.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ErrEmptyTranscript is returned when text that must contain a transcript is blank.
var ErrEmptyTranscript = errors.New("empty transcript")

// Message is a single turn in a chat transcript.
type Message struct {
	Role      string `json:"role" yaml:"role"`
	Content   string `json:"content" yaml:"content"`
	CreatedAt *int64 `json:"created_at,omitempty" yaml:"created_at,omitempty"` // unix seconds
}

// Time returns CreatedAt as a time, or the zero time when unset.
func (m Message) Time() time.Time {
	if m.CreatedAt == nil {
		return time.Time{}
	}
	return time.Unix(*m.CreatedAt, 0).UTC()
}

// Render formats messages as "{role}:\n{content}" blocks separated by a blank line.
func Render(msgs []Message) string {
	var sb strings.Builder
	for i, m := range msgs {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(m.Role)
		sb.WriteString(":\n")
		sb.WriteString(strings.TrimSpace(m.Content))
	}
	return sb.String()
}

var roleHeader = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_-]*):\s*$`)

// ParseText is the inverse of Render. A line consisting only of "role:" starts
// a new turn when it opens the text or follows a blank line; everything up to
// the next header is that turn's content.
func ParseText(text string) ([]Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyTranscript
	}

	var (
		msgs    []Message
		current *Message
		body    []string
	)
	flush := func() {
		if current == nil {
			return
		}
		current.Content = strings.TrimSpace(strings.Join(body, "\n"))
		msgs = append(msgs, *current)
		current = nil
		body = nil
	}

	afterBlank := true
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if afterBlank {
			if m := roleHeader.FindStringSubmatch(line); m != nil {
				flush()
				current = &Message{Role: strings.ToLower(m[1])}
				afterBlank = false
				continue
			}
		}
		afterBlank = strings.TrimSpace(line) == ""
		if current == nil {
			if strings.TrimSpace(line) == "" {
				continue
			}
			return nil, fmt.Errorf("parse transcript: content before first role header: %q", line)
		}
		body = append(body, line)
	}
	flush()

	return msgs, nil
}

// DecodeJSON reads a JSON array of {role, content, created_at} records.
func DecodeJSON(r io.Reader) ([]Message, error) {
	var msgs []Message
	if err := json.NewDecoder(r).Decode(&msgs); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}
	for i, m := range msgs {
		if strings.TrimSpace(m.Role) == "" {
			return nil, fmt.Errorf("decode transcript: message %d has no role", i)
		}
	}
	return msgs, nil
}
