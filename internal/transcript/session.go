package transcript

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"time"
)

// sessionLine is one event in a gateway session log. Only "message" events
// carry conversation turns; the role lives on the nested message.
type sessionLine struct {
	Type      string       `json:"type"`
	ID        string       `json:"id"`
	Timestamp string       `json:"timestamp"`
	Message   jsonlMessage `json:"message"`
}

// ParseSessionLogFile parses a gateway session log into messages.
func ParseSessionLogFile(path string) ([]Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()
	return ParseSessionLog(f)
}

// ParseSessionLog keeps user and assistant message events with text content
// and orders them by timestamp. Events without a parseable timestamp sort first
// and otherwise keep file order.
func ParseSessionLog(r io.Reader) ([]Message, error) {
	type item struct {
		msg Message
		ts  time.Time
	}
	var items []item

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 10*1024*1024)
	for scanner.Scan() {
		var line sessionLine
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			continue
		}
		if line.Type != "message" {
			continue
		}
		role := line.Message.Role
		if role != RoleUser && role != RoleAssistant {
			continue
		}

		text, isToolResult := extractText(line.Message.Content)
		if isToolResult || text == "" {
			continue
		}

		it := item{msg: Message{Role: role, Content: text}}
		if ts, err := time.Parse(time.RFC3339Nano, line.Timestamp); err == nil {
			unix := ts.Unix()
			it.msg.CreatedAt = &unix
			it.ts = ts
		}
		items = append(items, it)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	slices.SortStableFunc(items, func(a, b item) int { return a.ts.Compare(b.ts) })

	msgs := make([]Message, len(items))
	for i, it := range items {
		msgs[i] = it.msg
	}
	return msgs, nil
}
