package transcript

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// jsonlLine is one event in a conversation log with parent links.
type jsonlLine struct {
	Type       string       `json:"type"`
	UUID       string       `json:"uuid"`
	ParentUUID *string      `json:"parentUuid"`
	Timestamp  string       `json:"timestamp"`
	Message    jsonlMessage `json:"message"`
}

type jsonlMessage struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// ParseJSONLFile parses a conversation JSONL file into messages.
func ParseJSONLFile(path string) ([]Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()
	return ParseJSONL(f)
}

// ParseJSONL reads user and assistant events, orders them by following
// parentUuid links from each root, and drops tool results and non-text blocks.
func ParseJSONL(r io.Reader) ([]Message, error) {
	byUUID := make(map[string]*jsonlLine)
	var roots []string
	children := make(map[string]string) // parent → child (single chain)
	var arrival []string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 10*1024*1024)
	for scanner.Scan() {
		var line jsonlLine
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			continue // skip malformed lines
		}
		if line.Type != RoleUser && line.Type != RoleAssistant {
			continue
		}

		byUUID[line.UUID] = &line
		arrival = append(arrival, line.UUID)
		if line.ParentUUID == nil || *line.ParentUUID == "" {
			roots = append(roots, line.UUID)
		} else {
			children[*line.ParentUUID] = line.UUID
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	if len(byUUID) == 0 {
		return nil, nil
	}

	var ordered []*jsonlLine
	visited := make(map[string]bool, len(byUUID))
	for _, rootID := range roots {
		for current := rootID; current != "" && !visited[current]; current = children[current] {
			if line, ok := byUUID[current]; ok {
				ordered = append(ordered, line)
				visited[current] = true
			}
		}
	}
	// Orphans whose parent is missing are appended in file order.
	for _, id := range arrival {
		if !visited[id] {
			ordered = append(ordered, byUUID[id])
			visited[id] = true
		}
	}

	var msgs []Message
	for _, line := range ordered {
		text, isToolResult := extractText(line.Message.Content)
		if isToolResult || text == "" {
			continue
		}

		msg := Message{Role: line.Type, Content: text}
		if ts, err := time.Parse(time.RFC3339Nano, line.Timestamp); err == nil {
			unix := ts.Unix()
			msg.CreatedAt = &unix
		}
		msgs = append(msgs, msg)
	}

	return msgs, nil
}

// extractText returns the text of a message and whether it was a tool_result.
func extractText(content json.RawMessage) (string, bool) {
	if content == nil {
		return "", false
	}

	var plain string
	if err := json.Unmarshal(content, &plain); err == nil {
		return plain, false
	}

	var blocks []contentBlock
	if err := json.Unmarshal(content, &blocks); err != nil {
		return "", false
	}

	for _, b := range blocks {
		if b.Type == "tool_result" {
			return "", true
		}
	}

	var text string
	for _, b := range blocks {
		if b.Type == "text" && b.Text != "" {
			if text != "" {
				text += "\n"
			}
			text += b.Text
		}
	}
	return text, false
}
