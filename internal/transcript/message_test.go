package transcript

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	msgs := []Message{
		{Role: RoleUser, Content: "Hello, I'm John Doe."},
		{Role: RoleAssistant, Content: "Hello, John Doe. How can I help you today?\n"},
	}
	want := "user:\nHello, I'm John Doe.\n\nassistant:\nHello, John Doe. How can I help you today?"
	if got := Render(msgs); got != want {
		t.Errorf("Render =\n%q\nwant\n%q", got, want)
	}
}

func TestRender_Empty(t *testing.T) {
	if got := Render(nil); got != "" {
		t.Errorf("expected empty render, got %q", got)
	}
}

func TestParseText_RoundTrip(t *testing.T) {
	msgs := []Message{
		{Role: RoleUser, Content: "Could you speak in Japanese?"},
		{Role: RoleAssistant, Content: "OK, I will speak in Japanese next time.\nAnything else?"},
		{Role: "tool", Content: "weather: sunny"},
	}
	parsed, err := ParseText(Render(msgs))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(parsed) != len(msgs) {
		t.Fatalf("expected %d messages, got %d", len(msgs), len(parsed))
	}
	for i := range msgs {
		if parsed[i].Role != msgs[i].Role || parsed[i].Content != msgs[i].Content {
			t.Errorf("msg[%d] = %+v, want %+v", i, parsed[i], msgs[i])
		}
	}
}

func TestParseText_LabelInsideContent(t *testing.T) {
	msgs := []Message{
		{Role: RoleUser, Content: "Save this recipe.\nIngredients:\n- flour\n- eggs"},
		{Role: RoleAssistant, Content: "Saved."},
	}
	parsed, err := ParseText(Render(msgs))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(parsed) != 2 {
		t.Fatalf("expected 2 messages, got %d: %+v", len(parsed), parsed)
	}
	if parsed[0].Content != msgs[0].Content {
		t.Errorf("expected label to stay in content, got %q", parsed[0].Content)
	}
}

func TestParseText_Empty(t *testing.T) {
	if _, err := ParseText("  \n "); !errors.Is(err, ErrEmptyTranscript) {
		t.Errorf("expected ErrEmptyTranscript, got %v", err)
	}
}

func TestParseText_ContentBeforeHeader(t *testing.T) {
	if _, err := ParseText("hello there\nuser:\nhi"); err == nil {
		t.Error("expected error for content before the first role header")
	}
}

func TestDecodeJSON(t *testing.T) {
	in := `[{"role":"user","content":"Please always respond in Spanish.","created_at":1700000000},{"role":"assistant","content":"Entendido."}]`
	msgs, err := DecodeJSON(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].CreatedAt == nil || *msgs[0].CreatedAt != 1700000000 {
		t.Errorf("created_at not decoded: %+v", msgs[0])
	}
	if msgs[0].Time().Year() != 2023 {
		t.Errorf("unexpected time %v", msgs[0].Time())
	}
	if msgs[1].CreatedAt != nil || !msgs[1].Time().IsZero() {
		t.Errorf("expected unset created_at, got %+v", msgs[1])
	}
}

func TestDecodeJSON_MissingRole(t *testing.T) {
	if _, err := DecodeJSON(strings.NewReader(`[{"content":"hi"}]`)); err == nil {
		t.Error("expected error for missing role")
	}
}

func TestParseJSONLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.jsonl")

	lines := []string{
		`{"type":"user","uuid":"aaa","parentUuid":null,"timestamp":"2026-02-11T10:00:00Z","message":{"role":"user","content":"I'm in London."}}`,
		`{"type":"summary","uuid":"zzz"}`,
		`not json`,
		`{"type":"assistant","uuid":"bbb","parentUuid":"aaa","timestamp":"2026-02-11T10:00:05Z","message":{"role":"assistant","content":[{"type":"thinking","thinking":"hmm"},{"type":"text","text":"Noted."}]}}`,
		`{"type":"user","uuid":"ccc","parentUuid":"bbb","timestamp":"2026-02-11T10:00:06Z","message":{"role":"user","content":[{"tool_use_id":"t1","type":"tool_result","content":"ok"}]}}`,
		`{"type":"user","uuid":"ddd","parentUuid":"ccc","timestamp":"2026-02-11T10:00:10Z","message":{"role":"user","content":"Use metric units."}}`,
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	msgs, err := ParseJSONLFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d: %+v", len(msgs), msgs)
	}
	if msgs[0].Content != "I'm in London." || msgs[1].Content != "Noted." || msgs[2].Content != "Use metric units." {
		t.Errorf("unexpected contents: %+v", msgs)
	}
	if msgs[0].CreatedAt == nil {
		t.Error("expected timestamp to be parsed")
	}
}

func TestParseJSONLFile_Missing(t *testing.T) {
	if _, err := ParseJSONLFile(filepath.Join(t.TempDir(), "nope.jsonl")); err == nil {
		t.Error("expected error for missing file")
	}
}
