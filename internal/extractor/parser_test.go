package extractor

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/prefsd/internal/locale"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		name string
		text string
		want locale.Language
	}{
		{"plain", "language:\n[French](#fr)", "fr"},
		{"few-shot suffix", "language: [English](#en)  # done", "en"},
		{"whitespace around hash", "[Japanese]( # ja )", "ja"},
		{"first match wins", "[German](#de) or maybe [Spanish](#es)", "de"},
		{"code fallback to display name", "[Français](#xx-unknown)", "fr"},
		{"display name in code slot", "[fr](#French)", "fr"},
		{"region subtag", "[Portuguese](#pt-BR)", "pt"},
		{"current code for legacy entry", "[Norwegian](#nb)", "no"},
		{"neighbour code falls back to name", "[German](#gsw)", "de"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLanguage(tt.text, discardLogger())
			require.NotNil(t, got.Language)
			assert.Equal(t, tt.want, *got.Language)
			assert.Equal(t, []string{"language"}, got.SetFields())
		})
	}
}

func TestParseLanguage_Misses(t *testing.T) {
	for _, text := range []string{
		"",
		"The user prefers French.",
		"[Klingon](#tlh-xx)",
		"[Breton](#br)",
		"[Faroese](#fo)",
	} {
		got := ParseLanguage(text, discardLogger())
		assert.Nil(t, got.Language, "text %q", text)
		assert.True(t, got.IsEmpty(), "text %q", text)
	}
}

func TestParseLanguage_Idempotent(t *testing.T) {
	text := "analysis:\nlanguage: [Japanese](#ja)"
	assert.Equal(t, ParseLanguage(text, discardLogger()), ParseLanguage(text, discardLogger()))
}

func TestFindLanguageTag(t *testing.T) {
	tag, ok := FindLanguageTag("language: [ Traditional Chinese ](#zh-TW)")
	require.True(t, ok)
	assert.Equal(t, LanguageTag{Name: "Traditional Chinese", Code: "zh-TW"}, tag)

	_, ok = FindLanguageTag("[English] (en)")
	assert.False(t, ok)
}

func TestParseRules(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"two rules", "rule: Likes blue.\nrule: Lives in London.", []string{"Likes blue.", "Lives in London."}},
		{"none sentinel", "rule: None", []string{}},
		{"null sentinel any case", "RULE:   NULL  ", []string{}},
		{"none among others is kept", "rule: None\nrule: Likes tea.", []string{"None", "Likes tea."}},
		{"no matches", "I could not find anything.", []string{}},
		{"duplicates kept", "rule: Be brief.\nrule: Be brief.", []string{"Be brief.", "Be brief."}},
		{"ignores indented and trailing text", "analysis:\nrule: Uses metric.\n[DONE]\n  rule: not at line start", []string{"Uses metric."}},
		{"crlf", "rule: A\r\nrule: B\r\n", []string{"A", "B"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseRules(tt.text)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRulesAndMemories_OnlyTouchesRules(t *testing.T) {
	got := ParseRulesAndMemories("rule: The user is in London.\n[Japanese](#ja)")
	assert.Nil(t, got.Language)
	assert.Nil(t, got.City)
	assert.Equal(t, []string{"The user is in London."}, got.RulesAndMemories)
}
