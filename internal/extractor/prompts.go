package extractor

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/MikeSquared-Agency/prefsd/internal/locale"
	"github.com/MikeSquared-Agency/prefsd/internal/transcript"
)

// PromptVersion changes whenever a template's few-shot output grammar changes.
// The parsers in parser.go must accept exactly what the templates teach.
const PromptVersion = "2"

// ErrTemplate is returned when a template cannot be parsed or references a
// variable the caller did not supply.
var ErrTemplate = errors.New("prompt template")

//go:embed templates/language.tmpl
var languageTemplate string

//go:embed templates/rules.tmpl
var rulesTemplate string

// RenderPrompt executes tmpl against data. Unknown keys are errors rather
// than "<no value>".
func RenderPrompt(name, tmpl string, data map[string]any) (string, error) {
	t, err := template.New(name).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("%w %s: %v", ErrTemplate, name, err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w %s: %v", ErrTemplate, name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// BuildLanguagePrompt renders the language-analysis prompt for msgs.
func BuildLanguagePrompt(msgs []transcript.Message) (string, error) {
	return RenderPrompt("language", languageTemplate, map[string]any{
		"LanguageCodes": strings.Join(locale.LanguageCodes(), ", "),
		"Transcript":    transcript.Render(msgs),
	})
}

// BuildRulesPrompt renders the rules-and-memories prompt for msgs.
func BuildRulesPrompt(msgs []transcript.Message) (string, error) {
	return RenderPrompt("rules", rulesTemplate, map[string]any{
		"Transcript": transcript.Render(msgs),
	})
}
