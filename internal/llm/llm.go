// Package llm defines the boundary between the extraction pipeline and a
// text-generation backend.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MikeSquared-Agency/prefsd/internal/usage"
)

// ErrEmptyPrompt is returned before any network call when the prompt is blank.
var ErrEmptyPrompt = errors.New("empty prompt")

// Completion is the text produced for one prompt plus its token accounting.
type Completion struct {
	Text  string
	Usage usage.Usage
}

// Completer turns a prompt into a completion.
type Completer interface {
	Complete(ctx context.Context, prompt string, temperature float64) (Completion, error)
}

// Factory builds a Completer for a bare model name.
type Factory func(name string) (Completer, error)

// Model is either a prebuilt Completer or a model name to be resolved through
// a Factory. The zero Model resolves to the factory's default name.
type Model struct {
	client Completer
	name   string
}

// Prebuilt wraps an existing client.
func Prebuilt(c Completer) Model { return Model{client: c} }

// Named refers to a model by name.
func Named(name string) Model { return Model{name: strings.TrimSpace(name)} }

// Name returns the model name, or "" for prebuilt clients and the zero Model.
func (m Model) Name() string { return m.name }

// IsPrebuilt reports whether m carries its own client.
func (m Model) IsPrebuilt() bool { return m.client != nil }

// Resolve returns the Completer for m. defaultName is used when m is the zero Model.
func (m Model) Resolve(factory Factory, defaultName string) (Completer, error) {
	if m.client != nil {
		return m.client, nil
	}
	name := m.name
	if name == "" {
		name = defaultName
	}
	if name == "" {
		return nil, errors.New("resolve model: no model name")
	}
	if factory == nil {
		return nil, fmt.Errorf("resolve model %q: no factory configured", name)
	}
	c, err := factory(name)
	if err != nil {
		return nil, fmt.Errorf("resolve model %q: %w", name, err)
	}
	return c, nil
}

// APIError is a non-success response from a provider.
type APIError struct {
	Provider   string
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("%s api error %d: %s: %s", e.Provider, e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("%s api error %d: %s", e.Provider, e.StatusCode, e.Message)
}

// ValidatePrompt is shared by Completer implementations.
func ValidatePrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return ErrEmptyPrompt
	}
	return nil
}
