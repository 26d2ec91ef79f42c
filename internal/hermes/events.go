package hermes

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/prefsd/internal/preferences"
	"github.com/MikeSquared-Agency/prefsd/internal/transcript"
	"github.com/MikeSquared-Agency/prefsd/internal/usage"
)

// ErrNoTranscript is returned for a submitted event with neither messages nor text.
var ErrNoTranscript = errors.New("event carries neither messages nor text")

// TranscriptEvent is the payload of prefs.transcript.submitted. Either
// Messages or Text (the "role:\ncontent" form) must be present.
type TranscriptEvent struct {
	SessionRef string               `json:"session_ref"`
	OwnerUUID  string               `json:"owner_uuid,omitempty"`
	Model      string               `json:"model,omitempty"`
	Messages   []transcript.Message `json:"messages,omitempty"`
	Text       string               `json:"text,omitempty"`
}

// Transcript returns the event's messages, parsing Text when no structured
// messages were sent.
func (e TranscriptEvent) Transcript() ([]transcript.Message, error) {
	if len(e.Messages) > 0 {
		return e.Messages, nil
	}
	if e.Text != "" {
		return transcript.ParseText(e.Text)
	}
	return nil, ErrNoTranscript
}

// DecodeTranscriptEvent unmarshals a prefs.transcript.submitted payload.
func DecodeTranscriptEvent(data []byte) (TranscriptEvent, error) {
	var evt TranscriptEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return TranscriptEvent{}, fmt.Errorf("decode transcript event: %w", err)
	}
	return evt, nil
}

// PreferencesEvent is published on prefs.preferences.extracted.
type PreferencesEvent struct {
	ID          uuid.UUID               `json:"id"`
	SessionRef  string                  `json:"session_ref"`
	OwnerUUID   string                  `json:"owner_uuid,omitempty"`
	Preferences preferences.Preferences `json:"user_preferences"`
	Usage       usage.Usage             `json:"usage"`
	ExtractedAt time.Time               `json:"extracted_at"`
}

// FailureEvent is published on prefs.preferences.failed.
type FailureEvent struct {
	ID         uuid.UUID `json:"id"`
	SessionRef string    `json:"session_ref"`
	OwnerUUID  string    `json:"owner_uuid,omitempty"`
	Error      string    `json:"error"`
	FailedAt   time.Time `json:"failed_at"`
}

// Registration announces a running prefsd instance.
type Registration struct {
	Timestamp string `json:"timestamp"`
	Port      int    `json:"port"`
	Version   string `json:"version"`
	Model     string `json:"model"`
}
