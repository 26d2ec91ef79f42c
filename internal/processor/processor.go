package processor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/prefsd/internal/extractor"
	"github.com/MikeSquared-Agency/prefsd/internal/hermes"
	"github.com/MikeSquared-Agency/prefsd/internal/llm"
	"github.com/MikeSquared-Agency/prefsd/internal/transcript"
)

// Runner is the extraction pipeline.
type Runner interface {
	Run(ctx context.Context, msgs []transcript.Message, model llm.Model) (*extractor.Result, error)
}

// Publisher emits extraction outcomes.
type Publisher interface {
	PublishPreferences(evt hermes.PreferencesEvent) error
	PublishFailure(evt hermes.FailureEvent) error
}

// Processor connects transcript events to the extraction pipeline.
type Processor struct {
	runner    Runner
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func New(runner Runner, publisher Publisher, logger *slog.Logger) *Processor {
	return &Processor{
		runner:    runner,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// HandleTranscriptSubmitted is the NATS handler for prefs.transcript.submitted.
func (p *Processor) HandleTranscriptSubmitted(subject string, data []byte) {
	ctx := context.Background()

	evt, err := hermes.DecodeTranscriptEvent(data)
	if err != nil {
		p.logger.Error("failed to parse transcript event", "subject", subject, "error", err)
		return
	}

	p.logger.Info("processing transcript",
		"session_ref", evt.SessionRef,
		"owner", evt.OwnerUUID,
		"messages", len(evt.Messages),
	)

	if _, err := p.Process(ctx, evt); err != nil {
		p.logger.Error("preference extraction failed", "session_ref", evt.SessionRef, "error", err)
	}
}

// Process runs the pipeline for evt and publishes the outcome. The returned
// event is nil when extraction failed.
func (p *Processor) Process(ctx context.Context, evt hermes.TranscriptEvent) (*hermes.PreferencesEvent, error) {
	msgs, err := evt.Transcript()
	if err != nil {
		p.publishFailure(evt, err)
		return nil, err
	}

	result, err := p.runner.Run(ctx, msgs, llm.Named(evt.Model))
	if err != nil {
		p.publishFailure(evt, err)
		return nil, fmt.Errorf("run extraction: %w", err)
	}

	out := hermes.PreferencesEvent{
		ID:          uuid.New(),
		SessionRef:  evt.SessionRef,
		OwnerUUID:   evt.OwnerUUID,
		Preferences: result.Preferences,
		Usage:       result.Usage,
		ExtractedAt: p.now().UTC(),
	}
	if err := p.publisher.PublishPreferences(out); err != nil {
		return nil, fmt.Errorf("publish preferences: %w", err)
	}

	p.logger.Info("transcript processed",
		"session_ref", evt.SessionRef,
		"id", out.ID,
		"fields", result.Preferences.SetFields(),
		"total_tokens", result.Usage.TotalTokens,
	)
	return &out, nil
}

func (p *Processor) publishFailure(evt hermes.TranscriptEvent, cause error) {
	if err := p.publisher.PublishFailure(hermes.FailureEvent{
		ID:         uuid.New(),
		SessionRef: evt.SessionRef,
		OwnerUUID:  evt.OwnerUUID,
		Error:      cause.Error(),
		FailedAt:   p.now().UTC(),
	}); err != nil {
		p.logger.Error("failed to publish failure event", "session_ref", evt.SessionRef, "error", err)
	}
}
