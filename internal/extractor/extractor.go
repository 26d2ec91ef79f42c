package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/MikeSquared-Agency/prefsd/internal/console"
	"github.com/MikeSquared-Agency/prefsd/internal/llm"
	"github.com/MikeSquared-Agency/prefsd/internal/preferences"
	"github.com/MikeSquared-Agency/prefsd/internal/transcript"
	"github.com/MikeSquared-Agency/prefsd/internal/usage"
)

// Temperature is fixed so parsing sees deterministic output.
const Temperature = 0.0

// Extractor runs the language and rules analyses over a transcript.
type Extractor struct {
	factory      llm.Factory
	defaultModel string
	logger       *slog.Logger
	console      *console.Printer
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithConsole prints prompts, raw output and usage for every analysis.
func WithConsole(p *console.Printer) Option {
	return func(e *Extractor) { e.console = p }
}

func New(factory llm.Factory, defaultModel string, logger *slog.Logger, opts ...Option) *Extractor {
	e := &Extractor{factory: factory, defaultModel: defaultModel, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DefaultModel is the model name used for the zero llm.Model.
func (e *Extractor) DefaultModel() string { return e.defaultModel }

// AnalysisResult is the output of a single analysis: a delta touching only
// the fields that analysis owns, plus the usage of its model call.
type AnalysisResult struct {
	Messages    []transcript.Message
	Preferences preferences.Preferences
	Usage       usage.Usage
}

// Result is the merged output of Run.
type Result struct {
	Messages    []transcript.Message    `json:"messages" yaml:"messages"`
	Preferences preferences.Preferences `json:"user_preferences" yaml:"user_preferences"`
	Usage       usage.Usage             `json:"usage" yaml:"usage"`
}

type analysis struct {
	name   string
	build  func([]transcript.Message) (string, error)
	parse  func(text string, logger *slog.Logger) preferences.Preferences
	logger *slog.Logger
}

func (e *Extractor) languageAnalysis() analysis {
	return analysis{
		name:   "analyze-language",
		build:  BuildLanguagePrompt,
		parse:  ParseLanguage,
		logger: e.logger.With("analysis", "language"),
	}
}

func (e *Extractor) rulesAnalysis() analysis {
	return analysis{
		name:  "rules-and-memories",
		build: BuildRulesPrompt,
		parse: func(text string, _ *slog.Logger) preferences.Preferences {
			return ParseRulesAndMemories(text)
		},
		logger: e.logger.With("analysis", "rules_and_memories"),
	}
}

// AnalyzeLanguage extracts the preferred language.
func (e *Extractor) AnalyzeLanguage(ctx context.Context, msgs []transcript.Message, model llm.Model) (*AnalysisResult, error) {
	c, err := model.Resolve(e.factory, e.defaultModel)
	if err != nil {
		return nil, err
	}
	return e.analyze(ctx, e.languageAnalysis(), msgs, c)
}

// AnalyzeRulesAndMemories extracts standing rules, facts and memories.
func (e *Extractor) AnalyzeRulesAndMemories(ctx context.Context, msgs []transcript.Message, model llm.Model) (*AnalysisResult, error) {
	c, err := model.Resolve(e.factory, e.defaultModel)
	if err != nil {
		return nil, err
	}
	return e.analyze(ctx, e.rulesAnalysis(), msgs, c)
}

// Run resolves model once, runs both analyses concurrently and merges them.
// If either analysis fails the run fails and the other result is discarded.
func (e *Extractor) Run(ctx context.Context, msgs []transcript.Message, model llm.Model) (*Result, error) {
	c, err := model.Resolve(e.factory, e.defaultModel)
	if err != nil {
		return nil, err
	}

	analyses := []analysis{e.languageAnalysis(), e.rulesAnalysis()}
	results := make([]*AnalysisResult, len(analyses))

	g, gctx := errgroup.WithContext(ctx)
	for i, a := range analyses {
		g.Go(func() error {
			r, err := e.analyze(gctx, a, msgs, c)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Fold in dispatch order: language, then rules.
	merged := preferences.Preferences{}
	var total usage.Usage
	for _, r := range results {
		merged = merged.Merge(r.Preferences)
		total = total.Add(r.Usage)
	}

	e.logger.Info("preferences extracted",
		"messages", len(msgs),
		"fields", merged.SetFields(),
		"rules", len(merged.RulesAndMemories),
		"total_tokens", total.TotalTokens,
	)

	return &Result{
		Messages:    slices.Clone(msgs),
		Preferences: merged,
		Usage:       total,
	}, nil
}

func (e *Extractor) analyze(ctx context.Context, a analysis, msgs []transcript.Message, c llm.Completer) (*AnalysisResult, error) {
	prompt, err := a.build(msgs)
	if err != nil {
		return nil, fmt.Errorf("%s: build prompt: %w", a.name, err)
	}
	e.console.Panel("LLM INSTRUCTIONS", prompt)

	a.logger.Debug("calling model", "prompt_len", len(prompt))

	out, err := c.Complete(ctx, prompt, Temperature)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", a.name, err)
	}

	e.console.Panel("LLM OUTPUT", out.Text)
	e.console.JSONPanel("LLM USAGE", out.Usage)

	return &AnalysisResult{
		Messages:    msgs,
		Preferences: a.parse(out.Text, a.logger),
		Usage:       out.Usage,
	}, nil
}
