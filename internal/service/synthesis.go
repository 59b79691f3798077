package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/raphaelgruber/srsbot/internal/llm"
	"github.com/raphaelgruber/srsbot/internal/metrics"
	"github.com/raphaelgruber/srsbot/internal/models"
	"github.com/raphaelgruber/srsbot/internal/prompts"
)

// FormatTranscript renders turns as one "<role>: <text>" line per turn.
func FormatTranscript(turns []models.Turn) string {
	var b strings.Builder
	for i, turn := range turns {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(string(turn.Role))
		b.WriteString(": ")
		b.WriteString(turn.Text)
	}
	return b.String()
}

// Synthesizer turns a conversation into raw SRS text with a single-shot
// model call.
type Synthesizer struct {
	model   llm.Client
	prompts prompts.Set
	metrics *metrics.Collector
}

// NewSynthesizer creates a synthesizer.
func NewSynthesizer(model llm.Client, p prompts.Set, mc *metrics.Collector) *Synthesizer {
	return &Synthesizer{
		model:   model,
		prompts: p,
		metrics: mc,
	}
}

// Synthesize asks the model for an SRS covering turns and returns its output
// verbatim. Structure is not validated here.
func (s *Synthesizer) Synthesize(ctx context.Context, turns []models.Turn) (string, error) {
	start := time.Now()
	prompt := s.prompts.SynthesisFor(FormatTranscript(turns))

	text, err := s.model.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSynthesisFailed, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: model returned no text", ErrSynthesisFailed)
	}

	s.metrics.RecordTiming(metrics.OpDocumentSynthesize, time.Since(start))
	slog.Debug("document synthesized", "turns", len(turns), "chars", len(text))
	return text, nil
}
