package service

import (
	"context"
	"errors"
	"testing"

	"github.com/raphaelgruber/srsbot/internal/metrics"
	"github.com/raphaelgruber/srsbot/internal/models"
	"github.com/raphaelgruber/srsbot/internal/prompts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTranscript(t *testing.T) {
	turns := []models.Turn{
		models.UserTurn("We need a booking app"),
		models.AssistantTurn("Who are the users?"),
		{Role: models.RoleSystem, Text: "note"},
	}
	assert.Equal(t,
		"user: We need a booking app\nassistant: Who are the users?\nsystem: note",
		FormatTranscript(turns))
	assert.Empty(t, FormatTranscript(nil))
}

func TestSynthesizeEmbedsTranscript(t *testing.T) {
	model := &fakeModel{genReply: "1. Introduction\nA booking app."}
	mc := metrics.NewCollector()
	s := NewSynthesizer(model, prompts.Set{System: "sys", Synthesis: "Write an SRS for:\n{{transcript}}\nEnd."}, mc)

	out, err := s.Synthesize(context.Background(), []models.Turn{models.UserTurn("booking app")})
	require.NoError(t, err)
	assert.Equal(t, "1. Introduction\nA booking app.", out)

	require.Len(t, model.prompts, 1)
	assert.Equal(t, "Write an SRS for:\nuser: booking app\nEnd.", model.prompts[0])
	assert.Empty(t, model.chatHistories, "synthesis is single-shot")
	assert.NotNil(t, mc.Snapshot().DocumentSynthesize)
}

func TestSynthesizeFailures(t *testing.T) {
	tests := []struct {
		name  string
		model *fakeModel
	}{
		{"model error", &fakeModel{genErr: errors.New("upstream down")}},
		{"empty output", &fakeModel{genReply: ""}},
		{"whitespace output", &fakeModel{genReply: " \n "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSynthesizer(tt.model, prompts.Default(), nil)
			_, err := s.Synthesize(context.Background(), nil)
			assert.ErrorIs(t, err, ErrSynthesisFailed)
		})
	}
}
