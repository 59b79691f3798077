package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/raphaelgruber/srsbot/internal/config"
	"github.com/raphaelgruber/srsbot/internal/metrics"
	"github.com/raphaelgruber/srsbot/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/fake"
)

// recordingLLM captures the messages and options sent to the provider.
type recordingLLM struct {
	messages []llms.MessageContent
	opts     llms.CallOptions
	reply    string
	info     map[string]any
	err      error
}

func (r *recordingLLM) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	r.messages = messages
	for _, o := range options {
		o(&r.opts)
	}
	if r.err != nil {
		return nil, r.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: r.reply, GenerationInfo: r.info}},
	}, nil
}

func (r *recordingLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, r, prompt, options...)
}

func text(t *testing.T, m llms.MessageContent) string {
	t.Helper()
	require.Len(t, m.Parts, 1)
	part, ok := m.Parts[0].(llms.TextContent)
	require.True(t, ok, "expected text part, got %T", m.Parts[0])
	return part.Text
}

func TestModelChatBuildsConversation(t *testing.T) {
	rec := &recordingLLM{reply: "What is your budget?"}
	m := newModel(rec, "test-model", 0.7, nil)

	history := []models.Turn{
		models.UserTurn("I want a booking app"),
		models.AssistantTurn("Who are the users?"),
	}
	reply, err := m.Chat(context.Background(), "be helpful", history, "Clinics")
	require.NoError(t, err)
	assert.Equal(t, "What is your budget?", reply)

	require.Len(t, rec.messages, 4)
	assert.Equal(t, llms.ChatMessageTypeSystem, rec.messages[0].Role)
	assert.Equal(t, "be helpful", text(t, rec.messages[0]))
	assert.Equal(t, llms.ChatMessageTypeHuman, rec.messages[1].Role)
	assert.Equal(t, llms.ChatMessageTypeAI, rec.messages[2].Role)
	assert.Equal(t, "Who are the users?", text(t, rec.messages[2]))
	assert.Equal(t, llms.ChatMessageTypeHuman, rec.messages[3].Role)
	assert.Equal(t, "Clinics", text(t, rec.messages[3]))
	assert.InDelta(t, 0.7, rec.opts.Temperature, 1e-9)
}

func TestModelChatWithoutSystemPrompt(t *testing.T) {
	rec := &recordingLLM{reply: "ok"}
	m := newModel(rec, "test-model", 0.7, nil)

	_, err := m.Chat(context.Background(), "", nil, "hello")
	require.NoError(t, err)
	require.Len(t, rec.messages, 1)
	assert.Equal(t, llms.ChatMessageTypeHuman, rec.messages[0].Role)
}

func TestModelGenerateIsSingleShot(t *testing.T) {
	rec := &recordingLLM{reply: "1. Introduction"}
	m := newModel(rec, "test-model", 0.7, nil)

	out, err := m.Generate(context.Background(), "write an SRS")
	require.NoError(t, err)
	assert.Equal(t, "1. Introduction", out)

	require.Len(t, rec.messages, 1)
	assert.Equal(t, llms.ChatMessageTypeHuman, rec.messages[0].Role)
	assert.Equal(t, "write an SRS", text(t, rec.messages[0]))
}

func TestModelPropagatesProviderError(t *testing.T) {
	providerErr := errors.New("connection refused")
	m := newModel(&recordingLLM{err: providerErr}, "test-model", 0.7, nil)

	_, err := m.Chat(context.Background(), "sys", nil, "hi")
	assert.ErrorIs(t, err, providerErr)

	_, err = m.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, providerErr)
}

func TestModelRecordsTokenUsage(t *testing.T) {
	mc := metrics.NewCollector()
	rec := &recordingLLM{reply: "hi", info: map[string]any{"PromptTokens": 12, "CompletionTokens": 3}}
	m := newModel(rec, "test-model", 0.7, mc)

	_, err := m.Chat(context.Background(), "sys", nil, "hello")
	require.NoError(t, err)

	snap := mc.Snapshot().LLMChat
	require.NotNil(t, snap)
	assert.Equal(t, int64(1), snap.Count)
	require.NotNil(t, snap.TotalInputTokens)
	assert.Equal(t, int64(12), *snap.TotalInputTokens)
	assert.Equal(t, int64(3), *snap.TotalOutputTokens)
}

func TestModelWithFakeLLM(t *testing.T) {
	m := newModel(fake.NewFakeLLM([]string{"first reply", "second reply"}), "fake", 0.7, nil)

	first, err := m.Chat(context.Background(), "sys", nil, "hello")
	require.NoError(t, err)
	second, err := m.Generate(context.Background(), "summarize")
	require.NoError(t, err)

	assert.Equal(t, "first reply", first)
	assert.Equal(t, "second reply", second)
	assert.Equal(t, "fake", m.Model())
}

func TestTokenUsage(t *testing.T) {
	tests := []struct {
		name    string
		info    map[string]any
		in, out int64
	}{
		{"nil info", nil, 0, 0},
		{"openai", map[string]any{"PromptTokens": 10, "CompletionTokens": 5}, 10, 5},
		{"anthropic", map[string]any{"InputTokens": 7, "OutputTokens": 2}, 7, 2},
		{"float values", map[string]any{"PromptTokens": 3.0, "CompletionTokens": 1.0}, 3, 1},
		{"unexpected type", map[string]any{"PromptTokens": "ten"}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, out := tokenUsage(tt.info)
			assert.Equal(t, tt.in, in)
			assert.Equal(t, tt.out, out)
		})
	}
}

func TestNewModelValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		wantErr string
	}{
		{"unknown provider", config.Config{LLMProvider: "mystery"}, "unsupported LLM provider"},
		{"openai without key", config.Config{LLMProvider: config.ProviderOpenAI}, "OpenAI API key required"},
		{"anthropic without key", config.Config{LLMProvider: config.ProviderAnthropic}, "Anthropic API key required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewModel(context.Background(), tt.cfg, nil)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestNewModelOllama(t *testing.T) {
	m, err := NewModel(context.Background(), config.Config{
		LLMProvider: config.ProviderOllama,
		LLMModel:    "llama3",
		OllamaHost:  "http://localhost:11434",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "llama3", m.Model())
}
