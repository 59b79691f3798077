// Package llm wraps the language model behind a small, substitutable interface.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/raphaelgruber/srsbot/internal/config"
	"github.com/raphaelgruber/srsbot/internal/metrics"
	"github.com/raphaelgruber/srsbot/internal/models"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/bedrock"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Client is the text-completion capability the chat service depends on.
type Client interface {
	// Chat continues a conversation: system instruction, prior turns, then input
	// as the newest user message. Returns the assistant reply.
	Chat(ctx context.Context, system string, history []models.Turn, input string) (string, error)

	// Generate performs a single-shot completion of prompt with no history.
	Generate(ctx context.Context, prompt string) (string, error)
}

// Model wraps langchaingo LLM for text generation.
type Model struct {
	llm         llms.Model
	modelName   string
	temperature float64
	metrics     *metrics.Collector
}

// Compile-time check that Model implements Client.
var _ Client = (*Model)(nil)

// NewModel creates an LLM model based on configuration.
func NewModel(ctx context.Context, cfg config.Config, mc *metrics.Collector) (*Model, error) {
	var model llms.Model
	var err error

	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key required")
		}
		model, err = anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}

	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(cfg.LLMModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	case config.ProviderBedrock:
		awsCfg, awsErr := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if awsErr != nil {
			return nil, fmt.Errorf("load aws config: %w", awsErr)
		}
		model, err = bedrock.New(
			bedrock.WithClient(bedrockruntime.NewFromConfig(awsCfg)),
			bedrock.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create bedrock model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}

	return newModel(model, cfg.LLMModel, cfg.LLMTemperature, mc), nil
}

// newModel wraps an already constructed langchaingo model.
func newModel(model llms.Model, name string, temperature float64, mc *metrics.Collector) *Model {
	return &Model{
		llm:         model,
		modelName:   name,
		temperature: temperature,
		metrics:     mc,
	}
}

// Chat implements Client.
func (m *Model) Chat(ctx context.Context, system string, history []models.Turn, input string) (string, error) {
	messages := make([]llms.MessageContent, 0, len(history)+2)
	if system != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, system))
	}
	for _, turn := range history {
		messages = append(messages, llms.TextParts(messageType(turn.Role), turn.Text))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, input))

	text, err := m.generate(ctx, metrics.OpLLMChat, messages)
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}
	return text, nil
}

// Generate implements Client.
func (m *Model) Generate(ctx context.Context, prompt string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	text, err := m.generate(ctx, metrics.OpLLMGenerate, messages)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return text, nil
}

// Model returns the LLM model name.
func (m *Model) Model() string {
	return m.modelName
}

func (m *Model) generate(ctx context.Context, op string, messages []llms.MessageContent) (string, error) {
	start := time.Now()
	response, err := m.llm.GenerateContent(ctx, messages, llms.WithTemperature(m.temperature))
	duration := time.Since(start)

	if err != nil {
		slog.Warn("model call failed", "op", op, "model", m.modelName, "duration_ms", duration.Milliseconds(), "error", err)
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}

	choice := response.Choices[0]
	in, out := tokenUsage(choice.GenerationInfo)
	m.metrics.RecordLLMUsage(op, duration, in, out)

	slog.Debug("model call complete", "op", op, "model", m.modelName, "duration_ms", duration.Milliseconds(),
		"input_tokens", in, "output_tokens", out)
	return choice.Content, nil
}

// messageType maps a transcript role onto the langchaingo message type.
func messageType(r models.Role) llms.ChatMessageType {
	switch r {
	case models.RoleAssistant:
		return llms.ChatMessageTypeAI
	case models.RoleSystem:
		return llms.ChatMessageTypeSystem
	default:
		return llms.ChatMessageTypeHuman
	}
}

// tokenUsage reads token counts from provider generation info.
// OpenAI reports PromptTokens/CompletionTokens, Anthropic InputTokens/OutputTokens.
func tokenUsage(info map[string]any) (in, out int64) {
	in = firstInt(info, "PromptTokens", "InputTokens")
	out = firstInt(info, "CompletionTokens", "OutputTokens")
	return in, out
}

func firstInt(info map[string]any, keys ...string) int64 {
	for _, k := range keys {
		switch v := info[k].(type) {
		case int:
			return int64(v)
		case int32:
			return int64(v)
		case int64:
			return v
		case float64:
			return int64(v)
		}
	}
	return 0
}
