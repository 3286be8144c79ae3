package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lead-chat/internal/pkg/gemini"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/openai"
	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/ollama/ollama/api"
	"github.com/rs/zerolog/log"
)

const (
	ProviderGoogle    = "google"
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

const anthropicMaxTokens = 2048

type Config struct {
	// Model is "provider:model", e.g. "google:gemini-2.5-flash".
	Model           string
	GeminiAPIKey    string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	AnthropicAPIKey string
	Temperature     float32
}

// New builds the summarizer for config.Model. A missing credential is not an
// error: the summarizer is returned unavailable and logs why.
func New(ctx context.Context, config Config) (*Summarizer, error) {
	provider, modelName, err := ParseModel(config.Model)
	if err != nil {
		return nil, err
	}
	if config.Temperature == 0 {
		config.Temperature = DefaultTemperature
	}

	generator, err := newGenerator(ctx, provider, modelName, config)
	if errors.Is(err, ErrMissingCredential) {
		log.Error().Str("model", config.Model).Msg("summarizer credential missing, reports will not be available")
		return NewWithGenerator(nil, config.Model), nil
	}
	if err != nil {
		return nil, err
	}

	log.Info().Str("model", config.Model).Msg("summarizer configured")
	return NewWithGenerator(generator, config.Model), nil
}

func newGenerator(ctx context.Context, provider string, modelName string, config Config) (Generator, error) {
	switch provider {
	case ProviderGoogle:
		if config.GeminiAPIKey == "" {
			return nil, ErrMissingCredential
		}
		backend, err := gemini.New(ctx, gemini.Config{APIKey: config.GeminiAPIKey, Model: modelName})
		if err != nil {
			return nil, err
		}
		return &geminiGenerator{backend: backend, temperature: config.Temperature}, nil

	case ProviderOllama:
		client, err := api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("api.ClientFromEnvironment() failed: %w", err)
		}
		return &ollamaGenerator{client: client, model: modelName, temperature: config.Temperature}, nil

	case ProviderOpenAI:
		if config.OpenAIAPIKey == "" {
			return nil, ErrMissingCredential
		}
		chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:  config.OpenAIAPIKey,
			BaseURL: config.OpenAIBaseURL,
			Model:   modelName,
		})
		if err != nil {
			return nil, fmt.Errorf("openai.NewChatModel() failed: %w", err)
		}
		return &einoGenerator{chatModel: chatModel, temperature: config.Temperature}, nil

	case ProviderAnthropic:
		if config.AnthropicAPIKey == "" {
			return nil, ErrMissingCredential
		}
		chatModel, err := claude.NewChatModel(ctx, &claude.Config{
			APIKey:    config.AnthropicAPIKey,
			Model:     modelName,
			MaxTokens: anthropicMaxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("claude.NewChatModel() failed: %w", err)
		}
		return &einoGenerator{chatModel: chatModel, temperature: config.Temperature}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
}

type geminiGenerator struct {
	backend     *gemini.Backend
	temperature float32
}

func (instance *geminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return instance.backend.Generate(ctx, prompt, instance.temperature)
}

type ollamaGenerator struct {
	client      *api.Client
	model       string
	temperature float32
}

func (instance *ollamaGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	stream := false
	request := &api.ChatRequest{
		Model:    instance.model,
		Messages: []api.Message{{Role: "user", Content: prompt}},
		Stream:   &stream,
		Options:  map[string]any{"temperature": instance.temperature},
	}

	var content strings.Builder
	err := instance.client.Chat(ctx, request, func(response api.ChatResponse) error {
		content.WriteString(response.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama api.Client.Chat() failed: %w", err)
	}

	return content.String(), nil
}

type einoGenerator struct {
	chatModel   einoModel.BaseChatModel
	temperature float32
}

func (instance *einoGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	message, err := instance.chatModel.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)},
		einoModel.WithTemperature(instance.temperature))
	if err != nil {
		return "", fmt.Errorf("chat model Generate() failed: %w", err)
	}

	return message.Content, nil
}
