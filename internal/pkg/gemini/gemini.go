// Package gemini opens conversations on the hosted Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"lead-chat/internal/pkg/reportTool"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"
const DefaultTemperature = 0.2

var ErrMissingAPIKey = errors.New("gemini API key is not configured")

type Config struct {
	APIKey      string
	Model       string
	Temperature float32
}

// Conversation is the slice of *genai.Chat the relay depends on.
type Conversation interface {
	SendMessageStream(ctx context.Context, parts ...genai.Part) iter.Seq2[*genai.GenerateContentResponse, error]
}

type Backend struct {
	config Config
	client *genai.Client
}

// New creates the backend. Without an API key the backend is still returned
// so the service can start; every conversation then fails with ErrMissingAPIKey.
func New(ctx context.Context, config Config) (*Backend, error) {
	if config.Model == "" {
		config.Model = DefaultModel
	}

	backend := &Backend{config: config}
	if config.APIKey == "" {
		log.Error().Msg("Gemini API key missing, chat will not be available")
		return backend, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient() failed: %w", err)
	}
	backend.client = client

	return backend, nil
}

func (instance *Backend) Configured() bool {
	return instance.client != nil
}

// Open creates a chat that carries the system instruction and the report tool.
func (instance *Backend) Open(ctx context.Context, systemInstruction string) (Conversation, error) {
	if instance.client == nil {
		return nil, ErrMissingAPIKey
	}

	chat, err := instance.client.Chats.Create(ctx, instance.config.Model, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		Temperature:       genai.Ptr(instance.config.Temperature),
		Tools:             []*genai.Tool{reportTool.Tool()},
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("genai.Chats.Create() failed: %w", err)
	}

	return chat, nil
}

// Generate runs a single stateless prompt, used for conversation summaries.
func (instance *Backend) Generate(ctx context.Context, prompt string, temperature float32) (string, error) {
	if instance.client == nil {
		return "", ErrMissingAPIKey
	}

	response, err := instance.client.Models.GenerateContent(ctx, instance.config.Model, genai.Text(prompt),
		&genai.GenerateContentConfig{Temperature: genai.Ptr(temperature)})
	if err != nil {
		return "", fmt.Errorf("genai.Models.GenerateContent() failed: %w", err)
	}

	return ResponseText(response), nil
}
