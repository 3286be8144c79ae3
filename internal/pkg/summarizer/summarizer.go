// Package summarizer writes the executive summary of a finished conversation.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	UnavailableMessage = "The report could not be generated: the API key is not configured."
	FailedMessage      = "The automatic report could not be generated. Check the API key configuration."
)

const DefaultTemperature = 0.2

var (
	ErrMissingCredential = errors.New("summarizer credential is not configured")
	ErrUnknownProvider   = errors.New("unknown model provider")
)

// Generator runs one stateless prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Summarizer struct {
	generator Generator
	model     string
}

// NewWithGenerator is used when the generator is built elsewhere. A nil
// generator makes every summary the unavailable message.
func NewWithGenerator(generator Generator, model string) *Summarizer {
	return &Summarizer{generator: generator, model: model}
}

func (instance *Summarizer) Available() bool {
	return instance.generator != nil
}

// Summarize never fails: remote problems are reported as canned texts.
func (instance *Summarizer) Summarize(ctx context.Context, companyName string, transcript string) string {
	if instance.generator == nil {
		return UnavailableMessage
	}

	summary, err := instance.generator.Generate(ctx, Prompt(companyName, transcript))
	if err != nil {
		log.Error().Err(err).Str("model", instance.model).Msg("summary generation failed")
		return FailedMessage
	}
	if strings.TrimSpace(summary) == "" {
		log.Warn().Str("model", instance.model).Msg("summary generation returned no text")
		return FailedMessage
	}

	return summary
}

func Prompt(companyName string, transcript string) string {
	return fmt.Sprintf(`ACT AS A SENIOR PROJECT ANALYST.
Analyse the following conversation between the %s A.I. and a client.
Produce a STRUCTURED EXECUTIVE SUMMARY (in Markdown) containing:
1. DIAGNOSIS: what exactly was the client's problem or question?
2. TECHNICAL SOLUTION: what was proposed or solved?
3. NEXT STEPS: recommended actions.

Conversation history:
%s
`, companyName, transcript)
}

// ParseModel splits a "provider:model" string. The model part may itself
// contain colons, as in "ollama:qwen3:8b".
func ParseModel(value string) (provider string, model string, err error) {
	provider, model, found := strings.Cut(strings.TrimSpace(value), ":")
	if !found || provider == "" || model == "" {
		return "", "", fmt.Errorf("model %q must have the form provider:model", value)
	}

	provider = strings.ToLower(provider)
	switch provider {
	case ProviderGoogle, ProviderOllama, ProviderOpenAI, ProviderAnthropic:
		return provider, model, nil
	default:
		return "", "", fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
}
