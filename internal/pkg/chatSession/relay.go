package chatSession

import (
	"context"
	"errors"
	"iter"
	"sync"

	"lead-chat/internal/pkg/gemini"
	"lead-chat/internal/pkg/outbox"
	"lead-chat/internal/pkg/profile"
	"lead-chat/internal/pkg/reportTool"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

const (
	MissingSessionMessage = "⚠️ Initialization error: chat session not found. Try reloading the page."

	MissingCredentialMessage = "⚠️ **Configuration error**: the API key was not detected.\n\n" +
		"1. Set the `LEAD_CHAT_APIKEY` (or `API_KEY`) environment variable with your Google Gemini key.\n" +
		"2. Restart the service."

	AccessDeniedMessage = "⚠️ **Access denied (error 403)**: the configured API key is invalid or has no permission. " +
		"Check the service configuration."

	InstabilityMessage = "There was a momentary instability communicating with the A.I. " +
		"Please check that the API key is configured correctly and try again."

	DefaultImagePrompt = "Analyse this image technically (lighting, composition, materials) " +
		"and identify possible problems or solutions."
)

// Opener opens remote conversations. *gemini.Backend implements it.
type Opener interface {
	Configured() bool
	Open(ctx context.Context, systemInstruction string) (gemini.Conversation, error)
}

type ReportRecorder interface {
	RecordReport(call reportTool.Call) outbox.Entry
}

// Relay owns the single live conversation of a visitor and turns its
// streamed responses into text fragments.
type Relay struct {
	opener       Opener
	reports      ReportRecorder
	mutex        sync.Mutex
	conversation gemini.Conversation
}

func NewRelay(opener Opener, reports ReportRecorder) *Relay {
	return &Relay{
		opener:  opener,
		reports: reports,
	}
}

// Start opens a new conversation for user, replacing the previous one.
// Failures are logged only; they surface on the next Send.
func (instance *Relay) Start(ctx context.Context, user profile.UserProfile, company profile.CompanyConfig) {
	systemInstruction := profile.SystemInstruction(company, user)

	if !instance.opener.Configured() {
		log.Error().Msg("API key missing, chat initialization will fail")
	}

	conversation, err := instance.opener.Open(ctx, systemInstruction)
	if err != nil {
		log.Error().Err(err).Msg("conversation can't be opened")
		conversation = nil
	}

	instance.mutex.Lock()
	instance.conversation = conversation
	instance.mutex.Unlock()
}

func (instance *Relay) current() gemini.Conversation {
	instance.mutex.Lock()
	defer instance.mutex.Unlock()
	return instance.conversation
}

// Send forwards a message and returns the reply as a sequence of text
// fragments. The sequence can be ranged over once. Every failure is reported
// as a single human readable fragment that ends the sequence.
//
// Report calls are recorded as soon as they arrive, but their function
// responses are sent once the first stream has drained: a genai chat only
// commits a turn to its history when the turn's stream ends.
func (instance *Relay) Send(ctx context.Context, text string, imageDataURL string) iter.Seq[string] {
	return func(yield func(string) bool) {
		if !instance.opener.Configured() {
			yield(MissingCredentialMessage)
			return
		}

		conversation := instance.current()
		if conversation == nil {
			yield(MissingSessionMessage)
			return
		}

		pending, ok := instance.forward(ctx, conversation, messageParts(text, imageDataURL), yield, true)
		if !ok || len(pending) == 0 {
			return
		}

		// One tool round-trip per message: calls made while answering the
		// acknowledgement are not recorded nor answered.
		responses := make([]genai.Part, 0, len(pending))
		for _, call := range pending {
			responses = append(responses, genai.Part{FunctionResponse: call.Response()})
		}
		instance.forward(ctx, conversation, responses, yield, false)
	}
}

// forward drains one response stream into yield and returns the report calls
// that still expect a function response. ok is false when the stream failed or
// the consumer stopped.
func (instance *Relay) forward(ctx context.Context, conversation gemini.Conversation, parts []genai.Part,
	yield func(string) bool, acceptCalls bool) (pending []reportTool.Call, ok bool) {

	for response, err := range conversation.SendMessageStream(ctx, parts...) {
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info().Msg("response stream abandoned")
				return nil, false
			}
			log.Error().Err(err).Msg("Gemini response stream failed")
			yield(diagnostic(err))
			return nil, false
		}

		if text := gemini.ResponseText(response); text != "" {
			if !yield(text) {
				return nil, false
			}
		}

		for _, functionCall := range gemini.FunctionCalls(response) {
			call, isReport := reportTool.FromFunctionCall(functionCall)
			if !isReport {
				log.Warn().Str("function", functionCall.Name).Msg("unknown function call ignored")
				continue
			}
			if !acceptCalls {
				log.Warn().Str("function", functionCall.Name).Msg("tool round-trip limit reached, call ignored")
				continue
			}

			entry := instance.reports.RecordReport(call)
			log.Info().Str("email_id", entry.ID).Str("client", call.ClientName).Msg("report tool call recorded")
			pending = append(pending, call)
		}
	}

	return pending, true
}

func diagnostic(err error) string {
	if gemini.IsAuthorizationError(err) {
		return AccessDeniedMessage
	}
	return InstabilityMessage
}

func messageParts(text string, imageDataURL string) []genai.Part {
	if imageDataURL == "" {
		return []genai.Part{{Text: text}}
	}

	image, err := ParseDataURL(imageDataURL)
	if err != nil {
		log.Warn().Err(err).Msg("image ignored, sending text only")
		return []genai.Part{{Text: text}}
	}

	if text == "" {
		text = DefaultImagePrompt
	}
	return []genai.Part{
		{Text: text},
		{InlineData: &genai.Blob{MIMEType: image.MIMEType, Data: image.Data}},
	}
}
