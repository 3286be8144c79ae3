package chatSession

import (
	"context"
	"iter"
	"sync"

	"lead-chat/internal/pkg/gemini"

	"google.golang.org/genai"
)

type fakeTurn struct {
	responses []*genai.GenerateContentResponse
	err       error
	wait      <-chan struct{}
}

type fakeConversation struct {
	mutex sync.Mutex
	turns []fakeTurn
	sent  [][]genai.Part
}

func (instance *fakeConversation) SendMessageStream(ctx context.Context, parts ...genai.Part) iter.Seq2[*genai.GenerateContentResponse, error] {
	instance.mutex.Lock()
	instance.sent = append(instance.sent, parts)
	index := len(instance.sent) - 1
	instance.mutex.Unlock()

	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		if index >= len(instance.turns) {
			return
		}
		turn := instance.turns[index]
		if turn.wait != nil {
			select {
			case <-turn.wait:
			case <-ctx.Done():
				yield(nil, ctx.Err())
				return
			}
		}
		for _, response := range turn.responses {
			if !yield(response, nil) {
				return
			}
		}
		if turn.err != nil {
			yield(nil, turn.err)
		}
	}
}

func (instance *fakeConversation) Sent() [][]genai.Part {
	instance.mutex.Lock()
	defer instance.mutex.Unlock()
	return instance.sent
}

type fakeOpener struct {
	configured    bool
	conversations []*fakeConversation
	err           error
	instructions  []string
}

func (instance *fakeOpener) Configured() bool {
	return instance.configured
}

func (instance *fakeOpener) Open(ctx context.Context, systemInstruction string) (gemini.Conversation, error) {
	instance.instructions = append(instance.instructions, systemInstruction)
	if instance.err != nil {
		return nil, instance.err
	}
	conversation := instance.conversations[0]
	instance.conversations = instance.conversations[1:]
	return conversation, nil
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: "model", Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func callResponse(name string, args map[string]any) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: "model", Parts: []*genai.Part{
				{FunctionCall: &genai.FunctionCall{ID: "call-1", Name: name, Args: args}},
			}},
		}},
	}
}

func reportArgs() map[string]any {
	return map[string]any{
		"clientName":       "Ana Silva",
		"clientStatus":     "NEW CLIENT",
		"registrationData": "Horizon Inc., Residential, Launch, interior renders",
		"projectName":      "Future Tower",
		"summary":          "Flat lighting on interior renders",
		"solution":         "HDRI dome plus LightMix tuning",
	}
}

func collect(fragments iter.Seq[string]) []string {
	var collected []string
	for fragment := range fragments {
		collected = append(collected, fragment)
	}
	return collected
}
