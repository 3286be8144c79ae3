package chatSession

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"lead-chat/internal/pkg/profile"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const welcomeMessageID = "welcome"

type chatSessionImpl struct {
	relay         *Relay
	company       profile.CompanyConfig
	user          profile.UserProfile
	messages      []Message
	messagesMutex sync.RWMutex
	processing    atomic.Bool
	responseFunc  MessageResponseFunc
	ctx           context.Context
	cancel        context.CancelFunc
}

// New starts a conversation on relay for user and returns the session that
// keeps its transcript. Any conversation previously held by relay is dropped.
func New(relay *Relay, company profile.CompanyConfig, user profile.UserProfile,
	responseFunc MessageResponseFunc) ChatSession {

	ctx, cancel := context.WithCancel(context.Background())
	relay.Start(ctx, user, company)

	welcome := Message{
		ID:   welcomeMessageID,
		Role: RoleModel,
		Text: fmt.Sprintf("Hello, %s. It is a pleasure to assist %s.\n\n"+
			"How can I help specifically with the project \"%s\" today?", user.Name, user.Company, user.Project),
	}

	return &chatSessionImpl{
		relay:        relay,
		company:      company,
		user:         user,
		messages:     []Message{welcome},
		responseFunc: responseFunc,
		ctx:          ctx,
		cancel:       cancel,
	}
}

func (instance *chatSessionImpl) Messages() []Message {
	instance.messagesMutex.RLock()
	defer instance.messagesMutex.RUnlock()

	messages := make([]Message, len(instance.messages))
	copy(messages, instance.messages)
	return messages
}

func (instance *chatSessionImpl) Busy() bool {
	return instance.processing.Load()
}

// EnqueueMessage appends the user message and a streaming model placeholder,
// then receives the reply in the background. Only one reply may be in flight.
func (instance *chatSessionImpl) EnqueueMessage(text string, imageDataURL string) error {
	if strings.TrimSpace(text) == "" && imageDataURL == "" {
		return ErrEmptyMessage
	}
	if !instance.processing.CompareAndSwap(false, true) {
		return ErrBusy
	}

	userMessage := Message{
		ID:    uuid.NewString(),
		Role:  RoleUser,
		Text:  text,
		Image: imageDataURL,
	}
	modelMessage := Message{
		ID:        uuid.NewString(),
		Role:      RoleModel,
		Streaming: true,
	}

	instance.messagesMutex.Lock()
	instance.messages = append(instance.messages, userMessage, modelMessage)
	modelIndex := len(instance.messages) - 1
	instance.messagesMutex.Unlock()

	instance.responseFunc(MessageResponse{Message: userMessage, New: true})
	instance.responseFunc(MessageResponse{Message: modelMessage, New: true})

	go instance.processMessage(text, imageDataURL, modelIndex, modelMessage.ID)

	return nil
}

// processMessage drains the reply into the placeholder. The session is idle
// again before the final update is published, so a client re-enabling its
// send control on that update can send right away.
func (instance *chatSessionImpl) processMessage(text string, imageDataURL string, modelIndex int, messageID string) {
	log.Info().Str("message_id", messageID).Msg("processing message")

	for fragment := range instance.relay.Send(instance.ctx, text, imageDataURL) {
		instance.messagesMutex.Lock()
		instance.messages[modelIndex].Text += fragment
		message := instance.messages[modelIndex]
		instance.messagesMutex.Unlock()

		instance.responseFunc(MessageResponse{Message: message})
	}

	instance.messagesMutex.Lock()
	instance.messages[modelIndex].Streaming = false
	message := instance.messages[modelIndex]
	instance.messagesMutex.Unlock()

	instance.processing.Store(false)
	instance.responseFunc(MessageResponse{Message: message})
}

// Transcript renders the conversation as the plain text report visitors share.
func (instance *chatSessionImpl) Transcript(date time.Time) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "SERVICE REPORT - %s\nDATE: %s\nCLIENT: %s\nPROJECT: %s\n%s\n\n",
		strings.ToUpper(instance.company.CompanyName), date.Format("02/01/2006"),
		instance.user.Name, instance.user.Project, strings.Repeat("-", 48))

	blocks := make([]string, 0)
	for _, message := range instance.Messages() {
		if message.Text == "" {
			continue
		}
		role := strings.ToUpper(instance.company.CompanyName) + " AI"
		if message.Role == RoleUser {
			role = strings.ToUpper(instance.user.Name)
		}
		blocks = append(blocks, fmt.Sprintf("[%s]:\n%s", role, message.Text))
	}
	builder.WriteString(strings.Join(blocks, "\n\n"))

	return builder.String()
}

// SetFeedback rates a finished model message. Giving the same rating twice
// clears it.
func (instance *chatSessionImpl) SetFeedback(messageID string, feedback Feedback) (Message, error) {
	if feedback != FeedbackPositive && feedback != FeedbackNegative {
		return Message{}, fmt.Errorf("%w: %q", ErrInvalidFeedback, feedback)
	}

	instance.messagesMutex.Lock()
	defer instance.messagesMutex.Unlock()

	for i := range instance.messages {
		message := &instance.messages[i]
		if message.ID != messageID {
			continue
		}
		if message.Role != RoleModel || message.Streaming || message.Text == "" {
			return *message, ErrFeedbackNotAllowed
		}

		if message.Feedback == feedback {
			message.Feedback = FeedbackNone
		} else {
			message.Feedback = feedback
		}
		log.Info().Str("message_id", messageID).Str("feedback", string(message.Feedback)).Msg("message feedback")
		return *message, nil
	}

	return Message{}, ErrMessageNotFound
}

func (instance *chatSessionImpl) Shutdown() {
	instance.cancel()
	log.Info().Msg("chat session shutdown requested")
}
