package chatSession

import (
	"errors"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

type Feedback string

const (
	FeedbackNone     Feedback = ""
	FeedbackPositive Feedback = "positive"
	FeedbackNegative Feedback = "negative"
)

var (
	ErrEmptyMessage       = errors.New("message has neither text nor image")
	ErrBusy               = errors.New("a reply is still being received")
	ErrMessageNotFound    = errors.New("message not found")
	ErrInvalidFeedback    = errors.New("invalid feedback")
	ErrFeedbackNotAllowed = errors.New("feedback is only accepted on finished model messages")
)

type MessageResponse struct {
	Message Message
	New     bool
}

type Message struct {
	ID        string
	Role      Role
	Text      string
	Image     string // data URL, user messages only
	Streaming bool
	Feedback  Feedback
}

type ChatSession interface {
	EnqueueMessage(text string, imageDataURL string) error
	Messages() []Message
	Busy() bool
	Transcript(date time.Time) string
	SetFeedback(messageID string, feedback Feedback) (Message, error)
	Shutdown()
}

type MessageResponseFunc func(response MessageResponse)
