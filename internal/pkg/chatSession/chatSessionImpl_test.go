package chatSession

import (
	"sync"
	"testing"
	"time"

	"lead-chat/internal/pkg/outbox"
	"lead-chat/internal/pkg/profile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type responseRecorder struct {
	mutex     sync.Mutex
	responses []MessageResponse
}

func (instance *responseRecorder) record(response MessageResponse) {
	instance.mutex.Lock()
	instance.responses = append(instance.responses, response)
	instance.mutex.Unlock()
}

func (instance *responseRecorder) all() []MessageResponse {
	instance.mutex.Lock()
	defer instance.mutex.Unlock()
	return append([]MessageResponse(nil), instance.responses...)
}

func newTestSession(t *testing.T, turns ...fakeTurn) (ChatSession, *responseRecorder) {
	t.Helper()

	conversation := &fakeConversation{turns: turns}
	opener := &fakeOpener{configured: true, conversations: []*fakeConversation{conversation}}
	relay := NewRelay(opener, outbox.New(""))
	recorder := &responseRecorder{}

	session := New(relay, profile.DefaultCompanyConfig(), testUser, recorder.record)
	t.Cleanup(session.Shutdown)
	return session, recorder
}

func TestNewSessionHasWelcomeMessage(t *testing.T) {
	session, _ := newTestSession(t)

	messages := session.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, RoleModel, messages[0].Role)
	assert.Contains(t, messages[0].Text, "Hello, Ana Silva.")
	assert.Contains(t, messages[0].Text, "Horizon Inc.")
	assert.Contains(t, messages[0].Text, `"Future Tower"`)
}

func TestEnqueueMessageNegativeEmpty(t *testing.T) {
	session, recorder := newTestSession(t)

	err := session.EnqueueMessage("   ", "")

	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Len(t, session.Messages(), 1)
	assert.Empty(t, recorder.all())
}

func TestEnqueueMessageStreamsReply(t *testing.T) {
	session, recorder := newTestSession(t, fakeTurn{responses: []*genai.GenerateContentResponse{
		textResponse("Use an "), textResponse("HDRI dome."),
	}})

	require.NoError(t, session.EnqueueMessage("How do I light this?", ""))
	require.Eventually(t, func() bool { return len(recorder.all()) == 5 }, time.Second, 5*time.Millisecond)

	messages := session.Messages()
	require.Len(t, messages, 3)
	assert.Equal(t, RoleUser, messages[1].Role)
	assert.Equal(t, "How do I light this?", messages[1].Text)
	assert.Equal(t, RoleModel, messages[2].Role)
	assert.Equal(t, "Use an HDRI dome.", messages[2].Text)
	assert.False(t, messages[2].Streaming)

	responses := recorder.all()
	require.Len(t, responses, 5)
	assert.True(t, responses[0].New)
	assert.True(t, responses[1].New)
	assert.True(t, responses[1].Message.Streaming)
	assert.Equal(t, "Use an ", responses[2].Message.Text)
	assert.Equal(t, "Use an HDRI dome.", responses[3].Message.Text)
	assert.False(t, responses[4].Message.Streaming)
}

func TestEnqueueMessageNegativeBusy(t *testing.T) {
	release := make(chan struct{})
	session, _ := newTestSession(t, fakeTurn{
		responses: []*genai.GenerateContentResponse{textResponse("done")},
		wait:      release,
	})

	require.NoError(t, session.EnqueueMessage("first", ""))
	assert.True(t, session.Busy())
	assert.ErrorIs(t, session.EnqueueMessage("second", ""), ErrBusy)

	close(release)
	require.Eventually(t, func() bool { return !session.Busy() }, time.Second, 5*time.Millisecond)
	assert.Len(t, session.Messages(), 3)
}

func TestEnqueueMessageIdleWhenFinalUpdatePublished(t *testing.T) {
	conversation := &fakeConversation{turns: []fakeTurn{
		{responses: []*genai.GenerateContentResponse{textResponse("First answer.")}},
		{responses: []*genai.GenerateContentResponse{textResponse("Second answer.")}},
	}}
	relay := NewRelay(&fakeOpener{configured: true, conversations: []*fakeConversation{conversation}}, outbox.New(""))

	var session ChatSession
	followUps := make(chan error, 2)
	session = New(relay, profile.DefaultCompanyConfig(), testUser, func(response MessageResponse) {
		if response.New || response.Message.Role != RoleModel || response.Message.Streaming {
			return
		}
		if response.Message.Text == "First answer." {
			followUps <- session.EnqueueMessage("next", "")
		}
	})
	t.Cleanup(session.Shutdown)

	require.NoError(t, session.EnqueueMessage("hello", ""))

	select {
	case err := <-followUps:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("final update was not published")
	}

	require.Eventually(t, func() bool {
		messages := session.Messages()
		return len(messages) == 5 && messages[4].Text == "Second answer." && !messages[4].Streaming
	}, time.Second, 5*time.Millisecond)
}

func TestEnqueueMessageWithImageOnly(t *testing.T) {
	session, _ := newTestSession(t, fakeTurn{responses: []*genai.GenerateContentResponse{textResponse("Looks good")}})
	image := Image{MIMEType: "image/png", Data: []byte{1, 2, 3}}.DataURL()

	require.NoError(t, session.EnqueueMessage("", image))
	require.Eventually(t, func() bool { return !session.Busy() }, time.Second, 5*time.Millisecond)

	messages := session.Messages()
	require.Len(t, messages, 3)
	assert.Equal(t, image, messages[1].Image)
	assert.Equal(t, "Looks good", messages[2].Text)
}

func TestShutdownAbandonsPendingReply(t *testing.T) {
	session, _ := newTestSession(t, fakeTurn{wait: make(chan struct{})})

	require.NoError(t, session.EnqueueMessage("Hello?", ""))
	session.Shutdown()

	require.Eventually(t, func() bool { return !session.Busy() }, time.Second, 5*time.Millisecond)
	messages := session.Messages()
	assert.Empty(t, messages[2].Text)
	assert.False(t, messages[2].Streaming)
}

func TestTranscript(t *testing.T) {
	session, _ := newTestSession(t, fakeTurn{responses: []*genai.GenerateContentResponse{textResponse("Use HDRI.")}})
	require.NoError(t, session.EnqueueMessage("Lighting tips?", ""))
	require.Eventually(t, func() bool { return !session.Busy() }, time.Second, 5*time.Millisecond)

	transcript := session.Transcript(time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC))

	assert.Contains(t, transcript, "SERVICE REPORT - ARCHTOOLS\nDATE: 19/10/2026\nCLIENT: Ana Silva\nPROJECT: Future Tower\n")
	assert.Contains(t, transcript, "[ARCHTOOLS AI]:\nHello, Ana Silva.")
	assert.Contains(t, transcript, "[ANA SILVA]:\nLighting tips?\n\n[ARCHTOOLS AI]:\nUse HDRI.")
}

func TestSetFeedback(t *testing.T) {
	session, _ := newTestSession(t, fakeTurn{responses: []*genai.GenerateContentResponse{textResponse("Use HDRI.")}})
	require.NoError(t, session.EnqueueMessage("Lighting tips?", ""))
	require.Eventually(t, func() bool { return !session.Busy() }, time.Second, 5*time.Millisecond)

	messages := session.Messages()
	reply := messages[2]

	message, err := session.SetFeedback(reply.ID, FeedbackPositive)
	require.NoError(t, err)
	assert.Equal(t, FeedbackPositive, message.Feedback)

	message, err = session.SetFeedback(reply.ID, FeedbackNegative)
	require.NoError(t, err)
	assert.Equal(t, FeedbackNegative, message.Feedback)

	message, err = session.SetFeedback(reply.ID, FeedbackNegative)
	require.NoError(t, err)
	assert.Equal(t, FeedbackNone, message.Feedback)
	assert.Equal(t, FeedbackNone, session.Messages()[2].Feedback)

	_, err = session.SetFeedback(welcomeMessageID, FeedbackPositive)
	assert.NoError(t, err)
}

func TestSetFeedbackNegative(t *testing.T) {
	session, _ := newTestSession(t, fakeTurn{responses: []*genai.GenerateContentResponse{textResponse("ok")}})
	require.NoError(t, session.EnqueueMessage("Hi", ""))
	require.Eventually(t, func() bool { return !session.Busy() }, time.Second, 5*time.Millisecond)

	userMessage := session.Messages()[1]

	_, err := session.SetFeedback(userMessage.ID, FeedbackPositive)
	assert.ErrorIs(t, err, ErrFeedbackNotAllowed)

	_, err = session.SetFeedback("missing", FeedbackPositive)
	assert.ErrorIs(t, err, ErrMessageNotFound)

	_, err = session.SetFeedback(welcomeMessageID, Feedback("meh"))
	assert.ErrorIs(t, err, ErrInvalidFeedback)
}
