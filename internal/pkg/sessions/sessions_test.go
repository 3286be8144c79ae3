package sessions

import (
	"context"
	"iter"
	"testing"
	"time"

	"lead-chat/internal/pkg/chatSession"
	"lead-chat/internal/pkg/gemini"
	"lead-chat/internal/pkg/outbox"
	"lead-chat/internal/pkg/profile"
	"lead-chat/internal/pkg/views"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type silentConversation struct{}

func (silentConversation) SendMessageStream(ctx context.Context, parts ...genai.Part) iter.Seq2[*genai.GenerateContentResponse, error] {
	return func(yield func(*genai.GenerateContentResponse, error) bool) {}
}

type blockingConversation struct {
	release chan struct{}
}

func (instance blockingConversation) SendMessageStream(ctx context.Context, parts ...genai.Part) iter.Seq2[*genai.GenerateContentResponse, error] {
	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		select {
		case <-instance.release:
		case <-ctx.Done():
		}
	}
}

type blockingOpener struct {
	conversation blockingConversation
}

func (instance *blockingOpener) Configured() bool {
	return true
}

func (instance *blockingOpener) Open(ctx context.Context, systemInstruction string) (gemini.Conversation, error) {
	return instance.conversation, nil
}

type countingOpener struct {
	opened int
}

func (instance *countingOpener) Configured() bool {
	return true
}

func (instance *countingOpener) Open(ctx context.Context, systemInstruction string) (gemini.Conversation, error) {
	instance.opened++
	return silentConversation{}, nil
}

var testUser = profile.UserProfile{Name: "Ana", Company: "Horizon", Project: "Tower", ClientType: profile.ClientTypeExisting}

func TestAddVisitor(t *testing.T) {
	manager := New(&countingOpener{}, outbox.New(""), "secret")
	id := uuid.New()

	visitor, err := manager.AddVisitor(id)
	require.NoError(t, err)

	assert.Equal(t, id, visitor.ID)
	assert.Equal(t, views.Start, visitor.Views.Current())
	assert.Same(t, visitor, manager.GetVisitor(id))
	assert.Nil(t, visitor.Chat())

	_, registered := visitor.User()
	assert.False(t, registered)
}

func TestAddVisitorNegativeDuplicate(t *testing.T) {
	manager := New(&countingOpener{}, outbox.New(""), "secret")
	id := uuid.New()

	_, err := manager.AddVisitor(id)
	require.NoError(t, err)

	_, err = manager.AddVisitor(id)
	assert.EqualError(t, err, "visitor with such id already exists")
}

func TestGetVisitorUnknown(t *testing.T) {
	manager := New(&countingOpener{}, outbox.New(""), "secret")
	assert.Nil(t, manager.GetVisitor(uuid.New()))
}

func TestRegisterReplacesChat(t *testing.T) {
	opener := &countingOpener{}
	manager := New(opener, outbox.New(""), "secret")
	visitor, err := manager.AddVisitor(uuid.New())
	require.NoError(t, err)

	first := visitor.Register(testUser, profile.DefaultCompanyConfig(), func(chatSession.MessageResponse) {})
	second := visitor.Register(testUser, profile.DefaultCompanyConfig(), func(chatSession.MessageResponse) {})

	assert.NotSame(t, first, second)
	assert.Equal(t, second, visitor.Chat())
	assert.Equal(t, 2, opener.opened)

	user, registered := visitor.User()
	assert.True(t, registered)
	assert.Equal(t, testUser, user)

	manager.Shutdown()
}

func TestUploads(t *testing.T) {
	manager := New(&countingOpener{}, outbox.New(""), "secret")
	visitor, err := manager.AddVisitor(uuid.New())
	require.NoError(t, err)

	visitor.AddUpload("a.txt")
	visitor.AddUpload("b.md")
	assert.Equal(t, []string{"a.txt", "b.md"}, visitor.Uploads())

	visitor.ClearUploads()
	assert.Empty(t, visitor.Uploads())
}

func TestFontSize(t *testing.T) {
	manager := New(&countingOpener{}, outbox.New(""), "secret")
	visitor, err := manager.AddVisitor(uuid.New())
	require.NoError(t, err)

	assert.Equal(t, FontSizeNormal, visitor.FontSize())

	require.NoError(t, visitor.SetFontSize(FontSizeLarge))
	assert.Equal(t, FontSizeLarge, visitor.FontSize())

	assert.ErrorIs(t, visitor.SetFontSize("huge"), ErrInvalidFontSize)
	assert.Equal(t, FontSizeLarge, visitor.FontSize())
}

func TestEvictIdle(t *testing.T) {
	manager := New(&countingOpener{}, outbox.New(""), "secret")
	current := time.Date(2026, time.October, 19, 10, 0, 0, 0, time.UTC)
	manager.now = func() time.Time { return current }

	idle, err := manager.AddVisitor(uuid.New())
	require.NoError(t, err)
	active, err := manager.AddVisitor(uuid.New())
	require.NoError(t, err)

	current = current.Add(50 * time.Minute)
	require.NotNil(t, manager.GetVisitor(active.ID))

	current = current.Add(20 * time.Minute)
	assert.Equal(t, 1, manager.EvictIdle(time.Hour))

	assert.Nil(t, manager.GetVisitor(idle.ID))
	assert.Same(t, active, manager.GetVisitor(active.ID))
	assert.Equal(t, 1, manager.Len())
}

func TestEvictIdleKeepsVisitorWithReplyInFlight(t *testing.T) {
	opener := &blockingOpener{conversation: blockingConversation{release: make(chan struct{})}}
	manager := New(opener, outbox.New(""), "secret")
	t.Cleanup(manager.Shutdown)
	current := time.Date(2026, time.October, 19, 10, 0, 0, 0, time.UTC)
	manager.now = func() time.Time { return current }

	visitor, err := manager.AddVisitor(uuid.New())
	require.NoError(t, err)
	chat := visitor.Register(testUser, profile.DefaultCompanyConfig(), func(chatSession.MessageResponse) {})
	require.NoError(t, chat.EnqueueMessage("hello", ""))

	current = current.Add(2 * time.Hour)
	assert.Equal(t, 0, manager.EvictIdle(time.Hour))
	assert.Equal(t, 1, manager.Len())

	close(opener.conversation.release)
	require.Eventually(t, func() bool { return !chat.Busy() }, time.Second, 5*time.Millisecond)

	assert.Equal(t, 1, manager.EvictIdle(time.Hour))
	assert.Equal(t, 0, manager.Len())
}

func TestStartEviction(t *testing.T) {
	manager := New(&countingOpener{}, outbox.New(""), "secret")
	t.Cleanup(manager.Shutdown)

	_, err := manager.AddVisitor(uuid.New())
	require.NoError(t, err)

	manager.StartEviction(5*time.Millisecond, -time.Second)

	require.Eventually(t, func() bool { return manager.Len() == 0 }, time.Second, 5*time.Millisecond)
}
