package sessions

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"lead-chat/internal/pkg/chatSession"
	"lead-chat/internal/pkg/profile"
	"lead-chat/internal/pkg/views"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type FontSize string

const (
	FontSizeSmall  FontSize = "small"
	FontSizeNormal FontSize = "normal"
	FontSizeLarge  FontSize = "large"
)

var FontSizes = []FontSize{FontSizeSmall, FontSizeNormal, FontSizeLarge}

var ErrInvalidFontSize = errors.New("invalid font size")

// Visitor is the server side state of one browser.
type Visitor struct {
	ID    uuid.UUID
	Views *views.Machine

	mutex    sync.Mutex
	relay    *chatSession.Relay
	user     *profile.UserProfile
	chat     chatSession.ChatSession
	uploads  []string
	fontSize FontSize
	// lastSeen is unix nanoseconds of the last lookup.
	lastSeen atomic.Int64
}

// Register stores the profile and replaces any previous chat session with a
// new one started on the visitor's relay.
func (instance *Visitor) Register(user profile.UserProfile, company profile.CompanyConfig,
	responseFunc chatSession.MessageResponseFunc) chatSession.ChatSession {

	instance.mutex.Lock()
	defer instance.mutex.Unlock()

	if instance.chat != nil {
		instance.chat.Shutdown()
	}
	instance.user = &user
	instance.chat = chatSession.New(instance.relay, company, user, responseFunc)
	return instance.chat
}

func (instance *Visitor) Chat() chatSession.ChatSession {
	instance.mutex.Lock()
	defer instance.mutex.Unlock()
	return instance.chat
}

func (instance *Visitor) User() (profile.UserProfile, bool) {
	instance.mutex.Lock()
	defer instance.mutex.Unlock()
	if instance.user == nil {
		return profile.UserProfile{}, false
	}
	return *instance.user, true
}

// AddUpload remembers the name of a document imported during the current
// configuration visit.
func (instance *Visitor) AddUpload(fileName string) {
	instance.mutex.Lock()
	instance.uploads = append(instance.uploads, fileName)
	instance.mutex.Unlock()
}

func (instance *Visitor) Uploads() []string {
	instance.mutex.Lock()
	defer instance.mutex.Unlock()
	return append([]string(nil), instance.uploads...)
}

func (instance *Visitor) ClearUploads() {
	instance.mutex.Lock()
	instance.uploads = nil
	instance.mutex.Unlock()
}

func (instance *Visitor) FontSize() FontSize {
	instance.mutex.Lock()
	defer instance.mutex.Unlock()
	return instance.fontSize
}

func (instance *Visitor) SetFontSize(fontSize FontSize) error {
	switch fontSize {
	case FontSizeSmall, FontSizeNormal, FontSizeLarge:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFontSize, fontSize)
	}

	instance.mutex.Lock()
	instance.fontSize = fontSize
	instance.mutex.Unlock()
	return nil
}

func (instance *Visitor) busy() bool {
	chat := instance.Chat()
	return chat != nil && chat.Busy()
}

func (instance *Visitor) shutdown() {
	instance.mutex.Lock()
	defer instance.mutex.Unlock()
	if instance.chat != nil {
		instance.chat.Shutdown()
	}
}

type SessionManager struct {
	mutex         sync.RWMutex
	visitors      map[uuid.UUID]*Visitor
	opener        chatSession.Opener
	reports       chatSession.ReportRecorder
	adminPassword string
	now           func() time.Time
	done          chan struct{}
	doneOnce      sync.Once
}

func New(opener chatSession.Opener, reports chatSession.ReportRecorder, adminPassword string) *SessionManager {
	sessionManager := &SessionManager{
		visitors:      make(map[uuid.UUID]*Visitor),
		opener:        opener,
		reports:       reports,
		adminPassword: adminPassword,
		now:           time.Now,
		done:          make(chan struct{}),
	}
	return sessionManager
}

func (instance *SessionManager) AddVisitor(id uuid.UUID) (*Visitor, error) {
	instance.mutex.Lock()
	defer instance.mutex.Unlock()

	if _, ok := instance.visitors[id]; ok {
		return nil, errors.New("visitor with such id already exists")
	}

	visitor := &Visitor{
		ID:       id,
		Views:    views.NewMachine(instance.adminPassword),
		relay:    chatSession.NewRelay(instance.opener, instance.reports),
		fontSize: FontSizeNormal,
	}
	visitor.lastSeen.Store(instance.now().UnixNano())
	instance.visitors[id] = visitor

	return visitor, nil
}

// GetVisitor returns the visitor with id, or nil, and marks it as seen.
func (instance *SessionManager) GetVisitor(id uuid.UUID) *Visitor {
	instance.mutex.RLock()
	visitor := instance.visitors[id]
	instance.mutex.RUnlock()

	if visitor != nil {
		visitor.lastSeen.Store(instance.now().UnixNano())
	}
	return visitor
}

func (instance *SessionManager) Len() int {
	instance.mutex.RLock()
	defer instance.mutex.RUnlock()
	return len(instance.visitors)
}

// EvictIdle drops visitors not seen for longer than maxIdle and stops their
// chat sessions. Visitors with a reply in flight are kept.
func (instance *SessionManager) EvictIdle(maxIdle time.Duration) int {
	deadline := instance.now().Add(-maxIdle).UnixNano()

	instance.mutex.Lock()
	evicted := make([]*Visitor, 0)
	for id, visitor := range instance.visitors {
		if visitor.lastSeen.Load() >= deadline || visitor.busy() {
			continue
		}
		delete(instance.visitors, id)
		evicted = append(evicted, visitor)
	}
	instance.mutex.Unlock()

	for _, visitor := range evicted {
		visitor.shutdown()
	}
	if len(evicted) > 0 {
		log.Info().Int("evicted", len(evicted)).Msg("idle visitors evicted")
	}
	return len(evicted)
}

// StartEviction runs EvictIdle every interval until Shutdown.
func (instance *SessionManager) StartEviction(interval time.Duration, maxIdle time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				instance.EvictIdle(maxIdle)
			case <-instance.done:
				return
			}
		}
	}()
}

func (instance *SessionManager) Shutdown() {
	instance.doneOnce.Do(func() { close(instance.done) })

	instance.mutex.RLock()
	defer instance.mutex.RUnlock()

	for _, visitor := range instance.visitors {
		visitor.shutdown()
	}
}
