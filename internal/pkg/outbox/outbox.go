// Package outbox keeps the simulated outgoing emails of the process. Nothing
// here is ever transmitted; entries are only logged and listed to admins.
package outbox

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Kind string

const (
	KindLead   Kind = "lead"
	KindReport Kind = "report"
)

func (kind Kind) Label() string {
	if kind == KindLead {
		return "NEW LEAD"
	}
	return "REPORT"
}

type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Kind      Kind      `json:"kind"`
}

type Outbox struct {
	mutex     sync.RWMutex
	recipient string
	now       func() time.Time
	entries   []Entry
}

func New(recipient string) *Outbox {
	return &Outbox{
		recipient: recipient,
		now:       time.Now,
	}
}

func (instance *Outbox) Recipient() string {
	return instance.recipient
}

// Send records a message addressed to the configured recipient. The newest
// entry is always first.
func (instance *Outbox) Send(kind Kind, subject string, body string) Entry {
	entry := Entry{
		ID:        uuid.NewString(),
		Timestamp: instance.now(),
		To:        instance.recipient,
		Subject:   subject,
		Body:      body,
		Kind:      kind,
	}

	instance.mutex.Lock()
	instance.entries = append([]Entry{entry}, instance.entries...)
	instance.mutex.Unlock()

	log.Info().
		Str("email_id", entry.ID).
		Str("to", entry.To).
		Str("kind", string(entry.Kind)).
		Str("subject", entry.Subject).
		Str("body", entry.Body).
		Msg("simulated email sent")

	return entry
}

func (instance *Outbox) Entries() []Entry {
	instance.mutex.RLock()
	defer instance.mutex.RUnlock()

	entries := make([]Entry, len(instance.entries))
	copy(entries, instance.entries)
	return entries
}

// List returns the newest entries of the given kind. An empty kind matches
// every entry; a non-positive limit returns all of them.
func (instance *Outbox) List(kind Kind, limit int) []Entry {
	instance.mutex.RLock()
	defer instance.mutex.RUnlock()

	entries := make([]Entry, 0, len(instance.entries))
	for _, entry := range instance.entries {
		if kind != "" && entry.Kind != kind {
			continue
		}
		entries = append(entries, entry)
		if limit > 0 && len(entries) == limit {
			break
		}
	}
	return entries
}

func (instance *Outbox) Len() int {
	instance.mutex.RLock()
	defer instance.mutex.RUnlock()
	return len(instance.entries)
}
