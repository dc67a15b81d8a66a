package conversation

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Log is an append-only conversation history plus the set of card ids that
// are no longer actionable. Messages are never edited or removed; history is
// rewritten only by a full reset.
type Log struct {
	mu          sync.RWMutex
	messages    []Message
	deactivated map[string]struct{}
	entropy     *ulid.MonotonicEntropy
}

func NewLog() *Log {
	return &Log{
		deactivated: make(map[string]struct{}),
		entropy:     ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

// Append marshals the payload, appends a message and returns its id. The id
// is a monotonic ULID so ids sort in append order.
func (l *Log) Append(t MessageType, payload interface{}) (string, error) {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return "", fmt.Errorf("marshal payload: %w", err)
		}
		raw = data
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now().UTC()
	id := ulid.MustNew(ulid.Timestamp(now), l.entropy).String()
	l.messages = append(l.messages, Message{ID: id, Type: t, Payload: raw, CreatedAt: now})
	return id, nil
}

// AppendText appends a plain text turn. It never fails; the payload is a
// fixed shape.
func (l *Log) AppendText(t MessageType, text string) string {
	id, _ := l.Append(t, TextPayload{Text: text})
	return id
}

// Messages returns a copy of the full log in append order.
func (l *Log) Messages() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Tail returns the last n messages in append order.
func (l *Log) Tail(n int) []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if n <= 0 || len(l.messages) == 0 {
		return nil
	}
	if n > len(l.messages) {
		n = len(l.messages)
	}
	out := make([]Message, n)
	copy(out, l.messages[len(l.messages)-n:])
	return out
}

// MessagesOfType returns the ids of every message of the given type, in
// append order.
func (l *Log) MessagesOfType(t MessageType) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var ids []string
	for _, msg := range l.messages {
		if msg.Type == t {
			ids = append(ids, msg.ID)
		}
	}
	return ids
}

// LastOfType returns the id of the most recent message of the given type.
func (l *Log) LastOfType(t MessageType) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for i := len(l.messages) - 1; i >= 0; i-- {
		if l.messages[i].Type == t {
			return l.messages[i].ID, true
		}
	}
	return "", false
}

// Deactivate marks card ids as no longer actionable. Non-card ids are
// ignored; membership only grows (set union, so repeats are no-ops).
func (l *Log) Deactivate(ids ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, id := range ids {
		if id == "" {
			continue
		}
		l.deactivated[id] = struct{}{}
	}
}

// IsDeactivated reports whether a card has been superseded.
func (l *Log) IsDeactivated(id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.deactivated[id]
	return ok
}

// Deactivated returns a copy of the deactivated id set.
func (l *Log) Deactivated() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]string, 0, len(l.deactivated))
	for id := range l.deactivated {
		out = append(out, id)
	}
	return out
}

// Len returns the number of appended messages.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

// Reset drops all history and clears the deactivated set. This is the only
// operation that shrinks either collection.
func (l *Log) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = nil
	l.deactivated = make(map[string]struct{})
}

// restore replaces the log contents wholesale; used when loading a persisted
// session.
func (l *Log) restore(messages []Message, deactivated []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append([]Message(nil), messages...)
	l.deactivated = make(map[string]struct{}, len(deactivated))
	for _, id := range deactivated {
		l.deactivated[id] = struct{}{}
	}
}
