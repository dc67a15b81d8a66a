package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type Message struct {
	Role    string
	Content string
}

// Provider is the minimal chat-completion contract the rest of the service
// depends on. Implementations map vendor errors to StatusError where a
// transport status is known so callers can decide retriability.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
	Name() string
}

// NormalizeMessages lowercases roles so implementations can switch on them
// directly, and rejects an empty conversation.
func NormalizeMessages(messages []Message) ([]Message, error) {
	if len(messages) == 0 {
		return nil, errors.New("no messages provided")
	}
	for i := range messages {
		messages[i].Role = strings.ToLower(messages[i].Role)
	}
	return messages, nil
}

// StatusError carries the HTTP status of a failed provider call.
type StatusError struct {
	Status int
	Err    error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("provider status %d: %v", e.Status, e.Err)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// StatusFromError extracts the transport status from a provider error, or 0
// when none is attached.
func StatusFromError(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}

// LocalProvider is a deterministic offline stand-in. It never produces the
// structured payloads the backend expects, so every task degrades to its
// fallback result; the workflow still runs end to end without a vendor key.
type LocalProvider struct{}

func NewLocalProvider() *LocalProvider {
	return &LocalProvider{}
}

func (l *LocalProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	msgs, err := NormalizeMessages(messages)
	if err != nil {
		return "", err
	}
	last := msgs[len(msgs)-1].Content
	return "[local-stub] " + strings.TrimSpace(last), nil
}

func (l *LocalProvider) Name() string {
	return "local"
}
