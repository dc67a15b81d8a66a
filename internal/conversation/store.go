package conversation

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Store persists conversation logs as one JSONL file per session. Each line
// is a record envelope, so persistence is append-only just like the log it
// mirrors; a reset record invalidates everything before it.
type Store struct {
	path string
	mu   sync.Mutex
}

type record struct {
	Kind       string   `json:"kind"`
	Message    *Message `json:"message,omitempty"`
	Deactivate []string `json:"deactivate,omitempty"`
}

const (
	recordMessage    = "message"
	recordDeactivate = "deactivate"
	recordReset      = "reset"
)

func NewStore(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("store path required")
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &Store{path: path}, nil
}

// Root returns the underlying directory used for persistence.
func (s *Store) Root() string {
	if s == nil {
		return ""
	}
	return s.path
}

// AppendMessages persists newly appended messages for a session.
func (s *Store) AppendMessages(ctx context.Context, sessionID string, messages []Message) error {
	if len(messages) == 0 {
		return nil
	}
	records := make([]record, 0, len(messages))
	for i := range messages {
		msg := messages[i]
		records = append(records, record{Kind: recordMessage, Message: &msg})
	}
	return s.appendRecords(ctx, sessionID, records)
}

// AppendDeactivations persists a batch of card deactivations.
func (s *Store) AppendDeactivations(ctx context.Context, sessionID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return s.appendRecords(ctx, sessionID, []record{{Kind: recordDeactivate, Deactivate: ids}})
}

// MarkReset records a full session reset.
func (s *Store) MarkReset(ctx context.Context, sessionID string) error {
	return s.appendRecords(ctx, sessionID, []record{{Kind: recordReset}})
}

func (s *Store) appendRecords(ctx context.Context, sessionID string, records []record) error {
	filePath, err := s.sessionFile(sessionID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	file, err := os.OpenFile(filePath, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer file.Close()
	enc := json.NewEncoder(file)
	for _, rec := range records {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encode record: %w", err)
		}
	}
	return nil
}

// Load rebuilds a session's log from its persisted records. A missing file
// yields an empty log, not an error.
func (s *Store) Load(ctx context.Context, sessionID string) (*Log, error) {
	if s == nil {
		return nil, errors.New("store not initialized")
	}
	filePath, err := s.sessionFile(sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	file, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewLog(), nil
		}
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer file.Close()

	var messages []Message
	deactivated := make([]string, 0, 8)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64<<10), 8<<20)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		switch rec.Kind {
		case recordMessage:
			if rec.Message != nil {
				messages = append(messages, *rec.Message)
			}
		case recordDeactivate:
			deactivated = append(deactivated, rec.Deactivate...)
		case recordReset:
			messages = messages[:0]
			deactivated = deactivated[:0]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan records: %w", err)
	}
	log := NewLog()
	log.restore(messages, deactivated)
	return log, nil
}

// Sessions lists the ids of all persisted sessions.
func (s *Store) Sessions() ([]string, error) {
	if s == nil {
		return nil, errors.New("store not initialized")
	}
	entries, err := os.ReadDir(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read store dir: %w", err)
	}
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		id, ok := decodeSessionFile(entry.Name())
		if !ok {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) sessionFile(sessionID string) (string, error) {
	trimmed := strings.TrimSpace(sessionID)
	if trimmed == "" {
		return "", fmt.Errorf("session id required")
	}
	encoded := base64.RawURLEncoding.EncodeToString([]byte(trimmed))
	return filepath.Join(s.path, fmt.Sprintf("session_%s.jsonl", encoded)), nil
}

func decodeSessionFile(name string) (string, bool) {
	if !strings.HasPrefix(name, "session_") || !strings.HasSuffix(name, ".jsonl") {
		return "", false
	}
	encoded := strings.TrimSuffix(strings.TrimPrefix(name, "session_"), ".jsonl")
	data, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", false
	}
	return string(data), true
}
