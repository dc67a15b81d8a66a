package workflow

import (
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
	"time"

	"github.com/seoforge/seoforge/internal/common"
	"github.com/seoforge/seoforge/internal/conversation"
)

// Snapshot is the durable image of a session minus its transcript, which
// the conversation store keeps separately.
type Snapshot struct {
	ID          string       `json:"id"`
	SiteURL     string       `json:"site_url"`
	SiteKey     string       `json:"site_key"`
	Industry    string       `json:"industry"`
	CurrentStep Step         `json:"current_step"`
	State       ProjectState `json:"state"`
	Notices     []Notice     `json:"notices,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// SnapshotStore persists one JSON file per session, written atomically via
// a temp file and rename so a crash never leaves a torn snapshot.
type SnapshotStore struct {
	path string
	mu   sync.Mutex
}

func NewSnapshotStore(path string) (*SnapshotStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("snapshot path required")
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &SnapshotStore{path: path}, nil
}

func (s *SnapshotStore) file(id string) string {
	encoded := base64.RawURLEncoding.EncodeToString([]byte(id))
	return filepath.Join(s.path, fmt.Sprintf("state_%s.json", encoded))
}

// Save writes the snapshot atomically.
func (s *SnapshotStore) Save(snap Snapshot) error {
	if strings.TrimSpace(snap.ID) == "" {
		return errors.New("snapshot id required")
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	target := s.file(snap.ID)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// Load reads one session's snapshot.
func (s *SnapshotStore) Load(id string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.file(id))
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

// List returns the ids of all persisted sessions.
func (s *SnapshotStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshot dir: %w", err)
	}
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "state_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		encoded := strings.TrimSuffix(strings.TrimPrefix(name, "state_"), ".json")
		raw, err := base64.RawURLEncoding.DecodeString(encoded)
		if err != nil {
			continue
		}
		ids = append(ids, string(raw))
	}
	sort.Strings(ids)
	return ids, nil
}

// AttachSnapshots enables snapshot persistence; every executor run ends with
// a fresh snapshot of the session.
func (o *Orchestrator) AttachSnapshots(store *SnapshotStore) {
	o.snapshots = store
}

func (o *Orchestrator) snapshot(s *Session) {
	if o.snapshots == nil {
		return
	}
	s.mu.Lock()
	snap := Snapshot{
		ID:          s.ID,
		SiteURL:     s.SiteURL,
		SiteKey:     s.SiteKey,
		Industry:    s.Industry,
		CurrentStep: s.currentStep,
		State:       s.state.clone(),
		Notices:     append([]Notice(nil), s.notices...),
		CreatedAt:   s.createdAt,
		UpdatedAt:   s.updatedAt,
	}
	s.mu.Unlock()
	if err := o.snapshots.Save(snap); err != nil {
		common.Logger().Warn("workflow: snapshot save failed", "session", s.ID, "error", err)
	}
}

// RestoreSessions rebuilds sessions from snapshots and their persisted
// transcripts. Sessions that fail to load are skipped, not fatal.
func (o *Orchestrator) RestoreSessions(ctx context.Context) (int, error) {
	if o.snapshots == nil {
		return 0, nil
	}
	ids, err := o.snapshots.List()
	if err != nil {
		return 0, err
	}
	restored := 0
	for _, id := range ids {
		snap, err := o.snapshots.Load(id)
		if err != nil {
			common.Logger().Warn("workflow: snapshot load failed", "session", id, "error", err)
			continue
		}
		log := conversation.NewLog()
		if o.store != nil {
			if loaded, err := o.store.Load(ctx, id); err != nil {
				common.Logger().Warn("workflow: transcript load failed", "session", id, "error", err)
			} else {
				log = loaded
			}
		}
		s := &Session{
			ID:          snap.ID,
			SiteURL:     snap.SiteURL,
			SiteKey:     snap.SiteKey,
			Industry:    snap.Industry,
			Log:         log,
			currentStep: snap.CurrentStep,
			state:       snap.State,
			notices:     snap.Notices,
			persisted:   log.Len(),
			createdAt:   snap.CreatedAt,
			updatedAt:   snap.UpdatedAt,
		}
		s.profile = o.loadProfile(ctx, s)
		o.mu.Lock()
		o.sessions[s.ID] = s
		o.mu.Unlock()
		restored++
	}
	if restored > 0 {
		common.Logger().Info("workflow: sessions restored", "count", restored)
	}
	return restored, nil
}
