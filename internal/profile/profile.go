package profile

import (
	"context"
	"strings"
	"sync"
	"time"
)

// BrandProfile is the long-lived per-site record read at session start and
// updated incrementally by several workflow steps. Updates are
// read-then-write with last-writer-wins semantics; the orchestrator
// serializes writers per session.
type BrandProfile struct {
	SiteKey        string    `json:"site_key" db:"site_key"`
	BrandVoice     string    `json:"brand_voice" db:"brand_voice"`
	Industry       string    `json:"industry" db:"industry"`
	TargetKeywords []string  `json:"target_keywords" db:"-"`
	KeywordHistory []string  `json:"keyword_history" db:"-"`
	LastSolution   string    `json:"last_solution" db:"last_solution"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// AppendKeywords records keywords into history, skipping duplicates.
func (p *BrandProfile) AppendKeywords(keywords ...string) {
	seen := make(map[string]struct{}, len(p.KeywordHistory))
	for _, kw := range p.KeywordHistory {
		seen[strings.ToLower(kw)] = struct{}{}
	}
	for _, kw := range keywords {
		trimmed := strings.TrimSpace(kw)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[strings.ToLower(trimmed)]; ok {
			continue
		}
		seen[strings.ToLower(trimmed)] = struct{}{}
		p.KeywordHistory = append(p.KeywordHistory, trimmed)
	}
}

// Store is the profile persistence contract. Get returns (nil, nil) when no
// profile exists for the key; Put overwrites unconditionally.
type Store interface {
	Get(ctx context.Context, siteKey string) (*BrandProfile, error)
	Put(ctx context.Context, profile BrandProfile) error
	Close() error
}

// SiteKey normalizes a URL or hostname into the store key.
func SiteKey(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	for _, prefix := range []string{"https://", "http://"} {
		key = strings.TrimPrefix(key, prefix)
	}
	key = strings.TrimPrefix(key, "www.")
	if idx := strings.IndexAny(key, "/?#"); idx >= 0 {
		key = key[:idx]
	}
	return key
}

// MemoryStore is an in-memory Store used in tests and offline runs.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]BrandProfile
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]BrandProfile)}
}

func (s *MemoryStore) Get(ctx context.Context, siteKey string) (*BrandProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[siteKey]
	if !ok {
		return nil, nil
	}
	clone := profile
	clone.TargetKeywords = append([]string(nil), profile.TargetKeywords...)
	clone.KeywordHistory = append([]string(nil), profile.KeywordHistory...)
	return &clone, nil
}

func (s *MemoryStore) Put(ctx context.Context, profile BrandProfile) error {
	profile.UpdatedAt = time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.SiteKey] = profile
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
