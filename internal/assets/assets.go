package assets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/seoforge/seoforge/internal/backend"
	"github.com/seoforge/seoforge/internal/common"
)

// Kind selects which generator a session drives.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

func (k Kind) valid() bool { return k == KindImage || k == KindVideo }

// Mode is the session's current state. A session starts in create mode;
// selecting a gallery item moves it to edit mode, where every prompt is
// applied against the selected base asset. There is no rewind here.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

var (
	ErrSessionNotFound = errors.New("assets: session not found")
	ErrAssetNotFound   = errors.New("assets: asset not found")
	ErrInvalidInput    = errors.New("assets: invalid input")
)

// Item is one generated asset in the session's gallery.
type Item struct {
	ID          string    `json:"id"`
	Prompt      string    `json:"prompt"`
	Description string    `json:"description"`
	Data        string    `json:"data"`
	Degraded    bool      `json:"degraded,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Session is one asset-generation workspace.
type Session struct {
	ID   string
	Kind Kind

	mu      sync.Mutex
	mode    Mode
	base    *Item
	gallery []Item
	cache   Cache
}

// SessionView is an immutable snapshot for API consumers.
type SessionView struct {
	ID      string `json:"id"`
	Kind    Kind   `json:"kind"`
	Mode    Mode   `json:"mode"`
	BaseID  string `json:"base_id,omitempty"`
	Gallery []Item `json:"gallery"`
}

func (s *Session) view() SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := SessionView{
		ID:      s.ID,
		Kind:    s.Kind,
		Mode:    s.mode,
		Gallery: append([]Item(nil), s.gallery...),
	}
	if s.base != nil {
		v.BaseID = s.base.ID
	}
	return v
}

// Generator is the slice of the AI backend asset sessions need.
type Generator interface {
	GenerateImage(ctx context.Context, req backend.AssetRequest) (*backend.AssetResult, error)
	GenerateVideo(ctx context.Context, req backend.AssetRequest) (*backend.AssetResult, error)
}

// Manager owns asset sessions. newCache is invoked once per session so each
// session gets its own prompt cache.
type Manager struct {
	generator Generator
	newCache  func() Cache

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(generator Generator, newCache func() Cache) *Manager {
	if newCache == nil {
		newCache = func() Cache { return NewLRUCache(64) }
	}
	return &Manager{
		generator: generator,
		newCache:  newCache,
		sessions:  make(map[string]*Session),
	}
}

// NewSession opens a session of the given kind in create mode.
func (m *Manager) NewSession(kind Kind) (SessionView, error) {
	if !kind.valid() {
		return SessionView{}, fmt.Errorf("%w: unknown asset kind %q", ErrInvalidInput, kind)
	}
	s := &Session{
		ID:    uuid.NewString(),
		Kind:  kind,
		mode:  ModeCreate,
		cache: m.newCache(),
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	common.Logger().Info("assets: session opened", "session", s.ID, "kind", kind)
	return s.view(), nil
}

func (m *Manager) session(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// SessionView returns a snapshot of the session.
func (m *Manager) SessionView(id string) (SessionView, error) {
	s, err := m.session(id)
	if err != nil {
		return SessionView{}, err
	}
	return s.view(), nil
}

// Generate runs a prompt. In create mode the prompt stands alone; in edit
// mode it is applied to the selected base asset. Identical prompts against
// the same base are served from the session cache without a backend call.
func (m *Manager) Generate(ctx context.Context, sessionID, prompt string) (Item, error) {
	s, err := m.session(sessionID)
	if err != nil {
		return Item{}, err
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Item{}, fmt.Errorf("%w: prompt required", ErrInvalidInput)
	}

	s.mu.Lock()
	req := backend.AssetRequest{Prompt: prompt}
	cacheKey := prompt
	if s.mode == ModeEdit && s.base != nil {
		req.BaseID = s.base.ID
		req.BaseData = s.base.Data
		cacheKey = s.base.ID + "\x00" + prompt
	}
	cache := s.cache
	s.mu.Unlock()

	if cached, ok := cache.Get(cacheKey); ok {
		if item, ok := cached.(Item); ok {
			return item, nil
		}
	}

	result, degraded := m.generate(ctx, s.Kind, req)
	item := Item{
		ID:          uuid.NewString(),
		Prompt:      prompt,
		Description: result.Description,
		Data:        result.Data,
		Degraded:    degraded,
		CreatedAt:   time.Now().UTC(),
	}
	s.mu.Lock()
	s.gallery = append(s.gallery, item)
	s.mu.Unlock()
	if !degraded {
		cache.Set(cacheKey, item)
	}
	return item, nil
}

func (m *Manager) generate(ctx context.Context, kind Kind, req backend.AssetRequest) (*backend.AssetResult, bool) {
	var (
		result *backend.AssetResult
		err    error
	)
	switch kind {
	case KindVideo:
		result, err = m.generator.GenerateVideo(ctx, req)
	default:
		result, err = m.generator.GenerateImage(ctx, req)
	}
	if err != nil {
		common.Logger().Warn("assets: generation degraded", "kind", kind, "error", err)
		return backend.FallbackAsset(req.Prompt), true
	}
	return result, false
}

// SelectBase moves the session into edit mode on a gallery item.
func (m *Manager) SelectBase(sessionID, assetID string) (SessionView, error) {
	s, err := m.session(sessionID)
	if err != nil {
		return SessionView{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.gallery {
		if s.gallery[i].ID == assetID {
			base := s.gallery[i]
			s.base = &base
			s.mode = ModeEdit
			return m.viewLocked(s), nil
		}
	}
	return SessionView{}, ErrAssetNotFound
}

// ClearBase returns the session to create mode.
func (m *Manager) ClearBase(sessionID string) (SessionView, error) {
	s, err := m.session(sessionID)
	if err != nil {
		return SessionView{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.base = nil
	s.mode = ModeCreate
	return m.viewLocked(s), nil
}

func (m *Manager) viewLocked(s *Session) SessionView {
	v := SessionView{
		ID:      s.ID,
		Kind:    s.Kind,
		Mode:    s.mode,
		Gallery: append([]Item(nil), s.gallery...),
	}
	if s.base != nil {
		v.BaseID = s.base.ID
	}
	return v
}

// Gallery returns the session's generated assets in creation order.
func (m *Manager) Gallery(sessionID string) ([]Item, error) {
	s, err := m.session(sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Item(nil), s.gallery...), nil
}
