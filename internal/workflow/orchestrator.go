package workflow

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
	"github.com/seoforge/seoforge/internal/conversation"
	"github.com/seoforge/seoforge/internal/knowledge"
	"github.com/seoforge/seoforge/internal/profile"
)

var (
	// ErrSessionBusy is returned when an action arrives while a step
	// executor is still in flight for the same session.
	ErrSessionBusy = errors.New("workflow: session busy")
	// ErrSessionNotFound is returned for unknown session ids.
	ErrSessionNotFound = errors.New("workflow: session not found")
	// ErrInvalidInput covers malformed user-supplied arguments.
	ErrInvalidInput = errors.New("workflow: invalid input")
)

// Orchestrator owns the session registry and drives the step executors.
type Orchestrator struct {
	backend   backend.Backend
	profiles  profile.Store
	know      *knowledge.Base
	store     *conversation.Store
	snapshots *SnapshotStore

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewOrchestrator wires the orchestrator. The conversation store may be nil,
// in which case transcripts live only in memory.
func NewOrchestrator(b backend.Backend, profiles profile.Store, know *knowledge.Base, store *conversation.Store) *Orchestrator {
	return &Orchestrator{
		backend:  b,
		profiles: profiles,
		know:     know,
		store:    store,
		sessions: make(map[string]*Session),
	}
}

// Session returns the session for id.
func (o *Orchestrator) Session(id string) (*Session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	s, ok := o.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// SessionView returns an immutable snapshot for id.
func (o *Orchestrator) SessionView(id string) (View, error) {
	s, err := o.Session(id)
	if err != nil {
		return View{}, err
	}
	return s.view(), nil
}

// Sessions lists snapshots of every live session.
func (o *Orchestrator) Sessions() []View {
	o.mu.Lock()
	list := make([]*Session, 0, len(o.sessions))
	for _, s := range o.sessions {
		list = append(list, s)
	}
	o.mu.Unlock()
	views := make([]View, 0, len(list))
	for _, s := range list {
		views = append(views, s.view())
	}
	return views
}

// Messages returns the active transcript for id, excluding deactivated cards.
func (o *Orchestrator) Messages(id string) ([]conversation.Message, error) {
	s, err := o.Session(id)
	if err != nil {
		return nil, err
	}
	msgs := s.Log.Messages()
	out := make([]conversation.Message, 0, len(msgs))
	for _, m := range msgs {
		if s.Log.IsDeactivated(m.ID) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// Transcript returns every message for id, including deactivated cards, with
// the deactivated id set alongside.
func (o *Orchestrator) Transcript(id string) ([]conversation.Message, map[string]bool, error) {
	s, err := o.Session(id)
	if err != nil {
		return nil, nil, err
	}
	deact := make(map[string]bool)
	for _, mid := range s.Log.Deactivated() {
		deact[mid] = true
	}
	return s.Log.Messages(), deact, nil
}

// acquire looks up the session and claims its busy flag. The caller must
// invoke the returned release func once the executor finishes.
func (o *Orchestrator) acquire(id string) (*Session, func(), error) {
	s, err := o.Session(id)
	if err != nil {
		return nil, nil, err
	}
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return nil, nil, ErrSessionBusy
	}
	s.busy = true
	s.mu.Unlock()
	release := func() {
		s.mu.Lock()
		s.busy = false
		s.updatedAt = time.Now().UTC()
		s.mu.Unlock()
		o.persist(s)
	}
	return s, release, nil
}

// persist appends any messages the store has not seen yet and refreshes the
// session snapshot.
func (o *Orchestrator) persist(s *Session) {
	o.snapshot(s)
	if o.store == nil {
		return
	}
	msgs := s.Log.Messages()
	s.mu.Lock()
	from := s.persisted
	if from > len(msgs) {
		from = len(msgs)
	}
	s.persisted = len(msgs)
	s.mu.Unlock()
	if len(msgs[from:]) > 0 {
		if err := o.store.AppendMessages(context.Background(), s.ID, msgs[from:]); err != nil {
			common.Logger().Warn("workflow: transcript persist failed", "session", s.ID, "error", err)
		}
	}
}

// notice records a degraded-result banner on the session and tells the user
// in chat. Both surfaces carry the same text; the banner is dismissible, the
// chat turn stays in the transcript.
func (o *Orchestrator) notice(s *Session, format string, args ...any) {
	n := Notice{
		ID:        uuid.NewString(),
		Level:     "warning",
		Text:      fmt.Sprintf(format, args...),
		CreatedAt: time.Now().UTC(),
	}
	s.update(func(s *Session) {
		s.notices = append(s.notices, n)
	})
	o.agentSay(s, "%s", n.Text)
	common.Logger().Warn("workflow: degraded result", "session", s.ID, "notice", n.Text)
}

// DismissNotice removes a banner by id.
func (o *Orchestrator) DismissNotice(sessionID, noticeID string) error {
	s, err := o.Session(sessionID)
	if err != nil {
		return err
	}
	s.update(func(s *Session) {
		kept := s.notices[:0]
		for _, n := range s.notices {
			if n.ID != noticeID {
				kept = append(kept, n)
			}
		}
		s.notices = kept
	})
	return nil
}

// deactivate marks card ids stale on the log and mirrors them to the store.
func (o *Orchestrator) deactivate(s *Session, ids ...string) {
	if len(ids) == 0 {
		return
	}
	s.Log.Deactivate(ids...)
	if o.store != nil {
		if err := o.store.AppendDeactivations(context.Background(), s.ID, ids); err != nil {
			common.Logger().Warn("workflow: deactivation persist failed", "session", s.ID, "error", err)
		}
	}
}

// agentSay appends a plain agent message.
func (o *Orchestrator) agentSay(s *Session, format string, args ...any) {
	s.Log.AppendText(conversation.TypeAgent, fmt.Sprintf(format, args...))
}

// toolSay appends a tool-usage progress line.
func (o *Orchestrator) toolSay(s *Session, format string, args ...any) {
	s.Log.AppendText(conversation.TypeToolUsage, fmt.Sprintf(format, args...))
}

// card appends a structured card message and returns its id.
func (o *Orchestrator) card(s *Session, typ conversation.MessageType, payload any) string {
	id, err := s.Log.Append(typ, payload)
	if err != nil {
		common.Logger().Warn("workflow: card append failed", "session", s.ID, "type", typ, "error", err)
	}
	return id
}

// loadProfile fetches or seeds the brand profile for the session's site.
func (o *Orchestrator) loadProfile(ctx context.Context, s *Session) profile.BrandProfile {
	if o.profiles != nil {
		if p, err := o.profiles.Get(ctx, s.SiteKey); err != nil {
			common.Logger().Warn("workflow: profile load failed", "site", s.SiteKey, "error", err)
		} else if p != nil {
			return *p
		}
	}
	return profile.BrandProfile{SiteKey: s.SiteKey, Industry: s.Industry}
}

// saveProfile writes the brand profile back, logging on failure. Profile
// persistence is best effort and never blocks the workflow.
func (o *Orchestrator) saveProfile(ctx context.Context, p profile.BrandProfile) {
	if o.profiles == nil {
		return
	}
	if err := o.profiles.Put(ctx, p); err != nil {
		common.Logger().Warn("workflow: profile save failed", "site", p.SiteKey, "error", err)
	}
}

func normalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: site url required", ErrInvalidInput)
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	return raw, nil
}
