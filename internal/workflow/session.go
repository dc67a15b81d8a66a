package workflow

import (
	"sync"
	"time"

	"github.com/seoforge/seoforge/internal/conversation"
	"github.com/seoforge/seoforge/internal/profile"
)

// Notice is a dismissible non-fatal banner raised when a step degrades to
// its fallback result.
type Notice struct {
	ID        string    `json:"id"`
	Level     string    `json:"level"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Session holds one workspace run. The busy flag enforces the single-flight
// rule: while an executor is in flight every other action on the session is
// rejected, never queued. mu guards the scalar fields; the log has its own
// lock.
type Session struct {
	ID       string
	SiteURL  string
	SiteKey  string
	Industry string

	Log *conversation.Log

	mu          sync.Mutex
	currentStep Step
	state       ProjectState
	profile     profile.BrandProfile
	notices     []Notice
	busy        bool
	persisted   int
	createdAt   time.Time
	updatedAt   time.Time
}

// View is an immutable snapshot of a session for API consumers.
type View struct {
	ID          string       `json:"id"`
	SiteURL     string       `json:"site_url"`
	Industry    string       `json:"industry"`
	CurrentStep Step         `json:"current_step"`
	StepName    string       `json:"step_name"`
	Busy        bool         `json:"busy"`
	State       ProjectState `json:"state"`
	Notices     []Notice     `json:"notices,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (s *Session) view() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		ID:          s.ID,
		SiteURL:     s.SiteURL,
		Industry:    s.Industry,
		CurrentStep: s.currentStep,
		StepName:    s.currentStep.String(),
		Busy:        s.busy,
		State:       s.state.clone(),
		Notices:     append([]Notice(nil), s.notices...),
		CreatedAt:   s.createdAt,
		UpdatedAt:   s.updatedAt,
	}
}

// CurrentStep returns the session's frontier step.
func (s *Session) CurrentStep() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentStep
}

// State returns a snapshot of the accumulated project state.
func (s *Session) State() ProjectState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// advance moves the frontier to the executor's own step. It never moves
// backward; only an explicit rewind does that.
func (s *Session) advance(step Step) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if step > s.currentStep {
		s.currentStep = step
	}
	s.updatedAt = time.Now().UTC()
}

// update runs fn with the session lock held.
func (s *Session) update(fn func(*Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
	s.updatedAt = time.Now().UTC()
}
