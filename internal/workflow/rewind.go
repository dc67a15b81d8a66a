package workflow

import (
	"context"

	"github.com/seoforge/seoforge/internal/common"
)

// GoToStep rewinds the session to an earlier step. An illegal target (the
// current step, a later one, or out of range) is answered with a clarifying
// message and changes nothing; it is not an error.
func (o *Orchestrator) GoToStep(ctx context.Context, sessionID string, target Step) (View, error) {
	s, release, err := o.acquire(sessionID)
	if err != nil {
		return View{}, err
	}
	defer release()
	o.goToStep(s, target)
	return s.view(), nil
}

func (o *Orchestrator) goToStep(s *Session, target Step) {
	current := s.CurrentStep()
	if !target.Valid() || target >= current {
		o.agentSay(s, "I can only go back to a step we've already completed. You're on %s now; tell me an earlier step to revisit.", current)
		return
	}
	common.Logger().Info("workflow: rewind", "session", s.ID, "from", current.String(), "to", target.String())

	var stale []string
	for _, card := range CardsAtOrAfter(target) {
		stale = append(stale, s.Log.MessagesOfType(card)...)
	}
	o.deactivate(s, stale...)
	s.update(func(s *Session) {
		s.state.ClearFrom(target)
		s.currentStep = target
	})
	o.agentSay(s, "Rewinding to the %s step. Everything from it onward has been cleared; tell me to redo this step when you're ready.", target)
}

// Rerun repeats the session's current step, optionally steered by user
// feedback, superseding the step's previous card.
func (o *Orchestrator) Rerun(ctx context.Context, sessionID, instructions string) (View, error) {
	s, release, err := o.acquire(sessionID)
	if err != nil {
		return View{}, err
	}
	defer release()
	o.rerun(ctx, s, instructions)
	return s.view(), nil
}

func (o *Orchestrator) rerun(ctx context.Context, s *Session, instructions string) {
	current := s.CurrentStep()
	if !current.Valid() {
		o.agentSay(s, "There's nothing to redo yet; start by giving me a site to diagnose.")
		return
	}
	if card, ok := CardForStep(current); ok {
		if id, found := s.Log.LastOfType(card); found {
			o.deactivate(s, id)
		}
	}
	o.runStep(ctx, s, current, instructions)
}

// runStep dispatches to the executor that owns the step. Executors verify
// their own upstream inputs and answer with guidance when one is missing.
func (o *Orchestrator) runStep(ctx context.Context, s *Session, step Step, instructions string) {
	switch step {
	case StepDiagnosis:
		o.execDiagnosis(ctx, s, instructions)
	case StepCompetitors:
		o.execCompetitors(ctx, s, instructions)
	case StepAnalysis:
		o.execAnalysis(ctx, s, instructions)
	case StepSolution:
		o.execSolutions(ctx, s, instructions)
	case StepBrief:
		o.execBrief(ctx, s, instructions)
	case StepArticle:
		o.execArticle(ctx, s, instructions)
	case StepPublish:
		o.execPublish(ctx, s, instructions)
	}
}
