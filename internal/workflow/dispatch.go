package workflow

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/seoforge/seoforge/internal/backend"
	"github.com/seoforge/seoforge/internal/common"
	"github.com/seoforge/seoforge/internal/conversation"
)

// historyWindow caps how much transcript the classifier sees.
const historyWindow = 6

// HandleText routes a free-form chat message: the backend classifies it into
// a navigation, a redo of the current step, or a plain answer, and the
// orchestrator validates the verdict before acting on it.
func (o *Orchestrator) HandleText(ctx context.Context, sessionID, text string) (View, error) {
	s, release, err := o.acquire(sessionID)
	if err != nil {
		return View{}, err
	}
	defer release()

	text = strings.TrimSpace(text)
	if text == "" {
		return s.view(), nil
	}
	s.Log.AppendText(conversation.TypeUser, text)

	intent, err := o.backend.Classify(ctx, backend.ClassifyRequest{
		Text:        text,
		CurrentStep: int(s.CurrentStep()),
		History:     o.history(s),
	})
	if err != nil {
		common.Logger().Warn("workflow: classify failed", "session", s.ID, "error", err)
		o.agentSay(s, "I had trouble processing that. Could you rephrase, or use the step controls instead?")
		return s.view(), nil
	}

	switch intent.Kind {
	case backend.IntentNavigate:
		o.goToStep(s, Step(intent.TargetStep))
	case backend.IntentRerun:
		o.agentSay(s, "Sure, let me redo that with your feedback.")
		o.rerun(ctx, s, intent.Instructions)
	case backend.IntentAnswer:
		answer := strings.TrimSpace(intent.Answer)
		if answer == "" {
			answer = "I'm not sure how to help with that here. You can ask about any step, redo the current one, or go back to an earlier one."
		}
		o.agentSay(s, "%s", answer)
	default:
		o.agentSay(s, "I'm not sure what you'd like to do. You can redo the current step or go back to an earlier one.")
	}
	return s.view(), nil
}

// history renders the most recent turns as compact lines for the classifier.
func (o *Orchestrator) history(s *Session) []string {
	tail := s.Log.Tail(historyWindow)
	lines := make([]string, 0, len(tail))
	for _, msg := range tail {
		switch msg.Type {
		case conversation.TypeUser, conversation.TypeAgent:
			var payload conversation.TextPayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				continue
			}
			lines = append(lines, string(msg.Type)+": "+payload.Text)
		case conversation.TypeToolUsage:
			continue
		default:
			lines = append(lines, string(msg.Type)+" card shown")
		}
	}
	return lines
}
