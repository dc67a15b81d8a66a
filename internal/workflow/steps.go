package workflow

import (
	"fmt"

	"github.com/seoforge/seoforge/internal/conversation"
)

// Step identifies one stage of the fixed 7-stage workflow. The total order
// matters: rewinds are legal only to a strictly smaller step, and the current
// step gates which executor may run.
type Step int

const (
	StepDiagnosis Step = iota + 1
	StepCompetitors
	StepAnalysis
	StepSolution
	StepBrief
	StepArticle
	StepPublish
)

const firstStep, lastStep = StepDiagnosis, StepPublish

func (s Step) Valid() bool {
	return s >= firstStep && s <= lastStep
}

func (s Step) String() string {
	switch s {
	case StepDiagnosis:
		return "diagnosis"
	case StepCompetitors:
		return "competitors"
	case StepAnalysis:
		return "analysis"
	case StepSolution:
		return "solution"
	case StepBrief:
		return "brief"
	case StepArticle:
		return "article"
	case StepPublish:
		return "publish"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// stepCards is the static bidirectional step/card mapping. Every card type
// belongs to exactly one step.
var stepCards = map[Step]conversation.MessageType{
	StepDiagnosis:   conversation.CardDiagnosis,
	StepCompetitors: conversation.CardCompetitors,
	StepAnalysis:    conversation.CardAnalysis,
	StepSolution:    conversation.CardSolutions,
	StepBrief:       conversation.CardBrief,
	StepArticle:     conversation.CardPreflight,
	StepPublish:     conversation.CardPublish,
}

var cardSteps = func() map[conversation.MessageType]Step {
	out := make(map[conversation.MessageType]Step, len(stepCards))
	for step, card := range stepCards {
		out[card] = step
	}
	return out
}()

// CardForStep returns the card type a step's executor emits.
func CardForStep(s Step) (conversation.MessageType, bool) {
	card, ok := stepCards[s]
	return card, ok
}

// StepForCard returns the step a card type belongs to.
func StepForCard(t conversation.MessageType) (Step, bool) {
	step, ok := cardSteps[t]
	return step, ok
}

// CardsAtOrAfter returns the card types belonging to steps >= target, in
// step order. Used by the rewind controller to compute deactivations.
func CardsAtOrAfter(target Step) []conversation.MessageType {
	var cards []conversation.MessageType
	for s := target; s <= lastStep; s++ {
		if card, ok := stepCards[s]; ok {
			cards = append(cards, card)
		}
	}
	return cards
}
