package conversation

import (
	"encoding/json"
	"time"
)

// MessageType distinguishes plain chat turns from the structured card
// messages each workflow step emits.
type MessageType string

const (
	TypeUser      MessageType = "user"
	TypeAgent     MessageType = "agent"
	TypeToolUsage MessageType = "tool_usage"

	CardDiagnosis   MessageType = "card_diagnosis"
	CardCompetitors MessageType = "card_competitors"
	CardAnalysis    MessageType = "card_analysis"
	CardSolutions   MessageType = "card_solutions"
	CardBrief       MessageType = "card_brief"
	CardPreflight   MessageType = "card_preflight"
	CardPublish     MessageType = "card_publish"
)

// IsCard reports whether this message type carries an interactive step
// result. Only card messages are ever deactivated; plain turns stay live.
func (t MessageType) IsCard() bool {
	switch t {
	case CardDiagnosis, CardCompetitors, CardAnalysis, CardSolutions, CardBrief, CardPreflight, CardPublish:
		return true
	}
	return false
}

// Message is one immutable entry in a session's conversation log. Order in
// the log is authoritative; CreatedAt is informational.
type Message struct {
	ID        string          `json:"id"`
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// TextPayload is the payload shape for user, agent and tool-usage turns.
type TextPayload struct {
	Text string `json:"text"`
}
