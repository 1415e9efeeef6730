package agent

import (
	"github.com/cloudwego/eino/schema"

	"github.com/thaqi-stratiq/AI-AGENT-POST/intake"
)

// State is the externally observable conversation state: stage, accumulated
// profile and the awaiting-field marker. It is handed back as a snapshot each
// turn; the flow never mutates the caller's copy.
type State struct {
	Stage             intake.Stage   `json:"stage"`
	Profile           intake.Profile `json:"profile"`
	Awaiting          intake.Field   `json:"awaiting_field,omitempty"`
	IndustryConfirmed bool           `json:"industry_confirmed"`
	Created           bool           `json:"created"`
	CreatedID         string         `json:"created_id,omitempty"`
}

func NewState() *State {
	return &State{Stage: intake.StageIdle}
}

func (s *State) Clone() *State {
	if s == nil {
		return NewState()
	}
	c := *s
	return &c
}

type Request struct {
	UserInput string `json:"user_input"`
	// State is the snapshot from the previous turn; nil starts a session.
	State *State `json:"state,omitempty"`
	// ChatHistory holds prior turns, excluding the current utterance.
	ChatHistory []*schema.Message `json:"chat_history,omitempty"`
}

type Response struct {
	// Message is the assistant reply; empty for a whitespace-only turn.
	Message  string            `json:"message,omitempty"`
	State    *State            `json:"state,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}
