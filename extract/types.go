package extract

import (
	"context"

	"github.com/cloudwego/eino/schema"

	"github.com/thaqi-stratiq/AI-AGENT-POST/intake"
)

type Mode string

const (
	// ModeQA means the utterance was read as a question; Answer carries the reply.
	ModeQA Mode = "qa"
	// ModeIntake means the utterance supplied data; Fields carries what was found.
	ModeIntake Mode = "intake"
)

// Result is the interpretation of one utterance. Exactly one of Answer/Fields
// is meaningful, per Mode.
type Result struct {
	Mode   Mode           `json:"mode"`
	Answer string         `json:"answer,omitempty"`
	Fields intake.Profile `json:"fields,omitempty"`
}

// Request carries one utterance plus an optional expected-field hint.
type Request struct {
	Expected  intake.Field
	Utterance string
	History   []*schema.Message
}

type Extractor interface {
	Extract(ctx context.Context, req *Request) (*Result, error)
}
