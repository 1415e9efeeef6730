package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/thaqi-stratiq/AI-AGENT-POST/intake"
	"github.com/thaqi-stratiq/AI-AGENT-POST/structured"
)

// DefaultExtractSystemPrompt instructs the model to return one JSON object and
// nothing else. Malformed replies degrade to qa, they never crash the turn.
const DefaultExtractSystemPrompt = `You are the interpretation layer of a company intake assistant.

Decide whether the user's message supplies intake data or asks something else, then return ONLY valid JSON with exactly this shape:
{"mode":"","answer":"","fields":{"company_name":"","company_background":"","industry_name":"","customer_name":""}}

Rules:
- mode must be "intake" or "qa".
- mode "intake": copy values the user actually stated into fields; leave absent fields as empty strings; answer stays empty.
- mode "qa": the message is a question or chatter; write a helpful reply into answer and leave every field empty.
- If an expected field is given, prefer reading the whole message as that field's value.
- Do NOT invent values. Do NOT add extra keys. Do NOT wrap in markdown.`

// PromptBasedExtractor drives a plain chat model and parses the JSON reply
// defensively.
type PromptBasedExtractor struct {
	chain  *structured.JSONChain[*Request, Result]
	schema string
}

func NewPromptBasedExtractor(chatModel model.BaseChatModel) (*PromptBasedExtractor, error) {
	profileSchema, err := intake.JsonSchema()
	if err != nil {
		return nil, fmt.Errorf("reflect intake schema: %w", err)
	}
	e := &PromptBasedExtractor{schema: profileSchema}
	e.chain = structured.NewJSONChain[*Request, Result](chatModel, e.buildPrompt)
	return e, nil
}

func (e *PromptBasedExtractor) Extract(ctx context.Context, req *Request) (*Result, error) {
	result, raw, err := e.chain.Invoke(ctx, req)
	if err != nil {
		if errors.Is(err, structured.ErrMalformedResponse) {
			// Best effort: surface the raw text as a QA answer.
			return &Result{Mode: ModeQA, Answer: raw}, nil
		}
		return nil, err
	}
	if result.Mode == "" {
		if result.Answer != "" {
			result.Mode = ModeQA
		} else {
			result.Mode = ModeIntake
		}
	}
	result.Fields = result.Fields.Normalize()
	return result, nil
}

func (e *PromptBasedExtractor) buildPrompt(ctx context.Context, req *Request) ([]*schema.Message, error) {
	sections := []string{
		fmt.Sprintf("# Intake schema:\n```json\n%s\n```", e.schema),
	}
	if req.Expected != "" {
		sections = append(sections, fmt.Sprintf("# Expected field:\n%s", req.Expected))
	}
	if question := lastAssistantTurn(req.History); question != "" {
		sections = append(sections, fmt.Sprintf("# Assistant question:\n%s", question))
	}
	sections = append(sections, fmt.Sprintf("# User message:\n%s", req.Utterance))
	return []*schema.Message{
		schema.SystemMessage(DefaultExtractSystemPrompt),
		schema.UserMessage(strings.Join(sections, "\n\n")),
	}, nil
}

func lastAssistantTurn(history []*schema.Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i] != nil && history[i].Role == schema.Assistant {
			return history[i].Content
		}
	}
	return ""
}
