package intent

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/thaqi-stratiq/AI-AGENT-POST/structured"
)

const (
	routeIntentToolName        = "route_intent"
	routeIntentToolDescription = "Classify the user's utterance as question, create_instance or other."
)

// DefaultRouteIntentSystemPrompt is the system prompt used by ToolBasedRouter.
const DefaultRouteIntentSystemPrompt = `You are the routing layer of a company intake assistant.

Classify the user's latest message into exactly one intent:
- question: the user asks an informational question instead of providing intake data (e.g. "what does creating an instance do?").
- create_instance: the user explicitly asks to create an instance or start the intake (e.g. "please create an instance for us").
- other: everything else, including messages that simply provide company details, confirmations, or chatter.

IMPORTANT: combine the assistant's previous question with the user's message. A short factual reply to a direct question is never a question itself.

Call the '%s' tool with the result.`

type routeInput struct {
	Utterance string
	History   []*schema.Message
}

type routeResult struct {
	Intent Intent `json:"intent" jsonschema:"required,enum=question,enum=create_instance,enum=other,description=The user's coarse intent"`
}

// ToolBasedRouter asks the model through a forced tool call.
type ToolBasedRouter struct {
	chain *structured.Chain[*routeInput, routeResult]
}

func NewToolBasedRouter(chatModel model.ToolCallingChatModel) (*ToolBasedRouter, error) {
	systemPrompt := fmt.Sprintf(DefaultRouteIntentSystemPrompt, routeIntentToolName)
	chain, err := structured.NewChain[*routeInput, routeResult](
		chatModel,
		func(ctx context.Context, input *routeInput) ([]*schema.Message, error) {
			return []*schema.Message{
				schema.SystemMessage(systemPrompt),
				schema.UserMessage(formatRouteRequest(input)),
			}, nil
		},
		routeIntentToolName,
		routeIntentToolDescription,
	)
	if err != nil {
		return nil, err
	}
	return &ToolBasedRouter{chain: chain}, nil
}

func (r *ToolBasedRouter) Route(ctx context.Context, utterance string, history []*schema.Message) (Intent, error) {
	result, err := r.chain.Invoke(ctx, &routeInput{Utterance: utterance, History: history})
	if err != nil {
		return Other, err
	}
	switch result.Intent {
	case Question, CreateInstance, Other:
		return result.Intent, nil
	case "":
		return Other, fmt.Errorf("empty intent returned by %s", routeIntentToolName)
	default:
		return Other, fmt.Errorf("unknown intent %q returned by %s", result.Intent, routeIntentToolName)
	}
}

func formatRouteRequest(input *routeInput) string {
	sections := make([]string, 0, 2)
	if question := lastAssistantTurn(input.History); question != "" {
		sections = append(sections, fmt.Sprintf("# Assistant question:\n%s", question))
	}
	sections = append(sections, fmt.Sprintf("# User message:\n%s", input.Utterance))
	return strings.Join(sections, "\n\n")
}

func lastAssistantTurn(history []*schema.Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i] != nil && history[i].Role == schema.Assistant {
			return history[i].Content
		}
	}
	return ""
}
