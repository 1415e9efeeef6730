package agent

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"
)

var _ adk.Agent = (*IntakeAgent)(nil)

// IntakeAgent runs the flow under an eino adk runner, loading and saving the
// session state around each turn.
type IntakeAgent struct {
	name        string
	description string
	flow        *IntakeFlow
	states      *StateStore
}

func NewIntakeAgent(name, description string, flow *IntakeFlow, states *StateStore) *IntakeAgent {
	return &IntakeAgent{
		name:        name,
		description: description,
		flow:        flow,
		states:      states,
	}
}

func (a *IntakeAgent) Name(ctx context.Context) string {
	return a.name
}

func (a *IntakeAgent) Description(ctx context.Context) string {
	return a.description
}

func (a *IntakeAgent) Run(ctx context.Context, input *adk.AgentInput, options ...adk.AgentRunOption) *adk.AsyncIterator[*adk.AgentEvent] {
	iter, gen := adk.NewAsyncIteratorPair[*adk.AgentEvent]()
	go func() {
		defer func() {
			if e := recover(); e != nil {
				gen.Send(&adk.AgentEvent{
					Err: fmt.Errorf("recover from panic: %v", e),
				})
			}
			gen.Close()
		}()
		if len(input.Messages) == 0 {
			gen.Send(&adk.AgentEvent{
				Err: fmt.Errorf("no messages in input"),
			})
			return
		}
		state, err := a.states.Load(ctx)
		if err != nil {
			gen.Send(&adk.AgentEvent{
				Err: fmt.Errorf("load state failed: %w", err),
			})
			return
		}
		last := input.Messages[len(input.Messages)-1]
		resp, err := a.flow.Invoke(ctx, &Request{
			UserInput:   last.Content,
			State:       state,
			ChatHistory: input.Messages[:len(input.Messages)-1],
		})
		if err != nil {
			gen.Send(&adk.AgentEvent{
				Err: fmt.Errorf("flow invoke failed: %w", err),
			})
			return
		}
		if err := a.states.Save(ctx, resp.State); err != nil {
			gen.Send(&adk.AgentEvent{
				Err: fmt.Errorf("save state failed: %w", err),
			})
			return
		}
		gen.Send(&adk.AgentEvent{
			Output: &adk.AgentOutput{
				MessageOutput: &adk.MessageVariant{
					IsStreaming: false,
					Message: &schema.Message{
						Role:    schema.Assistant,
						Content: resp.Message,
					},
					Role: schema.Assistant,
				},
			},
		})
	}()
	return iter
}
