package dialogue

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Generator produces free-form replies: QA answers during intake and normal
// chat once the intake is done. The full history is replayed each time.
type Generator interface {
	Reply(ctx context.Context, history []*schema.Message, utterance string) (string, error)
}

// DefaultChatSystemPrompt frames the assistant for both QA detours and
// post-creation chat.
const DefaultChatSystemPrompt = `You are a friendly assistant for a company onboarding service. Answer the user's questions helpfully and concisely. When the user is in the middle of providing company details, answer without asking for unrelated information.`

type ModelGenerator struct {
	systemPrompt string
	chatModel    model.BaseChatModel
}

type GeneratorOption func(*ModelGenerator)

// WithChatSystemPrompt overrides the system prompt used by ModelGenerator.
func WithChatSystemPrompt(systemPrompt string) GeneratorOption {
	return func(g *ModelGenerator) {
		g.systemPrompt = systemPrompt
	}
}

func NewModelGenerator(chatModel model.BaseChatModel, opts ...GeneratorOption) *ModelGenerator {
	g := &ModelGenerator{
		systemPrompt: DefaultChatSystemPrompt,
		chatModel:    chatModel,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

func (g *ModelGenerator) Reply(ctx context.Context, history []*schema.Message, utterance string) (string, error) {
	messages := make([]*schema.Message, 0, len(history)+2)
	messages = append(messages, schema.SystemMessage(g.systemPrompt))
	for _, m := range history {
		if m != nil && m.Role != schema.System {
			messages = append(messages, m)
		}
	}
	messages = append(messages, schema.UserMessage(utterance))

	response, err := g.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("LLM call failed: %w", err)
	}
	return response.Content, nil
}
