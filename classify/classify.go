package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/thaqi-stratiq/AI-AGENT-POST/intake"
	"github.com/thaqi-stratiq/AI-AGENT-POST/structured"
)

// Classifier maps a company background to one industry label. The label is not
// trusted here; the flow validates membership in the fixed set.
type Classifier interface {
	Classify(ctx context.Context, background string) (string, error)
}

// DefaultClassifySystemPrompt asks for a one-key JSON object.
const DefaultClassifySystemPrompt = `You are an industry classification assistant.

Map the company background to exactly one label from this list:
%s

Return ONLY valid JSON with exactly this key:
{"industry_name":""}

Rules:
- Pick the single closest label; never invent a new one.
- Do NOT add extra keys.
- Do NOT wrap in markdown.`

type classifyResult struct {
	IndustryName string `json:"industry_name"`
}

type PromptBasedClassifier struct {
	chain *structured.JSONChain[string, classifyResult]
}

func NewPromptBasedClassifier(chatModel model.BaseChatModel) *PromptBasedClassifier {
	systemPrompt := fmt.Sprintf(DefaultClassifySystemPrompt, strings.Join(intake.Industries, ", "))
	chain := structured.NewJSONChain[string, classifyResult](
		chatModel,
		func(ctx context.Context, background string) ([]*schema.Message, error) {
			return []*schema.Message{
				schema.SystemMessage(systemPrompt),
				schema.UserMessage(background),
			}, nil
		},
	)
	return &PromptBasedClassifier{chain: chain}
}

func (c *PromptBasedClassifier) Classify(ctx context.Context, background string) (string, error) {
	result, raw, err := c.chain.Invoke(ctx, background)
	if err != nil {
		return "", err
	}
	label := strings.TrimSpace(result.IndustryName)
	if label == "" {
		return "", fmt.Errorf("empty industry label in model response: %s", raw)
	}
	return label, nil
}
