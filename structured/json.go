package structured

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/model"
)

// ErrMalformedResponse marks model output that carried no decodable JSON object.
// Callers decide how to degrade; the raw text is always preserved.
var ErrMalformedResponse = errors.New("no JSON object in model response")

// FirstJSONObject cuts the first top-level `{...}` span out of text, tolerating
// surrounding prose and markdown fencing.
func FirstJSONObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return text[start : end+1], true
}

// DecodeFirstObject parses the first JSON object span of text into T.
func DecodeFirstObject[T any](text string) (*T, error) {
	span, ok := FirstJSONObject(text)
	if !ok {
		return nil, ErrMalformedResponse
	}
	var out T
	if err := sonic.UnmarshalString(span, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &out, nil
}

// JSONChain prompts the model for plain text expected to contain one JSON
// object and decodes it defensively. Raw is returned alongside so callers can
// fall back to treating the reply as free text when decoding fails.
type JSONChain[TInput, TOutput any] struct {
	PromptBuilder PromptBuilder[TInput]
	ChatModel     model.BaseChatModel
}

func NewJSONChain[TInput, TOutput any](
	chatModel model.BaseChatModel,
	promptBuilder PromptBuilder[TInput],
) *JSONChain[TInput, TOutput] {
	return &JSONChain[TInput, TOutput]{
		PromptBuilder: promptBuilder,
		ChatModel:     chatModel,
	}
}

func (s *JSONChain[TInput, TOutput]) Invoke(ctx context.Context, input TInput) (*TOutput, string, error) {
	messages, err := s.PromptBuilder(ctx, input)
	if err != nil {
		return nil, "", fmt.Errorf("build prompt failed: %w", err)
	}

	response, err := s.ChatModel.Generate(ctx, messages)
	if err != nil {
		return nil, "", fmt.Errorf("call model failed: %w", err)
	}
	raw := strings.TrimSpace(response.Content)

	result, err := DecodeFirstObject[TOutput](raw)
	if err != nil {
		return nil, raw, err
	}
	return result, raw, nil
}
