package intent

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/schema"
)

// LocalRouter classifies with keyword heuristics only. It is the last resort of
// a Failback chain, so it prefers Other over a wrong guess.
type LocalRouter struct {
	CreateKeywords   []string
	QuestionPrefixes []string
}

func NewLocalRouter() *LocalRouter {
	return &LocalRouter{
		CreateKeywords: []string{
			"create an instance", "create instance", "new instance",
			"set up an instance", "创建实例", "新建实例",
		},
		QuestionPrefixes: []string{
			"what", "how", "why", "who", "when", "where", "which",
			"can ", "could ", "is ", "are ", "do ", "does ",
		},
	}
}

func (r *LocalRouter) Route(ctx context.Context, utterance string, history []*schema.Message) (Intent, error) {
	normalized := strings.ToLower(strings.TrimSpace(utterance))
	if normalized == "" {
		return Other, nil
	}
	for _, keyword := range r.CreateKeywords {
		if strings.Contains(normalized, keyword) {
			return CreateInstance, nil
		}
	}
	if strings.HasSuffix(normalized, "?") || strings.HasSuffix(normalized, "？") {
		return Question, nil
	}
	for _, prefix := range r.QuestionPrefixes {
		if strings.HasPrefix(normalized, prefix) {
			return Question, nil
		}
	}
	return Other, nil
}

// FailbackRouter tries each router in order and returns the first answer.
type FailbackRouter struct {
	routers []Router
}

func NewFailbackRouter(routers ...Router) *FailbackRouter {
	return &FailbackRouter{routers: routers}
}

func (r *FailbackRouter) Route(ctx context.Context, utterance string, history []*schema.Message) (Intent, error) {
	var lastErr error
	for _, router := range r.routers {
		verdict, err := router.Route(ctx, utterance, history)
		if err == nil {
			return verdict, nil
		}
		lastErr = err
	}
	return Other, lastErr
}
