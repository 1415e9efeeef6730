package intent

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// Intent is the coarse classification of a user utterance before any field
// extraction is attempted.
type Intent string

const (
	// Question is an informational question unrelated to providing intake data.
	Question Intent = "question"
	// CreateInstance is an explicit request to create an instance.
	CreateInstance Intent = "create_instance"
	// Other is everything else, including utterances that carry intake data.
	Other Intent = "other"
)

type Router interface {
	Route(ctx context.Context, utterance string, history []*schema.Message) (Intent, error)
}
