package intent

import "strings"

// Confirmation is the reading of a reply to a direct yes/no question.
type Confirmation int

const (
	Unclear Confirmation = iota
	Affirmed
	Denied
)

var affirmWords = []string{
	"y", "yes", "yeah", "yep", "correct", "true", "sure", "ok", "okay",
	"是", "是的", "对", "确认", "好", "好的",
}

var denyWords = []string{
	"n", "no", "nope", "false",
	"否", "不", "不是", "不对",
}

// ParseConfirmation reads an affirmative or negative reply. Anything outside
// both word sets is Unclear and should trigger a re-prompt, not a state change.
func ParseConfirmation(utterance string) Confirmation {
	normalized := strings.ToLower(strings.TrimSpace(utterance))
	normalized = strings.TrimRight(normalized, ".!。！")
	for _, word := range affirmWords {
		if normalized == word {
			return Affirmed
		}
	}
	for _, word := range denyWords {
		if normalized == word {
			return Denied
		}
	}
	return Unclear
}
