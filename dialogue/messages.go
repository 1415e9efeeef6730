package dialogue

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"

	"github.com/thaqi-stratiq/AI-AGENT-POST/intake"
)

const (
	// ReplyYesNo re-prompts a confirmation stage without changing state.
	ReplyYesNo = "Please answer yes or no."
	// NewIntakeOffer opens a fresh cycle after a completed creation.
	NewIntakeOffer = "The previous intake is complete. Let's start a new one — what is your company's name?"
	// IntakeComplete is the fixed reply of the done stage.
	IntakeComplete = "This intake is complete. Send another message to start a new one."
)

// Question is the canonical direct question for a field. Asking it binds the
// next reply to that field.
func Question(f intake.Field) string {
	switch f {
	case intake.FieldCompanyName:
		return "What is your company's name?"
	case intake.FieldCompanyBackground:
		return "Tell me a bit about what your company does."
	case intake.FieldIndustryName:
		return PickIndustry()
	case intake.FieldCustomerName:
		return "Who should the instance be registered under? Please give me the customer name."
	default:
		return fmt.Sprintf("Please provide a value for %s.", f.DisplayName())
	}
}

func ConfirmIndustry(label string) string {
	return fmt.Sprintf("Based on your background, I classified your industry as %q. Is that correct? (yes/no)", label)
}

func PickIndustry() string {
	var sb strings.Builder
	sb.WriteString("Please pick your industry from this list:\n")
	for i, industry := range intake.Industries {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, industry))
	}
	sb.WriteString("Reply with the name or the number.")
	return sb.String()
}

func InvalidIndustry() string {
	return "That is not one of the industries I know. " + PickIndustry()
}

// ConfirmIdentity summarizes everything collected and asks for the final go.
func ConfirmIdentity(p intake.Profile) string {
	var buf strings.Builder
	buf.WriteString("Here is everything I collected:\n\n")
	table := tablewriter.NewTable(&buf, tablewriter.WithRenderer(renderer.NewMarkdown()))
	table.Header("Field", "Value")
	for _, f := range intake.FieldOrder {
		_ = table.Append(f.DisplayName(), p.Get(f))
	}
	_ = table.Render()
	buf.WriteString("\nShall I create the instance? (yes/no)")
	return buf.String()
}

func CreateSucceeded(id string) string {
	if id == "" {
		return "Instance created. You may continue chatting."
	}
	return fmt.Sprintf("Instance created (ID: %s). You may continue chatting.", id)
}

func CreateFailed(err error) string {
	return fmt.Sprintf("Request failed: %v\nReply yes to try again, or no to start over.", err)
}

func CreateRejected(raw string) string {
	return fmt.Sprintf("The service responded with: %s\nReply yes to try again, or no to start over.", strings.TrimSpace(raw))
}
