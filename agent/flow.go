package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/thaqi-stratiq/AI-AGENT-POST/classify"
	"github.com/thaqi-stratiq/AI-AGENT-POST/create"
	"github.com/thaqi-stratiq/AI-AGENT-POST/dialogue"
	"github.com/thaqi-stratiq/AI-AGENT-POST/extract"
	"github.com/thaqi-stratiq/AI-AGENT-POST/intake"
	"github.com/thaqi-stratiq/AI-AGENT-POST/intent"
)

// IntakeFlow is the dialogue controller. Each Invoke processes exactly one
// user turn: it decides which leaf to call, folds extracted data into the
// profile, and moves the stage. Leaf failures become an assistant-visible
// message while the previous state is returned untouched.
type IntakeFlow struct {
	router     intent.Router
	extractor  extract.Extractor
	classifier classify.Classifier
	chat       dialogue.Generator
	creator    create.Creator
}

// NewIntakeFlow wires the controller. chat may be nil; the flow then finishes
// in the done stage instead of offering free-form conversation.
func NewIntakeFlow(
	router intent.Router,
	extractor extract.Extractor,
	classifier classify.Classifier,
	chat dialogue.Generator,
	creator create.Creator,
) (*IntakeFlow, error) {
	if router == nil || extractor == nil || classifier == nil || creator == nil {
		return nil, fmt.Errorf("router, extractor, classifier and creator are required")
	}
	return &IntakeFlow{
		router:     router,
		extractor:  extractor,
		classifier: classifier,
		chat:       chat,
		creator:    creator,
	}, nil
}

// NewToolBasedIntakeFlow builds the default leaf stack on one chat model.
func NewToolBasedIntakeFlow(chatModel model.ToolCallingChatModel, creator create.Creator) (*IntakeFlow, error) {
	router, err := intent.NewToolBasedRouter(chatModel)
	if err != nil {
		return nil, fmt.Errorf("create tool-based router: %w", err)
	}
	extractor, err := extract.NewPromptBasedExtractor(chatModel)
	if err != nil {
		return nil, fmt.Errorf("create extractor: %w", err)
	}
	return NewIntakeFlow(
		intent.NewFailbackRouter(router, intent.NewLocalRouter()),
		extractor,
		classify.NewPromptBasedClassifier(chatModel),
		dialogue.NewModelGenerator(chatModel),
		creator,
	)
}

func (f *IntakeFlow) Invoke(ctx context.Context, input *Request) (*Response, error) {
	st := input.State.Clone()
	utterance := strings.TrimSpace(input.UserInput)
	if utterance == "" {
		return &Response{State: st}, nil
	}

	orig := st.Clone()
	resp, err := f.advance(ctx, utterance, st, input.ChatHistory)
	if err != nil {
		slog.Debug("turn failed", "stage", orig.Stage, "error", err)
		return &Response{
			Message:  fmt.Sprintf("Sorry, I ran into a problem handling that: %s", err.Error()),
			State:    orig,
			Metadata: map[string]string{"error": err.Error()},
		}, nil
	}
	return resp, nil
}

func (f *IntakeFlow) advance(ctx context.Context, utterance string, st *State, history []*schema.Message) (*Response, error) {
	// A completed creation is consumed by the next turn: reset, offer a new
	// cycle, and do not re-interpret the utterance.
	if st.Created {
		next := NewState()
		next.Stage = intake.StageIntake
		next.Awaiting = intake.FieldCompanyName
		return &Response{Message: dialogue.NewIntakeOffer, State: next}, nil
	}

	switch st.Stage {
	case intake.StageChat, intake.StageDone:
		return f.chatTurn(ctx, utterance, st, history)
	case intake.StageConfirmIdentity:
		return f.confirmIdentityTurn(ctx, utterance, st)
	case intake.StageConfirmIndustry:
		return f.confirmIndustryTurn(ctx, utterance, st)
	case intake.StagePickIndustry:
		return f.pickIndustryTurn(ctx, utterance, st)
	default: // idle, intake, awaiting_customer_name
		return f.collectTurn(ctx, utterance, st, history)
	}
}

func (f *IntakeFlow) collectTurn(ctx context.Context, utterance string, st *State, history []*schema.Message) (*Response, error) {
	// Deterministic capture: a direct question binds this reply to its field,
	// bypassing routing and extraction entirely.
	if st.Awaiting != "" {
		field := st.Awaiting
		st.Awaiting = ""
		if field == intake.FieldIndustryName {
			// The industry invariant still holds on the capture path.
			canon, ok := intake.CanonicalIndustry(utterance)
			if !ok {
				st.Stage = intake.StagePickIndustry
				return &Response{Message: dialogue.InvalidIndustry(), State: st}, nil
			}
			st.Profile.IndustryName = canon
			st.IndustryConfirmed = true
		} else {
			st.Profile.Set(field, utterance)
		}
		slog.Debug("captured awaited field", "field", field)
		return f.askNext(ctx, st)
	}

	verdict, err := f.router.Route(ctx, utterance, history)
	if err != nil {
		return nil, fmt.Errorf("route intent: %w", err)
	}
	slog.Debug("routed intent", "intent", verdict, "stage", st.Stage)

	if verdict == intent.CreateInstance {
		st.Stage = intake.StageIntake
	}

	if verdict == intent.Question {
		answer, rErr := f.reply(ctx, history, utterance)
		if rErr != nil {
			return nil, fmt.Errorf("answer question: %w", rErr)
		}
		if st.Stage == intake.StageIdle {
			return &Response{Message: answer, State: st}, nil
		}
		// Mid-intake: answer without discarding progress, then re-ask.
		next, aErr := f.askNext(ctx, st)
		if aErr != nil {
			return nil, aErr
		}
		next.Message = answer + "\n\n" + next.Message
		return next, nil
	}

	if st.Stage == intake.StageIdle {
		// Unrelated chatter outside an intake: reply freely, stay idle.
		answer, rErr := f.reply(ctx, history, utterance)
		if rErr != nil {
			return nil, fmt.Errorf("reply: %w", rErr)
		}
		return &Response{Message: answer, State: st}, nil
	}

	// Intake-capable stage: one utterance may state intent and supply data at
	// the same time, so extraction always runs here.
	result, err := f.extractor.Extract(ctx, &extract.Request{Utterance: utterance, History: history})
	if err != nil {
		return nil, fmt.Errorf("extract fields: %w", err)
	}
	if result.Mode == extract.ModeQA {
		next, aErr := f.askNext(ctx, st)
		if aErr != nil {
			return nil, aErr
		}
		if answer := strings.TrimSpace(result.Answer); answer != "" {
			next.Message = answer + "\n\n" + next.Message
		}
		return next, nil
	}

	merged, err := st.Profile.Merge(result.Fields)
	if err != nil {
		return nil, fmt.Errorf("merge extracted fields: %w", err)
	}
	// Industry from free extraction is only trusted when it is in the set;
	// anything else keeps the previous value.
	if merged.IndustryName != "" {
		canon, ok := intake.CanonicalIndustry(merged.IndustryName)
		if !ok {
			merged.IndustryName = st.Profile.IndustryName
		} else {
			if canon != st.Profile.IndustryName {
				st.IndustryConfirmed = false
			}
			merged.IndustryName = canon
		}
	}
	st.Profile = merged
	return f.askNext(ctx, st)
}

// askNext recomputes the first unmet requirement in fixed priority order and
// asks its canonical question, or moves to the final confirmation.
func (f *IntakeFlow) askNext(ctx context.Context, st *State) (*Response, error) {
	st.Awaiting = ""
	if st.Profile.CompanyName == "" {
		st.Stage = intake.StageIntake
		st.Awaiting = intake.FieldCompanyName
		return &Response{Message: dialogue.Question(intake.FieldCompanyName), State: st}, nil
	}
	if st.Profile.CompanyBackground == "" {
		st.Stage = intake.StageIntake
		st.Awaiting = intake.FieldCompanyBackground
		return &Response{Message: dialogue.Question(intake.FieldCompanyBackground), State: st}, nil
	}
	if st.Profile.IndustryName == "" {
		label, err := f.classifier.Classify(ctx, st.Profile.CompanyBackground)
		if err != nil {
			// Never guess: hand the choice to the user instead.
			slog.Debug("industry classification failed", "error", err)
			st.Stage = intake.StagePickIndustry
			return &Response{Message: dialogue.PickIndustry(), State: st}, nil
		}
		canon, ok := intake.CanonicalIndustry(label)
		if !ok {
			slog.Debug("industry label outside the fixed set", "label", label)
			st.Stage = intake.StagePickIndustry
			return &Response{Message: dialogue.PickIndustry(), State: st}, nil
		}
		st.Profile.IndustryName = canon
		st.Stage = intake.StageConfirmIndustry
		return &Response{Message: dialogue.ConfirmIndustry(canon), State: st}, nil
	}
	if !st.IndustryConfirmed {
		st.Stage = intake.StageConfirmIndustry
		return &Response{Message: dialogue.ConfirmIndustry(st.Profile.IndustryName), State: st}, nil
	}
	if st.Profile.CustomerName == "" {
		st.Stage = intake.StageAwaitingCustomer
		st.Awaiting = intake.FieldCustomerName
		return &Response{Message: dialogue.Question(intake.FieldCustomerName), State: st}, nil
	}
	st.Stage = intake.StageConfirmIdentity
	return &Response{Message: dialogue.ConfirmIdentity(st.Profile), State: st}, nil
}

func (f *IntakeFlow) confirmIndustryTurn(ctx context.Context, utterance string, st *State) (*Response, error) {
	switch intent.ParseConfirmation(utterance) {
	case intent.Affirmed:
		st.IndustryConfirmed = true
		return f.askNext(ctx, st)
	case intent.Denied:
		st.Profile.IndustryName = ""
		st.IndustryConfirmed = false
		st.Stage = intake.StagePickIndustry
		return &Response{Message: dialogue.PickIndustry(), State: st}, nil
	default:
		return &Response{Message: dialogue.ReplyYesNo, State: st}, nil
	}
}

func (f *IntakeFlow) pickIndustryTurn(ctx context.Context, utterance string, st *State) (*Response, error) {
	label := strings.TrimSpace(utterance)
	if idx, err := strconv.Atoi(label); err == nil && idx >= 1 && idx <= len(intake.Industries) {
		label = intake.Industries[idx-1]
	}
	canon, ok := intake.CanonicalIndustry(label)
	if !ok {
		return &Response{Message: dialogue.InvalidIndustry(), State: st}, nil
	}
	st.Profile.IndustryName = canon
	st.IndustryConfirmed = true
	return f.askNext(ctx, st)
}

func (f *IntakeFlow) confirmIdentityTurn(ctx context.Context, utterance string, st *State) (*Response, error) {
	switch intent.ParseConfirmation(utterance) {
	case intent.Affirmed:
		result, err := f.creator.Create(ctx, st.Profile.CustomerName, st.Profile.IndustryName)
		if err != nil {
			// Transport failure: surface it, keep the stage so the user can
			// re-confirm. No automatic retry.
			slog.Warn("create instance failed", "error", err)
			return &Response{
				Message:  dialogue.CreateFailed(err),
				State:    st,
				Metadata: map[string]string{"error": err.Error()},
			}, nil
		}
		if !result.Success {
			slog.Warn("create instance rejected", "response", result.Raw)
			return &Response{Message: dialogue.CreateRejected(result.Raw), State: st}, nil
		}
		st.Created = true
		st.CreatedID = result.ID
		if f.chat != nil {
			st.Stage = intake.StageChat
		} else {
			st.Stage = intake.StageDone
		}
		slog.Info("instance created", "id", result.ID)
		return &Response{Message: dialogue.CreateSucceeded(result.ID), State: st}, nil
	case intent.Denied:
		// Full restart: company identity goes, unrelated fields stay.
		st.Profile.CompanyName = ""
		st.Profile.CompanyBackground = ""
		st.Stage = intake.StageIntake
		next, err := f.askNext(ctx, st)
		if err != nil {
			return nil, err
		}
		next.Message = "Okay, let's start over. " + next.Message
		return next, nil
	default:
		return &Response{Message: dialogue.ReplyYesNo, State: st}, nil
	}
}

func (f *IntakeFlow) chatTurn(ctx context.Context, utterance string, st *State, history []*schema.Message) (*Response, error) {
	if f.chat == nil {
		return &Response{Message: dialogue.IntakeComplete, State: st}, nil
	}
	reply, err := f.reply(ctx, history, utterance)
	if err != nil {
		return nil, fmt.Errorf("chat reply: %w", err)
	}
	return &Response{Message: reply, State: st}, nil
}

func (f *IntakeFlow) reply(ctx context.Context, history []*schema.Message, utterance string) (string, error) {
	if f.chat == nil {
		return "", fmt.Errorf("no dialogue generator configured")
	}
	return f.chat.Reply(ctx, history, utterance)
}
