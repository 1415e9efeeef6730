package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thaqi-stratiq/AI-AGENT-POST/create"
	"github.com/thaqi-stratiq/AI-AGENT-POST/extract"
	"github.com/thaqi-stratiq/AI-AGENT-POST/intake"
	"github.com/thaqi-stratiq/AI-AGENT-POST/intent"
)

type stubRouter struct {
	verdict intent.Intent
	err     error
	calls   int
}

func (s *stubRouter) Route(ctx context.Context, utterance string, history []*schema.Message) (intent.Intent, error) {
	s.calls++
	return s.verdict, s.err
}

type stubExtractor struct {
	result *extract.Result
	err    error
	calls  int
}

func (s *stubExtractor) Extract(ctx context.Context, req *extract.Request) (*extract.Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubClassifier struct {
	label string
	err   error
	calls int
}

func (s *stubClassifier) Classify(ctx context.Context, background string) (string, error) {
	s.calls++
	return s.label, s.err
}

type stubChat struct {
	reply string
	err   error
	calls int
}

func (s *stubChat) Reply(ctx context.Context, history []*schema.Message, utterance string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

type stubCreator struct {
	result *create.Result
	err    error
	calls  int
}

func (s *stubCreator) Create(ctx context.Context, customerName, industryName string) (*create.Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type flowFixture struct {
	router     *stubRouter
	extractor  *stubExtractor
	classifier *stubClassifier
	chat       *stubChat
	creator    *stubCreator
	flow       *IntakeFlow
}

func newFixture(t *testing.T) *flowFixture {
	t.Helper()
	fx := &flowFixture{
		router:     &stubRouter{verdict: intent.Other},
		extractor:  &stubExtractor{result: &extract.Result{Mode: extract.ModeIntake}},
		classifier: &stubClassifier{label: "Aerospace"},
		chat:       &stubChat{reply: "happy to help"},
		creator:    &stubCreator{result: &create.Result{Success: true, ID: "inst-1"}},
	}
	flow, err := NewIntakeFlow(fx.router, fx.extractor, fx.classifier, fx.chat, fx.creator)
	require.NoError(t, err)
	fx.flow = flow
	return fx
}

func (fx *flowFixture) invoke(t *testing.T, utterance string, state *State) *Response {
	t.Helper()
	resp, err := fx.flow.Invoke(context.Background(), &Request{UserInput: utterance, State: state})
	require.NoError(t, err)
	require.NotNil(t, resp.State)
	return resp
}

func fullState() *State {
	return &State{
		Stage: intake.StageConfirmIdentity,
		Profile: intake.Profile{
			CompanyName:       "Acme",
			CompanyBackground: "we build drones",
			IndustryName:      "Aerospace",
			CustomerName:      "Jane Doe",
		},
		IndustryConfirmed: true,
	}
}

func TestEmptyUtteranceIsANoOp(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	for _, state := range []*State{NewState(), fullState(), {Stage: intake.StageChat}} {
		resp := fx.invoke(t, "   \n\t ", state)
		assert.Empty(t, resp.Message)
		assert.Equal(t, state, resp.State)
	}
	assert.Zero(t, fx.router.calls)
	assert.Zero(t, fx.extractor.calls)
	assert.Zero(t, fx.creator.calls)
}

func TestInvokeDoesNotMutateCallerState(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	state := fullState()
	before := *state

	fx.invoke(t, "yes", state)
	assert.Equal(t, before, *state)
}

func TestDeterministicCaptureBypassesRouting(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	// A router would misread a bare company name; it must not get the chance.
	fx.router.verdict = intent.Question
	state := &State{Stage: intake.StageIntake, Awaiting: intake.FieldCompanyName}

	resp := fx.invoke(t, "  Acme  ", state)
	assert.Equal(t, "Acme", resp.State.Profile.CompanyName)
	assert.Equal(t, intake.FieldCompanyBackground, resp.State.Awaiting)
	assert.Contains(t, resp.Message, "company does")
	assert.Zero(t, fx.router.calls)
	assert.Zero(t, fx.extractor.calls)
}

func TestFreshCreateRequestWithInlineData(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	fx.router.verdict = intent.CreateInstance
	fx.extractor.result = &extract.Result{
		Mode: extract.ModeIntake,
		Fields: intake.Profile{
			CompanyName:       "Acme",
			CompanyBackground: "we build drones",
		},
	}

	resp := fx.invoke(t, "create an instance for Acme, we build drones", NewState())
	assert.Equal(t, intake.StageConfirmIndustry, resp.State.Stage)
	assert.Equal(t, "Acme", resp.State.Profile.CompanyName)
	assert.Equal(t, "we build drones", resp.State.Profile.CompanyBackground)
	assert.Equal(t, "Aerospace", resp.State.Profile.IndustryName)
	assert.Contains(t, resp.Message, "Aerospace")
	assert.Contains(t, resp.Message, "(yes/no)")
	assert.Equal(t, 1, fx.classifier.calls)
}

func TestOutOfSetClassificationRoutesToPick(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	fx.router.verdict = intent.CreateInstance
	fx.classifier.label = "Space Logistics"
	fx.extractor.result = &extract.Result{
		Mode:   extract.ModeIntake,
		Fields: intake.Profile{CompanyName: "Acme", CompanyBackground: "orbital freight"},
	}

	resp := fx.invoke(t, "create an instance", NewState())
	assert.Equal(t, intake.StagePickIndustry, resp.State.Stage)
	assert.Empty(t, resp.State.Profile.IndustryName)
	assert.Contains(t, resp.Message, "Aerospace")
	assert.Contains(t, resp.Message, "Technology")
}

func TestClassifierFailureRoutesToPick(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	fx.router.verdict = intent.CreateInstance
	fx.classifier.err = errors.New("model unavailable")
	fx.extractor.result = &extract.Result{
		Mode:   extract.ModeIntake,
		Fields: intake.Profile{CompanyName: "Acme", CompanyBackground: "drones"},
	}

	resp := fx.invoke(t, "create an instance", NewState())
	assert.Equal(t, intake.StagePickIndustry, resp.State.Stage)
}

func TestMergeNeverClobbersCollectedFields(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	fx.extractor.result = &extract.Result{
		Mode:   extract.ModeIntake,
		Fields: intake.Profile{CustomerName: "Jane Doe"},
	}
	state := &State{
		Stage: intake.StageIntake,
		Profile: intake.Profile{
			CompanyName:       "Acme",
			CompanyBackground: "we build drones",
			IndustryName:      "Aerospace",
		},
		IndustryConfirmed: true,
	}

	resp := fx.invoke(t, "the customer is Jane Doe", state)
	assert.Equal(t, "Acme", resp.State.Profile.CompanyName)
	assert.Equal(t, "Jane Doe", resp.State.Profile.CustomerName)
	assert.Equal(t, intake.StageConfirmIdentity, resp.State.Stage)
	assert.Contains(t, resp.Message, "Jane Doe")
}

func TestInvalidExtractedIndustryIsNotTrusted(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	fx.extractor.result = &extract.Result{
		Mode:   extract.ModeIntake,
		Fields: intake.Profile{IndustryName: "Banking"},
	}
	state := &State{
		Stage:             intake.StageIntake,
		Profile:           intake.Profile{CompanyName: "Acme", CompanyBackground: "drones", IndustryName: "Aerospace"},
		IndustryConfirmed: true,
	}

	resp := fx.invoke(t, "we're in banking actually", state)
	assert.Equal(t, "Aerospace", resp.State.Profile.IndustryName)
	assert.True(t, resp.State.IndustryConfirmed)
}

func TestConfirmIndustryAffirmativeMovesOn(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	state := &State{
		Stage:   intake.StageConfirmIndustry,
		Profile: intake.Profile{CompanyName: "Acme", CompanyBackground: "drones", IndustryName: "Aerospace"},
	}

	resp := fx.invoke(t, "yes", state)
	assert.True(t, resp.State.IndustryConfirmed)
	assert.Equal(t, intake.StageAwaitingCustomer, resp.State.Stage)
	assert.Equal(t, intake.FieldCustomerName, resp.State.Awaiting)
	assert.Contains(t, resp.Message, "customer name")
}

func TestConfirmIndustryNegativeClearsAndPicks(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	state := &State{
		Stage:   intake.StageConfirmIndustry,
		Profile: intake.Profile{CompanyName: "Acme", CompanyBackground: "drones", IndustryName: "Aerospace"},
	}

	resp := fx.invoke(t, "no", state)
	assert.Equal(t, intake.StagePickIndustry, resp.State.Stage)
	assert.Empty(t, resp.State.Profile.IndustryName)
	assert.Equal(t, "Acme", resp.State.Profile.CompanyName)
}

func TestConfirmIndustryUnclearReprompts(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	state := &State{
		Stage:   intake.StageConfirmIndustry,
		Profile: intake.Profile{CompanyName: "Acme", CompanyBackground: "drones", IndustryName: "Aerospace"},
	}

	resp := fx.invoke(t, "hmm not sure what you mean", state)
	assert.Equal(t, intake.StageConfirmIndustry, resp.State.Stage)
	assert.Equal(t, "Aerospace", resp.State.Profile.IndustryName)
	assert.Contains(t, resp.Message, "yes or no")
}

func TestPickIndustryByNameAndNumber(t *testing.T) {
	t.Parallel()
	for _, utterance := range []string{"retail", "6"} {
		fx := newFixture(t)
		state := &State{
			Stage:   intake.StagePickIndustry,
			Profile: intake.Profile{CompanyName: "Acme", CompanyBackground: "drones"},
		}

		resp := fx.invoke(t, utterance, state)
		assert.Equal(t, "Retail", resp.State.Profile.IndustryName, "utterance %q", utterance)
		assert.True(t, resp.State.IndustryConfirmed)
		assert.Equal(t, intake.StageAwaitingCustomer, resp.State.Stage)
	}
}

func TestPickIndustryRejectsUnknownLabel(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	state := &State{
		Stage:   intake.StagePickIndustry,
		Profile: intake.Profile{CompanyName: "Acme", CompanyBackground: "drones"},
	}

	resp := fx.invoke(t, "underwater basket weaving", state)
	assert.Equal(t, intake.StagePickIndustry, resp.State.Stage)
	assert.Empty(t, resp.State.Profile.IndustryName)
	assert.Contains(t, resp.Message, "not one of the industries")
}

func TestAffirmativeConfirmationCreatesOnce(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)

	resp := fx.invoke(t, "yes", fullState())
	assert.Equal(t, 1, fx.creator.calls)
	assert.True(t, resp.State.Created)
	assert.Equal(t, "inst-1", resp.State.CreatedID)
	assert.Equal(t, intake.StageChat, resp.State.Stage)
	assert.Contains(t, resp.Message, "inst-1")
}

func TestCreateWithoutChatGeneratorEndsInDone(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	flow, err := NewIntakeFlow(fx.router, fx.extractor, fx.classifier, nil, fx.creator)
	require.NoError(t, err)

	resp, err := flow.Invoke(context.Background(), &Request{UserInput: "yes", State: fullState()})
	require.NoError(t, err)
	assert.Equal(t, intake.StageDone, resp.State.Stage)
}

func TestNegativeConfirmationNeverCreates(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)

	resp := fx.invoke(t, "no", fullState())
	assert.Zero(t, fx.creator.calls)
	assert.Equal(t, intake.StageIntake, resp.State.Stage)
	assert.Empty(t, resp.State.Profile.CompanyName)
	assert.Empty(t, resp.State.Profile.CompanyBackground)
	assert.Equal(t, "Jane Doe", resp.State.Profile.CustomerName)
	assert.Equal(t, intake.FieldCompanyName, resp.State.Awaiting)
	assert.Contains(t, resp.Message, "start over")
}

func TestTransportFailureKeepsConfirmationStage(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	fx.creator.err = errors.New("context deadline exceeded")

	resp := fx.invoke(t, "yes", fullState())
	assert.Equal(t, intake.StageConfirmIdentity, resp.State.Stage)
	assert.False(t, resp.State.Created)
	assert.Contains(t, resp.Message, "Request failed")

	// Re-confirming retries the call; nothing retried automatically.
	fx.creator.err = nil
	resp = fx.invoke(t, "yes", resp.State)
	assert.Equal(t, 2, fx.creator.calls)
	assert.True(t, resp.State.Created)
}

func TestBusinessRejectionKeepsConfirmationStage(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	fx.creator.result = &create.Result{Success: false, Raw: `{"success":false,"error":"quota exceeded"}`}

	resp := fx.invoke(t, "yes", fullState())
	assert.Equal(t, intake.StageConfirmIdentity, resp.State.Stage)
	assert.False(t, resp.State.Created)
	assert.Contains(t, resp.Message, "quota exceeded")
}

func TestTurnAfterCreationResetsEverything(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	state := fullState()
	state.Stage = intake.StageChat
	state.Created = true
	state.CreatedID = "inst-1"

	resp := fx.invoke(t, "lovely weather today", state)
	assert.False(t, resp.State.Created)
	assert.Equal(t, intake.Profile{}, resp.State.Profile)
	assert.Equal(t, intake.StageIntake, resp.State.Stage)
	assert.Equal(t, intake.FieldCompanyName, resp.State.Awaiting)
	assert.Contains(t, resp.Message, "new one")
	// The utterance is consumed, not re-interpreted.
	assert.Zero(t, fx.router.calls)
	assert.Zero(t, fx.chat.calls)
}

func TestChatStageForwardsToGenerator(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	fx.chat.reply = "the weather is fine"
	state := &State{Stage: intake.StageChat}

	resp := fx.invoke(t, "how's the weather?", state)
	assert.Equal(t, "the weather is fine", resp.Message)
	assert.Equal(t, intake.StageChat, resp.State.Stage)
	assert.Equal(t, 1, fx.chat.calls)
	assert.Zero(t, fx.router.calls)
}

func TestIdleQuestionStaysIdle(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	fx.router.verdict = intent.Question
	fx.chat.reply = "An instance is a dedicated workspace."

	resp := fx.invoke(t, "what is an instance?", NewState())
	assert.Equal(t, intake.StageIdle, resp.State.Stage)
	assert.Equal(t, "An instance is a dedicated workspace.", resp.Message)
	assert.Zero(t, fx.extractor.calls)
}

func TestMidIntakeQuestionAnswersThenReasks(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	fx.router.verdict = intent.Question
	fx.chat.reply = "It takes about a minute."
	state := &State{
		Stage:   intake.StageIntake,
		Profile: intake.Profile{CompanyName: "Acme"},
	}

	resp := fx.invoke(t, "how long does this take?", state)
	assert.Equal(t, "Acme", resp.State.Profile.CompanyName)
	assert.Equal(t, intake.FieldCompanyBackground, resp.State.Awaiting)
	assert.Contains(t, resp.Message, "It takes about a minute.")
	assert.Contains(t, resp.Message, "company does")
}

func TestExtractorQAFallbackAnswersThenReasks(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	fx.extractor.result = &extract.Result{Mode: extract.ModeQA, Answer: "I did not catch any details there."}
	state := &State{Stage: intake.StageIntake, Profile: intake.Profile{CompanyName: "Acme"}}

	resp := fx.invoke(t, "ramble ramble", state)
	assert.Equal(t, "Acme", resp.State.Profile.CompanyName)
	assert.Contains(t, resp.Message, "I did not catch any details there.")
	assert.Contains(t, resp.Message, "company does")
}

func TestLeafFailureLeavesStateUntouched(t *testing.T) {
	t.Parallel()
	fx := newFixture(t)
	fx.router.err = errors.New("model unavailable")
	state := &State{Stage: intake.StageIntake, Profile: intake.Profile{CompanyName: "Acme"}}

	resp := fx.invoke(t, "we build drones", state)
	assert.Equal(t, state, resp.State)
	assert.Contains(t, resp.Message, "Sorry")
	assert.Equal(t, "route intent: model unavailable", resp.Metadata["error"])
}
