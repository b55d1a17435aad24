package stages

//go:generate go tool mockgen -source=stages.go -destination=mock_completer_test.go -package=stages

import (
	"context"
	"fmt"

	"telecheck-go/internal/llm"
	"telecheck-go/internal/prompts"
	"telecheck-go/internal/types"
)

// Completer is the part of the LLM client the stages need.
type Completer interface {
	Complete(ctx context.Context, req llm.Request) (string, error)
}

// Stages runs each workflow step as a single completion call with the
// step's catalog prompt. Safe for concurrent use.
type Stages struct {
	completer   Completer
	catalog     *prompts.Catalog
	temperature float64
}

func New(completer Completer, catalog *prompts.Catalog, temperature float64) *Stages {
	return &Stages{completer: completer, catalog: catalog, temperature: temperature}
}

// Run sends input under the stage's prompt and returns the model output as is.
func (s *Stages) Run(ctx context.Context, stage prompts.Stage, input string) (types.StageResult, error) {
	if !stage.Valid() {
		return "", fmt.Errorf("unknown stage %s", stage)
	}
	out, err := s.completer.Complete(ctx, llm.Request{
		System:      s.catalog.Prompt(stage),
		User:        input,
		JSON:        stage.Structured(),
		Temperature: s.temperature,
	})
	if err != nil {
		return "", err
	}
	return types.StageResult(out), nil
}

func (s *Stages) transcript(ctx context.Context, stage prompts.Stage, in types.Transcript) (types.Transcript, error) {
	out, err := s.Run(ctx, stage, in.String())
	return types.Transcript(out), err
}

// Replace removes fillers and disfluencies.
func (s *Stages) Replace(ctx context.Context, t types.Transcript) (types.Transcript, error) {
	return s.transcript(ctx, prompts.StageReplace, t)
}

// Speaker labels each turn as sales rep or customer.
func (s *Stages) Speaker(ctx context.Context, t types.Transcript) (types.Transcript, error) {
	return s.transcript(ctx, prompts.StageSpeaker, t)
}

func (s *Stages) CompanyCheck(ctx context.Context, t types.Transcript) (types.StageResult, error) {
	return s.Run(ctx, prompts.StageCompanyCheck, t.String())
}

func (s *Stages) ApproachCheck(ctx context.Context, t types.Transcript) (types.StageResult, error) {
	return s.Run(ctx, prompts.StageApproachCheck, t.String())
}

func (s *Stages) LongCall(ctx context.Context, t types.Transcript) (types.StageResult, error) {
	return s.Run(ctx, prompts.StageLongCall, t.String())
}

func (s *Stages) CustomerReaction(ctx context.Context, t types.Transcript) (types.StageResult, error) {
	return s.Run(ctx, prompts.StageCustomerReact, t.String())
}

func (s *Stages) Manner(ctx context.Context, t types.Transcript) (types.StageResult, error) {
	return s.Run(ctx, prompts.StageManner, t.String())
}

// ToJSON merges the combined category text into the final structured answer.
func (s *Stages) ToJSON(ctx context.Context, combined string) (types.StageResult, error) {
	return s.Run(ctx, prompts.StageToJSON, combined)
}

// CategoryStage maps an evaluation category to the stage that produces it.
func CategoryStage(c types.Category) (prompts.Stage, bool) {
	switch c {
	case types.CategoryCompany:
		return prompts.StageCompanyCheck, true
	case types.CategoryApproach:
		return prompts.StageApproachCheck, true
	case types.CategoryCallLength:
		return prompts.StageLongCall, true
	case types.CategoryCustomerReaction:
		return prompts.StageCustomerReact, true
	case types.CategoryManner:
		return prompts.StageManner, true
	}
	return 0, false
}
