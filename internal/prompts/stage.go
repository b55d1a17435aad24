package prompts

import "fmt"

// Stage identifies one LLM step of the evaluation workflow.
type Stage int

const (
	StageReplace Stage = iota
	StageSpeaker
	StageCompanyCheck
	StageApproachCheck
	StageLongCall
	StageCustomerReact
	StageManner
	StageToJSON

	stageCount
)

var stageNames = [stageCount]string{
	StageReplace:       "replace",
	StageSpeaker:       "speaker",
	StageCompanyCheck:  "company_check",
	StageApproachCheck: "approach_check",
	StageLongCall:      "longcall",
	StageCustomerReact: "customer_react",
	StageManner:        "manner",
	StageToJSON:        "to_json",
}

// Stages returns every stage in workflow order.
func Stages() []Stage {
	out := make([]Stage, stageCount)
	for i := range out {
		out[i] = Stage(i)
	}
	return out
}

func (s Stage) Valid() bool { return s >= 0 && s < stageCount }

func (s Stage) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

// Structured reports whether the stage asks the model for a JSON object.
// replace and speaker reshape the transcript and return free text.
func (s Stage) Structured() bool {
	switch s {
	case StageReplace, StageSpeaker:
		return false
	}
	return s.Valid()
}

// ParseStage maps a catalog key back to its Stage.
func ParseStage(name string) (Stage, error) {
	for i, n := range stageNames {
		if n == name {
			return Stage(i), nil
		}
	}
	return 0, fmt.Errorf("unknown stage %q", name)
}
