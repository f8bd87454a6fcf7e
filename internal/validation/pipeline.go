package validation

import (
	"strings"

	"github.com/swanstudios/plangate/internal/domain"
)

// Pipeline failure stages, in execution order. PII detection runs on
// raw text first so a leak is caught even when the response is not
// parseable JSON.
const (
	StagePIILeak    = "pii_leak"
	StageParseError = "parse_error"
	StageValidation = "validation_error"
)

// PipelineResult is the outcome of a full three-stage validation run.
// FailStage is empty on success; FailReason summarizes the first
// blocking problem.
type PipelineResult struct {
	OK         bool     `json:"ok"`
	FailStage  string   `json:"failStage,omitempty"`
	FailReason string   `json:"failReason,omitempty"`
	Errors     []string `json:"errors,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
}

func failed(stage string, errs []string) PipelineResult {
	return PipelineResult{
		OK:         false,
		FailStage:  stage,
		FailReason: strings.Join(errs, "; "),
		Errors:     errs,
	}
}

// RunWorkoutPipeline screens raw provider text as a workout plan:
// PII scan, then parse + schema, then domain rules. The returned plan
// is non-nil only when the result is OK.
func RunWorkoutPipeline(raw, displayName string) (*domain.WorkoutPlan, PipelineResult) {
	if reasons := DetectPII(raw, displayName); len(reasons) > 0 {
		return nil, failed(StagePIILeak, reasons)
	}

	plan, err := ParseWorkoutPlan(raw)
	if err != nil {
		stage := StageValidation
		if strings.HasPrefix(err.Error(), "JSON parse error") {
			stage = StageParseError
		}
		return nil, failed(stage, []string{err.Error()})
	}

	rules := CheckWorkoutRules(plan)
	if !rules.OK {
		return nil, failed(StageValidation, rules.Errors)
	}
	return plan, PipelineResult{OK: true, Warnings: rules.Warnings}
}

// RunLongHorizonPipeline screens raw provider text as a long-horizon
// plan. requestedHorizon feeds the rule stage's horizon equality
// check.
func RunLongHorizonPipeline(raw, displayName string, requestedHorizon int) (*domain.LongHorizonPlan, PipelineResult) {
	if reasons := DetectPII(raw, displayName); len(reasons) > 0 {
		return nil, failed(StagePIILeak, reasons)
	}

	plan, err := ParseLongHorizonPlan(raw)
	if err != nil {
		stage := StageValidation
		if strings.HasPrefix(err.Error(), "JSON parse error") {
			stage = StageParseError
		}
		return nil, failed(stage, []string{err.Error()})
	}

	rules := CheckLongHorizonRules(plan, requestedHorizon)
	if !rules.OK {
		return nil, failed(StageValidation, rules.Errors)
	}
	return plan, PipelineResult{OK: true, Warnings: rules.Warnings}
}
