package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/swanstudios/plangate/internal/domain"
)

// Approval rejection codes. Coach-edited drafts are re-validated at
// approval time; the original AI output having passed the pipeline
// proves nothing about what the coach changed since.
const (
	CodeInvalidDraftPayload   = "INVALID_DRAFT_PAYLOAD"
	CodeMissingDraftTitle     = "MISSING_DRAFT_TITLE"
	CodeMissingDraftStructure = "MISSING_DRAFT_STRUCTURE"
	CodeInvalidExerciseList   = "INVALID_EXERCISE_LIST"
	CodeInvalidRestPeriod     = "INVALID_REST_PERIOD"
	CodeTooManyDays           = "TOO_MANY_DAYS"
	CodeDuplicateDayNumbers   = "DUPLICATE_DAY_NUMBERS"
	CodeExcessiveExercises    = "EXCESSIVE_EXERCISES"
	CodeHorizonMismatch       = "HORIZON_MISMATCH"
	CodeAIValidationError     = "AI_VALIDATION_ERROR"
	CodeInvalidBlockSequence  = "INVALID_BLOCK_SEQUENCE"
)

// ApprovalIssue is one blocking error or advisory warning found while
// re-validating an approved draft.
type ApprovalIssue struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// WorkoutApproval is the result of re-validating a coach-approved
// workout draft. NormalizedDraft is a trimmed deep copy; the input is
// never mutated.
type WorkoutApproval struct {
	Valid           bool            `json:"valid"`
	Errors          []ApprovalIssue `json:"errors"`
	Warnings        []ApprovalIssue `json:"warnings"`
	NormalizedDraft map[string]any  `json:"normalizedDraft,omitempty"`
}

// ValidateApprovedWorkoutDraft re-checks a draft workout plan at
// approval time. draft is the JSON-decoded request body.
func ValidateApprovedWorkoutDraft(draft any) *WorkoutApproval {
	res := &WorkoutApproval{Errors: []ApprovalIssue{}, Warnings: []ApprovalIssue{}}

	obj, ok := draft.(map[string]any)
	if !ok || obj == nil {
		res.Errors = append(res.Errors, ApprovalIssue{
			Code:    CodeInvalidDraftPayload,
			Message: "draft must be a JSON object",
		})
		return res
	}

	normalized := deepCopyMap(obj)

	planName, _ := normalized["planName"].(string)
	planName = strings.TrimSpace(planName)
	normalized["planName"] = planName
	if planName == "" {
		res.Errors = append(res.Errors, ApprovalIssue{
			Code:    CodeMissingDraftTitle,
			Field:   "planName",
			Message: "draft requires a non-empty planName",
		})
	}

	days, _ := normalized["days"].([]any)
	if len(days) == 0 {
		res.Errors = append(res.Errors, ApprovalIssue{
			Code:    CodeMissingDraftStructure,
			Field:   "days",
			Message: "draft requires at least one day",
		})
		res.Valid = len(res.Errors) == 0
		return res
	}

	seenDayNumbers := make(map[float64]bool, len(days))
	duplicateDays := false
	for i, rawDay := range days {
		day, ok := rawDay.(map[string]any)
		if !ok {
			res.Errors = append(res.Errors, ApprovalIssue{
				Code:    CodeMissingDraftStructure,
				Field:   fmt.Sprintf("days[%d]", i),
				Message: "day must be a JSON object",
			})
			continue
		}
		if name, _ := day["name"].(string); strings.TrimSpace(name) != "" {
			day["name"] = strings.TrimSpace(name)
		}
		if num, ok := day["dayNumber"].(float64); ok {
			if seenDayNumbers[num] {
				duplicateDays = true
			}
			seenDayNumbers[num] = true
		}
		res.checkExercises(day, i)
	}
	if duplicateDays {
		res.Errors = append(res.Errors, ApprovalIssue{
			Code:    CodeDuplicateDayNumbers,
			Field:   "days",
			Message: "duplicate day numbers detected",
		})
	}

	if weeks, ok := normalized["durationWeeks"].(float64); ok && float64(len(days)) > weeks*7 {
		res.Errors = append(res.Errors, ApprovalIssue{
			Code:  CodeTooManyDays,
			Field: "days",
			Message: fmt.Sprintf("%d days exceeds the %d allowed by durationWeeks=%d",
				len(days), int(weeks)*7, int(weeks)),
		})
	}

	res.Valid = len(res.Errors) == 0
	if res.Valid {
		res.NormalizedDraft = normalized
	}
	return res
}

// checkExercises validates one day's exercise list in place on the
// normalized copy.
func (res *WorkoutApproval) checkExercises(day map[string]any, dayIdx int) {
	exercises, _ := day["exercises"].([]any)
	if len(exercises) == 0 {
		res.Errors = append(res.Errors, ApprovalIssue{
			Code:    CodeInvalidExerciseList,
			Field:   fmt.Sprintf("days[%d].exercises", dayIdx),
			Message: "day requires at least one exercise",
		})
		return
	}

	if len(exercises) > maxExercisesPerDay {
		res.Warnings = append(res.Warnings, ApprovalIssue{
			Code:  CodeExcessiveExercises,
			Field: fmt.Sprintf("days[%d].exercises", dayIdx),
			Message: fmt.Sprintf("%d exercises on one day, more than the recommended maximum of %d",
				len(exercises), maxExercisesPerDay),
		})
	}

	for i, rawEx := range exercises {
		ex, ok := rawEx.(map[string]any)
		if !ok {
			res.Errors = append(res.Errors, ApprovalIssue{
				Code:    CodeInvalidExerciseList,
				Field:   fmt.Sprintf("days[%d].exercises[%d]", dayIdx, i),
				Message: "exercise must be a JSON object",
			})
			continue
		}
		name, _ := ex["name"].(string)
		name = strings.TrimSpace(name)
		ex["name"] = name
		if name == "" {
			res.Errors = append(res.Errors, ApprovalIssue{
				Code:    CodeInvalidExerciseList,
				Field:   fmt.Sprintf("days[%d].exercises[%d].name", dayIdx, i),
				Message: "exercise requires a non-empty name",
			})
		}
		if rest, ok := ex["restPeriod"].(float64); ok && (rest < 0 || rest > 600) {
			res.Errors = append(res.Errors, ApprovalIssue{
				Code:    CodeInvalidRestPeriod,
				Field:   fmt.Sprintf("days[%d].exercises[%d].restPeriod", dayIdx, i),
				Message: fmt.Sprintf("rest period %vs outside the allowed 0-600s range", rest),
			})
		}
	}
}

// LongHorizonApproval is the result of re-validating an approved
// long-horizon plan.
type LongHorizonApproval struct {
	Valid          bool                    `json:"valid"`
	Errors         []ApprovalIssue         `json:"errors"`
	Warnings       []string                `json:"warnings"`
	NormalizedPlan *domain.LongHorizonPlan `json:"normalizedPlan,omitempty"`
}

// ValidateLongHorizonApproval re-checks an approved long-horizon plan
// against the schema and rule engine. The horizon equality check runs
// before schema validation so a stale draft fails fast with a precise
// code.
func ValidateLongHorizonApproval(plan any, requestedHorizon int) *LongHorizonApproval {
	res := &LongHorizonApproval{Errors: []ApprovalIssue{}, Warnings: []string{}}

	obj, ok := plan.(map[string]any)
	if !ok || obj == nil {
		res.Errors = append(res.Errors, ApprovalIssue{
			Code:    CodeInvalidDraftPayload,
			Message: "plan must be a JSON object",
		})
		return res
	}

	normalized := deepCopyMap(obj)
	if name, ok := normalized["planName"].(string); ok {
		// Pre-trim so whitespace-only names fail schema validation
		// instead of slipping through to persistence.
		normalized["planName"] = strings.TrimSpace(name)
	}

	if months, ok := normalized["horizonMonths"].(float64); ok && int(months) != requestedHorizon {
		res.Errors = append(res.Errors, ApprovalIssue{
			Code:    CodeHorizonMismatch,
			Field:   "horizonMonths",
			Message: fmt.Sprintf("plan horizonMonths=%d but the request was %d", int(months), requestedHorizon),
		})
		return res
	}

	raw, err := json.Marshal(normalized)
	if err != nil {
		res.Errors = append(res.Errors, ApprovalIssue{
			Code:    CodeInvalidDraftPayload,
			Message: "plan is not serializable",
		})
		return res
	}

	parsed, err := ParseLongHorizonPlan(string(raw))
	if err != nil {
		res.Errors = append(res.Errors, ApprovalIssue{
			Code:    CodeAIValidationError,
			Message: err.Error(),
		})
		return res
	}

	rules := CheckLongHorizonRules(parsed, requestedHorizon)
	for _, msg := range rules.Errors {
		code := CodeAIValidationError
		if strings.Contains(msg, "sequence") {
			code = CodeInvalidBlockSequence
		}
		res.Errors = append(res.Errors, ApprovalIssue{Code: code, Message: msg})
	}
	res.Warnings = append(res.Warnings, rules.Warnings...)

	res.Valid = len(res.Errors) == 0
	if res.Valid {
		res.NormalizedPlan = parsed
	}
	return res
}

// deepCopyMap copies nested maps and slices so normalization never
// mutates the caller's draft.
func deepCopyMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = deepCopyValue(elem)
		}
		return out
	default:
		return val
	}
}
