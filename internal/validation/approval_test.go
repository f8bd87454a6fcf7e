package validation

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// asDecoded round-trips a fixture through JSON so numbers arrive as
// float64, matching what a decoded request body looks like.
func asDecoded(t *testing.T, v any) map[string]any {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func validDraft(t *testing.T) map[string]any {
	return asDecoded(t, validWorkoutMap())
}

func hasCode(issues []ApprovalIssue, code string) bool {
	for _, issue := range issues {
		if issue.Code == code {
			return true
		}
	}
	return false
}

func TestApprovedDraftRejectsNonObject(t *testing.T) {
	t.Parallel()

	for _, draft := range []any{nil, "not an object", 42} {
		res := ValidateApprovedWorkoutDraft(draft)
		assert.False(t, res.Valid)
		assert.True(t, hasCode(res.Errors, CodeInvalidDraftPayload))
	}
}

func TestApprovedDraftRequiresTitle(t *testing.T) {
	t.Parallel()

	draft := validDraft(t)
	delete(draft, "planName")
	res := ValidateApprovedWorkoutDraft(draft)
	assert.False(t, res.Valid)
	assert.True(t, hasCode(res.Errors, CodeMissingDraftTitle))

	draft = validDraft(t)
	draft["planName"] = "  "
	res = ValidateApprovedWorkoutDraft(draft)
	assert.False(t, res.Valid)
	assert.True(t, hasCode(res.Errors, CodeMissingDraftTitle), "whitespace-only title must be rejected")
}

func TestApprovedDraftRequiresDays(t *testing.T) {
	t.Parallel()

	draft := validDraft(t)
	delete(draft, "days")
	res := ValidateApprovedWorkoutDraft(draft)
	assert.True(t, hasCode(res.Errors, CodeMissingDraftStructure))

	draft = validDraft(t)
	draft["days"] = []any{}
	res = ValidateApprovedWorkoutDraft(draft)
	assert.True(t, hasCode(res.Errors, CodeMissingDraftStructure))
}

func TestApprovedDraftExerciseChecks(t *testing.T) {
	t.Parallel()

	draft := validDraft(t)
	draft["days"] = []any{map[string]any{
		"dayNumber": float64(1), "name": "Empty Day", "exercises": []any{},
	}}
	res := ValidateApprovedWorkoutDraft(draft)
	assert.True(t, hasCode(res.Errors, CodeInvalidExerciseList), "day with no exercises")

	draft = validDraft(t)
	draft["days"] = []any{map[string]any{
		"dayNumber": float64(1), "name": "Day 1",
		"exercises": []any{map[string]any{"name": "", "setScheme": "3x10"}},
	}}
	res = ValidateApprovedWorkoutDraft(draft)
	assert.True(t, hasCode(res.Errors, CodeInvalidExerciseList), "exercise with blank name")
}

func TestApprovedDraftRestPeriodBounds(t *testing.T) {
	t.Parallel()

	for _, rest := range []float64{-30, 700} {
		draft := validDraft(t)
		draft["days"] = []any{map[string]any{
			"dayNumber": float64(1), "name": "Day 1",
			"exercises": []any{map[string]any{"name": "Squat", "restPeriod": rest}},
		}}
		res := ValidateApprovedWorkoutDraft(draft)
		assert.False(t, res.Valid)
		assert.True(t, hasCode(res.Errors, CodeInvalidRestPeriod), "restPeriod %v", rest)
	}
}

func TestApprovedDraftTooManyDays(t *testing.T) {
	t.Parallel()

	days := make([]any, 0, 30)
	for i := 1; i <= 30; i++ {
		days = append(days, map[string]any{
			"dayNumber": float64(i),
			"name":      fmt.Sprintf("Day %d", i),
			"exercises": []any{map[string]any{"name": "Curl", "setScheme": "3x10"}},
		})
	}
	draft := validDraft(t)
	draft["durationWeeks"] = float64(1)
	draft["days"] = days

	res := ValidateApprovedWorkoutDraft(draft)
	assert.False(t, res.Valid)
	assert.True(t, hasCode(res.Errors, CodeTooManyDays))
}

func TestApprovedDraftDuplicateDayNumbers(t *testing.T) {
	t.Parallel()

	draft := validDraft(t)
	draft["days"] = []any{
		map[string]any{"dayNumber": float64(1), "name": "Day 1", "exercises": []any{map[string]any{"name": "Squat"}}},
		map[string]any{"dayNumber": float64(1), "name": "Day 1 Dupe", "exercises": []any{map[string]any{"name": "Bench"}}},
	}
	res := ValidateApprovedWorkoutDraft(draft)
	assert.False(t, res.Valid)
	assert.True(t, hasCode(res.Errors, CodeDuplicateDayNumbers))
}

func TestApprovedDraftExcessiveExercisesWarnsOnly(t *testing.T) {
	t.Parallel()

	exercises := make([]any, 0, 22)
	for i := 1; i <= 22; i++ {
		exercises = append(exercises, map[string]any{"name": fmt.Sprintf("Exercise %d", i), "setScheme": "3x10"})
	}
	draft := validDraft(t)
	draft["days"] = []any{map[string]any{"dayNumber": float64(1), "name": "Day 1", "exercises": exercises}}

	res := ValidateApprovedWorkoutDraft(draft)
	assert.True(t, res.Valid, "warnings must not invalidate the draft: %v", res.Errors)
	assert.True(t, hasCode(res.Warnings, CodeExcessiveExercises))
}

func TestApprovedDraftAcceptsAndNormalizes(t *testing.T) {
	t.Parallel()

	res := ValidateApprovedWorkoutDraft(validDraft(t))
	require.True(t, res.Valid)
	assert.Empty(t, res.Errors)
	require.NotNil(t, res.NormalizedDraft)
	assert.Equal(t, "Hypertrophy Block A", res.NormalizedDraft["planName"])
}

func TestApprovedDraftTrimsPlanName(t *testing.T) {
	t.Parallel()

	draft := validDraft(t)
	draft["planName"] = "  Trimmed Plan  "
	res := ValidateApprovedWorkoutDraft(draft)
	require.True(t, res.Valid)
	assert.Equal(t, "Trimmed Plan", res.NormalizedDraft["planName"])
}

func TestApprovedDraftDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	draft := validDraft(t)
	draft["planName"] = "  Spaced  "
	ValidateApprovedWorkoutDraft(draft)
	assert.Equal(t, "  Spaced  ", draft["planName"], "input draft must not be mutated")
}

// ── long-horizon approval ──

func validLongHorizonDraft(t *testing.T) map[string]any {
	return asDecoded(t, validLongHorizonMap())
}

func TestLongHorizonApprovalValid(t *testing.T) {
	t.Parallel()

	res := ValidateLongHorizonApproval(validLongHorizonDraft(t), 6)
	require.True(t, res.Valid, "errors: %v", res.Errors)
	assert.Empty(t, res.Errors)
	require.NotNil(t, res.NormalizedPlan)
	assert.Equal(t, "6-Month Periodization Program", res.NormalizedPlan.PlanName)
	assert.Len(t, res.NormalizedPlan.Blocks, 5)
}

func TestLongHorizonApprovalRejectsNonObject(t *testing.T) {
	t.Parallel()

	res := ValidateLongHorizonApproval(nil, 6)
	assert.False(t, res.Valid)
	assert.True(t, hasCode(res.Errors, CodeInvalidDraftPayload))
}

func TestLongHorizonApprovalSchemaError(t *testing.T) {
	t.Parallel()

	draft := validLongHorizonDraft(t)
	delete(draft, "planName")
	res := ValidateLongHorizonApproval(draft, 6)
	assert.False(t, res.Valid)
	assert.True(t, hasCode(res.Errors, CodeAIValidationError))
}

func TestLongHorizonApprovalWhitespacePlanName(t *testing.T) {
	t.Parallel()

	draft := validLongHorizonDraft(t)
	draft["planName"] = "   "
	res := ValidateLongHorizonApproval(draft, 6)
	assert.False(t, res.Valid)
	assert.True(t, hasCode(res.Errors, CodeAIValidationError),
		"whitespace-only planName must fail schema validation after pre-trim")
}

func TestLongHorizonApprovalBlockSequence(t *testing.T) {
	t.Parallel()

	draft := asDecoded(t, map[string]any{
		"planName":      "Test 6-Month Periodization",
		"horizonMonths": 6,
		"blocks": []any{
			map[string]any{"sequence": 1, "nasmFramework": "OPT", "optPhase": 1, "phaseName": "Phase 1", "durationWeeks": 4},
			map[string]any{"sequence": 3, "nasmFramework": "OPT", "optPhase": 2, "phaseName": "Phase 2", "durationWeeks": 4},
		},
	})
	res := ValidateLongHorizonApproval(draft, 6)
	assert.False(t, res.Valid)
	assert.True(t, hasCode(res.Errors, CodeInvalidBlockSequence))
}

func TestLongHorizonApprovalRuleErrors(t *testing.T) {
	t.Parallel()

	draft := validLongHorizonDraft(t)
	draft["blocks"].([]any)[0].(map[string]any)["optPhase"] = nil
	res := ValidateLongHorizonApproval(draft, 6)
	assert.False(t, res.Valid)
	assert.NotEmpty(t, res.Errors)
}

func TestLongHorizonApprovalShortPlanWarns(t *testing.T) {
	t.Parallel()

	draft := asDecoded(t, map[string]any{
		"planName":      "Short Plan",
		"horizonMonths": 6,
		"blocks": []any{
			map[string]any{"sequence": 1, "nasmFramework": "OPT", "optPhase": 1, "phaseName": "Phase 1", "durationWeeks": 4, "sessionsPerWeek": 3},
			map[string]any{"sequence": 2, "nasmFramework": "OPT", "optPhase": 2, "phaseName": "Phase 2", "durationWeeks": 4, "sessionsPerWeek": 3},
		},
	})
	res := ValidateLongHorizonApproval(draft, 6)
	assert.True(t, res.Valid)
	assert.NotEmpty(t, res.Warnings)
}

func TestLongHorizonApprovalHorizonMismatch(t *testing.T) {
	t.Parallel()

	draft := validLongHorizonDraft(t)
	draft["horizonMonths"] = float64(3)
	res := ValidateLongHorizonApproval(draft, 6)
	assert.False(t, res.Valid)
	assert.True(t, hasCode(res.Errors, CodeHorizonMismatch))
}
