package validation

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swanstudios/plangate/internal/stablejson"
)

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return string(raw)
}

func validWorkoutMap() map[string]any {
	return map[string]any{
		"planName":      "Hypertrophy Block A",
		"durationWeeks": 4,
		"summary":       "Progressive hypertrophy plan",
		"days": []any{
			map[string]any{
				"dayNumber": 1,
				"name":      "Push Day",
				"focus":     "Chest/Shoulders/Triceps",
				"dayType":   "training",
				"exercises": []any{
					map[string]any{"name": "Bench Press", "setScheme": "4x8", "repGoal": "8-10", "restPeriod": 90},
					map[string]any{"name": "Overhead Press", "setScheme": "3x10", "repGoal": "10-12", "restPeriod": 60},
				},
			},
			map[string]any{
				"dayNumber": 2,
				"name":      "Pull Day",
				"exercises": []any{
					map[string]any{"name": "Barbell Row", "setScheme": "4x8", "restPeriod": 90},
				},
			},
		},
	}
}

func TestRunWorkoutPipelineHappyPath(t *testing.T) {
	t.Parallel()

	plan, result := RunWorkoutPipeline(mustJSON(t, validWorkoutMap()), "John Smith")
	require.True(t, result.OK, "errors: %v", result.Errors)
	assert.Empty(t, result.FailStage)
	require.NotNil(t, plan)
	assert.Equal(t, "Hypertrophy Block A", plan.PlanName)
	assert.Len(t, plan.Days, 2)
	require.NotNil(t, plan.Days[0].Exercises[0].RestPeriod)
	assert.Equal(t, 90, *plan.Days[0].Exercises[0].RestPeriod)
}

func TestRunWorkoutPipelineAcceptsFencedOutput(t *testing.T) {
	t.Parallel()

	fenced := "```json\n" + mustJSON(t, validWorkoutMap()) + "\n```"
	plan, result := RunWorkoutPipeline(fenced, "")
	require.True(t, result.OK, "errors: %v", result.Errors)
	assert.Equal(t, "Hypertrophy Block A", plan.PlanName)
}

func TestRunWorkoutPipelineDetectsEmailLeak(t *testing.T) {
	t.Parallel()

	m := validWorkoutMap()
	m["summary"] = "Questions? Mail coach@gym.example.com"
	plan, result := RunWorkoutPipeline(mustJSON(t, m), "")
	assert.Nil(t, plan)
	assert.False(t, result.OK)
	assert.Equal(t, StagePIILeak, result.FailStage)
	assert.Contains(t, result.FailReason, "email")
}

func TestRunWorkoutPipelineDetectsNameLeak(t *testing.T) {
	t.Parallel()

	m := validWorkoutMap()
	m["summary"] = "Custom plan for John Smith"
	_, result := RunWorkoutPipeline(mustJSON(t, m), "John Smith")
	assert.Equal(t, StagePIILeak, result.FailStage)
	assert.Contains(t, result.FailReason, "name")
}

func TestRunWorkoutPipelinePIIScanPrecedesParsing(t *testing.T) {
	t.Parallel()

	_, result := RunWorkoutPipeline(`{ "email": "test@test.com", invalid }`, "")
	assert.Equal(t, StagePIILeak, result.FailStage, "a leak in unparseable output must still be caught")
}

func TestRunWorkoutPipelineMalformedJSON(t *testing.T) {
	t.Parallel()

	plan, result := RunWorkoutPipeline("{ broken json }}", "")
	assert.Nil(t, plan)
	assert.Equal(t, StageParseError, result.FailStage)
	assert.Contains(t, result.FailReason, "JSON parse error")
}

func TestRunWorkoutPipelineSchemaViolations(t *testing.T) {
	t.Parallel()

	m := validWorkoutMap()
	delete(m, "planName")
	_, result := RunWorkoutPipeline(mustJSON(t, m), "")
	assert.Equal(t, StageValidation, result.FailStage)
	assert.Contains(t, result.FailReason, "planName", "failure must name the offending field")

	m = validWorkoutMap()
	m["days"] = []any{}
	_, result = RunWorkoutPipeline(mustJSON(t, m), "")
	assert.Equal(t, StageValidation, result.FailStage)
	assert.Contains(t, result.FailReason, "days")
}

func TestRunWorkoutPipelineToleratesUnknownFields(t *testing.T) {
	t.Parallel()

	m := validWorkoutMap()
	m["extraField"] = "should not cause failure"
	_, result := RunWorkoutPipeline(mustJSON(t, m), "")
	assert.True(t, result.OK, "errors: %v", result.Errors)
}

func TestRunWorkoutPipelineTooManyDays(t *testing.T) {
	t.Parallel()

	days := make([]any, 0, 30)
	for i := 1; i <= 30; i++ {
		days = append(days, map[string]any{
			"dayNumber": i,
			"name":      fmt.Sprintf("Day %d", i),
			"exercises": []any{map[string]any{"name": "Curl", "setScheme": "3x10"}},
		})
	}
	m := validWorkoutMap()
	m["durationWeeks"] = 1
	m["days"] = days

	_, result := RunWorkoutPipeline(mustJSON(t, m), "")
	assert.Equal(t, StageValidation, result.FailStage)
	assert.Contains(t, result.FailReason, "exceeds")
}

func TestRunWorkoutPipelineDuplicateDayNumbers(t *testing.T) {
	t.Parallel()

	m := validWorkoutMap()
	m["days"] = []any{
		map[string]any{"dayNumber": 1, "name": "Day 1", "exercises": []any{map[string]any{"name": "Squat"}}},
		map[string]any{"dayNumber": 1, "name": "Day 1 Dupe", "exercises": []any{map[string]any{"name": "Bench"}}},
	}
	_, result := RunWorkoutPipeline(mustJSON(t, m), "")
	assert.Equal(t, StageValidation, result.FailStage)
	assert.Contains(t, result.FailReason, "Duplicate day numbers")
}

func TestRunWorkoutPipelineExcessiveExercisesWarns(t *testing.T) {
	t.Parallel()

	exercises := make([]any, 0, 22)
	for i := 1; i <= 22; i++ {
		exercises = append(exercises, map[string]any{"name": fmt.Sprintf("Exercise %d", i), "setScheme": "3x10"})
	}
	m := validWorkoutMap()
	m["days"] = []any{map[string]any{"dayNumber": 1, "name": "Day 1", "exercises": exercises}}

	plan, result := RunWorkoutPipeline(mustJSON(t, m), "")
	require.True(t, result.OK, "warnings must not block the plan")
	require.NotNil(t, plan)
	require.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[0], "22 exercises")
}

func TestRunWorkoutPipelineRestPeriodBounds(t *testing.T) {
	t.Parallel()

	m := validWorkoutMap()
	m["days"] = []any{map[string]any{
		"dayNumber": 1, "name": "Day 1",
		"exercises": []any{map[string]any{"name": "Squat", "restPeriod": 700}},
	}}
	_, result := RunWorkoutPipeline(mustJSON(t, m), "")
	assert.Equal(t, StageValidation, result.FailStage)
	assert.Contains(t, result.FailReason, "restPeriod")
}

func TestRunWorkoutPipelineStableSerializationRoundTrip(t *testing.T) {
	t.Parallel()

	plan, first := RunWorkoutPipeline(mustJSON(t, validWorkoutMap()), "")
	require.True(t, first.OK)
	require.NotNil(t, plan)

	reserialized, err := stablejson.MarshalString(plan)
	require.NoError(t, err)

	replan, second := RunWorkoutPipeline(reserialized, "")
	assert.Equal(t, first, second, "a vetted plan must validate identically after canonical re-serialization")
	assert.Equal(t, plan, replan)
}

func TestRunLongHorizonPipelineStableSerializationRoundTrip(t *testing.T) {
	t.Parallel()

	plan, first := RunLongHorizonPipeline(mustJSON(t, validLongHorizonMap()), "", 6)
	require.True(t, first.OK)
	require.NotNil(t, plan)

	reserialized, err := stablejson.MarshalString(plan)
	require.NoError(t, err)

	replan, second := RunLongHorizonPipeline(reserialized, "", 6)
	assert.Equal(t, first, second)
	assert.Equal(t, plan, replan)
}
