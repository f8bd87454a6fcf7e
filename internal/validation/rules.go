package validation

import (
	"fmt"
	"math"

	"github.com/swanstudios/plangate/internal/domain"
)

// Cross-field safety limits that the schema alone cannot express.
const (
	maxExercisesPerDay = 20
	maxBlockWeeks      = 8

	// weeksPerMonth converts a horizon in months to its maximum total
	// block duration.
	weeksPerMonth = 4.33

	// minWeeksPerMonth is the floor below which a plan is flagged as
	// suspiciously short for its horizon.
	minWeeksPerMonth = 3
)

// RuleResult is the outcome of a domain rule check. Errors block the
// plan; Warnings surface to the coach but do not.
type RuleResult struct {
	OK       bool
	Errors   []string
	Warnings []string
}

// CheckWorkoutRules applies cross-field rules to a schema-valid
// workout plan.
func CheckWorkoutRules(plan *domain.WorkoutPlan) RuleResult {
	var res RuleResult

	maxDays := plan.DurationWeeks * 7
	if len(plan.Days) > maxDays {
		res.Errors = append(res.Errors, fmt.Sprintf(
			"Plan has %d days, which exceeds the %d allowed by durationWeeks=%d",
			len(plan.Days), maxDays, plan.DurationWeeks))
	}

	seen := make(map[int]bool, len(plan.Days))
	for _, day := range plan.Days {
		if seen[day.DayNumber] {
			res.Errors = append(res.Errors, "Duplicate day numbers detected")
			break
		}
		seen[day.DayNumber] = true
	}

	for _, day := range plan.Days {
		if len(day.Exercises) > maxExercisesPerDay {
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"Day %d has %d exercises, more than the recommended maximum of %d",
				day.DayNumber, len(day.Exercises), maxExercisesPerDay))
		}
	}

	res.OK = len(res.Errors) == 0
	return res
}

// MaxWeeksForHorizon returns the largest total block duration allowed
// for a horizon, rounding the month length up (3 months allows 13
// weeks, 6 allows 26, 12 allows 52).
func MaxWeeksForHorizon(horizonMonths int) int {
	return int(math.Ceil(float64(horizonMonths) * weeksPerMonth))
}

// CheckLongHorizonRules applies cross-field rules to a schema-valid
// long-horizon plan. requestedHorizon is the horizon the client asked
// for; a plan generated for a different horizon is rejected outright.
func CheckLongHorizonRules(plan *domain.LongHorizonPlan, requestedHorizon int) RuleResult {
	var res RuleResult

	if plan.HorizonMonths != requestedHorizon {
		res.Errors = append(res.Errors, fmt.Sprintf(
			"Plan horizonMonths=%d but the request was %d", plan.HorizonMonths, requestedHorizon))
	}

	res.Errors = append(res.Errors, checkBlockSequences(plan.Blocks)...)

	total := plan.TotalWeeks()
	if maxWeeks := MaxWeeksForHorizon(plan.HorizonMonths); total > maxWeeks {
		res.Errors = append(res.Errors, fmt.Sprintf(
			"Total block duration of %d weeks exceeds the %d-week maximum for a %d-month horizon",
			total, maxWeeks, plan.HorizonMonths))
	}
	if minWeeks := plan.HorizonMonths * minWeeksPerMonth; total < minWeeks {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"Total block duration of %d weeks is short for a %d-month horizon (expected at least %d)",
			total, plan.HorizonMonths, minWeeks))
	}

	for _, block := range plan.Blocks {
		if block.DurationWeeks > maxBlockWeeks {
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"Block %d runs %d weeks, longer than typical mesocycle length",
				block.Sequence, block.DurationWeeks))
		}
		switch {
		case block.NasmFramework == domain.FrameworkOPT && block.OptPhase == nil:
			res.Errors = append(res.Errors, fmt.Sprintf(
				"Block %d: OPT framework requires optPhase", block.Sequence))
		case block.NasmFramework != domain.FrameworkOPT && block.OptPhase != nil:
			res.Errors = append(res.Errors, fmt.Sprintf(
				"Block %d: optPhase must be null for %s blocks", block.Sequence, block.NasmFramework))
		}
	}

	res.OK = len(res.Errors) == 0
	return res
}

// checkBlockSequences validates that block sequence numbers are unique
// and contiguous starting at 1.
func checkBlockSequences(blocks []domain.MesocycleBlock) []string {
	var errs []string

	seen := make(map[int]bool, len(blocks))
	duplicate := false
	for _, b := range blocks {
		if seen[b.Sequence] {
			duplicate = true
		}
		seen[b.Sequence] = true
	}
	if duplicate {
		errs = append(errs, "Duplicate block sequence numbers detected")
	}

	for want := 1; want <= len(blocks); want++ {
		if !seen[want] {
			errs = append(errs, fmt.Sprintf(
				"Block sequences must be contiguous starting at 1 (missing sequence %d)", want))
			break
		}
	}
	return errs
}
