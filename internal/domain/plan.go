package domain

// WorkoutPlan is the validated structure of a single-plan generation.
// It exists only after provider text has cleared the full validation
// pipeline, or after an approved draft has been re-validated.
//
// Field bounds are enforced with validator/v10 tags; unknown JSON
// fields are tolerated for forward compatibility.
type WorkoutPlan struct {
	PlanName      string    `json:"planName" validate:"required,min=1,max=120"`
	DurationWeeks int       `json:"durationWeeks" validate:"required,min=1,max=52"`
	Summary       string    `json:"summary,omitempty" validate:"max=2000"`
	Days          []PlanDay `json:"days" validate:"required,min=1,dive"`
}

// PlanDay is one training (or recovery) day inside a WorkoutPlan.
type PlanDay struct {
	DayNumber         int        `json:"dayNumber" validate:"required,min=1"`
	Name              string     `json:"name" validate:"required,min=1,max=120"`
	Focus             string     `json:"focus,omitempty" validate:"max=200"`
	DayType           string     `json:"dayType,omitempty" validate:"max=40"`
	EstimatedDuration int        `json:"estimatedDuration,omitempty" validate:"min=0,max=300"`
	Exercises         []Exercise `json:"exercises" validate:"required,min=1,dive"`
}

// Exercise is a single prescribed movement. RestPeriod is seconds;
// nil means the provider or coach left it unspecified.
type Exercise struct {
	Name               string `json:"name" validate:"required,min=1,max=120"`
	SetScheme          string `json:"setScheme,omitempty" validate:"max=40"`
	RepGoal            string `json:"repGoal,omitempty" validate:"max=40"`
	RestPeriod         *int   `json:"restPeriod,omitempty" validate:"omitempty,min=0,max=600"`
	Tempo              string `json:"tempo,omitempty" validate:"max=40"`
	IntensityGuideline string `json:"intensityGuideline,omitempty" validate:"max=120"`
}

// NASM framework identifiers accepted in long-horizon blocks.
const (
	FrameworkOPT     = "OPT"
	FrameworkCES     = "CES"
	FrameworkGeneral = "GENERAL"
)

// LongHorizonPlan is the validated structure of a multi-month
// periodization plan.
type LongHorizonPlan struct {
	PlanName      string           `json:"planName" validate:"required,min=1,max=120"`
	HorizonMonths int              `json:"horizonMonths" validate:"required,oneof=3 6 12"`
	Summary       *string          `json:"summary,omitempty" validate:"omitempty,max=2000"`
	Blocks        []MesocycleBlock `json:"blocks" validate:"required,min=1,dive"`
}

// MesocycleBlock is one phase of a LongHorizonPlan. OPT-framework
// blocks carry an OptPhase (1-5); CES and GENERAL blocks must not
// (enforced by the rule engine, not the schema).
type MesocycleBlock struct {
	Sequence        int     `json:"sequence" validate:"required,min=1"`
	NasmFramework   string  `json:"nasmFramework" validate:"required,oneof=OPT CES GENERAL"`
	OptPhase        *int    `json:"optPhase,omitempty" validate:"omitempty,min=1,max=5"`
	PhaseName       string  `json:"phaseName" validate:"required,min=1,max=120"`
	Focus           *string `json:"focus,omitempty" validate:"omitempty,max=200"`
	DurationWeeks   int     `json:"durationWeeks" validate:"required,min=1,max=16"`
	SessionsPerWeek *int    `json:"sessionsPerWeek,omitempty" validate:"omitempty,min=1,max=7"`
	EntryCriteria   *string `json:"entryCriteria,omitempty" validate:"omitempty,max=500"`
	ExitCriteria    *string `json:"exitCriteria,omitempty" validate:"omitempty,max=500"`
	Notes           *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// TotalWeeks sums the block durations of a long-horizon plan.
func (p *LongHorizonPlan) TotalWeeks() int {
	total := 0
	for _, b := range p.Blocks {
		total += b.DurationWeeks
	}
	return total
}
