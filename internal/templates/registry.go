// Package templates holds the config-backed registry of NASM-aligned
// workout templates. Entries are immutable and versioned; lookups are
// read-only, so the registry needs no locking.
package templates

// RegistryVersion identifies the template config revision.
const RegistryVersion = "4a-1.0.0"

// Template categories.
const (
	CategoryProgramming = "programming"
	CategoryCorrective  = "corrective"
	CategoryAssessment  = "assessment"
)

// Template statuses.
const (
	StatusActive        = "active"
	StatusDeprecated    = "deprecated"
	StatusPendingSchema = "pending_schema"
)

// Template is one registry entry. OptPhase is nil for non-OPT
// frameworks. PhaseKey is set only for OPT programming templates.
type Template struct {
	ID                string   `json:"id"`
	Label             string   `json:"label"`
	Category          string   `json:"category"`
	Status            string   `json:"status"`
	NasmFramework     string   `json:"nasmFramework"`
	OptPhase          *int     `json:"optPhase"`
	PhaseKey          string   `json:"phaseKey,omitempty"`
	TemplateVersion   string   `json:"templateVersion"`
	SupportsAIContext bool     `json:"supportsAiContext"`
	Tags              []string `json:"tags"`
}

// Suggestion is the minimal template reference embedded in degraded
// responses.
type Suggestion struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Category string `json:"category"`
}

func phase(n int) *int { return &n }

var registry = []Template{
	{
		ID: "opt-phase-1-stabilization", Label: "OPT Phase 1: Stabilization Endurance",
		Category: CategoryProgramming, Status: StatusActive, NasmFramework: "OPT",
		OptPhase: phase(1), PhaseKey: "stabilization_endurance", TemplateVersion: "1.0.0",
		SupportsAIContext: true, Tags: []string{"opt", "stabilization", "phase1", "beginner"},
	},
	{
		ID: "opt-phase-2-strength-endurance", Label: "OPT Phase 2: Strength Endurance",
		Category: CategoryProgramming, Status: StatusActive, NasmFramework: "OPT",
		OptPhase: phase(2), PhaseKey: "strength_endurance", TemplateVersion: "1.0.0",
		SupportsAIContext: true, Tags: []string{"opt", "strength-endurance", "phase2", "intermediate"},
	},
	{
		ID: "opt-phase-3-hypertrophy", Label: "OPT Phase 3: Hypertrophy",
		Category: CategoryProgramming, Status: StatusActive, NasmFramework: "OPT",
		OptPhase: phase(3), PhaseKey: "hypertrophy", TemplateVersion: "1.0.0",
		SupportsAIContext: true, Tags: []string{"opt", "hypertrophy", "phase3", "intermediate"},
	},
	{
		ID: "opt-phase-4-maximal-strength", Label: "OPT Phase 4: Maximal Strength",
		Category: CategoryProgramming, Status: StatusActive, NasmFramework: "OPT",
		OptPhase: phase(4), PhaseKey: "maximal_strength", TemplateVersion: "1.0.0",
		SupportsAIContext: true, Tags: []string{"opt", "maximal-strength", "phase4", "advanced"},
	},
	{
		ID: "opt-phase-5-power", Label: "OPT Phase 5: Power",
		Category: CategoryProgramming, Status: StatusActive, NasmFramework: "OPT",
		OptPhase: phase(5), PhaseKey: "power", TemplateVersion: "1.0.0",
		SupportsAIContext: true, Tags: []string{"opt", "power", "phase5", "advanced"},
	},
	{
		ID: "ces-corrective-strategy", Label: "Corrective Exercise Strategy",
		Category: CategoryCorrective, Status: StatusActive, NasmFramework: "CES",
		TemplateVersion: "1.0.0", SupportsAIContext: true,
		Tags: []string{"ces", "corrective", "movement-assessment"},
	},
	{
		ID: "parq-plus-screening", Label: "PAR-Q+ Pre-Participation Screening",
		Category: CategoryAssessment, Status: StatusActive, NasmFramework: "PAR-Q+",
		TemplateVersion: "1.0.0", SupportsAIContext: true,
		Tags: []string{"parq", "screening", "assessment", "safety"},
	},
	// ID reservations awaiting structured schemas.
	{
		ID: "general-beginner", Label: "General Fitness: Beginner",
		Category: CategoryProgramming, Status: StatusPendingSchema, NasmFramework: "GENERAL",
		TemplateVersion: "0.1.0", Tags: []string{"general", "beginner"},
	},
	{
		ID: "general-intermediate", Label: "General Fitness: Intermediate",
		Category: CategoryProgramming, Status: StatusPendingSchema, NasmFramework: "GENERAL",
		TemplateVersion: "0.1.0", Tags: []string{"general", "intermediate"},
	},
	{
		ID: "general-advanced", Label: "General Fitness: Advanced",
		Category: CategoryProgramming, Status: StatusPendingSchema, NasmFramework: "GENERAL",
		TemplateVersion: "0.1.0", Tags: []string{"general", "advanced"},
	},
}

// templateAliases maps legacy degraded-response IDs to canonical
// registry IDs, preserving the public API contract.
var templateAliases = map[string]string{
	"opt-1-stabilization":      "opt-phase-1-stabilization",
	"opt-2-strength":           "opt-phase-2-strength-endurance",
	"opt-2-strength-endurance": "opt-phase-2-strength-endurance",
	"opt-3-hypertrophy":        "opt-phase-3-hypertrophy",
	"opt-4-maxstrength":        "opt-phase-4-maximal-strength",
	"opt-4-maximal-strength":   "opt-phase-4-maximal-strength",
	"opt-5-power":              "opt-phase-5-power",
	"ces-general":              "ces-corrective-strategy",
	"general-beginner":         "general-beginner",
	"general-intermediate":     "general-intermediate",
	"general-advanced":         "general-advanced",
}

var phaseKeyToID = map[string]string{
	"stabilization_endurance": "opt-phase-1-stabilization",
	"strength_endurance":      "opt-phase-2-strength-endurance",
	"hypertrophy":             "opt-phase-3-hypertrophy",
	"maximal_strength":        "opt-phase-4-maximal-strength",
	"power":                   "opt-phase-5-power",
}

// All returns a copy of every registry entry.
func All() []Template {
	out := make([]Template, len(registry))
	copy(out, registry)
	return out
}

// ResolveAlias maps a legacy alias ID to its canonical registry ID,
// returning the input unchanged when no alias exists.
func ResolveAlias(id string) string {
	if canonical, ok := templateAliases[id]; ok {
		return canonical
	}
	return id
}

// ByID finds a template by canonical or alias ID. The second return
// is false when no template matches.
func ByID(id string) (Template, bool) {
	resolved := ResolveAlias(id)
	for _, t := range registry {
		if t.ID == resolved {
			return t, true
		}
	}
	return Template{}, false
}

// ByCategory returns all templates in a category.
func ByCategory(category string) []Template {
	return filter(func(t Template) bool { return t.Category == category })
}

// ByFramework returns all templates for a NASM framework.
func ByFramework(framework string) []Template {
	return filter(func(t Template) bool { return t.NasmFramework == framework })
}

// ByStatus returns all templates with the given status.
func ByStatus(status string) []Template {
	return filter(func(t Template) bool { return t.Status == status })
}

// ByPhaseKey finds the OPT template for a phase key such as
// "strength_endurance".
func ByPhaseKey(phaseKey string) (Template, bool) {
	id, ok := phaseKeyToID[phaseKey]
	if !ok {
		return Template{}, false
	}
	return ByID(id)
}

// Suggestions returns the programming templates offered to coaches in
// degraded mode, in registry order.
func Suggestions() []Suggestion {
	var out []Suggestion
	for _, t := range registry {
		if t.Category != CategoryProgramming && t.Category != CategoryCorrective {
			continue
		}
		out = append(out, Suggestion{ID: t.ID, Label: t.Label, Category: t.Category})
	}
	return out
}

func filter(keep func(Template) bool) []Template {
	var out []Template
	for _, t := range registry {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}
