package prompt

import (
	"fmt"
	"strings"

	"github.com/swanstudios/plangate/internal/stablejson"
)

// LongHorizonSystemMessage pins the provider to structured output.
const LongHorizonSystemMessage = "You generate structured multi-month periodization plans as JSON only."

// LongHorizonPromptVersion tags generated requests for auditing.
const LongHorizonPromptVersion = "long-horizon-v1"

// longHorizonSchemaExample is embedded verbatim in every prompt so the
// provider sees the exact field names the validator expects.
const longHorizonSchemaExample = `{
  "planName": "string",
  "horizonMonths": 3 | 6 | 12,
  "summary": "string or null",
  "blocks": [
    {
      "sequence": 1,
      "nasmFramework": "OPT" | "CES" | "GENERAL",
      "optPhase": 1-5 or null,
      "phaseName": "string",
      "focus": "string or null",
      "durationWeeks": 1-16,
      "sessionsPerWeek": 1-7 or null,
      "entryCriteria": "string or null",
      "exitCriteria": "string or null",
      "notes": "string or null"
    }
  ]
}`

// LongHorizonInput carries everything the long-horizon prompt builder
// may use. It deliberately has no user identifier field; prompts are
// built purely from de-identified data and server-derived constraints.
type LongHorizonInput struct {
	// Payload is the de-identified client snapshot (alias, age band,
	// fitness level). Never raw identity data.
	Payload map[string]any

	// HorizonMonths is the requested planning horizon (3, 6, or 12).
	HorizonMonths int

	// Context is the optional training history summary.
	Context map[string]any

	// NasmConstraints are server-derived programming constraints.
	NasmConstraints map[string]any

	// TemplateContext is the optional NASM template schema context.
	TemplateContext map[string]any
}

// BuildLongHorizonPrompt renders the user prompt for a long-horizon
// generation request. Sections with no data are omitted entirely.
func BuildLongHorizonPrompt(in LongHorizonInput) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Design a %d-month periodization program for the client profile below.\n\n", in.HorizonMonths)

	b.WriteString("Client profile (de-identified):\n")
	b.WriteString(compactJSON(in.Payload))
	b.WriteString("\n")

	if section := renderTrainingContext(in.Context); section != "" {
		b.WriteString("\nTraining Context:\n")
		b.WriteString(section)
	}

	if len(in.NasmConstraints) > 0 {
		b.WriteString("\nNASM constraints (server-derived, authoritative):\n")
		b.WriteString(compactJSON(in.NasmConstraints))
		b.WriteString("\n")
	}

	if len(in.TemplateContext) > 0 {
		b.WriteString("\nTemplate context:\n")
		b.WriteString(compactJSON(in.TemplateContext))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nRespond with a single JSON object matching this schema exactly:\n%s\n", longHorizonSchemaExample)
	fmt.Fprintf(&b, "\nThe plan must cover the full %d-month horizon with contiguous block sequences starting at 1. No prose outside the JSON object.\n", in.HorizonMonths)
	return b.String()
}

// renderTrainingContext flattens the 5-part training history summary
// into prompt lines. Missing sub-sections are skipped.
func renderTrainingContext(ctx map[string]any) string {
	if len(ctx) == 0 {
		return ""
	}
	var lines []string

	if ps, ok := ctx["progressSummary"].(map[string]any); ok {
		if n, ok := number(ps["recentSessionCount"]); ok && n > 0 {
			lines = append(lines, fmt.Sprintf("- Recent sessions: %s", formatNum(n)))
		}
		if vt, ok := ps["volumeTrend"].(string); ok && vt != "" {
			lines = append(lines, fmt.Sprintf("- Volume trend: %s", vt))
		}
		if rt, ok := ps["rpeTrend"].(string); ok && rt != "" {
			lines = append(lines, fmt.Sprintf("- RPE trend: %s", rt))
		}
	}

	if ad, ok := ctx["adherence"].(map[string]any); ok {
		done, okDone := number(ad["completedSessions"])
		sched, okSched := number(ad["scheduledSessions"])
		if okDone && okSched && sched > 0 {
			lines = append(lines, fmt.Sprintf("- Adherence: %s of %s scheduled sessions completed", formatNum(done), formatNum(sched)))
		}
		if flags, ok := ad["consistencyFlags"].([]any); ok {
			for _, f := range flags {
				if s, ok := f.(string); ok {
					lines = append(lines, fmt.Sprintf("- Consistency: %s", s))
				}
			}
		}
	}

	if ft, ok := ctx["fatigueTrends"].(map[string]any); ok {
		if v, ok := number(ft["avgRpe4w"]); ok {
			lines = append(lines, fmt.Sprintf("- Fatigue: 4w avg RPE %s", formatNum(v)))
		}
		if v, ok := number(ft["avgRpe8w"]); ok {
			lines = append(lines, fmt.Sprintf("- Fatigue: 8w avg RPE %s", formatNum(v)))
		}
	}

	if pt, ok := ctx["progressionTrends"].(map[string]any); ok {
		if metrics, ok := pt["metrics"].([]any); ok {
			for _, m := range metrics {
				metric, ok := m.(map[string]any)
				if !ok {
					continue
				}
				name, _ := metric["exerciseName"].(string)
				vol, _ := metric["volumeTrend"].(string)
				load, _ := metric["loadTrend"].(string)
				if name != "" {
					lines = append(lines, fmt.Sprintf("- Progression: %s volume %s, load %s", name, vol, load))
				}
			}
		}
	}

	if gp, ok := ctx["goalProgress"].(map[string]any); ok {
		if goal, ok := gp["primaryGoal"].(string); ok && goal != "" {
			lines = append(lines, fmt.Sprintf("- Primary goal category: %s", goal))
		}
	}

	if ir, ok := ctx["injuryRestrictions"].(map[string]any); ok {
		if active, ok := ir["active"].([]any); ok {
			for _, a := range active {
				restriction, ok := a.(map[string]any)
				if !ok {
					continue
				}
				area, _ := restriction["area"].(string)
				kind, _ := restriction["type"].(string)
				if area != "" {
					lines = append(lines, fmt.Sprintf("- Active restriction: %s (%s)", area, kind))
				}
			}
		}
	}

	if bc, ok := ctx["bodyComposition"].(map[string]any); ok {
		if trend, ok := bc["trend"].(string); ok && trend != "" {
			lines = append(lines, fmt.Sprintf("- Body composition trend: %s", trend))
		}
	}

	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

func compactJSON(v any) string {
	s, err := stablejson.MarshalString(v)
	if err != nil {
		return "{}"
	}
	return s
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

// formatNum drops the trailing ".0" on whole numbers so session counts
// render as integers while RPE averages keep their decimals.
func formatNum(n float64) string {
	if n == float64(int64(n)) {
		return fmt.Sprintf("%d", int64(n))
	}
	return strings.TrimRight(fmt.Sprintf("%.2f", n), "0")
}
