// Package prompt builds the system and user messages sent to AI
// providers. Builders are pure functions over de-identified payloads
// and server-derived constraints; they have no access to user
// identifiers, so a prompt cannot leak what it never saw.
package prompt

import (
	"fmt"
	"strings"
)

// WorkoutSystemMessage pins the provider to structured output.
const WorkoutSystemMessage = "You generate structured workout plans as JSON only."

// WorkoutPromptVersion tags generated requests for auditing.
const WorkoutPromptVersion = "workout-v2"

const workoutSchemaExample = `{
  "planName": "string",
  "durationWeeks": 1-52,
  "summary": "string",
  "days": [
    {
      "dayNumber": 1,
      "name": "string",
      "focus": "string",
      "dayType": "training" | "recovery",
      "estimatedDuration": 0-300,
      "exercises": [
        {
          "name": "string",
          "setScheme": "string",
          "repGoal": "string",
          "restPeriod": 0-600,
          "tempo": "string",
          "intensityGuideline": "string"
        }
      ]
    }
  ]
}`

// WorkoutInput carries the inputs for a single-plan prompt. Like the
// long-horizon builder, it has no user identifier field.
type WorkoutInput struct {
	// Payload is the de-identified client snapshot.
	Payload map[string]any

	// ServerConstraints are server-derived programming constraints
	// (NASM phase targets, pain restrictions). Free text from the
	// client is never placed here.
	ServerConstraints map[string]any
}

// BuildWorkoutPrompt renders the user prompt for a workout generation
// request.
func BuildWorkoutPrompt(in WorkoutInput) string {
	var b strings.Builder

	b.WriteString("Design a personalized workout plan for the client profile below.\n\n")
	b.WriteString("Client profile (de-identified):\n")
	b.WriteString(compactJSON(in.Payload))
	b.WriteString("\n")

	if len(in.ServerConstraints) > 0 {
		b.WriteString("\nProgramming constraints (server-derived, authoritative):\n")
		b.WriteString(compactJSON(in.ServerConstraints))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nRespond with a single JSON object matching this schema exactly:\n%s\n", workoutSchemaExample)
	b.WriteString("\nDay numbers must be unique. Rest periods are in seconds. No prose outside the JSON object.\n")
	return b.String()
}
