package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/swanstudios/plangate/internal/domain"
)

// validate is shared across the package; validator instances cache
// struct metadata and are safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report errors against JSON field names so messages say
	// "planName", not "PlanName".
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// extractJSON strips markdown code fences that providers sometimes
// wrap around their output and trims to the outermost JSON object.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

// ParseWorkoutPlan decodes and schema-validates raw provider text as a
// workout plan. Unknown JSON fields are tolerated. The error message
// names the offending field so callers can surface it directly.
func ParseWorkoutPlan(raw string) (*domain.WorkoutPlan, error) {
	var plan domain.WorkoutPlan
	if err := json.Unmarshal([]byte(extractJSON(raw)), &plan); err != nil {
		return nil, fmt.Errorf("JSON parse error: %w", err)
	}
	if err := validate.Struct(&plan); err != nil {
		return nil, fmt.Errorf("%s", describeFieldErrors(err))
	}
	return &plan, nil
}

// ParseLongHorizonPlan decodes and schema-validates raw provider text
// as a long-horizon periodization plan.
func ParseLongHorizonPlan(raw string) (*domain.LongHorizonPlan, error) {
	var plan domain.LongHorizonPlan
	if err := json.Unmarshal([]byte(extractJSON(raw)), &plan); err != nil {
		return nil, fmt.Errorf("JSON parse error: %w", err)
	}
	if err := validate.Struct(&plan); err != nil {
		return nil, fmt.Errorf("%s", describeFieldErrors(err))
	}
	return &plan, nil
}

// describeFieldErrors flattens validator errors into one message that
// names each failing JSON field.
func describeFieldErrors(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param()))
		case "min", "max":
			parts = append(parts, fmt.Sprintf("%s out of range (%s=%s)", fe.Field(), fe.Tag(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
