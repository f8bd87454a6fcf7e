// Package degraded builds the manual-fallback response returned when
// every configured provider has failed. The caller still gets a
// success-shaped payload so client flows continue; the coach is handed
// NASM templates to build the plan manually.
package degraded

import (
	"fmt"

	"github.com/swanstudios/plangate/internal/domain"
	"github.com/swanstudios/plangate/internal/templates"
)

// Code marks a response produced without any provider output.
const Code = "AI_DEGRADED_MODE"

// FallbackType identifies the only fallback currently offered.
const FallbackType = "manual_template_only"

// Fallback carries the manual-path material for a degraded response.
type Fallback struct {
	Type                string                 `json:"type"`
	TemplateSuggestions []templates.Suggestion `json:"templateSuggestions"`
	Reasons             []string               `json:"reasons"`
}

// Response is the full degraded-mode payload. Success stays true: the
// request did not fail, it fell back to the manual path.
type Response struct {
	Success       bool     `json:"success"`
	Degraded      bool     `json:"degraded"`
	Code          string   `json:"code"`
	Message       string   `json:"message"`
	Fallback      Fallback `json:"fallback"`
	FailoverTrace []string `json:"failoverTrace"`
}

// codeLabels translates provider error codes into coach-readable
// phrases. Unknown codes fall back to the raw message.
var codeLabels = map[domain.ErrorCode]string{
	domain.ErrTimeout:         "request timed out",
	domain.ErrRateLimit:       "provider rate limit reached",
	domain.ErrAuth:            "provider authentication failed",
	domain.ErrUnavailable:     "provider temporarily unavailable",
	domain.ErrInvalidResponse: "provider returned an unusable response",
	domain.ErrContentFilter:   "provider declined the request",
	domain.ErrNetwork:         "network error reaching provider",
	domain.ErrUnknown:         "unexpected provider error",
}

// BuildResponse assembles the degraded payload from the errors and
// failover trace of an exhausted routing call. One reason is emitted
// per provider error, in trace order.
func BuildResponse(errs []*domain.ProviderError, failoverTrace []string) *Response {
	reasons := make([]string, 0, len(errs))
	for _, pe := range errs {
		label, ok := codeLabels[pe.Code]
		if !ok {
			label = pe.Message
		}
		reasons = append(reasons, fmt.Sprintf("%s: %s", pe.Provider, label))
	}

	return &Response{
		Success:  true,
		Degraded: true,
		Code:     Code,
		Message:  "AI generation is temporarily unavailable. Start from a template and customize it manually.",
		Fallback: Fallback{
			Type:                FallbackType,
			TemplateSuggestions: templates.Suggestions(),
			Reasons:             reasons,
		},
		FailoverTrace: failoverTrace,
	}
}
