// Package eligibility decides whether an actor may run AI generation
// for a target client, based on the client's AI privacy consent.
package eligibility

import "time"

// Decisions.
const (
	DecisionAllow             = "allow"
	DecisionAllowWithOverride = "allow_with_override_warning"
	DecisionDeny              = "deny"
)

// Reason and warning codes.
const (
	CodeConsentMissing   = "AI_CONSENT_MISSING"
	CodeConsentDisabled  = "AI_CONSENT_DISABLED"
	CodeConsentWithdrawn = "AI_CONSENT_WITHDRAWN"
	CodeOverrideUsed     = "AI_CONSENT_OVERRIDE_USED"
)

// Consent sources.
const (
	SourceProfile = "ai_privacy_profile"
	SourceNone    = "none"
)

// ConsentProfile is the client's stored AI privacy preference. A nil
// profile means the client never recorded one.
type ConsentProfile struct {
	AIEnabled   bool
	WithdrawnAt *time.Time
}

// Request identifies who is asking to generate for whom.
type Request struct {
	TargetUserID int64
	ActorUserID  int64
	ActorRole    string
	Profile      *ConsentProfile
}

// Result is the eligibility decision. ReasonCode is set only on deny;
// Warnings surface on override-allows so the caller can audit them.
type Result struct {
	Decision              string   `json:"decision"`
	ReasonCode            string   `json:"reasonCode,omitempty"`
	RequiresAuditOverride bool     `json:"requiresAuditOverride"`
	Warnings              []string `json:"warnings,omitempty"`
	ConsentSource         string   `json:"consentSource"`
}

// Check applies the consent policy. An explicit refusal (withdrawn or
// disabled consent) denies everyone, admins included; only the absence
// of a profile is admin-overridable.
func Check(req Request) *Result {
	if req.Profile != nil {
		if req.Profile.WithdrawnAt != nil {
			return &Result{
				Decision:      DecisionDeny,
				ReasonCode:    CodeConsentWithdrawn,
				ConsentSource: SourceProfile,
			}
		}
		if !req.Profile.AIEnabled {
			return &Result{
				Decision:      DecisionDeny,
				ReasonCode:    CodeConsentDisabled,
				ConsentSource: SourceProfile,
			}
		}
		return &Result{Decision: DecisionAllow, ConsentSource: SourceProfile}
	}

	if req.ActorRole == "admin" {
		return &Result{
			Decision:              DecisionAllowWithOverride,
			RequiresAuditOverride: true,
			Warnings:              []string{CodeOverrideUsed},
			ConsentSource:         SourceNone,
		}
	}

	return &Result{
		Decision:      DecisionDeny,
		ReasonCode:    CodeConsentMissing,
		ConsentSource: SourceNone,
	}
}
