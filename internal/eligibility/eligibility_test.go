package eligibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCheckAdminWithConsent(t *testing.T) {
	t.Parallel()

	res := Check(Request{
		TargetUserID: 1, ActorUserID: 10, ActorRole: "admin",
		Profile: &ConsentProfile{AIEnabled: true},
	})
	assert.Equal(t, DecisionAllow, res.Decision)
	assert.False(t, res.RequiresAuditOverride)
	assert.Equal(t, SourceProfile, res.ConsentSource)
}

func TestCheckAdminWithoutConsentOverrides(t *testing.T) {
	t.Parallel()

	res := Check(Request{TargetUserID: 1, ActorUserID: 10, ActorRole: "admin"})
	assert.Equal(t, DecisionAllowWithOverride, res.Decision)
	assert.True(t, res.RequiresAuditOverride)
	assert.Contains(t, res.Warnings, CodeOverrideUsed)
	assert.Equal(t, SourceNone, res.ConsentSource)
}

func TestCheckTrainerWithConsent(t *testing.T) {
	t.Parallel()

	res := Check(Request{
		TargetUserID: 1, ActorUserID: 10, ActorRole: "trainer",
		Profile: &ConsentProfile{AIEnabled: true},
	})
	assert.Equal(t, DecisionAllow, res.Decision)
	assert.False(t, res.RequiresAuditOverride)
}

func TestCheckTrainerWithoutConsentDenied(t *testing.T) {
	t.Parallel()

	res := Check(Request{TargetUserID: 1, ActorUserID: 10, ActorRole: "trainer"})
	assert.Equal(t, DecisionDeny, res.Decision)
	assert.Equal(t, CodeConsentMissing, res.ReasonCode)
}

func TestCheckDisabledConsentDenied(t *testing.T) {
	t.Parallel()

	res := Check(Request{
		TargetUserID: 1, ActorUserID: 10, ActorRole: "trainer",
		Profile: &ConsentProfile{AIEnabled: false},
	})
	assert.Equal(t, DecisionDeny, res.Decision)
	assert.Equal(t, CodeConsentDisabled, res.ReasonCode)
}

func TestCheckWithdrawnConsentDenied(t *testing.T) {
	t.Parallel()

	now := time.Now()
	res := Check(Request{
		TargetUserID: 1, ActorUserID: 10, ActorRole: "trainer",
		Profile: &ConsentProfile{AIEnabled: true, WithdrawnAt: &now},
	})
	assert.Equal(t, DecisionDeny, res.Decision)
	assert.Equal(t, CodeConsentWithdrawn, res.ReasonCode)
}

func TestCheckWithdrawnConsentDeniesAdminToo(t *testing.T) {
	t.Parallel()

	now := time.Now()
	res := Check(Request{
		TargetUserID: 1, ActorUserID: 10, ActorRole: "admin",
		Profile: &ConsentProfile{AIEnabled: true, WithdrawnAt: &now},
	})
	assert.Equal(t, DecisionDeny, res.Decision, "an explicit refusal is not admin-overridable")
}
