package evaluate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/domain"
)

func TestApplyGuardrail_Table(t *testing.T) {
	cases := []struct {
		stance     domain.Stance
		permission domain.Permission
		reason     domain.GuardrailReason
	}{
		{domain.StanceStrongThesis, domain.PermissionAllowed, domain.ReasonStrongPolicy},
		{domain.StanceWeakeningThesis, domain.PermissionManualReviewOnly, domain.ReasonWeakeningPolicy},
		{domain.StanceHighRiskThesis, domain.PermissionManualReviewOnly, domain.ReasonHighRiskPolicy},
		{domain.StanceInvalidThesis, domain.PermissionBlocked, domain.ReasonInvalidPolicy},
		{domain.StanceCompletedThesis, domain.PermissionBlocked, domain.ReasonCompletedPolicy},
		{domain.StanceInsufficientData, domain.PermissionBlocked, domain.ReasonInsufficientDataPolicy},
	}

	for _, c := range cases {
		got := ApplyGuardrail(domain.PolicyResult{Stance: c.stance})
		assert.Equal(t, c.permission, got.Permission, string(c.stance))
		assert.Equal(t, c.reason, got.Reason, string(c.stance))
	}
}

func TestApplyGuardrail_CoversEveryStance(t *testing.T) {
	for _, stance := range AllStances {
		got := ApplyGuardrail(domain.PolicyResult{Stance: stance})
		assert.NotEmpty(t, got.Permission, string(stance))
		assert.NotEmpty(t, got.Reason, string(stance))
	}
}

func TestApplyGuardrail_NeverGrantsEscalationOnly(t *testing.T) {
	for _, stance := range AllStances {
		got := ApplyGuardrail(domain.PolicyResult{Stance: stance})
		assert.NotEqual(t, domain.PermissionEscalationOnly, got.Permission, string(stance))
	}
}

func TestApplyGuardrail_UnknownStanceBlocks(t *testing.T) {
	got := ApplyGuardrail(domain.PolicyResult{Stance: "SOMETHING_NEW"})

	assert.Equal(t, domain.PermissionBlocked, got.Permission)
	assert.Equal(t, domain.ReasonInsufficientDataPolicy, got.Reason)
}
