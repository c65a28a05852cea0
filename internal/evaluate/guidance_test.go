package evaluate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/domain"
)

func stillValid() domain.ReanalysisResult {
	return domain.ReanalysisResult{Validity: domain.ValidityStillValid}
}

func TestDeriveGuidance_CompletedDominatesInvalidation(t *testing.T) {
	pos := longPosition()
	pos.Status = domain.StatusCompleted
	rean := domain.ReanalysisResult{
		Validity: domain.ValidityInvalidated,
		Reason:   domain.ReasonStructureBroken,
	}

	assert.Equal(t, domain.GuidanceHoldThesis, DeriveGuidance(pos, rean))
}

func TestDeriveGuidance_InvalidatedBeatsStall(t *testing.T) {
	pos := longPosition()
	pos.Status = domain.StatusStalled
	rean := domain.ReanalysisResult{
		Validity: domain.ValidityInvalidated,
		Reason:   domain.ReasonHTFBiasFlipped,
	}

	assert.Equal(t, domain.GuidanceStructureAtRisk, DeriveGuidance(pos, rean))
}

func TestDeriveGuidance_Stalled(t *testing.T) {
	pos := longPosition()
	pos.Status = domain.StatusStalled
	pos.ProgressPercent = 10 // below the confirmation threshold, stall still wins

	assert.Equal(t, domain.GuidanceThesisWeakening, DeriveGuidance(pos, stillValid()))
}

func TestDeriveGuidance_BelowConfirmation(t *testing.T) {
	pos := longPosition()
	pos.Status = domain.StatusProgressing
	pos.ProgressPercent = 24.9

	assert.Equal(t, domain.GuidanceWaitForConfirmation, DeriveGuidance(pos, stillValid()))
}

func TestDeriveGuidance_ExactlyAtConfirmationHolds(t *testing.T) {
	pos := longPosition()
	pos.Status = domain.StatusProgressing
	pos.ProgressPercent = 25

	assert.Equal(t, domain.GuidanceHoldThesis, DeriveGuidance(pos, stillValid()))
}

func TestDeriveGuidance_HealthyProgress(t *testing.T) {
	pos := longPosition()
	pos.Status = domain.StatusProgressing
	pos.ProgressPercent = 60

	assert.Equal(t, domain.GuidanceHoldThesis, DeriveGuidance(pos, stillValid()))
}
