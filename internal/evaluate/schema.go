package evaluate

import "github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/domain"

// SchemaVersion is the frozen contract version of the evaluation enums. The
// enum sets below are closed for this version: growing or shrinking any of
// them is a contract change and must fail the schema test until the version
// is bumped deliberately.
const SchemaVersion = "1.0"

var (
	AllStatuses = []domain.PositionStatus{
		domain.StatusOpen, domain.StatusProgressing, domain.StatusStalled,
		domain.StatusInvalidated, domain.StatusCompleted,
	}

	AllGuidance = []domain.Guidance{
		domain.GuidanceHoldThesis, domain.GuidanceThesisWeakening,
		domain.GuidanceStructureAtRisk, domain.GuidanceWaitForConfirmation,
	}

	AllInvalidationReasons = []domain.InvalidationReason{
		domain.ReasonStructureBroken, domain.ReasonPOIInvalidated,
		domain.ReasonLiquidityTakenAgainst, domain.ReasonHTFBiasFlipped,
		domain.ReasonTimeDecayExceeded,
	}

	AllTrajectories = []domain.Trajectory{
		domain.TrajectoryNoData, domain.TrajectoryRegressing,
		domain.TrajectoryStalled, domain.TrajectorySlowing,
		domain.TrajectoryStable,
	}

	AllStabilities = []domain.Stability{
		domain.StabilityTerminated, domain.StabilityRepeatedInstability,
		domain.StabilityEarlyWeakening, domain.StabilityStructurallyStable,
	}

	AllStances = []domain.Stance{
		domain.StanceStrongThesis, domain.StanceWeakeningThesis,
		domain.StanceHighRiskThesis, domain.StanceInvalidThesis,
		domain.StanceCompletedThesis, domain.StanceInsufficientData,
	}

	AllPermissions = []domain.Permission{
		domain.PermissionAllowed, domain.PermissionManualReviewOnly,
		domain.PermissionBlocked, domain.PermissionEscalationOnly,
	}

	AllActions = []domain.Action{
		domain.ActionNoAction, domain.ActionRequestManualReview,
		domain.ActionPrepareEntry, domain.ActionMonitor, domain.ActionAbortIdea,
	}
)
