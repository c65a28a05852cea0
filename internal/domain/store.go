package domain

import (
	"context"
	"time"
)

// ListOpts provides pagination and filtering for list queries.
type ListOpts struct {
	Limit  int
	Offset int
	Since  *time.Time
	Until  *time.Time
}

// DecisionRecord is one persisted end-to-end pipeline outcome for a position.
type DecisionRecord struct {
	ID          string
	PositionID  string
	Stance      Stance
	Confidence  Confidence
	Permission  Permission
	Action      Action
	Reason      GuardrailReason
	EvaluatedAt time.Time
}

// PositionStore persists virtual position snapshots.
type PositionStore interface {
	Create(ctx context.Context, pos VirtualPosition) error
	Update(ctx context.Context, pos VirtualPosition) error
	GetByID(ctx context.Context, id string) (VirtualPosition, error)
	ListActive(ctx context.Context) ([]VirtualPosition, error)
	ListActiveByAsset(ctx context.Context, assetID string) ([]VirtualPosition, error)
	ListTerminatedBefore(ctx context.Context, before time.Time) ([]VirtualPosition, error)
	ListHistory(ctx context.Context, opts ListOpts) ([]VirtualPosition, error)
}

// TimelineStore persists the append-only per-position timelines.
type TimelineStore interface {
	Append(ctx context.Context, positionID string, entry TimelineEntry) error
	Get(ctx context.Context, positionID string) (VirtualPositionTimeline, error)
}

// DecisionStore persists pipeline decisions.
type DecisionStore interface {
	Insert(ctx context.Context, rec DecisionRecord) error
	ListRecent(ctx context.Context, limit int) ([]DecisionRecord, error)
	ListByPosition(ctx context.Context, positionID string, opts ListOpts) ([]DecisionRecord, error)
}

// AuditEntry is a single audit log row.
type AuditEntry struct {
	ID        int64
	Event     string
	Detail    map[string]any
	CreatedAt time.Time
}

// AuditStore persists an append-only audit log.
type AuditStore interface {
	Log(ctx context.Context, event string, detail map[string]any) error
	List(ctx context.Context, opts ListOpts) ([]AuditEntry, error)
}
