package handler

import (
	"time"

	"github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/domain"
)

// API response shapes. The domain model carries no JSON tags, so every
// endpoint maps to an explicit view here; field names are part of the wire
// contract and must not drift with internal renames.

type riskView struct {
	Valid          bool     `json:"valid"`
	StopLossPOI    string   `json:"stop_loss_poi"`
	TakeProfitPOIs []string `json:"take_profit_pois"`
	RiskReward     float64  `json:"risk_reward"`
}

type positionView struct {
	ID              string   `json:"id"`
	AssetID         string   `json:"asset_id"`
	ScenarioID      string   `json:"scenario_id"`
	ScenarioType    string   `json:"scenario_type"`
	Score           float64  `json:"score"`
	Grade           string   `json:"grade"`
	Risk            riskView `json:"risk"`
	Status          string   `json:"status"`
	ProgressPercent float64  `json:"progress_percent"`
	ReachedTargets  []string `json:"reached_targets"`
	OpenedAt        string   `json:"opened_at"`
	LastEvaluatedAt string   `json:"last_evaluated_at"`
}

func toPositionView(p domain.VirtualPosition) positionView {
	reached := make([]string, 0, len(p.ReachedTargets))
	for _, t := range p.ReachedTargets {
		reached = append(reached, string(t))
	}
	tps := p.Risk.TakeProfitPOIs
	if tps == nil {
		tps = []string{}
	}
	return positionView{
		ID:           p.ID,
		AssetID:      p.AssetID,
		ScenarioID:   p.ScenarioID,
		ScenarioType: p.ScenarioType,
		Score:        p.Score.Score,
		Grade:        p.Score.Grade,
		Risk: riskView{
			Valid:          p.Risk.Valid,
			StopLossPOI:    p.Risk.StopLossPOI,
			TakeProfitPOIs: tps,
			RiskReward:     p.Risk.RiskReward,
		},
		Status:          string(p.Status),
		ProgressPercent: p.ProgressPercent,
		ReachedTargets:  reached,
		OpenedAt:        p.OpenedAt.UTC().Format(time.RFC3339),
		LastEvaluatedAt: p.LastEvaluatedAt.UTC().Format(time.RFC3339),
	}
}

func toPositionViews(positions []domain.VirtualPosition) []positionView {
	out := make([]positionView, 0, len(positions))
	for _, p := range positions {
		out = append(out, toPositionView(p))
	}
	return out
}

type timelineEntryView struct {
	EvaluatedAt        string  `json:"evaluated_at"`
	ProgressPercent    float64 `json:"progress_percent"`
	Status             string  `json:"status"`
	Validity           string  `json:"validity"`
	InvalidationReason string  `json:"invalidation_reason,omitempty"`
	Guidance           string  `json:"guidance"`
}

func toTimelineEntryViews(entries []domain.TimelineEntry) []timelineEntryView {
	out := make([]timelineEntryView, 0, len(entries))
	for _, e := range entries {
		out = append(out, timelineEntryView{
			EvaluatedAt:        e.EvaluatedAt.UTC().Format(time.RFC3339),
			ProgressPercent:    e.ProgressPercent,
			Status:             string(e.Status),
			Validity:           string(e.Validity),
			InvalidationReason: string(e.InvalidationReason),
			Guidance:           string(e.Guidance),
		})
	}
	return out
}

type decisionView struct {
	ID          string `json:"id"`
	PositionID  string `json:"position_id"`
	Stance      string `json:"stance"`
	Confidence  string `json:"confidence"`
	Permission  string `json:"permission"`
	Action      string `json:"action"`
	Reason      string `json:"reason"`
	EvaluatedAt string `json:"evaluated_at"`
}

func toDecisionViews(records []domain.DecisionRecord) []decisionView {
	out := make([]decisionView, 0, len(records))
	for _, rec := range records {
		out = append(out, decisionView{
			ID:          rec.ID,
			PositionID:  rec.PositionID,
			Stance:      string(rec.Stance),
			Confidence:  string(rec.Confidence),
			Permission:  string(rec.Permission),
			Action:      string(rec.Action),
			Reason:      string(rec.Reason),
			EvaluatedAt: rec.EvaluatedAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}
