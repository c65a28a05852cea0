package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/domain"
)

// DecisionReader defines the read methods the decision handler requires.
type DecisionReader interface {
	ListRecent(ctx context.Context, limit int) ([]domain.DecisionRecord, error)
	ListByPosition(ctx context.Context, positionID string, opts domain.ListOpts) ([]domain.DecisionRecord, error)
}

// DecisionHandler serves pipeline-decision HTTP endpoints.
type DecisionHandler struct {
	decisions DecisionReader
	logger    *slog.Logger
}

// NewDecisionHandler creates a DecisionHandler with the given store and logger.
func NewDecisionHandler(decisions DecisionReader, logger *slog.Logger) *DecisionHandler {
	return &DecisionHandler{
		decisions: decisions,
		logger:    logHandler(logger, "decisions"),
	}
}

// listDecisionsResponse wraps a decision list response.
type listDecisionsResponse struct {
	Decisions []decisionView `json:"decisions"`
}

// ListRecent returns the most recent decisions across all positions, newest
// first.
// GET /api/decisions
func (h *DecisionHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	opts := parseListOpts(r)

	records, err := h.decisions.ListRecent(r.Context(), opts.Limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list recent decisions failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list decisions")
		return
	}

	writeJSON(w, http.StatusOK, listDecisionsResponse{Decisions: toDecisionViews(records)})
}

// ListByPosition returns the decision history of one position, newest first.
// GET /api/positions/{id}/decisions
func (h *DecisionHandler) ListByPosition(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "position id required")
		return
	}

	records, err := h.decisions.ListByPosition(r.Context(), id, parseListOpts(r))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list position decisions failed",
			slog.String("position_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list decisions")
		return
	}

	writeJSON(w, http.StatusOK, listDecisionsResponse{Decisions: toDecisionViews(records)})
}
