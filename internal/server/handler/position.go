package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/domain"
)

// PositionReader defines the read methods the position handler requires.
type PositionReader interface {
	GetByID(ctx context.Context, id string) (domain.VirtualPosition, error)
	ListActive(ctx context.Context) ([]domain.VirtualPosition, error)
	ListHistory(ctx context.Context, opts domain.ListOpts) ([]domain.VirtualPosition, error)
}

// TimelineReader defines the read methods for position timelines.
type TimelineReader interface {
	Get(ctx context.Context, positionID string) (domain.VirtualPositionTimeline, error)
}

// SnapshotGetter serves hot position snapshots ahead of the store.
type SnapshotGetter interface {
	Get(ctx context.Context, id string) (domain.VirtualPosition, error)
}

// PositionHandler serves virtual-position HTTP endpoints.
type PositionHandler struct {
	positions PositionReader
	timelines TimelineReader
	snapshots SnapshotGetter
	logger    *slog.Logger
}

// NewPositionHandler creates a PositionHandler with the given stores and
// logger. snapshots may be nil, in which case every read goes to the store.
func NewPositionHandler(positions PositionReader, timelines TimelineReader, snapshots SnapshotGetter, logger *slog.Logger) *PositionHandler {
	return &PositionHandler{
		positions: positions,
		timelines: timelines,
		snapshots: snapshots,
		logger:    logHandler(logger, "positions"),
	}
}

// listPositionsResponse wraps the list positions response.
type listPositionsResponse struct {
	Positions []positionView `json:"positions"`
}

// ListPositions returns tracked virtual positions. By default it lists the
// active (non-terminated) set; ?scope=history pages through all positions,
// newest first, honoring limit/offset/since/until.
// GET /api/positions
func (h *PositionHandler) ListPositions(w http.ResponseWriter, r *http.Request) {
	scope := r.URL.Query().Get("scope")

	var (
		positions []domain.VirtualPosition
		err       error
	)
	switch scope {
	case "", "active":
		positions, err = h.positions.ListActive(r.Context())
	case "history":
		positions, err = h.positions.ListHistory(r.Context(), parseListOpts(r))
	default:
		writeError(w, http.StatusBadRequest, "scope must be active or history")
		return
	}

	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list positions failed",
			slog.String("scope", scope),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list positions")
		return
	}

	writeJSON(w, http.StatusOK, listPositionsResponse{Positions: toPositionViews(positions)})
}

// GetPosition returns a single position snapshot by id.
// GET /api/positions/{id}
func (h *PositionHandler) GetPosition(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "position id required")
		return
	}

	// Hot path: the evaluation loop keeps active snapshots cached. Any cache
	// miss or error falls back to the store.
	if h.snapshots != nil {
		if pos, err := h.snapshots.Get(r.Context(), id); err == nil {
			writeJSON(w, http.StatusOK, toPositionView(pos))
			return
		}
	}

	pos, err := h.positions.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "position not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get position failed",
			slog.String("position_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get position")
		return
	}

	writeJSON(w, http.StatusOK, toPositionView(pos))
}

// timelineResponse wraps a position's evaluation timeline.
type timelineResponse struct {
	PositionID string              `json:"position_id"`
	Entries    []timelineEntryView `json:"entries"`
}

// GetTimeline returns the full evaluation timeline of a position, oldest
// entry first. A position with no evaluations yet yields an empty entries
// array, not a 404; only an unknown position id is a 404.
// GET /api/positions/{id}/timeline
func (h *PositionHandler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "position id required")
		return
	}

	if _, err := h.positions.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "position not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get position for timeline failed",
			slog.String("position_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get timeline")
		return
	}

	tl, err := h.timelines.Get(r.Context(), id)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: get timeline failed",
			slog.String("position_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get timeline")
		return
	}

	writeJSON(w, http.StatusOK, timelineResponse{
		PositionID: id,
		Entries:    toTimelineEntryViews(tl.Entries),
	})
}
