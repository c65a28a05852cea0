package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/domain"
)

// archivePrefix scopes every read to the archive export area of the bucket.
const archivePrefix = "archive/"

// ArchiveReader lists and retrieves exported archive objects.
type ArchiveReader interface {
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]domain.BlobInfo, error)
}

// ArchiveHandler serves the JSONL exports the archiver writes to object
// storage, so terminated timelines stay reachable through the API after they
// age out of the operational views.
type ArchiveHandler struct {
	blobs  ArchiveReader
	logger *slog.Logger
}

// NewArchiveHandler creates an ArchiveHandler backed by the given blob reader.
func NewArchiveHandler(blobs ArchiveReader, logger *slog.Logger) *ArchiveHandler {
	return &ArchiveHandler{
		blobs:  blobs,
		logger: logHandler(logger, "archives"),
	}
}

type archiveView struct {
	Key          string `json:"key"`
	Size         int64  `json:"size"`
	LastModified string `json:"last_modified"`
}

// listArchivesResponse wraps the archive listing response.
type listArchivesResponse struct {
	Archives []archiveView `json:"archives"`
}

// ListArchives returns every exported archive object, keyed relative to the
// archive area (e.g. "timelines/2025-06.jsonl").
// GET /api/archives
func (h *ArchiveHandler) ListArchives(w http.ResponseWriter, r *http.Request) {
	infos, err := h.blobs.List(r.Context(), archivePrefix)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list archives failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list archives")
		return
	}

	views := make([]archiveView, 0, len(infos))
	for _, info := range infos {
		views = append(views, archiveView{
			Key:          strings.TrimPrefix(info.Path, archivePrefix),
			Size:         info.Size,
			LastModified: info.LastModified.UTC().Format(time.RFC3339),
		})
	}

	writeJSON(w, http.StatusOK, listArchivesResponse{Archives: views})
}

// GetArchive streams one exported archive object as JSONL.
// GET /api/archives/{key...}
func (h *ArchiveHandler) GetArchive(w http.ResponseWriter, r *http.Request) {
	key := pathParam(r, "key")
	if key == "" || strings.Contains(key, "..") {
		writeError(w, http.StatusBadRequest, "invalid archive key")
		return
	}

	body, err := h.blobs.Get(r.Context(), archivePrefix+key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "archive not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get archive failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get archive")
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		h.logger.WarnContext(r.Context(), "handler: archive stream interrupted",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}
