package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galinborisov10-art/Crypto-signal-bot-sub007/internal/domain"
)

type stubArchiveReader struct {
	objects map[string]string
	infos   []domain.BlobInfo
}

func (s *stubArchiveReader) Get(_ context.Context, path string) (io.ReadCloser, error) {
	body, ok := s.objects[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func (s *stubArchiveReader) List(_ context.Context, _ string) ([]domain.BlobInfo, error) {
	return s.infos, nil
}

func archiveTestMux(blobs ArchiveReader) *http.ServeMux {
	h := NewArchiveHandler(blobs, slog.New(slog.DiscardHandler))
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/archives", h.ListArchives)
	mux.HandleFunc("GET /api/archives/{key...}", h.GetArchive)
	return mux
}

func TestListArchives_ReturnsRelativeKeys(t *testing.T) {
	mux := archiveTestMux(&stubArchiveReader{
		infos: []domain.BlobInfo{
			{
				Path:         "archive/timelines/2025-06.jsonl",
				Size:         1234,
				LastModified: time.Date(2025, 7, 1, 6, 0, 0, 0, time.UTC),
			},
		},
	})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/archives", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Archives []struct {
			Key          string `json:"key"`
			Size         int64  `json:"size"`
			LastModified string `json:"last_modified"`
		} `json:"archives"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Archives, 1)
	assert.Equal(t, "timelines/2025-06.jsonl", resp.Archives[0].Key)
	assert.Equal(t, int64(1234), resp.Archives[0].Size)
	assert.Equal(t, "2025-07-01T06:00:00Z", resp.Archives[0].LastModified)
}

func TestGetArchive_StreamsJSONL(t *testing.T) {
	body := `{"position":{"id":"pos-1"}}` + "\n"
	mux := archiveTestMux(&stubArchiveReader{
		objects: map[string]string{"archive/timelines/2025-06.jsonl": body},
	})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/archives/timelines/2025-06.jsonl", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/x-ndjson", rec.Header().Get("Content-Type"))
	assert.Equal(t, body, rec.Body.String())
}

func TestGetArchive_UnknownKeyIs404(t *testing.T) {
	mux := archiveTestMux(&stubArchiveReader{objects: map[string]string{}})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/archives/timelines/1999-01.jsonl", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetArchive_RejectsTraversal(t *testing.T) {
	h := NewArchiveHandler(&stubArchiveReader{
		objects: map[string]string{"secrets.txt": "nope"},
	}, slog.New(slog.DiscardHandler))

	req := httptest.NewRequest(http.MethodGet, "/api/archives/x", nil)
	req.SetPathValue("key", "../secrets.txt")
	rec := httptest.NewRecorder()
	h.GetArchive(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
