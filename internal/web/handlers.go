package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"

	"github.com/careboard/importer/internal/importer"
)

// ImportService is the import pipeline surface the handlers need.
type ImportService interface {
	Preview(ctx context.Context, filename string, file io.Reader) (*importer.PreviewResult, error)
	Commit(ctx context.Context, token, mode string) (*importer.CommitResult, error)
	StagingStats() (importer.StagingStats, error)
	RunCleanup() importer.CleanupResult
}

// Pinger reports database reachability for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// handlePreview accepts a multipart upload, stages it, and returns the
// schema verdict plus a bounded preview. POST /api/import/preview.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Staging.MaxFileSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, r, err)
			return
		}
		writeErrorMessage(w, http.StatusBadRequest, "missing_file",
			"multipart form field 'file' is required")
		return
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	if filename == "" || filename == "." {
		filename = "upload.csv"
	}

	res, err := s.service.Preview(r.Context(), filename, file)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// commitRequest is the JSON body of POST /api/import/commit.
type commitRequest struct {
	Token string `json:"token"`
	Mode  string `json:"mode"`
}

// handleCommit imports a staged file into the destination table.
// POST /api/import/commit.
func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	var req commitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid_request",
			"request body must be JSON with token and mode fields")
		return
	}

	// The mutation must not be torn down by a client disconnect: once a
	// commit starts, it runs to its rollback-safe conclusion.
	ctx := context.WithoutCancel(r.Context())

	res, err := s.service.Commit(ctx, req.Token, req.Mode)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleCleanupStats reports staging directory usage.
// GET /api/cleanup/stats.
func (s *Server) handleCleanupStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.StagingStats()
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleCleanup triggers an immediate janitor pass. POST /api/cleanup.
func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.RunCleanup())
}

// handleHealth reports process and database health. GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.pinger.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "unhealthy",
			"database": "unreachable",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
