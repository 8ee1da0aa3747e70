package web

// errors.go maps pipeline errors onto HTTP responses. Client-correctable
// failures (bad file, schema mismatch, dead token, unknown mode) come
// back as 400 with a machine-readable code; everything else is a 500
// with the detail logged server-side and kept out of the response body.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/careboard/importer/internal/importer"
	"github.com/careboard/importer/internal/logging"
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error                string   `json:"error"`
	Code                 string   `json:"code"`
	MissingInSource      []string `json:"missing_in_source,omitempty"`
	MissingInDestination []string `json:"missing_in_destination,omitempty"`
	Restored             *bool    `json:"restored,omitempty"`
}

// respondError classifies err, logs it with the request ID, and writes
// the JSON error response.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classifyError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"code", body.Code,
		"error", err.Error(),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(body); encErr != nil {
		slog.Error("json encode error", "error", encErr)
	}
}

// classifyError maps a pipeline error to a status code and response body.
func classifyError(err error) (int, ErrorResponse) {
	var (
		malformed   *importer.MalformedInputError
		mismatch    *importer.SchemaMismatchError
		badToken    *importer.InvalidTokenError
		badMode     *importer.InvalidModeError
		commitFail  *importer.CommitFailedError
		maxBytesErr *http.MaxBytesError
	)

	switch {
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge, ErrorResponse{
			Error: "uploaded file exceeds the size limit",
			Code:  "file_too_large",
		}
	case errors.As(err, &malformed):
		return http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "malformed_input",
		}
	case errors.As(err, &mismatch):
		return http.StatusBadRequest, ErrorResponse{
			Error:                err.Error(),
			Code:                 "schema_mismatch",
			MissingInSource:      mismatch.MissingInSource,
			MissingInDestination: mismatch.MissingInDestination,
		}
	case errors.As(err, &badToken):
		return http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "invalid_token",
		}
	case errors.As(err, &badMode):
		return http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "invalid_mode",
		}
	case errors.As(err, &commitFail):
		restored := commitFail.Restored
		return http.StatusInternalServerError, ErrorResponse{
			Error:    err.Error(),
			Code:     "commit_failed",
			Restored: &restored,
		}
	default:
		// Internal detail stays in the log.
		return http.StatusInternalServerError, ErrorResponse{
			Error: "internal server error",
			Code:  "internal",
		}
	}
}

// writeErrorMessage writes a fixed JSON error without classification.
func writeErrorMessage(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message, Code: code}); err != nil {
		slog.Error("json encode error", "error", err)
	}
}

// writeJSON encodes v as JSON and writes it to w.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
