// Package importer implements the two-phase CSV import pipeline:
// staged preview, schema reconciliation, and transactional commit into
// the destination table. This package has no HTTP dependencies.
package importer

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
	CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error)
}

// Commit modes. Overwrite replaces all destination rows behind a
// backup/restore safety net; append adds rows with no safety net.
const (
	ModeOverwrite = "overwrite"
	ModeAppend    = "append"
)

// previewLimit bounds the number of rows returned by a preview.
const previewLimit = 20

// PreviewResult is the outcome of staging a file: the token needed to
// commit it later, the schema-compatibility verdict, and a bounded
// sample of the parsed content. Nothing in the destination has been
// touched when this is returned.
type PreviewResult struct {
	Token                string               `json:"token"`
	Filename             string               `json:"filename"`
	TotalRows            int                  `json:"total_rows"`
	SourceColumns        []string             `json:"source_columns"`
	ExpectedColumns      []string             `json:"expected_columns"`
	MissingInSource      []string             `json:"missing_in_source"`
	MissingInDestination []string             `json:"missing_in_destination"`
	SourceMapping        map[string]string    `json:"source_to_expected_map"`
	DestinationMapping   map[string]string    `json:"expected_to_destination_map"`
	CanImport            bool                 `json:"can_import"`
	Preview              []map[string]*string `json:"preview_rows"`
}

// CommitResult reports a completed commit. Inserted and TotalRowsInFile
// agree unless the driver reported a different affected-row count.
type CommitResult struct {
	Mode            string `json:"mode"`
	Inserted        int64  `json:"inserted"`
	TotalRowsInFile int    `json:"total_rows_in_file"`
}
