package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/careboard/importer/internal/schema"
)

// Service drives the import pipeline against one destination table.
// Construct it explicitly and inject it where needed; it holds no
// global state.
type Service struct {
	db      DBTX
	stager  *Stager
	dest    string
	janitor JanitorConfig

	// overwriteMu serializes overwrite-mode commits. Two interleaved
	// snapshot/truncate/insert sequences against the same destination
	// would each succeed while silently discarding the other's rows;
	// the single-writer lock removes that race. Append commits do not
	// take it.
	overwriteMu sync.Mutex
}

// NewService returns a Service writing into destTable via db, with
// staged files managed by stager under the given retention policy.
func NewService(db DBTX, stager *Stager, destTable string, janitor JanitorConfig) *Service {
	return &Service{db: db, stager: stager, dest: destTable, janitor: janitor}
}

// StagingStats reports current staging directory usage.
func (s *Service) StagingStats() (StagingStats, error) {
	return s.stager.Stats()
}

// RunCleanup runs one janitor pass under the configured policy.
func (s *Service) RunCleanup() CleanupResult {
	return s.stager.RunCleanup(s.janitor)
}

// Preview stages an uploaded file and reports whether it can be
// imported. It writes exactly one file to staging and never touches the
// destination. The returned token is the handle a later Commit consumes.
func (s *Service) Preview(ctx context.Context, filename string, file io.Reader) (*PreviewResult, error) {
	token, err := s.stager.Put(file, filename)
	if err != nil {
		return nil, err
	}

	path, err := s.stager.Resolve(token)
	if err != nil {
		return nil, err
	}

	header, records, err := ParseFile(filename, path)
	if err != nil {
		// An unparseable staged file is not worth keeping.
		if rmErr := s.stager.Remove(token); rmErr != nil {
			slog.Warn("failed to remove unparseable staged file", "token", token, "error", rmErr)
		}
		return nil, err
	}

	srcMapping := schema.BuildMapping(schema.ExpectedColumns, header)

	destCols, err := Columns(ctx, s.db, s.dest)
	if err != nil {
		return nil, err
	}
	destMapping := schema.BuildMapping(schema.ExpectedColumns, destCols)

	missingSrc := schema.Missing(srcMapping)
	missingDest := schema.Missing(destMapping)

	return &PreviewResult{
		Token:                token,
		Filename:             filename,
		TotalRows:            len(records),
		SourceColumns:        header,
		ExpectedColumns:      schema.ExpectedColumns,
		MissingInSource:      missingSrc,
		MissingInDestination: missingDest,
		SourceMapping:        srcMapping,
		DestinationMapping:   destMapping,
		CanImport:            len(missingSrc) == 0 && len(missingDest) == 0,
		Preview:              previewRows(header, records, previewLimit),
	}, nil
}

// Commit imports the staged dataset behind token into the destination.
// The file is re-parsed and both schemas re-validated from scratch:
// arbitrarily much time may have passed since preview, and either side
// may have drifted. Structural errors are raised before any mutation.
func (s *Service) Commit(ctx context.Context, token, mode string) (*CommitResult, error) {
	mode = strings.ToLower(strings.TrimSpace(mode))
	if mode != ModeOverwrite && mode != ModeAppend {
		return nil, &InvalidModeError{Mode: mode}
	}

	path, err := s.stager.Resolve(token)
	if err != nil {
		return nil, err
	}

	header, records, err := ParseFile(token, path)
	if err != nil {
		return nil, err
	}

	srcMapping := schema.BuildMapping(schema.ExpectedColumns, header)
	destCols, err := Columns(ctx, s.db, s.dest)
	if err != nil {
		return nil, err
	}
	destMapping := schema.BuildMapping(schema.ExpectedColumns, destCols)

	missingSrc := schema.Missing(srcMapping)
	missingDest := schema.Missing(destMapping)
	if len(missingSrc) > 0 || len(missingDest) > 0 {
		return nil, &SchemaMismatchError{
			MissingInSource:      missingSrc,
			MissingInDestination: missingDest,
		}
	}

	idx := headerIndex(header)
	rows := make([]CanonicalRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, TransformRecord(recordValues(rec, idx, srcMapping)))
	}

	insertCols := make([]string, len(schema.ExpectedColumns))
	for i, exp := range schema.ExpectedColumns {
		insertCols[i] = destMapping[exp]
	}

	logger := slog.With("token", token, "mode", mode, "rows", len(rows))

	var backup string
	if mode == ModeOverwrite {
		s.overwriteMu.Lock()
		defer s.overwriteMu.Unlock()

		backup, err = Snapshot(ctx, s.db, s.dest)
		if err != nil {
			return nil, fmt.Errorf("snapshot destination: %w", err)
		}
		if err := truncateTable(ctx, s.db, s.dest); err != nil {
			Discard(ctx, s.db, backup)
			return nil, fmt.Errorf("truncate destination: %w", err)
		}
	}

	inserted, err := bulkInsert(ctx, s.db, s.dest, insertCols, rows)
	if err != nil {
		if backup == "" {
			return nil, &CommitFailedError{Restored: false, Err: err}
		}
		if rerr := Restore(ctx, s.db, backup, s.dest); rerr != nil {
			// The backup is the only remaining copy; keep it.
			logger.Error("restore failed; backup table retained",
				"backup", backup, "error", rerr)
			return nil, &CommitFailedError{Restored: false, Err: err}
		}
		Discard(ctx, s.db, backup)
		return nil, &CommitFailedError{Restored: true, Err: err}
	}

	if backup != "" {
		Discard(ctx, s.db, backup)
	}
	if err := s.stager.Remove(token); err != nil {
		logger.Warn("failed to delete staged file after commit", "error", err)
	}

	logger.Info("import committed", "inserted", inserted)
	return &CommitResult{
		Mode:            mode,
		Inserted:        inserted,
		TotalRowsInFile: len(records),
	}, nil
}

// recordValues projects one raw record onto the expected fields using
// the source mapping.
func recordValues(rec []string, idx map[string]int, srcMapping map[string]string) map[string]string {
	vals := make(map[string]string, len(srcMapping))
	for exp, srcCol := range srcMapping {
		if pos, ok := idx[srcCol]; ok && pos < len(rec) {
			vals[exp] = rec[pos]
		}
	}
	return vals
}

// previewRows renders at most limit records as header-keyed maps.
// Empty cells become explicit nulls so clients never see NaN tokens or
// half-serialized values.
func previewRows(header []string, records [][]string, limit int) []map[string]*string {
	n := len(records)
	if n > limit {
		n = limit
	}

	out := make([]map[string]*string, 0, n)
	for _, rec := range records[:n] {
		row := make(map[string]*string, len(header))
		for i, col := range header {
			var v *string
			if i < len(rec) {
				if cell := strings.TrimSpace(rec[i]); cell != "" && !nullWords[strings.ToLower(cell)] {
					c := cell
					v = &c
				}
			}
			row[col] = v
		}
		out = append(out, row)
	}
	return out
}
