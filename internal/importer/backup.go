package importer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// backup.go implements the safety net for overwrite-mode commits: a
// full, uniquely named copy of the destination taken before truncation.
// The destination is truncated only after Snapshot has returned, and a
// backup is dropped only after its restore or its commit has completed.

// Snapshot creates a table with the destination's structure, copies all
// current rows into it, and returns the backup's name. The random
// suffix keeps concurrent snapshots of the same destination from
// clashing. Once Snapshot returns, Restore is always safe to call.
func Snapshot(ctx context.Context, db DBTX, table string) (string, error) {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	backup := fmt.Sprintf("%s_backup_%s", table, suffix)

	create := fmt.Sprintf("CREATE TABLE %s (LIKE %s INCLUDING DEFAULTS)",
		quoteIdentifier(backup), quoteIdentifier(table))
	if _, err := db.Exec(ctx, create); err != nil {
		return "", fmt.Errorf("create backup table: %w", err)
	}

	copyRows := fmt.Sprintf("INSERT INTO %s SELECT * FROM %s",
		quoteIdentifier(backup), quoteIdentifier(table))
	if _, err := db.Exec(ctx, copyRows); err != nil {
		// A structure-only backup is useless; don't leave it behind.
		Discard(ctx, db, backup)
		return "", fmt.Errorf("copy rows into backup: %w", err)
	}
	return backup, nil
}

// Restore truncates the destination and copies every backup row back
// verbatim, discarding any partially applied mutation.
func Restore(ctx context.Context, db DBTX, backup, table string) error {
	if err := truncateTable(ctx, db, table); err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	copyBack := fmt.Sprintf("INSERT INTO %s SELECT * FROM %s",
		quoteIdentifier(table), quoteIdentifier(backup))
	if _, err := db.Exec(ctx, copyBack); err != nil {
		return fmt.Errorf("restore: copy rows back: %w", err)
	}
	return nil
}

// Discard drops the backup table. Idempotent and best-effort: the
// operation it guarded has already concluded, so a failed drop is only
// logged.
func Discard(ctx context.Context, db DBTX, backup string) {
	if _, err := db.Exec(ctx, "DROP TABLE IF EXISTS "+quoteIdentifier(backup)); err != nil {
		slog.Warn("failed to drop backup table", "table", backup, "error", err)
	}
}
