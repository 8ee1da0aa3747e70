package importer

// janitor.go reclaims abandoned staged files. Preview writes one file
// per upload; a successful commit deletes it, but abandoned previews
// would otherwise accumulate forever. Cleanup is best-effort and fully
// independent of in-flight imports: a token whose file is reclaimed
// here simply fails its commit with InvalidTokenError.

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// JanitorConfig holds the staged-file retention policy.
type JanitorConfig struct {
	MaxAge        time.Duration // reclaim files older than this
	MaxTotalBytes int64         // reclaim oldest files once aggregate size exceeds this
	Interval      time.Duration // how often the background scheduler runs
}

// CleanupResult reports one cleanup pass.
type CleanupResult struct {
	Deleted    int   `json:"deleted"`
	Kept       int   `json:"kept"`
	FreedBytes int64 `json:"freed_bytes"`
}

// StagingStats describes the current staging directory contents.
type StagingStats struct {
	Files            int     `json:"files"`
	TotalBytes       int64   `json:"total_bytes"`
	OldestAgeSeconds float64 `json:"oldest_age_seconds"`
}

type stagedFile struct {
	path    string
	modTime time.Time
	size    int64
}

// listFiles returns the plain files in the staging dir, oldest first.
func (s *Stager) listFiles() ([]stagedFile, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	files := make([]stagedFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, stagedFile{
			path:    filepath.Join(s.dir, e.Name()),
			modTime: info.ModTime(),
			size:    info.Size(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].modTime.Before(files[j].modTime) })
	return files, nil
}

// Stats returns counts and sizes for the staging directory.
func (s *Stager) Stats() (StagingStats, error) {
	files, err := s.listFiles()
	if err != nil {
		return StagingStats{}, err
	}

	stats := StagingStats{Files: len(files)}
	now := time.Now()
	for _, f := range files {
		stats.TotalBytes += f.size
		if age := now.Sub(f.modTime).Seconds(); age > stats.OldestAgeSeconds {
			stats.OldestAgeSeconds = age
		}
	}
	return stats, nil
}

// CleanupOld removes staged files older than maxAge.
func (s *Stager) CleanupOld(maxAge time.Duration) CleanupResult {
	var res CleanupResult
	files, err := s.listFiles()
	if err != nil {
		slog.Error("janitor: list staging dir failed", "error", err)
		return res
	}

	cutoff := time.Now().Add(-maxAge)
	for _, f := range files {
		if f.modTime.After(cutoff) {
			res.Kept++
			continue
		}
		if err := os.Remove(f.path); err != nil {
			slog.Warn("janitor: delete failed", "file", f.path, "error", err)
			res.Kept++
			continue
		}
		res.Deleted++
		res.FreedBytes += f.size
	}
	return res
}

// CleanupBySize removes the oldest staged files until aggregate size is
// at or below maxTotal.
func (s *Stager) CleanupBySize(maxTotal int64) CleanupResult {
	var res CleanupResult
	files, err := s.listFiles()
	if err != nil {
		slog.Error("janitor: list staging dir failed", "error", err)
		return res
	}

	var total int64
	for _, f := range files {
		total += f.size
	}

	for _, f := range files {
		if total <= maxTotal {
			res.Kept++
			continue
		}
		if err := os.Remove(f.path); err != nil {
			slog.Warn("janitor: delete failed", "file", f.path, "error", err)
			res.Kept++
			continue
		}
		total -= f.size
		res.Deleted++
		res.FreedBytes += f.size
	}
	return res
}

// RunCleanup performs one combined age-then-size pass.
func (s *Stager) RunCleanup(cfg JanitorConfig) CleanupResult {
	aged := s.CleanupOld(cfg.MaxAge)
	sized := s.CleanupBySize(cfg.MaxTotalBytes)

	res := CleanupResult{
		Deleted:    aged.Deleted + sized.Deleted,
		Kept:       sized.Kept,
		FreedBytes: aged.FreedBytes + sized.FreedBytes,
	}
	if res.Deleted > 0 {
		slog.Info("janitor: cleanup pass finished",
			"deleted", res.Deleted,
			"kept", res.Kept,
			"freed_bytes", res.FreedBytes,
		)
	}
	return res
}

// StartCleanupScheduler runs cleanup immediately, then every
// cfg.Interval until ctx is cancelled. Intended to run as a background
// goroutine for the life of the process.
func (s *Stager) StartCleanupScheduler(ctx context.Context, cfg JanitorConfig) {
	slog.Info("janitor started",
		"dir", s.dir,
		"max_age", cfg.MaxAge,
		"max_total_bytes", cfg.MaxTotalBytes,
		"interval", cfg.Interval,
	)

	s.RunCleanup(cfg)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("janitor stopped")
			return
		case <-ticker.C:
			s.RunCleanup(cfg)
		}
	}
}
