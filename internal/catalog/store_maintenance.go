package catalog

import (
	"context"
	"fmt"
	"os"
)

// Unload drops the downloaded payloads for one experience. The metadata rows
// stay so the experience can be re-downloaded without another catalog sync.
func (s *Store) Unload(ctx context.Context, experienceID int64) error {
	return s.execWrite(ctx,
		`UPDATE themes SET payload = NULL, downloaded = 0, size_bytes = 0
         WHERE experience_id = ?`,
		experienceID)
}

// Vacuum reclaims space freed by unloads. VACUUM cannot run inside a
// transaction, so it takes the writer lock directly.
func (s *Store) Vacuum(ctx context.Context) error {
	ctx = ensureContext(ctx)
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return retryOnBusy(ctx, func() error {
		if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
			return fmt.Errorf("vacuum: %w", err)
		}
		return nil
	})
}

// DiskUsage reports the database file size plus the per-experience breakdown
// of downloaded theme bytes.
func (s *Store) DiskUsage(ctx context.Context) (DiskUsage, error) {
	ctx = ensureContext(ctx)
	usage := DiskUsage{PerExperience: make(map[int64]int64)}

	if info, err := os.Stat(s.path); err == nil {
		usage.DatabaseBytes = info.Size()
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT experience_id, COALESCE(SUM(size_bytes), 0)
         FROM themes WHERE downloaded = 1 GROUP BY experience_id`)
	if err != nil {
		return usage, fmt.Errorf("disk usage: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var experienceID, size int64
		if err := rows.Scan(&experienceID, &size); err != nil {
			return usage, fmt.Errorf("scan disk usage: %w", err)
		}
		usage.PerExperience[experienceID] = size
		usage.ThemeBytes += size
	}
	return usage, rows.Err()
}
