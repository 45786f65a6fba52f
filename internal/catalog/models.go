package catalog

import "time"

// Experience is one row of the experience cache. DetailJSON holds the raw
// metadata document from mother; HasMetadata reports whether the full detail
// fetch has run for this experience, not merely the listing row.
type Experience struct {
	ID          int64
	Title       string
	ArtistID    int64
	ImageURL    string
	DetailJSON  string
	HasMetadata bool
	PlayCount   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Artist is one row of the artist cache.
type Artist struct {
	ID         int64
	Name       string
	Bio        string
	DetailJSON string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Theme is one downloadable unit of an experience.
type Theme struct {
	ID           int64
	ExperienceID int64
	Name         string
	Downloaded   bool
	SizeBytes    int64
	UpdatedAt    time.Time
}

// ThemeCount pairs an experience with how many of its themes are on disk.
type ThemeCount struct {
	ExperienceID int64
	Total        int64
	Downloaded   int64
}

// DiskUsage is the per-experience storage breakdown plus the database file
// itself.
type DiskUsage struct {
	DatabaseBytes int64
	ThemeBytes    int64
	PerExperience map[int64]int64
}
