package engine

import (
	"context"

	"cadenza/internal/bus"
	"cadenza/internal/catalog"
	"cadenza/internal/worker"
)

// CacheExperienceList downloads the experience listing into the daughter
// store. The terminal notification carries tags ["download","experiences"].
func (e *Engine) CacheExperienceList(requestID int64) error {
	return e.submitAsync(requestID, bus.KindDownload, worker.Task{
		Target: worker.TargetDownload,
		Op:     worker.OpCacheExperienceList,
	})
}

// CacheArtistList downloads the artist listing into the daughter store.
func (e *Engine) CacheArtistList(requestID int64) error {
	return e.submitAsync(requestID, bus.KindDownload, worker.Task{
		Target: worker.TargetDownload,
		Op:     worker.OpCacheArtistList,
	})
}

// RefreshExperienceList downloads the experience listing and blocks until
// the worker finishes. Used by the control surface; FFI callers go through
// CacheExperienceList.
func (e *Engine) RefreshExperienceList() error {
	_, err := e.call(bus.KindDownload, worker.Task{
		Target: worker.TargetDownload,
		Op:     worker.OpCacheExperienceList,
	})
	return err
}

// RefreshArtistList downloads the artist listing and blocks until the worker
// finishes.
func (e *Engine) RefreshArtistList() error {
	_, err := e.call(bus.KindDownload, worker.Task{
		Target: worker.TargetDownload,
		Op:     worker.OpCacheArtistList,
	})
	return err
}

// CacheExperienceMetadata downloads the full metadata document for one
// experience, including its theme rows.
func (e *Engine) CacheExperienceMetadata(requestID, experienceID int64) error {
	return e.submitAsync(requestID, bus.KindDownload, worker.Task{
		Target: worker.TargetDownload,
		Op:     worker.OpCacheExperienceMetadata,
		Args:   worker.Args{ExperienceID: experienceID},
	})
}

// ExperiencesGetAll returns the cached experience listing. With force the
// worker refreshes from mother first.
func (e *Engine) ExperiencesGetAll(force bool) (any, error) {
	return e.call(bus.KindLocalQuery, worker.Task{
		Target: worker.TargetDownload,
		Op:     worker.OpExperiencesGetAll,
		Args:   worker.Args{Force: force},
	})
}

// ExperiencesGetAllAsync is ExperiencesGetAll posting through the bus.
func (e *Engine) ExperiencesGetAllAsync(requestID int64, force bool) error {
	return e.submitAsync(requestID, bus.KindLocalQuery, worker.Task{
		Target: worker.TargetDownload,
		Op:     worker.OpExperiencesGetAll,
		Args:   worker.Args{Force: force},
	})
}

// ExperienceGet returns one cached experience.
func (e *Engine) ExperienceGet(experienceID int64, force bool) (any, error) {
	return e.call(bus.KindLocalQuery, worker.Task{
		Target: worker.TargetDownload,
		Op:     worker.OpExperienceGet,
		Args:   worker.Args{ExperienceID: experienceID, Force: force},
	})
}

// ExperienceGetAsync is ExperienceGet posting through the bus.
func (e *Engine) ExperienceGetAsync(requestID, experienceID int64, force bool) error {
	return e.submitAsync(requestID, bus.KindLocalQuery, worker.Task{
		Target: worker.TargetDownload,
		Op:     worker.OpExperienceGet,
		Args:   worker.Args{ExperienceID: experienceID, Force: force},
	})
}

// ArtistsGetAll returns the cached artist listing.
func (e *Engine) ArtistsGetAll(force bool) (any, error) {
	return e.call(bus.KindLocalQuery, worker.Task{
		Target: worker.TargetDownload,
		Op:     worker.OpArtistsGetAll,
		Args:   worker.Args{Force: force},
	})
}

// ArtistGet returns one cached artist.
func (e *Engine) ArtistGet(artistID int64) (any, error) {
	return e.call(bus.KindLocalQuery, worker.Task{
		Target: worker.TargetDownload,
		Op:     worker.OpArtistGet,
		Args:   worker.Args{ArtistID: artistID},
	})
}

// LocalThemeCount reports theme totals for one experience.
func (e *Engine) LocalThemeCount(experienceID int64) (any, error) {
	return e.call(bus.KindLocalQuery, worker.Task{
		Target: worker.TargetDownload,
		Op:     worker.OpLocalThemeCount,
		Args:   worker.Args{ExperienceID: experienceID},
	})
}

// LocalThemeCountAsync is LocalThemeCount posting through the bus.
func (e *Engine) LocalThemeCountAsync(requestID, experienceID int64) error {
	return e.submitAsync(requestID, bus.KindLocalQuery, worker.Task{
		Target: worker.TargetDownload,
		Op:     worker.OpLocalThemeCount,
		Args:   worker.Args{ExperienceID: experienceID},
	})
}

// LocalThemeCounts reports theme totals for every experience in one query.
func (e *Engine) LocalThemeCounts() (any, error) {
	return e.call(bus.KindLocalQuery, worker.Task{
		Target: worker.TargetDownload,
		Op:     worker.OpLocalThemeCounts,
	})
}

// LocalThemeCountsAsync is LocalThemeCounts posting through the bus.
func (e *Engine) LocalThemeCountsAsync(requestID int64) error {
	return e.submitAsync(requestID, bus.KindLocalQuery, worker.Task{
		Target: worker.TargetDownload,
		Op:     worker.OpLocalThemeCounts,
	})
}

// PlayCount reads the play counter for an experience directly from the
// daughter store; it is a local read with no worker round trip.
func (e *Engine) PlayCount(ctx context.Context, experienceID int64) (int64, error) {
	return e.store.PlayCount(ctx, experienceID)
}

// MetadataIsCached reports whether a full metadata fetch has run for the
// experience. Local read, no worker round trip.
func (e *Engine) MetadataIsCached(ctx context.Context, experienceID int64) (bool, error) {
	return e.store.MetadataCached(ctx, experienceID)
}

// DiskUsage reports the storage footprint of the daughter database.
func (e *Engine) DiskUsage() (any, error) {
	return e.call(bus.KindLocalQuery, worker.Task{
		Target: worker.TargetDownload,
		Op:     worker.OpDiskUsage,
	})
}

// UnloadExperience drops the downloaded payloads for one experience.
func (e *Engine) UnloadExperience(requestID, experienceID int64) error {
	return e.submitAsync(requestID, bus.KindLocalQuery, worker.Task{
		Target: worker.TargetDownload,
		Op:     worker.OpUnloadExperience,
		Args:   worker.Args{ExperienceID: experienceID},
	})
}

// CleanDB vacuums the daughter database, reclaiming space freed by unloads.
func (e *Engine) CleanDB(requestID int64) error {
	return e.submitAsync(requestID, bus.KindLocalQuery, worker.Task{
		Target: worker.TargetDownload,
		Op:     worker.OpCleanDB,
	})
}

// Store exposes the daughter store for the daemon control surface.
func (e *Engine) Store() *catalog.Store {
	return e.store
}
