package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"cadenza/internal/catalog"
	"cadenza/internal/mother"
	"cadenza/internal/prefs"
)

// metadataFanout bounds the concurrent per-experience metadata refreshes
// during a forced catalog read.
const metadataFanout = 4

type downloadWorker struct {
	logger    *slog.Logger
	completer Completer
	remote    mother.Catalog
	store     *catalog.Store
	identity  Identity
}

// experiencePayload is the wire form of an experience row.
type experiencePayload struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	ArtistID    int64  `json:"artistId"`
	ImageURL    string `json:"imageUrl"`
	HasMetadata bool   `json:"hasMetadata"`
	PlayCount   int64  `json:"playCount"`
}

// artistPayload is the wire form of an artist row.
type artistPayload struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Bio  string `json:"bio"`
}

// themeCountPayload is the wire form of a theme count report.
type themeCountPayload struct {
	ExperienceID         int64 `json:"experienceId,omitempty"`
	ThemeCount           int64 `json:"themeCount"`
	DownloadedThemeCount int64 `json:"downloadedThemeCount"`
}

// diskUsagePayload is the wire form of the storage breakdown.
type diskUsagePayload struct {
	DatabaseBytes int64            `json:"databaseBytes"`
	ThemeBytes    int64            `json:"themeBytes"`
	PerExperience map[string]int64 `json:"perExperience"`
}

func (w *downloadWorker) execute(ctx context.Context, task Task) (any, error) {
	switch task.Op {
	case OpCacheExperienceList:
		if err := w.cacheExperienceList(ctx); err != nil {
			return nil, err
		}
		return true, nil
	case OpCacheArtistList:
		if err := w.cacheArtistList(ctx); err != nil {
			return nil, err
		}
		return true, nil
	case OpCacheExperienceMetadata:
		if err := w.cacheExperienceMetadata(ctx, task.Args.ExperienceID); err != nil {
			return nil, err
		}
		return true, nil
	case OpExperiencesGetAll:
		return w.experiencesGetAll(ctx, task.Args.Force)
	case OpExperienceGet:
		return w.experienceGet(ctx, task.Args.ExperienceID, task.Args.Force)
	case OpArtistsGetAll:
		return w.artistsGetAll(ctx, task.Args.Force)
	case OpArtistGet:
		return w.artistGet(ctx, task.Args.ArtistID)
	case OpLocalThemeCount:
		tc, err := w.store.ThemeCount(ctx, task.Args.ExperienceID)
		if err != nil {
			return nil, err
		}
		return themeCountPayload{ThemeCount: tc.Total, DownloadedThemeCount: tc.Downloaded}, nil
	case OpLocalThemeCounts:
		counts, err := w.store.ThemeCounts(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]themeCountPayload, 0, len(counts))
		for _, tc := range counts {
			out = append(out, themeCountPayload{
				ExperienceID:         tc.ExperienceID,
				ThemeCount:           tc.Total,
				DownloadedThemeCount: tc.Downloaded,
			})
		}
		return out, nil
	case OpPlayCount:
		return w.store.PlayCount(ctx, task.Args.ExperienceID)
	case OpMetadataIsCached:
		return w.store.MetadataCached(ctx, task.Args.ExperienceID)
	case OpDiskUsage:
		usage, err := w.store.DiskUsage(ctx)
		if err != nil {
			return nil, err
		}
		payload := diskUsagePayload{
			DatabaseBytes: usage.DatabaseBytes,
			ThemeBytes:    usage.ThemeBytes,
			PerExperience: make(map[string]int64, len(usage.PerExperience)),
		}
		for id, size := range usage.PerExperience {
			payload.PerExperience[fmt.Sprintf("%d", id)] = size
		}
		return payload, nil
	case OpUnloadExperience:
		if err := w.store.Unload(ctx, task.Args.ExperienceID); err != nil {
			return nil, err
		}
		return true, nil
	case OpCleanDB:
		if err := w.store.Vacuum(ctx); err != nil {
			return nil, err
		}
		return true, nil
	case OpDownloadPreferences:
		if err := w.downloadPreferences(ctx); err != nil && !errors.Is(err, prefs.ErrNoChange) {
			return nil, err
		}
		return true, nil
	case OpUploadPreferences:
		if err := w.uploadPreferences(ctx); err != nil && !errors.Is(err, prefs.ErrNoChange) {
			return nil, err
		}
		return true, nil
	case OpUserPreference:
		return w.userPreference(ctx, task.Args.KeyPath)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownOp, task.Op)
	}
}

func (w *downloadWorker) cacheExperienceList(ctx context.Context) error {
	list, err := w.remote.ExperienceList(ctx)
	if err != nil {
		return fmt.Errorf("fetch experience list: %w", err)
	}
	rows := make([]catalog.Experience, 0, len(list))
	for _, e := range list {
		rows = append(rows, catalog.Experience{
			ID:       e.ID,
			Title:    e.Title,
			ArtistID: e.ArtistID,
			ImageURL: e.ImageURL,
		})
	}
	if err := w.store.UpsertExperiences(ctx, rows); err != nil {
		return fmt.Errorf("cache experience list: %w", err)
	}
	return nil
}

func (w *downloadWorker) cacheArtistList(ctx context.Context) error {
	list, err := w.remote.ArtistList(ctx)
	if err != nil {
		return fmt.Errorf("fetch artist list: %w", err)
	}
	rows := make([]catalog.Artist, 0, len(list))
	for _, a := range list {
		detail, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("encode artist %d: %w", a.ID, err)
		}
		rows = append(rows, catalog.Artist{ID: a.ID, Name: a.Name, Bio: a.Bio, DetailJSON: string(detail)})
	}
	if err := w.store.UpsertArtists(ctx, rows); err != nil {
		return fmt.Errorf("cache artist list: %w", err)
	}
	return nil
}

func (w *downloadWorker) cacheExperienceMetadata(ctx context.Context, id int64) error {
	if id <= 0 {
		return errors.New("experience id must be positive")
	}
	detail, err := w.remote.ExperienceMetadata(ctx, id)
	if err != nil {
		return fmt.Errorf("fetch experience metadata: %w", err)
	}
	exp := catalog.Experience{
		ID:         detail.ID,
		Title:      detail.Title,
		ArtistID:   detail.ArtistID,
		ImageURL:   detail.ImageURL,
		DetailJSON: string(detail.Raw),
	}
	themes := make([]catalog.Theme, 0, len(detail.Themes))
	for _, t := range detail.Themes {
		themes = append(themes, catalog.Theme{ID: t.ID, Name: t.Name, SizeBytes: t.SizeBytes})
	}
	if err := w.store.UpsertExperienceDetail(ctx, exp, themes); err != nil {
		return fmt.Errorf("cache experience metadata: %w", err)
	}
	return nil
}

// experiencesGetAll reads the cached listing. With force it refreshes from
// mother first and re-fetches metadata for experiences that already had a
// cached detail document, bounded by metadataFanout.
func (w *downloadWorker) experiencesGetAll(ctx context.Context, force bool) ([]experiencePayload, error) {
	if force {
		if err := w.cacheExperienceList(ctx); err != nil {
			return nil, err
		}
		cached, err := w.store.Experiences(ctx)
		if err != nil {
			return nil, err
		}
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(metadataFanout)
		for _, exp := range cached {
			if !exp.HasMetadata {
				continue
			}
			id := exp.ID
			g.Go(func() error {
				return w.cacheExperienceMetadata(gctx, id)
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	cached, err := w.store.Experiences(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]experiencePayload, 0, len(cached))
	for _, exp := range cached {
		out = append(out, experiencePayload{
			ID:          exp.ID,
			Title:       exp.Title,
			ArtistID:    exp.ArtistID,
			ImageURL:    exp.ImageURL,
			HasMetadata: exp.HasMetadata,
			PlayCount:   exp.PlayCount,
		})
	}
	return out, nil
}

func (w *downloadWorker) experienceGet(ctx context.Context, id int64, force bool) (*experiencePayload, error) {
	if force {
		if err := w.cacheExperienceMetadata(ctx, id); err != nil {
			return nil, err
		}
	}
	exp, err := w.store.Experience(ctx, id)
	if err != nil {
		return nil, err
	}
	if exp == nil {
		return nil, fmt.Errorf("experience %d not cached", id)
	}
	return &experiencePayload{
		ID:          exp.ID,
		Title:       exp.Title,
		ArtistID:    exp.ArtistID,
		ImageURL:    exp.ImageURL,
		HasMetadata: exp.HasMetadata,
		PlayCount:   exp.PlayCount,
	}, nil
}

func (w *downloadWorker) artistsGetAll(ctx context.Context, force bool) ([]artistPayload, error) {
	if force {
		if err := w.cacheArtistList(ctx); err != nil {
			return nil, err
		}
	}
	cached, err := w.store.Artists(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]artistPayload, 0, len(cached))
	for _, a := range cached {
		out = append(out, artistPayload{ID: a.ID, Name: a.Name, Bio: a.Bio})
	}
	return out, nil
}

func (w *downloadWorker) artistGet(ctx context.Context, id int64) (*artistPayload, error) {
	artist, err := w.store.Artist(ctx, id)
	if err != nil {
		return nil, err
	}
	if artist == nil {
		return nil, fmt.Errorf("artist %d not cached", id)
	}
	return &artistPayload{ID: artist.ID, Name: artist.Name, Bio: artist.Bio}, nil
}

// downloadPreferences merges the remote document over the local one (local
// wins on conflict) and persists the result locally.
func (w *downloadWorker) downloadPreferences(ctx context.Context) error {
	userID := w.identity()
	if userID == "" {
		return errors.New("not logged in")
	}
	remote, err := w.remote.Preferences(ctx, userID)
	if err != nil {
		return err
	}
	local, err := w.store.Preferences(ctx, userID)
	if err != nil && !errors.Is(err, prefs.ErrNoSuchUser) {
		return err
	}
	merged := prefs.Merge(local, remote)
	if prefs.Equal(merged, local) {
		return prefs.ErrNoChange
	}
	return w.store.SavePreferences(ctx, userID, merged)
}

// uploadPreferences merges the local document over the remote one and writes
// the result back to mother.
func (w *downloadWorker) uploadPreferences(ctx context.Context) error {
	userID := w.identity()
	if userID == "" {
		return errors.New("not logged in")
	}
	local, err := w.store.Preferences(ctx, userID)
	if err != nil {
		return err
	}
	remote, err := w.remote.Preferences(ctx, userID)
	if err != nil && !errors.Is(err, prefs.ErrNoSuchUser) {
		return err
	}
	merged := prefs.Merge(local, remote)
	if prefs.Equal(merged, remote) {
		return prefs.ErrNoChange
	}
	return w.remote.PutPreferences(ctx, userID, merged)
}

func (w *downloadWorker) userPreference(ctx context.Context, keyPath string) (any, error) {
	userID := w.identity()
	if userID == "" {
		return nil, errors.New("not logged in")
	}
	tree, err := w.store.Preferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	value, ok := tree.Get(keyPath)
	if !ok {
		return nil, nil
	}
	return value, nil
}
