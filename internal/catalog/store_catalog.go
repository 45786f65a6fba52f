package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const experienceColumns = `experience_id, title, artist_id, image_url, detail_json,
    has_metadata, play_count, created_at, updated_at`

const artistColumns = `artist_id, name, bio, detail_json, created_at, updated_at`

// UpsertExperiences stores the listing rows from a catalog sync. Rows are
// inserted or updated in place; has_metadata is preserved on update because
// the listing endpoint carries less detail than a metadata fetch.
func (s *Store) UpsertExperiences(ctx context.Context, experiences []Experience) error {
	ctx = ensureContext(ctx)
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin upsert tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		now := time.Now().UTC().Format(time.RFC3339Nano)
		for _, exp := range experiences {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO experiences (experience_id, title, artist_id, image_url, detail_json, has_metadata, created_at, updated_at)
                 VALUES (?, ?, ?, ?, ?, 0, ?, ?)
                 ON CONFLICT(experience_id) DO UPDATE SET
                     title = excluded.title,
                     artist_id = excluded.artist_id,
                     image_url = excluded.image_url,
                     updated_at = excluded.updated_at`,
				exp.ID, exp.Title, exp.ArtistID, exp.ImageURL, exp.DetailJSON, now, now,
			)
			if err != nil {
				return fmt.Errorf("upsert experience %d: %w", exp.ID, err)
			}
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit upsert: %w", err)
		}
		return nil
	})
}

// UpsertExperienceDetail stores the full metadata document for one experience
// and marks it cached. Theme rows are replaced wholesale; downloaded payloads
// survive because they are matched back by theme id.
func (s *Store) UpsertExperienceDetail(ctx context.Context, exp Experience, themes []Theme) error {
	ctx = ensureContext(ctx)
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin detail tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		now := time.Now().UTC().Format(time.RFC3339Nano)
		_, err = tx.ExecContext(ctx,
			`INSERT INTO experiences (experience_id, title, artist_id, image_url, detail_json, has_metadata, created_at, updated_at)
             VALUES (?, ?, ?, ?, ?, 1, ?, ?)
             ON CONFLICT(experience_id) DO UPDATE SET
                 title = excluded.title,
                 artist_id = excluded.artist_id,
                 image_url = excluded.image_url,
                 detail_json = excluded.detail_json,
                 has_metadata = 1,
                 updated_at = excluded.updated_at`,
			exp.ID, exp.Title, exp.ArtistID, exp.ImageURL, exp.DetailJSON, now, now,
		)
		if err != nil {
			return fmt.Errorf("upsert experience detail %d: %w", exp.ID, err)
		}

		for _, theme := range themes {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO themes (theme_id, experience_id, name, downloaded, size_bytes, updated_at)
                 VALUES (?, ?, ?, ?, ?, ?)
                 ON CONFLICT(theme_id) DO UPDATE SET
                     experience_id = excluded.experience_id,
                     name = excluded.name,
                     size_bytes = excluded.size_bytes,
                     updated_at = excluded.updated_at`,
				theme.ID, exp.ID, theme.Name, boolToInt(theme.Downloaded), theme.SizeBytes, now,
			)
			if err != nil {
				return fmt.Errorf("upsert theme %d: %w", theme.ID, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit detail: %w", err)
		}
		return nil
	})
}

// UpsertArtists stores the artist listing rows from a catalog sync.
func (s *Store) UpsertArtists(ctx context.Context, artists []Artist) error {
	ctx = ensureContext(ctx)
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin upsert tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		now := time.Now().UTC().Format(time.RFC3339Nano)
		for _, artist := range artists {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO artists (artist_id, name, bio, detail_json, created_at, updated_at)
                 VALUES (?, ?, ?, ?, ?, ?)
                 ON CONFLICT(artist_id) DO UPDATE SET
                     name = excluded.name,
                     bio = excluded.bio,
                     detail_json = excluded.detail_json,
                     updated_at = excluded.updated_at`,
				artist.ID, artist.Name, artist.Bio, artist.DetailJSON, now, now,
			)
			if err != nil {
				return fmt.Errorf("upsert artist %d: %w", artist.ID, err)
			}
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit upsert: %w", err)
		}
		return nil
	})
}

// Experiences returns all cached experience rows ordered by id.
func (s *Store) Experiences(ctx context.Context) ([]Experience, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+experienceColumns+` FROM experiences ORDER BY experience_id`)
	if err != nil {
		return nil, fmt.Errorf("list experiences: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Experience
	for rows.Next() {
		exp, err := scanExperience(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, exp)
	}
	return out, rows.Err()
}

// Experience fetches one cached experience. Returns nil when the id is not
// cached rather than an error; the caller decides whether absence is fatal.
func (s *Store) Experience(ctx context.Context, id int64) (*Experience, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT `+experienceColumns+` FROM experiences WHERE experience_id = ?`, id)
	exp, err := scanExperience(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &exp, nil
}

// Artists returns all cached artist rows ordered by id.
func (s *Store) Artists(ctx context.Context) ([]Artist, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+artistColumns+` FROM artists ORDER BY artist_id`)
	if err != nil {
		return nil, fmt.Errorf("list artists: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Artist
	for rows.Next() {
		artist, err := scanArtist(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, artist)
	}
	return out, rows.Err()
}

// Artist fetches one cached artist, nil when absent.
func (s *Store) Artist(ctx context.Context, id int64) (*Artist, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT `+artistColumns+` FROM artists WHERE artist_id = ?`, id)
	artist, err := scanArtist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &artist, nil
}

// MetadataCached reports whether a full metadata fetch has run for the
// experience. A listing-only row reports false.
func (s *Store) MetadataCached(ctx context.Context, id int64) (bool, error) {
	ctx = ensureContext(ctx)
	var cached int
	err := s.db.QueryRowContext(ctx,
		`SELECT has_metadata FROM experiences WHERE experience_id = ?`, id).Scan(&cached)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check metadata cached: %w", err)
	}
	return cached != 0, nil
}

// ThemeCount returns the total and downloaded theme counts for one experience.
func (s *Store) ThemeCount(ctx context.Context, experienceID int64) (ThemeCount, error) {
	ctx = ensureContext(ctx)
	tc := ThemeCount{ExperienceID: experienceID}
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1), COALESCE(SUM(downloaded), 0) FROM themes WHERE experience_id = ?`,
		experienceID).Scan(&tc.Total, &tc.Downloaded)
	if err != nil {
		return tc, fmt.Errorf("theme count: %w", err)
	}
	return tc, nil
}

// ThemeCounts returns counts for every experience with at least one theme row
// in a single query.
func (s *Store) ThemeCounts(ctx context.Context) ([]ThemeCount, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT experience_id, COUNT(1), COALESCE(SUM(downloaded), 0)
         FROM themes GROUP BY experience_id ORDER BY experience_id`)
	if err != nil {
		return nil, fmt.Errorf("theme counts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []ThemeCount
	for rows.Next() {
		var tc ThemeCount
		if err := rows.Scan(&tc.ExperienceID, &tc.Total, &tc.Downloaded); err != nil {
			return nil, fmt.Errorf("scan theme count: %w", err)
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}

// PlayCount returns the play counter for one experience, zero when absent.
func (s *Store) PlayCount(ctx context.Context, experienceID int64) (int64, error) {
	ctx = ensureContext(ctx)
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT play_count FROM experiences WHERE experience_id = ?`, experienceID).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("play count: %w", err)
	}
	return count, nil
}

// IncrementPlayCount bumps the play counter for an experience that has begun
// playback.
func (s *Store) IncrementPlayCount(ctx context.Context, experienceID int64) error {
	return s.execWrite(ctx,
		`UPDATE experiences SET play_count = play_count + 1, updated_at = ?
         WHERE experience_id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), experienceID)
}

// StoreThemePayload records a downloaded theme body.
func (s *Store) StoreThemePayload(ctx context.Context, themeID int64, payload []byte) error {
	return s.execWrite(ctx,
		`UPDATE themes SET payload = ?, downloaded = 1, size_bytes = ?, updated_at = ?
         WHERE theme_id = ?`,
		payload, int64(len(payload)), time.Now().UTC().Format(time.RFC3339Nano), themeID)
}

func scanExperience(row interface{ Scan(...any) error }) (Experience, error) {
	var exp Experience
	var hasMetadata int
	var createdAt, updatedAt string
	err := row.Scan(&exp.ID, &exp.Title, &exp.ArtistID, &exp.ImageURL, &exp.DetailJSON,
		&hasMetadata, &exp.PlayCount, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return exp, err
		}
		return exp, fmt.Errorf("scan experience: %w", err)
	}
	exp.HasMetadata = hasMetadata != 0
	exp.CreatedAt = parseTimestamp(createdAt)
	exp.UpdatedAt = parseTimestamp(updatedAt)
	return exp, nil
}

func scanArtist(row interface{ Scan(...any) error }) (Artist, error) {
	var artist Artist
	var createdAt, updatedAt string
	err := row.Scan(&artist.ID, &artist.Name, &artist.Bio, &artist.DetailJSON, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return artist, err
		}
		return artist, fmt.Errorf("scan artist: %w", err)
	}
	artist.CreatedAt = parseTimestamp(createdAt)
	artist.UpdatedAt = parseTimestamp(updatedAt)
	return artist, nil
}

func parseTimestamp(value string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	t, _ := time.Parse("2006-01-02 15:04:05", value)
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
