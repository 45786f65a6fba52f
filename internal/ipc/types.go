package ipc

// StatusRequest fetches engine status.
type StatusRequest struct{}

// StatusResponse represents combined engine status information.
type StatusResponse struct {
	Running              bool    `json:"running"`
	PID                  int     `json:"pid"`
	SessionID            string  `json:"session_id"`
	UserID               string  `json:"user_id"`
	Beat                 float64 `json:"beat"`
	Tempo                float64 `json:"tempo"`
	SampleRate           int     `json:"sample_rate"`
	DroppedNotifications uint64  `json:"dropped_notifications"`
	DatabasePath         string  `json:"database_path"`
}

// LoginRequest exchanges direct credentials for a session token.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse reports the authenticated user.
type LoginResponse struct {
	UserID string `json:"user_id"`
}

// ExperienceItem is one row of the local experience catalog.
type ExperienceItem struct {
	ID               int64  `json:"id"`
	Title            string `json:"title"`
	ArtistID         int64  `json:"artist_id"`
	ImageURL         string `json:"image_url"`
	HasMetadata      bool   `json:"has_metadata"`
	PlayCount        int64  `json:"play_count"`
	ThemesTotal      int64  `json:"themes_total"`
	ThemesDownloaded int64  `json:"themes_downloaded"`
}

// ExperienceListRequest lists cached experiences, optionally refreshing the
// listing from the mother catalog first.
type ExperienceListRequest struct {
	Refresh bool `json:"refresh"`
}

// ExperienceListResponse contains catalog entries.
type ExperienceListResponse struct {
	Items []ExperienceItem `json:"items"`
}

// ExperienceDescribeRequest fetches a single experience by id.
type ExperienceDescribeRequest struct {
	ID      int64 `json:"id"`
	Refresh bool  `json:"refresh"`
}

// ExperienceDescribeResponse contains a single catalog entry.
type ExperienceDescribeResponse struct {
	Item ExperienceItem `json:"item"`
}

// ArtistItem is one row of the local artist catalog.
type ArtistItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Bio  string `json:"bio"`
}

// ArtistListRequest lists cached artists, optionally refreshing first.
type ArtistListRequest struct {
	Refresh bool `json:"refresh"`
}

// ArtistListResponse contains artist entries.
type ArtistListResponse struct {
	Items []ArtistItem `json:"items"`
}

// SyncRequest refreshes the experience and artist listings from the mother
// catalog. Metadata additionally re-fetches cached experience metadata.
type SyncRequest struct {
	Metadata bool `json:"metadata"`
}

// SyncResponse reports the post-sync catalog size.
type SyncResponse struct {
	Experiences int `json:"experiences"`
	Artists     int `json:"artists"`
}

// PrefGetRequest reads one preference value by dotted key path.
type PrefGetRequest struct {
	KeyPath string `json:"key_path"`
}

// PrefGetResponse returns the value, if any.
type PrefGetResponse struct {
	Value any  `json:"value"`
	Found bool `json:"found"`
}

// PrefSetRequest writes one preference value by dotted key path.
type PrefSetRequest struct {
	KeyPath string `json:"key_path"`
	Value   any    `json:"value"`
}

// PrefSetResponse acknowledges the write.
type PrefSetResponse struct{}

// PrefClearRequest removes one preference value by dotted key path.
type PrefClearRequest struct {
	KeyPath string `json:"key_path"`
}

// PrefClearResponse acknowledges the removal.
type PrefClearResponse struct{}

// PrefSyncRequest merges preferences with the mother catalog. Direction is
// "download" or "upload".
type PrefSyncRequest struct {
	Direction string `json:"direction"`
}

// PrefSyncResponse acknowledges the merge.
type PrefSyncResponse struct{}

// FaderRampRequest schedules a linear fader ramp against the beat clock.
type FaderRampRequest struct {
	Track         int     `json:"track"`
	Target        float64 `json:"target"`
	DurationBeats float64 `json:"duration_beats"`
}

// FaderRampResponse acknowledges the scheduled ramp.
type FaderRampResponse struct{}

// FaderValueRequest reads the current value of one fader track.
type FaderValueRequest struct {
	Track int `json:"track"`
}

// FaderValueResponse returns the fader value.
type FaderValueResponse struct {
	Value float64 `json:"value"`
}

// TempoRequest changes the beat clock tempo.
type TempoRequest struct {
	BPM float64 `json:"bpm"`
}

// TempoResponse acknowledges the tempo change.
type TempoResponse struct{}

// ClockRequest reads the transport position.
type ClockRequest struct{}

// ClockResponse returns the transport position.
type ClockResponse struct {
	Beat  float64 `json:"beat"`
	Tempo float64 `json:"tempo"`
}

// DiskUsageRequest fetches local storage accounting.
type DiskUsageRequest struct{}

// DiskUsageResponse reports local storage accounting.
type DiskUsageResponse struct {
	DatabaseBytes int64           `json:"database_bytes"`
	ThemeBytes    int64           `json:"theme_bytes"`
	PerExperience map[int64]int64 `json:"per_experience"`
}

// UnloadRequest drops downloaded theme payloads for one experience.
type UnloadRequest struct {
	ExperienceID int64 `json:"experience_id"`
}

// UnloadResponse acknowledges the unload.
type UnloadResponse struct{}

// CleanDBRequest compacts the daughter database.
type CleanDBRequest struct{}

// CleanDBResponse acknowledges the vacuum.
type CleanDBResponse struct{}

// LogTailRequest fetches log lines based on offset and follow semantics.
type LogTailRequest struct {
	Offset     int64 `json:"offset"`
	Limit      int   `json:"limit"`
	Follow     bool  `json:"follow"`
	WaitMillis int   `json:"wait_millis"`
}

// LogTailResponse returns log lines and the next offset.
type LogTailResponse struct {
	Lines  []string `json:"lines"`
	Offset int64    `json:"offset"`
}
