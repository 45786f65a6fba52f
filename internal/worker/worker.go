package worker

import "errors"

// ErrWorkerUnavailable is returned synchronously by Submit when the addressed
// worker is not running or cannot accept the task. No notification follows a
// failed Submit.
var ErrWorkerUnavailable = errors.New("worker unavailable")

// ErrUnknownOp is returned when a task names an operation the addressed
// worker does not implement.
var ErrUnknownOp = errors.New("unknown operation")

// Target addresses one of the background workers.
type Target string

const (
	// TargetDownload runs catalog sync and preference ops against mother.
	TargetDownload Target = "download"
	// TargetPlay runs score and playback queries against the score runtime.
	TargetPlay Target = "play"
)

// Op names a worker operation.
type Op string

// Download worker ops.
const (
	OpCacheExperienceList     Op = "cache_experience_list"
	OpCacheArtistList         Op = "cache_artist_list"
	OpCacheExperienceMetadata Op = "cache_experience_metadata"
	OpExperiencesGetAll       Op = "experiences_get_all"
	OpExperienceGet           Op = "experience_get"
	OpArtistsGetAll           Op = "artists_get_all"
	OpArtistGet               Op = "artist_get"
	OpLocalThemeCount         Op = "local_theme_count"
	OpLocalThemeCounts        Op = "local_theme_counts"
	OpPlayCount               Op = "play_count"
	OpMetadataIsCached        Op = "metadata_is_cached"
	OpDiskUsage               Op = "disk_usage"
	OpUnloadExperience        Op = "unload_experience"
	OpCleanDB                 Op = "clean_db"
	OpDownloadPreferences     Op = "download_user_preferences"
	OpUploadPreferences       Op = "upload_user_preferences"
	OpUserPreference          Op = "user_preference"
)

// Play worker ops.
const (
	OpCuePlayback           Op = "cue_playback"
	OpShuffle               Op = "shuffle"
	OpShuffleAll            Op = "shuffle_all"
	OpScoreSliders          Op = "score_sliders"
	OpScoreSliderValue      Op = "score_slider_value"
	OpSetScoreSliderValue   Op = "set_score_slider_value"
	OpSetupSystemSliders    Op = "setup_system_sliders"
	OpSystemSliders         Op = "system_sliders"
	OpSystemSliderValue     Op = "system_slider_value"
	OpSetSystemSliderValue  Op = "set_system_slider_value"
	OpPlayingThemes         Op = "playing_themes"
	OpPlayingSection        Op = "playing_section"
	OpPlayingExperience     Op = "playing_experience"
	OpScoreThumbsUp         Op = "score_thumbs_up"
	OpScoreThumbsDown       Op = "score_thumbs_down"
	OpScoreThumbsUpTrack    Op = "score_thumbs_up_track"
	OpScoreThumbsDownTrack  Op = "score_thumbs_down_track"
	OpSystemThumbsUp        Op = "system_thumbs_up"
	OpSystemThumbsDown      Op = "system_thumbs_down"
	OpSystemThumbsUpTrack   Op = "system_thumbs_up_track"
	OpSystemThumbsDownTrack Op = "system_thumbs_down_track"
	OpOverrideNextSection   Op = "override_next_section"
)

// opTags maps each replying op to the tag list of its terminal notification.
// Fire-and-forget ops are absent.
var opTags = map[Op][]string{
	OpCacheExperienceList:     {"download", "experiences"},
	OpCacheArtistList:         {"download", "artists"},
	OpCacheExperienceMetadata: {"download", "metadata"},
	OpExperiencesGetAll:       {"response", "experiences"},
	OpExperienceGet:           {"response", "experience"},
	OpArtistsGetAll:           {"response", "artists"},
	OpArtistGet:               {"response", "artist"},
	OpLocalThemeCount:         {"response", "experience", "local_theme_count"},
	OpLocalThemeCounts:        {"response", "experience", "local_theme_counts"},
	OpPlayCount:               {"response", "experience", "play_count"},
	OpMetadataIsCached:        {"response", "experience", "metadata_cached"},
	OpDiskUsage:               {"response", "disk_usage"},
	OpUnloadExperience:        {"response", "unload"},
	OpCleanDB:                 {"response", "clean_db"},
	OpDownloadPreferences:     {"download", "user_preferences"},
	OpUploadPreferences:       {"download", "user_preferences"},
	OpUserPreference:          {"response", "user_preference"},

	OpScoreSliders:      {"score", "slider", "list"},
	OpScoreSliderValue:  {"score", "slider", "value"},
	OpSystemSliders:     {"system", "slider", "list"},
	OpSystemSliderValue: {"system", "slider", "value"},
	OpPlayingThemes:     {"response", "playing", "themes"},
	OpPlayingSection:    {"response", "playing", "section"},
	OpPlayingExperience: {"response", "playing", "experience"},
}

// Tags returns the terminal notification tags for a replying op, or nil for
// fire-and-forget ops.
func (o Op) Tags() []string {
	return opTags[o]
}

// Args carries the operation parameters. Only the fields the op reads are
// set; the zero value is valid for parameterless ops.
type Args struct {
	ExperienceID int64
	ArtistID     int64
	Groups       uint8
	SliderID     int64
	SliderName   string
	Value        float64
	Track        int
	SectionKey   string
	KeyPath      string
	Force        bool
}

// Task is one unit of work addressed to a worker. RequestID zero means
// fire-and-forget: the worker executes without posting a notification.
type Task struct {
	Target    Target
	RequestID int64
	Op        Op
	Args      Args
}

// Completer is the bus surface workers reply through.
type Completer interface {
	Complete(id int64, payload any)
	Fail(id int64, reason string)
}
