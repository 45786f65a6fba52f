package scorekit

import "context"

// TemporalScope describes when a slider change becomes audible.
type TemporalScope string

const (
	// ScopeImmediate changes are audible right away.
	ScopeImmediate TemporalScope = "immediate"
	// ScopeTrack changes apply at the start of the next track.
	ScopeTrack TemporalScope = "track"
	// ScopeSection changes apply at the start of the next section.
	ScopeSection TemporalScope = "section"
	// ScopeStatic changes apply only on the next playback start.
	ScopeStatic TemporalScope = "static"
)

// ScoreSlider is a macro control defined by the current score. IDs are unique
// within one score only.
type ScoreSlider struct {
	ID            int64         `json:"id"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Limits        [2]float64    `json:"limits"`
	TemporalScope TemporalScope `json:"temporalScope"`
}

// SystemSlider is one of the universal macro controls, such as progression
// or intensity. Names are stable keys; display names are a client concern.
type SystemSlider struct {
	Name   string     `json:"name"`
	Limits [2]float64 `json:"limits"`
}

// SliderValue is a slider reading stamped with the score time it was taken
// at, so out-of-order notification delivery can be reordered by the client.
type SliderValue struct {
	ID    int64   `json:"id,omitempty"`
	Name  string  `json:"name,omitempty"`
	Time  float64 `json:"time"`
	Value float64 `json:"value"`
}

// Runtime is the score engine the play worker queries. The real
// implementation lives in the generation process; everything here sees it
// through this interface.
type Runtime interface {
	// CuePlayback starts the experience, or transitions to it when
	// something else is playing.
	CuePlayback(ctx context.Context, experienceID int64) error

	// Shuffle replaces the playing theme on each track whose bit is set in
	// groups. ShuffleAll is Shuffle with all bits set.
	Shuffle(ctx context.Context, groups uint8) error

	ScoreSliders(ctx context.Context) ([]ScoreSlider, error)
	ScoreSliderValue(ctx context.Context, id int64) (SliderValue, error)
	SetScoreSliderValue(ctx context.Context, id int64, value float64) error

	// SetupSystemSliders puts audio parameters under system slider control.
	// Scores may take the same parameters over; calling this again hands
	// them back.
	SetupSystemSliders(ctx context.Context) error
	SystemSliders(ctx context.Context) ([]SystemSlider, error)
	SystemSliderValue(ctx context.Context, name string) (SliderValue, error)
	SetSystemSliderValue(ctx context.Context, name string, value float64) error

	// PlayingThemes reports the theme id on each of the seven tracks.
	PlayingThemes(ctx context.Context) ([]int64, error)
	PlayingSection(ctx context.Context) (string, error)
	PlayingExperience(ctx context.Context) (int64, error)

	// Thumbs events delegate to score hooks when defined, otherwise no-op.
	ScoreThumbsUp(ctx context.Context) error
	ScoreThumbsDown(ctx context.Context) error
	ScoreThumbsUpOnTrack(ctx context.Context, track int) error
	ScoreThumbsDownOnTrack(ctx context.Context, track int) error
	SystemThumbsUp(ctx context.Context) error
	SystemThumbsDown(ctx context.Context) error

	// OverrideNextSection forces the section chooser's next pick.
	OverrideNextSection(ctx context.Context, sectionKey string) error
}
