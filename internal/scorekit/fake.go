package scorekit

import (
	"context"
	"fmt"
	"sync"
)

// FakeRuntime is an in-memory Runtime for tests and for running the daemon
// without a generation process attached.
type FakeRuntime struct {
	mu sync.Mutex

	scoreSliders  []ScoreSlider
	systemSliders []SystemSlider
	scoreValues   map[int64]float64
	systemValues  map[string]float64

	playingThemes     []int64
	playingSection    string
	playingExperience int64
	nextSection       string

	ShuffleCalls []uint8
	ThumbEvents  []string
}

// NewFakeRuntime seeds a runtime with the given slider definitions.
func NewFakeRuntime(score []ScoreSlider, system []SystemSlider) *FakeRuntime {
	f := &FakeRuntime{
		scoreSliders:  score,
		systemSliders: system,
		scoreValues:   make(map[int64]float64),
		systemValues:  make(map[string]float64),
		playingThemes: make([]int64, 7),
	}
	for _, s := range score {
		f.scoreValues[s.ID] = s.Limits[0]
	}
	for _, s := range system {
		f.systemValues[s.Name] = s.Limits[0]
	}
	return f
}

var _ Runtime = (*FakeRuntime)(nil)

func (f *FakeRuntime) CuePlayback(_ context.Context, experienceID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playingExperience = experienceID
	f.playingSection = "intro"
	return nil
}

func (f *FakeRuntime) Shuffle(_ context.Context, groups uint8) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ShuffleCalls = append(f.ShuffleCalls, groups)
	for track := 0; track < len(f.playingThemes); track++ {
		if groups&(1<<uint(track)) != 0 {
			f.playingThemes[track]++
		}
	}
	return nil
}

func (f *FakeRuntime) ScoreSliders(context.Context) ([]ScoreSlider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ScoreSlider, len(f.scoreSliders))
	copy(out, f.scoreSliders)
	return out, nil
}

func (f *FakeRuntime) ScoreSliderValue(_ context.Context, id int64) (SliderValue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return SliderValue{ID: id, Value: f.scoreValues[id]}, nil
}

func (f *FakeRuntime) SetScoreSliderValue(_ context.Context, id int64, value float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.scoreValues[id]; !ok {
		return fmt.Errorf("unknown score slider %d", id)
	}
	f.scoreValues[id] = value
	return nil
}

func (f *FakeRuntime) SetupSystemSliders(context.Context) error { return nil }

func (f *FakeRuntime) SystemSliders(context.Context) ([]SystemSlider, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]SystemSlider, len(f.systemSliders))
	copy(out, f.systemSliders)
	return out, nil
}

func (f *FakeRuntime) SystemSliderValue(_ context.Context, name string) (SliderValue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return SliderValue{Name: name, Value: f.systemValues[name]}, nil
}

func (f *FakeRuntime) SetSystemSliderValue(_ context.Context, name string, value float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.systemValues[name]; !ok {
		return fmt.Errorf("unknown system slider %q", name)
	}
	f.systemValues[name] = value
	return nil
}

func (f *FakeRuntime) PlayingThemes(context.Context) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]int64, len(f.playingThemes))
	copy(out, f.playingThemes)
	return out, nil
}

func (f *FakeRuntime) PlayingSection(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.playingSection, nil
}

func (f *FakeRuntime) PlayingExperience(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.playingExperience, nil
}

func (f *FakeRuntime) ScoreThumbsUp(context.Context) error   { return f.recordThumb("score-up") }
func (f *FakeRuntime) ScoreThumbsDown(context.Context) error { return f.recordThumb("score-down") }

func (f *FakeRuntime) ScoreThumbsUpOnTrack(_ context.Context, track int) error {
	return f.recordThumb(fmt.Sprintf("score-up-track-%d", track))
}

func (f *FakeRuntime) ScoreThumbsDownOnTrack(_ context.Context, track int) error {
	return f.recordThumb(fmt.Sprintf("score-down-track-%d", track))
}

func (f *FakeRuntime) SystemThumbsUp(context.Context) error   { return f.recordThumb("system-up") }
func (f *FakeRuntime) SystemThumbsDown(context.Context) error { return f.recordThumb("system-down") }

func (f *FakeRuntime) OverrideNextSection(_ context.Context, sectionKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextSection = sectionKey
	return nil
}

// NextSection reports the last override for assertions.
func (f *FakeRuntime) NextSection() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nextSection
}

func (f *FakeRuntime) recordThumb(event string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ThumbEvents = append(f.ThumbEvents, event)
	return nil
}
