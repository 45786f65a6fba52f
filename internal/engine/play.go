package engine

import (
	"cadenza/internal/bus"
	"cadenza/internal/ramp"
	"cadenza/internal/worker"
)

// CuePlayback starts the experience, or transitions to it when something is
// already playing. Fire-and-forget.
func (e *Engine) CuePlayback(experienceID int64) error {
	return e.fire(worker.Task{
		Target: worker.TargetPlay,
		Op:     worker.OpCuePlayback,
		Args:   worker.Args{ExperienceID: experienceID},
	})
}

// Shuffle replaces the playing theme on each track whose bit is set.
func (e *Engine) Shuffle(groups uint8) error {
	return e.fire(worker.Task{
		Target: worker.TargetPlay,
		Op:     worker.OpShuffle,
		Args:   worker.Args{Groups: groups},
	})
}

// ShuffleAll shuffles every track.
func (e *Engine) ShuffleAll() error {
	return e.fire(worker.Task{Target: worker.TargetPlay, Op: worker.OpShuffleAll})
}

// ScoreSliders returns the macro sliders defined by the current score.
func (e *Engine) ScoreSliders() (any, error) {
	return e.call(bus.KindScoreQuery, worker.Task{Target: worker.TargetPlay, Op: worker.OpScoreSliders})
}

// ScoreSlidersAsync posts the slider list with tags ["score","slider","list"].
func (e *Engine) ScoreSlidersAsync(requestID int64) error {
	return e.submitAsync(requestID, bus.KindScoreQuery, worker.Task{
		Target: worker.TargetPlay,
		Op:     worker.OpScoreSliders,
	})
}

// ScoreSliderValue reads one score slider, stamped with score time.
func (e *Engine) ScoreSliderValue(id int64) (any, error) {
	return e.call(bus.KindScoreQuery, worker.Task{
		Target: worker.TargetPlay,
		Op:     worker.OpScoreSliderValue,
		Args:   worker.Args{SliderID: id},
	})
}

// ScoreSliderValueAsync is ScoreSliderValue posting through the bus.
func (e *Engine) ScoreSliderValueAsync(requestID, id int64) error {
	return e.submitAsync(requestID, bus.KindScoreQuery, worker.Task{
		Target: worker.TargetPlay,
		Op:     worker.OpScoreSliderValue,
		Args:   worker.Args{SliderID: id},
	})
}

// SetScoreSliderValue sets a score slider. Fire-and-forget.
func (e *Engine) SetScoreSliderValue(id int64, value float64) error {
	return e.fire(worker.Task{
		Target: worker.TargetPlay,
		Op:     worker.OpSetScoreSliderValue,
		Args:   worker.Args{SliderID: id, Value: value},
	})
}

// SetupSystemSliders puts audio parameters under system slider control.
func (e *Engine) SetupSystemSliders() error {
	return e.fire(worker.Task{Target: worker.TargetPlay, Op: worker.OpSetupSystemSliders})
}

// SystemSliders returns the universal macro sliders.
func (e *Engine) SystemSliders() (any, error) {
	return e.call(bus.KindScoreQuery, worker.Task{Target: worker.TargetPlay, Op: worker.OpSystemSliders})
}

// SystemSlidersAsync posts the list with tags ["system","slider","list"].
func (e *Engine) SystemSlidersAsync(requestID int64) error {
	return e.submitAsync(requestID, bus.KindScoreQuery, worker.Task{
		Target: worker.TargetPlay,
		Op:     worker.OpSystemSliders,
	})
}

// SystemSliderValue reads one system slider by name.
func (e *Engine) SystemSliderValue(name string) (any, error) {
	return e.call(bus.KindScoreQuery, worker.Task{
		Target: worker.TargetPlay,
		Op:     worker.OpSystemSliderValue,
		Args:   worker.Args{SliderName: name},
	})
}

// SystemSliderValueAsync is SystemSliderValue posting through the bus.
func (e *Engine) SystemSliderValueAsync(requestID int64, name string) error {
	return e.submitAsync(requestID, bus.KindScoreQuery, worker.Task{
		Target: worker.TargetPlay,
		Op:     worker.OpSystemSliderValue,
		Args:   worker.Args{SliderName: name},
	})
}

// SetSystemSliderValue sets a system slider by name. Fire-and-forget.
func (e *Engine) SetSystemSliderValue(name string, value float64) error {
	return e.fire(worker.Task{
		Target: worker.TargetPlay,
		Op:     worker.OpSetSystemSliderValue,
		Args:   worker.Args{SliderName: name, Value: value},
	})
}

// CurrentlyPlayingThemes posts the per-track theme ids with tags
// ["response","playing","themes"].
func (e *Engine) CurrentlyPlayingThemes(requestID int64) error {
	return e.submitAsync(requestID, bus.KindScoreQuery, worker.Task{
		Target: worker.TargetPlay,
		Op:     worker.OpPlayingThemes,
	})
}

// CurrentlyPlayingSection posts the active section key.
func (e *Engine) CurrentlyPlayingSection(requestID int64) error {
	return e.submitAsync(requestID, bus.KindScoreQuery, worker.Task{
		Target: worker.TargetPlay,
		Op:     worker.OpPlayingSection,
	})
}

// CurrentlyPlayingExperience posts the active experience id.
func (e *Engine) CurrentlyPlayingExperience(requestID int64) error {
	return e.submitAsync(requestID, bus.KindScoreQuery, worker.Task{
		Target: worker.TargetPlay,
		Op:     worker.OpPlayingExperience,
	})
}

// ScoreThumbsUp registers a master thumbs-up with the score.
func (e *Engine) ScoreThumbsUp() error {
	return e.fire(worker.Task{Target: worker.TargetPlay, Op: worker.OpScoreThumbsUp})
}

// ScoreThumbsDown registers a master thumbs-down with the score.
func (e *Engine) ScoreThumbsDown() error {
	return e.fire(worker.Task{Target: worker.TargetPlay, Op: worker.OpScoreThumbsDown})
}

// ScoreThumbsUpOnTrack registers a per-track thumbs-up with the score.
func (e *Engine) ScoreThumbsUpOnTrack(track int) error {
	if track < 0 || track >= ramp.TrackCount {
		return ramp.ErrInvalidTrack
	}
	return e.fire(worker.Task{
		Target: worker.TargetPlay,
		Op:     worker.OpScoreThumbsUpTrack,
		Args:   worker.Args{Track: track},
	})
}

// ScoreThumbsDownOnTrack registers a per-track thumbs-down with the score.
func (e *Engine) ScoreThumbsDownOnTrack(track int) error {
	if track < 0 || track >= ramp.TrackCount {
		return ramp.ErrInvalidTrack
	}
	return e.fire(worker.Task{
		Target: worker.TargetPlay,
		Op:     worker.OpScoreThumbsDownTrack,
		Args:   worker.Args{Track: track},
	})
}

// SystemThumbsUp registers a master thumbs-up with the system.
func (e *Engine) SystemThumbsUp() error {
	return e.fire(worker.Task{Target: worker.TargetPlay, Op: worker.OpSystemThumbsUp})
}

// SystemThumbsDown registers a master thumbs-down with the system.
func (e *Engine) SystemThumbsDown() error {
	return e.fire(worker.Task{Target: worker.TargetPlay, Op: worker.OpSystemThumbsDown})
}

// SystemThumbsUpOnTrack registers a per-track thumbs-up with the system.
func (e *Engine) SystemThumbsUpOnTrack(track int) error {
	if track < 0 || track >= ramp.TrackCount {
		return ramp.ErrInvalidTrack
	}
	return e.fire(worker.Task{
		Target: worker.TargetPlay,
		Op:     worker.OpSystemThumbsUpTrack,
		Args:   worker.Args{Track: track},
	})
}

// SystemThumbsDownOnTrack registers a per-track thumbs-down with the system.
func (e *Engine) SystemThumbsDownOnTrack(track int) error {
	if track < 0 || track >= ramp.TrackCount {
		return ramp.ErrInvalidTrack
	}
	return e.fire(worker.Task{
		Target: worker.TargetPlay,
		Op:     worker.OpSystemThumbsDownTrack,
		Args:   worker.Args{Track: track},
	})
}

// OverrideNextSection forces the next section pick. The key should come from
// the score's section matrix.
func (e *Engine) OverrideNextSection(sectionKey string) error {
	return e.fire(worker.Task{
		Target: worker.TargetPlay,
		Op:     worker.OpOverrideNextSection,
		Args:   worker.Args{SectionKey: sectionKey},
	})
}
