package engine

import (
	"errors"

	"cadenza/internal/ramp"
)

// RenderSource generates audio into buf (interleaved stereo, 2*frames
// samples) given the current per-group fader gains. Implementations must not
// block: AudioRender is called from the client's audio callback.
type RenderSource interface {
	Render(buf []float32, frames int, gains [ramp.TrackCount]float64) error
}

// AudioRender pulls the next frames of audio. It advances the clock, samples
// the fader scheduler (retiring and activating ramps), renders through the
// attached source (or silence), feeds the RMS meter, and emits any due
// telemetry ticks. It never blocks: telemetry goes through the bus's
// dropping path.
func (e *Engine) AudioRender(buf []float32, frames int) error {
	if frames <= 0 || len(buf) < 2*frames {
		return errors.New("buffer smaller than 2*frames")
	}

	e.clk.Advance(frames)
	beat := e.clk.Beat()
	gains := e.faders.Gains(beat)

	if e.source != nil {
		if err := e.source.Render(buf[:2*frames], frames, gains); err != nil {
			return err
		}
	} else {
		for i := range buf[:2*frames] {
			buf[i] = 0
		}
	}

	e.meter.Measure(buf[:2*frames], gains)
	e.streamer.Advance(beat)
	return nil
}
