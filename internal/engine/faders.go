package engine

// RampUserFader ramps the user fader on a track to target over durationBeats,
// measured on the audio clock. Callable from one non-control goroutine; an
// invalid track is rejected here without a worker round trip.
func (e *Engine) RampUserFader(track int, target, durationBeats float64) error {
	return e.faders.RequestRamp(track, target, durationBeats, e.clk.Beat())
}

// UserFaderValue reads the current fader value on a track. Callable from one
// non-control goroutine.
func (e *Engine) UserFaderValue(track int) (float64, error) {
	return e.faders.Value(track, e.clk.Beat())
}
