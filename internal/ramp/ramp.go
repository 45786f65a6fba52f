package ramp

import (
	"errors"
	"sync"
)

// TrackCount is the fixed number of user faders, one per group.
const TrackCount = 7

// TrackNames lists the groups in track-index order.
var TrackNames = [TrackCount]string{"Beats", "Bass", "Harmony", "Pads", "Tops", "Melody", "FX"}

// ErrInvalidTrack reports a track index outside [0, TrackCount).
var ErrInvalidTrack = errors.New("track index out of range")

// DefaultValue is the initial user fader value on every track.
const DefaultValue = 1.0

// pending is a ramp waiting for the active one to finish. endBeat is the
// end-beat the caller originally asked for, fixed at request time.
type pending struct {
	target  float64
	endBeat float64
}

type trackState struct {
	current   float64
	target    float64
	startBeat float64
	endBeat   float64
	ramping   bool
	queued    *pending
}

// Scheduler linearly ramps the seven user faders against the audio beat
// clock. A ramp requested while another is active is queued, not applied:
// the active ramp finishes, then the queued one rushes to its originally
// requested end-beat, or applies immediately if that beat has passed.
// Queue depth is one; a newer queued ramp replaces the older.
type Scheduler struct {
	mu     sync.Mutex
	tracks [TrackCount]trackState
}

// NewScheduler builds a scheduler with every fader at DefaultValue.
func NewScheduler() *Scheduler {
	s := &Scheduler{}
	for i := range s.tracks {
		s.tracks[i].current = DefaultValue
		s.tracks[i].target = DefaultValue
	}
	return s
}

// RequestRamp starts or queues a linear ramp on the given track from its
// value at nowBeat to target over durationBeats. A zero duration sets the
// value immediately. Safe to call from the designated non-control goroutine.
func (s *Scheduler) RequestRamp(track int, target, durationBeats, nowBeat float64) error {
	if track < 0 || track >= TrackCount {
		return ErrInvalidTrack
	}
	if durationBeats < 0 {
		durationBeats = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := &s.tracks[track]
	s.advanceLocked(t, nowBeat)

	if t.ramping {
		t.queued = &pending{target: target, endBeat: nowBeat + durationBeats}
		return nil
	}

	if durationBeats == 0 {
		t.current = target
		t.target = target
		t.ramping = false
		return nil
	}

	t.target = target
	t.startBeat = nowBeat
	t.endBeat = nowBeat + durationBeats
	t.ramping = true
	return nil
}

// Value returns the fader value on the given track at nowBeat. It never
// tears: the result always lies between the ramp's current and target values.
func (s *Scheduler) Value(track int, nowBeat float64) (float64, error) {
	if track < 0 || track >= TrackCount {
		return 0, ErrInvalidTrack
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &s.tracks[track]
	s.advanceLocked(t, nowBeat)
	return sampleLocked(t, nowBeat), nil
}

// Gains samples all seven faders at nowBeat in one lock acquisition. Used by
// the audio render path; cheap and non-blocking.
func (s *Scheduler) Gains(nowBeat float64) [TrackCount]float64 {
	var out [TrackCount]float64
	s.mu.Lock()
	for i := range s.tracks {
		t := &s.tracks[i]
		s.advanceLocked(t, nowBeat)
		out[i] = sampleLocked(t, nowBeat)
	}
	s.mu.Unlock()
	return out
}

// advanceLocked retires finished ramps and activates queued ones. Loops in
// case nowBeat has already passed the queued ramp's window too.
func (s *Scheduler) advanceLocked(t *trackState, nowBeat float64) {
	for {
		if !t.ramping {
			if t.queued == nil {
				return
			}
			// Idle with a queued ramp only happens transiently below.
			q := t.queued
			t.queued = nil
			s.startLocked(t, q, t.endBeat)
			continue
		}
		if nowBeat < t.endBeat {
			return
		}
		// Active ramp reached its target.
		finishedAt := t.endBeat
		t.current = t.target
		t.ramping = false
		if t.queued == nil {
			return
		}
		q := t.queued
		t.queued = nil
		s.startLocked(t, q, finishedAt)
	}
}

// startLocked begins a previously queued ramp at fromBeat, rushing to the
// originally requested end-beat when it is still ahead and snapping to the
// target otherwise.
func (s *Scheduler) startLocked(t *trackState, q *pending, fromBeat float64) {
	if q.endBeat <= fromBeat {
		t.current = q.target
		t.target = q.target
		t.ramping = false
		return
	}
	t.target = q.target
	t.startBeat = fromBeat
	t.endBeat = q.endBeat
	t.ramping = true
}

func sampleLocked(t *trackState, beat float64) float64 {
	if !t.ramping {
		return t.current
	}
	if beat <= t.startBeat {
		return t.current
	}
	if beat >= t.endBeat {
		return t.target
	}
	frac := (beat - t.startBeat) / (t.endBeat - t.startBeat)
	return t.current + (t.target-t.current)*frac
}
