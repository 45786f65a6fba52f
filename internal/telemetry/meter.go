package telemetry

import (
	"math"
	"sync"

	"cadenza/internal/ramp"
)

// GroupMeter holds the latest root-mean-square level per group, fed by the
// audio render path and read by the RMS stream.
type GroupMeter struct {
	mu     sync.Mutex
	levels [ramp.TrackCount]float64
}

// NewGroupMeter builds a meter with all groups silent.
func NewGroupMeter() *GroupMeter {
	return &GroupMeter{}
}

// Measure computes the RMS of a rendered stereo buffer and records the
// per-group levels after the given fader gains. Called from the render path.
func (m *GroupMeter) Measure(buf []float32, gains [ramp.TrackCount]float64) {
	if len(buf) == 0 {
		return
	}
	var sum float64
	for _, s := range buf {
		sum += float64(s) * float64(s)
	}
	master := math.Sqrt(sum / float64(len(buf)))

	m.mu.Lock()
	for i := range m.levels {
		m.levels[i] = master * gains[i]
	}
	m.mu.Unlock()
}

// Levels returns a snapshot of the per-group RMS values.
func (m *GroupMeter) Levels() [ramp.TrackCount]float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.levels
}
