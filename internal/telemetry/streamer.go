package telemetry

import (
	"log/slog"
	"math"
	"strconv"
	"sync"

	"cadenza/internal/bus"
	"cadenza/internal/clock"
	"cadenza/internal/logging"
	"cadenza/internal/ramp"
)

// Publisher accepts unsolicited notifications. Satisfied by *bus.Bus.
type Publisher interface {
	Publish(bus.Notification)
}

// StreamKind names a periodic notification stream.
type StreamKind string

const (
	StreamTransport StreamKind = "transport"
	StreamRMS       StreamKind = "rms"
)

type streamState struct {
	active   bool
	period   float64
	nextBeat float64
}

// Streamer emits transport and per-group RMS notifications at a caller-chosen
// beat subdivision. Advance is called from the audio render path and must
// never block it; emission goes through the publisher's non-blocking path.
type Streamer struct {
	logger *slog.Logger
	clk    *clock.Clock
	pub    Publisher
	meter  *GroupMeter

	// Streams are started and stopped from the control goroutine while the
	// audio path reads and advances them; mu guards all stream state.
	// Publish drops on a full queue instead of blocking, so holding mu
	// across emission cannot stall rendering.
	mu      sync.Mutex
	streams map[StreamKind]*streamState
}

// NewStreamer wires a streamer to the clock, meter, and publisher.
func NewStreamer(clk *clock.Clock, meter *GroupMeter, pub Publisher, logger *slog.Logger) *Streamer {
	return &Streamer{
		logger: logging.NewComponentLogger(logger, "telemetry"),
		clk:    clk,
		pub:    pub,
		meter:  meter,
		streams: map[StreamKind]*streamState{
			StreamTransport: {},
			StreamRMS:       {},
		},
	}
}

// Start begins emitting the given stream every beatPeriod beats. Starting an
// already-running stream is a caller error: it is reported, and the stream is
// re-anchored to the new period from the current beat.
func (s *Streamer) Start(kind StreamKind, beatPeriod float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.streams[kind]
	if !ok {
		return
	}
	if beatPeriod <= 0 {
		beatPeriod = 1
	}
	if st.active {
		s.logger.Warn("stream already started",
			logging.String("stream", string(kind)),
			logging.Float64("beat_period", beatPeriod),
			logging.String(logging.FieldEventType, "stream_double_start"),
			logging.String(logging.FieldErrorHint, "call stop before restarting with a new period"))
		st.period = beatPeriod
		st.nextBeat = nextBoundary(s.clk.Beat(), beatPeriod)
		return
	}
	now := s.clk.Beat()
	st.active = true
	st.period = beatPeriod
	st.nextBeat = nextBoundary(now, beatPeriod)
}

// Stop halts the stream before its next tick.
func (s *Streamer) Stop(kind StreamKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.streams[kind]; ok {
		st.active = false
	}
}

// Active reports whether the stream is currently emitting.
func (s *Streamer) Active(kind StreamKind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.streams[kind]
	return ok && st.active
}

// Advance emits every tick due at or before nowBeat. Called from the audio
// render path after the clock has advanced.
func (s *Streamer) Advance(nowBeat float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st := s.streams[StreamTransport]; st.active {
		for st.nextBeat <= nowBeat {
			s.emitTransport(st.nextBeat)
			st.nextBeat += st.period
		}
	}
	if st := s.streams[StreamRMS]; st.active {
		for st.nextBeat <= nowBeat {
			s.emitRMS(st.nextBeat)
			st.nextBeat += st.period
		}
	}
}

func (s *Streamer) emitTransport(beat float64) {
	snap := s.clk.Now()
	s.pub.Publish(bus.Unsolicited([]string{"beat", "transport"}, map[string]any{
		"beat":    beat,
		"tempo":   snap.Tempo,
		"seconds": snap.Seconds,
		"frame":   snap.Frame,
	}))
}

func (s *Streamer) emitRMS(beat float64) {
	levels := s.meter.Levels()
	result := make(map[string]any, ramp.TrackCount+1)
	result["beat"] = beat
	for i, level := range levels {
		result[strconv.Itoa(i)] = level
	}
	s.pub.Publish(bus.Unsolicited([]string{"rms", "logger"}, result))
}

// nextBoundary returns the first multiple of period strictly after beat.
func nextBoundary(beat, period float64) float64 {
	n := math.Floor(beat/period + 1e-9)
	return (n + 1) * period
}
