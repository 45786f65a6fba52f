package clock

import "sync"

// Snapshot is a consistent view of musical time.
type Snapshot struct {
	Beat    float64
	Tempo   float64
	Seconds float64
	Frame   int64
}

// Clock converts rendered audio frames into musical beats. It only advances
// when the client pulls audio, so everything scheduled against it stays
// sample-accurate regardless of wall-clock jitter.
type Clock struct {
	mu         sync.Mutex
	sampleRate int
	tempo      float64

	frames int64
	// beats accumulated up to the last tempo change, so Beat stays
	// continuous across SetTempo.
	beatBase      float64
	framesAtTempo int64
}

// New builds a clock at the given sample rate and initial tempo.
func New(sampleRate int, tempo float64) *Clock {
	if sampleRate <= 0 {
		sampleRate = 48000
	}
	if tempo <= 0 {
		tempo = 120
	}
	return &Clock{sampleRate: sampleRate, tempo: tempo}
}

// Advance moves the clock forward by the given number of rendered frames.
// Called only from the audio render path.
func (c *Clock) Advance(frames int) {
	if frames <= 0 {
		return
	}
	c.mu.Lock()
	c.frames += int64(frames)
	c.mu.Unlock()
}

// SetTempo changes the tempo without discontinuity in the beat position.
func (c *Clock) SetTempo(bpm float64) {
	if bpm <= 0 {
		return
	}
	c.mu.Lock()
	c.beatBase = c.beatLocked()
	c.framesAtTempo = c.frames
	c.tempo = bpm
	c.mu.Unlock()
}

// Beat returns the current musical beat position.
func (c *Clock) Beat() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.beatLocked()
}

// Tempo returns the current tempo in beats per minute.
func (c *Clock) Tempo() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tempo
}

// SampleRate returns the fixed render sample rate.
func (c *Clock) SampleRate() int {
	return c.sampleRate
}

// Now returns a consistent snapshot of beat, tempo, seconds, and frame.
func (c *Clock) Now() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Beat:    c.beatLocked(),
		Tempo:   c.tempo,
		Seconds: float64(c.frames) / float64(c.sampleRate),
		Frame:   c.frames,
	}
}

func (c *Clock) beatLocked() float64 {
	elapsed := float64(c.frames-c.framesAtTempo) / float64(c.sampleRate)
	return c.beatBase + elapsed*c.tempo/60
}
