// Package ramp schedules beat-quantized linear ramps for the seven per-track
// user faders. State is mutated only under the scheduler lock, so the audio
// render path, the control goroutine, and the one sanctioned non-control
// caller all see consistent values.
package ramp
