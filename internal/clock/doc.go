// Package clock derives musical time (beats, tempo) from the count of audio
// frames the client has pulled through AudioRender. The ramp scheduler and
// telemetry streamer are both driven from it.
package clock
