// Package telemetry streams transport (beat/tempo) and per-group RMS
// notifications at a configurable beat subdivision, driven by the audio
// clock. Ticks are published through the bus's non-blocking path so the
// render call can never stall on a slow sink.
package telemetry
