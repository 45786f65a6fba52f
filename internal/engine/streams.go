package engine

import "cadenza/internal/telemetry"

// StartTransportMsgs begins the ["beat","transport"] stream at beatPeriod
// beat subdivisions. Starting twice without a stop updates the period only.
func (e *Engine) StartTransportMsgs(beatPeriod float64) {
	e.streamer.Start(telemetry.StreamTransport, beatPeriod)
}

// StopTransportMsgs halts the transport stream before its next tick.
func (e *Engine) StopTransportMsgs() {
	e.streamer.Stop(telemetry.StreamTransport)
}

// StartRMSMsgs begins the ["rms","logger"] per-group level stream.
func (e *Engine) StartRMSMsgs(beatPeriod float64) {
	e.streamer.Start(telemetry.StreamRMS, beatPeriod)
}

// StopRMSMsgs halts the RMS stream before its next tick.
func (e *Engine) StopRMSMsgs() {
	e.streamer.Stop(telemetry.StreamRMS)
}

// SetTempo changes the clock tempo without a beat discontinuity.
func (e *Engine) SetTempo(bpm float64) {
	e.clk.SetTempo(bpm)
}

// Tempo reports the current tempo in beats per minute.
func (e *Engine) Tempo() float64 {
	return e.clk.Tempo()
}

// Beat reports the current musical beat position.
func (e *Engine) Beat() float64 {
	return e.clk.Beat()
}
