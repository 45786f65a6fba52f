// Package engine is the control surface of the runtime. An Engine owns the
// request/notification bus, the worker proxies, the audio beat clock, the
// fader ramp scheduler, the telemetry streamer, and the daughter store, and
// exposes the operations clients call.
//
// Threading contract: every method is control-goroutine-only except
// RampUserFader and UserFaderValue, which one additional goroutine may call,
// and AudioRender, which belongs to the audio callback. Asynchronous
// operations take a caller-supplied positive request id and answer through
// the registered sink; their synchronous counterparts block for at most the
// configured sync timeout and use internal negative ids.
package engine
