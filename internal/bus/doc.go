// Package bus correlates client-issued request identifiers to completions and
// fans tagged notifications out to the registered sink.
//
// Requests are issued on the control goroutine; completions arrive from worker
// goroutines and are normalized into Notifications before crossing the thread
// boundary. A single dispatch goroutine drains a bounded channel into the
// active sink, giving at-most-once terminal delivery per request id without
// locks around client code. Each request carries a soft timeout; on expiry the
// bus synthesizes a result:false terminal and discards any late reply.
//
// Unsolicited streams (transport, RMS, currently-playing) go through Publish,
// which never blocks: ticks are dropped under sink backpressure rather than
// queued unboundedly, keeping the audio render path safe.
package bus
