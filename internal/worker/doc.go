// Package worker runs the two background workers behind the control API: the
// download worker, which executes catalog sync and preference ops against
// mother and the daughter store, and the play worker, which serves score and
// playback queries against the score runtime.
//
// The Proxy is the only surface the control goroutine sees. Submit hands a
// task to a bounded per-worker inbox and never blocks; when the worker is not
// running or its inbox is full it returns ErrWorkerUnavailable synchronously
// and no notification follows. Worker replies travel exclusively through the
// bus as tagged notifications.
package worker
