package bus

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"cadenza/internal/logging"
)

// ErrDuplicateRequestID is returned by Issue when the request identifier is
// already in flight. Identifiers may be reused once their request reaches a
// terminal state.
var ErrDuplicateRequestID = errors.New("request id already in flight")

// ErrBusClosed is returned by Issue after Close.
var ErrBusClosed = errors.New("bus closed")

// Handle tracks one in-flight request until its terminal notification.
type Handle struct {
	ID       int64
	Kind     Kind
	IssuedAt time.Time
	Timeout  time.Duration

	tags     []string
	timer    *time.Timer
	terminal chan Notification // buffered 1, receives the terminal notification
	done     bool
}

// Bus correlates client request identifiers to completions and fans out
// tagged notifications to the single registered sink. Completions may arrive
// from any goroutine; delivery happens on a dedicated dispatch goroutine.
type Bus struct {
	logger *slog.Logger

	mu       sync.Mutex
	inflight map[int64]*Handle
	sink     Sink
	closed   bool

	deliver chan Notification
	stop    chan struct{}
	wg      sync.WaitGroup

	dropped atomic.Uint64
}

// New constructs a bus with the given delivery buffer and starts its dispatch
// goroutine. Callers must Close the bus to release it.
func New(buffer int, logger *slog.Logger) *Bus {
	if buffer <= 0 {
		buffer = 256
	}
	b := &Bus{
		logger:   logging.NewComponentLogger(logger, "bus"),
		inflight: make(map[int64]*Handle),
		deliver:  make(chan Notification, buffer),
		stop:     make(chan struct{}),
	}
	b.wg.Add(1)
	go b.dispatch()
	return b
}

// Subscribe replaces the active sink. At most one sink is active; switching
// does not replay past notifications, and anything still queued is delivered
// to whichever sink is active when it drains.
func (b *Bus) Subscribe(sink Sink) {
	b.mu.Lock()
	replaced := b.sink != nil && sink != nil
	b.sink = sink
	b.mu.Unlock()
	if replaced {
		b.logger.Debug("sink replaced", logging.String(logging.FieldEventType, "sink_replaced"))
	}
}

// Issue registers a request. The tags name the terminal notification body so
// the bus can synthesize a failure on timeout without worker cooperation.
func (b *Bus) Issue(id int64, kind Kind, tags []string, timeout time.Duration) (*Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrBusClosed
	}
	if _, exists := b.inflight[id]; exists {
		return nil, ErrDuplicateRequestID
	}
	h := &Handle{
		ID:       id,
		Kind:     kind,
		IssuedAt: time.Now(),
		Timeout:  timeout,
		tags:     append([]string(nil), tags...),
		terminal: make(chan Notification, 1),
	}
	if timeout > 0 {
		h.timer = time.AfterFunc(timeout, func() { b.expire(id) })
	}
	b.inflight[id] = h
	return h, nil
}

// Cancel withdraws an in-flight request without a terminal notification.
// Used when handing the request to a worker fails synchronously, so the
// caller's error return is the only signal the client gets.
func (b *Bus) Cancel(id int64) {
	b.mu.Lock()
	h, ok := b.inflight[id]
	if ok {
		h.done = true
		delete(b.inflight, id)
	}
	b.mu.Unlock()
	if ok && h.timer != nil {
		h.timer.Stop()
	}
}

// Complete resolves a request with a successful payload. Callable from any
// goroutine; the second terminal call for an id is a no-op logged as a
// protocol violation.
func (b *Bus) Complete(id int64, payload any) {
	b.finish(id, payload, "")
}

// Fail resolves a request with a failure. The reason is logged; the wire
// payload is result:false per the notification contract.
func (b *Bus) Fail(id int64, reason string) {
	b.finish(id, false, reason)
}

func (b *Bus) expire(id int64) {
	b.mu.Lock()
	h, ok := b.inflight[id]
	if !ok || h.done {
		b.mu.Unlock()
		return
	}
	h.done = true
	delete(b.inflight, id)
	b.mu.Unlock()

	b.logger.Warn("request timed out",
		logging.Int64(logging.FieldRequestID, id),
		logging.String("kind", string(h.Kind)),
		logging.Duration("timeout", h.Timeout),
		logging.String(logging.FieldEventType, "request_timeout"),
		logging.String(logging.FieldErrorHint, "worker did not reply in time; late replies are discarded"))

	n := solicited(h.tags, id, false)
	h.terminal <- n
	b.enqueue(n, true)
}

func (b *Bus) finish(id int64, payload any, failReason string) {
	b.mu.Lock()
	h, ok := b.inflight[id]
	if !ok || h.done {
		b.mu.Unlock()
		b.logger.Warn("terminal for unknown or completed request",
			logging.Int64(logging.FieldRequestID, id),
			logging.String(logging.FieldEventType, "protocol_violation"),
			logging.String(logging.FieldErrorHint, "duplicate completion or reply after timeout"))
		return
	}
	h.done = true
	delete(b.inflight, id)
	b.mu.Unlock()

	if h.timer != nil {
		h.timer.Stop()
	}
	if failReason != "" {
		b.logger.Debug("request failed",
			logging.Int64(logging.FieldRequestID, id),
			logging.String("reason", failReason))
	}

	n := solicited(h.tags, id, payload)
	h.terminal <- n
	b.enqueue(n, true)
}

// Publish delivers an unsolicited stream notification. It never blocks: when
// the delivery buffer is full the notification is dropped and counted, so the
// audio path can emit telemetry without risk of stalling.
func (b *Bus) Publish(n Notification) {
	b.enqueue(n, false)
}

// Dropped reports how many unsolicited notifications were discarded because
// the sink could not keep up.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

func (b *Bus) enqueue(n Notification, block bool) {
	if block {
		// Terminal notifications must not be lost; blocking here stalls a
		// worker goroutine at worst, never the control or audio path.
		select {
		case b.deliver <- n:
		case <-b.stop:
		}
		return
	}
	select {
	case b.deliver <- n:
	default:
		if b.dropped.Add(1)%64 == 1 {
			b.logger.Warn("dropping stream notifications",
				logging.Uint64("dropped_total", b.dropped.Load()),
				logging.String(logging.FieldEventType, "sink_backpressure"),
				logging.String(logging.FieldImpact, "telemetry ticks are being discarded"),
				logging.String(logging.FieldErrorHint, "sink is too slow; raise bus.delivery_buffer or speed up the sink"))
		}
	}
}

func (b *Bus) dispatch() {
	defer b.wg.Done()
	for {
		select {
		case n := <-b.deliver:
			b.mu.Lock()
			sink := b.sink
			b.mu.Unlock()
			if sink != nil {
				sink.Deliver(n)
			}
		case <-b.stop:
			// Drain what is already queued before exiting.
			for {
				select {
				case n := <-b.deliver:
					b.mu.Lock()
					sink := b.sink
					b.mu.Unlock()
					if sink != nil {
						sink.Deliver(n)
					}
				default:
					return
				}
			}
		}
	}
}

// Wait blocks until the request reaches a terminal notification or the
// context expires. Used by the synchronous wrapper operations.
func (h *Handle) Wait(ctx context.Context) (Notification, error) {
	select {
	case n := <-h.terminal:
		return n, nil
	case <-ctx.Done():
		return Notification{}, ctx.Err()
	}
}

// Close fails all in-flight requests, drains queued deliveries, and stops the
// dispatch goroutine.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	pending := make([]*Handle, 0, len(b.inflight))
	for _, h := range b.inflight {
		pending = append(pending, h)
	}
	b.inflight = make(map[int64]*Handle)
	b.mu.Unlock()

	for _, h := range pending {
		if h.timer != nil {
			h.timer.Stop()
		}
		h.done = true
		n := solicited(h.tags, h.ID, false)
		h.terminal <- n
		select {
		case b.deliver <- n:
		default:
		}
	}

	close(b.stop)
	b.wg.Wait()
}
