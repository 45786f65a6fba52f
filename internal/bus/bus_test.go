package bus_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"cadenza/internal/bus"
	"cadenza/internal/logging"
)

type capturingSink struct {
	mu            sync.Mutex
	notifications []bus.Notification
	arrived       chan struct{}
}

func newCapturingSink() *capturingSink {
	return &capturingSink{arrived: make(chan struct{}, 256)}
}

func (s *capturingSink) Deliver(n bus.Notification) {
	s.mu.Lock()
	s.notifications = append(s.notifications, n)
	s.mu.Unlock()
	s.arrived <- struct{}{}
}

func (s *capturingSink) waitFor(t *testing.T, count int) []bus.Notification {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		s.mu.Lock()
		have := len(s.notifications)
		s.mu.Unlock()
		if have >= count {
			break
		}
		select {
		case <-s.arrived:
		case <-deadline:
			t.Fatalf("timed out waiting for %d notifications, have %d", count, have)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]bus.Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}

func TestCompleteDeliversExactlyOneTerminal(t *testing.T) {
	b := bus.New(16, logging.NewNop())
	defer b.Close()
	sink := newCapturingSink()
	b.Subscribe(sink)

	h, err := b.Issue(42, bus.KindDownload, []string{"download", "experiences"}, time.Minute)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	b.Complete(42, true)
	// Second completion is a protocol violation: logged, not delivered.
	b.Complete(42, true)
	b.Fail(42, "late")

	got := sink.waitFor(t, 1)
	time.Sleep(50 * time.Millisecond)
	got = sink.waitFor(t, 1)
	if len(got) != 1 {
		t.Fatalf("expected exactly one terminal, got %d", len(got))
	}
	n := got[0]
	if n.RequestID == nil || *n.RequestID != 42 {
		t.Fatalf("unexpected request id: %#v", n.RequestID)
	}
	if n.Result != true {
		t.Fatalf("expected result true, got %#v", n.Result)
	}

	// The handle observes the same terminal.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	terminal, err := h.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if terminal.Result != true {
		t.Fatalf("handle saw %#v", terminal.Result)
	}
}

func TestDuplicateRequestIDRejectedUntilTerminal(t *testing.T) {
	b := bus.New(16, logging.NewNop())
	defer b.Close()
	b.Subscribe(newCapturingSink())

	if _, err := b.Issue(7, bus.KindLocalQuery, []string{"response"}, time.Minute); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, err := b.Issue(7, bus.KindLocalQuery, []string{"response"}, time.Minute); !errors.Is(err, bus.ErrDuplicateRequestID) {
		t.Fatalf("expected ErrDuplicateRequestID, got %v", err)
	}

	b.Complete(7, "done")

	// Terminal reached: the id is free for reuse.
	if _, err := b.Issue(7, bus.KindLocalQuery, []string{"response"}, time.Minute); err != nil {
		t.Fatalf("reuse after terminal failed: %v", err)
	}
}

func TestTimeoutSynthesizesFailureAndDiscardsLateReply(t *testing.T) {
	b := bus.New(16, logging.NewNop())
	defer b.Close()
	sink := newCapturingSink()
	b.Subscribe(sink)

	_, err := b.Issue(9, bus.KindDownload, []string{"download", "metadata"}, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	got := sink.waitFor(t, 1)
	n := got[0]
	if n.Result != false {
		t.Fatalf("expected synthesized result false, got %#v", n.Result)
	}
	if n.RequestID == nil || *n.RequestID != 9 {
		t.Fatalf("unexpected request id: %#v", n.RequestID)
	}

	// Late worker reply after the timeout must not reach the sink.
	b.Complete(9, true)
	time.Sleep(50 * time.Millisecond)
	if all := sink.waitFor(t, 1); len(all) != 1 {
		t.Fatalf("late reply leaked: %d notifications", len(all))
	}
}

func TestCancelProducesNoNotification(t *testing.T) {
	b := bus.New(16, logging.NewNop())
	defer b.Close()
	sink := newCapturingSink()
	b.Subscribe(sink)

	if _, err := b.Issue(3, bus.KindScoreQuery, []string{"score"}, 20*time.Millisecond); err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	b.Cancel(3)

	// Neither a completion nor the timeout may fire for a cancelled request.
	time.Sleep(60 * time.Millisecond)
	sink.mu.Lock()
	count := len(sink.notifications)
	sink.mu.Unlock()
	if count != 0 {
		t.Fatalf("cancelled request produced %d notifications", count)
	}

	// The id is free again.
	if _, err := b.Issue(3, bus.KindScoreQuery, []string{"score"}, time.Minute); err != nil {
		t.Fatalf("reuse after cancel failed: %v", err)
	}
}

func TestPublishDropsOnBackpressureWithoutBlocking(t *testing.T) {
	b := bus.New(2, logging.NewNop())
	defer b.Close()

	block := make(chan struct{})
	released := false
	b.Subscribe(bus.SinkFunc(func(bus.Notification) {
		if !released {
			<-block
			released = true
		}
	}))

	// Prime the dispatcher with one blocking delivery, then overfill.
	b.Publish(bus.Unsolicited([]string{"beat", "transport"}, 0))
	for i := 0; i < 100; i++ {
		b.Publish(bus.Unsolicited([]string{"beat", "transport"}, i))
	}
	close(block)

	if b.Dropped() == 0 {
		t.Fatal("expected dropped stream notifications under backpressure")
	}
}

func TestSubscribeReplacesSinkWithoutReplay(t *testing.T) {
	b := bus.New(16, logging.NewNop())
	defer b.Close()

	first := newCapturingSink()
	b.Subscribe(first)
	b.Publish(bus.Unsolicited([]string{"beat", "transport"}, 1))
	first.waitFor(t, 1)

	second := newCapturingSink()
	b.Subscribe(second)
	b.Publish(bus.Unsolicited([]string{"beat", "transport"}, 2))
	got := second.waitFor(t, 1)
	if len(got) != 1 {
		t.Fatalf("expected only post-switch notifications, got %d", len(got))
	}
}

func TestNotificationWireFormat(t *testing.T) {
	id := int64(228)
	n := bus.Notification{
		Tags:      []string{"download", "experiences"},
		RequestID: &id,
		Result:    true,
		Timestamp: time.Now(),
	}
	data, err := n.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded["request"] != float64(228) {
		t.Fatalf("expected request 228, got %#v", decoded["request"])
	}
	if _, hasTimestamp := decoded["timestamp"]; hasTimestamp {
		t.Fatal("timestamp must not appear on the wire")
	}

	stream := bus.Unsolicited([]string{"rms", "logger"}, map[string]any{"beat": 1.0})
	data, err = stream.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	decoded = map[string]any{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, hasRequest := decoded["request"]; hasRequest {
		t.Fatal("unsolicited notifications must omit request")
	}
}

func TestCloseFailsInFlightRequests(t *testing.T) {
	b := bus.New(16, logging.NewNop())
	sink := newCapturingSink()
	b.Subscribe(sink)

	h, err := b.Issue(11, bus.KindDownload, []string{"download", "artists"}, time.Minute)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	b.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	n, err := h.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait after close failed: %v", err)
	}
	if n.Result != false {
		t.Fatalf("expected failure terminal on close, got %#v", n.Result)
	}

	if _, err := b.Issue(12, bus.KindDownload, nil, time.Minute); !errors.Is(err, bus.ErrBusClosed) {
		t.Fatalf("expected ErrBusClosed, got %v", err)
	}
}
