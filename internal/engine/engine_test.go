package engine_test

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"cadenza/internal/bus"
	"cadenza/internal/config"
	"cadenza/internal/engine"
	"cadenza/internal/logging"
	"cadenza/internal/ramp"
	"cadenza/internal/testsupport"
)

type capturingSink struct {
	mu            sync.Mutex
	notifications []bus.Notification
	arrived       chan struct{}
}

func newCapturingSink() *capturingSink {
	return &capturingSink{arrived: make(chan struct{}, 1024)}
}

func (s *capturingSink) Deliver(n bus.Notification) {
	s.mu.Lock()
	s.notifications = append(s.notifications, n)
	s.mu.Unlock()
	select {
	case s.arrived <- struct{}{}:
	default:
	}
}

func (s *capturingSink) snapshot() []bus.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]bus.Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}

func (s *capturingSink) waitForRequest(t *testing.T, requestID int64) bus.Notification {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		for _, n := range s.snapshot() {
			if n.RequestID != nil && *n.RequestID == requestID {
				return n
			}
		}
		select {
		case <-s.arrived:
		case <-deadline:
			t.Fatalf("timed out waiting for terminal of request %d", requestID)
		}
	}
}

func catalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/experiences", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"experiences": []map[string]any{
				{"id": 228, "title": "Deep Focus", "artist_id": 4},
				{"id": 301, "title": "Night Drive", "artist_id": 7},
			},
		})
	})
	mux.HandleFunc("/api/v1/artists", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"artists": []map[string]any{{"id": 4, "name": "Aria"}},
		})
	})
	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"token": "jwt", "user_id": "user-9"})
	})
	mux.HandleFunc("/api/v1/users/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		http.NotFound(w, r)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newEngine(t *testing.T, opts ...testsupport.ConfigOption) (*engine.Engine, *config.Config) {
	t.Helper()
	server := catalogServer(t)
	cfg := testsupport.NewConfig(t, append(opts, testsupport.WithMotherEndpoint(server.URL))...)
	e, err := engine.New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	t.Cleanup(func() { _ = e.Close() })
	return e, cfg
}

func TestAsyncCatalogOpDeliversTaggedTerminal(t *testing.T) {
	e, _ := newEngine(t)
	sink := newCapturingSink()
	e.SetSink(sink)
	e.SetLoginToken("jwt", "user-9")

	if err := e.CacheExperienceList(101); err != nil {
		t.Fatalf("CacheExperienceList failed: %v", err)
	}

	n := sink.waitForRequest(t, 101)
	if len(n.Tags) != 2 || n.Tags[0] != "download" || n.Tags[1] != "experiences" {
		t.Fatalf("unexpected tags: %v", n.Tags)
	}
	if n.Result != true {
		t.Fatalf("expected result true, got %#v", n.Result)
	}
}

func TestDuplicateRequestIDRejected(t *testing.T) {
	e, _ := newEngine(t)
	sink := newCapturingSink()
	e.SetSink(sink)

	if err := e.CurrentlyPlayingSection(55); err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	err := e.CurrentlyPlayingSection(55)
	if err == nil {
		// The first request may have already completed; only then is reuse
		// legal, and the second call must itself complete.
		sink.waitForRequest(t, 55)
		return
	}
	if !errors.Is(err, bus.ErrDuplicateRequestID) {
		t.Fatalf("expected ErrDuplicateRequestID, got %v", err)
	}
}

func TestSyncCatalogReadAfterCache(t *testing.T) {
	e, _ := newEngine(t)
	sink := newCapturingSink()
	e.SetSink(sink)
	e.SetLoginToken("jwt", "user-9")

	if err := e.CacheExperienceList(1); err != nil {
		t.Fatalf("CacheExperienceList failed: %v", err)
	}
	sink.waitForRequest(t, 1)

	result, err := e.ExperiencesGetAll(false)
	if err != nil {
		t.Fatalf("ExperiencesGetAll failed: %v", err)
	}
	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("result not JSON-encodable: %v", err)
	}
	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		t.Fatalf("unexpected result shape: %v", err)
	}
	if len(rows) != 2 || rows[0]["title"] != "Deep Focus" {
		t.Fatalf("unexpected listing: %#v", rows)
	}
}

func TestAudioRenderDrivesClockAndTelemetry(t *testing.T) {
	e, _ := newEngine(t, testsupport.WithSampleRate(48000))
	sink := newCapturingSink()
	e.SetSink(sink)

	e.StartTransportMsgs(0.25)

	// Render 2 seconds at 48kHz / 120 bpm = 4 beats, in callback-sized pulls.
	buf := make([]float32, 2*480)
	for rendered := 0; rendered < 2*48000; rendered += 480 {
		if err := e.AudioRender(buf, 480); err != nil {
			t.Fatalf("AudioRender failed: %v", err)
		}
	}
	if got := e.Beat(); got < 3.999 || got > 4.001 {
		t.Fatalf("expected beat 4.0 after 2s, got %v", got)
	}

	// Give the dispatch goroutine a moment to drain.
	deadline := time.After(5 * time.Second)
	for {
		ticks := 0
		for _, n := range sink.snapshot() {
			if len(n.Tags) > 0 && n.Tags[0] == "beat" {
				ticks++
			}
		}
		if ticks == 16 {
			break
		}
		if ticks > 16 {
			t.Fatalf("too many ticks: %d", ticks)
		}
		select {
		case <-sink.arrived:
		case <-deadline:
			t.Fatalf("expected 16 transport ticks, got %d", ticks)
		}
	}

	e.StopTransportMsgs()
}

func TestFaderRampAgainstAudioClock(t *testing.T) {
	e, _ := newEngine(t, testsupport.WithSampleRate(48000))

	// Immediate set.
	if err := e.RampUserFader(2, 0.5, 0); err != nil {
		t.Fatalf("RampUserFader failed: %v", err)
	}
	v, err := e.UserFaderValue(2)
	if err != nil {
		t.Fatalf("UserFaderValue failed: %v", err)
	}
	if v != 0.5 {
		t.Fatalf("expected 0.5, got %v", v)
	}

	// Ramp 0.5 -> 1.0 over 2 beats; render 1 beat (0.5s at 120 bpm).
	if err := e.RampUserFader(2, 1.0, 2.0); err != nil {
		t.Fatalf("RampUserFader failed: %v", err)
	}
	buf := make([]float32, 2*480)
	for rendered := 0; rendered < 24000; rendered += 480 {
		if err := e.AudioRender(buf, 480); err != nil {
			t.Fatalf("AudioRender failed: %v", err)
		}
	}
	v, err = e.UserFaderValue(2)
	if err != nil {
		t.Fatalf("UserFaderValue failed: %v", err)
	}
	if v < 0.74 || v > 0.76 {
		t.Fatalf("expected midpoint near 0.75, got %v", v)
	}

	if err := e.RampUserFader(ramp.TrackCount, 1.0, 1.0); !errors.Is(err, ramp.ErrInvalidTrack) {
		t.Fatalf("expected ErrInvalidTrack, got %v", err)
	}
}

func TestThumbsOnTrackRejectsOutOfRangeIndex(t *testing.T) {
	e, _ := newEngine(t)

	if err := e.ScoreThumbsUpOnTrack(ramp.TrackCount); !errors.Is(err, ramp.ErrInvalidTrack) {
		t.Fatalf("expected ErrInvalidTrack, got %v", err)
	}
	if err := e.ScoreThumbsDownOnTrack(-1); !errors.Is(err, ramp.ErrInvalidTrack) {
		t.Fatalf("expected ErrInvalidTrack, got %v", err)
	}
	if err := e.SystemThumbsUpOnTrack(99); !errors.Is(err, ramp.ErrInvalidTrack) {
		t.Fatalf("expected ErrInvalidTrack, got %v", err)
	}
	if err := e.SystemThumbsDownOnTrack(-1); !errors.Is(err, ramp.ErrInvalidTrack) {
		t.Fatalf("expected ErrInvalidTrack, got %v", err)
	}

	if err := e.ScoreThumbsUpOnTrack(0); err != nil {
		t.Fatalf("valid track rejected: %v", err)
	}
	if err := e.SystemThumbsDownOnTrack(ramp.TrackCount - 1); err != nil {
		t.Fatalf("valid track rejected: %v", err)
	}
}

func TestDirectLoginEnablesPreferenceOps(t *testing.T) {
	e, _ := newEngine(t)
	e.SetDirectLoginEmail("ci@example.com")
	e.SetDirectLoginPW("secret")

	userID, err := e.DirectLogin(context.Background())
	if err != nil {
		t.Fatalf("DirectLogin failed: %v", err)
	}
	if userID != "user-9" {
		t.Fatalf("unexpected user id %q", userID)
	}

	ctx := context.Background()
	if err := e.SetUserPreference(ctx, "experiences.228.favorite", true); err != nil {
		t.Fatalf("SetUserPreference failed: %v", err)
	}
	value, err := e.UserPreference("experiences.228.favorite")
	if err != nil {
		t.Fatalf("UserPreference failed: %v", err)
	}
	if value != true {
		t.Fatalf("expected true, got %#v", value)
	}

	if err := e.ClearUserPreference(ctx, "experiences.228.favorite"); err != nil {
		t.Fatalf("ClearUserPreference failed: %v", err)
	}
	value, err = e.UserPreference("experiences.228.favorite")
	if err != nil {
		t.Fatalf("UserPreference after clear failed: %v", err)
	}
	if value != nil {
		t.Fatalf("expected cleared preference, got %#v", value)
	}
}

func TestSecondInstanceRejected(t *testing.T) {
	server := catalogServer(t)
	cfg := testsupport.NewConfig(t, testsupport.WithMotherEndpoint(server.URL))

	first, err := engine.New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	defer first.Close()

	_, err = engine.New(cfg, logging.NewNop())
	if !errors.Is(err, engine.ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestNotifySinkWritesNDJSON(t *testing.T) {
	e, cfg := newEngine(t, testsupport.WithNotifySink())
	notifyPath := cfg.Paths.NotifySocketPath
	e.SetLoginToken("jwt", "user-9")

	if err := e.CacheArtistList(77); err != nil {
		t.Fatalf("CacheArtistList failed: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		file, err := os.Open(notifyPath)
		if err == nil {
			scanner := bufio.NewScanner(file)
			for scanner.Scan() {
				var decoded map[string]any
				if err := json.Unmarshal(scanner.Bytes(), &decoded); err != nil {
					t.Fatalf("invalid NDJSON line: %v", err)
				}
				if decoded["request"] == float64(77) {
					_ = file.Close()
					return
				}
			}
			_ = file.Close()
		}
		if time.Now().After(deadline) {
			t.Fatal("terminal notification never reached the NDJSON sink")
		}
		time.Sleep(20 * time.Millisecond)
	}
}
