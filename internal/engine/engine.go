package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"cadenza/internal/bus"
	"cadenza/internal/catalog"
	"cadenza/internal/clock"
	"cadenza/internal/config"
	"cadenza/internal/logging"
	"cadenza/internal/mother"
	"cadenza/internal/ramp"
	"cadenza/internal/scorekit"
	"cadenza/internal/telemetry"
	"cadenza/internal/worker"
)

// ErrAlreadyRunning reports that another engine instance holds the working
// directory lock.
var ErrAlreadyRunning = errors.New("another instance is already running")

// Engine owns the coordination fabric: the bus, the worker proxies, the
// audio clock, the fader scheduler, the telemetry streamer, and the stores.
// All methods except RampUserFader, UserFaderValue, and AudioRender must be
// called from the single control goroutine.
type Engine struct {
	cfg       *config.Config
	logger    *slog.Logger
	sessionID string

	lock     *flock.Flock
	notifier *bus.Bus
	store    *catalog.Store
	remote   *mother.Client
	proxy    *worker.Proxy
	clk      *clock.Clock
	faders   *ramp.Scheduler
	meter    *telemetry.GroupMeter
	streamer *telemetry.Streamer

	runtime    scorekit.Runtime
	source     RenderSource
	notifySink *ndjsonSink
	cancel     context.CancelFunc

	// internalID mints request ids for the synchronous wrappers; they count
	// down from -1 so they can never collide with client-supplied ids, which
	// are positive by convention.
	internalID atomic.Int64

	authMu      sync.Mutex
	userID      string
	directEmail string
	directPW    string

	closed bool
}

// Option configures optional engine collaborators.
type Option func(*Engine)

// WithRuntime injects the score runtime the play worker queries. Without it
// the engine runs against a detached fake.
func WithRuntime(rt scorekit.Runtime) Option {
	return func(e *Engine) { e.runtime = rt }
}

// WithRenderSource injects the audio generator AudioRender pulls from.
func WithRenderSource(src RenderSource) Option {
	return func(e *Engine) { e.source = src }
}

// New builds and starts the engine: it locks the working directory, opens the
// daughter store, connects the mother client, and launches the workers.
// Close releases everything.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, errors.New("engine requires a config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	e := &Engine{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "engine"),
		sessionID: uuid.NewString(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	if err := unix.Access(cfg.Paths.WorkingDir, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return nil, fmt.Errorf("working directory %s not writable: %w", cfg.Paths.WorkingDir, err)
	}

	e.lock = flock.New(cfg.LockPath())
	locked, err := e.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w (lock file %s)", ErrAlreadyRunning, cfg.LockPath())
	}

	store, err := catalog.Open(cfg)
	if err != nil {
		e.unlock()
		return nil, err
	}
	e.store = store

	remote, err := mother.New(cfg.Mother.Endpoint, cfg.Mother.Role,
		time.Duration(cfg.Mother.RequestTimeout)*time.Second)
	if err != nil {
		_ = store.Close()
		e.unlock()
		return nil, err
	}
	e.remote = remote

	e.notifier = bus.New(cfg.Bus.DeliveryBuffer, logger)
	e.clk = clock.New(cfg.Audio.SampleRate, cfg.Audio.DefaultTempo)
	e.faders = ramp.NewScheduler()
	e.meter = telemetry.NewGroupMeter()
	e.streamer = telemetry.NewStreamer(e.clk, e.meter, e.notifier, logger)

	if e.runtime == nil {
		e.runtime = scorekit.NewFakeRuntime(nil, nil)
	}
	e.proxy = worker.NewProxy(cfg, logger, e.notifier, e.remote, e.store, e.runtime, e.identity)

	runCtx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	if err := e.proxy.Start(runCtx); err != nil {
		cancel()
		e.notifier.Close()
		_ = store.Close()
		e.unlock()
		return nil, err
	}

	if cfg.Paths.NotifySocketPath != "" {
		sink, err := newNDJSONSink(cfg.Paths.NotifySocketPath)
		if err != nil {
			e.logger.Warn("notify sink unavailable",
				logging.String("path", cfg.Paths.NotifySocketPath),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "notifications are discarded until SetSink is called"))
		} else {
			e.notifySink = sink
			e.notifier.Subscribe(sink)
		}
	}

	e.logger.Info("engine started",
		logging.String("session_id", e.sessionID),
		logging.String("db", e.store.Path()),
		logging.Int("sample_rate", cfg.Audio.SampleRate))
	return e, nil
}

// SessionID identifies this engine instance in logs and status output.
func (e *Engine) SessionID() string {
	return e.sessionID
}

// Status is a point-in-time snapshot for the control surface.
type Status struct {
	SessionID            string
	UserID               string
	Beat                 float64
	Tempo                float64
	SampleRate           int
	DroppedNotifications uint64
}

// Status reports the running state for status queries over IPC.
func (e *Engine) Status() Status {
	return Status{
		SessionID:            e.sessionID,
		UserID:               e.identity(),
		Beat:                 e.clk.Beat(),
		Tempo:                e.clk.Tempo(),
		SampleRate:           e.clk.SampleRate(),
		DroppedNotifications: e.notifier.Dropped(),
	}
}

// SetSink registers the notification consumer, replacing any previous one
// (including the NDJSON file sink).
func (e *Engine) SetSink(sink bus.Sink) {
	e.notifier.Subscribe(sink)
}

// Close stops the workers, fails in-flight requests, and releases the store
// and the instance lock.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true

	e.cancel()
	e.proxy.Stop()
	e.notifier.Close()
	if e.notifySink != nil {
		_ = e.notifySink.Close()
	}
	err := e.store.Close()
	e.unlock()
	e.logger.Info("engine stopped", logging.String("session_id", e.sessionID))
	return err
}

func (e *Engine) unlock() {
	if e.lock != nil {
		_ = e.lock.Unlock()
		_ = os.Remove(e.cfg.LockPath())
	}
}

func (e *Engine) identity() string {
	e.authMu.Lock()
	defer e.authMu.Unlock()
	return e.userID
}

func (e *Engine) requestTimeout() time.Duration {
	return time.Duration(e.cfg.Bus.RequestTimeout) * time.Second
}

func (e *Engine) syncTimeout() time.Duration {
	return time.Duration(e.cfg.Workers.SyncTimeout) * time.Second
}

// submitAsync issues the request on the bus and hands the task to its worker.
// When the worker cannot accept the task the request is withdrawn, so the
// returned error is the only signal the caller gets.
func (e *Engine) submitAsync(requestID int64, kind bus.Kind, task worker.Task) error {
	if _, err := e.notifier.Issue(requestID, kind, task.Op.Tags(), e.requestTimeout()); err != nil {
		return err
	}
	task.RequestID = requestID
	if err := e.proxy.Submit(task); err != nil {
		e.notifier.Cancel(requestID)
		return err
	}
	return nil
}

// call runs an op synchronously: issue with an internal id, submit, block
// until the terminal notification or the sync timeout. The result is the
// notification payload; a timeout returns the zero value and no error, per
// the bounded-blocking contract of the synchronous surface.
func (e *Engine) call(kind bus.Kind, task worker.Task) (any, error) {
	id := e.internalID.Add(-1)
	h, err := e.notifier.Issue(id, kind, task.Op.Tags(), e.syncTimeout())
	if err != nil {
		return nil, err
	}
	task.RequestID = id
	if err := e.proxy.Submit(task); err != nil {
		e.notifier.Cancel(id)
		return nil, err
	}

	ctx, cancelWait := context.WithTimeout(context.Background(), e.syncTimeout()+time.Second)
	defer cancelWait()
	n, err := h.Wait(ctx)
	if err != nil {
		return nil, nil
	}
	if ok, isBool := n.Result.(bool); isBool && !ok {
		return nil, fmt.Errorf("%s failed", task.Op)
	}
	return n.Result, nil
}

// fire submits a fire-and-forget op; errors surface synchronously only.
func (e *Engine) fire(task worker.Task) error {
	return e.proxy.Submit(task)
}
