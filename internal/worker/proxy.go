package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"cadenza/internal/catalog"
	"cadenza/internal/config"
	"cadenza/internal/logging"
	"cadenza/internal/mother"
	"cadenza/internal/scorekit"
)

// Proxy owns the background workers and routes tasks to their inboxes. The
// control goroutine only ever touches Submit; execution and replies happen on
// the worker goroutines.
type Proxy struct {
	logger    *slog.Logger
	inboxSize int

	download *downloadWorker
	play     *playWorker

	mu      sync.RWMutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	inboxes map[Target]chan Task
}

// Identity supplies the user id preference ops are keyed by. It is a function
// because login can happen after the proxy starts.
type Identity func() string

// NewProxy constructs a proxy over the two workers.
func NewProxy(
	cfg *config.Config,
	logger *slog.Logger,
	completer Completer,
	remote mother.Catalog,
	store *catalog.Store,
	runtime scorekit.Runtime,
	identity Identity,
) *Proxy {
	inboxSize := cfg.Workers.InboxSize
	if inboxSize <= 0 {
		inboxSize = 64
	}
	return &Proxy{
		logger:    logging.NewComponentLogger(logger, "worker"),
		inboxSize: inboxSize,
		download: &downloadWorker{
			logger:    logging.NewComponentLogger(logger, "worker.download"),
			completer: completer,
			remote:    remote,
			store:     store,
			identity:  identity,
		},
		play: &playWorker{
			logger:    logging.NewComponentLogger(logger, "worker.play"),
			completer: completer,
			runtime:   runtime,
		},
	}
}

// Start launches one goroutine per worker. Tasks submitted before Start fail
// with ErrWorkerUnavailable.
func (p *Proxy) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return errors.New("workers already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.running = true
	p.inboxes = map[Target]chan Task{
		TargetDownload: make(chan Task, p.inboxSize),
		TargetPlay:     make(chan Task, p.inboxSize),
	}
	p.wg.Add(2)
	p.mu.Unlock()

	go p.runLane(runCtx, TargetDownload, p.inboxes[TargetDownload], p.download.execute)
	go p.runLane(runCtx, TargetPlay, p.inboxes[TargetPlay], p.play.execute)
	return nil
}

// Stop terminates the workers and waits for in-flight tasks to finish.
// Tasks still queued in an inbox are abandoned; their requests reach the
// client through the bus timeout.
func (p *Proxy) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	cancel := p.cancel
	p.running = false
	p.cancel = nil
	p.inboxes = nil
	p.mu.Unlock()

	cancel()
	p.wg.Wait()
}

// Submit hands a task to the addressed worker. It never blocks: a stopped
// worker or a full inbox reports ErrWorkerUnavailable synchronously, and no
// notification will follow.
func (p *Proxy) Submit(task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.running {
		return fmt.Errorf("%w: workers not started", ErrWorkerUnavailable)
	}
	inbox, ok := p.inboxes[task.Target]
	if !ok {
		return fmt.Errorf("%w: no worker for target %q", ErrWorkerUnavailable, task.Target)
	}
	select {
	case inbox <- task:
		return nil
	default:
		return fmt.Errorf("%w: %s inbox full", ErrWorkerUnavailable, task.Target)
	}
}

type executeFunc func(ctx context.Context, task Task) (any, error)

func (p *Proxy) runLane(ctx context.Context, target Target, inbox chan Task, execute executeFunc) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-inbox:
			p.dispatch(ctx, target, task, execute)
		}
	}
}

func (p *Proxy) dispatch(ctx context.Context, target Target, task Task, execute executeFunc) {
	payload, err := execute(ctx, task)
	if task.RequestID == 0 {
		if err != nil {
			p.logger.Warn("fire-and-forget op failed",
				logging.String(logging.FieldWorker, string(target)),
				logging.String("op", string(task.Op)),
				logging.Error(err))
		}
		return
	}
	completer := p.completerFor(target)
	if err != nil {
		completer.Fail(task.RequestID, err.Error())
		return
	}
	completer.Complete(task.RequestID, payload)
}

func (p *Proxy) completerFor(target Target) Completer {
	if target == TargetPlay {
		return p.play.completer
	}
	return p.download.completer
}
