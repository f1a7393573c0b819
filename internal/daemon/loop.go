package daemon

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/eapache/queue"
)

// ErrStopped is returned when work is submitted to a loop that has exited.
var ErrStopped = errors.New("dispatch loop stopped")

// LoopConfig holds configuration for the dispatch loop.
type LoopConfig struct {
	// ProbeInterval drives the responsiveness monitors. Zero disables it.
	ProbeInterval time.Duration
	// FrameInterval drives composition and display link ticks. Zero
	// disables it.
	FrameInterval time.Duration
	Logger        *slog.Logger
}

// Loop is the single serialization point of the server. Every mutation of
// client registries, the connection directory and the compositor runs as a
// task on it, one at a time.
type Loop struct {
	probeInterval time.Duration
	frameInterval time.Duration
	logger        *slog.Logger

	mu      sync.Mutex
	inbox   *queue.Queue
	stopped bool
	wake    chan struct{}
	done    chan struct{}

	onProbe func()
	onFrame func(time.Time)
}

// NewLoop creates a loop. Call Run to start it.
func NewLoop(cfg LoopConfig) *Loop {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		probeInterval: cfg.ProbeInterval,
		frameInterval: cfg.FrameInterval,
		logger:        logger.With("component", "loop"),
		inbox:         queue.New(),
		wake:          make(chan struct{}, 1),
		done:          make(chan struct{}),
	}
}

// OnProbe sets the function run on every probe tick. Must be called before
// Run.
func (l *Loop) OnProbe(fn func()) { l.onProbe = fn }

// OnFrame sets the function run on every frame tick. Must be called before
// Run.
func (l *Loop) OnFrame(fn func(time.Time)) { l.onFrame = fn }

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} { return l.done }

// Post queues fn to run on the loop. It reports false if the loop has
// stopped.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return false
	}
	l.inbox.Add(fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Call runs fn on the loop and waits for it to finish.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrStopped
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		// The task may have run just before shutdown.
		select {
		case <-finished:
			return nil
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending returns the number of queued tasks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inbox.Length()
}

// Run processes tasks and ticks. Blocks until context is cancelled.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)

	var probeC, frameC <-chan time.Time
	if l.probeInterval > 0 && l.onProbe != nil {
		t := time.NewTicker(l.probeInterval)
		defer t.Stop()
		probeC = t.C
	}
	if l.frameInterval > 0 && l.onFrame != nil {
		t := time.NewTicker(l.frameInterval)
		defer t.Stop()
		frameC = t.C
	}

	l.logger.Info("dispatch loop started", "probe_interval", l.probeInterval, "frame_interval", l.frameInterval)

	for {
		l.drain()
		select {
		case <-ctx.Done():
			l.mu.Lock()
			l.stopped = true
			l.mu.Unlock()
			l.drain()
			l.logger.Info("dispatch loop stopped")
			return
		case <-l.wake:
		case <-probeC:
			l.run(l.onProbe)
		case now := <-frameC:
			l.run(func() { l.onFrame(now) })
		}
	}
}

func (l *Loop) drain() {
	for {
		l.mu.Lock()
		if l.inbox.Length() == 0 {
			l.mu.Unlock()
			return
		}
		fn := l.inbox.Remove().(func())
		l.mu.Unlock()
		l.run(fn)
	}
}

func (l *Loop) run(fn func()) {
	// Recover from panics to keep the loop alive
	defer func() {
		if err := recover(); err != nil {
			l.logger.Error("loop task panic recovered", "error", err)
		}
	}()
	fn()
}
