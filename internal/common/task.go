package common

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrTaskRunning is returned by Task.Run when the task is already active.
var ErrTaskRunning = errors.New("task already running")

// TaskFunc is the body of a Task. It must return once ctx is cancelled.
type TaskFunc func(ctx context.Context) error

// Task is a restartable, cancelable unit of work with its own lifecycle.
// The same body can be awaited inline with Run or dispatched to a goroutine
// with Start; Stop cancels it and waits for the body to return.
type Task struct {
	name   string
	logger zerolog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
	lastErr error
}

// NewTask creates a stopped task.
func NewTask(name string, logger zerolog.Logger) *Task {
	done := make(chan struct{})
	close(done)
	return &Task{
		name:   name,
		logger: logger.With().Str("task", name).Logger(),
		done:   done,
	}
}

// Name returns the task name
func (t *Task) Name() string {
	return t.name
}

// Start dispatches fn to a background goroutine. It returns false when the
// task is already running.
func (t *Task) Start(parent context.Context, fn TaskFunc) bool {
	ctx, done, ok := t.begin(parent)
	if !ok {
		return false
	}
	go t.execute(ctx, done, fn)
	return true
}

// Run executes fn on the calling goroutine and blocks until it returns.
func (t *Task) Run(parent context.Context, fn TaskFunc) error {
	ctx, done, ok := t.begin(parent)
	if !ok {
		return ErrTaskRunning
	}
	return t.execute(ctx, done, fn)
}

// Stop cancels the task and waits up to timeout for it to finish. A zero
// timeout waits indefinitely. It reports whether the task has finished.
func (t *Task) Stop(timeout time.Duration) bool {
	t.mu.Lock()
	cancel := t.cancel
	done := t.done
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return waitDone(done, timeout)
}

// Wait blocks until the current run finishes or timeout elapses.
func (t *Task) Wait(timeout time.Duration) bool {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()
	return waitDone(done, timeout)
}

// Done returns a channel closed when the current run finishes.
func (t *Task) Done() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

// IsRunning reports whether the task body is executing.
func (t *Task) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Err returns the error of the last finished run, if any. Cancellation is
// not an error.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastErr
}

func (t *Task) begin(parent context.Context) (context.Context, chan struct{}, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		t.logger.Debug().Msg("Task already running")
		return nil, nil, false
	}
	if parent == nil {
		parent = context.Background()
	}

	ctx, cancel := context.WithCancel(parent)
	t.running = true
	t.cancel = cancel
	t.done = make(chan struct{})
	t.lastErr = nil
	t.logger.Debug().Msg("Task started")
	return ctx, t.done, true
}

func (t *Task) execute(ctx context.Context, done chan struct{}, fn TaskFunc) error {
	err := fn(ctx)
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	t.mu.Lock()
	t.running = false
	t.lastErr = err
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	close(done)
	t.mu.Unlock()

	if err != nil {
		t.logger.Error().Err(err).Msg("Task finished with error")
	} else {
		t.logger.Debug().Msg("Task finished")
	}
	return err
}

func waitDone(done <-chan struct{}, timeout time.Duration) bool {
	if timeout <= 0 {
		<-done
		return true
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}
