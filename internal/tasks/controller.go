package tasks

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/ericfjmnz/encore/internal/shared"
)

// State enumerates the task controller's state machine:
// Idle -> Running -> {Succeeded | Failed | Cancelled} -> Idle.
type State int

const (
	Idle State = iota
	Running
	Succeeded
	Failed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	default:
		return ""
	}
}

// TaskResult is the payload of a successfully completed curation task.
type TaskResult struct {
	PlaylistIDs []string // Identifiers of every playlist created
	Matched     int      // Items that resolved to a track
	Requested   int      // Items the task set out to resolve
}

// TaskFunc is one runnable curation pipeline. Implementations observe ctx at
// every suspension point and call report for progress updates.
type TaskFunc func(ctx context.Context, report func(ProgressUpdate)) (*TaskResult, error)

// Status is a point-in-time snapshot of the controller. Callers only ever see
// copies; the controller owns all mutable task state.
type Status struct {
	State    State
	Kind     string
	Progress int
	Message  string
	Result   *TaskResult // Retained until the next Start or Dismiss; partial on failure
	Reason   string      // Short human-readable failure reason
}

// Controller runs long-running curation tasks one at a time.
//
// Mutual exclusion is global across task kinds: starting a task while another
// is running is rejected with [shared.ErrTaskRunning], never queued.
// Cancellation is cooperative via the task's context.
type Controller struct {
	mu     sync.Mutex
	logger *log.Logger
	status Status
	cancel context.CancelFunc
	done   chan struct{}
}

// NewController creates an idle Controller.
func NewController(logger *log.Logger) *Controller {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Controller{logger: logger, status: Status{State: Idle}}
}

// Start launches fn under a cancellable child of ctx.
//
// Progress updates are forwarded to the progress channel without blocking;
// when the channel is full the update is dropped, never the task. Returns
// [shared.ErrTaskRunning] if a task is already running, leaving it unaffected.
func (c *Controller) Start(ctx context.Context, kind string, fn TaskFunc, progress chan<- ProgressUpdate) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status.State == Running {
		return shared.ErrTaskRunning
	}

	taskCtx, cancel := context.WithCancel(ctx)
	c.status = Status{State: Running, Kind: kind}
	c.cancel = cancel
	c.done = make(chan struct{})

	go c.run(taskCtx, kind, fn, progress)
	return nil
}

func (c *Controller) run(ctx context.Context, kind string, fn TaskFunc, progress chan<- ProgressUpdate) {
	c.logger.Info("task started", "kind", kind)

	result, err := fn(ctx, func(update ProgressUpdate) {
		c.record(update)
		sendProgress(progress, update)
	})

	c.mu.Lock()
	switch {
	case err == nil:
		c.status.State = Succeeded
		c.status.Progress = 100
		c.status.Result = result
		c.logger.Info("task succeeded", "kind", kind, "playlists", len(result.PlaylistIDs))
	case errors.Is(err, shared.ErrCancelled), errors.Is(err, context.Canceled):
		c.status.State = Cancelled
		c.status.Message = "Cancelled by user"
		c.status.Result = result // partial: playlists created before the cancel
		c.logger.Info("task cancelled", "kind", kind)
	default:
		c.status.State = Failed
		c.status.Reason = err.Error()
		c.status.Result = result // partial: playlists created before the failure
		c.logger.Error("task failed", "kind", kind, "err", err)
	}
	done := c.done
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	cancel()
	close(done)
}

// record keeps the snapshot's progress monotone regardless of stage jitter.
func (c *Controller) record(update ProgressUpdate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status.State != Running {
		return
	}
	if update.Percent > c.status.Progress {
		c.status.Progress = update.Percent
	}
	c.status.Message = update.Message
}

// Cancel requests cooperative cancellation of the running task, if any.
// The task unwinds at its next suspension point.
func (c *Controller) Cancel() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Status returns a snapshot of the controller's state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := c.status
	if c.status.Result != nil {
		result := *c.status.Result
		result.PlaylistIDs = append([]string(nil), c.status.Result.PlaylistIDs...)
		snapshot.Result = &result
	}
	return snapshot
}

// Dismiss clears a terminal state (and any retained result) back to Idle.
// Dismissing a running task is a no-op.
func (c *Controller) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status.State == Running {
		return
	}
	c.status = Status{State: Idle}
}

// Wait blocks until the current task reaches a terminal state.
// Returns immediately if no task has been started.
func (c *Controller) Wait() {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()

	if done != nil {
		<-done
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}
