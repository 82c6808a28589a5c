// Package scheduler runs one room's tick loop: drain the command queue,
// advance the nation updater, publish the new snapshot, and broadcast —
// one goroutine per room, the single writer of that room's state (§4.F).
package scheduler

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/s4lvi/historyengine-sub001/internal/mapgen"
	"github.com/s4lvi/historyengine-sub001/internal/nation"
	"github.com/s4lvi/historyengine-sub001/internal/room"
)

// Status mirrors the worker's coarse lifecycle: starting, running, paused,
// stopping, stopped, or error (promoted after maxTickFailures consecutive
// tick failures, per §7's Fatal promotion rule).
type Status string

const (
	StatusStarting Status = "starting"
	StatusRunning  Status = "running"
	StatusPaused   Status = "paused"
	StatusStopping Status = "stopping"
	StatusStopped  Status = "stopped"
	StatusError    Status = "error"
)

const maxTickFailures = 3

// Worker runs the per-room game loop in its own goroutine. Grounded on the
// teacher's Room.gameLoop/Start/Stop: an atomic running flag, a close-once
// stop channel, and a single select loop driven by one ticker.
type Worker struct {
	roomID     string
	handle     *room.Handle
	queue      *room.CommandQueue
	m          *mapgen.Map
	cfg        nation.GameplayConfig
	tickPeriod time.Duration
	log        *zap.Logger

	onEvents func(roomID string, events []nation.Event)

	running  atomic.Bool
	paused   atomic.Bool
	status   atomic.Value // Status
	stopChan chan struct{}
	stopOnce sync.Once
	doneChan chan struct{}

	consecutiveFailures int
}

// New creates a worker for one room. The worker does not start its loop
// until Start is called.
func New(roomID string, handle *room.Handle, queue *room.CommandQueue, m *mapgen.Map, cfg nation.GameplayConfig, tickPeriod time.Duration, log *zap.Logger) *Worker {
	w := &Worker{
		roomID:     roomID,
		handle:     handle,
		queue:      queue,
		m:          m,
		cfg:        cfg,
		tickPeriod: tickPeriod,
		log:        log,
		stopChan:   make(chan struct{}),
		doneChan:   make(chan struct{}),
	}
	w.status.Store(StatusStarting)
	return w
}

// OnEvents registers a callback invoked after each tick that produced
// nation events (founded/defeated/victory/capture); the manager uses it to
// broadcast and persist the new snapshot.
func (w *Worker) OnEvents(fn func(roomID string, events []nation.Event)) {
	w.onEvents = fn
}

// Start begins the tick loop in a new goroutine. Safe to call multiple
// times — subsequent calls are no-ops, satisfying the idempotence law
// `start; start == start`.
func (w *Worker) Start() {
	if w.running.Swap(true) {
		return
	}
	w.status.Store(StatusRunning)
	go w.loop()
}

// Stop halts the tick loop cooperatively: the stop channel is closed and
// the caller may wait on Done() to join, with a timeout. Safe to call
// multiple times, satisfying `stop; stop == stop`.
func (w *Worker) Stop() {
	if !w.running.Swap(false) {
		return
	}
	w.status.Store(StatusStopping)
	w.stopOnce.Do(func() { close(w.stopChan) })
}

// Done returns a channel closed once the loop goroutine has exited.
func (w *Worker) Done() <-chan struct{} {
	return w.doneChan
}

// Pause freezes tick advancement without stopping the goroutine. Safe to
// call multiple times, satisfying `pause; pause == pause`.
func (w *Worker) Pause() {
	if w.paused.Swap(true) {
		return
	}
	w.status.Store(StatusPaused)
}

// Unpause resumes tick advancement.
func (w *Worker) Unpause() {
	if !w.paused.Swap(false) {
		return
	}
	if w.running.Load() {
		w.status.Store(StatusRunning)
	}
}

func (w *Worker) Status() Status {
	return w.status.Load().(Status)
}

func (w *Worker) loop() {
	defer close(w.doneChan)
	ticker := time.NewTicker(w.tickPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			if w.Status() != StatusError {
				w.status.Store(StatusStopped)
			}
			return
		case <-ticker.C:
			if w.paused.Load() {
				continue
			}
			w.tick()
		}
	}
}

// tick drains the queue, advances the nation updater, and swaps in the new
// snapshot. A single tick's failure (a panic recovered here) logs and
// skips rather than killing the worker; three consecutive failures promote
// to Fatal and the worker stops with the room moved to StatusError (§7).
func (w *Worker) tick() {
	defer func() {
		if r := recover(); r != nil {
			w.handleTickFailure(r)
		}
	}()

	prev := w.handle.Load()
	if prev.Status == room.StatusEnded || prev.Status == room.StatusError {
		w.Stop()
		return
	}

	cmds := w.queue.Drain()
	next, events := nation.Advance(prev, w.m, cmds, w.cfg)
	// A manager-level CompareAndSwap (join, end) may land between Load and
	// publish; recompute from the newer snapshot rather than overwrite it.
	for !w.handle.CompareAndSwap(prev, next) {
		prev = w.handle.Load()
		if prev.Status == room.StatusEnded || prev.Status == room.StatusError {
			w.Stop()
			return
		}
		next, events = nation.Advance(prev, w.m, cmds, w.cfg)
	}
	w.consecutiveFailures = 0

	if w.onEvents != nil && len(events) > 0 {
		w.onEvents(w.roomID, events)
	}

	if next.Status == room.StatusEnded {
		w.Stop()
	}
}

func (w *Worker) handleTickFailure(cause any) {
	w.consecutiveFailures++
	if w.log != nil {
		w.log.Error("tick failed",
			zap.String("room", w.roomID),
			zap.Any("cause", cause),
			zap.Int("consecutiveFailures", w.consecutiveFailures),
		)
	}
	if w.consecutiveFailures < maxTickFailures {
		return
	}
	prev := w.handle.Load()
	failed := prev.Clone()
	failed.Status = room.StatusError
	w.handle.Store(failed)
	w.status.Store(StatusError)
	w.running.Store(false)
	w.stopOnce.Do(func() { close(w.stopChan) })
}
