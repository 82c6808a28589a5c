package scheduler

import (
	"testing"
	"time"

	"github.com/s4lvi/historyengine-sub001/internal/nation"
	"github.com/s4lvi/historyengine-sub001/internal/room"
)

func newTestWorker(t *testing.T, period time.Duration) (*Worker, *room.Handle) {
	t.Helper()
	initial := &room.State{RoomID: "r1", Status: room.StatusOpen, Nations: map[string]*room.Nation{}}
	handle := room.NewHandle(initial)
	queue := room.NewCommandQueue()
	w := New("r1", handle, queue, nil, nation.DefaultGameplayConfig(), period, nil)
	return w, handle
}

func TestWorkerAdvancesTickCount(t *testing.T) {
	w, handle := newTestWorker(t, 10*time.Millisecond)
	w.Start()
	defer w.Stop()

	time.Sleep(120 * time.Millisecond)
	if got := handle.Load().TickCount; got == 0 {
		t.Fatalf("expected tick count to advance, got %d", got)
	}
}

// S6: pause freezes ticks.
func TestWorkerPauseFreezesTicks(t *testing.T) {
	w, handle := newTestWorker(t, 10*time.Millisecond)
	w.Start()
	defer w.Stop()

	time.Sleep(60 * time.Millisecond)
	w.Pause()
	frozen := handle.Load().TickCount

	time.Sleep(100 * time.Millisecond) // 5x+ the tick period while paused
	if got := handle.Load().TickCount; got != frozen {
		t.Fatalf("expected tick count frozen at %d while paused, got %d", frozen, got)
	}

	w.Unpause()
	time.Sleep(60 * time.Millisecond)
	if got := handle.Load().TickCount; got <= frozen {
		t.Fatalf("expected tick count to resume past %d after unpause, got %d", frozen, got)
	}
}

func TestWorkerStartStopIdempotent(t *testing.T) {
	w, _ := newTestWorker(t, 10*time.Millisecond)
	w.Start()
	w.Start() // no-op, must not spawn a second loop or panic

	w.Stop()
	w.Stop() // no-op, must not double-close stopChan

	select {
	case <-w.Done():
	case <-time.After(time.Second):
		t.Fatalf("worker did not stop in time")
	}
}

func TestWorkerPauseIdempotent(t *testing.T) {
	w, _ := newTestWorker(t, 10*time.Millisecond)
	w.Pause()
	w.Pause()
	if w.Status() != StatusPaused {
		t.Fatalf("expected paused status, got %v", w.Status())
	}
}
