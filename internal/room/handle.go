package room

import "sync/atomic"

// Handle is the single-writer/many-reader snapshot slot for one room's
// state: the scheduler is the sole writer (Store), every other component
// (hub, HTTP/WS handlers) reads via Load and never observes a
// partially-updated nation, since State transitions are always built by
// cloning and swapped in whole (§4.D, §5).
type Handle struct {
	ptr atomic.Pointer[State]
}

func NewHandle(initial *State) *Handle {
	h := &Handle{}
	h.ptr.Store(initial)
	return h
}

func (h *Handle) Load() *State {
	return h.ptr.Load()
}

func (h *Handle) Store(s *State) {
	h.ptr.Store(s)
}

// CompareAndSwap installs next only if the handle still holds old,
// letting a non-scheduler writer (the manager's join and end operations)
// apply a one-off mutation without racing the scheduler's own
// clone-mutate-swap cycle: on failure the caller reloads and retries.
func (h *Handle) CompareAndSwap(old, next *State) bool {
	return h.ptr.CompareAndSwap(old, next)
}
