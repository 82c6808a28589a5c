// Package hub implements the per-room subscription hub (§4.H): it tracks
// which connections are subscribed to which room, turns each tick's room
// snapshot into a tailored (full or delta) payload per subscriber, and
// drops rather than blocks on slow connections. It is the sole broadcaster
// of room state; it never mutates room state itself.
package hub

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/s4lvi/historyengine-sub001/internal/delta"
	"github.com/s4lvi/historyengine-sub001/internal/room"
	"github.com/s4lvi/historyengine-sub001/internal/territory"
)

// Hub owns the subscriber registry for every room on this server instance.
type Hub struct {
	log *zap.Logger

	mu    sync.RWMutex
	rooms map[string]*roomSubscribers

	touchMu      sync.Mutex
	lastActivity map[string]time.Time
}

type roomSubscribers struct {
	mu   sync.Mutex
	subs map[*Subscriber]struct{}
}

// New creates an empty Hub. log may be nil.
func New(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		log:          log,
		rooms:        make(map[string]*roomSubscribers),
		lastActivity: make(map[string]time.Time),
	}
}

// Register binds a subscriber to a room. Safe to call concurrently.
func (h *Hub) Register(roomID string, s *Subscriber) {
	h.mu.Lock()
	rs, ok := h.rooms[roomID]
	if !ok {
		rs = &roomSubscribers{subs: make(map[*Subscriber]struct{})}
		h.rooms[roomID] = rs
	}
	h.mu.Unlock()

	rs.mu.Lock()
	rs.subs[s] = struct{}{}
	rs.mu.Unlock()

	h.TouchRoom(roomID)
}

// Unregister detaches a subscriber from a room.
func (h *Hub) Unregister(roomID string, s *Subscriber) {
	h.mu.RLock()
	rs, ok := h.rooms[roomID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	rs.mu.Lock()
	delete(rs.subs, s)
	rs.mu.Unlock()
}

// TouchRoom records last-activity for idle-room sweeping (§4.J).
func (h *Hub) TouchRoom(roomID string) {
	h.touchMu.Lock()
	h.lastActivity[roomID] = time.Now()
	h.touchMu.Unlock()
}

// LastActivity returns the last recorded activity time for a room, or the
// zero time if never touched.
func (h *Hub) LastActivity(roomID string) time.Time {
	h.touchMu.Lock()
	defer h.touchMu.Unlock()
	return h.lastActivity[roomID]
}

// SubscriberCount reports how many connections currently subscribe to a
// room, used by the idle sweeper to decide whether a room is empty.
func (h *Hub) SubscriberCount(roomID string) int {
	h.mu.RLock()
	rs, ok := h.rooms[roomID]
	h.mu.RUnlock()
	if !ok {
		return 0
	}
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return len(rs.subs)
}

// Broadcast publishes one tick's snapshot to every subscriber of its room.
// Each subscriber receives either a full territory payload or an
// incremental delta depending on its own wantsFull flag and prior
// snapshot. Tick counts are not compared: payloads are built and queued in
// the order Broadcast is called, so a snapshot older than one already sent
// is sent as well. A subscriber whose send would block is dropped, never
// backpressured.
func (h *Hub) Broadcast(roomID string, snap *room.State) {
	h.mu.RLock()
	rs, ok := h.rooms[roomID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	rs.mu.Lock()
	targets := make([]*Subscriber, 0, len(rs.subs))
	for s := range rs.subs {
		targets = append(targets, s)
	}
	rs.mu.Unlock()

	for _, s := range targets {
		payload := s.buildPayload(snap)
		if !s.deliver(payload) {
			h.Unregister(roomID, s)
			s.Close()
			h.log.Debug("dropped slow subscriber", zap.String("room", roomID), zap.String("user", s.userID))
		}
	}
}

// nationDeltaState tracks, per subscriber, the last territory seen for
// each nation so the next broadcast can compute an incremental delta.
type nationDeltaState struct {
	mu   sync.Mutex
	last map[string]*territory.Set // owner -> last-delivered territory
}

func newNationDeltaState() *nationDeltaState {
	return &nationDeltaState{last: make(map[string]*territory.Set)}
}

// diff returns the delta for one nation's current territory against the
// subscriber's prior snapshot, and records the new snapshot.
func (n *nationDeltaState) diff(owner string, current *territory.Set) delta.Delta {
	n.mu.Lock()
	defer n.mu.Unlock()
	prev, ok := n.last[owner]
	if !ok || prev == nil {
		prev = territory.New(0)
	}
	d := delta.Compute(prev, current)
	n.last[owner] = current.Clone()
	return d
}

// full records the current territory as the subscriber's new baseline and
// returns a full-resync delta for it.
func (n *nationDeltaState) full(owner string, current *territory.Set) delta.Delta {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.last[owner] = current.Clone()
	return delta.Full(current)
}

// forget drops a nation's bookkeeping, used when a nation is defeated so
// its next reappearance (a new found command) starts from an empty prior
// snapshot rather than stale territory.
func (n *nationDeltaState) forget(owner string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.last, owner)
}

// defeated returns the delta that moves every cell this subscriber had
// previously seen for owner into Sub (§4.G "defeated nations broadcast
// ... all prior cells in sub"), then forgets the nation the same way
// forget does.
func (n *nationDeltaState) defeated(owner string) delta.Delta {
	n.mu.Lock()
	defer n.mu.Unlock()
	prev, ok := n.last[owner]
	delete(n.last, owner)
	if !ok || prev == nil {
		prev = territory.New(0)
	}
	return delta.Defeated(prev)
}
