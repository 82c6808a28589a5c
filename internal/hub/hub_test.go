package hub

import (
	"encoding/json"
	"testing"

	"github.com/s4lvi/historyengine-sub001/internal/protocol"
	"github.com/s4lvi/historyengine-sub001/internal/room"
	"github.com/s4lvi/historyengine-sub001/internal/territory"
)

func newTestSubscriber() *Subscriber {
	return &Subscriber{
		deltas:   newNationDeltaState(),
		sendChan: make(chan []byte, 4),
		done:     make(chan struct{}),
	}
}

func nationWithCells(owner string, cells ...[2]int32) *room.Nation {
	t := territory.New(0)
	for _, c := range cells {
		t.Add(c[0], c[1])
	}
	return &room.Nation{
		Owner:      owner,
		Territory:  t,
		Population: 100,
		Status:     room.NationActive,
		Resources:  map[string]float64{"food": 10},
	}
}

func TestRegisterUnregisterTracksSubscriberCount(t *testing.T) {
	h := New(nil)
	s := newTestSubscriber()

	if got := h.SubscriberCount("r1"); got != 0 {
		t.Fatalf("expected 0 subscribers before register, got %d", got)
	}

	h.Register("r1", s)
	if got := h.SubscriberCount("r1"); got != 1 {
		t.Fatalf("expected 1 subscriber, got %d", got)
	}
	if h.LastActivity("r1").IsZero() {
		t.Fatalf("expected register to touch room activity")
	}

	h.Unregister("r1", s)
	if got := h.SubscriberCount("r1"); got != 0 {
		t.Fatalf("expected 0 subscribers after unregister, got %d", got)
	}
}

// S2-adjacent: first payload is a full snapshot, subsequent payloads are
// incremental deltas against the previously delivered territory.
func TestBuildPayloadFirstFullThenDelta(t *testing.T) {
	s := newTestSubscriber()
	s.wantsFull = true

	snap := &room.State{
		RoomID:   "r1",
		RoomName: "Test Room",
		Creator:  "P1",
		Nations:  map[string]*room.Nation{"P1": nationWithCells("P1", [2]int32{50, 50})},
	}

	raw := s.buildPayload(snap)
	var first protocol.State
	if err := json.Unmarshal(raw, &first); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(first.GameState.Nations) != 1 {
		t.Fatalf("expected 1 nation view, got %d", len(first.GameState.Nations))
	}
	nv := first.GameState.Nations[0]
	if nv.Territory == nil || nv.TerritoryDeltaForClient != nil {
		t.Fatalf("expected full territory on first payload, got %+v", nv)
	}
	if len(nv.Territory.X) != 1 || nv.Territory.X[0] != 50 {
		t.Fatalf("unexpected territory: %+v", nv.Territory)
	}

	snap.Nations["P1"].Territory.Add(51, 50)
	raw = s.buildPayload(snap)
	var second protocol.State
	if err := json.Unmarshal(raw, &second); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	nv = second.GameState.Nations[0]
	if nv.Territory != nil || nv.TerritoryDeltaForClient == nil {
		t.Fatalf("expected delta on second payload, got %+v", nv)
	}
	if len(nv.TerritoryDeltaForClient.Add.X) != 1 || nv.TerritoryDeltaForClient.Add.X[0] != 51 {
		t.Fatalf("unexpected delta add: %+v", nv.TerritoryDeltaForClient.Add)
	}
	if len(nv.TerritoryDeltaForClient.Sub.X) != 0 {
		t.Fatalf("expected no subs, got %+v", nv.TerritoryDeltaForClient.Sub)
	}
}

// S2: a delta-mode subscriber sees a defeated nation's prior cells move to
// sub, not an absolute empty territory, and is forgotten so a later refound
// starts from a clean delta baseline.
func TestBuildPayloadDefeatedNationMovesCellsToSub(t *testing.T) {
	s := newTestSubscriber()
	n := nationWithCells("P1", [2]int32{50, 50})
	snap := &room.State{Nations: map[string]*room.Nation{"P1": n}}

	s.buildPayload(snap) // prime delta baseline with cell (50,50)

	n.Territory = territory.New(0)
	n.Status = room.NationDefeated
	raw := s.buildPayload(snap)

	var st protocol.State
	if err := json.Unmarshal(raw, &st); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	nv := st.GameState.Nations[0]
	if nv.Status != "defeated" {
		t.Fatalf("expected defeated status, got %q", nv.Status)
	}
	if nv.Territory != nil {
		t.Fatalf("expected no absolute territory field for a delta-mode subscriber, got %+v", nv.Territory)
	}
	d := nv.TerritoryDeltaForClient
	if d == nil || len(d.Sub.X) != 1 || d.Sub.X[0] != 50 || d.Sub.Y[0] != 50 {
		t.Fatalf("expected prior cell (50,50) in sub, got %+v", d)
	}
	if len(d.Add.X) != 0 {
		t.Fatalf("expected no added cells, got %+v", d.Add)
	}
}

// A full-mode (wantsFull) subscriber still gets the absolute empty
// territory form on defeat, matching the full-resync contract.
func TestBuildPayloadDefeatedNationFullModeEmptiesTerritory(t *testing.T) {
	s := newTestSubscriber()
	n := nationWithCells("P1", [2]int32{50, 50})
	snap := &room.State{Nations: map[string]*room.Nation{"P1": n}}

	s.wantsFull = true
	s.buildPayload(snap) // prime delta baseline

	n.Territory = territory.New(0)
	n.Status = room.NationDefeated
	s.wantsFull = true
	raw := s.buildPayload(snap)

	var st protocol.State
	if err := json.Unmarshal(raw, &st); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	nv := st.GameState.Nations[0]
	if nv.Territory == nil || len(nv.Territory.X) != 0 {
		t.Fatalf("expected empty absolute territory, got %+v", nv.Territory)
	}
	if nv.TerritoryDeltaForClient != nil {
		t.Fatalf("expected no delta field for a full-mode subscriber, got %+v", nv.TerritoryDeltaForClient)
	}
}

// S5: a room that ended by victory carries winningNation in its final
// broadcast.
func TestBuildPayloadVictoryIncludesWinningNation(t *testing.T) {
	s := newTestSubscriber()
	n := nationWithCells("P1", [2]int32{1, 1})
	n.Status = room.NationWinner
	snap := &room.State{Status: room.StatusEnded, Nations: map[string]*room.Nation{"P1": n}}

	raw := s.buildPayload(snap)
	var st protocol.State
	if err := json.Unmarshal(raw, &st); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if st.WinningNation == nil || st.WinningNation.Owner != "P1" {
		t.Fatalf("expected winningNation P1, got %+v", st.WinningNation)
	}
}

func TestDeliverDropsWhenBufferFull(t *testing.T) {
	s := newTestSubscriber()
	for i := 0; i < cap(s.sendChan); i++ {
		if !s.deliver([]byte("x")) {
			t.Fatalf("unexpected early drop while filling buffer")
		}
	}
	if s.deliver([]byte("overflow")) {
		t.Fatalf("expected drop once buffer is full")
	}
}

func TestDeliverDropsAfterClose(t *testing.T) {
	s := newTestSubscriber()
	close(s.done)
	if s.deliver([]byte("x")) {
		t.Fatalf("expected drop after close")
	}
}
