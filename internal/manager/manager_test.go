package manager

import (
	"context"
	"testing"
	"time"

	"github.com/s4lvi/historyengine-sub001/internal/hub"
	"github.com/s4lvi/historyengine-sub001/internal/mapgen"
	"github.com/s4lvi/historyengine-sub001/internal/nation"
	"github.com/s4lvi/historyengine-sub001/internal/room"
	"github.com/s4lvi/historyengine-sub001/internal/store"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return New(hub.New(nil), store.NewMemStore(), 10*time.Millisecond, time.Minute, nil)
}

func testParams() CreateRoomParams {
	return CreateRoomParams{
		RoomName:        "Test Room",
		Width:           8,
		Height:          8,
		Seed:            42,
		MapConfig:       mapgen.DefaultConfig(),
		GameplayConfig:  nation.DefaultGameplayConfig(),
		CreatorID:       "P1",
		CreatorPassword: "pw1",
	}
}

func TestCreateRoomStartsWorkerAndTicks(t *testing.T) {
	mgr := newTestManager(t)
	created, err := mgr.CreateRoom(context.Background(), testParams())
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if created.RoomID == "" || created.JoinCode == "" {
		t.Fatalf("expected non-empty room id and join code, got %+v", created)
	}

	handle, m, queue, ok := mgr.GetRoom(created.RoomID)
	if !ok {
		t.Fatalf("expected room to be retrievable")
	}
	if m == nil || queue == nil {
		t.Fatalf("expected map and queue to be set")
	}

	time.Sleep(60 * time.Millisecond)
	if handle.Load().TickCount == 0 {
		t.Fatalf("expected worker to have ticked")
	}

	if err := mgr.RemoveRoom(context.Background(), created.RoomID); err != nil {
		t.Fatalf("remove room: %v", err)
	}
}

func TestJoinRoomRejectsWrongJoinCode(t *testing.T) {
	mgr := newTestManager(t)
	created, err := mgr.CreateRoom(context.Background(), testParams())
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	defer mgr.RemoveRoom(context.Background(), created.RoomID)

	if err := mgr.JoinRoom(created.RoomID, "P2", "pw2", "wrong-code"); err == nil {
		t.Fatalf("expected error for wrong join code")
	}
	if err := mgr.JoinRoom(created.RoomID, "P2", "pw2", created.JoinCode); err != nil {
		t.Fatalf("unexpected join error: %v", err)
	}

	handle, _, _, _ := mgr.GetRoom(created.RoomID)
	found := false
	for _, p := range handle.Load().Players {
		if p.UserID == "P2" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected P2 to be added to roster")
	}

	// Rejoining with the right password is idempotent.
	if err := mgr.JoinRoom(created.RoomID, "P2", "pw2", created.JoinCode); err != nil {
		t.Fatalf("expected idempotent rejoin, got %v", err)
	}
	// Rejoining with the wrong password is rejected.
	if err := mgr.JoinRoom(created.RoomID, "P2", "wrong", created.JoinCode); err == nil {
		t.Fatalf("expected password mismatch error")
	}
}

// S6: pause is restricted to the room creator and freezes the tick count.
func TestPauseRequiresCreatorAndFreezesTicks(t *testing.T) {
	mgr := newTestManager(t)
	created, err := mgr.CreateRoom(context.Background(), testParams())
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	defer mgr.RemoveRoom(context.Background(), created.RoomID)

	if err := mgr.PauseWorker(created.RoomID, "not-creator"); err == nil {
		t.Fatalf("expected forbidden error for non-creator pause")
	}
	if err := mgr.PauseWorker(created.RoomID, "P1"); err != nil {
		t.Fatalf("unexpected pause error: %v", err)
	}

	handle, _, _, _ := mgr.GetRoom(created.RoomID)
	frozen := handle.Load().TickCount
	time.Sleep(60 * time.Millisecond)
	if handle.Load().TickCount != frozen {
		t.Fatalf("expected tick count frozen while paused")
	}

	if err := mgr.UnpauseWorker(created.RoomID, "P1"); err != nil {
		t.Fatalf("unexpected unpause error: %v", err)
	}
}

func TestSweepIdleRemovesEndedRooms(t *testing.T) {
	mgr := newTestManager(t)
	created, err := mgr.CreateRoom(context.Background(), testParams())
	if err != nil {
		t.Fatalf("create room: %v", err)
	}

	handle, _, _, _ := mgr.GetRoom(created.RoomID)
	ended := handle.Load().Clone()
	ended.Status = room.StatusEnded
	handle.Store(ended)

	removed, err := mgr.SweepIdle(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 room removed, got %d", removed)
	}
	if _, _, _, ok := mgr.GetRoom(created.RoomID); ok {
		t.Fatalf("expected ended room to be gone after sweep")
	}
}
