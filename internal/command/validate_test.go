package command

import (
	"testing"

	"github.com/s4lvi/historyengine-sub001/internal/apperr"
	"github.com/s4lvi/historyengine-sub001/internal/mapgen"
	"github.com/s4lvi/historyengine-sub001/internal/room"
	"github.com/s4lvi/historyengine-sub001/internal/territory"
)

func testSnapshot() *room.State {
	return &room.State{
		RoomID:  "room-1",
		Status:  room.StatusOpen,
		Creator: "alice",
		Players: []room.Player{
			{UserID: "alice", Password: "secret"},
			{UserID: "bob", Password: "hunter2"},
		},
		Nations: map[string]*room.Nation{},
	}
}

func testMap(w, h int) *mapgen.Map {
	cfg := mapgen.DefaultConfig()
	m := &mapgen.Map{Width: w, Height: h, Config: cfg, Cells: make([]mapgen.Cell, w*h)}
	for i := range m.Cells {
		m.Cells[i].Elevation = cfg.SeaLevel + 0.1
	}
	return m
}

func TestValidateRejectsUnknownUser(t *testing.T) {
	snap := testSnapshot()
	raw := RawCommand{Kind: KindFound, UserID: "mallory", Password: "x"}
	_, err := Validate(raw, snap, testMap(4, 4))
	if err == nil || err.Kind != apperr.KindAuthFailed {
		t.Fatalf("expected AuthFailed, got %v", err)
	}
}

func TestValidateRejectsBadPassword(t *testing.T) {
	snap := testSnapshot()
	raw := RawCommand{Kind: KindFound, UserID: "alice", Password: "wrong"}
	_, err := Validate(raw, snap, testMap(4, 4))
	if err == nil || err.Kind != apperr.KindAuthFailed {
		t.Fatalf("expected AuthFailed, got %v", err)
	}
}

func TestValidateFoundOnLand(t *testing.T) {
	snap := testSnapshot()
	raw := RawCommand{
		Kind: KindFound, UserID: "alice", Password: "secret",
		Fields: map[string]any{"x": int32(1), "y": int32(1)},
	}
	cmd, err := Validate(raw, snap, testMap(4, 4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Kind != KindFound || cmd.Owner != "alice" {
		t.Fatalf("unexpected command: %+v", cmd)
	}
	p := cmd.Payload.(FoundPayload)
	if p.X != 1 || p.Y != 1 {
		t.Fatalf("unexpected payload: %+v", p)
	}
}

func TestValidateFoundRejectsRefound(t *testing.T) {
	snap := testSnapshot()
	snap.Nations["alice"] = &room.Nation{Owner: "alice", Status: room.NationActive, Territory: territory.New(0)}
	raw := RawCommand{
		Kind: KindFound, UserID: "alice", Password: "secret",
		Fields: map[string]any{"x": int32(1), "y": int32(1)},
	}
	_, err := Validate(raw, snap, testMap(4, 4))
	if err == nil || err.Code != "REFOUND_DISABLED" {
		t.Fatalf("expected REFOUND_DISABLED, got %v", err)
	}
}

func TestValidateFoundRejectsWater(t *testing.T) {
	snap := testSnapshot()
	m := testMap(4, 4)
	m.At(2, 2).Elevation = m.Config.SeaLevel - 0.1
	raw := RawCommand{
		Kind: KindFound, UserID: "alice", Password: "secret",
		Fields: map[string]any{"x": int32(2), "y": int32(2)},
	}
	_, err := Validate(raw, snap, m)
	if err == nil || err.Kind != apperr.KindInvalidInput {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
}

func TestValidateFoundRejectsRiver(t *testing.T) {
	snap := testSnapshot()
	m := testMap(4, 4)
	// A river cell is still land (elevation >= sea level by construction)
	// but must not be foundable.
	m.At(2, 2).IsRiver = true
	raw := RawCommand{
		Kind: KindFound, UserID: "alice", Password: "secret",
		Fields: map[string]any{"x": int32(2), "y": int32(2)},
	}
	_, err := Validate(raw, snap, m)
	if err == nil || err.Kind != apperr.KindInvalidInput {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
}

func TestValidateBuildCityRequiresOwnedCell(t *testing.T) {
	snap := testSnapshot()
	snap.Nations["alice"] = &room.Nation{Owner: "alice", Status: room.NationActive, Territory: territory.New(0)}
	raw := RawCommand{
		Kind: KindBuildCity, UserID: "alice", Password: "secret",
		Fields: map[string]any{"x": int32(1), "y": int32(1), "cityType": "capital"},
	}
	_, err := Validate(raw, snap, testMap(4, 4))
	if err == nil || err.Kind != apperr.KindInvalidInput {
		t.Fatalf("expected InvalidInput for unowned cell, got %v", err)
	}

	snap.Nations["alice"].Territory.Add(1, 1)
	cmd, err := Validate(raw, snap, testMap(4, 4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Payload.(BuildCityPayload).CityType != "capital" {
		t.Fatalf("unexpected payload: %+v", cmd.Payload)
	}
}

func TestValidateArrowStartRequiresConnectedPath(t *testing.T) {
	snap := testSnapshot()
	nt := territory.New(0)
	nt.Add(0, 0)
	snap.Nations["alice"] = &room.Nation{Owner: "alice", Status: room.NationActive, Territory: nt}

	raw := RawCommand{
		Kind: KindArrowStart, UserID: "alice", Password: "secret",
		Fields: map[string]any{
			"path":    [][2]int32{{0, 0}, {2, 2}},
			"type":    string(room.ArrowAttack),
			"percent": 0.5,
		},
	}
	_, err := Validate(raw, snap, testMap(4, 4))
	if err == nil || err.Kind != apperr.KindInvalidInput {
		t.Fatalf("expected InvalidInput for disconnected path, got %v", err)
	}

	raw.Fields["path"] = [][2]int32{{0, 0}, {1, 1}, {2, 2}}
	cmd, err := Validate(raw, snap, testMap(4, 4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	payload := cmd.Payload.(ArrowStartPayload)
	if len(payload.Path) != 3 || payload.Type != room.ArrowAttack {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestValidatePauseRequiresCreator(t *testing.T) {
	snap := testSnapshot()
	raw := RawCommand{Kind: KindPause, UserID: "bob", Password: "hunter2"}
	_, err := Validate(raw, snap, testMap(4, 4))
	if err == nil || err.Kind != apperr.KindForbidden {
		t.Fatalf("expected Forbidden, got %v", err)
	}

	raw.UserID, raw.Password = "alice", "secret"
	cmd, err := Validate(raw, snap, testMap(4, 4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Kind != KindPause {
		t.Fatalf("unexpected command: %+v", cmd)
	}
}

func TestValidateRejectsAfterGameEnded(t *testing.T) {
	snap := testSnapshot()
	snap.Status = room.StatusEnded
	raw := RawCommand{Kind: KindQuit, UserID: "alice", Password: "secret"}
	_, err := Validate(raw, snap, testMap(4, 4))
	if err == nil || err.Kind != apperr.KindGameEnded {
		t.Fatalf("expected GameEnded, got %v", err)
	}
}
