package store

import (
	"context"
	"errors"
	"testing"
)

func TestMemStoreRoomRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	if err := s.SaveRoom(ctx, RoomRecord{RoomID: "r1", MapID: "m1", TickCount: 5, GameState: []byte(`{}`)}); err != nil {
		t.Fatalf("save room: %v", err)
	}

	rec, err := s.LoadRoom(ctx, "r1")
	if err != nil {
		t.Fatalf("load room: %v", err)
	}
	if rec.MapID != "m1" || rec.TickCount != 5 {
		t.Fatalf("unexpected record: %+v", rec)
	}

	if err := s.DeleteRoom(ctx, "r1"); err != nil {
		t.Fatalf("delete room: %v", err)
	}
	if _, err := s.LoadRoom(ctx, "r1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemStoreChunkKeyedByMapAndStartRow(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()

	if err := s.SaveChunk(ctx, ChunkRecord{MapID: "m1", StartRow: 0, EndRow: 9, Data: []byte(`[]`)}); err != nil {
		t.Fatalf("save chunk: %v", err)
	}
	if err := s.SaveChunk(ctx, ChunkRecord{MapID: "m1", StartRow: 10, EndRow: 19, Data: []byte(`[]`)}); err != nil {
		t.Fatalf("save chunk: %v", err)
	}

	rec, err := s.LoadChunk(ctx, "m1", 10)
	if err != nil {
		t.Fatalf("load chunk: %v", err)
	}
	if rec.EndRow != 19 {
		t.Fatalf("unexpected chunk: %+v", rec)
	}

	if _, err := s.LoadChunk(ctx, "m1", 20); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing chunk, got %v", err)
	}
}

func TestMemStoreResetClearsEverything(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	s.SaveRoom(ctx, RoomRecord{RoomID: "r1"})
	s.SaveChunk(ctx, ChunkRecord{MapID: "m1", StartRow: 0})
	s.SaveMapping(ctx, MappingRecord{MapID: "m1"})

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if _, err := s.LoadRoom(ctx, "r1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected rooms cleared")
	}
	if _, err := s.LoadChunk(ctx, "m1", 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected chunks cleared")
	}
	if _, err := s.LoadMapping(ctx, "m1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected mappings cleared")
	}
}
