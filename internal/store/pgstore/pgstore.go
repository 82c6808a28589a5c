// Package pgstore implements store.Store against Postgres, keeping each
// record as a JSONB blob under its natural key. Schema is one table per
// record kind rather than a normalized room/nation/territory model: the
// manager only ever reads/writes whole records (create, periodic
// snapshot, teardown), so there is nothing to gain from normalizing
// inside the database.
package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/s4lvi/historyengine-sub001/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS rooms (
	room_id    TEXT PRIMARY KEY,
	map_id     TEXT NOT NULL,
	tick_count BIGINT NOT NULL,
	game_state JSONB NOT NULL
);
CREATE TABLE IF NOT EXISTS map_chunks (
	map_id    TEXT NOT NULL,
	start_row INT NOT NULL,
	end_row   INT NOT NULL,
	data      JSONB NOT NULL,
	PRIMARY KEY (map_id, start_row)
);
CREATE TABLE IF NOT EXISTS map_mappings (
	map_id TEXT PRIMARY KEY,
	data   JSONB NOT NULL
);
`

// Store persists rooms, map chunks, and map mappings in Postgres via pgx.
type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

// Connect opens a pool against dsn, verifies connectivity, and ensures the
// schema exists.
func Connect(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgstore: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgstore: ping: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgstore: init schema: %w", err)
	}
	return &Store{pool: pool, log: log}, nil
}

func (s *Store) SaveRoom(ctx context.Context, rec store.RoomRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO rooms (room_id, map_id, tick_count, game_state)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (room_id) DO UPDATE SET
			map_id = EXCLUDED.map_id,
			tick_count = EXCLUDED.tick_count,
			game_state = EXCLUDED.game_state
	`, rec.RoomID, rec.MapID, rec.TickCount, rec.GameState)
	if err != nil {
		return fmt.Errorf("pgstore: save room %s: %w", rec.RoomID, err)
	}
	return nil
}

func (s *Store) LoadRoom(ctx context.Context, roomID string) (store.RoomRecord, error) {
	var rec store.RoomRecord
	rec.RoomID = roomID
	err := s.pool.QueryRow(ctx,
		`SELECT map_id, tick_count, game_state FROM rooms WHERE room_id = $1`, roomID,
	).Scan(&rec.MapID, &rec.TickCount, &rec.GameState)
	if err == pgx.ErrNoRows {
		return store.RoomRecord{}, store.ErrNotFound
	}
	if err != nil {
		return store.RoomRecord{}, fmt.Errorf("pgstore: load room %s: %w", roomID, err)
	}
	return rec, nil
}

func (s *Store) DeleteRoom(ctx context.Context, roomID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM rooms WHERE room_id = $1`, roomID)
	if err != nil {
		return fmt.Errorf("pgstore: delete room %s: %w", roomID, err)
	}
	return nil
}

func (s *Store) SaveChunk(ctx context.Context, rec store.ChunkRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO map_chunks (map_id, start_row, end_row, data)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (map_id, start_row) DO UPDATE SET
			end_row = EXCLUDED.end_row,
			data = EXCLUDED.data
	`, rec.MapID, rec.StartRow, rec.EndRow, rec.Data)
	if err != nil {
		return fmt.Errorf("pgstore: save chunk %s/%d: %w", rec.MapID, rec.StartRow, err)
	}
	return nil
}

func (s *Store) LoadChunk(ctx context.Context, mapID string, startRow int) (store.ChunkRecord, error) {
	rec := store.ChunkRecord{MapID: mapID, StartRow: startRow}
	err := s.pool.QueryRow(ctx,
		`SELECT end_row, data FROM map_chunks WHERE map_id = $1 AND start_row = $2`,
		mapID, startRow,
	).Scan(&rec.EndRow, &rec.Data)
	if err == pgx.ErrNoRows {
		return store.ChunkRecord{}, store.ErrNotFound
	}
	if err != nil {
		return store.ChunkRecord{}, fmt.Errorf("pgstore: load chunk %s/%d: %w", mapID, startRow, err)
	}
	return rec, nil
}

func (s *Store) SaveMapping(ctx context.Context, rec store.MappingRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO map_mappings (map_id, data) VALUES ($1, $2)
		ON CONFLICT (map_id) DO UPDATE SET data = EXCLUDED.data
	`, rec.MapID, rec.Data)
	if err != nil {
		return fmt.Errorf("pgstore: save mapping %s: %w", rec.MapID, err)
	}
	return nil
}

func (s *Store) LoadMapping(ctx context.Context, mapID string) (store.MappingRecord, error) {
	rec := store.MappingRecord{MapID: mapID}
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM map_mappings WHERE map_id = $1`, mapID,
	).Scan(&rec.Data)
	if err == pgx.ErrNoRows {
		return store.MappingRecord{}, store.ErrNotFound
	}
	if err != nil {
		return store.MappingRecord{}, fmt.Errorf("pgstore: load mapping %s: %w", mapID, err)
	}
	return rec, nil
}

func (s *Store) Reset(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `TRUNCATE rooms, map_chunks, map_mappings`)
	if err != nil {
		return fmt.Errorf("pgstore: reset: %w", err)
	}
	return nil
}

func (s *Store) Close() {
	s.pool.Close()
}
