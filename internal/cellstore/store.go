// Package cellstore exposes random-access and row-range access to a
// generated map, producing the compact transmit-format chunks and
// index->name mapping tables used by the wire format (§4.C).
package cellstore

import (
	"fmt"

	"github.com/s4lvi/historyengine-sub001/internal/mapgen"
)

// DefaultChunkRows is the row count the map endpoint returns when no row
// range is given, and the chunk size used when a map is persisted. Rows()
// itself does not cap the range it is asked for.
const DefaultChunkRows = 32

// CompactCell is the wire-format representation of one cell: indices into
// the mapping tables rather than names, and a packed river flag.
type CompactCell struct {
	Elevation   float64 `json:"elevation"`
	Moisture    float64 `json:"moisture"`
	Temperature float64 `json:"temperature"`
	BiomeIdx    int     `json:"biomeIdx"`
	IsRiver     bool    `json:"isRiver"`
	FeatureIdx  []int   `json:"featureIdx,omitempty"`
	ResourceIdx []int   `json:"resourceIdx,omitempty"`
}

// Mappings is the reverse index->name table set, sent alongside the first
// chunk of a map only.
type Mappings struct {
	Biomes    []string `json:"biomes"`
	Features  []string `json:"features"`
	Resources []string `json:"resources"`
}

// Store exposes metadata and row-range reads over a single generated map.
// Maps are immutable once generated, so random reads are O(1).
type Store struct {
	m *mapgen.Map
}

func New(m *mapgen.Map) *Store {
	return &Store{m: m}
}

func (s *Store) Metadata() (width, height int, cfg mapgen.Config) {
	return s.m.Width, s.m.Height, s.m.Config
}

func (s *Store) Mappings() Mappings {
	return Mappings{
		Biomes:    mapgen.BiomeNames(),
		Features:  mapgen.FeatureNames(),
		Resources: mapgen.ResourceNames(),
	}
}

// Rows returns rows [start, end) as compact cells, row-major.
func (s *Store) Rows(start, end int) ([][]CompactCell, error) {
	if start < 0 || end > s.m.Height || start > end {
		return nil, fmt.Errorf("cellstore: invalid row range [%d,%d) for height %d", start, end, s.m.Height)
	}
	out := make([][]CompactCell, end-start)
	for y := start; y < end; y++ {
		row := make([]CompactCell, s.m.Width)
		for x := 0; x < s.m.Width; x++ {
			c := s.m.At(x, y)
			row[x] = toCompact(c)
		}
		out[y-start] = row
	}
	return out, nil
}

// Cell returns a single cell by coordinate (O(1) random access).
func (s *Store) Cell(x, y int) (CompactCell, error) {
	if !s.m.InBounds(x, y) {
		return CompactCell{}, fmt.Errorf("cellstore: (%d,%d) out of bounds", x, y)
	}
	return toCompact(s.m.At(x, y)), nil
}

func toCompact(c *mapgen.Cell) CompactCell {
	features := make([]int, len(c.Features))
	for i, f := range c.Features {
		features[i] = int(f)
	}
	resources := make([]int, len(c.Resources))
	for i, r := range c.Resources {
		resources[i] = int(r)
	}
	return CompactCell{
		Elevation:   c.Elevation,
		Moisture:    c.Moisture,
		Temperature: c.Temperature,
		BiomeIdx:    int(c.Biome),
		IsRiver:     c.IsRiver,
		FeatureIdx:  features,
		ResourceIdx: resources,
	}
}

// ChunkBounds computes the [start,end) row range for the given 0-based
// chunk index, given a chunk size (rows per chunk).
func ChunkBounds(chunkIndex, chunkRows, totalRows int) (start, end int) {
	start = chunkIndex * chunkRows
	end = start + chunkRows
	if end > totalRows {
		end = totalRows
	}
	if start > totalRows {
		start = totalRows
	}
	return start, end
}
