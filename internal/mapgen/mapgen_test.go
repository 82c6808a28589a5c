package mapgen

import "testing"

func TestGenerateDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	m1, err := Generate(100, 100, 42, cfg, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	m2, err := Generate(100, 100, 42, cfg, nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for i := 0; i < 16; i++ {
		b1 := m1.Cells[i].Biome
		b2 := m2.Cells[i].Biome
		if b1 != b2 {
			t.Fatalf("biome mismatch at cell %d: %v vs %v", i, b1, b2)
		}
	}
	for i := range m1.Cells {
		c1, c2 := m1.Cells[i], m2.Cells[i]
		if c1.Elevation != c2.Elevation || c1.Moisture != c2.Moisture ||
			c1.Temperature != c2.Temperature || c1.IsRiver != c2.IsRiver {
			t.Fatalf("cell %d diverged between identical runs", i)
		}
	}
}

func TestGenerateDifferentSeedsDiffer(t *testing.T) {
	cfg := DefaultConfig()
	m1, _ := Generate(64, 64, 1, cfg, nil)
	m2, _ := Generate(64, 64, 2, cfg, nil)
	same := 0
	for i := range m1.Cells {
		if m1.Cells[i].Biome == m2.Cells[i].Biome {
			same++
		}
	}
	if same == len(m1.Cells) {
		t.Fatalf("expected different seeds to produce different maps")
	}
}

func TestBorderCellsAreZeroElevation(t *testing.T) {
	m, err := Generate(40, 40, 7, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for x := 0; x < m.Width; x++ {
		if m.At(x, 0).Elevation != 0 {
			t.Fatalf("expected top border elevation 0 at x=%d, got %v", x, m.At(x, 0).Elevation)
		}
		if m.At(x, m.Height-1).Elevation != 0 {
			t.Fatalf("expected bottom border elevation 0 at x=%d, got %v", x, m.At(x, m.Height-1).Elevation)
		}
	}
}

func TestLargestLandComponentDominates(t *testing.T) {
	m, err := Generate(80, 80, 123, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	_, sizes := labelComponents4(m.Width, m.Height, func(x, y int) bool {
		return m.At(x, y).Elevation >= m.Config.SeaLevel
	})
	if len(sizes) == 0 {
		t.Skip("no land generated for this seed/size")
	}
	total := 0
	best := 0
	for _, s := range sizes {
		total += s
		if s > best {
			best = s
		}
	}
	if float64(best)/float64(total) < 0.99 {
		t.Fatalf("expected largest land component to contain >= 99%% of land, got %v/%v", best, total)
	}
}

func TestRiverImpliesAboveSeaLevel(t *testing.T) {
	m, err := Generate(60, 60, 9, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for _, c := range m.Cells {
		if c.IsRiver && c.Elevation < m.Config.SeaLevel {
			t.Fatalf("river cell at (%d,%d) below sea level: %v", c.X, c.Y, c.Elevation)
		}
		if c.Biome == BiomeRiver && !c.IsRiver {
			t.Fatalf("RIVER biome cell at (%d,%d) has IsRiver=false", c.X, c.Y)
		}
	}
}

func TestMinimalSizesDoNotCrash(t *testing.T) {
	for _, size := range []struct{ w, h int }{{1, 1}, {2, 2}, {3, 1}, {1, 3}} {
		if _, err := Generate(size.w, size.h, 5, DefaultConfig(), nil); err != nil {
			t.Fatalf("generate %dx%d: %v", size.w, size.h, err)
		}
	}
}

func TestInvalidDimensionsRejected(t *testing.T) {
	if _, err := Generate(0, 10, 1, DefaultConfig(), nil); err == nil {
		t.Fatalf("expected error for zero width")
	}
	if _, err := Generate(10, -1, 1, DefaultConfig(), nil); err == nil {
		t.Fatalf("expected error for negative height")
	}
	cfg := DefaultConfig()
	cfg.NumBlobs = -1
	if _, err := Generate(10, 10, 1, cfg, nil); err == nil {
		t.Fatalf("expected error for numBlobs < 1")
	}
}
