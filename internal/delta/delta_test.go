package delta

import (
	"reflect"
	"testing"

	"github.com/s4lvi/historyengine-sub001/internal/territory"
)

func TestComputeAddAndSub(t *testing.T) {
	old := territory.New(0)
	old.Add(1, 1)
	old.Add(2, 2)

	newSet := territory.New(0)
	newSet.Add(2, 2)
	newSet.Add(3, 3)

	d := Compute(old, newSet)
	if len(d.AddX) != 1 || d.AddX[0] != 3 || d.AddY[0] != 3 {
		t.Fatalf("unexpected add: %+v", d)
	}
	if len(d.SubX) != 1 || d.SubX[0] != 1 || d.SubY[0] != 1 {
		t.Fatalf("unexpected sub: %+v", d)
	}
}

func TestComputeEmptyWhenUnchanged(t *testing.T) {
	s := territory.New(0)
	s.Add(5, -5)
	d := Compute(s, s.Clone())
	if !d.Empty() {
		t.Fatalf("expected empty delta, got %+v", d)
	}
}

func TestDefeatedMovesAllToSub(t *testing.T) {
	s := territory.New(0)
	s.Add(1, 1)
	s.Add(-2, 3)
	d := Defeated(s)
	if len(d.AddX) != 0 {
		t.Fatalf("expected no adds, got %+v", d.AddX)
	}
	if len(d.SubX) != 2 {
		t.Fatalf("expected 2 subs, got %+v", d.SubX)
	}
}

func TestPackUnpackRoundTrip(t *testing.T) {
	d := Delta{
		AddX: []int32{-100, 0, 5, 1000000},
		AddY: []int32{3, -3, 5, -1000000},
		SubX: []int32{1, 2},
		SubY: []int32{-1, -2},
	}
	packed := Pack(d)
	got, err := Unpack(packed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, d) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, d)
	}
}

func TestPackUnpackEmptyDelta(t *testing.T) {
	d := Delta{}
	packed := Pack(d)
	got, err := Unpack(packed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Empty() {
		t.Fatalf("expected empty round trip, got %+v", got)
	}
}

// applyDelta(applyDelta(T, d), d) == applyDelta(T, d) when add∩T = ∅ and
// sub⊆T — the idempotence law of §8.
func TestApplyDeltaIdempotentUnderPrecondition(t *testing.T) {
	old := territory.New(0)
	old.Add(1, 1)
	old.Add(2, 2)

	newSet := territory.New(0)
	newSet.Add(2, 2)
	newSet.Add(3, 3)

	d := Compute(old, newSet)

	applied := old.Clone()
	applied.ApplyDelta(toCoords(d.AddX, d.AddY), toCoords(d.SubX, d.SubY))

	twice := applied.Clone()
	twice.ApplyDelta(toCoords(d.AddX, d.AddY), toCoords(d.SubX, d.SubY))

	if applied.Len() != twice.Len() {
		t.Fatalf("expected idempotent apply, got lens %d and %d", applied.Len(), twice.Len())
	}
	for _, c := range applied.Coords() {
		if !twice.Contains(c.X, c.Y) {
			t.Fatalf("expected twice to still contain %+v", c)
		}
	}
}

func toCoords(xs, ys []int32) []territory.Coord {
	out := make([]territory.Coord, len(xs))
	for i := range xs {
		out[i] = territory.Coord{X: xs[i], Y: ys[i]}
	}
	return out
}
