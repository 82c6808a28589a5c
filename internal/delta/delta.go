// Package delta implements the per-subscriber territory delta engine
// (§4.G): symmetric-difference computation between a subscriber's last
// acknowledged snapshot and the current territory, represented as paired
// coordinate arrays, with an optional packed varint encoding as a
// negotiated compression.
package delta

import "github.com/s4lvi/historyengine-sub001/internal/territory"

// Delta is the paired-array additive/subtractive coordinate set that
// transforms a subscriber's prior territory snapshot into the current one.
type Delta struct {
	AddX, AddY []int32
	SubX, SubY []int32
}

// Empty reports whether the delta carries no changes.
func (d Delta) Empty() bool {
	return len(d.AddX) == 0 && len(d.SubX) == 0
}

// Compute returns the symmetric-difference delta between old and new
// territory sets: add = new \ old, sub = old \ new.
func Compute(old, newSet *territory.Set) Delta {
	add, sub := territory.Diff(old, newSet)
	d := Delta{
		AddX: make([]int32, len(add)),
		AddY: make([]int32, len(add)),
		SubX: make([]int32, len(sub)),
		SubY: make([]int32, len(sub)),
	}
	for i, c := range add {
		d.AddX[i], d.AddY[i] = c.X, c.Y
	}
	for i, c := range sub {
		d.SubX[i], d.SubY[i] = c.X, c.Y
	}
	return d
}

// Full returns a delta representing a full resync: every cell of s as an
// add, nothing subtracted. Used when a subscriber requests full:true or on
// the periodic full-snapshot cadence (§4.G).
func Full(s *territory.Set) Delta {
	coords := s.Coords()
	d := Delta{AddX: make([]int32, len(coords)), AddY: make([]int32, len(coords))}
	for i, c := range coords {
		d.AddX[i], d.AddY[i] = c.X, c.Y
	}
	return d
}

// Defeated returns the delta for a nation that was just defeated: every
// previously-owned cell moves to sub, nothing is added.
func Defeated(prevOwned *territory.Set) Delta {
	coords := prevOwned.Coords()
	d := Delta{
		AddX: make([]int32, 0),
		AddY: make([]int32, 0),
		SubX: make([]int32, len(coords)),
		SubY: make([]int32, len(coords)),
	}
	for i, c := range coords {
		d.SubX[i], d.SubY[i] = c.X, c.Y
	}
	return d
}
