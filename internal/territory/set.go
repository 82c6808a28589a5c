// Package territory implements the packed coordinate set used to represent
// a nation's owned cells, per Design Note 1: a hashed set of uint64 keys
// packing x into the high 32 bits and y into the low 32 bits, materialized
// to paired {x[],y[]} arrays only at broadcast or API boundaries.
package territory

// Coord is a single (x, y) cell coordinate.
type Coord struct {
	X, Y int32
}

// Cells are packed as the two int32 coordinates concatenated into a single
// uint64 key (x in the high 32 bits, y in the low 32 bits), preserving the
// full int32 range of both axes losslessly.
func pack(x, y int32) uint64 {
	return uint64(uint32(x))<<32 | uint64(uint32(y))
}

func unpack(k uint64) Coord {
	x := int32(uint32(k >> 32))
	y := int32(uint32(k))
	return Coord{X: x, Y: y}
}

// Set is a mutable hashed set of cell coordinates.
type Set struct {
	m map[uint64]struct{}
}

// New returns an empty Set, optionally pre-sized.
func New(sizeHint int) *Set {
	return &Set{m: make(map[uint64]struct{}, sizeHint)}
}

// FromCoords builds a Set from a slice of coordinates.
func FromCoords(coords []Coord) *Set {
	s := New(len(coords))
	for _, c := range coords {
		s.Add(c.X, c.Y)
	}
	return s
}

func (s *Set) Add(x, y int32) {
	if s.m == nil {
		s.m = make(map[uint64]struct{})
	}
	s.m[pack(x, y)] = struct{}{}
}

func (s *Set) Remove(x, y int32) {
	delete(s.m, pack(x, y))
}

func (s *Set) Contains(x, y int32) bool {
	if s == nil || s.m == nil {
		return false
	}
	_, ok := s.m[pack(x, y)]
	return ok
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.m)
}

// Clone returns a deep copy.
func (s *Set) Clone() *Set {
	out := New(s.Len())
	for k := range s.m {
		out.m[k] = struct{}{}
	}
	return out
}

// Coords materializes the set into a stable-sorted coordinate slice
// (sorted so broadcast output and tests are deterministic).
func (s *Set) Coords() []Coord {
	out := make([]Coord, 0, s.Len())
	for k := range s.m {
		out = append(out, unpack(k))
	}
	sortCoords(out)
	return out
}

// XY splits the set into parallel x[]/y[] arrays, the wire format used by
// every territory/delta payload.
func (s *Set) XY() (xs, ys []int32) {
	coords := s.Coords()
	xs = make([]int32, len(coords))
	ys = make([]int32, len(coords))
	for i, c := range coords {
		xs[i] = c.X
		ys[i] = c.Y
	}
	return xs, ys
}

func sortCoords(c []Coord) {
	// insertion sort is fine for typical per-nation territory sizes and
	// keeps this package dependency-free; for very large territories the
	// caller should prefer Coords() sparingly (broadcast time only).
	for i := 1; i < len(c); i++ {
		j := i
		for j > 0 && less(c[j], c[j-1]) {
			c[j], c[j-1] = c[j-1], c[j]
			j--
		}
	}
}

func less(a, b Coord) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}

// Diff computes add = new \ old and sub = old \ new, the core of the delta
// engine (§4.G). Both results are sorted coordinate slices.
func Diff(old, new *Set) (add, sub []Coord) {
	if new != nil {
		for k := range new.m {
			if old == nil || !old.hasKey(k) {
				add = append(add, unpack(k))
			}
		}
	}
	if old != nil {
		for k := range old.m {
			if new == nil || !new.hasKey(k) {
				sub = append(sub, unpack(k))
			}
		}
	}
	sortCoords(add)
	sortCoords(sub)
	return add, sub
}

func (s *Set) hasKey(k uint64) bool {
	if s == nil {
		return false
	}
	_, ok := s.m[k]
	return ok
}

// ApplyDelta mutates the set in place: removes sub, then adds add. This is
// the client-side reconciliation law of §8: applying (sub, add) to a prior
// snapshot must yield the new territory exactly.
func (s *Set) ApplyDelta(add, sub []Coord) {
	for _, c := range sub {
		s.Remove(c.X, c.Y)
	}
	for _, c := range add {
		s.Add(c.X, c.Y)
	}
}

// Disjoint reports whether two sets share no cells — the pairwise
// territory-disjointness invariant of §8, checked per nation pair.
func Disjoint(a, b *Set) bool {
	if a.Len() > b.Len() {
		a, b = b, a
	}
	for k := range a.m {
		if _, ok := b.m[k]; ok {
			return false
		}
	}
	return true
}
