package delta

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Pack encodes a Delta as a variable-length integer stream: section counts
// followed by delta-of-previous-coordinate varints (coordinates within one
// section are usually close together after sorting by x, then y, so
// delta-encoding keeps most varints to a single byte). Grounded on the
// reader/writer split of a length-prefixed binary packet format, adapted
// from fixed-width fields to signed varints since coordinates can be
// negative and the spec calls for a packed stream only as an optional
// compression, not a fixed wire shape.
func Pack(d Delta) []byte {
	var buf bytes.Buffer
	writeVarintSection(&buf, d.AddX, d.AddY)
	writeVarintSection(&buf, d.SubX, d.SubY)
	return buf.Bytes()
}

func writeVarintSection(buf *bytes.Buffer, xs, ys []int32) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutVarint(tmp[:], int64(len(xs)))
	buf.Write(tmp[:n])

	var prevX, prevY int32
	for i := range xs {
		n = binary.PutVarint(tmp[:], int64(xs[i]-prevX))
		buf.Write(tmp[:n])
		n = binary.PutVarint(tmp[:], int64(ys[i]-prevY))
		buf.Write(tmp[:n])
		prevX, prevY = xs[i], ys[i]
	}
}

// Unpack decodes a byte stream produced by Pack back into a Delta.
func Unpack(data []byte) (Delta, error) {
	r := bytes.NewReader(data)
	addX, addY, err := readVarintSection(r)
	if err != nil {
		return Delta{}, fmt.Errorf("delta: unpack add section: %w", err)
	}
	subX, subY, err := readVarintSection(r)
	if err != nil {
		return Delta{}, fmt.Errorf("delta: unpack sub section: %w", err)
	}
	return Delta{AddX: addX, AddY: addY, SubX: subX, SubY: subY}, nil
}

func readVarintSection(r *bytes.Reader) ([]int32, []int32, error) {
	count, err := binary.ReadVarint(r)
	if err != nil {
		return nil, nil, err
	}
	if count < 0 {
		return nil, nil, fmt.Errorf("delta: negative section count %d", count)
	}
	xs := make([]int32, count)
	ys := make([]int32, count)
	var prevX, prevY int32
	for i := int64(0); i < count; i++ {
		dx, err := binary.ReadVarint(r)
		if err != nil {
			return nil, nil, err
		}
		dy, err := binary.ReadVarint(r)
		if err != nil {
			return nil, nil, err
		}
		prevX += int32(dx)
		prevY += int32(dy)
		xs[i], ys[i] = prevX, prevY
	}
	return xs, ys, nil
}
