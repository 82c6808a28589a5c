package mapgen

// Shared grid-traversal helpers used by the connectivity-repair and
// moisture phases (multi-source BFS) and by connected-component labeling.
// Grounded on dshills-dungo's pkg/carving connectivity helpers, generalized
// from room-graph connectivity to raster-grid connectivity.

var neighbors4 = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
var neighbors8 = [8][2]int{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{1, 1}, {1, -1}, {-1, 1}, {-1, -1},
}

// labelComponents4 labels 4-connected components of cells for which
// include(x,y) is true. Returns a label grid (row-major, -1 for excluded
// cells) and the size of each label.
func labelComponents4(w, h int, include func(x, y int) bool) (labels []int, sizes []int) {
	labels = make([]int, w*h)
	for i := range labels {
		labels[i] = -1
	}
	nextLabel := 0
	queue := make([][2]int, 0, w*h/4)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			if labels[idx] != -1 || !include(x, y) {
				continue
			}
			label := nextLabel
			nextLabel++
			labels[idx] = label
			size := 0
			queue = queue[:0]
			queue = append(queue, [2]int{x, y})
			for len(queue) > 0 {
				cur := queue[len(queue)-1]
				queue = queue[:len(queue)-1]
				size++
				for _, d := range neighbors4 {
					nx, ny := cur[0]+d[0], cur[1]+d[1]
					if nx < 0 || nx >= w || ny < 0 || ny >= h {
						continue
					}
					nidx := ny*w + nx
					if labels[nidx] != -1 || !include(nx, ny) {
						continue
					}
					labels[nidx] = label
					queue = append(queue, [2]int{nx, ny})
				}
			}
			sizes = append(sizes, size)
		}
	}
	return labels, sizes
}

// multiSourceBFS performs a BFS from every seed cell simultaneously,
// returning for each cell the distance to its nearest seed and (if
// wantNearest is true) the coordinates of that nearest seed. Distance is in
// grid steps (4-connected). Cells unreachable within maxDist keep distance
// -1.
func multiSourceBFS(w, h int, seeds [][2]int, maxDist int, wantNearest bool) (dist []int, nearest [][2]int) {
	dist = make([]int, w*h)
	for i := range dist {
		dist[i] = -1
	}
	if wantNearest {
		nearest = make([][2]int, w*h)
		for i := range nearest {
			nearest[i] = [2]int{-1, -1}
		}
	}
	queue := make([][2]int, 0, len(seeds))
	for _, s := range seeds {
		idx := s[1]*w + s[0]
		if dist[idx] != -1 {
			continue
		}
		dist[idx] = 0
		if wantNearest {
			nearest[idx] = s
		}
		queue = append(queue, s)
	}

	head := 0
	for head < len(queue) {
		cur := queue[head]
		head++
		idx := cur[1]*w + cur[0]
		d := dist[idx]
		if maxDist >= 0 && d >= maxDist {
			continue
		}
		for _, delta := range neighbors4 {
			nx, ny := cur[0]+delta[0], cur[1]+delta[1]
			if nx < 0 || nx >= w || ny < 0 || ny >= h {
				continue
			}
			nidx := ny*w + nx
			if dist[nidx] != -1 {
				continue
			}
			dist[nidx] = d + 1
			if wantNearest {
				nearest[nidx] = nearest[idx]
			}
			queue = append(queue, [2]int{nx, ny})
		}
	}
	return dist, nearest
}
