package topology

import "heartmesh/internal/mathutil"

// DedupResult describes how Dedup collapsed coincident vertices.
type DedupResult struct {
	// Keep lists, in ascending order, the original index of every surviving vertex.
	// Survivor k moves to position k.
	Keep []int
	// Remap maps every original vertex index to its new dense index.
	Remap []uint32
	// Indices is the rewritten index buffer.
	Indices []uint32
	// Removed is the number of vertices merged away.
	Removed int
	// Dropped is the number of malformed indices removed before merging.
	Dropped int
}

// Dedup merges vertices with identical positions into the one with the lowest
// original index and rewrites the index buffer to the dense numbering.
// Running it again on its own output changes nothing.
func Dedup(positions []mathutil.Vec3, indices []uint32) DedupResult {
	clean, dropped := Sanitize(indices, len(positions))

	first := make(map[mathutil.Vec3]uint32, len(positions))
	remap := make([]uint32, len(positions))
	keep := make([]int, 0, len(positions))
	for i, p := range positions {
		if k, ok := first[p]; ok {
			remap[i] = k
			continue
		}
		k := uint32(len(keep))
		first[p] = k
		remap[i] = k
		keep = append(keep, i)
	}

	out := make([]uint32, len(clean))
	for i, v := range clean {
		out[i] = remap[v]
	}

	return DedupResult{
		Keep:    keep,
		Remap:   remap,
		Indices: out,
		Removed: len(positions) - len(keep),
		Dropped: dropped,
	}
}
