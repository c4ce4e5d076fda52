package topology

import "slices"

// Neighbour sets are sorted, duplicate-free []uint32. Keeping them sorted makes
// iteration order deterministic, which the simulation relies on for repeatable runs.

// Insert adds v to the sorted set s and returns the updated set.
func Insert(s []uint32, v uint32) []uint32 {
	i, found := slices.BinarySearch(s, v)
	if found {
		return s
	}
	return slices.Insert(s, i, v)
}

// Contains reports whether the sorted set s holds v.
func Contains(s []uint32, v uint32) bool {
	_, found := slices.BinarySearch(s, v)
	return found
}

// Normalize sorts s and removes duplicates in place.
func Normalize(s []uint32) []uint32 {
	slices.Sort(s)
	return slices.Compact(s)
}

// Merge links both members of every pair into sets.
// Pairs naming an out-of-range vertex or the same vertex twice are skipped.
func Merge(sets [][]uint32, pairs [][2]uint32) {
	n := uint32(len(sets))
	for _, p := range pairs {
		a, b := p[0], p[1]
		if a == b || a >= n || b >= n {
			continue
		}
		sets[a] = Insert(sets[a], b)
		sets[b] = Insert(sets[b], a)
	}
}

// Asymmetric counts directed links u->v whose reverse v->u is missing, plus
// self links and links pointing outside the set array.
func Asymmetric(sets [][]uint32) int {
	bad := 0
	n := uint32(len(sets))
	for u, s := range sets {
		for _, v := range s {
			if v >= n || v == uint32(u) || !Contains(sets[v], uint32(u)) {
				bad++
			}
		}
	}
	return bad
}

// EdgeCount returns the number of undirected links, counting u-v once.
func EdgeCount(sets [][]uint32) int {
	total := 0
	for _, s := range sets {
		total += len(s)
	}
	return total / 2
}
