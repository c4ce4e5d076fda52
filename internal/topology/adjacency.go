package topology

import (
	"golang.org/x/sync/errgroup"
)

type span struct{ lo, hi int }

// link is a directed neighbour record: u is adjacent to v.
type link struct{ v, u uint32 }

// Adjacency returns, for every vertex in [0, vertexCount), the sorted set of
// vertices it shares a triangle with.
//
// The work runs in two passes over at most workers goroutines. First the
// triangles are split into disjoint ranges; each range emits directed links
// bucketed by the ownership partition of the receiving vertex. Then each owner
// merges its buckets from every range and normalizes its own sets, so no set is
// written by two goroutines and no lock is needed. The result is identical for
// any worker count.
//
// Corners at or beyond vertexCount, self links from degenerate triangles and a
// trailing partial triangle are skipped.
func Adjacency(indices []uint32, vertexCount, workers int) [][]uint32 {
	sets := make([][]uint32, vertexCount)
	triCount := len(indices) / 3
	if vertexCount == 0 || triCount == 0 {
		return sets
	}
	if workers < 1 {
		workers = 1
	}

	owners := partition(vertexCount, workers)
	ranges := partition(triCount, workers)
	buckets := make([][][]link, len(ranges))

	var g errgroup.Group
	g.SetLimit(workers)
	for r, tris := range ranges {
		g.Go(func() error {
			buckets[r] = scanRange(indices, tris, vertexCount, owners)
			return nil
		})
	}
	_ = g.Wait()

	for p, own := range owners {
		g.Go(func() error {
			mergeOwned(sets, buckets, p, own)
			return nil
		})
	}
	_ = g.Wait()

	return sets
}

// partition splits [0, n) into at most parts contiguous, non-empty spans.
// The first n%parts spans hold one extra element.
func partition(n, parts int) []span {
	if parts > n {
		parts = n
	}
	if parts < 1 {
		parts = 1
	}
	spans := make([]span, 0, parts)
	size := n / parts
	rem := n % parts
	lo := 0
	for i := 0; i < parts; i++ {
		hi := lo + size
		if i < rem {
			hi++
		}
		spans = append(spans, span{lo, hi})
		lo = hi
	}
	return spans
}

// ownerOf returns the index of the span in spans (as built by partition)
// that contains v.
func ownerOf(spans []span, v int) int {
	parts := len(spans)
	n := spans[parts-1].hi
	size := n / parts
	rem := n % parts
	big := rem * (size + 1)
	if v < big {
		return v / (size + 1)
	}
	return rem + (v-big)/size
}

func scanRange(indices []uint32, tris span, vertexCount int, owners []span) [][]link {
	out := make([][]link, len(owners))
	n := uint32(vertexCount)
	for t := tris.lo; t < tris.hi; t++ {
		tri := indices[t*3 : t*3+3]
		for i, v := range tri {
			if v >= n {
				continue
			}
			p := ownerOf(owners, int(v))
			for j, u := range tri {
				if j == i || u == v || u >= n {
					continue
				}
				out[p] = append(out[p], link{v, u})
			}
		}
	}
	return out
}

func mergeOwned(sets [][]uint32, buckets [][][]link, p int, own span) {
	for _, b := range buckets {
		for _, l := range b[p] {
			sets[l.v] = append(sets[l.v], l.u)
		}
	}
	for v := own.lo; v < own.hi; v++ {
		sets[v] = Normalize(sets[v])
	}
}
