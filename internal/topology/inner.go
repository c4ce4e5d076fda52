package topology

import (
	"slices"

	"gonum.org/v1/gonum/spatial/kdtree"

	"heartmesh/internal/mathutil"
)

// InnerOptions tunes the opposite-wall ("inner" or fibre) neighbour pass.
type InnerOptions struct {
	// DotThreshold is the largest normal dot product that still counts as
	// opposite facing.
	DotThreshold float64
	// MaxDistance is the largest Euclidean distance, in mesh units, between linked vertices.
	MaxDistance float64
}

// DefaultInnerOptions links vertices whose normals point in near-opposite
// directions (dot <= -0.8) and that lie within 5 mesh units of each other.
func DefaultInnerOptions() InnerOptions {
	return InnerOptions{DotThreshold: -0.8, MaxDistance: 5.0}
}

func (o InnerOptions) linked(pa, na, pb, nb mathutil.Vec3) bool {
	return na.Dot(nb) <= o.DotThreshold && pa.Dist(pb) <= o.MaxDistance
}

// InnerNeighboursBrute tests every unordered pair (i < j). O(n²); kept as the
// reference that InnerNeighbours must agree with.
func InnerNeighboursBrute(positions, normals []mathutil.Vec3, opts InnerOptions) [][2]uint32 {
	if len(normals) != len(positions) {
		return nil
	}
	var pairs [][2]uint32
	for i := range positions {
		for j := i + 1; j < len(positions); j++ {
			if opts.linked(positions[i], normals[i], positions[j], normals[j]) {
				pairs = append(pairs, [2]uint32{uint32(i), uint32(j)})
			}
		}
	}
	return pairs
}

// InnerNeighbours returns the same pairs as InnerNeighboursBrute, sorted by
// (i, j), using a k-d tree radius query to avoid the quadratic scan. Every
// candidate from the tree is re-checked with the exact predicate, so the tree
// only narrows the search.
func InnerNeighbours(positions, normals []mathutil.Vec3, opts InnerOptions) [][2]uint32 {
	if len(normals) != len(positions) || len(positions) < 2 || opts.MaxDistance < 0 {
		return nil
	}

	pts := make(innerPoints, len(positions))
	for i, p := range positions {
		pts[i] = innerPoint{pos: p, idx: uint32(i)}
	}
	tree := kdtree.New(pts, false)

	// Squared radius with a little slack; the exact test below decides.
	radius := opts.MaxDistance * opts.MaxDistance * (1 + 1e-9)

	var pairs [][2]uint32
	for i, p := range positions {
		keep := kdtree.NewDistKeeper(radius)
		tree.NearestSet(keep, innerPoint{pos: p, idx: uint32(i)})
		for _, c := range keep.Heap {
			if c.Comparable == nil {
				continue
			}
			j := c.Comparable.(innerPoint).idx
			if int(j) <= i {
				continue
			}
			if opts.linked(p, normals[i], positions[j], normals[j]) {
				pairs = append(pairs, [2]uint32{uint32(i), j})
			}
		}
	}

	slices.SortFunc(pairs, func(a, b [2]uint32) int {
		if a[0] != b[0] {
			return int(a[0]) - int(b[0])
		}
		return int(a[1]) - int(b[1])
	})
	return pairs
}

// innerPoint is a kdtree.Comparable that remembers its vertex index.
type innerPoint struct {
	pos mathutil.Vec3
	idx uint32
}

func (p innerPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return p.pos[d] - c.(innerPoint).pos[d]
}

func (p innerPoint) Dims() int { return 3 }

func (p innerPoint) Distance(c kdtree.Comparable) float64 {
	return p.pos.DistSq(c.(innerPoint).pos)
}

type innerPoints []innerPoint

func (p innerPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p innerPoints) Len() int                              { return len(p) }
func (p innerPoints) Pivot(d kdtree.Dim) int                { return innerPlane{innerPoints: p, Dim: d}.Pivot() }
func (p innerPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// innerPlane pivots innerPoints on one dimension.
type innerPlane struct {
	kdtree.Dim
	innerPoints
}

func (p innerPlane) Less(i, j int) bool {
	return p.innerPoints[i].pos[p.Dim] < p.innerPoints[j].pos[p.Dim]
}
func (p innerPlane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p innerPlane) Slice(start, end int) kdtree.SortSlicer {
	p.innerPoints = p.innerPoints[start:end]
	return p
}
func (p innerPlane) Swap(i, j int) {
	p.innerPoints[i], p.innerPoints[j] = p.innerPoints[j], p.innerPoints[i]
}
