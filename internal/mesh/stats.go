package mesh

import (
	"gonum.org/v1/gonum/floats"

	"heartmesh/internal/mathutil"
	"heartmesh/internal/topology"
)

// Stats summarizes mesh topology.
type Stats struct {
	Vertices   int
	Triangles  int
	Edges      int // undirected neighbour links
	Asymmetric int // links present in only one direction
	MinDegree  int
	MaxDegree  int
	MeanDegree float64
	BoundsMin  mathutil.Vec3
	BoundsMax  mathutil.Vec3
}

// ComputeStats summarizes an arbitrary vertex set.
func ComputeStats(verts []Vertex, indices []uint32) Stats {
	s := Stats{Vertices: len(verts), Triangles: len(indices) / 3}
	if len(verts) == 0 {
		return s
	}
	sets := make([][]uint32, len(verts))
	degrees := make([]float64, len(verts))
	positions := make([]mathutil.Vec3, len(verts))
	for i := range verts {
		sets[i] = verts[i].Neighbours
		degrees[i] = float64(len(verts[i].Neighbours))
		positions[i] = verts[i].Position
	}
	s.Edges = topology.EdgeCount(sets)
	s.Asymmetric = topology.Asymmetric(sets)
	s.MinDegree = int(floats.Min(degrees))
	s.MaxDegree = int(floats.Max(degrees))
	s.MeanDegree = floats.Sum(degrees) / float64(len(degrees))
	s.BoundsMin, s.BoundsMax = mathutil.Bounds(positions)
	return s
}

// Stats summarizes this mesh.
func (m *Mesh) Stats() Stats { return ComputeStats(m.vertices, m.indices) }
