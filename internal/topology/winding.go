package topology

import (
	"math"

	"heartmesh/internal/mathutil"
)

// FixWinding swaps the second and third corner of every full triangle in place,
// flipping the source's clockwise winding to counter-clockwise.
func FixWinding(indices []uint32) {
	for i := 0; i+2 < len(indices); i += 3 {
		indices[i+1], indices[i+2] = indices[i+2], indices[i+1]
	}
}

// Tangents computes one tangent per triangle from positions and UVs and writes
// it to all three corners; later triangles overwrite earlier ones on shared
// vertices. Triangles with a degenerate UV mapping leave their corners untouched,
// so a vertex without any usable triangle keeps the zero tangent.
func Tangents(positions []mathutil.Vec3, uvs [][2]float64, indices []uint32) []mathutil.Vec3 {
	tangents := make([]mathutil.Vec3, len(positions))
	if len(uvs) != len(positions) {
		return tangents
	}
	n := uint32(len(positions))
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		if i0 >= n || i1 >= n || i2 >= n {
			continue
		}
		edge0 := positions[i1].Sub(positions[i0])
		edge1 := positions[i2].Sub(positions[i0])
		dx0, dx1 := uvs[i1][0]-uvs[i0][0], uvs[i2][0]-uvs[i0][0]
		dy0, dy1 := uvs[i1][1]-uvs[i0][1], uvs[i2][1]-uvs[i0][1]

		det := dx0*dy1 - dx1*dy0
		if math.Abs(det) < 1e-12 {
			continue
		}
		r := 1 / det
		t := edge0.Scale(dy1).Sub(edge1.Scale(dy0)).Scale(r)
		tangents[i0] = t
		tangents[i1] = t
		tangents[i2] = t
	}
	return tangents
}

// FaceNormals accumulates area-weighted face normals onto every corner and
// returns the normalized per-vertex result. Used when the source has no normals.
func FaceNormals(positions []mathutil.Vec3, indices []uint32) []mathutil.Vec3 {
	normals := make([]mathutil.Vec3, len(positions))
	n := uint32(len(positions))
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		if i0 >= n || i1 >= n || i2 >= n {
			continue
		}
		fn := positions[i1].Sub(positions[i0]).Cross(positions[i2].Sub(positions[i0]))
		normals[i0] = normals[i0].Add(fn)
		normals[i1] = normals[i1].Add(fn)
		normals[i2] = normals[i2].Add(fn)
	}
	for i := range normals {
		normals[i] = normals[i].Normalize()
	}
	return normals
}
