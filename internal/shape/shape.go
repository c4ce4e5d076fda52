// Package shape generates procedural tissue geometry. Triangles are emitted
// clockwise, the convention of the mesh files the build pipeline expects,
// so after the winding fix faces are counter-clockwise seen from outside.
package shape

import (
	"math"

	"heartmesh/internal/mathutil"
	"heartmesh/internal/mesh"
)

// Line places n vertices spacing apart along +X. Each consecutive pair is
// joined by a degenerate triangle so adjacency links only immediate
// predecessors and successors.
func Line(n int, spacing float64) mesh.Raw {
	var raw mesh.Raw
	for i := 0; i < n; i++ {
		raw.Positions = append(raw.Positions, mathutil.Vec3{float64(i) * spacing, 0, 0})
		raw.Normals = append(raw.Normals, mathutil.Vec3{0, 0, 1})
	}
	for i := 0; i+1 < n; i++ {
		a, b := uint32(i), uint32(i+1)
		raw.Indices = append(raw.Indices, a, b, b)
	}
	return raw
}

// Strip is a flat cols×rows grid of quads in the XY plane facing +Z.
func Strip(cols, rows int, spacing float64) mesh.Raw {
	var raw mesh.Raw
	if cols < 1 || rows < 1 {
		return raw
	}
	for y := 0; y <= rows; y++ {
		for x := 0; x <= cols; x++ {
			raw.Positions = append(raw.Positions, mathutil.Vec3{float64(x) * spacing, float64(y) * spacing, 0})
			raw.Normals = append(raw.Normals, mathutil.Vec3{0, 0, 1})
			raw.UVs = append(raw.UVs, [2]float64{float64(x) / float64(cols), float64(y) / float64(rows)})
		}
	}
	w := uint32(cols + 1)
	for y := uint32(0); y < uint32(rows); y++ {
		for x := uint32(0); x < uint32(cols); x++ {
			a, b := y*w+x, y*w+x+1
			c, d := a+w, b+w
			raw.Indices = append(raw.Indices, a, c, b, b, c, d)
		}
	}
	return raw
}

// Sphere is a UV sphere centred on the origin with outward normals. The seam
// column and the pole rows are emitted as separate vertices with coincident
// positions, as exported meshes usually are; the build pipeline merges them.
func Sphere(radius float64, segments, rings int) mesh.Raw {
	return sphere(radius, segments, rings, false)
}

// Shell is two concentric spheres: an outer wall facing outward and an inner
// wall facing inward, like the epicardium and endocardium of a ventricle.
func Shell(inner, outer float64, segments, rings int) mesh.Raw {
	raw := sphere(outer, segments, rings, false)
	in := sphere(inner, segments, rings, true)
	off := uint32(len(raw.Positions))
	raw.Positions = append(raw.Positions, in.Positions...)
	raw.Normals = append(raw.Normals, in.Normals...)
	raw.UVs = append(raw.UVs, in.UVs...)
	for _, i := range in.Indices {
		raw.Indices = append(raw.Indices, i+off)
	}
	return raw
}

func sphere(radius float64, segments, rings int, inward bool) mesh.Raw {
	var raw mesh.Raw
	if segments < 3 || rings < 2 || !(radius > 0) {
		return raw
	}
	for r := 0; r <= rings; r++ {
		theta := math.Pi * float64(r) / float64(rings)
		for s := 0; s <= segments; s++ {
			var p mathutil.Vec3
			switch r {
			case 0:
				p = mathutil.Vec3{0, radius, 0}
			case rings:
				p = mathutil.Vec3{0, -radius, 0}
			default:
				phi := 2 * math.Pi * float64(s%segments) / float64(segments)
				st := math.Sin(theta)
				p = mathutil.Vec3{radius * st * math.Cos(phi), radius * math.Cos(theta), radius * st * math.Sin(phi)}
			}
			n := p.Normalize()
			if inward {
				n = n.Scale(-1)
			}
			raw.Positions = append(raw.Positions, p)
			raw.Normals = append(raw.Normals, n)
			raw.UVs = append(raw.UVs, [2]float64{float64(s) / float64(segments), float64(r) / float64(rings)})
		}
	}

	w := uint32(segments + 1)
	for r := 0; r < rings; r++ {
		for s := 0; s < segments; s++ {
			a := uint32(r)*w + uint32(s)
			b := a + 1
			c, d := a+w, b+w
			// Clockwise source order; after the winding fix (a,b,c) and (b,d,c)
			// face outward.
			first := [3]uint32{a, c, b}
			second := [3]uint32{b, c, d}
			if inward {
				first[1], first[2] = first[2], first[1]
				second[1], second[2] = second[2], second[1]
			}
			if r != 0 {
				raw.Indices = append(raw.Indices, first[:]...)
			}
			if r != rings-1 {
				raw.Indices = append(raw.Indices, second[:]...)
			}
		}
	}
	return raw
}

// HelixFibres assigns each position a fibre tangent to the circle around the
// Y axis through center, rotated about the radial direction by an angle that
// sweeps from -pitchDeg at the lowest point to +pitchDeg at the highest.
// Points on the axis get a zero fibre.
func HelixFibres(positions []mathutil.Vec3, center mathutil.Vec3, pitchDeg float64) []mathutil.Vec3 {
	out := make([]mathutil.Vec3, len(positions))
	if len(positions) == 0 {
		return out
	}
	lo, hi := mathutil.Bounds(positions)
	span := hi[1] - lo[1]
	up := mathutil.Vec3{0, 1, 0}
	for i, p := range positions {
		d := p.Sub(center)
		radial := mathutil.Vec3{d[0], 0, d[2]}.Normalize()
		if radial.IsZero() {
			continue
		}
		tangent := up.Cross(radial)
		h := 0.0
		if span > 0 {
			h = 2*(p[1]-lo[1])/span - 1
		}
		rot := mathutil.RotAxis(radial, mathutil.Deg2Rad(pitchDeg*h))
		out[i] = rot.MulVec3(tangent).Normalize()
	}
	return out
}
