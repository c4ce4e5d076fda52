// Package snapshot turns simulation ticks into image files: it copies the
// visible state of a mesh, renders the copies on a worker pool and encodes
// them as stills, an animation and a manifest.
package snapshot

import (
	"heartmesh/internal/mathutil"
	"heartmesh/internal/mesh"
	"heartmesh/internal/raster"
)

// Capture copies the positions and blended colours of m so the frame can be
// rendered on another goroutine while the simulation keeps ticking. The
// index buffer is shared; it never changes after construction.
func Capture(m *mesh.Mesh, tick int) raster.Frame {
	verts := m.Vertices()
	f := raster.Frame{
		Tick:      tick,
		Positions: make([]mathutil.Vec3, len(verts)),
		Colors:    make([]mathutil.Vec3, len(verts)),
		Indices:   m.Indices(),
	}
	for i := range verts {
		f.Positions[i] = verts[i].Position
		f.Colors[i] = verts[i].Color()
	}
	return f
}
