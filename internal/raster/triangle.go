package raster

import (
	"math"

	"heartmesh/internal/mathutil"
)

// ScreenVertex is a projected vertex: pixel coordinates, view depth (larger
// is closer) and a linear-space colour.
type ScreenVertex struct {
	X, Y, Z float64
	Color   mathutil.Vec3
}

// RasterizeTriangle fills one triangle with z-buffering, interpolating the
// vertex colours across the face and applying the face's flat lighting.
// It allocates nothing.
func RasterizeTriangle(fb *FrameBuffer, a, b, c ScreenVertex, lc *LightConfig) {
	x0, y0, z0 := a.X, a.Y, a.Z
	x1, y1, z1 := b.X, b.Y, b.Z
	x2, y2, z2 := c.X, c.Y, c.Z

	// Face normal in view space for flat shading.
	normal := mathutil.Vec3{x1 - x0, y1 - y0, z1 - z0}.Cross(mathutil.Vec3{x2 - x0, y2 - y0, z2 - z0})
	if normal.Len() < 1e-8 {
		return
	}
	shade := lc.ComputeShade(normal.Normalize())

	minX := max(int(math.Min(math.Min(x0, x1), x2)), 0)
	maxX := min(int(math.Max(math.Max(x0, x1), x2))+1, fb.Width-1)
	minY := max(int(math.Min(math.Min(y0, y1), y2)), 0)
	maxY := min(int(math.Max(math.Max(y0, y1), y2))+1, fb.Height-1)
	if minX > maxX || minY > maxY {
		return
	}

	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det

	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) - y2
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1
			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			z := w0*z0 + w1*z1 + w2*z2
			zIdx := rowOff + sx
			if z <= fb.ZBuf[zIdx] {
				continue
			}
			fb.ZBuf[zIdx] = z

			pxIdx := zIdx * 4
			for k := 0; k < 3; k++ {
				lin := w0*a.Color[k] + w1*b.Color[k] + w2*c.Color[k]
				fb.Color[pxIdx+k] = lc.encode(lin * shade)
			}
			fb.Color[pxIdx+3] = 255
		}
	}
}
