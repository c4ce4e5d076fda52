package raster

import (
	"image"
	"image/color"
	"math"

	"heartmesh/internal/mathutil"
)

// Frame is an immutable copy of what a mesh looked like at one tick.
type Frame struct {
	Tick      int
	Positions []mathutil.Vec3
	Colors    []mathutil.Vec3 // sRGB in [0,1], one per position
	Indices   []uint32        // counter-clockwise triangles
}

// RenderOptions control the camera and output size.
type RenderOptions struct {
	Size        int     // output edge length in pixels
	Supersample int     // render at Size*Supersample; <1 means 1
	Yaw, Pitch  float64 // degrees
	Wireframe   bool
	Background  color.NRGBA
	Light       *LightConfig // nil selects DefaultLightConfig
}

// WireColor is the overlay colour for wireframe edges.
var WireColor = color.NRGBA{R: 20, G: 20, B: 24, A: 255}

// RenderFrame rasterizes f orthographically, fitted to the image with a
// margin. The result is Size*Supersample pixels square; callers downsample.
func RenderFrame(f Frame, opts RenderOptions) *image.NRGBA {
	ss := max(opts.Supersample, 1)
	renderSize := max(opts.Size, 1) * ss
	fb := NewFrameBuffer(renderSize, renderSize, opts.Background)
	if len(f.Positions) == 0 || len(f.Colors) != len(f.Positions) {
		return fb.Image()
	}

	lc := opts.Light
	if lc == nil {
		def := DefaultLightConfig()
		lc = &def
	}

	R := mathutil.ViewMatrix(opts.Yaw, opts.Pitch)
	view := make([]mathutil.Vec3, len(f.Positions))
	for i, p := range f.Positions {
		view[i] = R.MulVec3(p)
	}
	lo, hi := mathutil.Bounds(view)
	center := lo.Add(hi).Scale(0.5)
	span := math.Max(math.Max(hi[0]-lo[0], hi[1]-lo[1]), 0.001)
	margin := 16 * ss
	scale := float64(renderSize-2*margin) / span

	sv := project(view, f.Colors, center, scale, renderSize, lc)
	idx := f.Indices
	n := uint32(len(sv))
	for k := 0; k+2 < len(idx); k += 3 {
		a, b, c := idx[k], idx[k+1], idx[k+2]
		if a >= n || b >= n || c >= n {
			continue
		}
		RasterizeTriangle(fb, sv[a], sv[b], sv[c], lc)
	}

	if opts.Wireframe {
		for k := 0; k+2 < len(idx); k += 3 {
			a, b, c := idx[k], idx[k+1], idx[k+2]
			if a >= n || b >= n || c >= n {
				continue
			}
			edge(fb, sv[a], sv[b])
			edge(fb, sv[b], sv[c])
			edge(fb, sv[c], sv[a])
		}
	}
	return fb.Image()
}

// project maps view-space points to pixels, Y up, and decodes colours.
func project(view, colors []mathutil.Vec3, center mathutil.Vec3, scale float64, renderSize int, lc *LightConfig) []ScreenVertex {
	half := float64(renderSize) / 2
	out := make([]ScreenVertex, len(view))
	for i, t := range view {
		c := colors[i]
		out[i] = ScreenVertex{
			X:     (t[0]-center[0])*scale + half,
			Y:     -(t[1]-center[1])*scale + half,
			Z:     t[2],
			Color: mathutil.Vec3{lc.toLinear(c[0]), lc.toLinear(c[1]), lc.toLinear(c[2])},
		}
	}
	return out
}

func edge(fb *FrameBuffer, a, b ScreenVertex) {
	fb.drawLine(int(math.Round(a.X)), int(math.Round(a.Y)), int(math.Round(b.X)), int(math.Round(b.Y)), WireColor)
}
