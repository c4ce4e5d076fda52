// Package postprocess resizes and composes rendered snapshot images.
package postprocess

import (
	"image"

	"golang.org/x/image/draw"
)

// Downsample scales img to a targetSize square with CatmullRom filtering.
// Images with transparent pixels are filtered in premultiplied space so the
// background does not bleed dark fringes into the tissue edge.
func Downsample(img *image.NRGBA, targetSize int) *image.NRGBA {
	b := img.Bounds()
	if targetSize <= 0 || (b.Dx() <= targetSize && b.Dy() <= targetSize) {
		return img
	}
	rect := image.Rect(0, 0, targetSize, targetSize)

	if opaque(img) {
		dst := image.NewNRGBA(rect)
		draw.CatmullRom.Scale(dst, rect, img, b, draw.Src, nil)
		return dst
	}

	dst := image.NewRGBA(rect)
	draw.CatmullRom.Scale(dst, rect, premultiply(img), b, draw.Src, nil)
	return unpremultiply(dst)
}

func opaque(img *image.NRGBA) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X, y)]
		for i := 3; i < len(row); i += 4 {
			if row[i] != 255 {
				return false
			}
		}
	}
	return true
}

func premultiply(img *image.NRGBA) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			si := img.PixOffset(x, y)
			di := out.PixOffset(x, y)
			a := float64(img.Pix[si+3]) / 255.0
			for k := 0; k < 3; k++ {
				out.Pix[di+k] = uint8(float64(img.Pix[si+k])*a + 0.5)
			}
			out.Pix[di+3] = img.Pix[si+3]
		}
	}
	return out
}

func unpremultiply(img *image.RGBA) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(b)
	for i := 0; i+3 < len(img.Pix); i += 4 {
		a := float64(img.Pix[i+3])
		if a > 1 {
			inv := 255.0 / a
			for k := 0; k < 3; k++ {
				out.Pix[i+k] = clamp8(float64(img.Pix[i+k]) * inv)
			}
		}
		out.Pix[i+3] = img.Pix[i+3]
	}
	return out
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
