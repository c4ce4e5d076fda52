package postprocess

import (
	"image"
	"image/color"
	"testing"
)

func fill(size int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestDownsampleOpaque(t *testing.T) {
	red := color.NRGBA{R: 200, G: 10, B: 10, A: 255}
	out := Downsample(fill(64, red), 16)
	if b := out.Bounds(); b.Dx() != 16 || b.Dy() != 16 {
		t.Fatalf("bounds = %v", b)
	}
	if c := out.NRGBAAt(8, 8); c != red {
		t.Errorf("pixel = %v, want %v", c, red)
	}
}

func TestDownsampleNoFringe(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 32; x < 64; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 250, G: 250, B: 250, A: 255})
		}
	}
	out := Downsample(img, 16)
	for x := 0; x < 16; x++ {
		c := out.NRGBAAt(x, 8)
		if c.A > 16 && c.R < 200 {
			t.Errorf("x=%d darkened edge pixel %v", x, c)
		}
	}
}

func TestDownsampleNoUpscale(t *testing.T) {
	img := fill(8, color.NRGBA{A: 255})
	if Downsample(img, 32) != img {
		t.Error("smaller image was resampled")
	}
}

func TestContactSheet(t *testing.T) {
	a := fill(10, color.NRGBA{R: 255, A: 255})
	b := fill(10, color.NRGBA{G: 255, A: 255})
	bg := color.NRGBA{B: 255, A: 255}
	sheet := ContactSheet([]image.Image{a, b, a}, 2, 20, bg)
	if r := sheet.Bounds(); r.Dx() != 40 || r.Dy() != 40 {
		t.Fatalf("bounds = %v", r)
	}
	if c := sheet.NRGBAAt(10, 10); c.R != 255 {
		t.Errorf("cell 0 = %v", c)
	}
	if c := sheet.NRGBAAt(30, 10); c.G != 255 {
		t.Errorf("cell 1 = %v", c)
	}
	if c := sheet.NRGBAAt(30, 30); c != bg {
		t.Errorf("empty cell = %v", c)
	}
	if s := ContactSheet(nil, 3, 10, bg); s.Bounds().Dx() != 0 {
		t.Error("empty input produced pixels")
	}
}
