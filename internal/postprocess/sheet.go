package postprocess

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// ContactSheet tiles images left to right, top to bottom, cols per row, each
// scaled into a cell of cellSize pixels. Empty cells are filled with bg.
func ContactSheet(images []image.Image, cols, cellSize int, bg color.NRGBA) *image.NRGBA {
	if len(images) == 0 || cols <= 0 || cellSize <= 0 {
		return image.NewNRGBA(image.Rect(0, 0, 0, 0))
	}
	cols = min(cols, len(images))
	rows := (len(images) + cols - 1) / cols
	sheet := image.NewNRGBA(image.Rect(0, 0, cols*cellSize, rows*cellSize))
	draw.Draw(sheet, sheet.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	for i, img := range images {
		x, y := (i%cols)*cellSize, (i/cols)*cellSize
		cell := image.Rect(x, y, x+cellSize, y+cellSize)
		draw.ApproxBiLinear.Scale(sheet, cell, img, img.Bounds(), draw.Over, nil)
	}
	return sheet
}
