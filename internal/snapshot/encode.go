package snapshot

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
)

// Format selects the still image encoder.
type Format string

const (
	WebP Format = "webp"
	TGA  Format = "tga"
)

// ParseFormat accepts a format name in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case WebP, TGA:
		return f, nil
	}
	return "", fmt.Errorf("snapshot: unknown format %q", s)
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string { return "." + string(f) }

// Encode writes img to w in format f.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case WebP:
		return nativewebp.Encode(w, img, nil)
	case TGA:
		return tga.Encode(w, img)
	}
	return fmt.Errorf("snapshot: unknown format %q", f)
}

// WriteImage encodes img to path, creating parent directories.
func WriteImage(path string, img image.Image, f Format) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(out, img, f); err != nil {
		out.Close()
		return fmt.Errorf("%s encode: %w", f, err)
	}
	return out.Close()
}

// WriteAnimation encodes images as a looping animated WebP, frameMs per frame.
func WriteAnimation(path string, images []image.Image, frameMs uint) error {
	if len(images) == 0 {
		return fmt.Errorf("snapshot: animation %s has no frames", path)
	}
	ani := &nativewebp.Animation{
		Images:    images,
		Durations: make([]uint, len(images)),
		Disposals: make([]uint, len(images)),
	}
	for i := range ani.Durations {
		ani.Durations[i] = max(frameMs, 1)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := nativewebp.EncodeAll(out, ani, nil); err != nil {
		out.Close()
		return fmt.Errorf("snapshot: animation %s: %w", path, err)
	}
	return out.Close()
}
