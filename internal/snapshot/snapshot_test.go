package snapshot

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/HugoSmits86/nativewebp"

	"heartmesh/internal/mesh"
	"heartmesh/internal/raster"
	"heartmesh/internal/shape"
)

func tissue(t *testing.T) *mesh.Mesh {
	t.Helper()
	m, err := mesh.New(shape.Strip(6, 6, 1), mesh.Options{Name: "strip"})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestCaptureIsACopy(t *testing.T) {
	m := tissue(t)
	m.PulseVertex(24)
	f := Capture(m, 3)
	if f.Tick != 3 || len(f.Colors) != m.Len() || len(f.Indices) != len(m.Indices()) {
		t.Fatalf("frame = tick %d, %d colours, %d indices", f.Tick, len(f.Colors), len(f.Indices))
	}
	if d := f.Colors[24].Sub(mesh.PulseColor).Len(); d > 1e-12 {
		t.Errorf("fired vertex colour = %v, want %v", f.Colors[24], mesh.PulseColor)
	}
	if f.Colors[0] != mesh.RestColor {
		t.Errorf("resting colour = %v", f.Colors[0])
	}

	want := f.Colors[24]
	m.ClearPulse()
	if f.Colors[24] != want {
		t.Error("frame changed with the mesh")
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"webp": WebP, "WEBP": WebP, "tga": TGA} {
		if got, err := ParseFormat(in); err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("png"); err == nil {
		t.Error("png accepted")
	}
}

func TestRunWritesFrames(t *testing.T) {
	for _, format := range []Format{WebP, TGA} {
		t.Run(string(format), func(t *testing.T) {
			m := tissue(t)
			m.PulseVertex(0)
			var frames []raster.Frame
			for tick := 0; tick < 4; tick++ {
				frames = append(frames, Capture(m, tick))
				m.TickMs(20)
			}

			dir := t.TempDir()
			results := Run(Config{
				OutputDir:   dir,
				Format:      format,
				RenderSize:  32,
				Supersample: 2,
				Workers:     3,
				KeepImages:  true,
			}, frames)

			if len(results) != len(frames) {
				t.Fatalf("%d results for %d frames", len(results), len(frames))
			}
			for i, r := range results {
				if !r.Success || r.Tick != i {
					t.Fatalf("result %d = %+v", i, r)
				}
				if r.Path != FramePath(dir, i, format) {
					t.Errorf("path = %s", r.Path)
				}
				if b := r.Image.Bounds(); b.Dx() != 32 {
					t.Errorf("image bounds = %v", b)
				}
				data, err := os.ReadFile(r.Path)
				if err != nil {
					t.Fatal(err)
				}
				w, h := imageSize(t, data, format)
				if w != 32 || h != 32 {
					t.Errorf("decoded %dx%d", w, h)
				}
			}
		})
	}
}

// imageSize reads the dimensions from the encoded header.
func imageSize(t *testing.T, data []byte, f Format) (int, int) {
	t.Helper()
	if f == TGA {
		if len(data) < 18 {
			t.Fatalf("tga of %d bytes", len(data))
		}
		return int(binary.LittleEndian.Uint16(data[12:])), int(binary.LittleEndian.Uint16(data[14:]))
	}
	cfg, err := nativewebp.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	return cfg.Width, cfg.Height
}

func TestRunWithoutOutputDir(t *testing.T) {
	m := tissue(t)
	results := Run(Config{RenderSize: 16, Workers: 1}, []raster.Frame{Capture(m, 0)})
	if !results[0].Success || results[0].Path != "" || results[0].Image != nil {
		t.Errorf("result = %+v", results[0])
	}
}

func TestWriteAnimation(t *testing.T) {
	m := tissue(t)
	m.PulseVertex(0)
	var imgs []image.Image
	for i := 0; i < 3; i++ {
		imgs = append(imgs, raster.RenderFrame(Capture(m, i), raster.RenderOptions{Size: 24}))
		m.TickMs(30)
	}
	path := filepath.Join(t.TempDir(), "anim", "pulse.webp")
	if err := WriteAnimation(path, imgs, 50); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	var head [4]byte
	if _, err := f.Read(head[:]); err != nil || string(head[:]) != "RIFF" {
		t.Errorf("header = %q, %v", head, err)
	}

	if err := WriteAnimation(path, nil, 50); err == nil {
		t.Error("empty animation accepted")
	}
}

func TestWebPDecodes(t *testing.T) {
	img := raster.RenderFrame(Capture(tissue(t), 0), raster.RenderOptions{Size: 20})
	var buf bytes.Buffer
	if err := Encode(&buf, img, WebP); err != nil {
		t.Fatal(err)
	}
	cfg, err := nativewebp.DecodeConfig(&buf)
	if err != nil || cfg.Width != 20 {
		t.Fatalf("config = %+v, %v", cfg, err)
	}
}

func TestWriteManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")
	m := Manifest{
		Mesh:      "strip",
		Vertices:  49,
		Animation: filepath.Join(dir, "pulse.webp"),
		Frames: []Result{
			{Tick: 0, Path: FramePath(dir, 0, WebP), Success: true},
			{Tick: 1, Success: false, Error: "boom"},
		},
		Final: map[string]int{"waiting": 49},
	}
	if err := WriteManifest(path, m); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got Manifest
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Animation != "pulse.webp" || got.Frames[0].Path != "frame_00000.webp" {
		t.Errorf("paths not relative: %q %q", got.Animation, got.Frames[0].Path)
	}
	if got.Frames[1].Error != "boom" || got.Final["waiting"] != 49 {
		t.Errorf("manifest = %+v", got)
	}
	if m.Frames[0].Path == "frame_00000.webp" {
		t.Error("WriteManifest rewrote the caller's results")
	}
}
