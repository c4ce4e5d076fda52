package snapshot

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"heartmesh/internal/mesh"
	"heartmesh/internal/postprocess"
	"heartmesh/internal/raster"
)

// Config holds the shared settings for a snapshot run.
type Config struct {
	OutputDir   string
	Format      Format
	RenderSize  int
	Supersample int
	Workers     int
	Yaw, Pitch  float64
	Wireframe   bool
	Background  color.NRGBA
	// KeepImages retains every encoded image in its Result for animation.
	KeepImages bool
	Logger     *slog.Logger
}

// Result holds the outcome of rendering one frame.
type Result struct {
	Tick    int          `json:"tick"`
	Path    string       `json:"path,omitempty"`
	Success bool         `json:"success"`
	Error   string       `json:"error,omitempty"`
	Image   *image.NRGBA `json:"-"`
}

// FramePath is where frame tick lands under dir.
func FramePath(dir string, tick int, f Format) string {
	return filepath.Join(dir, fmt.Sprintf("frame_%05d%s", tick, f.Ext()))
}

// Run renders frames on a worker pool. Results are in input order.
func Run(cfg Config, frames []raster.Frame) []Result {
	log := cfg.Logger
	if log == nil {
		log = mesh.NopLogger()
	}
	workers := max(cfg.Workers, 1)
	total := len(frames)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if p := processed.Load(); p > 0 {
					rate := float64(p) / time.Since(start).Seconds()
					log.Info("rendering snapshots", "done", p, "total", total, "per_sec", rate)
				}
			}
		}
	}()

	work := make(chan int, workers*2)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx] = processFrame(cfg, frames[idx])
				processed.Add(1)
			}
		}()
	}
	for i := range frames {
		work <- i
	}
	close(work)

	wg.Wait()
	close(done)

	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
			log.Warn("snapshot failed", "tick", r.Tick, "err", r.Error)
		}
	}
	log.Info("snapshots written", "frames", total, "failed", failed, "elapsed", time.Since(start))
	return results
}

func processFrame(cfg Config, f raster.Frame) Result {
	res := Result{Tick: f.Tick}
	img := raster.RenderFrame(f, raster.RenderOptions{
		Size:        cfg.RenderSize,
		Supersample: cfg.Supersample,
		Yaw:         cfg.Yaw,
		Pitch:       cfg.Pitch,
		Wireframe:   cfg.Wireframe,
		Background:  cfg.Background,
	})
	if cfg.Supersample > 1 {
		img = postprocess.Downsample(img, cfg.RenderSize)
	}
	if cfg.KeepImages {
		res.Image = img
	}
	if cfg.OutputDir == "" {
		res.Success = true
		return res
	}

	res.Path = FramePath(cfg.OutputDir, f.Tick, cfg.Format)
	if err := WriteImage(res.Path, img, cfg.Format); err != nil {
		res.Error = err.Error()
		return res
	}
	res.Success = true
	return res
}
