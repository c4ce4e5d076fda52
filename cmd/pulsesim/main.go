package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"heartmesh/internal/config"
	"heartmesh/internal/mathutil"
	"heartmesh/internal/mesh"
	"heartmesh/internal/meshbin"
	"heartmesh/internal/postprocess"
	"heartmesh/internal/raster"
	"heartmesh/internal/scene"
	"heartmesh/internal/shape"
	"heartmesh/internal/snapshot"
)

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	shapeName := flag.String("shape", "", "Procedural source: line, strip, sphere, shell (default: shell)")
	res := flag.Int("res", 0, "Mesh resolution (default: 24)")
	cache := flag.String("cache", "", "Topology cache file; loaded when present, written otherwise")
	di := flag.Float64("di", 0, "Diastolic interval in ms (default: 200)")
	fibres := flag.Bool("fibres", false, "Enable helical fibre anisotropy")
	noInner := flag.Bool("no-inner", false, "Skip linking opposing walls")
	ticks := flag.Int("ticks", 0, "Number of ticks to simulate (default: 600)")
	tickMs := flag.Float64("tick-ms", 0, "Simulated ms per tick (default: 16.67)")
	fire := flag.Int("fire", -1, "Vertex to excite at tick 0 (default: 0)")
	every := flag.Int("every", -1, "Snapshot every N ticks, 0 disables (default: 10)")
	size := flag.Int("size", 0, "Snapshot edge length in pixels (default: 256)")
	format := flag.String("format", "", "Snapshot format: webp or tga (default: webp)")
	animate := flag.Bool("animate", false, "Also write an animated WebP of all snapshots")
	outputDir := flag.String("output", "", "Output directory (default: ./renders)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	verbose := flag.Bool("v", false, "Debug logging")

	flag.Parse()

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	cfg.Resolve(config.Flags{
		Shape:             *shapeName,
		Resolution:        *res,
		CachePath:         *cache,
		DiastolicInterval: *di,
		UseFibres:         *fibres,
		NoInner:           *noInner,
		Ticks:             *ticks,
		TickMs:            *tickMs,
		FireVertex:        *fire,
		SnapshotEvery:     *every,
		RenderSize:        *size,
		Format:            *format,
		Animate:           *animate,
		OutputDir:         *outputDir,
		Workers:           *workers,
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	opts := mesh.Options{
		Name:               cfg.Shape,
		DiastolicInterval:  cfg.DiastolicInterval,
		ConductionVelocity: cfg.ConductionVelocity,
		UseFibres:          cfg.UseFibres,
		SkipOptimization:   cfg.SkipOptimization,
		InnerNeighbours:    cfg.Inner(),
		Workers:            cfg.Workers,
		Logger:             logger,
	}

	fmt.Println("Cardiac mesh pulse simulator")
	fmt.Printf("Shape: %s (resolution %d), DI: %.0fms, fibres: %v, inner: %v\n",
		cfg.Shape, cfg.MeshResolution, cfg.DiastolicInterval, cfg.UseFibres, cfg.Inner())
	fmt.Printf("Ticks: %d x %.2fms, Workers: %d\n", cfg.Ticks, cfg.TickMs, cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	sc := scene.New()
	loader := scene.NewLoader(sc, logger)
	loaded := <-loader.Load(cfg.Shape, func() (*mesh.Mesh, error) {
		return loadMesh(cfg, opts, logger)
	})
	if loaded.Err != nil {
		fmt.Fprintf(os.Stderr, "Error building mesh: %v\n", loaded.Err)
		os.Exit(1)
	}
	m := loaded.Mesh
	st := m.Stats()
	fmt.Printf("Mesh: %d vertices, %d triangles, %d links (degree %d..%d, mean %.2f) in %.2fs\n",
		st.Vertices, st.Triangles, st.Edges, st.MinDegree, st.MaxDegree, st.MeanDegree, loaded.Elapsed.Seconds())
	fmt.Printf("Curves: APD %.1fms, CV %.2f units/ms\n", m.Curve().APD(), m.ConductionVelocity())

	if !m.PulseVertex(cfg.FireVertex) {
		fmt.Fprintf(os.Stderr, "Error: cannot fire vertex %d of %d\n", cfg.FireVertex, m.Len())
		os.Exit(1)
	}

	start := time.Now()
	var frames []raster.Frame
	delta := time.Duration(cfg.TickMs * float64(time.Millisecond))
	peak := 0
	for tick := 0; tick < cfg.Ticks; tick++ {
		if cfg.SnapshotEvery > 0 && tick%cfg.SnapshotEvery == 0 {
			frames = append(frames, snapshot.Capture(m, tick))
		}
		sc.Tick(delta)
		peak = max(peak, m.Counts().APD)
	}
	fmt.Printf("Simulated %.0fms in %.2fs (peak %d depolarized)\n",
		m.Elapsed(), time.Since(start).Seconds(), peak)

	if len(frames) == 0 {
		printCounts(m.Counts())
		return
	}

	f, _ := snapshot.ParseFormat(cfg.Format)
	results := snapshot.Run(snapshot.Config{
		OutputDir:   cfg.OutputDir,
		Format:      f,
		RenderSize:  cfg.RenderSize,
		Supersample: cfg.Supersample,
		Workers:     cfg.Workers,
		Yaw:         cfg.Yaw,
		Pitch:       cfg.Pitch,
		Wireframe:   cfg.Wireframe,
		Background:  color.NRGBA{R: 16, G: 16, B: 20, A: 255},
		KeepImages:  cfg.Animate || cfg.ContactSheet,
		Logger:      logger,
	}, frames)

	failed := 0
	var images []image.Image
	for _, r := range results {
		if !r.Success {
			failed++
			fmt.Printf("  tick %d: %s\n", r.Tick, r.Error)
		}
		if r.Image != nil {
			images = append(images, r.Image)
		}
	}
	fmt.Printf("Snapshots: %d/%d\n", len(results)-failed, len(results))

	manifest := snapshot.Manifest{
		Mesh:              m.Name,
		Vertices:          st.Vertices,
		Triangles:         st.Triangles,
		DiastolicInterval: m.Curve().DiastolicInterval(),
		APD:               m.Curve().APD(),
		Velocity:          m.ConductionVelocity(),
		TickMs:            cfg.TickMs,
		Ticks:             cfg.Ticks,
		Frames:            results,
		Final:             countsMap(m.Counts()),
	}

	if cfg.Animate && len(images) > 0 {
		path := filepath.Join(cfg.OutputDir, "pulse.webp")
		frameMs := uint(cfg.TickMs * float64(cfg.SnapshotEvery))
		if err := snapshot.WriteAnimation(path, images, frameMs); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: animation failed: %v\n", err)
		} else {
			manifest.Animation = path
			fmt.Printf("Animation: %s\n", path)
		}
	}
	if cfg.ContactSheet && len(images) > 0 {
		sheet := postprocess.ContactSheet(images, 8, cfg.RenderSize/2, color.NRGBA{A: 255})
		path := filepath.Join(cfg.OutputDir, "sheet"+f.Ext())
		if err := snapshot.WriteImage(path, sheet, f); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: contact sheet failed: %v\n", err)
		} else {
			fmt.Printf("Contact sheet: %s\n", path)
		}
	}

	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	os.MkdirAll(cfg.OutputDir, 0o755)
	if err := snapshot.WriteManifest(manifestPath, manifest); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	fmt.Println("------------------------------------------------------------")
	printCounts(m.Counts())
	if failed > 0 {
		os.Exit(1)
	}
}

// loadMesh reads the topology cache when one exists and otherwise builds the
// procedural shape, writing the cache for the next run.
func loadMesh(cfg config.Config, opts mesh.Options, log *slog.Logger) (*mesh.Mesh, error) {
	var m *mesh.Mesh
	if cfg.CachePath != "" {
		var err error
		m, err = meshbin.LoadFile(cfg.CachePath, opts)
		switch {
		case err == nil:
			log.Info("loaded topology cache", "path", cfg.CachePath)
		case errors.Is(err, os.ErrNotExist):
			// first run; built and written below
		default:
			log.Warn("ignoring unreadable cache", "path", cfg.CachePath, "err", err)
		}
	}

	if m == nil {
		raw, err := buildShape(cfg)
		if err != nil {
			return nil, err
		}
		m, err = mesh.New(raw, opts)
		if err != nil {
			return nil, err
		}
		if cfg.CachePath != "" {
			if err := meshbin.SaveFile(cfg.CachePath, m); err != nil {
				log.Warn("cache write failed", "path", cfg.CachePath, "err", err)
			} else {
				log.Info("wrote topology cache", "path", cfg.CachePath)
			}
		}
	}

	if cfg.UseFibres {
		positions := make([]mathutil.Vec3, m.Len())
		for i, v := range m.Vertices() {
			positions[i] = v.Position
		}
		if err := m.AssignFibres(shape.HelixFibres(positions, mathutil.Vec3{}, cfg.FibrePitchDeg)); err != nil {
			return nil, err
		}
	}
	m.SetWireframe(cfg.Wireframe)
	return m, nil
}

func buildShape(cfg config.Config) (mesh.Raw, error) {
	n := cfg.MeshResolution
	switch cfg.Shape {
	case "line":
		return shape.Line(n, 1), nil
	case "strip":
		return shape.Strip(n, n, 1), nil
	case "sphere":
		return shape.Sphere(20, n, max(n/2, 2)), nil
	case "shell":
		return shape.Shell(17, 20, n, max(n/2, 2)), nil
	}
	return mesh.Raw{}, fmt.Errorf("unknown shape %q", cfg.Shape)
}

func countsMap(c mesh.StateCounts) map[string]int {
	return map[string]int{
		mesh.Waiting.String():   c.Waiting,
		mesh.Receiving.String(): c.Receiving,
		mesh.APD.String():       c.APD,
		mesh.DI.String():        c.DI,
	}
}

func printCounts(c mesh.StateCounts) {
	fmt.Printf("Final: waiting=%d receiving=%d apd=%d di=%d\n", c.Waiting, c.Receiving, c.APD, c.DI)
}
