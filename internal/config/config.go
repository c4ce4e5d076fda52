package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Config holds every simulation and snapshot setting.
type Config struct {
	// Source
	Shape          string  `json:"shape"`
	MeshResolution int     `json:"mesh_resolution"`
	CachePath      string  `json:"cache_path"`
	FibrePitchDeg  float64 `json:"fibre_pitch_deg"`

	// Simulation
	DiastolicInterval  float64 `json:"diastolic_interval_ms"`
	ConductionVelocity float64 `json:"conduction_velocity"`
	UseFibres          bool    `json:"use_fibres"`
	InnerNeighbours    *bool   `json:"inner_neighbours"`
	SkipOptimization   bool    `json:"skip_optimization"`
	Ticks              int     `json:"ticks"`
	TickMs             float64 `json:"tick_ms"`
	FireVertex         int     `json:"fire_vertex"`

	// Snapshots
	OutputDir     string  `json:"output_dir"`
	SnapshotEvery int     `json:"snapshot_every"`
	RenderSize    int     `json:"render_size"`
	Supersample   int     `json:"supersample"`
	Format        string  `json:"format"`
	Animate       bool    `json:"animate"`
	ContactSheet  bool    `json:"contact_sheet"`
	Yaw           float64 `json:"yaw_deg"`
	Pitch         float64 `json:"pitch_deg"`
	Wireframe     bool    `json:"wireframe"`

	Workers int `json:"workers"`
}

// Shapes lists the procedural sources the CLI can build.
var Shapes = []string{"line", "strip", "sphere", "shell"}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
// Zero values leave the file's setting alone.
type Flags struct {
	Shape             string
	Resolution        int
	CachePath         string
	DiastolicInterval float64
	UseFibres         bool
	NoInner           bool
	Ticks             int
	TickMs            float64
	FireVertex        int // -1 leaves the file's setting
	SnapshotEvery     int // -1 leaves the file's setting
	RenderSize        int
	Format            string
	Animate           bool
	OutputDir         string
	Workers           int
}

// Resolve applies flag overrides, then fills remaining zero fields with defaults.
func (c *Config) Resolve(flags Flags) {
	if flags.Shape != "" {
		c.Shape = flags.Shape
	}
	if flags.Resolution > 0 {
		c.MeshResolution = flags.Resolution
	}
	if flags.CachePath != "" {
		c.CachePath = flags.CachePath
	}
	if flags.DiastolicInterval != 0 {
		c.DiastolicInterval = flags.DiastolicInterval
	}
	if flags.UseFibres {
		c.UseFibres = true
	}
	if flags.NoInner {
		off := false
		c.InnerNeighbours = &off
	}
	if flags.Ticks > 0 {
		c.Ticks = flags.Ticks
	}
	if flags.TickMs != 0 {
		c.TickMs = flags.TickMs
	}
	if flags.FireVertex >= 0 {
		c.FireVertex = flags.FireVertex
	}
	if flags.SnapshotEvery >= 0 {
		c.SnapshotEvery = flags.SnapshotEvery
	}
	if flags.RenderSize > 0 {
		c.RenderSize = flags.RenderSize
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.Animate {
		c.Animate = true
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	if c.Shape == "" {
		c.Shape = "shell"
	}
	if c.MeshResolution <= 0 {
		c.MeshResolution = 24
	}
	if c.FibrePitchDeg == 0 {
		c.FibrePitchDeg = 60
	}
	if c.DiastolicInterval == 0 {
		c.DiastolicInterval = 200
	}
	if c.InnerNeighbours == nil {
		on := true
		c.InnerNeighbours = &on
	}
	if c.Ticks <= 0 {
		c.Ticks = 600
	}
	if c.TickMs == 0 {
		c.TickMs = 1000.0 / 60
	}
	if c.OutputDir == "" {
		cwd, _ := os.Getwd()
		c.OutputDir = filepath.Join(cwd, "renders")
	}
	if c.RenderSize <= 0 {
		c.RenderSize = 256
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.Format == "" {
		c.Format = "webp"
	}
	c.Format = strings.ToLower(c.Format)
	if c.Pitch == 0 && c.Yaw == 0 {
		c.Yaw, c.Pitch = 30, 20
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// Inner reports whether the inner-neighbour pass is enabled.
func (c *Config) Inner() bool {
	return c.InnerNeighbours == nil || *c.InnerNeighbours
}

// Validate reports every setting that cannot be simulated.
func (c *Config) Validate() error {
	var errs []error
	if c.DiastolicInterval < 1 {
		errs = append(errs, fmt.Errorf("diastolic_interval_ms %v is below 1", c.DiastolicInterval))
	}
	if !(c.TickMs > 0) {
		errs = append(errs, fmt.Errorf("tick_ms %v is not positive", c.TickMs))
	}
	if c.ConductionVelocity < 0 {
		errs = append(errs, fmt.Errorf("conduction_velocity %v is negative", c.ConductionVelocity))
	}
	if c.Format != "webp" && c.Format != "tga" {
		errs = append(errs, fmt.Errorf("unknown format %q", c.Format))
	}
	if c.FireVertex < 0 {
		errs = append(errs, fmt.Errorf("fire_vertex %d is negative", c.FireVertex))
	}
	if c.SnapshotEvery < 0 {
		errs = append(errs, fmt.Errorf("snapshot_every %d is negative", c.SnapshotEvery))
	}
	known := false
	for _, s := range Shapes {
		known = known || s == c.Shape
	}
	if !known {
		errs = append(errs, fmt.Errorf("unknown shape %q", c.Shape))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
