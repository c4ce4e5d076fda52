package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func noFlags() Flags { return Flags{FireVertex: -1, SnapshotEvery: -1} }

func TestResolveDefaults(t *testing.T) {
	var c Config
	c.Resolve(noFlags())
	if c.Shape != "shell" || c.MeshResolution != 24 || c.DiastolicInterval != 200 {
		t.Errorf("source defaults = %+v", c)
	}
	if !c.Inner() || c.Ticks != 600 || c.TickMs != 1000.0/60 {
		t.Errorf("simulation defaults = %+v", c)
	}
	if c.RenderSize != 256 || c.Supersample != 2 || c.Format != "webp" || c.Workers != runtime.NumCPU() {
		t.Errorf("render defaults = %+v", c)
	}
	if filepath.Base(c.OutputDir) != "renders" {
		t.Errorf("output dir = %s", c.OutputDir)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"shape":"sphere","diastolic_interval_ms":150,"inner_neighbours":false,
		"snapshot_every":5,"format":"TGA","fire_vertex":3}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	f := noFlags()
	f.DiastolicInterval = 120
	f.Ticks = 10
	c.Resolve(f)
	if c.Shape != "sphere" || c.DiastolicInterval != 120 || c.Ticks != 10 {
		t.Errorf("merge = %+v", c)
	}
	if c.Inner() {
		t.Error("inner_neighbours false was overwritten by the default")
	}
	if c.SnapshotEvery != 5 || c.FireVertex != 3 || c.Format != "tga" {
		t.Errorf("file values lost: %+v", c)
	}

	f = noFlags()
	f.NoInner = true
	f.SnapshotEvery = 0
	f.FireVertex = 0
	c.Resolve(f)
	if c.SnapshotEvery != 0 || c.FireVertex != 0 {
		t.Errorf("explicit zero flags ignored: %+v", c)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "none.json")); err == nil {
		t.Error("missing file accepted")
	}
	path := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(path, []byte("{"), 0o644)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "parse") {
		t.Errorf("bad json = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"interval", func(c *Config) { c.DiastolicInterval = 0.5 }, "diastolic_interval_ms"},
		{"tick", func(c *Config) { c.TickMs = -1 }, "tick_ms"},
		{"format", func(c *Config) { c.Format = "png" }, "format"},
		{"shape", func(c *Config) { c.Shape = "cube" }, "shape"},
		{"velocity", func(c *Config) { c.ConductionVelocity = -2 }, "conduction_velocity"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var c Config
			c.Resolve(noFlags())
			tc.mutate(&c)
			err := c.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("Validate() = %v, want mention of %q", err, tc.want)
			}
		})
	}
}
