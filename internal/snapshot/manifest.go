package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Manifest describes one simulation run and the files it produced.
type Manifest struct {
	Mesh              string         `json:"mesh"`
	Vertices          int            `json:"vertices"`
	Triangles         int            `json:"triangles"`
	DiastolicInterval float64        `json:"diastolic_interval_ms"`
	APD               float64        `json:"apd_ms"`
	Velocity          float64        `json:"conduction_velocity"`
	TickMs            float64        `json:"tick_ms"`
	Ticks             int            `json:"ticks"`
	Animation         string         `json:"animation,omitempty"`
	Frames            []Result       `json:"frames"`
	Final             map[string]int `json:"final_counts"`
}

// WriteManifest writes m as indented JSON. Frame paths are made relative to
// the manifest's directory when possible.
func WriteManifest(path string, m Manifest) error {
	base := filepath.Dir(path)
	frames := make([]Result, len(m.Frames))
	for i, r := range m.Frames {
		if rel, err := filepath.Rel(base, r.Path); err == nil && r.Path != "" {
			r.Path = filepath.ToSlash(rel)
		}
		frames[i] = r
	}
	m.Frames = frames
	if m.Animation != "" {
		if rel, err := filepath.Rel(base, m.Animation); err == nil {
			m.Animation = filepath.ToSlash(rel)
		}
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
