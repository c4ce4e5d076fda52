package meshbin

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"heartmesh/internal/mesh"
)

// CachePath returns source with its extension replaced by ".bin".
func CachePath(source string) string {
	return strings.TrimSuffix(source, filepath.Ext(source)) + ".bin"
}

// SaveFile writes m to path through a temporary file so a crash never
// leaves a partial cache behind.
func SaveFile(path string, m *mesh.Mesh) error {
	var buf bytes.Buffer
	if err := Write(&buf, m.Indices(), m.Vertices()); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("meshbin: save %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("meshbin: save %s: %w", path, err)
	}
	return nil
}

// LoadFile reads a cache file and adopts it as a mesh.
func LoadFile(path string, opts mesh.Options) (*mesh.Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("meshbin: load %s: %w", path, err)
	}
	indices, verts, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w in %s", err, path)
	}
	if opts.Name == "" {
		opts.Name = filepath.Base(path)
	}
	return mesh.FromBuffers(verts, indices, opts)
}
