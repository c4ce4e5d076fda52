// Package scene holds the meshes that are currently simulated and loads new
// ones in the background without exposing them before they are complete.
package scene

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"heartmesh/internal/mesh"
)

// ErrNotFound is returned when no active mesh has the requested name.
var ErrNotFound = errors.New("scene: mesh not found")

// Scene is the active mesh list shared between loaders and the tick loop.
type Scene struct {
	mu     sync.Mutex
	meshes []*mesh.Mesh
}

func New() *Scene { return &Scene{} }

// Add appends a fully built mesh.
func (s *Scene) Add(m *mesh.Mesh) {
	s.mu.Lock()
	s.meshes = append(s.meshes, m)
	s.mu.Unlock()
}

// Remove drops the first mesh named name.
func (s *Scene) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.meshes {
		if m.Name == name {
			s.meshes = slices.Delete(s.meshes, i, i+1)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Get returns the first mesh named name.
func (s *Scene) Get(name string) (*mesh.Mesh, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.meshes {
		if m.Name == name {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
}

func (s *Scene) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.meshes)
}

// Meshes returns a copy of the active list.
func (s *Scene) Meshes() []*mesh.Mesh {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*mesh.Mesh, len(s.meshes))
	copy(out, s.meshes)
	return out
}

// Each calls fn for every active mesh while holding the lock, so fn may
// mutate the mesh but must not call back into the Scene.
func (s *Scene) Each(fn func(*mesh.Mesh)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.meshes {
		fn(m)
	}
}

// Tick advances every active mesh by delta on the calling goroutine.
func (s *Scene) Tick(delta time.Duration) {
	s.Each(func(m *mesh.Mesh) { m.Tick(delta) })
}

// Result reports the outcome of one background load.
type Result struct {
	Name    string
	Mesh    *mesh.Mesh
	Err     error
	Elapsed time.Duration
}

// Loader builds meshes on background goroutines and publishes each one to
// its Scene only after the build returned without error.
type Loader struct {
	scene *Scene
	log   *slog.Logger
	wg    sync.WaitGroup
}

// NewLoader returns a loader publishing into s. A nil logger discards output.
func NewLoader(s *Scene, log *slog.Logger) *Loader {
	if log == nil {
		log = mesh.NopLogger()
	}
	return &Loader{scene: s, log: log}
}

// Load runs build in the background. The returned channel yields exactly
// one Result and is then closed. Loads cannot be cancelled.
func (l *Loader) Load(name string, build func() (*mesh.Mesh, error)) <-chan Result {
	ch := make(chan Result, 1)
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer close(ch)

		start := time.Now()
		m, err := build()
		if err == nil && m == nil {
			err = mesh.ErrEmptyMesh
		}
		res := Result{Name: name, Err: err, Elapsed: time.Since(start)}
		if err != nil {
			l.log.Error("mesh load failed", "mesh", name, "err", err)
			ch <- res
			return
		}
		if m.Name == "" {
			m.Name = name
		}
		l.scene.Add(m)
		res.Mesh = m
		l.log.Info("mesh loaded", "mesh", name, "vertices", m.Len(), "elapsed", res.Elapsed)
		ch <- res
	}()
	return ch
}

// Wait blocks until every load started so far has finished.
func (l *Loader) Wait() { l.wg.Wait() }
