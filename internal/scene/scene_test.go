package scene

import (
	"errors"
	"sync"
	"testing"
	"time"

	"heartmesh/internal/mesh"
	"heartmesh/internal/shape"
)

func strip(t *testing.T, name string) *mesh.Mesh {
	t.Helper()
	m, err := mesh.New(shape.Strip(4, 4, 1), mesh.Options{Name: name})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestSceneAddRemove(t *testing.T) {
	s := New()
	a, b := strip(t, "a"), strip(t, "b")
	s.Add(a)
	s.Add(b)
	if s.Len() != 2 {
		t.Fatalf("len = %d", s.Len())
	}
	if got, err := s.Get("b"); err != nil || got != b {
		t.Fatalf("Get(b) = %v, %v", got, err)
	}

	snap := s.Meshes()
	if err := s.Remove("a"); err != nil {
		t.Fatal(err)
	}
	if len(snap) != 2 || snap[0] != a {
		t.Error("Remove mutated an earlier snapshot")
	}
	if err := s.Remove("a"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Remove = %v", err)
	}
	if _, err := s.Get("zzz"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get missing = %v", err)
	}
}

func TestSceneRemoveReleasesMesh(t *testing.T) {
	s := New()
	for _, name := range []string{"a", "b", "c"} {
		s.Add(strip(t, name))
	}
	if err := s.Remove("a"); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 2 || s.meshes[0].Name != "b" || s.meshes[1].Name != "c" {
		t.Fatalf("order after Remove: %v", s.Meshes())
	}
	if tail := s.meshes[:3][2]; tail != nil {
		t.Fatalf("backing array still holds %q", tail.Name)
	}
}

func TestSceneTick(t *testing.T) {
	s := New()
	m := strip(t, "tissue")
	s.Add(m)
	m.PulseVertex(12)
	s.Tick(16 * time.Millisecond)
	if m.Elapsed() != 16 {
		t.Errorf("elapsed = %v ms", m.Elapsed())
	}
	if m.Counts().Active() == 1 {
		t.Error("wave did not spread")
	}
}

func TestLoaderPublishesOnComplete(t *testing.T) {
	s := New()
	l := NewLoader(s, nil)

	release := make(chan struct{})
	ch := l.Load("slow", func() (*mesh.Mesh, error) {
		<-release
		return mesh.New(shape.Strip(2, 2, 1), mesh.Options{})
	})
	if s.Len() != 0 {
		t.Fatal("mesh visible before its build finished")
	}
	close(release)

	res := <-ch
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	if res.Mesh == nil || res.Mesh.Name != "slow" {
		t.Fatalf("result = %+v", res)
	}
	if s.Len() != 1 {
		t.Fatalf("scene len = %d after load", s.Len())
	}
	if _, ok := <-ch; ok {
		t.Error("result channel not closed")
	}
}

func TestLoaderFailureNotAdded(t *testing.T) {
	s := New()
	l := NewLoader(s, nil)
	boom := errors.New("boom")

	r1 := <-l.Load("bad", func() (*mesh.Mesh, error) { return nil, boom })
	r2 := <-l.Load("nil", func() (*mesh.Mesh, error) { return nil, nil })
	if !errors.Is(r1.Err, boom) || !errors.Is(r2.Err, mesh.ErrEmptyMesh) {
		t.Fatalf("errors = %v, %v", r1.Err, r2.Err)
	}
	if s.Len() != 0 {
		t.Fatalf("failed loads published %d meshes", s.Len())
	}
}

func TestLoaderConcurrentWithTick(t *testing.T) {
	s := New()
	l := NewLoader(s, nil)
	s.Add(strip(t, "base"))
	s.Meshes()[0].PulseVertex(0)

	const loads = 8
	for i := 0; i < loads; i++ {
		l.Load("", func() (*mesh.Mesh, error) {
			return mesh.New(shape.Sphere(5, 12, 6), mesh.Options{})
		})
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			s.Tick(time.Millisecond)
		}
	}()
	l.Wait()
	wg.Wait()

	if s.Len() != loads+1 {
		t.Fatalf("len = %d, want %d", s.Len(), loads+1)
	}
}
