package mesh

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"heartmesh/internal/curve"
	"heartmesh/internal/mathutil"
	"heartmesh/internal/topology"
)

// DefaultDiastolicInterval is used when Options.DiastolicInterval is zero.
const DefaultDiastolicInterval = 200.0

var (
	// ErrEmptyMesh is returned when a mesh has no vertices.
	ErrEmptyMesh = errors.New("mesh: no vertices")
	// ErrFibreCount is returned when a fibre field does not cover every vertex.
	ErrFibreCount = errors.New("mesh: fibre count does not match vertex count")
	// ErrInvalidVelocity is returned for negative or non-finite velocity overrides.
	ErrInvalidVelocity = errors.New("mesh: invalid conduction velocity")
)

// Raw is unprocessed geometry as produced by a loader or a procedural source.
// Normals, UVs and Fibres are optional; when present they must have one entry
// per position.
type Raw struct {
	Positions []mathutil.Vec3
	Normals   []mathutil.Vec3
	UVs       [][2]float64
	Indices   []uint32
	Fibres    []mathutil.Vec3
}

// Options control mesh construction and the simulation defaults.
type Options struct {
	Name              string
	DiastolicInterval float64 // ms; zero selects DefaultDiastolicInterval
	// ConductionVelocity overrides the CV fit when positive.
	ConductionVelocity float64
	UseFibres          bool
	// SkipOptimization keeps duplicate positions as separate vertices.
	SkipOptimization bool
	InnerNeighbours  bool
	Inner            topology.InnerOptions // zero value selects topology.DefaultInnerOptions
	Workers          int                   // adjacency parallelism; <=0 selects GOMAXPROCS
	Uploader         Uploader
	Logger           *slog.Logger
}

func (o Options) diastolicInterval() float64 {
	if o.DiastolicInterval == 0 {
		return DefaultDiastolicInterval
	}
	return o.DiastolicInterval
}

func (o Options) workers() int {
	if o.Workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return o.Workers
}

func (o Options) inner() topology.InnerOptions {
	if o.Inner == (topology.InnerOptions{}) {
		return topology.DefaultInnerOptions()
	}
	return o.Inner
}

// Mesh owns a vertex set, its triangle list and the excitation state of
// every vertex. A Mesh is not safe for concurrent use; scene.Scene
// serializes access to the meshes it holds.
type Mesh struct {
	Name string

	vertices []Vertex
	indices  []uint32
	curve    *curve.Model

	velocity  float64 // override; zero means the CV fit
	useFibres bool
	wireframe bool
	elapsed   float64 // ms

	uploader Uploader
	log      *slog.Logger

	packBuf   []byte
	receiving []uint32
}

// New runs the build pipeline over raw geometry: sanitize, deduplicate,
// fix winding, derive tangents (and normals when absent), compute
// adjacency, optionally link opposing walls, then prepare the curves.
func New(raw Raw, opts Options) (*Mesh, error) {
	log := orNop(opts.Logger)
	n := len(raw.Positions)
	if n == 0 {
		return nil, ErrEmptyMesh
	}
	if err := checkAttr("normals", len(raw.Normals), n); err != nil {
		return nil, err
	}
	if err := checkAttr("uvs", len(raw.UVs), n); err != nil {
		return nil, err
	}
	if err := checkAttr("fibres", len(raw.Fibres), n); err != nil {
		return nil, err
	}

	model, err := newModel(opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	indices, dropped := topology.Sanitize(raw.Indices, n)
	if dropped > 0 {
		log.Warn("dropped malformed indices", "mesh", opts.Name, "count", dropped)
	}

	keep := identity(n)
	if !opts.SkipOptimization {
		d := topology.Dedup(raw.Positions, indices)
		keep, indices = d.Keep, d.Indices
		log.Debug("deduplicated vertices", "mesh", opts.Name, "removed", d.Removed, "remaining", len(keep))
	}

	positions := gather(raw.Positions, keep)
	uvs := make([][2]float64, len(keep))
	if raw.UVs != nil {
		for i, k := range keep {
			uvs[i] = raw.UVs[k]
		}
	}

	topology.FixWinding(indices)
	tangents := topology.Tangents(positions, uvs, indices)

	var normals []mathutil.Vec3
	if raw.Normals != nil {
		normals = gather(raw.Normals, keep)
	} else {
		normals = topology.FaceNormals(positions, indices)
	}

	sets := topology.Adjacency(indices, len(keep), opts.workers())
	if opts.InnerNeighbours {
		pairs := topology.InnerNeighbours(positions, normals, opts.inner())
		topology.Merge(sets, pairs)
		log.Debug("linked inner neighbours", "mesh", opts.Name, "pairs", len(pairs))
	}

	verts := make([]Vertex, len(keep))
	for i := range verts {
		verts[i] = Vertex{
			Index:      uint32(i),
			Position:   positions[i],
			Normal:     normals[i],
			Tangent:    tangents[i],
			UV:         uvs[i],
			Color1:     RestColor,
			Color2:     PulseColor,
			Neighbours: sets[i],
		}
	}
	if raw.Fibres != nil {
		for i, k := range keep {
			setFibre(&verts[i], raw.Fibres[k])
		}
	}

	m := newMesh(verts, indices, model, opts, log)
	log.Info("built mesh", "mesh", opts.Name,
		"vertices", len(verts), "triangles", len(indices)/3,
		"elapsed", time.Since(start))
	return m, nil
}

// FromBuffers adopts vertices whose neighbour sets are already computed,
// as read back from a cache file. Indices and neighbour ids that fall
// outside the vertex range are dropped; simulation state is reset.
func FromBuffers(verts []Vertex, indices []uint32, opts Options) (*Mesh, error) {
	log := orNop(opts.Logger)
	n := len(verts)
	if n == 0 {
		return nil, ErrEmptyMesh
	}
	model, err := newModel(opts)
	if err != nil {
		return nil, err
	}
	clean, dropped := topology.Sanitize(indices, n)
	if dropped > 0 {
		log.Warn("dropped malformed indices", "mesh", opts.Name, "count", dropped)
	}
	for i := range verts {
		v := &verts[i]
		v.Index = uint32(i)
		v.resetSimulation()
		nb := v.Neighbours[:0]
		for _, j := range v.Neighbours {
			if int(j) < n && int(j) != i {
				nb = append(nb, j)
			}
		}
		v.Neighbours = topology.Normalize(nb)
	}
	return newMesh(verts, clean, model, opts, log), nil
}

func newMesh(verts []Vertex, indices []uint32, model *curve.Model, opts Options, log *slog.Logger) *Mesh {
	return &Mesh{
		Name:      opts.Name,
		vertices:  verts,
		indices:   indices,
		curve:     model,
		velocity:  max(opts.ConductionVelocity, 0),
		useFibres: opts.UseFibres,
		uploader:  opts.Uploader,
		log:       log,
	}
}

// newModel builds the curves for opts. The CV fit must be positive unless a
// velocity override replaces it.
func newModel(opts Options) (*curve.Model, error) {
	di := opts.diastolicInterval()
	model, err := curve.New(di)
	if err != nil {
		return nil, fmt.Errorf("mesh: %w", err)
	}
	if opts.ConductionVelocity <= 0 {
		if err := curve.CheckVelocity(di); err != nil {
			return nil, fmt.Errorf("mesh: %w", err)
		}
	}
	return model, nil
}

func checkAttr(name string, got, want int) error {
	if got != 0 && got != want {
		return fmt.Errorf("mesh: %d %s for %d positions", got, name, want)
	}
	return nil
}

func identity(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func gather(src []mathutil.Vec3, keep []int) []mathutil.Vec3 {
	out := make([]mathutil.Vec3, len(keep))
	for i, k := range keep {
		out[i] = src[k]
	}
	return out
}

func setFibre(v *Vertex, dir mathutil.Vec3) {
	if dir.IsZero() || !dir.IsFinite() {
		v.FibreDirection = mathutil.Vec3{}
		v.FibreAssigned = false
		return
	}
	v.FibreDirection = dir.Normalize()
	v.FibreAssigned = true
}

// Vertices returns the live vertex slice. Callers must not retain it across
// ticks if they need a stable copy.
func (m *Mesh) Vertices() []Vertex { return m.vertices }

// Indices returns the triangle list (counter-clockwise after the winding fix).
func (m *Mesh) Indices() []uint32 { return m.indices }

// Vertex returns a pointer to vertex i, or nil when out of range.
func (m *Mesh) Vertex(i int) *Vertex {
	if i < 0 || i >= len(m.vertices) {
		return nil
	}
	return &m.vertices[i]
}

// Len reports the vertex count.
func (m *Mesh) Len() int { return len(m.vertices) }

// Curve exposes the curve model driving the simulation.
func (m *Mesh) Curve() *curve.Model { return m.curve }

// Elapsed reports simulated time in milliseconds since construction.
func (m *Mesh) Elapsed() float64 { return m.elapsed }

func (m *Mesh) SetWireframe(on bool) { m.wireframe = on }
func (m *Mesh) Wireframe() bool      { return m.wireframe }
