package mesh

import (
	"fmt"
	"math"
	"time"

	"heartmesh/internal/curve"
	"heartmesh/internal/mathutil"
)

// StateCounts tallies vertices per state.
type StateCounts struct {
	Waiting, Receiving, APD, DI int
}

// Active reports the number of vertices that are not at rest.
func (c StateCounts) Active() int { return c.Receiving + c.APD + c.DI }

// PulseVertex excites vertex i if it is Waiting and schedules its Waiting
// neighbours. It reports whether the vertex fired.
func (m *Mesh) PulseVertex(i int) bool {
	if !m.pulse(i) {
		return false
	}
	m.upload()
	return true
}

// PulseMesh triggers every vertex in array order, then uploads once.
// Vertices scheduled by an earlier one in the same sweep are skipped.
func (m *Mesh) PulseMesh() {
	for i := range m.vertices {
		m.pulse(i)
	}
	m.upload()
}

// ClearPulse returns every vertex to Waiting regardless of state.
func (m *Mesh) ClearPulse() {
	for i := range m.vertices {
		v := &m.vertices[i]
		v.State = Waiting
		v.APVisualization = 0
		v.TimePassed = 0
		v.TimeToTravel = 0
	}
	m.upload()
}

func (m *Mesh) pulse(i int) bool {
	if i < 0 || i >= len(m.vertices) {
		return false
	}
	v := &m.vertices[i]
	if v.State != Waiting {
		return false
	}
	ap0, _ := m.curve.SampleAP(0)
	v.State = APD
	v.TimePassed = 0
	v.TimeToTravel = 0
	v.ActionPotential = ap0
	v.APVisualization = m.curve.Normalize(ap0)

	base := m.ConductionVelocity()
	for _, j := range v.Neighbours {
		nb := &m.vertices[j]
		if nb.State != Waiting {
			continue
		}
		vel := m.effectiveVelocity(v, nb, base)
		if !(vel > 0) {
			continue
		}
		nb.State = Receiving
		nb.TimePassed = 0
		nb.TimeToTravel = v.Position.Dist(nb.Position) / vel
	}
	return true
}

// effectiveVelocity scales base by the alignment of the firing vertex's fibre
// with the direction of travel. Without a fibre the base velocity applies.
func (m *Mesh) effectiveVelocity(from, to *Vertex, base float64) float64 {
	if !m.useFibres || !from.FibreAssigned {
		return base
	}
	dir := from.Position.Sub(to.Position).Normalize()
	return base * math.Abs(dir.Dot(from.FibreDirection))
}

// Tick advances the simulation by delta.
func (m *Mesh) Tick(delta time.Duration) {
	m.TickMs(float64(delta) / float64(time.Millisecond))
}

// TickMs advances the simulation by dt milliseconds. Depolarized and
// recovering vertices advance first; then every vertex that was Receiving
// when the tick began counts down and fires when it reaches zero. Vertices
// scheduled during the tick start counting on the next one.
func (m *Mesh) TickMs(dt float64) {
	if !(dt >= 0) || math.IsInf(dt, 0) {
		m.log.Warn("ignored invalid tick", "mesh", m.Name, "delta_ms", dt)
		return
	}
	m.elapsed += dt
	apd := m.curve.APD()
	di := m.curve.DiastolicInterval()

	m.receiving = m.receiving[:0]
	for i := range m.vertices {
		v := &m.vertices[i]
		switch v.State {
		case APD:
			v.TimePassed += dt
			if ap, ok := m.curve.SampleAP(v.TimePassed); ok {
				v.ActionPotential = ap
				v.APVisualization = m.curve.Normalize(ap)
			}
			if v.TimePassed >= apd {
				v.State = DI
				v.TimePassed = 0
				v.APVisualization = 0
			}
		case DI:
			v.TimePassed += dt
			if v.TimePassed >= di {
				v.State = Waiting
				v.TimePassed = 0
			}
		case Receiving:
			m.receiving = append(m.receiving, uint32(i))
		}
	}

	for _, i := range m.receiving {
		v := &m.vertices[i]
		if v.State != Receiving {
			continue
		}
		v.TimeToTravel -= dt
		if v.TimeToTravel <= 0 {
			v.TimeToTravel = 0
			v.State = Waiting
			m.pulse(int(i))
		}
	}
	m.upload()
}

// SetDiastolicInterval rebuilds the curves for a new interval in ms. Vertex
// state is untouched; vertices mid-cycle pick up the new timings on their
// next tick. Without a velocity override the CV fit at ms must be positive.
func (m *Mesh) SetDiastolicInterval(ms float64) error {
	if m.velocity <= 0 {
		if err := curve.CheckVelocity(ms); err != nil {
			return fmt.Errorf("mesh: %w", err)
		}
	}
	if err := m.curve.SetDiastolicInterval(ms); err != nil {
		return fmt.Errorf("mesh: %w", err)
	}
	m.log.Info("diastolic interval changed", "mesh", m.Name,
		"di_ms", ms, "apd_ms", m.curve.APD(), "cv", m.curve.ConductionVelocity())
	return nil
}

// ConductionVelocity returns the base velocity in distance units per ms.
func (m *Mesh) ConductionVelocity() float64 {
	if m.velocity > 0 {
		return m.velocity
	}
	return m.curve.ConductionVelocity()
}

// SetConductionVelocity overrides the CV fit. Zero restores the fit, which
// fails when the fit at the current interval is not positive.
func (m *Mesh) SetConductionVelocity(v float64) error {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidVelocity, v)
	}
	if v == 0 {
		if err := curve.CheckVelocity(m.curve.DiastolicInterval()); err != nil {
			return fmt.Errorf("mesh: %w", err)
		}
	}
	m.velocity = v
	return nil
}

// SetUseFibres toggles anisotropic conduction.
func (m *Mesh) SetUseFibres(on bool) { m.useFibres = on }

// UseFibres reports whether fibre scaling is active.
func (m *Mesh) UseFibres() bool { return m.useFibres }

// AssignFibres sets one fibre direction per vertex. Zero or non-finite
// vectors leave that vertex without a fibre.
func (m *Mesh) AssignFibres(dirs []mathutil.Vec3) error {
	if len(dirs) != len(m.vertices) {
		return fmt.Errorf("%w: %d for %d vertices", ErrFibreCount, len(dirs), len(m.vertices))
	}
	for i := range m.vertices {
		setFibre(&m.vertices[i], dirs[i])
	}
	return nil
}

// Counts tallies the current vertex states.
func (m *Mesh) Counts() StateCounts {
	var c StateCounts
	for i := range m.vertices {
		switch m.vertices[i].State {
		case Waiting:
			c.Waiting++
		case Receiving:
			c.Receiving++
		case APD:
			c.APD++
		case DI:
			c.DI++
		}
	}
	return c
}
