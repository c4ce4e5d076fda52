package mesh

import "heartmesh/internal/mathutil"

// State is a vertex's position in the excitation cycle.
type State uint8

const (
	// Waiting tissue is at rest and excitable.
	Waiting State = iota
	// Receiving tissue has an upstream neighbour that fired; it activates when
	// TimeToTravel runs out.
	Receiving
	// APD tissue is depolarized and follows the action-potential curve.
	APD
	// DI tissue is recovering and cannot be excited.
	DI
)

func (s State) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case Receiving:
		return "receiving"
	case APD:
		return "apd"
	case DI:
		return "di"
	}
	return "unknown"
}

// Default vertex colours: resting tissue and fully depolarized tissue.
var (
	RestColor  = mathutil.Vec3{50.0 / 255, 151.0 / 255, 142.0 / 255}
	PulseColor = mathutil.Vec3{225.0 / 255, 73.0 / 255, 80.0 / 255}
)

// Vertex is the unit of simulation. Geometry fields are only read by the
// engine; simulation fields change every tick.
type Vertex struct {
	Index uint32 // dense position in the vertex array

	Position mathutil.Vec3
	Normal   mathutil.Vec3
	Tangent  mathutil.Vec3
	UV       [2]float64
	Color1   mathutil.Vec3 // resting colour
	Color2   mathutil.Vec3 // depolarized colour

	State           State
	ActionPotential float64 // mV-like
	APVisualization float64 // ActionPotential normalized to [0,1]
	TimePassed      float64 // ms spent in the current APD/DI state
	TimeToTravel    float64 // ms until a Receiving vertex fires

	FibreDirection mathutil.Vec3
	FibreAssigned  bool

	// Neighbours is a sorted set of vertex array positions, never containing Index.
	Neighbours []uint32
}

// Color blends the resting and depolarized colours by APVisualization.
func (v *Vertex) Color() mathutil.Vec3 {
	return v.Color1.Lerp(v.Color2, v.APVisualization)
}

// resetSimulation returns the vertex to rest without touching geometry or topology.
func (v *Vertex) resetSimulation() {
	v.State = Waiting
	v.ActionPotential = 0
	v.APVisualization = 0
	v.TimePassed = 0
	v.TimeToTravel = 0
}
