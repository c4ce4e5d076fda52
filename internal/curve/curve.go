// Package curve holds the empirically fitted electrophysiology curves that drive
// the propagation engine: action-potential duration and conduction velocity as a
// function of the diastolic interval, and membrane potential as a function of the
// time spent in the action-potential phase.
package curve

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// MinDiastolicInterval is the smallest diastolic interval (ms) the APD fit is
// defined for. ln(x) has no value at 0, so anything below one sample is rejected.
const MinDiastolicInterval = 1.0

var (
	// ErrInvalidInterval is returned for diastolic intervals below
	// MinDiastolicInterval, NaN or infinite.
	ErrInvalidInterval = errors.New("curve: invalid diastolic interval")

	// ErrNonPositiveVelocity reports a conduction velocity fit at or below zero
	// (diastolic intervals above roughly 291 ms). The Model accepts such
	// intervals; callers that rely on the fit use CheckVelocity.
	ErrNonPositiveVelocity = errors.New("curve: conduction velocity fit is not positive")
)

// APDFit is the natural-log fit of action-potential duration (ms) against
// diastolic interval x (ms). Callers must keep x >= 1.
func APDFit(x float64) float64 {
	return 15.311*math.Log(x) + 219.77
}

// APFit is the quadratic fit of membrane potential against time t (ms) since
// activation.
func APFit(t float64) float64 {
	return -0.0005*t*t - 0.0187*t + 32.118
}

// CVFit is the quadratic fit of conduction velocity against diastolic interval.
func CVFit(di float64) float64 {
	return -0.0024*di*di + 0.6514*di + 13.869
}

// Model holds the lookup tables for one diastolic interval.
// Tables are rebuilt wholesale by SetDiastolicInterval.
type Model struct {
	di       float64
	apdTable []float64 // APD per integer diastolic interval, index 0 clamped to index 1
	apd      float64
	ap       []float64 // membrane potential per integer ms, len floor(apd)+1
	apMin    float64
	apMax    float64
	cv       float64
}

// New builds a Model for the given diastolic interval in milliseconds.
func New(diastolicInterval float64) (*Model, error) {
	m := &Model{}
	if err := m.SetDiastolicInterval(diastolicInterval); err != nil {
		return nil, err
	}
	return m, nil
}

// SetDiastolicInterval recomputes every table for di. On error the previous
// tables are left untouched.
func (m *Model) SetDiastolicInterval(di float64) error {
	if math.IsNaN(di) || math.IsInf(di, 0) || di < MinDiastolicInterval {
		return fmt.Errorf("%w: %v ms (minimum %v)", ErrInvalidInterval, di, MinDiastolicInterval)
	}
	idx := int(di)
	apdTable := make([]float64, idx+2)
	for x := 1; x < len(apdTable); x++ {
		apdTable[x] = APDFit(float64(x))
	}
	// ln(0) = -Inf: sample 0 takes the value of sample 1.
	apdTable[0] = apdTable[1]

	t := di - float64(idx)
	apd := apdTable[idx] + t*(apdTable[idx+1]-apdTable[idx])

	ap := make([]float64, int(apd)+1)
	for x := range ap {
		ap[x] = APFit(float64(x))
	}

	m.di = di
	m.apdTable = apdTable
	m.apd = apd
	m.ap = ap
	m.apMin = floats.Min(ap)
	m.apMax = floats.Max(ap)
	m.cv = CVFit(di)
	return nil
}

// DiastolicInterval returns the interval (ms) the tables were built for.
func (m *Model) DiastolicInterval() float64 { return m.di }

// APD returns the operating action-potential duration in ms.
func (m *Model) APD() float64 { return m.apd }

// ConductionVelocity returns CV at the operating diastolic interval. It may be
// zero or negative for long intervals.
func (m *Model) ConductionVelocity() float64 { return m.cv }

// CheckVelocity returns ErrNonPositiveVelocity when the CV fit at di is not
// positive.
func CheckVelocity(di float64) error {
	if cv := CVFit(di); cv <= 0 {
		return fmt.Errorf("%w: CV(%v) = %v", ErrNonPositiveVelocity, di, cv)
	}
	return nil
}

// AP returns the membrane potential table. The slice is owned by the Model.
func (m *Model) AP() []float64 { return m.ap }

// APDTable returns the APD lookup table. The slice is owned by the Model.
func (m *Model) APDTable() []float64 { return m.apdTable }

// MinMax returns the observed range of the AP table.
func (m *Model) MinMax() (min, max float64) { return m.apMin, m.apMax }

// SampleAP linearly interpolates the AP table at t ms. Times past the end of the
// table return the last sample; negative times return the first.
func (m *Model) SampleAP(t float64) (float64, bool) {
	n := len(m.ap)
	if n == 0 {
		return 0, false
	}
	if t <= 0 {
		return m.ap[0], true
	}
	idx := int(t)
	if idx+1 >= n {
		return m.ap[n-1], true
	}
	frac := t - float64(idx)
	return m.ap[idx] + frac*(m.ap[idx+1]-m.ap[idx]), true
}

// Normalize maps an AP value into [0,1] against the table's observed range.
func (m *Model) Normalize(v float64) float64 {
	rng := m.apMax - m.apMin
	if rng <= 0 {
		return 0
	}
	n := (v - m.apMin) / rng
	switch {
	case n < 0:
		return 0
	case n > 1:
		return 1
	}
	return n
}
