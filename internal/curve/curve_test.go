package curve

import (
	"errors"
	"math"
	"testing"
)

func TestAPDAtDefaultInterval(t *testing.T) {
	m, err := New(200)
	if err != nil {
		t.Fatalf("New(200): %v", err)
	}
	want := APDFit(200)
	if math.Abs(m.APD()-want) > 1e-9 {
		t.Fatalf("APD = %v, want %v", m.APD(), want)
	}
	if got, want := len(m.AP()), int(want)+1; got != want {
		t.Fatalf("len(AP) = %d, want %d", got, want)
	}
	if got := m.ConductionVelocity(); math.Abs(got-CVFit(200)) > 1e-12 {
		t.Fatalf("CV = %v, want %v", got, CVFit(200))
	}
}

func TestAPDInterpolatesBetweenSamples(t *testing.T) {
	m, err := New(150.25)
	if err != nil {
		t.Fatal(err)
	}
	lo, hi := APDFit(150), APDFit(151)
	want := lo + 0.25*(hi-lo)
	if math.Abs(m.APD()-want) > 1e-9 {
		t.Fatalf("APD = %v, want %v", m.APD(), want)
	}
}

func TestCurveBoundedAndFinite(t *testing.T) {
	for _, di := range []float64{1, 1.5, 2, 37, 100, 200, 250, 290, 400} {
		m, err := New(di)
		if err != nil {
			t.Fatalf("New(%v): %v", di, err)
		}
		if math.IsNaN(m.APD()) || math.IsInf(m.APD(), 0) {
			t.Fatalf("APD(%v) not finite: %v", di, m.APD())
		}
		for x, v := range m.APDTable() {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("DI %v: APD table[%d] = %v", di, x, v)
			}
		}
		lo, hi := m.MinMax()
		for x, v := range m.AP() {
			if v < lo || v > hi {
				t.Fatalf("DI %v: AP[%d] = %v outside [%v, %v]", di, x, v, lo, hi)
			}
		}
	}
}

func TestOriginSampleIsClamped(t *testing.T) {
	m, err := New(1)
	if err != nil {
		t.Fatal(err)
	}
	tbl := m.APDTable()
	if tbl[0] != tbl[1] {
		t.Fatalf("table[0] = %v, want table[1] = %v", tbl[0], tbl[1])
	}
	if m.APD() != tbl[1] {
		t.Fatalf("APD = %v, want %v", m.APD(), tbl[1])
	}
}

func TestInvalidInterval(t *testing.T) {
	tests := []struct {
		name string
		di   float64
		want error
	}{
		{"zero", 0, ErrInvalidInterval},
		{"negative", -5, ErrInvalidInterval},
		{"below one", 0.5, ErrInvalidInterval},
		{"nan", math.NaN(), ErrInvalidInterval},
		{"inf", math.Inf(1), ErrInvalidInterval},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.di)
			if !errors.Is(err, tt.want) {
				t.Fatalf("New(%v) err = %v, want %v", tt.di, err, tt.want)
			}
		})
	}
}

func TestLongIntervalKeepsFit(t *testing.T) {
	m, err := New(300)
	if err != nil {
		t.Fatalf("New(300): %v", err)
	}
	if got := m.ConductionVelocity(); got != CVFit(300) || got >= 0 {
		t.Fatalf("CV = %v, want negative fit %v", got, CVFit(300))
	}
	if m.APD() <= 0 || len(m.AP()) == 0 {
		t.Fatalf("tables not built: apd %v, ap %d", m.APD(), len(m.AP()))
	}
	if err := CheckVelocity(300); !errors.Is(err, ErrNonPositiveVelocity) {
		t.Fatalf("CheckVelocity(300) = %v", err)
	}
	if err := CheckVelocity(200); err != nil {
		t.Fatalf("CheckVelocity(200) = %v", err)
	}
}

func TestFailedUpdateKeepsTables(t *testing.T) {
	m, err := New(200)
	if err != nil {
		t.Fatal(err)
	}
	apd, n := m.APD(), len(m.AP())
	if err := m.SetDiastolicInterval(-1); err == nil {
		t.Fatal("expected error")
	}
	if m.APD() != apd || len(m.AP()) != n || m.DiastolicInterval() != 200 {
		t.Fatalf("tables changed after failed update")
	}
}

func TestReflowOverwritesTables(t *testing.T) {
	m, err := New(200)
	if err != nil {
		t.Fatal(err)
	}
	apd200, len200 := m.APD(), len(m.AP())
	if err := m.SetDiastolicInterval(100); err != nil {
		t.Fatal(err)
	}
	if m.APD() == apd200 {
		t.Fatalf("APD unchanged after reflow: %v", m.APD())
	}
	if len(m.AP()) == len200 {
		t.Fatalf("AP length unchanged after reflow: %d", len(m.AP()))
	}
	if len(m.APDTable()) != 102 {
		t.Fatalf("len(APDTable) = %d, want 102", len(m.APDTable()))
	}
	if got, want := len(m.AP()), int(APDFit(100))+1; got != want {
		t.Fatalf("len(AP) = %d, want %d", got, want)
	}
}

func TestSampleAP(t *testing.T) {
	m, err := New(200)
	if err != nil {
		t.Fatal(err)
	}
	ap := m.AP()
	tests := []struct {
		t    float64
		want float64
	}{
		{-1, ap[0]},
		{0, ap[0]},
		{0.5, (ap[0] + ap[1]) / 2},
		{10, ap[10]},
		{1e6, ap[len(ap)-1]},
	}
	for _, tt := range tests {
		got, ok := m.SampleAP(tt.t)
		if !ok || math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("SampleAP(%v) = %v, %v; want %v", tt.t, got, ok, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	m, err := New(200)
	if err != nil {
		t.Fatal(err)
	}
	lo, hi := m.MinMax()
	if got := m.Normalize(hi); got != 1 {
		t.Errorf("Normalize(max) = %v", got)
	}
	if got := m.Normalize(lo); got != 0 {
		t.Errorf("Normalize(min) = %v", got)
	}
	if got := m.Normalize(hi + 100); got != 1 {
		t.Errorf("Normalize clamps high: %v", got)
	}
}
