package topology

import (
	"math/rand"
	"slices"
	"testing"

	"heartmesh/internal/mathutil"
)

// twoWalls builds two parallel grids facing each other across a gap.
func twoWalls(n int, gap, spacing float64) ([]mathutil.Vec3, []mathutil.Vec3) {
	var pos, nrm []mathutil.Vec3
	for _, wall := range []struct {
		z float64
		n mathutil.Vec3
	}{{0, mathutil.Vec3{0, 0, 1}}, {gap, mathutil.Vec3{0, 0, -1}}} {
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				pos = append(pos, mathutil.Vec3{float64(x) * spacing, float64(y) * spacing, wall.z})
				nrm = append(nrm, wall.n)
			}
		}
	}
	return pos, nrm
}

func TestInnerNeighboursLinksOppositeWalls(t *testing.T) {
	pos, nrm := twoWalls(6, 3, 10)
	pairs := InnerNeighbours(pos, nrm, DefaultInnerOptions())
	// Spacing 10 > 5, so each vertex links only to the vertex straight across.
	if len(pairs) != 36 {
		t.Fatalf("got %d pairs, want 36", len(pairs))
	}
	for _, p := range pairs {
		if p[1] != p[0]+36 {
			t.Fatalf("unexpected pair %v", p)
		}
	}
}

func TestInnerNeighboursIncludesMaxDistance(t *testing.T) {
	pos := []mathutil.Vec3{{0, 0, 0}, {0, 0, 5}, {0, 0, 5.01}}
	nrm := []mathutil.Vec3{{0, 0, 1}, {0, 0, -1}, {0, 0, -1}}
	for name, fn := range map[string]func([]mathutil.Vec3, []mathutil.Vec3, InnerOptions) [][2]uint32{
		"kdtree": InnerNeighbours,
		"brute":  InnerNeighboursBrute,
	} {
		got := fn(pos, nrm, DefaultInnerOptions())
		if want := [][2]uint32{{0, 1}}; !slices.Equal(got, want) {
			t.Errorf("%s: pairs = %v, want %v", name, got, want)
		}
	}
}

func TestInnerNeighboursMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const n = 800
	pos := make([]mathutil.Vec3, n)
	nrm := make([]mathutil.Vec3, n)
	for i := range pos {
		pos[i] = mathutil.Vec3{rng.Float64() * 30, rng.Float64() * 30, rng.Float64() * 30}
		nrm[i] = mathutil.Vec3{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}.Normalize()
	}
	opts := DefaultInnerOptions()
	want := InnerNeighboursBrute(pos, nrm, opts)
	got := InnerNeighbours(pos, nrm, opts)
	if len(want) == 0 {
		t.Fatal("brute force found no pairs; test data too sparse")
	}
	if !slices.Equal(got, want) {
		t.Fatalf("kdtree found %d pairs, brute force %d", len(got), len(want))
	}
}

func TestInnerNeighboursMismatchedInput(t *testing.T) {
	pos := []mathutil.Vec3{{0, 0, 0}, {0, 0, 1}}
	if got := InnerNeighbours(pos, pos[:1], DefaultInnerOptions()); got != nil {
		t.Fatalf("got %v, want nil", got)
	}
}
