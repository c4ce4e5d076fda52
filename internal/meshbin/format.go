// Package meshbin reads and writes the binary topology cache: the index
// buffer plus every vertex with its geometry and neighbour set, so a mesh
// can skip the topology pass on later runs.
//
// Layout, little-endian:
//
//	index_count u64, indices u32 × index_count
//	vertex_count u64
//	per vertex: position, normal, color1, color2, tangent (3×f32 each),
//	            uv (2×f32), neighbour_count u64, neighbours u32 × neighbour_count
package meshbin

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"

	"heartmesh/internal/mathutil"
	"heartmesh/internal/mesh"
)

var (
	// ErrTruncated means the data ended before a declared section did.
	ErrTruncated = errors.New("meshbin: truncated data")
	// ErrCorrupt means the data is complete but inconsistent.
	ErrCorrupt = errors.New("meshbin: corrupt data")
)

// vertexFixed is the per-vertex size without neighbours.
const vertexFixed = (5*3+2)*4 + 8

// Write encodes indices and verts. Neighbour ids are written in ascending
// order regardless of their order in memory.
func Write(w io.Writer, indices []uint32, verts []mesh.Vertex) error {
	bw := bufio.NewWriter(w)
	var scratch [8]byte

	putU64 := func(v uint64) {
		binary.LittleEndian.PutUint64(scratch[:], v)
		bw.Write(scratch[:8])
	}
	putU32 := func(v uint32) {
		binary.LittleEndian.PutUint32(scratch[:], v)
		bw.Write(scratch[:4])
	}
	putVec3 := func(v mathutil.Vec3) {
		for _, c := range v.Float32() {
			putU32(math.Float32bits(c))
		}
	}

	putU64(uint64(len(indices)))
	for _, i := range indices {
		putU32(i)
	}
	putU64(uint64(len(verts)))
	var nb []uint32
	for i := range verts {
		v := &verts[i]
		putVec3(v.Position)
		putVec3(v.Normal)
		putVec3(v.Color1)
		putVec3(v.Color2)
		putVec3(v.Tangent)
		putU32(math.Float32bits(float32(v.UV[0])))
		putU32(math.Float32bits(float32(v.UV[1])))

		nb = append(nb[:0], v.Neighbours...)
		slices.Sort(nb)
		putU64(uint64(len(nb)))
		for _, j := range nb {
			putU32(j)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("meshbin: write: %w", err)
	}
	return nil
}

// Read decodes everything r yields.
func Read(r io.Reader) ([]uint32, []mesh.Vertex, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("meshbin: read: %w", err)
	}
	return Decode(data)
}

// Decode parses a complete cache image. Every count is checked against the
// bytes that remain before anything is allocated; indices and neighbour ids
// must address an existing vertex, and trailing bytes are rejected.
func Decode(data []byte) ([]uint32, []mesh.Vertex, error) {
	r := &reader{data: data}

	nIdx := r.readCount(4, "index")
	indices := make([]uint32, nIdx)
	for i := range indices {
		indices[i] = r.readU32()
	}

	nVert := r.readCount(vertexFixed, "vertex")
	if r.err != nil {
		return nil, nil, r.err
	}
	for k, idx := range indices {
		if int(idx) >= nVert {
			return nil, nil, fmt.Errorf("%w: index %d references vertex %d of %d", ErrCorrupt, k, idx, nVert)
		}
	}

	verts := make([]mesh.Vertex, nVert)
	for i := range verts {
		v := &verts[i]
		v.Index = uint32(i)
		v.Position = r.readVec3()
		v.Normal = r.readVec3()
		v.Color1 = r.readVec3()
		v.Color2 = r.readVec3()
		v.Tangent = r.readVec3()
		v.UV = [2]float64{r.readF32(), r.readF32()}

		nn := r.readCount(4, "neighbour")
		if r.err != nil {
			return nil, nil, fmt.Errorf("%w in vertex %d", r.err, i)
		}
		if nn > 0 {
			v.Neighbours = make([]uint32, nn)
		}
		for j := range v.Neighbours {
			id := r.readU32()
			if int(id) >= nVert || int(id) == i {
				return nil, nil, fmt.Errorf("%w: vertex %d lists neighbour %d of %d", ErrCorrupt, i, id, nVert)
			}
			v.Neighbours[j] = id
		}
		slices.Sort(v.Neighbours)
		v.Neighbours = slices.Compact(v.Neighbours)
	}
	if r.err != nil {
		return nil, nil, r.err
	}
	if rest := r.remaining(); rest != 0 {
		return nil, nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, rest)
	}
	return indices, verts, nil
}
