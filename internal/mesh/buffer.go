package mesh

import (
	"encoding/binary"
	"math"

	"heartmesh/internal/mathutil"
)

// VertexStride is the packed size of one vertex: position, color1, color2,
// normal and tangent (3 floats each), uv (2) and visualization (1).
const VertexStride = (5*3 + 2 + 1) * 4

// Uploader receives the packed vertex buffer after every change that affects
// rendering. Implementations must not retain buf after returning.
type Uploader interface {
	UploadVertices(buf []byte, stride, count int) error
}

// UploaderFunc adapts a function to Uploader.
type UploaderFunc func(buf []byte, stride, count int) error

func (f UploaderFunc) UploadVertices(buf []byte, stride, count int) error {
	return f(buf, stride, count)
}

// PackVertices appends the little-endian float32 layout of verts to dst.
func PackVertices(dst []byte, verts []Vertex) []byte {
	need := len(dst) + len(verts)*VertexStride
	if cap(dst) < need {
		grown := make([]byte, len(dst), need)
		copy(grown, dst)
		dst = grown
	}
	for i := range verts {
		v := &verts[i]
		dst = appendVec3(dst, v.Position)
		dst = appendVec3(dst, v.Color1)
		dst = appendVec3(dst, v.Color2)
		dst = appendVec3(dst, v.Normal)
		dst = appendVec3(dst, v.Tangent)
		dst = appendF32(dst, v.UV[0])
		dst = appendF32(dst, v.UV[1])
		dst = appendF32(dst, v.APVisualization)
	}
	return dst
}

func appendVec3(b []byte, v mathutil.Vec3) []byte {
	for _, c := range v.Float32() {
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(c))
	}
	return b
}

func appendF32(b []byte, f float64) []byte {
	return binary.LittleEndian.AppendUint32(b, math.Float32bits(float32(f)))
}

func (m *Mesh) upload() {
	if m.uploader == nil {
		return
	}
	m.packBuf = PackVertices(m.packBuf[:0], m.vertices)
	if err := m.uploader.UploadVertices(m.packBuf, VertexStride, len(m.vertices)); err != nil {
		m.log.Warn("vertex upload failed", "mesh", m.Name, "err", err)
	}
}
