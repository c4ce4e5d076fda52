package meshbin

import (
	"encoding/binary"
	"fmt"
	"math"

	"heartmesh/internal/mathutil"
)

// reader walks a byte slice. The first short read sets err; every later
// read returns zero values so callers check once per section.
type reader struct {
	data []byte
	off  int
	err  error
}

func (r *reader) remaining() int { return len(r.data) - r.off }

func (r *reader) need(n int, what string) bool {
	if r.err != nil {
		return false
	}
	if n < 0 || n > r.remaining() {
		r.err = fmt.Errorf("%w: %s needs %d bytes at offset %d, %d left",
			ErrTruncated, what, n, r.off, r.remaining())
		r.off = len(r.data)
		return false
	}
	return true
}

func (r *reader) readU32() uint32 {
	if !r.need(4, "u32") {
		return 0
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v
}

func (r *reader) readU64() uint64 {
	if !r.need(8, "u64") {
		return 0
	}
	v := binary.LittleEndian.Uint64(r.data[r.off:])
	r.off += 8
	return v
}

func (r *reader) readF32() float64 {
	return float64(math.Float32frombits(r.readU32()))
}

func (r *reader) readVec3() mathutil.Vec3 {
	return mathutil.Vec3{r.readF32(), r.readF32(), r.readF32()}
}

// readCount reads a u64 element count and checks that count elements of
// elemSize bytes fit in what is left, so allocation never trusts the file.
func (r *reader) readCount(elemSize int, what string) int {
	c := r.readU64()
	if r.err != nil {
		return 0
	}
	if c > uint64(r.remaining()/elemSize) {
		r.err = fmt.Errorf("%w: %s count %d exceeds %d remaining bytes",
			ErrTruncated, what, c, r.remaining())
		return 0
	}
	return int(c)
}
