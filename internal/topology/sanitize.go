package topology

// Sanitize drops every triangle that references a vertex at or beyond
// vertexCount, plus a trailing partial triangle. dropped counts removed indices.
// The input slice is not modified.
func Sanitize(indices []uint32, vertexCount int) (clean []uint32, dropped int) {
	full := len(indices) - len(indices)%3
	clean = make([]uint32, 0, full)
	n := uint32(vertexCount)
	for i := 0; i < full; i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		if a >= n || b >= n || c >= n {
			dropped += 3
			continue
		}
		clean = append(clean, a, b, c)
	}
	dropped += len(indices) - full
	return clean, dropped
}
