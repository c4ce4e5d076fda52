package main

import (
	"fmt"
	"os"

	"heartmesh/internal/mesh"
	"heartmesh/internal/meshbin"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: inspectbin FILE.bin...")
		os.Exit(2)
	}

	bad := 0
	for _, arg := range os.Args[1:] {
		data, err := os.ReadFile(arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Read error %s: %v\n", arg, err)
			bad++
			continue
		}
		indices, verts, err := meshbin.Decode(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Decode error %s: %v\n", arg, err)
			bad++
			continue
		}

		st := mesh.ComputeStats(verts, indices)
		fmt.Printf("\n=== %s (%d bytes) ===\n", arg, len(data))
		fmt.Printf("  vertices=%d indices=%d triangles=%d\n", st.Vertices, len(indices), st.Triangles)
		fmt.Printf("  links=%d degree min=%d mean=%.2f max=%d\n", st.Edges, st.MinDegree, st.MeanDegree, st.MaxDegree)
		fmt.Printf("  asymmetric links=%d\n", st.Asymmetric)
		fmt.Printf("  bbox=[%.3f %.3f %.3f]..[%.3f %.3f %.3f]\n",
			st.BoundsMin[0], st.BoundsMin[1], st.BoundsMin[2],
			st.BoundsMax[0], st.BoundsMax[1], st.BoundsMax[2])

		isolated := 0
		for i := range verts {
			if len(verts[i].Neighbours) == 0 {
				isolated++
			}
		}
		if isolated > 0 {
			fmt.Printf("  isolated vertices=%d\n", isolated)
		}
	}
	if bad > 0 {
		os.Exit(1)
	}
}
