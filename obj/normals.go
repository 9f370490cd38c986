package obj

// ComputeFlatNormals replaces placeholder normals with the normal of the
// triangle each vertex belongs to. Normals read from the file are left alone,
// as are degenerate triangles.
func ComputeFlatNormals(s *Submesh) {
	if len(s.DefaultNormals) != len(s.Vertices) {
		return
	}
	for t := 0; t+2 < len(s.Indices); t += 3 {
		i0, i1, i2 := s.Indices[t], s.Indices[t+1], s.Indices[t+2]
		p0 := s.Vertices[i0].Position
		n := s.Vertices[i1].Position.Sub(p0).Cross(s.Vertices[i2].Position.Sub(p0))
		if n.Len() == 0 {
			continue
		}
		n = n.Normalize()
		for _, idx := range [3]uint32{i0, i1, i2} {
			if s.DefaultNormals[idx] {
				s.Vertices[idx].Normal = n
				s.DefaultNormals[idx] = false
			}
		}
	}
}
