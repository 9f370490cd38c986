// Package obj reads the Wavefront OBJ subset used by the viewer: v, vn, vt
// and f records. Everything else in a file is skipped.
package obj

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	// DefaultNormal is used when a corner has no usable normal reference.
	DefaultNormal = mgl32.Vec3{0, 0, 1}
	// DefaultTexCoord is used when a corner has no usable texture reference.
	DefaultTexCoord = mgl32.Vec2{0, 0}
)

// Vertex is one emitted face corner. The field order is the GPU vertex
// layout: position at slot 0, normal at slot 1, texture coordinate at slot 2.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	TexCoord mgl32.Vec2
}

// Submesh is a flat vertex array with a parallel index array. Corners are
// never shared, so Indices is always 0..len(Vertices)-1.
type Submesh struct {
	Vertices []Vertex
	Indices  []uint32

	// DefaultNormals marks vertices whose normal is the DefaultNormal
	// placeholder rather than data from the file.
	DefaultNormals []bool
}

// Validate checks the vertex/index invariants of a submesh.
func (s *Submesh) Validate() error {
	if len(s.Indices) != len(s.Vertices) {
		return fmt.Errorf("obj: %d indices for %d vertices", len(s.Indices), len(s.Vertices))
	}
	for i, idx := range s.Indices {
		if int(idx) >= len(s.Vertices) {
			return fmt.Errorf("obj: index %d at %d out of range (%d vertices)", idx, i, len(s.Vertices))
		}
	}
	return nil
}

var (
	errMissingPosition = errors.New("missing position index")
	errTooFewCorners   = errors.New("face needs at least 3 corners")
)

// ParseError reports a line that could not be turned into geometry.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("obj: line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
