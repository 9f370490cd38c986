package obj

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeFlatNormals(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 0 -1
vn 0 0 1
f 1 2 3
f 1//1 2//1 3//1
`
	meshes, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	m := meshes[0]

	ComputeFlatNormals(&m)

	// (1,0,0) x (0,0,-1) = (0,1,0)
	for i := 0; i < 3; i++ {
		assert.InDeltaSlice(t, []float32{0, 1, 0}, m.Vertices[i].Normal[:], 1e-6)
		assert.False(t, m.DefaultNormals[i])
	}
	// normals from the file survive
	for i := 3; i < 6; i++ {
		assert.Equal(t, mgl32.Vec3{0, 0, 1}, m.Vertices[i].Normal)
	}
}

func TestComputeFlatNormalsDegenerate(t *testing.T) {
	m := Submesh{
		Vertices:       []Vertex{{Normal: DefaultNormal}, {Normal: DefaultNormal}, {Normal: DefaultNormal}},
		Indices:        []uint32{0, 1, 2},
		DefaultNormals: []bool{true, true, true},
	}
	ComputeFlatNormals(&m)
	for _, v := range m.Vertices {
		assert.Equal(t, DefaultNormal, v.Normal)
	}
}
