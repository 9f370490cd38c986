package obj

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const triangleOBJ = `# a lone triangle
v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
`

func parseString(t *testing.T, src string) []Submesh {
	t.Helper()
	meshes, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	return meshes
}

func TestParsePositionsOnly(t *testing.T) {
	meshes := parseString(t, triangleOBJ)
	require.Len(t, meshes, 1)

	m := meshes[0]
	require.Len(t, m.Vertices, 3)
	assert.Equal(t, []uint32{0, 1, 2}, m.Indices)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, m.Vertices[1].Position)
	for _, v := range m.Vertices {
		assert.Equal(t, mgl32.Vec2{0, 0}, v.TexCoord)
		assert.Equal(t, mgl32.Vec3{0, 0, 1}, v.Normal)
	}
	assert.Equal(t, []bool{true, true, true}, m.DefaultNormals)
	assert.NoError(t, m.Validate())
}

func TestParseQuadIsFanTriangulated(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3 4
`
	m := parseString(t, src)[0]
	require.Len(t, m.Vertices, 6)
	assert.Equal(t, []uint32{0, 1, 2, 3, 4, 5}, m.Indices)

	want := []mgl32.Vec3{
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0},
		{0, 0, 0}, {1, 1, 0}, {0, 1, 0},
	}
	for i, v := range m.Vertices {
		assert.Equal(t, want[i], v.Position, "vertex %d", i)
	}
}

func TestParsePentagon(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 2 1 0\nv 1 2 0\nv 0 1 0\nf 1 2 3 4 5\n"
	m := parseString(t, src)[0]
	assert.Len(t, m.Vertices, 9)
}

func TestParseCorner(t *testing.T) {
	tests := []struct {
		tok  string
		want Corner
	}{
		{"7", Corner{Position: 6, TexCoord: -1, Normal: -1}},
		{"2/3", Corner{Position: 1, TexCoord: 2, Normal: -1}},
		{"2//4", Corner{Position: 1, TexCoord: -1, Normal: 3}},
		{"2/3/1", Corner{Position: 1, TexCoord: 2, Normal: 0}},
		{"5/", Corner{Position: 4, TexCoord: -1, Normal: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.tok, func(t *testing.T) {
			got, err := ParseCorner(tt.tok)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCornerErrors(t *testing.T) {
	for _, tok := range []string{"", "/2/3", "a", "1/b", "1/2/c", "1/2/3/4"} {
		_, err := ParseCorner(tok)
		assert.Error(t, err, tok)
	}
}

func TestParseFullCorners(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
vt 0.5 0.5
vt 1 1
vt 0.25 0.75
vn 0 1 0
f 1/1/1 2/2/1 3/3/1
f 2/3/1 3/1/1 1/2/1
`
	m := parseString(t, src)[0]
	require.Len(t, m.Vertices, 6)

	v := m.Vertices[3]
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, v.Position)
	assert.Equal(t, mgl32.Vec2{0.25, 0.75}, v.TexCoord)
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, v.Normal)
	assert.False(t, m.DefaultNormals[3])
}

func TestParseMissingAttributesUseDefaults(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
vn 1 0 0
vt 0.5 0.5
f 1//1 2/1 3/9/9
`
	m := parseString(t, src)[0]
	require.Len(t, m.Vertices, 3)

	// v//vn: no texture lookup
	assert.Equal(t, DefaultTexCoord, m.Vertices[0].TexCoord)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, m.Vertices[0].Normal)
	// v/vt: no normal lookup
	assert.Equal(t, mgl32.Vec2{0.5, 0.5}, m.Vertices[1].TexCoord)
	assert.Equal(t, DefaultNormal, m.Vertices[1].Normal)
	// out of range references
	assert.Equal(t, DefaultTexCoord, m.Vertices[2].TexCoord)
	assert.Equal(t, DefaultNormal, m.Vertices[2].Normal)
}

func TestParseEmptyAttributeArrays(t *testing.T) {
	m := parseString(t, "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1/1/1 2/1/1 3/1/1\n")[0]
	for _, v := range m.Vertices {
		assert.Equal(t, DefaultTexCoord, v.TexCoord)
		assert.Equal(t, DefaultNormal, v.Normal)
	}
}

func TestParseNoGeometry(t *testing.T) {
	for _, src := range []string{"", "# comment only\n\n", "o thing\ng group\nusemtl red\n", "v 1 2 3\n"} {
		meshes, err := Parse(strings.NewReader(src))
		require.NoError(t, err)
		assert.Empty(t, meshes)
	}
}

func TestParseIgnoresUnknownRecords(t *testing.T) {
	src := "mtllib x.mtl\no obj\n" + triangleOBJ + "s off\nusemtl mat\nl 1 2\n"
	meshes := parseString(t, src)
	require.Len(t, meshes, 1)
	assert.Len(t, meshes[0].Vertices, 3)
}

func TestParseTabsAndCRLF(t *testing.T) {
	src := "v\t0 0 0\r\nv 1\t0 0\r\nv 0 1 0\r\nf  1   2\t3\r\n"
	m := parseString(t, src)[0]
	assert.Len(t, m.Vertices, 3)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
	}{
		{"position out of range", "v 0 0 0\nf 1 2 3\n", 2},
		{"zero position index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n", 4},
		{"negative index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf -1 -2 -3\n", 4},
		{"non integer", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 x 3\n", 4},
		{"bad texture index", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1/q 2 3\n", 4},
		{"two corners", "v 0 0 0\nv 1 0 0\nf 1 2\n", 3},
		{"short vertex", "v 0 0\n", 1},
		{"bad float", "v 0 zero 0\n", 1},
		{"short normal", "vn 1\n", 1},
		{"short texcoord", "vt 1\n", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.src))
			require.Error(t, err)

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, tt.line, perr.Line)
			assert.NotEmpty(t, perr.Text)
			assert.Contains(t, err.Error(), perr.Text)
		})
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.obj")
	require.NoError(t, os.WriteFile(path, []byte(triangleOBJ), 0o644))

	meshes, err := ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, meshes, 1)
}

func TestParseFileMissing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "missing.obj"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	var perr *ParseError
	assert.False(t, errors.As(err, &perr))
}

func TestValidate(t *testing.T) {
	s := Submesh{Vertices: make([]Vertex, 2), Indices: []uint32{0, 1}}
	assert.NoError(t, s.Validate())

	s.Indices = []uint32{0}
	assert.Error(t, s.Validate())

	s.Indices = []uint32{0, 2}
	assert.Error(t, s.Validate())
}
