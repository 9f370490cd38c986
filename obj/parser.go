package obj

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// maxLineSize bounds a single OBJ line; large exporters write very long f lines.
const maxLineSize = 16 * 1024 * 1024

// absent marks a texture or normal sub-field that was left empty.
const absent = -1

// Corner is one face-corner reference with 0-based indices. TexCoord and
// Normal are absent (-1) when the token leaves them out.
type Corner struct {
	Position int
	TexCoord int
	Normal   int
}

// ParseCorner decodes a face-corner token: "i", "i/j", "i//k" or "i/j/k".
func ParseCorner(tok string) (Corner, error) {
	c := Corner{TexCoord: absent, Normal: absent}

	parts := strings.Split(tok, "/")
	if len(parts) > 3 {
		return c, fmt.Errorf("corner %q has %d fields", tok, len(parts))
	}
	if parts[0] == "" {
		return c, errMissingPosition
	}

	fields := []*int{&c.Position, &c.TexCoord, &c.Normal}
	for i, part := range parts {
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return c, fmt.Errorf("corner %q: %w", tok, err)
		}
		*fields[i] = n - 1
	}
	return c, nil
}

// Parse reads OBJ text and returns the submeshes it describes. The whole
// file becomes one submesh; a file without faces returns an empty slice and
// a nil error.
//
// Faces with more than three corners are fan triangulated around corner 0.
// Missing or out-of-range texture and normal references fall back to
// DefaultTexCoord and DefaultNormal. A bad position reference or a
// non-numeric token fails the whole parse with a *ParseError.
func Parse(r io.Reader) ([]Submesh, error) {
	var (
		positions []mgl32.Vec3
		normals   []mgl32.Vec3
		texCoords []mgl32.Vec2
		mesh      Submesh
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		fail := func(err error) error {
			return &ParseError{Line: lineNo, Text: line, Err: err}
		}

		switch fields[0] {
		case "v":
			p, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fail(err)
			}
			positions = append(positions, mgl32.Vec3{p[0], p[1], p[2]})
		case "vn":
			n, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fail(err)
			}
			normals = append(normals, mgl32.Vec3{n[0], n[1], n[2]})
		case "vt":
			t, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, fail(err)
			}
			texCoords = append(texCoords, mgl32.Vec2{t[0], t[1]})
		case "f":
			if len(fields) < 4 {
				return nil, fail(errTooFewCorners)
			}
			corners := make([]Corner, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				c, err := ParseCorner(tok)
				if err != nil {
					return nil, fail(err)
				}
				if c.Position < 0 || c.Position >= len(positions) {
					return nil, fail(fmt.Errorf("position index %d out of range (%d positions)", c.Position+1, len(positions)))
				}
				corners = append(corners, c)
			}
			for i := 1; i+1 < len(corners); i++ {
				for _, c := range [3]Corner{corners[0], corners[i], corners[i+1]} {
					v, defaulted := resolve(c, positions, normals, texCoords)
					mesh.Indices = append(mesh.Indices, uint32(len(mesh.Vertices)))
					mesh.Vertices = append(mesh.Vertices, v)
					mesh.DefaultNormals = append(mesh.DefaultNormals, defaulted)
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("obj: read: %w", err)
	}

	if len(mesh.Vertices) == 0 {
		return []Submesh{}, nil
	}
	return []Submesh{mesh}, nil
}

// ParseFile opens path and parses it. Open and read failures keep the
// underlying *fs.PathError in the chain.
func ParseFile(path string) ([]Submesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

func resolve(c Corner, positions, normals []mgl32.Vec3, texCoords []mgl32.Vec2) (Vertex, bool) {
	v := Vertex{
		Position: positions[c.Position],
		Normal:   DefaultNormal,
		TexCoord: DefaultTexCoord,
	}
	if c.TexCoord >= 0 && c.TexCoord < len(texCoords) {
		v.TexCoord = texCoords[c.TexCoord]
	}
	defaulted := true
	if c.Normal >= 0 && c.Normal < len(normals) {
		v.Normal = normals[c.Normal]
		defaulted = false
	}
	return v, defaulted
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("want %d components, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(f)
	}
	return out, nil
}
