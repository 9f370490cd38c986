package renderer

import (
	"fmt"
	"log"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goobjviewer/graphics"
	"github.com/richinsley/goobjviewer/obj"
)

// ModelLoadError reports a model that could not be read or parsed.
type ModelLoadError struct {
	Path string
	Err  error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("failed to load model %s: %v", e.Path, e.Err)
}

func (e *ModelLoadError) Unwrap() error { return e.Err }

// MatrixSetter receives the model matrix before the meshes are drawn.
type MatrixSetter interface {
	SetMat4(name string, value mgl32.Mat4)
}

// LoadOptions tunes LoadModel.
type LoadOptions struct {
	// FlatNormals replaces missing normals with per-face normals.
	FlatNormals bool
}

// Model is a set of meshes sharing one transform.
type Model struct {
	Path      string
	meshes    []*Mesh
	transform mgl32.Mat4
}

// NewModel wraps meshes with an identity transform. The model takes
// ownership of the meshes.
func NewModel(meshes ...*Mesh) *Model {
	return &Model{meshes: meshes, transform: mgl32.Ident4()}
}

// LoadModel parses an OBJ file and uploads every submesh. All GPU objects
// exist by the time it returns. A file without geometry yields a model with
// no meshes and a logged warning.
func LoadModel(device graphics.Device, path string, opts LoadOptions) (*Model, error) {
	subs, err := ParseModel(path, opts)
	if err != nil {
		return nil, err
	}
	return UploadModel(device, path, subs)
}

// ParseModel reads the submeshes of an OBJ file without touching the GPU.
func ParseModel(path string, opts LoadOptions) ([]obj.Submesh, error) {
	subs, err := obj.ParseFile(path)
	if err != nil {
		return nil, &ModelLoadError{Path: path, Err: err}
	}
	if opts.FlatNormals {
		for i := range subs {
			obj.ComputeFlatNormals(&subs[i])
		}
	}
	return subs, nil
}

// UploadModel creates a model from already parsed submeshes. subs is only
// read, so the same slice can be uploaded again into a new context.
func UploadModel(device graphics.Device, path string, subs []obj.Submesh) (*Model, error) {
	m := NewModel()
	m.Path = path
	if len(subs) == 0 {
		log.Printf("Warning: No geometry data loaded from %s", path)
		return m, nil
	}

	for i := range subs {
		mesh, err := NewMesh(device, subs[i])
		if err != nil {
			m.Destroy()
			return nil, &ModelLoadError{Path: path, Err: err}
		}
		m.meshes = append(m.meshes, mesh)
	}
	log.Printf("Loaded model %s: %d mesh(es), %d vertices", path, len(m.meshes), m.VertexCount())
	return m, nil
}

// Meshes returns the owned meshes in draw order.
func (m *Model) Meshes() []*Mesh { return m.meshes }

// VertexCount sums the vertices of all meshes.
func (m *Model) VertexCount() int {
	n := 0
	for _, mesh := range m.meshes {
		n += mesh.Geometry().VertexCount()
	}
	return n
}

// Draw sets the "model" uniform to the transform and draws every mesh.
func (m *Model) Draw(shader MatrixSetter) {
	m.DrawTransformed(shader, mgl32.Ident4())
}

// DrawTransformed is Draw with parent applied on the left of the transform.
func (m *Model) DrawTransformed(shader MatrixSetter, parent mgl32.Mat4) {
	shader.SetMat4("model", parent.Mul4(m.transform))
	for _, mesh := range m.meshes {
		mesh.Draw()
	}
}

// ModelMatrix returns the current transform.
func (m *Model) ModelMatrix() mgl32.Mat4 { return m.transform }

// SetModelMatrix replaces the transform.
func (m *Model) SetModelMatrix(transform mgl32.Mat4) { m.transform = transform }

// RotateX composes a rotation of angle radians about X onto the transform.
func (m *Model) RotateX(angle float32) {
	m.transform = m.transform.Mul4(mgl32.HomogRotate3DX(angle))
}

// RotateY composes a rotation of angle radians about Y onto the transform.
func (m *Model) RotateY(angle float32) {
	m.transform = m.transform.Mul4(mgl32.HomogRotate3DY(angle))
}

// RotateZ composes a rotation of angle radians about Z onto the transform.
func (m *Model) RotateZ(angle float32) {
	m.transform = m.transform.Mul4(mgl32.HomogRotate3DZ(angle))
}

// Destroy releases every mesh. Safe to call more than once.
func (m *Model) Destroy() {
	if m == nil {
		return
	}
	for _, mesh := range m.meshes {
		mesh.Destroy()
	}
	m.meshes = nil
}
