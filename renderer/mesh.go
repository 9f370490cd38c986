package renderer

import (
	"github.com/richinsley/goobjviewer/graphics"
	"github.com/richinsley/goobjviewer/obj"
)

// Mesh is one drawable submesh.
type Mesh struct {
	geometry *GeometryBuffer
}

// NewMesh uploads a parsed submesh.
func NewMesh(device graphics.Device, sub obj.Submesh) (*Mesh, error) {
	g, err := NewGeometryBuffer(device, sub.Vertices, sub.Indices)
	if err != nil {
		return nil, err
	}
	return &Mesh{geometry: g}, nil
}

// Geometry returns the owned buffer.
func (m *Mesh) Geometry() *GeometryBuffer { return m.geometry }

func (m *Mesh) Draw() { m.geometry.Draw() }

func (m *Mesh) Destroy() { m.geometry.Destroy() }
