package renderer

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/richinsley/goobjviewer/graphics"
	"github.com/richinsley/goobjviewer/obj"
)

// Vertex layout shared with the shaders: three tightly packed attributes.
const (
	PositionSlot uint32 = 0
	NormalSlot   uint32 = 1
	TexCoordSlot uint32 = 2
)

var (
	vertexStride   = int32(unsafe.Sizeof(obj.Vertex{}))
	normalOffset   = int(unsafe.Offsetof(obj.Vertex{}.Normal))
	texCoordOffset = int(unsafe.Offsetof(obj.Vertex{}.TexCoord))
)

// ErrEmptyGeometry is returned when asked to upload no vertices.
var ErrEmptyGeometry = errors.New("geometry has no vertices")

// GeometryBuffer is an immutable vertex/index buffer pair with its vertex
// array. It owns the three handles and releases them exactly once.
type GeometryBuffer struct {
	device      graphics.Device
	vao         uint32
	vbo         uint32
	ebo         uint32
	vertexCount int32
	indexCount  int32
	destroyed   bool
}

// NewGeometryBuffer uploads vertices and indices. The device's context must
// be current.
func NewGeometryBuffer(device graphics.Device, vertices []obj.Vertex, indices []uint32) (*GeometryBuffer, error) {
	if len(vertices) == 0 || len(indices) == 0 {
		return nil, ErrEmptyGeometry
	}
	for i, idx := range indices {
		if int(idx) >= len(vertices) {
			return nil, fmt.Errorf("index %d at position %d exceeds %d vertices", idx, i, len(vertices))
		}
	}

	g := &GeometryBuffer{
		device:      device,
		vertexCount: int32(len(vertices)),
		indexCount:  int32(len(indices)),
	}
	g.vao = device.GenVertexArray()
	g.vbo = device.GenBuffer()
	g.ebo = device.GenBuffer()

	device.BindVertexArray(g.vao)

	device.BindBuffer(graphics.ArrayBuffer, g.vbo)
	device.BufferData(graphics.ArrayBuffer, len(vertices)*int(vertexStride), vertices)

	device.BindBuffer(graphics.ElementArrayBuffer, g.ebo)
	device.BufferData(graphics.ElementArrayBuffer, len(indices)*4, indices)

	device.EnableVertexAttribArray(PositionSlot)
	device.VertexAttribPointer(PositionSlot, 3, graphics.Float, false, vertexStride, 0)
	device.EnableVertexAttribArray(NormalSlot)
	device.VertexAttribPointer(NormalSlot, 3, graphics.Float, false, vertexStride, normalOffset)
	device.EnableVertexAttribArray(TexCoordSlot)
	device.VertexAttribPointer(TexCoordSlot, 2, graphics.Float, false, vertexStride, texCoordOffset)

	// unbind the VAO first so the element buffer binding stays recorded in it
	device.BindVertexArray(0)
	device.BindBuffer(graphics.ArrayBuffer, 0)

	return g, nil
}

// VertexCount returns the number of uploaded vertices.
func (g *GeometryBuffer) VertexCount() int { return int(g.vertexCount) }

// IndexCount returns the number of uploaded indices.
func (g *GeometryBuffer) IndexCount() int { return int(g.indexCount) }

// Destroyed reports whether Destroy has run.
func (g *GeometryBuffer) Destroyed() bool { return g.destroyed }

// Draw issues one indexed triangle draw with whatever program and uniforms
// are currently bound. It does nothing after Destroy.
func (g *GeometryBuffer) Draw() {
	if g.destroyed {
		return
	}
	g.device.BindVertexArray(g.vao)
	g.device.DrawElements(graphics.Triangles, g.indexCount, graphics.UnsignedInt, 0)
	g.device.BindVertexArray(0)
}

// Destroy releases the GPU handles. Later calls do nothing.
func (g *GeometryBuffer) Destroy() {
	if g == nil || g.destroyed {
		return
	}
	g.destroyed = true
	if g.vao != 0 {
		g.device.DeleteVertexArray(g.vao)
		g.vao = 0
	}
	if g.vbo != 0 {
		g.device.DeleteBuffer(g.vbo)
		g.vbo = 0
	}
	if g.ebo != 0 {
		g.device.DeleteBuffer(g.ebo)
		g.ebo = 0
	}
}
