// Package graphicstest provides in-memory stand-ins for the graphics
// interfaces. FakeDevice records every object it hands out and every release
// so tests can check ownership without a GPU.
package graphicstest

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goobjviewer/graphics"
)

// Kind names a class of GPU object.
type Kind string

const (
	KindBuffer      Kind = "buffer"
	KindVertexArray Kind = "vertexarray"
	KindShader      Kind = "shader"
	KindProgram     Kind = "program"
	KindFrameTarget Kind = "frametarget"
)

type object struct {
	kind Kind
	live bool
}

// Attrib is one recorded VertexAttribPointer call.
type Attrib struct {
	Size       int32
	Type       uint32
	Normalized bool
	Stride     int32
	Offset     int
	Enabled    bool
}

// Draw is one recorded DrawElements call.
type Draw struct {
	VAO     uint32
	Program uint32
	Count   int32
}

// UniformSet is one recorded uniform upload.
type UniformSet struct {
	Program  uint32
	Location int32
	Value    any
}

// FakeDevice implements graphics.Device in memory.
type FakeDevice struct {
	next    uint32
	objects map[uint32]*object
	deletes map[uint32]int

	// BadDeletes counts releases of handles that were not live.
	BadDeletes int

	// CompileHook decides the outcome of CompileShader. Nil compiles everything.
	CompileHook func(stage uint32, source string) (bool, string)
	// LinkHook decides the outcome of LinkProgram. Nil links everything.
	LinkHook func(program uint32) (bool, string)
	// MissingUniforms lists names GetUniformLocation resolves to -1.
	MissingUniforms map[string]bool

	ShaderStages  map[uint32]uint32
	ShaderSources map[uint32]string
	Attached      map[uint32][]uint32
	BufferSizes   map[uint32]int
	Uploads       map[uint32]any
	Attribs       map[uint32]map[uint32]*Attrib

	CurrentProgram uint32
	CurrentVAO     uint32
	bound          map[uint32]uint32

	LocationQueries map[string]int
	locations       map[uint32]map[string]int32
	Uniforms        []UniformSet
	Draws           []Draw

	Enabled    map[uint32]bool
	Clears     int
	ClearRGBA  [4]float32
	ViewportWH [2]int32
}

var _ graphics.Device = (*FakeDevice)(nil)

// NewFakeDevice returns an empty FakeDevice.
func NewFakeDevice() *FakeDevice {
	return &FakeDevice{
		objects:         make(map[uint32]*object),
		deletes:         make(map[uint32]int),
		MissingUniforms: make(map[string]bool),
		ShaderStages:    make(map[uint32]uint32),
		ShaderSources:   make(map[uint32]string),
		Attached:        make(map[uint32][]uint32),
		BufferSizes:     make(map[uint32]int),
		Uploads:         make(map[uint32]any),
		Attribs:         make(map[uint32]map[uint32]*Attrib),
		bound:           make(map[uint32]uint32),
		LocationQueries: make(map[string]int),
		locations:       make(map[uint32]map[string]int32),
		Enabled:         make(map[uint32]bool),
	}
}

func (d *FakeDevice) gen(kind Kind) uint32 {
	d.next++
	d.objects[d.next] = &object{kind: kind, live: true}
	return d.next
}

func (d *FakeDevice) release(kind Kind, id uint32) {
	if id == 0 {
		return
	}
	d.deletes[id]++
	o, ok := d.objects[id]
	if !ok || o.kind != kind || !o.live {
		d.BadDeletes++
		return
	}
	o.live = false
}

// Releases reports how many times id was released.
func (d *FakeDevice) Releases(id uint32) int { return d.deletes[id] }

// Live counts the objects of kind that have not been released.
func (d *FakeDevice) Live(kind Kind) int {
	n := 0
	for _, o := range d.objects {
		if o.kind == kind && o.live {
			n++
		}
	}
	return n
}

// IsLive reports whether id is an unreleased object.
func (d *FakeDevice) IsLive(id uint32) bool {
	o, ok := d.objects[id]
	return ok && o.live
}

func (d *FakeDevice) GenVertexArray() uint32 { return d.gen(KindVertexArray) }

func (d *FakeDevice) DeleteVertexArray(vao uint32) { d.release(KindVertexArray, vao) }

func (d *FakeDevice) BindVertexArray(vao uint32) { d.CurrentVAO = vao }

func (d *FakeDevice) GenBuffer() uint32 { return d.gen(KindBuffer) }

func (d *FakeDevice) DeleteBuffer(buf uint32) { d.release(KindBuffer, buf) }

func (d *FakeDevice) BindBuffer(target, buf uint32) { d.bound[target] = buf }

func (d *FakeDevice) BufferData(target uint32, size int, data any) {
	buf := d.bound[target]
	d.BufferSizes[buf] = size
	d.Uploads[buf] = data
}

func (d *FakeDevice) attrib(index uint32) *Attrib {
	m, ok := d.Attribs[d.CurrentVAO]
	if !ok {
		m = make(map[uint32]*Attrib)
		d.Attribs[d.CurrentVAO] = m
	}
	a, ok := m[index]
	if !ok {
		a = &Attrib{}
		m[index] = a
	}
	return a
}

func (d *FakeDevice) EnableVertexAttribArray(index uint32) { d.attrib(index).Enabled = true }

func (d *FakeDevice) VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset int) {
	a := d.attrib(index)
	a.Size, a.Type, a.Normalized, a.Stride, a.Offset = size, xtype, normalized, stride, offset
}

func (d *FakeDevice) DrawElements(mode uint32, count int32, xtype uint32, offset int) {
	d.Draws = append(d.Draws, Draw{VAO: d.CurrentVAO, Program: d.CurrentProgram, Count: count})
}

func (d *FakeDevice) CreateShader(stage uint32) uint32 {
	id := d.gen(KindShader)
	d.ShaderStages[id] = stage
	return id
}

func (d *FakeDevice) CompileShader(shader uint32, source string) (bool, string) {
	d.ShaderSources[shader] = source
	if d.CompileHook != nil {
		return d.CompileHook(d.ShaderStages[shader], source)
	}
	return true, ""
}

func (d *FakeDevice) DeleteShader(shader uint32) { d.release(KindShader, shader) }

func (d *FakeDevice) CreateProgram() uint32 { return d.gen(KindProgram) }

func (d *FakeDevice) AttachShader(program, shader uint32) {
	d.Attached[program] = append(d.Attached[program], shader)
}

func (d *FakeDevice) LinkProgram(program uint32) (bool, string) {
	if d.LinkHook != nil {
		return d.LinkHook(program)
	}
	return true, ""
}

func (d *FakeDevice) DeleteProgram(program uint32) { d.release(KindProgram, program) }

func (d *FakeDevice) UseProgram(program uint32) { d.CurrentProgram = program }

func (d *FakeDevice) GetUniformLocation(program uint32, name string) int32 {
	d.LocationQueries[name]++
	if d.MissingUniforms[name] {
		return -1
	}
	locs, ok := d.locations[program]
	if !ok {
		locs = make(map[string]int32)
		d.locations[program] = locs
	}
	loc, ok := locs[name]
	if !ok {
		loc = int32(len(locs))
		locs[name] = loc
	}
	return loc
}

func (d *FakeDevice) uniform(location int32, v any) {
	d.Uniforms = append(d.Uniforms, UniformSet{Program: d.CurrentProgram, Location: location, Value: v})
}

// UniformValue returns the last value uploaded to the named uniform of program.
func (d *FakeDevice) UniformValue(program uint32, name string) (any, bool) {
	loc, ok := d.locations[program][name]
	if !ok {
		return nil, false
	}
	for i := len(d.Uniforms) - 1; i >= 0; i-- {
		u := d.Uniforms[i]
		if u.Program == program && u.Location == loc {
			return u.Value, true
		}
	}
	return nil, false
}

func (d *FakeDevice) Uniform1i(location int32, v int32)           { d.uniform(location, v) }
func (d *FakeDevice) Uniform1f(location int32, v float32)         { d.uniform(location, v) }
func (d *FakeDevice) Uniform2f(location int32, v mgl32.Vec2)      { d.uniform(location, v) }
func (d *FakeDevice) Uniform3f(location int32, v mgl32.Vec3)      { d.uniform(location, v) }
func (d *FakeDevice) Uniform4f(location int32, v mgl32.Vec4)      { d.uniform(location, v) }
func (d *FakeDevice) UniformMatrix2f(location int32, m mgl32.Mat2) { d.uniform(location, m) }
func (d *FakeDevice) UniformMatrix3f(location int32, m mgl32.Mat3) { d.uniform(location, m) }
func (d *FakeDevice) UniformMatrix4f(location int32, m mgl32.Mat4) { d.uniform(location, m) }

func (d *FakeDevice) Enable(capability uint32) { d.Enabled[capability] = true }

func (d *FakeDevice) ClearColor(r, g, b, a float32) { d.ClearRGBA = [4]float32{r, g, b, a} }

func (d *FakeDevice) Clear(mask uint32) { d.Clears++ }

func (d *FakeDevice) Viewport(x, y, width, height int32) { d.ViewportWH = [2]int32{width, height} }

func (d *FakeDevice) NewFrameTarget(width, height int) (graphics.FrameTarget, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame target size %dx%d", width, height)
	}
	return &FrameTarget{device: d, id: d.gen(KindFrameTarget), width: width, height: height}, nil
}

// FrameTarget is the FakeDevice offscreen target. ReadPixels fills every
// byte with the number of reads so far.
type FrameTarget struct {
	device        *FakeDevice
	id            uint32
	width, height int
	Reads         int
	BoundCount    int
}

func (t *FrameTarget) Bind()            { t.BoundCount++ }
func (t *FrameTarget) Unbind()          {}
func (t *FrameTarget) Size() (int, int) { return t.width, t.height }

func (t *FrameTarget) ReadPixels(dst []byte) error {
	if len(dst) < t.width*t.height*4 {
		return fmt.Errorf("pixel buffer too small: %d bytes", len(dst))
	}
	t.Reads++
	for i := range dst {
		dst[i] = byte(t.Reads)
	}
	return nil
}

func (t *FrameTarget) Destroy() { t.device.release(KindFrameTarget, t.id) }
