package graphics

import "github.com/go-gl/mathgl/mgl32"

// OpenGL enum values used across the Device boundary. They match the values
// in the GL headers so a Device can pass them straight through.
const (
	ArrayBuffer        uint32 = 0x8892
	ElementArrayBuffer uint32 = 0x8893

	Float       uint32 = 0x1406
	UnsignedInt uint32 = 0x1405
	Triangles   uint32 = 0x0004

	VertexShader   uint32 = 0x8B31
	FragmentShader uint32 = 0x8B30

	DepthTest uint32 = 0x0B71

	ColorBufferBit uint32 = 0x00004000
	DepthBufferBit uint32 = 0x00000100
)

// Device is the slice of the graphics API used by meshes, shaders and the
// renderer. All calls must happen on the goroutine that owns the current
// context.
type Device interface {
	GenVertexArray() uint32
	DeleteVertexArray(vao uint32)
	BindVertexArray(vao uint32)

	GenBuffer() uint32
	DeleteBuffer(buf uint32)
	BindBuffer(target, buf uint32)
	// BufferData uploads size bytes from data, which must be a slice or pointer.
	BufferData(target uint32, size int, data any)

	EnableVertexAttribArray(index uint32)
	VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset int)
	DrawElements(mode uint32, count int32, xtype uint32, offset int)

	CreateShader(stage uint32) uint32
	// CompileShader sets the source and compiles. On failure the info log is returned.
	CompileShader(shader uint32, source string) (bool, string)
	DeleteShader(shader uint32)
	CreateProgram() uint32
	AttachShader(program, shader uint32)
	// LinkProgram links the program. On failure the info log is returned.
	LinkProgram(program uint32) (bool, string)
	DeleteProgram(program uint32)
	UseProgram(program uint32)

	// GetUniformLocation returns -1 for names the program does not use.
	GetUniformLocation(program uint32, name string) int32
	Uniform1i(location int32, v int32)
	Uniform1f(location int32, v float32)
	Uniform2f(location int32, v mgl32.Vec2)
	Uniform3f(location int32, v mgl32.Vec3)
	Uniform4f(location int32, v mgl32.Vec4)
	UniformMatrix2f(location int32, m mgl32.Mat2)
	UniformMatrix3f(location int32, m mgl32.Mat3)
	UniformMatrix4f(location int32, m mgl32.Mat4)

	Enable(capability uint32)
	ClearColor(r, g, b, a float32)
	Clear(mask uint32)
	Viewport(x, y, width, height int32)

	// NewFrameTarget creates an offscreen color+depth target of the given size.
	NewFrameTarget(width, height int) (FrameTarget, error)
}

// FrameTarget is an offscreen render target whose pixels can be read back.
type FrameTarget interface {
	Bind()
	Unbind()
	Size() (int, int)
	// ReadPixels copies the RGBA8 contents into dst, which must hold width*height*4 bytes.
	ReadPixels(dst []byte) error
	Destroy()
}
