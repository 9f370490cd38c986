// Package gldevice implements graphics.Device on top of OpenGL 4.1 core.
package gldevice

import (
	"fmt"
	"log"
	"strings"
	"sync"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goobjviewer/graphics"
)

var glInitOnce sync.Once

// Device issues graphics.Device calls against the current OpenGL context.
type Device struct{}

var _ graphics.Device = (*Device)(nil)

// New loads the OpenGL function pointers. A context must be current on the
// calling thread.
func New() (*Device, error) {
	var initErr error
	glInitOnce.Do(func() {
		initErr = gl.Init()
		if initErr == nil {
			log.Printf("OpenGL version: %s", gl.GoStr(gl.GetString(gl.VERSION)))
		}
	})
	if initErr != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", initErr)
	}
	return &Device{}, nil
}

func (d *Device) GenVertexArray() uint32 {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	return vao
}

func (d *Device) DeleteVertexArray(vao uint32) { gl.DeleteVertexArrays(1, &vao) }

func (d *Device) BindVertexArray(vao uint32) { gl.BindVertexArray(vao) }

func (d *Device) GenBuffer() uint32 {
	var buf uint32
	gl.GenBuffers(1, &buf)
	return buf
}

func (d *Device) DeleteBuffer(buf uint32) { gl.DeleteBuffers(1, &buf) }

func (d *Device) BindBuffer(target, buf uint32) { gl.BindBuffer(target, buf) }

func (d *Device) BufferData(target uint32, size int, data any) {
	gl.BufferData(target, size, gl.Ptr(data), gl.STATIC_DRAW)
}

func (d *Device) EnableVertexAttribArray(index uint32) { gl.EnableVertexAttribArray(index) }

func (d *Device) VertexAttribPointer(index uint32, size int32, xtype uint32, normalized bool, stride int32, offset int) {
	gl.VertexAttribPointerWithOffset(index, size, xtype, normalized, stride, uintptr(offset))
}

func (d *Device) DrawElements(mode uint32, count int32, xtype uint32, offset int) {
	gl.DrawElementsWithOffset(mode, count, xtype, uintptr(offset))
}

func (d *Device) CreateShader(stage uint32) uint32 { return gl.CreateShader(stage) }

func (d *Device) CompileShader(shader uint32, source string) (bool, string) {
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logText))
		return false, strings.TrimRight(logText, "\x00")
	}
	return true, ""
}

func (d *Device) DeleteShader(shader uint32) { gl.DeleteShader(shader) }

func (d *Device) CreateProgram() uint32 { return gl.CreateProgram() }

func (d *Device) AttachShader(program, shader uint32) { gl.AttachShader(program, shader) }

func (d *Device) LinkProgram(program uint32) (bool, string) {
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		logText := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(logText))
		return false, strings.TrimRight(logText, "\x00")
	}
	return true, ""
}

func (d *Device) DeleteProgram(program uint32) { gl.DeleteProgram(program) }

func (d *Device) UseProgram(program uint32) { gl.UseProgram(program) }

func (d *Device) GetUniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (d *Device) Uniform1i(location int32, v int32)      { gl.Uniform1i(location, v) }
func (d *Device) Uniform1f(location int32, v float32)    { gl.Uniform1f(location, v) }
func (d *Device) Uniform2f(location int32, v mgl32.Vec2) { gl.Uniform2fv(location, 1, &v[0]) }
func (d *Device) Uniform3f(location int32, v mgl32.Vec3) { gl.Uniform3fv(location, 1, &v[0]) }
func (d *Device) Uniform4f(location int32, v mgl32.Vec4) { gl.Uniform4fv(location, 1, &v[0]) }

func (d *Device) UniformMatrix2f(location int32, m mgl32.Mat2) {
	gl.UniformMatrix2fv(location, 1, false, &m[0])
}

func (d *Device) UniformMatrix3f(location int32, m mgl32.Mat3) {
	gl.UniformMatrix3fv(location, 1, false, &m[0])
}

func (d *Device) UniformMatrix4f(location int32, m mgl32.Mat4) {
	gl.UniformMatrix4fv(location, 1, false, &m[0])
}

func (d *Device) Enable(capability uint32) { gl.Enable(capability) }

func (d *Device) ClearColor(r, g, b, a float32) { gl.ClearColor(r, g, b, a) }

func (d *Device) Clear(mask uint32) { gl.Clear(mask) }

func (d *Device) Viewport(x, y, width, height int32) { gl.Viewport(x, y, width, height) }

func (d *Device) NewFrameTarget(width, height int) (graphics.FrameTarget, error) {
	return newOffscreen(width, height)
}
