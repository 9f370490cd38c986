package shader

import (
	"fmt"
	"log"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goobjviewer/graphics"
	"github.com/richinsley/goobjviewer/translator"
)

// CompileError carries the compiler log of a failed stage.
type CompileError struct {
	Stage string
	Log   string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("failed to compile %s shader: %s", e.Stage, e.Log)
}

// LinkError carries the linker log of a failed program.
type LinkError struct {
	Log string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("failed to link program: %s", e.Log)
}

// Program owns one linked shader program. The zero program ID means
// nothing is loaded.
type Program struct {
	// TranslateES makes Load translate GLSL ES 3.00 sources to desktop GLSL
	// before compiling.
	TranslateES bool

	device   graphics.Device
	id       uint32
	inUse    bool
	uniforms *UniformCache
	// names maps source uniform names to translated names; nil when the
	// sources were compiled as written.
	names map[string]string
}

// NewProgram returns an unloaded program bound to device.
func NewProgram(device graphics.Device) *Program {
	return &Program{device: device, uniforms: NewUniformCache()}
}

// ID returns the program handle, or 0 when unloaded.
func (p *Program) ID() uint32 { return p.id }

// Loaded reports whether a program is loaded.
func (p *Program) Loaded() bool { return p.id != 0 }

// LoadFiles reads both stages from disk and calls Load.
func (p *Program) LoadFiles(vertexPath, fragmentPath string) error {
	vs, err := os.ReadFile(vertexPath)
	if err != nil {
		return fmt.Errorf("failed to read vertex shader: %w", err)
	}
	fs, err := os.ReadFile(fragmentPath)
	if err != nil {
		return fmt.Errorf("failed to read fragment shader: %w", err)
	}
	return p.Load(string(vs), string(fs))
}

// LoadOK is Load with the failure logged instead of returned.
func (p *Program) LoadOK(vertexSource, fragmentSource string) bool {
	if err := p.Load(vertexSource, fragmentSource); err != nil {
		log.Printf("Shader load failed: %v", err)
		return false
	}
	return true
}

// Load compiles and links a new program. On failure every object created by
// this call is released and the previous program, if any, stays loaded.
// On success the previous program is deleted and the uniform cache cleared.
func (p *Program) Load(vertexSource, fragmentSource string) error {
	var names map[string]string
	if p.TranslateES {
		var err error
		if vertexSource, fragmentSource, names, err = translateSources(vertexSource, fragmentSource); err != nil {
			return err
		}
	}

	vs, err := p.compile(graphics.VertexShader, "vertex", vertexSource)
	if err != nil {
		return err
	}
	fs, err := p.compile(graphics.FragmentShader, "fragment", fragmentSource)
	if err != nil {
		p.device.DeleteShader(vs)
		return err
	}

	program := p.device.CreateProgram()
	p.device.AttachShader(program, vs)
	p.device.AttachShader(program, fs)
	ok, infoLog := p.device.LinkProgram(program)
	p.device.DeleteShader(vs)
	p.device.DeleteShader(fs)
	if !ok {
		p.device.DeleteProgram(program)
		return &LinkError{Log: infoLog}
	}

	if p.id != 0 {
		p.device.DeleteProgram(p.id)
	}
	p.id = program
	p.names = names
	p.uniforms.Clear()
	if p.inUse {
		p.device.UseProgram(p.id)
	}
	return nil
}

func (p *Program) compile(stage uint32, stageName, source string) (uint32, error) {
	shader := p.device.CreateShader(stage)
	if ok, infoLog := p.device.CompileShader(shader, source); !ok {
		p.device.DeleteShader(shader)
		return 0, &CompileError{Stage: stageName, Log: infoLog}
	}
	return shader, nil
}

func translateSources(vertexSource, fragmentSource string) (string, string, map[string]string, error) {
	if !translator.IsES(vertexSource) && !translator.IsES(fragmentSource) {
		return vertexSource, fragmentSource, nil, nil
	}
	names := make(map[string]string)
	out := [2]string{vertexSource, fragmentSource}
	for i, stage := range []string{"vertex", "fragment"} {
		if !translator.IsES(out[i]) {
			continue
		}
		res, err := translator.ToDesktop(out[i], stage)
		if err != nil {
			return "", "", nil, err
		}
		out[i] = res.Code
		for k, v := range res.Names {
			names[k] = v
		}
	}
	return out[0], out[1], names, nil
}

// Use binds the program for subsequent draws.
func (p *Program) Use() {
	if p.id != 0 {
		p.device.UseProgram(p.id)
		p.inUse = true
	}
}

// Unuse unbinds any program.
func (p *Program) Unuse() {
	p.device.UseProgram(0)
	p.inUse = false
}

// Destroy deletes the program. Calling it again, or on an unloaded program,
// does nothing.
func (p *Program) Destroy() {
	if p.id == 0 {
		return
	}
	p.device.DeleteProgram(p.id)
	p.id = 0
	p.inUse = false
	p.names = nil
	p.uniforms.Clear()
}

func (p *Program) location(name string) (int32, bool) {
	if p.id == 0 {
		return -1, false
	}
	return p.uniforms.Lookup(name, func(name string) int32 {
		if mapped, ok := p.names[name]; ok {
			name = mapped
		}
		return p.device.GetUniformLocation(p.id, name)
	})
}

func (p *Program) SetBool(name string, value bool) {
	var v int32
	if value {
		v = 1
	}
	p.SetInt(name, v)
}

func (p *Program) SetInt(name string, value int32) {
	if loc, ok := p.location(name); ok {
		p.device.Uniform1i(loc, value)
	}
}

func (p *Program) SetFloat(name string, value float32) {
	if loc, ok := p.location(name); ok {
		p.device.Uniform1f(loc, value)
	}
}

func (p *Program) SetVec2(name string, value mgl32.Vec2) {
	if loc, ok := p.location(name); ok {
		p.device.Uniform2f(loc, value)
	}
}

func (p *Program) SetVec3(name string, value mgl32.Vec3) {
	if loc, ok := p.location(name); ok {
		p.device.Uniform3f(loc, value)
	}
}

func (p *Program) SetVec4(name string, value mgl32.Vec4) {
	if loc, ok := p.location(name); ok {
		p.device.Uniform4f(loc, value)
	}
}

func (p *Program) SetMat2(name string, value mgl32.Mat2) {
	if loc, ok := p.location(name); ok {
		p.device.UniformMatrix2f(loc, value)
	}
}

func (p *Program) SetMat3(name string, value mgl32.Mat3) {
	if loc, ok := p.location(name); ok {
		p.device.UniformMatrix3f(loc, value)
	}
}

func (p *Program) SetMat4(name string, value mgl32.Mat4) {
	if loc, ok := p.location(name); ok {
		p.device.UniformMatrix4f(loc, value)
	}
}
