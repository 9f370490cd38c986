package renderer

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goobjviewer/graphics"
	"github.com/richinsley/goobjviewer/obj"
	"github.com/richinsley/goobjviewer/options"
	"github.com/richinsley/goobjviewer/shader"
)

// ContextFactory creates a window context, fullscreen or windowed.
type ContextFactory func(fullscreen bool) (graphics.Context, error)

// Renderer owns the window context, the shader program and the model, and
// tears them down in that dependency order: model, shader, context.
// All methods must be called from the thread that owns the context.
type Renderer struct {
	context    graphics.Context
	newContext ContextFactory
	device     graphics.Device
	options    *options.ViewerOptions
	scene      *options.Scene

	shader  *shader.Program
	model   *Model
	watcher *Watcher

	// last successfully loaded inputs, uploaded again after a context change
	submeshes      []obj.Submesh
	vertexSource   string
	fragmentSource string

	lastTime          float64
	pendingFullscreen bool
	pendingReload     bool
	closed            bool
}

// NewRenderer makes ctx current and loads the shader and model. newContext
// may be nil, in which case fullscreen toggling is unavailable.
func NewRenderer(ctx graphics.Context, device graphics.Device, newContext ContextFactory, opts *options.ViewerOptions, scene *options.Scene) (*Renderer, error) {
	r := &Renderer{
		context:    ctx,
		newContext: newContext,
		device:     device,
		options:    opts,
		scene:      scene,
	}

	r.context.MakeCurrent()
	r.initState()
	r.shader = shader.NewProgram(r.device)
	if err := r.loadShader(); err != nil {
		r.releaseGPU()
		return nil, fmt.Errorf("failed to load shaders: %w", err)
	}
	if err := r.ReloadModel(); err != nil {
		r.releaseGPU()
		return nil, err
	}
	return r, nil
}

// initState sets the global GL state of the current context.
func (r *Renderer) initState() {
	c := r.scene.ClearColor
	r.device.ClearColor(c[0], c[1], c[2], c[3])
	r.device.Enable(graphics.DepthTest)
}

// restoreScene recreates the program and model in the current context from
// the last sources and submeshes that loaded successfully. Nothing is read
// from disk.
func (r *Renderer) restoreScene(transform mgl32.Mat4) error {
	r.initState()

	r.shader = shader.NewProgram(r.device)
	r.shader.TranslateES = r.translateES()
	if err := r.shader.Load(r.vertexSource, r.fragmentSource); err != nil {
		return fmt.Errorf("failed to restore shaders: %w", err)
	}

	model, err := UploadModel(r.device, *r.options.ModelPath, r.submeshes)
	if err != nil {
		return err
	}
	model.SetModelMatrix(transform)
	r.model = model
	return nil
}

func (r *Renderer) loadOptions() LoadOptions {
	return LoadOptions{FlatNormals: *r.options.FlatNormals}
}

// translateES reports whether ES sources need translating for the current
// context. An ES context compiles them as written.
func (r *Renderer) translateES() bool {
	return *r.options.GLES && !r.context.IsGLES()
}

// shaderSources returns the custom shader files, or the built-in shader in
// the dialect of the current context.
func (r *Renderer) shaderSources() (string, string, error) {
	if !r.options.CustomShaders() {
		isGLES := r.context.IsGLES()
		return shader.DefaultVertexSource(isGLES), shader.DefaultFragmentSource(isGLES), nil
	}
	vs, err := os.ReadFile(*r.options.VertexShaderPath)
	if err != nil {
		return "", "", fmt.Errorf("failed to read vertex shader: %w", err)
	}
	fs, err := os.ReadFile(*r.options.FragmentShaderPath)
	if err != nil {
		return "", "", fmt.Errorf("failed to read fragment shader: %w", err)
	}
	return string(vs), string(fs), nil
}

// loadShader compiles the current shader sources and remembers them once
// they link.
func (r *Renderer) loadShader() error {
	vs, fs, err := r.shaderSources()
	if err != nil {
		return err
	}
	r.shader.TranslateES = r.translateES()
	if err := r.shader.Load(vs, fs); err != nil {
		return err
	}
	r.vertexSource, r.fragmentSource = vs, fs
	return nil
}

// Model returns the current model.
func (r *Renderer) Model() *Model { return r.model }

// Shader returns the current program.
func (r *Renderer) Shader() *shader.Program { return r.shader }

// Context returns the current window context. It changes across fullscreen toggles.
func (r *Renderer) Context() graphics.Context { return r.context }

// ReloadModel parses and uploads the model file again. The old model is
// released only after the new one is fully uploaded; on failure it stays.
func (r *Renderer) ReloadModel() error {
	path := *r.options.ModelPath
	subs, err := ParseModel(path, r.loadOptions())
	var model *Model
	if err == nil {
		model, err = UploadModel(r.device, path, subs)
	}
	if err != nil {
		if r.model != nil {
			log.Printf("Model reload failed, keeping previous model: %v", err)
		}
		return err
	}

	if r.model != nil {
		model.SetModelMatrix(r.model.ModelMatrix())
		r.model.Destroy()
	}
	r.model = model
	r.submeshes = subs
	return nil
}

// ReloadShader recompiles the shader sources. On failure the previous
// program stays in use.
func (r *Renderer) ReloadShader() error {
	if err := r.loadShader(); err != nil {
		log.Printf("Shader reload failed, keeping previous program: %v", err)
		return err
	}
	log.Println("Shader reloaded")
	return nil
}

// RequestFullscreenToggle schedules a fullscreen toggle for the start of the
// next frame. Safe to call from window callbacks.
func (r *Renderer) RequestFullscreenToggle() { r.pendingFullscreen = true }

// RequestReload schedules a shader and model reload for the next frame.
func (r *Renderer) RequestReload() { r.pendingReload = true }

// ToggleFullscreen recreates the window in the other mode. Creating a window
// destroys the old context, so every GPU object is released first and
// recreated afterwards from the last good shader sources and submeshes, even
// if the files on disk have since changed or broken. The model transform
// carries over.
func (r *Renderer) ToggleFullscreen() error {
	if r.newContext == nil {
		return errors.New("fullscreen toggle is not supported by this context")
	}
	want := !r.context.Fullscreen()
	transform := mgl32.Ident4()
	if r.model != nil {
		transform = r.model.ModelMatrix()
	}

	r.releaseGPU()
	r.context.Shutdown()
	r.context = nil

	ctx, err := r.newContext(want)
	if err != nil {
		log.Printf("Failed to recreate window (fullscreen=%v): %v", want, err)
		if ctx, err = r.newContext(!want); err != nil {
			return fmt.Errorf("failed to restore window: %w", err)
		}
	}
	r.context = ctx
	r.context.MakeCurrent()
	return r.restoreScene(transform)
}

// Update advances the animation by dt seconds.
func (r *Renderer) Update(dt float64) {
	if r.model != nil {
		r.model.RotateY(r.scene.RotationSpeed * float32(dt))
	}
}

// Render draws one frame into the bound framebuffer.
func (r *Renderer) Render(width, height int) {
	r.device.Viewport(0, 0, int32(width), int32(height))
	r.device.Clear(graphics.ColorBufferBit | graphics.DepthBufferBit)
	if r.model == nil || r.shader == nil || !r.shader.Loaded() || width <= 0 || height <= 0 {
		return
	}

	s := r.scene
	r.shader.Use()
	r.shader.SetVec3("viewPos", s.ViewPos)
	r.shader.SetVec3("lightPos", s.LightPos)
	r.shader.SetVec3("lightColor", s.LightColor)
	r.shader.SetVec3("objectColor", s.ObjectColor)
	r.shader.SetFloat("ambientStrength", s.AmbientStrength)
	r.shader.SetFloat("specularStrength", s.SpecularStrength)
	r.shader.SetInt("shininess", s.Shininess)

	view := mgl32.LookAtV(s.ViewPos, s.Target, s.Up)
	aspect := float32(width) / float32(height)
	projection := mgl32.Perspective(mgl32.DegToRad(s.FOVDegrees), aspect, s.Near, s.Far)
	r.shader.SetMat4("view", view)
	r.shader.SetMat4("projection", projection)

	tilt := mgl32.HomogRotate3DX(mgl32.DegToRad(s.TiltDegrees))
	r.model.DrawTransformed(r.shader, tilt)
}

// Watch starts reloading the model and shader files when they change on disk.
func (r *Renderer) Watch() error {
	paths := []string{*r.options.ModelPath}
	if r.options.CustomShaders() {
		paths = append(paths, *r.options.VertexShaderPath, *r.options.FragmentShaderPath)
	}
	w, err := NewWatcher(paths...)
	if err != nil {
		return err
	}
	r.watcher = w
	return nil
}

// handlePending runs the work queued by callbacks and the file watcher.
func (r *Renderer) handlePending() error {
	if r.pendingFullscreen {
		r.pendingFullscreen = false
		if err := r.ToggleFullscreen(); err != nil {
			return err
		}
	}

	reloadModel, reloadShader := r.pendingReload, r.pendingReload
	r.pendingReload = false
	if r.watcher != nil {
		model, _ := filepath.Abs(*r.options.ModelPath)
	drain:
		for {
			select {
			case path := <-r.watcher.Changed():
				if path == model {
					reloadModel = true
				} else {
					reloadShader = true
				}
			default:
				break drain
			}
		}
	}
	if reloadShader && r.shader != nil {
		_ = r.ReloadShader()
	}
	if reloadModel {
		_ = r.ReloadModel()
	}
	return nil
}

// Run drives the interactive frame loop until the window is closed.
func (r *Renderer) Run() {
	r.lastTime = r.context.Time()
	for !r.context.ShouldClose() {
		if err := r.handlePending(); err != nil {
			log.Printf("Stopping render loop: %v", err)
			return
		}

		now := r.context.Time()
		dt := now - r.lastTime
		r.lastTime = now
		r.Update(dt)

		width, height := r.context.GetFramebufferSize()
		r.Render(width, height)
		r.context.EndFrame()
	}
}

func (r *Renderer) releaseGPU() {
	if r.model != nil {
		r.model.Destroy()
		r.model = nil
	}
	if r.shader != nil {
		r.shader.Destroy()
	}
}

// Shutdown stops the watcher, then releases the model, the shader and the
// context, in that order. Later calls do nothing.
func (r *Renderer) Shutdown() {
	if r.closed {
		return
	}
	r.closed = true
	if r.watcher != nil {
		if err := r.watcher.Close(); err != nil {
			log.Printf("Error closing file watcher: %v", err)
		}
		r.watcher = nil
	}
	r.releaseGPU()
	if r.context != nil {
		r.context.Shutdown()
		r.context = nil
	}
}
