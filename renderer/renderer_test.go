package renderer

import (
	"bytes"
	"errors"
	"flag"
	"os"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/richinsley/goobjviewer/encoder"
	"github.com/richinsley/goobjviewer/graphics"
	"github.com/richinsley/goobjviewer/graphics/graphicstest"
	"github.com/richinsley/goobjviewer/options"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const badSource = "this is not glsl"

type rendererFixture struct {
	device   *graphicstest.FakeDevice
	ctx      *graphicstest.FakeContext
	opts     *options.ViewerOptions
	created  []*graphicstest.FakeContext
	failNext bool
	// maxFrames limits the contexts created by factory
	maxFrames int
}

func newFixture(t *testing.T, args ...string) *rendererFixture {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	opts := options.Register(fs)
	model := writeFile(t, "cube.obj", cubeOBJ)
	require.NoError(t, fs.Parse(append([]string{"-model", model}, args...)))

	d := graphicstest.NewFakeDevice()
	d.CompileHook = func(stage uint32, source string) (bool, string) {
		if source == badSource {
			return false, "0:1: syntax error"
		}
		return true, ""
	}
	return &rendererFixture{
		device: d,
		ctx:    &graphicstest.FakeContext{Width: 800, Height: 600, Step: 0.5},
		opts:   opts,
	}
}

func (f *rendererFixture) factory(fullscreen bool) (graphics.Context, error) {
	if f.failNext {
		f.failNext = false
		return nil, errors.New("no monitor")
	}
	c := &graphicstest.FakeContext{Width: 1920, Height: 1080, IsFullscreen: fullscreen, MaxFrames: f.maxFrames}
	f.created = append(f.created, c)
	return c, nil
}

func (f *rendererFixture) start(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer(f.ctx, f.device, f.factory, f.opts, options.DefaultScene())
	require.NoError(t, err)
	t.Cleanup(r.Shutdown)
	return r
}

func TestNewRenderer(t *testing.T) {
	f := newFixture(t)
	r := f.start(t)

	assert.True(t, f.ctx.Current)
	assert.True(t, f.device.Enabled[graphics.DepthTest])
	assert.Equal(t, [4]float32{0.1, 0.1, 0.1, 1}, f.device.ClearRGBA)
	assert.True(t, r.Shader().Loaded())
	require.NotNil(t, r.Model())
	assert.Len(t, r.Model().Meshes(), 1)
}

func TestESContextCompilesESSources(t *testing.T) {
	f := newFixture(t, "-gles")
	f.ctx.GLES = true
	r := f.start(t)

	assert.False(t, r.Shader().TranslateES)
	attached := f.device.Attached[r.Shader().ID()]
	require.Len(t, attached, 2)
	for _, id := range attached {
		assert.Contains(t, f.device.ShaderSources[id], "#version 300 es")
	}
}

func TestNewRendererMissingModel(t *testing.T) {
	f := newFixture(t)
	*f.opts.ModelPath = "does/not/exist.obj"

	_, err := NewRenderer(f.ctx, f.device, f.factory, f.opts, options.DefaultScene())
	var lerr *ModelLoadError
	require.ErrorAs(t, err, &lerr)
	// the shader created before the failure was released
	assert.Equal(t, 0, f.device.Live(graphicstest.KindProgram))
}

func TestRenderSetsUniforms(t *testing.T) {
	f := newFixture(t)
	r := f.start(t)
	scene := options.DefaultScene()

	r.Render(800, 600)
	assert.Equal(t, [2]int32{800, 600}, f.device.ViewportWH)
	assert.Equal(t, 1, f.device.Clears)
	require.Len(t, f.device.Draws, 1)

	prog := r.Shader().ID()
	assert.Equal(t, prog, f.device.Draws[0].Program)

	value := func(name string) any {
		v, ok := f.device.UniformValue(prog, name)
		require.True(t, ok, name)
		return v
	}
	assert.Equal(t, scene.LightPos, value("lightPos"))
	assert.Equal(t, scene.ViewPos, value("viewPos"))
	assert.Equal(t, int32(32), value("shininess"))
	assert.Equal(t, mgl32.LookAtV(scene.ViewPos, scene.Target, scene.Up), value("view"))
	proj := mgl32.Perspective(mgl32.DegToRad(45), 800.0/600.0, 0.1, 100)
	assert.True(t, proj.ApproxEqual(value("projection").(mgl32.Mat4)))

	tilt := mgl32.HomogRotate3DX(mgl32.DegToRad(-30))
	assert.True(t, tilt.ApproxEqual(value("model").(mgl32.Mat4)))
}

func TestRenderZeroSizeSkipsDraw(t *testing.T) {
	f := newFixture(t)
	r := f.start(t)

	r.Render(0, 0)
	assert.Equal(t, 1, f.device.Clears)
	assert.Empty(t, f.device.Draws)
}

func TestUpdateRotatesAboutY(t *testing.T) {
	f := newFixture(t)
	r := f.start(t)

	r.Update(0.25)
	r.Update(0.25)
	assert.True(t, r.Model().ModelMatrix().ApproxEqualThreshold(mgl32.HomogRotate3DY(0.5), 1e-5))
}

func TestReloadModel(t *testing.T) {
	f := newFixture(t)
	r := f.start(t)
	r.Update(1)
	old := r.Model()
	transform := old.ModelMatrix()
	oldVAO := old.Meshes()[0].Geometry().vao

	require.NoError(t, r.ReloadModel())
	assert.NotSame(t, old, r.Model())
	assert.Equal(t, transform, r.Model().ModelMatrix())
	assert.False(t, f.device.IsLive(oldVAO))
	assert.Equal(t, 1, f.device.Live(graphicstest.KindVertexArray))

	require.NoError(t, os.WriteFile(*f.opts.ModelPath, []byte("f 1 2 3\n"), 0o644))
	current := r.Model()
	assert.Error(t, r.ReloadModel())
	assert.Same(t, current, r.Model())
	assert.False(t, current.Meshes()[0].Geometry().Destroyed())
	assert.Equal(t, 0, f.device.BadDeletes)
}

func TestReloadShader(t *testing.T) {
	vs := writeFile(t, "a.vs", "void main() {}")
	fs := writeFile(t, "a.fs", "void main() {}")
	f := newFixture(t, "-vs", vs, "-fs", fs)
	r := f.start(t)
	prev := r.Shader().ID()

	require.NoError(t, os.WriteFile(fs, []byte(badSource), 0o644))
	require.Error(t, r.ReloadShader())
	assert.Equal(t, prev, r.Shader().ID())

	require.NoError(t, os.WriteFile(fs, []byte("void main() { }"), 0o644))
	require.NoError(t, r.ReloadShader())
	assert.NotEqual(t, prev, r.Shader().ID())
	assert.False(t, f.device.IsLive(prev))
	assert.Equal(t, 1, f.device.Live(graphicstest.KindProgram))
}

func TestToggleFullscreen(t *testing.T) {
	f := newFixture(t)
	r := f.start(t)
	r.Update(1)
	transform := r.Model().ModelMatrix()
	oldProgram := r.Shader().ID()
	oldVAO := r.Model().Meshes()[0].Geometry().vao

	require.NoError(t, r.ToggleFullscreen())
	assert.Equal(t, 1, f.ctx.ShutDown)
	require.Len(t, f.created, 1)
	assert.True(t, f.created[0].IsFullscreen)
	assert.True(t, f.created[0].Current)
	assert.Same(t, f.created[0], r.Context())

	assert.False(t, f.device.IsLive(oldProgram))
	assert.False(t, f.device.IsLive(oldVAO))
	assert.True(t, r.Shader().Loaded())
	assert.Equal(t, 1, f.device.Live(graphicstest.KindProgram))
	assert.Equal(t, 1, f.device.Live(graphicstest.KindVertexArray))
	assert.Equal(t, transform, r.Model().ModelMatrix())

	require.NoError(t, r.ToggleFullscreen())
	require.Len(t, f.created, 2)
	assert.False(t, f.created[1].IsFullscreen)
	assert.Equal(t, 0, f.device.BadDeletes)
}

func TestToggleFullscreenKeepsLastGoodShader(t *testing.T) {
	vs := writeFile(t, "a.vs", "void main() {}")
	fs := writeFile(t, "a.fs", "void main() { }")
	f := newFixture(t, "-vs", vs, "-fs", fs)
	r := f.start(t)

	require.NoError(t, os.WriteFile(fs, []byte(badSource), 0o644))
	require.Error(t, r.ReloadShader())

	require.NoError(t, r.ToggleFullscreen())
	require.True(t, r.Shader().Loaded())
	attached := f.device.Attached[r.Shader().ID()]
	require.Len(t, attached, 2)
	assert.Equal(t, "void main() {}", f.device.ShaderSources[attached[0]])
	assert.Equal(t, "void main() { }", f.device.ShaderSources[attached[1]])
	require.NotNil(t, r.Model())
	assert.Len(t, r.Model().Meshes(), 1)
	assert.Equal(t, 1, f.device.Live(graphicstest.KindProgram))
}

func TestToggleFullscreenKeepsLastGoodModel(t *testing.T) {
	f := newFixture(t)
	r := f.start(t)
	r.Update(1)
	transform := r.Model().ModelMatrix()

	require.NoError(t, os.Remove(*f.opts.ModelPath))
	require.Error(t, r.ReloadModel())

	require.NoError(t, r.ToggleFullscreen())
	require.NotNil(t, r.Model())
	require.Len(t, r.Model().Meshes(), 1)
	assert.Equal(t, 36, r.Model().Meshes()[0].Geometry().IndexCount())
	assert.Equal(t, transform, r.Model().ModelMatrix())
	assert.True(t, r.Shader().Loaded())

	r.Render(1920, 1080)
	assert.NotEmpty(t, f.device.Draws)
	assert.Equal(t, 0, f.device.BadDeletes)
}

func TestToggleFullscreenFallsBack(t *testing.T) {
	f := newFixture(t)
	r := f.start(t)
	f.failNext = true

	require.NoError(t, r.ToggleFullscreen())
	require.Len(t, f.created, 1)
	assert.False(t, f.created[0].IsFullscreen)
	assert.True(t, r.Shader().Loaded())
}

func TestToggleFullscreenUnsupported(t *testing.T) {
	f := newFixture(t)
	r, err := NewRenderer(f.ctx, f.device, nil, f.opts, options.DefaultScene())
	require.NoError(t, err)
	defer r.Shutdown()

	assert.Error(t, r.ToggleFullscreen())
	assert.Equal(t, 0, f.ctx.ShutDown)
}

func TestRunHandlesPendingToggle(t *testing.T) {
	f := newFixture(t)
	r := f.start(t)
	f.maxFrames = 3
	r.RequestFullscreenToggle()

	r.Run()
	require.Len(t, f.created, 1)
	// the toggle runs before the first frame, so every frame lands on the new window
	assert.Equal(t, 0, f.ctx.Frames)
	assert.Equal(t, 3, f.created[0].Frames)
	assert.Len(t, f.device.Draws, 3)
}

func TestRunDrawsUntilClosed(t *testing.T) {
	f := newFixture(t)
	f.ctx.MaxFrames = 4
	r := f.start(t)

	r.Run()
	assert.Equal(t, 4, f.ctx.Frames)
	assert.Len(t, f.device.Draws, 4)
	// each frame advances the clock by Step
	assert.True(t, r.Model().ModelMatrix().ApproxEqualThreshold(mgl32.HomogRotate3DY(4*0.5), 1e-4))
}

func TestShutdownReleasesEverything(t *testing.T) {
	f := newFixture(t)
	r, err := NewRenderer(f.ctx, f.device, f.factory, f.opts, options.DefaultScene())
	require.NoError(t, err)

	r.Shutdown()
	r.Shutdown()
	assert.Equal(t, 1, f.ctx.ShutDown)
	assert.Equal(t, 0, f.device.Live(graphicstest.KindProgram))
	assert.Equal(t, 0, f.device.Live(graphicstest.KindBuffer))
	assert.Equal(t, 0, f.device.Live(graphicstest.KindVertexArray))
	assert.Equal(t, 0, f.device.BadDeletes)
}

func TestRecordFrames(t *testing.T) {
	f := newFixture(t)
	r := f.start(t)
	target, err := f.device.NewFrameTarget(4, 2)
	require.NoError(t, err)
	defer target.Destroy()

	var frames []*encoder.Frame
	require.NoError(t, r.RecordFrames(target, 3, 30, func(fr *encoder.Frame) {
		frames = append(frames, fr)
	}))

	require.Len(t, frames, 3)
	for i, fr := range frames {
		assert.Equal(t, int64(i), fr.PTS)
		assert.Equal(t, bytes.Repeat([]byte{byte(i + 1)}, 4*2*4), fr.Pixels)
	}
	assert.Len(t, f.device.Draws, 3)
	assert.Equal(t, [2]int32{4, 2}, f.device.ViewportWH)
	assert.True(t, r.Model().ModelMatrix().ApproxEqualThreshold(mgl32.HomogRotate3DY(2.0/30), 1e-5))
}

func TestRunRecordRejectsBadFormat(t *testing.T) {
	f := newFixture(t, "-fps", "0")
	r := f.start(t)
	assert.Error(t, r.RunRecord())

	*f.opts.FPS = 30
	*f.opts.Width = 0
	assert.Error(t, r.RunRecord())
	assert.Equal(t, 0, f.device.Live(graphicstest.KindFrameTarget))
}
