package graphics

// Context defines the interface for an OpenGL context.
type Context interface {
	MakeCurrent()
	Shutdown()
	ShouldClose() bool
	SetShouldClose(bool)
	EndFrame()
	GetFramebufferSize() (int, int)
	Time() float64
	// Fullscreen reports whether the context owns a fullscreen window.
	Fullscreen() bool
	// IsGLES reports whether the context runs OpenGL ES rather than desktop GL.
	IsGLES() bool
}
