package glfwcontext

import (
	"fmt"
	"log"
	"runtime"

	glfw "github.com/go-gl/glfw/v3.3/glfw"
	"github.com/richinsley/goobjviewer/options"
)

const windowTitle = "goobjviewer"

// Context is a GLFW window with its OpenGL 4.1 core context.
type Context struct {
	window     *glfw.Window
	fullscreen bool
	// A map to store functions to be called on key presses.
	keyCallbacks map[glfw.Key]func()
}

// New creates a window sized from options. A fullscreen window takes the
// primary monitor's current video mode; an invisible one is used for
// offscreen recording.
func New(opts *options.ViewerOptions, visible, fullscreen bool) (*Context, error) {
	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	if visible {
		glfw.WindowHint(glfw.Resizable, glfw.True)
	} else {
		glfw.WindowHint(glfw.Visible, glfw.False)
	}

	width, height := *opts.Width, *opts.Height
	var monitor *glfw.Monitor
	if fullscreen && visible {
		monitor = glfw.GetPrimaryMonitor()
		if monitor == nil {
			return nil, fmt.Errorf("no primary monitor for fullscreen")
		}
		mode := monitor.GetVideoMode()
		glfw.WindowHint(glfw.RedBits, mode.RedBits)
		glfw.WindowHint(glfw.GreenBits, mode.GreenBits)
		glfw.WindowHint(glfw.BlueBits, mode.BlueBits)
		glfw.WindowHint(glfw.RefreshRate, mode.RefreshRate)
		width, height = mode.Width, mode.Height
	}

	win, err := glfw.CreateWindow(width, height, windowTitle, monitor, nil)
	if err != nil {
		return nil, err
	}

	c := &Context{
		window:       win,
		fullscreen:   monitor != nil,
		keyCallbacks: make(map[glfw.Key]func()),
	}
	win.SetKeyCallback(c.glfwKeyCallback)

	win.MakeContextCurrent()
	glfw.SwapInterval(1)
	return c, nil
}

// RegisterKeyCallback allows the main application to register a function to be
// called when a specific key is pressed.
func (c *Context) RegisterKeyCallback(key glfw.Key, f func()) {
	c.keyCallbacks[key] = f
}

func (c *Context) glfwKeyCallback(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}
	if key == glfw.KeyEscape {
		w.SetShouldClose(true)
	}
	if callback, ok := c.keyCallbacks[key]; ok {
		callback()
	}
}

// MakeCurrent makes the context current for the calling goroutine.
func (c *Context) MakeCurrent() {
	c.window.MakeContextCurrent()
}

// Shutdown destroys the window and its context.
func (c *Context) Shutdown() {
	if c.window == nil {
		return
	}
	c.window.Destroy()
	c.window = nil
}

func (c *Context) ShouldClose() bool {
	return c.window.ShouldClose()
}

func (c *Context) SetShouldClose(v bool) {
	c.window.SetShouldClose(v)
}

func (c *Context) EndFrame() {
	c.window.SwapBuffers()
	glfw.PollEvents()
}

func (c *Context) GetFramebufferSize() (int, int) {
	return c.window.GetFramebufferSize()
}

func (c *Context) Time() float64 {
	return glfw.GetTime()
}

func (c *Context) Fullscreen() bool { return c.fullscreen }

func (c *Context) IsGLES() bool {
	// GLFW does not provide a direct way to check if the context is GLES.
	return false
}

// InitGraphics initializes the main graphics subsystem (GLFW). Must be called from the main thread.
func InitGraphics() error {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return err
	}
	log.Printf("GLFW Initialized")
	return nil
}

// TerminateGraphics shuts down the graphics subsystem. Must be called from the main thread.
func TerminateGraphics() {
	glfw.Terminate()
	log.Printf("GLFW Terminated")
}
