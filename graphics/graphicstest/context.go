package graphicstest

import "github.com/richinsley/goobjviewer/graphics"

// FakeContext implements graphics.Context. The clock advances by Step on
// every Time call and ShouldClose turns true after MaxFrames EndFrame calls.
type FakeContext struct {
	Width, Height int
	Step          float64
	MaxFrames     int
	IsFullscreen  bool
	GLES          bool

	Frames    int
	Current   bool
	ShutDown  int
	now       float64
	wantClose bool
}

var _ graphics.Context = (*FakeContext)(nil)

func (c *FakeContext) MakeCurrent() { c.Current = true }

func (c *FakeContext) Shutdown() {
	c.ShutDown++
	c.Current = false
}

func (c *FakeContext) ShouldClose() bool {
	return c.wantClose || (c.MaxFrames > 0 && c.Frames >= c.MaxFrames)
}

func (c *FakeContext) SetShouldClose(v bool) { c.wantClose = v }

func (c *FakeContext) EndFrame() { c.Frames++ }

func (c *FakeContext) GetFramebufferSize() (int, int) { return c.Width, c.Height }

func (c *FakeContext) Time() float64 {
	t := c.now
	c.now += c.Step
	return t
}

func (c *FakeContext) Fullscreen() bool { return c.IsFullscreen }

func (c *FakeContext) IsGLES() bool { return c.GLES }
