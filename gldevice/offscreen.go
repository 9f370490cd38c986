package gldevice

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
)

// offscreen is an FBO with an RGBA8 color texture and a depth renderbuffer.
type offscreen struct {
	fbo               uint32
	textureID         uint32
	depthRenderbuffer uint32
	width             int
	height            int
}

func newOffscreen(width, height int) (*offscreen, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid offscreen size %dx%d", width, height)
	}
	o := &offscreen{width: width, height: height}

	gl.GenFramebuffers(1, &o.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, o.fbo)

	gl.GenTextures(1, &o.textureID)
	gl.BindTexture(gl.TEXTURE_2D, o.textureID)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, o.textureID, 0)

	gl.GenRenderbuffers(1, &o.depthRenderbuffer)
	gl.BindRenderbuffer(gl.RENDERBUFFER, o.depthRenderbuffer)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, int32(width), int32(height))
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, o.depthRenderbuffer)

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		o.Destroy()
		return nil, fmt.Errorf("offscreen fbo is not complete: 0x%x", status)
	}
	return o, nil
}

func (o *offscreen) Bind() { gl.BindFramebuffer(gl.FRAMEBUFFER, o.fbo) }

func (o *offscreen) Unbind() { gl.BindFramebuffer(gl.FRAMEBUFFER, 0) }

func (o *offscreen) Size() (int, int) { return o.width, o.height }

func (o *offscreen) ReadPixels(dst []byte) error {
	if len(dst) < o.width*o.height*4 {
		return fmt.Errorf("pixel buffer too small: %d bytes for %dx%d", len(dst), o.width, o.height)
	}
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, o.fbo)
	gl.ReadBuffer(gl.COLOR_ATTACHMENT0)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(o.width), int32(o.height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(dst))
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	return nil
}

func (o *offscreen) Destroy() {
	if o.fbo != 0 {
		gl.DeleteFramebuffers(1, &o.fbo)
		o.fbo = 0
	}
	if o.textureID != 0 {
		gl.DeleteTextures(1, &o.textureID)
		o.textureID = 0
	}
	if o.depthRenderbuffer != 0 {
		gl.DeleteRenderbuffers(1, &o.depthRenderbuffer)
		o.depthRenderbuffer = 0
	}
}
