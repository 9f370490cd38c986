package renderer

import (
	"fmt"
	"log"

	"github.com/richinsley/goobjviewer/encoder"
	"github.com/richinsley/goobjviewer/graphics"
)

// RunRecord renders duration*fps frames offscreen at a fixed time step and
// encodes them with ffmpeg into the output file.
func (r *Renderer) RunRecord() error {
	width, height, fps := *r.options.Width, *r.options.Height, *r.options.FPS
	if fps <= 0 {
		return fmt.Errorf("invalid fps %d", fps)
	}
	totalFrames := int(*r.options.Duration * float64(fps))

	target, err := r.device.NewFrameTarget(width, height)
	if err != nil {
		return fmt.Errorf("failed to create offscreen target: %w", err)
	}
	defer target.Destroy()

	enc, err := encoder.NewFFmpegEncoder(r.options)
	if err != nil {
		return err
	}
	go enc.Run()

	log.Printf("Recording %d frames", totalFrames)
	recErr := r.RecordFrames(target, totalFrames, fps, enc.SendVideo)
	encErr := enc.Close()
	if recErr != nil {
		return recErr
	}
	return encErr
}

// RecordFrames renders frames into target and hands their raw RGBA pixels
// to send in order. The animation advances 1/fps seconds between frames.
func (r *Renderer) RecordFrames(target graphics.FrameTarget, frames, fps int, send func(*encoder.Frame)) error {
	if fps <= 0 {
		return fmt.Errorf("invalid fps %d", fps)
	}
	width, height := target.Size()
	timeStep := 1.0 / float64(fps)
	for i := 0; i < frames; i++ {
		if i > 0 {
			r.Update(timeStep)
		}
		target.Bind()
		r.Render(width, height)
		pixels := make([]byte, width*height*4)
		err := target.ReadPixels(pixels)
		target.Unbind()
		if err != nil {
			return fmt.Errorf("failed to read pixels on frame %d: %w", i, err)
		}
		send(&encoder.Frame{Pixels: pixels, PTS: int64(i)})

		if (i+1)%fps == 0 {
			log.Printf("Rendered %d/%d frames", i+1, frames)
		}
	}
	return nil
}
