package encoder

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/richinsley/goobjviewer/options"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Frame represents a single rendered video frame's data, ready for encoding.
type Frame struct {
	Pixels []byte
	PTS    int64
}

// FFmpegEncoder streams raw RGBA frames into an ffmpeg process.
type FFmpegEncoder struct {
	out       io.WriteCloser
	frameSize int
	// wait blocks until the consumer of out has finished
	wait func() error

	videoFrames chan *Frame
	done        chan error
}

// getArgs builds the ffmpeg arguments for raw RGBA frames arriving on stdin.
func getArgs(width, height, fps int, codec, outputFile string) (inputArgs ffmpeg.KwArgs, outputArgs ffmpeg.KwArgs) {
	inputArgs = ffmpeg.KwArgs{
		"f":       "rawvideo",
		"pix_fmt": "rgba",
		"s":       fmt.Sprintf("%dx%d", width, height),
		"r":       fps,
	}

	outputArgs = ffmpeg.KwArgs{
		// glReadPixels rows start at the bottom
		"vf":      "vflip",
		"pix_fmt": "yuv420p",
	}
	switch codec {
	case "hevc", "h265":
		outputArgs["c:v"] = "libx265"
		if strings.HasSuffix(outputFile, ".mp4") {
			outputArgs["tag:v"] = "hvc1"
		}
	default:
		outputArgs["c:v"] = "libx264"
	}
	return
}

// NewFFmpegEncoder starts ffmpeg writing to opts.OutputFile. Frames sent
// with SendVideo must be Width*Height*4 bytes.
func NewFFmpegEncoder(opts *options.ViewerOptions) (*FFmpegEncoder, error) {
	width, height, fps := *opts.Width, *opts.Height, *opts.FPS
	if width <= 0 || height <= 0 || fps <= 0 {
		return nil, fmt.Errorf("invalid recording format %dx%d at %d fps", width, height, fps)
	}

	pipeReader, pipeWriter := io.Pipe()
	inputArgs, outputArgs := getArgs(width, height, fps, *opts.Codec, *opts.OutputFile)
	cmd := ffmpeg.Input("pipe:", inputArgs).
		Output(*opts.OutputFile, outputArgs).
		OverWriteOutput().WithInput(pipeReader).ErrorToStdOut()
	if *opts.FFMPEGPath != "" {
		cmd = cmd.SetFfmpegPath(*opts.FFMPEGPath)
	}

	exited := make(chan error, 1)
	go func() {
		err := cmd.Run()
		// unblock the writer if ffmpeg exits early
		if err != nil {
			pipeReader.CloseWithError(err)
		} else {
			pipeReader.Close()
		}
		exited <- err
	}()

	log.Printf("Encoding %dx%d at %d fps to %s", width, height, fps, *opts.OutputFile)
	return newEncoder(pipeWriter, width*height*4, func() error { return <-exited }), nil
}

func newEncoder(out io.WriteCloser, frameSize int, wait func() error) *FFmpegEncoder {
	return &FFmpegEncoder{
		out:         out,
		frameSize:   frameSize,
		wait:        wait,
		videoFrames: make(chan *Frame, 5),
		done:        make(chan error, 1),
	}
}

// Run consumes frames until Close. After the first write error the remaining
// frames are drained and dropped so senders never block.
func (e *FFmpegEncoder) Run() {
	var err error
	for frame := range e.videoFrames {
		if err != nil {
			continue
		}
		if len(frame.Pixels) != e.frameSize {
			err = fmt.Errorf("frame %d is %d bytes, want %d", frame.PTS, len(frame.Pixels), e.frameSize)
			continue
		}
		if _, werr := e.out.Write(frame.Pixels); werr != nil {
			err = fmt.Errorf("failed to write frame %d: %w", frame.PTS, werr)
		}
	}

	e.out.Close()
	if werr := e.wait(); werr != nil && err == nil {
		err = fmt.Errorf("ffmpeg failed: %w", werr)
	}
	e.done <- err
}

func (e *FFmpegEncoder) SendVideo(frame *Frame) {
	e.videoFrames <- frame
}

// Close flushes the queued frames, waits for ffmpeg to exit and returns the
// first error seen.
func (e *FFmpegEncoder) Close() error {
	close(e.videoFrames)
	return <-e.done
}
