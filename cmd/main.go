package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"

	glfw "github.com/go-gl/glfw/v3.3/glfw"
	"github.com/richinsley/goobjviewer/gldevice"
	"github.com/richinsley/goobjviewer/glfwcontext"
	"github.com/richinsley/goobjviewer/graphics"
	"github.com/richinsley/goobjviewer/headless"
	"github.com/richinsley/goobjviewer/options"
	"github.com/richinsley/goobjviewer/renderer"
)

// runHeadless records through an EGL pbuffer context; no window system is touched.
func runHeadless(opts *options.ViewerOptions, scene *options.Scene) error {
	ctx, err := headless.NewHeadless(*opts.Width, *opts.Height)
	if err != nil {
		return fmt.Errorf("failed to create headless context: %w", err)
	}
	device, err := gldevice.New()
	if err != nil {
		ctx.Shutdown()
		return err
	}
	r, err := renderer.NewRenderer(ctx, device, nil, opts, scene)
	if err != nil {
		ctx.Shutdown()
		return err
	}
	defer r.Shutdown()

	log.Println("Starting headless render loop...")
	if err := r.RunRecord(); err != nil {
		return fmt.Errorf("offscreen rendering failed: %w", err)
	}
	log.Printf("Successfully rendered to %s", *opts.OutputFile)
	return nil
}

func runViewer(opts *options.ViewerOptions, scene *options.Scene) error {
	if err := glfwcontext.InitGraphics(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %w", err)
	}
	defer glfwcontext.TerminateGraphics()

	var r *renderer.Renderer
	visible := !*opts.Record
	newContext := func(fullscreen bool) (graphics.Context, error) {
		ctx, err := glfwcontext.New(opts, visible, fullscreen)
		if err != nil {
			return nil, err
		}
		// key callbacks only queue work; the render loop picks it up
		ctx.RegisterKeyCallback(glfw.KeyF11, func() { r.RequestFullscreenToggle() })
		ctx.RegisterKeyCallback(glfw.KeyR, func() { r.RequestReload() })
		return ctx, nil
	}

	ctx, err := newContext(*opts.Fullscreen && visible)
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	device, err := gldevice.New()
	if err != nil {
		ctx.Shutdown()
		return err
	}

	r, err = renderer.NewRenderer(ctx, device, newContext, opts, scene)
	if err != nil {
		ctx.Shutdown()
		return err
	}
	defer r.Shutdown()

	if *opts.Record {
		log.Println("Starting offscreen render loop...")
		if err := r.RunRecord(); err != nil {
			return fmt.Errorf("offscreen rendering failed: %w", err)
		}
		log.Printf("Successfully rendered to %s", *opts.OutputFile)
		return nil
	}

	if *opts.Watch {
		if err := r.Watch(); err != nil {
			log.Printf("Warning: file watching disabled: %v", err)
		}
	}
	log.Println("Starting interactive render loop...")
	r.Run()
	return nil
}

func init() {
	runtime.LockOSThread()
}

func main() {
	opts := options.Register(flag.CommandLine)
	flag.Parse()

	if *opts.Help {
		fmt.Println("OBJ Model Viewer/Recorder")
		fmt.Println("Keys: Esc quits, F11 toggles fullscreen, R reloads the model and shaders")
		flag.PrintDefaults()
		return
	}

	if (*opts.VertexShaderPath == "") != (*opts.FragmentShaderPath == "") {
		log.Println("Warning: both -vs and -fs are needed for custom shaders; using the built-in shader")
	}

	scene, err := options.LoadScene(*opts.ScenePath)
	if err != nil {
		log.Fatalf("Error loading scene: %v", err)
	}

	run := runViewer
	if *opts.Headless {
		if !*opts.Record {
			log.Fatalf("-headless requires -record")
		}
		run = runHeadless
	}
	if err := run(opts, scene); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}
