package options

import "flag"

type ViewerOptions struct {
	ModelPath          *string
	VertexShaderPath   *string // Empty uses the built-in Phong shader
	FragmentShaderPath *string
	ScenePath          *string // Optional YAML scene file
	Help               *bool
	Width              *int
	Height             *int
	Fullscreen         *bool
	Watch              *bool // Reload model and shaders when their files change
	FlatNormals        *bool // Generate face normals where the model has none
	GLES               *bool // Sources are GLSL ES 3.00 and get translated
	// Recording options
	Record     *bool
	Headless   *bool // Record through EGL without a window system (Linux only)
	Duration   *float64
	FPS        *int
	OutputFile *string
	FFMPEGPath *string
	Codec      *string
}

// Register binds every viewer flag on fs.
func Register(fs *flag.FlagSet) *ViewerOptions {
	return &ViewerOptions{
		ModelPath:          fs.String("model", "assets/models/teapot.obj", "Path to the OBJ model"),
		VertexShaderPath:   fs.String("vs", "", "Vertex shader path (built-in shader if empty)"),
		FragmentShaderPath: fs.String("fs", "", "Fragment shader path (built-in shader if empty)"),
		ScenePath:          fs.String("scene", "", "YAML scene file with camera and light settings"),
		Help:               fs.Bool("help", false, "Show help message"),
		Width:              fs.Int("width", 800, "Window width"),
		Height:             fs.Int("height", 600, "Window height"),
		Fullscreen:         fs.Bool("fullscreen", false, "Start fullscreen"),
		Watch:              fs.Bool("watch", false, "Reload model and shaders when their files change"),
		FlatNormals:        fs.Bool("flatnormals", false, "Compute face normals for corners without one"),
		GLES:               fs.Bool("gles", false, "Shader files are GLSL ES 3.00; translate them for desktop GL"),
		Record:             fs.Bool("record", false, "Render offscreen and encode to -output"),
		Headless:           fs.Bool("headless", false, "With -record, render through EGL without a display (Linux only)"),
		Duration:           fs.Float64("duration", 10.0, "Duration to record in seconds"),
		FPS:                fs.Int("fps", 60, "Frames per second for recording"),
		OutputFile:         fs.String("output", "output.mp4", "Output file name for recording"),
		FFMPEGPath:         fs.String("ffmpeg", "", "Path to ffmpeg executable"),
		Codec:              fs.String("codec", "h264", "Video codec for recording (h264 or hevc)"),
	}
}

// CustomShaders reports whether both shader paths were given.
func (o *ViewerOptions) CustomShaders() bool {
	return *o.VertexShaderPath != "" && *o.FragmentShaderPath != ""
}
