package options

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// Scene holds the camera, light and animation constants used each frame.
type Scene struct {
	ViewPos          mgl32.Vec3 `yaml:"viewPos"`
	Target           mgl32.Vec3 `yaml:"target"`
	Up               mgl32.Vec3 `yaml:"up"`
	LightPos         mgl32.Vec3 `yaml:"lightPos"`
	LightColor       mgl32.Vec3 `yaml:"lightColor"`
	ObjectColor      mgl32.Vec3 `yaml:"objectColor"`
	ClearColor       mgl32.Vec4 `yaml:"clearColor"`
	AmbientStrength  float32    `yaml:"ambientStrength"`
	SpecularStrength float32    `yaml:"specularStrength"`
	Shininess        int32      `yaml:"shininess"`
	FOVDegrees       float32    `yaml:"fovDegrees"`
	Near             float32    `yaml:"near"`
	Far              float32    `yaml:"far"`
	RotationSpeed    float32    `yaml:"rotationSpeed"` // radians per second about Y
	TiltDegrees      float32    `yaml:"tiltDegrees"`   // fixed rotation about X applied before the model transform
}

// DefaultScene returns the stock teapot setup.
func DefaultScene() *Scene {
	return &Scene{
		ViewPos:          mgl32.Vec3{0, 0, 10},
		Target:           mgl32.Vec3{0, 0, 0},
		Up:               mgl32.Vec3{0, 1, 0},
		LightPos:         mgl32.Vec3{1, 1, 2},
		LightColor:       mgl32.Vec3{1, 1, 1},
		ObjectColor:      mgl32.Vec3{0.5, 0.5, 0.5},
		ClearColor:       mgl32.Vec4{0.1, 0.1, 0.1, 1},
		AmbientStrength:  0.1,
		SpecularStrength: 0.5,
		Shininess:        32,
		FOVDegrees:       45,
		Near:             0.1,
		Far:              100,
		RotationSpeed:    1,
		TiltDegrees:      -30,
	}
}

// LoadScene reads a YAML scene file over the defaults. An empty path
// returns the defaults.
func LoadScene(path string) (*Scene, error) {
	s := DefaultScene()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse scene file %s: %w", path, err)
	}
	if s.Near <= 0 || s.Far <= s.Near {
		return nil, fmt.Errorf("scene %s: invalid clip planes near=%v far=%v", path, s.Near, s.Far)
	}
	return s, nil
}
