package scene

import (
	"errors"
	"fmt"

	"github.com/Ryan-Ardito/raytracer/pkg/core"
	"github.com/Ryan-Ardito/raytracer/pkg/geometry"
)

// ErrInvalidScene is returned when a scene cannot be rendered as configured
var ErrInvalidScene = errors.New("invalid scene")

// Scene contains all the elements needed for rendering
type Scene struct {
	Name           string
	World          *geometry.HittableList // Objects in the scene
	CameraConfig   geometry.CameraConfig
	SamplingConfig SamplingConfig
	TopColor       core.Color // Sky color straight up
	BottomColor    core.Color // Sky color straight down
}

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	Width           int // Image width
	Height          int // Image height
	SamplesPerPixel int // Number of rays per pixel
	MaxDepth        int // Maximum ray bounce depth
}

// DefaultSamplingConfig returns 800 pixels wide at 16:9, 100 samples per pixel, depth 50
func DefaultSamplingConfig() SamplingConfig {
	aspectRatio := geometry.DefaultCameraConfig().AspectRatio
	return SamplingConfig{
		Width:           800,
		Height:          heightForWidth(800, aspectRatio),
		SamplesPerPixel: 100,
		MaxDepth:        50,
	}
}

// NewScene creates an empty scene with the default camera, sampling and sky
func NewScene(name string) *Scene {
	return &Scene{
		Name:           name,
		World:          geometry.NewHittableList(),
		CameraConfig:   geometry.DefaultCameraConfig(),
		SamplingConfig: DefaultSamplingConfig(),
		TopColor:       core.NewVec3(0.5, 0.7, 1.0),
		BottomColor:    core.NewVec3(1.0, 1.0, 1.0),
	}
}

// GetCamera builds the camera described by CameraConfig
func (s *Scene) GetCamera() *geometry.Camera {
	return geometry.NewCamera(s.CameraConfig)
}

// SetImageWidth sets the width and derives the height from the camera aspect ratio
func (s *Scene) SetImageWidth(width int) {
	s.SamplingConfig.Width = width
	s.SamplingConfig.Height = heightForWidth(width, s.CameraConfig.AspectRatio)
}

// Validate reports configuration problems that would prevent rendering
func (s *Scene) Validate() error {
	if s.World == nil {
		return fmt.Errorf("%w: no world", ErrInvalidScene)
	}
	if s.CameraConfig.AspectRatio <= 0 || s.CameraConfig.ViewportHeight <= 0 || s.CameraConfig.FocalLength <= 0 {
		return fmt.Errorf("%w: camera needs positive aspect ratio, viewport height and focal length", ErrInvalidScene)
	}
	cfg := s.SamplingConfig
	if cfg.Width < 2 || cfg.Height < 2 {
		return fmt.Errorf("%w: image must be at least 2x2, got %dx%d", ErrInvalidScene, cfg.Width, cfg.Height)
	}
	if cfg.SamplesPerPixel <= 0 {
		return fmt.Errorf("%w: samples per pixel must be positive, got %d", ErrInvalidScene, cfg.SamplesPerPixel)
	}
	if cfg.MaxDepth <= 0 {
		return fmt.Errorf("%w: max depth must be positive, got %d", ErrInvalidScene, cfg.MaxDepth)
	}
	return nil
}

// heightForWidth truncates width/aspect
func heightForWidth(width int, aspectRatio float64) int {
	return int(float64(width) / aspectRatio)
}
