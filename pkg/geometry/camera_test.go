package geometry

import (
	"math"
	"testing"

	"github.com/Ryan-Ardito/raytracer/pkg/core"
)

func TestCamera_GetRay(t *testing.T) {
	camera := NewCamera(DefaultCameraConfig())
	viewportWidth := 16.0 / 9.0 * 2.0

	tests := []struct {
		name      string
		s, t      float64
		direction core.Vec3
	}{
		{"center", 0.5, 0.5, core.NewVec3(0, 0, -1)},
		{"lower left", 0, 0, core.NewVec3(-viewportWidth/2, -1, -1)},
		{"upper right", 1, 1, core.NewVec3(viewportWidth/2, 1, -1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := camera.GetRay(tt.s, tt.t)
			if ray.Origin != (core.Vec3{}) {
				t.Errorf("Expected origin at zero, got %v", ray.Origin)
			}
			if ray.Direction.Subtract(tt.direction).Length() > 1e-9 {
				t.Errorf("Expected direction %v, got %v", tt.direction, ray.Direction)
			}
		})
	}
}

func TestMergeCameraConfig(t *testing.T) {
	base := DefaultCameraConfig()
	merged := MergeCameraConfig(base, CameraConfig{AspectRatio: 1.0})

	if merged.AspectRatio != 1.0 {
		t.Errorf("Expected overridden aspect ratio 1.0, got %f", merged.AspectRatio)
	}
	if merged.ViewportHeight != base.ViewportHeight || merged.FocalLength != base.FocalLength {
		t.Errorf("Unset fields should keep base values, got %+v", merged)
	}
	if math.Abs(merged.AspectRatio*merged.ViewportHeight-2.0) > 1e-12 {
		t.Errorf("Unexpected viewport width for square camera")
	}
}
