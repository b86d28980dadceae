package geometry

import (
	"github.com/Ryan-Ardito/raytracer/pkg/core"
)

// CameraConfig describes the pinhole viewport
type CameraConfig struct {
	Origin         core.Point3 // Eye position
	AspectRatio    float64     // Viewport width / height
	ViewportHeight float64     // Viewport height in world units
	FocalLength    float64     // Distance from the eye to the viewport along -Z
}

// DefaultCameraConfig returns the 16:9 camera at the origin looking down -Z
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		Origin:         core.NewVec3(0, 0, 0),
		AspectRatio:    16.0 / 9.0,
		ViewportHeight: 2.0,
		FocalLength:    1.0,
	}
}

// MergeCameraConfig fills zero fields of override from base
func MergeCameraConfig(base, override CameraConfig) CameraConfig {
	result := base
	if override.Origin != (core.Vec3{}) {
		result.Origin = override.Origin
	}
	if override.AspectRatio > 0 {
		result.AspectRatio = override.AspectRatio
	}
	if override.ViewportHeight > 0 {
		result.ViewportHeight = override.ViewportHeight
	}
	if override.FocalLength > 0 {
		result.FocalLength = override.FocalLength
	}
	return result
}

// Camera generates rays for rendering
type Camera struct {
	origin          core.Vec3
	lowerLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
}

// NewCamera creates a simple axis-aligned camera
func NewCamera(config CameraConfig) *Camera {
	viewportWidth := config.AspectRatio * config.ViewportHeight

	origin := config.Origin
	horizontal := core.NewVec3(viewportWidth, 0, 0)
	vertical := core.NewVec3(0, config.ViewportHeight, 0)
	lowerLeftCorner := origin.Subtract(horizontal.Multiply(0.5)).
		Subtract(vertical.Multiply(0.5)).
		Subtract(core.NewVec3(0, 0, config.FocalLength))

	return &Camera{
		origin:          origin,
		horizontal:      horizontal,
		vertical:        vertical,
		lowerLeftCorner: lowerLeftCorner,
	}
}

// GetRay generates a ray for screen coordinates (s, t) where 0 <= s,t <= 1
func (c *Camera) GetRay(s, t float64) core.Ray {
	direction := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t)).
		Subtract(c.origin)

	return core.NewRay(c.origin, direction)
}
