package integrator

import (
	"github.com/Ryan-Ardito/raytracer/pkg/core"
	"github.com/Ryan-Ardito/raytracer/pkg/geometry"
)

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor computes the color carried back along ray, spending at most
	// depth bounces
	RayColor(ray core.Ray, world geometry.Hittable, depth int, sampler core.Sampler) core.Color
}
