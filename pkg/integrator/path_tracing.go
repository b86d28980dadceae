package integrator

import (
	"math"

	"github.com/Ryan-Ardito/raytracer/pkg/core"
	"github.com/Ryan-Ardito/raytracer/pkg/geometry"
)

// ShadowAcneEpsilon is the minimum hit distance, keeping scattered rays from
// re-hitting the surface they start on
const ShadowAcneEpsilon = 0.001

// PathTracingIntegrator implements recursive path tracing over a sky gradient
type PathTracingIntegrator struct {
	TopColor    core.Color // Background where the ray points straight up
	BottomColor core.Color // Background where the ray points straight down
}

// NewPathTracingIntegrator creates an integrator with the white-to-sky-blue background
func NewPathTracingIntegrator() *PathTracingIntegrator {
	return &PathTracingIntegrator{
		TopColor:    core.NewVec3(0.5, 0.7, 1.0),
		BottomColor: core.NewVec3(1.0, 1.0, 1.0),
	}
}

// RayColor computes the color for a single ray
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, world geometry.Hittable, depth int, sampler core.Sampler) core.Color {
	// If we've exceeded the ray bounce limit, no more light is gathered
	if depth <= 0 {
		return core.Color{}
	}

	hit, isHit := world.Hit(ray, ShadowAcneEpsilon, math.Inf(1))
	if !isHit {
		return pt.backgroundGradient(ray)
	}

	scatter, didScatter := hit.Material.Scatter(ray, *hit, sampler)
	if !didScatter {
		// Material absorbed the ray
		return core.Color{}
	}

	return scatter.Attenuation.MultiplyVec(
		pt.RayColor(scatter.Scattered, world, depth-1, sampler))
}

// backgroundGradient returns a gradient color based on ray direction
func (pt *PathTracingIntegrator) backgroundGradient(r core.Ray) core.Color {
	unitDirection := r.Direction.Normalize()

	// Map y from [-1,1] to [0,1]
	t := 0.5 * (unitDirection.Y + 1.0)

	return core.Lerp(pt.BottomColor, pt.TopColor, t)
}
