package geometry

import (
	"github.com/Ryan-Ardito/raytracer/pkg/core"
	"github.com/Ryan-Ardito/raytracer/pkg/material"
)

// Hittable interface for objects that can be hit by rays
type Hittable interface {
	// Hit returns the intersection with t in [tMin, tMax], or false on a miss
	Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool)
}
