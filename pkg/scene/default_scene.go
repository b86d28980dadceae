package scene

import (
	"github.com/Ryan-Ardito/raytracer/pkg/core"
	"github.com/Ryan-Ardito/raytracer/pkg/geometry"
	"github.com/Ryan-Ardito/raytracer/pkg/material"
)

// NewDefaultScene creates the ground plus three spheres demo: a diffuse
// center flanked by two mirrors
func NewDefaultScene() *Scene {
	s := NewScene("default")

	materialGround := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0))
	materialCenter := material.NewLambertian(core.NewVec3(0.7, 0.3, 0.3))
	materialLeft := material.NewMetal(core.NewVec3(0.8, 0.8, 0.8), 0.0)
	materialRight := material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.0)

	s.World.Add(
		geometry.NewSphere(core.NewVec3(0.0, -100.5, -1.0), 100.0, materialGround),
		geometry.NewSphere(core.NewVec3(0.0, 0.0, -1.0), 0.5, materialCenter),
		geometry.NewSphere(core.NewVec3(-1.0, 0.0, -1.0), 0.5, materialLeft),
		geometry.NewSphere(core.NewVec3(1.0, 0.0, -1.0), 0.5, materialRight),
	)

	return s
}

// NewFuzzyMetalScene is the default layout with brushed metals; both small
// metal spheres share one material instance
func NewFuzzyMetalScene() *Scene {
	s := NewScene("fuzzy-metal")

	lambertianGround := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0).Multiply(0.6))
	lambertianBlue := material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))
	metalGold := material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.3)
	metalSilver := material.NewMetal(core.NewVec3(0.8, 0.8, 0.8), 1.0)

	s.World.Add(
		geometry.NewSphere(core.NewVec3(0.0, -100.5, -1.0), 100.0, lambertianGround),
		geometry.NewSphere(core.NewVec3(0.0, 0.0, -1.0), 0.5, lambertianBlue),
		geometry.NewSphere(core.NewVec3(-1.0, 0.0, -1.0), 0.5, metalSilver),
		geometry.NewSphere(core.NewVec3(1.0, 0.0, -1.0), 0.5, metalGold),
		geometry.NewSphere(core.NewVec3(0.5, -0.35, -0.6), 0.15, metalGold),
		geometry.NewSphere(core.NewVec3(-0.5, -0.35, -0.6), 0.15, metalGold),
	)

	return s
}

// NewSingleSphereScene creates one grey diffuse sphere in front of the camera
func NewSingleSphereScene() *Scene {
	s := NewScene("single")
	grey := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	s.World.Add(geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, grey))
	return s
}
