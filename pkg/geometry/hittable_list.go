package geometry

import (
	"github.com/Ryan-Ardito/raytracer/pkg/core"
	"github.com/Ryan-Ardito/raytracer/pkg/material"
)

// HittableList is an ordered collection of hittables that reports the closest hit
type HittableList struct {
	Objects []Hittable
}

// NewHittableList creates a list holding the given objects
func NewHittableList(objects ...Hittable) *HittableList {
	list := &HittableList{}
	list.Add(objects...)
	return list
}

// Add appends objects to the end of the list
func (l *HittableList) Add(objects ...Hittable) {
	l.Objects = append(l.Objects, objects...)
}

// Len returns the number of objects in the list
func (l *HittableList) Len() int {
	return len(l.Objects)
}

// Hit returns the closest intersection across every object in the list
func (l *HittableList) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	var closestHit *material.HitRecord
	hitAnything := false
	closestSoFar := tMax

	for _, object := range l.Objects {
		if hit, isHit := object.Hit(ray, tMin, closestSoFar); isHit {
			hitAnything = true
			closestSoFar = hit.T
			closestHit = hit
		}
	}

	return closestHit, hitAnything
}
