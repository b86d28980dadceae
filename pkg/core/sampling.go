package core

import (
	"math/rand"
)

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing
type Sampler interface {
	Get1D() float64
	Get3D() Vec3
}

// RandomSampler wraps a standard Go random generator.
// It is not safe for concurrent use; give each goroutine its own.
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewSeededSampler creates a sampler with its own generator seeded by seed
func NewSeededSampler(seed int64) *RandomSampler {
	return NewRandomSampler(rand.New(rand.NewSource(seed)))
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get3D returns three random float64 values in [0, 1), drawn in X, Y, Z order
func (r *RandomSampler) Get3D() Vec3 {
	x := r.random.Float64()
	y := r.random.Float64()
	z := r.random.Float64()
	return NewVec3(x, y, z)
}

// RandomFloat returns a uniform value in [0, 1)
func RandomFloat(sampler Sampler) float64 {
	return sampler.Get1D()
}

// RandomRange returns a uniform value in [min, max)
func RandomRange(sampler Sampler, min, max float64) float64 {
	return min + (max-min)*sampler.Get1D()
}

// RandomVec3 returns a vector with each component uniform in [0, 1)
func RandomVec3(sampler Sampler) Vec3 {
	return sampler.Get3D()
}

// RandomVec3Range returns a vector with each component uniform in [min, max)
func RandomVec3Range(sampler Sampler, min, max float64) Vec3 {
	u := RandomVec3(sampler)
	return Vec3{
		X: min + (max-min)*u.X,
		Y: min + (max-min)*u.Y,
		Z: min + (max-min)*u.Z,
	}
}

// RandomInUnitSphere generates a random point strictly inside the unit sphere
// by rejection sampling the [-1,1)^3 cube (about two tries on average)
func RandomInUnitSphere(sampler Sampler) Vec3 {
	for {
		p := RandomVec3Range(sampler, -1, 1)
		if p.LengthSquared() < 1.0 {
			return p
		}
	}
}

// RandomUnitVector normalizes a point drawn by RandomInUnitSphere
func RandomUnitVector(sampler Sampler) Vec3 {
	return RandomInUnitSphere(sampler).Normalize()
}
