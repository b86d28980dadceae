package material

import "github.com/Ryan-Ardito/raytracer/pkg/core"

// stubSampler replays fixed values so scatter directions can be forced
type stubSampler struct {
	values []float64
	calls  int
}

func (s *stubSampler) Get1D() float64 {
	v := s.values[s.calls%len(s.values)]
	s.calls++
	return v
}

func (s *stubSampler) Get3D() core.Vec3 {
	x := s.Get1D()
	y := s.Get1D()
	z := s.Get1D()
	return core.NewVec3(x, y, z)
}
