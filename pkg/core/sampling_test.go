package core

import (
	"math"
	"math/rand"
	"testing"
)

// sequenceSampler replays a fixed list of values, cycling when exhausted
type sequenceSampler struct {
	values []float64
	next   int
	calls  int
}

func (s *sequenceSampler) Get1D() float64 {
	v := s.values[s.next%len(s.values)]
	s.next++
	s.calls++
	return v
}

func (s *sequenceSampler) Get3D() Vec3 {
	x := s.Get1D()
	y := s.Get1D()
	z := s.Get1D()
	return NewVec3(x, y, z)
}

func TestRandomRange(t *testing.T) {
	sampler := NewRandomSampler(rand.New(rand.NewSource(42)))
	for i := 0; i < 1000; i++ {
		v := RandomRange(sampler, -3, 5)
		if v < -3 || v >= 5 {
			t.Fatalf("RandomRange produced %f outside [-3, 5)", v)
		}
	}

	stub := &sequenceSampler{values: []float64{0, 0.5}}
	if v := RandomRange(stub, -1, 1); v != -1 {
		t.Errorf("Expected -1 for u=0, got %f", v)
	}
	if v := RandomRange(stub, -1, 1); v != 0 {
		t.Errorf("Expected 0 for u=0.5, got %f", v)
	}
}

func TestRandomFloatAndVec3(t *testing.T) {
	sampler := NewRandomSampler(rand.New(rand.NewSource(7)))
	for i := 0; i < 1000; i++ {
		if f := RandomFloat(sampler); f < 0 || f >= 1 {
			t.Fatalf("RandomFloat produced %f outside [0, 1)", f)
		}
		v := RandomVec3(sampler)
		if v.X < 0 || v.X >= 1 || v.Y < 0 || v.Y >= 1 || v.Z < 0 || v.Z >= 1 {
			t.Fatalf("RandomVec3 produced %v outside [0, 1)^3", v)
		}
	}

	stub := &sequenceSampler{values: []float64{0.1, 0.2, 0.3, 0.4}}
	if f := RandomFloat(stub); f != 0.1 {
		t.Errorf("Expected 0.1, got %f", f)
	}
	if v := RandomVec3(stub); v != NewVec3(0.2, 0.3, 0.4) {
		t.Errorf("Expected (0.2, 0.3, 0.4), got %v", v)
	}
	if stub.calls != 4 {
		t.Errorf("Expected 4 draws, got %d", stub.calls)
	}
}

func TestRandomVec3Range_ComponentOrder(t *testing.T) {
	stub := &sequenceSampler{values: []float64{0.25, 0.5, 0.75}}
	v := RandomVec3Range(stub, -1, 1)
	if v != NewVec3(-0.5, 0, 0.5) {
		t.Errorf("Expected (-0.5, 0, 0.5), got %v", v)
	}
}

func TestRandomInUnitSphere_RejectsOutsidePoints(t *testing.T) {
	// First triple maps to (0.9, 0.9, 0.9) which lies outside the sphere,
	// second maps to (0, 0, -0.5) which is accepted.
	stub := &sequenceSampler{values: []float64{0.95, 0.95, 0.95, 0.5, 0.5, 0.25}}
	p := RandomInUnitSphere(stub)
	if p != NewVec3(0, 0, -0.5) {
		t.Errorf("Expected rejection sampling to return (0,0,-0.5), got %v", p)
	}
	if stub.calls != 6 {
		t.Errorf("Expected 6 draws (one rejected triple), got %d", stub.calls)
	}
}

func TestRandomInUnitSphere_Distribution(t *testing.T) {
	sampler := NewRandomSampler(rand.New(rand.NewSource(42)))
	const n = 10000
	var mean Vec3
	for i := 0; i < n; i++ {
		p := RandomInUnitSphere(sampler)
		if p.LengthSquared() >= 1.0 {
			t.Fatalf("Point %v is not strictly inside the unit sphere", p)
		}
		mean = mean.Add(p)
	}
	mean = mean.Multiply(1.0 / n)
	if mean.Length() > 0.05 {
		t.Errorf("Expected mean near origin, got %v", mean)
	}
}

func TestRandomUnitVector(t *testing.T) {
	sampler := NewSeededSampler(7)
	for i := 0; i < 1000; i++ {
		v := RandomUnitVector(sampler)
		if math.Abs(v.Length()-1) > 1e-9 {
			t.Fatalf("Expected unit length, got %f for %v", v.Length(), v)
		}
	}

	stub := &sequenceSampler{values: []float64{0.5, 0.5, 0.25}}
	if v := RandomUnitVector(stub); v != NewVec3(0, 0, -1) {
		t.Errorf("Expected (0,0,-1), got %v", v)
	}
}

func TestRandomSampler_Deterministic(t *testing.T) {
	a := NewSeededSampler(42)
	b := NewSeededSampler(42)
	for i := 0; i < 10; i++ {
		if a.Get3D() != b.Get3D() {
			t.Fatal("Samplers with the same seed should produce the same stream")
		}
	}
}
