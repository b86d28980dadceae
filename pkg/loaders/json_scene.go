package loaders

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/Ryan-Ardito/raytracer/pkg/core"
	"github.com/Ryan-Ardito/raytracer/pkg/geometry"
	"github.com/Ryan-Ardito/raytracer/pkg/material"
	"github.com/Ryan-Ardito/raytracer/pkg/scene"
)

// SceneFile is the JSON document describing a scene
type SceneFile struct {
	Camera     *CameraSpec             `json:"camera,omitempty"`
	Background *BackgroundSpec         `json:"background,omitempty"`
	Sampling   *SamplingSpec           `json:"sampling,omitempty"`
	Materials  map[string]MaterialSpec `json:"materials"`
	Spheres    []SphereSpec            `json:"spheres"`
}

// CameraSpec overrides the default camera; zero fields keep their defaults
type CameraSpec struct {
	Origin         *Triple `json:"origin,omitempty"` // [x, y, z]
	AspectRatio    float64 `json:"aspectRatio,omitempty"`
	ViewportHeight float64 `json:"viewportHeight,omitempty"`
	FocalLength    float64 `json:"focalLength,omitempty"`
}

// BackgroundSpec sets the sky gradient
type BackgroundSpec struct {
	Top    *Triple `json:"top,omitempty"`
	Bottom *Triple `json:"bottom,omitempty"`
}

// SamplingSpec overrides render quality settings
type SamplingSpec struct {
	Width           int `json:"width,omitempty"`
	SamplesPerPixel int `json:"samplesPerPixel,omitempty"`
	MaxDepth        int `json:"maxDepth,omitempty"`
}

// MaterialSpec declares a named material
type MaterialSpec struct {
	Type   string  `json:"type"` // "lambertian" or "metal"
	Albedo Triple  `json:"albedo"`
	Fuzz   float64 `json:"fuzz,omitempty"`
}

// SphereSpec places a sphere using a named material
type SphereSpec struct {
	Center   Triple  `json:"center"`
	Radius   float64 `json:"radius"`
	Material string  `json:"material"`
}

// Triple is a vector or color written either as [r, g, b] or as a CSS color name
type Triple struct {
	core.Vec3
}

// UnmarshalJSON accepts a three element number array or a color name string
func (c *Triple) UnmarshalJSON(data []byte) error {
	var triple []float64
	if err := json.Unmarshal(data, &triple); err == nil {
		if len(triple) != 3 {
			return fmt.Errorf("expected 3 components, got %d", len(triple))
		}
		c.Vec3 = core.NewVec3(triple[0], triple[1], triple[2])
		return nil
	}

	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("expected [r, g, b] or a color name: %w", err)
	}
	rgba, ok := colornames.Map[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return fmt.Errorf("unknown color name %q", name)
	}
	c.Vec3 = core.NewVec3(float64(rgba.R)/255.0, float64(rgba.G)/255.0, float64(rgba.B)/255.0)
	return nil
}

// LoadScene reads a JSON scene file from disk
func LoadScene(filename string) (*scene.Scene, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer file.Close()

	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return ParseScene(name, file)
}

// ParseScene decodes a JSON scene and builds it
func ParseScene(name string, reader io.Reader) (*scene.Scene, error) {
	doc, err := DecodeScene(name, reader)
	if err != nil {
		return nil, err
	}
	return BuildScene(name, doc)
}

// DecodeScene reads a scene document without building it
func DecodeScene(name string, reader io.Reader) (*SceneFile, error) {
	var doc SceneFile
	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: failed to decode scene %q: %v", scene.ErrInvalidScene, name, err)
	}
	return &doc, nil
}

// Width returns the image width the document asks for, or 0 if it sets none
func (f *SceneFile) Width() int {
	if f.Sampling == nil {
		return 0
	}
	return f.Sampling.Width
}

// BuildScene converts a decoded scene document into a renderable scene.
// Each named material is created once and shared by every sphere that uses it.
func BuildScene(name string, doc *SceneFile) (*scene.Scene, error) {
	s := scene.NewScene(name)

	if doc.Camera != nil {
		override := geometry.CameraConfig{
			AspectRatio:    doc.Camera.AspectRatio,
			ViewportHeight: doc.Camera.ViewportHeight,
			FocalLength:    doc.Camera.FocalLength,
		}
		if doc.Camera.Origin != nil {
			override.Origin = doc.Camera.Origin.Vec3
		}
		if override.AspectRatio < 0 || override.ViewportHeight < 0 || override.FocalLength < 0 {
			return nil, fmt.Errorf("%w: camera values must be positive", scene.ErrInvalidScene)
		}
		s.CameraConfig = geometry.MergeCameraConfig(s.CameraConfig, override)
	}
	s.SetImageWidth(s.SamplingConfig.Width)

	if doc.Background != nil {
		if doc.Background.Top != nil {
			s.TopColor = doc.Background.Top.Vec3
		}
		if doc.Background.Bottom != nil {
			s.BottomColor = doc.Background.Bottom.Vec3
		}
	}

	if doc.Sampling != nil {
		if doc.Sampling.Width < 0 || doc.Sampling.SamplesPerPixel < 0 || doc.Sampling.MaxDepth < 0 {
			return nil, fmt.Errorf("%w: sampling values must be positive", scene.ErrInvalidScene)
		}
		if doc.Sampling.Width > 0 {
			s.SetImageWidth(doc.Sampling.Width)
		}
		if doc.Sampling.SamplesPerPixel > 0 {
			s.SamplingConfig.SamplesPerPixel = doc.Sampling.SamplesPerPixel
		}
		if doc.Sampling.MaxDepth > 0 {
			s.SamplingConfig.MaxDepth = doc.Sampling.MaxDepth
		}
	}

	materials := make(map[string]material.Material, len(doc.Materials))
	for materialName, spec := range doc.Materials {
		mat, err := buildMaterial(spec)
		if err != nil {
			return nil, fmt.Errorf("%w: material %q: %v", scene.ErrInvalidScene, materialName, err)
		}
		materials[materialName] = mat
	}

	if len(doc.Spheres) == 0 {
		return nil, fmt.Errorf("%w: scene %q has no spheres", scene.ErrInvalidScene, name)
	}
	for i, spec := range doc.Spheres {
		if spec.Radius <= 0 {
			return nil, fmt.Errorf("%w: sphere %d: radius must be positive, got %g", scene.ErrInvalidScene, i, spec.Radius)
		}
		mat, ok := materials[spec.Material]
		if !ok {
			return nil, fmt.Errorf("%w: sphere %d: unknown material %q", scene.ErrInvalidScene, i, spec.Material)
		}
		s.World.Add(geometry.NewSphere(spec.Center.Vec3, spec.Radius, mat))
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func buildMaterial(spec MaterialSpec) (material.Material, error) {
	switch strings.ToLower(spec.Type) {
	case "lambertian":
		return material.NewLambertian(spec.Albedo.Vec3), nil
	case "metal":
		return material.NewMetal(spec.Albedo.Vec3, spec.Fuzz), nil
	default:
		return nil, fmt.Errorf("unsupported material type %q", spec.Type)
	}
}
