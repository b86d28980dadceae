package renderer

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"time"

	"github.com/Ryan-Ardito/raytracer/pkg/core"
	"github.com/Ryan-Ardito/raytracer/pkg/geometry"
	"github.com/Ryan-Ardito/raytracer/pkg/integrator"
	"github.com/Ryan-Ardito/raytracer/pkg/scene"
)

// Raytracer handles the rendering process
type Raytracer struct {
	scene      *scene.Scene
	camera     *geometry.Camera
	integrator integrator.Integrator
	sampler    core.Sampler
	logger     core.Logger
}

// NewRaytracer creates a raytracer for the scene. The sampler drives every
// random draw of the render, so a seeded sampler gives a reproducible image.
func NewRaytracer(s *scene.Scene, sampler core.Sampler, logger core.Logger) *Raytracer {
	if logger == nil {
		logger = core.NopLogger{}
	}

	pathTracer := integrator.NewPathTracingIntegrator()
	pathTracer.TopColor = s.TopColor
	pathTracer.BottomColor = s.BottomColor

	return &Raytracer{
		scene:      s,
		camera:     s.GetCamera(),
		integrator: pathTracer,
		sampler:    sampler,
		logger:     logger,
	}
}

// SetIntegrator replaces the light transport algorithm
func (rt *Raytracer) SetIntegrator(i integrator.Integrator) {
	rt.integrator = i
}

// Render traces every pixel of the scene and returns the quantized image.
// Scanlines are traced bottom-up, matching the camera's v axis, and written
// so that row 0 of the image is the top of the picture. The context is
// checked between scanlines.
func (rt *Raytracer) Render(ctx context.Context) (*image.RGBA, RenderStats, error) {
	if err := rt.scene.Validate(); err != nil {
		return nil, RenderStats{}, err
	}

	cfg := rt.scene.SamplingConfig
	width, height := cfg.Width, cfg.Height
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	stats := RenderStats{
		Width:           width,
		Height:          height,
		SamplesPerPixel: cfg.SamplesPerPixel,
		MaxDepth:        cfg.MaxDepth,
	}
	start := time.Now()

	for j := height - 1; j >= 0; j-- {
		if err := ctx.Err(); err != nil {
			return nil, stats, fmt.Errorf("render cancelled with %d scanlines remaining: %w", j+1, err)
		}
		rt.logger.Printf("\rScanlines remaining: %d ", j)

		for i := 0; i < width; i++ {
			pixel := rt.RenderPixel(i, j)
			img.SetRGBA(i, height-1-j, QuantizeColor(pixel.ColorAccum, pixel.SampleCount))

			stats.TotalPixels++
			stats.TotalSamples += pixel.SampleCount
		}
	}
	rt.logger.Printf("\nDone.\n")

	stats.Duration = time.Since(start)
	stats.AverageLuminance = CalculateAverageLuminance(img)
	return img, stats, nil
}

// RenderPixel accumulates SamplesPerPixel jittered samples for pixel (i, j),
// where j counts up from the bottom row
func (rt *Raytracer) RenderPixel(i, j int) PixelStats {
	cfg := rt.scene.SamplingConfig
	var pixel PixelStats

	for sample := 0; sample < cfg.SamplesPerPixel; sample++ {
		u := (float64(i) + core.RandomFloat(rt.sampler)) / float64(cfg.Width-1)
		v := (float64(j) + core.RandomFloat(rt.sampler)) / float64(cfg.Height-1)

		ray := rt.camera.GetRay(u, v)
		pixel.AddSample(rt.integrator.RayColor(ray, rt.scene.World, cfg.MaxDepth, rt.sampler))
	}

	return pixel
}

// QuantizeColor converts an accumulated color sum to 8-bit RGB: divide by the
// sample count, apply gamma 2, clamp to [0, 0.999] and scale by 256.
// NaN components quantize to 0.
func QuantizeColor(sum core.Color, samples int) color.RGBA {
	c := sum.Multiply(1.0 / float64(samples)).GammaCorrect(2.0).Clamp(0, 0.999)
	return color.RGBA{
		R: quantizeComponent(c.X),
		G: quantizeComponent(c.Y),
		B: quantizeComponent(c.Z),
		A: 255,
	}
}

// quantizeComponent scales a clamped component to 8 bits; Clamp passes NaN through
func quantizeComponent(x float64) uint8 {
	if math.IsNaN(x) {
		return 0
	}
	return uint8(256 * x)
}
