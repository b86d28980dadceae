package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/Ryan-Ardito/raytracer/pkg/config"
	"github.com/Ryan-Ardito/raytracer/pkg/core"
	"github.com/Ryan-Ardito/raytracer/pkg/imageio"
	"github.com/Ryan-Ardito/raytracer/pkg/loaders"
	"github.com/Ryan-Ardito/raytracer/pkg/publish"
	"github.com/Ryan-Ardito/raytracer/pkg/renderer"
	"github.com/Ryan-Ardito/raytracer/pkg/scene"
)

// renderOptions holds the command line overrides; zero means keep the scene's value
type renderOptions struct {
	width   int
	aspect  float64
	samples int
	depth   int
}

func main() {
	// Parse command line flags
	sceneType := flag.String("scene", "default", "Built-in scene name, scene name under scenes/, or path to a .json scene")
	width := flag.Int("width", 0, "Image width in pixels (0 = scene default)")
	aspect := flag.Float64("aspect", 0, "Aspect ratio width/height (0 = scene default)")
	samples := flag.Int("samples", 0, "Samples per pixel (0 = scene default)")
	depth := flag.Int("depth", 0, "Maximum ray bounce depth (0 = scene default)")
	seed := flag.Int64("seed", 42, "Random seed")
	out := flag.String("out", "", "Output file (.ppm, .png, .jpg); '-' writes PPM to stdout")
	thumbnail := flag.Uint("thumbnail", 0, "Also save a thumbnail of this width")
	upload := flag.Bool("upload", false, "Upload the render to the configured S3 bucket")
	envFile := flag.String("env", ".env", "Environment file to load")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	// Show help if requested
	if *help {
		fmt.Println("Recursive Raytracer")
		fmt.Println("Usage: raytracer [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Available scenes:")
		for _, info := range scene.ListBuiltinScenes() {
			fmt.Printf("  %-12s - %s\n", info.ID, info.Description)
		}
		fmt.Println()
		fmt.Println("Output defaults to output/<scene>/render_<timestamp>.ppm")
		return
	}

	// Progress goes to stderr so PPM on stdout stays clean
	logger := log.New(os.Stderr, "", 0)
	progress := core.NewWriterLogger(os.Stderr)

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	selectedScene, err := createScene(*sceneType)
	if err != nil {
		log.Fatalf("Failed to create scene: %v", err)
	}

	opts := renderOptions{width: *width, aspect: *aspect, samples: *samples, depth: *depth}
	if err := applyOptions(selectedScene, opts); err != nil {
		log.Fatalf("Invalid render options: %v", err)
	}

	outputPath := *out
	if outputPath == "" {
		outputDir := createOutputDir(*sceneType)
		timestamp := time.Now().Format("20060102_150405")
		outputPath = filepath.Join(outputDir, fmt.Sprintf("render_%s.ppm", timestamp))
	}
	if outputPath != "-" {
		if _, err := imageio.FormatFromFilename(outputPath); err != nil {
			log.Fatalf("Invalid output file: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfgSampling := selectedScene.SamplingConfig
	logger.Printf("Rendering %s at %dx%d, %d samples per pixel, max depth %d",
		selectedScene.Name, cfgSampling.Width, cfgSampling.Height, cfgSampling.SamplesPerPixel, cfgSampling.MaxDepth)

	raytracer := renderer.NewRaytracer(selectedScene, core.NewSeededSampler(*seed), progress)
	img, stats, err := raytracer.Render(ctx)
	if err != nil {
		log.Fatalf("Render failed: %v", err)
	}
	logger.Printf("Render completed in %v (%d samples, average luminance %.3f)",
		stats.Duration, stats.TotalSamples, stats.AverageLuminance)

	if outputPath == "-" {
		if err := imageio.WritePPM(os.Stdout, img); err != nil {
			log.Fatalf("Error writing PPM: %v", err)
		}
	} else {
		if err := imageio.Save(outputPath, img); err != nil {
			log.Fatalf("Error saving render: %v", err)
		}
		logger.Printf("Render saved as %s", outputPath)

		if *thumbnail > 0 {
			thumbPath := imageio.ThumbnailFilename(outputPath)
			if err := imageio.Save(thumbPath, imageio.Thumbnail(img, *thumbnail)); err != nil {
				log.Fatalf("Error saving thumbnail: %v", err)
			}
			logger.Printf("Thumbnail saved as %s", thumbPath)
		}
	}

	if *upload {
		publisher, err := publish.NewS3Publisher(cfg, logger)
		if err != nil {
			log.Fatalf("Cannot upload: %v", err)
		}

		format := imageio.FormatPNG
		if outputPath != "-" {
			format, _ = imageio.FormatFromFilename(outputPath)
		}
		var buf bytes.Buffer
		if err := imageio.Encode(&buf, img, format); err != nil {
			log.Fatalf("Error encoding render: %v", err)
		}

		key := publisher.ObjectKey(selectedScene.Name, *seed, format.Extension())
		url, err := publisher.Upload(ctx, buf.Bytes(), key, format.ContentType())
		if err != nil {
			log.Fatalf("Upload failed: %v", err)
		}
		logger.Printf("Render published at %s", url)
	}
}

// createScene resolves a built-in scene, a JSON file path, or a name under scenes/
func createScene(sceneType string) (*scene.Scene, error) {
	s, err := tryLoadJSONScene(sceneType)
	if err != nil {
		return nil, err
	}
	if s != nil {
		return s, nil
	}
	if strings.HasSuffix(sceneType, ".json") {
		// Surface the loader's error for explicit paths
		return loaders.LoadScene(sceneType)
	}
	return scene.NewBuiltinScene(sceneType)
}

// tryLoadJSONScene loads the JSON scene sceneType names. It returns nil and no
// error when no such file exists, and the loader's error when one exists but is invalid.
func tryLoadJSONScene(sceneType string) (*scene.Scene, error) {
	if sceneType == "" {
		return nil, nil
	}

	var path string
	if strings.HasSuffix(sceneType, ".json") {
		path = sceneType
	} else {
		path = filepath.Join("scenes", sceneType+".json")
	}

	if _, err := os.Stat(path); err != nil {
		return nil, nil
	}
	return loaders.LoadScene(path)
}

// applyOptions overrides scene settings with positive command line values
func applyOptions(s *scene.Scene, opts renderOptions) error {
	if opts.width < 0 || opts.aspect < 0 || opts.samples < 0 || opts.depth < 0 {
		return fmt.Errorf("width, aspect, samples and depth must not be negative")
	}

	if opts.aspect > 0 {
		s.CameraConfig.AspectRatio = opts.aspect
	}
	imageWidth := s.SamplingConfig.Width
	if opts.width > 0 {
		imageWidth = opts.width
	}
	s.SetImageWidth(imageWidth)

	if opts.samples > 0 {
		s.SamplingConfig.SamplesPerPixel = opts.samples
	}
	if opts.depth > 0 {
		s.SamplingConfig.MaxDepth = opts.depth
	}
	return s.Validate()
}

// outputDirFor returns output/<scene name> for a scene argument
func outputDirFor(sceneType string) string {
	name := sceneType
	if strings.HasSuffix(name, ".json") {
		name = strings.TrimSuffix(filepath.Base(name), ".json")
	}
	if name == "" {
		name = "scene"
	}
	return filepath.Join("output", name)
}

// createOutputDir creates output/<scene> and returns its path
func createOutputDir(sceneType string) string {
	outputDir := outputDirFor(sceneType)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		log.Printf("Error creating output directory: %v", err)
	}
	return outputDir
}
