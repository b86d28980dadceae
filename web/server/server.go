package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Ryan-Ardito/raytracer/pkg/config"
	"github.com/Ryan-Ardito/raytracer/pkg/core"
	"github.com/Ryan-Ardito/raytracer/pkg/loaders"
	"github.com/Ryan-Ardito/raytracer/pkg/publish"
	"github.com/Ryan-Ardito/raytracer/pkg/renderer"
	"github.com/Ryan-Ardito/raytracer/pkg/scene"
)

// Publisher is the part of the S3 publisher the server needs
type Publisher interface {
	publish.Publisher
	ObjectKey(sceneName string, seed int64, extension string) string
}

// Server handles web requests for the raytracer
type Server struct {
	config    *config.Config
	publisher Publisher // nil when uploads are not configured
}

// NewServer creates a new web server. publisher may be nil.
func NewServer(cfg *config.Config, publisher Publisher) *Server {
	return &Server{config: cfg, publisher: publisher}
}

// Handler returns the API routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/render", s.handleRender)
	mux.HandleFunc("GET /api/render/stream", s.handleRenderStream)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/scenes", s.handleScenes)
	mux.HandleFunc("GET /api/inspect", s.handleInspect)
	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	log.Printf("Starting web server on %s", s.config.ServerAddress)
	return http.ListenAndServe(s.config.ServerAddress, s.Handler())
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the built-in scenes
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"scenes": scene.ListBuiltinScenes(),
		"limits": map[string]int{
			"maxWidth":   s.config.MaxWidth,
			"maxSamples": s.config.MaxSamples,
		},
	})
}

// createScene builds the requested scene and applies the size and quality overrides.
// Without a request width, inline scenes keep their own sampling width and
// built-in scenes use defaultWidth.
func (s *Server) createScene(req *RenderRequest) (*scene.Scene, error) {
	var sceneObj *scene.Scene
	width := req.Width
	if len(req.SceneJSON) > 0 {
		name := req.Scene
		if name == "" {
			name = "custom"
		}
		doc, err := loaders.DecodeScene(name, bytes.NewReader(req.SceneJSON))
		if err != nil {
			return nil, err
		}
		if sceneObj, err = loaders.BuildScene(name, doc); err != nil {
			return nil, err
		}
		if width == 0 {
			width = doc.Width()
		}
	} else {
		name := req.Scene
		if name == "" {
			name = "default"
		}
		var err error
		if sceneObj, err = scene.NewBuiltinScene(name); err != nil {
			return nil, err
		}
	}

	if width == 0 {
		width = defaultWidth
	}
	if width < 2 || width > s.config.MaxWidth {
		return nil, fmt.Errorf("%w: width must be between 2 and %d, got %d", scene.ErrInvalidScene, s.config.MaxWidth, width)
	}
	sceneObj.SetImageWidth(width)

	if req.Samples != 0 {
		sceneObj.SamplingConfig.SamplesPerPixel = req.Samples
	}
	if sceneObj.SamplingConfig.SamplesPerPixel > s.config.MaxSamples {
		return nil, fmt.Errorf("%w: samples must be at most %d, got %d",
			scene.ErrInvalidScene, s.config.MaxSamples, sceneObj.SamplingConfig.SamplesPerPixel)
	}
	if req.MaxDepth != 0 {
		sceneObj.SamplingConfig.MaxDepth = req.MaxDepth
	}

	if err := sceneObj.Validate(); err != nil {
		return nil, err
	}
	return sceneObj, nil
}

type renderResult struct {
	img   *image.RGBA
	stats renderer.RenderStats
	err   error
}

// runRender renders on its own goroutine, bounded by the configured render timeout
func (s *Server) runRender(ctx context.Context, sceneObj *scene.Scene, seed int64, logger core.Logger) (*image.RGBA, renderer.RenderStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.RenderTimeout)
	defer cancel()

	resChan := make(chan renderResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resChan <- renderResult{err: fmt.Errorf("panic in renderer: %v", r)}
			}
		}()

		raytracer := renderer.NewRaytracer(sceneObj, core.NewSeededSampler(seed), logger)
		img, stats, err := raytracer.Render(ctx)
		resChan <- renderResult{img: img, stats: stats, err: err}
	}()

	select {
	case res := <-resChan:
		return res.img, res.stats, res.err
	case <-ctx.Done():
		return nil, renderer.RenderStats{}, fmt.Errorf("render timed out: %w", ctx.Err())
	}
}

// statusForError maps render pipeline errors to HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, scene.ErrUnknownScene), errors.Is(err, scene.ErrInvalidScene):
		return http.StatusBadRequest
	case errors.Is(err, publish.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error writing JSON response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
