package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/Ryan-Ardito/raytracer/pkg/core"
	"github.com/Ryan-Ardito/raytracer/pkg/imageio"
	"github.com/Ryan-Ardito/raytracer/pkg/renderer"
)

const (
	defaultWidth = 400
	defaultSeed  = 42
)

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene     string          `json:"scene"`     // Built-in scene name, or a label for SceneJSON
	SceneJSON json.RawMessage `json:"sceneJson"` // Inline scene document, overrides Scene lookup
	Width     int             `json:"width"`     // Image width, height follows the aspect ratio
	Samples   int             `json:"samples"`   // Samples per pixel (0 = scene default)
	MaxDepth  int             `json:"maxDepth"`  // Maximum ray bounce depth (0 = scene default)
	Seed      *int64          `json:"seed"`      // Random seed
	Format    string          `json:"format"`    // "png" (default), "jpeg" or "ppm"
	Upload    bool            `json:"upload"`    // Publish to S3 instead of returning the image
}

// UploadResponse is returned when a render is published
type UploadResponse struct {
	Key   string `json:"key"`
	URL   string `json:"url"`
	Bytes int    `json:"bytes"`
}

// Stats represents render statistics
type Stats struct {
	Width            int     `json:"width"`
	Height           int     `json:"height"`
	TotalPixels      int     `json:"totalPixels"`
	TotalSamples     int64   `json:"totalSamples"`
	SamplesPerPixel  int     `json:"samplesPerPixel"`
	MaxDepth         int     `json:"maxDepth"`
	AverageLuminance float64 `json:"averageLuminance"`
}

// CompleteUpdate is the final event of a streamed render
type CompleteUpdate struct {
	ImageData string `json:"imageData"` // Base64 encoded PNG
	Stats     Stats  `json:"stats"`
	ElapsedMs int64  `json:"elapsedMs"`
}

func (r *RenderRequest) seed() int64 {
	if r.Seed == nil {
		return defaultSeed
	}
	return *r.Seed
}

func statsFromRender(stats renderer.RenderStats) Stats {
	return Stats{
		Width:            stats.Width,
		Height:           stats.Height,
		TotalPixels:      stats.TotalPixels,
		TotalSamples:     int64(stats.TotalSamples),
		SamplesPerPixel:  stats.SamplesPerPixel,
		MaxDepth:         stats.MaxDepth,
		AverageLuminance: stats.AverageLuminance,
	}
}

// handleRender renders a scene and returns the encoded image, or publishes it
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	format := imageio.FormatPNG
	if req.Format != "" {
		var err error
		if format, err = imageio.ParseFormat(req.Format); err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.Upload && s.publisher == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "Uploads are not configured")
		return
	}

	sceneObj, err := s.createScene(&req)
	if err != nil {
		writeJSONError(w, statusForError(err), err.Error())
		return
	}

	start := time.Now()
	img, stats, err := s.runRender(r.Context(), sceneObj, req.seed(), core.NopLogger{})
	if err != nil {
		log.Printf("Render of %s failed: %v", sceneObj.Name, err)
		writeJSONError(w, statusForError(err), err.Error())
		return
	}
	log.Printf("Render of %s (%dx%d, %d spp) finished in %v",
		sceneObj.Name, stats.Width, stats.Height, stats.SamplesPerPixel, time.Since(start))

	var buf bytes.Buffer
	if err := imageio.Encode(&buf, img, format); err != nil {
		writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to encode image: %v", err))
		return
	}

	if req.Upload {
		key := s.publisher.ObjectKey(sceneObj.Name, req.seed(), format.Extension())
		url, err := s.publisher.Upload(r.Context(), buf.Bytes(), key, format.ContentType())
		if err != nil {
			log.Printf("Upload failed: %v", err)
			writeJSONError(w, http.StatusBadGateway, "Upload failed")
			return
		}
		writeJSON(w, http.StatusOK, UploadResponse{Key: key, URL: url, Bytes: buf.Len()})
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Render-Time-Ms", strconv.FormatInt(stats.Duration.Milliseconds(), 10))
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("Error writing image response: %v", err)
	}
}

// handleRenderStream renders a scene while streaming scanline progress via SSE
func (s *Server) handleRenderStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSONError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}
	s.setSSEHeaders(w)

	req, err := s.parseStreamRequest(r)
	if err != nil {
		writeSSEEvent(w, flusher, "error", fmt.Sprintf("Invalid request: %v", err))
		return
	}
	sceneObj, err := s.createScene(req)
	if err != nil {
		writeSSEEvent(w, flusher, "error", err.Error())
		return
	}

	consoleChan, webLogger := s.setupConsoleLogging()
	done := make(chan renderResult, 1)
	startTime := time.Now()

	go func() {
		img, stats, err := s.runRender(r.Context(), sceneObj, req.seed(), webLogger)
		done <- renderResult{img: img, stats: stats, err: err}
	}()

	for {
		select {
		case msg := <-consoleChan:
			data, err := json.Marshal(msg)
			if err != nil {
				log.Printf("Error marshaling console message: %v", err)
				continue
			}
			writeSSEEvent(w, flusher, "console", string(data))

		case res := <-done:
			if res.err != nil {
				writeSSEEvent(w, flusher, "error", fmt.Sprintf("Render error: %v", res.err))
				return
			}
			var buf bytes.Buffer
			if err := imageio.Encode(&buf, res.img, imageio.FormatPNG); err != nil {
				writeSSEEvent(w, flusher, "error", fmt.Sprintf("Failed to encode image: %v", err))
				return
			}
			data, _ := json.Marshal(CompleteUpdate{
				ImageData: base64.StdEncoding.EncodeToString(buf.Bytes()),
				Stats:     statsFromRender(res.stats),
				ElapsedMs: time.Since(startTime).Milliseconds(),
			})
			writeSSEEvent(w, flusher, "complete", string(data))
			return

		case <-r.Context().Done():
			// Client disconnected
			return
		}
	}
}

// parseStreamRequest reads render parameters from the query string
func (s *Server) parseStreamRequest(r *http.Request) (*RenderRequest, error) {
	query := r.URL.Query()
	req := &RenderRequest{Scene: query.Get("scene")}

	var err error
	if req.Width, err = parseIntParam(query, "width", 0, 2, s.config.MaxWidth); err != nil {
		return nil, err
	}
	if req.Samples, err = parseIntParam(query, "samples", 0, 1, s.config.MaxSamples); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(query, "maxDepth", 0, 1, 1000); err != nil {
		return nil, err
	}
	if value := query.Get("seed"); value != "" {
		seed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid seed: %s", value)
		}
		req.Seed = &seed
	}
	return req, nil
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// setupConsoleLogging creates console channel and web logger for a render
func (s *Server) setupConsoleLogging() (chan ConsoleMessage, core.Logger) {
	consoleChan := make(chan ConsoleMessage, 50)
	renderID := fmt.Sprintf("render-%d", time.Now().UnixNano())
	return consoleChan, NewWebLogger(renderID, consoleChan)
}

// writeSSEEvent writes one event and flushes it to the client
func writeSSEEvent(w http.ResponseWriter, flusher http.Flusher, event, data string) {
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return
	}
	flusher.Flush()
}
