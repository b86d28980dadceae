package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Ryan-Ardito/raytracer/pkg/config"
	"github.com/Ryan-Ardito/raytracer/pkg/scene"
)

// MockPublisher records uploads instead of sending them
type MockPublisher struct {
	uploadFn func(ctx context.Context, data []byte, key, contentType string) (string, error)
}

func (m *MockPublisher) Upload(ctx context.Context, data []byte, key, contentType string) (string, error) {
	return m.uploadFn(ctx, data, key, contentType)
}

func (m *MockPublisher) ObjectKey(sceneName string, seed int64, extension string) string {
	return "renders/" + sceneName + extension
}

func testConfig() *config.Config {
	return &config.Config{
		ServerAddress: ":0",
		RenderTimeout: 30 * time.Second,
		UploadTimeout: time.Second,
		MaxWidth:      64,
		MaxSamples:    16,
	}
}

func postRender(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/render", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	srv := NewServer(testConfig(), nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("Expected status ok, got %v", body)
	}
}

func TestHandleScenes(t *testing.T) {
	srv := NewServer(testConfig(), nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scenes", nil))

	var body struct {
		Scenes []scene.SceneInfo `json:"scenes"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if len(body.Scenes) != len(scene.ListBuiltinScenes()) {
		t.Errorf("Expected %d scenes, got %d", len(scene.ListBuiltinScenes()), len(body.Scenes))
	}
}

func TestHandleRender_PNG(t *testing.T) {
	srv := NewServer(testConfig(), nil)
	rec := postRender(t, srv, `{"scene": "single", "width": 16, "samples": 2, "maxDepth": 4}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Expected image/png, got %s", ct)
	}
	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatalf("Response is not a PNG: %v", err)
	}
	if img.Bounds().Dx() != 16 || img.Bounds().Dy() != 9 {
		t.Errorf("Expected 16x9 image, got %v", img.Bounds())
	}
}

func TestHandleRender_PPMWithInlineScene(t *testing.T) {
	const inlineScene = `{"camera": {"aspectRatio": 1},
		%s
		"materials": {"m": {"type": "metal", "albedo": "silver"}},
		"spheres": [{"center": [0, 0, -1], "radius": 0.5, "material": "m"}]}`

	tests := []struct {
		name     string
		sampling string
		width    string
		header   string
	}{
		{"request width", ``, `"width": 4,`, "P3\n4 4\n255\n"},
		{"scene width kept", `"sampling": {"width": 6, "samplesPerPixel": 1},`, ``, "P3\n6 6\n255\n"},
		{"request width wins over scene", `"sampling": {"width": 6, "samplesPerPixel": 1},`, `"width": 3,`, "P3\n3 3\n255\n"},
	}

	srv := NewServer(testConfig(), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{"sceneJson": ` + fmt.Sprintf(inlineScene, tt.sampling) + `, ` +
				tt.width + ` "samples": 1, "format": "ppm"}`
			rec := postRender(t, srv, body)

			if rec.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			if !strings.HasPrefix(rec.Body.String(), tt.header) {
				t.Errorf("Expected header %q, got %q", tt.header, rec.Body.String())
			}
		})
	}
}

func TestHandleRender_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"malformed body", `{"scene":`, http.StatusBadRequest},
		{"unknown scene", `{"scene": "nope"}`, http.StatusBadRequest},
		{"too wide", `{"scene": "single", "width": 65}`, http.StatusBadRequest},
		{"too many samples", `{"scene": "single", "width": 8, "samples": 17}`, http.StatusBadRequest},
		{"scene default samples over limit", `{"scene": "single", "width": 8}`, http.StatusBadRequest},
		{"bad format", `{"scene": "single", "width": 8, "samples": 1, "format": "gif"}`, http.StatusBadRequest},
		{"invalid inline scene", `{"sceneJson": {"spheres": []}, "width": 8, "samples": 1}`, http.StatusBadRequest},
		{"inline scene width over limit", `{"sceneJson": {"sampling": {"width": 65}, "materials": {"m": {"type": "lambertian", "albedo": [0.5, 0.5, 0.5]}}, "spheres": [{"center": [0, 0, -1], "radius": 0.5, "material": "m"}]}, "samples": 1}`, http.StatusBadRequest},
		{"upload without publisher", `{"scene": "single", "width": 8, "samples": 1, "upload": true}`, http.StatusServiceUnavailable},
	}

	srv := NewServer(testConfig(), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postRender(t, srv, tt.body)
			if rec.Code != tt.status {
				t.Errorf("Expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestHandleRender_Upload(t *testing.T) {
	var uploaded []byte
	var gotKey, gotType string
	publisher := &MockPublisher{
		uploadFn: func(ctx context.Context, data []byte, key, contentType string) (string, error) {
			uploaded, gotKey, gotType = data, key, contentType
			return "https://cdn.example.com/" + key, nil
		},
	}
	srv := NewServer(testConfig(), publisher)

	rec := postRender(t, srv, `{"scene": "single", "width": 8, "samples": 1, "format": "jpeg", "upload": true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp UploadResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if resp.Key != "renders/single.jpg" || gotKey != resp.Key {
		t.Errorf("Unexpected key %s (uploaded as %s)", resp.Key, gotKey)
	}
	if resp.URL != "https://cdn.example.com/renders/single.jpg" {
		t.Errorf("Unexpected URL %s", resp.URL)
	}
	if gotType != "image/jpeg" || resp.Bytes != len(uploaded) || len(uploaded) == 0 {
		t.Errorf("Unexpected upload: type %s, %d bytes reported, %d uploaded", gotType, resp.Bytes, len(uploaded))
	}
}

func TestHandleRender_UploadFailure(t *testing.T) {
	publisher := &MockPublisher{
		uploadFn: func(ctx context.Context, data []byte, key, contentType string) (string, error) {
			return "", errors.New("bucket unavailable")
		},
	}
	srv := NewServer(testConfig(), publisher)

	rec := postRender(t, srv, `{"scene": "single", "width": 8, "samples": 1, "upload": true}`)
	if rec.Code != http.StatusBadGateway {
		t.Errorf("Expected 502, got %d", rec.Code)
	}
}

func TestHandleRender_Timeout(t *testing.T) {
	cfg := testConfig()
	cfg.RenderTimeout = time.Nanosecond
	srv := NewServer(cfg, nil)

	rec := postRender(t, srv, `{"scene": "default", "width": 64, "samples": 16, "maxDepth": 50}`)
	if rec.Code != http.StatusGatewayTimeout {
		t.Errorf("Expected 504, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleRenderStream(t *testing.T) {
	srv := NewServer(testConfig(), nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/render/stream?scene=single&width=8&samples=1&maxDepth=3&seed=5")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Expected text/event-stream, got %s", ct)
	}

	var events []string
	var completeData string
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lastEvent := ""
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			lastEvent = strings.TrimPrefix(line, "event: ")
			events = append(events, lastEvent)
		case strings.HasPrefix(line, "data: ") && lastEvent == "complete":
			completeData = strings.TrimPrefix(line, "data: ")
		}
	}

	if len(events) == 0 || events[len(events)-1] != "complete" {
		t.Fatalf("Expected the stream to end with a complete event, got %v", events)
	}

	var update CompleteUpdate
	if err := json.Unmarshal([]byte(completeData), &update); err != nil {
		t.Fatalf("Invalid complete payload: %v", err)
	}
	if update.Stats.Width != 8 || update.Stats.TotalSamples != int64(8*update.Stats.Height) {
		t.Errorf("Unexpected stats %+v", update.Stats)
	}
	if update.ImageData == "" {
		t.Error("Expected image data in the complete event")
	}
}

func TestHandleRenderStream_InvalidParams(t *testing.T) {
	srv := NewServer(testConfig(), nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/render/stream?width=abc", nil))

	if !strings.Contains(rec.Body.String(), "event: error") {
		t.Errorf("Expected an error event, got %q", rec.Body.String())
	}
}

func TestHandleInspect(t *testing.T) {
	srv := NewServer(testConfig(), nil)

	tests := []struct {
		name         string
		query        string
		status       int
		hit          bool
		materialType string
	}{
		// Width 16 gives a 16x9 image; the center sphere sits in the middle
		{"center sphere", "scene=default&width=16&samples=1&x=7&y=4", http.StatusOK, true, "lambertian"},
		{"sky", "scene=default&width=16&samples=1&x=7&y=0", http.StatusOK, false, ""},
		{"ground", "scene=default&width=16&samples=1&x=1&y=8", http.StatusOK, true, "lambertian"},
		{"left mirror", "scene=default&width=16&samples=1&x=3&y=4", http.StatusOK, true, "metal"},
		{"out of bounds", "scene=default&width=16&samples=1&x=16&y=0", http.StatusBadRequest, false, ""},
		{"missing y", "scene=default&width=16&samples=1&x=1", http.StatusBadRequest, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/inspect?"+tt.query, nil))

			if rec.Code != tt.status {
				t.Fatalf("Expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			if tt.status != http.StatusOK {
				return
			}

			var resp InspectResponse
			if err := json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&resp); err != nil {
				t.Fatalf("Invalid JSON: %v", err)
			}
			if resp.Hit != tt.hit {
				t.Errorf("Expected hit=%v, got %+v", tt.hit, resp)
			}
			if tt.hit {
				if resp.MaterialType != tt.materialType {
					t.Errorf("Expected %s material, got %s", tt.materialType, resp.MaterialType)
				}
				if resp.GeometryType != "sphere" {
					t.Errorf("Expected sphere geometry, got %s", resp.GeometryType)
				}
				if !resp.FrontFace {
					t.Error("Camera rays should hit front faces")
				}
			}
		})
	}
}
