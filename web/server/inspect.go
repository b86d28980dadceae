package server

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/Ryan-Ardito/raytracer/pkg/geometry"
	"github.com/Ryan-Ardito/raytracer/pkg/integrator"
	"github.com/Ryan-Ardito/raytracer/pkg/material"
	"github.com/Ryan-Ardito/raytracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	MaterialType string                 `json:"materialType,omitempty"`
	GeometryType string                 `json:"geometryType,omitempty"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	FrontFace    bool                   `json:"frontFace"`
	Properties   map[string]interface{} `json:"properties,omitempty"`
}

// InspectResult contains the hit found by an inspection ray
type InspectResult struct {
	Hit       bool
	HitRecord *material.HitRecord
	Object    geometry.Hittable // The world object that was hit, nil if it could not be identified
}

// extractMaterialInfo describes a material
func extractMaterialInfo(mat material.Material) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch m := mat.(type) {
	case *material.Lambertian:
		properties["albedo"] = [3]float64{m.Albedo.X, m.Albedo.Y, m.Albedo.Z}
		properties["color"] = hexColor(m.Albedo.X, m.Albedo.Y, m.Albedo.Z)
		return "lambertian", properties

	case *material.Metal:
		properties["albedo"] = [3]float64{m.Albedo.X, m.Albedo.Y, m.Albedo.Z}
		properties["color"] = hexColor(m.Albedo.X, m.Albedo.Y, m.Albedo.Z)
		properties["fuzz"] = m.Fuzz
		return "metal", properties

	default:
		return "unknown", properties
	}
}

// extractGeometryInfo describes a world object
func extractGeometryInfo(object geometry.Hittable) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch geom := object.(type) {
	case *geometry.Sphere:
		properties["center"] = [3]float64{geom.Center.X, geom.Center.Y, geom.Center.Z}
		properties["radius"] = geom.Radius
		return "sphere", properties

	case *geometry.HittableList:
		properties["objectCount"] = geom.Len()
		return "list", properties

	default:
		return "unknown", properties
	}
}

func hexColor(r, g, b float64) string {
	channel := func(x float64) int {
		return int(255 * math.Max(0, math.Min(1, x)))
	}
	return fmt.Sprintf("#%02x%02x%02x", channel(r), channel(g), channel(b))
}

// inspectPixel casts a ray through the center of pixel (pixelX, pixelY), with
// y counted from the top row, and returns the first object hit
func inspectPixel(sceneObj *scene.Scene, pixelX, pixelY int) InspectResult {
	cfg := sceneObj.SamplingConfig
	camera := sceneObj.GetCamera()

	// Image rows run top-down, camera v runs bottom-up
	j := cfg.Height - 1 - pixelY
	u := (float64(pixelX) + 0.5) / float64(cfg.Width-1)
	v := (float64(j) + 0.5) / float64(cfg.Height-1)
	ray := camera.GetRay(u, v)

	hit, isHit := sceneObj.World.Hit(ray, integrator.ShadowAcneEpsilon, math.Inf(1))
	if !isHit {
		return InspectResult{Hit: false}
	}

	// The list doesn't say which object produced the hit, so find the one at the same distance
	for _, object := range sceneObj.World.Objects {
		if objectHit, ok := object.Hit(ray, integrator.ShadowAcneEpsilon, hit.T+integrator.ShadowAcneEpsilon); ok && objectHit.T == hit.T {
			return InspectResult{Hit: true, HitRecord: hit, Object: object}
		}
	}

	return InspectResult{Hit: true, HitRecord: hit}
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseStreamRequest(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid scene parameters: "+err.Error())
		return
	}

	sceneObj, err := s.createScene(req)
	if err != nil {
		writeJSONError(w, statusForError(err), err.Error())
		return
	}

	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid x coordinate")
		return
	}
	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid y coordinate")
		return
	}

	cfg := sceneObj.SamplingConfig
	if pixelX < 0 || pixelX >= cfg.Width || pixelY < 0 || pixelY >= cfg.Height {
		writeJSONError(w, http.StatusBadRequest, "Pixel coordinates out of bounds")
		return
	}

	result := inspectPixel(sceneObj, pixelX, pixelY)
	if !result.Hit {
		writeJSON(w, http.StatusOK, InspectResponse{Hit: false})
		return
	}

	materialType, materialProps := extractMaterialInfo(result.HitRecord.Material)
	geometryType, geometryProps := extractGeometryInfo(result.Object)

	hit := result.HitRecord
	writeJSON(w, http.StatusOK, InspectResponse{
		Hit:          true,
		MaterialType: materialType,
		GeometryType: geometryType,
		Point:        [3]float64{hit.Point.X, hit.Point.Y, hit.Point.Z},
		Normal:       [3]float64{hit.Normal.X, hit.Normal.Y, hit.Normal.Z},
		Distance:     hit.T,
		FrontFace:    hit.FrontFace,
		Properties: map[string]interface{}{
			"material": materialProps,
			"geometry": geometryProps,
		},
	})
}
