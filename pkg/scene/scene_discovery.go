package scene

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownScene is returned for names that match no built-in scene
var ErrUnknownScene = errors.New("unknown scene")

// SceneInfo describes a built-in scene
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	Description string `json:"description"` // Optional description
	Type        string `json:"type"`        // Always "builtin"
}

type builtinScene struct {
	description string
	create      func() *Scene
}

var builtinScenes = map[string]builtinScene{
	"default": {
		description: "Ground with a diffuse sphere between two mirror spheres",
		create:      NewDefaultScene,
	},
	"fuzzy-metal": {
		description: "Brushed gold and silver spheres sharing materials",
		create:      NewFuzzyMetalScene,
	},
	"single": {
		description: "One grey diffuse sphere",
		create:      NewSingleSphereScene,
	},
}

// NewBuiltinScene creates a fresh instance of the named built-in scene
func NewBuiltinScene(name string) (*Scene, error) {
	builtin, ok := builtinScenes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScene, name)
	}
	return builtin.create(), nil
}

// ListBuiltinScenes returns the built-in scenes sorted by ID
func ListBuiltinScenes() []SceneInfo {
	scenes := make([]SceneInfo, 0, len(builtinScenes))
	for id, builtin := range builtinScenes {
		scenes = append(scenes, SceneInfo{
			ID:          id,
			Description: builtin.description,
			Type:        "builtin",
		})
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].ID < scenes[j].ID
	})

	return scenes
}
