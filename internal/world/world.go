// Package world loads and saves base scene assets and runs their scripts.
package world

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"path/filepath"

	rl "github.com/gen2brain/raylib-go/raylib"

	"deltaeditor/internal/engine"
	"deltaeditor/internal/scripts"
)

// FloorSize is the edge length of the demo scene's ground plane.
const FloorSize = 60.0

type World struct {
	Scene *engine.Scene
	// Path is the scene file the world was loaded from, if any.
	Path string

	snapshot []byte
}

func New(name string) *World {
	return &World{Scene: engine.NewScene(name)}
}

// Load reads the scene file at path. Textures resolve next to it.
func Load(path string) (*World, error) {
	scene, err := LoadScene(path, filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	return &World{Scene: scene, Path: path}, nil
}

// Snapshot records the current scene in memory. Reload falls back to it
// while the world has no Path.
func (w *World) Snapshot() error {
	data, err := json.Marshal(Flatten(w.Scene, nil))
	if err != nil {
		return fmt.Errorf("snapshot scene: %w", err)
	}
	w.snapshot = data
	return nil
}

// Reload replaces the scene with a fresh copy from Path, or from the last
// Snapshot when there is no Path.
func (w *World) Reload() error {
	if w.Path == "" {
		return w.restoreSnapshot()
	}
	scene, err := LoadScene(w.Path, filepath.Dir(w.Path))
	if err != nil {
		return err
	}
	w.Scene = scene
	return nil
}

func (w *World) restoreSnapshot() error {
	if w.snapshot == nil {
		return fmt.Errorf("reload: world has no file and no snapshot")
	}
	var sf SceneFile
	if err := json.Unmarshal(w.snapshot, &sf); err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}
	scene, err := Build(sf, "")
	if err != nil {
		return err
	}
	w.Scene = scene
	return nil
}

// Save writes the scene to path, keeping only entities keep accepts.
func (w *World) Save(path string, keep Keep) error {
	if err := SaveScene(path, w.Scene, keep); err != nil {
		return err
	}
	w.Path = path
	return nil
}

func (w *World) Start() {
	w.Scene.Start()
}

func (w *World) Update(deltaTime float32) {
	w.Scene.Update(deltaTime)
}

// NewDemo builds a base scene: a floor, a sun, the editor and main cameras,
// and numCubes animated cubes on a ring. The same seed gives the same scene.
func NewDemo(numCubes int, seed int64) *World {
	w := New("Main")
	scene := w.Scene
	rng := rand.New(rand.NewSource(seed))

	floorGeo := engine.NewBoxGeometry("floor-geo", 1)
	scene.AddGeometry(floorGeo)
	floor := engine.NewMesh("floor", "Floor")
	floor.Geometry = floorGeo
	floor.Transform.Scale = rl.Vector3{X: FloorSize, Y: 0.1, Z: FloorSize}
	floorMat := engine.NewMaterial("floor-mat", "Floor")
	floorMat.Diffuse = rl.LightGray
	scene.AddMaterial(floorMat)
	floor.Material = floorMat
	scene.AddNode(floor)

	sun := engine.NewLight("sun", "Sun", "directional")
	sun.Light.Direction = rl.Vector3Normalize(rl.Vector3{X: 0.35, Y: -1.0, Z: -0.35})
	scene.AddNode(sun)

	editorCam := engine.NewCamera("editor-camera", "EditorCamera")
	editorCam.Transform.Position = rl.Vector3{X: 0, Y: 10, Z: -20}
	scene.AddNode(editorCam)
	main := engine.NewCamera("main-camera", "Main")
	main.Transform.Position = rl.Vector3{X: 0, Y: 5, Z: -15}
	scene.AddNode(main)

	colors := []rl.Color{
		rl.Red, rl.Blue, rl.Green, rl.Purple, rl.Orange,
		rl.Yellow, rl.Pink, rl.SkyBlue, rl.Lime, rl.Magenta,
	}
	cubeGeo := engine.NewBoxGeometry("cube-geo", 1.5)
	scene.AddGeometry(cubeGeo)

	for i := range numCubes {
		angle := float32(i) * (2 * math.Pi / float32(numCubes))
		radius := float32(8 + rng.Float64()*5)

		cube := engine.NewMesh(fmt.Sprintf("cube-%d", i), fmt.Sprintf("Cube_%d", i))
		cube.Geometry = cubeGeo
		cube.Transform.Position = rl.Vector3{
			X: float32(math.Cos(float64(angle))) * radius,
			Y: float32(2 + rng.Float64()*3),
			Z: float32(math.Sin(float64(angle))) * radius,
		}

		color := colors[i%len(colors)]
		mat := engine.NewMaterial(fmt.Sprintf("cube-mat-%d", i), engine.ColorName(color))
		mat.Diffuse = color
		scene.AddMaterial(mat)
		cube.Material = mat

		cube.AddComponent(&scripts.CubeAnimator{
			RotationSpeed:  float32(30 + rng.Float64()*60),
			MovementRadius: float32(2 + rng.Float64()*3),
			MovementSpeed:  float32(0.5 + rng.Float64()*1.5),
			Phase:          float32(rng.Float64() * 2 * math.Pi),
		})
		scene.AddNode(cube)
	}
	return w
}
