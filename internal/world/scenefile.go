package world

import (
	"encoding/json"
	"fmt"
	"os"

	"deltaeditor/internal/engine"
	"deltaeditor/internal/log"
)

// --- JSON types ---

// SceneFile is the engine-native full scene: everything a base scene asset
// holds, in the order it has to be rebuilt.
type SceneFile struct {
	Name             string                       `json:"name"`
	Gravity          [3]float32                   `json:"gravity"`
	PhysicsEnabled   bool                         `json:"physicsEnabled"`
	Metadata         map[string]any               `json:"metadata,omitempty"`
	Geometries       []engine.GeometryData        `json:"geometries"`
	Materials        []engine.MaterialData        `json:"materials"`
	Meshes           []MeshDef                    `json:"meshes"`
	Lights           []LightDef                   `json:"lights"`
	Cameras          []CameraDef                  `json:"cameras"`
	ParticleSystems  []engine.ParticleSystemData  `json:"particleSystems"`
	ShadowGenerators []engine.ShadowGeneratorData `json:"shadowGenerators"`
	Animations       []engine.AnimationData       `json:"animations,omitempty"`
	Actions          *engine.ActionManagerData    `json:"actions,omitempty"`
}

// NodeExtras is what a node carries beyond its own serialization.
type NodeExtras struct {
	Animations []engine.AnimationData    `json:"animations,omitempty"`
	Actions    *engine.ActionManagerData `json:"actions,omitempty"`
	Physics    *PhysicsDef               `json:"physics,omitempty"`
	Scripts    []ScriptDef               `json:"scripts,omitempty"`
}

type MeshDef struct {
	engine.MeshData
	NodeExtras
}

type LightDef struct {
	engine.LightData
	NodeExtras
}

type CameraDef struct {
	engine.CameraData
	NodeExtras
}

type PhysicsDef struct {
	Impostor    int     `json:"impostor"`
	Mass        float32 `json:"mass"`
	Friction    float32 `json:"friction"`
	Restitution float32 `json:"restitution"`
}

type ScriptDef struct {
	Name  string         `json:"name"`
	Props map[string]any `json:"props,omitempty"`
}

// --- Loading ---

// LoadScene reads a scene file and builds the live scene. Texture names
// resolve against rootURL.
func LoadScene(path, rootURL string) (*engine.Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}

	var sf SceneFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	return Build(sf, rootURL)
}

// Build turns a decoded scene file into a live scene.
func Build(sf SceneFile, rootURL string) (*engine.Scene, error) {
	scene := engine.NewScene(sf.Name)
	if sf.Gravity != [3]float32{} {
		scene.Gravity = engine.Vec3(sf.Gravity)
	}
	if sf.PhysicsEnabled {
		scene.EnablePhysics(scene.Gravity)
	}
	scene.Metadata = sf.Metadata

	for _, g := range sf.Geometries {
		engine.ParseGeometry(g, scene)
	}
	for _, m := range sf.Materials {
		engine.ParseMaterial(m, scene, rootURL)
	}

	type pending struct {
		node   *engine.Node
		extras NodeExtras
	}
	var nodes []pending
	for _, def := range sf.Meshes {
		nodes = append(nodes, pending{engine.ParseMesh(def.MeshData, scene, rootURL), def.NodeExtras})
	}
	for _, def := range sf.Lights {
		nodes = append(nodes, pending{engine.ParseLight(def.LightData, scene), def.NodeExtras})
	}
	for _, def := range sf.Cameras {
		nodes = append(nodes, pending{engine.ParseCamera(def.CameraData, scene), def.NodeExtras})
	}
	for _, n := range scene.ResolvePendingParents() {
		log.Warn(log.CatWorld, "parent not found", "node", n.Name, "parent", n.ParentID)
	}

	for _, p := range nodes {
		if err := loadExtras(p.node, p.extras, scene); err != nil {
			return nil, fmt.Errorf("node %q: %w", p.node.Name, err)
		}
	}

	for _, ps := range sf.ParticleSystems {
		engine.ParseParticleSystem(ps, scene, rootURL)
	}
	for _, sg := range sf.ShadowGenerators {
		if _, ok := engine.ParseShadowGenerator(sg, scene); !ok {
			log.Warn(log.CatWorld, "shadow generator light not found", "light", sg.LightID)
		}
	}
	for _, a := range sf.Animations {
		scene.Animations = append(scene.Animations, engine.ParseAnimation(a))
	}
	if sf.Actions != nil {
		engine.ParseActionManager(*sf.Actions, nil, scene)
	}

	log.Debug(log.CatWorld, "scene built",
		"name", sf.Name,
		"meshes", len(scene.Meshes),
		"lights", len(scene.Lights),
		"cameras", len(scene.Cameras))
	return scene, nil
}

func loadExtras(n *engine.Node, x NodeExtras, scene *engine.Scene) error {
	for _, a := range x.Animations {
		n.AddAnimation(engine.ParseAnimation(a))
	}
	if x.Actions != nil {
		engine.ParseActionManager(*x.Actions, n, scene)
	}
	if x.Physics != nil {
		_, err := engine.NewPhysicsImpostor(n, x.Physics.Impostor, engine.ImpostorParams{
			Mass:        x.Physics.Mass,
			Friction:    x.Physics.Friction,
			Restitution: x.Physics.Restitution,
		}, scene)
		if err != nil {
			return err
		}
	}
	for _, s := range x.Scripts {
		if comp := engine.CreateScript(s.Name, s.Props); comp != nil {
			n.AddComponent(comp)
		} else {
			log.Warn(log.CatWorld, "unknown script", "node", n.Name, "script", s.Name)
		}
	}
	return nil
}

// --- Saving ---

// Keep decides whether an entity is written. A nil Keep writes everything.
type Keep func(e engine.Entity) bool

// SaveScene writes scene to path, leaving out every entity keep rejects.
func SaveScene(path string, scene *engine.Scene, keep Keep) error {
	data, err := json.MarshalIndent(Flatten(scene, keep), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal scene: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write scene: %w", err)
	}

	return nil
}

// Flatten converts a live scene into its file form.
func Flatten(scene *engine.Scene, keep Keep) SceneFile {
	if keep == nil {
		keep = func(engine.Entity) bool { return true }
	}
	sf := SceneFile{
		Name:             scene.Name,
		Gravity:          engine.Vec3Array(scene.Gravity),
		PhysicsEnabled:   scene.PhysicsEnabled(),
		Metadata:         scene.Metadata,
		Geometries:       []engine.GeometryData{},
		Materials:        []engine.MaterialData{},
		Meshes:           []MeshDef{},
		Lights:           []LightDef{},
		Cameras:          []CameraDef{},
		ParticleSystems:  []engine.ParticleSystemData{},
		ShadowGenerators: []engine.ShadowGeneratorData{},
	}

	used := make(map[string]bool)
	for _, n := range scene.Meshes {
		if !keep(n) {
			continue
		}
		sf.Meshes = append(sf.Meshes, MeshDef{n.MeshData(), extras(n, keep)})
		if n.Geometry != nil {
			used[n.Geometry.ID] = true
		}
	}
	for _, g := range scene.Geometries {
		if used[g.ID] {
			sf.Geometries = append(sf.Geometries, g.Serialize())
		}
	}
	for _, m := range scene.Materials {
		if keep(m) {
			sf.Materials = append(sf.Materials, m.Serialize())
		}
	}
	for _, n := range scene.Lights {
		if keep(n) {
			sf.Lights = append(sf.Lights, LightDef{n.LightData(), extras(n, keep)})
		}
	}
	for _, n := range scene.Cameras {
		if keep(n) {
			sf.Cameras = append(sf.Cameras, CameraDef{n.CameraData(), extras(n, keep)})
		}
	}
	for _, ps := range scene.ParticleSystems {
		if keep(ps) {
			sf.ParticleSystems = append(sf.ParticleSystems, ps.Serialize())
		}
	}
	for _, sg := range scene.ShadowGenerators() {
		if keep(sg) && keep(sg.Light) {
			sf.ShadowGenerators = append(sf.ShadowGenerators, sg.Serialize())
		}
	}
	for _, a := range scene.Animations {
		if keep(a) {
			sf.Animations = append(sf.Animations, a.Serialize())
		}
	}
	if am := scene.ActionManager; am != nil && keep(am) {
		data := am.Serialize(engine.SceneName)
		sf.Actions = &data
	}
	return sf
}

func extras(n *engine.Node, keep Keep) NodeExtras {
	var x NodeExtras
	for _, a := range n.Animations {
		if keep(a) {
			x.Animations = append(x.Animations, a.Serialize())
		}
	}
	if am := n.ActionManager; am != nil && keep(am) {
		data := am.Serialize(n.Name)
		x.Actions = &data
	}
	if p := n.Impostor; p != nil && keep(p) {
		x.Physics = &PhysicsDef{
			Impostor:    p.Type,
			Mass:        p.Params.Mass,
			Friction:    p.Params.Friction,
			Restitution: p.Params.Restitution,
		}
	}
	for _, c := range n.Components() {
		if n.IsManaged(c) {
			continue
		}
		if name, props, ok := engine.SerializeScript(c); ok {
			x.Scripts = append(x.Scripts, ScriptDef{Name: name, Props: props})
		}
	}
	return x
}
