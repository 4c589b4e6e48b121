package project

import (
	"context"
	"encoding/json"
	"fmt"

	"deltaeditor/internal/engine"
	"deltaeditor/internal/extensions"
	"deltaeditor/internal/log"
	"deltaeditor/internal/origin"
)

// Options tunes an export.
type Options struct {
	// EditorCamera names the viewport camera, which is never exported.
	EditorCamera string
}

// Export builds the delta document for everything the tracker marks as
// added. Interaction bindings are suspended for the duration of the walk and
// restored on every exit path. The result holds no live references.
func Export(ctx context.Context, scene *engine.Scene, tracker *origin.Tracker, registry *extensions.Registry, opts Options) (*Document, error) {
	if scene == nil {
		return nil, ErrNilScene
	}
	if tracker == nil {
		tracker = origin.NewTracker()
	}

	restore := scene.SuspendInteractions()
	defer restore()

	e := exporter{scene: scene, tracker: tracker, opts: opts, doc: NewDocument()}
	steps := []struct {
		name string
		run  func() error
	}{
		{"custom metadatas", func() error { return e.customMetadatas(registry) }},
		{"materials", e.materials},
		{"nodes", e.nodes},
		{"particle systems", e.particleSystems},
		{"shadow generators", e.shadowGenerators},
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := step.run(); err != nil {
			return nil, fmt.Errorf("export %s: %w", step.name, err)
		}
	}
	e.doc.PhysicsEnabled = scene.PhysicsEnabled()

	log.Debug(log.CatProject, "project exported",
		"nodes", len(e.doc.Nodes),
		"materials", len(e.doc.Materials),
		"particleSystems", len(e.doc.ParticleSystems),
		"shadowGenerators", len(e.doc.ShadowGenerators))
	return e.doc, nil
}

type exporter struct {
	scene   *engine.Scene
	tracker *origin.Tracker
	opts    Options
	doc     *Document
}

func (e *exporter) customMetadatas(registry *extensions.Registry) error {
	if registry == nil {
		return nil
	}
	metadatas, err := registry.Serialize()
	if err != nil {
		return err
	}
	e.doc.CustomMetadatas = metadatas
	return nil
}

func (e *exporter) materials() error {
	seen := make(map[string]bool)
	for _, m := range e.scene.Materials {
		if !e.tracker.IsAdded(m) {
			continue
		}
		data := m.Serialize()
		if seen[data.Name] {
			continue
		}
		seen[data.Name] = true

		names := []string{}
		for _, mesh := range e.scene.Meshes {
			if mesh.Material == m {
				names = append(names, mesh.Name)
			}
		}
		raw, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("material %q: %w", m.Name, err)
		}
		e.doc.Materials = append(e.doc.Materials, MaterialRecord{
			MeshesNames:      names,
			NewInstance:      true,
			SerializedValues: raw,
		})
	}
	return nil
}

func (e *exporter) nodes() error {
	for _, n := range e.scene.Nodes() {
		if n.Kind == engine.KindCamera && e.opts.EditorCamera != "" && n.Name == e.opts.EditorCamera {
			continue
		}
		rec, add, err := e.node(n)
		if err != nil {
			return fmt.Errorf("node %q: %w", n.Name, err)
		}
		if add {
			e.doc.Nodes = append(e.doc.Nodes, rec)
		}
	}
	if e.scene.ActionManager != nil && e.tracker.IsAdded(e.scene.ActionManager) {
		raw, err := json.Marshal(e.scene.ActionManager.Serialize(engine.SceneName))
		if err != nil {
			return fmt.Errorf("scene actions: %w", err)
		}
		e.doc.Actions = raw
	}
	return e.sceneAnimations()
}

// node builds the record for n and reports whether n carries any edit.
func (e *exporter) node(n *engine.Node) (NodeRecord, bool, error) {
	rec := NodeRecord{
		ID:         n.ID,
		Name:       n.Name,
		Type:       recordType(n),
		Animations: []AnimationRecord{},
	}
	// Placeholder emitters are exported bare and re-synthesized on import.
	add := e.tracker.IsSynthetic(n)

	if e.tracker.IsAdded(n) {
		add = true
		var v any
		if n.IsMesh() {
			v = engine.SerializeMesh(n)
		} else {
			v = n.Serialize()
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return rec, false, err
		}
		rec.SerializationObject = raw
	}

	anims, err := e.animations(n.Animations, n.Name)
	if err != nil {
		return rec, false, err
	}
	if len(anims) > 0 {
		add = true
		rec.Animations = anims
	}

	if n.IsMesh() && n.Impostor != nil && e.tracker.IsAdded(n.Impostor) {
		add = true
		rec.Physics = &PhysicsRecord{
			Mass:        n.Impostor.Param("mass"),
			Friction:    n.Impostor.Param("friction"),
			Restitution: n.Impostor.Param("restitution"),
			Impostor:    n.Impostor.Type,
		}
	}

	if n.ActionManager != nil && e.tracker.IsAdded(n.ActionManager) {
		add = true
		raw, err := json.Marshal(n.ActionManager.Serialize(n.Name))
		if err != nil {
			return rec, false, err
		}
		rec.Actions = raw
	}
	return rec, add, nil
}

func (e *exporter) animations(anims []*engine.Animation, target string) ([]AnimationRecord, error) {
	var out []AnimationRecord
	for _, a := range anims {
		if !e.tracker.IsAdded(a) {
			continue
		}
		raw, err := json.Marshal(a.Serialize())
		if err != nil {
			return nil, fmt.Errorf("animation %q: %w", a.Name, err)
		}
		out = append(out, AnimationRecord{
			Events:              []json.RawMessage{},
			SerializationObject: raw,
			TargetName:          target,
			TargetType:          "Node",
		})
	}
	return out, nil
}

// sceneAnimations emits a record named after the scene when the scene
// itself carries added animations. Import binds it back to the scene.
func (e *exporter) sceneAnimations() error {
	anims, err := e.animations(e.scene.Animations, engine.SceneName)
	if err != nil {
		return err
	}
	if len(anims) == 0 {
		return nil
	}
	e.doc.Nodes = append(e.doc.Nodes, NodeRecord{
		ID:         engine.SceneName,
		Name:       engine.SceneName,
		Type:       engine.SceneName,
		Animations: anims,
	})
	return nil
}

func (e *exporter) particleSystems() error {
	for _, ps := range e.scene.ParticleSystems {
		if !e.tracker.IsAdded(ps) {
			continue
		}
		rec := ParticleSystemRecord{}
		switch {
		case ps.EmitterNode == nil:
			rec.EmitterPosition = engine.Vec3Slice(ps.EmitterPosition)
		default:
			rec.HasEmitter = ps.EmitterNode.IsMesh() && !e.tracker.IsSynthetic(ps.EmitterNode)
			if !rec.HasEmitter {
				rec.EmitterPosition = engine.Vec3Slice(ps.EmitterNode.Transform.Position)
			}
		}
		raw, err := json.Marshal(ps.Serialize())
		if err != nil {
			return fmt.Errorf("particle system %q: %w", ps.Name, err)
		}
		rec.SerializationObject = raw
		e.doc.ParticleSystems = append(e.doc.ParticleSystems, rec)
	}
	return nil
}

func (e *exporter) shadowGenerators() error {
	for _, sg := range e.scene.ShadowGenerators() {
		if !e.tracker.IsAdded(sg) {
			continue
		}
		raw, err := json.Marshal(sg.Serialize())
		if err != nil {
			return fmt.Errorf("shadow generator of %q: %w", sg.Light.Name, err)
		}
		e.doc.ShadowGenerators = append(e.doc.ShadowGenerators, raw)
	}
	return nil
}
