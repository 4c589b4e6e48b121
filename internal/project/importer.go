package project

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"deltaeditor/internal/engine"
	"deltaeditor/internal/extensions"
	"deltaeditor/internal/log"
	"deltaeditor/internal/origin"
)

// ImportOptions tunes an import.
type ImportOptions struct {
	// RootURL is the directory texture names are resolved against.
	RootURL string
}

// Report summarizes what an import created and what it had to skip.
type Report struct {
	Nodes            int
	Animations       int
	ActionManagers   int
	Impostors        int
	ParticleSystems  int
	Materials        int
	ShadowGenerators int
	Extensions       int
	Synthesized      int
	Unresolved       []string
}

func (r *Report) skip(kind, name string) {
	r.Unresolved = append(r.Unresolved, kind+" "+name)
	log.Debug(log.CatProject, "skipping unresolved reference", "kind", kind, "name", name)
}

// Import layers doc onto scene, which must already hold the base scene.
//
// Node records are validated and every payload is decoded before anything
// changes, so an unknown record type (*UnknownNodeTypeError) or malformed
// JSON leaves the scene untouched. Every reference that cannot be resolved
// is skipped and listed in the report. A done ctx stops the import between
// steps, after the earlier steps have applied. Extension data is only
// loaded; the caller applies it with Registry.ApplyExtensions once the
// scene is ready.
func Import(ctx context.Context, scene *engine.Scene, doc *Document, tracker *origin.Tracker, registry *extensions.Registry, opts ImportOptions) (*Report, error) {
	if scene == nil {
		return nil, ErrNilScene
	}
	if doc == nil {
		return nil, ErrNilDocument
	}
	if tracker == nil {
		tracker = origin.NewTracker()
	}
	doc.Normalize()
	if err := validate(doc); err != nil {
		return nil, err
	}

	im := importer{
		scene:    scene,
		doc:      doc,
		tracker:  tracker,
		registry: registry,
		rootURL:  opts.RootURL,
		report:   &Report{},
	}
	if err := im.decode(); err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}

	if !scene.PhysicsEnabled() {
		scene.EnablePhysics(scene.Gravity)
	}

	steps := []struct {
		name string
		run  func() error
	}{
		{"nodes", im.nodes},
		{"parents", im.parents},
		{"particle systems", im.particleSystems},
		{"materials", im.materials},
		{"shadow generators", im.shadowGenerators},
		{"scene actions", im.sceneActions},
		{"custom metadatas", im.customMetadatas},
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return im.report, err
		}
		if err := step.run(); err != nil {
			return im.report, fmt.Errorf("import %s: %w", step.name, err)
		}
	}

	for _, m := range scene.Materials {
		m.MaxSimultaneousLights = len(scene.Lights) * 2
	}

	log.Info(log.CatProject, "project imported",
		"nodes", im.report.Nodes,
		"materials", im.report.Materials,
		"particleSystems", im.report.ParticleSystems,
		"unresolved", len(im.report.Unresolved))
	return im.report, nil
}

func validate(doc *Document) error {
	for i, rec := range doc.Nodes {
		switch rec.Type {
		case TypeMesh, TypeLight, TypeCamera, engine.SceneName:
		default:
			return &UnknownNodeTypeError{Index: i, ID: rec.ID, Name: rec.Name, Type: rec.Type}
		}
	}
	return nil
}

type importer struct {
	scene    *engine.Scene
	doc      *Document
	tracker  *origin.Tracker
	registry *extensions.Registry
	rootURL  string
	report   *Report

	// Decoded payloads, index-aligned with the document's collections.
	// A nil entry had a null payload.
	nodeData     []nodeData
	systems      []*engine.ParticleSystemData
	materialData []*engine.MaterialData
	shadowData   []engine.ShadowGeneratorData
	sceneActs    *engine.ActionManagerData
}

// nodeData is a node record's decoded payloads.
type nodeData struct {
	mesh    *engine.MeshSerialization
	light   *engine.LightData
	camera  *engine.CameraData
	actions *engine.ActionManagerData
	anims   []engine.AnimationData
}

func (d nodeData) hasObject() bool {
	return d.mesh != nil || d.light != nil || d.camera != nil
}

// decode unmarshals every payload of the document.
func (im *importer) decode() error {
	doc := im.doc
	im.nodeData = make([]nodeData, len(doc.Nodes))
	for i, rec := range doc.Nodes {
		if err := decodeNode(rec, &im.nodeData[i]); err != nil {
			return fmt.Errorf("node %q: %w", rec.Name, err)
		}
	}

	im.systems = make([]*engine.ParticleSystemData, len(doc.ParticleSystems))
	for i, rec := range doc.ParticleSystems {
		if extensions.IsNull(rec.SerializationObject) {
			continue
		}
		var data engine.ParticleSystemData
		if err := json.Unmarshal(rec.SerializationObject, &data); err != nil {
			return fmt.Errorf("particle system record %d: %w", i, err)
		}
		im.systems[i] = &data
	}

	im.materialData = make([]*engine.MaterialData, len(doc.Materials))
	for i, rec := range doc.Materials {
		if extensions.IsNull(rec.SerializedValues) {
			continue
		}
		var data engine.MaterialData
		if err := json.Unmarshal(rec.SerializedValues, &data); err != nil {
			return fmt.Errorf("material record %d: %w", i, err)
		}
		im.materialData[i] = &data
	}

	im.shadowData = make([]engine.ShadowGeneratorData, len(doc.ShadowGenerators))
	for i, raw := range doc.ShadowGenerators {
		if err := json.Unmarshal(raw, &im.shadowData[i]); err != nil {
			return fmt.Errorf("shadow generator record %d: %w", i, err)
		}
	}

	if !extensions.IsNull(doc.Actions) {
		im.sceneActs = &engine.ActionManagerData{}
		if err := json.Unmarshal(doc.Actions, im.sceneActs); err != nil {
			return fmt.Errorf("scene actions: %w", err)
		}
	}
	return nil
}

func decodeNode(rec NodeRecord, d *nodeData) error {
	for _, a := range rec.Animations {
		if extensions.IsNull(a.SerializationObject) {
			continue
		}
		var data engine.AnimationData
		if err := json.Unmarshal(a.SerializationObject, &data); err != nil {
			return fmt.Errorf("animation: %w", err)
		}
		d.anims = append(d.anims, data)
	}
	if !extensions.IsNull(rec.Actions) {
		d.actions = &engine.ActionManagerData{}
		if err := json.Unmarshal(rec.Actions, d.actions); err != nil {
			return fmt.Errorf("actions: %w", err)
		}
	}
	if extensions.IsNull(rec.SerializationObject) {
		return nil
	}
	var err error
	switch rec.Type {
	case TypeMesh:
		d.mesh = &engine.MeshSerialization{}
		err = json.Unmarshal(rec.SerializationObject, d.mesh)
	case TypeLight:
		d.light = &engine.LightData{}
		err = json.Unmarshal(rec.SerializationObject, d.light)
	case TypeCamera:
		d.camera = &engine.CameraData{}
		err = json.Unmarshal(rec.SerializationObject, d.camera)
	}
	if err != nil {
		return fmt.Errorf("serialization object: %w", err)
	}
	return nil
}

// nodes is the first pass: create or find every node a record names and
// attach its animations, actions and physics. A record of type Scene binds
// to the scene itself.
func (im *importer) nodes() error {
	for i, rec := range im.doc.Nodes {
		d := im.nodeData[i]
		if rec.Type == engine.SceneName {
			im.animations(d.anims, &im.scene.Animations)
			continue
		}

		var node *engine.Node
		if d.hasObject() {
			node = im.parseNode(d)
		} else {
			node = im.scene.NodeByName(rec.Name)
		}
		if node == nil {
			node = im.synthesizeEmitter(rec.ID, rec.Name)
		}
		if node == nil {
			im.report.skip("node", rec.Name)
			continue
		}

		im.animations(d.anims, &node.Animations)
		if !node.IsMesh() {
			continue
		}
		if d.actions != nil {
			im.tracker.MarkAdded(engine.ParseActionManager(*d.actions, node, im.scene))
			im.report.ActionManagers++
		}
		if rec.Physics != nil {
			impostor, err := engine.NewPhysicsImpostor(node, rec.Physics.Impostor, engine.ImpostorParams{
				Mass:        rec.Physics.Mass,
				Friction:    rec.Physics.Friction,
				Restitution: rec.Physics.Restitution,
			}, im.scene)
			if err != nil {
				return fmt.Errorf("node %q physics: %w", rec.Name, err)
			}
			im.tracker.MarkAdded(impostor)
			im.report.Impostors++
		}
	}
	return nil
}

func (im *importer) parseNode(d nodeData) *engine.Node {
	var node *engine.Node
	switch {
	case d.mesh != nil:
		if d.mesh.Geometries != nil {
			for _, g := range d.mesh.Geometries.VertexData {
				engine.ParseGeometry(g, im.scene)
			}
		}
		for _, m := range d.mesh.Meshes {
			node = engine.ParseMesh(m, im.scene, im.rootURL)
			im.tracker.MarkAdded(node)
			im.report.Nodes++
		}
		return node
	case d.light != nil:
		node = engine.ParseLight(*d.light, im.scene)
	default:
		node = engine.ParseCamera(*d.camera, im.scene)
	}
	im.tracker.MarkAdded(node)
	im.report.Nodes++
	return node
}

// synthesizeEmitter creates the placeholder mesh of a particle system
// recorded without a real emitter, when that system's emitter id is id.
func (im *importer) synthesizeEmitter(id, name string) *engine.Node {
	if id == "" {
		return nil
	}
	for i, rec := range im.doc.ParticleSystems {
		data := im.systems[i]
		if rec.HasEmitter || data == nil || data.EmitterID != id {
			continue
		}
		n := engine.NewMesh(id, name)
		im.scene.AddNode(n)
		im.tracker.Mark(n, origin.SyntheticEmitter)
		im.report.Synthesized++
		log.Debug(log.CatProject, "synthesized particle emitter", "id", id, "name", name)
		return n
	}
	return nil
}

func (im *importer) animations(anims []engine.AnimationData, dst *[]*engine.Animation) {
	for _, data := range anims {
		a := engine.ParseAnimation(data)
		im.tracker.MarkAdded(a)
		*dst = append(*dst, a)
		im.report.Animations++
	}
}

// parents is the second pass over nodes: links that had to wait for their
// parent, and geometry that was registered after its mesh.
func (im *importer) parents() error {
	for _, n := range im.scene.ResolvePendingParents() {
		im.report.skip("parent", n.ParentID)
	}
	for _, n := range im.scene.Meshes {
		if n.Geometry == nil && n.GeometryID != "" {
			n.Geometry = im.scene.GeometryByID(n.GeometryID)
		}
	}
	return nil
}

func (im *importer) particleSystems() error {
	for i, rec := range im.doc.ParticleSystems {
		data := im.systems[i]
		if data == nil {
			im.report.skip("particle system", fmt.Sprintf("#%d", i))
			continue
		}
		if !rec.HasEmitter && data.EmitterID != "" && im.scene.NodeByID(data.EmitterID) == nil {
			im.synthesizeEmitter(data.EmitterID, data.Name)
		}

		ps := engine.ParseParticleSystem(*data, im.scene, im.rootURL)
		if rec.HasEmitter && ps.EmitterNode == nil {
			im.report.skip("emitter", data.EmitterID)
			if len(rec.EmitterPosition) == 3 {
				ps.EmitterPosition = engine.Vec3([3]float32(rec.EmitterPosition))
			}
		}
		if !rec.HasEmitter && ps.EmitterNode != nil && len(rec.EmitterPosition) == 3 {
			ps.EmitterNode.Transform.Position = engine.Vec3([3]float32(rec.EmitterPosition))
		}
		im.tracker.MarkAdded(ps)
		im.report.ParticleSystems++
	}
	return nil
}

func (im *importer) materials() error {
	for i, rec := range im.doc.Materials {
		data := im.materialData[i]
		if data == nil {
			im.report.skip("material", fmt.Sprintf("#%d", i))
			continue
		}
		m := engine.ParseMaterial(*data, im.scene, im.rootURL)
		for _, name := range rec.MeshesNames {
			mesh := im.scene.MeshByName(name)
			if mesh == nil {
				im.report.skip("mesh", name)
				continue
			}
			mesh.Material = m
		}
		im.tracker.MarkAdded(m)
		im.report.Materials++
	}
	return nil
}

func (im *importer) shadowGenerators() error {
	for _, data := range im.shadowData {
		sg, ok := engine.ParseShadowGenerator(data, im.scene)
		if !ok {
			im.report.skip("light", data.LightID)
			continue
		}
		im.tracker.MarkAdded(sg)
		im.report.ShadowGenerators++
	}
	return nil
}

func (im *importer) sceneActions() error {
	if im.sceneActs == nil {
		return nil
	}
	im.tracker.MarkAdded(engine.ParseActionManager(*im.sceneActs, nil, im.scene))
	im.report.ActionManagers++
	return nil
}

// customMetadatas hands each entry to its extension's OnLoad. Entries no
// extension claims are retained so the next export writes them back.
func (im *importer) customMetadatas() error {
	if im.registry == nil {
		return nil
	}
	im.registry.Reset()
	for _, name := range slices.Sorted(maps.Keys(im.doc.CustomMetadatas)) {
		data := im.doc.CustomMetadatas[name]
		ext := im.registry.RequestExtension(im.scene, name)
		if ext == nil {
			im.registry.Retain(name, data)
			im.report.skip("extension", name)
			continue
		}
		if err := ext.OnLoad(data); err != nil {
			log.ErrorErr(log.CatExt, "extension load failed", err, "name", name)
			im.report.skip("extension", name)
			continue
		}
		im.report.Extensions++
	}
	return nil
}
