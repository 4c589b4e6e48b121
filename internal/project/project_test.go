package project

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deltaeditor/internal/engine"
	"deltaeditor/internal/extensions"
	"deltaeditor/internal/extensions/notes"
	"deltaeditor/internal/origin"
)

// baseScene builds the scene a base asset would load: nothing in it is tracked.
func baseScene() *engine.Scene {
	scene := engine.NewScene("Base")
	ground := engine.NewMesh("ground", "Ground")
	ground.Geometry = engine.NewBoxGeometry("ground-geo", 10)
	scene.AddGeometry(ground.Geometry)
	stone := engine.NewMaterial("stone", "Stone")
	scene.AddMaterial(stone)
	ground.Material = stone
	scene.AddNode(ground)
	scene.AddNode(engine.NewLight("sun", "Sun", "directional"))
	scene.AddNode(engine.NewCamera("editor-cam", "EditorCamera"))
	scene.AddNode(engine.NewCamera("main-cam", "Main"))
	return scene
}

func newRegistry() *extensions.Registry {
	r := extensions.NewRegistry()
	r.Register(notes.Name, notes.New)
	return r
}

type session struct {
	scene    *engine.Scene
	tracker  *origin.Tracker
	registry *extensions.Registry
}

// editedSession applies one edit of every kind on top of the base scene.
func editedSession(t *testing.T) session {
	t.Helper()
	s := session{scene: baseScene(), tracker: origin.NewTracker(), registry: newRegistry()}
	scene, tr := s.scene, s.tracker
	ground := scene.NodeByID("ground")

	crate := engine.NewMesh("crate", "Crate")
	crate.Geometry = engine.NewBoxGeometry("crate-geo", 1)
	scene.AddGeometry(crate.Geometry)
	crate.Transform.Position = rl.Vector3{X: 2, Y: 0.5, Z: -1}
	scene.AddNode(crate)
	ground.AddChild(crate)
	tr.MarkAdded(crate)

	wood := engine.NewMaterial("wood", "Wood")
	scene.AddMaterial(wood)
	crate.Material = wood
	tr.MarkAdded(wood)

	am := engine.NewActionManager(scene, crate)
	am.Register(engine.Action{Trigger: engine.TriggerPick, Kind: engine.ActionSetEnabled, Value: []float32{0}})
	tr.MarkAdded(am)

	lamp := engine.NewLight("lamp", "Lamp", "point")
	lamp.Light.Intensity = 3
	scene.AddNode(lamp)
	tr.MarkAdded(lamp)
	sg := engine.NewShadowGenerator(1024, lamp)
	sg.AddShadowCaster(crate)
	tr.MarkAdded(sg)

	bob := engine.NewAnimation("bob", "position.y", 30, engine.AnimationFloat, engine.LoopCycle)
	bob.SetKeys([]engine.AnimationKey{{Frame: 0, Values: []float32{0}}, {Frame: 30, Values: []float32{1}}})
	ground.AddAnimation(bob)
	tr.MarkAdded(bob)

	scene.EnablePhysics(scene.Gravity)
	impostor, err := engine.NewPhysicsImpostor(ground, engine.BoxImpostor, engine.ImpostorParams{Mass: 0, Friction: 0.8, Restitution: 0.1}, scene)
	require.NoError(t, err)
	tr.MarkAdded(impostor)

	placeholder := engine.NewMesh("sparks-emitter", "Sparks emitter")
	placeholder.Transform.Position = rl.Vector3{X: 1, Y: 2, Z: 3}
	scene.AddNode(placeholder)
	tr.Mark(placeholder, origin.SyntheticEmitter)
	sparks := engine.NewParticleSystem("sparks", "Sparks", 200)
	sparks.SetEmitterNode(placeholder)
	scene.AddParticleSystem(sparks)
	tr.MarkAdded(sparks)

	smoke := engine.NewParticleSystem("smoke", "Smoke", 50)
	smoke.EmitterPosition = rl.Vector3{X: -4, Y: 0, Z: 4}
	scene.AddParticleSystem(smoke)
	tr.MarkAdded(smoke)

	dust := engine.NewParticleSystem("dust", "Dust", 20)
	dust.SetEmitterNode(crate)
	scene.AddParticleSystem(dust)
	tr.MarkAdded(dust)

	sceneActions := engine.NewActionManager(scene, nil)
	sceneActions.Register(engine.Action{Trigger: engine.TriggerEveryFrame, Kind: engine.ActionTranslate, Target: "crate", Value: []float32{0, 0.1, 0}})
	tr.MarkAdded(sceneActions)

	notes.Set(scene, "remember the crate")
	require.NotNil(t, s.registry.RequestExtension(scene, notes.Name))
	return s
}

func export(t *testing.T, s session) *Document {
	t.Helper()
	doc, err := Export(context.Background(), s.scene, s.tracker, s.registry, Options{EditorCamera: "EditorCamera"})
	require.NoError(t, err)
	return doc
}

func reload(t *testing.T, doc *Document) *Document {
	t.Helper()
	data, err := Marshal(doc, true)
	require.NoError(t, err)
	out, err := Unmarshal(data)
	require.NoError(t, err)
	return out
}

func TestExportContents(t *testing.T) {
	doc := export(t, editedSession(t))

	names := make(map[string]NodeRecord)
	for _, rec := range doc.Nodes {
		names[rec.Name] = rec
	}
	require.Len(t, names, 4)

	ground := names["Ground"]
	assert.Nil(t, ground.SerializationObject, "base nodes carry only their edits")
	assert.Len(t, ground.Animations, 1)
	assert.Equal(t, "Node", ground.Animations[0].TargetType)
	require.NotNil(t, ground.Physics)
	assert.Equal(t, engine.BoxImpostor, ground.Physics.Impostor)
	assert.InDelta(t, 0.8, ground.Physics.Friction, 1e-6)

	crate := names["Crate"]
	assert.Equal(t, TypeMesh, crate.Type)
	assert.NotNil(t, crate.SerializationObject)
	assert.NotNil(t, crate.Actions)

	emitter := names["Sparks emitter"]
	assert.Nil(t, emitter.SerializationObject)

	assert.Equal(t, TypeLight, names["Lamp"].Type)
	assert.NotContains(t, names, "Sun")
	assert.NotContains(t, names, "EditorCamera")

	require.Len(t, doc.Materials, 1)
	assert.Equal(t, []string{"Crate"}, doc.Materials[0].MeshesNames)
	assert.True(t, doc.Materials[0].NewInstance)

	require.Len(t, doc.ParticleSystems, 3)
	byName := make(map[string]ParticleSystemRecord)
	for _, rec := range doc.ParticleSystems {
		var data engine.ParticleSystemData
		require.NoError(t, json.Unmarshal(rec.SerializationObject, &data))
		byName[data.Name] = rec
	}
	assert.False(t, byName["Sparks"].HasEmitter)
	assert.Equal(t, []float32{1, 2, 3}, byName["Sparks"].EmitterPosition)
	assert.False(t, byName["Smoke"].HasEmitter)
	assert.Equal(t, []float32{-4, 0, 4}, byName["Smoke"].EmitterPosition)
	assert.True(t, byName["Dust"].HasEmitter)
	assert.Nil(t, byName["Dust"].EmitterPosition, "a real emitter carries its own position")

	assert.Len(t, doc.ShadowGenerators, 1)
	assert.NotNil(t, doc.Actions)
	assert.True(t, doc.PhysicsEnabled)
	assert.JSONEq(t, `"remember the crate"`, string(doc.CustomMetadatas[notes.Name]))
}

func TestExportWritesReservedNulls(t *testing.T) {
	data, err := Marshal(NewDocument(), false)
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(data, &generic))
	for _, key := range []string{"globalConfiguration", "lensFlares", "postProcesses", "renderTargets", "requestedMaterials", "sounds", "actions"} {
		v, ok := generic[key]
		assert.True(t, ok, key)
		assert.Nil(t, v, key)
	}
	assert.Equal(t, []any{}, generic["nodes"])
}

func TestExportIsIdempotent(t *testing.T) {
	s := editedSession(t)
	first, err := Canonical(export(t, s))
	require.NoError(t, err)
	second, err := Canonical(export(t, s))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestRoundTrip(t *testing.T) {
	src := editedSession(t)
	doc := export(t, src)

	dst := session{scene: baseScene(), tracker: origin.NewTracker(), registry: newRegistry()}
	report, err := Import(context.Background(), dst.scene, reload(t, doc), dst.tracker, dst.registry, ImportOptions{})
	require.NoError(t, err)
	assert.Empty(t, report.Unresolved)
	assert.Equal(t, 1, report.Synthesized)

	again := export(t, dst)
	changes, err := Diff(doc, again)
	require.NoError(t, err)
	assert.Empty(t, changes)

	crate := dst.scene.NodeByID("crate")
	require.NotNil(t, crate)
	assert.True(t, dst.tracker.IsAdded(crate))
	assert.Same(t, dst.scene.NodeByID("ground"), crate.Parent)
	assert.Same(t, dst.scene.MaterialByID("wood"), crate.Material)
	assert.Same(t, dst.scene.GeometryByID("crate-geo"), crate.Geometry)
	assert.True(t, dst.tracker.IsSynthetic(dst.scene.NodeByID("sparks-emitter")))
	assert.Equal(t, "remember the crate", notes.Get(dst.scene))

	for _, m := range dst.scene.Materials {
		assert.Equal(t, 2*len(dst.scene.Lights), m.MaxSimultaneousLights)
	}
}

func TestMaterialDedup(t *testing.T) {
	scene := baseScene()
	tr := origin.NewTracker()
	shared := engine.NewMaterial("shared", "Shared")
	scene.AddMaterial(shared)
	tr.MarkAdded(shared)
	twin := engine.NewMaterial("twin", "Shared")
	scene.AddMaterial(twin)
	tr.MarkAdded(twin)
	for _, name := range []string{"A", "B"} {
		n := engine.NewMesh("", name)
		n.Material = shared
		scene.AddNode(n)
	}

	doc, err := Export(context.Background(), scene, tr, nil, Options{})
	require.NoError(t, err)

	require.Len(t, doc.Materials, 1)
	assert.ElementsMatch(t, []string{"A", "B"}, doc.Materials[0].MeshesNames)
}

func TestExportSuspendsInteractions(t *testing.T) {
	s := editedSession(t)
	crate := s.scene.NodeByID("crate")
	recorder := &suspendRecorder{am: crate.ActionManager}
	s.registry.Register("suspend-recorder", func(*engine.Scene) extensions.Extension { return recorder })
	s.registry.RequestExtension(s.scene, "suspend-recorder")

	export(t, s)

	assert.True(t, recorder.sawSuspended)
	assert.False(t, crate.ActionManager.Suspended())
	assert.Equal(t, 0, crate.ActionManager.Fire(engine.TriggerPointerOver))
	assert.Equal(t, 1, crate.ActionManager.Fire(engine.TriggerPick))
}

func TestExportRestoresOnError(t *testing.T) {
	s := editedSession(t)
	s.registry.Register("broken", func(*engine.Scene) extensions.Extension { return &suspendRecorder{fail: true} })
	s.registry.RequestExtension(s.scene, "broken")

	_, err := Export(context.Background(), s.scene, s.tracker, s.registry, Options{})
	require.Error(t, err)
	assert.False(t, s.scene.ActionManager.Suspended())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Export(ctx, s.scene, s.tracker, nil, Options{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, s.scene.ActionManager.Suspended())
}

func TestTolerantImport(t *testing.T) {
	doc := NewDocument()
	doc.Nodes = []NodeRecord{
		{ID: "ghost", Name: "Ghost", Type: TypeMesh, Physics: &PhysicsRecord{Mass: 1, Impostor: engine.SphereImpostor}},
		{ID: "ground", Name: "Ground", Type: TypeMesh, Physics: &PhysicsRecord{Mass: 2, Impostor: engine.BoxImpostor}},
	}
	mat, err := json.Marshal(engine.MaterialData{ID: "moss", Name: "Moss", Diffuse: "Green", Alpha: 1})
	require.NoError(t, err)
	doc.Materials = []MaterialRecord{{MeshesNames: []string{"Ghost", "Ground"}, NewInstance: true, SerializedValues: mat}}
	sg, err := json.Marshal(engine.ShadowGeneratorData{LightID: "missing-light", MapSize: 512})
	require.NoError(t, err)
	doc.ShadowGenerators = []json.RawMessage{sg}
	doc.CustomMetadatas["Mystery"] = json.RawMessage(`{"keep":true}`)

	scene := baseScene()
	tr := origin.NewTracker()
	reg := newRegistry()
	report, err := Import(context.Background(), scene, reload(t, doc), tr, reg, ImportOptions{})
	require.NoError(t, err)

	assert.Contains(t, report.Unresolved, "node Ghost")
	assert.Contains(t, report.Unresolved, "mesh Ghost")
	assert.Contains(t, report.Unresolved, "light missing-light")
	assert.Contains(t, report.Unresolved, "extension Mystery")

	ground := scene.NodeByID("ground")
	require.NotNil(t, ground.Impostor)
	assert.Equal(t, float32(2), ground.Impostor.Params.Mass)
	assert.True(t, tr.IsAdded(ground.Impostor))
	assert.Equal(t, "Moss", ground.Material.Name)
	assert.True(t, scene.PhysicsEnabled())

	out, err := Export(context.Background(), scene, tr, reg, Options{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"keep":true}`, string(out.CustomMetadatas["Mystery"]))
}

func TestImportUnknownTypeIsFatal(t *testing.T) {
	doc := NewDocument()
	light, err := json.Marshal(engine.NewLight("l2", "Second", "point").LightData())
	require.NoError(t, err)
	doc.Nodes = []NodeRecord{
		{ID: "l2", Name: "Second", Type: TypeLight, SerializationObject: light},
		{ID: "w", Name: "Weird", Type: TypeUnknown, SerializationObject: json.RawMessage(`{}`)},
	}

	scene := baseScene()
	tr := origin.NewTracker()
	_, err = Import(context.Background(), scene, doc, tr, newRegistry(), ImportOptions{})

	var unknown *UnknownNodeTypeError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "Weird", unknown.Name)
	assert.Equal(t, 1, unknown.Index)
	assert.Contains(t, err.Error(), "Weird")

	assert.Nil(t, scene.NodeByID("l2"))
	assert.Len(t, scene.Lights, 1)
	assert.False(t, scene.PhysicsEnabled())
	assert.Zero(t, tr.Len())
}

func TestImportPlaceholderWithoutNodeRecord(t *testing.T) {
	ps := engine.NewParticleSystem("rain", "Rain", 10)
	ps.SetEmitterNode(engine.NewMesh("rain-emitter", "Rain emitter"))
	data, err := json.Marshal(ps.Serialize())
	require.NoError(t, err)

	doc := NewDocument()
	doc.ParticleSystems = []ParticleSystemRecord{{EmitterPosition: []float32{0, 9, 0}, SerializationObject: data}}

	scene := baseScene()
	tr := origin.NewTracker()
	report, err := Import(context.Background(), scene, doc, tr, nil, ImportOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Synthesized)
	require.Len(t, scene.ParticleSystems, 1)
	emitter := scene.ParticleSystems[0].EmitterNode
	require.NotNil(t, emitter)
	assert.Equal(t, "rain-emitter", emitter.ID)
	assert.Equal(t, rl.Vector3{Y: 9}, emitter.Transform.Position)
	assert.True(t, tr.IsSynthetic(emitter))
}

func TestImportSceneRecordBindsToScene(t *testing.T) {
	spin := engine.NewAnimation("spin", "rotation.y", 60, engine.AnimationFloat, engine.LoopCycle)
	raw, err := json.Marshal(spin.Serialize())
	require.NoError(t, err)

	doc := NewDocument()
	doc.Nodes = []NodeRecord{{ID: engine.SceneName, Name: engine.SceneName, Type: engine.SceneName,
		Animations: []AnimationRecord{{SerializationObject: raw, TargetName: engine.SceneName, TargetType: "Node"}}}}

	scene := baseScene()
	tr := origin.NewTracker()
	_, err = Import(context.Background(), scene, doc, tr, nil, ImportOptions{})
	require.NoError(t, err)

	require.Len(t, scene.Animations, 1)
	assert.True(t, tr.IsAdded(scene.Animations[0]))

	out, err := Export(context.Background(), scene, tr, nil, Options{})
	require.NoError(t, err)
	require.Len(t, out.Nodes, 1)
	assert.Equal(t, engine.SceneName, out.Nodes[0].Name)
}

func TestImportBindsSceneRecordByType(t *testing.T) {
	spin := engine.NewAnimation("spin", "rotation.y", 60, engine.AnimationFloat, engine.LoopCycle)
	raw, err := json.Marshal(spin.Serialize())
	require.NoError(t, err)

	doc := NewDocument()
	doc.Nodes = []NodeRecord{{ID: "root", Name: "Root", Type: engine.SceneName,
		Animations: []AnimationRecord{{SerializationObject: raw, TargetName: "Root", TargetType: "Node"}}}}

	scene := baseScene()
	_, err = Import(context.Background(), scene, doc, nil, nil, ImportOptions{})
	require.NoError(t, err)
	assert.Len(t, scene.Animations, 1)

	doc = NewDocument()
	doc.Nodes = []NodeRecord{{ID: engine.SceneName, Name: engine.SceneName, Type: TypeUnknown}}
	_, err = Import(context.Background(), baseScene(), doc, nil, nil, ImportOptions{})
	var unknown *UnknownNodeTypeError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, 0, unknown.Index)
}

func TestImportMalformedPayloadLeavesSceneUntouched(t *testing.T) {
	light, err := json.Marshal(engine.NewLight("l2", "Second", "point").LightData())
	require.NoError(t, err)

	tests := []struct {
		name   string
		second NodeRecord
		mutate func(doc *Document)
	}{
		{
			name:   "serialization object",
			second: NodeRecord{ID: "c", Name: "Crate", Type: TypeMesh, SerializationObject: json.RawMessage(`{"meshes": 7}`)},
		},
		{
			name:   "node actions",
			second: NodeRecord{Name: "Ground", Type: TypeMesh, Actions: json.RawMessage(`[1, 2]`)},
		},
		{
			name:   "animation",
			second: NodeRecord{Name: "Ground", Type: TypeMesh, Animations: []AnimationRecord{{SerializationObject: json.RawMessage(`"spin"`)}}},
		},
		{
			name: "material",
			mutate: func(doc *Document) {
				doc.Materials = []MaterialRecord{{SerializedValues: json.RawMessage(`[]`)}}
			},
		},
		{
			name: "scene actions",
			mutate: func(doc *Document) {
				doc.Actions = json.RawMessage(`"nope"`)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := NewDocument()
			doc.Nodes = []NodeRecord{{ID: "l2", Name: "Second", Type: TypeLight, SerializationObject: light}}
			if tt.second.Type != "" {
				doc.Nodes = append(doc.Nodes, tt.second)
			}
			if tt.mutate != nil {
				tt.mutate(doc)
			}

			scene := baseScene()
			tr := origin.NewTracker()
			_, err := Import(context.Background(), scene, doc, tr, nil, ImportOptions{})
			require.Error(t, err)

			assert.Nil(t, scene.NodeByID("l2"))
			assert.Len(t, scene.Lights, 1)
			assert.Empty(t, scene.NodeByID("ground").Animations)
			assert.Nil(t, scene.NodeByID("ground").ActionManager)
			assert.False(t, scene.PhysicsEnabled())
			assert.Zero(t, tr.Len())
		})
	}
}

func TestImportNormalizesPartialDocument(t *testing.T) {
	doc, err := Unmarshal([]byte(`{"nodes":[{"id":"ground","name":"Ground","type":"Mesh"}]}`))
	require.NoError(t, err)

	scene := baseScene()
	report, err := Import(context.Background(), scene, doc, nil, nil, ImportOptions{})
	require.NoError(t, err)
	assert.Empty(t, report.Unresolved)
	assert.NotNil(t, doc.CustomMetadatas)
	assert.NotNil(t, doc.Nodes[0].Animations)
}

type suspendRecorder struct {
	am           *engine.ActionManager
	fail         bool
	sawSuspended bool
}

func (p *suspendRecorder) OnApply(json.RawMessage, string) error { return nil }
func (p *suspendRecorder) OnLoad(json.RawMessage) error          { return nil }
func (p *suspendRecorder) AlwaysApply() bool                     { return false }

func (p *suspendRecorder) OnSerialize() (any, error) {
	if p.fail {
		return nil, errors.New("serialize failed")
	}
	p.sawSuspended = p.am.Suspended()
	return nil, nil
}
