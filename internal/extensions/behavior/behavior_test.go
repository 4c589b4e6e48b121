package behavior

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deltaeditor/internal/engine"
	"deltaeditor/internal/scripts"
)

func newScene() (*engine.Scene, *engine.Node) {
	scene := engine.NewScene("Test")
	box := engine.NewMesh("box-1", "Box")
	scene.AddNode(box)
	return scene, box
}

func TestLoadResolvesByIDThenName(t *testing.T) {
	scene, box := newScene()
	other := engine.NewMesh("other", "Other")
	scene.AddNode(other)

	data := json.RawMessage(`{
		"scripts": [{"id": "s1", "name": "Rotator", "code": ""}],
		"nodes": [
			{"node": "Renamed", "nodeId": "box-1", "metadatas": [{"codeId": "s1", "active": true}]},
			{"node": "Other", "nodeId": "gone", "metadatas": [{"codeId": "s1", "active": false}]},
			{"node": "Missing", "nodeId": "missing", "metadatas": []},
			{"node": "Scene", "nodeId": "Scene", "metadatas": [{"codeId": "s1", "active": true}]}
		]
	}`)
	require.NoError(t, New(scene).OnLoad(data))

	nm, err := nodeMetadata(box)
	require.NoError(t, err)
	require.NotNil(t, nm)
	assert.Equal(t, "s1", nm.Metadatas[0].CodeID)

	nm, err = nodeMetadata(other)
	require.NoError(t, err)
	require.NotNil(t, nm)
	assert.False(t, nm.Metadatas[0].Active)

	nm, err = sceneMetadata(scene)
	require.NoError(t, err)
	require.NotNil(t, nm)

	s, err := Scripts(scene)
	require.NoError(t, err)
	assert.Equal(t, []Script{{ID: "s1", Name: "Rotator"}}, s)
}

func TestApplyInstantiatesActiveScripts(t *testing.T) {
	scene, box := newScene()
	data := json.RawMessage(`{
		"scripts": [{"id": "s1", "name": "Rotator"}, {"id": "s2", "name": "NoSuchScript"}],
		"nodes": [{"node": "Box", "nodeId": "box-1", "metadatas": [
			{"codeId": "s1", "active": true, "params": {"speed": 30}},
			{"codeId": "s1", "active": false},
			{"codeId": "s2", "active": true},
			{"codeId": "s3", "active": true}
		]}]
	}`)
	require.NoError(t, New(scene).OnApply(data, ""))

	require.Len(t, box.Components(), 1)
	r := engine.GetComponent[*scripts.Rotator](box)
	require.NotNil(t, r)
	assert.Equal(t, float32(30), r.Speed)
	assert.True(t, box.IsManaged(r))
}

func TestApplyResolvesNodeRefParamsByName(t *testing.T) {
	scene, box := newScene()
	scene.AddNode(engine.NewLight("lamp-1", "Lamp", "point"))
	data := json.RawMessage(`{
		"scripts": [{"id": "f", "name": "Flicker"}],
		"nodes": [{"node": "Box", "nodeId": "box-1", "metadatas": [
			{"codeId": "f", "active": true, "params": {"target": "Lamp"}}
		]}]
	}`)
	require.NoError(t, New(scene).OnApply(data, ""))

	f := engine.GetComponent[*scripts.Flicker](box)
	require.NotNil(t, f)
	assert.Equal(t, "lamp-1", f.Target.ID)
}

func TestReapplyDoesNotDuplicate(t *testing.T) {
	scene, box := newScene()
	s, err := AddScript(scene, "Rotator", "")
	require.NoError(t, err)
	require.NoError(t, Attach(scene, box, s.ID, map[string]any{"speed": 10.0}))

	require.NoError(t, New(scene).OnApply(nil, ""))
	require.NoError(t, New(scene).OnApply(nil, ""))

	assert.Len(t, box.Components(), 1)
}

func TestSerializeReadsLiveParams(t *testing.T) {
	scene, box := newScene()
	s, err := AddScript(scene, "Rotator", "// spin")
	require.NoError(t, err)
	require.NoError(t, Attach(scene, box, s.ID, map[string]any{"speed": 10.0}))
	require.NoError(t, Attach(scene, nil, s.ID, nil))

	ext := New(scene)
	require.NoError(t, ext.OnApply(nil, ""))
	engine.GetComponent[*scripts.Rotator](box).Speed = 45

	v, err := ext.OnSerialize()
	require.NoError(t, err)
	md := v.(Metadata)
	require.Len(t, md.Nodes, 2)
	assert.Equal(t, "Box", md.Nodes[0].Node)
	assert.Equal(t, "box-1", md.Nodes[0].NodeID)
	assert.Equal(t, float32(45), md.Nodes[0].Metadatas[0].Params["speed"])
	assert.Equal(t, engine.SceneName, md.Nodes[1].Node)

	raw, err := json.Marshal(v)
	require.NoError(t, err)

	loaded, box2 := newScene()
	require.NoError(t, New(loaded).OnApply(raw, ""))
	r := engine.GetComponent[*scripts.Rotator](box2)
	require.NotNil(t, r)
	assert.Equal(t, float32(45), r.Speed)
}

func TestSerializeEmpty(t *testing.T) {
	scene, _ := newScene()
	v, err := New(scene).OnSerialize()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestRemoveScriptDetaches(t *testing.T) {
	scene, box := newScene()
	keep, err := AddScript(scene, "CubeAnimator", "")
	require.NoError(t, err)
	drop, err := AddScript(scene, "Rotator", "")
	require.NoError(t, err)
	require.NoError(t, Attach(scene, box, drop.ID, nil))
	require.NoError(t, Attach(scene, box, keep.ID, nil))
	require.NoError(t, New(scene).OnApply(nil, ""))
	require.Len(t, box.Components(), 2)

	require.NoError(t, RemoveScript(scene, drop.ID))

	assert.Nil(t, engine.GetComponent[*scripts.Rotator](box))
	assert.NotNil(t, engine.GetComponent[*scripts.CubeAnimator](box))
	left, err := Scripts(scene)
	require.NoError(t, err)
	assert.Equal(t, []Script{keep}, left)
	nm, err := nodeMetadata(box)
	require.NoError(t, err)
	require.Len(t, nm.Metadatas, 1)
	assert.NotNil(t, nm.live[0])
}

func TestLoadLegacyFormat(t *testing.T) {
	scene, box := newScene()
	data := json.RawMessage(`[{"node": "Box", "metadatas": [
		{"name": "Rotator", "code": "x", "active": true, "params": {"speed": 5}},
		{"name": "Linked", "link": true}
	]}]`)
	require.NoError(t, New(scene).OnApply(data, ""))

	s, err := Scripts(scene)
	require.NoError(t, err)
	require.Len(t, s, 1)
	assert.Equal(t, "Rotator", s[0].Name)
	r := engine.GetComponent[*scripts.Rotator](box)
	require.NotNil(t, r)
	assert.Equal(t, float32(5), r.Speed)
}
