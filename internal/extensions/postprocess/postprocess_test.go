package postprocess

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deltaeditor/internal/engine"
)

func sceneWithCameras() *engine.Scene {
	scene := engine.NewScene("Test")
	scene.AddNode(engine.NewCamera("c1", "Main"))
	scene.AddNode(engine.NewCamera("c2", "Minimap"))
	return scene
}

func TestApplyCreatesPasses(t *testing.T) {
	scene := sceneWithCameras()
	ext := New(scene).(*Extension)

	data := json.RawMessage(`[{"name":"vignette","cameraName":"Minimap","preview":true,"pixel":"p",
		"userConfig":{"floats":[{"name":"strength","value":0.8}],"vectors3":[{"name":"tint","value":[1,0.5,0]}]}}]`)
	require.NoError(t, ext.OnApply(data, ""))

	require.Len(t, scene.PostProcesses, 1)
	pp := scene.PostProcesses[0]
	assert.Equal(t, "vignette", pp.Name)
	assert.True(t, pp.Enabled)
	assert.Equal(t, "Minimap", pp.Camera.Name)
	assert.Equal(t, float32(0.8), pp.Params["strength"])
	assert.Equal(t, float32(0.5), pp.Params["tint.y"])
	assert.Same(t, pp, ext.Passes["vignette"])
}

func TestApplyFallsBackToFirstCamera(t *testing.T) {
	scene := sceneWithCameras()
	require.NoError(t, New(scene).OnApply(json.RawMessage(`[{"name":"blur","cameraName":"Gone"}]`), ""))

	require.Len(t, scene.PostProcesses, 1)
	assert.Equal(t, "Main", scene.PostProcesses[0].Camera.Name)
}

func TestApplyTwiceDoesNotDuplicate(t *testing.T) {
	scene := sceneWithCameras()
	ext := New(scene)
	data := json.RawMessage(`[{"name":"blur"}]`)

	require.NoError(t, ext.OnApply(data, ""))
	require.NoError(t, ext.OnApply(data, ""))

	assert.Len(t, scene.PostProcesses, 1)
}

func TestSerializeReadsLiveValues(t *testing.T) {
	scene := sceneWithCameras()
	ext := New(scene).(*Extension)
	require.NoError(t, ext.OnApply(json.RawMessage(`[{"id":"pp1","name":"vignette","userConfig":{"floats":[{"name":"strength","value":0.8}],"vectors3":[]}}]`), ""))

	ext.Passes["vignette"].Params["strength"] = 0.25

	v, err := ext.OnSerialize()
	require.NoError(t, err)
	defs := v.([]Definition)
	require.Len(t, defs, 1)
	assert.Equal(t, "pp1", defs[0].ID)
	assert.Equal(t, float32(0.25), defs[0].UserConfig.Floats[0].Value)
}

func TestSerializeEmpty(t *testing.T) {
	v, err := New(engine.NewScene("Test")).OnSerialize()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestLoadDoesNotCreatePasses(t *testing.T) {
	scene := sceneWithCameras()
	require.NoError(t, New(scene).OnLoad(json.RawMessage(`[{"name":"blur"}]`)))

	assert.Empty(t, scene.PostProcesses)
	defs, err := Definitions(scene)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.NotEmpty(t, defs[0].ID)
}

func TestReinstantiatedApplyReplacesPasses(t *testing.T) {
	scene := sceneWithCameras()
	data := json.RawMessage(`[{"name":"blur"}]`)

	require.NoError(t, New(scene).OnApply(data, ""))
	require.NoError(t, New(scene).OnApply(data, ""))

	assert.Len(t, scene.PostProcesses, 1)
}
