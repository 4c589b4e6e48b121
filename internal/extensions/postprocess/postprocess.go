// Package postprocess implements the post-process creator: user-defined
// full-screen passes stored with the project and attached to cameras.
package postprocess

import (
	"encoding/json"
	"fmt"

	"deltaeditor/internal/engine"
	"deltaeditor/internal/extensions"
	"deltaeditor/internal/log"
)

const (
	Name        = "PostProcessCreatorExtension"
	MetadataKey = "PostProcessCreator"
	// Kind marks passes created by this extension.
	Kind = "custom"
)

// Definition is one user-authored pass.
type Definition struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	CameraName string     `json:"cameraName"`
	Preview    bool       `json:"preview"`
	Pixel      string     `json:"pixel"`
	UserConfig UserConfig `json:"userConfig"`
}

// UserConfig holds the pass uniforms the user tuned.
type UserConfig struct {
	Floats   []FloatValue  `json:"floats"`
	Vectors3 []VectorValue `json:"vectors3"`
}

type FloatValue struct {
	Name  string  `json:"name"`
	Value float32 `json:"value"`
}

type VectorValue struct {
	Name  string     `json:"name"`
	Value [3]float32 `json:"value"`
}

type Extension struct {
	scene *engine.Scene
	// Passes are the live passes created by the last OnApply, by name.
	Passes map[string]*engine.PostProcess
}

func New(scene *engine.Scene) extensions.Extension {
	return &Extension{scene: scene, Passes: make(map[string]*engine.PostProcess)}
}

func (e *Extension) AlwaysApply() bool { return false }

func (e *Extension) OnLoad(data json.RawMessage) error {
	var defs []Definition
	if err := extensions.Decode(data, &defs); err != nil {
		return fmt.Errorf("decoding post-process definitions: %w", err)
	}
	setDefinitions(e.scene, defs)
	return nil
}

// OnApply replaces the passes this extension owns with one per definition.
func (e *Extension) OnApply(data json.RawMessage, rootURL string) error {
	if !extensions.IsNull(data) {
		if err := e.OnLoad(data); err != nil {
			return err
		}
	}
	defs, err := Definitions(e.scene)
	if err != nil {
		return err
	}
	var owned []string
	for _, pp := range e.scene.PostProcesses {
		if pp.Kind == Kind {
			owned = append(owned, pp.Name)
		}
	}
	for _, name := range owned {
		e.scene.RemovePostProcesses(name)
	}
	clear(e.Passes)
	for _, def := range defs {
		pp := e.create(def)
		e.scene.AddPostProcess(pp)
		e.Passes[def.Name] = pp
	}
	return nil
}

func (e *Extension) create(def Definition) *engine.PostProcess {
	var camera *engine.Node
	for _, c := range e.scene.Cameras {
		if c.Name == def.CameraName {
			camera = c
			break
		}
	}
	if camera == nil && len(e.scene.Cameras) > 0 {
		camera = e.scene.Cameras[0]
		log.Debug(log.CatExt, "post-process camera not found, using first camera", "pass", def.Name, "camera", def.CameraName)
	}
	pp := &engine.PostProcess{
		Name:    def.Name,
		Kind:    Kind,
		Enabled: def.Preview,
		Camera:  camera,
		Params:  make(map[string]float32),
	}
	for _, f := range def.UserConfig.Floats {
		pp.Params[f.Name] = f.Value
	}
	for _, v := range def.UserConfig.Vectors3 {
		pp.Params[v.Name+".x"] = v.Value[0]
		pp.Params[v.Name+".y"] = v.Value[1]
		pp.Params[v.Name+".z"] = v.Value[2]
	}
	return pp
}

// OnSerialize returns the stored definitions with uniform values read back
// from the live passes, so tweaks made in the editor are saved.
func (e *Extension) OnSerialize() (any, error) {
	defs, err := Definitions(e.scene)
	if err != nil {
		return nil, err
	}
	if len(defs) == 0 {
		return nil, nil
	}
	for i := range defs {
		pp := e.livePass(defs[i].Name)
		if pp == nil {
			continue
		}
		for j := range defs[i].UserConfig.Floats {
			f := &defs[i].UserConfig.Floats[j]
			if v, ok := pp.Params[f.Name]; ok {
				f.Value = v
			}
		}
		for j := range defs[i].UserConfig.Vectors3 {
			vec := &defs[i].UserConfig.Vectors3[j]
			for k, axis := range []string{".x", ".y", ".z"} {
				if v, ok := pp.Params[vec.Name+axis]; ok {
					vec.Value[k] = v
				}
			}
		}
	}
	return defs, nil
}

func (e *Extension) livePass(name string) *engine.PostProcess {
	for _, pp := range e.scene.PostProcesses {
		if pp.Kind == Kind && pp.Name == name {
			return pp
		}
	}
	return nil
}

// Definitions returns the passes stored on the scene.
func Definitions(scene *engine.Scene) ([]Definition, error) {
	var defs []Definition
	if err := extensions.Convert(scene.Metadata[MetadataKey], &defs); err != nil {
		return nil, fmt.Errorf("reading %s metadata: %w", MetadataKey, err)
	}
	return defs, nil
}

// AddDefinition stores def on the scene, replacing one with the same name.
func AddDefinition(scene *engine.Scene, def Definition) error {
	defs, err := Definitions(scene)
	if err != nil {
		return err
	}
	for i := range defs {
		if defs[i].Name == def.Name {
			defs[i] = def
			setDefinitions(scene, defs)
			return nil
		}
	}
	setDefinitions(scene, append(defs, def))
	return nil
}

func setDefinitions(scene *engine.Scene, defs []Definition) {
	for i := range defs {
		if defs[i].ID == "" {
			defs[i].ID = engine.NewID()
		}
		if defs[i].UserConfig.Floats == nil {
			defs[i].UserConfig.Floats = []FloatValue{}
		}
		if defs[i].UserConfig.Vectors3 == nil {
			defs[i].UserConfig.Vectors3 = []VectorValue{}
		}
	}
	if scene.Metadata == nil {
		scene.Metadata = make(map[string]any)
	}
	scene.Metadata[MetadataKey] = defs
}
