// Package materials implements the material creator: user-defined shader
// programs stored with the project and bound to the materials that use them.
package materials

import (
	"encoding/json"
	"fmt"
	"path"

	"deltaeditor/internal/engine"
	"deltaeditor/internal/extensions"
	"deltaeditor/internal/log"
)

const (
	Name        = "MaterialCreatorExtension"
	MetadataKey = "MaterialCreator"
	// CustomType marks materials whose shading comes from a Definition.
	CustomType = "CustomEditorMaterial"
	// ShaderParam is the material param naming the Definition it uses.
	ShaderParam = "shaderName"
)

// Definition is one user-authored shader program.
type Definition struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Vertex string `json:"vertex,omitempty"`
	Pixel  string `json:"pixel,omitempty"`
	Config Config `json:"config"`
}

// Config declares the inputs a program exposes to its materials.
type Config struct {
	Textures []TextureSlot     `json:"textures,omitempty"`
	Floats   map[string]float64 `json:"floats,omitempty"`
}

type TextureSlot struct {
	Name   string `json:"name"`
	IsCube bool   `json:"isCube"`
}

// Program is a Definition bound to the live materials using it.
type Program struct {
	Definition Definition
	Materials  []*engine.Material
	// Textures maps "<material id>/<slot>" to the resolved texture url.
	Textures map[string]string
}

type Extension struct {
	scene    *engine.Scene
	Programs map[string]*Program
}

func New(scene *engine.Scene) extensions.Extension {
	return &Extension{scene: scene, Programs: make(map[string]*Program)}
}

func (e *Extension) AlwaysApply() bool { return false }

func (e *Extension) OnLoad(data json.RawMessage) error {
	var defs []Definition
	if err := extensions.Decode(data, &defs); err != nil {
		return fmt.Errorf("decoding material definitions: %w", err)
	}
	setDefinitions(e.scene, defs)
	return nil
}

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
	clear(e.Programs)
	for _, def := range defs {
		e.Programs[def.Name] = e.bind(def, rootURL)
	}
	return nil
}

func (e *Extension) bind(def Definition, rootURL string) *Program {
	p := &Program{Definition: def, Textures: make(map[string]string)}
	for _, m := range e.scene.Materials {
		if m.CustomType != CustomType || m.Params[ShaderParam] != def.Name {
			continue
		}
		for name, value := range def.Config.Floats {
			if _, set := m.Params[name]; !set {
				m.Params[name] = value
			}
		}
		for _, slot := range def.Config.Textures {
			if file, ok := m.Params[slot.Name].(string); ok && file != "" {
				p.Textures[m.ID+"/"+slot.Name] = resolve(rootURL, file)
			}
		}
		p.Materials = append(p.Materials, m)
	}
	log.Debug(log.CatExt, "material program bound", "program", def.Name, "materials", len(p.Materials))
	return p
}

func (e *Extension) OnSerialize() (any, error) {
	defs, err := Definitions(e.scene)
	if err != nil {
		return nil, err
	}
	if len(defs) == 0 {
		return nil, nil
	}
	return defs, nil
}

// Definitions returns the programs stored on the scene.
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

// NewMaterial creates a material drawn by the named program and adds it to the scene.
func NewMaterial(scene *engine.Scene, name, program string) *engine.Material {
	m := engine.NewMaterial("", name)
	m.CustomType = CustomType
	m.Params = map[string]any{ShaderParam: program}
	scene.AddMaterial(m)
	return m
}

func setDefinitions(scene *engine.Scene, defs []Definition) {
	for i := range defs {
		if defs[i].ID == "" {
			defs[i].ID = engine.NewID()
		}
	}
	if scene.Metadata == nil {
		scene.Metadata = make(map[string]any)
	}
	scene.Metadata[MetadataKey] = defs
}

func resolve(rootURL, file string) string {
	if rootURL == "" || path.IsAbs(file) {
		return file
	}
	return path.Join(rootURL, file)
}
