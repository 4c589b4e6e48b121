package engine

import (
	"path"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Material defines surface properties for rendering
type Material struct {
	UID            uint64
	ID             string
	Name           string
	Diffuse        rl.Color
	Metallic       float32
	Roughness      float32
	Emissive       float32
	Alpha          float32
	DiffuseTexture string

	// TextureURL is DiffuseTexture resolved against the root url it was parsed with.
	TextureURL string

	// MaxSimultaneousLights is derived from the light count after a load.
	MaxSimultaneousLights int

	// CustomType names the procedural shader for editor-created materials.
	CustomType string
	Params     map[string]any
}

// MaterialData is the serialized form of a Material.
type MaterialData struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Diffuse        string         `json:"diffuse"`
	Metallic       float32        `json:"metallic"`
	Roughness      float32        `json:"roughness"`
	Emissive       float32        `json:"emissive"`
	Alpha          float32        `json:"alpha"`
	DiffuseTexture string         `json:"diffuseTexture,omitempty"`
	CustomType     string         `json:"customType,omitempty"`
	Params         map[string]any `json:"params,omitempty"`
}

func NewMaterial(id, name string) *Material {
	if id == "" {
		id = NewID()
	}
	return &Material{
		UID:                   NewUID(),
		ID:                    id,
		Name:                  name,
		Diffuse:               rl.White,
		Roughness:             0.5,
		Alpha:                 1,
		MaxSimultaneousLights: 4,
	}
}

func (m *Material) EntityUID() uint64 { return m.UID }

func (m *Material) Serialize() MaterialData {
	return MaterialData{
		ID:             m.ID,
		Name:           m.Name,
		Diffuse:        ColorName(m.Diffuse),
		Metallic:       m.Metallic,
		Roughness:      m.Roughness,
		Emissive:       m.Emissive,
		Alpha:          m.Alpha,
		DiffuseTexture: m.DiffuseTexture,
		CustomType:     m.CustomType,
		Params:         cloneMap(m.Params),
	}
}

// ParseMaterial creates a material from data and adds it to the scene.
func ParseMaterial(data MaterialData, scene *Scene, rootURL string) *Material {
	m := NewMaterial(data.ID, data.Name)
	m.Diffuse = ParseColor(data.Diffuse)
	m.Metallic = data.Metallic
	m.Roughness = data.Roughness
	m.Emissive = data.Emissive
	m.Alpha = data.Alpha
	m.DiffuseTexture = data.DiffuseTexture
	if data.DiffuseTexture != "" {
		m.TextureURL = resolveURL(rootURL, data.DiffuseTexture)
	}
	m.CustomType = data.CustomType
	m.Params = cloneMap(data.Params)
	scene.AddMaterial(m)
	return m
}

func resolveURL(rootURL, name string) string {
	if rootURL == "" || path.IsAbs(name) {
		return name
	}
	return path.Join(rootURL, name)
}

func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
