package project

import (
	"maps"
	"slices"

	"deltaeditor/internal/extensions"
)

// Summary is a readable overview of a document, for inspection output.
type Summary struct {
	PhysicsEnabled   bool           `yaml:"physicsEnabled" json:"physicsEnabled"`
	Nodes            []NodeSummary  `yaml:"nodes" json:"nodes"`
	Materials        []MaterialInfo `yaml:"materials" json:"materials"`
	ParticleSystems  int            `yaml:"particleSystems" json:"particleSystems"`
	ShadowGenerators int            `yaml:"shadowGenerators" json:"shadowGenerators"`
	SceneActions     bool           `yaml:"sceneActions" json:"sceneActions"`
	Extensions       []string       `yaml:"extensions" json:"extensions"`
}

type NodeSummary struct {
	Name       string `yaml:"name" json:"name"`
	Type       string `yaml:"type" json:"type"`
	Created    bool   `yaml:"created" json:"created"`
	Animations int    `yaml:"animations,omitempty" json:"animations,omitempty"`
	Physics    bool   `yaml:"physics,omitempty" json:"physics,omitempty"`
	Actions    bool   `yaml:"actions,omitempty" json:"actions,omitempty"`
}

type MaterialInfo struct {
	Meshes []string `yaml:"meshes" json:"meshes"`
}

// Summarize lists what doc changes without decoding the payloads.
func Summarize(doc *Document) Summary {
	s := Summary{
		PhysicsEnabled:   doc.PhysicsEnabled,
		Nodes:            []NodeSummary{},
		Materials:        []MaterialInfo{},
		ParticleSystems:  len(doc.ParticleSystems),
		ShadowGenerators: len(doc.ShadowGenerators),
		SceneActions:     !extensions.IsNull(doc.Actions),
		Extensions:       slices.Sorted(maps.Keys(doc.CustomMetadatas)),
	}
	for _, rec := range doc.Nodes {
		s.Nodes = append(s.Nodes, NodeSummary{
			Name:       rec.Name,
			Type:       rec.Type,
			Created:    !extensions.IsNull(rec.SerializationObject),
			Animations: len(rec.Animations),
			Physics:    rec.Physics != nil,
			Actions:    !extensions.IsNull(rec.Actions),
		})
	}
	for _, rec := range doc.Materials {
		s.Materials = append(s.Materials, MaterialInfo{Meshes: slices.Clone(rec.MeshesNames)})
	}
	if s.Extensions == nil {
		s.Extensions = []string{}
	}
	return s
}
