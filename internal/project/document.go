// Package project captures the edits made on top of a base scene as a delta
// document and rebuilds a live scene from a base scene plus that document.
package project

import (
	"encoding/json"

	"deltaeditor/internal/engine"
	"deltaeditor/internal/extensions"
)

// Node record types.
const (
	TypeMesh    = "Mesh"
	TypeLight   = "Light"
	TypeCamera  = "Camera"
	TypeUnknown = "Unknown!"
)

// Extension is the file extension of a saved delta document.
const Extension = ".editorproject"

// Document is the persisted delta. Kind-dependent payloads stay raw JSON;
// the sibling type field decides how they are parsed. Field names are
// load-bearing for files written by earlier versions.
type Document struct {
	Actions          json.RawMessage            `json:"actions"`
	CustomMetadatas  map[string]json.RawMessage `json:"customMetadatas"`
	Materials        []MaterialRecord           `json:"materials"`
	Nodes            []NodeRecord               `json:"nodes"`
	ParticleSystems  []ParticleSystemRecord     `json:"particleSystems"`
	PhysicsEnabled   bool                       `json:"physicsEnabled"`
	ShadowGenerators []json.RawMessage          `json:"shadowGenerators"`

	// Always written as null and ignored on read.
	GlobalConfiguration json.RawMessage `json:"globalConfiguration"`
	LensFlares          json.RawMessage `json:"lensFlares"`
	PostProcesses       json.RawMessage `json:"postProcesses"`
	RenderTargets       json.RawMessage `json:"renderTargets"`
	RequestedMaterials  json.RawMessage `json:"requestedMaterials"`
	Sounds              json.RawMessage `json:"sounds"`
}

// NodeRecord carries the edits made to one node. SerializationObject is set
// only for nodes the editor created.
type NodeRecord struct {
	ID                  string            `json:"id"`
	Name                string            `json:"name"`
	Type                string            `json:"type"`
	SerializationObject json.RawMessage   `json:"serializationObject"`
	Animations          []AnimationRecord `json:"animations"`
	Physics             *PhysicsRecord    `json:"physics"`
	Actions             json.RawMessage   `json:"actions"`
}

type AnimationRecord struct {
	Events              []json.RawMessage `json:"events"`
	SerializationObject json.RawMessage   `json:"serializationObject"`
	TargetName          string            `json:"targetName"`
	TargetType          string            `json:"targetType"`
}

type PhysicsRecord struct {
	Mass        float32 `json:"physicsMass"`
	Friction    float32 `json:"physicsFriction"`
	Restitution float32 `json:"physicsRestitution"`
	Impostor    int     `json:"physicsImpostor"`
}

// MaterialRecord is an editor-created material and the meshes using it.
type MaterialRecord struct {
	MeshesNames      []string        `json:"meshesNames"`
	NewInstance      bool            `json:"newInstance"`
	SerializedValues json.RawMessage `json:"serializedValues"`
}

// ParticleSystemRecord is an editor-created particle system. EmitterPosition
// is null when HasEmitter is true.
type ParticleSystemRecord struct {
	EmitterPosition     []float32       `json:"emitterPosition"`
	HasEmitter          bool            `json:"hasEmitter"`
	SerializationObject json.RawMessage `json:"serializationObject"`
}

// NewDocument returns an empty document with every collection allocated.
func NewDocument() *Document {
	d := &Document{}
	d.Normalize()
	return d
}

// Normalize fills missing collections so older or partial documents can be
// imported, and clears the reserved fields.
func (d *Document) Normalize() {
	if d.CustomMetadatas == nil {
		d.CustomMetadatas = make(map[string]json.RawMessage)
	}
	if d.Materials == nil {
		d.Materials = []MaterialRecord{}
	}
	if d.Nodes == nil {
		d.Nodes = []NodeRecord{}
	}
	if d.ParticleSystems == nil {
		d.ParticleSystems = []ParticleSystemRecord{}
	}
	if d.ShadowGenerators == nil {
		d.ShadowGenerators = []json.RawMessage{}
	}
	for i := range d.Nodes {
		if d.Nodes[i].Animations == nil {
			d.Nodes[i].Animations = []AnimationRecord{}
		}
	}
	for i := range d.Materials {
		if d.Materials[i].MeshesNames == nil {
			d.Materials[i].MeshesNames = []string{}
		}
	}
	d.GlobalConfiguration = nil
	d.LensFlares = nil
	d.PostProcesses = nil
	d.RenderTargets = nil
	d.RequestedMaterials = nil
	d.Sounds = nil
}

// Empty reports whether the document carries no edits at all.
func (d *Document) Empty() bool {
	return extensions.IsNull(d.Actions) &&
		len(d.Materials) == 0 &&
		len(d.Nodes) == 0 &&
		len(d.ParticleSystems) == 0 &&
		len(d.ShadowGenerators) == 0 &&
		len(d.CustomMetadatas) == 0
}

// recordType maps a node kind to its record type.
func recordType(n *engine.Node) string {
	switch n.Kind {
	case engine.KindMesh:
		return TypeMesh
	case engine.KindLight:
		return TypeLight
	case engine.KindCamera:
		return TypeCamera
	default:
		return TypeUnknown
	}
}
