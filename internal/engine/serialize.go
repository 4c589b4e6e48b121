package engine

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// NodeData is the part of a node's serialized form shared by every kind.
type NodeData struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	ParentID string         `json:"parentId,omitempty"`
	Position [3]float32     `json:"position"`
	Rotation [3]float32     `json:"rotation"`
	Scaling  [3]float32     `json:"scaling"`
	Enabled  bool           `json:"isEnabled"`
	Tags     []string       `json:"tags,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type MeshData struct {
	NodeData
	GeometryID string `json:"geometryId,omitempty"`
	MaterialID string `json:"materialId,omitempty"`
}

type LightData struct {
	NodeData
	LightType string     `json:"lightType"`
	Intensity float32    `json:"intensity"`
	Diffuse   string     `json:"diffuse"`
	Range     float32    `json:"range"`
	Direction [3]float32 `json:"direction"`
}

type CameraData struct {
	NodeData
	Fov    float32    `json:"fov"`
	MinZ   float32    `json:"minZ"`
	MaxZ   float32    `json:"maxZ"`
	Target [3]float32 `json:"target"`
}

// GeometryBlock groups the vertex data a mesh serialization carries.
type GeometryBlock struct {
	VertexData []GeometryData `json:"vertexData"`
}

// MeshSerialization is a mesh split into its geometry and the mesh itself.
type MeshSerialization struct {
	Geometries *GeometryBlock `json:"geometries,omitempty"`
	Meshes     []MeshData     `json:"meshes"`
}

func Vec3(a [3]float32) rl.Vector3 {
	return rl.Vector3{X: a[0], Y: a[1], Z: a[2]}
}

func Vec3Array(v rl.Vector3) [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

func Vec3Slice(v rl.Vector3) []float32 {
	return []float32{v.X, v.Y, v.Z}
}

func (n *Node) nodeData() NodeData {
	data := NodeData{
		ID:       n.ID,
		Name:     n.Name,
		Position: Vec3Array(n.Transform.Position),
		Rotation: Vec3Array(n.Transform.Rotation),
		Scaling:  Vec3Array(n.Transform.Scale),
		Enabled:  n.Active,
		Tags:     append([]string(nil), n.Tags...),
		Metadata: cloneMap(n.Metadata),
	}
	switch {
	case n.Parent != nil:
		data.ParentID = n.Parent.ID
	case n.ParentID != "":
		data.ParentID = n.ParentID
	}
	return data
}

func (n *Node) applyNodeData(data NodeData) {
	n.Transform.Position = Vec3(data.Position)
	n.Transform.Rotation = Vec3(data.Rotation)
	n.Transform.Scale = Vec3(data.Scaling)
	n.Active = data.Enabled
	n.Tags = append([]string(nil), data.Tags...)
	n.Metadata = cloneMap(data.Metadata)
	n.ParentID = data.ParentID
}

func (n *Node) MeshData() MeshData {
	data := MeshData{NodeData: n.nodeData()}
	switch {
	case n.Geometry != nil:
		data.GeometryID = n.Geometry.ID
	default:
		data.GeometryID = n.GeometryID
	}
	if n.Material != nil {
		data.MaterialID = n.Material.ID
	}
	return data
}

func (n *Node) LightData() LightData {
	l := n.Light
	if l == nil {
		l = &LightSettings{}
	}
	return LightData{
		NodeData:  n.nodeData(),
		LightType: l.Type,
		Intensity: l.Intensity,
		Diffuse:   ColorName(l.Diffuse),
		Range:     l.Range,
		Direction: Vec3Array(l.Direction),
	}
}

func (n *Node) CameraData() CameraData {
	c := n.Camera
	if c == nil {
		c = &CameraSettings{}
	}
	return CameraData{
		NodeData: n.nodeData(),
		Fov:      c.Fov,
		MinZ:     c.MinZ,
		MaxZ:     c.MaxZ,
		Target:   Vec3Array(c.Target),
	}
}

// Serialize returns the kind-specific data for n: MeshData, LightData or CameraData.
func (n *Node) Serialize() any {
	switch n.Kind {
	case KindLight:
		return n.LightData()
	case KindCamera:
		return n.CameraData()
	default:
		return n.MeshData()
	}
}

// SerializeMesh splits a mesh into its geometry and mesh entries.
func SerializeMesh(n *Node) MeshSerialization {
	out := MeshSerialization{Meshes: []MeshData{n.MeshData()}}
	if n.Geometry != nil {
		out.Geometries = &GeometryBlock{VertexData: []GeometryData{n.Geometry.Serialize()}}
	}
	return out
}

// ParseMesh creates a mesh and adds it to the scene. Its geometry must
// already be registered; an unknown geometry id is kept for later binding.
func ParseMesh(data MeshData, scene *Scene, rootURL string) *Node {
	n := NewMesh(data.ID, data.Name)
	n.applyNodeData(data.NodeData)
	n.GeometryID = data.GeometryID
	if data.GeometryID != "" {
		n.Geometry = scene.GeometryByID(data.GeometryID)
	}
	if data.MaterialID != "" {
		n.Material = scene.MaterialByID(data.MaterialID)
	}
	scene.AddNode(n)
	return n
}

func ParseLight(data LightData, scene *Scene) *Node {
	n := NewLight(data.ID, data.Name, data.LightType)
	n.applyNodeData(data.NodeData)
	n.Light.Intensity = data.Intensity
	n.Light.Diffuse = ParseColor(data.Diffuse)
	n.Light.Range = data.Range
	n.Light.Direction = Vec3(data.Direction)
	scene.AddNode(n)
	return n
}

func ParseCamera(data CameraData, scene *Scene) *Node {
	n := NewCamera(data.ID, data.Name)
	n.applyNodeData(data.NodeData)
	n.Camera.Fov = data.Fov
	n.Camera.MinZ = data.MinZ
	n.Camera.MaxZ = data.MaxZ
	n.Camera.Target = Vec3(data.Target)
	scene.AddNode(n)
	return n
}
