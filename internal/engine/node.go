package engine

import (
	"math"
	"sync/atomic"

	"github.com/google/uuid"

	rl "github.com/gen2brain/raylib-go/raylib"
)

var lastUID atomic.Uint64

// NewUID returns a process-unique entity handle. Zero is never returned.
func NewUID() uint64 {
	return lastUID.Add(1)
}

// NewID returns a fresh string id for entities created without one.
func NewID() string {
	return uuid.NewString()
}

// Entity is anything in a scene that the editor can track by UID.
type Entity interface {
	EntityUID() uint64
}

// NodeKind is the family a node belongs to.
type NodeKind int

const (
	KindMesh NodeKind = iota
	KindLight
	KindCamera
)

func (k NodeKind) String() string {
	switch k {
	case KindMesh:
		return "Mesh"
	case KindLight:
		return "Light"
	case KindCamera:
		return "Camera"
	default:
		return "Unknown!"
	}
}

type Transform struct {
	Position rl.Vector3
	Rotation rl.Vector3 // Euler angles in degrees
	Scale    rl.Vector3
}

// LightSettings holds the light-only part of a node.
type LightSettings struct {
	Type      string // point, directional, spot, hemispheric
	Intensity float32
	Diffuse   rl.Color
	Range     float32
	Direction rl.Vector3
}

// CameraSettings holds the camera-only part of a node.
type CameraSettings struct {
	Fov    float32
	MinZ   float32
	MaxZ   float32
	Target rl.Vector3
}

type Node struct {
	UID       uint64
	ID        string
	Name      string
	Kind      NodeKind
	Tags      []string
	Transform Transform
	Active    bool
	Scene     *Scene
	Parent    *Node
	Children  []*Node
	Metadata  map[string]any

	// ParentID is set while a parsed node waits for its parent to exist.
	ParentID string

	Animations    []*Animation
	ActionManager *ActionManager
	Impostor      *PhysicsImpostor

	// Mesh
	Geometry   *Geometry
	GeometryID string
	Material   *Material

	// Light
	Light           *LightSettings
	ShadowGenerator *ShadowGenerator

	// Camera
	Camera *CameraSettings

	components []Component
	managed    map[Component]bool
	started    bool
}

func newNode(id, name string, kind NodeKind) *Node {
	if id == "" {
		id = NewID()
	}
	return &Node{
		UID:    NewUID(),
		ID:     id,
		Name:   name,
		Kind:   kind,
		Active: true,
		Transform: Transform{
			Position: rl.Vector3{},
			Rotation: rl.Vector3{},
			Scale:    rl.Vector3{X: 1, Y: 1, Z: 1},
		},
		components: make([]Component, 0),
		Children:   make([]*Node, 0),
	}
}

// NewMesh creates a mesh node. An empty id gets a generated one.
func NewMesh(id, name string) *Node {
	return newNode(id, name, KindMesh)
}

func NewLight(id, name, lightType string) *Node {
	n := newNode(id, name, KindLight)
	n.Light = &LightSettings{
		Type:      lightType,
		Intensity: 1.0,
		Diffuse:   rl.White,
		Range:     10.0,
		Direction: rl.Vector3{X: 0, Y: -1, Z: 0},
	}
	return n
}

func NewCamera(id, name string) *Node {
	n := newNode(id, name, KindCamera)
	n.Camera = &CameraSettings{Fov: 0.8, MinZ: 0.1, MaxZ: 1000}
	return n
}

func (n *Node) EntityUID() uint64 { return n.UID }

func (n *Node) IsMesh() bool { return n.Kind == KindMesh }

func (n *Node) AddComponent(c Component) {
	c.SetNode(n)
	n.components = append(n.components, c)
}

// AddManagedComponent attaches c on behalf of an extension that persists it
// itself. Scene files skip managed components.
func (n *Node) AddManagedComponent(c Component) {
	n.AddComponent(c)
	if n.managed == nil {
		n.managed = make(map[Component]bool)
	}
	n.managed[c] = true
}

func (n *Node) IsManaged(c Component) bool {
	return n.managed[c]
}

// RemoveComponent detaches c. Returns false if c was not attached.
func (n *Node) RemoveComponent(c Component) bool {
	for i, existing := range n.components {
		if existing == c {
			n.components = append(n.components[:i], n.components[i+1:]...)
			delete(n.managed, c)
			c.SetNode(nil)
			return true
		}
	}
	return false
}

// GetComponent returns the first component of type T
func GetComponent[T Component](n *Node) T {
	var zero T
	for _, c := range n.components {
		if typed, ok := c.(T); ok {
			return typed
		}
	}
	return zero
}

func (n *Node) Start() {
	if n.started {
		return
	}
	for _, c := range n.components {
		c.Start()
	}
	n.started = true
}

func (n *Node) Update(deltaTime float32) {
	if !n.Active {
		return
	}
	for _, c := range n.components {
		c.Update(deltaTime)
	}
}

func (n *Node) Components() []Component {
	return n.components
}

func (n *Node) AddChild(child *Node) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = n
	child.ParentID = ""
	n.Children = append(n.Children, child)
}

func (n *Node) RemoveChild(child *Node) {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			return
		}
	}
}

// AddAnimation appends a to the node's animation list.
func (n *Node) AddAnimation(a *Animation) {
	n.Animations = append(n.Animations, a)
}

func (n *Node) WorldPosition() rl.Vector3 {
	if n.Parent == nil {
		return n.Transform.Position
	}
	parentPos := n.Parent.WorldPosition()
	parentRot := n.Parent.WorldRotation()
	parentScale := n.Parent.WorldScale()

	scaled := rl.Vector3{
		X: n.Transform.Position.X * parentScale.X,
		Y: n.Transform.Position.Y * parentScale.Y,
		Z: n.Transform.Position.Z * parentScale.Z,
	}

	// X then Y then Z
	rx := float64(parentRot.X) * math.Pi / 180
	ry := float64(parentRot.Y) * math.Pi / 180
	rz := float64(parentRot.Z) * math.Pi / 180
	rotX := rl.MatrixRotateX(float32(rx))
	rotY := rl.MatrixRotateY(float32(ry))
	rotZ := rl.MatrixRotateZ(float32(rz))
	rotMatrix := rl.MatrixMultiply(rl.MatrixMultiply(rotX, rotY), rotZ)

	rotated := rl.Vector3Transform(scaled, rotMatrix)
	return rl.Vector3Add(parentPos, rotated)
}

func (n *Node) WorldRotation() rl.Vector3 {
	if n.Parent == nil {
		return n.Transform.Rotation
	}
	return rl.Vector3Add(n.Parent.WorldRotation(), n.Transform.Rotation)
}

func (n *Node) WorldScale() rl.Vector3 {
	if n.Parent == nil {
		return n.Transform.Scale
	}
	ps := n.Parent.WorldScale()
	return rl.Vector3{
		X: ps.X * n.Transform.Scale.X,
		Y: ps.Y * n.Transform.Scale.Y,
		Z: ps.Z * n.Transform.Scale.Z,
	}
}
