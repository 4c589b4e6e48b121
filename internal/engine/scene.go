package engine

import rl "github.com/gen2brain/raylib-go/raylib"

// SceneName is the reserved name that binds to the scene itself.
const SceneName = "Scene"

type Scene struct {
	Name            string
	Meshes          []*Node
	Lights          []*Node
	Cameras         []*Node
	Geometries      []*Geometry
	Materials       []*Material
	ParticleSystems []*ParticleSystem
	PostProcesses   []*PostProcess
	Animations      []*Animation
	ActionManager   *ActionManager
	Metadata        map[string]any
	Gravity         rl.Vector3

	physicsEnabled bool
}

func NewScene(name string) *Scene {
	return &Scene{
		Name:    name,
		Gravity: rl.Vector3{X: 0, Y: -9.81, Z: 0},
	}
}

// AddNode files n under its kind and links it to its parent when the parent
// is already present.
func (s *Scene) AddNode(n *Node) {
	n.Scene = s
	switch n.Kind {
	case KindLight:
		s.Lights = append(s.Lights, n)
	case KindCamera:
		s.Cameras = append(s.Cameras, n)
	default:
		s.Meshes = append(s.Meshes, n)
	}
	if n.ParentID != "" {
		if parent := s.NodeByID(n.ParentID); parent != nil && parent != n {
			parent.AddChild(n)
		}
	}
}

// RemoveNode removes n and all its descendants.
func (s *Scene) RemoveNode(n *Node) {
	for len(n.Children) > 0 {
		s.RemoveNode(n.Children[len(n.Children)-1])
	}
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
	s.Meshes = removeNode(s.Meshes, n)
	s.Lights = removeNode(s.Lights, n)
	s.Cameras = removeNode(s.Cameras, n)
	for _, ps := range s.ParticleSystems {
		if ps.EmitterNode == n {
			ps.EmitterPosition = n.WorldPosition()
			ps.EmitterNode = nil
		}
	}
	n.Scene = nil
}

func removeNode(list []*Node, n *Node) []*Node {
	for i, existing := range list {
		if existing == n {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// Nodes returns meshes, lights and cameras in that order.
func (s *Scene) Nodes() []*Node {
	out := make([]*Node, 0, len(s.Meshes)+len(s.Lights)+len(s.Cameras))
	out = append(out, s.Meshes...)
	out = append(out, s.Lights...)
	return append(out, s.Cameras...)
}

func (s *Scene) NodeByID(id string) *Node {
	for _, n := range s.Nodes() {
		if n.ID == id {
			return n
		}
	}
	return nil
}

func (s *Scene) NodeByName(name string) *Node {
	for _, n := range s.Nodes() {
		if n.Name == name {
			return n
		}
	}
	return nil
}

func (s *Scene) MeshByName(name string) *Node {
	for _, n := range s.Meshes {
		if n.Name == name {
			return n
		}
	}
	return nil
}

// ResolvePendingParents links nodes whose parent appeared after them and
// returns the ones whose parent is still missing.
func (s *Scene) ResolvePendingParents() []*Node {
	var missing []*Node
	for _, n := range s.Nodes() {
		if n.ParentID == "" || n.Parent != nil {
			continue
		}
		parent := s.NodeByID(n.ParentID)
		if parent == nil || parent == n {
			missing = append(missing, n)
			continue
		}
		parent.AddChild(n)
	}
	return missing
}

func (s *Scene) AddGeometry(g *Geometry) {
	s.Geometries = append(s.Geometries, g)
}

func (s *Scene) GeometryByID(id string) *Geometry {
	for _, g := range s.Geometries {
		if g.ID == id {
			return g
		}
	}
	return nil
}

func (s *Scene) AddMaterial(m *Material) {
	s.Materials = append(s.Materials, m)
}

// RemoveMaterial drops m from the scene and from every mesh using it.
func (s *Scene) RemoveMaterial(m *Material) {
	for i, existing := range s.Materials {
		if existing == m {
			s.Materials = append(s.Materials[:i], s.Materials[i+1:]...)
			break
		}
	}
	for _, mesh := range s.Meshes {
		if mesh.Material == m {
			mesh.Material = nil
		}
	}
}

func (s *Scene) MaterialByID(id string) *Material {
	for _, m := range s.Materials {
		if m.ID == id {
			return m
		}
	}
	return nil
}

func (s *Scene) MaterialByName(name string) *Material {
	for _, m := range s.Materials {
		if m.Name == name {
			return m
		}
	}
	return nil
}

func (s *Scene) AddParticleSystem(ps *ParticleSystem) {
	s.ParticleSystems = append(s.ParticleSystems, ps)
}

func (s *Scene) RemoveParticleSystem(ps *ParticleSystem) {
	for i, existing := range s.ParticleSystems {
		if existing == ps {
			s.ParticleSystems = append(s.ParticleSystems[:i], s.ParticleSystems[i+1:]...)
			return
		}
	}
}

func (s *Scene) ParticleSystemByID(id string) *ParticleSystem {
	for _, ps := range s.ParticleSystems {
		if ps.ID == id {
			return ps
		}
	}
	return nil
}

// ShadowGenerators returns the generator of every light that has one.
func (s *Scene) ShadowGenerators() []*ShadowGenerator {
	var out []*ShadowGenerator
	for _, l := range s.Lights {
		if l.ShadowGenerator != nil {
			out = append(out, l.ShadowGenerator)
		}
	}
	return out
}

// EnablePhysics turns physics on. Calling it again only updates gravity.
func (s *Scene) EnablePhysics(gravity rl.Vector3) {
	s.Gravity = gravity
	s.physicsEnabled = true
}

func (s *Scene) PhysicsEnabled() bool {
	return s.physicsEnabled
}

// SuspendInteractions switches off every action manager in the scene and
// returns a func that puts each one back the way it was.
func (s *Scene) SuspendInteractions() (restore func()) {
	var managers []*ActionManager
	var previous []bool
	for _, n := range s.Meshes {
		if n.ActionManager != nil {
			managers = append(managers, n.ActionManager)
			previous = append(previous, n.ActionManager.suspended)
		}
	}
	if s.ActionManager != nil {
		managers = append(managers, s.ActionManager)
		previous = append(previous, s.ActionManager.suspended)
	}
	for _, am := range managers {
		am.suspended = true
	}
	return func() {
		for i, am := range managers {
			am.suspended = previous[i]
		}
	}
}

func (s *Scene) Start() {
	for _, n := range s.Nodes() {
		n.Start()
	}
}

func (s *Scene) Update(deltaTime float32) {
	for _, n := range s.Nodes() {
		n.Update(deltaTime)
	}
}
