package game

import (
	"fmt"
	"slices"

	"deltaeditor/internal/engine"
	"deltaeditor/internal/undo"
)

// deletedNode is one node of a removed subtree, with what it was linked to.
type deletedNode struct {
	node     *engine.Node
	parent   *engine.Node
	emitting []*engine.ParticleSystem
}

// snapshotSubtree lists n and its descendants parents first.
func snapshotSubtree(scene *engine.Scene, n *engine.Node) []deletedNode {
	var out []deletedNode
	var walk func(*engine.Node)
	walk = func(cur *engine.Node) {
		entry := deletedNode{node: cur, parent: cur.Parent}
		for _, ps := range scene.ParticleSystems {
			if ps.EmitterNode == cur {
				entry.emitting = append(entry.emitting, ps)
			}
		}
		out = append(out, entry)
		for _, child := range cur.Children {
			walk(child)
		}
	}
	walk(n)
	return out
}

func restoreSubtree(scene *engine.Scene, nodes []deletedNode) {
	for _, d := range nodes {
		scene.AddNode(d.node)
		if d.parent != nil && d.node.Parent != d.parent {
			d.parent.AddChild(d.node)
		}
		for _, ps := range d.emitting {
			ps.EmitterNode = d.node
		}
	}
}

// AddNode adds n to the scene under parent (nil for the root) and records it
// as added by the editor.
func (e *Editor) AddNode(n *engine.Node, parent *engine.Node) {
	scene := e.Scene()
	scene.AddNode(n)
	if parent != nil {
		parent.AddChild(n)
	}
	e.Tracker.MarkAdded(n)
	nodes := snapshotSubtree(scene, n)
	e.History.Push(&undo.Record{
		Property: "add " + n.Name,
		Fn: func(dir undo.Direction) {
			if dir == undo.From {
				scene.RemoveNode(n)
			} else {
				restoreSubtree(scene, nodes)
			}
		},
	})
	e.Selected = n
}

// DeleteNode removes n and its descendants. Undo puts them back with their
// parent links and particle emitters.
func (e *Editor) DeleteNode(n *engine.Node) {
	scene := e.Scene()
	nodes := snapshotSubtree(scene, n)
	scene.RemoveNode(n)
	if e.Selected == n {
		e.Selected = nil
	}
	e.History.Push(&undo.Record{
		Property: "delete " + n.Name,
		Fn: func(dir undo.Direction) {
			if dir == undo.From {
				restoreSubtree(scene, nodes)
				e.Selected = n
			} else {
				scene.RemoveNode(n)
			}
		},
	})
}

// AddMaterial adds m to the scene and assigns it to meshes.
func (e *Editor) AddMaterial(m *engine.Material, meshes ...*engine.Node) {
	scene := e.Scene()
	previous := make([]*engine.Material, len(meshes))
	apply := func() {
		if !slices.Contains(scene.Materials, m) {
			scene.AddMaterial(m)
		}
		for _, mesh := range meshes {
			mesh.Material = m
		}
	}
	for i, mesh := range meshes {
		previous[i] = mesh.Material
	}
	apply()
	e.Tracker.MarkAdded(m)
	e.History.Push(&undo.Record{
		Property: "add material " + m.Name,
		Fn: func(dir undo.Direction) {
			if dir == undo.To {
				apply()
				return
			}
			scene.RemoveMaterial(m)
			for i, mesh := range meshes {
				mesh.Material = previous[i]
			}
		},
	})
}

// AddParticleSystem adds ps to the scene, emitting from emitter when it is
// not nil.
func (e *Editor) AddParticleSystem(ps *engine.ParticleSystem, emitter *engine.Node) {
	scene := e.Scene()
	if emitter != nil {
		ps.EmitterNode = emitter
	}
	scene.AddParticleSystem(ps)
	e.Tracker.MarkAdded(ps)
	e.History.Push(&undo.Record{
		Property: "add particle system " + ps.Name,
		Fn: func(dir undo.Direction) {
			if dir == undo.From {
				scene.RemoveParticleSystem(ps)
			} else {
				scene.AddParticleSystem(ps)
			}
		},
	})
}

// AddShadowGenerator gives light a new shadow generator.
func (e *Editor) AddShadowGenerator(light *engine.Node, mapSize int) (*engine.ShadowGenerator, error) {
	if light.Kind != engine.KindLight {
		return nil, fmt.Errorf("%s is not a light", light.Name)
	}
	previous := light.ShadowGenerator
	sg := engine.NewShadowGenerator(mapSize, light)
	e.Tracker.MarkAdded(sg)
	e.History.Push(&undo.Record{
		Property: "add shadow generator " + light.Name,
		Fn: func(dir undo.Direction) {
			if dir == undo.From {
				light.ShadowGenerator = previous
			} else {
				light.ShadowGenerator = sg
			}
		},
	})
	return sg, nil
}

// AddAnimation appends a to n, or to the scene when n is nil.
func (e *Editor) AddAnimation(n *engine.Node, a *engine.Animation) {
	list := &e.Scene().Animations
	if n != nil {
		list = &n.Animations
	}
	*list = append(*list, a)
	e.Tracker.MarkAdded(a)
	e.History.Push(&undo.Record{
		Property: "add animation " + a.Name,
		Fn: func(dir undo.Direction) {
			if dir == undo.From {
				*list = slices.DeleteFunc(*list, func(x *engine.Animation) bool { return x == a })
			} else if !slices.Contains(*list, a) {
				*list = append(*list, a)
			}
		},
	})
}

// AddImpostor gives mesh a physics impostor, enabling physics on the scene
// first when needed.
func (e *Editor) AddImpostor(mesh *engine.Node, impostorType int, params engine.ImpostorParams) (*engine.PhysicsImpostor, error) {
	scene := e.Scene()
	if !scene.PhysicsEnabled() {
		scene.EnablePhysics(scene.Gravity)
	}
	previous := mesh.Impostor
	p, err := engine.NewPhysicsImpostor(mesh, impostorType, params, scene)
	if err != nil {
		return nil, err
	}
	e.Tracker.MarkAdded(p)
	e.History.Push(&undo.Record{
		Property: "add impostor " + mesh.Name,
		Fn: func(dir undo.Direction) {
			if dir == undo.From {
				mesh.Impostor = previous
			} else {
				mesh.Impostor = p
			}
		},
	})
	return p, nil
}

// AddActionManager gives n, or the scene when n is nil, a new set of
// interaction bindings.
func (e *Editor) AddActionManager(n *engine.Node) *engine.ActionManager {
	scene := e.Scene()
	slot := &scene.ActionManager
	if n != nil {
		slot = &n.ActionManager
	}
	previous := *slot
	am := engine.NewActionManager(scene, n)
	e.Tracker.MarkAdded(am)
	e.History.Push(&undo.Record{
		Property: "add actions",
		Fn: func(dir undo.Direction) {
			if dir == undo.From {
				*slot = previous
			} else {
				*slot = am
			}
		},
	})
	return am
}
