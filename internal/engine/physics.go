package engine

import "errors"

// Impostor shapes, numbered as in the scene file format.
const (
	NoImpostor       = 0
	SphereImpostor   = 1
	BoxImpostor      = 2
	PlaneImpostor    = 3
	MeshImpostor     = 4
	CylinderImpostor = 7
)

var ErrPhysicsDisabled = errors.New("physics is not enabled on the scene")

type ImpostorParams struct {
	Mass        float32
	Friction    float32
	Restitution float32
}

// PhysicsImpostor is the rigid body stand-in for a mesh.
type PhysicsImpostor struct {
	UID    uint64
	Object *Node
	Type   int
	Params ImpostorParams
}

// NewPhysicsImpostor attaches an impostor to n. The scene must have physics enabled.
func NewPhysicsImpostor(n *Node, impostorType int, params ImpostorParams, scene *Scene) (*PhysicsImpostor, error) {
	if !scene.PhysicsEnabled() {
		return nil, ErrPhysicsDisabled
	}
	p := &PhysicsImpostor{
		UID:    NewUID(),
		Object: n,
		Type:   impostorType,
		Params: params,
	}
	n.Impostor = p
	return p, nil
}

func (p *PhysicsImpostor) EntityUID() uint64 { return p.UID }

// Param returns mass, friction or restitution by name; unknown names are 0.
func (p *PhysicsImpostor) Param(name string) float32 {
	switch name {
	case "mass":
		return p.Params.Mass
	case "friction":
		return p.Params.Friction
	case "restitution":
		return p.Params.Restitution
	default:
		return 0
	}
}
