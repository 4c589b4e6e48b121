package scripts

import "deltaeditor/internal/engine"

// Rotator is a simple script that spins a node around the Y axis.
type Rotator struct {
	engine.BaseComponent
	Speed float32
}

func (r *Rotator) Update(deltaTime float32) {
	n := r.GetNode()
	if n == nil {
		return
	}
	n.Transform.Rotation.Y += r.Speed * deltaTime
	if n.Transform.Rotation.Y > 360 {
		n.Transform.Rotation.Y -= 360
	}
}

func init() {
	engine.RegisterScriptWithApplier("Rotator", rotatorFactory, rotatorSerializer, rotatorApplier)
}

func rotatorFactory(props map[string]any) engine.Component {
	speed := float32(90)
	if v, ok := props["speed"].(float64); ok {
		speed = float32(v)
	}
	return &Rotator{Speed: speed}
}

func rotatorSerializer(c engine.Component) map[string]any {
	r, ok := c.(*Rotator)
	if !ok {
		return nil
	}
	return map[string]any{
		"speed": r.Speed,
	}
}

func rotatorApplier(c engine.Component, prop string, value any) bool {
	r, ok := c.(*Rotator)
	if !ok || prop != "speed" {
		return false
	}
	v, ok := value.(float64)
	if !ok {
		return false
	}
	r.Speed = float32(v)
	return true
}
