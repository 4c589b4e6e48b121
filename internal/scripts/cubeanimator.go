package scripts

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"deltaeditor/internal/engine"
)

// CubeAnimator bobs a node around its start position while spinning it.
type CubeAnimator struct {
	engine.BaseComponent
	StartPosition   rl.Vector3
	RotationSpeed   float32
	CurrentRotation float32
	MovementRadius  float32
	MovementSpeed   float32
	Phase           float32
	time            float32
}

func (c *CubeAnimator) Start() {
	if n := c.GetNode(); n != nil {
		c.StartPosition = n.Transform.Position
	}
}

func (c *CubeAnimator) Update(deltaTime float32) {
	n := c.GetNode()
	if n == nil {
		return
	}

	c.time += deltaTime

	t := c.time*c.MovementSpeed + c.Phase
	offset := rl.Vector3{
		X: float32(math.Cos(float64(t))) * c.MovementRadius,
		Y: float32(math.Sin(float64(t*2))) * 1.5,
		Z: float32(math.Sin(float64(t))) * c.MovementRadius,
	}

	n.Transform.Position = rl.Vector3Add(c.StartPosition, offset)

	c.CurrentRotation += c.RotationSpeed * deltaTime
	if c.CurrentRotation > 360 {
		c.CurrentRotation -= 360
	}
	n.Transform.Rotation.Y = c.CurrentRotation
}

func init() {
	engine.RegisterScript("CubeAnimator", cubeAnimatorFactory, cubeAnimatorSerializer)
}

func cubeAnimatorFactory(props map[string]any) engine.Component {
	getFloat := func(key string, fallback float32) float32 {
		if v, ok := props[key].(float64); ok {
			return float32(v)
		}
		return fallback
	}

	return &CubeAnimator{
		RotationSpeed:  getFloat("rotationSpeed", 45),
		MovementRadius: getFloat("movementRadius", 0),
		MovementSpeed:  getFloat("movementSpeed", 1),
		Phase:          getFloat("phase", 0),
	}
}

func cubeAnimatorSerializer(c engine.Component) map[string]any {
	ca, ok := c.(*CubeAnimator)
	if !ok {
		return nil
	}
	return map[string]any{
		"rotationSpeed":  ca.RotationSpeed,
		"movementRadius": ca.MovementRadius,
		"movementSpeed":  ca.MovementSpeed,
		"phase":          ca.Phase,
	}
}
