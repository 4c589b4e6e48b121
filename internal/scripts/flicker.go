package scripts

import (
	"math"

	"deltaeditor/internal/engine"
)

// Flicker pulses a light's intensity around its base value.
type Flicker struct {
	engine.BaseComponent
	Base      float32
	Amplitude float32
	Frequency float32
	Target    engine.NodeRef
	time      float32
}

func (f *Flicker) light() *engine.Node {
	n := f.GetNode()
	if n == nil {
		return nil
	}
	if target := f.Target.Get(n.Scene); target != nil {
		n = target
	}
	if n.Light == nil {
		return nil
	}
	return n
}

func (f *Flicker) Start() {
	if n := f.light(); n != nil && f.Base == 0 {
		f.Base = n.Light.Intensity
	}
}

func (f *Flicker) Update(deltaTime float32) {
	n := f.light()
	if n == nil {
		return
	}
	f.time += deltaTime
	wave := float32(math.Sin(float64(f.time * f.Frequency * 2 * math.Pi)))
	n.Light.Intensity = max(0, f.Base+wave*f.Amplitude)
}

func init() {
	engine.RegisterScriptWithMetadata("Flicker", flickerFactory, flickerSerializer, flickerApplier,
		map[string]string{"target": "NodeRef"})
}

func flickerFactory(props map[string]any) engine.Component {
	f := &Flicker{Amplitude: 0.2, Frequency: 4}
	flickerApplier(f, "base", props["base"])
	flickerApplier(f, "amplitude", props["amplitude"])
	flickerApplier(f, "frequency", props["frequency"])
	flickerApplier(f, "target", props["target"])
	return f
}

func flickerSerializer(c engine.Component) map[string]any {
	f, ok := c.(*Flicker)
	if !ok {
		return nil
	}
	props := map[string]any{
		"base":      f.Base,
		"amplitude": f.Amplitude,
		"frequency": f.Frequency,
	}
	if f.Target.IsValid() {
		props["target"] = f.Target.ID
	}
	return props
}

func flickerApplier(c engine.Component, prop string, value any) bool {
	f, ok := c.(*Flicker)
	if !ok {
		return false
	}
	if prop == "target" {
		id, ok := value.(string)
		if !ok {
			return false
		}
		f.Target.ID = id
		return true
	}
	v, ok := value.(float64)
	if !ok {
		return false
	}
	switch prop {
	case "base":
		f.Base = float32(v)
	case "amplitude":
		f.Amplitude = float32(v)
	case "frequency":
		f.Frequency = float32(v)
	default:
		return false
	}
	return true
}
