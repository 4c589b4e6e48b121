package engine

import (
	"encoding/json"
	"testing"
)

// pulse points at another node, the way behavior scripts usually do.
type pulse struct {
	BaseComponent
	Rate   float32
	Target NodeRef
}

func pulseFactory(props map[string]any) Component {
	p := &pulse{Rate: 1}
	pulseApplier(p, "rate", props["rate"])
	pulseApplier(p, "target", props["target"])
	return p
}

func pulseSerializer(c Component) map[string]any {
	p, ok := c.(*pulse)
	if !ok {
		return nil
	}
	props := map[string]any{"rate": p.Rate}
	if p.Target.IsValid() {
		props["target"] = p.Target.ID
	}
	return props
}

func pulseApplier(c Component, prop string, value any) bool {
	p, ok := c.(*pulse)
	if !ok {
		return false
	}
	switch prop {
	case "rate":
		v, ok := value.(float64)
		if !ok {
			return false
		}
		p.Rate = float32(v)
	case "target":
		id, ok := value.(string)
		if !ok {
			return false
		}
		p.Target.ID = id
	default:
		return false
	}
	return true
}

// counter has no applier and no declared field types.
type counter struct {
	BaseComponent
	Count int
}

func counterFactory(props map[string]any) Component {
	c := &counter{}
	if v, ok := props["count"].(float64); ok {
		c.Count = int(v)
	}
	return c
}

func counterSerializer(c Component) map[string]any {
	ct, ok := c.(*counter)
	if !ok {
		return nil
	}
	return map[string]any{"count": ct.Count}
}

// withRegistry gives the test an empty script registry and puts the real one
// back afterwards.
func withRegistry(t *testing.T) {
	t.Helper()
	saved := scriptRegistry
	scriptRegistry = map[string]scriptEntry{}
	t.Cleanup(func() { scriptRegistry = saved })
}

func registerTestScripts() {
	RegisterScriptWithMetadata("Pulse", pulseFactory, pulseSerializer, pulseApplier,
		map[string]string{"target": "NodeRef"})
	RegisterScript("Counter", counterFactory, counterSerializer)
}

func TestRegistrationVariantsShareOneNamespace(t *testing.T) {
	withRegistry(t)
	registerTestScripts()
	RegisterScriptWithApplier("Applied", pulseFactory, nil, pulseApplier)

	got := GetRegisteredScripts()
	want := []string{"Applied", "Counter", "Pulse"}
	if len(got) != len(want) {
		t.Fatalf("GetRegisteredScripts() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("GetRegisteredScripts() = %v, want %v", got, want)
		}
	}

	defer func() {
		if recover() == nil {
			t.Error("registering Pulse again under another variant should panic")
		}
	}()
	RegisterScript("Pulse", counterFactory, counterSerializer)
}

func TestScriptSurvivesJSONRoundTrip(t *testing.T) {
	withRegistry(t)
	registerTestScripts()

	scene := NewScene("Test")
	lamp := NewLight("lamp", "Lamp", "point")
	holder := NewMesh("holder", "Holder")
	scene.AddNode(lamp)
	scene.AddNode(holder)

	var props map[string]any
	if err := json.Unmarshal([]byte(`{"rate": 2.5, "target": "lamp"}`), &props); err != nil {
		t.Fatal(err)
	}
	c := CreateScript("Pulse", props)
	if c == nil {
		t.Fatal("CreateScript returned nil for a registered script")
	}
	holder.AddComponent(c)
	if got := c.(*pulse).Target.Get(scene); got != lamp {
		t.Errorf("target resolved to %v, want the lamp", got)
	}

	name, saved, ok := SerializeScript(c)
	if !ok || name != "Pulse" {
		t.Fatalf("SerializeScript = %q, %v", name, ok)
	}
	data, err := json.Marshal(saved)
	if err != nil {
		t.Fatal(err)
	}
	var reloaded map[string]any
	if err := json.Unmarshal(data, &reloaded); err != nil {
		t.Fatal(err)
	}

	again := CreateScript(name, reloaded).(*pulse)
	if again.Rate != 2.5 || again.Target.ID != "lamp" {
		t.Errorf("reloaded pulse = %+v", again)
	}
}

func TestUnknownScripts(t *testing.T) {
	withRegistry(t)
	registerTestScripts()

	if c := CreateScript("Missing", nil); c != nil {
		t.Errorf("CreateScript(Missing) = %v, want nil", c)
	}
	if name, _, ok := SerializeScript(&BaseComponent{}); ok {
		t.Errorf("a plain component serialized as %q", name)
	}
}

func TestApplyScriptPropertyDispatch(t *testing.T) {
	withRegistry(t)
	registerTestScripts()

	p := &pulse{Rate: 1}
	tests := []struct {
		name  string
		c     Component
		prop  string
		value any
		want  bool
	}{
		{"number", p, "rate", 4.0, true},
		{"node ref", p, "target", "lamp", true},
		{"wrong value type", p, "rate", "fast", false},
		{"unknown prop", p, "color", 1.0, false},
		{"script without applier", &counter{}, "count", 3.0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ApplyScriptProperty(tt.c, tt.prop, tt.value); got != tt.want {
				t.Errorf("ApplyScriptProperty(%s) = %v, want %v", tt.prop, got, tt.want)
			}
		})
	}
	if p.Rate != 4 || p.Target.ID != "lamp" {
		t.Errorf("pulse after applies = %+v", p)
	}
}

func TestScriptFieldTypes(t *testing.T) {
	withRegistry(t)
	registerTestScripts()

	if got := GetScriptFieldType(&pulse{}, "target"); got != "NodeRef" {
		t.Errorf("pulse target type = %q, want NodeRef", got)
	}
	if got := GetScriptFieldType(&pulse{}, "rate"); got != "" {
		t.Errorf("undeclared field type = %q, want empty", got)
	}
	if got := GetScriptFieldType(&counter{}, "count"); got != "" {
		t.Errorf("counter declares no types, got %q", got)
	}
	if got := GetScriptFieldType(&BaseComponent{}, "target"); got != "" {
		t.Errorf("unregistered component type = %q, want empty", got)
	}
}
