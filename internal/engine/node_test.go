package engine

import "testing"

func TestNewMesh(t *testing.T) {
	n := NewMesh("", "TestObject")

	if n.Name != "TestObject" {
		t.Errorf("Expected name 'TestObject', got '%s'", n.Name)
	}

	if n.UID == 0 {
		t.Error("UID should not be 0")
	}

	if n.ID == "" {
		t.Error("empty id should be generated")
	}

	if n.Kind != KindMesh {
		t.Errorf("Expected KindMesh, got %v", n.Kind)
	}

	if n.components == nil {
		t.Error("components slice should be initialized")
	}
}

func TestNodeUniqueUIDs(t *testing.T) {
	obj1 := NewMesh("a", "First")
	obj2 := NewLight("b", "Second", "point")
	obj3 := NewCamera("c", "Third")

	if obj1.UID == obj2.UID || obj2.UID == obj3.UID || obj1.UID == obj3.UID {
		t.Error("Nodes should have unique UIDs")
	}
}

func TestNodeKindString(t *testing.T) {
	cases := map[NodeKind]string{
		KindMesh:     "Mesh",
		KindLight:    "Light",
		KindCamera:   "Camera",
		NodeKind(42): "Unknown!",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("NodeKind(%d).String() = %q, want %q", int(kind), got, want)
		}
	}
}

func TestNodeParentChild(t *testing.T) {
	parent := NewMesh("", "Parent")
	child := NewMesh("", "Child")

	parent.AddChild(child)

	if child.Parent != parent {
		t.Error("Child.Parent should be set")
	}

	if len(parent.Children) != 1 || parent.Children[0] != child {
		t.Errorf("Expected child in parent's Children, got %v", parent.Children)
	}
}

func TestNodeReparent(t *testing.T) {
	a := NewMesh("", "A")
	b := NewMesh("", "B")
	child := NewMesh("", "Child")

	a.AddChild(child)
	b.AddChild(child)

	if len(a.Children) != 0 {
		t.Errorf("old parent should lose the child, has %d", len(a.Children))
	}
	if child.Parent != b {
		t.Error("child should point at the new parent")
	}
}

func TestNodeRemoveChild(t *testing.T) {
	parent := NewMesh("", "Parent")
	child1 := NewMesh("", "Child1")
	child2 := NewMesh("", "Child2")

	parent.AddChild(child1)
	parent.AddChild(child2)

	parent.RemoveChild(child1)

	if len(parent.Children) != 1 {
		t.Errorf("Expected 1 child after removal, got %d", len(parent.Children))
	}

	if parent.Children[0] != child2 {
		t.Error("Wrong child removed")
	}

	if child1.Parent != nil {
		t.Error("Removed child should have nil parent")
	}
}

func TestNodeAddComponent(t *testing.T) {
	n := NewMesh("", "Test")
	comp := &BaseComponent{}

	n.AddComponent(comp)

	if len(n.components) != 1 {
		t.Errorf("Expected 1 component, got %d", len(n.components))
	}

	if comp.node != n {
		t.Error("Component.node should be set")
	}

	if !n.RemoveComponent(comp) {
		t.Error("RemoveComponent should report the removal")
	}
	if comp.node != nil {
		t.Error("removed component should be detached")
	}
}

func TestNodeGetComponent(t *testing.T) {
	n := NewMesh("", "Test")
	comp := &BaseComponent{}

	n.AddComponent(comp)

	found := GetComponent[*BaseComponent](n)
	if found != comp {
		t.Error("GetComponent failed to find component")
	}
}

func TestNodeStartCalledOnce(t *testing.T) {
	n := NewMesh("", "Test")

	n.Start()
	if !n.started {
		t.Error("started flag should be true after Start()")
	}

	n.Start() // Should not panic or cause issues
}

func TestNodeWorldPosition(t *testing.T) {
	parent := NewMesh("", "Parent")
	parent.Transform.Position.X = 10
	parent.Transform.Scale.X = 2

	child := NewMesh("", "Child")
	child.Transform.Position.X = 1
	parent.AddChild(child)

	got := child.WorldPosition()
	if got.X != 12 || got.Y != 0 || got.Z != 0 {
		t.Errorf("Expected world position (12,0,0), got %v", got)
	}
}
