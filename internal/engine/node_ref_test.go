package engine

import "testing"

func TestNodeRefGet(t *testing.T) {
	scene := NewScene("Test")
	n := NewMesh("target", "Target")
	scene.AddNode(n)

	ref := NodeRef{ID: n.ID}

	if found := ref.Get(scene); found != n {
		t.Errorf("Get() failed: expected %v, got %v", n, found)
	}
}

func TestNodeRefGetNil(t *testing.T) {
	scene := NewScene("Test")

	if (NodeRef{}).Get(scene) != nil {
		t.Error("Get() with empty id should return nil")
	}

	if (NodeRef{ID: "missing"}).Get(scene) != nil {
		t.Error("Get() with non-existent id should return nil")
	}

	if (NodeRef{ID: "x"}).Get(nil) != nil {
		t.Error("Get() with nil scene should return nil")
	}
}

func TestNodeRefSetClear(t *testing.T) {
	n := NewMesh("abc", "Target")

	var ref NodeRef
	if ref.IsValid() {
		t.Error("zero NodeRef should be invalid")
	}

	ref.Set(n)
	if ref.ID != "abc" || !ref.IsValid() {
		t.Errorf("Set() should store the id, got %q", ref.ID)
	}

	ref.Set(nil)
	if ref.IsValid() {
		t.Error("Set(nil) should clear the reference")
	}

	ref.Set(n)
	ref.Clear()
	if ref.IsValid() {
		t.Error("Clear() should clear the reference")
	}
}
