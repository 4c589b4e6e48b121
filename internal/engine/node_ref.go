package engine

// NodeRef is a serializable reference to a Node by id.
// Extensions and shadow generators store these instead of pointers so the
// reference survives a save/load cycle.
type NodeRef struct {
	ID string
}

// Get resolves the reference to the live node.
// Returns nil if the reference is empty or the node doesn't exist.
func (r NodeRef) Get(scene *Scene) *Node {
	if r.ID == "" || scene == nil {
		return nil
	}
	return scene.NodeByID(r.ID)
}

// IsValid reports whether the reference points to something.
// Note: This doesn't check if the node actually exists in the scene.
func (r NodeRef) IsValid() bool {
	return r.ID != ""
}

// Set points the reference at n. Pass nil to clear it.
func (r *NodeRef) Set(n *Node) {
	if n == nil {
		r.ID = ""
	} else {
		r.ID = n.ID
	}
}

func (r *NodeRef) Clear() {
	r.ID = ""
}
