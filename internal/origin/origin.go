// Package origin records which scene entities the editor introduced.
//
// The base scene asset owns everything it loads. Entities the editor creates
// (or synthesizes while importing a project) are marked here, keyed by their
// UID, so the scene graph itself carries no change-tracking state.
package origin

import "deltaeditor/internal/engine"

// Origin says where an entity came from.
type Origin int

const (
	// PreExisting entities belong to the base scene asset.
	PreExisting Origin = iota
	// Added entities were created by the editor and are exported with the project.
	Added
	// SyntheticEmitter marks a placeholder node created only to carry a
	// particle system's emitter position.
	SyntheticEmitter
)

func (o Origin) String() string {
	switch o {
	case PreExisting:
		return "pre-existing"
	case Added:
		return "added"
	case SyntheticEmitter:
		return "synthetic-emitter"
	default:
		return "unknown"
	}
}

// Tracker is the editor-owned side table of entity origins.
// The zero value is ready to use. It is not safe for concurrent use.
type Tracker struct {
	origins map[uint64]Origin
}

func NewTracker() *Tracker {
	return &Tracker{origins: make(map[uint64]Origin)}
}

// Mark records the origin of e. Marking PreExisting removes the entry.
func (t *Tracker) Mark(e engine.Entity, o Origin) {
	if e == nil {
		return
	}
	if o == PreExisting {
		delete(t.origins, e.EntityUID())
		return
	}
	if t.origins == nil {
		t.origins = make(map[uint64]Origin)
	}
	t.origins[e.EntityUID()] = o
}

// MarkAdded is Mark(e, Added).
func (t *Tracker) MarkAdded(e engine.Entity) {
	t.Mark(e, Added)
}

// Of returns the recorded origin of e; untracked entities are PreExisting.
func (t *Tracker) Of(e engine.Entity) Origin {
	if e == nil {
		return PreExisting
	}
	return t.origins[e.EntityUID()]
}

// IsAdded reports whether e was created by the editor.
func (t *Tracker) IsAdded(e engine.Entity) bool {
	return t.Of(e) == Added
}

// IsSynthetic reports whether e is a placeholder emitter.
func (t *Tracker) IsSynthetic(e engine.Entity) bool {
	return t.Of(e) == SyntheticEmitter
}

// Forget drops whatever is recorded for e.
func (t *Tracker) Forget(e engine.Entity) {
	if e == nil {
		return
	}
	delete(t.origins, e.EntityUID())
}

// Len returns the number of tracked entities.
func (t *Tracker) Len() int {
	return len(t.origins)
}

// Reset forgets every entity. Called when the scene is reset.
func (t *Tracker) Reset() {
	clear(t.origins)
}
