// Package undo keeps a linear history of property edits.
//
// Each Record carries the old and new value of one property and a Handle
// bound to that property when the edit was made. Undo writes the old value
// back, Redo writes the new one. Pushing after an undo discards the redo
// branch.
//
// A Stack is not safe for concurrent use and is not re-entrant: listeners
// of OnUndo and OnRedo must not call Undo, Redo or Push.
package undo

import (
	"fmt"

	"deltaeditor/internal/engine"
	"deltaeditor/internal/log"
)

// Direction tells a record's Fn which value was just applied.
type Direction string

const (
	From Direction = "from"
	To   Direction = "to"
)

// Record is one undoable edit.
type Record struct {
	// Target is the edited object. With no Handle, Property is resolved
	// against it as a dotted path.
	Target   any
	Property string
	From     any
	To       any
	Handle   Handle

	// Fn runs after the value is applied, for edits that need more than a
	// property store (re-adding a deleted node, for example).
	Fn func(Direction)
}

func (r *Record) handle() Handle {
	if r.Handle != nil {
		return r.Handle
	}
	if r.Target == nil || r.Property == "" {
		return nil
	}
	return Path(r.Target, r.Property)
}

func (r *Record) apply(dir Direction) error {
	v := r.To
	if dir == From {
		v = r.From
	}
	var err error
	if h := r.handle(); h != nil {
		err = h.Apply(v)
	}
	if r.Fn != nil {
		r.Fn(dir)
	}
	if err != nil {
		return fmt.Errorf("%s %s: %w", dir, r.Property, err)
	}
	return nil
}

// Stack is the edit history. The index points at the last applied record
// and is -1 once every record has been undone.
type Stack struct {
	records  []*Record
	index    int
	maxDepth int

	// OnUndo fires after a record is undone.
	OnUndo engine.EventWithArg[*Record]
	// OnRedo fires after a record is pushed or redone.
	OnRedo engine.EventWithArg[*Record]
}

type Option func(*Stack)

// WithMaxDepth caps the history; the oldest records are dropped first.
// Zero or less keeps everything.
func WithMaxDepth(n int) Option {
	return func(s *Stack) {
		s.maxDepth = n
	}
}

func New(opts ...Option) *Stack {
	s := &Stack{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Push appends rec as the latest applied edit, discarding any records that
// were undone. It does not apply rec; the caller already made the change.
func (s *Stack) Push(rec *Record) {
	if rec == nil {
		return
	}
	if s.index < len(s.records)-1 {
		for i := s.index + 1; i < len(s.records); i++ {
			s.records[i] = nil
		}
		s.records = s.records[:s.index+1]
	}
	s.records = append(s.records, rec)
	if s.maxDepth > 0 && len(s.records) > s.maxDepth {
		drop := len(s.records) - s.maxDepth
		s.records = append(s.records[:0:0], s.records[drop:]...)
	}
	s.index = len(s.records) - 1
	log.Debug(log.CatUndo, "push", "property", rec.Property, "depth", len(s.records))
	s.OnRedo.Invoke(rec)
}

// Apply reads the current value through h, stores to, and pushes the edit.
func (s *Stack) Apply(target any, property string, h Handle, to any) (*Record, error) {
	rec := &Record{
		Target:   target,
		Property: property,
		From:     h.Read(),
		To:       to,
		Handle:   h,
	}
	if err := h.Apply(to); err != nil {
		return nil, fmt.Errorf("set %s: %w", property, err)
	}
	s.Push(rec)
	return rec, nil
}

// Pop removes the most recent record without applying it.
func (s *Stack) Pop() *Record {
	if len(s.records) == 0 {
		return nil
	}
	last := len(s.records) - 1
	rec := s.records[last]
	s.records[last] = nil
	s.records = s.records[:last]
	s.index = min(s.index, len(s.records)-1)
	if s.index < 0 {
		s.index = 0
	}
	return rec
}

// Undo restores the From value of the current record. It returns nil, nil
// when there is nothing to undo. A handle error is returned with the record;
// the index moves regardless so history stays consistent.
func (s *Stack) Undo() (*Record, error) {
	if len(s.records) == 0 || s.index < 0 {
		return nil, nil
	}
	rec := s.records[s.index]
	err := rec.apply(From)
	s.index--
	s.OnUndo.Invoke(rec)
	if err != nil {
		log.Warn(log.CatUndo, "undo failed", "property", rec.Property, "error", err)
		return rec, fmt.Errorf("undo: %w", err)
	}
	return rec, nil
}

// Redo re-applies the To value of the next record. It returns nil, nil when
// there is nothing to redo.
func (s *Stack) Redo() (*Record, error) {
	if len(s.records) == 0 || s.index >= len(s.records)-1 {
		return nil, nil
	}
	s.index++
	rec := s.records[s.index]
	err := rec.apply(To)
	s.OnRedo.Invoke(rec)
	if err != nil {
		log.Warn(log.CatUndo, "redo failed", "property", rec.Property, "error", err)
		return rec, fmt.Errorf("redo: %w", err)
	}
	return rec, nil
}

// Clear empties the history. Call it whenever the scene is reset so no
// record keeps a removed entity alive.
func (s *Stack) Clear() {
	clear(s.records)
	s.records = s.records[:0]
	s.index = 0
}

func (s *Stack) Len() int { return len(s.records) }

// Index is the position of the last applied record, -1 when all are undone.
func (s *Stack) Index() int { return s.index }

func (s *Stack) CanUndo() bool { return len(s.records) > 0 && s.index >= 0 }

func (s *Stack) CanRedo() bool { return s.index < len(s.records)-1 }

// Records returns the history, oldest first.
func (s *Stack) Records() []*Record {
	return append([]*Record(nil), s.records...)
}
