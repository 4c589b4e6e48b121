package undo

import (
	"errors"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"deltaeditor/internal/engine"
)

func TestLightIntensityUndoRedo(t *testing.T) {
	light := engine.NewLight("", "LightA", "point")
	light.Light.Intensity = 1.0

	s := New()
	s.Push(&Record{Target: light, Property: "Light.Intensity", From: 1.0, To: 2.0})

	rec, err := s.Undo()
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, float32(1.0), light.Light.Intensity)

	rec, err = s.Redo()
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, float32(2.0), light.Light.Intensity)
}

func TestBranchTruncation(t *testing.T) {
	var v int
	h := Field(&v)
	a := &Record{Property: "a", From: 0, To: 1, Handle: h}
	b := &Record{Property: "b", From: 1, To: 2, Handle: h}
	c := &Record{Property: "c", From: 1, To: 3, Handle: h}

	s := New()
	s.Push(a)
	s.Push(b)
	_, err := s.Undo()
	require.NoError(t, err)
	s.Push(c)

	assert.Equal(t, []*Record{a, c}, s.Records())

	rec, err := s.Redo()
	require.NoError(t, err)
	assert.Nil(t, rec, "nothing left to redo, and never b")
	assert.False(t, s.CanRedo())
}

func TestEmptyStackOperations(t *testing.T) {
	s := New()

	rec, err := s.Undo()
	assert.Nil(t, rec)
	assert.NoError(t, err)

	rec, err = s.Redo()
	assert.Nil(t, rec)
	assert.NoError(t, err)

	assert.Nil(t, s.Pop())
	assert.False(t, s.CanUndo())
}

func TestUndoPastStartAndRedoPastEnd(t *testing.T) {
	var v int
	s := New()
	s.Push(&Record{From: 0, To: 1, Handle: Field(&v)})

	_, err := s.Undo()
	require.NoError(t, err)
	assert.Equal(t, -1, s.Index())

	rec, err := s.Undo()
	assert.Nil(t, rec)
	assert.NoError(t, err)

	_, err = s.Redo()
	require.NoError(t, err)
	rec, err = s.Redo()
	assert.Nil(t, rec)
	assert.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestPopRemovesWithoutApplying(t *testing.T) {
	v := 5
	s := New()
	s.Push(&Record{From: 4, To: 5, Handle: Field(&v)})
	s.Push(&Record{From: 5, To: 5, Handle: Field(&v)})

	rec := s.Pop()
	require.NotNil(t, rec)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 0, s.Index())
	assert.Equal(t, 5, v)

	s.Pop()
	assert.Equal(t, 0, s.Index(), "index clamps at 0")
}

func TestClear(t *testing.T) {
	var v int
	s := New()
	s.Push(&Record{From: 0, To: 1, Handle: Field(&v)})
	s.Push(&Record{From: 1, To: 2, Handle: Field(&v)})

	s.Clear()

	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, s.Index())
	rec, _ := s.Undo()
	assert.Nil(t, rec)

	s.Push(&Record{From: 2, To: 3, Handle: Field(&v)})
	assert.Equal(t, 0, s.Index())
}

func TestEventsAndFn(t *testing.T) {
	var v int
	var dirs []Direction
	var undone, redone []*Record

	s := New()
	s.OnUndo.AddListener(func(r *Record) { undone = append(undone, r) })
	s.OnRedo.AddListener(func(r *Record) { redone = append(redone, r) })

	rec := &Record{From: 0, To: 1, Handle: Field(&v), Fn: func(d Direction) { dirs = append(dirs, d) }}
	s.Push(rec)
	_, _ = s.Undo()
	_, _ = s.Redo()

	assert.Equal(t, []*Record{rec, rec}, redone, "push and redo both fire OnRedo")
	assert.Equal(t, []*Record{rec}, undone)
	assert.Equal(t, []Direction{From, To}, dirs)
}

func TestStalePathIsReported(t *testing.T) {
	mesh := engine.NewMesh("", "Box")
	s := New()
	s.Push(&Record{Target: mesh, Property: "Material.Alpha", From: float32(1), To: float32(0.5)})

	rec, err := s.Undo()
	require.NotNil(t, rec)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStalePath))
	assert.Equal(t, -1, s.Index(), "index moves even when the path is stale")
}

func TestMaxDepth(t *testing.T) {
	var v int
	s := New(WithMaxDepth(3))
	for i := 1; i <= 5; i++ {
		s.Push(&Record{From: i - 1, To: i, Handle: Field(&v)})
		v = i
	}

	require.Equal(t, 3, s.Len())
	assert.Equal(t, 2, s.Index())
	assert.Equal(t, 2, s.Records()[0].From)

	for s.CanUndo() {
		_, err := s.Undo()
		require.NoError(t, err)
	}
	assert.Equal(t, 2, v, "oldest edits are no longer undoable")
}

func TestApplyCapturesFrom(t *testing.T) {
	n := engine.NewMesh("", "Box")
	s := New()

	rec, err := s.Apply(n, "Transform.Position", Field(&n.Transform.Position), rl.Vector3{X: 3})
	require.NoError(t, err)
	assert.Equal(t, rl.Vector3{}, rec.From)
	assert.Equal(t, rl.Vector3{X: 3}, n.Transform.Position)

	_, err = s.Undo()
	require.NoError(t, err)
	assert.Equal(t, rl.Vector3{}, n.Transform.Position)
}

func TestApplyRejectsMismatchedValue(t *testing.T) {
	var name string
	s := New()

	_, err := s.Apply(nil, "name", Field(&name), 42)
	require.ErrorIs(t, err, ErrTypeMismatch)
	assert.Equal(t, 0, s.Len())
}

// Undoing K of N edits and redoing them lands every property back on its
// post-edit value; undoing all N restores the initial values.
func TestUndoRedoIdentity(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		props := make([]float32, 4)
		initial := append([]float32(nil), props...)
		s := New()

		n := rapid.IntRange(1, 30).Draw(rt, "n")
		for i := 0; i < n; i++ {
			idx := rapid.IntRange(0, len(props)-1).Draw(rt, "prop")
			to := rapid.Float32Range(-100, 100).Draw(rt, "value")
			_, err := s.Apply(nil, "p", Field(&props[idx]), to)
			if err != nil {
				rt.Fatalf("apply: %v", err)
			}
		}
		edited := append([]float32(nil), props...)

		k := rapid.IntRange(0, n).Draw(rt, "k")
		for i := 0; i < k; i++ {
			if _, err := s.Undo(); err != nil {
				rt.Fatalf("undo: %v", err)
			}
		}
		if k == n {
			for i := range props {
				if props[i] != initial[i] {
					rt.Fatalf("prop %d = %v after undoing everything, want %v", i, props[i], initial[i])
				}
			}
		}
		for i := 0; i < k; i++ {
			if _, err := s.Redo(); err != nil {
				rt.Fatalf("redo: %v", err)
			}
		}
		for i := range props {
			if props[i] != edited[i] {
				rt.Fatalf("prop %d = %v after redo, want %v", i, props[i], edited[i])
			}
		}
	})
}
