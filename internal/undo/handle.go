package undo

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	// ErrStalePath means a dotted path no longer leads to a settable value,
	// usually because an intermediate object was removed or reset.
	ErrStalePath = errors.New("stale property path")
	// ErrTypeMismatch means a recorded value cannot be stored in the target.
	ErrTypeMismatch = errors.New("value type does not match property")
)

// Handle reads and writes one property of a live object. Handles are bound
// when the edit is recorded, so undo does not look the property up again.
type Handle interface {
	Apply(v any) error
	Read() any
}

type fieldHandle[T any] struct {
	ptr *T
}

// Field returns a handle on the value ptr points at. Applied values that are
// not a T are converted when Go allows it (a JSON float64 into a float32
// field, for example).
func Field[T any](ptr *T) Handle {
	return fieldHandle[T]{ptr: ptr}
}

func (h fieldHandle[T]) Read() any {
	return *h.ptr
}

func (h fieldHandle[T]) Apply(v any) error {
	typed, err := convert[T](v)
	if err != nil {
		return err
	}
	*h.ptr = typed
	return nil
}

type funcHandle[T any] struct {
	read  func() T
	apply func(T)
}

// Func returns a handle built from a getter and a setter, for properties
// that need more than a field store (reparenting, setters with side effects).
func Func[T any](read func() T, apply func(T)) Handle {
	return funcHandle[T]{read: read, apply: apply}
}

func (h funcHandle[T]) Read() any {
	return h.read()
}

func (h funcHandle[T]) Apply(v any) error {
	typed, err := convert[T](v)
	if err != nil {
		return err
	}
	h.apply(typed)
	return nil
}

func convert[T any](v any) (T, error) {
	var zero T
	if v == nil {
		return zero, nil
	}
	if typed, ok := v.(T); ok {
		return typed, nil
	}
	want := reflect.TypeFor[T]()
	rv := reflect.ValueOf(v)
	if rv.Type().ConvertibleTo(want) && sameKindFamily(rv.Type(), want) {
		return rv.Convert(want).Interface().(T), nil
	}
	return zero, fmt.Errorf("%w: %T into %s", ErrTypeMismatch, v, want)
}

// sameKindFamily keeps Convert to numeric-to-numeric and same-kind cases so
// an int is never silently turned into a string.
func sameKindFamily(from, to reflect.Type) bool {
	return isNumeric(from.Kind()) && isNumeric(to.Kind()) || from.Kind() == to.Kind()
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

type pathHandle struct {
	target   any
	segments []string
}

// Path returns a handle that resolves a dotted path ("Light.Intensity",
// "Transform.Position.X", "Metadata.speed") against target each time it is
// used. Segments match exported struct fields case-insensitively, or string
// map keys. A path that cannot be resolved reports ErrStalePath.
func Path(target any, path string) Handle {
	return pathHandle{target: target, segments: strings.Split(path, ".")}
}

func (h pathHandle) Read() any {
	v, err := h.resolve()
	if err != nil {
		return nil
	}
	return v.get().Interface()
}

func (h pathHandle) Apply(v any) error {
	slot, err := h.resolve()
	if err != nil {
		return err
	}
	return slot.set(v)
}

// slot is the final location a path leads to: a struct field or a map entry.
type slot struct {
	field reflect.Value
	m     reflect.Value
	key   reflect.Value
}

func (s slot) get() reflect.Value {
	if s.m.IsValid() {
		v := s.m.MapIndex(s.key)
		if !v.IsValid() {
			return reflect.Zero(s.m.Type().Elem())
		}
		return v
	}
	return s.field
}

func (s slot) set(v any) error {
	var typ reflect.Type
	if s.m.IsValid() {
		typ = s.m.Type().Elem()
	} else {
		typ = s.field.Type()
	}
	val, err := assignable(v, typ)
	if err != nil {
		return err
	}
	if s.m.IsValid() {
		s.m.SetMapIndex(s.key, val)
		return nil
	}
	if !s.field.CanSet() {
		return fmt.Errorf("%w: field is not settable", ErrStalePath)
	}
	s.field.Set(val)
	return nil
}

func assignable(v any, typ reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(typ), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(typ) {
		return rv, nil
	}
	if rv.Type().ConvertibleTo(typ) && sameKindFamily(rv.Type(), typ) {
		return rv.Convert(typ), nil
	}
	return reflect.Value{}, fmt.Errorf("%w: %T into %s", ErrTypeMismatch, v, typ)
}

func (h pathHandle) resolve() (slot, error) {
	if h.target == nil || len(h.segments) == 0 || h.segments[0] == "" {
		return slot{}, fmt.Errorf("%w: empty target or path", ErrStalePath)
	}
	cur := reflect.ValueOf(h.target)
	for i, seg := range h.segments {
		last := i == len(h.segments)-1
		cur = indirect(cur)
		if !cur.IsValid() {
			return slot{}, fmt.Errorf("%w: nil before %q", ErrStalePath, strings.Join(h.segments[i:], "."))
		}
		switch cur.Kind() {
		case reflect.Struct:
			f := fieldByName(cur, seg)
			if !f.IsValid() {
				return slot{}, fmt.Errorf("%w: no field %q on %s", ErrStalePath, seg, cur.Type())
			}
			if last {
				return slot{field: f}, nil
			}
			cur = f
		case reflect.Map:
			if cur.Type().Key().Kind() != reflect.String {
				return slot{}, fmt.Errorf("%w: map key is not a string at %q", ErrStalePath, seg)
			}
			key := reflect.ValueOf(seg).Convert(cur.Type().Key())
			if last {
				if cur.IsNil() {
					return slot{}, fmt.Errorf("%w: nil map at %q", ErrStalePath, seg)
				}
				return slot{m: cur, key: key}, nil
			}
			next := cur.MapIndex(key)
			if !next.IsValid() {
				return slot{}, fmt.Errorf("%w: no key %q", ErrStalePath, seg)
			}
			cur = next
		default:
			return slot{}, fmt.Errorf("%w: cannot descend into %s at %q", ErrStalePath, cur.Kind(), seg)
		}
	}
	return slot{}, fmt.Errorf("%w: empty path", ErrStalePath)
}

// indirect follows pointers and interfaces. It returns an invalid value when
// it meets a nil.
func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func fieldByName(v reflect.Value, name string) reflect.Value {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if sf := t.Field(i); sf.IsExported() && strings.EqualFold(sf.Name, name) {
			return v.Field(i)
		}
	}
	return reflect.Value{}
}
