// Package extensions hosts the pluggable subsystems that persist
// editor-authored content under a project's customMetadatas.
//
// Each extension is registered by name with a Factory. Loading a project is
// two-phase: OnLoad stores data on the scene without creating live objects,
// and OnApply materializes it once the scene is complete.
package extensions

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"

	"deltaeditor/internal/engine"
	"deltaeditor/internal/log"
)

// Extension is the capability set every extension implements.
type Extension interface {
	// OnApply creates live objects from persisted data. data is JSON null
	// or absent when the extension is always applied without saved data.
	OnApply(data json.RawMessage, rootURL string) error
	// OnSerialize returns the current state as plain data, or nil.
	OnSerialize() (any, error)
	// OnLoad stores loaded data for a later OnApply.
	OnLoad(data json.RawMessage) error
	// AlwaysApply reports whether OnApply runs even without saved data.
	AlwaysApply() bool
}

// Factory builds an extension bound to a scene.
type Factory func(scene *engine.Scene) Extension

type instance struct {
	ext   Extension
	scene *engine.Scene
}

// Registry maps extension names to factories and caches one live instance
// per name. It is owned by an editor session and is not safe for concurrent use.
type Registry struct {
	factories map[string]Factory
	instances map[string]instance

	// retained holds customMetadatas entries no registered extension claimed,
	// so saving a project does not drop them.
	retained map[string]json.RawMessage
}

func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		instances: make(map[string]instance),
		retained:  make(map[string]json.RawMessage),
	}
}

// Register adds a factory under name. The first registration wins: a
// duplicate name returns false and leaves the existing factory in place.
func (r *Registry) Register(name string, factory Factory) bool {
	if _, exists := r.factories[name]; exists {
		log.Warn(log.CatExt, "extension already registered", "name", name)
		return false
	}
	r.factories[name] = factory
	return true
}

// IsRegistered reports whether a factory exists for name.
func (r *Registry) IsRegistered(name string) bool {
	_, ok := r.factories[name]
	return ok
}

// RequestExtension returns the cached instance for name, creating it on
// first use. It returns nil when name is not registered. An instance
// created for another scene is replaced, so scenes never share one.
func (r *Registry) RequestExtension(scene *engine.Scene, name string) Extension {
	if cached, ok := r.instances[name]; ok && cached.scene == scene {
		return cached.ext
	}
	return r.instantiate(scene, name)
}

func (r *Registry) instantiate(scene *engine.Scene, name string) Extension {
	factory, ok := r.factories[name]
	if !ok {
		return nil
	}
	ext := factory(scene)
	r.instances[name] = instance{ext: ext, scene: scene}
	log.Debug(log.CatExt, "extension instantiated", "name", name)
	return ext
}

// ApplyExtensions re-creates every registered extension for scene, in name
// order, and calls OnApply with its entry from metadatas when it has one or
// when it always applies. Failures do not stop the remaining extensions;
// they are joined into the returned error.
func (r *Registry) ApplyExtensions(scene *engine.Scene, metadatas map[string]json.RawMessage, rootURL string) error {
	var errs []error
	for _, name := range r.Names() {
		ext := r.instantiate(scene, name)
		data, present := metadatas[name]
		if !present && !ext.AlwaysApply() {
			continue
		}
		if err := ext.OnApply(data, rootURL); err != nil {
			log.ErrorErr(log.CatExt, "apply failed", err, "name", name)
			errs = append(errs, fmt.Errorf("extension %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Serialize collects OnSerialize of every live instance, keyed by name, plus
// any retained entries no instance replaced. A nil result is JSON null.
func (r *Registry) Serialize() (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(r.instances)+len(r.retained))
	for name, data := range r.retained {
		out[name] = slices.Clone(data)
	}
	for _, name := range slices.Sorted(maps.Keys(r.instances)) {
		v, err := r.instances[name].ext.OnSerialize()
		if err != nil {
			return nil, fmt.Errorf("serializing extension %s: %w", name, err)
		}
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encoding extension %s: %w", name, err)
		}
		out[name] = data
	}
	return out, nil
}

// Retain keeps data for a name no extension claims so it survives a save.
func (r *Registry) Retain(name string, data json.RawMessage) {
	r.retained[name] = slices.Clone(data)
}

// Instances returns the live extensions keyed by name.
func (r *Registry) Instances() map[string]Extension {
	out := make(map[string]Extension, len(r.instances))
	for name, inst := range r.instances {
		out[name] = inst.ext
	}
	return out
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.factories))
}

// Reset destroys every live instance and retained entry. Registrations stay.
func (r *Registry) Reset() {
	clear(r.instances)
	clear(r.retained)
}

// IsNull reports whether data is absent or the JSON literal null.
func IsNull(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Decode unmarshals data into out. Null or absent data leaves out untouched.
func Decode(data json.RawMessage, out any) error {
	if IsNull(data) {
		return nil
	}
	return json.Unmarshal(data, out)
}

// Convert copies a metadata value into out through its JSON form. Values
// stored on a live scene are typed structs, while values parsed from a file
// are generic maps; Convert reads both.
func Convert(v any, out any) error {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
