// Package notes persists free-form scene notes with the project.
package notes

import (
	"encoding/json"
	"fmt"

	"deltaeditor/internal/engine"
	"deltaeditor/internal/extensions"
)

// Name is both the registry name and the scene metadata key.
const Name = "notes"

type Extension struct {
	scene *engine.Scene
}

func New(scene *engine.Scene) extensions.Extension {
	return &Extension{scene: scene}
}

func (e *Extension) AlwaysApply() bool { return false }

func (e *Extension) OnLoad(data json.RawMessage) error {
	return e.store(data)
}

func (e *Extension) OnApply(data json.RawMessage, rootURL string) error {
	return e.store(data)
}

func (e *Extension) OnSerialize() (any, error) {
	text := Get(e.scene)
	if text == "" {
		return nil, nil
	}
	return text, nil
}

func (e *Extension) store(data json.RawMessage) error {
	var text string
	if err := extensions.Decode(data, &text); err != nil {
		return fmt.Errorf("decoding notes: %w", err)
	}
	Set(e.scene, text)
	return nil
}

// Get returns the scene's notes, or "" when it has none.
func Get(scene *engine.Scene) string {
	text, _ := scene.Metadata[Name].(string)
	return text
}

// Set replaces the scene's notes. An empty text removes them.
func Set(scene *engine.Scene, text string) {
	if text == "" {
		delete(scene.Metadata, Name)
		return
	}
	if scene.Metadata == nil {
		scene.Metadata = make(map[string]any)
	}
	scene.Metadata[Name] = text
}
