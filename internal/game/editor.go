// Package game hosts the editor session: the loaded world, what the editor
// added on top of it, the edit history and the extension registry.
package game

import (
	"context"
	"fmt"
	"path/filepath"

	"deltaeditor/internal/config"
	"deltaeditor/internal/engine"
	"deltaeditor/internal/extensions"
	"deltaeditor/internal/extensions/behavior"
	"deltaeditor/internal/extensions/materials"
	"deltaeditor/internal/extensions/notes"
	"deltaeditor/internal/extensions/postprocess"
	"deltaeditor/internal/log"
	"deltaeditor/internal/origin"
	"deltaeditor/internal/project"
	"deltaeditor/internal/undo"
	"deltaeditor/internal/world"
)

// extensionFactories are the extensions a session can register, by name.
var extensionFactories = map[string]extensions.Factory{
	behavior.Name:    behavior.New,
	materials.Name:   materials.New,
	postprocess.Name: postprocess.New,
	notes.Name:       notes.New,
}

type Editor struct {
	Selected *engine.Node

	Tracker  *origin.Tracker
	History  *undo.Stack
	Registry *extensions.Registry
	Prefs    *EditorPrefs

	world       *world.World
	cameraName  string
	indent      bool
	projectPath string
}

// NewEditor starts a session over w. Every extension named in the config is
// registered and instantiated for the scene. A world with no file is
// snapshotted so Reset can return to it.
func NewEditor(w *world.World, cfg config.Config) (*Editor, error) {
	if w.Path == "" {
		if err := w.Snapshot(); err != nil {
			return nil, err
		}
	}
	e := &Editor{
		Tracker:    origin.NewTracker(),
		History:    undo.New(undo.WithMaxDepth(cfg.Undo.MaxDepth)),
		Registry:   extensions.NewRegistry(),
		world:      w,
		cameraName: cfg.Editor.CameraName,
		indent:     cfg.Project.Indent,
	}
	for _, name := range cfg.Project.Extensions {
		factory, ok := extensionFactories[name]
		if !ok {
			return nil, fmt.Errorf("unknown extension %q", name)
		}
		e.Registry.Register(name, factory)
	}
	e.requestExtensions()
	return e, nil
}

// OpenProject loads the base scene next to path, layers the project on top
// and applies its extension data. Extension failures are logged, not fatal.
func OpenProject(ctx context.Context, path string, cfg config.Config) (*Editor, *project.Report, error) {
	w, err := world.Load(project.SiblingScenePath(path))
	if err != nil {
		return nil, nil, fmt.Errorf("load base scene: %w", err)
	}
	e, err := NewEditor(w, cfg)
	if err != nil {
		return nil, nil, err
	}
	report, err := e.LoadProject(ctx, path)
	if err != nil {
		return nil, report, err
	}
	return e, report, nil
}

func (e *Editor) World() *world.World { return e.world }

func (e *Editor) Scene() *engine.Scene { return e.world.Scene }

// ProjectPath is the project file last loaded or saved, if any.
func (e *Editor) ProjectPath() string { return e.projectPath }

// LoadProject imports the project at path into the current scene.
func (e *Editor) LoadProject(ctx context.Context, path string) (*project.Report, error) {
	doc, err := project.LoadFile(path)
	if err != nil {
		return nil, err
	}
	report, err := e.ImportDocument(ctx, doc, filepath.Dir(path))
	if err != nil {
		return report, err
	}
	e.projectPath = path
	e.rememberProject(path)
	return report, nil
}

// ImportDocument layers doc onto the current scene and applies its
// extension data. Texture names resolve against rootURL.
func (e *Editor) ImportDocument(ctx context.Context, doc *project.Document, rootURL string) (*project.Report, error) {
	report, err := project.Import(ctx, e.Scene(), doc, e.Tracker, e.Registry, project.ImportOptions{RootURL: rootURL})
	if err != nil {
		return report, err
	}
	if err := e.Registry.ApplyExtensions(e.Scene(), doc.CustomMetadatas, rootURL); err != nil {
		log.Warn(log.CatExt, "some extensions failed to apply", "error", err)
	}
	return report, nil
}

// ExportProject builds the project document for the current session.
func (e *Editor) ExportProject(ctx context.Context) (*project.Document, error) {
	return project.Export(ctx, e.Scene(), e.Tracker, e.Registry, project.Options{EditorCamera: e.cameraName})
}

// SaveProject writes the project to path and the base scene next to it.
// The base keeps only what the editor did not add.
func (e *Editor) SaveProject(ctx context.Context, path string) error {
	doc, err := e.ExportProject(ctx)
	if err != nil {
		return err
	}
	if err := project.SaveFile(path, doc, e.indent); err != nil {
		return err
	}
	if err := e.world.Save(project.SiblingScenePath(path), e.inBase); err != nil {
		return fmt.Errorf("save base scene: %w", err)
	}
	e.projectPath = path
	e.rememberProject(path)
	log.Info(log.CatProject, "project saved", "path", path, "nodes", len(doc.Nodes))
	return nil
}

func (e *Editor) inBase(ent engine.Entity) bool {
	return e.Tracker.Of(ent) == origin.PreExisting
}

// Reset reloads the base scene, from disk or from the snapshot taken when
// the session started, and drops everything the session added, the history
// included.
func (e *Editor) Reset() error {
	if err := e.world.Reload(); err != nil {
		return err
	}
	e.History.Clear()
	e.Tracker.Reset()
	e.Registry.Reset()
	e.Selected = nil
	e.requestExtensions()
	log.Info(log.CatWorld, "session reset", "scene", e.Scene().Name)
	return nil
}

func (e *Editor) requestExtensions() {
	for _, name := range e.Registry.Names() {
		e.Registry.RequestExtension(e.Scene(), name)
	}
}

func (e *Editor) rememberProject(path string) {
	if e.Prefs == nil {
		return
	}
	e.Prefs.Touch(path)
	if err := e.Prefs.Save(); err != nil {
		log.Warn(log.CatConfig, "failed to save editor prefs", "error", err)
	}
}

// --- Edits ---

// SetProperty sets a dotted property path on target and records the edit.
func (e *Editor) SetProperty(target any, property string, value any) error {
	_, err := e.History.Apply(target, property, undo.Path(target, property), value)
	return err
}

// SetTransform replaces n's transform as one undoable edit.
func (e *Editor) SetTransform(n *engine.Node, t engine.Transform) error {
	h := undo.Func(
		func() engine.Transform { return n.Transform },
		func(v engine.Transform) { n.Transform = v },
	)
	_, err := e.History.Apply(n, "Transform", h, t)
	return err
}

// SetLightIntensity changes a light's intensity as one undoable edit.
func (e *Editor) SetLightIntensity(n *engine.Node, intensity float32) error {
	if n.Light == nil {
		return fmt.Errorf("%s is not a light", n.Name)
	}
	_, err := e.History.Apply(n, "Light.Intensity", undo.Field(&n.Light.Intensity), intensity)
	return err
}

func (e *Editor) Undo() error {
	rec, err := e.History.Undo()
	if rec != nil {
		log.Debug(log.CatUndo, "undo", "property", rec.Property)
	}
	return err
}

func (e *Editor) Redo() error {
	rec, err := e.History.Redo()
	if rec != nil {
		log.Debug(log.CatUndo, "redo", "property", rec.Property)
	}
	return err
}
