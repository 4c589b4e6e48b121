package game

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
)

// maxRecentProjects caps EditorPrefs.RecentProjects.
const maxRecentProjects = 10

// EditorPrefsFile is the prefs file name inside the prefs directory.
const EditorPrefsFile = ".editor_prefs.json"

// EditorPrefs holds editor preferences saved between sessions.
type EditorPrefs struct {
	LastProject    string   `json:"lastProject,omitempty"`
	RecentProjects []string `json:"recentProjects,omitempty"`

	path string
}

// LoadEditorPrefs reads the prefs in dir. A missing file gives empty prefs.
func LoadEditorPrefs(dir string) (*EditorPrefs, error) {
	path := filepath.Join(dir, EditorPrefsFile)
	prefs := &EditorPrefs{path: path}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return prefs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read editor prefs: %w", err)
	}
	if err := json.Unmarshal(data, prefs); err != nil {
		return nil, fmt.Errorf("parse editor prefs: %w", err)
	}
	return prefs, nil
}

// Touch moves path to the front of the recent list and makes it the last project.
func (p *EditorPrefs) Touch(path string) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	p.LastProject = path
	p.RecentProjects = slices.DeleteFunc(p.RecentProjects, func(s string) bool { return s == path })
	p.RecentProjects = slices.Insert(p.RecentProjects, 0, path)
	if len(p.RecentProjects) > maxRecentProjects {
		p.RecentProjects = p.RecentProjects[:maxRecentProjects]
	}
}

// Save writes the prefs back to the file they were loaded from.
func (p *EditorPrefs) Save() error {
	if p.path == "" {
		return fmt.Errorf("save editor prefs: no path")
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal editor prefs: %w", err)
	}
	if err := os.WriteFile(p.path, data, 0644); err != nil {
		return fmt.Errorf("write editor prefs: %w", err)
	}
	return nil
}
