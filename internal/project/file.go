package project

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// SceneSuffix names the base scene saved next to a project file.
const SceneSuffix = ".scene.json"

// Marshal encodes doc, tab-indented when indent is set.
func Marshal(doc *Document, indent bool) ([]byte, error) {
	if indent {
		return json.MarshalIndent(doc, "", "\t")
	}
	return json.Marshal(doc)
}

// Unmarshal decodes a document and normalizes it.
func Unmarshal(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	doc.Normalize()
	return &doc, nil
}

// SaveFile writes doc to path.
func SaveFile(path string, doc *Document, indent bool) error {
	data, err := Marshal(doc, indent)
	if err != nil {
		return fmt.Errorf("marshal project: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write project: %w", err)
	}
	return nil
}

// LoadFile reads and normalizes the document at path.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read project: %w", err)
	}
	doc, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("parse project %s: %w", path, err)
	}
	return doc, nil
}

// SiblingScenePath returns the base scene path saved with a project file:
// "level.editorproject" pairs with "level.scene.json".
func SiblingScenePath(projectPath string) string {
	return strings.TrimSuffix(projectPath, Extension) + SceneSuffix
}

// Canonical re-encodes doc with sorted keys and fixed indentation so two
// documents can be compared line by line.
func Canonical(doc *Document) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, err
	}
	return json.MarshalIndent(generic, "", "  ")
}
