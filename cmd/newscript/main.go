package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

const scriptsDir = "internal/scripts"

const tmpl = `package scripts

import "deltaeditor/internal/engine"

type {{.Name}} struct {
	engine.BaseComponent
	Speed float32
}

func (s *{{.Name}}) Update(deltaTime float32) {
	n := s.GetNode()
	if n == nil {
		return
	}
}

func init() {
	engine.RegisterScriptWithApplier("{{.Name}}", {{.Lower}}Factory, {{.Lower}}Serializer, {{.Lower}}Applier)
}

func {{.Lower}}Factory(props map[string]any) engine.Component {
	speed := float32(1)
	if v, ok := props["speed"].(float64); ok {
		speed = float32(v)
	}
	return &{{.Name}}{Speed: speed}
}

func {{.Lower}}Serializer(c engine.Component) map[string]any {
	s, ok := c.(*{{.Name}})
	if !ok {
		return nil
	}
	return map[string]any{
		"speed": s.Speed,
	}
}

func {{.Lower}}Applier(c engine.Component, prop string, value any) bool {
	s, ok := c.(*{{.Name}})
	if !ok {
		return false
	}
	switch prop {
	case "speed":
		if v, ok := value.(float64); ok {
			s.Speed = float32(v)
			return true
		}
	}
	return false
}
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: go run ./cmd/newscript <ScriptName>\n")
		fmt.Fprintf(os.Stderr, "Example: go run ./cmd/newscript EnemyChaser\n")
		os.Exit(1)
	}

	name := os.Args[1]
	outPath, err := generate(name, scriptsDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Created %s\n", outPath)
	fmt.Printf("Script \"%s\" registered. Attach it with the behavior extension:\n\n", name)
	fmt.Printf("  script, _ := behavior.AddScript(scene, %q, \"\")\n", name)
	fmt.Printf("  behavior.Attach(scene, node, script.ID, map[string]any{\"speed\": 1.0})\n")
}

// generate writes the script skeleton for name into dir and returns its path.
func generate(name, dir string) (string, error) {
	if name == "" || !unicode.IsUpper(rune(name[0])) {
		return "", fmt.Errorf("script name must start with an uppercase letter")
	}

	lower := string(unicode.ToLower(rune(name[0]))) + name[1:]
	outPath := filepath.Join(dir, toSnakeCase(name)+".go")

	if _, err := os.Stat(outPath); err == nil {
		return "", fmt.Errorf("%s already exists", outPath)
	}

	content := tmpl
	content = strings.ReplaceAll(content, "{{.Name}}", name)
	content = strings.ReplaceAll(content, "{{.Lower}}", lower)

	if err := os.WriteFile(outPath, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}
	return outPath, nil
}

func toSnakeCase(s string) string {
	var result []rune
	for i, r := range s {
		if unicode.IsUpper(r) && i > 0 {
			result = append(result, '_')
		}
		result = append(result, unicode.ToLower(r))
	}
	return string(result)
}
