package main

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	path, err := generate("EnemyChaser", dir)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if filepath.Base(path) != "enemy_chaser.go" {
		t.Errorf("unexpected file name %s", path)
	}

	src, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := parser.ParseFile(token.NewFileSet(), path, src, 0); err != nil {
		t.Errorf("generated file does not parse: %v", err)
	}
	for _, want := range []string{
		"type EnemyChaser struct",
		`RegisterScriptWithApplier("EnemyChaser", enemyChaserFactory`,
		"func enemyChaserApplier(",
	} {
		if !strings.Contains(string(src), want) {
			t.Errorf("generated file missing %q", want)
		}
	}

	if _, err := generate("EnemyChaser", dir); err == nil {
		t.Error("expected an error when the file already exists")
	}
}

func TestGenerateRejectsLowercase(t *testing.T) {
	if _, err := generate("chaser", t.TempDir()); err == nil {
		t.Error("expected an error for a lowercase name")
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"Rotator":      "rotator",
		"CubeAnimator": "cube_animator",
		"A":            "a",
	}
	for in, want := range tests {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
