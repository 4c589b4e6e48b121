package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"deltaeditor/internal/config"
	"deltaeditor/internal/game"
	"deltaeditor/internal/project"
	"deltaeditor/internal/world"
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a demo base scene and an empty project",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

func init() {
	initCmd.Flags().String("name", "main", "project name")
	initCmd.Flags().Int("cubes", 8, "number of animated cubes in the demo scene")
	initCmd.Flags().Int64("seed", 1, "random seed for the demo scene")
	initCmd.Flags().Bool("write-config", false, "also write .deltaeditor/config.yaml with the defaults")
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	name, _ := cmd.Flags().GetString("name")
	cubes, _ := cmd.Flags().GetInt("cubes")
	seed, _ := cmd.Flags().GetInt64("seed")

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	path := filepath.Join(dir, name+project.Extension)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	e, err := game.NewEditor(world.NewDemo(cubes, seed), cfg)
	if err != nil {
		return err
	}
	if prefs, err := loadPrefs(); err == nil {
		e.Prefs = prefs
	}
	if err := e.SaveProject(cmd.Context(), path); err != nil {
		return err
	}

	if writeConfig, _ := cmd.Flags().GetBool("write-config"); writeConfig {
		if err := config.WriteDefaultConfig(filepath.Join(dir, ".deltaeditor", "config.yaml")); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s and %s\n", path, project.SiblingScenePath(path))
	return nil
}
