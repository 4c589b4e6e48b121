package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"deltaeditor/internal/game"
	"deltaeditor/internal/project"
	"deltaeditor/internal/world"
)

var roundtripCmd = &cobra.Command{
	Use:   "roundtrip [project]",
	Short: "Export a project, import the export into a fresh base scene and compare",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRoundtrip,
}

func runRoundtrip(cmd *cobra.Command, args []string) error {
	path, err := projectArg(args)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	original, err := project.LoadFile(path)
	if err != nil {
		return err
	}
	e, report, err := openProject(cmd, path)
	if err != nil {
		return err
	}
	printReport(out, report)
	first, err := e.ExportProject(ctx)
	if err != nil {
		return err
	}
	if changes, err := project.Diff(original, first); err != nil {
		return err
	} else if len(changes) > 0 {
		fmt.Fprintf(out, "%d line(s) differ from the saved file; saving again normalizes them\n", len(changes))
	}

	base, err := world.Load(project.SiblingScenePath(path))
	if err != nil {
		return err
	}
	fresh, err := game.NewEditor(base, cfg)
	if err != nil {
		return err
	}
	if _, err := fresh.ImportDocument(ctx, first, filepath.Dir(path)); err != nil {
		return err
	}
	second, err := fresh.ExportProject(ctx)
	if err != nil {
		return err
	}

	changes, err := project.Diff(first, second)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		fmt.Fprintln(out, "Round trip is stable")
		return nil
	}
	for _, c := range changes {
		fmt.Fprintln(out, c)
	}
	return fmt.Errorf("round trip changed %d line(s)", len(changes))
}
