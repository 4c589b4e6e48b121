package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"deltaeditor/internal/project"
	"deltaeditor/internal/world"
)

var applyCmd = &cobra.Command{
	Use:   "apply [project]",
	Short: "Layer a project onto its base scene and write the merged scene",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runApply,
}

func init() {
	applyCmd.Flags().StringP("output", "o", "", "merged scene path (default: <name>.merged.scene.json)")
}

func runApply(cmd *cobra.Command, args []string) error {
	path, err := projectArg(args)
	if err != nil {
		return err
	}
	out, _ := cmd.Flags().GetString("output")
	if out == "" {
		out = strings.TrimSuffix(path, project.Extension) + ".merged" + project.SceneSuffix
	}

	e, report, err := openProject(cmd, path)
	if err != nil {
		return err
	}
	if err := world.SaveScene(out, e.Scene(), nil); err != nil {
		return err
	}
	printReport(cmd.OutOrStdout(), report)
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
	return nil
}
