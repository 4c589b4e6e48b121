package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"deltaeditor/internal/game"
)

var playCmd = &cobra.Command{
	Use:   "play [project]",
	Short: "Open a project and step its scripts without a window",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPlay,
}

func init() {
	playCmd.Flags().Int("frames", 120, "number of frames to run")
	playCmd.Flags().Float32("dt", 1.0/60, "seconds per frame")
}

func runPlay(cmd *cobra.Command, args []string) error {
	path, err := projectArg(args)
	if err != nil {
		return err
	}
	frames, _ := cmd.Flags().GetInt("frames")
	dt, _ := cmd.Flags().GetFloat32("dt")

	e, _, err := openProject(cmd, path)
	if err != nil {
		return err
	}
	g := game.New(e.World())
	if err := g.Run(cmd.Context(), frames, dt); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Ran %d frames\n", g.Frame)
	for _, n := range e.Scene().Meshes {
		p := n.WorldPosition()
		fmt.Fprintf(out, "  %-16s (%.2f, %.2f, %.2f)\n", n.Name, p.X, p.Y, p.Z)
	}
	return nil
}
