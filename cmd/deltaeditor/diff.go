package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"deltaeditor/internal/project"
)

var diffCmd = &cobra.Command{
	Use:   "diff <a> <b>",
	Short: "Show the line differences between two projects",
	Args:  cobra.ExactArgs(2),
	RunE:  runDiff,
}

func runDiff(cmd *cobra.Command, args []string) error {
	a, err := project.LoadFile(args[0])
	if err != nil {
		return err
	}
	b, err := project.LoadFile(args[1])
	if err != nil {
		return err
	}
	changes, err := project.Diff(a, b)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(changes) == 0 {
		fmt.Fprintln(out, "No differences")
		return nil
	}
	for _, c := range changes {
		fmt.Fprintln(out, c)
	}
	return nil
}
