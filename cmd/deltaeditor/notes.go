package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"deltaeditor/internal/extensions/notes"
)

var notesCmd = &cobra.Command{
	Use:   "notes [project]",
	Short: "Print a project's scene notes, or replace them with --set",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runNotes,
}

func init() {
	notesCmd.Flags().String("set", "", "new notes text; saves the project")
	notesCmd.Flags().Bool("clear", false, "remove the notes; saves the project")
}

func runNotes(cmd *cobra.Command, args []string) error {
	path, err := projectArg(args)
	if err != nil {
		return err
	}
	e, _, err := openProject(cmd, path)
	if err != nil {
		return err
	}

	clearNotes, _ := cmd.Flags().GetBool("clear")
	if !cmd.Flags().Changed("set") && !clearNotes {
		fmt.Fprintln(cmd.OutOrStdout(), notes.Get(e.Scene()))
		return nil
	}
	text, _ := cmd.Flags().GetString("set")
	if clearNotes {
		text = ""
	}
	notes.Set(e.Scene(), text)
	return e.SaveProject(cmd.Context(), path)
}
