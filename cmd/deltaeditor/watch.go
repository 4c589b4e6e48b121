package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"deltaeditor/internal/log"
	"deltaeditor/internal/project"
	"deltaeditor/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch [project]",
	Short: "Reload a project whenever it or its base scene changes",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	path, err := projectArg(args)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	reload := func() {
		_, report, err := openProject(cmd, path)
		if err != nil {
			log.ErrorErr(log.CatCLI, "reload failed", err, "path", path)
			fmt.Fprintf(out, "Reload failed: %v\n", err)
			return
		}
		printReport(out, report)
	}
	reload()

	w, err := watcher.New(watcher.Config{
		Paths:       []string{path, project.SiblingScenePath(path)},
		DebounceDur: cfg.Watch.Debounce,
	})
	if err != nil {
		return err
	}
	changes, err := w.Start()
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	fmt.Fprintf(out, "Watching %s\n", path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			log.Info(log.CatCLI, "project changed, reloading", "path", path)
			reload()
		}
	}
}
