package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"deltaeditor/internal/config"
	"deltaeditor/internal/game"
	"deltaeditor/internal/log"
	"deltaeditor/internal/project"
)

var (
	version   = "dev"
	cfgFile   string
	prefsDir  string
	logLevel  string
	cfg       config.Config
	configErr error
	logFile   io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "deltaeditor",
	Short: "Save, load and inspect incremental scene projects",
	Long: `deltaeditor works with editor projects: a base scene file plus a
.editorproject document holding only what the editor added on top of it.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return configErr
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .deltaeditor/config.yaml or ~/.config/deltaeditor/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&prefsDir, "prefs-dir", "",
		"directory holding editor prefs (default: the user config dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"override log.level (debug, info, warn, error)")

	rootCmd.AddCommand(initCmd, applyCmd, inspectCmd, roundtripCmd, diffCmd, watchCmd, playCmd, notesCmd)
}

func initConfig() {
	v := config.NewViper()
	if logLevel != "" {
		v.Set("log.level", logLevel)
	}
	cfg, configErr = config.Load(v, cfgFile)
	if configErr != nil {
		cfg = config.Defaults()
	}
	if err := setupLogging(cfg.Log); err != nil && configErr == nil {
		configErr = err
	}
	log.Debug(log.CatConfig, "config loaded", "file", v.ConfigFileUsed())
}

func setupLogging(lc config.LogConfig) error {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	var w io.Writer = os.Stderr
	if lc.File != "" {
		f, err := os.OpenFile(lc.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		logFile = f
		w = f
	}
	lvl := log.ParseLevel(lc.Level)
	if lc.Format == "json" {
		log.InitJSON(w, lvl)
	} else {
		log.Init(w, lvl)
	}
	return nil
}

// loadPrefs reads the editor prefs, creating their directory when needed.
func loadPrefs() (*game.EditorPrefs, error) {
	dir := prefsDir
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("locating config dir: %w", err)
		}
		dir = filepath.Join(base, "deltaeditor")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating prefs dir: %w", err)
	}
	return game.LoadEditorPrefs(dir)
}

// projectArg returns the project named on the command line, or the last
// project the editor saved or opened.
func projectArg(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	prefs, err := loadPrefs()
	if err != nil {
		return "", err
	}
	if prefs.LastProject == "" {
		return "", fmt.Errorf("no project given and no recent project")
	}
	return prefs.LastProject, nil
}

// openProject opens path as an editor session that records it in the prefs.
func openProject(cmd *cobra.Command, path string) (*game.Editor, *project.Report, error) {
	e, report, err := game.OpenProject(cmd.Context(), path, cfg)
	if err != nil {
		return nil, report, err
	}
	if prefs, err := loadPrefs(); err == nil {
		e.Prefs = prefs
		prefs.Touch(path)
		if err := prefs.Save(); err != nil {
			log.Warn(log.CatCLI, "failed to save prefs", "error", err)
		}
	} else {
		log.Warn(log.CatCLI, "failed to load prefs", "error", err)
	}
	return e, report, nil
}

func printReport(w io.Writer, r *project.Report) {
	fmt.Fprintf(w, "nodes %d, materials %d, particle systems %d, shadow generators %d\n",
		r.Nodes, r.Materials, r.ParticleSystems, r.ShadowGenerators)
	fmt.Fprintf(w, "animations %d, action managers %d, impostors %d, extensions %d, synthesized %d\n",
		r.Animations, r.ActionManagers, r.Impostors, r.Extensions, r.Synthesized)
	for _, u := range r.Unresolved {
		fmt.Fprintf(w, "  unresolved %s\n", u)
	}
}

// Execute runs the root command
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}
