// Package config provides configuration types, defaults and loading for deltaeditor.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. DELTAEDITOR_LOG_LEVEL.
const EnvPrefix = "DELTAEDITOR"

// Config holds all configuration options for deltaeditor.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Undo    UndoConfig    `mapstructure:"undo"`
	Editor  EditorConfig  `mapstructure:"editor"`
	Project ProjectConfig `mapstructure:"project"`
	Watch   WatchConfig   `mapstructure:"watch"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text or json
	File   string `mapstructure:"file"`   // empty means stderr
}

type UndoConfig struct {
	MaxDepth int `mapstructure:"max_depth"` // 0 means unbounded
}

type EditorConfig struct {
	// CameraName is the viewport camera the editor owns; it is never exported.
	CameraName string `mapstructure:"camera_name"`
}

type ProjectConfig struct {
	// Extensions lists the extensions registered at session start, in order.
	Extensions []string `mapstructure:"extensions"`
	Indent     bool     `mapstructure:"indent"`
}

type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// KnownExtensions are the extension names the editor ships.
var KnownExtensions = []string{"BehaviorExtension", "MaterialCreatorExtension", "PostProcessCreatorExtension", "notes"}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Undo: UndoConfig{
			MaxDepth: 50,
		},
		Editor: EditorConfig{
			CameraName: "EditorCamera",
		},
		Project: ProjectConfig{
			Extensions: slices.Clone(KnownExtensions),
			Indent:     true,
		},
		Watch: WatchConfig{
			Debounce: 300 * time.Millisecond,
		},
	}
}

// NewViper returns a viper instance with defaults and environment overrides set up.
func NewViper() *viper.Viper {
	v := viper.New()
	d := Defaults()
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("undo.max_depth", d.Undo.MaxDepth)
	v.SetDefault("editor.camera_name", d.Editor.CameraName)
	v.SetDefault("project.extensions", d.Project.Extensions)
	v.SetDefault("project.indent", d.Project.Indent)
	v.SetDefault("watch.debounce", d.Watch.Debounce)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads cfgFile, or searches .deltaeditor/config.yaml then
// ~/.config/deltaeditor/config.yaml when cfgFile is empty. A missing config
// file is not an error.
func Load(v *viper.Viper, cfgFile string) (Config, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".deltaeditor")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "deltaeditor"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and extension names.
func Validate(cfg Config) error {
	var errs []error
	switch cfg.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", cfg.Log.Format))
	}
	if cfg.Undo.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("undo.max_depth: must not be negative, got %d", cfg.Undo.MaxDepth))
	}
	if cfg.Watch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("watch.debounce: must not be negative, got %s", cfg.Watch.Debounce))
	}
	for i, name := range cfg.Project.Extensions {
		if !slices.Contains(KnownExtensions, name) {
			errs = append(errs, fmt.Errorf("project.extensions[%d]: unknown extension %q", i, name))
		}
	}
	return errors.Join(errs...)
}

// DefaultConfigTemplate returns the default config as YAML with comments.
func DefaultConfigTemplate() string {
	return `# deltaeditor configuration

log:
  level: info     # debug, info, warn, error
  format: text    # text or json
  # file: deltaeditor.log

undo:
  max_depth: 50   # 0 keeps every edit

editor:
  camera_name: EditorCamera   # viewport camera, never written to projects

project:
  indent: true
  extensions:
    - BehaviorExtension
    - MaterialCreatorExtension
    - PostProcessCreatorExtension
    - notes

watch:
  debounce: 300ms
`
}

// WriteDefaultConfig creates a config file with the default template.
func WriteDefaultConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
