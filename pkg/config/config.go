package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for rgd
type Config struct {
	Spec     SpecConfig     `mapstructure:"spec"`
	Standard StandardConfig `mapstructure:"standard"`
	Unified  UnifiedConfig  `mapstructure:"unified"`
	Export   ExportConfig   `mapstructure:"export"`
}

// SpecConfig describes the authored JSONC tree
type SpecConfig struct {
	Dir       string   `mapstructure:"dir"`
	Extension string   `mapstructure:"extension"`
	Exclude   []string `mapstructure:"exclude"` // doublestar globs, relative to the spec dir
}

// StandardConfig describes the strict JSON mirror
type StandardConfig struct {
	Dir        string `mapstructure:"dir"`
	Benchmarks string `mapstructure:"benchmarks"` // relative to Dir
}

// UnifiedConfig holds the identity stamped into unified documents
type UnifiedConfig struct {
	BaseName string `mapstructure:"base_name"`
	Standard string `mapstructure:"standard"`
	Version  string `mapstructure:"version"`
}

// ExportConfig holds ecosystem exporter settings
type ExportConfig struct {
	Out           string `mapstructure:"out"`
	DefaultPlugin string `mapstructure:"default_plugin"`
	UpdateRate    int    `mapstructure:"update_rate"`
}

var defaultConfig = Config{
	Spec: SpecConfig{
		Dir:       "spec",
		Extension: ".jsonc",
		Exclude:   []string{"**/*unified_spec*", "**/[0-9][0-9]_spec.jsonc"},
	},
	Standard: StandardConfig{
		Dir:        "standard",
		Benchmarks: "benchmarks",
	},
	Unified: UnifiedConfig{
		BaseName: "openrgd_unified_spec",
		Standard: "OpenRGD",
		Version:  "0.1.0",
	},
	Export: ExportConfig{
		Out:           "export",
		DefaultPlugin: "openrgd_ros2_control/GenericSystem",
		UpdateRate:    100,
	},
}

// Default returns a copy of the built-in configuration.
func Default() *Config {
	c := defaultConfig
	c.Spec.Exclude = append([]string(nil), defaultConfig.Spec.Exclude...)
	return &c
}

// configNames are the file names searched in the project root and $HOME.
var configNames = []string{"rgd.yaml", "rgd.yml", ".rgd.yaml", ".rgd.yml"}

// LoadOptions controls where Load looks for configuration.
type LoadOptions struct {
	ProjectRoot string // searched before $HOME; defaults to "."
	ConfigFile  string // explicit file, skips the search
}

// Load merges defaults, an optional config file and RGD_* environment variables.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()

	v.SetDefault("spec.dir", defaultConfig.Spec.Dir)
	v.SetDefault("spec.extension", defaultConfig.Spec.Extension)
	v.SetDefault("spec.exclude", defaultConfig.Spec.Exclude)
	v.SetDefault("standard.dir", defaultConfig.Standard.Dir)
	v.SetDefault("standard.benchmarks", defaultConfig.Standard.Benchmarks)
	v.SetDefault("unified.base_name", defaultConfig.Unified.BaseName)
	v.SetDefault("unified.standard", defaultConfig.Unified.Standard)
	v.SetDefault("unified.version", defaultConfig.Unified.Version)
	v.SetDefault("export.out", defaultConfig.Export.Out)
	v.SetDefault("export.default_plugin", defaultConfig.Export.DefaultPlugin)
	v.SetDefault("export.update_rate", defaultConfig.Export.UpdateRate)

	v.SetEnvPrefix("RGD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := opts.ConfigFile
	if path == "" {
		path = findConfigFile(opts.ProjectRoot)
	}
	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- user-selected config file
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := ValidateConfig(data); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &config, nil
}

// findConfigFile returns the first config file found in root, then $HOME.
func findConfigFile(root string) string {
	if root == "" {
		root = "."
	}
	dirs := []string{root}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, home)
	}
	for _, dir := range dirs {
		for _, name := range configNames {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate
			}
		}
	}
	return ""
}

// SpecDir returns the spec tree location under root.
func (c *Config) SpecDir(root string) string {
	return filepath.Join(root, c.Spec.Dir)
}

// StandardDir returns the strict JSON mirror location under root.
func (c *Config) StandardDir(root string) string {
	return filepath.Join(root, c.Standard.Dir)
}

// BenchmarkDir returns the snapshot directory used by the integrity check.
func (c *Config) BenchmarkDir(root string) string {
	return filepath.Join(root, c.Standard.Dir, c.Standard.Benchmarks)
}
