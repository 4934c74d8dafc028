package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/conduit-lang/derivewhere/internal/compiler/attr"
	"github.com/conduit-lang/derivewhere/internal/compiler/traits"
	"github.com/conduit-lang/derivewhere/internal/format"
)

// FileName is the configuration file written by `derivewhere init`
const FileName = "derivewhere.yml"

// EnvPrefix prefixes environment overrides, e.g. DERIVEWHERE_STRATEGY
const EnvPrefix = "DERIVEWHERE"

// Config represents the derivewhere configuration
type Config struct {
	Strategy string        `mapstructure:"strategy" yaml:"strategy"`
	Features attr.Features `mapstructure:"features" yaml:"features"`
	Sources  []string      `mapstructure:"sources" yaml:"sources"`
	Output   OutputConfig  `mapstructure:"output" yaml:"output"`
	Format   format.Config `mapstructure:"format" yaml:"format"`
	Workers  int           `mapstructure:"workers" yaml:"workers"`
}

// OutputConfig controls where generated Rust files go
type OutputConfig struct {
	Dir       string `mapstructure:"dir" yaml:"dir"`
	Extension string `mapstructure:"extension" yaml:"extension"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Strategy: string(traits.StrategyOrdinal),
		Sources:  []string{"."},
		Output:   OutputConfig{Dir: "generated", Extension: ".rs"},
		Format:   *format.DefaultConfig(),
		Workers:  4,
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("strategy", d.Strategy)
	v.SetDefault("features.zeroize", false)
	v.SetDefault("features.zeroize_on_drop", false)
	v.SetDefault("sources", d.Sources)
	v.SetDefault("output.dir", d.Output.Dir)
	v.SetDefault("output.extension", d.Output.Extension)
	v.SetDefault("format.indent_size", d.Format.IndentSize)
	v.SetDefault("format.use_tabs", d.Format.UseTabs)
	v.SetDefault("workers", d.Workers)
}

// Load loads the configuration from derivewhere.yml or derivewhere.yaml in
// dir. Environment variables override file values.
func Load(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("derivewhere")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the configuration values
func (c *Config) Validate() error {
	if _, err := traits.ParseStrategy(c.Strategy); err != nil {
		return fmt.Errorf("invalid strategy: %w", err)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got: %d", c.Workers)
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir must not be empty")
	}
	if !strings.HasPrefix(c.Output.Extension, ".") {
		return fmt.Errorf("output.extension must start with '.', got: %s", c.Output.Extension)
	}
	if !c.Format.UseTabs && c.Format.IndentSize <= 0 {
		return fmt.Errorf("format.indent_size must be positive, got: %d", c.Format.IndentSize)
	}
	return nil
}

// TraitOptions returns the generation options of the configuration
func (c *Config) TraitOptions() traits.Options {
	strategy, _ := traits.ParseStrategy(c.Strategy)
	return traits.Options{Strategy: strategy, Features: c.Features}
}

// Write stores the configuration as derivewhere.yml in dir
func (c *Config) Write(dir string) (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}

	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// Exists reports whether dir already holds a configuration file
func Exists(dir string) bool {
	for _, name := range []string{"derivewhere.yml", "derivewhere.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindRoot walks up from dir to the nearest directory holding a
// configuration file
func FindRoot(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s found", FileName)
		}
		dir = parent
	}
}
