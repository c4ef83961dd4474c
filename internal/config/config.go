// Package config loads and validates the converter configuration: where
// the documentation source lives, which files to convert, and which
// output directory each distribution's scripts are written to.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	apperr "github.com/openstack-archive/rst2bash/internal/errors"
)

// Config represents the application configuration
type Config struct {
	Source         SourceConfig      `yaml:"source"`
	Files          []string          `yaml:"files,omitempty"` // explicit input files relative to source dir; empty = every *.rst
	Output         map[string]string `yaml:"output"`          // distro name -> output directory
	DefaultDistros []string          `yaml:"default_distros,omitempty"`
	Logging        LoggingConfig     `yaml:"logging,omitempty"`
	Watch          WatchConfig       `yaml:"watch,omitempty"`
	Journal        JournalConfig     `yaml:"journal,omitempty"`
	Metrics        MetricsConfig     `yaml:"metrics,omitempty"`
}

// SourceConfig describes where the documentation source files come from.
// When Repo is set the directory is synced from that repository before
// converting.
type SourceConfig struct {
	Dir    string `yaml:"dir"`
	Repo   string `yaml:"repo,omitempty"`
	Branch string `yaml:"branch,omitempty"`
}

// LoggingConfig selects the log level, output format, and optional log file.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
	File   string `yaml:"file,omitempty"`
}

// WatchConfig tunes watch mode. Durations are Go duration strings ("2s", "10m").
type WatchConfig struct {
	Debounce string `yaml:"debounce,omitempty"`
	Interval string `yaml:"interval,omitempty"` // periodic full reconversion; empty disables
}

// DebounceDuration returns the parsed debounce window.
func (w WatchConfig) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(w.Debounce)
	if err != nil || d <= 0 {
		return 2 * time.Second
	}
	return d
}

// IntervalDuration returns the parsed reconversion interval, zero when disabled.
func (w WatchConfig) IntervalDuration() time.Duration {
	d, err := time.ParseDuration(w.Interval)
	if err != nil || d <= 0 {
		return 0
	}
	return d
}

// JournalConfig enables the conversion journal when a database path is set.
type JournalConfig struct {
	Path string `yaml:"path,omitempty"`
}

// MetricsConfig enables the Prometheus endpoint in watch mode when an
// address is set.
type MetricsConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// defaultDistroSet is the shipped default for code regions outside any
// distro-restriction scope. Deliberately narrower than "all known
// distros"; overridable via default_distros.
var defaultDistroSet = []string{"debian", "ubuntu", "obs", "rdo"}

// Load loads configuration from the specified file
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists; its absence is not an error.
	_ = godotenv.Load()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, apperr.ConfigNotFound(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CategoryConfig, apperr.SeverityFatal, "failed to read config file")
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, apperr.Wrap(err, apperr.CategoryConfig, apperr.SeverityFatal, "failed to unmarshal config")
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Source.Dir == "" {
		c.Source.Dir = "."
	}
	if c.Source.Repo != "" && c.Source.Branch == "" {
		c.Source.Branch = "master"
	}
	if len(c.DefaultDistros) == 0 {
		c.DefaultDistros = append([]string(nil), defaultDistroSet...)
	}
}

// Validate checks the configuration for problems the converter cannot
// recover from at runtime.
func (c *Config) Validate() error {
	if len(c.Output) == 0 {
		return apperr.ConfigRequired("output")
	}
	for distro, dir := range c.Output {
		if distro == "" {
			return apperr.ValidationFailed("output", "empty distro name")
		}
		if dir == "" {
			return apperr.ValidationFailed("output", fmt.Sprintf("empty output directory for distro %q", distro))
		}
	}
	for _, d := range c.DefaultDistros {
		if d == "" {
			return apperr.ValidationFailed("default_distros", "empty distro name")
		}
	}
	if c.Watch.Debounce != "" {
		if _, err := time.ParseDuration(c.Watch.Debounce); err != nil {
			return apperr.ValidationFailed("watch.debounce", err.Error())
		}
	}
	if c.Watch.Interval != "" {
		if _, err := time.ParseDuration(c.Watch.Interval); err != nil {
			return apperr.ValidationFailed("watch.interval", err.Error())
		}
	}
	return nil
}

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := `# rst2bash configuration
source:
  dir: ./doc/install-guide/source
  # repo: https://opendev.org/openstack/openstack-manuals.git
  # branch: master

# Input files relative to source.dir; omit to convert every *.rst file.
files:
  - keystone-install.rst
  - nova-install.rst

# Output directory per distribution. Scripts are written as <dir>/<file>.sh.
output:
  ubuntu: ./out/ubuntu
  debian: ./out/debian
  obs: ./out/obs
  rdo: ./out/rdo

# Distros applied to code regions outside any "only" section.
default_distros: [debian, ubuntu, obs, rdo]

logging:
  level: info
  format: text
  # file: rst2bash.log

watch:
  debounce: 2s
  # interval: 10m

journal:
  # path: rst2bash.db

metrics:
  # addr: :9090
`
	return os.WriteFile(configPath, []byte(example), 0o644)
}
