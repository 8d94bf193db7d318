// Package config loads prayog settings from defaults, a TOML file, PRAYOG_*
// environment variables and command line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/itsmostafa/prayog/internal/session"
)

const (
	envPrefix      = "PRAYOG"
	configType     = "toml"
	appDir         = "prayog"
	configFile     = "config.toml"
	homeConfigFile = ".prayog.toml"
	historyFile    = ".prayog_history"
)

// Keys as they appear in the config file and, upper-cased, in the environment.
const (
	KeyPrompt         = "prompt"
	KeyHistoryFile    = "history_file"
	KeyHistoryLimit   = "history_limit"
	KeyColor          = "color"
	KeyWelcomeMessage = "welcome_message"
	KeyEngine         = "engine"
	KeyTimeout        = "timeout"
	KeyWorkDir        = "work_dir"
	KeyInternalNames  = "internal_names"
	KeyPrivatePrefix  = "private_prefix"
	KeyLogLevel       = "log_level"
)

// Engines lists the accepted engine names.
var Engines = []string{"js", "tengo"}

var (
	// ErrUnknownEngine is returned by Validate for an engine not in Engines
	ErrUnknownEngine = errors.New("unknown engine")
	// ErrInvalidTimeout is returned by Validate for a non-positive timeout
	ErrInvalidTimeout = errors.New("timeout must be positive")
	// ErrEmptyPrompt is returned by Validate for an empty prompt
	ErrEmptyPrompt = errors.New("prompt must not be empty")
)

// Config is the effective prayog configuration.
type Config struct {
	Prompt         string   `mapstructure:"prompt" toml:"prompt"`
	HistoryFile    string   `mapstructure:"history_file" toml:"history_file"`
	HistoryLimit   int      `mapstructure:"history_limit" toml:"history_limit"`
	Color          bool     `mapstructure:"color" toml:"color"`
	WelcomeMessage string   `mapstructure:"welcome_message" toml:"welcome_message"`
	Engine         string   `mapstructure:"engine" toml:"engine"`
	Timeout        int      `mapstructure:"timeout" toml:"timeout"`
	WorkDir        string   `mapstructure:"work_dir" toml:"work_dir"`
	InternalNames  []string `mapstructure:"internal_names" toml:"internal_names"`
	PrivatePrefix  string   `mapstructure:"private_prefix" toml:"private_prefix"`
	LogLevel       string   `mapstructure:"log_level" toml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	history := historyFile
	if home, err := os.UserHomeDir(); err == nil {
		history = filepath.Join(home, historyFile)
	}
	return Config{
		Prompt:        "prayog> ",
		HistoryFile:   history,
		HistoryLimit:  1000,
		Color:         true,
		Engine:        "js",
		Timeout:       30,
		InternalNames: []string{"__result__", "__proto__"},
		PrivatePrefix: "_",
		LogLevel:      "warn",
	}
}

// SetDefaults registers every key with its default so environment variables
// and Unmarshal see the full key set.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault(KeyPrompt, d.Prompt)
	v.SetDefault(KeyHistoryFile, d.HistoryFile)
	v.SetDefault(KeyHistoryLimit, d.HistoryLimit)
	v.SetDefault(KeyColor, d.Color)
	v.SetDefault(KeyWelcomeMessage, d.WelcomeMessage)
	v.SetDefault(KeyEngine, d.Engine)
	v.SetDefault(KeyTimeout, d.Timeout)
	v.SetDefault(KeyWorkDir, d.WorkDir)
	v.SetDefault(KeyInternalNames, d.InternalNames)
	v.SetDefault(KeyPrivatePrefix, d.PrivatePrefix)
	v.SetDefault(KeyLogLevel, d.LogLevel)
}

// Load reads the configuration into v and returns the validated result. An
// explicit path must exist; otherwise the first file found in SearchPaths is
// used and having none is fine. Flags bound to v before Load take precedence.
func Load(v *viper.Viper, path string) (Config, error) {
	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	v.SetConfigType(configType)

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.HistoryFile = expandHome(cfg.HistoryFile)
	cfg.WorkDir = expandHome(cfg.WorkDir)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SearchPaths returns the config file locations tried when no path is given.
func SearchPaths() []string {
	var paths []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, appDir, configFile))
	} else if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", appDir, configFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, homeConfigFile))
	}
	return paths
}

func findConfigFile() string {
	for _, p := range SearchPaths() {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Validate checks the values that would otherwise fail later and less clearly.
func (c Config) Validate() error {
	if !slices.Contains(Engines, c.Engine) {
		return fmt.Errorf("%w %q (want one of %s)", ErrUnknownEngine, c.Engine, strings.Join(Engines, ", "))
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTimeout, c.Timeout)
	}
	if c.Prompt == "" {
		return ErrEmptyPrompt
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// TimeoutDuration returns Timeout as a duration.
func (c Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// Policy returns the reconciliation name policy. Engines append their own
// reserved names when the session is wired.
func (c Config) Policy() session.NamePolicy {
	return session.NamePolicy{
		Internal:      slices.Clone(c.InternalNames),
		PrivatePrefix: c.PrivatePrefix,
	}
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	enc := toml.NewEncoder(w)
	enc.SetIndentTables(true)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}
