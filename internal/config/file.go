package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration. Fields left out of the file keep their defaults.
type Config struct {
	FlagsDir     string       `yaml:"flags_dir" validate:"required"`
	Store        string       `yaml:"store" validate:"oneof=local remote"`
	Template     string       `yaml:"template"`
	OutputDir    string       `yaml:"output_dir" validate:"required"`
	FlagSize     Size         `yaml:"flag_size"`
	FlagPosition Point        `yaml:"flag_position"`
	Remote       RemoteConfig `yaml:"remote"`
	Concurrency  int          `yaml:"concurrency" validate:"min=1,max=16"`
	CacheDir     string       `yaml:"cache_dir" validate:"required"`
	CacheTTLDays int          `yaml:"cache_ttl_days" validate:"min=0"`
	NoCache      bool         `yaml:"no_cache"`
	Log          LogConfig    `yaml:"log"`
}

// Size is a width and height in pixels.
type Size struct {
	Width  int `yaml:"width" validate:"gt=0"`
	Height int `yaml:"height" validate:"gt=0"`
}

// Point is a pixel position.
type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// RemoteConfig configures the remote flag repository.
type RemoteConfig struct {
	BaseURL        string `yaml:"base_url" validate:"required,url"`
	AspectRatio    string `yaml:"aspect_ratio" validate:"oneof=1x1 4x3"`
	TimeoutSeconds int    `yaml:"timeout_seconds" validate:"min=0"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		FlagsDir:     DefaultFlagsDir,
		Store:        DefaultStore,
		Template:     DefaultTemplatePath,
		OutputDir:    DefaultOutputDir,
		FlagSize:     Size{Width: DefaultFlagWidth, Height: DefaultFlagHeight},
		FlagPosition: Point{X: DefaultFlagX, Y: DefaultFlagY},
		Remote: RemoteConfig{
			BaseURL:     DefaultRemoteBaseURL,
			AspectRatio: DefaultAspectRatio,
		},
		Concurrency:  DefaultConcurrency,
		CacheDir:     DefaultCacheDir(),
		CacheTTLDays: DefaultCacheTTLDays,
		Log:          LogConfig{Level: "warn", Format: "text"},
	}
}

// Error is a configuration error tied to the file it came from.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid configuration: %v", e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Load reads configuration on top of the defaults.
//
// With an explicit path the file must exist. Without one, <cwd>/flagpic.yaml is used
// when present and the defaults otherwise. Relative paths in the file are resolved
// against the file's directory.
func Load(cwd, path string) (*Config, error) {
	cfg := DefaultConfig()

	required := strings.TrimSpace(path) != ""
	if !required {
		path = filepath.Join(cwd, ConfigFileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return cfg, cfg.Validate()
		}
		return nil, &Error{Path: path, Err: err}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	base := filepath.Dir(path)
	cfg.FlagsDir = resolve(base, cfg.FlagsDir)
	cfg.Template = resolve(base, cfg.Template)
	cfg.OutputDir = resolve(base, cfg.OutputDir)

	if err := cfg.Validate(); err != nil {
		var ce *Error
		if errors.As(err, &ce) {
			ce.Path = path
		}
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and reports every violation at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &Error{Err: err}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: must satisfy %s=%s (got %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: must satisfy %s (got %v)", fe.Namespace(), fe.Tag(), fe.Value()))
		}
	}
	return &Error{Err: errors.New(strings.Join(msgs, "; "))}
}

func resolve(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
