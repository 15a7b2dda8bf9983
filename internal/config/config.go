// Package config loads zipcities settings from an optional TOML file.
//
// Values are resolved in three layers: built-in defaults, the config file,
// then command-line flags that were explicitly set. [Config.Validate] runs
// on the merged result.
package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/zipcities/pkg/cache"
	"github.com/matzehuels/zipcities/pkg/errors"
	"github.com/matzehuels/zipcities/pkg/pipeline"
)

// AppName names the cache directory.
const AppName = "zipcities"

// Config is the merged run configuration.
type Config struct {
	Input   string `toml:"input" validate:"required"`
	Output  string `toml:"output" validate:"required"`
	NoCache bool   `toml:"no_cache"`

	Cache CacheConfig `toml:"cache"`
}

// CacheConfig selects and tunes the artifact cache.
type CacheConfig struct {
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url" validate:"omitempty,url"`
	TTL      Duration `toml:"ttl" validate:"gte=0"`
}

// Duration is a time.Duration decoded from strings such as "720h".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Input: pipeline.DefaultInput,
		Cache: CacheConfig{TTL: Duration(cache.TTLArtifact)},
	}
}

// Load returns the defaults overlaid with the TOML file at path. An empty
// path returns the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if stderrors.Is(err, fs.ErrNotExist) {
		return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s not found", path)
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, errors.New(errors.ErrCodeInvalidConfig,
			"config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

var validate = newValidator()

// newValidator reports fields by their TOML key.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		tag := fld.Tag.Get("toml")
		if tag == "-" || tag == "" {
			return fld.Name
		}
		if idx := strings.Index(tag, ","); idx >= 0 {
			tag = tag[:idx]
		}
		return tag
	})
	return v
}

// Validate checks the merged configuration. A missing input or output is
// reported as INVALID_INPUT with the flag to set; anything else is
// INVALID_CONFIG.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "validate config")
	}

	fe := verrs[0]
	switch {
	case fe.Tag() == "required" && fe.StructField() == "Output":
		return errors.New(errors.ErrCodeInvalidInput,
			"an output JSON file path is required (-o/--output)")
	case fe.Tag() == "required" && fe.StructField() == "Input":
		return errors.New(errors.ErrCodeInvalidInput,
			"an input file containing zip code information is required (-i/--input)")
	}
	return errors.New(errors.ErrCodeInvalidConfig, "%s", describe(fe))
}

func describe(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "url":
		return fmt.Sprintf("%s: %q is not a valid URL", field, fe.Value())
	case "gte":
		return fmt.Sprintf("%s must not be negative", field)
	}
	return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
}

// CacheDir returns the configured cache directory, or the XDG default
// ($XDG_CACHE_HOME/zipcities, falling back to ~/.cache/zipcities).
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	return DefaultCacheDir()
}

// DefaultCacheDir returns the XDG cache directory for zipcities.
func DefaultCacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}
