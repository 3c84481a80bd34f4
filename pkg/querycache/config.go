package querycache

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/goliatone/go-config/cfgx"
)

// Params are the opaque arguments handed to a fetch function when its
// query misses. They are fixed at registration time.
type Params []any

// Config declares the cache directory and the set of cacheable queries.
// It is consumed once by New; the cache never re-reads it.
type Config struct {
	// CachePath is the directory holding one file per query name.
	// Required unless a custom entry store is supplied; there is no
	// implicit default rooted at some application directory.
	CachePath string `mapstructure:"cache_path" json:"cache_path"`
	// Queries maps each cacheable query name to its fetch parameters.
	Queries map[string]Params `mapstructure:"queries" json:"queries"`
}

// Validate ensures required fields are present and sane.
func (c *Config) Validate() error {
	if c.CachePath == "" {
		return ErrNoCachePath
	}
	if len(c.Queries) == 0 {
		return ErrNoQueries
	}
	for name := range c.Queries {
		if name == "" {
			return fmt.Errorf("%w: empty query name", ErrNoQueries)
		}
	}
	return nil
}

// Load decodes arbitrary input (struct, map, cfg struct) using cfgx helpers.
// While cfgx.Build still returns zero values, we fallback to a lightweight
// decoder to keep smoke tests meaningful. Once cfgx is fully implemented we
// can drop the fallback.
func Load(input any, opts ...LoadOption) (Config, error) {
	settings := loadOptions{}
	for _, opt := range opts {
		opt(&settings)
	}

	cfg, err := cfgx.Build(input, settings.buildOpts...)
	if err != nil {
		return Config{}, err
	}

	if isZero(cfg) {
		if err := decodeFallback(input, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadOption lets callers amend cfgx build options.
type LoadOption func(*loadOptions)

type loadOptions struct {
	buildOpts []cfgx.Option[Config]
}

// WithBuildOptions forwards cfgx options (hooks, preprocessors, etc.).
func WithBuildOptions(opts ...cfgx.Option[Config]) LoadOption {
	return func(lo *loadOptions) {
		lo.buildOpts = append(lo.buildOpts, opts...)
	}
}

func isZero(cfg Config) bool {
	return reflect.DeepEqual(cfg, Config{})
}

func decodeFallback(input any, cfg *Config) error {
	switch v := input.(type) {
	case nil:
		return nil
	case Config:
		*cfg = v
		return nil
	case *Config:
		if v != nil {
			*cfg = *v
		}
		return nil
	case map[string]any:
		return decodeMap(v, cfg)
	default:
		return fmt.Errorf("unsupported config input type: %T", input)
	}
}

func decodeMap(input map[string]any, cfg *Config) error {
	if input == nil {
		return nil
	}
	payload, err := json.Marshal(input)
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, cfg)
}
