package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces environment overrides, e.g. DATAVIEW_REST_BASE_URL.
const EnvPrefix = "DATAVIEW_"

// Config is the runtime configuration shared by the server and the CLI.
type Config struct {
	REST     REST     `koanf:"rest" yaml:"rest"`
	Log      Log      `koanf:"log" yaml:"log"`
	Server   Server   `koanf:"server" yaml:"server"`
	Manifest Manifest `koanf:"manifest" yaml:"manifest"`
	Chart    Chart    `koanf:"chart" yaml:"chart"`
}

// REST configures the backend client.
type REST struct {
	BaseURL     string        `koanf:"base_url" yaml:"base_url"`
	Timeout     time.Duration `koanf:"timeout" yaml:"timeout"`
	RetryCount  int           `koanf:"retry_count" yaml:"retry_count"`
	CacheSize   int           `koanf:"cache_size" yaml:"cache_size"`
	CacheTTL    time.Duration `koanf:"cache_ttl" yaml:"cache_ttl"`
	AccessToken string        `koanf:"access_token" yaml:"access_token"`
}

type Log struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}

type Server struct {
	Addr     string `koanf:"addr" yaml:"addr"`
	BasePath string `koanf:"base_path" yaml:"base_path"`
}

// Manifest points at an optional resource manifest. Watch reloads it on change.
type Manifest struct {
	Path  string `koanf:"path" yaml:"path"`
	Watch bool   `koanf:"watch" yaml:"watch"`
}

type Chart struct {
	Theme    string        `koanf:"theme" yaml:"theme"`
	CacheTTL time.Duration `koanf:"cache_ttl" yaml:"cache_ttl"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		REST: REST{
			Timeout:    10 * time.Second,
			RetryCount: 2,
			CacheSize:  256,
			CacheTTL:   30 * time.Second,
		},
		Log:    Log{Level: "info", Format: "text"},
		Server: Server{Addr: ":9876", BasePath: "/admin"},
		Chart:  Chart{Theme: "westeros", CacheTTL: 5 * time.Minute},
	}
}

// Load layers defaults, the optional YAML file at path and DATAVIEW_* environment
// variables, in that order.
func Load(path string) (Config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("config: load defaults: %w", err)
	}
	if path != "" {
		data, err := readYAML(path)
		if err != nil {
			return Config{}, err
		}
		if err := k.Load(rawMap(data), nil); err != nil {
			return Config{}, fmt.Errorf("config: load %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: transformEnvKey,
	}), nil); err != nil {
		return Config{}, fmt.Errorf("config: load environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects values the client and server cannot work with.
func (c Config) Validate() error {
	var errs []error
	if c.REST.Timeout <= 0 {
		errs = append(errs, errors.New("rest.timeout must be positive"))
	}
	if c.REST.RetryCount < 0 {
		errs = append(errs, errors.New("rest.retry_count must not be negative"))
	}
	if c.REST.CacheSize < 0 {
		errs = append(errs, errors.New("rest.cache_size must not be negative"))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be text or json", c.Log.Format))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// transformEnvKey maps DATAVIEW_REST_BASE_URL to rest.base_url.
func transformEnvKey(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	section, field, ok := strings.Cut(key, "_")
	if !ok {
		return key, value
	}
	return section + "." + field, value
}

func readYAML(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	data := map[string]any{}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return data, nil
}

// rawMap adapts a decoded document to koanf.Provider.
type rawMap map[string]any

func (r rawMap) Read() (map[string]any, error) {
	return r, nil
}

func (r rawMap) ReadBytes() ([]byte, error) {
	return nil, errors.New("ReadBytes not implemented")
}
