package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/r9s-ai/textmate-validate/pkg/oracle"
)

// DefaultPath is looked up in the working directory when no --config flag is
// given.
const DefaultPath = ".textmate-validate.yaml"

const (
	defaultServeListen       = "127.0.0.1:3320"
	defaultServeMaxBodyBytes = 8 * 1024 * 1024
	defaultWatchDebounceMs   = 300
	defaultLogLevel          = "warn"
	defaultAccessLogFormat   = "$time_local | $status | $latency | $method $path | request_id=$request_id regexes=$regex_total invalid=$regex_invalid"
)

// Mode values accepted by output.style and output.color.
const (
	ModeAuto       = "auto"
	ModeCompact    = "compact"
	ModeNonCompact = "non-compact"
	ModeAlways     = "always"
	ModeNever      = "never"
)

type OutputConfig struct {
	Style string `yaml:"style"`
	Color string `yaml:"color"`
}

type LoggingConfig struct {
	Level           string `yaml:"level"`
	AccessLogFormat string `yaml:"access_log_format"`
}

type ServeConfig struct {
	Listen       string `yaml:"listen"`
	H2C          bool   `yaml:"h2c"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
}

type WatchConfig struct {
	DebounceMs int `yaml:"debounce_ms"`
}

type Config struct {
	// Engine names the regex engine used as validity oracle.
	Engine string `yaml:"engine"`
	// Concurrency bounds parallel compiles; 0 means one per CPU.
	Concurrency int `yaml:"concurrency"`
	// Verbosity is the default report level (0..2) when -v is not given.
	Verbosity int `yaml:"verbosity"`

	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
	Serve   ServeConfig   `yaml:"serve"`
	Watch   WatchConfig   `yaml:"watch"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	return &cfg
}

func Load(path string) (*Config, error) {
	// #nosec G304 -- path is provided by trusted config/flag.
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	return &cfg, nil
}

// LoadIfExists loads path, falling back to Default when the file does not
// exist. Other read or parse errors are returned.
func LoadIfExists(path string) (*Config, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return Default(), nil
	}
	cfg, err := Load(p)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

func applyDefaults(cfg *Config) {
	cfg.Engine = oracle.NormalizeEngineName(cfg.Engine)
	if strings.TrimSpace(cfg.Output.Style) == "" {
		cfg.Output.Style = ModeAuto
	}
	if strings.TrimSpace(cfg.Output.Color) == "" {
		cfg.Output.Color = ModeAuto
	}
	if strings.TrimSpace(cfg.Logging.Level) == "" {
		cfg.Logging.Level = defaultLogLevel
	}
	if strings.TrimSpace(cfg.Logging.AccessLogFormat) == "" {
		cfg.Logging.AccessLogFormat = defaultAccessLogFormat
	}
	if strings.TrimSpace(cfg.Serve.Listen) == "" {
		cfg.Serve.Listen = defaultServeListen
	}
	if cfg.Serve.MaxBodyBytes == 0 {
		cfg.Serve.MaxBodyBytes = defaultServeMaxBodyBytes
	}
	if cfg.Watch.DebounceMs == 0 {
		cfg.Watch.DebounceMs = defaultWatchDebounceMs
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("TMV_ENGINE")); v != "" {
		cfg.Engine = oracle.NormalizeEngineName(v)
	}
	if n, ok := envInt("TMV_CONCURRENCY"); ok {
		cfg.Concurrency = n
	}
	if v := strings.TrimSpace(os.Getenv("TMV_LOG_LEVEL")); v != "" {
		cfg.Logging.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("TMV_SERVE_LISTEN")); v != "" {
		cfg.Serve.Listen = v
	}
	cfg.Serve.H2C = envBool("TMV_SERVE_H2C", cfg.Serve.H2C)
}

func envInt(name string) (int, bool) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func envBool(name string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func validate(cfg *Config) error {
	if _, err := oracle.Open(cfg.Engine); err != nil {
		return err
	}
	if cfg.Concurrency < 0 {
		return errors.New("concurrency must be >= 0")
	}
	if cfg.Verbosity < 0 || cfg.Verbosity > 2 {
		return errors.New("verbosity must be 0, 1 or 2")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Output.Style)) {
	case ModeAuto, ModeCompact, ModeNonCompact:
	default:
		return fmt.Errorf("output.style must be one of auto|compact|non-compact, got %q", cfg.Output.Style)
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Output.Color)) {
	case ModeAuto, ModeAlways, ModeNever:
	default:
		return fmt.Errorf("output.color must be one of auto|always|never, got %q", cfg.Output.Color)
	}
	if cfg.Serve.MaxBodyBytes < 0 {
		return errors.New("serve.max_body_bytes must be non-negative")
	}
	if cfg.Watch.DebounceMs < 0 {
		return errors.New("watch.debounce_ms must be >= 0")
	}
	return nil
}
