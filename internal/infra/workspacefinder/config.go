package workspacefinder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/callmetuna/padhneyAI/internal/domain"
)

// Environment variables that override padhney.yaml.
const (
	EnvBaseURL = "PADHNEY_BASE_URL"
	EnvTimeout = "PADHNEY_TIMEOUT"
	EnvHistory = "PADHNEY_HISTORY"
)

// LoadConfig loads padhney.yaml from the workspace root and applies defaults.
func LoadConfig(root string) (domain.Config, error) {
	cfg := domain.DefaultConfig()

	path := filepath.Join(root, ConfigFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, &domain.OpError{
			Op:   "workspacefinder.loadconfig",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var y yamlConfig
	if err := yaml.Unmarshal(b, &y); err != nil {
		return cfg, &domain.OpError{
			Op:   "workspacefinder.loadconfig",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	// Apply parsed values on top of defaults.
	p := y.Padhney
	if s := strings.TrimSpace(p.Endpoint.BaseURL); s != "" {
		cfg.Endpoint.BaseURL = s
	}
	if s := strings.TrimSpace(p.HTTP.Timeout); s != "" {
		d, err := parseTimeout(s)
		if err != nil {
			return cfg, &domain.OpError{
				Op:   "workspacefinder.loadconfig",
				Kind: domain.KindInvalidConfig,
				Path: path,
				Err:  fmt.Errorf("http.timeout: %w", err),
			}
		}
		cfg.HTTP.Timeout = d
	}
	if p.History.Enabled != nil {
		cfg.History.Enabled = *p.History.Enabled
	}
	if s := strings.TrimSpace(p.History.Dir); s != "" {
		cfg.History.Dir = s
	}
	if p.Masking.Enabled != nil {
		cfg.Masking.Enabled = *p.Masking.Enabled
	}

	return cfg, nil
}

// Resolve builds the effective configuration for a workspace:
// defaults < padhney.yaml < .env < process environment.
// An empty root, or a root without padhney.yaml, yields defaults plus environment.
func Resolve(root string) (domain.Config, error) {
	cfg := domain.DefaultConfig()

	if root != "" {
		loaded, err := LoadConfig(root)
		switch {
		case err == nil:
			cfg = loaded
		case domain.IsKind(err, domain.KindNotFound):
			// No config file: defaults apply.
		default:
			return cfg, err
		}
	}

	dotenv, err := readDotEnv(root)
	if err != nil {
		return cfg, err
	}

	return ApplyEnv(cfg, func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	})
}

// ApplyEnv overlays PADHNEY_* variables found through lookup.
func ApplyEnv(cfg domain.Config, lookup func(string) (string, bool)) (domain.Config, error) {
	if v, ok := lookup(EnvBaseURL); ok && strings.TrimSpace(v) != "" {
		cfg.Endpoint.BaseURL = strings.TrimSpace(v)
	}

	if v, ok := lookup(EnvTimeout); ok && strings.TrimSpace(v) != "" {
		d, err := parseTimeout(v)
		if err != nil {
			return cfg, &domain.OpError{
				Op:   "workspacefinder.env",
				Kind: domain.KindInvalidConfig,
				Err:  fmt.Errorf("%s: %w", EnvTimeout, err),
			}
		}
		cfg.HTTP.Timeout = d
	}

	if v, ok := lookup(EnvHistory); ok && strings.TrimSpace(v) != "" {
		enabled, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return cfg, &domain.OpError{
				Op:   "workspacefinder.env",
				Kind: domain.KindInvalidConfig,
				Err:  fmt.Errorf("%s: %w", EnvHistory, err),
			}
		}
		cfg.History.Enabled = enabled
	}

	return cfg, nil
}

func readDotEnv(root string) (map[string]string, error) {
	if root == "" {
		return map[string]string{}, nil
	}

	path := filepath.Join(root, ".env")
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, &domain.OpError{
			Op:   "workspacefinder.dotenv",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	vals, err := godotenv.Read(path)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "workspacefinder.dotenv",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}
	return vals, nil
}

// parseTimeout accepts Go durations ("15s", "1m") or plain seconds ("15").
func parseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("timeout must be positive, got %q", s)
		}
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive, got %q", s)
	}
	return d, nil
}

// MarshalConfig renders cfg in the padhney.yaml layout.
func MarshalConfig(cfg domain.Config) ([]byte, error) {
	var y yamlConfig
	y.Padhney.Endpoint.BaseURL = cfg.Endpoint.BaseURL
	y.Padhney.HTTP.Timeout = cfg.HTTP.Timeout.String()
	y.Padhney.History.Enabled = &cfg.History.Enabled
	y.Padhney.History.Dir = cfg.History.Dir
	y.Padhney.Masking.Enabled = &cfg.Masking.Enabled
	return yaml.Marshal(y)
}

type yamlConfig struct {
	Padhney struct {
		Endpoint struct {
			BaseURL string `yaml:"base_url"`
		} `yaml:"endpoint"`

		HTTP struct {
			Timeout string `yaml:"timeout"`
		} `yaml:"http"`

		History struct {
			Enabled *bool  `yaml:"enabled"`
			Dir     string `yaml:"dir"`
		} `yaml:"history"`

		Masking struct {
			Enabled *bool `yaml:"enabled"`
		} `yaml:"masking"`
	} `yaml:"padhney"`
}
