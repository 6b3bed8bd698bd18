package domain

import "time"

// Config represents the padhney configuration loaded from padhney.yaml.
type Config struct {
	Endpoint EndpointConfig
	HTTP     HTTPConfig
	History  HistoryConfig
	Masking  MaskingConfig
}

type EndpointConfig struct {
	// BaseURL is the auth service host; RegisterPath is appended to it.
	BaseURL string
}

type HTTPConfig struct {
	Timeout time.Duration
}

type HistoryConfig struct {
	Enabled bool
	Dir     string
}

type MaskingConfig struct {
	Enabled bool
}

// DefaultConfig provides sane defaults if padhney.yaml is partially missing.
func DefaultConfig() Config {
	return Config{
		Endpoint: EndpointConfig{BaseURL: "http://localhost:1337"},
		HTTP:     HTTPConfig{Timeout: 15 * time.Second},
		History: HistoryConfig{
			Enabled: false,
			Dir:     "submissions",
		},
		Masking: MaskingConfig{Enabled: true},
	}
}

// WorkspaceSpec describes where a workspace is initialized.
type WorkspaceSpec struct {
	Root string
}
