package config

import (
	"time"

	"github.com/muurk/fritzpowerline/internal/tr064"
)

// CurrentVersion is the config file format version
const CurrentVersion = 1

// Output formats
const (
	FormatTable   = "table"
	FormatCompact = "compact"
	FormatJSON    = "json"
)

// Settings represents the user configuration file.
// It stores how to reach the router and how to present results.
// Note: The router password is NEVER stored here.
type Settings struct {
	Version        int    `yaml:"version"`
	Address        string `yaml:"address" validate:"required,hostname_rfc1123|ip"`     // Router hostname or IP
	Port           int    `yaml:"port,omitempty" validate:"omitempty,min=1,max=65535"` // 0 picks 49000 or 49443
	Username       string `yaml:"username" validate:"required"`                        // TR-064 user
	UseTLS         bool   `yaml:"use_tls"`                                             // Talk HTTPS to port 49443
	TimeoutSeconds int    `yaml:"timeout_seconds" validate:"min=1,max=300"`            // Per-request timeout
	Service        int    `yaml:"service" validate:"min=1"`                            // X_AVM-DE_Homeplug instance
	Addressing     string `yaml:"addressing" validate:"oneof=always omit-first"`       // Instance suffix rule
	Format         string `yaml:"format" validate:"oneof=table compact json"`          // Default output format
}

// NewSettings creates Settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version:        CurrentVersion,
		Address:        tr064.DefaultAddress,
		Username:       tr064.DefaultUsername,
		TimeoutSeconds: int(tr064.DefaultTimeout / time.Second),
		Service:        1,
		Addressing:     "always",
		Format:         FormatTable,
	}
}

// Timeout returns the request timeout as a duration
func (s *Settings) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// ClientConfig converts the settings plus a resolved password into a
// TR-064 client configuration.
func (s *Settings) ClientConfig(password string) tr064.Config {
	return tr064.Config{
		Address:  s.Address,
		Port:     s.Port,
		Username: s.Username,
		Password: password,
		UseTLS:   s.UseTLS,
		Timeout:  s.Timeout(),
	}
}

// applyDefaults fills zero values left by a partial config file
func (s *Settings) applyDefaults() {
	def := NewSettings()
	if s.Version == 0 {
		s.Version = def.Version
	}
	if s.Address == "" {
		s.Address = def.Address
	}
	if s.Username == "" {
		s.Username = def.Username
	}
	if s.TimeoutSeconds == 0 {
		s.TimeoutSeconds = def.TimeoutSeconds
	}
	if s.Service == 0 {
		s.Service = def.Service
	}
	if s.Addressing == "" {
		s.Addressing = def.Addressing
	}
	if s.Format == "" {
		s.Format = def.Format
	}
}
