package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
)

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Models   ModelsConfig   `koanf:"models"`
	Persona  PersonaConfig  `koanf:"persona"`
	Business BusinessConfig `koanf:"business"`
	Telnyx   TelnyxConfig   `koanf:"telnyx"`
}

type ServerConfig struct {
	Port            int    `koanf:"port"`
	LogLevel        string `koanf:"log_level"`
	ReadTimeout     string `koanf:"read_timeout"`
	WriteTimeout    string `koanf:"write_timeout"`
	IdleTimeout     string `koanf:"idle_timeout"`
	ShutdownTimeout string `koanf:"shutdown_timeout"`
}

type ModelsConfig struct {
	Default  string          `koanf:"default"`
	Fallback string          `koanf:"fallback"`
	Registry []ModelRegistry `koanf:"registry"`
}

type ModelRegistry struct {
	Name           string `koanf:"name"`
	Provider       string `koanf:"provider"`
	BaseURL        string `koanf:"base_url"`
	APIKey         string `koanf:"api_key"`
	RequestTimeout string `koanf:"request_timeout"`
}

type PersonaConfig struct {
	Name string `koanf:"name"`
	Dir  string `koanf:"dir"`
}

type BusinessConfig struct {
	Name     string   `koanf:"name"`
	Hours    string   `koanf:"hours"`
	Services []string `koanf:"services"`
}

type TelnyxConfig struct {
	APIKey         string `koanf:"api_key"`
	SigningSecret  string `koanf:"signing_secret"`
	BaseURL        string `koanf:"base_url"`
	RequestTimeout string `koanf:"request_timeout"`
}

const (
	DefaultServerPort            = 8080
	DefaultServerLogLevel        = "info"
	DefaultServerReadTimeout     = "10s"
	DefaultServerWriteTimeout    = "60s"
	DefaultServerIdleTimeout     = "60s"
	DefaultServerShutdownTimeout = "5s"
	DefaultModelDefault          = "gpt-4o-mini"
	DefaultOpenAIBaseURL         = "https://api.openai.com/v1"
	DefaultModelRequestTimeout   = "30s"
	DefaultPersonaName           = "default"
	DefaultPersonaDir            = "personas"
	DefaultBusinessName          = "Our Business"
	DefaultTelnyxBaseURL         = "https://api.telnyx.com/v2"
	DefaultTelnyxRequestTimeout  = "10s"
)

func Load(cmd *cobra.Command) (*Config, error) {
	k := koanf.New(".")

	// Hardcoded Defaults
	defaults := map[string]interface{}{
		"server.port":             DefaultServerPort,
		"server.log_level":        DefaultServerLogLevel,
		"server.read_timeout":     DefaultServerReadTimeout,
		"server.write_timeout":    DefaultServerWriteTimeout,
		"server.idle_timeout":     DefaultServerIdleTimeout,
		"server.shutdown_timeout": DefaultServerShutdownTimeout,
		"models.default":          DefaultModelDefault,
		"models.fallback":         "",
		"models.registry": []ModelRegistry{
			{Name: DefaultModelDefault, Provider: "openai"},
			{Name: "gpt-4o", Provider: "openai"},
		},
		"persona.name":           DefaultPersonaName,
		"persona.dir":            DefaultPersonaDir,
		"business.name":          DefaultBusinessName,
		"business.hours":         "",
		"business.services":      []string{},
		"telnyx.base_url":        DefaultTelnyxBaseURL,
		"telnyx.request_timeout": DefaultTelnyxRequestTimeout,
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	// Config file loading
	configPath := ""
	if cmd != nil {
		if flag := cmd.Flags().Lookup("config"); flag != nil {
			configPath = strings.TrimSpace(flag.Value.String())
		}
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, err
		}
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			globalPath := filepath.Join(home, ".frontdesk", "config.yaml")
			if err := k.Load(file.Provider(globalPath), yaml.Parser()); err != nil {
				slog.Debug("Global config not found or invalid", "path", globalPath, "error", err)
			}
		}
	}

	// Environment Variables
	k.Load(env.Provider("FRONTDESK_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "FRONTDESK_")), "_", ".", -1)
	}), nil)

	// CLI Flags
	if cmd != nil {
		k.Load(posflag.Provider(cmd.Flags(), ".", k), nil)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	for i, m := range cfg.Models.Registry {
		if m.Provider == "" {
			cfg.Models.Registry[i].Provider = "openai"
		}
	}

	// Post-Process: Inject standard Env Vars if missing
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		for i, m := range cfg.Models.Registry {
			if m.Provider == "openai" && m.APIKey == "" {
				cfg.Models.Registry[i].APIKey = key
			}
		}
	}
	if key := os.Getenv("TELNYX_API_KEY"); key != "" && cfg.Telnyx.APIKey == "" {
		cfg.Telnyx.APIKey = key
	}
	if secret := os.Getenv("TELNYX_SIGNING_SECRET"); secret != "" && cfg.Telnyx.SigningSecret == "" {
		cfg.Telnyx.SigningSecret = secret
	}

	return &cfg, nil
}

// Validate checks startup-time invariants. A missing upstream API key is the
// one fatal misconfiguration: proceeding with an empty key would turn every
// call into a string of provider errors.
func (c *Config) Validate() error {
	var defaultEntry *ModelRegistry
	for i := range c.Models.Registry {
		if c.Models.Registry[i].Name == c.Models.Default {
			defaultEntry = &c.Models.Registry[i]
			break
		}
	}
	if defaultEntry == nil {
		return fmt.Errorf("default model %q not present in models.registry", c.Models.Default)
	}
	if defaultEntry.APIKey == "" {
		return fmt.Errorf("no API key configured for default model %q (set OPENAI_API_KEY or models.registry[].api_key)", c.Models.Default)
	}

	if c.Telnyx.APIKey == "" {
		slog.Warn("Telnyx API key not configured, call-control actions will fail", "hint", "set TELNYX_API_KEY")
	}

	return nil
}
