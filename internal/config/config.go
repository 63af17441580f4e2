// Package config monta a configuração do relay uma única vez na partida do
// processo. O valor devolvido é imutável e passado explicitamente aos componentes.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultAddr         = ":8000"
	DefaultModel        = "gemini-1.5-flash"
	DefaultProvider     = "genai"
	DefaultTimeout      = 60 * time.Second
	DefaultLogLevel     = "info"
	DefaultMetricsSpace = "gemini_relay"
)

// Config reúne tudo que o processo precisa para subir
type Config struct {
	Addr            string        `yaml:"addr"`
	Provider        string        `yaml:"provider"`
	APIKey          string        `yaml:"-"`
	APIKeyParameter string        `yaml:"api_key_parameter"`
	BaseURL         string        `yaml:"base_url"`
	DefaultModel    string        `yaml:"default_model"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	GenerateTimeout time.Duration `yaml:"generate_timeout"`
	MetricsEnabled  bool          `yaml:"metrics_enabled"`
	MCPEnabled      bool          `yaml:"mcp_enabled"`
	LogLevel        string        `yaml:"log_level"`
}

// ParamGetter busca segredos num armazenamento externo
type ParamGetter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// Defaults devolve a configuração usada quando nada é informado
func Defaults() Config {
	return Config{
		Addr:            DefaultAddr,
		Provider:        DefaultProvider,
		DefaultModel:    DefaultModel,
		AllowedOrigins:  []string{"*"},
		GenerateTimeout: DefaultTimeout,
		MetricsEnabled:  true,
		MCPEnabled:      true,
		LogLevel:        DefaultLogLevel,
	}
}

// Load lê o arquivo apontado por RELAY_CONFIG_FILE (se houver) e aplica as
// variáveis de ambiente por cima
func Load() (Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom é o Load com uma fonte de variáveis arbitrária
func LoadFrom(getenv func(string) string) (Config, error) {
	cfg := Defaults()

	if path := strings.TrimSpace(getenv("RELAY_CONFIG_FILE")); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.mergeEnv(getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(content, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) mergeEnv(getenv func(string) string) error {
	env := func(keys ...string) string {
		for _, k := range keys {
			if v := strings.TrimSpace(getenv(k)); v != "" {
				return v
			}
		}
		return ""
	}

	if v := env("GEMINI_API_KEY", "GOOGLE_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := env("GEMINI_API_KEY_PARAMETER"); v != "" {
		c.APIKeyParameter = v
	}
	if v := env("GEMINI_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := env("RELAY_ADDR"); v != "" {
		c.Addr = v
	}
	if v := env("RELAY_PROVIDER"); v != "" {
		c.Provider = strings.ToLower(v)
	}
	if v := env("RELAY_DEFAULT_MODEL"); v != "" {
		c.DefaultModel = v
	}
	if v := env("RELAY_ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = splitList(v)
	}
	if v := env("RELAY_LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := env("RELAY_GENERATE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: RELAY_GENERATE_TIMEOUT: %w", err)
		}
		c.GenerateTimeout = d
	}
	if v := env("RELAY_METRICS_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: RELAY_METRICS_ENABLED: %w", err)
		}
		c.MetricsEnabled = b
	}
	if v := env("RELAY_MCP_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: RELAY_MCP_ENABLED: %w", err)
		}
		c.MCPEnabled = b
	}
	return nil
}

// Validate falha quando não há credencial ou algum valor é inválido. Não existe
// chave padrão: sem GEMINI_API_KEY nem GEMINI_API_KEY_PARAMETER o processo não sobe.
func (c Config) Validate() error {
	if c.APIKey == "" && c.APIKeyParameter == "" {
		return errors.New("config: GEMINI_API_KEY or GEMINI_API_KEY_PARAMETER must be set")
	}
	if strings.TrimSpace(c.Addr) == "" {
		return errors.New("config: addr must not be empty")
	}
	if strings.TrimSpace(c.DefaultModel) == "" {
		return errors.New("config: default model must not be empty")
	}
	switch c.Provider {
	case "genai", "adk":
	default:
		return fmt.Errorf("config: unknown provider %q", c.Provider)
	}
	if c.GenerateTimeout < 0 {
		return errors.New("config: generate timeout must not be negative")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// WithResolvedAPIKey devolve uma cópia com a chave buscada no ParamGetter
// quando ela não veio do ambiente
func (c Config) WithResolvedAPIKey(ctx context.Context, getter ParamGetter) (Config, error) {
	if c.APIKey != "" {
		return c, nil
	}
	if c.APIKeyParameter == "" {
		return Config{}, errors.New("config: no api key parameter to resolve")
	}
	if getter == nil {
		return Config{}, errors.New("config: param getter must not be nil")
	}
	key, err := getter.GetParameter(ctx, c.APIKeyParameter)
	if err != nil {
		return Config{}, fmt.Errorf("config: resolve api key: %w", err)
	}
	c.APIKey = key
	return c, nil
}

// AllowsAllOrigins indica se a lista de origens é o curinga "*"
func (c Config) AllowsAllOrigins() bool {
	for _, o := range c.AllowedOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}

// SlogLevel converte LogLevel para slog.Level
func (c Config) SlogLevel() slog.Level {
	lvl, _ := parseLevel(c.LogLevel)
	return lvl
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("config: unknown log level %q", s)
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
