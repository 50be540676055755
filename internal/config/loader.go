package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// expandSensitiveFields processes environment variable references in
// credential fields so API keys can be stored as ${ENV_VAR}.
func expandSensitiveFields(cfg *Config) {
	cfg.API.Key = expandEnvVars(cfg.API.Key)
	cfg.API.FallbackKey = expandEnvVars(cfg.API.FallbackKey)
}

// Load reads the config file, applies environment overrides, and returns
// a merged Config. Missing files produce defaults only. A .env file in the
// working directory is honored before environment overrides are read.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			normalize(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	expandSensitiveFields(&cfg)
	normalize(&cfg)
	return cfg, nil
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	var cfg Config
	applyDefaults(&cfg)
	return cfg
}

// applyDefaults fills zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "https://api.bayshorecommunication.org"
	}
	if cfg.Widget.BaseURL == "" {
		cfg.Widget.BaseURL = "https://aibotwidget.bayshorecommunication.org"
	}
	if cfg.Widget.Name == "" {
		cfg.Widget.Name = "AI Assistant"
	}
	if cfg.Widget.Color == "" {
		cfg.Widget.Color = "blue"
	}
	if cfg.Widget.Position == "" {
		cfg.Widget.Position = PositionBottomRight
	}
	if cfg.State.Store == "" {
		cfg.State.Store = "sqlite"
	}
	if cfg.Serve.Port == 0 {
		cfg.Serve.Port = 8793
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.ConsoleStyle == "" {
		cfg.Logging.ConsoleStyle = "pretty"
	}
}

// applyEnvOverrides reads CHATBOT_* environment variables and overrides
// config values. These mirror the page-global overrides host sites use.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CHATBOT_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("CHATBOT_WIDGET_URL"); v != "" {
		cfg.Widget.BaseURL = v
	}
	if v := os.Getenv("CHATBOT_SOCKET_URL"); v != "" {
		cfg.API.SocketURL = v
	}
	if v := os.Getenv("CHATBOT_API_KEY"); v != "" {
		cfg.API.Key = v
	}
	if v := os.Getenv("CHATBOT_FALLBACK_API_KEY"); v != "" {
		cfg.API.FallbackKey = v
	}
	if v := os.Getenv("CHATBOT_STATE_STORE"); v != "" {
		cfg.State.Store = strings.ToLower(v)
	}
	if v := os.Getenv("CHATBOT_SERVE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Serve.Port = port
		}
	}
	if v := os.Getenv("CHATBOT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
}

// normalize cleans every configured URL exactly once so the rest of the
// code never deals with mixed-content or trailing-slash variants.
func normalize(cfg *Config) {
	cfg.API.BaseURL = NormalizeBaseURL(cfg.API.BaseURL)
	cfg.Widget.BaseURL = NormalizeBaseURL(cfg.Widget.BaseURL)
	if cfg.API.SocketURL == "" {
		cfg.API.SocketURL = cfg.API.BaseURL
	} else {
		cfg.API.SocketURL = NormalizeBaseURL(cfg.API.SocketURL)
	}
	if !validPositions[cfg.Widget.Position] {
		cfg.Widget.Position = PositionBottomRight
	}
}
