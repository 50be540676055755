package config

// Config is the root runtime configuration for the widget client.
type Config struct {
	API     APIConfig     `yaml:"api,omitempty"`
	Widget  WidgetConfig  `yaml:"widget,omitempty"`
	State   StateConfig   `yaml:"state,omitempty"`
	Serve   ServeConfig   `yaml:"serve,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// APIConfig points the client at the chatbot backend.
type APIConfig struct {
	BaseURL     string `yaml:"baseUrl,omitempty"`     // REST origin, normalized and coerced to https
	SocketURL   string `yaml:"socketUrl,omitempty"`   // push channel origin; defaults to baseUrl
	Key         string `yaml:"key,omitempty"`         // organization API key; supports ${ENV_VAR}
	FallbackKey string `yaml:"fallbackKey,omitempty"` // secondary key tried once when the primary fails
}

// WidgetConfig carries display defaults used when the embed tag or the
// settings endpoint leaves a field unset.
type WidgetConfig struct {
	BaseURL     string `yaml:"baseUrl,omitempty"` // iframe origin the loader points host pages at
	Name        string `yaml:"name,omitempty"`
	Color       string `yaml:"color,omitempty"`
	AutoOpen    bool   `yaml:"autoOpen,omitempty"`
	LeadCapture *bool  `yaml:"leadCapture,omitempty"`
	Position    string `yaml:"position,omitempty"` // bottom-right | bottom-left | top-right | top-left
}

// StateConfig selects the persistent client-state store.
type StateConfig struct {
	Store      string `yaml:"store,omitempty"` // "sqlite" | "redis" | "memory"
	SQLitePath string `yaml:"sqlitePath,omitempty"`
	RedisAddr  string `yaml:"redisAddr,omitempty"`
	RedisDB    int    `yaml:"redisDb,omitempty"`
	Namespace  string `yaml:"namespace,omitempty"` // key prefix, useful when one store serves many widgets
}

// ServeConfig controls the embed host server.
type ServeConfig struct {
	Port           int      `yaml:"port,omitempty"`
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"` // empty means allow all; embeds are cross-origin by nature
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level,omitempty"`        // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	ConsoleStyle string `yaml:"consoleStyle,omitempty"` // "pretty" | "compact" | "json"
}

// ConfigError reports an invalid or unparseable configuration.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return e.Message }
