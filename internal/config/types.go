package config

// Config is the root configuration for neutro.
type Config struct {
	Gateway GatewayConfig `yaml:"gateway,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
	Library LibraryConfig `yaml:"library,omitempty"`
	Snippet SnippetConfig `yaml:"snippet,omitempty"`
	Draft   DraftConfig   `yaml:"draft,omitempty"`
}

// GatewayConfig controls the gateway HTTP/WebSocket server.
type GatewayConfig struct {
	Port           int              `yaml:"port,omitempty"`
	Bind           string           `yaml:"bind,omitempty"` // "auto" | "lan" | "loopback" | "custom"
	CustomBindHost string           `yaml:"customBindHost,omitempty"`
	PublicOrigin   string           `yaml:"publicOrigin,omitempty"` // used for canonical links
	ControlUI      GatewayControlUI `yaml:"controlUi,omitempty"`
}

// GatewayControlUI configures browser access to the gateway.
type GatewayControlUI struct {
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level,omitempty"`        // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	ConsoleStyle string `yaml:"consoleStyle,omitempty"` // "pretty" | "json"
}

// LibraryConfig locates the agent library catalog.
type LibraryConfig struct {
	Path string `yaml:"path,omitempty"` // ":memory:" or a file path
}

// SnippetConfig controls the sample request shown for an agent.
type SnippetConfig struct {
	BaseURL string `yaml:"baseUrl,omitempty"`
}

// DraftConfig seeds every new draft.
type DraftConfig struct {
	Model             string   `yaml:"model,omitempty"`
	Temperature       *float64 `yaml:"temperature,omitempty"`
	MaxResponseTokens int      `yaml:"maxResponseTokens,omitempty"`
}
