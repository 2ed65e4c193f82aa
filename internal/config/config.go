package config

import (
	"fmt"

	"github.com/neutroai/neutro/internal/domain"
	"github.com/neutroai/neutro/internal/draft"
	"github.com/neutroai/neutro/internal/snippet"
)

const (
	DefaultPort         = 18790
	DefaultPublicOrigin = "http://localhost:18790"
	MemoryLibrary       = ":memory:"
)

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Gateway: GatewayConfig{
			Port:         DefaultPort,
			Bind:         "loopback",
			PublicOrigin: DefaultPublicOrigin,
		},
		Logging: LoggingConfig{
			Level:        "info",
			ConsoleStyle: "pretty",
		},
		Library: LibraryConfig{
			Path: MemoryLibrary,
		},
		Snippet: SnippetConfig{
			BaseURL: snippet.DefaultBaseURL,
		},
		Draft: DraftConfig{
			Model: string(domain.DefaultModel),
		},
	}
}

// DraftDefaults converts the draft section for draft.NewStore.
// Call Validate first; an unknown model falls back to the built-in default.
func (c Config) DraftDefaults() draft.Defaults {
	def := draft.Defaults{
		Temperature:       c.Draft.Temperature,
		MaxResponseTokens: c.Draft.MaxResponseTokens,
	}
	if m, err := domain.ParseModel(c.Draft.Model); err == nil {
		def.Model = m
	}
	return def
}
