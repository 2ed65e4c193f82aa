package config

import (
	"fmt"
	"net/url"
	"slices"

	"github.com/neutroai/neutro/internal/domain"
	"github.com/neutroai/neutro/internal/draft"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	// Gateway validation
	if cfg.Gateway.Port < 0 || cfg.Gateway.Port > 65535 {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.port",
			Message: fmt.Sprintf("port must be 0-65535, got %d", cfg.Gateway.Port),
		})
	}

	validBinds := []string{"auto", "lan", "loopback", "custom"}
	if cfg.Gateway.Bind != "" && !slices.Contains(validBinds, cfg.Gateway.Bind) {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.bind",
			Message: fmt.Sprintf("must be one of %v, got %q", validBinds, cfg.Gateway.Bind),
		})
	}

	if cfg.Gateway.PublicOrigin != "" && !isAbsoluteURL(cfg.Gateway.PublicOrigin) {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.publicOrigin",
			Message: fmt.Sprintf("must be an absolute URL, got %q", cfg.Gateway.PublicOrigin),
		})
	}

	// Logging validation
	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}

	validConsoleStyles := []string{"pretty", "json"}
	if cfg.Logging.ConsoleStyle != "" && !slices.Contains(validConsoleStyles, cfg.Logging.ConsoleStyle) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.consoleStyle",
			Message: fmt.Sprintf("must be one of %v, got %q", validConsoleStyles, cfg.Logging.ConsoleStyle),
		})
	}

	// Snippet validation
	if cfg.Snippet.BaseURL != "" && !isAbsoluteURL(cfg.Snippet.BaseURL) {
		issues = append(issues, ValidationIssue{
			Path:    "snippet.baseUrl",
			Message: fmt.Sprintf("must be an absolute URL, got %q", cfg.Snippet.BaseURL),
		})
	}

	// Draft defaults validation
	if cfg.Draft.Model != "" {
		if _, err := domain.ParseModel(cfg.Draft.Model); err != nil {
			issues = append(issues, ValidationIssue{
				Path:    "draft.model",
				Message: fmt.Sprintf("must be one of %v, got %q", domain.Models, cfg.Draft.Model),
			})
		}
	}
	if t := cfg.Draft.Temperature; t != nil && (*t < draft.MinTemperature || *t > draft.MaxTemperature) {
		issues = append(issues, ValidationIssue{
			Path:    "draft.temperature",
			Message: fmt.Sprintf("must be %.1f-%.1f, got %g", draft.MinTemperature, draft.MaxTemperature, *t),
		})
	}
	if n := cfg.Draft.MaxResponseTokens; n != 0 && (n < draft.MinMaxTokens || n > draft.MaxMaxTokens) {
		issues = append(issues, ValidationIssue{
			Path:    "draft.maxResponseTokens",
			Message: fmt.Sprintf("must be %d-%d, got %d", draft.MinMaxTokens, draft.MaxMaxTokens, n),
		})
	}

	return issues
}

func isAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}
