// Package draft holds the single in-progress agent configuration and decides
// when it is complete enough to be created.
package draft

import (
	"slices"
	"strings"

	"github.com/neutroai/neutro/internal/domain"
)

// Parameter bounds enforced by UpdateField.
const (
	MinTemperature  = 0.0
	MaxTemperature  = 2.0
	TemperatureStep = 0.1

	MinMaxTokens  = 256
	MaxMaxTokens  = 4096
	MaxTokensStep = 256
)

// AgentDraft is the agent currently being configured.
type AgentDraft struct {
	Name              string              `json:"name"`
	Description       string              `json:"description"`
	Category          domain.Category     `json:"category"`
	SystemPrompt      string              `json:"systemPrompt"`
	KnowledgeText     string              `json:"knowledgeText"`
	Model             domain.Model        `json:"model"`
	Temperature       float64             `json:"temperature"`
	MaxResponseTokens int                 `json:"maxResponseTokens"`
	MemoryEnabled     bool                `json:"memoryEnabled"`
	WebSearchEnabled  bool                `json:"webSearchEnabled"`
	RateLimitEnabled  bool                `json:"rateLimitEnabled"`
	AvatarURL         string              `json:"avatarUrl"`
	SecurityMode      domain.SecurityMode `json:"securityMode"`
	Languages         []domain.Language   `json:"languages"`
	Timezone          domain.Timezone     `json:"timezone"`
	WebhookURL        string              `json:"webhookUrl"`
	Created           bool                `json:"created"`
}

// KnowledgeItems counts the line-separated entries in the knowledge text.
func (d AgentDraft) KnowledgeItems() int {
	if d.KnowledgeText == "" {
		return 0
	}
	return strings.Count(d.KnowledgeText, "\n") + 1
}

// Defaults seeds a fresh draft. Zero fields fall back to the built-in values.
type Defaults struct {
	Model             domain.Model
	Temperature       *float64
	MaxResponseTokens int
}

// Store owns one draft for the lifetime of a workspace.
// It is not safe for concurrent use.
type Store struct {
	d AgentDraft
}

// NewStore returns a store holding a draft with default parameters.
func NewStore(def Defaults) *Store {
	d := AgentDraft{
		Model:             domain.DefaultModel,
		Temperature:       0.7,
		MaxResponseTokens: 2048,
		MemoryEnabled:     true,
		RateLimitEnabled:  true,
		SecurityMode:      domain.DefaultSecurityMode,
		Languages:         []domain.Language{domain.LanguageEnglish},
		Timezone:          domain.DefaultTimezone,
	}
	if def.Model != "" {
		d.Model = def.Model
	}
	if def.Temperature != nil {
		d.Temperature = clampTemperature(*def.Temperature)
	}
	if def.MaxResponseTokens != 0 {
		d.MaxResponseTokens = clampMaxTokens(float64(def.MaxResponseTokens))
	}
	return &Store{d: d}
}

// Draft returns a copy of the current draft.
func (s *Store) Draft() AgentDraft {
	d := s.d
	d.Languages = slices.Clone(s.d.Languages)
	return d
}

func (s *Store) Name() string        { return s.d.Name }
func (s *Store) Description() string { return s.d.Description }
func (s *Store) Created() bool       { return s.d.Created }
func (s *Store) KnowledgeItems() int { return s.d.KnowledgeItems() }

// ApplyPreset overwrites name and description, as when an agent is picked
// from the library. Every other field is left alone.
func (s *Store) ApplyPreset(name, description string) {
	s.d.Name = name
	s.d.Description = description
}

// Validation is the outcome of ValidateForCreation.
type Validation struct {
	OK      bool    `json:"ok"`
	Missing []Field `json:"missing,omitempty"`
}

// ValidateForCreation checks only name and description.
func (s *Store) ValidateForCreation() Validation {
	var missing []Field
	if strings.TrimSpace(s.d.Name) == "" {
		missing = append(missing, FieldName)
	}
	if strings.TrimSpace(s.d.Description) == "" {
		missing = append(missing, FieldDescription)
	}
	return Validation{OK: len(missing) == 0, Missing: missing}
}

// Create marks the draft created once it validates. The returned
// notification is always populated; err is a *ValidationError on failure.
func (s *Store) Create() (domain.Notification, error) {
	v := s.ValidateForCreation()
	if !v.OK {
		return domain.Notification{
			Kind:        domain.NotifyValidationError,
			Title:       "Missing Information",
			Description: "Please fill in agent name and description.",
		}, &ValidationError{Missing: v.Missing}
	}

	s.d.Created = true
	return domain.Notification{
		Kind:        domain.NotifySuccess,
		Title:       "Agent Created Successfully!",
		Description: s.d.Name + " is ready for testing.",
	}, nil
}
