package domain

import (
	"fmt"
	"slices"
)

// Category classifies what an agent is for. The zero value means unset.
type Category string

const (
	CategoryNone            Category = ""
	CategoryCustomerSupport Category = "customer-support"
	CategorySales           Category = "sales"
	CategoryContent         Category = "content"
	CategoryResearch        Category = "research"
	CategoryCoding          Category = "coding"
	CategoryGeneral         Category = "general"
)

// Categories lists the selectable categories in display order.
var Categories = []Category{
	CategoryCustomerSupport,
	CategorySales,
	CategoryContent,
	CategoryResearch,
	CategoryCoding,
	CategoryGeneral,
}

// ParseCategory accepts any member of Categories or the empty string.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if c == CategoryNone || slices.Contains(Categories, c) {
		return c, nil
	}
	return "", &EnumError{Kind: "category", Value: s}
}

// Model names the inference model an agent would run on.
type Model string

const (
	ModelGPT4o         Model = "gpt-4o"
	ModelGPT4Turbo     Model = "gpt-4-turbo"
	ModelGPT35Turbo    Model = "gpt-3.5-turbo"
	ModelClaude3Opus   Model = "claude-3-opus"
	ModelClaude3Sonnet Model = "claude-3-sonnet"

	DefaultModel = ModelGPT4o
)

// Models lists the selectable models in display order.
var Models = []Model{
	ModelGPT4o,
	ModelGPT4Turbo,
	ModelGPT35Turbo,
	ModelClaude3Opus,
	ModelClaude3Sonnet,
}

// ParseModel rejects anything outside Models.
func ParseModel(s string) (Model, error) {
	m := Model(s)
	if slices.Contains(Models, m) {
		return m, nil
	}
	return "", &EnumError{Kind: "model", Value: s}
}

// SecurityMode controls how strictly the agent treats user input.
type SecurityMode string

const (
	SecurityStandard   SecurityMode = "standard"
	SecurityStrict     SecurityMode = "strict"
	SecurityPermissive SecurityMode = "permissive"

	DefaultSecurityMode = SecurityStandard
)

var SecurityModes = []SecurityMode{SecurityStandard, SecurityStrict, SecurityPermissive}

func ParseSecurityMode(s string) (SecurityMode, error) {
	m := SecurityMode(s)
	if slices.Contains(SecurityModes, m) {
		return m, nil
	}
	return "", &EnumError{Kind: "security mode", Value: s}
}

// Language is a response language the agent supports.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageSpanish Language = "es"
	LanguageFrench  Language = "fr"
	LanguageGerman  Language = "de"
	LanguageMulti   Language = "multi"
)

var Languages = []Language{LanguageEnglish, LanguageSpanish, LanguageFrench, LanguageGerman, LanguageMulti}

// ParseLanguages validates every entry and drops duplicates, keeping order.
func ParseLanguages(in []string) ([]Language, error) {
	out := make([]Language, 0, len(in))
	for _, s := range in {
		l := Language(s)
		if !slices.Contains(Languages, l) {
			return nil, &EnumError{Kind: "language", Value: s}
		}
		if !slices.Contains(out, l) {
			out = append(out, l)
		}
	}
	return out, nil
}

// Timezone is the agent's reference timezone.
type Timezone string

const (
	TimezoneUTC        Timezone = "UTC"
	TimezoneNewYork    Timezone = "America/New_York"
	TimezoneLosAngeles Timezone = "America/Los_Angeles"
	TimezoneLondon     Timezone = "Europe/London"
	TimezoneTokyo      Timezone = "Asia/Tokyo"

	DefaultTimezone = TimezoneUTC
)

var Timezones = []Timezone{TimezoneUTC, TimezoneNewYork, TimezoneLosAngeles, TimezoneLondon, TimezoneTokyo}

func ParseTimezone(s string) (Timezone, error) {
	tz := Timezone(s)
	if slices.Contains(Timezones, tz) {
		return tz, nil
	}
	return "", &EnumError{Kind: "timezone", Value: s}
}

// EnumError reports a value outside a closed set.
type EnumError struct {
	Kind  string
	Value string
}

func (e *EnumError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Kind, e.Value)
}

// LibraryAgent is a prebuilt agent shown in the agent library.
type LibraryAgent struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Role      string   `json:"role"`
	Status    string   `json:"status"`
	UpdatedAt string   `json:"updatedAt"`
	Tags      []string `json:"tags,omitempty"`
}

// Online reports whether the agent is marked online.
func (a LibraryAgent) Online() bool { return a.Status == "online" }
