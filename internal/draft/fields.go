package draft

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/neutroai/neutro/internal/domain"
)

// Field names a settable draft attribute. Names match the JSON keys.
type Field string

const (
	FieldName              Field = "name"
	FieldDescription       Field = "description"
	FieldCategory          Field = "category"
	FieldSystemPrompt      Field = "systemPrompt"
	FieldKnowledgeText     Field = "knowledgeText"
	FieldModel             Field = "model"
	FieldTemperature       Field = "temperature"
	FieldMaxResponseTokens Field = "maxResponseTokens"
	FieldMemoryEnabled     Field = "memoryEnabled"
	FieldWebSearchEnabled  Field = "webSearchEnabled"
	FieldRateLimitEnabled  Field = "rateLimitEnabled"
	FieldAvatarURL         Field = "avatarUrl"
	FieldSecurityMode      Field = "securityMode"
	FieldLanguages         Field = "languages"
	FieldTimezone          Field = "timezone"
	FieldWebhookURL        Field = "webhookUrl"
)

// Fields lists every settable field.
var Fields = []Field{
	FieldName, FieldDescription, FieldCategory, FieldSystemPrompt,
	FieldKnowledgeText, FieldModel, FieldTemperature, FieldMaxResponseTokens,
	FieldMemoryEnabled, FieldWebSearchEnabled, FieldRateLimitEnabled,
	FieldAvatarURL, FieldSecurityMode, FieldLanguages, FieldTimezone,
	FieldWebhookURL,
}

// ParseField validates a field name.
func ParseField(s string) (Field, error) {
	f := Field(s)
	if !slices.Contains(Fields, f) {
		return "", &FieldError{Field: f, Err: ErrUnknownField}
	}
	return f, nil
}

var (
	errWantString = errors.New("expected a string")
	errWantBool   = errors.New("expected a boolean")
	errWantNumber = errors.New("expected a number")
	errWantList   = errors.New("expected a list of strings")
)

// UpdateField overwrites one field. Temperature and max response tokens are
// clamped to their range and snapped to their step instead of failing.
// On error the draft is unchanged.
func (s *Store) UpdateField(f Field, value any) error {
	if err := s.update(f, value); err != nil {
		return &FieldError{Field: f, Err: err}
	}
	return nil
}

func (s *Store) update(f Field, value any) error {
	switch f {
	case FieldName, FieldDescription, FieldSystemPrompt, FieldKnowledgeText, FieldAvatarURL, FieldWebhookURL:
		v, ok := value.(string)
		if !ok {
			return errWantString
		}
		*s.stringField(f) = v

	case FieldCategory:
		v, ok := value.(string)
		if !ok {
			return errWantString
		}
		c, err := domain.ParseCategory(v)
		if err != nil {
			return err
		}
		s.d.Category = c

	case FieldModel:
		v, ok := value.(string)
		if !ok {
			return errWantString
		}
		m, err := domain.ParseModel(v)
		if err != nil {
			return err
		}
		s.d.Model = m

	case FieldSecurityMode:
		v, ok := value.(string)
		if !ok {
			return errWantString
		}
		m, err := domain.ParseSecurityMode(v)
		if err != nil {
			return err
		}
		s.d.SecurityMode = m

	case FieldTimezone:
		v, ok := value.(string)
		if !ok {
			return errWantString
		}
		tz, err := domain.ParseTimezone(v)
		if err != nil {
			return err
		}
		s.d.Timezone = tz

	case FieldLanguages:
		list, err := toStrings(value)
		if err != nil {
			return err
		}
		langs, err := domain.ParseLanguages(list)
		if err != nil {
			return err
		}
		s.d.Languages = langs

	case FieldTemperature:
		v, err := toFloat(value)
		if err != nil {
			return err
		}
		s.d.Temperature = clampTemperature(v)

	case FieldMaxResponseTokens:
		v, err := toFloat(value)
		if err != nil {
			return err
		}
		s.d.MaxResponseTokens = clampMaxTokens(v)

	case FieldMemoryEnabled, FieldWebSearchEnabled, FieldRateLimitEnabled:
		v, err := toBool(value)
		if err != nil {
			return err
		}
		*s.boolField(f) = v

	default:
		return ErrUnknownField
	}
	return nil
}

func (s *Store) stringField(f Field) *string {
	switch f {
	case FieldName:
		return &s.d.Name
	case FieldDescription:
		return &s.d.Description
	case FieldSystemPrompt:
		return &s.d.SystemPrompt
	case FieldKnowledgeText:
		return &s.d.KnowledgeText
	case FieldAvatarURL:
		return &s.d.AvatarURL
	default:
		return &s.d.WebhookURL
	}
}

func (s *Store) boolField(f Field) *bool {
	switch f {
	case FieldMemoryEnabled:
		return &s.d.MemoryEnabled
	case FieldWebSearchEnabled:
		return &s.d.WebSearchEnabled
	default:
		return &s.d.RateLimitEnabled
	}
}

func clampTemperature(v float64) float64 {
	v = math.Round(v/TemperatureStep) * TemperatureStep
	v = math.Max(MinTemperature, math.Min(MaxTemperature, v))
	// Snap away float noise such as 0.30000000000000004.
	return math.Round(v*10) / 10
}

func clampMaxTokens(v float64) int {
	v = math.Max(MinMaxTokens, math.Min(MaxMaxTokens, v))
	return int(math.Round(v/MaxTokensStep)) * MaxTokensStep
}

// toFloat accepts JSON numbers, Go numerics and numeric strings (CLI input).
func toFloat(value any) (float64, error) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, errWantNumber
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, errWantNumber
		}
		f = parsed
	default:
		return 0, errWantNumber
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errWantNumber
	}
	return f, nil
}

func toBool(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, errWantBool
		}
		return b, nil
	default:
		return false, errWantBool
	}
}

// toStrings accepts []string, a decoded JSON array, or a comma-separated string.
func toStrings(value any) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, errWantList
			}
			out = append(out, s)
		}
		return out, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil, nil
		}
		parts := strings.Split(v, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil
	default:
		return nil, fmt.Errorf("%w, got %T", errWantList, value)
	}
}
