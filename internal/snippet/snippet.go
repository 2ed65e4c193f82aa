// Package snippet renders the display-only agent id and the sample request
// shown next to the test console. None of it reaches a real endpoint.
package snippet

import (
	"fmt"
	"io"
	"math/rand/v2"
	"strings"

	"github.com/neutroai/neutro/internal/domain"
)

const (
	// DisplayIDPrefix starts every display id.
	DisplayIDPrefix = "agent_"
	// DisplayIDSuffixLen is the number of random characters after the prefix.
	DisplayIDSuffixLen = 9

	// DefaultBaseURL is the illustrative API root used in the snippet.
	DefaultBaseURL = "https://api.neutro.ai/v1"

	alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// GenerateDisplayID returns "agent_" followed by nine characters of [0-9a-z].
func GenerateDisplayID() string {
	var b strings.Builder
	b.Grow(len(DisplayIDPrefix) + DisplayIDSuffixLen)
	b.WriteString(DisplayIDPrefix)
	for range DisplayIDSuffixLen {
		b.WriteByte(alphabet[rand.IntN(len(alphabet))])
	}
	return b.String()
}

// IsDisplayID reports whether s has the shape GenerateDisplayID produces.
func IsDisplayID(s string) bool {
	suffix, ok := strings.CutPrefix(s, DisplayIDPrefix)
	if !ok || len(suffix) != DisplayIDSuffixLen {
		return false
	}
	for i := 0; i < len(suffix); i++ {
		if strings.IndexByte(alphabet, suffix[i]) < 0 {
			return false
		}
	}
	return true
}

// Endpoint builds the chat URL for an agent id. An empty base uses DefaultBaseURL.
func Endpoint(baseURL, id string) string {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return fmt.Sprintf("%s/agents/%s/chat", strings.TrimRight(baseURL, "/"), id)
}

// CurlCommand is the copyable request. The credential is a placeholder.
func CurlCommand(endpoint string) string {
	return `curl -X POST "` + endpoint + `" \
  -H "Content-Type: application/json" \
  -H "Authorization: Bearer YOUR_API_KEY" \
  -d '{
    "message": "Hello, how can you help me?",
    "conversation_id": "optional_conversation_id"
  }'`
}

// Snippet groups everything the "API" panel displays.
type Snippet struct {
	DisplayID string `json:"displayId"`
	Endpoint  string `json:"endpoint"`
	Curl      string `json:"curl"`
}

// New renders the snippet for a display id.
func New(baseURL, displayID string) Snippet {
	endpoint := Endpoint(baseURL, displayID)
	return Snippet{
		DisplayID: displayID,
		Endpoint:  endpoint,
		Curl:      CurlCommand(endpoint),
	}
}

// Copy writes the curl command to w, which stands in for the clipboard.
func (s Snippet) Copy(w io.Writer) (domain.Notification, error) {
	if _, err := io.WriteString(w, s.Curl); err != nil {
		return domain.Notification{}, fmt.Errorf("copying snippet: %w", err)
	}
	return domain.Notification{
		Kind:        domain.NotifySuccess,
		Title:       "Copied!",
		Description: "CURL command copied to clipboard.",
	}, nil
}
