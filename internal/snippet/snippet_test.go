package snippet

import (
	"bytes"
	"errors"
	"regexp"
	"testing"

	"github.com/neutroai/neutro/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var displayIDPattern = regexp.MustCompile(`^agent_[0-9a-z]{9}$`)

func TestGenerateDisplayID_Shape(t *testing.T) {
	seen := make(map[string]bool)
	for range 200 {
		id := GenerateDisplayID()
		assert.Regexp(t, displayIDPattern, id)
		assert.True(t, IsDisplayID(id))
		seen[id] = true
	}
	assert.Greater(t, len(seen), 1, "ids should vary")
}

func TestIsDisplayID(t *testing.T) {
	assert.True(t, IsDisplayID("agent_abc123xyz"))
	assert.False(t, IsDisplayID("agent_abc"))
	assert.False(t, IsDisplayID("agent_ABC123XYZ"))
	assert.False(t, IsDisplayID("bot_abc123xyz"))
	assert.False(t, IsDisplayID("agent_abc123xyz0"))
}

func TestEndpoint(t *testing.T) {
	assert.Equal(t, "https://api.neutro.ai/v1/agents/agent_x/chat", Endpoint("", "agent_x"))
	assert.Equal(t, "http://localhost:9000/agents/agent_x/chat", Endpoint("http://localhost:9000/", "agent_x"))
}

func TestCurlCommand_Literal(t *testing.T) {
	want := "curl -X POST \"https://api.neutro.ai/v1/agents/agent_abc123xyz/chat\" \\\n" +
		"  -H \"Content-Type: application/json\" \\\n" +
		"  -H \"Authorization: Bearer YOUR_API_KEY\" \\\n" +
		"  -d '{\n" +
		"    \"message\": \"Hello, how can you help me?\",\n" +
		"    \"conversation_id\": \"optional_conversation_id\"\n" +
		"  }'"

	assert.Equal(t, want, New("", "agent_abc123xyz").Curl)
}

func TestCopy(t *testing.T) {
	s := New("", "agent_abc123xyz")
	var clipboard bytes.Buffer

	n, err := s.Copy(&clipboard)
	require.NoError(t, err)
	assert.Equal(t, s.Curl, clipboard.String())
	assert.Equal(t, domain.NotifySuccess, n.Kind)
	assert.Equal(t, "Copied!", n.Title)
	assert.Equal(t, "CURL command copied to clipboard.", n.Description)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("clipboard unavailable") }

func TestCopy_WriterError(t *testing.T) {
	_, err := New("", "agent_abc123xyz").Copy(failingWriter{})
	assert.ErrorContains(t, err, "clipboard unavailable")
}
