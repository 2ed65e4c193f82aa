package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/neutroai/neutro/internal/draft"
	"github.com/neutroai/neutro/internal/hooks"
	"github.com/neutroai/neutro/internal/logging"
	"github.com/neutroai/neutro/internal/snippet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withHome points NEUTRO_HOME at a fresh directory for the test.
func withHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("NEUTRO_HOME", home)
	return home
}

// runCLI executes the root command with silent logging.
func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--log-level", "silent"}, args...))

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestVersionCmd(t *testing.T) {
	withHome(t)
	out, _, err := runCLI(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "neutro "))
}

func TestAgentCreate_Success(t *testing.T) {
	withHome(t)
	out, _, err := runCLI(t, "", "agent", "create", "--name", "Max", "--description", "I sort tickets.")
	require.NoError(t, err)
	assert.Contains(t, out, "Agent Created Successfully!")
	assert.Contains(t, out, "Max is ready for testing.")
	assert.Contains(t, out, "Name:        Max")
	assert.Contains(t, out, "Model:       gpt-4o")
	assert.Contains(t, out, "Features:    Memory, Rate Limit")
	assert.Contains(t, out, snippet.DefaultBaseURL+"/agents/agent_")
}

func TestAgentCreate_MissingFields(t *testing.T) {
	withHome(t)
	out, stderr, err := runCLI(t, "", "agent", "create", "--name", "Max")
	require.Error(t, err)

	var verr *draft.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []draft.Field{draft.FieldDescription}, verr.Missing)
	assert.Contains(t, stderr, "Missing Information")
	assert.Empty(t, out)
}

func TestAgentCreate_SetFields(t *testing.T) {
	withHome(t)
	out, _, err := runCLI(t, "", "agent", "create",
		"--name", "Max", "--description", "d",
		"--set", "temperature=3.7",
		"--set", "maxResponseTokens=100",
		"--set", "webSearchEnabled=true",
		"--set", "model=claude-3-sonnet",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Temperature: 2.0")
	assert.Contains(t, out, "Max tokens:  256")
	assert.Contains(t, out, "Features:    Memory, Web Search, Rate Limit")
	assert.Contains(t, out, "Model:       claude-3-sonnet")
}

func TestAgentCreate_BadField(t *testing.T) {
	withHome(t)
	_, _, err := runCLI(t, "", "agent", "create", "--set", "nickname=Maxi")
	var ferr *draft.FieldError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, draft.Field("nickname"), ferr.Field)

	_, _, err = runCLI(t, "", "agent", "create", "--set", "temperature")
	assert.ErrorContains(t, err, "expected field=value")
}

func TestAgentFields(t *testing.T) {
	withHome(t)
	out, _, err := runCLI(t, "", "agent", "fields")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, len(draft.Fields))
	assert.Equal(t, "name", lines[0])
}

func TestParseSet(t *testing.T) {
	tests := []struct {
		in        string
		wantField string
		wantValue string
		wantErr   bool
	}{
		{"name=Max", "name", "Max", false},
		{"description=a=b", "description", "a=b", false},
		{" languages =en,es", "languages", "en,es", false},
		{"name=", "name", "", false},
		{"name", "", "", true},
		{"=Max", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			u, err := parseSet(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantField, u.Field)
			assert.Equal(t, tt.wantValue, u.Value)
		})
	}
}

func TestChat_Args(t *testing.T) {
	withHome(t)
	out, _, err := runCLI(t, "", "chat", "--name", "Max", "--description", "I sort tickets.", "hi", "there")
	require.NoError(t, err)
	assert.Contains(t, out, "Max:")
	assert.Contains(t, out, "Hello! I'm Max. I sort tickets. How can I help you today?")
	assert.NotContains(t, out, "You:")
}

func TestChat_Stdin(t *testing.T) {
	withHome(t)
	out, _, err := runCLI(t, "first\n   \nsecond\n", "chat", "--name", "Max", "--description", "d")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "Hello! I'm Max. d How can I help you today?"))
	assert.Contains(t, out, "2 conversation(s), ~200 tokens")
}

func TestChat_UnnamedAgent(t *testing.T) {
	withHome(t)
	out, _, err := runCLI(t, "", "chat", "hello")
	require.NoError(t, err)
	assert.Contains(t, out, "Agent:")
	assert.Contains(t, out, "Hello! I'm .  How can I help you today?")
}

func TestSnippetCmd(t *testing.T) {
	withHome(t)
	out, stderr, err := runCLI(t, "", "snippet")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, `curl -X POST "`+snippet.DefaultBaseURL+"/agents/agent_"))
	assert.Contains(t, stderr, "Agent ID:")
	assert.Contains(t, stderr, "Copied!")

	out, stderr, err = runCLI(t, "", "snippet", "-q", "--base-url", "https://sandbox.example/v2/")
	require.NoError(t, err)
	assert.Contains(t, out, `"https://sandbox.example/v2/agents/agent_`)
	assert.Empty(t, stderr)
}

func TestLibraryList(t *testing.T) {
	withHome(t)
	out, _, err := runCLI(t, "", "library", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "CX Orchestrator")
	assert.Contains(t, out, "Sales Qualifier")
	assert.Contains(t, out, "routing,handoff")

	out, _, err = runCLI(t, "", "library", "list", "--role", "Ops")
	require.NoError(t, err)
	assert.Contains(t, out, "Research Synthesizer")
	assert.NotContains(t, out, "CX Orchestrator")

	out, _, err = runCLI(t, "", "library", "list", "-q", "zzz")
	require.NoError(t, err)
	assert.Contains(t, out, "No agents match.")
}

func TestLibraryRoles(t *testing.T) {
	withHome(t)
	out, _, err := runCLI(t, "", "library", "roles")
	require.NoError(t, err)
	assert.Equal(t, "Ops\nSales\nSupport\n", out)
}

func TestConfigRoundTrip(t *testing.T) {
	home := withHome(t)

	out, _, err := runCLI(t, "", "config", "path")
	require.NoError(t, err)
	assert.Equal(t, home+"/config.yaml\n", out)

	_, _, err = runCLI(t, "", "config", "get", "draft.model")
	assert.ErrorContains(t, err, "not found")

	out, _, err = runCLI(t, "", "config", "set", "draft.model", "claude-3-sonnet")
	require.NoError(t, err)
	assert.Equal(t, "Set draft.model = claude-3-sonnet\n", out)

	out, _, err = runCLI(t, "", "config", "get", "draft.model")
	require.NoError(t, err)
	assert.Equal(t, "claude-3-sonnet\n", out)

	// The configured default reaches new drafts.
	out, _, err = runCLI(t, "", "agent", "create", "--name", "Max", "--description", "d")
	require.NoError(t, err)
	assert.Contains(t, out, "Model:       claude-3-sonnet")

	out, _, err = runCLI(t, "", "config", "get", "draft")
	require.NoError(t, err)
	assert.Equal(t, "model: claude-3-sonnet\n", out)

	_, _, err = runCLI(t, "", "config", "unset", "draft.model")
	require.NoError(t, err)
	_, _, err = runCLI(t, "", "config", "unset", "draft.model")
	assert.ErrorContains(t, err, "not found")
}

func TestConfigSetRejectsInvalid(t *testing.T) {
	home := withHome(t)

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"draft.model", "gpt-9"}, "draft.model"},
		{[]string{"gateway.port", "high"}, "invalid value"},
		{[]string{"gateway.bind", "everywhere"}, "gateway.bind"},
		{[]string{"gateway.nope", "1"}, "unknown config key"},
		{[]string{"draft.model.name", "x"}, "is a value"},
	}
	for _, tt := range tests {
		_, _, err := runCLI(t, "", append([]string{"config", "set"}, tt.args...)...)
		assert.ErrorContains(t, err, tt.want, "set %v", tt.args)
	}
	assert.NoFileExists(t, filepath.Join(home, "config.yaml"))
}

func TestConfigInvalidFileReported(t *testing.T) {
	home := withHome(t)
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte("draft:\n  model: gpt-9\n"), 0o600))

	_, _, err := runCLI(t, "", "agent", "create")
	assert.ErrorContains(t, err, "config validation failed")

	out, _, err := runCLI(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Validation issues (1):")
	assert.Contains(t, out, "draft.model")
}

func TestStatusCmd(t *testing.T) {
	withHome(t)
	out, _, err := runCLI(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Gateway: port=18790 bind=loopback")
	assert.Contains(t, out, "Library: :memory:")
	assert.Contains(t, out, "Draft:   model=gpt-4o temperature=0.7 maxTokens=2048")
	assert.NotContains(t, out, "Validation issues")
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, true, parseValue("true"))
	assert.Equal(t, false, parseValue("FALSE"))
	assert.Equal(t, 42, parseValue("42"))
	assert.Equal(t, 0.5, parseValue("0.5"))
	assert.Equal(t, "gpt-4o", parseValue("gpt-4o"))
	assert.Equal(t, "1e", parseValue("1e"))
}

func TestLogActivity(t *testing.T) {
	prev := log
	t.Cleanup(func() { log = prev })

	var buf bytes.Buffer
	log = logging.New(&buf, "debug")
	hookMgr := hooks.NewManager(log)
	logActivity(hookMgr)

	hookMgr.Emit(context.Background(), hooks.EventAgentCreated, map[string]any{"workspace": "ws-1"})
	out := buf.String()
	assert.Contains(t, out, `"event":"agent_created"`)
	assert.Contains(t, out, `"subsystem":"activity"`)
	assert.Contains(t, out, "ws-1")
}
