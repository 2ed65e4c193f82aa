package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &out))
	return out
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info")
	require.NotNil(t, log)

	log.Info().Msg("test message")
	assert.Equal(t, "test message", lastLine(t, &buf)["message"])
}

func TestNewDefaultWriter(t *testing.T) {
	log := New(nil, "info")
	require.NotNil(t, log)
}

func TestNewWithOptions_Pretty(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOptions(Options{Level: "info", Style: "pretty", Out: &buf})

	log.Info().Msg("pretty message")
	out := buf.String()
	assert.Contains(t, out, "pretty message")
	assert.False(t, json.Valid([]byte(strings.TrimSpace(out))), "pretty output is not JSON")
}

func TestSub(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "debug")

	log.Sub("gateway").Info().Msg("sub message")
	assert.Equal(t, "gateway", lastLine(t, &buf)["subsystem"])
}

func TestSubChain(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "debug")

	log.Sub("gateway").Sub("ws").Info().Msg("deep message")
	line := lastLine(t, &buf)
	assert.Equal(t, "gateway.ws", line["subsystem"])
	assert.Equal(t, "deep message", line["message"])
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "debug").Sub("workspace").With("workspaceId", "ws-1")

	log.Info().Msg("tagged")
	line := lastLine(t, &buf)
	assert.Equal(t, "ws-1", line["workspaceId"])
	assert.Equal(t, "workspace", line["subsystem"])
}

func TestLogLevels(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn")

	log.Debug().Msg("debug msg")
	log.Info().Msg("info msg")
	assert.Empty(t, buf.String(), "debug and info should be filtered at warn level")

	log.Warn().Msg("warn msg")
	assert.Contains(t, buf.String(), "warn msg")

	buf.Reset()
	log.Error().Msg("error msg")
	assert.Contains(t, buf.String(), "error msg")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"silent", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"unknown", zerolog.InfoLevel},
		{"DEBUG", zerolog.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.input))
		})
	}
}

func TestNopAndSilent(t *testing.T) {
	Nop().Error().Msg("discarded")

	var buf bytes.Buffer
	log := New(&buf, "silent")
	log.Info().Msg("should not appear")
	log.Error().Msg("should not appear")
	assert.Empty(t, buf.String())
}
