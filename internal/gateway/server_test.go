package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/neutroai/neutro/internal/config"
	"github.com/neutroai/neutro/internal/library"
	"github.com/neutroai/neutro/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T, opts ...ServerOption) (*Server, *httptest.Server) {
	t.Helper()
	cfg := config.Defaults()
	cfg.Gateway.PublicOrigin = "https://studio.neutro.ai"

	log := logging.New(nil, "silent")
	db, err := library.Open(":memory:", log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	srv := New(cfg, log, append([]ServerOption{WithLibrary(db)}, opts...)...)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func wsURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

// testConn is a client connection that has completed the handshake.
type testConn struct {
	t     *testing.T
	conn  *websocket.Conn
	hello HelloOK
	next  int
}

func connect(t *testing.T, ts *httptest.Server) *testConn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// Read challenge
	var challenge Frame
	require.NoError(t, conn.ReadJSON(&challenge))
	require.Equal(t, EventConnectChallenge, challenge.Event)

	connectReq, err := NewRequest("connect-1", "connect", ConnectParams{
		MinProtocol: 1,
		MaxProtocol: 1,
		Client: ClientInfo{
			ID:       "test-client",
			Version:  "1.0.0",
			Platform: "linux",
			Mode:     "ui",
		},
	})
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(connectReq))

	var helloResp Frame
	require.NoError(t, conn.ReadJSON(&helloResp))
	require.NotNil(t, helloResp.OK)
	require.True(t, *helloResp.OK, "handshake should succeed")

	tc := &testConn{t: t, conn: conn}
	require.NoError(t, json.Unmarshal(helloResp.Payload, &tc.hello))
	return tc
}

// call sends a request and returns its response plus any events pushed
// before it.
func (c *testConn) call(method string, params any) (Frame, []Frame) {
	c.t.Helper()
	c.next++
	id := fmt.Sprintf("req-%d", c.next)
	req, err := NewRequest(id, method, params)
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteJSON(req))

	var events []Frame
	for {
		var f Frame
		require.NoError(c.t, c.conn.ReadJSON(&f))
		if f.Type == FrameTypeEvent {
			events = append(events, f)
			continue
		}
		require.Equal(c.t, id, f.ID)
		return f, events
	}
}

// ok calls method, requires success and decodes the payload into out.
func (c *testConn) ok(method string, params, out any) []Frame {
	c.t.Helper()
	res, events := c.call(method, params)
	require.NotNil(c.t, res.OK)
	require.True(c.t, *res.OK, "%s failed: %+v", method, res.Error)
	if out != nil {
		require.NoError(c.t, json.Unmarshal(res.Payload, out))
	}
	return events
}

// fail calls method and requires an error response.
func (c *testConn) fail(method string, params any) (*ErrorShape, []Frame) {
	c.t.Helper()
	res, events := c.call(method, params)
	require.NotNil(c.t, res.OK)
	require.False(c.t, *res.OK)
	require.NotNil(c.t, res.Error)
	return res.Error, events
}

// --- HTTP ---

func TestHealthEndpoint(t *testing.T) {
	_, ts := testServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	var health HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health.Status)
	// Public endpoint only returns status
	assert.Empty(t, health.Version)
}

func TestNotFoundEndpoint(t *testing.T) {
	_, ts := testServer(t)

	resp, err := http.Get(ts.URL + "/nonexistent")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPageMetaEndpoint(t *testing.T) {
	_, ts := testServer(t)

	resp, err := http.Get(ts.URL + "/api/page/dashboard")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var meta map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&meta))
	assert.Equal(t, "AI Agent Orchestration Dashboard", meta["title"])
	assert.Equal(t, "https://studio.neutro.ai/dashboard", meta["canonical"])

	resp2, err := http.Get(ts.URL + "/api/page/signin")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}

// --- Handshake ---

func TestWebSocketHandshakeSuccess(t *testing.T) {
	srv, ts := testServer(t)
	c := connect(t, ts)

	assert.Equal(t, ProtocolVersion, c.hello.Protocol)
	assert.NotEmpty(t, c.hello.Server.ConnID)
	assert.NotEmpty(t, c.hello.Workspace.ID)
	assert.True(t, strings.HasPrefix(c.hello.Workspace.DisplayID, "agent_"))
	assert.Contains(t, c.hello.Features.Methods, "draft.create")
	assert.IsNonDecreasing(t, c.hello.Features.Methods)
	assert.Equal(t, []string{EventConnectChallenge, EventNotify, EventShutdown}, c.hello.Features.Events)
	assert.Greater(t, c.hello.Policy.MaxPayload, 0)

	_, ok := srv.Workspaces().Get(c.hello.Workspace.ID)
	assert.True(t, ok)
}

func TestWebSocketHandshakeWrongFirstFrame(t *testing.T) {
	_, ts := testServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
	require.NoError(t, err)
	defer conn.Close()

	var challenge Frame
	require.NoError(t, conn.ReadJSON(&challenge))

	req, _ := NewRequest("req-1", "health", nil)
	require.NoError(t, conn.WriteJSON(req))

	var errResp Frame
	require.NoError(t, conn.ReadJSON(&errResp))
	require.NotNil(t, errResp.Error)
	assert.Equal(t, CodeProtocolError, errResp.Error.Code)
}

func TestWebSocketHandshakeProtocolMismatch(t *testing.T) {
	srv, ts := testServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
	require.NoError(t, err)
	defer conn.Close()

	var challenge Frame
	require.NoError(t, conn.ReadJSON(&challenge))

	req, _ := NewRequest("req-1", "connect", ConnectParams{MinProtocol: 2, MaxProtocol: 3})
	require.NoError(t, conn.WriteJSON(req))

	var errResp Frame
	require.NoError(t, conn.ReadJSON(&errResp))
	require.NotNil(t, errResp.Error)
	assert.Equal(t, CodeProtocolError, errResp.Error.Code)
	assert.Equal(t, 0, srv.Workspaces().Count())
}

func TestWebSocketDisconnectClosesWorkspace(t *testing.T) {
	srv, ts := testServer(t)
	c := connect(t, ts)
	require.Equal(t, 1, srv.Workspaces().Count())

	c.conn.Close()
	assert.Eventually(t, func() bool {
		return srv.Workspaces().Count() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

// --- RPC ---

func TestWebSocketRPCHealth(t *testing.T) {
	_, ts := testServer(t)
	c := connect(t, ts)

	var health HealthResponse
	c.ok("health", nil, &health)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, 1, health.Clients)
	assert.Equal(t, 1, health.Workspaces)
}

func TestWebSocketRPCUnknownMethod(t *testing.T) {
	_, ts := testServer(t)
	c := connect(t, ts)

	e, _ := c.fail("nonexistent.method", nil)
	assert.Equal(t, CodeMethodNotFound, e.Code)
}

func TestRPC_CreateAndChatScenario(t *testing.T) {
	_, ts := testServer(t)
	c := connect(t, ts)

	var d map[string]any
	c.ok("draft.update", map[string]any{
		"updates": []map[string]any{
			{"field": "name", "value": "Max"},
			{"field": "description", "value": "I sort tickets."},
		},
	}, &d)
	assert.Equal(t, "Max", d["name"])

	var created struct {
		Notification struct {
			Kind, Title, Description string
		} `json:"notification"`
		Draft map[string]any `json:"draft"`
	}
	events := c.ok("draft.create", nil, &created)
	assert.Equal(t, "Agent Created Successfully!", created.Notification.Title)
	assert.Equal(t, "Max is ready for testing.", created.Notification.Description)
	assert.Equal(t, true, created.Draft["created"])
	require.Len(t, events, 1)
	assert.Equal(t, EventNotify, events[0].Event)

	var sent transcriptResult
	c.ok("console.send", sendParams{Text: "hi"}, &sent)
	require.NotNil(t, sent.Sent)
	assert.True(t, *sent.Sent)
	require.Len(t, sent.Transcript, 2)
	assert.Equal(t, "hi", sent.Transcript[0].Content)
	assert.Equal(t, "Hello! I'm Max. I sort tickets. How can I help you today?", sent.Transcript[1].Content)
	assert.Equal(t, 1, sent.Conversations)

	var stats map[string]int
	c.ok("workspace.stats", nil, &stats)
	assert.Equal(t, 1, stats["activeAgents"])
	assert.Equal(t, 1, stats["conversations"])
	assert.Equal(t, 1247, stats["apiCallsToday"])
}

func TestRPC_CreateValidationError(t *testing.T) {
	_, ts := testServer(t)
	c := connect(t, ts)

	c.ok("draft.update", map[string]any{"field": "name", "value": "Max"}, nil)

	e, events := c.fail("draft.create", nil)
	assert.Equal(t, CodeValidationError, e.Code)
	assert.Equal(t, map[string]any{"missing": []any{"description"}}, e.Details)

	require.Len(t, events, 1)
	var n map[string]string
	require.NoError(t, json.Unmarshal(events[0].Payload, &n))
	assert.Equal(t, "Missing Information", n["title"])
	assert.Equal(t, "validation_error", n["kind"])

	var v map[string]any
	c.ok("draft.validate", nil, &v)
	assert.Equal(t, false, v["ok"])
}

func TestRPC_DraftUpdateErrors(t *testing.T) {
	_, ts := testServer(t)
	c := connect(t, ts)

	e, _ := c.fail("draft.update", map[string]any{"field": "model", "value": "gpt-9"})
	assert.Equal(t, CodeInvalidParams, e.Code)
	assert.Equal(t, map[string]any{"field": "model"}, e.Details)

	e, _ = c.fail("draft.update", map[string]any{"field": "nickname", "value": "M"})
	assert.Equal(t, CodeInvalidParams, e.Code)

	e, _ = c.fail("draft.update", map[string]any{})
	assert.Equal(t, CodeInvalidParams, e.Code)

	var d map[string]any
	c.ok("draft.get", nil, &d)
	assert.Equal(t, "gpt-4o", d["model"])
}

func TestRPC_DraftUpdateClamps(t *testing.T) {
	_, ts := testServer(t)
	c := connect(t, ts)

	var d map[string]any
	c.ok("draft.update", map[string]any{"field": "temperature", "value": 3.7}, &d)
	assert.Equal(t, 2.0, d["temperature"])

	var in map[string]any
	c.ok("workspace.inspector", nil, &in)
	assert.Equal(t, 2.0, in["temperature"])
	assert.Equal(t, []any{"Memory", "Rate Limit"}, in["features"])
}

func TestRPC_ConsoleBlankAndReset(t *testing.T) {
	_, ts := testServer(t)
	c := connect(t, ts)

	var res transcriptResult
	c.ok("console.send", sendParams{Text: "   "}, &res)
	require.NotNil(t, res.Sent)
	assert.False(t, *res.Sent)
	assert.Empty(t, res.Transcript)

	c.ok("console.send", sendParams{Text: "one"}, nil)
	c.ok("console.send", sendParams{Text: "two"}, nil)
	c.ok("console.transcript", nil, &res)
	assert.Len(t, res.Transcript, 4)
	assert.Equal(t, 2, res.Conversations)

	c.ok("console.reset", nil, &res)
	assert.NotNil(t, res.Transcript)
	assert.Empty(t, res.Transcript)
	assert.Equal(t, 0, res.Conversations)
}

func TestRPC_LibraryListAndSelect(t *testing.T) {
	_, ts := testServer(t)
	c := connect(t, ts)

	var list struct {
		Agents []struct {
			ID   string   `json:"id"`
			Tags []string `json:"tags"`
		} `json:"agents"`
		Selected string `json:"selected"`
	}
	c.ok("library.list", nil, &list)
	assert.Len(t, list.Agents, 3)
	assert.Empty(t, list.Selected)

	c.ok("library.list", library.Filter{Role: "Sales"}, &list)
	require.Len(t, list.Agents, 1)
	assert.Equal(t, "a-2", list.Agents[0].ID)

	c.ok("library.list", library.Filter{Query: "nothing"}, &list)
	assert.NotNil(t, list.Agents)
	assert.Empty(t, list.Agents)

	var sel struct {
		Draft map[string]any `json:"draft"`
	}
	c.ok("library.select", librarySelectParams{ID: "a-3"}, &sel)
	assert.Equal(t, "Research Synthesizer", sel.Draft["name"])
	assert.Equal(t, "Ops agent for web, papers", sel.Draft["description"])

	c.ok("library.list", nil, &list)
	assert.Equal(t, "a-3", list.Selected)

	e, _ := c.fail("library.select", librarySelectParams{ID: "a-404"})
	assert.Equal(t, CodeNotFound, e.Code)

	e, _ = c.fail("library.select", librarySelectParams{})
	assert.Equal(t, CodeInvalidParams, e.Code)
}

func TestRPC_LibraryUnavailable(t *testing.T) {
	cfg := config.Defaults()
	srv := New(cfg, logging.New(nil, "silent"))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	c := connect(t, ts)
	e, _ := c.fail("library.list", nil)
	assert.Equal(t, CodeUnavailable, e.Code)
}

func TestRPC_Snippet(t *testing.T) {
	_, ts := testServer(t)
	c := connect(t, ts)

	var s struct {
		DisplayID string `json:"displayId"`
		Endpoint  string `json:"endpoint"`
		Curl      string `json:"curl"`
	}
	c.ok("snippet.get", nil, &s)
	assert.Equal(t, c.hello.Workspace.DisplayID, s.DisplayID)
	assert.Contains(t, s.Curl, s.Endpoint)

	var copied snippetCopyResult
	events := c.ok("snippet.copy", nil, &copied)
	assert.Equal(t, s.Curl, copied.Text)
	assert.Equal(t, "Copied!", copied.Notification.Title)
	require.Len(t, events, 1)
	assert.Equal(t, EventNotify, events[0].Event)

	var regenerated struct {
		DisplayID string `json:"displayId"`
	}
	c.ok("snippet.regenerate", nil, &regenerated)
	assert.True(t, strings.HasPrefix(regenerated.DisplayID, "agent_"))
}

func TestRPC_PageMeta(t *testing.T) {
	_, ts := testServer(t)
	c := connect(t, ts)

	var meta map[string]string
	c.ok("page.meta", nil, &meta)
	assert.Equal(t, "https://studio.neutro.ai/dashboard", meta["canonical"])

	e, _ := c.fail("page.meta", pageMetaParams{View: "pricing"})
	assert.Equal(t, CodeNotFound, e.Code)
}

func TestRPC_ConnectionsHaveSeparateWorkspaces(t *testing.T) {
	_, ts := testServer(t)
	a := connect(t, ts)
	b := connect(t, ts)
	assert.NotEqual(t, a.hello.Workspace.ID, b.hello.Workspace.ID)

	a.ok("console.send", sendParams{Text: "hello"}, nil)

	var res transcriptResult
	b.ok("console.transcript", nil, &res)
	assert.Empty(t, res.Transcript)
}

// --- Server lifecycle ---

func TestServerStart(t *testing.T) {
	cfg := config.Defaults()
	cfg.Gateway.Port = 0 // let OS pick a port

	log := logging.New(nil, "silent")
	srv := New(cfg, log)

	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	// Give it a moment to start
	time.Sleep(100 * time.Millisecond)

	// Stop it
	cancel()

	err := <-errCh
	assert.NoError(t, err)
}

func TestClientRegistryBroadcast(t *testing.T) {
	srv, ts := testServer(t)
	a := connect(t, ts)
	b := connect(t, ts)

	// Both clients are registered once each answered a request.
	a.ok("health", nil, nil)
	b.ok("health", nil, nil)

	assert.Equal(t, 2, srv.clients.Broadcast(EventShutdown, map[string]any{"reason": "gateway stopping"}, 7))

	for _, c := range []*testConn{a, b} {
		var f Frame
		require.NoError(t, c.conn.ReadJSON(&f))
		assert.Equal(t, FrameTypeEvent, f.Type)
		assert.Equal(t, EventShutdown, f.Event)
		assert.Equal(t, int64(7), f.Seq)
	}
}

func TestCheckWebSocketOrigin(t *testing.T) {
	req := func(origin string) *http.Request {
		r := httptest.NewRequest("GET", "/ws", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}

	assert.True(t, checkWebSocketOrigin(nil)(req("")))
	assert.False(t, checkWebSocketOrigin(nil)(req("http://localhost:5173")))
	assert.True(t, checkWebSocketOrigin([]string{"*"})(req("http://localhost:5173")))
	assert.True(t, checkWebSocketOrigin([]string{"https://studio.neutro.ai"})(req("https://studio.neutro.ai")))
	assert.False(t, checkWebSocketOrigin([]string{"https://studio.neutro.ai"})(req("https://elsewhere.example")))
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, CodeNotFound, errorCode(fmt.Errorf("wrap: %w", library.ErrNotFound)))
	assert.Equal(t, CodeInternal, errorCode(fmt.Errorf("disk on fire")))
}
