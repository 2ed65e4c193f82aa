package gateway

import (
	"net/http"
	"strings"
	"time"

	"github.com/neutroai/neutro/internal/domain"
	"github.com/neutroai/neutro/internal/draft"
	"github.com/neutroai/neutro/internal/library"
	"github.com/neutroai/neutro/internal/page"
	"github.com/neutroai/neutro/internal/workspace"
)

// registerHTTPRoutes sets up all HTTP routes on the server mux.
func (s *Server) registerHTTPRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/page/{view}", s.handlePageMeta)
	mux.HandleFunc("GET /ws", s.handleWebSocket)

	// Catch-all for unknown routes
	mux.HandleFunc("/", handleNotFound)
}

// registerRPCHandlers sets up all JSON-RPC method handlers.
func (s *Server) registerRPCHandlers() {
	s.Handle("health", s.rpcHealth)

	s.Handle("draft.get", s.rpcDraftGet)
	s.Handle("draft.update", s.rpcDraftUpdate)
	s.Handle("draft.validate", s.rpcDraftValidate)
	s.Handle("draft.create", s.rpcDraftCreate)

	s.Handle("console.send", s.rpcConsoleSend)
	s.Handle("console.reset", s.rpcConsoleReset)
	s.Handle("console.transcript", s.rpcConsoleTranscript)

	s.Handle("workspace.stats", s.rpcWorkspaceStats)
	s.Handle("workspace.inspector", s.rpcWorkspaceInspector)

	s.Handle("library.list", s.rpcLibraryList)
	s.Handle("library.select", s.rpcLibrarySelect)

	s.Handle("snippet.get", s.rpcSnippetGet)
	s.Handle("snippet.regenerate", s.rpcSnippetRegenerate)
	s.Handle("snippet.copy", s.rpcSnippetCopy)

	s.Handle("page.meta", s.rpcPageMeta)
}

func (s *Server) rpcHealth(rc *RequestContext) {
	var uptime int64
	if !s.startedAt.IsZero() {
		uptime = time.Since(s.startedAt).Milliseconds()
	}
	rc.Respond(HealthResponse{
		Status:     "ok",
		Version:    s.version,
		Clients:    s.clients.Count(),
		Workspaces: s.workspaces.Count(),
		UptimeMs:   uptime,
	})
}

// --- draft ---

func (s *Server) rpcDraftGet(rc *RequestContext) {
	rc.Respond(rc.Workspace().Draft())
}

// draftUpdateParams accepts a single field/value pair, an ordered list of
// updates, or both (the pair is applied last).
type draftUpdateParams struct {
	Field   string             `json:"field,omitempty"`
	Value   any                `json:"value,omitempty"`
	Updates []workspace.Update `json:"updates,omitempty"`
}

func (s *Server) rpcDraftUpdate(rc *RequestContext) {
	var p draftUpdateParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError(CodeInvalidParams, err.Error())
		return
	}
	updates := p.Updates
	if p.Field != "" {
		updates = append(updates, workspace.Update{Field: p.Field, Value: p.Value})
	}
	if len(updates) == 0 {
		rc.RespondError(CodeInvalidParams, "field or updates is required")
		return
	}

	if err := rc.Workspace().Apply(updates); err != nil {
		rc.Fail(err)
		return
	}
	rc.Respond(rc.Workspace().Draft())
}

func (s *Server) rpcDraftValidate(rc *RequestContext) {
	rc.Respond(rc.Workspace().Validate())
}

type draftCreateResult struct {
	Notification domain.Notification `json:"notification"`
	Draft        draft.AgentDraft    `json:"draft"`
}

func (s *Server) rpcDraftCreate(rc *RequestContext) {
	n, err := rc.Workspace().Create(rc.Ctx)
	rc.Notify(n)
	if err != nil {
		rc.Fail(err)
		return
	}
	rc.Respond(draftCreateResult{Notification: n, Draft: rc.Workspace().Draft()})
}

// --- console ---

type sendParams struct {
	Text string `json:"text"`
}

type transcriptResult struct {
	Sent          *bool          `json:"sent,omitempty"`
	Transcript    []domain.Entry `json:"transcript"`
	Conversations int            `json:"conversations"`
}

func transcriptOf(ws *workspace.Workspace) transcriptResult {
	t := ws.Transcript()
	if t == nil {
		t = []domain.Entry{}
	}
	return transcriptResult{Transcript: t, Conversations: ws.Stats().Conversations}
}

func (s *Server) rpcConsoleSend(rc *RequestContext) {
	var p sendParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError(CodeInvalidParams, err.Error())
		return
	}

	// Blank text is a silent no-op, not an error.
	sent := rc.Workspace().Send(rc.Ctx, p.Text)
	res := transcriptOf(rc.Workspace())
	res.Sent = &sent
	rc.Respond(res)
}

func (s *Server) rpcConsoleReset(rc *RequestContext) {
	rc.Workspace().Reset(rc.Ctx)
	rc.Respond(transcriptOf(rc.Workspace()))
}

func (s *Server) rpcConsoleTranscript(rc *RequestContext) {
	rc.Respond(transcriptOf(rc.Workspace()))
}

// --- workspace ---

func (s *Server) rpcWorkspaceStats(rc *RequestContext) {
	rc.Respond(rc.Workspace().Stats())
}

func (s *Server) rpcWorkspaceInspector(rc *RequestContext) {
	rc.Respond(rc.Workspace().Inspector())
}

// --- library ---

func (s *Server) rpcLibraryList(rc *RequestContext) {
	if s.library == nil {
		rc.RespondError(CodeUnavailable, "agent library is not configured")
		return
	}
	var f library.Filter
	if err := rc.Params(&f); err != nil {
		rc.RespondError(CodeInvalidParams, err.Error())
		return
	}

	agents, err := s.library.List(rc.Ctx, f)
	if err != nil {
		rc.Fail(err)
		return
	}
	if agents == nil {
		agents = []domain.LibraryAgent{}
	}
	rc.Respond(map[string]any{
		"agents":   agents,
		"selected": rc.Workspace().SelectedAgent(),
	})
}

type librarySelectParams struct {
	ID string `json:"id"`
}

func (s *Server) rpcLibrarySelect(rc *RequestContext) {
	if s.library == nil {
		rc.RespondError(CodeUnavailable, "agent library is not configured")
		return
	}
	var p librarySelectParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError(CodeInvalidParams, err.Error())
		return
	}
	if strings.TrimSpace(p.ID) == "" {
		rc.RespondError(CodeInvalidParams, "id is required")
		return
	}

	a, err := s.library.Get(rc.Ctx, p.ID)
	if err != nil {
		rc.Fail(err)
		return
	}
	rc.Workspace().SelectLibraryAgent(rc.Ctx, a)
	rc.Respond(map[string]any{
		"agent": a,
		"draft": rc.Workspace().Draft(),
	})
}

// --- snippet ---

func (s *Server) rpcSnippetGet(rc *RequestContext) {
	rc.Respond(rc.Workspace().Snippet())
}

func (s *Server) rpcSnippetRegenerate(rc *RequestContext) {
	rc.Respond(rc.Workspace().RegenerateSnippet())
}

type snippetCopyResult struct {
	Text         string              `json:"text"`
	Notification domain.Notification `json:"notification"`
}

// rpcSnippetCopy returns the clipboard payload; the client owns the clipboard.
func (s *Server) rpcSnippetCopy(rc *RequestContext) {
	var buf strings.Builder
	n, err := rc.Workspace().CopySnippet(rc.Ctx, &buf)
	if err != nil {
		rc.Fail(err)
		return
	}
	rc.Notify(n)
	rc.Respond(snippetCopyResult{Text: buf.String(), Notification: n})
}

// --- page ---

type pageMetaParams struct {
	View string `json:"view"`
}

func (s *Server) rpcPageMeta(rc *RequestContext) {
	var p pageMetaParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError(CodeInvalidParams, err.Error())
		return
	}
	if p.View == "" {
		p.View = page.Dashboard
	}
	meta, err := page.For(p.View, s.cfg.Gateway.PublicOrigin)
	if err != nil {
		rc.Fail(err)
		return
	}
	rc.Respond(meta)
}
