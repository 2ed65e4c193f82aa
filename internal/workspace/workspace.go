// Package workspace binds one agent draft, its test console and its sample
// request together, the way a single builder session sees them.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/neutroai/neutro/internal/console"
	"github.com/neutroai/neutro/internal/domain"
	"github.com/neutroai/neutro/internal/draft"
	"github.com/neutroai/neutro/internal/hooks"
	"github.com/neutroai/neutro/internal/logging"
	"github.com/neutroai/neutro/internal/snippet"
)

// APICallsToday is the cosmetic figure shown on the stats strip.
const APICallsToday = 1247

// Feature badge labels, in display order.
const (
	BadgeMemory    = "Memory"
	BadgeWebSearch = "Web Search"
	BadgeRateLimit = "Rate Limit"
)

// Options configures new workspaces.
type Options struct {
	Draft   draft.Defaults
	BaseURL string         // snippet base URL; empty uses snippet.DefaultBaseURL
	Hooks   *hooks.Manager // optional
	Log     *logging.Logger
}

// Workspace is one builder session. It is not safe for concurrent use;
// the owner serializes calls.
type Workspace struct {
	ID        string
	CreatedAt time.Time

	draft         *draft.Store
	console       *console.Engine
	displayID     string
	baseURL       string
	selectedAgent string

	hooks *hooks.Manager
	log   *logging.Logger
}

// New returns a workspace with a default draft, an empty transcript and a
// fresh display id.
func New(opts Options) *Workspace {
	log := opts.Log
	if log == nil {
		log = logging.Nop()
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = snippet.DefaultBaseURL
	}

	id := uuid.New().String()
	d := draft.NewStore(opts.Draft)
	return &Workspace{
		ID:        id,
		CreatedAt: time.Now(),
		draft:     d,
		console:   console.New(d),
		displayID: snippet.GenerateDisplayID(),
		baseURL:   baseURL,
		hooks:     opts.Hooks,
		log:       log.Sub("workspace").With("workspace", id),
	}
}

// Draft returns a copy of the current draft.
func (w *Workspace) Draft() draft.AgentDraft { return w.draft.Draft() }

// UpdateField sets one draft field. Errors wrap *draft.FieldError.
func (w *Workspace) UpdateField(f draft.Field, value any) error {
	if err := w.draft.UpdateField(f, value); err != nil {
		w.log.Debug().Err(err).Str("field", string(f)).Msg("field update rejected")
		return err
	}
	w.log.Trace().Str("field", string(f)).Msg("field updated")
	return nil
}

// Update is one named field assignment.
type Update struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

// Apply runs updates in order and stops at the first error. Updates applied
// before the error stay applied.
func (w *Workspace) Apply(updates []Update) error {
	for _, u := range updates {
		f, err := draft.ParseField(u.Field)
		if err != nil {
			return err
		}
		if err := w.UpdateField(f, u.Value); err != nil {
			return err
		}
	}
	return nil
}

// Validate reports whether the draft can be created.
func (w *Workspace) Validate() draft.Validation { return w.draft.ValidateForCreation() }

// Create attempts to create the agent. The notification is always set;
// err is a *draft.ValidationError when required fields are missing.
func (w *Workspace) Create(ctx context.Context) (domain.Notification, error) {
	n, err := w.draft.Create()
	var verr *draft.ValidationError
	if errors.As(err, &verr) {
		w.log.Info().Strs("missing", fieldNames(verr.Missing)).Msg("agent creation rejected")
		w.emit(ctx, hooks.EventAgentCreateRejected, map[string]any{
			"missing": fieldNames(verr.Missing),
		})
		return n, err
	}
	if err != nil {
		return n, err
	}

	w.log.Info().Str("name", w.draft.Name()).Msg("agent created")
	w.emit(ctx, hooks.EventAgentCreated, map[string]any{
		"name":      w.draft.Name(),
		"displayId": w.displayID,
	})
	return n, nil
}

// SetInput replaces the console's pending input.
func (w *Workspace) SetInput(text string) { w.console.SetInput(text) }

// Input returns the console's pending input.
func (w *Workspace) Input() string { return w.console.Input() }

// Send posts text to the test console. Blank text is ignored and reported
// as false.
func (w *Workspace) Send(ctx context.Context, text string) bool {
	if !w.console.Send(text) {
		w.log.Trace().Msg("blank message ignored")
		return false
	}
	w.emit(ctx, hooks.EventMessageSent, map[string]any{
		"text":          text,
		"conversations": w.console.ConversationCount(),
	})
	return true
}

// Submit sends the pending input.
func (w *Workspace) Submit(ctx context.Context) bool { return w.Send(ctx, w.console.Input()) }

// Reset clears the test console transcript.
func (w *Workspace) Reset(ctx context.Context) {
	cleared := w.console.Len()
	w.console.Reset()
	w.emit(ctx, hooks.EventTranscriptReset, map[string]any{"cleared": cleared})
}

// Transcript returns a copy of the console transcript.
func (w *Workspace) Transcript() []domain.Entry { return w.console.Transcript() }

// Stats is the four-figure summary strip.
type Stats struct {
	ActiveAgents    int `json:"activeAgents"`
	Conversations   int `json:"conversations"`
	KnowledgeItems  int `json:"knowledgeItems"`
	APICallsToday   int `json:"apiCallsToday"`
	EstimatedTokens int `json:"estimatedTokens"`
}

// Stats summarizes the workspace.
func (w *Workspace) Stats() Stats {
	s := Stats{
		Conversations:   w.console.ConversationCount(),
		KnowledgeItems:  w.draft.KnowledgeItems(),
		APICallsToday:   APICallsToday,
		EstimatedTokens: w.console.TokenEstimate(),
	}
	if w.draft.Created() {
		s.ActiveAgents = 1
	}
	return s
}

// Inspector is the read-only parameter summary beside the console.
type Inspector struct {
	Model             domain.Model `json:"model"`
	Temperature       float64      `json:"temperature"`
	MaxResponseTokens int          `json:"maxResponseTokens"`
	Features          []string     `json:"features"`
}

// Inspector reports the current model parameters and enabled features.
func (w *Workspace) Inspector() Inspector {
	d := w.draft.Draft()
	features := []string{}
	if d.MemoryEnabled {
		features = append(features, BadgeMemory)
	}
	if d.WebSearchEnabled {
		features = append(features, BadgeWebSearch)
	}
	if d.RateLimitEnabled {
		features = append(features, BadgeRateLimit)
	}
	return Inspector{
		Model:             d.Model,
		Temperature:       d.Temperature,
		MaxResponseTokens: d.MaxResponseTokens,
		Features:          features,
	}
}

// LibraryDescription is the description a library pick writes into the draft.
func LibraryDescription(a domain.LibraryAgent) string {
	return fmt.Sprintf("%s agent for %s", a.Role, strings.Join(a.Tags, ", "))
}

// SelectLibraryAgent copies a prebuilt agent's name and a derived
// description into the draft. Nothing else changes.
func (w *Workspace) SelectLibraryAgent(ctx context.Context, a domain.LibraryAgent) {
	w.selectedAgent = a.ID
	w.draft.ApplyPreset(a.Name, LibraryDescription(a))
	w.log.Debug().Str("agent", a.ID).Msg("library agent selected")
	w.emit(ctx, hooks.EventLibrarySelected, map[string]any{"agent": a.ID})
}

// SelectedAgent returns the id of the last library pick, or "".
func (w *Workspace) SelectedAgent() string { return w.selectedAgent }

// Snippet returns the sample request for the current display id.
func (w *Workspace) Snippet() snippet.Snippet { return snippet.New(w.baseURL, w.displayID) }

// RegenerateSnippet draws a new display id. No other state changes.
func (w *Workspace) RegenerateSnippet() snippet.Snippet {
	w.displayID = snippet.GenerateDisplayID()
	return w.Snippet()
}

// CopySnippet writes the curl command to dst.
func (w *Workspace) CopySnippet(ctx context.Context, dst io.Writer) (domain.Notification, error) {
	n, err := w.Snippet().Copy(dst)
	if err != nil {
		return n, err
	}
	w.emit(ctx, hooks.EventSnippetCopied, map[string]any{"displayId": w.displayID})
	return n, nil
}

func (w *Workspace) emit(ctx context.Context, event string, data map[string]any) {
	if w.hooks == nil {
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	data["workspace"] = w.ID
	w.hooks.Emit(ctx, event, data)
}

func fieldNames(fields []draft.Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	return names
}
