// Package console simulates a chat exchange against the agent being
// configured. Replies come from a fixed template; nothing is sent anywhere.
package console

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/neutroai/neutro/internal/domain"
)

// tokensPerEntry is the cosmetic per-message token estimate.
const tokensPerEntry = 50

// Persona supplies the identity the canned reply introduces.
// *draft.Store satisfies it.
type Persona interface {
	Name() string
	Description() string
}

// CannedReply renders the assistant's fixed reply.
func CannedReply(name, description string) string {
	return fmt.Sprintf("Hello! I'm %s. %s How can I help you today?", name, description)
}

// Engine owns one transcript and the pending input buffer.
// It is not safe for concurrent use.
type Engine struct {
	persona Persona
	entries []domain.Entry
	input   string
	now     func() time.Time
}

// New returns an engine with an empty transcript.
func New(p Persona) *Engine {
	return &Engine{persona: p, now: time.Now}
}

// SetInput replaces the pending input buffer.
func (e *Engine) SetInput(text string) { e.input = text }

// Input returns the pending input buffer.
func (e *Engine) Input() string { return e.input }

// Submit sends the pending input buffer.
func (e *Engine) Submit() bool { return e.Send(e.input) }

// Send appends the user's text and the canned reply as one pair, then clears
// the input buffer. Blank text is ignored and reported as false.
func (e *Engine) Send(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	ts := e.now()
	e.entries = append(e.entries,
		domain.Entry{Role: domain.RoleUser, Content: text, Timestamp: ts},
		domain.Entry{
			Role:      domain.RoleAssistant,
			Content:   CannedReply(e.persona.Name(), e.persona.Description()),
			Timestamp: ts,
		},
	)
	e.input = ""
	return true
}

// Reset empties the transcript.
func (e *Engine) Reset() {
	e.entries = nil
}

// Transcript returns a copy of the entries in order.
func (e *Engine) Transcript() []domain.Entry {
	return slices.Clone(e.entries)
}

// Len returns the number of transcript entries.
func (e *Engine) Len() int { return len(e.entries) }

// ConversationCount is the number of user/assistant pairs.
func (e *Engine) ConversationCount() int { return len(e.entries) / 2 }

// TokenEstimate is the display-only token figure shown under the console.
func (e *Engine) TokenEstimate() int { return len(e.entries) * tokensPerEntry }
