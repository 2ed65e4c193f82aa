// Package hooks fans workspace and gateway events out to in-process handlers.
package hooks

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/neutroai/neutro/internal/logging"
)

const (
	EventWorkspaceOpened     = "workspace_opened"
	EventWorkspaceClosed     = "workspace_closed"
	EventAgentCreated        = "agent_created"
	EventAgentCreateRejected = "agent_create_rejected"
	EventLibrarySelected     = "library_selected"
	EventMessageSent         = "message_sent"
	EventTranscriptReset     = "transcript_reset"
	EventSnippetCopied       = "snippet_copied"
	EventGatewayStart        = "gateway_start"
	EventGatewayStop         = "gateway_stop"
)

var AllEvents = []string{
	EventWorkspaceOpened,
	EventWorkspaceClosed,
	EventAgentCreated,
	EventAgentCreateRejected,
	EventLibrarySelected,
	EventMessageSent,
	EventTranscriptReset,
	EventSnippetCopied,
	EventGatewayStart,
	EventGatewayStop,
}

func Known(event string) bool {
	return slices.Contains(AllEvents, event)
}

// Payload is what a handler receives. Workspace events carry the
// workspace id under Data["workspace"].
type Payload struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data,omitempty"`
}

// Handler errors and panics are logged; they never reach the emitter.
type Handler func(ctx context.Context, p Payload) error

type subscription struct {
	name string
	fn   Handler
}

// Manager holds subscriptions per event plus ones that see every event.
type Manager struct {
	mu       sync.RWMutex
	byEvent  map[string][]*subscription
	wildcard []*subscription
	log      *logging.Logger
}

func NewManager(log *logging.Logger) *Manager {
	return &Manager{
		byEvent: make(map[string][]*subscription),
		log:     log.Sub("hooks"),
	}
}

// On subscribes fn to event and returns a func that unsubscribes it.
func (m *Manager) On(event, name string, fn Handler) (cancel func()) {
	if !Known(event) {
		m.log.Warn().Str("event", event).Str("handler", name).Msg("subscribing to unknown event")
	}
	s := &subscription{name: name, fn: fn}
	m.mu.Lock()
	m.byEvent[event] = append(m.byEvent[event], s)
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.byEvent[event] = slices.DeleteFunc(m.byEvent[event], func(x *subscription) bool { return x == s })
	}
}

// OnAll subscribes fn to every event, including ones not in AllEvents.
func (m *Manager) OnAll(name string, fn Handler) (cancel func()) {
	s := &subscription{name: name, fn: fn}
	m.mu.Lock()
	m.wildcard = append(m.wildcard, s)
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.wildcard = slices.DeleteFunc(m.wildcard, func(x *subscription) bool { return x == s })
	}
}

func (m *Manager) targets(event string) []*subscription {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Concat(m.byEvent[event], m.wildcard)
}

// Count is the number of handlers an Emit of event would reach.
func (m *Manager) Count(event string) int {
	return len(m.targets(event))
}

// Emit runs the event's handlers in subscription order, then the
// wildcard handlers, on the caller's goroutine.
func (m *Manager) Emit(ctx context.Context, event string, data map[string]any) {
	subs := m.targets(event)
	if len(subs) == 0 {
		return
	}
	p := Payload{Event: event, Data: data}
	for _, s := range subs {
		if err := m.call(ctx, s, p); err != nil {
			m.log.Warn().Err(err).Str("event", event).Str("handler", s.name).Msg("hook failed")
		}
	}
}

func (m *Manager) call(ctx context.Context, s *subscription, p Payload) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.fn(ctx, p)
}
