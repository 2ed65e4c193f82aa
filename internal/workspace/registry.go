package workspace

import (
	"context"
	"slices"
	"sync"

	"github.com/neutroai/neutro/internal/hooks"
)

// Registry tracks open workspaces by id. It is safe for concurrent use;
// the workspaces it hands out are not.
type Registry struct {
	mu         sync.RWMutex
	workspaces map[string]*Workspace
	opts       Options
}

// NewRegistry creates a registry that opens workspaces with opts.
func NewRegistry(opts Options) *Registry {
	return &Registry{
		workspaces: make(map[string]*Workspace),
		opts:       opts,
	}
}

// Open creates and registers a new workspace.
func (r *Registry) Open(ctx context.Context) *Workspace {
	w := New(r.opts)

	r.mu.Lock()
	r.workspaces[w.ID] = w
	r.mu.Unlock()

	w.log.Debug().Msg("workspace opened")
	w.emit(ctx, hooks.EventWorkspaceOpened, nil)
	return w
}

// Get returns a workspace by id.
func (r *Registry) Get(id string) (*Workspace, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.workspaces[id]
	return w, ok
}

// Close forgets a workspace. Returns false if the id is unknown.
func (r *Registry) Close(ctx context.Context, id string) bool {
	r.mu.Lock()
	w, ok := r.workspaces[id]
	delete(r.workspaces, id)
	r.mu.Unlock()

	if !ok {
		return false
	}
	w.log.Debug().Msg("workspace closed")
	w.emit(ctx, hooks.EventWorkspaceClosed, map[string]any{
		"conversations": w.console.ConversationCount(),
		"created":       w.draft.Created(),
	})
	return true
}

// List returns all workspace ids, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.workspaces))
	for id := range r.workspaces {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Count returns the number of open workspaces.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.workspaces)
}
