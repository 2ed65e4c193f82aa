package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/neutroai/neutro/internal/domain"
)

// ErrNotFound is returned when no agent has the requested id.
var ErrNotFound = errors.New("library: agent not found")

// Filter narrows List results. Zero fields match everything.
type Filter struct {
	Query string `json:"query,omitempty"` // case-insensitive substring of the name
	Role  string `json:"role,omitempty"`  // exact role
}

// List returns the agents matching f, ordered by id. The name match runs
// in Go because SQLite's lower() only folds ASCII.
func (db *DB) List(ctx context.Context, f Filter) ([]domain.LibraryAgent, error) {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	rows, err := db.sql.QueryContext(ctx,
		`SELECT id, name, role, status, updated_at FROM agents
		 WHERE (? = '' OR role = ?)
		 ORDER BY id`,
		f.Role, f.Role,
	)
	if err != nil {
		return nil, fmt.Errorf("listing agents: %w", err)
	}
	defer rows.Close()

	var agents []domain.LibraryAgent
	for rows.Next() {
		var a domain.LibraryAgent
		if err := rows.Scan(&a.ID, &a.Name, &a.Role, &a.Status, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning agent: %w", err)
		}
		if query != "" && !strings.Contains(strings.ToLower(a.Name), query) {
			continue
		}
		agents = append(agents, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing agents: %w", err)
	}

	for i := range agents {
		tags, err := db.tags(ctx, agents[i].ID)
		if err != nil {
			return nil, err
		}
		agents[i].Tags = tags
	}
	return agents, nil
}

// Get returns one agent by id.
func (db *DB) Get(ctx context.Context, id string) (domain.LibraryAgent, error) {
	var a domain.LibraryAgent
	err := db.sql.QueryRowContext(ctx,
		`SELECT id, name, role, status, updated_at FROM agents WHERE id = ?`, id,
	).Scan(&a.ID, &a.Name, &a.Role, &a.Status, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.LibraryAgent{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return domain.LibraryAgent{}, fmt.Errorf("getting agent %s: %w", id, err)
	}

	a.Tags, err = db.tags(ctx, id)
	if err != nil {
		return domain.LibraryAgent{}, err
	}
	return a, nil
}

// Roles returns the distinct roles in the catalog, sorted.
func (db *DB) Roles(ctx context.Context) ([]string, error) {
	rows, err := db.sql.QueryContext(ctx, `SELECT DISTINCT role FROM agents ORDER BY role`)
	if err != nil {
		return nil, fmt.Errorf("listing roles: %w", err)
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var r string
		if err := rows.Scan(&r); err != nil {
			return nil, fmt.Errorf("scanning role: %w", err)
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}

func (db *DB) tags(ctx context.Context, agentID string) ([]string, error) {
	rows, err := db.sql.QueryContext(ctx,
		`SELECT tag FROM agent_tags WHERE agent_id = ? ORDER BY position`, agentID,
	)
	if err != nil {
		return nil, fmt.Errorf("loading tags for %s: %w", agentID, err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("scanning tag: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}
