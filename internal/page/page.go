// Package page describes the document metadata each view sets on entry.
package page

import (
	"errors"
	"fmt"
	"strings"
)

// Dashboard is the builder view.
const Dashboard = "dashboard"

// ErrUnknownView is returned for a view with no metadata.
var ErrUnknownView = errors.New("unknown view")

// Metadata is the title, description meta tag and canonical link of a view.
type Metadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Canonical   string `json:"canonical"`
}

type view struct {
	title       string
	description string
	path        string
}

var views = map[string]view{
	Dashboard: {
		title:       "AI Agent Orchestration Dashboard",
		description: "Design, orchestrate, and test AI agents in a 3-pane builder.",
		path:        "/dashboard",
	},
}

// Views lists the views that have metadata.
func Views() []string {
	return []string{Dashboard}
}

// For returns the metadata for a view served from origin.
func For(name, origin string) (Metadata, error) {
	v, ok := views[name]
	if !ok {
		return Metadata{}, fmt.Errorf("%w: %s", ErrUnknownView, name)
	}
	return Metadata{
		Title:       v.title,
		Description: v.description,
		Canonical:   strings.TrimRight(origin, "/") + v.path,
	}, nil
}
