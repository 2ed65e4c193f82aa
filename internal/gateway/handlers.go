package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/neutroai/neutro/internal/draft"
	"github.com/neutroai/neutro/internal/library"
	"github.com/neutroai/neutro/internal/page"
	"github.com/neutroai/neutro/internal/workspace"
)

// HealthResponse is returned by health endpoints. The public HTTP endpoint
// only populates Status; the RPC handler populates all fields.
type HealthResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version,omitempty"`
	Clients    int    `json:"clients,omitempty"`
	Workspaces int    `json:"workspaces,omitempty"`
	UptimeMs   int64  `json:"uptimeMs,omitempty"`
}

// handleHealth returns the server health status. Only status is exposed
// over plain HTTP; detailed info is available via the RPC health method.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// handlePageMeta returns document metadata for a view.
func (s *Server) handlePageMeta(w http.ResponseWriter, r *http.Request) {
	meta, err := page.For(r.PathValue("view"), s.cfg.Gateway.PublicOrigin)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": err.Error(),
			"path":  r.URL.Path,
		})
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

// handleNotFound returns a 404 for unknown routes.
func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{
		"error": "not found",
		"path":  r.URL.Path,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// RequestHandler processes an incoming RPC request frame from a client.
type RequestHandler func(ctx *RequestContext)

// RequestContext carries everything a handler needs.
type RequestContext struct {
	Ctx    context.Context
	Client *Client
	Frame  Frame
	Server *Server
}

// Workspace returns the workspace bound to the calling connection.
func (rc *RequestContext) Workspace() *workspace.Workspace {
	return rc.Client.Workspace
}

// Respond sends a success response.
func (rc *RequestContext) Respond(payload any) {
	if err := rc.Client.Respond(rc.Frame.ID, payload); err != nil {
		rc.Server.log.Warn().Err(err).Str("method", rc.Frame.Method).Msg("failed to send response")
	}
}

// RespondError sends an error response.
func (rc *RequestContext) RespondError(code, message string) {
	rc.respondShape(ErrorShape{Code: code, Message: message})
}

// Fail maps err to an error code and sends it.
func (rc *RequestContext) Fail(err error) {
	shape := ErrorShape{Code: errorCode(err), Message: err.Error()}
	var verr *draft.ValidationError
	if errors.As(err, &verr) {
		shape.Details = map[string]any{"missing": verr.Missing}
	}
	var ferr *draft.FieldError
	if errors.As(err, &ferr) {
		shape.Details = map[string]any{"field": ferr.Field}
	}
	if shape.Code == CodeInternal {
		rc.Server.log.Error().Err(err).Str("method", rc.Frame.Method).Msg("rpc failed")
	}
	rc.respondShape(shape)
}

func (rc *RequestContext) respondShape(shape ErrorShape) {
	if err := rc.Client.RespondError(rc.Frame.ID, shape); err != nil {
		rc.Server.log.Warn().Err(err).Str("method", rc.Frame.Method).Msg("failed to send error response")
	}
}

// Notify pushes a notify event to the calling client.
func (rc *RequestContext) Notify(payload any) {
	seq := rc.Server.eventSeq.Add(1)
	if err := rc.Client.SendEvent(EventNotify, payload, seq); err != nil {
		rc.Server.log.Warn().Err(err).Str("method", rc.Frame.Method).Msg("failed to push notification")
	}
}

// Params unmarshals the request params into the given target.
func (rc *RequestContext) Params(target any) error {
	if len(rc.Frame.Params) == 0 || string(rc.Frame.Params) == "null" {
		return nil
	}
	return json.Unmarshal(rc.Frame.Params, target)
}

// errorCode maps domain errors to RPC error codes.
func errorCode(err error) string {
	var verr *draft.ValidationError
	var ferr *draft.FieldError
	switch {
	case errors.As(err, &verr):
		return CodeValidationError
	case errors.Is(err, library.ErrNotFound), errors.Is(err, page.ErrUnknownView):
		return CodeNotFound
	case errors.As(err, &ferr):
		return CodeInvalidParams
	default:
		return CodeInternal
	}
}
