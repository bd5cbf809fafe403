package endpoints

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/pagemark/internal/api"
	"github.com/jackzampolin/pagemark/internal/binding"
	"github.com/jackzampolin/pagemark/internal/config"
	"github.com/jackzampolin/pagemark/internal/convert"
	"github.com/jackzampolin/pagemark/internal/svcctx"
)

// CreateSessionRequest opens a document for interactive conversion.
type CreateSessionRequest struct {
	PDFPath   string `json:"pdf_path"`
	OutputDir string `json:"output_dir,omitempty"`
}

// SessionResponse describes one conversion session.
type SessionResponse struct {
	ID        string           `json:"id"`
	BaseName  string           `json:"base_name"`
	PageCount int              `json:"page_count"`
	Snapshot  binding.Snapshot `json:"snapshot"`
}

// CreateSessionEndpoint handles POST /api/sessions.
type CreateSessionEndpoint struct{}

var _ api.Endpoint = (*CreateSessionEndpoint)(nil)

func (e *CreateSessionEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/sessions", e.handler
}

func (e *CreateSessionEndpoint) RequiresInit() bool { return true }

func (e *CreateSessionEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.PDFPath == "" {
		writeError(w, http.StatusBadRequest, "pdf_path is required")
		return
	}

	svcs := svcctx.ServicesFrom(r.Context())
	if svcs == nil {
		writeError(w, http.StatusServiceUnavailable, "services not initialized")
		return
	}

	var cfg *config.Config
	if svcs.ConfigManager != nil {
		cfg = svcs.ConfigManager.Get()
	}
	conversion, err := convert.New(r.Context(), convert.Request{
		PDFPath:   req.PDFPath,
		OutputDir: req.OutputDir,
		Home:      svcs.Home,
		Config:    cfg,
		Logger:    svcs.Logger,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	svcs.Conversions.Add(conversion)
	writeJSON(w, http.StatusCreated, SessionResponse{
		ID:        conversion.ID(),
		BaseName:  conversion.BaseName(),
		PageCount: conversion.PageCount(),
		Snapshot:  conversion.Snapshot(),
	})
}

func (e *CreateSessionEndpoint) Command(_ func() string) *cobra.Command {
	return nil
}

// ListSessionsResponse lists open sessions.
type ListSessionsResponse struct {
	Sessions []SessionResponse `json:"sessions"`
	Total    int               `json:"total"`
}

// ListSessionsEndpoint handles GET /api/sessions.
type ListSessionsEndpoint struct{}

var _ api.Endpoint = (*ListSessionsEndpoint)(nil)

func (e *ListSessionsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/sessions", e.handler
}

func (e *ListSessionsEndpoint) RequiresInit() bool { return true }

func (e *ListSessionsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	registry := svcctx.ConversionsFrom(r.Context())
	if registry == nil {
		writeError(w, http.StatusServiceUnavailable, "conversion registry not initialized")
		return
	}

	resp := ListSessionsResponse{Sessions: []SessionResponse{}}
	for _, id := range registry.IDs() {
		if c, ok := registry.Get(id); ok {
			resp.Sessions = append(resp.Sessions, SessionResponse{
				ID:        c.ID(),
				BaseName:  c.BaseName(),
				PageCount: c.PageCount(),
				Snapshot:  c.Snapshot(),
			})
		}
	}
	resp.Total = len(resp.Sessions)
	writeJSON(w, http.StatusOK, resp)
}

func (e *ListSessionsEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List open conversion sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp ListSessionsResponse
			if err := client.Get(cmd.Context(), "/api/sessions", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// GetSessionEndpoint handles GET /api/sessions/{id}.
type GetSessionEndpoint struct{}

var _ api.Endpoint = (*GetSessionEndpoint)(nil)

func (e *GetSessionEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/sessions/{id}", e.handler
}

func (e *GetSessionEndpoint) RequiresInit() bool { return true }

func (e *GetSessionEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	c, ok := conversionFrom(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{
		ID:        c.ID(),
		BaseName:  c.BaseName(),
		PageCount: c.PageCount(),
		Snapshot:  c.Snapshot(),
	})
}

func (e *GetSessionEndpoint) Command(_ func() string) *cobra.Command {
	return nil
}

// FinalizeSessionEndpoint handles POST /api/sessions/{id}/finalize.
type FinalizeSessionEndpoint struct{}

var _ api.Endpoint = (*FinalizeSessionEndpoint)(nil)

func (e *FinalizeSessionEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/sessions/{id}/finalize", e.handler
}

func (e *FinalizeSessionEndpoint) RequiresInit() bool { return true }

func (e *FinalizeSessionEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	c, ok := conversionFrom(w, r)
	if !ok {
		return
	}

	result, err := c.Finalize(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (e *FinalizeSessionEndpoint) Command(_ func() string) *cobra.Command {
	return nil
}

// DeleteSessionEndpoint handles DELETE /api/sessions/{id}.
type DeleteSessionEndpoint struct{}

var _ api.Endpoint = (*DeleteSessionEndpoint)(nil)

func (e *DeleteSessionEndpoint) Route() (string, string, http.HandlerFunc) {
	return "DELETE", "/api/sessions/{id}", e.handler
}

func (e *DeleteSessionEndpoint) RequiresInit() bool { return true }

func (e *DeleteSessionEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	registry := svcctx.ConversionsFrom(r.Context())
	if registry == nil {
		writeError(w, http.StatusServiceUnavailable, "conversion registry not initialized")
		return
	}
	id := r.PathValue("id")
	if err := registry.Remove(id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

func (e *DeleteSessionEndpoint) Command(_ func() string) *cobra.Command {
	return nil
}

// conversionFrom resolves the {id} path parameter against the registry,
// writing the error response on failure.
func conversionFrom(w http.ResponseWriter, r *http.Request) (*convert.Conversion, bool) {
	registry := svcctx.ConversionsFrom(r.Context())
	if registry == nil {
		writeError(w, http.StatusServiceUnavailable, "conversion registry not initialized")
		return nil, false
	}
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "session id is required")
		return nil, false
	}
	c, ok := registry.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("session not found: %s", id))
		return nil, false
	}
	return c, true
}
