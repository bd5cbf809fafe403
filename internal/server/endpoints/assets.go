package endpoints

import (
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/pagemark/internal/api"
)

// GetAssetEndpoint handles GET /api/sessions/{id}/assets/{name}. Assets
// exist only after the session has been finalized.
type GetAssetEndpoint struct{}

var _ api.Endpoint = (*GetAssetEndpoint)(nil)

func (e *GetAssetEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/sessions/{id}/assets/{name}", e.handler
}

func (e *GetAssetEndpoint) RequiresInit() bool { return true }

func (e *GetAssetEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	c, ok := conversionFrom(w, r)
	if !ok {
		return
	}
	name := r.PathValue("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "asset name is required")
		return
	}

	if c.Result() == nil {
		writeError(w, http.StatusConflict, "session not finalized")
		return
	}
	a, ok := c.Asset(name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("asset not found: %s", name))
		return
	}

	w.Header().Set("Content-Type", imageContentType(c.ImageFormat()))
	w.Header().Set("Content-Length", strconv.Itoa(len(a.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(a.Data)
}

func (e *GetAssetEndpoint) Command(_ func() string) *cobra.Command {
	return nil
}

// imageContentType maps a configured image format to its MIME type.
func imageContentType(format string) string {
	if t := mime.TypeByExtension("." + format); t != "" {
		return t
	}
	return "application/octet-stream"
}
