package endpoints

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/pagemark/internal/api"
	"github.com/jackzampolin/pagemark/internal/binding"
)

// PageResponse describes one page's preview geometry. The transform maps
// preview-surface coordinates back into page points.
type PageResponse struct {
	PageIndex int               `json:"page_index"`
	PageCount int               `json:"page_count"`
	Transform binding.Transform `json:"transform"`
	ImagePath string            `json:"image_path"`
}

// GetPageEndpoint handles GET /api/sessions/{id}/pages/{page_num}.
type GetPageEndpoint struct{}

var _ api.Endpoint = (*GetPageEndpoint)(nil)

func (e *GetPageEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/sessions/{id}/pages/{page_num}", e.handler
}

func (e *GetPageEndpoint) RequiresInit() bool { return true }

func (e *GetPageEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	c, ok := conversionFrom(w, r)
	if !ok {
		return
	}
	pageIndex, ok := pageIndexFrom(w, r, c.PageCount())
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, PageResponse{
		PageIndex: pageIndex,
		PageCount: c.PageCount(),
		Transform: c.PreviewTransform(),
		ImagePath: fmt.Sprintf("/api/sessions/%s/pages/%d/image", c.ID(), pageIndex),
	})
}

func (e *GetPageEndpoint) Command(_ func() string) *cobra.Command {
	return nil
}

// PageImageEndpoint handles GET /api/sessions/{id}/pages/{page_num}/image.
type PageImageEndpoint struct{}

var _ api.Endpoint = (*PageImageEndpoint)(nil)

func (e *PageImageEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/sessions/{id}/pages/{page_num}/image", e.handler
}

func (e *PageImageEndpoint) RequiresInit() bool { return true }

func (e *PageImageEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	c, ok := conversionFrom(w, r)
	if !ok {
		return
	}
	pageIndex, ok := pageIndexFrom(w, r, c.PageCount())
	if !ok {
		return
	}

	data, err := c.RenderPreview(r.Context(), pageIndex)
	if err != nil {
		writeError(w, http.StatusInternalServerError,
			fmt.Sprintf("failed to render page %d: %v", pageIndex, err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (e *PageImageEndpoint) Command(_ func() string) *cobra.Command {
	return nil
}

// pageIndexFrom parses the zero-based {page_num} path parameter and bounds
// checks it, writing the error response on failure.
func pageIndexFrom(w http.ResponseWriter, r *http.Request, pageCount int) (int, bool) {
	raw := r.PathValue("page_num")
	pageIndex, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid page number: %s", raw))
		return 0, false
	}
	if pageIndex < 0 || pageIndex >= pageCount {
		writeError(w, http.StatusNotFound,
			fmt.Sprintf("page %d out of range (document has %d pages)", pageIndex, pageCount))
		return 0, false
	}
	return pageIndex, true
}
