package endpoints

import (
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/pagemark/internal/api"
	"github.com/jackzampolin/pagemark/internal/binding"
)

// EventResponse carries the snapshot after an event, plus the rejection
// message when the session refused the event but stayed consistent.
type EventResponse struct {
	Snapshot binding.Snapshot `json:"snapshot"`
	Rejected string           `json:"rejected,omitempty"`
}

// PostEventEndpoint handles POST /api/sessions/{id}/events.
type PostEventEndpoint struct{}

var _ api.Endpoint = (*PostEventEndpoint)(nil)

func (e *PostEventEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/sessions/{id}/events", e.handler
}

func (e *PostEventEndpoint) RequiresInit() bool { return true }

func (e *PostEventEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	c, ok := conversionFrom(w, r)
	if !ok {
		return
	}

	var ev binding.Event
	if err := decodeJSON(r, &ev); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := c.Dispatch(ev)
	if err != nil {
		if recoverable(err) {
			writeJSON(w, http.StatusOK, EventResponse{Snapshot: snap, Rejected: err.Error()})
			return
		}
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, EventResponse{Snapshot: snap})
}

func (e *PostEventEndpoint) Command(_ func() string) *cobra.Command {
	return nil
}

// recoverable reports whether an event rejection leaves the session usable.
// These come back in the response body so the UI can surface them without
// treating the session as broken.
func recoverable(err error) bool {
	return errors.Is(err, binding.ErrUnknownReference) ||
		errors.Is(err, binding.ErrNoSelection) ||
		errors.Is(err, binding.ErrDragInProgress) ||
		errors.Is(err, binding.ErrNotDragging) ||
		errors.Is(err, binding.ErrRegionTooSmall)
}
