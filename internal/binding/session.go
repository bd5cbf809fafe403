// Package binding runs the operator-driven region-binding session: an
// explicit state machine that associates scanned references with page
// regions drawn on a preview surface.
package binding

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jackzampolin/pagemark/internal/pagesource"
	"github.com/jackzampolin/pagemark/internal/refscan"
)

// State is the session's interaction state.
type State string

const (
	// StateIdle means no reference is selected.
	StateIdle State = "idle"
	// StateReferenceSelected means a reference awaits a region drag.
	StateReferenceSelected State = "reference_selected"
	// StateDragging means a rectangle drag is in progress.
	StateDragging State = "dragging"
	// StateBound means the selected reference has a committed region.
	StateBound State = "bound"
)

// Session errors surfaced to the presentation layer as status messages, not
// failures: the state machine stays consistent after each of them.
var (
	ErrUnknownReference = errors.New("unknown reference")
	ErrNoSelection      = errors.New("no reference selected")
	ErrDragInProgress   = errors.New("drag in progress")
	ErrNotDragging      = errors.New("no drag in progress")
	ErrRegionTooSmall   = errors.New("region too small")
	ErrFinished         = errors.New("session finished")
)

// Point is a position on the preview surface, in preview pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Transform converts preview-surface coordinates to page-space units:
// page = (preview - origin) / scale. It is supplied per page by the
// rendering service and must be refreshed on navigation or zoom change.
type Transform struct {
	OriginX float64 `json:"origin_x"`
	OriginY float64 `json:"origin_y"`
	Scale   float64 `json:"scale"`
}

// ToPage converts a preview point to page-space units.
func (t Transform) ToPage(p Point) (float64, float64) {
	scale := t.Scale
	if scale == 0 {
		scale = 1
	}
	return (p.X - t.OriginX) / scale, (p.Y - t.OriginY) / scale
}

// Binding associates a reference with exactly one page region.
type Binding struct {
	AssetName string             `json:"asset_name"`
	Reference *refscan.Reference `json:"-"`
	PageIndex int                `json:"page_index"`
	Region    pagesource.Rect    `json:"region"` // page-space units
	Resolved  bool               `json:"resolved"`
	Failed    bool               `json:"failed"` // set when extraction could not render it
}

// Options configures a session.
type Options struct {
	// MinRegionSize is the smallest accepted drag rectangle edge in
	// preview pixels. Zero-area commits are always rejected.
	MinRegionSize float64
	// Logger receives unresolved-reference warnings at Finish.
	Logger *slog.Logger
}

// Session owns all mutable selection state for one document: the current
// reference, the live drag rectangle, and the committed bindings. Events
// arrive one at a time; the session is not safe for concurrent use.
type Session struct {
	id       string
	refs     []*refscan.Reference
	byName   map[string]*refscan.Reference
	bindings map[string]*Binding

	state     State
	current   *refscan.Reference
	pageIndex int
	transform Transform
	origin    Point
	live      pagesource.Rect // preview coordinates, for visual feedback

	minRegionSize float64
	logger        *slog.Logger
	status        string
	finished      bool
}

// NewSession creates an idle session over the scanned references.
func NewSession(refs []*refscan.Reference, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	byName := make(map[string]*refscan.Reference, len(refs))
	for _, ref := range refs {
		byName[ref.AssetName] = ref
	}

	return &Session{
		id:            uuid.New().String(),
		refs:          refs,
		byName:        byName,
		bindings:      make(map[string]*Binding),
		state:         StateIdle,
		minRegionSize: opts.MinRegionSize,
		logger:        logger,
		status:        "select a reference, then draw a rectangle around it",
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current interaction state.
func (s *Session) State() State { return s.state }

// References returns the scanned references in first-occurrence order.
func (s *Session) References() []*refscan.Reference { return s.refs }

// Select picks a reference for binding. Selecting while a drag is in
// progress is ignored until the drag commits or cancels. Re-selecting a
// bound reference discards its prior region so it can be redrawn.
func (s *Session) Select(assetName string) error {
	if s.finished {
		return ErrFinished
	}
	if s.state == StateDragging {
		return ErrDragInProgress
	}

	ref, ok := s.byName[assetName]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownReference, assetName)
	}

	// Re-selection discards, not accumulates: any prior binding for this
	// reference is cleared along with its visual artifact.
	if _, bound := s.bindings[assetName]; bound {
		delete(s.bindings, assetName)
		s.status = fmt.Sprintf("reselecting %s - drag to create rectangle", ref.DisplayName)
	} else {
		s.status = fmt.Sprintf("selecting %s - drag to create rectangle", ref.DisplayName)
	}

	s.current = ref
	s.live = pagesource.Rect{}
	s.state = StateReferenceSelected
	return nil
}

// Navigate moves the preview to another page. The transform is supplied by
// the rendering service for that page and zoom; any live drag is discarded.
func (s *Session) Navigate(pageIndex int, t Transform) error {
	if s.finished {
		return ErrFinished
	}
	s.pageIndex = pageIndex
	s.transform = t
	s.live = pagesource.Rect{}
	if s.state == StateDragging {
		// Page change clears the canvas, drag included.
		s.state = StateReferenceSelected
	}
	return nil
}

// SetTransform refreshes the preview transform after a zoom change.
func (s *Session) SetTransform(t Transform) {
	s.transform = t
}

// PointerDown starts a rectangle drag at the given preview point. A press
// without a selected reference is rejected; a press while bound restarts the
// current reference's region.
func (s *Session) PointerDown(p Point) error {
	if s.finished {
		return ErrFinished
	}
	switch s.state {
	case StateReferenceSelected:
	case StateBound:
		// Redo: drop the committed region before drawing the new one.
		delete(s.bindings, s.current.AssetName)
	default:
		s.status = "please select a reference from the list first"
		return ErrNoSelection
	}

	s.origin = p
	s.live = pagesource.Rect{Left: p.X, Top: p.Y, Right: p.X, Bottom: p.Y}
	s.state = StateDragging
	return nil
}

// PointerMove updates the live rectangle for visual feedback. No commitment
// happens until release.
func (s *Session) PointerMove(p Point) error {
	if s.finished {
		return ErrFinished
	}
	if s.state != StateDragging {
		return ErrNotDragging
	}
	s.live = pagesource.Rect{
		Left: s.origin.X, Top: s.origin.Y, Right: p.X, Bottom: p.Y,
	}.Normalize()
	return nil
}

// PointerRelease commits the rectangle. Degenerate rectangles (smaller than
// the configured minimum in either dimension) are rejected and the session
// stays in Dragging so the operator can continue. A successful commit
// converts the rectangle to page-space units and replaces any prior region
// for this reference.
func (s *Session) PointerRelease(p Point) error {
	if s.finished {
		return ErrFinished
	}
	if s.state != StateDragging {
		return ErrNotDragging
	}

	preview := pagesource.Rect{
		Left: s.origin.X, Top: s.origin.Y, Right: p.X, Bottom: p.Y,
	}.Normalize()

	min := s.minRegionSize
	if preview.Width() <= min || preview.Height() <= min {
		s.live = pagesource.Rect{}
		s.status = "rectangle too small, try again with a larger selection"
		return ErrRegionTooSmall
	}

	left, top := s.transform.ToPage(Point{X: preview.Left, Y: preview.Top})
	right, bottom := s.transform.ToPage(Point{X: preview.Right, Y: preview.Bottom})

	s.bindings[s.current.AssetName] = &Binding{
		AssetName: s.current.AssetName,
		Reference: s.current,
		PageIndex: s.pageIndex,
		Region:    pagesource.Rect{Left: left, Top: top, Right: right, Bottom: bottom},
		Resolved:  true,
	}
	s.live = preview
	s.state = StateBound
	s.status = "selection added, select another item or finish"
	return nil
}

// Cancel abandons an in-progress drag with no side effects.
func (s *Session) Cancel() error {
	if s.finished {
		return ErrFinished
	}
	if s.state != StateDragging {
		return ErrNotDragging
	}
	s.live = pagesource.Rect{}
	s.state = StateReferenceSelected
	s.status = "selection cancelled"
	return nil
}

// Finish ends the session and emits the resolved bindings in reference
// order. Unresolved references are dropped with a warning; partial
// extraction is a valid outcome.
func (s *Session) Finish() []*Binding {
	if s.finished {
		return s.resolvedBindings()
	}
	s.finished = true
	s.state = StateIdle
	s.current = nil
	s.live = pagesource.Rect{}
	s.status = "session finished"

	for _, ref := range s.refs {
		if _, ok := s.bindings[ref.AssetName]; !ok {
			s.logger.Warn("reference left unbound",
				"asset", ref.AssetName, "display", ref.DisplayName)
		}
	}
	return s.resolvedBindings()
}

// Finished reports whether Finish has been called.
func (s *Session) Finished() bool { return s.finished }

// Binding returns the committed binding for an asset name, if any.
func (s *Session) Binding(assetName string) (*Binding, bool) {
	b, ok := s.bindings[assetName]
	return b, ok
}

func (s *Session) resolvedBindings() []*Binding {
	out := make([]*Binding, 0, len(s.bindings))
	for _, ref := range s.refs {
		if b, ok := s.bindings[ref.AssetName]; ok && b.Resolved {
			out = append(out, b)
		}
	}
	return out
}
