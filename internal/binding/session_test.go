package binding

import (
	"errors"
	"testing"

	"github.com/jackzampolin/pagemark/internal/refscan"
	"github.com/jackzampolin/pagemark/internal/textindex"
)

func testRefs(t *testing.T, pages ...string) []*refscan.Reference {
	t.Helper()
	return refscan.Scan(textindex.Build(pages), refscan.Options{})
}

func newTestSession(t *testing.T, minSize float64, pages ...string) *Session {
	t.Helper()
	return NewSession(testRefs(t, pages...), Options{MinRegionSize: minSize})
}

// dragRect runs a full select + drag sequence to the given corners.
func dragRect(t *testing.T, s *Session, asset string, x1, y1, x2, y2 float64) {
	t.Helper()
	if err := s.Select(asset); err != nil {
		t.Fatalf("select %s: %v", asset, err)
	}
	if err := s.PointerDown(Point{X: x1, Y: y1}); err != nil {
		t.Fatalf("pointer down: %v", err)
	}
	if err := s.PointerMove(Point{X: x2, Y: y2}); err != nil {
		t.Fatalf("pointer move: %v", err)
	}
	if err := s.PointerRelease(Point{X: x2, Y: y2}); err != nil {
		t.Fatalf("pointer release: %v", err)
	}
}

func TestSessionHappyPath(t *testing.T) {
	s := newTestSession(t, 5, "Figure 1 is here")

	if s.State() != StateIdle {
		t.Fatalf("expected idle start, got %s", s.State())
	}

	if err := s.Select("figure1"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if s.State() != StateReferenceSelected {
		t.Errorf("expected reference_selected, got %s", s.State())
	}

	if err := s.PointerDown(Point{X: 10, Y: 20}); err != nil {
		t.Fatalf("pointer down: %v", err)
	}
	if s.State() != StateDragging {
		t.Errorf("expected dragging, got %s", s.State())
	}

	if err := s.PointerRelease(Point{X: 110, Y: 220}); err != nil {
		t.Fatalf("pointer release: %v", err)
	}
	if s.State() != StateBound {
		t.Errorf("expected bound, got %s", s.State())
	}

	b, ok := s.Binding("figure1")
	if !ok {
		t.Fatal("expected binding for figure1")
	}
	if !b.Resolved {
		t.Error("binding should be resolved")
	}
}

func TestSessionCoordinateConversion(t *testing.T) {
	s := newTestSession(t, 5, "Figure 1")

	// Preview at 2x zoom: page units are half the preview pixels.
	if err := s.Navigate(0, Transform{Scale: 2}); err != nil {
		t.Fatalf("navigate: %v", err)
	}
	dragRect(t, s, "figure1", 100, 200, 300, 400)

	b, _ := s.Binding("figure1")
	want := [4]float64{50, 100, 150, 200}
	got := [4]float64{b.Region.Left, b.Region.Top, b.Region.Right, b.Region.Bottom}
	if got != want {
		t.Errorf("expected region %v, got %v", want, got)
	}
}

func TestSessionDragNormalization(t *testing.T) {
	s := newTestSession(t, 5, "Figure 1")
	s.SetTransform(Transform{Scale: 1})

	// Drag up-left: corners arrive reversed.
	dragRect(t, s, "figure1", 300, 400, 100, 200)

	b, _ := s.Binding("figure1")
	if b.Region.Left != 100 || b.Region.Top != 200 || b.Region.Right != 300 || b.Region.Bottom != 400 {
		t.Errorf("expected normalized region, got %+v", b.Region)
	}
}

func TestSessionDegenerateRegion(t *testing.T) {
	s := newTestSession(t, 5, "Figure 1")

	if err := s.Select("figure1"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := s.PointerDown(Point{X: 10, Y: 10}); err != nil {
		t.Fatalf("pointer down: %v", err)
	}

	// 3x100 is under the 5px minimum in one dimension.
	err := s.PointerRelease(Point{X: 13, Y: 110})
	if !errors.Is(err, ErrRegionTooSmall) {
		t.Fatalf("expected ErrRegionTooSmall, got %v", err)
	}

	// Rejection keeps the drag alive so the operator can continue.
	if s.State() != StateDragging {
		t.Errorf("expected dragging after rejection, got %s", s.State())
	}
	if _, ok := s.Binding("figure1"); ok {
		t.Error("no binding should exist after rejection")
	}

	// A larger release still commits.
	if err := s.PointerRelease(Point{X: 110, Y: 110}); err != nil {
		t.Fatalf("second release: %v", err)
	}
	if s.State() != StateBound {
		t.Errorf("expected bound, got %s", s.State())
	}
}

func TestSessionSelectDuringDrag(t *testing.T) {
	s := newTestSession(t, 5, "Figure 1 and Table 2")

	if err := s.Select("figure1"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := s.PointerDown(Point{X: 0, Y: 0}); err != nil {
		t.Fatalf("pointer down: %v", err)
	}

	err := s.Select("table2")
	if !errors.Is(err, ErrDragInProgress) {
		t.Fatalf("expected ErrDragInProgress, got %v", err)
	}
	if s.State() != StateDragging {
		t.Errorf("drag should survive ignored select, got %s", s.State())
	}
	if s.Snapshot().Current != "figure1" {
		t.Errorf("current selection should be unchanged")
	}
}

func TestSessionRebindOverwrites(t *testing.T) {
	s := newTestSession(t, 5, "Figure 1")
	s.SetTransform(Transform{Scale: 1})

	dragRect(t, s, "figure1", 0, 0, 100, 100)
	dragRect(t, s, "figure1", 200, 200, 350, 350)

	b, ok := s.Binding("figure1")
	if !ok {
		t.Fatal("expected binding after rebind")
	}
	if b.Region.Left != 200 {
		t.Errorf("expected second region to win, got %+v", b.Region)
	}

	// Exactly one resolved binding survives.
	bindings := s.Finish()
	if len(bindings) != 1 {
		t.Errorf("expected 1 binding, got %d", len(bindings))
	}
}

func TestSessionPointerDownWhileBound(t *testing.T) {
	s := newTestSession(t, 5, "Figure 1")
	s.SetTransform(Transform{Scale: 1})

	dragRect(t, s, "figure1", 0, 0, 100, 100)

	// Press while bound restarts the region for the current reference.
	if err := s.PointerDown(Point{X: 50, Y: 50}); err != nil {
		t.Fatalf("pointer down while bound: %v", err)
	}
	if _, ok := s.Binding("figure1"); ok {
		t.Error("prior binding should be discarded on redo")
	}
	if s.State() != StateDragging {
		t.Errorf("expected dragging, got %s", s.State())
	}
}

func TestSessionPointerDownWithoutSelection(t *testing.T) {
	s := newTestSession(t, 5, "Figure 1")

	err := s.PointerDown(Point{X: 0, Y: 0})
	if !errors.Is(err, ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection, got %v", err)
	}
	if s.State() != StateIdle {
		t.Errorf("state should be unchanged, got %s", s.State())
	}
}

func TestSessionCancel(t *testing.T) {
	s := newTestSession(t, 5, "Figure 1")

	if err := s.Cancel(); !errors.Is(err, ErrNotDragging) {
		t.Fatalf("expected ErrNotDragging outside a drag, got %v", err)
	}

	if err := s.Select("figure1"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := s.PointerDown(Point{X: 0, Y: 0}); err != nil {
		t.Fatalf("pointer down: %v", err)
	}
	if err := s.Cancel(); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if s.State() != StateReferenceSelected {
		t.Errorf("expected reference_selected after cancel, got %s", s.State())
	}
	if _, ok := s.Binding("figure1"); ok {
		t.Error("cancel must not commit anything")
	}
}

func TestSessionNavigateDuringDrag(t *testing.T) {
	s := newTestSession(t, 5, "Figure 1")

	if err := s.Select("figure1"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := s.PointerDown(Point{X: 0, Y: 0}); err != nil {
		t.Fatalf("pointer down: %v", err)
	}
	if err := s.Navigate(3, Transform{Scale: 2}); err != nil {
		t.Fatalf("navigate: %v", err)
	}

	if s.State() != StateReferenceSelected {
		t.Errorf("page change should discard the drag, got %s", s.State())
	}
	if s.Snapshot().PageIndex != 3 {
		t.Errorf("expected page index 3, got %d", s.Snapshot().PageIndex)
	}
}

func TestSessionUnknownReference(t *testing.T) {
	s := newTestSession(t, 5, "Figure 1")

	err := s.Select("figure99")
	if !errors.Is(err, ErrUnknownReference) {
		t.Fatalf("expected ErrUnknownReference, got %v", err)
	}
}

func TestSessionFinish(t *testing.T) {
	s := newTestSession(t, 5, "Figure 1 and Table 2 and Image 3")
	s.SetTransform(Transform{Scale: 1})

	dragRect(t, s, "figure1", 0, 0, 100, 100)
	dragRect(t, s, "image3", 10, 10, 60, 60)

	bindings := s.Finish()
	if len(bindings) != 2 {
		t.Fatalf("expected 2 resolved bindings, got %d", len(bindings))
	}
	// Reference order, not binding order.
	if bindings[0].AssetName != "figure1" || bindings[1].AssetName != "image3" {
		t.Errorf("unexpected binding order: %s, %s", bindings[0].AssetName, bindings[1].AssetName)
	}

	if !s.Finished() {
		t.Error("session should report finished")
	}

	// Finish is idempotent.
	again := s.Finish()
	if len(again) != 2 {
		t.Errorf("expected idempotent finish, got %d bindings", len(again))
	}

	// Events after finish are rejected.
	if err := s.Select("table2"); !errors.Is(err, ErrFinished) {
		t.Errorf("expected ErrFinished, got %v", err)
	}
}

func TestSnapshot(t *testing.T) {
	s := newTestSession(t, 5, "Figure 1 and Table 2")
	s.SetTransform(Transform{Scale: 1})

	snap := s.Snapshot()
	if snap.State != StateIdle {
		t.Errorf("expected idle, got %s", snap.State)
	}
	if snap.LiveRegion != nil {
		t.Error("idle snapshot should not carry a live region")
	}
	if len(snap.References) != 2 {
		t.Fatalf("expected 2 candidate rows, got %d", len(snap.References))
	}

	dragRect(t, s, "figure1", 0, 0, 100, 100)

	snap = s.Snapshot()
	if snap.State != StateBound {
		t.Errorf("expected bound, got %s", snap.State)
	}
	if snap.LiveRegion == nil {
		t.Fatal("bound snapshot should carry the committed rectangle")
	}
	if snap.Current != "figure1" {
		t.Errorf("expected current figure1, got %s", snap.Current)
	}

	var resolved int
	for _, row := range snap.References {
		if row.Resolved {
			resolved++
		}
	}
	if resolved != 1 {
		t.Errorf("expected 1 resolved row, got %d", resolved)
	}
}

func TestApplyEvents(t *testing.T) {
	s := newTestSession(t, 5, "Figure 1")

	events := []Event{
		{Type: EventNavigate, PageIndex: 0, Transform: &Transform{Scale: 1}},
		{Type: EventSelect, AssetName: "figure1"},
		{Type: EventPointerDown, Point: Point{X: 0, Y: 0}},
		{Type: EventPointerMove, Point: Point{X: 50, Y: 50}},
		{Type: EventPointerRelease, Point: Point{X: 100, Y: 100}},
		{Type: EventFinish},
	}
	for i, ev := range events {
		if err := s.Apply(ev); err != nil {
			t.Fatalf("event %d (%s): %v", i, ev.Type, err)
		}
	}

	if !s.Finished() {
		t.Error("expected finished session")
	}
	if len(s.resolvedBindings()) != 1 {
		t.Errorf("expected 1 binding, got %d", len(s.resolvedBindings()))
	}
}

func TestApplyUnknownEvent(t *testing.T) {
	s := newTestSession(t, 5, "Figure 1")
	if err := s.Apply(Event{Type: "bogus"}); err == nil {
		t.Error("expected error for unknown event type")
	}
}
