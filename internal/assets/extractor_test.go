package assets

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackzampolin/pagemark/internal/binding"
	"github.com/jackzampolin/pagemark/internal/pagesource"
)

func testBinding(name string, page int, region pagesource.Rect) *binding.Binding {
	return &binding.Binding{
		AssetName: name,
		PageIndex: page,
		Region:    region,
		Resolved:  true,
	}
}

func TestExtract(t *testing.T) {
	src := pagesource.NewMockSource("page one", "page two")
	e := NewExtractor(src, Options{ScaleFactor: 3})

	bindings := []*binding.Binding{
		testBinding("figure1", 0, pagesource.Rect{Left: 10, Top: 10, Right: 110, Bottom: 60}),
		testBinding("table2", 1, pagesource.Rect{Left: 0, Top: 0, Right: 50, Bottom: 50}),
	}

	extracted, err := e.Extract(context.Background(), bindings)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(extracted) != 2 {
		t.Fatalf("expected 2 assets, got %d", len(extracted))
	}

	// Sorted by name.
	if extracted[0].Name != "figure1" || extracted[1].Name != "table2" {
		t.Errorf("unexpected order: %s, %s", extracted[0].Name, extracted[1].Name)
	}

	// A 100x50pt region at 3x renders 300x150 pixels.
	if extracted[0].Width != 300 || extracted[0].Height != 150 {
		t.Errorf("expected 300x150, got %dx%d", extracted[0].Width, extracted[0].Height)
	}
	if extracted[0].ScaleFactor != 3 {
		t.Errorf("expected scale factor 3, got %f", extracted[0].ScaleFactor)
	}
	if len(extracted[0].Data) == 0 {
		t.Error("expected PNG data")
	}
}

func TestExtractSkipsUnresolved(t *testing.T) {
	src := pagesource.NewMockSource("page")
	e := NewExtractor(src, Options{})

	bindings := []*binding.Binding{
		testBinding("figure1", 0, pagesource.Rect{Left: 0, Top: 0, Right: 100, Bottom: 100}),
		{AssetName: "table2", Resolved: false},
	}

	extracted, err := e.Extract(context.Background(), bindings)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(extracted) != 1 {
		t.Fatalf("expected 1 asset, got %d", len(extracted))
	}
	if src.RenderCalls() != 1 {
		t.Errorf("unresolved binding must not render, got %d calls", src.RenderCalls())
	}
}

func TestExtractRenderFailure(t *testing.T) {
	src := pagesource.NewMockSource("page")
	src.RenderErr = errors.New("pdftoppm exploded")
	e := NewExtractor(src, Options{RetryAttempts: 2})

	b := testBinding("figure1", 0, pagesource.Rect{Left: 0, Top: 0, Right: 100, Bottom: 100})
	extracted, err := e.Extract(context.Background(), []*binding.Binding{b})

	// A failed render reduces output, it does not abort.
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(extracted) != 0 {
		t.Errorf("expected no assets, got %d", len(extracted))
	}
	if !b.Failed {
		t.Error("binding should be marked failed")
	}
	if src.RenderCalls() != 2 {
		t.Errorf("expected 2 attempts, got %d", src.RenderCalls())
	}
}

func TestExtractPartialFailure(t *testing.T) {
	src := pagesource.NewMockSource("page")
	e := NewExtractor(src, Options{})

	good := testBinding("figure1", 0, pagesource.Rect{Left: 0, Top: 0, Right: 100, Bottom: 100})
	bad := testBinding("table2", 0, pagesource.Rect{Left: 0, Top: 0, Right: 9999, Bottom: 9999})

	extracted, err := e.Extract(context.Background(), []*binding.Binding{good, bad})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(extracted) != 1 || extracted[0].Name != "figure1" {
		t.Fatalf("expected only figure1, got %d assets", len(extracted))
	}
	if !bad.Failed {
		t.Error("out-of-bounds binding should be marked failed")
	}
	if good.Failed {
		t.Error("good binding must not be marked failed")
	}
}

func TestExtractCancelledContext(t *testing.T) {
	src := pagesource.NewMockSource("page")
	src.RenderErr = errors.New("render failed")
	e := NewExtractor(src, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := testBinding("figure1", 0, pagesource.Rect{Left: 0, Top: 0, Right: 100, Bottom: 100})
	_, err := e.Extract(ctx, []*binding.Binding{b})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestExtractConcurrent(t *testing.T) {
	src := pagesource.NewMockSource("page")
	e := NewExtractor(src, Options{MaxWorkers: 8})

	var bindings []*binding.Binding
	for i := 0; i < 64; i++ {
		bindings = append(bindings, testBinding(
			fmt.Sprintf("figure%d", i), 0,
			pagesource.Rect{Left: 0, Top: 0, Right: 100, Bottom: 100}))
	}

	extracted, err := e.Extract(context.Background(), bindings)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(extracted) != 64 {
		t.Fatalf("expected 64 assets, got %d", len(extracted))
	}
	if src.RenderCalls() != 64 {
		t.Errorf("expected 64 render calls, got %d", src.RenderCalls())
	}
}

func TestExtractEmpty(t *testing.T) {
	src := pagesource.NewMockSource("page")
	e := NewExtractor(src, Options{})

	extracted, err := e.Extract(context.Background(), nil)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(extracted) != 0 {
		t.Errorf("expected no assets, got %d", len(extracted))
	}
}
