package pagesource

import (
	"bytes"
	"context"
	"image/png"
	"testing"
)

func TestRectNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Rect
		want Rect
	}{
		{"already normalized", Rect{10, 20, 30, 40}, Rect{10, 20, 30, 40}},
		{"reversed x", Rect{30, 20, 10, 40}, Rect{10, 20, 30, 40}},
		{"reversed y", Rect{10, 40, 30, 20}, Rect{10, 20, 30, 40}},
		{"both reversed", Rect{30, 40, 10, 20}, Rect{10, 20, 30, 40}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Normalize(); got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestRectDimensions(t *testing.T) {
	r := Rect{Left: 10, Top: 20, Right: 110, Bottom: 70}
	if r.Width() != 100 {
		t.Errorf("expected width 100, got %f", r.Width())
	}
	if r.Height() != 50 {
		t.Errorf("expected height 50, got %f", r.Height())
	}
}

func TestAllPageText(t *testing.T) {
	src := NewMockSource("one", "two", "three")

	pages, err := AllPageText(src)
	if err != nil {
		t.Fatalf("AllPageText: %v", err)
	}
	if len(pages) != 3 || pages[0] != "one" || pages[2] != "three" {
		t.Errorf("unexpected pages: %v", pages)
	}
}

func TestMockRenderRegion(t *testing.T) {
	src := NewMockSource("page")

	data, err := src.RenderRegion(context.Background(), 0,
		Rect{Left: 0, Top: 0, Right: 100, Bottom: 50}, 2)
	if err != nil {
		t.Fatalf("RenderRegion: %v", err)
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Width != 200 || cfg.Height != 100 {
		t.Errorf("expected 200x100, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestMockRenderRegionBounds(t *testing.T) {
	src := NewMockSource("page")

	if _, err := src.RenderRegion(context.Background(), 0,
		Rect{Left: 0, Top: 0, Right: 10000, Bottom: 10}, 1); err == nil {
		t.Error("expected error for out-of-bounds region")
	}
	if _, err := src.RenderRegion(context.Background(), 5,
		Rect{Left: 0, Top: 0, Right: 10, Bottom: 10}, 1); err == nil {
		t.Error("expected error for out-of-range page")
	}
}
