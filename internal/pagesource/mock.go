package pagesource

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"math"
	"sync"
)

// MockSource is an in-memory Source for tests. Pages are defined by their
// text and dimensions; renders produce solid PNGs sized like a real raster.
// Render calls may arrive from concurrent extraction workers; the call
// counter is guarded accordingly.
type MockSource struct {
	Pages []MockPage

	// RenderErr, when set, fails every render call with this error.
	RenderErr error

	mu          sync.Mutex
	renderCalls int
	closed      bool
}

// MockPage is one page of a MockSource.
type MockPage struct {
	Text   string
	Width  float64
	Height float64
}

var _ Source = (*MockSource)(nil)

// NewMockSource creates a mock source with letter-sized pages holding the
// given text.
func NewMockSource(pageText ...string) *MockSource {
	m := &MockSource{}
	for _, text := range pageText {
		m.Pages = append(m.Pages, MockPage{Text: text, Width: 612, Height: 792})
	}
	return m
}

func (m *MockSource) PageCount() int { return len(m.Pages) }

func (m *MockSource) PageText(pageIndex int) (string, error) {
	if pageIndex < 0 || pageIndex >= len(m.Pages) {
		return "", fmt.Errorf("page index %d out of range", pageIndex)
	}
	return m.Pages[pageIndex].Text, nil
}

func (m *MockSource) PageSize(pageIndex int) (PageInfo, error) {
	if pageIndex < 0 || pageIndex >= len(m.Pages) {
		return PageInfo{}, fmt.Errorf("page index %d out of range", pageIndex)
	}
	return PageInfo{Width: m.Pages[pageIndex].Width, Height: m.Pages[pageIndex].Height}, nil
}

func (m *MockSource) RenderRegion(ctx context.Context, pageIndex int, region Rect, scale float64) ([]byte, error) {
	m.mu.Lock()
	m.renderCalls++
	m.mu.Unlock()
	if m.RenderErr != nil {
		return nil, m.RenderErr
	}
	if pageIndex < 0 || pageIndex >= len(m.Pages) {
		return nil, fmt.Errorf("page index %d out of range", pageIndex)
	}
	region = region.Normalize()
	page := m.Pages[pageIndex]
	if region.Left < 0 || region.Top < 0 || region.Right > page.Width || region.Bottom > page.Height {
		return nil, fmt.Errorf("region %+v outside page bounds", region)
	}
	return encodePNG(int(math.Ceil(region.Width()*scale)), int(math.Ceil(region.Height()*scale)))
}

func (m *MockSource) RenderPage(ctx context.Context, pageIndex int, zoom float64) ([]byte, error) {
	if m.RenderErr != nil {
		return nil, m.RenderErr
	}
	if pageIndex < 0 || pageIndex >= len(m.Pages) {
		return nil, fmt.Errorf("page index %d out of range", pageIndex)
	}
	page := m.Pages[pageIndex]
	return encodePNG(int(math.Ceil(page.Width*zoom)), int(math.Ceil(page.Height*zoom)))
}

func (m *MockSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (m *MockSource) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// RenderCalls returns the number of RenderRegion invocations.
func (m *MockSource) RenderCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.renderCalls
}

func encodePNG(w, h int) ([]byte, error) {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
