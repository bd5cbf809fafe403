// Package pagesource is the boundary to the page-decoding service: it yields
// per-page text, page dimensions, and raster renders of page regions.
package pagesource

import "context"

// Rect is a rectangle in page-space units (points, top-left origin).
// Left <= Right and Top <= Bottom for a normalized rectangle.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Width returns the rectangle width in page-space units.
func (r Rect) Width() float64 { return r.Right - r.Left }

// Height returns the rectangle height in page-space units.
func (r Rect) Height() float64 { return r.Bottom - r.Top }

// Normalize returns the rectangle with corners reordered so that
// Left <= Right and Top <= Bottom.
func (r Rect) Normalize() Rect {
	if r.Left > r.Right {
		r.Left, r.Right = r.Right, r.Left
	}
	if r.Top > r.Bottom {
		r.Top, r.Bottom = r.Bottom, r.Top
	}
	return r
}

// PageInfo holds page dimensions in page-space units.
type PageInfo struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Source provides decoded page content for a single document.
//
// Implementations must treat page indexes as zero-based. Render calls are
// blocking; callers may retry them but the source does not retry internally.
type Source interface {
	// PageCount returns the number of pages in the document.
	PageCount() int

	// PageText returns the plain text of a page.
	PageText(pageIndex int) (string, error)

	// PageSize returns the page dimensions in page-space units.
	PageSize(pageIndex int) (PageInfo, error)

	// RenderRegion rasterizes a page region at scale times the base
	// resolution and returns the encoded image bytes.
	RenderRegion(ctx context.Context, pageIndex int, region Rect, scale float64) ([]byte, error)

	// RenderPage rasterizes a whole page at the given zoom for preview.
	// Previews are always PNG regardless of the configured asset format.
	RenderPage(ctx context.Context, pageIndex int, zoom float64) ([]byte, error)

	// Close releases any resources held by the source.
	Close() error
}

// AllPageText collects the text of every page in order.
func AllPageText(src Source) ([]string, error) {
	pages := make([]string, src.PageCount())
	for i := range pages {
		text, err := src.PageText(i)
		if err != nil {
			return nil, err
		}
		pages[i] = text
	}
	return pages, nil
}
