package pagesource

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/ledongthuc/pdf"
	pdfcpu "github.com/pdfcpu/pdfcpu/pkg/api"
)

// basePPI is the nominal page resolution: one pixel per point at scale 1.0.
const basePPI = 72

// PDFSource reads pages from a PDF file on disk.
//
// Text comes from the embedded content streams, dimensions from the page
// media boxes, and rasters from pdftoppm (poppler-utils), which must be on
// PATH.
type PDFSource struct {
	path   string
	file   *os.File
	reader *pdf.Reader
	dims   []PageInfo
}

var _ Source = (*PDFSource)(nil)

// Open opens a PDF file as a page source.
func Open(path string) (*PDFSource, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	dims, err := pdfcpu.PageDimsFile(path)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read page dimensions: %w", err)
	}

	pages := make([]PageInfo, len(dims))
	for i, d := range dims {
		pages[i] = PageInfo{Width: d.Width, Height: d.Height}
	}

	return &PDFSource{
		path:   path,
		file:   f,
		reader: r,
		dims:   pages,
	}, nil
}

// Path returns the path of the underlying PDF file.
func (s *PDFSource) Path() string { return s.path }

// PageCount returns the number of pages in the document.
func (s *PDFSource) PageCount() int { return s.reader.NumPage() }

// PageText returns the plain text of a page.
func (s *PDFSource) PageText(pageIndex int) (string, error) {
	if pageIndex < 0 || pageIndex >= s.reader.NumPage() {
		return "", fmt.Errorf("page index %d out of range", pageIndex)
	}

	page := s.reader.Page(pageIndex + 1)
	if page.V.IsNull() {
		return "", nil
	}

	text, err := page.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("failed to extract text from page %d: %w", pageIndex, err)
	}
	return text, nil
}

// PageSize returns the page dimensions in points.
func (s *PDFSource) PageSize(pageIndex int) (PageInfo, error) {
	if pageIndex < 0 || pageIndex >= len(s.dims) {
		return PageInfo{}, fmt.Errorf("page index %d out of range", pageIndex)
	}
	return s.dims[pageIndex], nil
}

// RenderRegion rasterizes a page region as PNG at scale times the base
// resolution.
func (s *PDFSource) RenderRegion(ctx context.Context, pageIndex int, region Rect, scale float64) ([]byte, error) {
	region = region.Normalize()
	if region.Width() <= 0 || region.Height() <= 0 {
		return nil, fmt.Errorf("region has no area: %+v", region)
	}

	size, err := s.PageSize(pageIndex)
	if err != nil {
		return nil, err
	}
	if region.Left < 0 || region.Top < 0 || region.Right > size.Width || region.Bottom > size.Height {
		return nil, fmt.Errorf("region %+v outside page bounds %gx%g", region, size.Width, size.Height)
	}

	// Crop flags are in output pixels at the requested resolution.
	crop := []string{
		"-x", fmt.Sprintf("%d", int(math.Floor(region.Left*scale))),
		"-y", fmt.Sprintf("%d", int(math.Floor(region.Top*scale))),
		"-W", fmt.Sprintf("%d", int(math.Ceil(region.Width()*scale))),
		"-H", fmt.Sprintf("%d", int(math.Ceil(region.Height()*scale))),
	}
	return s.render(ctx, pageIndex, scale, crop)
}

// RenderPage rasterizes a whole page as PNG at the given zoom.
func (s *PDFSource) RenderPage(ctx context.Context, pageIndex int, zoom float64) ([]byte, error) {
	if pageIndex < 0 || pageIndex >= s.reader.NumPage() {
		return nil, fmt.Errorf("page index %d out of range", pageIndex)
	}
	return s.render(ctx, pageIndex, zoom, nil)
}

// render runs pdftoppm for a single page at the given scale with optional
// extra (crop) flags and returns the PNG bytes.
func (s *PDFSource) render(ctx context.Context, pageIndex int, scale float64, extra []string) ([]byte, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("scale must be positive, got %g", scale)
	}

	tmpDir, err := os.MkdirTemp("", "pagemark-render-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	outputPrefix := filepath.Join(tmpDir, "region")

	// -png: output PNG format
	// -f/-l: single page (pdftoppm pages are 1-indexed)
	// -r: resolution; base resolution is one pixel per point
	// -singlefile: don't add page number suffix
	pageStr := fmt.Sprintf("%d", pageIndex+1)
	args := []string{
		"-png",
		"-f", pageStr,
		"-l", pageStr,
		"-r", fmt.Sprintf("%d", int(math.Round(basePPI*scale))),
		"-singlefile",
	}
	args = append(args, extra...)
	args = append(args, s.path, outputPrefix)

	cmd := exec.CommandContext(ctx, "pdftoppm", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w (output: %s)", err, string(output))
	}

	data, err := os.ReadFile(outputPrefix + ".png")
	if err != nil {
		return nil, fmt.Errorf("pdftoppm did not create expected output: %w", err)
	}
	return data, nil
}

// Close closes the underlying PDF file.
func (s *PDFSource) Close() error {
	return s.file.Close()
}
