// Package convert orchestrates a document conversion: page decoding,
// reference scanning, the operator binding session, asset extraction,
// reinsertion, and output writing.
package convert

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/jackzampolin/pagemark/internal/assets"
	"github.com/jackzampolin/pagemark/internal/binding"
	"github.com/jackzampolin/pagemark/internal/config"
	"github.com/jackzampolin/pagemark/internal/home"
	"github.com/jackzampolin/pagemark/internal/pagesource"
	"github.com/jackzampolin/pagemark/internal/refscan"
	"github.com/jackzampolin/pagemark/internal/reinsert"
	"github.com/jackzampolin/pagemark/internal/textindex"
)

// Request contains the parameters for converting one document.
type Request struct {
	// PDFPath is the document to convert. Ignored when Source is set.
	PDFPath string
	// Source overrides the page source (used by tests).
	Source pagesource.Source
	// OutputDir overrides the output location. Defaults to the home
	// directory's per-document layout.
	OutputDir string
	// Home locates default output paths.
	Home *home.Dir
	// Config supplies tunables; nil uses defaults.
	Config *config.Config
	// Logger is an optional logger for progress updates.
	Logger *slog.Logger
}

// Conversion is one in-flight document conversion. The binding session is
// driven through Dispatch; Finalize runs extraction and reinsertion and
// writes the outputs.
type Conversion struct {
	id       string
	baseName string

	src     pagesource.Source
	index   *textindex.Index
	refs    []*refscan.Reference
	session *binding.Session

	cfg       *config.Config
	logger    *slog.Logger
	outputDir string

	mu     sync.Mutex
	result *Result
}

// New opens the document, builds the text index, scans for references, and
// creates the binding session.
func New(ctx context.Context, req Request) (*Conversion, error) {
	logger := req.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := req.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	src := req.Source
	if src == nil {
		if req.PDFPath == "" {
			return nil, fmt.Errorf("no PDF path provided")
		}
		opened, err := pagesource.Open(req.PDFPath)
		if err != nil {
			return nil, err
		}
		src = opened
	}

	baseName := home.BaseName(req.PDFPath)
	if baseName == "" || baseName == "." {
		baseName = "document"
	}

	outputDir := req.OutputDir
	if outputDir == "" && req.Home != nil {
		outputDir = req.Home.DocumentDir(baseName)
	}
	if outputDir == "" {
		src.Close()
		return nil, fmt.Errorf("no output directory provided")
	}

	pages, err := pagesource.AllPageText(src)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("failed to extract page text: %w", err)
	}

	index := textindex.Build(pages)
	refs := refscan.Scan(index, refscan.Options{StrictNumbers: cfg.Scan.StrictNumbers})
	logger.Info("scanned document",
		"pages", len(pages), "references", len(refs))

	session := binding.NewSession(refs, binding.Options{
		MinRegionSize: cfg.Binding.MinRegionSize,
		Logger:        logger,
	})

	return &Conversion{
		id:        uuid.New().String(),
		baseName:  baseName,
		src:       src,
		index:     index,
		refs:      refs,
		session:   session,
		cfg:       cfg,
		logger:    logger,
		outputDir: outputDir,
	}, nil
}

// ID returns the conversion identifier.
func (c *Conversion) ID() string { return c.id }

// BaseName returns the document base name used for output files.
func (c *Conversion) BaseName() string { return c.baseName }

// PageCount returns the number of pages in the document.
func (c *Conversion) PageCount() int { return c.src.PageCount() }

// References returns the scanned references in first-occurrence order.
func (c *Conversion) References() []*refscan.Reference { return c.refs }

// Dispatch applies a presentation-layer event to the binding session and
// returns the resulting snapshot. Events are serialized; the session itself
// is single-threaded.
func (c *Conversion) Dispatch(ev binding.Event) (binding.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.session.Apply(ev)
	return c.session.Snapshot(), err
}

// Snapshot returns the current session snapshot.
func (c *Conversion) Snapshot() binding.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Snapshot()
}

// PreviewTransform returns the preview-surface transform at the configured
// zoom. The preview raster puts every page's origin at its top-left corner,
// so the transform is the same for all pages and only the scale matters.
func (c *Conversion) PreviewTransform() binding.Transform {
	return binding.Transform{Scale: c.cfg.Preview.Zoom}
}

// RenderPreview rasterizes a page for the preview surface.
func (c *Conversion) RenderPreview(ctx context.Context, pageIndex int) ([]byte, error) {
	return c.src.RenderPage(ctx, pageIndex, c.cfg.Preview.Zoom)
}

// ImageFormat returns the configured asset image format.
func (c *Conversion) ImageFormat() string { return c.cfg.Extraction.ImageFormat }

// Asset returns a produced asset by name after Finalize has run.
func (c *Conversion) Asset(name string) (*assets.Asset, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return nil, false
	}
	for _, a := range c.result.assets {
		if a.Name == name {
			return a, true
		}
	}
	return nil, false
}

// Result returns the finalized result, or nil if Finalize has not run.
func (c *Conversion) Result() *Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// Finalize ends the binding session, extracts assets for every resolved
// binding, reinserts image markers, splits the bibliography, and writes all
// outputs. Render failures and unresolved references reduce the output but
// never abort it.
func (c *Conversion) Finalize(ctx context.Context) (*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result != nil {
		return c.result, nil
	}

	bindings := c.session.Finish()

	extractor := assets.NewExtractor(c.src, assets.Options{
		ScaleFactor:   c.cfg.Extraction.ScaleFactor,
		RetryAttempts: c.cfg.Extraction.RetryAttempts,
		MaxWorkers:    c.cfg.Extraction.MaxWorkers,
		Logger:        c.logger,
	})
	extracted, err := extractor.Extract(ctx, bindings)
	if err != nil {
		return nil, fmt.Errorf("extraction aborted: %w", err)
	}

	engine := reinsert.NewEngine(reinsert.Options{
		ImageDir:    "./" + home.ImagesDirName,
		ImageFormat: c.cfg.Extraction.ImageFormat,
		Logger:      c.logger,
	})
	annotated := engine.Annotate(c.index, c.refs, extracted)
	main, bibliography := reinsert.SplitBibliography(annotated.Annotated)
	title := reinsert.ExtractTitle(c.index.Text())

	result := &Result{
		ID:             c.id,
		BaseName:       c.baseName,
		Title:          title,
		OutputDir:      c.outputDir,
		PageCount:      c.src.PageCount(),
		ReferenceCount: len(c.refs),
		assets:         extracted,
	}
	result.addWarnings(c.refs, bindings, annotated.Skipped)

	if err := writeOutputs(c, result, main, bibliography, extracted); err != nil {
		return nil, err
	}

	c.logger.Info("conversion complete",
		"document", c.baseName,
		"references", len(c.refs),
		"assets", len(extracted),
		"warnings", len(result.Warnings))

	c.result = result
	return result, nil
}

// Close releases the page source.
func (c *Conversion) Close() error {
	return c.src.Close()
}
