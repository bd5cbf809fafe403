// Package assets renders committed bindings into image assets.
package assets

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"log/slog"
	"sort"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/jackzampolin/pagemark/internal/binding"
	"github.com/jackzampolin/pagemark/internal/pagesource"
)

// Asset is the rendered output of a committed binding. Assets are never
// mutated after creation; re-running extraction overwrites by name.
type Asset struct {
	Name         string          `json:"name"`
	PageIndex    int             `json:"page_index"`
	SourceRegion pagesource.Rect `json:"source_region"`
	ScaleFactor  float64         `json:"scale_factor"`
	Width        int             `json:"width"`
	Height       int             `json:"height"`
	Data         []byte          `json:"-"`
}

// Options configures an Extractor.
type Options struct {
	// ScaleFactor multiplies the base resolution when rendering a region.
	ScaleFactor float64
	// RetryAttempts bounds retries of a failed render call.
	RetryAttempts uint
	// MaxWorkers bounds concurrent renders. Defaults to 1.
	MaxWorkers int
	// Logger receives per-binding failure warnings.
	Logger *slog.Logger
}

// Extractor renders bound regions through the page source.
type Extractor struct {
	src      pagesource.Source
	scale    float64
	attempts uint
	workers  int
	logger   *slog.Logger
}

// NewExtractor creates an extractor over the given page source.
func NewExtractor(src pagesource.Source, opts Options) *Extractor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	scale := opts.ScaleFactor
	if scale <= 0 {
		scale = 3.0
	}
	attempts := opts.RetryAttempts
	if attempts == 0 {
		attempts = 1
	}
	workers := opts.MaxWorkers
	if workers < 1 {
		workers = 1
	}
	return &Extractor{
		src:      src,
		scale:    scale,
		attempts: attempts,
		workers:  workers,
		logger:   logger,
	}
}

// Extract renders every resolved binding. A binding whose region cannot be
// rendered is marked failed and skipped; the remaining extractions proceed.
// Results come back sorted by asset name so output is deterministic.
func (e *Extractor) Extract(ctx context.Context, bindings []*binding.Binding) ([]*Asset, error) {
	type result struct {
		asset *Asset
		b     *binding.Binding
		err   error
	}

	results := make(chan result, len(bindings))
	sem := make(chan struct{}, e.workers)

	launched := 0
	for _, b := range bindings {
		if !b.Resolved {
			continue
		}
		launched++
		sem <- struct{}{} // acquire
		go func(b *binding.Binding) {
			defer func() { <-sem }() // release
			asset, err := e.extractOne(ctx, b)
			results <- result{asset: asset, b: b, err: err}
		}(b)
	}

	var assets []*Asset
	for i := 0; i < launched; i++ {
		r := <-results
		if r.err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			r.b.Failed = true
			e.logger.Warn("failed to extract region, skipping",
				"asset", r.b.AssetName, "page", r.b.PageIndex, "error", r.err)
			continue
		}
		assets = append(assets, r.asset)
	}

	sort.Slice(assets, func(i, j int) bool { return assets[i].Name < assets[j].Name })
	return assets, nil
}

// extractOne renders a single binding's region with bounded retries.
func (e *Extractor) extractOne(ctx context.Context, b *binding.Binding) (*Asset, error) {
	var data []byte
	err := retry.Do(
		func() error {
			var renderErr error
			data, renderErr = e.src.RenderRegion(ctx, b.PageIndex, b.Region, e.scale)
			return renderErr
		},
		retry.Context(ctx),
		retry.Attempts(e.attempts),
		retry.Delay(100*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("render region: %w", err)
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode rendered image: %w", err)
	}

	return &Asset{
		Name:         b.AssetName,
		PageIndex:    b.PageIndex,
		SourceRegion: b.Region,
		ScaleFactor:  e.scale,
		Width:        cfg.Width,
		Height:       cfg.Height,
		Data:         data,
	}, nil
}
