// Package extraction converts item payloads into plain text.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/JaimeStill/scribe/internal/items"
)

var (
	ErrUnsupported  = errors.New("unsupported document type")
	ErrTooLarge     = errors.New("document exceeds maximum size")
	ErrTooManyPages = errors.New("document exceeds maximum page count")
)

// Extractor returns the plain text of a source. An empty result is valid
// from the extractor's point of view; callers decide what it means.
type Extractor interface {
	Extract(ctx context.Context, src items.Source) (string, error)
}

// Dispatcher routes a source to an extractor by file extension.
type Dispatcher struct {
	byExt  map[string]Extractor
	logger *slog.Logger
}

// New creates a dispatcher with the PDF and plain text extractors registered.
func New(cfg *Config, logger *slog.Logger) *Dispatcher {
	d := &Dispatcher{
		byExt:  make(map[string]Extractor),
		logger: logger.With("system", "extraction"),
	}

	text := &Text{maxBytes: cfg.MaxSizeBytes()}
	d.Register(&PDF{maxBytes: cfg.MaxSizeBytes(), maxPages: cfg.MaxPages}, ".pdf")
	d.Register(text, ".txt", ".md", ".markdown")
	return d
}

// Register binds an extractor to one or more extensions, replacing any
// existing binding.
func (d *Dispatcher) Register(e Extractor, exts ...string) {
	for _, ext := range exts {
		d.byExt[strings.ToLower(ext)] = e
	}
}

// Supports reports whether a file name has a registered extractor.
func (d *Dispatcher) Supports(name string) bool {
	_, ok := d.byExt[strings.ToLower(filepath.Ext(name))]
	return ok
}

func (d *Dispatcher) Extract(ctx context.Context, src items.Source) (string, error) {
	ext := strings.ToLower(filepath.Ext(src.Name()))

	e, ok := d.byExt[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}

	text, err := e.Extract(ctx, src)
	if err != nil {
		d.logger.WarnContext(ctx, "extraction failed", "name", src.Name(), "error", err)
		return "", err
	}

	d.logger.DebugContext(ctx, "extracted text", "name", src.Name(), "chars", len(text))
	return text, nil
}

func readAll(src items.Source, maxBytes int64) ([]byte, error) {
	r, err := src.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", src.Name(), err)
	}
	defer r.Close()

	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src.Name(), err)
	}
	if int64(len(data)) > maxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}
