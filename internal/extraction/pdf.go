package extraction

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/JaimeStill/scribe/internal/items"
)

// PDF validates a document with pdfcpu and reads its text layer page by
// page with MuPDF.
type PDF struct {
	maxBytes int64
	maxPages int
}

func (p *PDF) Extract(ctx context.Context, src items.Source) (string, error) {
	data, err := readAll(src, p.maxBytes)
	if err != nil {
		return "", err
	}

	pages, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return "", fmt.Errorf("read pdf structure: %w", err)
	}
	if p.maxPages > 0 && pages > p.maxPages {
		return "", fmt.Errorf("%w: %d > %d", ErrTooManyPages, pages, p.maxPages)
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	var sb strings.Builder
	for page := range doc.NumPage() {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		text, err := doc.Text(page)
		if err != nil {
			return "", fmt.Errorf("read page %d: %w", page+1, err)
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(text)
	}

	return sb.String(), nil
}
