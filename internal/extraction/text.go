package extraction

import (
	"context"
	"unicode/utf8"

	"github.com/JaimeStill/scribe/internal/items"
)

// Text passes UTF-8 documents through unchanged.
type Text struct {
	maxBytes int64
}

func (t *Text) Extract(ctx context.Context, src items.Source) (string, error) {
	data, err := readAll(src, t.maxBytes)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", ErrUnsupported
	}
	return string(data), ctx.Err()
}
