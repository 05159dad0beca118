// Package export publishes generated reports to an external document store.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/scribe/internal/credentials"
)

// ErrUnauthenticated marks an export rejected because the credential is no
// longer accepted by the remote store.
var ErrUnauthenticated = errors.New("export credential rejected")

// ErrMissingDocumentID marks a document creation response without an id.
var ErrMissingDocumentID = errors.New("created document has no id")

// Document is a report ready to publish.
type Document struct {
	Title string
	Body  string
}

// Result identifies the published document.
type Result struct {
	ID      string `json:"id"`
	Address string `json:"address"`
}

// Target is a remote document store.
type Target interface {
	// Init completes the asynchronous setup of the store's API client.
	Init(ctx context.Context) error
	// Export creates a document and returns its address.
	Export(ctx context.Context, token credentials.Token, doc Document) (Result, error)
}

// IsAuthFailure reports whether an export error was an authentication failure.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}

// New builds the target named in cfg.
func New(cfg *Config, logger *slog.Logger) (Target, error) {
	switch cfg.Target {
	case TargetDocs:
		return NewDocs(&cfg.Docs, logger), nil
	case TargetBlob:
		return NewBlob(&cfg.Blob, logger), nil
	default:
		return nil, fmt.Errorf("unknown export target %q", cfg.Target)
	}
}
