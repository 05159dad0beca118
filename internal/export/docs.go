package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/discovery/v1"
	"google.golang.org/api/docs/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/JaimeStill/scribe/internal/credentials"
)

const docsAddressFormat = "https://docs.google.com/document/d/%s/edit"

// Docs exports reports as Google Docs documents.
type Docs struct {
	endpoint          string
	discoveryEndpoint string
	logger            *slog.Logger
}

// NewDocs creates a Google Docs target.
func NewDocs(cfg *DocsConfig, logger *slog.Logger) *Docs {
	return &Docs{
		endpoint:          cfg.Endpoint,
		discoveryEndpoint: cfg.DiscoveryEndpoint,
		logger:            logger.With("system", "export", "target", TargetDocs),
	}
}

// Init loads the Docs API discovery document.
func (d *Docs) Init(ctx context.Context) error {
	opts := []option.ClientOption{option.WithoutAuthentication()}
	if d.discoveryEndpoint != "" {
		opts = append(opts, option.WithEndpoint(d.discoveryEndpoint))
	}

	svc, err := discovery.NewService(ctx, opts...)
	if err != nil {
		return fmt.Errorf("create discovery client: %w", err)
	}

	desc, err := svc.Apis.GetRest("docs", "v1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("load docs discovery document: %w", err)
	}

	d.logger.Info("docs api discovered", "revision", desc.Revision)
	return nil
}

func (d *Docs) Export(ctx context.Context, token credentials.Token, doc Document) (Result, error) {
	opts := []option.ClientOption{
		option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: token.AccessToken,
			TokenType:   "Bearer",
			Expiry:      token.Expiry,
		})),
	}
	if d.endpoint != "" {
		opts = append(opts, option.WithEndpoint(d.endpoint))
	}

	svc, err := docs.NewService(ctx, opts...)
	if err != nil {
		return Result{}, fmt.Errorf("create docs client: %w", err)
	}

	created, err := svc.Documents.Create(&docs.Document{Title: doc.Title}).Context(ctx).Do()
	if err != nil {
		return Result{}, classifyDocs("create document", err)
	}
	if created.DocumentId == "" {
		return Result{}, ErrMissingDocumentID
	}

	update := &docs.BatchUpdateDocumentRequest{
		Requests: []*docs.Request{{
			InsertText: &docs.InsertTextRequest{
				Text:     doc.Body,
				Location: &docs.Location{Index: 1},
			},
		}},
	}
	if _, err := svc.Documents.BatchUpdate(created.DocumentId, update).Context(ctx).Do(); err != nil {
		return Result{}, classifyDocs("insert report", err)
	}

	result := Result{
		ID:      created.DocumentId,
		Address: fmt.Sprintf(docsAddressFormat, created.DocumentId),
	}
	d.logger.InfoContext(ctx, "document created", "title", doc.Title, "id", result.ID)
	return result, nil
}

func classifyDocs(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == http.StatusUnauthorized || strings.Contains(gerr.Body, "UNAUTHENTICATED") {
			return fmt.Errorf("%s: %w: %w", op, ErrUnauthenticated, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
