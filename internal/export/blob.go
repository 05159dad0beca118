package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/google/uuid"

	"github.com/JaimeStill/scribe/internal/credentials"
	"github.com/JaimeStill/scribe/pkg/storage"
)

const blobContentType = "text/markdown; charset=utf-8"

var unsafeKeyChars = regexp.MustCompile(`[^a-z0-9]+`)

// Blob exports reports as markdown blobs in Azure Storage.
type Blob struct {
	cfg    *storage.Config
	logger *slog.Logger
	now    func() time.Time
}

// NewBlob creates an Azure Blob Storage target.
func NewBlob(cfg *storage.Config, logger *slog.Logger) *Blob {
	return &Blob{
		cfg:    cfg,
		logger: logger.With("system", "export", "target", TargetBlob),
		now:    time.Now,
	}
}

// Init checks the storage service answers. Any service response counts,
// since the anonymous probe is expected to be refused.
func (b *Blob) Init(ctx context.Context) error {
	client, err := azblob.NewClientWithNoCredential(b.cfg.ServiceURL, nil)
	if err != nil {
		return fmt.Errorf("create storage client: %w", err)
	}

	_, err = client.ServiceClient().GetProperties(ctx, nil)
	var re *azcore.ResponseError
	if err != nil && !errors.As(err, &re) {
		return fmt.Errorf("reach storage service: %w", err)
	}

	b.logger.Info("storage service reachable", "service_url", b.cfg.ServiceURL)
	return nil
}

func (b *Blob) Export(ctx context.Context, token credentials.Token, doc Document) (Result, error) {
	store, err := storage.New(b.cfg, bearer(token), b.logger)
	if err != nil {
		return Result{}, err
	}

	if err := store.EnsureContainer(ctx); err != nil {
		return Result{}, classifyBlob(err)
	}

	key := b.key(doc.Title)
	if err := store.Upload(ctx, key, strings.NewReader(doc.Body), blobContentType); err != nil {
		return Result{}, classifyBlob(err)
	}

	address, err := store.URL(key)
	if err != nil {
		return Result{}, err
	}

	b.logger.InfoContext(ctx, "report uploaded", "title", doc.Title, "key", key)
	return Result{ID: key, Address: address}, nil
}

func (b *Blob) key(title string) string {
	base := strings.TrimSuffix(strings.ToLower(title), ".pdf")
	slug := strings.Trim(unsafeKeyChars.ReplaceAllString(base, "-"), "-")
	if slug == "" {
		slug = "report"
	}
	return fmt.Sprintf(
		"%s/%s/%s-%s.md",
		b.cfg.Prefix,
		b.now().UTC().Format(time.DateOnly),
		slug,
		uuid.NewString()[:8],
	)
}

func classifyBlob(err error) error {
	if storage.IsAuthFailure(err) {
		return fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}
	return err
}

type bearer credentials.Token

func (t bearer) GetToken(context.Context, policy.TokenRequestOptions) (azcore.AccessToken, error) {
	return azcore.AccessToken{Token: t.AccessToken, ExpiresOn: t.Expiry}, nil
}
