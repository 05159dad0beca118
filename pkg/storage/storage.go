// Package storage provides blob storage operations with an Azure Blob Storage implementation.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// System manages blob storage operations for a single container.
type System interface {
	// EnsureContainer creates the container if it does not exist.
	EnsureContainer(ctx context.Context) error
	// Upload streams data to a blob at the given key with the specified content type.
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) error
	// URL returns the address of the blob at the given key.
	URL(key string) (string, error)
}

type azure struct {
	client    *azblob.Client
	container string
	base      *url.URL
	logger    *slog.Logger
}

// New creates a storage system that authenticates with the given token
// credential. No request is made until the first operation.
func New(cfg *Config, cred azcore.TokenCredential, logger *slog.Logger) (System, error) {
	base, err := url.Parse(cfg.ServiceURL)
	if err != nil {
		return nil, fmt.Errorf("parse service url: %w", err)
	}

	client, err := azblob.NewClient(cfg.ServiceURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &azure{
		client:    client,
		container: cfg.ContainerName,
		base:      base.JoinPath(cfg.ContainerName),
		logger:    logger.With("system", "storage"),
	}, nil
}

func (a *azure) EnsureContainer(ctx context.Context) error {
	_, err := a.client.CreateContainer(ctx, a.container, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
			return nil
		}
		return fmt.Errorf("create container %s: %w", a.container, err)
	}

	a.logger.Info("storage container created", "container", a.container)
	return nil
}

func (a *azure) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	opts := &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: &contentType,
		},
	}

	_, err := a.client.UploadStream(ctx, a.container, key, reader, opts)
	if err != nil {
		return fmt.Errorf("upload blob %s: %w", key, err)
	}

	return nil
}

func (a *azure) URL(key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	return a.base.JoinPath(key).String(), nil
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}
