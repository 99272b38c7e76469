// Package storage provides blob storage operations with an Azure Blob Storage implementation.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/JaimeStill/docket/pkg/lifecycle"
)

// System manages blob storage operations and lifecycle coordination.
// Every operation addresses a blob by container and key.
type System interface {
	// Start registers a startup hook that creates the configured containers.
	Start(lc *lifecycle.Coordinator) error
	// Upload streams data to a blob with the specified content type.
	Upload(ctx context.Context, container, key string, reader io.Reader, contentType string) error
	// Download returns a stream for the blob. The caller must close the reader.
	// Returns ErrNotFound if the blob does not exist.
	Download(ctx context.Context, container, key string) (io.ReadCloser, error)
	// Delete removes the blob. Returns ErrNotFound if the blob does not exist.
	Delete(ctx context.Context, container, key string) error
	// Exists reports whether the blob exists.
	Exists(ctx context.Context, container, key string) (bool, error)
	// List returns the keys of all blobs in the container.
	List(ctx context.Context, container string) ([]string, error)
	// Copy duplicates a blob into another container, preserving its content type.
	// Returns ErrNotFound if the source blob does not exist.
	Copy(ctx context.Context, srcContainer, srcKey, dstContainer, dstKey string) error
}

type azure struct {
	client     *azblob.Client
	containers []string
	logger     *slog.Logger
}

// New creates the storage system selected by cfg.Provider.
// The Azure client does not establish a connection until Start is called.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	if cfg.Provider == ProviderMemory {
		return NewMemory(cfg.Containers, logger), nil
	}

	client, err := newClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &azure{
		client:     client,
		containers: cfg.Containers.All(),
		logger:     logger.With("system", "storage"),
	}, nil
}

func newClient(cfg *Config) (*azblob.Client, error) {
	if cfg.ConnectionString != "" {
		return azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("azure credential: %w", err)
	}
	return azblob.NewClient(cfg.ServiceURL, cred, nil)
}

func (a *azure) Start(lc *lifecycle.Coordinator) error {
	a.logger.Info("starting storage system")

	lc.OnStartup(func() {
		for _, name := range a.containers {
			_, err := a.client.CreateContainer(lc.Context(), name, nil)
			if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
				a.logger.Error("storage container initialization failed", "container", name, "error", err)
				continue
			}
			a.logger.Info("storage container ready", "container", name)
		}
	})

	return nil
}

func (a *azure) Upload(ctx context.Context, container, key string, reader io.Reader, contentType string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	opts := &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: &contentType,
		},
	}

	_, err := a.client.UploadStream(ctx, container, key, reader, opts)
	if err != nil {
		return fmt.Errorf("upload blob %s/%s: %w", container, key, err)
	}

	return nil
}

func (a *azure) Download(ctx context.Context, container, key string) (io.ReadCloser, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	resp, err := a.client.DownloadStream(ctx, container, key, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("download blob %s/%s: %w", container, key, err)
	}

	return resp.Body, nil
}

func (a *azure) Delete(ctx context.Context, container, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	_, err := a.client.DeleteBlob(ctx, container, key, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete blob %s/%s: %w", container, key, err)
	}

	return nil
}

func (a *azure) Exists(ctx context.Context, container, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	blobClient := a.client.
		ServiceClient().
		NewContainerClient(container).
		NewBlobClient(key)

	_, err := blobClient.GetProperties(ctx, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("check blob existence %s/%s: %w", container, key, err)
	}

	return true, nil
}

func (a *azure) List(ctx context.Context, container string) ([]string, error) {
	keys := make([]string, 0)

	pager := a.client.NewListBlobsFlatPager(container, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list blobs %s: %w", container, err)
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name != nil {
				keys = append(keys, *item.Name)
			}
		}
	}

	return keys, nil
}

// Copy streams the source through this process rather than issuing a
// server-side copy, so it works across accounts and against Azurite
// without SAS configuration.
func (a *azure) Copy(ctx context.Context, srcContainer, srcKey, dstContainer, dstKey string) error {
	if err := validateKey(srcKey); err != nil {
		return err
	}
	if err := validateKey(dstKey); err != nil {
		return err
	}

	resp, err := a.client.DownloadStream(ctx, srcContainer, srcKey, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("copy blob %s/%s: %w", srcContainer, srcKey, err)
	}
	defer resp.Body.Close()

	contentType := "application/octet-stream"
	if resp.ContentType != nil {
		contentType = *resp.ContentType
	}

	return a.Upload(ctx, dstContainer, dstKey, resp.Body, contentType)
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
