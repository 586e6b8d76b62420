package storage

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"docflow/internal/config"
)

// azureBlobStorage implements Storage against Azure Blob Storage.
// Presigned URLs are SAS tokens signed with the account key.
type azureBlobStorage struct {
	client    *azblob.Client
	cred      *azblob.SharedKeyCredential
	container string
	logger    *slog.Logger
}

// NewAzureBlob creates an Azure Blob-backed Storage from a connection string.
// The connection string must include AccountName and AccountKey.
func NewAzureBlob(cfg config.AzureBlobConfig, logger *slog.Logger) (Storage, error) {
	if cfg.ConnectionString == "" {
		return nil, misconfigured(ProviderAzureBlob, "connection string is required")
	}
	if cfg.Container == "" {
		return nil, misconfigured(ProviderAzureBlob, "container is required")
	}

	parts := parseConnectionString(cfg.ConnectionString)
	name, key := parts["accountname"], parts["accountkey"]
	if name == "" || key == "" {
		return nil, misconfigured(ProviderAzureBlob, "connection string must contain AccountName and AccountKey")
	}
	cred, err := azblob.NewSharedKeyCredential(name, key)
	if err != nil {
		return nil, misconfigured(ProviderAzureBlob, "account key: %v", err)
	}

	client, err := azblob.NewClientFromConnectionString(cfg.ConnectionString, &azblob.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Transport: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		},
	})
	if err != nil {
		return nil, misconfigured(ProviderAzureBlob, "create client: %v", err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	return &azureBlobStorage{
		client:    client,
		cred:      cred,
		container: cfg.Container,
		logger:    logger,
	}, nil
}

// Init creates the container when it does not exist yet.
func (a *azureBlobStorage) Init(ctx context.Context) error {
	_, err := a.client.CreateContainer(ctx, a.container, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return fmt.Errorf("create container %s: %w", a.container, err)
	}
	a.logger.Info("storage container ready", "container", a.container)
	return nil
}

func (a *azureBlobStorage) PresignUpload(ctx context.Context, key, contentType string, size int64, expiry time.Duration) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	perms := sas.BlobPermissions{Create: true, Write: true}
	return a.signURL(key, perms.String(), expiry)
}

func (a *azureBlobStorage) PresignDownload(ctx context.Context, key string, expiry time.Duration) (string, error) {
	ok, err := a.Exists(ctx, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrNotFound
	}
	perms := sas.BlobPermissions{Read: true}
	return a.signURL(key, perms.String(), expiry)
}

func (a *azureBlobStorage) signURL(key, permissions string, expiry time.Duration) (string, error) {
	now := time.Now().UTC()
	values := sas.BlobSignatureValues{
		Protocol:      sas.ProtocolHTTPS,
		StartTime:     now.Add(-5 * time.Minute),
		ExpiryTime:    now.Add(expiry),
		Permissions:   permissions,
		ContainerName: a.container,
		BlobName:      key,
	}
	qp, err := values.SignWithSharedKey(a.cred)
	if err != nil {
		return "", fmt.Errorf("sign sas %s: %w", key, err)
	}
	return a.blobURL(key) + "?" + qp.Encode(), nil
}

func (a *azureBlobStorage) blobURL(key string) string {
	return a.client.ServiceClient().NewContainerClient(a.container).NewBlobClient(key).URL()
}

func (a *azureBlobStorage) Exists(ctx context.Context, key string) (bool, error) {
	md, err := a.Metadata(ctx, key)
	if err != nil {
		return false, err
	}
	return md.Exists, nil
}

func (a *azureBlobStorage) Metadata(ctx context.Context, key string) (ObjectMetadata, error) {
	if err := validateKey(key); err != nil {
		return ObjectMetadata{}, err
	}
	props, err := a.client.
		ServiceClient().
		NewContainerClient(a.container).
		NewBlobClient(key).
		GetProperties(ctx, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return ObjectMetadata{}, nil
		}
		return ObjectMetadata{}, fmt.Errorf("get blob properties %s: %w", key, err)
	}
	md := ObjectMetadata{Exists: true}
	if props.ContentLength != nil {
		size := *props.ContentLength
		md.SizeBytes = &size
	}
	return md, nil
}

func (a *azureBlobStorage) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	_, err := a.client.DeleteBlob(ctx, a.container, key, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.BlobNotFound) {
		return fmt.Errorf("delete blob %s: %w", key, err)
	}
	return nil
}

// parseConnectionString splits "Key=Value;Key=Value" pairs. Keys are lower-cased;
// values keep any '=' padding they contain.
func parseConnectionString(cs string) map[string]string {
	out := make(map[string]string)
	for _, part := range strings.Split(cs, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		out[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return out
}
