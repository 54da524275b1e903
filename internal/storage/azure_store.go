package storage

import (
	"context"
	"fmt"
	"path"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// AzureBlobSaver uploads export artifacts to an Azure Blob container.
type AzureBlobSaver struct {
	client    *azblob.Client
	container string
}

// NewAzureBlobSaver builds a saver using shared-key credentials.
func NewAzureBlobSaver(accountName, accountKey, container string) (*AzureBlobSaver, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("azure credential: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("azure client: %w", err)
	}

	return &AzureBlobSaver{client: client, container: container}, nil
}

// Save uploads the artifact as a blob named after the file.
func (s *AzureBlobSaver) Save(ctx context.Context, filename string, data []byte) error {
	if filename == "" {
		return fmt.Errorf("empty artifact filename")
	}
	blobName := path.Base(filename)
	if _, err := s.client.UploadBuffer(ctx, s.container, blobName, data, nil); err != nil {
		return fmt.Errorf("upload artifact %s: %w", blobName, err)
	}
	return nil
}
