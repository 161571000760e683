package upload

import (
	"context"

	"popreel/internal/credential"
	"popreel/internal/models"
)

// CredentialSource fetches a freshly signed upload credential.
type CredentialSource interface {
	Credential(ctx context.Context) (*credential.Credential, error)
}

// Transferer streams a file to external storage and returns its public URL.
// progress may be called from any goroutine but never after Transfer returns.
type Transferer interface {
	Transfer(ctx context.Context, req TransferRequest, progress func(sent, total int64)) (string, error)
}

// MetadataStore persists the committed video record.
type MetadataStore interface {
	CreateVideo(ctx context.Context, req *models.CreateVideoRequest) (*models.Video, error)
}
