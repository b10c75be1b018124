package ports

import (
	"context"

	"github.com/pixelgenesis/credential-node/internal/core/domain"
)

// ContentStore stores and retrieves blobs by content identifier
type ContentStore interface {
	Upload(ctx context.Context, data []byte, meta domain.ContentMetadata) (*domain.ContentUpload, error)
	Download(ctx context.Context, cid string) ([]byte, error)
	GatewayURL(cid string) string
	AllGatewayURLs(cid string) domain.GatewayURLs
}
