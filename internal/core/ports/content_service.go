package ports

import (
	"context"

	"github.com/pixelgenesis/credential-node/internal/core/domain"
)

// UploadResult is returned by ContentService.Upload
type UploadResult struct {
	FileName       string
	ContentID      string
	ContentHash    string
	Size           int64
	TxnID          string
	CredentialID   *int64
	LedgerAnchored bool
	GatewayURL     string
	AllGateways    domain.GatewayURLs
}

// ContentService uploads and downloads documents
type ContentService interface {
	Upload(ctx context.Context, file *domain.File, account string) (*UploadResult, error)
	Download(ctx context.Context, cid string) ([]byte, error)
}
