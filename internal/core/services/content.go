package services

import (
	"context"
	"mime"
	"slices"
	"strings"
	"time"

	"github.com/pixelgenesis/credential-node/internal/common"
	"github.com/pixelgenesis/credential-node/internal/config"
	"github.com/pixelgenesis/credential-node/internal/core/domain"
	"github.com/pixelgenesis/credential-node/internal/core/ports"
	"github.com/pixelgenesis/credential-node/internal/log"
	"github.com/pixelgenesis/credential-node/internal/metrics"
)

// Content uploads documents to the content store and anchors their hash on the ledger
type Content struct {
	store  ports.ContentStore
	ledger ports.Ledger
	audit  recorder
	limits config.Upload
}

// NewContent - constructor
func NewContent(store ports.ContentStore, ledger ports.Ledger, auditRepo ports.AuditLogRepository, limits config.Upload) ports.ContentService {
	return &Content{
		store:  store,
		ledger: ledger,
		audit:  recorder{repo: auditRepo},
		limits: limits,
	}
}

// Upload stores file on behalf of account and records it on the ledger with account as
// issuer and owner
func (s *Content) Upload(ctx context.Context, file *domain.File, account string) (*ports.UploadResult, error) {
	if file == nil || len(file.Content) == 0 {
		return nil, newValidationError("no file uploaded")
	}
	if strings.TrimSpace(account) == "" {
		return nil, newValidationError("walletAddress is required")
	}
	if len(s.limits.AllowedTypes) > 0 && !slices.Contains(s.limits.AllowedTypes, mediaType(file.Type)) {
		return nil, newValidationError("invalid file type <%s>. Allowed: %s", file.Type, strings.Join(s.limits.AllowedTypes, ", "))
	}
	if s.limits.MaxBytes > 0 && int64(len(file.Content)) > s.limits.MaxBytes {
		return nil, newValidationError("file exceeds the maximum size of %d bytes", s.limits.MaxBytes)
	}

	hash := common.ContentHash(file.Content)
	entry := domain.NewLogEntry(domain.EventContentUploaded, account).
		WithDetail("fileName", file.Name).
		WithDetail("fileSize", len(file.Content))
	entry.ContentHash = hash

	upload, err := s.store.Upload(ctx, file.Content, domain.ContentMetadata{
		Name: file.Name,
		Type: file.Type,
		KeyValues: map[string]string{
			"uploadedBy": common.NormalizeAccount(account),
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		log.Error(ctx, "cannot upload document", "err", err, "file", file.Name)
		s.audit.record(ctx, entry.Failed(err))
		metrics.Operation("ipfs_upload", err)
		return nil, err
	}
	entry.ContentID = upload.CID

	res := &ports.UploadResult{
		FileName:    file.Name,
		ContentID:   upload.CID,
		ContentHash: hash,
		Size:        upload.Size,
		GatewayURL:  s.store.GatewayURL(upload.CID),
		AllGateways: s.store.AllGatewayURLs(upload.CID),
	}

	receipt, err := s.ledger.IssueCredential(ctx, upload.CID, hash, account, account)
	if err != nil {
		log.Warn(ctx, "ledger anchoring of upload failed, using a local transaction id", "err", err, "cid", upload.CID)
		metrics.LedgerFallback("upload")
		txnID, err := common.RandomTxnID()
		if err != nil {
			s.audit.record(ctx, entry.Failed(err))
			return nil, err
		}
		res.TxnID = txnID
	} else {
		if receipt.Fallback {
			metrics.LedgerFallback("upload")
		}
		res.TxnID = receipt.TxnID
		res.CredentialID = receipt.ID
		res.LedgerAnchored = !receipt.Fallback
	}
	entry.TxnID = res.TxnID

	s.audit.record(ctx, entry.WithDetail("backend", upload.Backend).WithDetail("ledgerAnchored", res.LedgerAnchored))
	metrics.Operation("ipfs_upload", nil)
	log.Info(ctx, "document uploaded", "cid", upload.CID, "backend", upload.Backend, "size", upload.Size)
	return res, nil
}

// Download reads the content identified by cid from the first source that answers
func (s *Content) Download(ctx context.Context, cid string) ([]byte, error) {
	if strings.TrimSpace(cid) == "" {
		return nil, newValidationError("contentId is required")
	}
	entry := domain.NewLogEntry(domain.EventContentDownloaded, "")
	entry.ContentID = cid

	data, err := s.store.Download(ctx, cid)
	if err != nil {
		log.Error(ctx, "cannot download document", "err", err, "cid", cid)
		s.audit.record(ctx, entry.Failed(err))
		metrics.Operation("ipfs_download", err)
		return nil, err
	}
	s.audit.record(ctx, entry.WithDetail("size", len(data)))
	metrics.Operation("ipfs_download", nil)
	return data, nil
}

// mediaType drops the parameters of a Content-Type value, so "text/plain; charset=utf-8" is
// matched as "text/plain".
func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt
}
