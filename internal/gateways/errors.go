package gateways

import "errors"

var (
	// ErrAllGatewaysFailed is returned when the content could not be fetched from any source
	ErrAllGatewaysFailed = errors.New("all IPFS gateways failed")
	// ErrUploadFailed is returned when no content store backend accepted an upload
	ErrUploadFailed = errors.New("failed to upload to IPFS")
	// ErrLedgerUnavailable is returned by write operations on a ledger that is not configured
	ErrLedgerUnavailable = errors.New("ledger is not available")
	// ErrPinataNotConfigured when pinata credentials are missing
	ErrPinataNotConfigured = errors.New("pinata credentials not configured")
)
