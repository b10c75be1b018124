package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/pixelgenesis/credential-node/internal/common"
	"github.com/pixelgenesis/credential-node/internal/core/domain"
	"github.com/pixelgenesis/credential-node/internal/core/ports"
	"github.com/pixelgenesis/credential-node/internal/repositories"
	"github.com/pixelgenesis/credential-node/pkg/pubsub"
)

const (
	issuerAccount = "0xAbC0000000000000000000000000000000000001"
	ownerAccount  = "0xdef0000000000000000000000000000000000002"
	otherAccount  = "0x9990000000000000000000000000000000000003"
	publicURL     = "https://verify.example.org"
)

var errLedgerDown = errors.New("rpc unreachable")

// ledgerMock is a ports.Ledger driven by testify expectations
type ledgerMock struct {
	mock.Mock
}

func (l *ledgerMock) IssueIdentity(ctx context.Context, metadataRef, name, owner string) (*domain.LedgerReceipt, error) {
	args := l.Called(ctx, metadataRef, name, owner)
	return receiptArg(args)
}

func (l *ledgerMock) IssueCredential(ctx context.Context, contentID, contentHash, issuer, owner string) (*domain.LedgerReceipt, error) {
	args := l.Called(ctx, contentID, contentHash, issuer, owner)
	return receiptArg(args)
}

func (l *ledgerMock) RevokeCredential(ctx context.Context, contentHash, issuer string) (*domain.LedgerReceipt, error) {
	args := l.Called(ctx, contentHash, issuer)
	return receiptArg(args)
}

func (l *ledgerMock) ReadIdentity(ctx context.Context, owner string) (*domain.LedgerIdentity, error) {
	args := l.Called(ctx, owner)
	res, _ := args.Get(0).(*domain.LedgerIdentity)
	return res, args.Error(1)
}

func (l *ledgerMock) ReadCredential(ctx context.Context, contentHash string) (*domain.LedgerCredential, error) {
	args := l.Called(ctx, contentHash)
	res, _ := args.Get(0).(*domain.LedgerCredential)
	return res, args.Error(1)
}

func (l *ledgerMock) ReadTransaction(ctx context.Context, txnID string) (*domain.LedgerTransaction, error) {
	args := l.Called(ctx, txnID)
	res, _ := args.Get(0).(*domain.LedgerTransaction)
	return res, args.Error(1)
}

func receiptArg(args mock.Arguments) (*domain.LedgerReceipt, error) {
	res, _ := args.Get(0).(*domain.LedgerReceipt)
	return res, args.Error(1)
}

func anchoredReceipt(id int64, txnID string) *domain.LedgerReceipt {
	return &domain.LedgerReceipt{ID: common.ToPointer(id), TxnID: txnID}
}

// memoryStore is a ports.ContentStore keeping blobs in a map under their mock CID
type memoryStore struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	uploads int
	fail    error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{blobs: make(map[string][]byte)}
}

func (s *memoryStore) Upload(_ context.Context, data []byte, _ domain.ContentMetadata) (*domain.ContentUpload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads++
	if s.fail != nil {
		return nil, s.fail
	}
	cid := "Qm" + common.ContentHash(data)[:44]
	s.blobs[cid] = append([]byte(nil), data...)
	return &domain.ContentUpload{CID: cid, Size: int64(len(data)), Backend: domain.BackendMock}, nil
}

func (s *memoryStore) Download(_ context.Context, cid string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[cid]
	if !ok {
		return nil, errors.New("all IPFS gateways failed")
	}
	return data, nil
}

func (s *memoryStore) GatewayURL(cid string) string {
	return "https://gateway.example.org/ipfs/" + cid
}

func (s *memoryStore) AllGatewayURLs(cid string) domain.GatewayURLs {
	return domain.GatewayURLs{Primary: s.GatewayURL(cid), ProtocolURI: "ipfs://" + cid}
}

func (s *memoryStore) uploadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploads
}

type fixture struct {
	credentials ports.CredentialRepository
	users       ports.UserRepository
	audit       *repositories.AuditLogInMemory
	store       *memoryStore
	ledger      *ledgerMock
	publisher   *pubsub.Mock
	service     ports.CredentialService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		credentials: repositories.NewCredentialInMemory(),
		users:       repositories.NewUserInMemory(),
		audit:       repositories.NewAuditLogInMemory(),
		store:       newMemoryStore(),
		ledger:      &ledgerMock{},
		publisher:   pubsub.NewMock(),
	}
	f.service = NewCredential(f.credentials, f.audit, f.store, f.ledger, f.publisher, publicURL)
	return f
}

func (f *fixture) entries(eventType domain.EventType) []*domain.LogEntry {
	var res []*domain.LogEntry
	for _, e := range f.audit.Entries() {
		if e.EventType == eventType {
			res = append(res, e)
		}
	}
	return res
}

func issueRequest(contentID, hash string) *ports.IssueCredentialRequest {
	return &ports.IssueCredentialRequest{
		ContentID:   contentID,
		ContentHash: hash,
		Issuer:      issuerAccount,
		Owner:       ownerAccount,
		Title:       "Bachelor of Science",
		Category:    "diploma",
	}
}
