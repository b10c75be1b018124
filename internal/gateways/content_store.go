package gateways

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pixelgenesis/credential-node/internal/config"
	"github.com/pixelgenesis/credential-node/internal/core/domain"
	"github.com/pixelgenesis/credential-node/internal/log"
	"github.com/pixelgenesis/credential-node/pkg/http"
)

const (
	ipfsProtocolPrefix = "ipfs://"
	pinataRetries      = 2
	pinataTimeout      = 60 * time.Second
)

// uploader is one content store backend
type uploader interface {
	name() string
	add(ctx context.Context, data []byte, meta domain.ContentMetadata) (*domain.ContentUpload, error)
}

// ContentStore uploads documents to ipfs through the configured backends and reads them back
// through the local node and the public gateways
type ContentStore struct {
	local    *localNode
	mirror   uploader
	chain    []uploader
	client   *http.Client
	primary  string
	public   []string
	timeout  time.Duration
	observer func(backend string, err error)
}

// NewContentStore selects the backends enabled by cfg. The chain always ends with the mock
// backend so an upload never fails for lack of configuration.
func NewContentStore(cfg config.IPFS) *ContentStore {
	cs := &ContentStore{
		client:  http.NewClient(cfg.DownloadTimeout, 0),
		primary: cfg.GatewayURL,
		public:  cfg.PublicGateways,
		timeout: cfg.DownloadTimeout,
	}

	var p uploader
	if cfg.PinataConfigured() {
		p = newPinata(http.NewClient(pinataTimeout, pinataRetries), cfg.PinataURL, cfg.PinataAPIKey, cfg.PinataSecretKey)
	}

	if cfg.UseLocalNode {
		cs.local = newLocalNode(cfg.LocalNodeURL(), cfg.DownloadTimeout)
		cs.chain = append(cs.chain, cs.local)
		cs.mirror = p
	}
	if p != nil {
		cs.chain = append(cs.chain, p)
	}
	cs.chain = append(cs.chain, mockStore{})
	return cs
}

// WithObserver registers a function called after every backend attempt
func (cs *ContentStore) WithObserver(fn func(backend string, err error)) *ContentStore {
	cs.observer = fn
	return cs
}

// Backends returns the names of the upload backends in the order they are tried
func (cs *ContentStore) Backends() []string {
	names := make([]string, 0, len(cs.chain))
	for _, u := range cs.chain {
		names = append(names, u.name())
	}
	return names
}

// Upload stores data in the first backend that accepts it
func (cs *ContentStore) Upload(ctx context.Context, data []byte, meta domain.ContentMetadata) (*domain.ContentUpload, error) {
	var errs []error
	for _, u := range cs.chain {
		res, err := u.add(ctx, data, meta)
		cs.observe(u.name(), err)
		if err != nil {
			log.Warn(ctx, "content store backend failed, trying next one", "backend", u.name(), "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", u.name(), err))
			continue
		}
		log.Info(ctx, "content uploaded", "backend", u.name(), "cid", res.CID, "size", res.Size)
		if u.name() == domain.BackendLocalNode {
			cs.mirrorUpload(ctx, data, meta)
		}
		return res, nil
	}
	return nil, fmt.Errorf("%w: %w", ErrUploadFailed, errors.Join(errs...))
}

// mirrorUpload copies a locally pinned document to the pinning service. Failures are only logged.
func (cs *ContentStore) mirrorUpload(ctx context.Context, data []byte, meta domain.ContentMetadata) {
	if cs.mirror == nil {
		return
	}
	res, err := cs.mirror.add(ctx, data, meta)
	cs.observe(cs.mirror.name(), err)
	if err != nil {
		log.Warn(ctx, "pinata backup upload failed", "err", err)
		return
	}
	log.Debug(ctx, "content mirrored", "backend", cs.mirror.name(), "cid", res.CID)
}

// Download fetches the content from the local node, when enabled, and then from every public
// gateway in order. Each attempt is bounded by the download timeout.
func (cs *ContentStore) Download(ctx context.Context, cid string) ([]byte, error) {
	if cs.local != nil {
		data, err := cs.attempt(ctx, func(ctx context.Context) ([]byte, error) {
			return cs.local.cat(ctx, cid)
		})
		if err == nil {
			return data, nil
		}
		log.Warn(ctx, "local ipfs node download failed, trying gateways", "cid", cid, "err", err)
	}

	for _, gw := range cs.public {
		url := gw + cid
		data, err := cs.attempt(ctx, func(ctx context.Context) ([]byte, error) {
			return cs.client.Get(ctx, url, nil)
		})
		if err == nil {
			log.Debug(ctx, "content downloaded", "gateway", gw, "cid", cid)
			return data, nil
		}
		log.Warn(ctx, "gateway download failed", "gateway", gw, "cid", cid, "err", err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, ErrAllGatewaysFailed
}

func (cs *ContentStore) attempt(ctx context.Context, fn func(context.Context) ([]byte, error)) ([]byte, error) {
	if cs.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cs.timeout)
		defer cancel()
	}
	return fn(ctx)
}

func (cs *ContentStore) observe(backend string, err error) {
	if cs.observer != nil {
		cs.observer(backend, err)
	}
}

// GatewayURL returns the url of cid on the primary gateway
func (cs *ContentStore) GatewayURL(cid string) string {
	return cs.primary + cid
}

// AllGatewayURLs returns every url cid can be fetched from
func (cs *ContentStore) AllGatewayURLs(cid string) domain.GatewayURLs {
	public := make([]string, 0, len(cs.public))
	for _, gw := range cs.public {
		public = append(public, gw+cid)
	}
	return domain.GatewayURLs{
		Primary:     cs.GatewayURL(cid),
		Public:      public,
		ProtocolURI: ipfsProtocolPrefix + cid,
	}
}
