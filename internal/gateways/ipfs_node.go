package gateways

import (
	"bytes"
	"context"
	"io"
	"time"

	shell "github.com/ipfs/go-ipfs-api"

	"github.com/pixelgenesis/credential-node/internal/core/domain"
	"github.com/pixelgenesis/credential-node/internal/log"
)

// ipfsShell is the subset of the ipfs http api used by the local node backend
type ipfsShell interface {
	Add(r io.Reader, options ...shell.AddOpts) (string, error)
	Cat(path string) (io.ReadCloser, error)
}

// localNode stores content in a local ipfs daemon
type localNode struct {
	sh ipfsShell
}

// newLocalNode connects to the ipfs api listening at url
func newLocalNode(url string, timeout time.Duration) *localNode {
	sh := shell.NewShell(url)
	sh.SetTimeout(timeout)
	return &localNode{sh: sh}
}

func (n *localNode) name() string {
	return domain.BackendLocalNode
}

// add pins data on the local node
func (n *localNode) add(ctx context.Context, data []byte, _ domain.ContentMetadata) (*domain.ContentUpload, error) {
	cid, err := n.sh.Add(bytes.NewReader(data), shell.Pin(true))
	if err != nil {
		log.Warn(ctx, "local ipfs node add failed", "err", err)
		return nil, err
	}
	return &domain.ContentUpload{CID: cid, Size: int64(len(data)), Backend: domain.BackendLocalNode}, nil
}

// cat reads the content identified by cid. The shell has no context support so the read
// is abandoned, not cancelled, when ctx expires.
func (n *localNode) cat(ctx context.Context, cid string) ([]byte, error) {
	type result struct {
		data []byte
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		rc, err := n.sh.Cat(cid)
		if err != nil {
			ch <- result{err: err}
			return
		}
		defer func() {
			if err := rc.Close(); err != nil {
				log.Debug(ctx, "cannot close ipfs cat reader", "err", err)
			}
		}()
		data, err := io.ReadAll(rc)
		ch <- result{data: data, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.data, r.err
	}
}
