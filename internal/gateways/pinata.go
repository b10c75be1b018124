package gateways

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/pixelgenesis/credential-node/internal/core/domain"
	"github.com/pixelgenesis/credential-node/internal/log"
	"github.com/pixelgenesis/credential-node/pkg/http"
)

const pinFileToIPFSPath = "/pinning/pinFileToIPFS"

type pinataMetadata struct {
	Name      string            `json:"name"`
	KeyValues map[string]string `json:"keyvalues,omitempty"`
}

type pinataOptions struct {
	CidVersion int `json:"cidVersion"`
}

type pinataResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

// pinata stores content through the pinata pinning api
type pinata struct {
	client    *http.Client
	baseURL   string
	apiKey    string
	secretKey string
}

func newPinata(client *http.Client, baseURL, apiKey, secretKey string) *pinata {
	return &pinata{
		client:    client,
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		secretKey: secretKey,
	}
}

func (p *pinata) name() string {
	return domain.BackendPinata
}

func (p *pinata) add(ctx context.Context, data []byte, meta domain.ContentMetadata) (*domain.ContentUpload, error) {
	if p.apiKey == "" || p.secretKey == "" {
		return nil, ErrPinataNotConfigured
	}

	body, contentType, err := p.form(data, meta)
	if err != nil {
		return nil, err
	}

	raw, err := p.client.Post(ctx, p.baseURL+pinFileToIPFSPath, contentType, body, map[string]string{
		"pinata_api_key":        p.apiKey,
		"pinata_secret_api_key": p.secretKey,
	})
	if err != nil {
		log.Warn(ctx, "pinata upload failed", "err", err)
		return nil, err
	}

	var resp pinataResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("cannot decode pinata response: %w", err)
	}
	if resp.IpfsHash == "" {
		return nil, fmt.Errorf("pinata response has no content identifier")
	}
	size := resp.PinSize
	if size == 0 {
		size = int64(len(data))
	}
	return &domain.ContentUpload{CID: resp.IpfsHash, Size: size, Backend: domain.BackendPinata}, nil
}

// form builds the multipart body expected by pinFileToIPFS
func (p *pinata) form(data []byte, meta domain.ContentMetadata) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	name := meta.Name
	if name == "" {
		name = "document"
	}
	fw, err := w.CreateFormFile("file", name)
	if err != nil {
		return nil, "", err
	}
	if _, err := fw.Write(data); err != nil {
		return nil, "", err
	}

	metadata, err := json.Marshal(pinataMetadata{Name: name, KeyValues: meta.KeyValues})
	if err != nil {
		return nil, "", err
	}
	if err := w.WriteField("pinataMetadata", string(metadata)); err != nil {
		return nil, "", err
	}
	options, err := json.Marshal(pinataOptions{CidVersion: 0})
	if err != nil {
		return nil, "", err
	}
	if err := w.WriteField("pinataOptions", string(options)); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
