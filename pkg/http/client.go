package http

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"

	"github.com/pixelgenesis/credential-node/internal/log"
)

// StatusError is returned when the remote answers with a non 2xx status
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return errors.Errorf("http request failed with status %v, error: %v", e.Code, e.Body).Error()
}

// Client represents default http client that can be used to send requests to third party services
type Client struct {
	base *http.Client
}

// NewClient returns new instance of custom client. retries is the number of extra attempts
// made by the transport on connection errors and 5xx answers. Zero disables retries.
func NewClient(timeout time.Duration, retries int) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = retries
	rc.Logger = nil
	return &Client{
		base: &http.Client{
			Timeout:   timeout,
			Transport: &retryablehttp.RoundTripper{Client: rc},
		},
	}
}

// Post send posts request to url with additional headers
func (c *Client) Post(ctx context.Context, url string, contentType string, body []byte, headers map[string]string) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	addRequestIDToHeader(ctx, request)
	request.Header.Set("Content-Type", contentType)
	for k, v := range headers {
		request.Header.Set(k, v)
	}

	return executeRequest(ctx, c, request)
}

// Get send request to url with requestID headers
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}

	addRequestIDToHeader(ctx, req)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return executeRequest(ctx, c, req)
}

// addRequestIDToHeader propagates the chi request id to the remote service
func addRequestIDToHeader(ctx context.Context, r *http.Request) {
	if requestID := middleware.GetReqID(ctx); requestID != "" {
		r.Header.Add(middleware.RequestIDHeader, requestID)
	}
}

// executeRequest contains common logic of request execution
func executeRequest(ctx context.Context, c *Client, r *http.Request) ([]byte, error) {
	resp, err := c.base.Do(r)
	if err != nil {
		return nil, err
	}

	defer func() {
		err := resp.Body.Close()
		if err != nil {
			log.Error(ctx, "can not close body", "err", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}
