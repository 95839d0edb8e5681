package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/docmind/expense-audit/internal/common"
)

// RemoteClient implements TextExtractor against an OCR HTTP service that
// accepts raw document bytes and returns the recognized text as JSON.
type RemoteClient struct {
	httpClient *http.Client
	baseURL    string
	retryOpts  common.RetryOptions
}

// NewRemoteClient creates a client for the OCR service at baseURL.
func NewRemoteClient(baseURL string, timeout time.Duration) (*RemoteClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: OCR service URL is required", common.ErrMissingConfig)
	}
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &RemoteClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		retryOpts: common.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: time.Second,
			MaxDelay:     10 * time.Second,
			Multiplier:   2.0,
		},
	}, nil
}

// ExtractText sends the document to the OCR service and returns the
// recognized text. Transient failures are retried; a 404 maps to
// ErrDocumentNotFound and other service errors to ErrProcessing.
func (c *RemoteClient) ExtractText(ctx context.Context, document []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	var text string
	err := common.WithRetry(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/ocr", bytes.NewReader(document))
		if err != nil {
			return &common.RetryableError{Err: err, Retryable: false}
		}
		req.Header.Set("Content-Type", contentType)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return &common.RetryableError{Err: fmt.Errorf("request failed: %w", err), Retryable: true}
		}
		defer func() { _ = resp.Body.Close() }()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return &common.RetryableError{Err: fmt.Errorf("failed to read response: %w", err), Retryable: true}
		}

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return &common.RetryableError{
				Err:       fmt.Errorf("%w: %s", common.ErrDocumentNotFound, string(body)),
				Retryable: false,
			}
		case resp.StatusCode >= 500:
			return &common.RetryableError{
				Err:       fmt.Errorf("%w: status %d: %s", common.ErrProcessing, resp.StatusCode, string(body)),
				Retryable: true,
			}
		case resp.StatusCode != http.StatusOK:
			return &common.RetryableError{
				Err:       fmt.Errorf("%w: status %d: %s", common.ErrProcessing, resp.StatusCode, string(body)),
				Retryable: false,
			}
		}

		var result struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(body, &result); err != nil {
			return &common.RetryableError{
				Err:       fmt.Errorf("%w: invalid response: %v", common.ErrProcessing, err),
				Retryable: false,
			}
		}

		text = result.Text
		return nil
	}, c.retryOpts)

	if err != nil {
		return "", err
	}

	return text, nil
}
