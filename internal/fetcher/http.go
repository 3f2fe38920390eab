package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/clearmeat/assessment/internal/models"
)

const (
	// maxResponseBytes bounds how much of a response body is ever read
	maxResponseBytes = 16 * 1024 * 1024

	// maxInlineBlobBytes is the cap above which embedded base64 blobs are
	// nulled out before a result is returned or cached
	maxInlineBlobBytes = 4 * 1024
)

// HTTPFetcher implements Service against the remote assessment endpoint
type HTTPFetcher struct {
	client  *http.Client
	baseURL string
	tokens  TokenSource
}

// NewHTTPFetcher creates an HTTP-based assessment fetcher. requestTimeout
// bounds connection setup and response headers; assessmentTimeout bounds
// the whole exchange, which is long because assessment generation is slow.
func NewHTTPFetcher(baseURL string, tokens TokenSource, requestTimeout, assessmentTimeout time.Duration) Service {
	return newHTTPFetcher(baseURL, tokens, requestTimeout, assessmentTimeout)
}

// newHTTPFetcher creates the concrete implementation
func newHTTPFetcher(baseURL string, tokens TokenSource, requestTimeout, assessmentTimeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: assessmentTimeout,
			Transport: &http.Transport{
				ResponseHeaderTimeout: requestTimeout,
			},
		},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		tokens:  tokens,
	}
}

// Fetch performs one network attempt for the given product identifier
func (f *HTTPFetcher) Fetch(ctx context.Context, productID string) (*models.AssessmentResult, error) {
	if productID == "" {
		return nil, models.ErrInvalidProductID
	}

	endpoint := fmt.Sprintf("%s/products/%s/assessment?format=compact", f.baseURL, url.PathEscape(productID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "ClearMeat-Assessment/1.0")

	// Authentication is optional for this endpoint class: a missing or
	// unreadable credential means the request goes out unauthenticated
	if f.tokens != nil {
		if token, err := f.tokens.CurrentToken(ctx); err == nil && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assessment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &models.HTTPStatusError{Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	result, err := decodeAssessment(ctx, body)
	if err != nil {
		return nil, err
	}

	result.ProductID = productID
	normalizeResult(result)
	return result, nil
}

// decodeAssessment unmarshals the payload in its own goroutine so decoding
// never blocks the calling goroutine past ctx cancellation
func decodeAssessment(ctx context.Context, body []byte) (*models.AssessmentResult, error) {
	type outcome struct {
		result *models.AssessmentResult
		err    error
	}

	done := make(chan outcome, 1)
	go func() {
		var result models.AssessmentResult
		if err := json.Unmarshal(body, &result); err != nil {
			done <- outcome{err: fmt.Errorf("%w: %v", models.ErrMalformedResponse, err)}
			return
		}
		done <- outcome{result: &result}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case out := <-done:
		return out.result, out.err
	}
}

// normalizeResult nulls out oversized inline binary fields so neither the
// caller nor the cache ever holds multi-megabyte blobs
func normalizeResult(result *models.AssessmentResult) {
	if result.ImageData != nil && len(*result.ImageData) > maxInlineBlobBytes {
		result.ImageData = nil
	}
	if result.ReportData != nil && len(*result.ReportData) > maxInlineBlobBytes {
		result.ReportData = nil
	}
}
