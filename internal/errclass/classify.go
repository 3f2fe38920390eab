// Package errclass classifies transport failures for the retry policy.
package errclass

import (
	"context"
	"errors"
	"net"
	"net/url"
	"os"

	"github.com/clearmeat/assessment/internal/models"
)

// Kind is the retry-relevant category of a transport failure
type Kind int

const (
	// KindOther covers failures that are neither timeouts nor HTTP statuses
	KindOther Kind = iota
	// KindTimeout covers deadline and network timeouts; the only retryable kind
	KindTimeout
	// KindHTTPStatus covers non-2xx responses; never retried
	KindHTTPStatus
)

// Classification is the result of classifying one failure
type Classification struct {
	Kind       Kind
	StatusCode int
}

// Classify determines how a fetch failure should be handled. The standard
// HTTP client wraps lower-level timeouts in a *url.Error, so one wrapper
// level is unwrapped explicitly before the timeout checks.
func Classify(err error) Classification {
	if err == nil {
		return Classification{Kind: KindOther}
	}

	var statusErr *models.HTTPStatusError
	if errors.As(err, &statusErr) {
		return Classification{Kind: KindHTTPStatus, StatusCode: statusErr.Code}
	}

	if isTimeout(err) {
		return Classification{Kind: KindTimeout}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && isTimeout(urlErr.Err) {
		return Classification{Kind: KindTimeout}
	}

	return Classification{Kind: KindOther}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return false
}
