// internal/source/transport.go
package source

import (
	"context"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const maxBackoff = 120 * time.Second

// Sleep blocks for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// limitTransport waits on the shared token bucket before every attempt.
type limitTransport struct {
	next    http.RoundTripper
	limiter *rate.Limiter
}

func (t *limitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}
	return t.next.RoundTrip(req)
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// checkRetry retries network errors and 429/502/503/504. Other 5xx answers
// are returned to the caller at once.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	return retryableStatus(resp.StatusCode), nil
}

func logRetry(_ retryablehttp.Logger, req *http.Request, attempt int) {
	if attempt == 0 {
		return
	}
	logrus.WithFields(logrus.Fields{
		"url":     req.URL.String(),
		"attempt": attempt,
	}).Debug("Retrying upstream request")
}

// newRetryClient builds the API client. Backoff doubles from minWait up to
// maxBackoff unless the answer carries Retry-After. When retries run out the
// last response is handed back unchanged.
func newRetryClient(limiter *rate.Limiter, timeout time.Duration, retries int, minWait time.Duration, backoff retryablehttp.Backoff) *http.Client {
	rc := retryablehttp.NewClient()
	rc.HTTPClient = &http.Client{
		Timeout:   timeout,
		Transport: &limitTransport{next: http.DefaultTransport, limiter: limiter},
	}
	rc.Logger = nil
	rc.RetryMax = retries
	rc.RetryWaitMin = minWait
	rc.RetryWaitMax = maxBackoff
	rc.CheckRetry = checkRetry
	rc.Backoff = backoff
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.RequestLogHook = logRetry
	return rc.StandardClient()
}
