package verifier

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"verify-proxy/internal/domain"
)

const (
	defaultVerifyTimeout = 30 * time.Second
	userAgent            = "verify-proxy/1.0"
	timeoutErrorMessage  = "request aborted due to timeout"
)

// Verifier is the outbound verification port. Verify never returns an
// error; every failure mode is captured inside the result.
type Verifier interface {
	Verify(ctx context.Context, email string, key string) domain.VerificationResult
}

// UpstreamVerifier performs one bounded-timeout call per invocation against
// the remote verification endpoint. No retries.
type UpstreamVerifier struct {
	client   *resty.Client
	endpoint string
	timeout  time.Duration
}

func NewUpstreamVerifier(endpoint string, timeout time.Duration) (*UpstreamVerifier, error) {
	return NewUpstreamVerifierWithClient(endpoint, timeout, resty.New())
}

func NewUpstreamVerifierWithClient(endpoint string, timeout time.Duration, client *resty.Client) (*UpstreamVerifier, error) {
	trimmedEndpoint := strings.TrimSpace(endpoint)
	if trimmedEndpoint == "" {
		return nil, fmt.Errorf("upstream endpoint is required")
	}
	if _, err := url.ParseRequestURI(trimmedEndpoint); err != nil {
		return nil, fmt.Errorf("invalid upstream endpoint: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}

	if timeout <= 0 {
		timeout = defaultVerifyTimeout
	}
	client.SetRetryCount(0)

	return &UpstreamVerifier{
		client:   client,
		endpoint: trimmedEndpoint,
		timeout:  timeout,
	}, nil
}

func (v *UpstreamVerifier) Verify(ctx context.Context, email string, key string) domain.VerificationResult {
	if v == nil || v.client == nil {
		return domain.FailureResult(email, "verifier is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	callCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	response, err := v.client.R().
		SetContext(callCtx).
		SetHeader("User-Agent", userAgent).
		SetQueryParams(map[string]string{
			"email": email,
			"key":   key,
		}).
		Get(v.endpoint)
	if err != nil {
		if isTimeoutError(callCtx, err) {
			return domain.TimeoutResult(email, timeoutErrorMessage)
		}
		return domain.FailureResult(email, fmt.Sprintf("verification request failed: %v", err))
	}
	if response == nil {
		return domain.FailureResult(email, "upstream returned empty response")
	}

	// Any upstream response is a proxy-level success; a non-2xx status is
	// the upstream's verdict, not a transport failure.
	return domain.SuccessResult(email, response.StatusCode(), response.String())
}

func isTimeoutError(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if ctx != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
