package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Sender performs a single webhook delivery attempt over a pooled HTTP
// client. It deliberately does not retry: retrying, rescheduling, and the
// attempt ceiling are owned by the dispatch engine that drives delivery
// tasks. Zero value is not usable; use NewSender.
type Sender struct {
	// client is reused across requests for connection pooling
	client *http.Client
}

// NewSender creates a webhook sender with a default HTTP client. Pool sizes
// and timeouts balance responsiveness with tolerance for slow endpoints.
func NewSender() *Sender {
	return &Sender{
		client: &http.Client{
			Timeout: 30 * time.Second, // Per-request ceiling, tightened by WithTimeout
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// NewSenderWithClient creates a webhook sender with a custom HTTP client.
// Useful for custom transports, proxies, or testing.
func NewSenderWithClient(client *http.Client) *Sender {
	if client == nil {
		return NewSender()
	}
	return &Sender{client: client}
}

// Send delivers a payload to the callback URL as a JSON POST and reports the
// outcome of this one attempt. The data parameter is marshaled to JSON.
// Failures are classified: 4xx responses (except 408, 425, 429) wrap
// ErrPermanentFailure, everything else retryable wraps ErrTemporaryFailure.
func (s *Sender) Send(ctx context.Context, callbackURL string, data any, opts ...SendOption) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	if err := ValidateCallbackURL(callbackURL); err != nil {
		return err
	}
	if len(payload) == 0 {
		return fmt.Errorf("%w: payload cannot be empty", ErrInvalidPayload)
	}

	options := defaultSendOptions()
	for _, opt := range opts {
		opt(options)
	}

	client := s.client
	if options.httpClient != nil {
		client = options.httpClient
	}

	result, err := s.attemptDelivery(ctx, client, callbackURL, payload, options)
	if options.onDelivery != nil {
		options.onDelivery(result)
	}
	return err
}

// ValidateCallbackURL rejects URLs that can never be delivered to. Only http
// and https schemes are allowed, which also guards against SSRF via exotic
// schemes.
func ValidateCallbackURL(callbackURL string) error {
	if callbackURL == "" {
		return fmt.Errorf("%w: URL is required", ErrInvalidURL)
	}

	u, err := url.Parse(callbackURL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: only http and https schemes are supported", ErrInvalidURL)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: host is required", ErrInvalidURL)
	}
	return nil
}

// attemptDelivery makes the HTTP request with timing and error capture.
func (s *Sender) attemptDelivery(ctx context.Context, client *http.Client, callbackURL string, payload []byte, options *sendOptions) (DeliveryResult, error) {
	start := time.Now()
	result := DeliveryResult{}

	// Layer the per-attempt timeout on top of the parent context so both
	// constraints are respected.
	reqCtx, cancel := context.WithTimeout(ctx, options.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, callbackURL, bytes.NewReader(payload))
	if err != nil {
		result.Duration = time.Since(start)
		result.Error = err
		return result, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "hookrelay/1.0")

	for k, v := range options.headers {
		req.Header.Set(k, v)
	}

	if options.signatureSecret != "" {
		sigHeaders, err := SignPayload(options.signatureSecret, payload)
		if err != nil {
			result.Duration = time.Since(start)
			result.Error = err
			return result, fmt.Errorf("failed to sign payload: %w", err)
		}
		for k, v := range sigHeaders.Headers() {
			req.Header.Set(k, v)
		}
	}

	resp, err := client.Do(req)
	result.Duration = time.Since(start)

	if err != nil {
		result.Error = err
		if reqCtx.Err() == context.DeadlineExceeded {
			return result, fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		return result, fmt.Errorf("%w: %w", ErrTemporaryFailure, err)
	}

	defer func() { _ = resp.Body.Close() }()
	result.StatusCode = resp.StatusCode
	result.Success = resp.StatusCode >= 200 && resp.StatusCode < 300

	// Read a bounded slice of the response body for error context
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024*64))

	if !result.Success {
		errMsg := fmt.Sprintf("endpoint returned status %d", resp.StatusCode)
		if len(body) > 0 {
			// Flatten newlines so the message is safe to log on one line
			bodyStr := strings.ReplaceAll(string(body), "\n", " ")
			if len(bodyStr) > 200 {
				bodyStr = bodyStr[:200] + "..."
			}
			errMsg += fmt.Sprintf(": %s", bodyStr)
		}

		if isPermanentStatus(resp.StatusCode) {
			result.Error = fmt.Errorf("%w: %s", ErrPermanentFailure, errMsg)
		} else {
			result.Error = fmt.Errorf("%w: %s", ErrTemporaryFailure, errMsg)
		}
		return result, result.Error
	}

	return result, nil
}

// isPermanentStatus reports whether a status code indicates a failure that
// will not resolve with retries. Most 4xx codes are client-side mistakes;
// the exceptions represent transient server-side conditions.
func isPermanentStatus(statusCode int) bool {
	if statusCode < 400 || statusCode >= 500 {
		return false
	}
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooEarly, http.StatusTooManyRequests:
		return false
	default:
		return true
	}
}
