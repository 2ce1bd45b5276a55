// Package payment talks to the Paystack transaction API. Every call is a
// single synchronous request; nothing is retried.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/chibyk-cyber/pro-shop/internal/metrics"
)

const maxResponseBody = 1 << 20

type Config struct {
	BaseURL   string
	SecretKey string
	Timeout   time.Duration
}

type Client struct {
	baseURL string
	secret  string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
	log     *slog.Logger
}

func NewClient(cfg Config, log *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	log = log.With(slog.String("component", "payment"))

	settings := gobreaker.Settings{
		Name:        "paystack",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed", slog.String("breaker", name), slog.String("from", from.String()), slog.String("to", to.String()))
		},
		// A caller that gave up says nothing about the provider.
		IsExcluded: func(err error) bool {
			return errors.Is(err, errCallerGone)
		},
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		secret:  cfg.SecretKey,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: gobreaker.NewCircuitBreaker[*http.Response](settings),
		log:     log,
	}
}

// Initialize asks the provider for a hosted checkout page for req.
func (c *Client) Initialize(ctx context.Context, req TransactionRequest) (*Initialization, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &TransactionInitError{Err: fmt.Errorf("marshal request: %w", err)}
	}

	status, payload, err := c.do(ctx, "initialize", http.MethodPost, c.baseURL+"/transaction/initialize", body)
	if err != nil {
		return nil, &TransactionInitError{Err: err}
	}
	if status < 200 || status > 299 {
		return nil, &TransactionInitError{StatusCode: status, Body: string(payload)}
	}

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, &TransactionInitError{StatusCode: status, Body: string(payload), Err: fmt.Errorf("decode response: %w", err)}
	}
	var started Initialization
	if err := json.Unmarshal(env.Data, &started); err != nil || started.AuthorizationURL == "" || started.Reference == "" {
		return nil, &TransactionInitError{StatusCode: status, Body: string(payload), Err: errors.New("response has no authorization url or reference")}
	}
	return &started, nil
}

// Verify fetches the current state of the transaction identified by reference.
func (c *Client) Verify(ctx context.Context, reference string) (*Verification, error) {
	if reference == "" {
		return nil, &TransactionVerifyError{Err: errors.New("empty reference")}
	}
	endpoint := c.baseURL + "/transaction/verify/" + url.PathEscape(reference)

	status, payload, err := c.do(ctx, "verify", http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &TransactionVerifyError{Reference: reference, Err: err}
	}
	if status < 200 || status > 299 {
		return nil, &TransactionVerifyError{Reference: reference, StatusCode: status, Body: string(payload)}
	}

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, &TransactionVerifyError{Reference: reference, StatusCode: status, Body: string(payload), Err: fmt.Errorf("decode response: %w", err)}
	}
	var data verifyData
	if err := json.Unmarshal(env.Data, &data); err != nil || data.Status == "" {
		return nil, &TransactionVerifyError{Reference: reference, StatusCode: status, Body: string(payload), Err: errors.New("response has no transaction status")}
	}

	v := &Verification{
		Reference:   reference,
		Status:      data.Status,
		AmountMinor: data.Amount,
		Currency:    data.Currency,
		PaidAt:      parsePaidAt(data.PaidAt),
		Metadata:    parseMetadata(data.Metadata),

		CustomerEmail: data.Customer.Email,
	}
	if data.Reference != "" && data.Reference != reference {
		c.log.WarnContext(ctx, "provider echoed a different reference", slog.String("asked", reference), slog.String("got", data.Reference))
	}
	return v, nil
}

// do sends one request through the breaker and returns the status code and
// the (size limited) body. Provider 5xx responses count as breaker failures.
func (c *Client) do(ctx context.Context, op, method, endpoint string, body []byte) (int, []byte, error) {
	start := time.Now()
	defer func() {
		metrics.ProviderLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		var rdr io.Reader
		if body != nil {
			rdr = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, rdr)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.secret)
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %w", errCallerGone, err)
			}
			return nil, err
		}
		if resp.StatusCode >= 500 {
			return resp, errProviderUnavailable
		}
		return resp, nil
	})
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil && !errors.Is(err, errProviderUnavailable) {
		c.log.WarnContext(ctx, "provider request failed", slog.String("op", op), slog.String("error", err.Error()))
		return 0, nil, err
	}

	payload, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if readErr != nil {
		return 0, nil, fmt.Errorf("read response: %w", readErr)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.WarnContext(ctx, "provider rejected request", slog.String("op", op), slog.Int("status", resp.StatusCode))
	}
	return resp.StatusCode, payload, nil
}

var (
	errProviderUnavailable = errors.New("provider unavailable")
	errCallerGone          = errors.New("request abandoned by caller")
)
