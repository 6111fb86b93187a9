package mailcow

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/resteretter/mailcow-monitor/pkg/model"
)

// ErrorKind classifies a failed API call so callers can branch on the cause
// instead of matching error strings.
type ErrorKind int

const (
	KindTransport ErrorKind = iota
	KindTimeout
	KindProtocol
	KindDecode
)

// Error is the uniform failure shape for all adapter calls. Exactly one of
// payload or error crosses the adapter boundary; nothing panics past it.
type Error struct {
	Kind       ErrorKind
	Op         string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("mailcow %s: %s", e.Op, e.Reason())
}

func (e *Error) Unwrap() error { return e.Err }

// Reason is the short human-readable classification carried into health
// states and summaries.
func (e *Error) Reason() string {
	switch e.Kind {
	case KindTimeout:
		return "timeout"
	case KindTransport:
		return fmt.Sprintf("connection error: %v", e.Err)
	case KindProtocol:
		return fmt.Sprintf("http error %d", e.StatusCode)
	default:
		return fmt.Sprintf("decode error: %v", e.Err)
	}
}

// Source supplies one cycle's raw monitoring data. The live client and the
// demo generator both implement it; the choice is made once at startup.
type Source interface {
	Probe(ctx context.Context) model.APIHealth
	Mailboxes(ctx context.Context) ([]model.RawMailbox, error)
	Forwardings(ctx context.Context) ([]model.RawForwarding, error)
	Mode() string
}

// HTTPClient matches net/http.Client Do signature for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config defines settings for the live Mailcow client.
type Config struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	VerifySSL bool
}

// Client issues authenticated reads against a Mailcow admin API. Each call is
// a single attempt; the polling loop provides retry-by-polling.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient HTTPClient
}

// New creates a live Mailcow client. A nil httpClient gets a default with the
// configured timeout and TLS verification setting.
func New(httpClient HTTPClient, cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if httpClient == nil {
		transport := http.DefaultTransport
		if !cfg.VerifySSL {
			transport = &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			}
		}
		httpClient = &http.Client{Timeout: timeout, Transport: transport}
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
	}
}

func (c *Client) Mode() string { return "live" }

// Probe checks upstream reachability via the version endpoint and reports the
// measured round trip. It never returns an error; failures become a critical
// health state.
func (c *Client) Probe(ctx context.Context) model.APIHealth {
	start := time.Now()
	var payload json.RawMessage
	err := c.get(ctx, "/status/version", &payload)
	elapsed := float64(time.Since(start).Microseconds()) / 1000

	health := model.APIHealth{
		Status:         model.StatusHealthy,
		ResponseTimeMs: elapsed,
		Timestamp:      time.Now().UTC(),
	}
	if err != nil {
		health.Status = model.StatusCritical
		health.ErrorMessage = reasonOf(err)
	}
	return health
}

// Mailboxes fetches the raw mailbox list, inactive entries included.
func (c *Client) Mailboxes(ctx context.Context) ([]model.RawMailbox, error) {
	var mailboxes []model.RawMailbox
	if err := c.get(ctx, "/mailbox/all", &mailboxes); err != nil {
		return nil, err
	}
	return mailboxes, nil
}

// Forwardings fetches the raw forwarding rule list.
func (c *Client) Forwardings(ctx context.Context) ([]model.RawForwarding, error) {
	var rules []model.RawForwarding
	if err := c.get(ctx, "/forwarding/all", &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &Error{Kind: KindTransport, Op: path, Err: err}
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		kind := KindTransport
		if isTimeout(err) {
			kind = KindTimeout
		}
		return &Error{Kind: kind, Op: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return &Error{Kind: KindProtocol, Op: path, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: KindDecode, Op: path, Err: err}
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func reasonOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Reason()
	}
	return err.Error()
}
