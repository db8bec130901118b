package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"xdao.co/cnftmint/metrics"
)

const (
	DefaultTimeout          = 10 * time.Second
	DefaultMaxDocumentBytes = 1 << 20
)

// Client performs the two kinds of gateway request the resolver needs: a
// document fetch and a lightweight existence probe.
//
// Reachability is not validity. Callers that can verify bytes (raw CIDs)
// should still do so.
type Client struct {
	http     *http.Client
	maxBytes int64
	log      *zap.Logger
	metrics  *metrics.Metrics
}

type Options struct {
	// HTTP overrides the HTTP client. If nil, a client with Timeout is used.
	HTTP *http.Client
	// Timeout bounds each individual request when HTTP is nil.
	Timeout time.Duration
	// MaxDocumentBytes caps fetched document size. 0 uses DefaultMaxDocumentBytes.
	MaxDocumentBytes int64

	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

func NewClient(opts Options) *Client {
	hc := opts.HTTP
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	limit := opts.MaxDocumentBytes
	if limit <= 0 {
		limit = DefaultMaxDocumentBytes
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{http: hc, maxBytes: limit, log: log, metrics: opts.Metrics}
}

// Fetch GETs url and returns the body of a 2xx response.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	b, err := c.fetch(ctx, url)
	c.metrics.Probe(metrics.OpFetch, err == nil)
	if err != nil {
		c.log.Debug("gateway fetch failed", zap.String("url", url), zap.Error(err))
	}
	return b, err
}

func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{URL: url, Code: resp.StatusCode}
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if int64(len(b)) > c.maxBytes {
		return nil, ErrTooLarge
	}
	return b, nil
}

// Probe reports whether url exists without downloading its body.
//
// HEAD is tried first. Gateways that refuse HEAD (405, 501) get a one-byte
// ranged GET instead.
func (c *Client) Probe(ctx context.Context, url string) error {
	err := c.probe(ctx, url)
	c.metrics.Probe(metrics.OpProbe, err == nil)
	if err != nil {
		c.log.Debug("gateway probe failed", zap.String("url", url), zap.Error(err))
	}
	return err
}

func (c *Client) probe(ctx context.Context, url string) error {
	code, err := c.do(ctx, http.MethodHead, url, nil)
	if err != nil {
		return err
	}
	if code == http.StatusMethodNotAllowed || code == http.StatusNotImplemented {
		code, err = c.do(ctx, http.MethodGet, url, map[string]string{"Range": "bytes=0-0"})
		if err != nil {
			return err
		}
	}
	if code < 200 || code > 299 {
		return &StatusError{URL: url, Code: code}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, url string, header map[string]string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, err
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
	return resp.StatusCode, nil
}
