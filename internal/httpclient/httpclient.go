// Package httpclient provides the scoped HTTP client used for every
// network fetch in the SDK assembler (spec §4.C): plain GET/HEAD,
// whole-file download with throttled progress events, redirect-cycle
// rejection, and an offline stub for CI/air-gapped runs.
package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/crossbuild/sdkgen/internal/logging"
	"github.com/crossbuild/sdkgen/internal/sdkerr"
)

// ProgressEvent reports download progress, emitted at most once per
// Throttle interval or once per ThrottleBytes transferred, whichever
// comes first.
type ProgressEvent struct {
	URL             string
	BytesRead       int64
	TotalBytes      int64 // -1 if unknown (no Content-Length)
}

// ProgressFunc receives throttled progress events. It must not block.
type ProgressFunc func(ProgressEvent)

// Client wraps *http.Client with the redirect/offline policy every
// caller in this module needs, instead of each call site
// reimplementing it. Failed requests are not retried.
type Client struct {
	http          *http.Client
	maxRedirects  int
	offline       bool
	throttle      time.Duration
	throttleBytes int64
}

// Option configures a Client at construction time.
type Option func(*Client)

// WithMaxRedirects bounds the number of redirect hops followed before
// giving up (spec §4.C: bounded, rejects cycles).
func WithMaxRedirects(n int) Option {
	return func(c *Client) { c.maxRedirects = n }
}

// WithOffline makes every request fail fast with sdkerr.DownloadFailed
// instead of touching the network, for the --offline CLI flag.
func WithOffline(offline bool) Option {
	return func(c *Client) { c.offline = offline }
}

// WithProgressThrottle overrides the default throttling window (1s or
// 1 MiB, whichever is hit first).
func WithProgressThrottle(interval time.Duration, bytes int64) Option {
	return func(c *Client) {
		c.throttle = interval
		c.throttleBytes = bytes
	}
}

// New builds a Client scoped to the caller; there is no global
// singleton, mirroring the rest of this module's acquire/use/release
// discipline for resources with a lifetime.
func New(opts ...Option) *Client {
	c := &Client{
		maxRedirects:  5,
		throttle:      time.Second,
		throttleBytes: 1 << 20,
	}
	for _, o := range opts {
		o(c)
	}
	c.http = &http.Client{
		Timeout: 0, // per-request deadlines come from ctx
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= c.maxRedirects {
				return fmt.Errorf("stopped after %d redirects", c.maxRedirects)
			}
			for _, prev := range via {
				if prev.URL.String() == req.URL.String() {
					return fmt.Errorf("redirect cycle detected at %s", req.URL)
				}
			}
			return nil
		},
	}
	return c
}

func (c *Client) checkOffline(target string) error {
	if c.offline {
		return &sdkerr.DownloadFailed{URL: target, Status: "offline mode: network access disabled"}
	}
	return nil
}

// Head performs an HTTP HEAD, mainly used to check Content-Length and
// existence before committing to a download.
func (c *Client) Head(ctx context.Context, target string) (*http.Response, error) {
	if err := c.checkOffline(target); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build HEAD request for %s: %w", target, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &sdkerr.DownloadFailed{URL: target, Status: err.Error()}
	}
	return resp, nil
}

// Get performs an HTTP GET and returns the response with the body
// still open; the caller owns closing it.
func (c *Client) Get(ctx context.Context, target string) (*http.Response, error) {
	if err := c.checkOffline(target); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build GET request for %s: %w", target, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &sdkerr.DownloadFailed{URL: target, Status: err.Error()}
	}
	if resp.StatusCode != http.StatusOK {
		status := resp.Status
		resp.Body.Close()
		return nil, &sdkerr.DownloadFailed{URL: target, Status: status}
	}
	return resp, nil
}

// DownloadFile streams target's body into destPath, invoking onProgress
// whenever the throttle interval has elapsed or the throttle byte count
// has been passed since the last event, whichever comes first.
// destPath's parent directory is created as needed.
func (c *Client) DownloadFile(ctx context.Context, target, destPath string, onProgress ProgressFunc) error {
	resp, err := c.Get(ctx, target)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := os.MkdirAll(parentDir(destPath), 0o755); err != nil {
		return fmt.Errorf("mkdir for %s: %w", destPath, err)
	}
	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", destPath, err)
	}
	defer f.Close()

	total := resp.ContentLength
	pr := &progressReader{
		r:        resp.Body,
		url:      target,
		total:    total,
		throttle: c.throttle,
		minBytes: c.throttleBytes,
		onEvent:  onProgress,
	}
	if _, err := io.Copy(f, pr); err != nil {
		return fmt.Errorf("download %s: %w", target, err)
	}
	return f.Close()
}

func parentDir(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' {
			return p[:i]
		}
	}
	return "."
}

// progressReader wraps an io.Reader, emitting throttled ProgressEvents
// as bytes flow through Read.
type progressReader struct {
	r        io.Reader
	url      string
	total    int64
	read     int64
	throttle time.Duration
	minBytes int64
	onEvent  ProgressFunc

	mu          sync.Mutex
	lastEmit    time.Time
	lastEmitN   int64
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.mu.Lock()
		p.read += int64(n)
		now := time.Now()
		if p.onEvent != nil && (now.Sub(p.lastEmit) >= p.throttle || p.read-p.lastEmitN >= p.minBytes) {
			p.lastEmit = now
			p.lastEmitN = p.read
			evt := ProgressEvent{URL: p.url, BytesRead: p.read, TotalBytes: p.total}
			p.mu.Unlock()
			p.onEvent(evt)
		} else {
			p.mu.Unlock()
		}
	}
	return n, err
}

// ValidURL reports whether s parses as an absolute http(s) URL, used to
// fail fast on malformed catalog entries before a request is attempted.
func ValidURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.IsAbs() && (u.Scheme == "http" || u.Scheme == "https")
}

// LogRequest writes a debug line for an outgoing request; callers that
// want this visibility call it explicitly rather than having it wired
// into every Get/Head, keeping those hot paths allocation-free when
// logging is disabled.
func LogRequest(method, target string) {
	logging.Get().Debug().Msgf("%s %s", method, target)
}
