// Package client fetches Atomic Data resources from their subject URLs.
package client

import (
	"context"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/soheilade/atomic-server/atomic"
	"github.com/soheilade/atomic-server/errors"
	"github.com/soheilade/atomic-server/internal/httpclient"
	"github.com/soheilade/atomic-server/internal/util"
	"github.com/soheilade/atomic-server/logger"
	"github.com/soheilade/atomic-server/parse"
	"github.com/soheilade/atomic-server/version"
)

// Defaults used when Options leaves a field zero.
const (
	DefaultTimeout = 10 * time.Second
	// MaxDocumentSize bounds how much of a response body is read.
	MaxDocumentSize int64 = 10 * 1024 * 1024
)

// Options configures a Client.
type Options struct {
	Timeout time.Duration
	// RequestsPerSecond limits fetches across all goroutines; <= 0 means unlimited.
	RequestsPerSecond float64
	// Burst is the limiter bucket size; values < 1 are treated as 1.
	Burst int
	// AllowPrivateNetworks disables SSRF protection for private and loopback addresses.
	AllowPrivateNetworks bool
	// MaxRedirects, when > 0, overrides the redirect limit.
	MaxRedirects int
	// MaxDocumentSize, when > 0, overrides the response body limit in bytes.
	MaxDocumentSize int64
	Logger          *zap.SugaredLogger
}

// Client fetches resources over HTTP, asking for AD3.
// It is safe for concurrent use.
type Client struct {
	http    *httpclient.SaferClient
	limiter *rate.Limiter
	maxSize int64
	logger  *zap.SugaredLogger
}

// New creates a client with SSRF protection.
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpOpts := httpclient.SaferClientOptions{BlockPrivateIP: util.Ptr(!opts.AllowPrivateNetworks)}
	if opts.MaxRedirects > 0 {
		httpOpts.MaxRedirects = util.Ptr(opts.MaxRedirects)
	}
	return NewWithHTTPClient(httpclient.NewSaferClientWithOptions(timeout, httpOpts), opts)
}

// NewWithHTTPClient creates a client around an existing SaferClient.
// Only the rate limit, document size limit and logger are taken from opts.
func NewWithHTTPClient(hc *httpclient.SaferClient, opts Options) *Client {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	maxSize := opts.MaxDocumentSize
	if maxSize <= 0 {
		maxSize = MaxDocumentSize
	}

	return &Client{
		http:    hc,
		limiter: limiter,
		maxSize: maxSize,
		logger:  log,
	}
}

// FetchAtoms retrieves the AD3 document served at url.
// Every failure is marked with errors.ErrFetch.
func (c *Client) FetchAtoms(ctx context.Context, url string) ([]atomic.Atom, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "rate limiter"), errors.ErrFetch)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "build request"), errors.ErrFetch)
	}
	req.Header.Set("Accept", parse.MediaType)
	req.Header.Set("User-Agent", version.Get().UserAgent())

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debugw("Fetch failed", logger.FieldURL, url, logger.FieldError, err)
		return nil, errors.Mark(err, errors.ErrFetch)
	}
	defer resp.Body.Close()

	c.logger.Debugw("Fetched",
		logger.FieldURL, url,
		logger.FieldStatus, resp.StatusCode,
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
	)

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewFetchError("%s returned status %d", url, resp.StatusCode)
	}

	// One byte past the limit tells a full document from a truncated one.
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxSize+1))
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "read response from %s", url), errors.ErrFetch)
	}
	if int64(len(body)) > c.maxSize {
		return nil, errors.NewFetchError("document at %s too large (limit %d bytes)", url, c.maxSize)
	}

	atoms, err := parse.ParseAD3(string(body))
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "parse response from %s", url), errors.ErrFetch)
	}
	return atoms, nil
}

// FetchResource retrieves subject and returns its own values. The document
// must describe the subject with at least one atom.
func (c *Client) FetchResource(ctx context.Context, subject string) (atomic.Resource, error) {
	atoms, err := c.FetchAtoms(ctx, subject)
	if err != nil {
		return atomic.Resource{}, err
	}

	r := atomic.Resource{Subject: subject}
	for _, a := range atoms {
		if a.Subject == subject {
			r.Values = append(r.Values, atomic.PropVal{Property: a.Property, Value: a.Value})
		}
	}
	if len(r.Values) == 0 {
		return atomic.Resource{}, errors.NewFetchError("document at %s has no atoms for that subject", subject)
	}
	return r, nil
}
