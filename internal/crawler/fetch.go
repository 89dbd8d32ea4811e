package crawler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"sjsage522/buildorderworker/helpers"
	"sjsage522/buildorderworker/logger"
	apperrors "sjsage522/buildorderworker/pkg/errors"
	"sjsage522/buildorderworker/services/cache"
)

// QueryParam is one query-string pair. Keys may repeat.
type QueryParam struct {
	Key   string
	Value string
}

// PageFetcher fetches a page body as text
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string, params []QueryParam) (string, error)
}

// FetcherOptions configures a Fetcher. A 429 fails only its own request
// unless BlockTime is positive; then it also sets BlockKey in Cache and
// later requests fail fast until the marker expires.
type FetcherOptions struct {
	Gate      *Gate
	Timeout   time.Duration
	Headers   http.Header
	Cache     cache.CacheService
	BlockKey  string
	BlockTime time.Duration
}

// Fetcher issues GET requests through a shared Gate. It owns an HTTP
// transport scoped to one crawl; Close releases its connections.
type Fetcher struct {
	gate      *Gate
	timeout   time.Duration
	headers   http.Header
	cacheSvc  cache.CacheService
	blockKey  string
	blockTime time.Duration
	transport *http.Transport
	client    *http.Client
	log       *logger.Logger
}

// NewFetcher creates a fetcher with its own transport
func NewFetcher(opts FetcherOptions) *Fetcher {
	gate := opts.Gate
	if gate == nil {
		gate = NewGate(1)
	}
	headers := opts.Headers
	if headers == nil {
		headers = helpers.DefaultHeaders()
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = gate.Limit()

	return &Fetcher{
		gate:      gate,
		timeout:   opts.Timeout,
		headers:   headers,
		cacheSvc:  opts.Cache,
		blockKey:  opts.BlockKey,
		blockTime: opts.BlockTime,
		transport: transport,
		client:    &http.Client{Transport: transport},
		log:       logger.ForFetcher(),
	}
}

// Fetch performs a GET on rawURL with params appended in order and
// returns the body decoded to UTF-8. It does not retry.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, params []QueryParam) (string, error) {
	target := BuildURL(rawURL, params)

	if err := f.gate.Acquire(ctx); err != nil {
		return "", apperrors.NewNetwork(target, "cancelled while waiting for a request slot", err)
	}
	defer f.gate.Release()

	if f.coolingDown() {
		return "", apperrors.NewCooldown(target)
	}

	reqCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target, nil)
	if err != nil {
		return "", apperrors.NewNetwork(target, "failed to create request", err)
	}
	req.Header = f.headers.Clone()

	f.log.Debug().Str("url", target).Int("in_flight", f.gate.InFlight()).Msg("GET")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", apperrors.NewNetwork(target, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		block := f.startCooldown(resp.Header.Get("Retry-After"))
		return "", apperrors.NewRateLimit(target, block)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", apperrors.NewStatus(target, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.NewNetwork(target, "failed to read response body", err)
	}

	text, err := helpers.DecodeToUTF8(body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", apperrors.NewParsing(target, "failed to decode body", err)
	}
	return text, nil
}

// Close releases the idle connections of the crawl's transport
func (f *Fetcher) Close() {
	f.transport.CloseIdleConnections()
}

func (f *Fetcher) cooldownEnabled() bool {
	return f.cacheSvc != nil && f.blockKey != "" && f.blockTime > 0
}

// coolingDown reports whether a rate-limit marker is active
func (f *Fetcher) coolingDown() bool {
	if !f.cooldownEnabled() {
		return false
	}
	_, err := f.cacheSvc.Get(f.blockKey)
	if err == nil {
		return true
	}
	if !errors.Is(err, cache.ErrMiss) {
		f.log.Debug().Err(err).Str("key", f.blockKey).Msg("cooldown lookup failed")
	}
	return false
}

// startCooldown records the rate-limit marker for blockTime, or for the
// server's Retry-After seconds when that is longer. It returns the block
// applied, zero when cooldowns are disabled.
func (f *Fetcher) startCooldown(retryAfter string) time.Duration {
	if !f.cooldownEnabled() {
		return 0
	}
	block := f.blockTime
	if secs, err := strconv.Atoi(retryAfter); err == nil && time.Duration(secs)*time.Second > block {
		block = time.Duration(secs) * time.Second
	}
	if err := f.cacheSvc.Set(f.blockKey, []byte(strconv.Itoa(int(block/time.Second))), block); err != nil {
		f.log.Warn().Err(err).Str("key", f.blockKey).Msg("failed to set cooldown marker")
		return 0
	}
	f.log.Warn().Dur("block", block).Msg("rate limited, pausing requests")
	return block
}

// BuildURL appends params to rawURL in the given order
func BuildURL(rawURL string, params []QueryParam) string {
	if len(params) == 0 {
		return rawURL
	}

	var b strings.Builder
	b.WriteString(rawURL)
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	for _, p := range params {
		b.WriteString(sep)
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
		sep = "&"
	}
	return b.String()
}
