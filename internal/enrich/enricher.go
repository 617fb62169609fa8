// Package enrich fetches off-chain token JSON referenced by a metadata URI.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// ErrEnrichmentFailed wraps every failure of the off-chain fetch.
var ErrEnrichmentFailed = errors.New("enrichment failed")

// Keys with special meaning in the enrichment map.
const (
	WebsiteKey    = "website"
	DNSRecordsKey = "number of website dns records"
)

// Failure stages reported to a FailureRecorder.
const (
	StageHTTP = "http"
	StageJSON = "json"
	StageDNS  = "dns"
)

// Default limits.
const (
	DefaultTimeout      = 10 * time.Second
	DefaultDNSTimeout   = 5 * time.Second
	DefaultMaxBodySize  = 1 << 20
	DefaultMaxRedirects = 5
)

// Values are kept as their compact JSON text; number literals are preserved.
var json = jsoniter.Config{
	EscapeHTML:  false,
	SortMapKeys: true,
	UseNumber:   true,
}.Froze()

// Info maps off-chain keys to values.
type Info map[string]string

// Resolver looks up the addresses of a host. *net.Resolver satisfies it.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// FailureRecorder counts enrichment failures by stage.
type FailureRecorder interface {
	RecordEnrichmentFailure(stage string)
}

// Enricher performs the off-chain fetch. It is safe for concurrent use.
type Enricher struct {
	client       *fasthttp.Client
	resolver     Resolver
	timeout      time.Duration
	dnsTimeout   time.Duration
	maxRedirects int
	recorder     FailureRecorder
	logger       *zap.Logger
}

// Option configures Enricher.
type Option func(*Enricher)

// WithResolver replaces the DNS resolver.
func WithResolver(r Resolver) Option {
	return func(e *Enricher) {
		e.resolver = r
	}
}

// WithTimeout bounds the HTTP fetch.
func WithTimeout(d time.Duration) Option {
	return func(e *Enricher) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithDNSTimeout bounds the website lookup.
func WithDNSTimeout(d time.Duration) Option {
	return func(e *Enricher) {
		if d > 0 {
			e.dnsTimeout = d
		}
	}
}

// WithMaxBodySize caps the accepted response body in bytes.
func WithMaxBodySize(n int) Option {
	return func(e *Enricher) {
		if n > 0 {
			e.client.MaxResponseBodySize = n
		}
	}
}

// WithFailureRecorder reports failures to r.
func WithFailureRecorder(r FailureRecorder) Option {
	return func(e *Enricher) {
		e.recorder = r
	}
}

// New creates an Enricher.
func New(logger *zap.Logger, opts ...Option) *Enricher {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Enricher{
		client: &fasthttp.Client{
			Name:                "solana-token-info",
			MaxResponseBodySize: DefaultMaxBodySize,
		},
		resolver:     net.DefaultResolver,
		timeout:      DefaultTimeout,
		dnsTimeout:   DefaultDNSTimeout,
		maxRedirects: DefaultMaxRedirects,
		logger:       logger.Named("enrich"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich fetches uri and flattens a top-level JSON object into Info.
// A blank uri yields an empty map without any network call. Non-object JSON
// yields an empty map. A failed website lookup omits DNSRecordsKey.
func (e *Enricher) Enrich(ctx context.Context, uri string) (Info, error) {
	info := Info{}

	if isBlank(uri) {
		e.logger.Warn("Metadata does not include uri, website will not be retrieved")
		return info, nil
	}

	body, err := e.fetch(ctx, uri)
	if err != nil {
		e.record(StageHTTP)
		return nil, fmt.Errorf("%w: %w", ErrEnrichmentFailed, err)
	}

	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		e.record(StageJSON)
		return nil, fmt.Errorf("%w: parse JSON from %s: %v", ErrEnrichmentFailed, uri, err)
	}

	obj, ok := doc.(map[string]interface{})
	if !ok {
		e.logger.Debug("Off-chain document is not a JSON object", zap.String("uri", uri))
		return info, nil
	}

	for key, value := range obj {
		text, err := json.MarshalToString(value)
		if err != nil {
			e.record(StageJSON)
			return nil, fmt.Errorf("%w: encode value of %q: %v", ErrEnrichmentFailed, key, err)
		}
		info[key] = text
	}

	if website, ok := info[WebsiteKey]; ok {
		if _, isString := obj[WebsiteKey].(string); isString {
			e.countWebsiteRecords(ctx, website, info)
		} else {
			e.logger.Debug("Website value is not a string, skipping DNS lookup", zap.String("website", website))
		}
	}

	return info, nil
}

type fetchResult struct {
	body []byte
	err  error
}

// fetch GETs uri, following redirects, within the smaller of ctx's deadline and e.timeout.
// Cancelling ctx returns immediately; the request finishes in the background.
func (e *Enricher) fetch(ctx context.Context, uri string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timeout := e.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	e.logger.Debug("Fetching off-chain metadata", zap.String("uri", uri), zap.Duration("timeout", timeout))

	// Buffered so the goroutine never blocks after ctx is done.
	done := make(chan fetchResult, 1)
	go func() {
		body, err := e.do(uri, timeout)
		done <- fetchResult{body: body, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("get %s: %w", uri, ctx.Err())
	case res := <-done:
		return res.body, res.err
	}
}

// do runs one GET. req and resp never outlive the call.
func (e *Enricher) do(uri string, timeout time.Duration) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(uri)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	req.SetTimeout(timeout)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if err := e.client.DoRedirects(req, resp, e.maxRedirects); err != nil {
		return nil, fmt.Errorf("get %s: %w", uri, err)
	}

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		return nil, fmt.Errorf("get %s: unexpected status %d", uri, status)
	}

	// resp is released on return; copy the body out.
	return append([]byte(nil), resp.Body()...), nil
}

func (e *Enricher) countWebsiteRecords(ctx context.Context, website string, info Info) {
	host := websiteHost(website)
	if host == "" {
		e.logger.Warn("Website value has no host", zap.String("website", website))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, e.dnsTimeout)
	defer cancel()

	addrs, err := e.resolver.LookupIPAddr(ctx, host)
	if err != nil {
		e.record(StageDNS)
		e.logger.Warn("Website DNS lookup failed", zap.String("host", host), zap.Error(err))
		return
	}

	info[DNSRecordsKey] = strconv.Itoa(len(addrs))
}

func (e *Enricher) record(stage string) {
	if e.recorder != nil {
		e.recorder.RecordEnrichmentFailure(stage)
	}
}

// isBlank reports whether uri is empty or made only of NUL bytes.
func isBlank(uri string) bool {
	return strings.Trim(uri, "\x00") == ""
}

// websiteHost strips quotes, spaces, the https scheme, any path and any port from a website value.
func websiteHost(website string) string {
	host := strings.Trim(website, "\" ")
	host = strings.TrimPrefix(host, "https://")
	if i := strings.IndexByte(host, '/'); i >= 0 {
		host = host[:i]
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if host == "null" {
		return ""
	}
	return host
}
