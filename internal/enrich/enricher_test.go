package enrich

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeResolver struct {
	mu    sync.Mutex
	hosts []string
	addrs []net.IPAddr
	err   error
}

func (r *fakeResolver) LookupIPAddr(_ context.Context, host string) ([]net.IPAddr, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hosts = append(r.hosts, host)
	if r.err != nil {
		return nil, r.err
	}
	return r.addrs, nil
}

type countingRecorder struct {
	mu     sync.Mutex
	stages map[string]int
}

func (c *countingRecorder) RecordEnrichmentFailure(stage string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stages == nil {
		c.stages = make(map[string]int)
	}
	c.stages[stage]++
}

func serveBody(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func TestEnrich_BlankURI(t *testing.T) {
	resolver := &fakeResolver{}
	e := New(zap.NewNop(), WithResolver(resolver))

	for _, uri := range []string{"", "\x00\x00\x00\x00"} {
		info, err := e.Enrich(context.Background(), uri)
		require.NoError(t, err)
		assert.Empty(t, info)
		assert.NotNil(t, info)
	}
	assert.Empty(t, resolver.hosts)
}

func TestEnrich_FlattensObject(t *testing.T) {
	server, hits := serveBody(t, http.StatusOK, `{"name":"USD Coin","decimals":6,"price":1.0,"tags":["stable","usd"],"extra":{"a":1}}`)

	e := New(zap.NewNop(), WithResolver(&fakeResolver{}))
	info, err := e.Enrich(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, Info{
		"name":     `"USD Coin"`,
		"decimals": "6",
		"price":    "1.0",
		"tags":     `["stable","usd"]`,
		"extra":    `{"a":1}`,
	}, info)
}

func TestEnrich_WebsiteDNSCount(t *testing.T) {
	server, _ := serveBody(t, http.StatusOK, `{"website":"https://example.test/about"}`)

	resolver := &fakeResolver{addrs: []net.IPAddr{
		{IP: net.ParseIP("192.0.2.1")},
		{IP: net.ParseIP("2001:db8::1")},
	}}
	e := New(zap.NewNop(), WithResolver(resolver))

	info, err := e.Enrich(context.Background(), server.URL)
	require.NoError(t, err)

	assert.Equal(t, []string{"example.test"}, resolver.hosts)
	assert.Equal(t, "2", info[DNSRecordsKey])
	assert.Equal(t, `"https://example.test/about"`, info[WebsiteKey])
}

func TestEnrich_WebsiteDNSFailureIsNotFatal(t *testing.T) {
	server, _ := serveBody(t, http.StatusOK, `{"website":"https://nowhere.invalid","symbol":"X"}`)

	rec := &countingRecorder{}
	e := New(zap.NewNop(),
		WithResolver(&fakeResolver{err: errors.New("no such host")}),
		WithFailureRecorder(rec),
	)

	info, err := e.Enrich(context.Background(), server.URL)
	require.NoError(t, err)

	_, ok := info[DNSRecordsKey]
	assert.False(t, ok)
	assert.Equal(t, `"X"`, info["symbol"])
	assert.Equal(t, 1, rec.stages[StageDNS])
}

func TestEnrich_NonObjectJSON(t *testing.T) {
	for _, body := range []string{`[1,2,3]`, `"just a string"`, `42`, `null`} {
		server, _ := serveBody(t, http.StatusOK, body)

		e := New(zap.NewNop())
		info, err := e.Enrich(context.Background(), server.URL)
		require.NoError(t, err, body)
		assert.Empty(t, info, body)
	}
}

func TestEnrich_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		stage  string
	}{
		{"not found", http.StatusNotFound, `{"error":"missing"}`, StageHTTP},
		{"server error", http.StatusInternalServerError, ``, StageHTTP},
		{"invalid json", http.StatusOK, `<html>nope</html>`, StageJSON},
		{"empty body", http.StatusOK, ``, StageJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := serveBody(t, tt.status, tt.body)

			rec := &countingRecorder{}
			e := New(zap.NewNop(), WithFailureRecorder(rec))

			info, err := e.Enrich(context.Background(), server.URL)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrEnrichmentFailed))
			assert.Nil(t, info)
			assert.Equal(t, 1, rec.stages[tt.stage])
		})
	}
}

func TestEnrich_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	e := New(zap.NewNop(), WithTimeout(time.Second))
	_, err := e.Enrich(context.Background(), url)
	assert.ErrorIs(t, err, ErrEnrichmentFailed)
}

func TestEnrich_CancelledContext(t *testing.T) {
	server, hits := serveBody(t, http.StatusOK, `{}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := New(zap.NewNop())
	_, err := e.Enrich(ctx, server.URL)
	assert.ErrorIs(t, err, ErrEnrichmentFailed)
	assert.Equal(t, int32(0), hits.Load())
}

func TestEnrich_CancelDuringFetch(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-time.After(3 * time.Second):
		}
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	rec := &countingRecorder{}
	e := New(zap.NewNop(), WithFailureRecorder(rec))

	start := time.Now()
	info, err := e.Enrich(ctx, server.URL)
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEnrichmentFailed)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, info)
	assert.Less(t, elapsed, time.Second)
	assert.Equal(t, 1, rec.stages[StageHTTP])
}

func TestEnrich_NonStringWebsiteSkipsDNS(t *testing.T) {
	for _, body := range []string{`{"website":null}`, `{"website":42}`, `{"website":{"url":"https://a.test"}}`} {
		server, _ := serveBody(t, http.StatusOK, body)
		resolver := &fakeResolver{addrs: []net.IPAddr{{IP: net.IPv4(192, 0, 2, 1)}}}
		e := New(zap.NewNop(), WithResolver(resolver))

		info, err := e.Enrich(context.Background(), server.URL)
		require.NoError(t, err, body)
		assert.Contains(t, info, WebsiteKey, body)
		assert.NotContains(t, info, DNSRecordsKey, body)
		assert.Empty(t, resolver.hosts, body)
	}
}

func TestEnrich_WebsiteWithPort(t *testing.T) {
	server, _ := serveBody(t, http.StatusOK, `{"website":"https://example.test:8443/app"}`)

	resolver := &fakeResolver{addrs: []net.IPAddr{{IP: net.IPv4(192, 0, 2, 1)}}}
	e := New(zap.NewNop(), WithResolver(resolver))

	info, err := e.Enrich(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "1", info[DNSRecordsKey])
	assert.Equal(t, []string{"example.test"}, resolver.hosts)
}

func TestWebsiteHost(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`"https://example.com"`, "example.com"},
		{` "https://example.com/path?q=1" `, "example.com"},
		{`"example.com"`, "example.com"},
		{`""`, ""},
		{`"https://a.b:8080/x"`, "a.b"},
		{`"example.com:443"`, "example.com"},
		{`"https://[2001:db8::1]:8443/"`, "2001:db8::1"},
		{`null`, ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, websiteHost(tt.in), tt.in)
	}
}
