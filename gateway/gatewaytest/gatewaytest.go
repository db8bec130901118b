// Package gatewaytest provides in-process fake content gateways for tests.
//
// Each Gateway serves a fixed file set under /ipfs/ and can be switched into
// failure modes (down, HEAD refused) to exercise fallback paths.
package gatewaytest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

const prefix = "/ipfs/"

// Request is one request observed by a Gateway.
type Request struct {
	Method string
	Path   string
}

type Gateway struct {
	srv *httptest.Server

	mu       sync.Mutex
	files    map[string][]byte
	down     bool
	noHead   bool
	requests []Request
}

// New starts a Gateway and stops it when the test ends.
func New(t testing.TB) *Gateway {
	t.Helper()
	g := &Gateway{files: make(map[string][]byte)}
	g.srv = httptest.NewServer(http.HandlerFunc(g.serve))
	t.Cleanup(g.srv.Close)
	return g
}

// Cluster starts n gateways.
func Cluster(t testing.TB, n int) []*Gateway {
	t.Helper()
	out := make([]*Gateway, n)
	for i := range out {
		out[i] = New(t)
	}
	return out
}

// Prefixes returns the access-point prefixes of gws, in order.
func Prefixes(gws ...*Gateway) []string {
	out := make([]string, 0, len(gws))
	for _, g := range gws {
		out = append(out, g.Prefix())
	}
	return out
}

// Prefix is the access-point base URL, ending in "/ipfs/".
func (g *Gateway) Prefix() string { return g.srv.URL + prefix }

// Put serves body at contentPath (e.g. "CIDX/art.png").
func (g *Gateway) Put(contentPath string, body []byte) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.files[strings.TrimLeft(contentPath, "/")] = append([]byte(nil), body...)
}

// PutJSON serves the JSON encoding of v at contentPath.
func (g *Gateway) PutJSON(t testing.TB, contentPath string, v any) {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("gatewaytest: marshal %s: %v", contentPath, err)
	}
	g.Put(contentPath, b)
}

// SetDown makes every request fail with 503 while down is true.
func (g *Gateway) SetDown(down bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.down = down
}

// RefuseHEAD makes HEAD requests answer 405.
func (g *Gateway) RefuseHEAD(refuse bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.noHead = refuse
}

// Requests returns a copy of the requests seen so far.
func (g *Gateway) Requests() []Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Request(nil), g.requests...)
}

// Count returns the number of requests seen so far.
func (g *Gateway) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

func (g *Gateway) serve(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	g.requests = append(g.requests, Request{Method: r.Method, Path: r.URL.Path})
	down, noHead := g.down, g.noHead
	body, ok := g.files[strings.TrimPrefix(r.URL.Path, prefix)]
	g.mu.Unlock()

	switch {
	case down:
		http.Error(w, "gateway down", http.StatusServiceUnavailable)
		return
	case !strings.HasPrefix(r.URL.Path, prefix) || !ok:
		http.NotFound(w, r)
		return
	case r.Method == http.MethodHead && noHead:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if r.Method == http.MethodGet && r.Header.Get("Range") == "bytes=0-0" && len(body) > 0 {
		w.WriteHeader(http.StatusPartialContent)
		_, _ = w.Write(body[:1])
		return
	}
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}
	_, _ = w.Write(body)
}
