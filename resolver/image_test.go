package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xdao.co/cnftmint/cidutil"
	"xdao.co/cnftmint/contentref"
	"xdao.co/cnftmint/gateway"
	"xdao.co/cnftmint/gateway/gatewaytest"
)

// fakeFetcher serves a fixed URL set and records every call.
type fakeFetcher struct {
	docs   map[string][]byte
	exists map[string]bool
	calls  []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.calls = append(f.calls, "GET "+url)
	b, ok := f.docs[url]
	if !ok {
		return nil, gateway.ErrNotFound
	}
	return b, nil
}

func (f *fakeFetcher) Probe(_ context.Context, url string) error {
	f.calls = append(f.calls, "HEAD "+url)
	if !f.exists[url] {
		return gateway.ErrNotFound
	}
	return nil
}

var testAPs = gateway.AccessPoints{"https://gw0/ipfs/", "https://gw1/ipfs/", "https://gw2/ipfs/"}

func newTestResolver(t *testing.T, f Fetcher, aps gateway.AccessPoints) *Resolver {
	t.Helper()
	r, err := New(f, Options{AccessPoints: aps})
	require.NoError(t, err)
	return r
}

func TestResolveImage_SecondGatewayServesDeclaredImage(t *testing.T) {
	gws := gatewaytest.Cluster(t, 3)
	gws[0].SetDown(true)
	for _, g := range gws[1:] {
		g.Put("CIDX/variant-a.json", []byte(`{"image":"scheme://CIDX/art.png"}`))
		g.Put("CIDX/art.png", []byte("\x89PNG"))
	}
	aps := gateway.AccessPoints(gatewaytest.Prefixes(gws...))
	r := newTestResolver(t, gateway.NewClient(gateway.Options{}), aps)

	img, ok := r.ResolveImage(context.Background(), "scheme://CIDX/variant-a.json")
	require.True(t, ok)
	assert.Equal(t, aps[1]+"CIDX/art.png", img.HTTPURL)
	assert.Equal(t, []string{
		aps[0] + "CIDX/variant-a.json",
		aps[1] + "CIDX/variant-a.json",
		aps[0] + "CIDX/art.png",
		aps[1] + "CIDX/art.png",
	}, img.Tried)
	assert.Zero(t, gws[2].Count(), "third gateway never contacted")
}

func TestResolveImage_StopsAtFirstSuccess(t *testing.T) {
	f := &fakeFetcher{
		docs:   map[string][]byte{"https://gw0/ipfs/C/v.json": []byte(`{"image":"ipfs://C/art.png"}`)},
		exists: map[string]bool{"https://gw0/ipfs/C/art.png": true, "https://gw1/ipfs/C/art.png": true},
	}
	r := newTestResolver(t, f, testAPs)

	img, ok := r.ResolveImage(context.Background(), "ipfs://C/v.json")
	require.True(t, ok)
	assert.Equal(t, "https://gw0/ipfs/C/art.png", img.HTTPURL)
	assert.Equal(t, []string{"GET https://gw0/ipfs/C/v.json", "HEAD https://gw0/ipfs/C/art.png"}, f.calls)
}

func TestResolveImage_ExtensionFallbackWhenDocumentUnreachable(t *testing.T) {
	f := &fakeFetcher{exists: map[string]bool{"https://gw2/ipfs/C/v.jpg": true}}
	r := newTestResolver(t, f, testAPs)

	img, ok := r.ResolveImage(context.Background(), "ipfs://C/v.json")
	require.True(t, ok)
	assert.Equal(t, "https://gw2/ipfs/C/v.jpg", img.HTTPURL)
	// 3 document fetches, 3 .png probes, 3 .jpg probes.
	assert.Len(t, img.Tried, 9)
}

func TestResolveImage_DeclaredImageMissingFallsBackToGuess(t *testing.T) {
	f := &fakeFetcher{
		docs:   map[string][]byte{"https://gw1/ipfs/C/v.json": []byte(`{"image":"ipfs://C/gone.png"}`)},
		exists: map[string]bool{"https://gw0/ipfs/C/v.png": true},
	}
	r := newTestResolver(t, f, testAPs)

	img, ok := r.ResolveImage(context.Background(), "C/v.json")
	require.True(t, ok)
	assert.Equal(t, "https://gw0/ipfs/C/v.png", img.HTTPURL)
}

func TestResolveImage_AbsoluteImageURLProbedAsIs(t *testing.T) {
	f := &fakeFetcher{
		docs:   map[string][]byte{"https://gw0/ipfs/C/v.json": []byte(`{"image":"https://cdn.example/art.png"}`)},
		exists: map[string]bool{"https://cdn.example/art.png": true},
	}
	r := newTestResolver(t, f, testAPs)

	img, ok := r.ResolveImage(context.Background(), "ipfs://C/v.json")
	require.True(t, ok)
	assert.Equal(t, "https://cdn.example/art.png", img.HTTPURL)
}

func TestResolveImage_AllGatewaysDownIsUnavailable(t *testing.T) {
	gws := gatewaytest.Cluster(t, 3)
	for _, g := range gws {
		g.SetDown(true)
	}
	r := newTestResolver(t, gateway.NewClient(gateway.Options{}), gatewaytest.Prefixes(gws...))

	var (
		img Image
		ok  bool
	)
	require.NotPanics(t, func() {
		img, ok = r.ResolveImage(context.Background(), "ipfs://CIDX/variant-a.json")
	})
	assert.False(t, ok)
	assert.Empty(t, img.HTTPURL)
	assert.Len(t, img.Tried, 3+3*len(DefaultExtensions))
}

func TestResolveImage_BadReferenceIsUnavailable(t *testing.T) {
	r := newTestResolver(t, &fakeFetcher{}, testAPs)
	_, ok := r.ResolveImage(context.Background(), "   ")
	assert.False(t, ok)
}

func TestResolveImage_CancelledContextIsUnavailable(t *testing.T) {
	f := &fakeFetcher{exists: map[string]bool{"https://gw0/ipfs/C/v.png": true}}
	r := newTestResolver(t, f, testAPs)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := r.ResolveImage(ctx, "ipfs://C/v.json")
	assert.False(t, ok)
	assert.Empty(t, f.calls)
}

func TestFetchDocument_SkipsGatewayServingWrongBytes(t *testing.T) {
	good := []byte(`{"image":"ipfs://C/art.png"}`)
	id := cidutil.CIDv1RawSHA256(good)
	f := &fakeFetcher{docs: map[string][]byte{
		"https://gw0/ipfs/" + id: []byte(`{"image":"ipfs://evil/x.png"}`),
		"https://gw1/ipfs/" + id: good,
	}}
	r := newTestResolver(t, f, testAPs)

	ref, err := contentref.Parse("ipfs://" + id)
	require.NoError(t, err)
	doc, hit, ok := r.FetchDocument(context.Background(), ref)
	require.True(t, ok)
	assert.Equal(t, 1, hit.Index)
	assert.Equal(t, "ipfs://C/art.png", doc.Image)
}

func TestCandidates_DeduplicatesAndOrders(t *testing.T) {
	r, err := New(&fakeFetcher{}, Options{AccessPoints: testAPs, Extensions: []string{".png", ".gif"}})
	require.NoError(t, err)

	ref, err := contentref.Parse("ipfs://C/v.json")
	require.NoError(t, err)
	got := r.Candidates(ref, &Document{Image: "ipfs://C/v.png"})
	assert.Equal(t, []string{"C/v.png", "C/v.gif"}, got)

	got = r.Candidates(ref, nil)
	assert.Equal(t, []string{"C/v.png", "C/v.gif"}, got)
}

func TestResolveImage_BareDocumentIsNotItsOwnImage(t *testing.T) {
	f := &fakeFetcher{
		docs:   map[string][]byte{"https://gw0/ipfs/bafymeta": []byte(`{"name":"x"}`)},
		exists: map[string]bool{"https://gw0/ipfs/bafymeta": true},
	}
	r := newTestResolver(t, f, testAPs[:1])

	img, ok := r.ResolveImage(context.Background(), "ipfs://bafymeta")
	assert.False(t, ok)
	assert.Empty(t, img.HTTPURL)
	assert.Equal(t, []string{"GET https://gw0/ipfs/bafymeta"}, f.calls)
}

func TestCandidates_BareReference(t *testing.T) {
	r, err := New(&fakeFetcher{}, Options{AccessPoints: testAPs, Extensions: []string{".png"}})
	require.NoError(t, err)

	ref, err := contentref.Parse("ipfs://bafymeta")
	require.NoError(t, err)
	assert.Empty(t, r.Candidates(ref, nil))
	assert.Empty(t, r.Candidates(ref, &Document{Image: "ipfs://bafymeta"}))
	assert.Equal(t, []string{"bafyimg"}, r.Candidates(ref, &Document{Image: "ipfs://bafyimg"}))
}

func TestNew_Validates(t *testing.T) {
	_, err := New(nil, Options{AccessPoints: testAPs})
	assert.Error(t, err)
	_, err = New(&fakeFetcher{}, Options{})
	assert.True(t, errors.Is(err, gateway.ErrNoAccessPoint))
}
