package gateway_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xdao.co/cnftmint/gateway"
	"xdao.co/cnftmint/gateway/gatewaytest"
	"xdao.co/cnftmint/metrics"
)

func TestClient_FetchAndProbe(t *testing.T) {
	gw := gatewaytest.New(t)
	gw.Put("CIDX/variant-a.json", []byte(`{"image":"ipfs://CIDX/art.png"}`))
	gw.Put("CIDX/art.png", []byte("\x89PNG"))

	m := metrics.New(nil)
	c := gateway.NewClient(gateway.Options{Metrics: m})
	ctx := context.Background()

	b, err := c.Fetch(ctx, gateway.Join(gw.Prefix(), "CIDX/variant-a.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"image":"ipfs://CIDX/art.png"}`, string(b))

	require.NoError(t, c.Probe(ctx, gateway.Join(gw.Prefix(), "CIDX/art.png")))
	assert.Equal(t, "HEAD", gw.Requests()[1].Method)

	err = c.Probe(ctx, gateway.Join(gw.Prefix(), "CIDX/missing.png"))
	assert.True(t, gateway.IsNotFound(err))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProbeCounter(metrics.OpFetch, "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProbeCounter(metrics.OpProbe, "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ProbeCounter(metrics.OpProbe, "failure")))
}

func TestClient_ProbeFallsBackToRangedGet(t *testing.T) {
	gw := gatewaytest.New(t)
	gw.Put("CIDX/art.png", []byte("\x89PNG"))
	gw.RefuseHEAD(true)

	c := gateway.NewClient(gateway.Options{})
	require.NoError(t, c.Probe(context.Background(), gateway.Join(gw.Prefix(), "CIDX/art.png")))

	reqs := gw.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "HEAD", reqs[0].Method)
	assert.Equal(t, "GET", reqs[1].Method)
}

func TestClient_DownGatewayIsUnavailable(t *testing.T) {
	gw := gatewaytest.New(t)
	gw.Put("CIDX/a.json", []byte(`{}`))
	gw.SetDown(true)

	c := gateway.NewClient(gateway.Options{})
	_, err := c.Fetch(context.Background(), gateway.Join(gw.Prefix(), "CIDX/a.json"))
	assert.ErrorIs(t, err, gateway.ErrUnavailable)
	assert.False(t, gateway.IsNotFound(err))
}

func TestClient_FetchRejectsOversizedDocuments(t *testing.T) {
	gw := gatewaytest.New(t)
	gw.Put("CIDX/big.json", make([]byte, 64))

	c := gateway.NewClient(gateway.Options{MaxDocumentBytes: 16})
	_, err := c.Fetch(context.Background(), gateway.Join(gw.Prefix(), "CIDX/big.json"))
	assert.ErrorIs(t, err, gateway.ErrTooLarge)
}
