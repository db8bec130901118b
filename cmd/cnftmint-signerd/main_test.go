package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ListBackends(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"--list-backends"}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())
	assert.Contains(t, out.String(), "dryrun\t")
	// grpc is a client backend and must not be wrapped by the daemon.
	assert.NotContains(t, out.String(), "grpc")
}

func TestRun_UnknownBackend(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"--backend", "ledger"}, &out, &errOut)
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut.String(), `unknown submitter "ledger"`)
}

func TestRun_BadFlag(t *testing.T) {
	var out, errOut bytes.Buffer
	assert.Equal(t, 2, run(context.Background(), []string{"--nope"}, &out, &errOut))
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out, errOut bytes.Buffer
	code := run(ctx, []string{"--listen", "127.0.0.1:0", "--log-level", "error"}, &out, &errOut)
	assert.Equal(t, 0, code, errOut.String())
}
