package submitter

import (
	"context"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xdao.co/cnftmint/mint"
	"xdao.co/cnftmint/signature"
)

type echo struct{ opts map[string]string }

func (e echo) Submit(context.Context, mint.Request) (signature.Result, error) {
	return signature.String(e.opts["echo-sig"]), nil
}

func registerEcho(t *testing.T, name string, usage Usage) {
	t.Helper()
	require.NoError(t, Register(Backend{
		Name:  name,
		Usage: usage,
		Flags: []Flag{
			{Name: "echo-sig", Default: "default", Usage: "Signature to echo"},
			{Name: "echo-other", Default: "x", Usage: "Unused"},
		},
		Open: func(opts map[string]string) (mint.Submitter, func() error, error) {
			return echo{opts: opts}, nil, nil
		},
	}))
	t.Cleanup(func() {
		mu.Lock()
		delete(backends, name)
		mu.Unlock()
	})
}

func submitSig(t *testing.T, s mint.Submitter) string {
	t.Helper()
	res, err := s.Submit(context.Background(), mint.Request{})
	require.NoError(t, err)
	return signature.Normalize(res)
}

func TestRegister_Validation(t *testing.T) {
	require.Error(t, Register(Backend{}))
	require.Error(t, Register(Backend{Name: "x", Usage: UsageCLI}))
	require.Error(t, Register(Backend{Name: "x", Open: func(map[string]string) (mint.Submitter, func() error, error) { return nil, nil, nil }}))

	registerEcho(t, "echo-dup", UsageCLI)
	require.Error(t, Register(Backend{Name: "echo-dup", Usage: UsageCLI, Open: func(map[string]string) (mint.Submitter, func() error, error) { return nil, nil, nil }}))
}

func TestUsage_String(t *testing.T) {
	assert.Equal(t, "cli", UsageCLI.String())
	assert.Equal(t, "cli,daemon", (UsageCLI | UsageDaemon).String())
	assert.Equal(t, "none", Usage(0).String())
}

func TestOpen_DefaultsAndUsage(t *testing.T) {
	registerEcho(t, "echo-cli", UsageCLI)

	s, _, err := Open("echo-cli", UsageCLI, nil)
	require.NoError(t, err)
	assert.Equal(t, "default", submitSig(t, s))

	s, _, err = Open("echo-cli", UsageCLI, map[string]string{"echo-sig": "configured"})
	require.NoError(t, err)
	assert.Equal(t, "configured", submitSig(t, s))

	_, _, err = Open("echo-cli", UsageDaemon, nil)
	require.EqualError(t, err, `submitter "echo-cli" runs under cli, not daemon`)
	_, _, err = Open("nope", UsageCLI, nil)
	require.Error(t, err)

	assert.Contains(t, Names(UsageCLI), "echo-cli")
	assert.NotContains(t, Names(UsageDaemon), "echo-cli")
}

func TestOpenWithFlags_ChangedFlagsWin(t *testing.T) {
	registerEcho(t, "echo-flags", UsageCLI)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, UsageCLI)
	RegisterFlags(fs, UsageCLI) // second call must not redefine
	require.NotNil(t, fs.Lookup("echo-sig"))

	s, _, err := OpenWithFlags("echo-flags", UsageCLI, map[string]string{"echo-sig": "configured"}, fs)
	require.NoError(t, err)
	assert.Equal(t, "configured", submitSig(t, s), "unchanged flag must not override config")

	require.NoError(t, fs.Parse([]string{"--echo-sig=flagged"}))
	s, _, err = OpenWithFlags("echo-flags", UsageCLI, map[string]string{"echo-sig": "configured"}, fs)
	require.NoError(t, err)
	assert.Equal(t, "flagged", submitSig(t, s))
}
