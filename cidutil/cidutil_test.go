package cidutil

import (
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify_RawRoundTrip(t *testing.T) {
	data := []byte(`{"image":"ipfs://x/art.png"}`)
	id, err := cid.Decode(CIDv1RawSHA256(data))
	require.NoError(t, err)

	assert.True(t, Verifiable(id))
	assert.NoError(t, Verify(id, data))
	assert.ErrorIs(t, Verify(id, []byte("tampered")), ErrMismatch)
}

func TestVerifiable_RejectsDagPB(t *testing.T) {
	sum, err := multihash.Sum([]byte("dir"), multihash.SHA2_256, -1)
	require.NoError(t, err)
	id := cid.NewCidV1(cid.DagProtobuf, sum)

	assert.False(t, Verifiable(id))
	assert.False(t, Verifiable(cid.Undef))
	assert.Error(t, Verify(cid.Undef, nil))
}
