package mint

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xdao.co/cnftmint/wallet"
)

var (
	testOwner      = wallet.MustParseIdentity("3N6sJ3Su5nZLNzKkpwD6Wbd7GTKr5aiUt9pT6GPaTXgY")
	testTree       = wallet.MustParseIdentity("EpmQQngjpkqNpfrriw5JyXYbkUP6i1ph9h31vR2jEdvW")
	testCollection = wallet.MustParseIdentity("CPsXpcmo5B1os7Rr9FPNDj6oTwoCZqQ4S8QJAiQDJTSo")
	testCreator    = wallet.MustParseIdentity("44P1KCTk7dqLkZNFCdrYZ352Eps7bibSDqkpMYMLM3fG")
)

func testVariant(uri string) Variant {
	return Variant{
		Name:        "Subscriber Giveaway",
		Symbol:      "SUB",
		MetadataURI: uri,
		Creators:    []Creator{{Address: testCreator, Verified: true, Share: 100}},
	}
}

func TestBuild_CollectionShape(t *testing.T) {
	req := Build(ShapeCollection, testOwner, testTree, testCollection, testVariant("ipfs://C/variant-a.json"))
	require.NoError(t, req.Validate())
	assert.Equal(t, testOwner, req.LeafDelegate)
	require.NotNil(t, req.CollectionMint)
	assert.Equal(t, testCollection, *req.CollectionMint)
	assert.False(t, req.CollectionVerified())
	assert.Zero(t, req.Metadata.SellerFeeBasisPoints)
	assert.Nil(t, req.Metadata.Uses)

	b, err := json.Marshal(req)
	require.NoError(t, err)
	var wire map[string]any
	require.NoError(t, json.Unmarshal(b, &wire))
	md := wire["metadata"].(map[string]any)
	assert.Equal(t, map[string]any{"key": testCollection.String(), "verified": false}, md["collection"])
	assert.Nil(t, md["uses"])
	assert.Equal(t, testTree.String(), wire["merkleTree"])
}

func TestBuild_NoCollectionShape(t *testing.T) {
	req := Build(ShapeNoCollection, testOwner, testTree, testCollection, testVariant("ipfs://C/variant-b.json"))
	require.NoError(t, req.Validate())
	assert.Nil(t, req.CollectionMint)
	assert.Nil(t, req.Metadata.Collection)

	b, err := json.Marshal(req)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "collectionMint")
}

func TestBuild_CopiesCreators(t *testing.T) {
	v := testVariant("ipfs://C/v.json")
	req := Build(ShapeCollection, testOwner, testTree, testCollection, v)
	req.Metadata.Creators[0].Share = 1
	assert.Equal(t, uint8(100), v.Creators[0].Share)
}

func TestVariant_Validate(t *testing.T) {
	require.NoError(t, testVariant("ipfs://C/v.json").Validate())

	v := testVariant("ipfs://C/v.json")
	v.Creators = append(v.Creators, Creator{Address: testOwner, Share: 10})
	assert.Error(t, v.Validate())

	v = testVariant("")
	assert.Error(t, v.Validate())
}

func TestRequest_ValidateShapeMismatch(t *testing.T) {
	req := Build(ShapeNoCollection, testOwner, testTree, testCollection, testVariant("u"))
	req.Shape = ShapeCollection
	assert.Error(t, req.Validate())

	req = Build(ShapeCollection, testOwner, testTree, testCollection, testVariant("u"))
	req.Shape = "other"
	assert.Error(t, req.Validate())
}
