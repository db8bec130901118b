package mint

import (
	"errors"
	"fmt"

	"xdao.co/cnftmint/wallet"
)

// Shape names the instruction a Request is built for.
type Shape string

const (
	// ShapeCollection mints into the tree and names the collection, unverified.
	ShapeCollection Shape = "mintToCollectionV1"
	// ShapeNoCollection mints into the tree with no collection at all.
	ShapeNoCollection Shape = "mintV1"
)

// Creator is one royalty creator. Shares across a Variant sum to 100.
type Creator struct {
	Address  wallet.Identity `json:"address" toml:"address"`
	Verified bool            `json:"verified" toml:"verified"`
	Share    uint8           `json:"share" toml:"share"`
}

// Variant is one mintable design.
type Variant struct {
	Name        string    `json:"name" toml:"name"`
	Symbol      string    `json:"symbol" toml:"symbol"`
	MetadataURI string    `json:"uri" toml:"uri"`
	Creators    []Creator `json:"creators" toml:"creators"`
}

// Validate checks the fields a request needs.
func (v Variant) Validate() error {
	if v.Name == "" || v.Symbol == "" {
		return errors.New("mint: variant name and symbol are required")
	}
	if v.MetadataURI == "" {
		return fmt.Errorf("mint: variant %q has no metadata uri", v.Name)
	}
	if len(v.Creators) == 0 {
		return fmt.Errorf("mint: variant %q has no creators", v.Name)
	}
	total := 0
	for _, c := range v.Creators {
		if c.Address.IsZero() {
			return fmt.Errorf("mint: variant %q has a creator without address", v.Name)
		}
		total += int(c.Share)
	}
	if total != 100 {
		return fmt.Errorf("mint: variant %q creator shares sum to %d, want 100", v.Name, total)
	}
	return nil
}

// CollectionRef is the metadata collection block.
type CollectionRef struct {
	Key      wallet.Identity `json:"key"`
	Verified bool            `json:"verified"`
}

// Uses is the metadata uses block. Mints here never set it.
type Uses struct {
	UseMethod string `json:"useMethod"`
	Remaining uint64 `json:"remaining"`
	Total     uint64 `json:"total"`
}

// Metadata is the on-chain metadata block of a mint.
type Metadata struct {
	Name                 string         `json:"name"`
	Symbol               string         `json:"symbol"`
	URI                  string         `json:"uri"`
	SellerFeeBasisPoints uint16         `json:"sellerFeeBasisPoints"`
	Creators             []Creator      `json:"creators"`
	Collection           *CollectionRef `json:"collection"`
	Uses                 *Uses          `json:"uses"`
}

// Request is one mint submission. It is built fresh for every attempt and
// must not be changed once handed to a Submitter.
type Request struct {
	Shape          Shape            `json:"shape"`
	LeafOwner      wallet.Identity  `json:"leafOwner"`
	LeafDelegate   wallet.Identity  `json:"leafDelegate"`
	MerkleTree     wallet.Identity  `json:"merkleTree"`
	CollectionMint *wallet.Identity `json:"collectionMint,omitempty"`
	Metadata       Metadata         `json:"metadata"`
}

// CollectionVerified reports the metadata collection flag.
func (r Request) CollectionVerified() bool {
	return r.Metadata.Collection != nil && r.Metadata.Collection.Verified
}

// Validate checks structural consistency between Shape and the collection
// fields.
func (r Request) Validate() error {
	if r.LeafOwner.IsZero() || r.MerkleTree.IsZero() {
		return errors.New("mint: request needs a leaf owner and a merkle tree")
	}
	switch r.Shape {
	case ShapeCollection:
		if r.CollectionMint == nil || r.Metadata.Collection == nil {
			return errors.New("mint: collection shape needs a collection")
		}
	case ShapeNoCollection:
		if r.CollectionMint != nil || r.Metadata.Collection != nil {
			return errors.New("mint: no-collection shape must not name a collection")
		}
	default:
		return fmt.Errorf("mint: unknown request shape %q", r.Shape)
	}
	return nil
}

// Build constructs the request of the given shape for owner and v.
// The delegate is the owner. Royalties are zero and the collection, when
// present, is unverified so no collection-authority signature is needed.
func Build(shape Shape, owner, tree, collection wallet.Identity, v Variant) Request {
	req := Request{
		Shape:        shape,
		LeafOwner:    owner,
		LeafDelegate: owner,
		MerkleTree:   tree,
		Metadata: Metadata{
			Name:     v.Name,
			Symbol:   v.Symbol,
			URI:      v.MetadataURI,
			Creators: append([]Creator(nil), v.Creators...),
		},
	}
	if shape == ShapeCollection {
		c := collection
		req.CollectionMint = &c
		req.Metadata.Collection = &CollectionRef{Key: collection, Verified: false}
	}
	return req
}
