package cidutil

import (
	"errors"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// ErrMismatch reports bytes whose multihash does not match the CID they were
// fetched under.
var ErrMismatch = errors.New("cidutil: bytes do not match cid")

// CIDv1RawSHA256 returns a CIDv1 string using the "raw" multicodec
// and a sha2-256 multihash.
func CIDv1RawSHA256(data []byte) string {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return ""
	}
	return cid.NewCidV1(cid.Raw, sum).String()
}

// Verifiable reports whether the bytes served for id can be checked locally.
//
// Only raw-codec CIDs qualify: for dag-pb and friends a gateway serves the
// reassembled file, not the block the multihash covers.
func Verifiable(id cid.Cid) bool {
	return id.Defined() && id.Prefix().Codec == cid.Raw
}

// Verify re-hashes data with the hash function named by id and compares.
func Verify(id cid.Cid, data []byte) error {
	if !id.Defined() {
		return errors.New("cidutil: undefined cid")
	}
	pref := id.Prefix()
	got, err := pref.Sum(data)
	if err != nil {
		return err
	}
	if !got.Equals(id) {
		return ErrMismatch
	}
	return nil
}
