package dag

import (
	"encoding/hex"
	"fmt"

	gocid "github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// IDLen is the length of a full hex object id.
const IDLen = 64

// MinPrefixLen is the shortest abbreviated commit id accepted by Resolve.
const MinPrefixLen = 6

// ID is the lowercase hex SHA2-256 digest of an object's bytes.
type ID string

// cidPrefix describes how ids are derived: CIDv1, raw codec, SHA2-256.
var cidPrefix = gocid.Prefix{
	Version:  1,
	Codec:    gocid.Raw,
	MhType:   multihash.SHA2_256,
	MhLength: -1,
}

// ComputeID hashes data into its content id.
func ComputeID(data []byte) (ID, error) {
	mh, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return "", fmt.Errorf("multihash: %w", err)
	}
	return idFromMultihash(mh)
}

func idFromMultihash(mh []byte) (ID, error) {
	decoded, err := multihash.Decode(mh)
	if err != nil {
		return "", fmt.Errorf("decode multihash: %w", err)
	}
	if decoded.Code != multihash.SHA2_256 {
		return "", fmt.Errorf("unsupported hash function %#x", decoded.Code)
	}
	return ID(hex.EncodeToString(decoded.Digest)), nil
}

// IDFromCID recovers the hex id from a CID.
func IDFromCID(c gocid.Cid) (ID, error) {
	return idFromMultihash(c.Hash())
}

// CID returns the id as a CIDv1 with the raw codec.
func (id ID) CID() (gocid.Cid, error) {
	digest, err := hex.DecodeString(string(id))
	if err != nil {
		return gocid.Undef, fmt.Errorf("invalid id %q: %w", id, err)
	}
	mh, err := multihash.Encode(digest, multihash.SHA2_256)
	if err != nil {
		return gocid.Undef, fmt.Errorf("encode multihash: %w", err)
	}
	return gocid.NewCidV1(gocid.Raw, mh), nil
}

// Valid reports whether id is a well-formed full id.
func (id ID) Valid() bool {
	if len(id) != IDLen {
		return false
	}
	_, err := hex.DecodeString(string(id))
	return err == nil
}

// Short returns the first n characters of id.
func (id ID) Short(n int) string {
	if len(id) <= n {
		return string(id)
	}
	return string(id[:n])
}

func (id ID) String() string { return string(id) }

// verify reports whether data hashes to id.
func verify(id ID, data []byte) (bool, error) {
	c, err := cidPrefix.Sum(data)
	if err != nil {
		return false, err
	}
	got, err := IDFromCID(c)
	if err != nil {
		return false, err
	}
	return got == id, nil
}
