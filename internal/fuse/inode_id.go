package fuse

import (
	"hash/fnv"
	"strings"
)

// stableIno derives an inode number from a node's path inside the mount, so
// the same path keeps the same inode across lookups and remounts.
func stableIno(parts ...string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(strings.Join(parts, "/")))
	return h.Sum64()
}
