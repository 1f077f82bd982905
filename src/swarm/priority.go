package swarm

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// PeerID identifies a peer in the swarm. Ids are dense and assigned in join
// order starting at 0.
type PeerID int

// Rank is the global priority of an unordered pair of peers. Ranks are
// compared as big-endian byte strings; a higher rank wins a contested
// connection slot. Collisions are treated as impossible.
type Rank [sha1.Size]byte

// Less reports whether r orders strictly below other.
func (r Rank) Less(other Rank) bool {
	return bytes.Compare(r[:], other[:]) < 0
}

func (r Rank) String() string {
	return hex.EncodeToString(r[:])
}

type pairKey struct {
	lo PeerID
	hi PeerID
}

// PriorityOracle computes the global rank of peer pairs. The rank is a SHA1
// digest of the concatenated decimal ids, canonicalized so that
// Rank(a, b) == Rank(b, a). Results are cached, so repeated queries for the
// same pair do not rehash.
type PriorityOracle struct {
	cache *lru.Cache[pairKey, Rank]
}

// NewPriorityOracle creates an oracle whose cache holds up to cacheSize
// pair ranks.
func NewPriorityOracle(cacheSize int) *PriorityOracle {
	if cacheSize < 1 {
		cacheSize = 1
	}
	cache, err := lru.New[pairKey, Rank](cacheSize)
	if err != nil {
		// lru.New only fails on a non-positive size
		panic(err)
	}
	return &PriorityOracle{cache: cache}
}

// Rank returns the priority of the pair (a, b). It is a pure function of the
// unordered pair: argument order does not matter and the value never changes
// during a run.
func (o *PriorityOracle) Rank(a, b PeerID) Rank {
	key := canonicalPair(a, b)

	if rank, ok := o.cache.Get(key); ok {
		return rank
	}

	rank := Rank(sha1.Sum([]byte(fmt.Sprintf("%d%d", key.lo, key.hi))))

	o.cache.Add(key, rank)

	return rank
}

func canonicalPair(a, b PeerID) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}
