package swarm

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// Peer is the mutable record of a single swarm member. The four sets
// partition the peer's relations to its counterparts: a given counterpart is
// established, being dialed, merely known, or parked for retry, never more
// than one at a time.
type Peer struct {
	ID PeerID

	// JoinTick is the tick at which the peer entered the swarm. Immutable.
	JoinTick int

	// Established holds the peers this peer is currently connected to. The
	// relation is symmetric: a is in b's set iff b is in a's set.
	Established mapset.Set[PeerID]

	// Attempts holds the peers this peer is currently dialing. Bounded by the
	// half-open limit.
	Attempts mapset.Set[PeerID]

	// Known holds peers this peer is aware of but neither connected to nor
	// dialing.
	Known mapset.Set[PeerID]

	// Retry holds peers whose dial was rejected. They are swapped back into
	// Known once Known is exhausted, which rate-limits re-dialing.
	Retry mapset.Set[PeerID]
}

func newPeer(id PeerID, joinTick int) *Peer {
	return &Peer{
		ID:          id,
		JoinTick:    joinTick,
		Established: mapset.NewSet[PeerID](),
		Attempts:    mapset.NewSet[PeerID](),
		Known:       mapset.NewSet[PeerID](),
		Retry:       mapset.NewSet[PeerID](),
	}
}

// Degree returns the number of established connections.
func (p *Peer) Degree() int {
	return p.Established.Cardinality()
}

// Aware reports whether the peer has any relation to id: known, parked for
// retry, established, or being dialed.
func (p *Peer) Aware(id PeerID) bool {
	return p.Known.Contains(id) ||
		p.Retry.Contains(id) ||
		p.Established.Contains(id) ||
		p.Attempts.Contains(id)
}

// sortedIDs returns the members of a set in ascending id order. The relation
// sets are hash sets; every iteration whose order is observable goes through
// here.
func sortedIDs(set mapset.Set[PeerID]) []PeerID {
	ids := set.ToSlice()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
