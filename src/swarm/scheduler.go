package swarm

import (
	"math/rand"

	"github.com/sirupsen/logrus"
)

// Scheduler decides which known peers a peer dials. It never exceeds the
// connection limit or the half-open limit, and it is idempotent: calling Fill
// on a peer with no free capacity or nothing to dial does nothing.
type Scheduler struct {
	maxPeers      int
	halfOpenLimit int
	ordering      bool
	oracle        *PriorityOracle
	rng           *rand.Rand
	logger        *logrus.Entry
}

// NewScheduler creates a Scheduler. When ordering is true candidates are
// dialed highest-rank first; otherwise they are picked uniformly at random
// from the rng, which is the run's seeded source.
func NewScheduler(maxPeers, halfOpenLimit int, ordering bool, oracle *PriorityOracle, rng *rand.Rand, logger *logrus.Entry) *Scheduler {
	return &Scheduler{
		maxPeers:      maxPeers,
		halfOpenLimit: halfOpenLimit,
		ordering:      ordering,
		oracle:        oracle,
		rng:           rng,
		logger:        logger,
	}
}

// Fill tops up peer n's outstanding dials from its known set.
//
// If the known set is empty and the retry set is not, the retry set is
// swapped into the known set first. This is the only path by which a
// rejected dial becomes eligible again, so rejected peers are re-dialed at
// most once per exhaustion of everything else the peer knows.
func (sc *Scheduler) Fill(s *State, st *Stats, n *Peer) {
	if n.Known.Cardinality() == 0 && n.Retry.Cardinality() > 0 {
		for _, id := range n.Retry.ToSlice() {
			n.Known.Add(id)
		}
		n.Retry.Clear()
	}

	for n.Degree()+n.Attempts.Cardinality() < sc.maxPeers &&
		n.Attempts.Cardinality() < sc.halfOpenLimit &&
		n.Known.Cardinality() > 0 {

		target := sc.pick(n)

		n.Known.Remove(target)
		n.Attempts.Add(target)
		st.CountAttempt()

		sc.logger.WithFields(logrus.Fields{
			"peer":   n.ID,
			"target": target,
		}).Debug("Dialing")
	}
}

// pick selects the next dial target from n's known set: the highest ranking
// candidate under peer ordering, a uniformly random one otherwise.
func (sc *Scheduler) pick(n *Peer) PeerID {
	candidates := sortedIDs(n.Known)

	if !sc.ordering {
		return candidates[sc.rng.Intn(len(candidates))]
	}

	best := candidates[0]
	bestRank := sc.oracle.Rank(n.ID, best)
	for _, c := range candidates[1:] {
		if r := sc.oracle.Rank(n.ID, c); bestRank.Less(r) {
			best = c
			bestRank = r
		}
	}

	return best
}
