package swarm

import (
	"github.com/sirupsen/logrus"
)

// Admission resolves outstanding connection attempts, once per tick. Every
// attempt is either accepted, rejected, or accepted by preempting a lower
// ranking established connection on the target.
//
// Resolution order is part of the contract: peers are processed in ascending
// id order, and each peer's attempts in ascending target id. The final
// accepted set under peer ordering does not depend on this order, but the
// per-tick reject and replacement tallies do, so the order is fixed to keep
// runs reproducible.
type Admission struct {
	maxPeers int
	ordering bool
	oracle   *PriorityOracle
	logger   *logrus.Entry
}

// NewAdmission creates an Admission engine. Preemption only happens when
// ordering is true.
func NewAdmission(maxPeers int, ordering bool, oracle *PriorityOracle, logger *logrus.Entry) *Admission {
	return &Admission{
		maxPeers: maxPeers,
		ordering: ordering,
		oracle:   oracle,
		logger:   logger,
	}
}

// ResolveTick resolves every attempt outstanding at the start of the tick.
// Attempts created by scheduling later in the same tick are untouched until
// the next call.
func (ad *Admission) ResolveTick(s *State, st *Stats) {
	for _, id := range s.IDs() {
		n := s.Peer(id)

		// snapshot: resolution must not see attempts added mid-tick
		for _, target := range sortedIDs(n.Attempts) {
			ad.resolve(s, st, n, s.Peer(target))
		}
	}
}

// resolve settles the single attempt n -> a.
func (ad *Admission) resolve(s *State, st *Stats, n, a *Peer) {
	// Being dialed is the only peer-exchange surrogate in the model: the
	// target learns about the dialer even without a discovery step.
	if !a.Aware(n.ID) {
		a.Known.Add(n.ID)
	}

	established := false

	switch {
	case n.Established.Contains(a.ID):
		// both sides dialed each other in the same window; the connection
		// already exists, just drop the attempt

	case n.Degree() >= ad.maxPeers:
		// the dialer filled up with incoming connections since issuing the
		// attempt; abandon it so the degree bound holds

	case a.Degree() < ad.maxPeers:
		s.Connect(n.ID, a.ID)
		established = true

		ad.logger.WithFields(logrus.Fields{
			"dialer": n.ID,
			"target": a.ID,
		}).Debug("Established")

	case ad.ordering && ad.tryPreempt(s, st, n, a):
		established = true

	default:
		st.CountReject()

		// an eviction earlier in the tick may have re-admitted the target
		// into the dialer's known set; retry supersedes it
		n.Known.Remove(a.ID)
		n.Retry.Add(a.ID)

		ad.logger.WithFields(logrus.Fields{
			"dialer": n.ID,
			"target": a.ID,
		}).Debug("Rejected")
	}

	if established {
		a.Known.Remove(n.ID)
		a.Retry.Remove(n.ID)
		n.Known.Remove(a.ID)
		n.Retry.Remove(a.ID)
	}

	n.Attempts.Remove(a.ID)
}

// tryPreempt checks whether dialer n outranks target a's weakest current
// connection and, if so, replaces it. The incumbent under scrutiny is the
// one ranking lowest against the challenger, and it is evicted only when its
// own rank with a is below the challenger's rank with a.
//
// The evicted peer goes back into both its own and a's known sets, so the
// broken edge can be re-formed elsewhere.
func (ad *Admission) tryPreempt(s *State, st *Stats, n, a *Peer) bool {
	incumbents := sortedIDs(a.Established)

	lowest := incumbents[0]
	lowestRank := ad.oracle.Rank(n.ID, lowest)
	for _, c := range incumbents[1:] {
		if r := ad.oracle.Rank(n.ID, c); r.Less(lowestRank) {
			lowest = c
			lowestRank = r
		}
	}

	if !ad.oracle.Rank(lowest, a.ID).Less(ad.oracle.Rank(n.ID, a.ID)) {
		return false
	}

	s.Disconnect(lowest, a.ID)
	a.Known.Add(lowest)
	s.Peer(lowest).Known.Add(a.ID)

	s.Connect(n.ID, a.ID)
	st.CountReplacement()

	ad.logger.WithFields(logrus.Fields{
		"dialer":  n.ID,
		"target":  a.ID,
		"evicted": lowest,
	}).Debug("Replaced")

	return true
}

// SampleRamp records the established degree of every peer whose id is at
// least maxPeers, bucketed by age since joining. Peers below that id joined
// an underpopulated swarm, so their early connectivity reflects the join
// rate rather than discovery quality.
func (ad *Admission) SampleRamp(s *State, st *Stats, tick int) {
	for _, id := range s.IDs() {
		if int(id) < ad.maxPeers {
			continue
		}
		p := s.Peer(id)
		st.SampleRamp(tick-p.JoinTick, p.Degree())
	}
}
