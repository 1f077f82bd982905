package swarm

import (
	"math/rand"

	"github.com/sirupsen/logrus"
)

// Discovery seeds a joining peer's knowledge of the swarm. Two models are
// supported.
//
// Global knowledge stands in for a perfect DHT and PEX: the newcomer learns
// about every existing peer, and every existing peer learns about the
// newcomer.
//
// Tracker knowledge models a plain tracker announce: the newcomer receives a
// uniform random sample of at most trackerLimit existing peers, and nobody is
// told about the newcomer. Existing peers only learn of it if it dials them.
type Discovery struct {
	global       bool
	trackerLimit int
	rng          *rand.Rand
	logger       *logrus.Entry
}

// NewDiscovery creates a Discovery. The rng is the run's seeded source; it is
// only used by the tracker model.
func NewDiscovery(global bool, trackerLimit int, rng *rand.Rand, logger *logrus.Entry) *Discovery {
	return &Discovery{
		global:       global,
		trackerLimit: trackerLimit,
		rng:          rng,
		logger:       logger,
	}
}

// Join adds a new peer to the swarm at the given tick and seeds its known
// set. It returns the new peer's record.
func (d *Discovery) Join(s *State, tick int) *Peer {
	existing := s.IDs()

	peer := s.AddPeer(tick)

	if d.global {
		for _, id := range existing {
			peer.Known.Add(id)
			s.Peer(id).Known.Add(peer.ID)
		}
	} else {
		for _, id := range d.sample(existing) {
			peer.Known.Add(id)
		}
	}

	d.logger.WithFields(logrus.Fields{
		"peer":  peer.ID,
		"tick":  tick,
		"known": peer.Known.Cardinality(),
	}).Debug("Peer joined")

	return peer
}

// sample returns a uniform random selection of at most trackerLimit ids.
func (d *Discovery) sample(ids []PeerID) []PeerID {
	n := d.trackerLimit
	if n > len(ids) {
		n = len(ids)
	}

	res := make([]PeerID, 0, n)
	for _, i := range d.rng.Perm(len(ids))[:n] {
		res = append(res, ids[i])
	}

	return res
}
