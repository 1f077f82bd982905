package swarm

import (
	"math/rand"
	"testing"

	"github.com/arvidn/peer-ordering/src/common"
)

func TestDiscoveryGlobalKnowledge(t *testing.T) {
	s := NewState()
	d := NewDiscovery(true, 0, rand.New(rand.NewSource(1)), common.NewTestEntry(t, "discovery"))

	for i := 0; i < 4; i++ {
		d.Join(s, i)
	}

	newcomer := s.Peer(3)
	for _, id := range []PeerID{0, 1, 2} {
		if !newcomer.Known.Contains(id) {
			t.Fatalf("newcomer should know %d", id)
		}
		if !s.Peer(id).Known.Contains(3) {
			t.Fatalf("peer %d should have learned of the newcomer", id)
		}
	}

	if newcomer.Known.Contains(3) {
		t.Fatalf("newcomer should not know itself")
	}
	if newcomer.JoinTick != 3 {
		t.Fatalf("join tick not recorded: %d", newcomer.JoinTick)
	}
	if newcomer.Retry.Cardinality() != 0 {
		t.Fatalf("retry set should start empty")
	}
}

func TestDiscoveryTrackerSample(t *testing.T) {
	s := NewState()
	d := NewDiscovery(false, 3, rand.New(rand.NewSource(1)), common.NewTestEntry(t, "discovery"))

	for i := 0; i < 10; i++ {
		d.Join(s, i)
	}

	newcomer := s.Peer(9)
	if got := newcomer.Known.Cardinality(); got != 3 {
		t.Fatalf("tracker sample size => %d, expected 3", got)
	}
	if newcomer.Known.Contains(9) {
		t.Fatalf("newcomer should not know itself")
	}

	// no retroactive notification under tracker knowledge
	for _, id := range s.IDs()[:9] {
		if s.Peer(id).Known.Contains(9) {
			t.Fatalf("peer %d should not have learned of the newcomer", id)
		}
	}
}

func TestDiscoveryTrackerSmallSwarm(t *testing.T) {
	s := NewState()
	d := NewDiscovery(false, 40, rand.New(rand.NewSource(1)), common.NewTestEntry(t, "discovery"))

	d.Join(s, 0)
	d.Join(s, 1)

	// sample is capped by the existing population
	if got := s.Peer(1).Known.Cardinality(); got != 1 {
		t.Fatalf("newcomer known set => %d, expected 1", got)
	}
}
