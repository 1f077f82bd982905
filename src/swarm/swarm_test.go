package swarm

import (
	"math/rand"
	"testing"

	"github.com/arvidn/peer-ordering/src/common"
)

// runSwarm drives the three components through a full run and checks the
// structural invariants after every tick.
func runSwarm(t *testing.T, swarmSize, maxPeers, halfOpen int, ordering, global bool) *State {
	s := NewState()
	st := NewStats()
	oracle := NewPriorityOracle(swarmSize * swarmSize)
	rng := rand.New(rand.NewSource(42))

	d := NewDiscovery(global, 5, rng, common.NewTestEntry(t, "discovery"))
	sc := NewScheduler(maxPeers, halfOpen, ordering, oracle, rng, common.NewTestEntry(t, "scheduler"))
	ad := NewAdmission(maxPeers, ordering, oracle, common.NewTestEntry(t, "admission"))

	for tick := 1; tick <= swarmSize*3; tick++ {
		st.BeginTick()
		ad.ResolveTick(s, st)

		if tick%2 == 1 && s.Len() < swarmSize {
			d.Join(s, tick)
		}

		for _, id := range s.IDs() {
			sc.Fill(s, st, s.Peer(id))
		}

		ad.SampleRamp(s, st, tick)
		st.EndTick(tick)

		checkInvariants(t, s, maxPeers, halfOpen)
	}

	return s
}

func checkInvariants(t *testing.T, s *State, maxPeers, halfOpen int) {
	t.Helper()

	for _, id := range s.IDs() {
		p := s.Peer(id)

		if p.Degree() > maxPeers {
			t.Fatalf("peer %d degree %d exceeds max peers", id, p.Degree())
		}
		if p.Attempts.Cardinality() > halfOpen {
			t.Fatalf("peer %d has %d outstanding attempts", id, p.Attempts.Cardinality())
		}
		if p.Degree()+p.Attempts.Cardinality() > maxPeers {
			t.Fatalf("peer %d exceeds combined capacity", id)
		}

		for _, set := range []struct {
			name string
			ids  []PeerID
		}{
			{"established", p.Established.ToSlice()},
			{"attempts", p.Attempts.ToSlice()},
			{"known", p.Known.ToSlice()},
			{"retry", p.Retry.ToSlice()},
		} {
			for _, c := range set.ids {
				if c == id {
					t.Fatalf("peer %d has itself in its %s set", id, set.name)
				}
			}
		}

		// symmetry
		for _, c := range p.Established.ToSlice() {
			if !s.Peer(c).Established.Contains(id) {
				t.Fatalf("edge (%d, %d) is not symmetric", id, c)
			}
		}

		// a counterpart appears in at most one relation set
		for _, c := range p.Established.ToSlice() {
			if p.Known.Contains(c) || p.Retry.Contains(c) || p.Attempts.Contains(c) {
				t.Fatalf("peer %d: %d is established and in another set", id, c)
			}
		}
		for _, c := range p.Attempts.ToSlice() {
			if p.Known.Contains(c) || p.Retry.Contains(c) {
				t.Fatalf("peer %d: %d is being dialed and in known/retry", id, c)
			}
		}
		for _, c := range p.Retry.ToSlice() {
			if p.Known.Contains(c) {
				t.Fatalf("peer %d: %d is in both known and retry", id, c)
			}
		}
	}
}

func TestSwarmInvariantsOrdering(t *testing.T) {
	runSwarm(t, 16, 4, 2, true, false)
}

func TestSwarmInvariantsNoOrdering(t *testing.T) {
	runSwarm(t, 16, 4, 2, false, false)
}

func TestSwarmInvariantsGlobalKnowledge(t *testing.T) {
	runSwarm(t, 16, 4, 2, true, true)
}
