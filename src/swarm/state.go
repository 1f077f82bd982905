package swarm

// State is the authoritative picture of the swarm: every peer record, and
// through them the established-connection graph and all in-flight dials. All
// mutation goes through the discovery, scheduler and admission components;
// State itself only enforces the structural rules (symmetric edges, no
// self-edges, dense join-ordered ids).
type State struct {
	peers map[PeerID]*Peer
	ids   []PeerID
}

// NewState creates an empty swarm.
func NewState() *State {
	return &State{
		peers: make(map[PeerID]*Peer),
	}
}

// AddPeer creates the record for the next peer in join order and returns it.
// Ids are assigned sequentially starting at 0.
func (s *State) AddPeer(joinTick int) *Peer {
	id := PeerID(len(s.ids))

	peer := newPeer(id, joinTick)

	s.peers[id] = peer
	s.ids = append(s.ids, id)

	return peer
}

// Peer returns the record for id, or nil if no such peer has joined.
func (s *State) Peer(id PeerID) *Peer {
	return s.peers[id]
}

// IDs returns all peer ids in ascending order. The slice is shared; callers
// must not modify it.
func (s *State) IDs() []PeerID {
	return s.ids
}

// Len returns the current swarm population.
func (s *State) Len() int {
	return len(s.ids)
}

// Connect establishes the symmetric edge (a, b). Self-edges are ignored.
func (s *State) Connect(a, b PeerID) {
	if a == b {
		return
	}
	s.peers[a].Established.Add(b)
	s.peers[b].Established.Add(a)
}

// Disconnect removes the symmetric edge (a, b). Removing an absent edge is a
// no-op.
func (s *State) Disconnect(a, b PeerID) {
	s.peers[a].Established.Remove(b)
	s.peers[b].Established.Remove(a)
}

// Connected reports whether the edge (a, b) is established.
func (s *State) Connected(a, b PeerID) bool {
	return s.peers[a].Established.Contains(b)
}
