package swarm

import (
	"bytes"

	"github.com/ugorji/go/codec"
)

// Edge is an established connection. A < B by construction.
type Edge struct {
	A PeerID `json:"a"`
	B PeerID `json:"b"`
}

// Dial is an in-flight, directed connection attempt.
type Dial struct {
	From PeerID `json:"from"`
	To   PeerID `json:"to"`
}

// TickSnapshot is the read-only view of the swarm handed to the store, the
// exporter and the HTTP service after each tick. Edges and dials are sorted,
// and edges deduped, so the snapshot is deterministic for a given state.
type TickSnapshot struct {
	Tick     int         `json:"tick"`
	Peers    int         `json:"peers"`
	Edges    []Edge      `json:"edges"`
	Dials    []Dial      `json:"dials"`
	Degrees  map[int]int `json:"degrees"`
	Diameter int         `json:"diameter"`

	// HasDiameter is false when diameter analysis was disabled for the run.
	HasDiameter bool `json:"has_diameter"`
}

// Capture builds the snapshot of s at the given tick. Diameter analysis runs
// only when withDiameter is set.
func Capture(s *State, tick int, withDiameter bool) *TickSnapshot {
	snap := &TickSnapshot{
		Tick:    tick,
		Peers:   s.Len(),
		Degrees: DegreeHistogram(s),
	}

	for _, id := range s.IDs() {
		p := s.Peer(id)

		for _, c := range sortedIDs(p.Established) {
			if id < c {
				snap.Edges = append(snap.Edges, Edge{A: id, B: c})
			}
		}

		for _, c := range sortedIDs(p.Attempts) {
			snap.Dials = append(snap.Dials, Dial{From: id, To: c})
		}
	}

	if withDiameter {
		snap.Diameter = Diameter(s)
		snap.HasDiameter = true
	}

	return snap
}

// Marshal returns the canonical JSON encoding of the snapshot.
func (snap *TickSnapshot) Marshal() ([]byte, error) {
	b := new(bytes.Buffer)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	enc := codec.NewEncoder(b, jh)

	if err := enc.Encode(snap); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// Unmarshal parses a snapshot from its canonical JSON encoding.
func (snap *TickSnapshot) Unmarshal(data []byte) error {
	b := bytes.NewBuffer(data)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	dec := codec.NewDecoder(b, jh)

	return dec.Decode(snap)
}
