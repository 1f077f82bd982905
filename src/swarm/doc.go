// Package swarm implements the connection-formation engine of the simulator.
//
// A swarm is a population of peers, identified by dense integer ids assigned
// in join order. Every peer runs the same greedy connection logic: it keeps a
// set of known peers, dials some of them subject to a connection limit and a
// half-open limit, and accepts incoming dials first-come-first-served until it
// is full. Under these rules long-lived swarms degenerate into clusters of
// early joiners, and late joiners struggle to find open slots.
//
// Peer ordering is the mitigation under study. Every unordered pair of peers
// has a fixed global rank, derived from a hash of the pair. When ordering is
// enabled, peers prefer to dial their highest-ranking known peers, and a full
// peer accepts a dialer that outranks its lowest-ranking current connection by
// evicting that connection. Because the ranking is global and stable, the
// resulting topology is close to uniformly connected regardless of join order.
//
// The engine is split along its natural seams: PriorityOracle (the pairwise
// rank), State (the authoritative connection graph and per-peer relation
// sets), Discovery (join-time knowledge seeding), Scheduler (which known
// peers to dial), Admission (per-tick resolution of outstanding dials into
// accepts, rejects and replacements), and Stats (per-tick counters and
// startup ramp sampling). Diameter and DegreeHistogram characterize the
// resulting graph, and Capture produces the read-only per-tick snapshot
// consumed by the store, the exporter and the HTTP service.
//
// Everything in this package is sequential. The simulator serializes access;
// there is no internal locking.
package swarm
