// Package store persists the per-tick topology snapshots of a run.
//
// The simulator writes one snapshot per tick. InmemStore keeps a bounded
// window of recent snapshots; BadgerStore additionally writes every snapshot
// through to a Badger database so a finished run can be re-read, re-exported
// or inspected offline.
package store

import (
	"github.com/arvidn/peer-ordering/src/swarm"
)

// RunStore is the interface for snapshot backends.
type RunStore interface {
	// SetSnapshot records the snapshot for its tick.
	SetSnapshot(snap *swarm.TickSnapshot) error
	// GetSnapshot returns the snapshot recorded for a tick.
	GetSnapshot(tick int) (*swarm.TickSnapshot, error)
	// LastTick returns the most recent recorded tick, or -1.
	LastTick() int
	// Close releases any underlying resources.
	Close() error
}
