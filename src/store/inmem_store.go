package store

import (
	"strconv"

	cm "github.com/arvidn/peer-ordering/src/common"
	"github.com/arvidn/peer-ordering/src/swarm"
	lru "github.com/hashicorp/golang-lru/v2"
)

// InmemStore implements RunStore with an in-memory cache. When the cache is
// full the oldest snapshots are evicted, so InmemStore only retains a recent
// window; use BadgerStore to keep a whole run.
type InmemStore struct {
	cacheSize int
	snapshots *lru.Cache[int, *swarm.TickSnapshot]
	lastTick  int
}

// NewInmemStore creates an InmemStore retaining up to cacheSize snapshots.
func NewInmemStore(cacheSize int) *InmemStore {
	if cacheSize < 1 {
		cacheSize = 1
	}
	snapshots, err := lru.New[int, *swarm.TickSnapshot](cacheSize)
	if err != nil {
		// lru.New only fails on a non-positive size
		panic(err)
	}
	return &InmemStore{
		cacheSize: cacheSize,
		snapshots: snapshots,
		lastTick:  -1,
	}
}

// CacheSize returns the snapshot retention limit.
func (s *InmemStore) CacheSize() int {
	return s.cacheSize
}

// SetSnapshot implements the RunStore interface.
func (s *InmemStore) SetSnapshot(snap *swarm.TickSnapshot) error {
	s.snapshots.Add(snap.Tick, snap)
	if snap.Tick > s.lastTick {
		s.lastTick = snap.Tick
	}
	return nil
}

// GetSnapshot implements the RunStore interface.
func (s *InmemStore) GetSnapshot(tick int) (*swarm.TickSnapshot, error) {
	snap, ok := s.snapshots.Get(tick)
	if !ok {
		return nil, cm.NewStoreErr("Snapshot", cm.KeyNotFound, strconv.Itoa(tick))
	}
	return snap, nil
}

// LastTick implements the RunStore interface.
func (s *InmemStore) LastTick() int {
	return s.lastTick
}

// Close implements the RunStore interface.
func (s *InmemStore) Close() error {
	return nil
}
