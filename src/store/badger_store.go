package store

import (
	"fmt"
	"os"
	"strconv"

	cm "github.com/arvidn/peer-ordering/src/common"
	"github.com/arvidn/peer-ordering/src/swarm"
	"github.com/dgraph-io/badger"
)

const snapshotPrefix = "snapshot"

// BadgerStore implements RunStore on top of a Badger database, with an
// InmemStore acting as a write-through cache for recent snapshots. The
// database outlives the process, so a run can be re-opened afterwards with
// LoadBadgerStore.
type BadgerStore struct {
	inmemStore *InmemStore
	db         *badger.DB
	path       string
}

// NewBadgerStore creates a brand new store with a new database.
func NewBadgerStore(cacheSize int, path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.SyncWrites = false
	opts.Logger = nil
	handle, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerStore{
		inmemStore: NewInmemStore(cacheSize),
		db:         handle,
		path:       path,
	}, nil
}

// LoadBadgerStore opens the store of a previous run from an existing
// database.
func LoadBadgerStore(cacheSize int, path string) (*BadgerStore, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(path)
	opts.SyncWrites = false
	opts.Logger = nil
	handle, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	store := &BadgerStore{
		inmemStore: NewInmemStore(cacheSize),
		db:         handle,
		path:       path,
	}

	if last, err := store.dbLastTick(); err == nil {
		store.inmemStore.lastTick = last
	}

	return store, nil
}

// Path returns the database directory.
func (s *BadgerStore) Path() string {
	return s.path
}

// SetSnapshot implements the RunStore interface.
func (s *BadgerStore) SetSnapshot(snap *swarm.TickSnapshot) error {
	if err := s.inmemStore.SetSnapshot(snap); err != nil {
		return err
	}
	return s.dbSetSnapshot(snap)
}

// GetSnapshot implements the RunStore interface. It checks the in-memory
// cache first and falls back to the database.
func (s *BadgerStore) GetSnapshot(tick int) (*swarm.TickSnapshot, error) {
	snap, err := s.inmemStore.GetSnapshot(tick)
	if err != nil {
		snap, err = s.dbGetSnapshot(tick)
	}
	return snap, err
}

// LastTick implements the RunStore interface.
func (s *BadgerStore) LastTick() int {
	return s.inmemStore.LastTick()
}

// Close implements the RunStore interface.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

//==============================================================================
//Keys

func snapshotKey(tick int) []byte {
	return []byte(fmt.Sprintf("%s_%09d", snapshotPrefix, tick))
}

//==============================================================================
//DB Methods

func (s *BadgerStore) dbSetSnapshot(snap *swarm.TickSnapshot) error {
	tx := s.db.NewTransaction(true)
	defer tx.Discard()

	val, err := snap.Marshal()
	if err != nil {
		return err
	}

	//insert [snapshot_tick] => [snapshot bytes]
	if err := tx.Set(snapshotKey(snap.Tick), val); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *BadgerStore) dbGetSnapshot(tick int) (*swarm.TickSnapshot, error) {
	var snapBytes []byte
	key := snapshotKey(tick)
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		snapBytes, err = item.ValueCopy(nil)
		return err
	})

	if err != nil {
		return nil, cm.NewStoreErr("Snapshot", cm.KeyNotFound, strconv.Itoa(tick))
	}

	snap := new(swarm.TickSnapshot)
	if err := snap.Unmarshal(snapBytes); err != nil {
		return nil, err
	}

	return snap, nil
}

// dbLastTick scans the snapshot keys in reverse to find the last recorded
// tick.
func (s *BadgerStore) dbLastTick() (int, error) {
	last := -1
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		// seek past every snapshot key, then step back onto the last one
		it.Seek([]byte(snapshotPrefix + "~"))
		if !it.ValidForPrefix([]byte(snapshotPrefix)) {
			return cm.NewStoreErr("Snapshot", cm.Empty, "")
		}

		key := string(it.Item().Key())
		tick, err := strconv.Atoi(key[len(snapshotPrefix)+1:])
		if err != nil {
			return err
		}
		last = tick
		return nil
	})

	return last, err
}
