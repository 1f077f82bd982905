package store

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	cm "github.com/arvidn/peer-ordering/src/common"
)

func testBadgerDir(t *testing.T) string {
	dir, err := ioutil.TempDir("", "badger")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	return dir
}

func TestBadgerStoreRoundTrip(t *testing.T) {
	dir := testBadgerDir(t)
	defer os.RemoveAll(dir)

	s, err := NewBadgerStore(10, dir)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	for tick := 1; tick <= 3; tick++ {
		if err := s.SetSnapshot(testSnapshot(tick)); err != nil {
			t.Fatal(err)
		}
	}

	snap, err := s.GetSnapshot(2)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Tick != 2 || len(snap.Edges) != 1 {
		t.Fatalf("snapshot => %+v", snap)
	}

	if s.LastTick() != 3 {
		t.Fatalf("LastTick => %d, expected 3", s.LastTick())
	}

	_, err = s.GetSnapshot(99)
	if !cm.IsStore(err, cm.KeyNotFound) {
		t.Fatalf("expected KeyNotFound, got %v", err)
	}
}

func TestBadgerStoreFallsBackToDB(t *testing.T) {
	dir := testBadgerDir(t)
	defer os.RemoveAll(dir)

	// a cache of one snapshot forces reads of older ticks through the db
	s, err := NewBadgerStore(1, dir)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	for tick := 1; tick <= 5; tick++ {
		if err := s.SetSnapshot(testSnapshot(tick)); err != nil {
			t.Fatal(err)
		}
	}

	snap, err := s.GetSnapshot(1)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Tick != 1 {
		t.Fatalf("snapshot => %+v", snap)
	}
}

func TestLoadBadgerStore(t *testing.T) {
	dir := testBadgerDir(t)
	defer os.RemoveAll(dir)

	s, err := NewBadgerStore(10, dir)
	if err != nil {
		t.Fatal(err)
	}
	for tick := 1; tick <= 4; tick++ {
		if err := s.SetSnapshot(testSnapshot(tick)); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := LoadBadgerStore(10, dir)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	if reopened.LastTick() != 4 {
		t.Fatalf("LastTick after reload => %d, expected 4", reopened.LastTick())
	}

	snap, err := reopened.GetSnapshot(3)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Tick != 3 {
		t.Fatalf("snapshot => %+v", snap)
	}

	if _, err := LoadBadgerStore(10, filepath.Join(dir, "missing")); err == nil {
		t.Fatalf("loading a missing database should fail")
	}
}
