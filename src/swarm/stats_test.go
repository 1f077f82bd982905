package swarm

import "testing"

func TestStatsTickCycle(t *testing.T) {
	st := NewStats()

	st.BeginTick()
	st.CountAttempt()
	st.CountAttempt()
	st.CountReject()
	st.EndTick(1)

	st.BeginTick()
	st.CountReplacement()
	st.EndTick(2)

	series := st.Series()
	if len(series) != 2 {
		t.Fatalf("series length => %d, expected 2", len(series))
	}

	if series[0] != (TickCounters{Tick: 1, Attempts: 2, Rejects: 1}) {
		t.Fatalf("tick 1 counters => %+v", series[0])
	}
	if series[1] != (TickCounters{Tick: 2, Replacements: 1}) {
		t.Fatalf("tick 2 counters should have been reset: %+v", series[1])
	}
}

func TestStatsRampTable(t *testing.T) {
	st := NewStats()

	for _, d := range []int{1, 2, 3, 4, 5} {
		st.SampleRamp(0, d)
	}
	st.SampleRamp(3, 7)

	rows := st.RampTable()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	r := rows[0]
	if r.Bucket != 0 || r.Samples != 5 || r.Min != 1 || r.Max != 5 {
		t.Fatalf("bucket 0 => %+v", r)
	}
	if r.Percentiles[4] != 3 {
		t.Fatalf("median of bucket 0 => %v, expected 3", r.Percentiles[4])
	}

	if rows[1].Bucket != 3 || rows[1].Min != 7 || rows[1].Max != 7 {
		t.Fatalf("bucket 3 => %+v", rows[1])
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := NewState()
	chain(s, 3)
	s.Peer(2).Attempts.Add(0)

	snap := Capture(s, 7, true)

	if snap.Tick != 7 || snap.Peers != 3 {
		t.Fatalf("snapshot header => %+v", snap)
	}
	if len(snap.Edges) != 2 || len(snap.Dials) != 1 {
		t.Fatalf("snapshot content => %+v", snap)
	}
	if !snap.HasDiameter || snap.Diameter != 2 {
		t.Fatalf("snapshot diameter => %+v", snap)
	}

	raw, err := snap.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	decoded := new(TickSnapshot)
	if err := decoded.Unmarshal(raw); err != nil {
		t.Fatal(err)
	}

	if decoded.Tick != snap.Tick ||
		len(decoded.Edges) != len(snap.Edges) ||
		len(decoded.Dials) != len(snap.Dials) ||
		decoded.Diameter != snap.Diameter {
		t.Fatalf("decoded snapshot differs: %+v vs %+v", decoded, snap)
	}
}
